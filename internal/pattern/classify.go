package pattern

import "sort"

// UnboundParam returns the sole parameter of input that output does not use.
// That parameter becomes the per-record lookup key.
func UnboundParam(input, output *Template) (string, error) {
	var rest []string
	for _, p := range input.params {
		if !output.Has(p) {
			rest = append(rest, p)
		}
	}
	if len(rest) != 1 {
		sort.Strings(rest)
		return "", &ConfigError{Code: AmbiguousKey, Input: input.raw, Output: output.raw, Params: rest}
	}
	return rest[0], nil
}

// BoundParam returns the sole parameter shared by input and output.
// That parameter partitions output files.
func BoundParam(input, output *Template) (string, error) {
	var shared []string
	for _, p := range input.params {
		if output.Has(p) {
			shared = append(shared, p)
		}
	}
	if len(shared) != 1 {
		sort.Strings(shared)
		return "", &ConfigError{Code: AmbiguousGroup, Input: input.raw, Output: output.raw, Params: shared}
	}
	return shared[0], nil
}

// Subset checks that every parameter of t is captured by input.
func Subset(t, input *Template) error {
	var unknown []string
	for _, p := range t.params {
		if !input.Has(p) {
			unknown = append(unknown, p)
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return &ConfigError{Code: UnknownParam, Input: input.raw, Output: t.raw, Params: unknown}
	}
	return nil
}
