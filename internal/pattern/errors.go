package pattern

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidValue is returned when a substituted value is empty or contains a path separator.
var ErrInvalidValue = errors.New("invalid parameter value")

// ConfigCode classifies a template configuration error.
type ConfigCode int

const (
	// AmbiguousKey means the input template does not have exactly one unbound parameter.
	AmbiguousKey ConfigCode = iota
	// AmbiguousGroup means input and output do not share exactly one parameter.
	AmbiguousGroup
	// UnknownParam means a template uses a parameter its input template never captures.
	UnknownParam
	// OutputParams means an output template has placeholders where none are allowed.
	OutputParams
)

func (c ConfigCode) String() string {
	switch c {
	case AmbiguousKey:
		return "ambiguous key"
	case AmbiguousGroup:
		return "ambiguous group"
	case UnknownParam:
		return "unknown param"
	case OutputParams:
		return "output params"
	default:
		return "unknown"
	}
}

// ConfigError reports a pair of templates that cannot be classified.
type ConfigError struct {
	Code   ConfigCode
	Input  string
	Output string
	// Params are the offending parameter names, sorted.
	Params []string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("%s: input %q, output %q: params [%s]",
		e.Code, e.Input, e.Output, strings.Join(e.Params, ", "))
}

// MissingParamError is returned by Substitute when a needed value is absent.
type MissingParamError struct {
	Template string
	Param    string
}

func (e *MissingParamError) Error() string {
	return fmt.Sprintf("template %q: missing value for {%s}", e.Template, e.Param)
}

// PathMismatchError is returned by Extract when a path does not fit the template.
type PathMismatchError struct {
	Template string
	Path     string
}

func (e *PathMismatchError) Error() string {
	return fmt.Sprintf("path %q does not match template %q", e.Path, e.Template)
}
