// Package pattern compiles path templates such as "words/{langcode}/{field}.toml"
// into a filesystem glob, an anchored capture regex and a formatter.
//
// A placeholder is "{name}" where name is one or more ASCII word characters.
// Placeholders never span a path separator. Braces that do not form a
// placeholder are literal text.
package pattern

import (
	"fmt"
	"regexp"
	"slices"
	"strings"
)

var placeholderRe = regexp.MustCompile(`\{(\w+)\}`)

// Template is a compiled path template. It is immutable and safe for concurrent use.
type Template struct {
	raw    string
	params []string // first-appearance order, unique
	glob   string
	re     *regexp.Regexp
	// groups[i] is the parameter captured by submatch i+1.
	groups []string
}

// Compile parses raw and builds its glob and matcher.
func Compile(raw string) (*Template, error) {
	if raw == "" {
		return nil, fmt.Errorf("empty template")
	}
	t := &Template{raw: raw}

	var glob, expr strings.Builder
	expr.WriteString("^")
	seen := make(map[string]bool)
	last := 0
	for _, loc := range placeholderRe.FindAllStringSubmatchIndex(raw, -1) {
		literal := raw[last:loc[0]]
		glob.WriteString(escapeGlob(literal))
		expr.WriteString(regexp.QuoteMeta(literal))

		name := raw[loc[2]:loc[3]]
		glob.WriteString("*")
		if seen[name] {
			// Repeated placeholders are captured anonymously and checked in Extract.
			expr.WriteString(`([^/]+)`)
		} else {
			seen[name] = true
			t.params = append(t.params, name)
			expr.WriteString(`(?P<` + name + `>[^/]+)`)
		}
		t.groups = append(t.groups, name)
		last = loc[1]
	}
	glob.WriteString(escapeGlob(raw[last:]))
	expr.WriteString(regexp.QuoteMeta(raw[last:]))
	expr.WriteString("$")

	re, err := regexp.Compile(expr.String())
	if err != nil {
		return nil, fmt.Errorf("compile template %q: %w", raw, err)
	}
	t.re = re
	t.glob = glob.String()
	return t, nil
}

// MustCompile is like Compile but panics on error.
func MustCompile(raw string) *Template {
	t, err := Compile(raw)
	if err != nil {
		panic(err)
	}
	return t
}

func (t *Template) String() string { return t.raw }

// Params returns the parameter names in order of first appearance.
func (t *Template) Params() []string { return slices.Clone(t.params) }

// Has reports whether name is a parameter of t.
func (t *Template) Has(name string) bool { return slices.Contains(t.params, name) }

// Glob returns the template with every placeholder replaced by a single-segment wildcard.
func (t *Template) Glob() string { return t.glob }

// Regexp returns the anchored matcher with one named group per parameter.
func (t *Template) Regexp() *regexp.Regexp { return t.re }

// Substitute formats the template with values. Extra values are ignored.
func (t *Template) Substitute(values map[string]string) (string, error) {
	for _, name := range t.params {
		v, ok := values[name]
		if !ok {
			return "", &MissingParamError{Template: t.raw, Param: name}
		}
		if v == "" || strings.ContainsRune(v, '/') {
			return "", fmt.Errorf("template %q: {%s}=%q: %w", t.raw, name, v, ErrInvalidValue)
		}
	}
	return placeholderRe.ReplaceAllStringFunc(t.raw, func(m string) string {
		return values[m[1:len(m)-1]]
	}), nil
}

// Extract matches path against the template and returns every parameter value.
func (t *Template) Extract(path string) (map[string]string, error) {
	m := t.re.FindStringSubmatch(path)
	if m == nil {
		return nil, &PathMismatchError{Template: t.raw, Path: path}
	}
	values := make(map[string]string, len(t.params))
	for i, name := range t.groups {
		v := m[i+1]
		if prev, ok := values[name]; ok && prev != v {
			return nil, &PathMismatchError{Template: t.raw, Path: path}
		}
		values[name] = v
	}
	return values, nil
}

func escapeGlob(s string) string {
	if !strings.ContainsAny(s, `*?[\`) {
		return s
	}
	var b strings.Builder
	for _, r := range s {
		switch r {
		case '*', '?', '[', '\\':
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}
