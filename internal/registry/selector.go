package registry

import (
	"fmt"
	"strings"

	"github.com/ohler55/ojg/jp"

	"github.com/lipu-linku/sona/internal/record"
)

// Selector extracts reference values from a record.
// A plain field name selects that top-level field; an expression starting
// with "$" is evaluated as JSONPath against the record.
type Selector struct {
	raw  string
	expr jp.Expr
}

// ParseSelector compiles a reference field.
func ParseSelector(field string) (*Selector, error) {
	if field == "" {
		return nil, fmt.Errorf("empty reference field")
	}
	if !strings.HasPrefix(field, "$") {
		return &Selector{raw: field, expr: jp.R().C(field)}, nil
	}
	x, err := jp.ParseString(field)
	if err != nil {
		return nil, fmt.Errorf("invalid jsonpath '%s': %w", field, err)
	}
	return &Selector{raw: field, expr: x}, nil
}

// String returns the field as written in the registry.
func (s *Selector) String() string { return s.raw }

// Select returns every value the selector matches. An absent field yields nothing.
func (s *Selector) Select(m record.Map) []record.Value {
	results := s.expr.Get(record.ToAny(m))
	out := make([]record.Value, 0, len(results))
	for _, r := range results {
		v, err := record.FromAny(r)
		if err != nil {
			continue
		}
		out = append(out, v)
	}
	return out
}
