// Package diagnostic holds the findings accumulated while aggregating,
// syncing and validating a dataset. Findings never abort a run; callers
// decide at the end whether the report fails it.
package diagnostic

import (
	"fmt"
	"sort"
	"strings"
)

// Kind identifies a class of finding.
type Kind int

const (
	ParseError Kind = iota
	PathMismatch
	DuplicateKey
	MismatchedID
	MissingLanguage
	UnexpectedLanguage
	MissingTranslation
	EmptyTranslation
	OrphanedTranslation
	DanglingReference
	MalformedReference
	OrphanedKey
)

var kindNames = [...]string{
	ParseError:          "ParseError",
	PathMismatch:        "PathMismatch",
	DuplicateKey:        "DuplicateKey",
	MismatchedID:        "MismatchedID",
	MissingLanguage:     "MissingLanguage",
	UnexpectedLanguage:  "UnexpectedLanguage",
	MissingTranslation:  "MissingTranslation",
	EmptyTranslation:    "EmptyTranslation",
	OrphanedTranslation: "OrphanedTranslation",
	DanglingReference:   "DanglingReference",
	MalformedReference:  "MalformedReference",
	OrphanedKey:         "OrphanedKey",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("Kind(%d)", int(k))
	}
	return kindNames[k]
}

// Severity of a finding.
type Severity int

const (
	Info Severity = iota
	Error
)

func (s Severity) String() string {
	if s == Info {
		return "info"
	}
	return "error"
}

// Severity of findings of this kind. OrphanedKey is informational; the rest fail validation.
func (k Kind) Severity() Severity {
	if k == OrphanedKey {
		return Info
	}
	return Error
}

// Diagnostic is a single finding. Unused location fields are empty.
type Diagnostic struct {
	Kind       Kind
	Collection string
	ID         string
	Field      string
	// Value is the offending value, e.g. the unresolved id of a dangling reference.
	Value string
	Lang  string
	Path  string
	// Detail carries free text such as a wrapped parse error.
	Detail string
}

func (d Diagnostic) String() string {
	var loc []string
	if d.Collection != "" {
		loc = append(loc, d.Collection)
	}
	if d.ID != "" {
		loc = append(loc, "("+d.ID+")")
	}
	if d.Lang != "" {
		loc = append(loc, "["+d.Lang+"]")
	}
	var b strings.Builder
	b.WriteString("[" + d.Kind.String() + "]")
	if len(loc) > 0 {
		b.WriteString(" " + strings.Join(loc, " "))
	}
	if d.Path != "" {
		b.WriteString(" " + d.Path)
	}
	if d.Field != "" {
		fmt.Fprintf(&b, " field '%s'", d.Field)
	}
	if d.Value != "" {
		fmt.Fprintf(&b, ": '%s'", d.Value)
	}
	if d.Detail != "" {
		b.WriteString(": " + d.Detail)
	}
	return b.String()
}

// Report accumulates diagnostics. The zero value is ready to use.
// It is not safe for concurrent use.
type Report struct {
	items []Diagnostic
}

// Add appends diagnostics.
func (r *Report) Add(ds ...Diagnostic) {
	r.items = append(r.items, ds...)
}

// Merge appends every diagnostic of other.
func (r *Report) Merge(other *Report) {
	if other != nil {
		r.items = append(r.items, other.items...)
	}
}

// Items returns the diagnostics in the order they were added.
func (r *Report) Items() []Diagnostic {
	return r.items
}

// Len is the number of diagnostics.
func (r *Report) Len() int { return len(r.items) }

// Has reports whether any diagnostic of kind k was recorded.
func (r *Report) Has(k Kind) bool {
	for _, d := range r.items {
		if d.Kind == k {
			return true
		}
	}
	return false
}

// Errors returns the diagnostics of error severity.
func (r *Report) Errors() []Diagnostic {
	var out []Diagnostic
	for _, d := range r.items {
		if d.Kind.Severity() == Error {
			out = append(out, d)
		}
	}
	return out
}

// HasErrors reports whether any error-severity diagnostic was recorded.
func (r *Report) HasErrors() bool {
	return len(r.Errors()) > 0
}

// Sorted returns a copy ordered by kind, then by rendered text, for stable output.
func (r *Report) Sorted() []Diagnostic {
	out := make([]Diagnostic, len(r.items))
	copy(out, r.items)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Kind != out[j].Kind {
			return out[i].Kind < out[j].Kind
		}
		return out[i].String() < out[j].String()
	})
	return out
}
