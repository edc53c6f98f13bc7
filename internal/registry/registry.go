// Package registry loads the collection registry: the declarative list of
// collections making up a dataset, their path templates, and how they refer
// to one another. Every inconsistency is reported at load time, before the
// dataset itself is touched.
package registry

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"sort"

	"github.com/hashicorp/hcl/v2/hclsimple"

	"github.com/lipu-linku/sona/api"
	"github.com/lipu-linku/sona/internal/pattern"
)

//go:embed default.hcl
var defaultHCL []byte

// DefaultSchemaBase is used when the registry does not set schema_base.
const DefaultSchemaBase = "api/generated/v2"

// ErrUnknownCollection is returned when a collection id is not registered.
var ErrUnknownCollection = errors.New("unknown collection")

// SpecError reports an invalid collection declaration.
type SpecError struct {
	Collection string
	Err        error
}

func (e *SpecError) Error() string {
	if e.Collection == "" {
		return fmt.Sprintf("registry: %v", e.Err)
	}
	return fmt.Sprintf("registry: collection %q: %v", e.Collection, e.Err)
}

func (e *SpecError) Unwrap() error { return e.Err }

// Reference is a compiled reference rule.
type Reference struct {
	Field *Selector
	To    []string
}

// Collection is a validated collection declaration.
type Collection struct {
	ID     string
	Kind   api.Kind
	Input  *pattern.Template
	Output *pattern.Template
	// Source is set only on Locale collections that are synced from a source tree.
	Source *pattern.Template
	// Schema may contain placeholders of the annotated template. Nil when unset.
	Schema       *pattern.Template
	Translations string
	References   []Reference
	// Key is the unbound input param: the entity id (Entity) or the field name (Locale).
	Key string
	// Group is the bound input param of a Locale collection; empty for Entity.
	Group string
}

// Annotated returns the template of the files carrying this collection's schema line.
func (c *Collection) Annotated() *pattern.Template {
	if c.Kind == api.KindLocale {
		return c.Source
	}
	return c.Input
}

// Registry is the validated set of collections.
type Registry struct {
	collections []*Collection
	byID        map[string]*Collection
	languages   string
	schemaBase  string
	singular    map[string]string
}

// Default returns the built-in dataset registry.
func Default() *Registry {
	r, err := Parse("default.hcl", defaultHCL)
	if err != nil {
		panic(err)
	}
	return r
}

// Load reads and validates a registry file.
func Load(path string) (*Registry, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read registry: %w", err)
	}
	return Parse(path, src)
}

// Parse decodes and validates an HCL registry document.
func Parse(filename string, src []byte) (*Registry, error) {
	var f api.File
	if err := hclsimple.Decode(filename, src, nil, &f); err != nil {
		return nil, fmt.Errorf("decode registry %s: %w", filename, err)
	}
	return New(&f)
}

// New validates a decoded registry document.
func New(f *api.File) (*Registry, error) {
	r := &Registry{
		byID:       make(map[string]*Collection, len(f.Collections)),
		languages:  f.Languages,
		schemaBase: f.SchemaBase,
		singular:   map[string]string{"definitions": "definition"},
	}
	if r.schemaBase == "" {
		r.schemaBase = DefaultSchemaBase
	}
	if f.Singular != nil {
		r.singular = f.Singular
	}

	for i := range f.Collections {
		b := &f.Collections[i]
		if _, dup := r.byID[b.ID]; dup {
			return nil, &SpecError{Collection: b.ID, Err: errors.New("declared more than once")}
		}
		c, err := compile(b)
		if err != nil {
			return nil, &SpecError{Collection: b.ID, Err: err}
		}
		r.collections = append(r.collections, c)
		r.byID[c.ID] = c
	}

	for _, c := range r.collections {
		if err := r.link(c); err != nil {
			return nil, &SpecError{Collection: c.ID, Err: err}
		}
	}

	if r.languages != "" {
		lc, ok := r.byID[r.languages]
		if !ok {
			return nil, &SpecError{Err: fmt.Errorf("languages: %w: %q", ErrUnknownCollection, r.languages)}
		}
		if lc.Kind != api.KindEntity {
			return nil, &SpecError{Err: fmt.Errorf("languages: %q is not an entity collection", r.languages)}
		}
	}
	return r, nil
}

func compile(b *api.CollectionBlock) (*Collection, error) {
	c := &Collection{ID: b.ID, Kind: api.Kind(b.Kind), Translations: b.Translations}
	if b.ID == "" {
		return nil, errors.New("empty id")
	}
	if c.Kind != api.KindEntity && c.Kind != api.KindLocale {
		return nil, fmt.Errorf("kind must be %q or %q, got %q", api.KindEntity, api.KindLocale, b.Kind)
	}

	var err error
	if c.Input, err = pattern.Compile(b.Input); err != nil {
		return nil, fmt.Errorf("input: %w", err)
	}
	if c.Output, err = pattern.Compile(b.Output); err != nil {
		return nil, fmt.Errorf("output: %w", err)
	}
	if err := pattern.Subset(c.Output, c.Input); err != nil {
		return nil, err
	}
	if c.Key, err = pattern.UnboundParam(c.Input, c.Output); err != nil {
		return nil, err
	}

	switch c.Kind {
	case api.KindEntity:
		if len(c.Output.Params()) > 0 {
			return nil, &pattern.ConfigError{
				Code: pattern.OutputParams, Input: b.Input, Output: b.Output, Params: sorted(c.Output.Params()),
			}
		}
		if b.Source != "" {
			return nil, errors.New("source is only allowed on locale collections")
		}
	case api.KindLocale:
		if c.Group, err = pattern.BoundParam(c.Input, c.Output); err != nil {
			return nil, err
		}
		if b.Translations != "" {
			return nil, errors.New("translations is only allowed on entity collections")
		}
		if len(b.References) > 0 {
			return nil, errors.New("reference is only allowed on entity collections")
		}
		if b.Source != "" {
			if c.Source, err = pattern.Compile(b.Source); err != nil {
				return nil, fmt.Errorf("source: %w", err)
			}
			if err := checkSourceParams(c); err != nil {
				return nil, err
			}
		}
	}

	if b.Schema != "" {
		if c.Schema, err = pattern.Compile(b.Schema); err != nil {
			return nil, fmt.Errorf("schema: %w", err)
		}
		annotated := c.Annotated()
		if annotated == nil {
			return nil, errors.New("schema on a locale collection requires source")
		}
		if err := pattern.Subset(c.Schema, annotated); err != nil {
			return nil, err
		}
	}

	for _, ref := range b.References {
		sel, err := ParseSelector(ref.Field)
		if err != nil {
			return nil, fmt.Errorf("reference: %w", err)
		}
		if len(ref.To) == 0 {
			return nil, fmt.Errorf("reference %q: no target collections", ref.Field)
		}
		c.References = append(c.References, Reference{Field: sel, To: ref.To})
	}
	return c, nil
}

// checkSourceParams requires the source template to capture exactly the
// input params minus the group param.
func checkSourceParams(c *Collection) error {
	want := map[string]bool{}
	for _, p := range c.Input.Params() {
		if p != c.Group {
			want[p] = true
		}
	}
	got := c.Source.Params()
	var bad []string
	for _, p := range got {
		if !want[p] {
			bad = append(bad, p)
		}
		delete(want, p)
	}
	for p := range want {
		bad = append(bad, p)
	}
	if len(bad) > 0 {
		sort.Strings(bad)
		return &pattern.ConfigError{
			Code: pattern.UnknownParam, Input: c.Input.String(), Output: c.Source.String(), Params: bad,
		}
	}
	return nil
}

// link resolves cross-collection names once every collection is compiled.
func (r *Registry) link(c *Collection) error {
	if c.Translations != "" {
		t, ok := r.byID[c.Translations]
		if !ok {
			return fmt.Errorf("translations: %w: %q", ErrUnknownCollection, c.Translations)
		}
		if t.Kind != api.KindLocale {
			return fmt.Errorf("translations: %q is not a locale collection", c.Translations)
		}
	}
	for _, ref := range c.References {
		for _, to := range ref.To {
			t, ok := r.byID[to]
			if !ok {
				return fmt.Errorf("reference %q: %w: %q", ref.Field, ErrUnknownCollection, to)
			}
			if t.Kind != api.KindEntity {
				return fmt.Errorf("reference %q: %q is not an entity collection", ref.Field, to)
			}
		}
	}
	return nil
}

// Collections returns every collection in declaration order.
func (r *Registry) Collections() []*Collection {
	out := make([]*Collection, len(r.collections))
	copy(out, r.collections)
	return out
}

// Get returns a collection by id.
func (r *Registry) Get(id string) (*Collection, error) {
	c, ok := r.byID[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCollection, id)
	}
	return c, nil
}

// Languages returns the id of the collection listing known languages, or "".
func (r *Registry) Languages() string { return r.languages }

// SchemaBase returns the schema directory relative to the dataset root.
func (r *Registry) SchemaBase() string { return r.schemaBase }

// Singular maps a plural Locale field name to its singular form.
// Names without an entry are returned unchanged.
func (r *Registry) Singular(field string) string {
	if s, ok := r.singular[field]; ok {
		return s
	}
	return field
}

func sorted(ss []string) []string {
	sort.Strings(ss)
	return ss
}
