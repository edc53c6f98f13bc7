// Package ingest aggregates the record files of registered collections into
// entity maps and per-language locale maps.
package ingest

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/lipu-linku/sona/api"
	"github.com/lipu-linku/sona/internal/diagnostic"
	"github.com/lipu-linku/sona/internal/record"
	"github.com/lipu-linku/sona/internal/registry"
)

// Engine drives aggregation for one run.
// Files that fail to parse or fail to match their template are reported to
// Report and skipped; I/O failures abort.
type Engine struct {
	Registry *registry.Registry
	Finder   Finder
	Records  Reader
	Report   *diagnostic.Report
	Logger   *slog.Logger
}

// NewEngine wires an engine with a fresh report.
func NewEngine(reg *registry.Registry, finder Finder, records Reader) *Engine {
	return &Engine{
		Registry: reg,
		Finder:   finder,
		Records:  records,
		Report:   &diagnostic.Report{},
		Logger:   slog.Default(),
	}
}

// discovered is one matched file with its extracted parameter values.
type discovered struct {
	path   string
	values map[string]string
	rec    *record.Record
}

// discover finds, matches and parses every input file of c, in path order.
func (e *Engine) discover(c *registry.Collection) ([]discovered, error) {
	paths, err := e.Finder.Find(c.Input)
	if err != nil {
		return nil, fmt.Errorf("collection %s: %w", c.ID, err)
	}
	sort.Strings(paths)

	out := make([]discovered, 0, len(paths))
	for _, p := range paths {
		values, err := c.Input.Extract(p)
		if err != nil {
			e.Report.Add(diagnostic.Diagnostic{
				Kind: diagnostic.PathMismatch, Collection: c.ID, Path: p, Detail: err.Error(),
			})
			continue
		}
		for k, v := range values {
			values[k] = norm.NFC.String(v)
		}

		rec, err := e.Records.Read(p)
		var pe *record.ParseError
		if errors.As(err, &pe) {
			e.Logger.Warn("skipping unparsable file", "collection", c.ID, "path", p, "err", pe)
			e.Report.Add(diagnostic.Diagnostic{
				Kind: diagnostic.ParseError, Collection: c.ID, Path: p, Detail: pe.Err.Error(),
			})
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("collection %s: %w", c.ID, err)
		}
		out = append(out, discovered{path: p, values: values, rec: rec})
	}
	return out, nil
}

// FetchEntities aggregates an Entity collection into id → record.
// When several files share a key the first path wins and a joined
// *DuplicateKeyError is returned alongside the map.
func (e *Engine) FetchEntities(c *registry.Collection) (EntityMap, error) {
	if c.Kind != api.KindEntity {
		return nil, fmt.Errorf("collection %s: not an entity collection", c.ID)
	}
	files, err := e.discover(c)
	if err != nil {
		return nil, err
	}

	result := make(EntityMap, len(files))
	seen := make(map[string][]string, len(files))
	for _, f := range files {
		key := f.values[c.Key]
		seen[key] = append(seen[key], f.path)
		if _, dup := result[key]; dup {
			continue
		}
		result[key] = f.rec.Data
	}

	e.Logger.Debug("aggregated entities", "collection", c.ID, "count", len(result))
	return result, duplicates(c.ID, seen)
}

// FetchLocales aggregates a Locale collection into group → id → field → value.
// Each file holds one field for one group, as a map of entity id → value.
// Field names pass through the registry's singularization table, so two
// files naming the same field after singularization collide. Entity ids
// inside the files are NFC-normalised like path values.
func (e *Engine) FetchLocales(c *registry.Collection) (LocaleMap, error) {
	if c.Kind != api.KindLocale {
		return nil, fmt.Errorf("collection %s: not a locale collection", c.ID)
	}
	files, err := e.discover(c)
	if err != nil {
		return nil, err
	}

	result := make(LocaleMap)
	seen := make(map[string][]string, len(files))
	for _, f := range files {
		group := f.values[c.Group]
		field := e.Registry.Singular(f.values[c.Key])
		key := group + "/" + field
		seen[key] = append(seen[key], f.path)
		if len(seen[key]) > 1 {
			continue
		}
		if _, ok := result[group]; !ok {
			result[group] = make(map[string]record.Map)
		}
		for _, id := range f.rec.Data.Keys() {
			result.Set(group, norm.NFC.String(id), field, f.rec.Data[id])
		}
	}

	e.Logger.Debug("aggregated locales", "collection", c.ID, "groups", len(result))
	return result, duplicates(c.ID, seen)
}

func duplicates(collection string, seen map[string][]string) error {
	keys := make([]string, 0)
	for k, paths := range seen {
		if len(paths) > 1 {
			keys = append(keys, k)
		}
	}
	if len(keys) == 0 {
		return nil
	}
	sort.Strings(keys)
	errs := make([]error, 0, len(keys))
	for _, k := range keys {
		errs = append(errs, &DuplicateKeyError{Collection: collection, Key: k, Paths: seen[k]})
	}
	return errors.Join(errs...)
}

// LoadAll aggregates every registered collection. Key collisions are
// recorded in the snapshot and reported as DuplicateKey diagnostics.
func (e *Engine) LoadAll() (*Snapshot, error) {
	snap := NewSnapshot()
	for _, c := range e.Registry.Collections() {
		var err error
		switch c.Kind {
		case api.KindEntity:
			var m EntityMap
			m, err = e.FetchEntities(c)
			if m != nil {
				snap.Entities[c.ID] = m
			}
		case api.KindLocale:
			var m LocaleMap
			m, err = e.FetchLocales(c)
			if m != nil {
				snap.Locales[c.ID] = m
			}
		}

		dups := DuplicateKeys(err)
		if err != nil && len(dups) == 0 {
			return nil, err
		}
		for _, d := range dups {
			snap.Duplicates = append(snap.Duplicates, d)
			e.Report.Add(diagnostic.Diagnostic{
				Kind:       diagnostic.DuplicateKey,
				Collection: d.Collection,
				ID:         d.Key,
				Detail:     "defined by " + strings.Join(d.Paths, ", "),
			})
		}
	}
	return snap, nil
}
