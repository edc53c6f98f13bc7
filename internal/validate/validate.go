// Package validate cross-checks an aggregated snapshot: entity identity,
// language coverage, translation completeness and reference integrity.
package validate

import (
	"sort"

	"github.com/lipu-linku/sona/api"
	"github.com/lipu-linku/sona/internal/diagnostic"
	"github.com/lipu-linku/sona/internal/ingest"
	"github.com/lipu-linku/sona/internal/record"
	"github.com/lipu-linku/sona/internal/registry"
)

// Check runs every cross-collection check over snap and returns the findings.
// It never stops at the first failure.
func Check(reg *registry.Registry, snap *ingest.Snapshot) []diagnostic.Diagnostic {
	var out []diagnostic.Diagnostic
	out = append(out, checkIDs(reg, snap)...)

	langs, ok := knownLanguages(reg, snap)
	if ok {
		out = append(out, checkCoverage(reg, snap, langs)...)
		out = append(out, checkCompleteness(reg, snap, langs)...)
	}
	out = append(out, checkReferences(reg, snap)...)
	return out
}

// Run loads and aggregates every collection with eng, cross-checks the
// result and returns all findings: aggregation diagnostics first.
func Run(eng *ingest.Engine) (*diagnostic.Report, error) {
	snap, err := eng.LoadAll()
	if err != nil {
		return nil, err
	}
	report := &diagnostic.Report{}
	report.Merge(eng.Report)
	report.Add(Check(eng.Registry, snap)...)
	return report, nil
}

func knownLanguages(reg *registry.Registry, snap *ingest.Snapshot) ([]string, bool) {
	if reg.Languages() == "" {
		return nil, false
	}
	return snap.Entities[reg.Languages()].IDs(), true
}

// checkIDs requires a string "id" field, when present, to match the path-derived key.
func checkIDs(reg *registry.Registry, snap *ingest.Snapshot) []diagnostic.Diagnostic {
	var out []diagnostic.Diagnostic
	for _, c := range entityCollections(reg) {
		m := snap.Entities[c.ID]
		for _, key := range m.IDs() {
			s, ok := m[key]["id"].(record.Scalar)
			if !ok {
				continue
			}
			if id, isString := s.V.(string); isString && id != key {
				out = append(out, diagnostic.Diagnostic{
					Kind: diagnostic.MismatchedID, Collection: c.ID, ID: key, Field: "id", Value: id,
				})
			}
		}
	}
	return out
}

// checkCoverage requires every Locale collection's group set to equal langs.
func checkCoverage(reg *registry.Registry, snap *ingest.Snapshot, langs []string) []diagnostic.Diagnostic {
	known := set(langs)
	var out []diagnostic.Diagnostic
	for _, c := range reg.Collections() {
		if c.Kind != api.KindLocale {
			continue
		}
		groups := snap.Locales[c.ID]
		for _, lang := range langs {
			if _, ok := groups[lang]; !ok {
				out = append(out, diagnostic.Diagnostic{Kind: diagnostic.MissingLanguage, Collection: c.ID, Lang: lang})
			}
		}
		for _, g := range sortedKeys(groups) {
			if !known[g] {
				out = append(out, diagnostic.Diagnostic{Kind: diagnostic.UnexpectedLanguage, Collection: c.ID, Lang: g})
			}
		}
	}
	return out
}

// checkCompleteness requires a non-empty translation of every entity of a
// translated collection in every known language, and no translation of an
// entity that does not exist.
func checkCompleteness(reg *registry.Registry, snap *ingest.Snapshot, langs []string) []diagnostic.Diagnostic {
	var out []diagnostic.Diagnostic
	for _, c := range entityCollections(reg) {
		if c.Translations == "" {
			continue
		}
		base := snap.Entities[c.ID]
		locales := snap.Locales[c.Translations]

		for _, id := range base.IDs() {
			for _, lang := range langs {
				tr, ok := locales[lang][id]
				switch {
				case !ok:
					out = append(out, diagnostic.Diagnostic{
						Kind: diagnostic.MissingTranslation, Collection: c.ID, ID: id, Lang: lang,
					})
				case record.IsEmpty(tr):
					out = append(out, diagnostic.Diagnostic{
						Kind: diagnostic.EmptyTranslation, Collection: c.ID, ID: id, Lang: lang,
					})
				}
			}
		}

		for _, lang := range sortedKeys(locales) {
			for _, id := range sortedKeys(locales[lang]) {
				if _, ok := base[id]; !ok {
					out = append(out, diagnostic.Diagnostic{
						Kind: diagnostic.OrphanedTranslation, Collection: c.ID, ID: id, Lang: lang,
					})
				}
			}
		}
	}
	return out
}

// checkReferences resolves every reference rule against the union of its targets.
func checkReferences(reg *registry.Registry, snap *ingest.Snapshot) []diagnostic.Diagnostic {
	var out []diagnostic.Diagnostic
	for _, c := range entityCollections(reg) {
		m := snap.Entities[c.ID]
		for _, ref := range c.References {
			targets := make(map[string]bool)
			for _, to := range ref.To {
				for id := range snap.Entities[to] {
					targets[id] = true
				}
			}

			for _, id := range m.IDs() {
				for _, v := range ref.Field.Select(m[id]) {
					values, ok := referenceIDs(v)
					if !ok {
						out = append(out, diagnostic.Diagnostic{
							Kind: diagnostic.MalformedReference, Collection: c.ID, ID: id, Field: ref.Field.String(),
						})
					}
					for _, target := range values {
						if !targets[target] {
							out = append(out, diagnostic.Diagnostic{
								Kind:       diagnostic.DanglingReference,
								Collection: c.ID,
								ID:         id,
								Field:      ref.Field.String(),
								Value:      target,
							})
						}
					}
				}
			}
		}
	}
	return out
}

// referenceIDs normalises a reference value to a list of ids. ok is false
// when v, or an item of it, is not a string; the string items are still returned.
func referenceIDs(v record.Value) (ids []string, ok bool) {
	switch val := v.(type) {
	case record.Scalar:
		s, isString := val.V.(string)
		if !isString {
			return nil, false
		}
		return []string{s}, true
	case record.List:
		ok = true
		for _, item := range val {
			s, isScalar := item.(record.Scalar)
			if !isScalar {
				ok = false
				continue
			}
			str, isString := s.V.(string)
			if !isString {
				ok = false
				continue
			}
			ids = append(ids, str)
		}
		return ids, ok
	default:
		return nil, false
	}
}

func entityCollections(reg *registry.Registry) []*registry.Collection {
	var out []*registry.Collection
	for _, c := range reg.Collections() {
		if c.Kind == api.KindEntity {
			out = append(out, c)
		}
	}
	return out
}

func set(ss []string) map[string]bool {
	out := make(map[string]bool, len(ss))
	for _, s := range ss {
		out[s] = true
	}
	return out
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
