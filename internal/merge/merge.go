// Package merge pushes authoritative source records into derived translation
// records without clobbering translator edits, and prunes keys retired upstream.
package merge

import (
	"github.com/lipu-linku/sona/internal/diagnostic"
	"github.com/lipu-linku/sona/internal/record"
)

// DeepMerge returns dst with every key of src that dst lacks.
// A key present in both keeps dst's value, except that nested maps are
// merged recursively and, when overwriteEmpty is set, empty dst values are
// replaced. overwriteEmpty holds at every depth, so an empty value inside a
// nested map is replaced as well. Neither argument is modified.
func DeepMerge(dst, src record.Map, overwriteEmpty bool) record.Map {
	out := dst.Clone()
	if out == nil {
		out = record.Map{}
	}
	for k, sv := range src {
		dv, ok := out[k]
		switch {
		case !ok:
			out[k] = record.Clone(sv)
		case overwriteEmpty && record.IsEmpty(dv):
			out[k] = record.Clone(sv)
		default:
			dm, dIsMap := dv.(record.Map)
			sm, sIsMap := sv.(record.Map)
			if dIsMap && sIsMap {
				// Nested translations follow the same rule as top-level ones.
				out[k] = DeepMerge(dm, sm, overwriteEmpty)
			}
		}
	}
	return out
}

// RemoveOrphanedKeys returns dst without the keys absent from ref, at every
// level where both sides are maps. Each removed key yields an OrphanedKey
// diagnostic whose Path is prefix followed by the dotted key path.
func RemoveOrphanedKeys(dst, ref record.Map, prefix string) (record.Map, []diagnostic.Diagnostic) {
	out := make(record.Map, len(dst))
	var diags []diagnostic.Diagnostic

	for _, k := range dst.Keys() {
		dv := dst[k]
		rv, ok := ref[k]
		if !ok {
			diags = append(diags, diagnostic.Diagnostic{Kind: diagnostic.OrphanedKey, Path: prefix + k})
			continue
		}
		dm, dIsMap := dv.(record.Map)
		rm, rIsMap := rv.(record.Map)
		if dIsMap && rIsMap {
			pruned, sub := RemoveOrphanedKeys(dm, rm, prefix+k+".")
			out[k] = pruned
			diags = append(diags, sub...)
			continue
		}
		out[k] = record.Clone(dv)
	}
	return out, diags
}
