package merge

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lipu-linku/sona/internal/diagnostic"
	"github.com/lipu-linku/sona/internal/record"
)

func TestDeepMerge_OverwriteEmptyAtEveryDepth(t *testing.T) {
	dst := record.Map{
		"commentary": record.Map{
			"a":    record.String(""),
			"keep": record.String("relu"),
			"deep": record.Map{"x": record.List{}, "y": record.String("ok")},
		},
	}
	src := record.Map{
		"commentary": record.Map{
			"a":    record.String("SRC"),
			"keep": record.String("source"),
			"deep": record.Map{"x": record.Strings("SRC"), "y": record.String("source")},
		},
	}

	assert.Equal(t, record.Map{
		"commentary": record.Map{
			"a":    record.String("SRC"),
			"keep": record.String("relu"),
			"deep": record.Map{"x": record.Strings("SRC"), "y": record.String("ok")},
		},
	}, DeepMerge(dst, src, true))

	assert.Equal(t, dst, DeepMerge(dst, src, false))
}

func TestDeepMerge(t *testing.T) {
	dst := record.Map{
		"toki": record.String("parole"),
		"pona": record.String(""),
		"nested": record.Map{
			"a": record.String("kept"),
			"b": record.String(""),
		},
	}
	src := record.Map{
		"toki": record.String("speech"),
		"pona": record.String("good"),
		"ike":  record.String("bad"),
		"nested": record.Map{
			"a": record.String("source a"),
			"b": record.String("source b"),
			"c": record.String("source c"),
		},
	}

	t.Run("keep empty", func(t *testing.T) {
		got := DeepMerge(dst, src, false)
		assert.Equal(t, record.Map{
			"toki": record.String("parole"),
			"pona": record.String(""),
			"ike":  record.String("bad"),
			"nested": record.Map{
				"a": record.String("kept"),
				"b": record.String(""),
				"c": record.String("source c"),
			},
		}, got)
	})

	t.Run("overwrite empty", func(t *testing.T) {
		got := DeepMerge(dst, src, true)
		assert.Equal(t, record.Map{
			"toki": record.String("parole"),
			"pona": record.String("good"),
			"ike":  record.String("bad"),
			"nested": record.Map{
				"a": record.String("kept"),
				"b": record.String("source b"),
				"c": record.String("source c"),
			},
		}, got)
	})

	t.Run("inputs untouched", func(t *testing.T) {
		before := dst.Clone()
		DeepMerge(dst, src, true)
		assert.Equal(t, before, dst)
	})
}

func TestDeepMerge_ConflictKeepsDst(t *testing.T) {
	dst := record.Map{"x": record.Map{"y": record.String("1")}, "n": record.Scalar{V: false}}
	src := record.Map{"x": record.String("flat"), "n": record.Scalar{V: true}}

	got := DeepMerge(dst, src, true)
	assert.Equal(t, dst, got)
}

func TestDeepMerge_Idempotent(t *testing.T) {
	dst := record.Map{"a": record.String("x"), "m": record.Map{"k": record.Strings("1")}}
	src := record.Map{"b": record.String("y"), "m": record.Map{"j": record.String("2")}}

	once := DeepMerge(dst, src, false)
	assert.Equal(t, once, DeepMerge(once, src, false))
	assert.Equal(t, src, DeepMerge(src, src, false))
}

func TestDeepMerge_NilDst(t *testing.T) {
	got := DeepMerge(nil, record.Map{"a": record.String("x")}, false)
	assert.Equal(t, record.Map{"a": record.String("x")}, got)
}

func TestRemoveOrphanedKeys(t *testing.T) {
	dst := record.Map{
		"toki": record.String("speech"),
		"old":  record.String("retired"),
		"nested": record.Map{
			"a":    record.String("x"),
			"gone": record.String("y"),
		},
		"leaf": record.Map{"inner": record.String("z")},
	}
	ref := record.Map{
		"toki":   record.String("different value"),
		"nested": record.Map{"a": record.String("")},
		"leaf":   record.String("not a map"),
	}

	got, diags := RemoveOrphanedKeys(dst, ref, "")
	assert.Equal(t, record.Map{
		"toki":   record.String("speech"),
		"nested": record.Map{"a": record.String("x")},
		"leaf":   record.Map{"inner": record.String("z")},
	}, got)

	paths := make([]string, 0, len(diags))
	for _, d := range diags {
		assert.Equal(t, diagnostic.OrphanedKey, d.Kind)
		paths = append(paths, d.Path)
	}
	assert.ElementsMatch(t, []string{"old", "nested.gone"}, paths)
}

func TestRemoveOrphanedKeys_Subset(t *testing.T) {
	dst := record.Map{
		"a": record.Map{"b": record.Map{"c": record.String("1"), "d": record.String("2")}, "e": record.String("3")},
		"f": record.String("4"),
	}
	ref := record.Map{"a": record.Map{"b": record.Map{"c": record.String("")}}}

	got, diags := RemoveOrphanedKeys(dst, ref, "pre.")
	require.Len(t, diags, 3)
	assert.Equal(t, "pre.a.b.d", findPath(diags, "d"))

	var check func(d, r record.Map)
	check = func(d, r record.Map) {
		for k, v := range d {
			rv, ok := r[k]
			require.True(t, ok, "key %q not in reference", k)
			dm, dIsMap := v.(record.Map)
			rm, rIsMap := rv.(record.Map)
			if dIsMap && rIsMap {
				check(dm, rm)
			}
		}
	}
	check(got, ref)
}

func findPath(diags []diagnostic.Diagnostic, suffix string) string {
	for _, d := range diags {
		if len(d.Path) >= len(suffix) && d.Path[len(d.Path)-len(suffix):] == suffix {
			return d.Path
		}
	}
	return ""
}
