package diagnostic

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDiagnosticString(t *testing.T) {
	d := Diagnostic{Kind: DanglingReference, Collection: "words", ID: "a", Field: "see_also", Value: "missing"}
	assert.Equal(t, "[DanglingReference] words (a) field 'see_also': 'missing'", d.String())

	d = Diagnostic{Kind: MissingTranslation, Collection: "words", ID: "toki", Lang: "fr"}
	assert.Equal(t, "[MissingTranslation] words (toki) [fr]", d.String())

	d = Diagnostic{Kind: ParseError, Path: "x.toml", Detail: "boom"}
	assert.Equal(t, "[ParseError] x.toml: boom", d.String())
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "OrphanedKey", OrphanedKey.String())
	assert.Equal(t, "Kind(99)", Kind(99).String())
}

func TestReport(t *testing.T) {
	var r Report
	assert.False(t, r.HasErrors())

	r.Add(Diagnostic{Kind: OrphanedKey, Path: "a.toml", Field: "x"})
	assert.False(t, r.HasErrors(), "orphaned keys are informational")
	assert.True(t, r.Has(OrphanedKey))

	var other Report
	other.Add(
		Diagnostic{Kind: MissingLanguage, Collection: "words_locale", Lang: "fr"},
		Diagnostic{Kind: DanglingReference, Collection: "words", ID: "b"},
	)
	r.Merge(&other)
	assert.Equal(t, 3, r.Len())
	assert.True(t, r.HasErrors())
	assert.Len(t, r.Errors(), 2)

	sorted := r.Sorted()
	assert.Equal(t, MissingLanguage, sorted[0].Kind)
	assert.Equal(t, OrphanedKey, sorted[2].Kind)
	assert.Equal(t, OrphanedKey, r.Items()[0].Kind, "Sorted must not reorder the report")
}
