package pattern

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompile_ParamsInFirstAppearanceOrder(t *testing.T) {
	tmpl, err := Compile("words/translations/{langcode}/{field}.toml")
	require.NoError(t, err)
	assert.Equal(t, []string{"langcode", "field"}, tmpl.Params())
	assert.Equal(t, "words/translations/*/*.toml", tmpl.Glob())
	assert.Equal(t, "words/translations/{langcode}/{field}.toml", tmpl.String())
}

func TestCompile_Empty(t *testing.T) {
	_, err := Compile("")
	assert.Error(t, err)
}

func TestCompile_EscapesLiterals(t *testing.T) {
	tmpl := MustCompile("data.v2/[old]/{id}.toml")
	assert.Equal(t, `data.v2/\[old]/*.toml`, tmpl.Glob())

	_, err := tmpl.Extract("dataXv2/[old]/toki.toml")
	assert.Error(t, err, "dot must be literal")

	values, err := tmpl.Extract("data.v2/[old]/toki.toml")
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"id": "toki"}, values)
}

func TestExtract(t *testing.T) {
	tmpl := MustCompile("a/{x}/b/{y}.ext")

	t.Run("match", func(t *testing.T) {
		values, err := tmpl.Extract("a/one/b/two.ext")
		require.NoError(t, err)
		assert.Equal(t, map[string]string{"x": "one", "y": "two"}, values)
	})

	t.Run("placeholder does not cross separators", func(t *testing.T) {
		_, err := tmpl.Extract("a/one/two/b/three.ext")
		var mismatch *PathMismatchError
		require.ErrorAs(t, err, &mismatch)
		assert.Equal(t, "a/one/two/b/three.ext", mismatch.Path)
	})

	t.Run("anchored", func(t *testing.T) {
		_, err := tmpl.Extract("prefix/a/one/b/two.ext")
		assert.Error(t, err)
		_, err = tmpl.Extract("a/one/b/two.ext.bak")
		assert.Error(t, err)
	})

	t.Run("empty segment", func(t *testing.T) {
		_, err := tmpl.Extract("a//b/two.ext")
		assert.Error(t, err)
	})
}

func TestExtract_RepeatedPlaceholder(t *testing.T) {
	tmpl := MustCompile("{id}/{id}.toml")
	assert.Equal(t, []string{"id"}, tmpl.Params())

	values, err := tmpl.Extract("ni/ni.toml")
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"id": "ni"}, values)

	_, err = tmpl.Extract("ni/li.toml")
	assert.Error(t, err)
}

func TestExtract_NonASCII(t *testing.T) {
	tmpl := MustCompile("words/{id}.toml")
	values, err := tmpl.Extract("words/kijetesantakalu·ālo.toml")
	require.NoError(t, err)
	assert.Equal(t, "kijetesantakalu·ālo", values["id"])
}

func TestSubstitute(t *testing.T) {
	tmpl := MustCompile("translations/{langcode}/{field}.toml")

	got, err := tmpl.Substitute(map[string]string{"langcode": "fr", "field": "definitions", "extra": "x"})
	require.NoError(t, err)
	assert.Equal(t, "translations/fr/definitions.toml", got)

	_, err = tmpl.Substitute(map[string]string{"langcode": "fr"})
	var missing *MissingParamError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, "field", missing.Param)

	_, err = tmpl.Substitute(map[string]string{"langcode": "fr", "field": "a/b"})
	assert.ErrorIs(t, err, ErrInvalidValue)
}

func TestSubstituteExtractRoundTrip(t *testing.T) {
	tmpl := MustCompile("luka_pona/{kind}/translations/{langcode}/{field}.toml")
	values := map[string]string{"kind": "signs", "langcode": "tok", "field": "parameters"}
	path, err := tmpl.Substitute(values)
	require.NoError(t, err)
	back, err := tmpl.Extract(path)
	require.NoError(t, err)
	assert.Equal(t, values, back)
}

func TestSubstitute_NoParams(t *testing.T) {
	tmpl := MustCompile("words.json")
	got, err := tmpl.Substitute(nil)
	require.NoError(t, err)
	assert.Equal(t, "words.json", got)
}
