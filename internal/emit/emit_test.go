package emit

import (
	"math"
	"path/filepath"
	"testing"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lipu-linku/sona/internal/ingest"
	"github.com/lipu-linku/sona/internal/record"
	"github.com/lipu-linku/sona/internal/registry"
)

const testRegistry = `
collection "words" {
  kind   = "entity"
  input  = "words/metadata/{id}.toml"
  output = "words.json"
}

collection "words_locale" {
  kind   = "locale"
  input  = "words/translations/{langcode}/{field}.toml"
  output = "translations/{langcode}/words.json"
}
`

// localDate decodes a TOML local date the way record files carry it.
func localDate(s string) record.Value {
	rec, err := record.Parse("date.toml", []byte("d = "+s+"\n"))
	if err != nil {
		panic(err)
	}
	return rec.Data["d"]
}

func testSnapshot() *ingest.Snapshot {
	snap := ingest.NewSnapshot()
	snap.Entities["words"] = ingest.EntityMap{
		"toki": {
			"word":     record.String("toki"),
			"see_also": record.Strings("pona", "ike"),
			"usage":    record.Map{"2023-09": record.Scalar{V: int64(100)}},
			"creation": localDate("2001-08-08"),
		},
		"pona": {"word": record.String("pona"), "ratio": record.Scalar{V: 0.5}},
	}
	snap.Locales["words_locale"] = ingest.LocaleMap{
		"fr": {"toki": {"definition": record.String("parole & <langage>")}},
		"de": {"toki": {"definition": record.String("Sprache")}},
	}
	return snap
}

func TestCanonical(t *testing.T) {
	got, err := Canonical(map[string]any{
		"b": []any{int64(1), "é"},
		"a": map[string]any{"z": true, "y": "<&>"},
	})
	require.NoError(t, err)
	assert.Equal(t, `{"a":{"y":"<&>","z":true},"b":[1,"é"]}`, string(got))
}

func TestCanonical_NonFinite(t *testing.T) {
	_, err := Canonical(map[string]any{"a": map[string]any{"x": []any{math.NaN()}}})
	var nf *NonFiniteError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "$.a.x[0]", nf.Path)

	_, err = Canonical(map[string]any{"inf": math.Inf(1)})
	assert.ErrorAs(t, err, &nf)
}

func TestDocument_Dates(t *testing.T) {
	got, err := Canonical(Document(map[string]record.Map{
		"toki": {"creation": localDate("2001-08-08")},
	}))
	require.NoError(t, err)
	assert.Equal(t, `{"toki":{"creation":"2001-08-08"}}`, string(got))
}

func TestJSONSink(t *testing.T) {
	reg, err := registry.Parse("t.hcl", []byte(testRegistry))
	require.NoError(t, err)
	fs := memfs.New()

	require.NoError(t, Package(reg, testSnapshot(), NewJSONSink(fs, nil)))

	words, err := util.ReadFile(fs, "words.json")
	require.NoError(t, err)
	assert.Equal(t,
		`{"pona":{"ratio":0.5,"word":"pona"},"toki":{"creation":"2001-08-08","see_also":["pona","ike"],"usage":{"2023-09":100},"word":"toki"}}`,
		string(words))

	fr, err := util.ReadFile(fs, "translations/fr/words.json")
	require.NoError(t, err)
	assert.Equal(t, `{"toki":{"definition":"parole & <langage>"}}`, string(fr))

	_, err = fs.Stat("translations/de/words.json")
	assert.NoError(t, err)
}

func TestSQLiteRoundTrip(t *testing.T) {
	reg, err := registry.Parse("t.hcl", []byte(testRegistry))
	require.NoError(t, err)
	dbPath := filepath.Join(t.TempDir(), "sona.db")

	sink, err := NewSQLiteSink(dbPath)
	require.NoError(t, err)
	snap := testSnapshot()
	require.NoError(t, Package(reg, snap, sink))

	got, err := ReadSQLite(dbPath)
	require.NoError(t, err)

	// compare in JSON form: dates come back as strings
	for id := range snap.Entities {
		want, err := Canonical(Document(snap.Entities[id]))
		require.NoError(t, err)
		have, err := Canonical(Document(got.Entities[id]))
		require.NoError(t, err)
		assert.Equal(t, string(want), string(have), id)
	}
	require.Len(t, got.Locales["words_locale"], 2)
	for lang, byID := range snap.Locales["words_locale"] {
		assert.Equal(t, byID, got.Locales["words_locale"][lang])
	}
	assert.Equal(t, record.Scalar{V: int64(100)}, got.Entities["words"]["toki"]["usage"].(record.Map)["2023-09"])
}
