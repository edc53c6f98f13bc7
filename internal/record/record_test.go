package record

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const wordTOML = `#:schema ../../api/generated/v2/word.json
id = "toki"
see_also = ["toki pona", "ilo"]
usage_category = "core"
creation_date = 2001-08-01

[representations]
ligatures = ["toki"]
`

func TestParse(t *testing.T) {
	rec, err := Parse("words/metadata/toki.toml", []byte(wordTOML))
	require.NoError(t, err)

	assert.True(t, rec.Exists)
	assert.Equal(t, "../../api/generated/v2/word.json", rec.Schema)
	assert.Equal(t, String("toki"), rec.Data["id"])
	assert.Equal(t, Strings("toki pona", "ilo"), rec.Data["see_also"])
	assert.Equal(t, Map{"ligatures": Strings("toki")}, rec.Data["representations"])

	assert.Equal(t, "2001-08-01", ToJSON(rec.Data["creation_date"]))
}

func TestParse_NoSchemaLine(t *testing.T) {
	rec, err := Parse("a.toml", []byte("# just a comment\nx = 1\n"))
	require.NoError(t, err)
	assert.Empty(t, rec.Schema)
	assert.Equal(t, Scalar{V: int64(1)}, rec.Data["x"])
}

func TestParse_Error(t *testing.T) {
	_, err := Parse("broken.toml", []byte("a = 1\nb = \n"))
	var pe *ParseError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, "broken.toml", pe.Path)
	assert.Equal(t, 2, pe.Line)
	assert.Contains(t, pe.Error(), "broken.toml:2")

	_, err = Parse("broken.toml", []byte("a = 1\nb = "))
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, 2, pe.Line)
}

func TestToJSON_LocalTimes(t *testing.T) {
	rec, err := Parse("t.toml", []byte("d = 2001-08-01\nt = 07:32:00\ndt = 1979-05-27T07:32:00\nodt = 1979-05-27T07:32:00Z\n"))
	require.NoError(t, err)
	assert.Equal(t, "2001-08-01", ToJSON(rec.Data["d"]))
	assert.Equal(t, "07:32:00", ToJSON(rec.Data["t"]))
	assert.Equal(t, "1979-05-27T07:32:00", ToJSON(rec.Data["dt"]))
	assert.Equal(t, "1979-05-27T07:32:00Z", ToJSON(rec.Data["odt"]))
}

func TestParse_DuplicateKey(t *testing.T) {
	_, err := Parse("dup.toml", []byte("a = 1\na = 2\n"))
	assert.Error(t, err)
}

func TestEncode_SortedWithSchema(t *testing.T) {
	rec := &Record{
		Path:   "words/translations/fr/definitions.toml",
		Schema: "../../../api/generated/v2/locale.json",
		Data: Map{
			"toki": String("parler"),
			"ale":  String("tout"),
			"mi":   String("je"),
		},
	}
	out, err := Encode(rec)
	require.NoError(t, err)
	assert.Equal(t, "#:schema ../../../api/generated/v2/locale.json\nale = \"tout\"\nmi = \"je\"\ntoki = \"parler\"\n", string(out))
}

func TestEncodeParseRoundTrip(t *testing.T) {
	rec, err := Parse("w.toml", []byte(wordTOML))
	require.NoError(t, err)
	out, err := Encode(rec)
	require.NoError(t, err)
	back, err := Parse("w.toml", out)
	require.NoError(t, err)
	assert.True(t, Equal(rec.Data, back.Data))
	assert.Equal(t, rec.Schema, back.Schema)
}

func TestEmpty(t *testing.T) {
	rec := Empty("missing.toml")
	assert.False(t, rec.Exists)
	assert.NotNil(t, rec.Data)
	assert.Len(t, rec.Data, 0)
}
