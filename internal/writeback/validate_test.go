package writeback

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate_ValidTOML(t *testing.T) {
	src := []byte(`#:schema ../../api/generated/v2/word.json
id = "toki"
see_also = ["pona"]

[usage]
"2023-09" = 100
`)
	assert.NoError(t, Validate(src, "words/metadata/toki.toml"))
	assert.Nil(t, ASTErrors(src, "words/metadata/toki.toml"))
}

func TestValidate_BrokenTOML(t *testing.T) {
	src := []byte(`id = "toki"
see_also = ["pona"
book = "pu"
`)
	err := Validate(src, "toki.toml")
	require.Error(t, err)

	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "toki.toml", ve.FilePath)
	assert.Contains(t, err.Error(), "toki.toml:")
}

func TestASTErrors_Collects(t *testing.T) {
	src := []byte(`a = 
b = "ok"
[broken
`)
	errs := ASTErrors(src, "x.toml")
	require.NotEmpty(t, errs)
	for _, e := range errs {
		assert.Equal(t, "x.toml", e.FilePath)
	}
}

func TestValidationError_Format(t *testing.T) {
	e := &ValidationError{FilePath: "a.toml", Line: 2, Column: 4, Message: "syntax error"}
	assert.Equal(t, "a.toml:3:5: syntax error", e.Error())
}
