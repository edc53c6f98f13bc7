package linter

import (
	"testing"

	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lipu-linku/sona/internal/diagnostic"
)

func TestLintFile_Clean(t *testing.T) {
	assert.Empty(t, LintFile([]byte("#:schema x.json\nid = \"toki\"\n[usage]\n\"2023-09\" = 1\n"), "a.toml"))
}

func TestLintFile_SyntaxError(t *testing.T) {
	got := LintFile([]byte("id = \"toki\"\nsee_also = [\"a\"\n"), "a.toml")
	require.NotEmpty(t, got)
	assert.Equal(t, "a.toml", got[0].Path)
}

func TestLintFile_DuplicateKey(t *testing.T) {
	got := LintFile([]byte("id = \"a\"\nid = \"b\"\n"), "dup.toml")
	require.Len(t, got, 1)
	assert.Equal(t, uint32(1), got[0].Line)
	assert.Contains(t, got[0].String(), "dup.toml:2:")

	d := got[0].Diagnostic()
	assert.Equal(t, diagnostic.ParseError, d.Kind)
	assert.Equal(t, "dup.toml", d.Path)
}

func TestLint(t *testing.T) {
	fs := memfs.New()
	files := map[string]string{
		"words/metadata/toki.toml": "id = \"toki\"\n",
		"words/metadata/ike.toml":  "id = \n",
		"languages/fr.toml":        "a = 1\na = 2\n",
		"README.md":                "not toml = = =",
		".git/config.toml":         "broken = [",
	}
	for name, content := range files {
		require.NoError(t, util.WriteFile(fs, name, []byte(content), 0o644))
	}

	got, err := Lint(fs, nil)
	require.NoError(t, err)

	paths := map[string]bool{}
	for _, f := range got {
		paths[f.Path] = true
	}
	assert.Equal(t, map[string]bool{
		"languages/fr.toml":       true,
		"words/metadata/ike.toml": true,
	}, paths)
}
