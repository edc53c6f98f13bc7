package writeback

import (
	"testing"

	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/go-git/go-billy/v5/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAtomicWrite_CreatesDirs(t *testing.T) {
	fs := memfs.New()
	require.NoError(t, AtomicWrite(fs, "a/b/c.toml", []byte("x = 1\n")))

	got, err := util.ReadFile(fs, "a/b/c.toml")
	require.NoError(t, err)
	assert.Equal(t, "x = 1\n", string(got))
}

func TestAtomicWrite_Replaces(t *testing.T) {
	fs := osfs.New(t.TempDir())
	require.NoError(t, util.WriteFile(fs, "f.toml", []byte("old"), 0o600))
	require.NoError(t, AtomicWrite(fs, "f.toml", []byte("new")))

	got, err := util.ReadFile(fs, "f.toml")
	require.NoError(t, err)
	assert.Equal(t, "new", string(got))

	info, err := fs.Stat("f.toml")
	require.NoError(t, err)
	assert.Equal(t, "-rw-------", info.Mode().Perm().String())

	// no temp files left behind
	entries, err := fs.ReadDir(".")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "f.toml", entries[0].Name())
}
