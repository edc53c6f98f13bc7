// Package store finds and caches dataset files on a billy filesystem.
package store

import (
	"fmt"
	"path/filepath"
	"sort"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"

	"github.com/lipu-linku/sona/internal/pattern"
)

// Locator lists existing files matching a path template.
type Locator struct {
	fs billy.Filesystem
}

// NewLocator returns a Locator rooted at fs.
func NewLocator(fs billy.Filesystem) *Locator {
	return &Locator{fs: fs}
}

// Find returns every regular file matching t, as slash-separated paths
// relative to the root, sorted. A missing directory yields no paths.
func (l *Locator) Find(t *pattern.Template) ([]string, error) {
	matches, err := util.Glob(l.fs, t.Glob())
	if err != nil {
		return nil, fmt.Errorf("glob %s: %w", t, err)
	}
	paths := make([]string, 0, len(matches))
	for _, m := range matches {
		info, err := l.fs.Stat(m)
		if err != nil || info.IsDir() {
			continue
		}
		p := filepath.ToSlash(m)
		if !t.Regexp().MatchString(p) {
			continue
		}
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths, nil
}
