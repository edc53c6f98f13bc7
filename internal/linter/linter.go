// Package linter reports syntax errors in every TOML file of a dataset.
package linter

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"

	"github.com/lipu-linku/sona/internal/diagnostic"
	"github.com/lipu-linku/sona/internal/writeback"
)

// Finding is one syntax error.
type Finding struct {
	Path    string
	Line    uint32 // 0-indexed
	Column  uint32 // 0-indexed
	Message string
}

func (f Finding) String() string {
	return fmt.Sprintf("%s:%d:%d: %s", f.Path, f.Line+1, f.Column+1, f.Message)
}

// Diagnostic converts f into a ParseError diagnostic.
func (f Finding) Diagnostic() diagnostic.Diagnostic {
	return diagnostic.Diagnostic{
		Kind:   diagnostic.ParseError,
		Path:   f.Path,
		Detail: fmt.Sprintf("line %d, column %d: %s", f.Line+1, f.Column+1, f.Message),
	}
}

// LintFile checks one TOML document. Every tree-sitter ERROR or MISSING node
// is a finding; when the tree is clean the TOML decoder runs as well, which
// catches semantic errors such as duplicate keys.
func LintFile(content []byte, name string) []Finding {
	var out []Finding
	for _, ve := range writeback.ASTErrors(content, name) {
		out = append(out, Finding{Path: name, Line: ve.Line, Column: ve.Column, Message: ve.Message})
	}
	if len(out) > 0 {
		return out
	}

	var doc map[string]any
	if _, err := toml.Decode(string(content), &doc); err != nil {
		f := Finding{Path: name, Message: err.Error()}
		var pe toml.ParseError
		if errors.As(err, &pe) {
			f.Message = pe.Message
			if pe.Position.Line > 0 {
				f.Line = uint32(pe.Position.Line - 1)
			}
			f.Column = column(content, pe.Position.Start)
		}
		out = append(out, f)
	}
	return out
}

// column converts a byte offset into a 0-indexed column.
func column(content []byte, offset int) uint32 {
	if offset <= 0 || offset > len(content) {
		return 0
	}
	start := strings.LastIndexByte(string(content[:offset]), '\n') + 1
	return uint32(offset - start)
}

// Lint walks fs from its root and lints every *.toml file, skipping hidden
// directories. Findings are ordered by path.
func Lint(fs billy.Filesystem, logger *slog.Logger) ([]Finding, error) {
	if logger == nil {
		logger = slog.Default()
	}
	var paths []string
	err := util.Walk(fs, ".", func(p string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			if p != "." && strings.HasPrefix(info.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.HasSuffix(p, ".toml") {
			paths = append(paths, filepath.ToSlash(p))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk: %w", err)
	}
	sort.Strings(paths)

	var out []Finding
	for _, p := range paths {
		logger.Debug("checking", "path", p)
		content, err := util.ReadFile(fs, p)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", p, err)
		}
		out = append(out, LintFile(content, p)...)
	}
	return out, nil
}
