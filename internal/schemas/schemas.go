// Package schemas keeps the "#:schema" annotation of every record file
// pointing at its collection's JSON schema.
package schemas

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"path"
	"strings"

	"github.com/lipu-linku/sona/internal/ingest"
	"github.com/lipu-linku/sona/internal/record"
	"github.com/lipu-linku/sona/internal/registry"
	"github.com/lipu-linku/sona/internal/writeback"
)

// RawStore reads and atomically replaces file bytes.
// Implemented by store.RecordStore.
type RawStore interface {
	ReadRaw(name string) ([]byte, error)
	WriteRaw(name string, content []byte) error
}

// Assigner rewrites schema lines.
type Assigner struct {
	Registry *registry.Registry
	Finder   ingest.Finder
	Files    RawStore
	Logger   *slog.Logger
}

// NewAssigner wires an assigner.
func NewAssigner(reg *registry.Registry, finder ingest.Finder, files RawStore) *Assigner {
	return &Assigner{Registry: reg, Finder: finder, Files: files, Logger: slog.Default()}
}

// Line returns the schema line for a file of c whose path values are values.
func (a *Assigner) Line(c *registry.Collection, values map[string]string) (string, error) {
	schema, err := c.Schema.Substitute(values)
	if err != nil {
		return "", err
	}
	annotated := c.Annotated().String()
	prefix := strings.Repeat("../", strings.Count(annotated, "/"))
	return record.SchemaPrefix + prefix + path.Join(a.Registry.SchemaBase(), schema), nil
}

// AssignAll annotates every file of every collection that declares a schema.
// It returns the paths rewritten.
func (a *Assigner) AssignAll() ([]string, error) {
	var written []string
	for _, c := range a.Registry.Collections() {
		if c.Schema == nil {
			continue
		}
		w, err := a.Assign(c)
		if err != nil {
			return written, err
		}
		written = append(written, w...)
	}
	return written, nil
}

// Assign annotates every file of c. Files already carrying the right line
// are left alone, and files with syntax errors are logged and skipped.
func (a *Assigner) Assign(c *registry.Collection) ([]string, error) {
	if c.Schema == nil {
		return nil, nil
	}
	tmpl := c.Annotated()
	paths, err := a.Finder.Find(tmpl)
	if err != nil {
		return nil, fmt.Errorf("collection %s: %w", c.ID, err)
	}

	var written []string
	for _, p := range paths {
		values, err := tmpl.Extract(p)
		if err != nil {
			return written, err
		}
		line, err := a.Line(c, values)
		if err != nil {
			return written, fmt.Errorf("collection %s: %s: %w", c.ID, p, err)
		}

		content, err := a.Files.ReadRaw(p)
		if err != nil {
			return written, fmt.Errorf("read %s: %w", p, err)
		}
		updated := writeback.SetSchemaLine(content, line)
		if bytes.Equal(content, updated) {
			continue
		}
		if err := a.Files.WriteRaw(p, updated); err != nil {
			var ve *writeback.ValidationError
			if errors.As(err, &ve) {
				a.Logger.Warn("skipping file with syntax errors", "path", p, "err", ve)
				continue
			}
			return written, err
		}
		a.Logger.Info("updated schema line", "path", p, "schema", strings.TrimPrefix(line, record.SchemaPrefix))
		written = append(written, p)
	}
	return written, nil
}
