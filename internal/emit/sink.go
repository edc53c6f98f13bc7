package emit

import (
	"fmt"
	"log/slog"
	"sort"

	"github.com/go-git/go-billy/v5"

	"github.com/lipu-linku/sona/api"
	"github.com/lipu-linku/sona/internal/ingest"
	"github.com/lipu-linku/sona/internal/registry"
	"github.com/lipu-linku/sona/internal/writeback"
)

// Sink receives aggregated collections.
type Sink interface {
	WriteEntities(c *registry.Collection, m ingest.EntityMap) error
	WriteLocales(c *registry.Collection, m ingest.LocaleMap) error
	Close() error
}

// Package writes every collection of snap to each sink, in registry order.
// Sinks are closed before returning.
func Package(reg *registry.Registry, snap *ingest.Snapshot, sinks ...Sink) (err error) {
	defer func() {
		for _, s := range sinks {
			if cerr := s.Close(); cerr != nil && err == nil {
				err = cerr
			}
		}
	}()

	for _, c := range reg.Collections() {
		for _, s := range sinks {
			switch c.Kind {
			case api.KindEntity:
				m, ok := snap.Entities[c.ID]
				if !ok {
					continue
				}
				if err := s.WriteEntities(c, m); err != nil {
					return fmt.Errorf("package %s: %w", c.ID, err)
				}
			case api.KindLocale:
				m, ok := snap.Locales[c.ID]
				if !ok {
					continue
				}
				if err := s.WriteLocales(c, m); err != nil {
					return fmt.Errorf("package %s: %w", c.ID, err)
				}
			}
		}
	}
	return nil
}

// JSONSink writes one file per Entity collection and one per Locale group.
type JSONSink struct {
	fs     billy.Filesystem
	logger *slog.Logger
}

// NewJSONSink writes artifacts below the root of fs.
func NewJSONSink(fs billy.Filesystem, logger *slog.Logger) *JSONSink {
	if logger == nil {
		logger = slog.Default()
	}
	return &JSONSink{fs: fs, logger: logger}
}

// WriteEntities writes the collection to its output path.
func (s *JSONSink) WriteEntities(c *registry.Collection, m ingest.EntityMap) error {
	return s.write(c.Output.String(), Document(m))
}

// WriteLocales writes each group to the output template with the group substituted.
func (s *JSONSink) WriteLocales(c *registry.Collection, m ingest.LocaleMap) error {
	groups := make([]string, 0, len(m))
	for g := range m {
		groups = append(groups, g)
	}
	sort.Strings(groups)

	for _, g := range groups {
		name, err := c.Output.Substitute(map[string]string{c.Group: g})
		if err != nil {
			return err
		}
		if err := s.write(name, Document(m[g])); err != nil {
			return err
		}
	}
	return nil
}

func (s *JSONSink) write(name string, doc map[string]any) error {
	content, err := Canonical(doc)
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	if err := writeback.AtomicWrite(s.fs, name, content); err != nil {
		return err
	}
	s.logger.Info("wrote artifact", "path", name, "records", len(doc))
	return nil
}

// Close implements Sink.
func (s *JSONSink) Close() error { return nil }
