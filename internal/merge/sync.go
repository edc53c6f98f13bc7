package merge

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/lipu-linku/sona/internal/diagnostic"
	"github.com/lipu-linku/sona/internal/ingest"
	"github.com/lipu-linku/sona/internal/record"
	"github.com/lipu-linku/sona/internal/registry"
)

// RecordWriter reads and writes record files.
// Implemented by store.RecordStore.
type RecordWriter interface {
	ingest.Reader
	Write(rec *record.Record) error
}

// Syncer propagates source records into per-language translation files.
type Syncer struct {
	Registry *registry.Registry
	Finder   ingest.Finder
	Records  RecordWriter
	Report   *diagnostic.Report
	Logger   *slog.Logger
}

// NewSyncer wires a syncer with a fresh report.
func NewSyncer(reg *registry.Registry, finder ingest.Finder, records RecordWriter) *Syncer {
	return &Syncer{
		Registry: reg,
		Finder:   finder,
		Records:  records,
		Report:   &diagnostic.Report{},
		Logger:   slog.Default(),
	}
}

// SyncAll syncs every Locale collection that declares a source, for each of
// languages. It returns the paths written.
func (s *Syncer) SyncAll(languages []string) ([]string, error) {
	var written []string
	for _, c := range s.Registry.Collections() {
		if c.Source == nil {
			continue
		}
		w, err := s.Sync(c, languages)
		if err != nil {
			return written, err
		}
		written = append(written, w...)
	}
	return written, nil
}

// Sync brings every translation file of c in line with its source file.
// Each translation becomes RemoveOrphanedKeys(DeepMerge(tr, src, true), src),
// keeping its schema line, and is written only when absent or changed.
// Files that fail to parse are reported and left untouched.
func (s *Syncer) Sync(c *registry.Collection, languages []string) ([]string, error) {
	if c.Source == nil {
		return nil, fmt.Errorf("collection %s: no source template", c.ID)
	}
	sources, err := s.Finder.Find(c.Source)
	if err != nil {
		return nil, fmt.Errorf("collection %s: %w", c.ID, err)
	}

	var written []string
	for _, srcPath := range sources {
		values, err := c.Source.Extract(srcPath)
		if err != nil {
			s.Report.Add(diagnostic.Diagnostic{
				Kind: diagnostic.PathMismatch, Collection: c.ID, Path: srcPath, Detail: err.Error(),
			})
			continue
		}
		src, ok, err := s.read(c, srcPath)
		if err != nil {
			return written, err
		}
		if !ok {
			continue
		}

		for _, lang := range languages {
			trValues := make(map[string]string, len(values)+1)
			for k, v := range values {
				trValues[k] = v
			}
			trValues[c.Group] = lang
			trPath, err := c.Input.Substitute(trValues)
			if err != nil {
				return written, fmt.Errorf("collection %s: %w", c.ID, err)
			}

			changed, err := s.syncFile(c, src, trPath)
			if err != nil {
				return written, err
			}
			if changed {
				written = append(written, trPath)
			}
		}
	}
	return written, nil
}

func (s *Syncer) syncFile(c *registry.Collection, src *record.Record, trPath string) (bool, error) {
	tr, ok, err := s.read(c, trPath)
	if err != nil || !ok {
		return false, err
	}

	merged, orphans := RemoveOrphanedKeys(DeepMerge(tr.Data, src.Data, true), src.Data, "")
	for _, d := range orphans {
		d.Collection = c.ID
		d.Path = trPath + ": " + d.Path
		s.Logger.Info("removing orphaned key", "path", d.Path)
		s.Report.Add(d)
	}

	if tr.Exists && record.Equal(tr.Data, merged) {
		return false, nil
	}
	s.Logger.Info("syncing translation", "source", src.Path, "translation", trPath)
	if err := s.Records.Write(&record.Record{Path: trPath, Schema: tr.Schema, Data: merged}); err != nil {
		return false, fmt.Errorf("write %s: %w", trPath, err)
	}
	return true, nil
}

// read returns the record at p; ok is false when it failed to parse.
func (s *Syncer) read(c *registry.Collection, p string) (*record.Record, bool, error) {
	rec, err := s.Records.Read(p)
	var pe *record.ParseError
	if errors.As(err, &pe) {
		s.Logger.Warn("skipping unparsable file", "path", p, "err", pe)
		s.Report.Add(diagnostic.Diagnostic{
			Kind: diagnostic.ParseError, Collection: c.ID, Path: p, Detail: pe.Err.Error(),
		})
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return rec, true, nil
}
