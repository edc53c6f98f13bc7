package store

import (
	"errors"
	"fmt"
	"os"
	"path"
	"strings"
	"sync"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"

	"github.com/lipu-linku/sona/internal/record"
	"github.com/lipu-linku/sona/internal/writeback"
)

// RecordStore reads TOML records and caches them by path.
// Records handed out are shared with the cache: callers must not mutate them.
type RecordStore struct {
	fs    billy.Filesystem
	mu    sync.Mutex
	cache map[string]*record.Record
}

// NewRecordStore returns an empty store reading from fs.
func NewRecordStore(fs billy.Filesystem) *RecordStore {
	return &RecordStore{fs: fs, cache: make(map[string]*record.Record)}
}

// Filesystem returns the underlying filesystem.
func (s *RecordStore) Filesystem() billy.Filesystem { return s.fs }

// Read returns the record at name. A missing file yields an empty record
// with Exists false; it is not cached.
func (s *RecordStore) Read(name string) (*record.Record, error) {
	name = path.Clean(name)

	s.mu.Lock()
	rec, ok := s.cache[name]
	s.mu.Unlock()
	if ok {
		return rec, nil
	}
	return s.load(name)
}

// Reload drops any cached copy of name and reads it again.
func (s *RecordStore) Reload(name string) (*record.Record, error) {
	name = path.Clean(name)
	s.invalidate(name)
	return s.load(name)
}

func (s *RecordStore) load(name string) (*record.Record, error) {
	content, err := util.ReadFile(s.fs, name)
	if errors.Is(err, os.ErrNotExist) {
		return record.Empty(name), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}
	rec, err := record.Parse(name, content)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.cache[name] = rec
	s.mu.Unlock()
	return rec, nil
}

// Write replaces rec's file. An existing file is edited in place so its
// comments and layout survive; a new file, or one whose layout cannot be
// edited in place, is encoded from scratch.
func (s *RecordStore) Write(rec *record.Record) error {
	name := path.Clean(rec.Path)
	content, err := s.render(name, rec)
	if err != nil {
		return err
	}
	if err := s.replace(name, content); err != nil {
		return err
	}
	stored := &record.Record{Path: name, Schema: rec.Schema, Data: rec.Data.Clone(), Exists: true}
	s.mu.Lock()
	s.cache[name] = stored
	s.mu.Unlock()
	return nil
}

func (s *RecordStore) render(name string, rec *record.Record) ([]byte, error) {
	current, err := util.ReadFile(s.fs, name)
	switch {
	case err == nil:
		if out, ok := spliced(name, current, rec); ok {
			return out, nil
		}
	case !errors.Is(err, os.ErrNotExist):
		return nil, fmt.Errorf("read %s: %w", name, err)
	}
	content, err := record.Encode(rec)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", name, err)
	}
	return content, nil
}

// spliced edits current towards rec. ok is false when the file cannot be
// edited in place.
func spliced(name string, current []byte, rec *record.Record) ([]byte, bool) {
	old, err := record.Parse(name, current)
	if err != nil || (rec.Schema == "" && old.Schema != "") {
		return nil, false
	}
	out, err := writeback.Splice(current, old.Data, rec.Data)
	if err != nil {
		return nil, false
	}
	if rec.Schema != old.Schema {
		out = writeback.SetSchemaLine(out, record.SchemaPrefix+rec.Schema)
	}
	return out, true
}

// WriteRaw atomically replaces name with content and drops any cached copy.
func (s *RecordStore) WriteRaw(name string, content []byte) error {
	name = path.Clean(name)
	if err := s.replace(name, content); err != nil {
		return err
	}
	s.invalidate(name)
	return nil
}

// replace writes content to name. TOML content must parse first.
func (s *RecordStore) replace(name string, content []byte) error {
	if strings.HasSuffix(name, ".toml") {
		if err := writeback.Validate(content, name); err != nil {
			return fmt.Errorf("refusing to write %s: %w", name, err)
		}
	}
	return writeback.AtomicWrite(s.fs, name, content)
}

// ReadRaw returns the bytes of name.
func (s *RecordStore) ReadRaw(name string) ([]byte, error) {
	return util.ReadFile(s.fs, path.Clean(name))
}

func (s *RecordStore) invalidate(name string) {
	s.mu.Lock()
	delete(s.cache, name)
	s.mu.Unlock()
}
