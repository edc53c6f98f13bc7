package ingest

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/lipu-linku/sona/internal/record"
)

// EntityMap is an aggregated Entity collection: entity id → record.
type EntityMap map[string]record.Map

// IDs returns the entity ids, sorted.
func (m EntityMap) IDs() []string {
	ids := make([]string, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// LocaleMap is an aggregated Locale collection: group → entity id → field → value.
type LocaleMap map[string]map[string]record.Map

// Set stores value at [group][id][field], creating intermediate maps.
func (m LocaleMap) Set(group, id, field string, value record.Value) {
	byID, ok := m[group]
	if !ok {
		byID = make(map[string]record.Map)
		m[group] = byID
	}
	fields, ok := byID[id]
	if !ok {
		fields = make(record.Map)
		byID[id] = fields
	}
	fields[field] = value
}

// Snapshot holds every aggregated collection of one run, keyed by collection id.
type Snapshot struct {
	Entities map[string]EntityMap
	Locales  map[string]LocaleMap
	// Duplicates lists every key collision seen while aggregating.
	Duplicates []*DuplicateKeyError
}

// NewSnapshot returns an empty snapshot.
func NewSnapshot() *Snapshot {
	return &Snapshot{
		Entities: make(map[string]EntityMap),
		Locales:  make(map[string]LocaleMap),
	}
}

// DuplicateKeyError reports files of one collection that map to the same key.
// The first path in byte order is the one kept.
type DuplicateKeyError struct {
	Collection string
	// Key is the entity id, or "group/field" for Locale collections.
	Key   string
	Paths []string
}

func (e *DuplicateKeyError) Error() string {
	return fmt.Sprintf("collection %q: key %q defined by %d files: %s",
		e.Collection, e.Key, len(e.Paths), strings.Join(e.Paths, ", "))
}

// DuplicateKeys extracts every *DuplicateKeyError joined into err.
func DuplicateKeys(err error) []*DuplicateKeyError {
	switch e := err.(type) {
	case nil:
		return nil
	case *DuplicateKeyError:
		return []*DuplicateKeyError{e}
	case interface{ Unwrap() []error }:
		var out []*DuplicateKeyError
		for _, inner := range e.Unwrap() {
			out = append(out, DuplicateKeys(inner)...)
		}
		return out
	}
	var dke *DuplicateKeyError
	if errors.As(err, &dke) {
		return []*DuplicateKeyError{dke}
	}
	return nil
}
