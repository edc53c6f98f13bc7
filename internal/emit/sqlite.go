package emit

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"fmt"
	"sort"

	_ "modernc.org/sqlite"

	"github.com/lipu-linku/sona/internal/ingest"
	"github.com/lipu-linku/sona/internal/record"
	"github.com/lipu-linku/sona/internal/registry"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS entities (
	collection TEXT NOT NULL,
	id TEXT NOT NULL,
	record JSON NOT NULL,
	PRIMARY KEY (collection, id)
) WITHOUT ROWID;

CREATE TABLE IF NOT EXISTS translations (
	collection TEXT NOT NULL,
	lang TEXT NOT NULL,
	id TEXT NOT NULL,
	record JSON NOT NULL,
	PRIMARY KEY (collection, lang, id)
) WITHOUT ROWID;
`

// SQLiteSink writes the snapshot into a SQLite database in one transaction.
type SQLiteSink struct {
	db        *sql.DB
	tx        *sql.Tx
	stmtRec   *sql.Stmt
	stmtTrans *sql.Stmt
}

// NewSQLiteSink creates (or reuses) the database at dbPath and initializes the schema.
func NewSQLiteSink(dbPath string) (*SQLiteSink, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", dbPath, err)
	}

	// Performance tuning for bulk insert
	if _, err := db.Exec("PRAGMA synchronous = OFF"); err != nil {
		_ = db.Close()
		return nil, err
	}
	if _, err := db.Exec("PRAGMA journal_mode = MEMORY"); err != nil {
		_ = db.Close()
		return nil, err
	}
	if _, err := db.Exec(sqliteSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	s := &SQLiteSink{db: db}
	if err := s.beginTx(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQLiteSink) beginTx() error {
	var err error
	if s.tx, err = s.db.Begin(); err != nil {
		return err
	}
	s.stmtRec, err = s.tx.Prepare(`INSERT OR REPLACE INTO entities (collection, id, record) VALUES (?, ?, ?)`)
	if err != nil {
		return err
	}
	s.stmtTrans, err = s.tx.Prepare(`INSERT OR REPLACE INTO translations (collection, lang, id, record) VALUES (?, ?, ?, ?)`)
	return err
}

// WriteEntities implements Sink.
func (s *SQLiteSink) WriteEntities(c *registry.Collection, m ingest.EntityMap) error {
	for _, id := range sortedKeys(m) {
		raw, err := Canonical(record.ToJSON(m[id]))
		if err != nil {
			return fmt.Errorf("%s/%s: %w", c.ID, id, err)
		}
		if _, err := s.stmtRec.Exec(c.ID, id, string(raw)); err != nil {
			return fmt.Errorf("insert %s/%s: %w", c.ID, id, err)
		}
	}
	return nil
}

// WriteLocales implements Sink.
func (s *SQLiteSink) WriteLocales(c *registry.Collection, m ingest.LocaleMap) error {
	for lang, byID := range m {
		for _, id := range sortedKeys(byID) {
			raw, err := Canonical(record.ToJSON(byID[id]))
			if err != nil {
				return fmt.Errorf("%s/%s/%s: %w", c.ID, lang, id, err)
			}
			if _, err := s.stmtTrans.Exec(c.ID, lang, id, string(raw)); err != nil {
				return fmt.Errorf("insert %s/%s/%s: %w", c.ID, lang, id, err)
			}
		}
	}
	return nil
}

// Close commits the transaction and closes the database.
func (s *SQLiteSink) Close() error {
	_ = s.stmtRec.Close()
	_ = s.stmtTrans.Close()
	if err := s.tx.Commit(); err != nil {
		_ = s.db.Close()
		return fmt.Errorf("commit: %w", err)
	}
	return s.db.Close()
}

// ReadSQLite reconstructs a snapshot from a database written by SQLiteSink.
// Values come back in their JSON form: dates as strings, integers as int64.
func ReadSQLite(dbPath string) (*ingest.Snapshot, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", dbPath, err)
	}
	defer func() { _ = db.Close() }() // safe to ignore

	snap := ingest.NewSnapshot()

	rows, err := db.Query("SELECT collection, id, record FROM entities")
	if err != nil {
		return nil, fmt.Errorf("query entities: %w", err)
	}
	defer func() { _ = rows.Close() }() // safe to ignore
	for rows.Next() {
		var coll, id, raw string
		if err := rows.Scan(&coll, &id, &raw); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		m, err := decodeRecord(raw)
		if err != nil {
			return nil, fmt.Errorf("%s/%s: %w", coll, id, err)
		}
		if snap.Entities[coll] == nil {
			snap.Entities[coll] = make(ingest.EntityMap)
		}
		snap.Entities[coll][id] = m
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}

	trows, err := db.Query("SELECT collection, lang, id, record FROM translations")
	if err != nil {
		return nil, fmt.Errorf("query translations: %w", err)
	}
	defer func() { _ = trows.Close() }() // safe to ignore
	for trows.Next() {
		var coll, lang, id, raw string
		if err := trows.Scan(&coll, &lang, &id, &raw); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		m, err := decodeRecord(raw)
		if err != nil {
			return nil, fmt.Errorf("%s/%s/%s: %w", coll, lang, id, err)
		}
		if snap.Locales[coll] == nil {
			snap.Locales[coll] = make(ingest.LocaleMap)
		}
		for field, v := range m {
			snap.Locales[coll].Set(lang, id, field, v)
		}
	}
	if err := trows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}
	return snap, nil
}

func decodeRecord(raw string) (record.Map, error) {
	dec := json.NewDecoder(bytes.NewReader([]byte(raw)))
	dec.UseNumber()
	var parsed map[string]any
	if err := dec.Decode(&parsed); err != nil {
		return nil, fmt.Errorf("parse record json: %w", err)
	}
	return record.MapFromAny(fromNumbers(parsed).(map[string]any))
}

// fromNumbers replaces json.Number with int64 or float64.
func fromNumbers(v any) any {
	switch val := v.(type) {
	case json.Number:
		if i, err := val.Int64(); err == nil {
			return i
		}
		f, _ := val.Float64()
		return f
	case map[string]any:
		for k, child := range val {
			val[k] = fromNumbers(child)
		}
		return val
	case []any:
		for i, child := range val {
			val[i] = fromNumbers(child)
		}
		return val
	default:
		return v
	}
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
