package ingest

import (
	"github.com/lipu-linku/sona/internal/pattern"
	"github.com/lipu-linku/sona/internal/record"
)

// Finder lists the files matching a path template.
// Implemented by store.Locator.
type Finder interface {
	Find(t *pattern.Template) ([]string, error)
}

// Reader returns parsed record files.
// Implemented by store.RecordStore. A missing file yields a record with
// Exists false; a malformed one yields a *record.ParseError.
type Reader interface {
	Read(name string) (*record.Record, error)
}
