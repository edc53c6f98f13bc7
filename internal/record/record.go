package record

import (
	"bytes"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/BurntSushi/toml"
)

// SchemaPrefix starts the optional first-line schema annotation of a record file.
const SchemaPrefix = "#:schema "

var schemaLineRe = regexp.MustCompile(`^#:schema .+$`)

// Record is one parsed record file.
type Record struct {
	// Path is the file path relative to the dataset root.
	Path string
	// Schema is the annotation target from the first line, without the prefix.
	Schema string
	Data   Map
	// Exists is false for the empty record standing in for a missing file.
	Exists bool
}

// Empty returns the record used for a file that does not exist yet.
func Empty(path string) *Record {
	return &Record{Path: path, Data: Map{}}
}

// ParseError is a record file that could not be decoded.
type ParseError struct {
	Path string
	Line int // 1-indexed, 0 when unknown
	Err  error
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s:%d: %v", e.Path, e.Line, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Path, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Parse decodes a TOML record file.
func Parse(path string, content []byte) (*Record, error) {
	rec := &Record{Path: path, Exists: true}
	if line, _, _ := strings.Cut(string(content), "\n"); schemaLineRe.MatchString(strings.TrimRight(line, "\r")) {
		rec.Schema = strings.TrimPrefix(strings.TrimRight(line, "\r"), SchemaPrefix)
	}

	var doc map[string]any
	if _, err := toml.NewDecoder(bytes.NewReader(content)).Decode(&doc); err != nil {
		pe := &ParseError{Path: path, Err: err}
		var tpe toml.ParseError
		if errors.As(err, &tpe) {
			pe.Line = errorLine(content, tpe.Position)
		}
		return nil, pe
	}
	data, err := MapFromAny(doc)
	if err != nil {
		return nil, &ParseError{Path: path, Err: err}
	}
	rec.Data = data
	return rec, nil
}

// errorLine returns the line of the last token at or before the decoder's
// error offset. The decoder counts a value cut short by a newline or by the
// end of input on a neighbouring line.
func errorLine(content []byte, pos toml.Position) int {
	if len(content) == 0 || pos.Start < 0 {
		return pos.Line
	}
	i := min(pos.Start, len(content)-1)
	for i > 0 && strings.ContainsRune(" \t\r\n", rune(content[i])) {
		i--
	}
	return bytes.Count(content[:i], []byte("\n")) + 1
}

// Encode renders rec as TOML with sorted keys, preceded by its schema line.
func Encode(rec *Record) ([]byte, error) {
	var buf bytes.Buffer
	if rec.Schema != "" {
		buf.WriteString(SchemaPrefix + rec.Schema + "\n")
	}
	var body bytes.Buffer
	enc := toml.NewEncoder(&body)
	enc.Indent = ""
	if err := enc.Encode(ToAny(rec.Data)); err != nil {
		return nil, fmt.Errorf("encode %s: %w", rec.Path, err)
	}
	buf.Write(bytes.TrimLeft(body.Bytes(), "\n"))
	return buf.Bytes(), nil
}
