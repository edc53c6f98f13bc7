package langs

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"

	"github.com/lipu-linku/sona/internal/merge"
	"github.com/lipu-linku/sona/internal/record"
	"github.com/lipu-linku/sona/internal/registry"
)

// SchemaLiner renders the schema line of a new file.
// Implemented by schemas.Assigner.
type SchemaLiner interface {
	Line(c *registry.Collection, values map[string]string) (string, error)
}

// ResolveID returns the dataset id of l: the mapped two-letter code when the
// project maps l, else Crowdin's two-letter code.
func ResolveID(l TargetLanguage, mapping map[string]Mapping) string {
	if m, ok := mapping[l.ID]; ok {
		return m.TwoLettersCode
	}
	return l.TwoLettersCode
}

// Endonym returns the language's name for itself, or "" when unknown or
// identical to the English name.
func Endonym(id string) string {
	tag, err := language.Parse(id)
	if err != nil {
		return ""
	}
	self := display.Self.Name(tag)
	if self == "" || self == display.English.Tags().Name(tag) {
		return ""
	}
	return self
}

// Record builds the languages-collection record of l.
func Record(l TargetLanguage, mapping map[string]Mapping) (string, record.Map) {
	id := ResolveID(l, mapping)
	name := record.Map{"en": record.String(l.Name)}
	if e := Endonym(id); e != "" {
		name["endonym"] = record.String(e)
	}
	return id, record.Map{
		"id":        record.String(id),
		"locale":    record.String(l.Locale),
		"direction": record.String(l.TextDirection),
		"name":      name,
	}
}

// Updater merges fetched languages into the languages collection.
type Updater struct {
	Registry *registry.Registry
	Records  merge.RecordWriter
	Schemas  SchemaLiner
	Logger   *slog.Logger
}

// Apply writes one record per target language. Existing values win over
// fetched ones; files are written only when absent or changed. It returns the
// paths written.
func (u *Updater) Apply(p *Project) ([]string, error) {
	if u.Registry.Languages() == "" {
		return nil, errors.New("registry declares no languages collection")
	}
	c, err := u.Registry.Get(u.Registry.Languages())
	if err != nil {
		return nil, err
	}
	logger := u.Logger
	if logger == nil {
		logger = slog.Default()
	}

	var written []string
	for _, l := range p.TargetLanguages {
		id, fetched := Record(l, p.LanguageMapping)
		if id == "" {
			logger.Warn("skipping language without code", "crowdin_id", l.ID)
			continue
		}
		values := map[string]string{c.Key: id}
		path, err := c.Input.Substitute(values)
		if err != nil {
			return written, fmt.Errorf("language %s: %w", id, err)
		}

		existing, err := u.Records.Read(path)
		if err != nil {
			return written, err
		}
		merged := merge.DeepMerge(existing.Data, fetched, false)
		if existing.Exists && record.Equal(existing.Data, merged) {
			continue
		}

		schema := existing.Schema
		if schema == "" && c.Schema != nil && u.Schemas != nil {
			line, err := u.Schemas.Line(c, values)
			if err != nil {
				return written, err
			}
			schema = strings.TrimPrefix(line, record.SchemaPrefix)
		}

		if existing.Exists {
			logger.Info("merging language", "id", id)
		} else {
			logger.Info("adding language", "id", id)
		}
		if err := u.Records.Write(&record.Record{Path: path, Schema: schema, Data: merged}); err != nil {
			return written, fmt.Errorf("write %s: %w", path, err)
		}
		written = append(written, path)
	}
	return written, nil
}
