package api

// Kind selects how a collection's files are aggregated.
type Kind string

const (
	// KindEntity aggregates one record per file into id → record.
	KindEntity Kind = "entity"
	// KindLocale aggregates per-field, per-language files into language → id → field → value.
	KindLocale Kind = "locale"
)

// File is the root of a collection registry document.
// It declares every collection of the dataset and how they relate.
type File struct {
	// Languages names the Entity collection whose ids are the known language codes.
	Languages string `hcl:"languages,optional"`
	// SchemaBase is the directory, relative to the dataset root, holding JSON schemas.
	SchemaBase string `hcl:"schema_base,optional"`
	// Singular overrides field-name singularization for Locale collections.
	Singular map[string]string `hcl:"singular,optional"`
	// Collections in declaration order.
	Collections []CollectionBlock `hcl:"collection,block"`
}

// CollectionBlock declares one collection.
type CollectionBlock struct {
	ID   string `hcl:"id,label"`
	Kind string `hcl:"kind"`
	// Input is the path template of the files making up the collection.
	Input string `hcl:"input"`
	// Output is the path template of the generated JSON artifact(s).
	Output string `hcl:"output"`
	// Source is the authoritative template translations are synced from (Locale only).
	Source string `hcl:"source,optional"`
	// Schema is the JSON schema file annotated into each record file. Can be a template.
	Schema string `hcl:"schema,optional"`
	// Translations names the Locale collection translating this one (Entity only).
	Translations string           `hcl:"translations,optional"`
	References   []ReferenceBlock `hcl:"reference,block"`
}

// ReferenceBlock declares a field whose values must be ids of other collections.
type ReferenceBlock struct {
	// Field is a plain field name, or a JSONPath expression when it starts with "$".
	Field string   `hcl:"field"`
	To    []string `hcl:"to"`
}
