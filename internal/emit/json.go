// Package emit renders aggregated collections as generated artifacts:
// canonical JSON files and an optional SQLite database.
package emit

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"

	"github.com/lipu-linku/sona/internal/record"
)

// NonFiniteError reports a NaN or infinite number, which JSON cannot hold.
type NonFiniteError struct {
	Path string
}

func (e *NonFiniteError) Error() string {
	return fmt.Sprintf("non-finite number at %s", e.Path)
}

// Canonical encodes v as compact UTF-8 JSON with sorted keys and no HTML
// escaping. The output has no trailing newline.
func Canonical(v any) ([]byte, error) {
	if err := checkFinite(v, "$"); err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

// Document converts id → record into its JSON form.
func Document(m map[string]record.Map) map[string]any {
	out := make(map[string]any, len(m))
	for id, rec := range m {
		out[id] = record.ToJSON(rec)
	}
	return out
}

func checkFinite(v any, path string) error {
	switch val := v.(type) {
	case float64:
		if math.IsNaN(val) || math.IsInf(val, 0) {
			return &NonFiniteError{Path: path}
		}
	case float32:
		return checkFinite(float64(val), path)
	case map[string]any:
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			if err := checkFinite(val[k], path+"."+k); err != nil {
				return err
			}
		}
	case []any:
		for i, child := range val {
			if err := checkFinite(child, path+"["+strconv.Itoa(i)+"]"); err != nil {
				return err
			}
		}
	}
	return nil
}
