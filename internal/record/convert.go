package record

import (
	"fmt"
	"time"
)

// FromAny converts a decoded document (maps, slices, scalars) into a Value.
func FromAny(v any) (Value, error) {
	switch val := v.(type) {
	case map[string]any:
		m := make(Map, len(val))
		for k, child := range val {
			cv, err := FromAny(child)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", k, err)
			}
			m[k] = cv
		}
		return m, nil
	case []map[string]any:
		l := make(List, len(val))
		for i, child := range val {
			cv, err := FromAny(child)
			if err != nil {
				return nil, fmt.Errorf("[%d]: %w", i, err)
			}
			l[i] = cv
		}
		return l, nil
	case []any:
		l := make(List, len(val))
		for i, child := range val {
			cv, err := FromAny(child)
			if err != nil {
				return nil, fmt.Errorf("[%d]: %w", i, err)
			}
			l[i] = cv
		}
		return l, nil
	case string, bool, int64, float64, time.Time:
		return Scalar{V: val}, nil
	case int:
		return Scalar{V: int64(val)}, nil
	case float32:
		return Scalar{V: float64(val)}, nil
	default:
		return nil, fmt.Errorf("unsupported value of type %T", v)
	}
}

// MapFromAny is FromAny for documents that must be tables.
func MapFromAny(v map[string]any) (Map, error) {
	out, err := FromAny(v)
	if err != nil {
		return nil, err
	}
	return out.(Map), nil
}

// ToAny converts v back into plain Go values, keeping native scalar types.
func ToAny(v Value) any {
	switch val := v.(type) {
	case Map:
		out := make(map[string]any, len(val))
		for k, child := range val {
			out[k] = ToAny(child)
		}
		return out
	case List:
		out := make([]any, len(val))
		for i, child := range val {
			out[i] = ToAny(child)
		}
		return out
	case Scalar:
		return val.V
	default:
		return nil
	}
}

// ToJSON converts v into values encoding/json can marshal. TOML dates and
// times become strings in their TOML spelling.
func ToJSON(v Value) any {
	switch val := v.(type) {
	case Map:
		out := make(map[string]any, len(val))
		for k, child := range val {
			out[k] = ToJSON(child)
		}
		return out
	case List:
		out := make([]any, len(val))
		for i, child := range val {
			out[i] = ToJSON(child)
		}
		return out
	case Scalar:
		if t, ok := val.V.(time.Time); ok {
			return formatTime(t)
		}
		return val.V
	default:
		return nil
	}
}

// formatTime spells t the way the TOML decoder found it. Local dates and
// times carry a fixed zone named after their TOML kind.
func formatTime(t time.Time) string {
	switch t.Location().String() {
	case "date-local":
		return t.Format("2006-01-02")
	case "time-local":
		return t.Format("15:04:05.999999999")
	case "datetime-local":
		return t.Format("2006-01-02T15:04:05.999999999")
	default:
		return t.Format(time.RFC3339Nano)
	}
}
