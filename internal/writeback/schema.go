package writeback

import (
	"strings"

	"github.com/lipu-linku/sona/internal/record"
)

// SetSchemaLine makes line the first line of content, replacing an existing
// "#:schema" annotation. Line endings are normalised to "\n" and the result
// ends with exactly one newline.
func SetSchemaLine(content []byte, line string) []byte {
	text := strings.ReplaceAll(string(content), "\r\n", "\n")
	text = strings.TrimRight(text, "\n")

	var lines []string
	if text != "" {
		lines = strings.Split(text, "\n")
	}
	if len(lines) > 0 && strings.HasPrefix(lines[0], record.SchemaPrefix) {
		lines[0] = line
	} else {
		lines = append([]string{line}, lines...)
	}
	return []byte(strings.Join(lines, "\n") + "\n")
}
