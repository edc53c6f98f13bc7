package writeback

import (
	"bytes"
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	sitter "github.com/smacker/go-tree-sitter"

	"github.com/lipu-linku/sona/internal/record"
)

// ErrUnsupportedLayout is returned by Splice when the document uses a layout
// that byte-range edits do not handle: dotted keys, nested table headers or
// arrays of tables.
var ErrUnsupportedLayout = errors.New("layout not supported for in-place edit")

var bareKeyRe = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// Splice rewrites content, which decodes to have, so that it decodes to want.
// Untouched keys keep their text, comments and position. Removed keys lose
// their whole line, changed values are replaced where they stand and new
// keys are appended after the last key of their table.
func Splice(content []byte, have, want record.Map) ([]byte, error) {
	root, err := parse(content, "")
	if err != nil {
		return nil, err
	}
	if root.HasError() {
		return nil, fmt.Errorf("document has syntax errors: %w", ErrUnsupportedLayout)
	}

	s := &splicer{content: content}
	sec, err := s.rootSection(root)
	if err != nil {
		return nil, err
	}
	if err := s.diff(sec, have, want); err != nil {
		return nil, err
	}
	out := s.apply()

	got, err := record.Parse("", out)
	if err != nil {
		return nil, fmt.Errorf("spliced document: %w", err)
	}
	if !record.Equal(got.Data, want) {
		return nil, fmt.Errorf("spliced document diverges from the target: %w", ErrUnsupportedLayout)
	}
	return out, nil
}

// edit replaces content[start:end] with text. Insertions have start == end.
type edit struct {
	start, end int
	text       string
}

// section is the run of key/value pairs belonging to one table.
type section struct {
	pairs  map[string]*sitter.Node
	tables map[string]*sitter.Node // root only
	insert int                     // where new pairs go
}

type splicer struct {
	content []byte
	edits   []edit
}

func (s *splicer) rootSection(doc *sitter.Node) (*section, error) {
	sec := &section{pairs: map[string]*sitter.Node{}, tables: map[string]*sitter.Node{}, insert: -1}
	firstTable := -1
	for i := 0; i < int(doc.NamedChildCount()); i++ {
		n := doc.NamedChild(i)
		switch n.Type() {
		case "pair":
			key, err := s.pairKey(n)
			if err != nil {
				return nil, err
			}
			sec.pairs[key] = n
			sec.insert = s.lineEnd(int(n.EndByte()))
		case "table":
			key, err := s.key(n.NamedChild(0))
			if err != nil {
				return nil, err
			}
			sec.tables[key] = n
			if firstTable < 0 {
				firstTable = s.lineStart(int(n.StartByte()))
			}
		case "comment":
		default:
			return nil, fmt.Errorf("%s: %w", n.Type(), ErrUnsupportedLayout)
		}
	}
	if sec.insert < 0 {
		sec.insert = len(s.content)
		if firstTable >= 0 {
			sec.insert = firstTable
		}
	}
	return sec, nil
}

func (s *splicer) tableSection(table *sitter.Node) (*section, error) {
	sec := &section{pairs: map[string]*sitter.Node{}, insert: -1}
	for i := 0; i < int(table.ChildCount()); i++ {
		if c := table.Child(i); c.Type() == "]" {
			sec.insert = s.lineEnd(int(c.EndByte()))
			break
		}
	}
	for i := 1; i < int(table.NamedChildCount()); i++ {
		n := table.NamedChild(i)
		if n.Type() != "pair" {
			continue
		}
		key, err := s.pairKey(n)
		if err != nil {
			return nil, err
		}
		sec.pairs[key] = n
		sec.insert = s.lineEnd(int(n.EndByte()))
	}
	if sec.insert < 0 {
		return nil, fmt.Errorf("table header: %w", ErrUnsupportedLayout)
	}
	return sec, nil
}

// diff queues the edits turning have into want within sec.
func (s *splicer) diff(sec *section, have, want record.Map) error {
	for _, k := range have.Keys() {
		wv, keep := want[k]
		if pair, ok := sec.pairs[k]; ok {
			switch {
			case !keep:
				s.remove(pair)
			case !record.Equal(have[k], wv):
				value := pairValue(pair)
				text, err := Inline(wv)
				if err != nil {
					return err
				}
				s.edits = append(s.edits, edit{start: int(value.StartByte()), end: int(value.EndByte()), text: text})
			}
			continue
		}
		table, ok := sec.tables[k]
		if !ok {
			return fmt.Errorf("key %q: %w", k, ErrUnsupportedLayout)
		}
		if !keep {
			s.remove(table)
			continue
		}
		if record.Equal(have[k], wv) {
			continue
		}
		hm, hIsMap := have[k].(record.Map)
		wm, wIsMap := wv.(record.Map)
		if !hIsMap || !wIsMap {
			return fmt.Errorf("table %q: %w", k, ErrUnsupportedLayout)
		}
		sub, err := s.tableSection(table)
		if err != nil {
			return err
		}
		if err := s.diff(sub, hm, wm); err != nil {
			return err
		}
	}

	for _, k := range want.Keys() {
		if _, ok := have[k]; ok {
			continue
		}
		line, err := Line(k, want[k])
		if err != nil {
			return err
		}
		if sec.insert == len(s.content) && len(s.content) > 0 && s.content[len(s.content)-1] != '\n' {
			line = "\n" + line
		}
		s.edits = append(s.edits, edit{start: sec.insert, end: sec.insert, text: line})
	}
	return nil
}

// remove deletes n together with its line when nothing else shares it.
func (s *splicer) remove(n *sitter.Node) {
	start := int(n.StartByte())
	if ls := s.lineStart(start); len(bytes.TrimSpace(s.content[ls:start])) == 0 {
		start = ls
	}
	s.edits = append(s.edits, edit{start: start, end: s.lineEnd(int(n.EndByte()))})
}

func (s *splicer) apply() []byte {
	sort.SliceStable(s.edits, func(i, j int) bool {
		if s.edits[i].start != s.edits[j].start {
			return s.edits[i].start < s.edits[j].start
		}
		return s.edits[i].end < s.edits[j].end
	})
	var out bytes.Buffer
	last := 0
	for _, e := range s.edits {
		out.Write(s.content[last:e.start])
		out.WriteString(e.text)
		last = e.end
	}
	out.Write(s.content[last:])
	return out.Bytes()
}

func (s *splicer) lineStart(pos int) int {
	return bytes.LastIndexByte(s.content[:pos], '\n') + 1
}

// lineEnd returns the offset just past the newline ending the line at pos,
// when the rest of that line is blank or a comment. Otherwise pos.
func (s *splicer) lineEnd(pos int) int {
	if pos > 0 && s.content[pos-1] == '\n' {
		return pos
	}
	rest := s.content[pos:]
	nl := bytes.IndexByte(rest, '\n')
	if nl < 0 {
		nl = len(rest)
	} else {
		nl++
	}
	tail := bytes.TrimSpace(rest[:nl])
	if len(tail) == 0 || tail[0] == '#' {
		return pos + nl
	}
	return pos
}

func (s *splicer) pairKey(pair *sitter.Node) (string, error) {
	return s.key(pair.NamedChild(0))
}

func (s *splicer) key(n *sitter.Node) (string, error) {
	if n == nil {
		return "", ErrUnsupportedLayout
	}
	text := n.Content(s.content)
	switch n.Type() {
	case "bare_key":
		return text, nil
	case "quoted_key":
		if strings.HasPrefix(text, "'") {
			return strings.Trim(text, "'"), nil
		}
		k, err := strconv.Unquote(text)
		if err != nil {
			return "", fmt.Errorf("key %s: %w", text, ErrUnsupportedLayout)
		}
		return k, nil
	default:
		return "", fmt.Errorf("%s %s: %w", n.Type(), text, ErrUnsupportedLayout)
	}
}

// pairValue returns the value node of a pair, skipping a trailing comment.
func pairValue(pair *sitter.Node) *sitter.Node {
	var named []*sitter.Node
	for i := 0; i < int(pair.NamedChildCount()); i++ {
		if c := pair.NamedChild(i); c.Type() != "comment" {
			named = append(named, c)
		}
	}
	return named[len(named)-1]
}

// Line renders `key = value` followed by a newline, with maps as inline tables.
func Line(key string, v record.Value) (string, error) {
	k, err := keyText(key)
	if err != nil {
		return "", err
	}
	value, err := Inline(v)
	if err != nil {
		return "", err
	}
	return k + " = " + value + "\n", nil
}

// Inline renders v as a single-line TOML value.
func Inline(v record.Value) (string, error) {
	switch val := v.(type) {
	case record.Map:
		if len(val) == 0 {
			return "{}", nil
		}
		parts := make([]string, 0, len(val))
		for _, k := range val.Keys() {
			line, err := Line(k, val[k])
			if err != nil {
				return "", err
			}
			parts = append(parts, strings.TrimSuffix(line, "\n"))
		}
		return "{ " + strings.Join(parts, ", ") + " }", nil
	case record.List:
		parts := make([]string, 0, len(val))
		for _, item := range val {
			text, err := Inline(item)
			if err != nil {
				return "", err
			}
			parts = append(parts, text)
		}
		return "[" + strings.Join(parts, ", ") + "]", nil
	case record.Scalar:
		line, err := encodeLine("v", val.V)
		if err != nil {
			return "", err
		}
		return strings.TrimPrefix(line, "v = "), nil
	default:
		return "", fmt.Errorf("unsupported value %T", v)
	}
}

func keyText(key string) (string, error) {
	if bareKeyRe.MatchString(key) {
		return key, nil
	}
	line, err := encodeLine(key, true)
	if err != nil {
		return "", err
	}
	return strings.TrimSuffix(line, " = true"), nil
}

// encodeLine renders a single key/value pair with the TOML encoder, without the newline.
func encodeLine(key string, v any) (string, error) {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(map[string]any{key: v}); err != nil {
		return "", fmt.Errorf("encode %q: %w", key, err)
	}
	return strings.TrimSuffix(buf.String(), "\n"), nil
}
