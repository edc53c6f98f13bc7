package writeback

import (
	"context"
	"fmt"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/toml"
)

// ValidationError contains structured information about a syntax error.
type ValidationError struct {
	FilePath string
	Line     uint32 // 0-indexed
	Column   uint32 // 0-indexed
	Message  string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s:%d:%d: %s", e.FilePath, e.Line+1, e.Column+1, e.Message)
}

// Validate parses TOML content with tree-sitter and returns the first syntax
// error, or nil when the document is well formed.
func Validate(content []byte, filePath string) error {
	root, err := parse(content, filePath)
	if err != nil {
		return err
	}
	if !root.HasError() {
		return nil
	}

	if errNode := findFirstError(root); errNode != nil {
		return nodeError(errNode, filePath)
	}
	return &ValidationError{FilePath: filePath, Message: "AST contains errors"}
}

// ASTErrors returns every ERROR and MISSING node location in the content.
// Returns nil when the document is well formed.
func ASTErrors(content []byte, filePath string) []ValidationError {
	root, err := parse(content, filePath)
	if err != nil || !root.HasError() {
		return nil
	}

	var errs []ValidationError
	collectErrors(root, filePath, &errs)
	return errs
}

func parse(content []byte, filePath string) (*sitter.Node, error) {
	parser := sitter.NewParser()
	parser.SetLanguage(toml.GetLanguage())

	tree, err := parser.ParseCtx(context.Background(), nil, content)
	if err != nil {
		return nil, fmt.Errorf("tree-sitter parse failed for %s: %w", filePath, err)
	}
	root := tree.RootNode()
	if root == nil {
		return nil, fmt.Errorf("tree-sitter returned nil root for %s", filePath)
	}
	return root, nil
}

func nodeError(n *sitter.Node, filePath string) *ValidationError {
	msg := "syntax error"
	if n.IsMissing() {
		msg = fmt.Sprintf("missing %s", n.Type())
	}
	return &ValidationError{
		FilePath: filePath,
		Line:     n.StartPoint().Row,
		Column:   n.StartPoint().Column,
		Message:  msg,
	}
}

// findFirstError does a depth-first search for the first ERROR node.
func findFirstError(node *sitter.Node) *sitter.Node {
	if node.IsError() || node.IsMissing() {
		return node
	}
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		if child.HasError() || child.IsError() || child.IsMissing() {
			if found := findFirstError(child); found != nil {
				return found
			}
		}
	}
	return nil
}

func collectErrors(node *sitter.Node, filePath string, errs *[]ValidationError) {
	if node.IsError() || node.IsMissing() {
		*errs = append(*errs, *nodeError(node, filePath))
		return // don't recurse into error children
	}
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		if child.HasError() || child.IsError() || child.IsMissing() {
			collectErrors(child, filePath, errs)
		}
	}
}
