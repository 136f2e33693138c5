package parser

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
)

// isCommentNode reports whether a tree-sitter node type represents a comment, across the
// naming conventions the vendored grammars use.
func isCommentNode(nodeType string) bool {
	return strings.Contains(nodeType, "comment") ||
		nodeType == "line_comment" ||
		nodeType == "block_comment" ||
		nodeType == "documentation_comment"
}

// cleanComment strips comment syntax, leaving the prose.
func cleanComment(comment string) string {
	comment = strings.TrimSpace(comment)
	comment = strings.TrimPrefix(comment, "/**")
	comment = strings.TrimPrefix(comment, "/*")
	comment = strings.TrimSuffix(comment, "*/")

	lines := strings.Split(comment, "\n")
	var cleaned []string
	for _, line := range lines {
		line = strings.TrimSpace(line)
		for _, prefix := range []string{"///", "//!", "//", "*", "#", ";;", ";"} {
			line = strings.TrimPrefix(line, prefix)
		}
		line = strings.TrimSpace(line)
		if line != "" {
			cleaned = append(cleaned, line)
		}
	}
	return strings.Join(cleaned, " ")
}

// cleanDocstring strips quoting from a string-literal docstring.
func cleanDocstring(docstring string) string {
	docstring = strings.TrimSpace(docstring)
	docstring = strings.TrimPrefix(docstring, `"""`)
	docstring = strings.TrimSuffix(docstring, `"""`)
	docstring = strings.Trim(docstring, `"`)
	return strings.TrimSpace(docstring)
}

// docComment finds the comment immediately preceding a declaration node, or (for Python)
// the docstring inside its body block.
func docComment(node *sitter.Node, content []byte) string {
	if prev := node.PrevSibling(); prev != nil && isCommentNode(prev.Type()) {
		return cleanComment(string(content[prev.StartByte():prev.EndByte()]))
	}

	if node.Type() == "function_definition" || node.Type() == "class_definition" {
		for i := 0; i < int(node.ChildCount()); i++ {
			child := node.Child(i)
			if child.Type() != "block" || child.ChildCount() == 0 {
				continue
			}
			for j := 0; j < int(child.ChildCount()); j++ {
				stmt := child.Child(j)
				if stmt.Type() == "expression_statement" && stmt.ChildCount() > 0 {
					expr := stmt.Child(0)
					if expr.Type() == "string" {
						return cleanDocstring(string(content[expr.StartByte():expr.EndByte()]))
					}
				}
				break
			}
			break
		}
	}
	return ""
}

// knownAnnotationKeys mirrors the structured @semantic/@annotation comment fields the
// corpus already mines out of doc comments.
var knownAnnotationKeys = strSet(
	"id", "kind", "name", "summary", "responsibility", "inputs", "outputs",
	"side_effects", "calls", "called_by", "data_reads", "data_writes", "lifetime",
	"invariants", "error_handling", "thread_safety", "related_symbols", "tags",
	"description", "returns", "params", "throws", "see", "since", "deprecated",
	"author", "version",
)

// annotations parses any @semantic/@annotation block in the preceding comment or within
// the node's own text into a flat key-value map.
func annotations(node *sitter.Node, content []byte) map[string]string {
	out := make(map[string]string)

	if prev := node.PrevSibling(); prev != nil && isCommentNode(prev.Type()) {
		text := string(content[prev.StartByte():prev.EndByte()])
		if strings.Contains(text, "@semantic") || strings.Contains(text, "@annotation") {
			parseAnnotationBlock(text, out)
		}
	}

	nodeText := string(content[node.StartByte():node.EndByte()])
	if strings.Contains(nodeText, "@semantic") || strings.Contains(nodeText, "@annotation") {
		parseAnnotationBlock(nodeText, out)
	}

	return out
}

func parseAnnotationBlock(text string, out map[string]string) {
	var currentKey string
	var currentValue strings.Builder

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		for _, prefix := range []string{"/*", "*/", "*", "//", "#", ";"} {
			line = strings.TrimPrefix(line, prefix)
		}
		line = strings.TrimSpace(line)

		if idx := strings.Index(line, ":"); idx > 0 {
			key := strings.ToLower(strings.TrimSpace(line[:idx]))
			if knownAnnotationKeys[key] {
				if currentKey != "" {
					out[currentKey] = strings.TrimSpace(currentValue.String())
				}
				currentKey = key
				currentValue.Reset()
				currentValue.WriteString(strings.TrimSpace(line[idx+1:]))
				continue
			}
		}

		if currentKey != "" && line != "" && !strings.HasPrefix(line, "@") {
			if currentValue.Len() > 0 {
				currentValue.WriteString(" ")
			}
			currentValue.WriteString(line)
		}
	}

	if currentKey != "" {
		out[currentKey] = strings.TrimSpace(currentValue.String())
	}
}
