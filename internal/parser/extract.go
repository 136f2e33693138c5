package parser

import (
	"fmt"
	"strings"

	"github.com/heefoo/codeintel/internal/lang"
	sitter "github.com/smacker/go-tree-sitter"
)

// identifierTypes are the leaf node kinds that count as a use of an identifier across the
// vendored grammars, per SPEC_FULL §4.3's Reference rule.
var identifierTypes = strSet(
	"identifier", "type_identifier", "field_identifier", "property_identifier",
	"shorthand_property_identifier", "constant", "simple_identifier",
)

// walkCtx threads enclosing-scope state through the single recursive traversal: the
// qualified-name stack, the innermost enclosing declaration of any kind (for References),
// and the innermost enclosing function/method (for CallEdge callers).
type walkCtx struct {
	qualified     []string
	enclosingAny  string
	enclosingFunc string
}

func qualSeparator(l lang.Language) string {
	switch l {
	case lang.Rust, lang.CPP, lang.CSharp:
		return "::"
	default:
		return "."
	}
}

// Extract runs the single-tree-traversal visitor over a parsed file and accumulates its
// Symbols, References, CallEdges and ImportEdges.
func Extract(tree *Tree, filePath string, language lang.Language) *FileParse {
	fp := &FileParse{}

	switch tree.grammar {
	case gClojure:
		walkClojure(tree.Root, filePath, language, tree.Content, fp, walkCtx{})
	case gCommonLisp:
		walkCommonLisp(tree.Root, filePath, language, tree.Content, fp, walkCtx{})
	case gJulia:
		walkJulia(tree.Root, filePath, language, tree.Content, fp, walkCtx{})
	default:
		walk(tree.Root, filePath, language, tree.Content, specFor(tree.grammar), fp, walkCtx{})
	}

	return fp
}

func walk(node *sitter.Node, filePath string, language lang.Language, content []byte, spec *langSpec, fp *FileParse, ctx walkCtx) {
	if node == nil {
		return
	}
	nodeType := node.Type()
	if nodeType == "ERROR" {
		fp.HadErrors = true
	}

	if spec != nil {
		if rule, ok := spec.decls[nodeType]; ok {
			if sym, nameNode, newCtx, built := buildSymbol(node, filePath, language, content, nodeType, rule, ctx); built {
				fp.Symbols = append(fp.Symbols, sym)
				for i := 0; i < int(node.ChildCount()); i++ {
					child := node.Child(i)
					if child == nameNode {
						continue
					}
					walk(child, filePath, language, content, spec, fp, newCtx)
				}
				return
			}
		}

		if spec.callTypes[nodeType] {
			handleCall(node, filePath, content, fp, ctx)
			for i := 0; i < int(node.ChildCount()); i++ {
				walk(node.Child(i), filePath, language, content, spec, fp, ctx)
			}
			return
		}

		if spec.importTypes[nodeType] {
			handleImport(node, filePath, content, fp)
			for i := 0; i < int(node.ChildCount()); i++ {
				walk(node.Child(i), filePath, language, content, spec, fp, ctx)
			}
			return
		}
	} else if strings.Contains(nodeType, "function") || strings.Contains(nodeType, "method") {
		// Generic fallback for a grammar with no visitor table at all.
		name := getField(node, "name", content)
		if name == "" {
			name = fmt.Sprintf("<closure@%d>", node.StartPoint().Row+1)
		}
		fp.Symbols = append(fp.Symbols, Symbol{
			ID:            SymbolID(filePath, name, name, int(node.StartPoint().Row)+1),
			Name:          name,
			Kind:          lang.KindFunction,
			Language:      language,
			FilePath:      filePath,
			StartLine:     int(node.StartPoint().Row) + 1,
			EndLine:       int(node.EndPoint().Row) + 1,
			QualifiedName: name,
		})
	}

	if identifierTypes[nodeType] {
		fp.References = append(fp.References, Reference{
			Name:               string(content[node.StartByte():node.EndByte()]),
			FilePath:           filePath,
			Line:               int(node.StartPoint().Row) + 1,
			ContainingSymbolID: ctx.enclosingAny,
		})
	}

	for i := 0; i < int(node.ChildCount()); i++ {
		walk(node.Child(i), filePath, language, content, spec, fp, ctx)
	}
}

// buildSymbol extracts a Symbol for a matched declaration node, returning the name-field
// node so the caller can avoid double-counting it as a Reference, and the context nested
// code should see (qualified-name scope pushed, enclosing pointers updated).
func buildSymbol(node *sitter.Node, filePath string, language lang.Language, content []byte, nodeType string, rule declRule, ctx walkCtx) (Symbol, *sitter.Node, walkCtx, bool) {
	startLine := int(node.StartPoint().Row) + 1
	endLine := int(node.EndPoint().Row) + 1

	var nameNode *sitter.Node
	name := ""
	if rule.nameField != "" {
		nameNode = node.ChildByFieldName(rule.nameField)
		if nameNode != nil {
			name = string(content[nameNode.StartByte():nameNode.EndByte()])
		}
	}

	kind := rule.kind

	// Go's type_spec is refined by its "type" child: struct, interface, or type_alias for any
	// other type. `type X = Y` aliases are a separate type_alias node with their own rule.
	if nodeType == "type_spec" {
		if typeNode := node.ChildByFieldName("type"); typeNode != nil {
			switch typeNode.Type() {
			case "struct_type":
				kind = lang.KindStruct
			case "interface_type":
				kind = lang.KindInterface
			default:
				kind = lang.KindTypeAlias
			}
		}
	}

	// C function_definition's name lives inside a (possibly pointer-wrapped) declarator.
	if name == "" {
		if declarator := node.ChildByFieldName("declarator"); declarator != nil {
			name = extractFunctionName(declarator, content)
		}
	}

	if name == "" && (kind == lang.KindFunction || kind == lang.KindMethod) {
		name = fmt.Sprintf("<closure@%d>", startLine)
	}

	if name == "" {
		return Symbol{}, nil, ctx, false
	}

	displayName := name
	if rule.receiverField != "" {
		if recvNode := node.ChildByFieldName(rule.receiverField); recvNode != nil {
			if receiver := extractReceiverType(recvNode, content); receiver != "" {
				displayName = receiver + "." + name
			}
		}
	}

	qualified := displayName
	if len(ctx.qualified) > 0 {
		qualified = strings.Join(ctx.qualified, qualSeparator(language)) + qualSeparator(language) + displayName
	}

	sym := Symbol{
		ID:            SymbolID(filePath, qualified, displayName, startLine),
		Name:          displayName,
		Kind:          kind,
		Language:      language,
		FilePath:      filePath,
		StartLine:     startLine,
		EndLine:       endLine,
		QualifiedName: qualified,
		DocComment:    combinedDoc(node, content),
	}
	if kind == lang.KindFunction || kind == lang.KindMethod {
		sym.Signature = firstLine(string(content[node.StartByte():node.EndByte()]))
	}

	newCtx := ctx
	newCtx.enclosingAny = sym.ID
	if kind == lang.KindFunction || kind == lang.KindMethod {
		newCtx.enclosingFunc = sym.ID
	}
	if rule.isNamespace {
		newCtx.qualified = append(append([]string{}, ctx.qualified...), name)
	}

	return sym, nameNode, newCtx, true
}

func combinedDoc(node *sitter.Node, content []byte) string {
	doc := docComment(node, content)
	ann := annotations(node, content)
	if len(ann) == 0 {
		return doc
	}
	var b strings.Builder
	b.WriteString(doc)
	for _, key := range []string{"summary", "responsibility", "side_effects", "invariants"} {
		if v, ok := ann[key]; ok && v != "" {
			if b.Len() > 0 {
				b.WriteString(" ")
			}
			b.WriteString(key)
			b.WriteString(": ")
			b.WriteString(v)
		}
	}
	return strings.TrimSpace(b.String())
}

func firstLine(s string) string {
	if idx := strings.IndexByte(s, '\n'); idx >= 0 {
		return strings.TrimSpace(s[:idx])
	}
	return strings.TrimSpace(s)
}

func handleCall(node *sitter.Node, filePath string, content []byte, fp *FileParse, ctx walkCtx) {
	if ctx.enclosingFunc == "" {
		return
	}
	callee := extractCalleeName(node, content)
	if callee == "" {
		return
	}
	fp.Calls = append(fp.Calls, CallEdge{
		CallerSymbolID: ctx.enclosingFunc,
		CalleeName:     callee,
		FilePath:       filePath,
		Line:           int(node.StartPoint().Row) + 1,
	})
}

func handleImport(node *sitter.Node, filePath string, content []byte, fp *FileParse) {
	module := extractImportTarget(node, content)
	if module == "" {
		return
	}
	fp.Imports = append(fp.Imports, ImportEdge{
		SourceFilePath: filePath,
		ImportedModule: module,
	})
}

func getField(node *sitter.Node, field string, content []byte) string {
	if child := node.ChildByFieldName(field); child != nil {
		return string(content[child.StartByte():child.EndByte()])
	}
	return ""
}

// extractFunctionName unwraps pointer/function declarators to find the innermost name,
// the shape C-family grammars use for a function's declarator field.
func extractFunctionName(node *sitter.Node, content []byte) string {
	switch node.Type() {
	case "identifier":
		return string(content[node.StartByte():node.EndByte()])
	case "function_declarator", "pointer_declarator":
		if declarator := node.ChildByFieldName("declarator"); declarator != nil {
			return extractFunctionName(declarator, content)
		}
	}
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		if child.Type() == "identifier" {
			return string(content[child.StartByte():child.EndByte()])
		}
		if name := extractFunctionName(child, content); name != "" {
			return name
		}
	}
	return ""
}

// extractReceiverType pulls the bare type name out of a Go method receiver parameter.
func extractReceiverType(node *sitter.Node, content []byte) string {
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		if child.Type() != "parameter_declaration" {
			continue
		}
		if typeNode := child.ChildByFieldName("type"); typeNode != nil {
			return extractTypeName(typeNode, content)
		}
	}
	return ""
}

func extractTypeName(node *sitter.Node, content []byte) string {
	switch node.Type() {
	case "type_identifier", "identifier":
		return string(content[node.StartByte():node.EndByte()])
	case "pointer_type":
		for i := 0; i < int(node.ChildCount()); i++ {
			if child := node.Child(i); child.Type() == "type_identifier" {
				return string(content[child.StartByte():child.EndByte()])
			}
		}
	case "generic_type":
		if nameNode := node.ChildByFieldName("type"); nameNode != nil {
			return extractTypeName(nameNode, content)
		}
	}
	return ""
}

// extractCalleeName extracts the name of the function being called: the right-most
// identifier for attribute/method/scoped calls (SPEC_FULL §4.3), the bare name for direct
// calls.
func extractCalleeName(node *sitter.Node, content []byte) string {
	for _, field := range []string{"function", "name", "method"} {
		if child := node.ChildByFieldName(field); child != nil {
			return extractIdentifier(child, content)
		}
	}
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		switch child.Type() {
		case "identifier":
			return string(content[child.StartByte():child.EndByte()])
		case "attribute", "selector_expression", "member_expression", "field_expression",
			"scoped_identifier", "qualified_identifier":
			return extractIdentifier(child, content)
		}
	}
	return ""
}

// extractIdentifier returns the right-most identifier of node: its own text if node is
// already a leaf identifier, otherwise the trailing member/field/attribute/name of a
// selector-shaped node, never the receiver or package qualifier.
func extractIdentifier(node *sitter.Node, content []byte) string {
	if node == nil {
		return ""
	}
	if identifierTypes[node.Type()] {
		return string(content[node.StartByte():node.EndByte()])
	}
	switch node.Type() {
	case "attribute", "selector_expression", "member_expression", "field_expression",
		"scoped_identifier", "qualified_identifier":
		for _, field := range []string{"attribute", "property", "field", "name"} {
			if child := node.ChildByFieldName(field); child != nil {
				return extractIdentifier(child, content)
			}
		}
		for i := int(node.ChildCount()) - 1; i >= 0; i-- {
			if child := node.Child(i); identifierTypes[child.Type()] {
				return extractIdentifier(child, content)
			}
		}
	default:
		for i := 0; i < int(node.ChildCount()); i++ {
			if child := node.Child(i); identifierTypes[child.Type()] {
				return extractIdentifier(child, content)
			}
		}
	}
	return ""
}

// extractImportTarget pulls the imported module/path string out of an import-shaped node:
// its path, module_name or name field, the first Go import_spec inside it, or its first
// string-literal child. Returns "" when none of these is present.
func extractImportTarget(node *sitter.Node, content []byte) string {
	for _, field := range []string{"path", "module_name", "name"} {
		if fieldNode := node.ChildByFieldName(field); fieldNode != nil {
			return strings.Trim(string(content[fieldNode.StartByte():fieldNode.EndByte()]), "\"'`")
		}
	}
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		switch child.Type() {
		case "interpreted_string_literal", "string", "string_literal":
			return strings.Trim(string(content[child.StartByte():child.EndByte()]), "\"'`")
		case "import_spec", "import_spec_list":
			if target := extractImportTarget(child, content); target != "" {
				return target
			}
		}
	}
	return ""
}
