package parser

import (
	"strings"

	"github.com/heefoo/codeintel/internal/lang"
	sitter "github.com/smacker/go-tree-sitter"
)

// walkJulia extracts symbols from the vendored Julia grammar. Functions can name
// themselves either via a "name" field or, for the `function foo(x) ... end` form, via a
// call_expression nested inside a signature node, so it gets its own small walker rather
// than a flat declRule table entry.
func walkJulia(node *sitter.Node, filePath string, language lang.Language, content []byte, fp *FileParse, ctx walkCtx) {
	if node == nil {
		return
	}

	switch node.Type() {
	case "function_definition", "short_function_definition":
		name := juliaFunctionDeclName(node, content)
		if name != "" {
			startLine := int(node.StartPoint().Row) + 1
			endLine := int(node.EndPoint().Row) + 1
			qualified := name
			if len(ctx.qualified) > 0 {
				qualified = strings.Join(ctx.qualified, ".") + "." + name
			}
			sym := Symbol{
				ID:            SymbolID(filePath, qualified, name, startLine),
				Name:          name,
				Kind:          lang.KindFunction,
				Language:      language,
				FilePath:      filePath,
				StartLine:     startLine,
				EndLine:       endLine,
				QualifiedName: qualified,
				DocComment:    docComment(node, content),
			}
			fp.Symbols = append(fp.Symbols, sym)
			newCtx := ctx
			newCtx.enclosingAny = sym.ID
			newCtx.enclosingFunc = sym.ID
			for i := 0; i < int(node.ChildCount()); i++ {
				walkJulia(node.Child(i), filePath, language, content, fp, newCtx)
			}
			return
		}

	case "macro_definition":
		if name := getField(node, "name", content); name != "" {
			startLine := int(node.StartPoint().Row) + 1
			sym := Symbol{
				ID:         SymbolID(filePath, name, name, startLine),
				Name:       name,
				Kind:       lang.KindMacro,
				Language:   language,
				FilePath:   filePath,
				StartLine:  startLine,
				EndLine:    int(node.EndPoint().Row) + 1,
				Signature:  "macro",
				DocComment: docComment(node, content),
			}
			fp.Symbols = append(fp.Symbols, sym)
			newCtx := ctx
			newCtx.enclosingAny = sym.ID
			newCtx.enclosingFunc = sym.ID
			for i := 0; i < int(node.ChildCount()); i++ {
				walkJulia(node.Child(i), filePath, language, content, fp, newCtx)
			}
			return
		}

	case "struct_definition":
		if name := getField(node, "name", content); name != "" {
			appendJuliaNamespaceSymbol(node, filePath, language, content, fp, ctx, name, lang.KindStruct)
			return
		}

	case "abstract_definition":
		if name := getField(node, "name", content); name != "" {
			appendJuliaNamespaceSymbol(node, filePath, language, content, fp, ctx, name, lang.KindInterface)
			return
		}

	case "module_definition":
		if name := getField(node, "name", content); name != "" {
			newCtx := appendJuliaNamespaceSymbol(node, filePath, language, content, fp, ctx, name, lang.KindModule)
			for i := 0; i < int(node.ChildCount()); i++ {
				walkJulia(node.Child(i), filePath, language, content, fp, newCtx)
			}
			return
		}

	case "using_statement", "import_statement":
		if module := juliaImportTarget(node, content); module != "" {
			fp.Imports = append(fp.Imports, ImportEdge{SourceFilePath: filePath, ImportedModule: module})
		}

	case "call_expression":
		if ctx.enclosingFunc != "" {
			if callee := extractCalleeName(node, content); callee != "" {
				fp.Calls = append(fp.Calls, CallEdge{
					CallerSymbolID: ctx.enclosingFunc,
					CalleeName:     callee,
					FilePath:       filePath,
					Line:           int(node.StartPoint().Row) + 1,
				})
			}
		}

	case "identifier":
		fp.References = append(fp.References, Reference{
			Name:               string(content[node.StartByte():node.EndByte()]),
			FilePath:           filePath,
			Line:               int(node.StartPoint().Row) + 1,
			ContainingSymbolID: ctx.enclosingAny,
		})
	}

	for i := 0; i < int(node.ChildCount()); i++ {
		walkJulia(node.Child(i), filePath, language, content, fp, ctx)
	}
}

func appendJuliaNamespaceSymbol(node *sitter.Node, filePath string, language lang.Language, content []byte, fp *FileParse, ctx walkCtx, name string, kind lang.SymbolKind) walkCtx {
	startLine := int(node.StartPoint().Row) + 1
	qualified := name
	if len(ctx.qualified) > 0 {
		qualified = strings.Join(ctx.qualified, ".") + "." + name
	}
	sym := Symbol{
		ID:            SymbolID(filePath, qualified, name, startLine),
		Name:          name,
		Kind:          kind,
		Language:      language,
		FilePath:      filePath,
		StartLine:     startLine,
		EndLine:       int(node.EndPoint().Row) + 1,
		QualifiedName: qualified,
		DocComment:    docComment(node, content),
	}
	fp.Symbols = append(fp.Symbols, sym)
	newCtx := ctx
	newCtx.enclosingAny = sym.ID
	newCtx.qualified = append(append([]string{}, ctx.qualified...), name)
	return newCtx
}

func juliaFunctionDeclName(node *sitter.Node, content []byte) string {
	if name := getField(node, "name", content); name != "" {
		return name
	}
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		switch child.Type() {
		case "signature":
			for j := 0; j < int(child.ChildCount()); j++ {
				sigChild := child.Child(j)
				if sigChild.Type() == "call_expression" || sigChild.Type() == "identifier" {
					if name := juliaCallName(sigChild, content); name != "" {
						return name
					}
				}
			}
		case "identifier", "call_expression":
			if name := juliaCallName(child, content); name != "" {
				return name
			}
		}
	}
	return ""
}

func juliaCallName(node *sitter.Node, content []byte) string {
	switch node.Type() {
	case "identifier":
		return string(content[node.StartByte():node.EndByte()])
	case "call_expression":
		for i := 0; i < int(node.ChildCount()); i++ {
			if child := node.Child(i); child.Type() == "identifier" {
				return string(content[child.StartByte():child.EndByte()])
			}
		}
	}
	return ""
}

func juliaImportTarget(node *sitter.Node, content []byte) string {
	for i := 0; i < int(node.ChildCount()); i++ {
		if child := node.Child(i); child.Type() == "identifier" {
			return string(content[child.StartByte():child.EndByte()])
		}
	}
	return ""
}
