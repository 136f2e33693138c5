package parser

import (
	"fmt"
	"strings"

	"github.com/heefoo/codeintel/internal/lang"
	sitter "github.com/smacker/go-tree-sitter"
)

// walkClojure and walkCommonLisp extract symbols from the two vendored Lisp grammars.
// Their forms are s-expressions: (defn name ...), (defun name ...), not a name-field a
// flat table can address, so they get their own form-dispatch walkers instead of an entry
// in specFor.

var clojureSpecialForms = strSet(
	"def", "if", "do", "let", "quote", "var", "fn", "loop", "recur", "throw",
	"try", "catch", "finally", "monitor-enter", "monitor-exit", "new", "set!", ".",
	"ns", "defn", "defn-", "defmacro", "defonce", "defmulti", "defmethod",
	"when", "when-not", "when-let", "when-first", "if-let", "if-not", "cond", "condp", "case",
	"and", "or", "not", "for", "doseq", "dotimes", "while",
	"->", "->>", "as->", "some->", "some->>",
	"require", ":require", "import", ":import", "use", ":use",
	"comment", "declare",
)

func walkClojure(node *sitter.Node, filePath string, language lang.Language, content []byte, fp *FileParse, ctx walkCtx) {
	if node == nil {
		return
	}

	if node.Type() == "list_lit" {
		handleClojureList(node, filePath, language, content, fp, ctx)
	}

	for i := 0; i < int(node.ChildCount()); i++ {
		walkClojure(node.Child(i), filePath, language, content, fp, ctx)
	}
}

func clojureSymbolAt(node *sitter.Node, content []byte, index int) string {
	count := 0
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		if child.Type() == "sym_lit" {
			if count == index {
				return string(content[child.StartByte():child.EndByte()])
			}
			count++
		}
	}
	return ""
}

func handleClojureList(node *sitter.Node, filePath string, language lang.Language, content []byte, fp *FileParse, ctx walkCtx) {
	formType := clojureSymbolAt(node, content, 0)
	if formType == "" {
		return
	}

	if formType == "ns" || formType == "require" || formType == ":require" {
		handleClojureImport(node, filePath, content, fp)
		return
	}

	name := clojureSymbolAt(node, content, 1)
	startLine := int(node.StartPoint().Row) + 1
	endLine := int(node.EndPoint().Row) + 1

	var kind lang.SymbolKind
	var signature string
	switch formType {
	case "defn", "defn-", "defmulti":
		kind = lang.KindFunction
	case "defmacro":
		kind = lang.KindMacro
		signature = "macro"
	case "defprotocol":
		kind = lang.KindInterface
	case "defrecord", "deftype":
		kind = lang.KindStruct
	default:
		if !clojureSpecialForms[formType] && name != "" {
			// A call to a symbol not recognized as a declaration form or special form.
			if ctx.enclosingFunc != "" {
				fp.Calls = append(fp.Calls, CallEdge{
					CallerSymbolID: ctx.enclosingFunc,
					CalleeName:     formType,
					FilePath:       filePath,
					Line:           startLine,
				})
			}
		}
		return
	}

	if name == "" {
		return
	}

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
		EndLine:       endLine,
		QualifiedName: qualified,
		Signature:     signature,
		DocComment:    clojureDocstring(node, content),
	}
	fp.Symbols = append(fp.Symbols, sym)

	newCtx := ctx
	newCtx.enclosingAny = sym.ID
	if kind == lang.KindFunction || kind == lang.KindMacro {
		newCtx.enclosingFunc = sym.ID
	}
	for i := 0; i < int(node.ChildCount()); i++ {
		walkClojure(node.Child(i), filePath, language, content, fp, newCtx)
	}
}

func handleClojureImport(node *sitter.Node, filePath string, content []byte, fp *FileParse) {
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		switch child.Type() {
		case "sym_lit":
			ns := string(content[child.StartByte():child.EndByte()])
			if ns != "" && ns != "ns" && ns != "require" && !strings.HasPrefix(ns, ":") {
				fp.Imports = append(fp.Imports, ImportEdge{SourceFilePath: filePath, ImportedModule: ns})
			}
		case "vec_lit":
			if ns := clojureSymbolAt(child, content, 0); ns != "" {
				fp.Imports = append(fp.Imports, ImportEdge{SourceFilePath: filePath, ImportedModule: ns})
			}
			for j := 0; j < int(child.ChildCount()); j++ {
				walkClojure(child.Child(j), filePath, "", content, fp, walkCtx{})
			}
		case "list_lit":
			handleClojureImport(child, filePath, content, fp)
		}
	}
}

func clojureDocstring(node *sitter.Node, content []byte) string {
	if prev := node.PrevSibling(); prev != nil && isCommentNode(prev.Type()) {
		return cleanComment(string(content[prev.StartByte():prev.EndByte()]))
	}
	symCount := 0
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		if child.Type() == "str_lit" && symCount >= 2 {
			return cleanDocstring(string(content[child.StartByte():child.EndByte()]))
		}
		if child.Type() == "sym_lit" {
			symCount++
		}
	}
	return ""
}

// CommonLisp

func lispSymbolName(node *sitter.Node, content []byte) string {
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		switch child.Type() {
		case "symbol", "sym_lit", "identifier":
			return string(content[child.StartByte():child.EndByte()])
		}
	}
	return ""
}

func lispDocstring(node *sitter.Node, content []byte) string {
	if prev := node.PrevSibling(); prev != nil && isCommentNode(prev.Type()) {
		return cleanComment(string(content[prev.StartByte():prev.EndByte()]))
	}
	foundName := false
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		t := child.Type()
		if t == "symbol" || t == "sym_lit" || t == "identifier" {
			foundName = true
			continue
		}
		if foundName && (t == "string" || t == "str_lit") {
			return cleanDocstring(string(content[child.StartByte():child.EndByte()]))
		}
		if foundName && (t == "list" || t == "vector" || t == "list_lit" || t == "vec_lit") {
			break
		}
	}
	return ""
}

func walkCommonLisp(node *sitter.Node, filePath string, language lang.Language, content []byte, fp *FileParse, ctx walkCtx) {
	if node == nil {
		return
	}

	startLine := int(node.StartPoint().Row) + 1
	endLine := int(node.EndPoint().Row) + 1

	var kind lang.SymbolKind
	var signature string
	var idSuffix string
	matched := true

	switch node.Type() {
	case "defun_form":
		kind = lang.KindFunction
	case "defmacro_form":
		kind = lang.KindMacro
		signature = "macro"
	case "defclass_form":
		kind = lang.KindClass
	case "defstruct_form":
		kind = lang.KindStruct
	case "defgeneric_form":
		kind = lang.KindInterface
	case "defmethod_form":
		kind = lang.KindMethod
		idSuffix = fmt.Sprintf("@%d", startLine)
	case "defpackage_form", "in_package_form":
		if name := lispSymbolName(node, content); name != "" {
			fp.Imports = append(fp.Imports, ImportEdge{SourceFilePath: filePath, ImportedModule: name})
		}
		matched = false
	default:
		matched = false
	}

	if !matched {
		if node.Type() == "list" || node.Type() == "list_lit" {
			if callee := lispSymbolName(node, content); callee != "" && ctx.enclosingFunc != "" {
				fp.Calls = append(fp.Calls, CallEdge{
					CallerSymbolID: ctx.enclosingFunc,
					CalleeName:     callee,
					FilePath:       filePath,
					Line:           startLine,
				})
			}
		}
		for i := 0; i < int(node.ChildCount()); i++ {
			walkCommonLisp(node.Child(i), filePath, language, content, fp, ctx)
		}
		return
	}

	name := lispSymbolName(node, content)
	if name == "" {
		for i := 0; i < int(node.ChildCount()); i++ {
			walkCommonLisp(node.Child(i), filePath, language, content, fp, ctx)
		}
		return
	}

	qualified := name + idSuffix
	if len(ctx.qualified) > 0 {
		qualified = strings.Join(ctx.qualified, "::") + "::" + qualified
	}

	sym := Symbol{
		ID:            SymbolID(filePath, qualified, name, startLine),
		Name:          name,
		Kind:          kind,
		Language:      language,
		FilePath:      filePath,
		StartLine:     startLine,
		EndLine:       endLine,
		QualifiedName: qualified,
		Signature:     signature,
		DocComment:    lispDocstring(node, content),
	}
	fp.Symbols = append(fp.Symbols, sym)

	newCtx := ctx
	newCtx.enclosingAny = sym.ID
	if kind == lang.KindFunction || kind == lang.KindMacro || kind == lang.KindMethod {
		newCtx.enclosingFunc = sym.ID
	}
	for i := 0; i < int(node.ChildCount()); i++ {
		walkCommonLisp(node.Child(i), filePath, language, content, fp, newCtx)
	}
}
