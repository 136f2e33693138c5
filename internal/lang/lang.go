// Package lang holds the closed set of languages and symbol kinds the engine
// understands, and the deterministic file-extension-to-language mapping.
package lang

import (
	"path/filepath"
	"strings"
)

// Language is drawn from a closed set. "others" covers grammars the engine
// can parse but that have no dedicated slot in the set (Lisp family, Julia).
type Language string

const (
	Rust       Language = "rust"
	Python     Language = "python"
	JavaScript Language = "js"
	TypeScript Language = "ts"
	Go         Language = "go"
	C          Language = "c"
	CPP        Language = "cpp"
	Java       Language = "java"
	CSharp     Language = "csharp"
	Kotlin     Language = "kotlin"
	Ruby       Language = "ruby"
	PHP        Language = "php"
	Swift      Language = "swift"
	Bash       Language = "bash"
	Others     Language = "others"
)

// SymbolKind is a closed set shared by every language's visitor.
type SymbolKind string

const (
	KindFunction    SymbolKind = "function"
	KindMethod      SymbolKind = "method"
	KindClass       SymbolKind = "class"
	KindStruct      SymbolKind = "struct"
	KindEnum        SymbolKind = "enum"
	KindInterface   SymbolKind = "interface"
	KindTrait       SymbolKind = "trait"
	KindTypeAlias   SymbolKind = "type_alias"
	KindModule      SymbolKind = "module"
	KindNamespace   SymbolKind = "namespace"
	KindConstant    SymbolKind = "constant"
	KindVariable    SymbolKind = "variable"
	KindMacro       SymbolKind = "macro"
	KindOther       SymbolKind = "other"
)

// extensions maps a normalized (lowercase, leading-dot) file extension to a Language.
// Deterministic and stateless, per the Language Registry contract: no runtime state.
var extensions = map[string]Language{
	".rs":    Rust,
	".py":    Python,
	".pyw":   Python,
	".js":    JavaScript,
	".mjs":   JavaScript,
	".cjs":   JavaScript,
	".jsx":   JavaScript,
	".ts":    TypeScript,
	".tsx":   TypeScript,
	".go":    Go,
	".c":     C,
	".h":     C,
	".cpp":   CPP,
	".cc":    CPP,
	".cxx":   CPP,
	".hpp":   CPP,
	".hxx":   CPP,
	".java":  Java,
	".cs":    CSharp,
	".kt":    Kotlin,
	".kts":   Kotlin,
	".rb":    Ruby,
	".php":   PHP,
	".swift": Swift,
	".sh":    Bash,
	".bash":  Bash,
	".clj":   Others,
	".cljs":  Others,
	".cljc":  Others,
	".edn":   Others,
	".jl":    Others,
	".lisp":  Others,
	".lsp":   Others,
	".cl":    Others,
	".asd":   Others,
}

// Detect returns the Language for a file path by extension, or "" if unrecognized.
// This is the UnsupportedLanguage case surfaced by the Engine Facade as a boolean false.
func Detect(path string) (Language, bool) {
	ext := strings.ToLower(filepath.Ext(path))
	l, ok := extensions[ext]
	return l, ok
}

// KindFromString maps a raw, possibly unknown, kind label onto the closed SymbolKind
// set, defaulting to KindOther rather than rejecting it.
func KindFromString(s string) SymbolKind {
	switch SymbolKind(s) {
	case KindFunction, KindMethod, KindClass, KindStruct, KindEnum, KindInterface,
		KindTrait, KindTypeAlias, KindModule, KindNamespace, KindConstant, KindVariable, KindMacro:
		return SymbolKind(s)
	default:
		return KindOther
	}
}
