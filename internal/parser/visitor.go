package parser

import "github.com/heefoo/codeintel/internal/lang"

// declRule maps one syntactic node kind to the SymbolKind it declares, per SPEC_FULL §4.1's
// visitor_spec contract ("for each syntactic node kind... the mapping to {declaration of kind
// K, reference, call-site, import}"). nameField is the tree-sitter field holding the name;
// empty means the extractor falls back to a language-specific name finder.
type declRule struct {
	kind          lang.SymbolKind
	nameField     string
	receiverField string // non-empty for method-shaped decls with a receiver/self parameter
	isNamespace   bool   // decl also opens a qualified-name scope for nested declarations
}

// langSpec is the table-driven visitor specification for one grammar: a single traversal
// function (walk, in extract.go) consults it, per SPEC_FULL §9's design note against deep class
// hierarchies.
type langSpec struct {
	decls       map[string]declRule
	callTypes   map[string]bool
	importTypes map[string]bool
}

func strSet(items ...string) map[string]bool {
	m := make(map[string]bool, len(items))
	for _, it := range items {
		m[it] = true
	}
	return m
}

var commonCallTypes = strSet("call_expression", "method_invocation", "invocation_expression", "call")

var goSpec = &langSpec{
	decls: map[string]declRule{
		"function_declaration": {kind: lang.KindFunction, nameField: "name"},
		"method_declaration":   {kind: lang.KindMethod, nameField: "name", receiverField: "receiver"},
		"type_spec":            {kind: lang.KindOther, nameField: "name"}, // refined to struct/interface/type_alias in extract.go
		"type_alias":           {kind: lang.KindTypeAlias, nameField: "name"},
		"func_literal":         {kind: lang.KindFunction},                 // anonymous; synthesized <closure@line> name
	},
	callTypes:   commonCallTypes,
	importTypes: strSet("import_declaration"),
}

var pythonSpec = &langSpec{
	decls: map[string]declRule{
		"function_definition": {kind: lang.KindFunction, nameField: "name"},
		"class_definition":    {kind: lang.KindClass, nameField: "name", isNamespace: true},
	},
	callTypes:   commonCallTypes,
	importTypes: strSet("import_statement", "import_from_statement"),
}

var cSpec = &langSpec{
	decls: map[string]declRule{
		"function_definition": {kind: lang.KindFunction}, // name via declarator, handled specially
		"struct_specifier":    {kind: lang.KindStruct, nameField: "name", isNamespace: true},
		"enum_specifier":      {kind: lang.KindEnum, nameField: "name"},
	},
	callTypes:   commonCallTypes,
	importTypes: strSet("preproc_include"),
}

var jsSpec = &langSpec{
	decls: map[string]declRule{
		"function_declaration": {kind: lang.KindFunction, nameField: "name"},
		"function":             {kind: lang.KindFunction, nameField: "name"},
		"class_declaration":    {kind: lang.KindClass, nameField: "name", isNamespace: true},
		"method_definition":    {kind: lang.KindMethod, nameField: "name"},
		"interface_declaration": {kind: lang.KindInterface, nameField: "name", isNamespace: true}, // TS only, harmless no-op for JS
		"arrow_function":       {kind: lang.KindFunction}, // anonymous; synthesized <closure@line> name
	},
	callTypes:   commonCallTypes,
	importTypes: strSet("import_statement"),
}

var rustSpec = &langSpec{
	decls: map[string]declRule{
		"function_item": {kind: lang.KindFunction, nameField: "name"},
		"struct_item":   {kind: lang.KindStruct, nameField: "name", isNamespace: true},
		"enum_item":     {kind: lang.KindEnum, nameField: "name"},
		"trait_item":    {kind: lang.KindTrait, nameField: "name", isNamespace: true},
		"impl_item":     {kind: lang.KindOther, nameField: "type", isNamespace: true},
		"closure_expression": {kind: lang.KindFunction}, // anonymous; synthesized <closure@line> name
	},
	callTypes:   commonCallTypes,
	importTypes: strSet("use_declaration"),
}

var javaSpec = &langSpec{
	decls: map[string]declRule{
		"method_declaration":    {kind: lang.KindMethod, nameField: "name"},
		"class_declaration":     {kind: lang.KindClass, nameField: "name", isNamespace: true},
		"interface_declaration": {kind: lang.KindInterface, nameField: "name", isNamespace: true},
		"enum_declaration":      {kind: lang.KindEnum, nameField: "name", isNamespace: true},
	},
	callTypes:   commonCallTypes,
	importTypes: strSet("import_declaration"),
}

// csharpSpec, kotlinSpec, rubySpec, phpSpec, swiftSpec, bashSpec cover the corpus's closed
// Language set beyond what the teacher originally wired. Grounded in the public node-type
// conventions shared by their tree-sitter grammars (the same "_declaration"/"_definition"
// family the teacher's own tables already rely on for Go/Java/JS), since no corpus example
// repository exercises these languages directly.
var csharpSpec = &langSpec{
	decls: map[string]declRule{
		"method_declaration":    {kind: lang.KindMethod, nameField: "name"},
		"class_declaration":     {kind: lang.KindClass, nameField: "name", isNamespace: true},
		"interface_declaration": {kind: lang.KindInterface, nameField: "name", isNamespace: true},
		"struct_declaration":    {kind: lang.KindStruct, nameField: "name", isNamespace: true},
		"enum_declaration":      {kind: lang.KindEnum, nameField: "name", isNamespace: true},
		"namespace_declaration": {kind: lang.KindNamespace, nameField: "name", isNamespace: true},
	},
	callTypes:   commonCallTypes,
	importTypes: strSet("using_directive"),
}

var kotlinSpec = &langSpec{
	decls: map[string]declRule{
		"function_declaration": {kind: lang.KindFunction, nameField: "name"},
		"class_declaration":    {kind: lang.KindClass, nameField: "name", isNamespace: true},
		"object_declaration":   {kind: lang.KindClass, nameField: "name", isNamespace: true},
	},
	callTypes:   commonCallTypes,
	importTypes: strSet("import_header"),
}

var rubySpec = &langSpec{
	decls: map[string]declRule{
		"method":        {kind: lang.KindMethod, nameField: "name"},
		"class":         {kind: lang.KindClass, nameField: "name", isNamespace: true},
		"module":        {kind: lang.KindModule, nameField: "name", isNamespace: true},
		"singleton_method": {kind: lang.KindMethod, nameField: "name"},
	},
	callTypes: strSet("method_call", "call"),
	// require/require_relative surface as "call" nodes, indistinguishable here from any
	// other call; they end up recorded as ordinary CallEdges rather than ImportEdges.
	importTypes: strSet(),
}

var phpSpec = &langSpec{
	decls: map[string]declRule{
		"function_definition": {kind: lang.KindFunction, nameField: "name"},
		"method_declaration":  {kind: lang.KindMethod, nameField: "name"},
		"class_declaration":   {kind: lang.KindClass, nameField: "name", isNamespace: true},
		"interface_declaration": {kind: lang.KindInterface, nameField: "name", isNamespace: true},
	},
	callTypes:   strSet("function_call_expression", "member_call_expression", "scoped_call_expression"),
	importTypes: strSet("namespace_use_declaration"),
}

var swiftSpec = &langSpec{
	decls: map[string]declRule{
		"function_declaration": {kind: lang.KindFunction, nameField: "name"},
		"class_declaration":    {kind: lang.KindClass, nameField: "name", isNamespace: true},
		"protocol_declaration": {kind: lang.KindInterface, nameField: "name", isNamespace: true},
		"struct_declaration":   {kind: lang.KindStruct, nameField: "name", isNamespace: true},
		"enum_declaration":     {kind: lang.KindEnum, nameField: "name", isNamespace: true},
	},
	callTypes:   strSet("call_expression"),
	importTypes: strSet("import_declaration"),
}

var bashSpec = &langSpec{
	decls: map[string]declRule{
		"function_definition": {kind: lang.KindFunction, nameField: "name"},
	},
	callTypes:   strSet("command"),
	importTypes: strSet(), // "source"/"." are commands, not a distinct node type
}

// specFor returns the visitor table for a grammar, or nil for the three grammars
// (Clojure, CommonLisp, Julia) that use their own bespoke extractors in extract_lisp.go
// and extract_julia.go because their node shapes don't fit a flat name-field table.
func specFor(g grammarKind) *langSpec {
	switch g {
	case gGo:
		return goSpec
	case gPython:
		return pythonSpec
	case gC, gCPP:
		return cSpec
	case gJavaScript, gTypeScript:
		return jsSpec
	case gRust:
		return rustSpec
	case gJava:
		return javaSpec
	case gCSharp:
		return csharpSpec
	case gKotlin:
		return kotlinSpec
	case gRuby:
		return rubySpec
	case gPHP:
		return phpSpec
	case gSwift:
		return swiftSpec
	case gBash:
		return bashSpec
	default:
		return nil
	}
}
