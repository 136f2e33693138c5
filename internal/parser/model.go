package parser

import (
	"fmt"

	"github.com/heefoo/codeintel/internal/lang"
)

// Symbol is a declaration recorded by the engine with its location.
type Symbol struct {
	ID            string
	Name          string
	Kind          lang.SymbolKind
	Language      lang.Language
	FilePath      string
	StartLine     int
	EndLine       int
	Signature     string
	QualifiedName string
	DocComment    string
}

// SymbolID derives the stable id mandated by the data model: file_path + qualified_name
// (falling back to name) + start_line, so reindexing without moving the declaration
// produces the same id.
func SymbolID(filePath, qualifiedName, name string, startLine int) string {
	key := qualifiedName
	if key == "" {
		key = name
	}
	return fmt.Sprintf("%s::%s::%d", filePath, key, startLine)
}

// Reference is a lexical use of an identifier that is not itself a declaration.
type Reference struct {
	Name               string
	FilePath           string
	Line               int
	ContainingSymbolID string // empty if no enclosing declaration
}

// CallEdge stores the callee by name; resolution to a Symbol happens at query time.
type CallEdge struct {
	CallerSymbolID string
	CalleeName     string
	FilePath       string
	Line           int
}

// ImportEdge records a module dependency edge.
type ImportEdge struct {
	SourceFilePath string
	ImportedModule string
}

// FileParse is the accumulated output of a single-tree-traversal visitor pass.
type FileParse struct {
	Symbols    []Symbol
	References []Reference
	Calls      []CallEdge
	Imports    []ImportEdge
	HadErrors  bool // syntax error nodes were present; extraction still proceeded
}
