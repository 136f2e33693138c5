package graph

import (
	"testing"

	"github.com/heefoo/codeintel/internal/lang"
	"github.com/heefoo/codeintel/internal/parser"
)

func sampleParse() *parser.FileParse {
	return &parser.FileParse{
		Symbols: []parser.Symbol{
			{ID: "a.go::main::1", Name: "main", Kind: lang.KindFunction, FilePath: "a.go", StartLine: 1, EndLine: 5, QualifiedName: "main"},
			{ID: "a.go::helper::7", Name: "helper", Kind: lang.KindFunction, FilePath: "a.go", StartLine: 7, EndLine: 9, QualifiedName: "helper"},
		},
		Calls: []parser.CallEdge{
			{CallerSymbolID: "a.go::main::1", CalleeName: "helper", FilePath: "a.go", Line: 3},
		},
		References: []parser.Reference{
			{Name: "helper", FilePath: "a.go", Line: 3, ContainingSymbolID: "a.go::main::1"},
		},
		Imports: []parser.ImportEdge{{SourceFilePath: "a.go", ImportedModule: "fmt"}},
	}
}

func TestIndexFileAndQueries(t *testing.T) {
	s := New()
	s.IndexFile("a.go", sampleParse())

	syms := s.SymbolsInFile("a.go")
	if len(syms) != 2 {
		t.Fatalf("expected 2 symbols, got %d", len(syms))
	}

	if sym, ok := s.SymbolAt("a.go", 2); !ok || sym.Name != "main" {
		t.Errorf("SymbolAt(2): got %+v, %v", sym, ok)
	}
	if _, ok := s.SymbolAt("a.go", 100); ok {
		t.Error("SymbolAt(100): expected no match")
	}

	callers := s.Callers("a.go::helper::7")
	if len(callers) != 1 || callers[0].Name != "main" {
		t.Errorf("Callers(helper): got %+v", callers)
	}

	callees := s.Callees("a.go::main::1")
	if len(callees) != 1 || callees[0].Name != "helper" {
		t.Errorf("Callees(main): got %+v", callees)
	}

	refs := s.FindReferences("helper")
	if len(refs) != 1 {
		t.Errorf("FindReferences(helper): got %+v", refs)
	}
}

func TestRemoveFileClearsAllIndexes(t *testing.T) {
	s := New()
	s.IndexFile("a.go", sampleParse())

	if !s.RemoveFile("a.go") {
		t.Fatal("expected RemoveFile to report true")
	}
	if len(s.SymbolsInFile("a.go")) != 0 {
		t.Error("expected no symbols after removal")
	}
	if len(s.Callers("a.go::helper::7")) != 0 {
		t.Error("expected no callers after removal")
	}
	if len(s.FindReferences("helper")) != 0 {
		t.Error("expected no references after removal")
	}
	if s.RemoveFile("a.go") {
		t.Error("expected second RemoveFile to report false")
	}
}

func TestResolveNameSameFileWinsOverCrossFile(t *testing.T) {
	s := New()
	s.IndexFile("a.go", &parser.FileParse{
		Symbols: []parser.Symbol{
			{ID: "a.go::run::1", Name: "run", FilePath: "a.go", StartLine: 1, EndLine: 2, QualifiedName: "run"},
		},
	})
	s.IndexFile("b.go", &parser.FileParse{
		Symbols: []parser.Symbol{
			{ID: "b.go::run::1", Name: "run", FilePath: "b.go", StartLine: 1, EndLine: 2, QualifiedName: "run"},
		},
	})

	matches := s.ResolveName("run", "a.go", "")
	if len(matches) != 1 || matches[0].FilePath != "a.go" {
		t.Errorf("expected same-file match to win, got %+v", matches)
	}

	matches = s.ResolveName("run", "c.go", "")
	if len(matches) != 2 {
		t.Errorf("expected both cross-file matches, got %+v", matches)
	}
}

func TestFindSymbolsSubstringAndGlob(t *testing.T) {
	s := New()
	s.IndexFile("a.go", sampleParse())

	if got := s.FindSymbols("help", ""); len(got) != 1 {
		t.Errorf("substring match: got %+v", got)
	}
	if got := s.FindSymbols("h*", ""); len(got) != 1 {
		t.Errorf("glob match: got %+v", got)
	}
	if got := s.FindSymbols("", lang.KindFunction); len(got) != 2 {
		t.Errorf("kind-only filter: got %+v", got)
	}
}

func TestClearResetsEverythingAndStaysUsable(t *testing.T) {
	s := New()
	s.IndexFile("a.go", sampleParse())
	s.Clear()

	if stats := s.Stats(); stats.Files != 0 || stats.Symbols != 0 {
		t.Errorf("expected empty stats after Clear, got %+v", stats)
	}

	s.IndexFile("a.go", sampleParse())
	if stats := s.Stats(); stats.Files != 1 || stats.Symbols != 2 {
		t.Errorf("expected store usable after Clear, got %+v", stats)
	}
}
