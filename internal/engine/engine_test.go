package engine

import (
	"context"
	"strings"
	"testing"

	"github.com/heefoo/codeintel/internal/lang"
)

const goSample = `package sample

// greet prints a friendly message.
func greet(name string) string {
	return "hello " + name
}

func shout(name string) string {
	return greet(name)
}
`

func TestIndexFileAndFacadeQueries(t *testing.T) {
	e := New()
	ctx := context.Background()

	if ok := e.IndexFile(ctx, "sample.go", []byte(goSample)); !ok {
		t.Fatal("expected IndexFile to succeed for a .go file")
	}

	stats := e.Stats()
	if stats.Files != 1 || stats.Symbols != 2 {
		t.Errorf("unexpected stats: %+v", stats)
	}

	syms := e.SymbolsInFile("sample.go")
	if len(syms) != 2 {
		t.Fatalf("expected 2 symbols, got %d", len(syms))
	}

	found := e.FindSymbols("greet", lang.KindFunction)
	if len(found) != 1 {
		t.Fatalf("expected 1 match for greet, got %d", len(found))
	}
	greetID := found[0].ID

	if sym, ok := e.SymbolAt("sample.go", 5); !ok || sym.Name != "greet" {
		t.Errorf("SymbolAt(5): got %+v, %v", sym, ok)
	}

	callers := e.Callers(greetID)
	if len(callers) != 1 || callers[0].Name != "shout" {
		t.Errorf("Callers(greet): got %+v", callers)
	}

	content, ok := e.GetFile("sample.go")
	if !ok || !strings.Contains(content, "func greet") {
		t.Errorf("GetFile: got %q, %v", content, ok)
	}

	excerpt, ok := e.GetFileLines("sample.go", 4, 6)
	if !ok || !strings.Contains(excerpt, "greet") {
		t.Errorf("GetFileLines(4,6): got %q, %v", excerpt, ok)
	}

	hits := e.Search("greet", 5)
	if len(hits) == 0 || hits[0].FilePath != "sample.go" {
		t.Errorf("Search(greet): got %+v", hits)
	}

	matches := e.FindSimilar(`func greet(name string) string { return "hello " + name }`, 5)
	if len(matches) == 0 {
		t.Error("expected at least one similar chunk")
	}
}

func TestGetFileLinesInvalidRangeReturnsFalse(t *testing.T) {
	e := New()
	e.IndexFile(context.Background(), "sample.go", []byte(goSample))

	if _, ok := e.GetFileLines("sample.go", 5, 2); ok {
		t.Error("expected start > end to report false")
	}
	if _, ok := e.GetFileLines("sample.go", 1000, 1001); ok {
		t.Error("expected an out-of-bounds range to report false")
	}
}

func TestIndexFileUnsupportedExtensionReturnsFalse(t *testing.T) {
	e := New()
	if e.IndexFile(context.Background(), "notes.txt", []byte("hello")) {
		t.Error("expected IndexFile to reject an unregistered extension")
	}
	if stats := e.Stats(); stats.Files != 0 {
		t.Errorf("expected no files indexed, got %+v", stats)
	}
}

func TestRemoveFileClearsFacadeState(t *testing.T) {
	e := New()
	ctx := context.Background()
	e.IndexFile(ctx, "sample.go", []byte(goSample))

	if !e.RemoveFile("sample.go") {
		t.Fatal("expected RemoveFile to report true")
	}
	if _, ok := e.GetFile("sample.go"); ok {
		t.Error("expected GetFile to report false after removal")
	}
	if stats := e.Stats(); stats.Files != 0 || stats.Symbols != 0 || stats.Chunks != 0 {
		t.Errorf("expected empty stats after removal, got %+v", stats)
	}
	if e.RemoveFile("sample.go") {
		t.Error("expected second RemoveFile to report false")
	}
}

func TestClearResetsEngineAndStaysUsable(t *testing.T) {
	e := New()
	ctx := context.Background()
	e.IndexFile(ctx, "sample.go", []byte(goSample))
	e.Clear()

	if stats := e.Stats(); stats.Files != 0 || stats.Symbols != 0 || stats.Chunks != 0 {
		t.Errorf("expected empty stats after Clear, got %+v", stats)
	}

	if !e.IndexFile(ctx, "sample.go", []byte(goSample)) {
		t.Fatal("expected engine to remain usable after Clear")
	}
	if stats := e.Stats(); stats.Files != 1 {
		t.Errorf("expected reindex to succeed, got %+v", stats)
	}
}

func TestIndexFilesBatchConcurrent(t *testing.T) {
	e := New()
	batch := []FileInput{
		{Path: "a.go", Content: []byte("package a\nfunc A() {}\n")},
		{Path: "b.go", Content: []byte("package b\nfunc B() {}\n")},
		{Path: "skip.unknown", Content: []byte("ignored")},
	}

	count := e.IndexFiles(context.Background(), batch)
	if count != 2 {
		t.Fatalf("expected 2 files indexed, got %d", count)
	}
	if stats := e.Stats(); stats.Files != 2 {
		t.Errorf("expected 2 files in stats, got %+v", stats)
	}
}

func TestTaintedPathsThroughFacade(t *testing.T) {
	e := New()
	src := `package h

func readInput() string {
	return os.Getenv("X")
}

func runShell(x string) {
	exec.Command("sh", "-c", x).Run()
}

func handle() {
	x := readInput()
	runShell(x)
}
`
	e.IndexFile(context.Background(), "h.go", []byte(src))
	findings := e.TaintedPaths(10)
	if len(findings) == 0 {
		t.Error("expected at least one tainted path through the facade")
	}
}

func TestFindReferencesThroughFacade(t *testing.T) {
	e := New()
	e.IndexFile(context.Background(), "sample.go", []byte(goSample))
	refs := e.FindReferences("greet")
	if len(refs) == 0 {
		t.Error("expected at least one reference to greet")
	}
}
