package taint

import (
	"testing"

	"github.com/heefoo/codeintel/internal/graph"
	"github.com/heefoo/codeintel/internal/lang"
	"github.com/heefoo/codeintel/internal/parser"
)

func buildStore() *graph.Store {
	s := graph.New()
	s.IndexFile("handler.go", &parser.FileParse{
		Symbols: []parser.Symbol{
			{ID: "handler.go::readInput::1", Name: "readInput", Kind: lang.KindFunction, FilePath: "handler.go", StartLine: 1, EndLine: 5, QualifiedName: "readInput"},
			{ID: "handler.go::forward::7", Name: "forward", Kind: lang.KindFunction, FilePath: "handler.go", StartLine: 7, EndLine: 10, QualifiedName: "forward"},
			{ID: "handler.go::runShell::12", Name: "runShell", Kind: lang.KindFunction, FilePath: "handler.go", StartLine: 12, EndLine: 15, QualifiedName: "runShell"},
			{ID: "handler.go::noop::17", Name: "noop", Kind: lang.KindFunction, FilePath: "handler.go", StartLine: 17, EndLine: 18, QualifiedName: "noop"},
		},
		Calls: []parser.CallEdge{
			{CallerSymbolID: "handler.go::readInput::1", CalleeName: "os.Getenv", FilePath: "handler.go", Line: 2},
			{CallerSymbolID: "handler.go::readInput::1", CalleeName: "forward", FilePath: "handler.go", Line: 3},
			{CallerSymbolID: "handler.go::forward::7", CalleeName: "runShell", FilePath: "handler.go", Line: 8},
			{CallerSymbolID: "handler.go::runShell::12", CalleeName: "exec.Command", FilePath: "handler.go", Line: 13},
		},
	})
	return s
}

func TestTaintedPathsFindsSourceToSink(t *testing.T) {
	tr := New(buildStore(), 10)
	findings := tr.TaintedPaths(10)

	if len(findings) != 1 {
		t.Fatalf("expected 1 finding, got %d: %+v", len(findings), findings)
	}
	f := findings[0]
	if f.Source.Name != "readInput" {
		t.Errorf("source: want readInput, got %s", f.Source.Name)
	}
	if f.Sink.Name != "runShell" {
		t.Errorf("sink: want runShell, got %s", f.Sink.Name)
	}
	if f.HopCount != 2 {
		t.Errorf("hop count: want 2, got %d", f.HopCount)
	}
}

func TestTaintedPathsHopLimitExcludesDistantSink(t *testing.T) {
	tr := New(buildStore(), 1)
	findings := tr.TaintedPaths(10)
	if len(findings) != 0 {
		t.Errorf("expected no findings within 1 hop, got %+v", findings)
	}
}

func TestTaintedPathsEmptyGraphYieldsNoFindings(t *testing.T) {
	tr := New(graph.New(), 10)
	if findings := tr.TaintedPaths(10); len(findings) != 0 {
		t.Errorf("expected no findings for an empty graph, got %+v", findings)
	}
}
