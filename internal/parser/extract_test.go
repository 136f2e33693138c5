package parser

import (
	"context"
	"testing"

	"github.com/heefoo/codeintel/internal/lang"
)

func TestExtractGoFunctionsAndCalls(t *testing.T) {
	code := `package main

// greet returns a friendly message.
func greet(name string) string {
	return helper(name)
}

func helper(name string) string {
	return "hello " + name
}

type Server struct{}

func (s *Server) Start() error {
	greet("world")
	return nil
}
`
	d := NewDriver()
	tree, err := d.Parse(context.Background(), "main.go", []byte(code))
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	defer tree.Close()

	fp := Extract(tree, "main.go", lang.Go)

	var greetSym, startSym *Symbol
	for i := range fp.Symbols {
		switch fp.Symbols[i].Name {
		case "greet":
			greetSym = &fp.Symbols[i]
		case "Server.Start":
			startSym = &fp.Symbols[i]
		}
	}
	if greetSym == nil {
		t.Fatal("greet function not extracted")
	}
	if greetSym.DocComment == "" {
		t.Error("expected greet to carry a doc comment")
	}
	if startSym == nil {
		t.Fatal("Server.Start method not extracted (receiver-qualified name expected)")
	}

	foundCall := false
	for _, c := range fp.Calls {
		if c.CallerSymbolID == startSym.ID && c.CalleeName == "greet" {
			foundCall = true
		}
	}
	if !foundCall {
		t.Error("expected a call edge from Server.Start to greet")
	}
}

func TestExtractGoTypeSpecRefinesKind(t *testing.T) {
	code := `package main

type Widget struct {
	Name string
}

type Named interface {
	GetName() string
}

type ID = string
`
	d := NewDriver()
	tree, err := d.Parse(context.Background(), "types.go", []byte(code))
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	defer tree.Close()

	fp := Extract(tree, "types.go", lang.Go)

	kinds := map[string]lang.SymbolKind{}
	for _, s := range fp.Symbols {
		kinds[s.Name] = s.Kind
	}
	if kinds["Widget"] != lang.KindStruct {
		t.Errorf("Widget: want struct, got %s", kinds["Widget"])
	}
	if kinds["Named"] != lang.KindInterface {
		t.Errorf("Named: want interface, got %s", kinds["Named"])
	}
	if kinds["ID"] != lang.KindTypeAlias {
		t.Errorf("ID: want type_alias, got %s", kinds["ID"])
	}
}

func TestExtractPythonClassAndDocstring(t *testing.T) {
	code := `import os

class Greeter:
    """Greets people."""

    def greet(self, name):
        return helper(name)

def helper(name):
    return "hi " + name
`
	d := NewDriver()
	tree, err := d.Parse(context.Background(), "greet.py", []byte(code))
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	defer tree.Close()

	fp := Extract(tree, "greet.py", lang.Python)

	var classSym, methodSym *Symbol
	for i := range fp.Symbols {
		switch fp.Symbols[i].Name {
		case "Greeter":
			classSym = &fp.Symbols[i]
		case "greet":
			methodSym = &fp.Symbols[i]
		}
	}
	if classSym == nil {
		t.Fatal("Greeter class not extracted")
	}
	if classSym.DocComment != "Greets people." {
		t.Errorf("docstring: want %q, got %q", "Greets people.", classSym.DocComment)
	}
	if methodSym == nil {
		t.Fatal("greet method not extracted")
	}
	if methodSym.QualifiedName != "Greeter.greet" {
		t.Errorf("qualified name: want Greeter.greet, got %s", methodSym.QualifiedName)
	}

	foundImport := false
	for _, im := range fp.Imports {
		if im.ImportedModule == "os" {
			foundImport = true
		}
	}
	if !foundImport {
		t.Error("expected an import edge for os")
	}
}

func TestExtractClosureGetsSyntheticName(t *testing.T) {
	code := `package main

var handler = func() {
	helper()
}
`
	d := NewDriver()
	tree, err := d.Parse(context.Background(), "closure.go", []byte(code))
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	defer tree.Close()

	fp := Extract(tree, "closure.go", lang.Go)

	var closureSym *Symbol
	for i := range fp.Symbols {
		if fp.Symbols[i].Kind == lang.KindFunction && fp.Symbols[i].Name != "helper" {
			closureSym = &fp.Symbols[i]
		}
	}
	if closureSym == nil {
		t.Fatal("expected a synthesized symbol for the anonymous function literal")
	}
	if closureSym.Name == "" || closureSym.Name[0] != '<' {
		t.Errorf("expected a synthetic <closure@line> name, got %q", closureSym.Name)
	}

	foundCall := false
	for _, c := range fp.Calls {
		if c.CallerSymbolID == closureSym.ID && c.CalleeName == "helper" {
			foundCall = true
		}
	}
	if !foundCall {
		t.Error("expected a call edge attributed to the closure's synthesized symbol")
	}
}

func TestExtractClojureDefn(t *testing.T) {
	code := `(ns my.app)

(defn greet [name]
  (helper name))

(defn helper [name]
  (str "hi " name))
`
	d := NewDriver()
	tree, err := d.Parse(context.Background(), "app.clj", []byte(code))
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	defer tree.Close()

	fp := Extract(tree, "app.clj", lang.Others)

	var greetSym *Symbol
	for i := range fp.Symbols {
		if fp.Symbols[i].Name == "greet" {
			greetSym = &fp.Symbols[i]
		}
	}
	if greetSym == nil {
		t.Fatal("greet defn not extracted")
	}
	if greetSym.Kind != lang.KindFunction {
		t.Errorf("kind: want function, got %s", greetSym.Kind)
	}

	foundImport := false
	for _, im := range fp.Imports {
		if im.ImportedModule == "my.app" {
			foundImport = true
		}
	}
	if !foundImport {
		t.Error("expected ns declaration recorded as an import edge")
	}

	foundCall := false
	for _, c := range fp.Calls {
		if c.CallerSymbolID == greetSym.ID && c.CalleeName == "helper" {
			foundCall = true
		}
	}
	if !foundCall {
		t.Error("expected a call edge from greet to helper")
	}
}

func TestDriverIsSupported(t *testing.T) {
	d := NewDriver()
	cases := map[string]bool{
		"main.go": true, "a.rs": true, "b.py": true, "c.rb": true,
		"d.swift": true, "e.clj": true, "f.unknownext": false,
	}
	for path, want := range cases {
		if got := d.IsSupported(path); got != want {
			t.Errorf("IsSupported(%s) = %v, want %v", path, got, want)
		}
	}
}
