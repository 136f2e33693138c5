package parser

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	"github.com/heefoo/codeintel/internal/parser/grammars/clojure_lang"
	"github.com/heefoo/codeintel/internal/parser/grammars/commonlisp_lang"
	"github.com/heefoo/codeintel/internal/parser/grammars/julia_lang"
	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/bash"
	"github.com/smacker/go-tree-sitter/c"
	"github.com/smacker/go-tree-sitter/cpp"
	"github.com/smacker/go-tree-sitter/csharp"
	"github.com/smacker/go-tree-sitter/golang"
	"github.com/smacker/go-tree-sitter/java"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/kotlin"
	"github.com/smacker/go-tree-sitter/php"
	"github.com/smacker/go-tree-sitter/python"
	"github.com/smacker/go-tree-sitter/ruby"
	"github.com/smacker/go-tree-sitter/rust"
	"github.com/smacker/go-tree-sitter/swift"
	"github.com/smacker/go-tree-sitter/typescript/typescript"
)

// grammarKind names the concrete tree-sitter grammar backing a parse, at a finer
// granularity than lang.Language: the three vendored grammars (clojure, commonlisp,
// julia) all surface as lang.Others but need distinct grammars and visitor tables.
type grammarKind string

const (
	gC          grammarKind = "c"
	gCPP        grammarKind = "cpp"
	gGo         grammarKind = "go"
	gPython     grammarKind = "python"
	gJavaScript grammarKind = "javascript"
	gTypeScript grammarKind = "typescript"
	gRust       grammarKind = "rust"
	gJava       grammarKind = "java"
	gCSharp     grammarKind = "csharp"
	gKotlin     grammarKind = "kotlin"
	gRuby       grammarKind = "ruby"
	gPHP        grammarKind = "php"
	gSwift      grammarKind = "swift"
	gBash       grammarKind = "bash"
	gClojure    grammarKind = "clojure"
	gJulia      grammarKind = "julia"
	gCommonLisp grammarKind = "commonlisp"
)

var extToGrammar = map[string]grammarKind{
	".c": gC, ".h": gC,
	".cpp": gCPP, ".cc": gCPP, ".cxx": gCPP, ".hpp": gCPP, ".hxx": gCPP,
	".go": gGo,
	".py": gPython, ".pyw": gPython,
	".js": gJavaScript, ".mjs": gJavaScript, ".cjs": gJavaScript, ".jsx": gJavaScript,
	".ts": gTypeScript, ".tsx": gTypeScript,
	".rs":    gRust,
	".java":  gJava,
	".cs":    gCSharp,
	".kt":    gKotlin, ".kts": gKotlin,
	".rb":    gRuby,
	".php":   gPHP,
	".swift": gSwift,
	".sh":    gBash, ".bash": gBash,
	".clj": gClojure, ".cljs": gClojure, ".cljc": gClojure, ".edn": gClojure,
	".jl":   gJulia,
	".lisp": gCommonLisp, ".lsp": gCommonLisp, ".cl": gCommonLisp, ".asd": gCommonLisp,
}

func detectGrammar(path string) (grammarKind, bool) {
	g, ok := extToGrammar[strings.ToLower(filepath.Ext(path))]
	return g, ok
}

// Driver wraps the concrete-syntax parsers. A *sitter.Language grammar is expensive to
// construct and safe to share; a *sitter.Parser instance is cheap but not safe for
// concurrent use, so instances are pooled per grammar to amortize setup (SPEC_FULL §9).
type Driver struct {
	mu        sync.RWMutex
	grammars  map[grammarKind]*sitter.Language
	pools     map[grammarKind]*sync.Pool
}

// NewDriver registers every grammar the module ships.
func NewDriver() *Driver {
	d := &Driver{
		grammars: make(map[grammarKind]*sitter.Language),
		pools:    make(map[grammarKind]*sync.Pool),
	}

	d.register(gC, c.GetLanguage())
	d.register(gCPP, cpp.GetLanguage())
	d.register(gGo, golang.GetLanguage())
	d.register(gPython, python.GetLanguage())
	d.register(gJavaScript, javascript.GetLanguage())
	d.register(gTypeScript, typescript.GetLanguage())
	d.register(gRust, rust.GetLanguage())
	d.register(gJava, java.GetLanguage())
	d.register(gCSharp, csharp.GetLanguage())
	d.register(gKotlin, kotlin.GetLanguage())
	d.register(gRuby, ruby.GetLanguage())
	d.register(gPHP, php.GetLanguage())
	d.register(gSwift, swift.GetLanguage())
	d.register(gBash, bash.GetLanguage())
	d.register(gClojure, clojure_lang.GetLanguage())
	d.register(gJulia, julia_lang.GetLanguage())
	d.register(gCommonLisp, commonlisp_lang.GetLanguage())

	return d
}

func (d *Driver) register(g grammarKind, sl *sitter.Language) {
	d.grammars[g] = sl
	d.pools[g] = &sync.Pool{
		New: func() any {
			p := sitter.NewParser()
			p.SetLanguage(sl)
			return p
		},
	}
}

// IsSupported reports whether path maps to a registered grammar.
func (d *Driver) IsSupported(path string) bool {
	_, ok := detectGrammar(path)
	return ok
}

// Tree is a parsed syntax tree plus the grammar it was produced with.
type Tree struct {
	Root    *sitter.Node
	Content []byte
	grammar grammarKind
	close   func()
}

// Close releases the underlying tree-sitter tree.
func (t *Tree) Close() {
	if t.close != nil {
		t.close()
	}
}

// Parse produces a traversable syntax tree for path's content. Error-tolerant: malformed
// input still yields a tree with error nodes rather than failing. Returns ParseUnavailable
// (as a plain error) only when the extension has no registered grammar.
func (d *Driver) Parse(ctx context.Context, path string, content []byte) (*Tree, error) {
	g, ok := detectGrammar(path)
	if !ok {
		return nil, fmt.Errorf("parser: no grammar registered for %s: %w", path, ErrParseUnavailable)
	}

	d.mu.RLock()
	pool := d.pools[g]
	d.mu.RUnlock()

	pv := pool.Get()
	sp := pv.(*sitter.Parser)

	tree, err := sp.ParseCtx(ctx, nil, content)
	if err != nil {
		pool.Put(sp)
		return nil, fmt.Errorf("parser: parse %s: %w", path, err)
	}

	return &Tree{
		Root:    tree.RootNode(),
		Content: content,
		grammar: g,
		close: func() {
			tree.Close()
			pool.Put(sp)
		},
	}, nil
}

// ErrParseUnavailable is returned by Parse when no grammar is registered for a file's
// extension even though the extension maps to a known Language.
var ErrParseUnavailable = fmt.Errorf("parser: no parser available for language")
