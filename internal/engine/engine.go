// Package engine implements the Engine Facade: the single public entry point wiring the
// Parser Driver, Graph Store, Text Index, Similarity Index and Taint Tracer into the
// operation surface described by SPEC_FULL.md §4.7.
package engine

import (
	"context"
	"strings"
	"sync"

	"github.com/heefoo/codeintel/internal/graph"
	"github.com/heefoo/codeintel/internal/lang"
	"github.com/heefoo/codeintel/internal/parser"
	"github.com/heefoo/codeintel/internal/persistence"
	"github.com/heefoo/codeintel/internal/simindex"
	"github.com/heefoo/codeintel/internal/taint"
	"github.com/heefoo/codeintel/internal/textindex"
	"github.com/heefoo/codeintel/internal/tokenize"
	"golang.org/x/sync/errgroup"
)

const (
	defaultChunkWindow  = 50
	defaultChunkOverlap = 10
	defaultTaintMaxHops = 10
	defaultBatchWorkers = 8
)

// Option configures an Engine at construction time.
type Option func(*Engine)

// WithChunkWindow overrides the fixed-line window size and overlap used to chunk files
// that have no Symbols of their own, per SPEC_FULL §4.5 (default 50/10).
func WithChunkWindow(size, overlap int) Option {
	return func(e *Engine) {
		e.chunkWindow = size
		e.chunkOverlap = overlap
	}
}

// WithTaintMaxHops overrides the Taint Tracer's bounded hop count (default 10).
func WithTaintMaxHops(n int) Option {
	return func(e *Engine) {
		e.taintMaxHops = n
	}
}

// WithBatchWorkers overrides IndexFiles' concurrency ceiling (default 8).
func WithBatchWorkers(n int) Option {
	return func(e *Engine) {
		e.batchWorkers = n
	}
}

// WithPersistence mirrors every index_file/remove_file onto a SurrealDB-backed Store.
// Queries are still always answered from the in-memory indexes; persistence never sits on
// the hot path, only the write path (SPEC_FULL §6.1).
func WithPersistence(store *persistence.Store) Option {
	return func(e *Engine) {
		e.persist = store
	}
}

// fileLock coordinates concurrent writers to the same path, mirroring the refcounted
// per-file mutex the corpus's graph storage layer uses for its own transactions.
type fileLock struct {
	mu    sync.Mutex
	count int
}

// Engine is the code-intelligence engine: parallel readers, serialized writers per file.
type Engine struct {
	driver  *parser.Driver
	store   *graph.Store
	text    *textindex.Index
	sim     *simindex.Index
	persist *persistence.Store // optional; nil methods are no-ops

	chunkWindow  int
	chunkOverlap int
	taintMaxHops int
	batchWorkers int

	filesMu sync.RWMutex
	files   map[string][]string // path -> content split into lines
	tokens  map[string][]int    // path -> token index -> 1-based line number

	locksMu sync.Mutex
	locks   map[string]*fileLock
}

// New returns a ready-to-use Engine.
func New(opts ...Option) *Engine {
	e := &Engine{
		driver:       parser.NewDriver(),
		store:        graph.New(),
		text:         textindex.New(),
		sim:          simindex.New(),
		chunkWindow:  defaultChunkWindow,
		chunkOverlap: defaultChunkOverlap,
		taintMaxHops: defaultTaintMaxHops,
		batchWorkers: defaultBatchWorkers,
		files:        make(map[string][]string),
		tokens:       make(map[string][]int),
		locks:        make(map[string]*fileLock),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Engine) lockFile(path string) {
	e.locksMu.Lock()
	fl, ok := e.locks[path]
	if !ok {
		fl = &fileLock{}
		e.locks[path] = fl
	}
	fl.count++
	e.locksMu.Unlock()

	fl.mu.Lock()
}

func (e *Engine) unlockFile(path string) {
	e.locksMu.Lock()
	fl, ok := e.locks[path]
	if !ok {
		e.locksMu.Unlock()
		return
	}
	fl.count--
	if fl.count == 0 {
		delete(e.locks, path)
	}
	e.locksMu.Unlock()

	fl.mu.Unlock()
}

// IndexFile parses, extracts and indexes content under path. Returns false (not an error)
// when the file's extension has no registered grammar.
func (e *Engine) IndexFile(ctx context.Context, path string, content []byte) bool {
	if !e.driver.IsSupported(path) {
		return false
	}
	language, ok := lang.Detect(path)
	if !ok {
		return false
	}

	e.lockFile(path)
	defer e.unlockFile(path)

	tree, err := e.driver.Parse(ctx, path, content)
	if err != nil {
		return false
	}
	defer tree.Close()

	fp := parser.Extract(tree, path, language)
	e.indexExtracted(path, content, fp)
	_ = e.persist.PersistFile(ctx, path, fp)
	return true
}

func (e *Engine) indexExtracted(path string, content []byte, fp *parser.FileParse) {
	lines := splitLines(string(content))

	e.filesMu.Lock()
	e.files[path] = lines
	e.tokens[path] = tokenLineMap(lines)
	e.filesMu.Unlock()

	e.store.IndexFile(path, fp)
	e.text.Add(path, string(content))

	e.sim.RemoveFile(path)
	if len(fp.Symbols) > 0 {
		for _, sym := range fp.Symbols {
			text := sliceLines(lines, sym.StartLine, sym.EndLine)
			e.sim.AddChunk(simindex.Chunk{ID: sym.ID, FilePath: path, StartLine: sym.StartLine, EndLine: sym.EndLine}, text)
		}
	} else {
		for _, c := range simindex.WindowChunks(path, lines, e.chunkWindow, e.chunkOverlap) {
			e.sim.AddChunk(c, sliceLines(lines, c.StartLine, c.EndLine))
		}
	}
}

// FileInput is one (path, content) pair for IndexFiles.
type FileInput struct {
	Path    string
	Content []byte
}

// IndexFiles indexes a batch of (path, content) pairs concurrently, bounded by
// batchWorkers, and returns the count successfully indexed.
func (e *Engine) IndexFiles(ctx context.Context, batch []FileInput) int {
	var count int32Counter
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.batchWorkers)

	for _, f := range batch {
		f := f
		g.Go(func() error {
			if e.IndexFile(gctx, f.Path, f.Content) {
				count.add(1)
			}
			return nil
		})
	}
	_ = g.Wait()
	return count.get()
}

// int32Counter is a tiny concurrent counter, avoiding a full sync/atomic.Int64 import for
// a value this small and local.
type int32Counter struct {
	mu sync.Mutex
	n  int
}

func (c *int32Counter) add(d int) {
	c.mu.Lock()
	c.n += d
	c.mu.Unlock()
}

func (c *int32Counter) get() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.n
}

// RemoveFile removes path from every index. Reports whether it had been indexed.
func (e *Engine) RemoveFile(path string) bool {
	e.lockFile(path)
	defer e.unlockFile(path)

	removed := e.store.RemoveFile(path)
	e.text.Remove(path)
	e.sim.RemoveFile(path)

	e.filesMu.Lock()
	delete(e.files, path)
	delete(e.tokens, path)
	e.filesMu.Unlock()

	_ = e.persist.DeleteFile(context.Background(), path)

	return removed
}

// Clear releases all indexed state.
func (e *Engine) Clear() {
	e.store.Clear()
	e.text.Clear()
	e.sim.Clear()
	e.filesMu.Lock()
	e.files = make(map[string][]string)
	e.tokens = make(map[string][]int)
	e.filesMu.Unlock()
}

// FindSymbols returns Symbols matching namePattern and, if kind is non-empty, kind.
func (e *Engine) FindSymbols(namePattern string, kind lang.SymbolKind) []parser.Symbol {
	return e.store.FindSymbols(namePattern, kind)
}

// SymbolAt returns the innermost Symbol in path containing the 1-based line.
func (e *Engine) SymbolAt(path string, line int) (parser.Symbol, bool) {
	return e.store.SymbolAt(path, line)
}

// SymbolsInFile returns path's Symbols in declaration order.
func (e *Engine) SymbolsInFile(path string) []parser.Symbol {
	return e.store.SymbolsInFile(path)
}

// GetFile returns path's full content, or false if it isn't indexed.
func (e *Engine) GetFile(path string) (string, bool) {
	e.filesMu.RLock()
	defer e.filesMu.RUnlock()
	lines, ok := e.files[path]
	if !ok {
		return "", false
	}
	return strings.Join(lines, "\n"), true
}

// GetFileLines returns the 1-based, inclusive [start, end] line range of path. Reports
// false (InvalidRange, not an error) when start > end or the range falls outside the file.
func (e *Engine) GetFileLines(path string, start, end int) (string, bool) {
	e.filesMu.RLock()
	defer e.filesMu.RUnlock()
	lines, ok := e.files[path]
	if !ok {
		return "", false
	}
	if start < 1 || start > end || start > len(lines) {
		return "", false
	}
	return sliceLines(lines, start, end), true
}

// SearchHit is one ranked full-text search result.
type SearchHit struct {
	FilePath  string
	StartLine int
	EndLine   int
	Content   string
	Score     float64
}

// Search runs a BM25 query and returns up to k hits with a 3-line excerpt centered on the
// first matched token.
func (e *Engine) Search(query string, k int) []SearchHit {
	hits := e.text.Search(query, k)
	out := make([]SearchHit, 0, len(hits))

	e.filesMu.RLock()
	defer e.filesMu.RUnlock()

	for _, h := range hits {
		lines := e.files[h.DocID]
		tokenLines := e.tokens[h.DocID]
		line := 1
		if h.MatchedToken < len(tokenLines) {
			line = tokenLines[h.MatchedToken]
		}
		start, end := line-1, line+1
		if start < 1 {
			start = 1
		}
		if end > len(lines) {
			end = len(lines)
		}
		out = append(out, SearchHit{
			FilePath:  h.DocID,
			StartLine: start,
			EndLine:   end,
			Content:   sliceLines(lines, start, end),
			Score:     h.Score,
		})
	}
	return out
}

// FindSimilar runs a TF-IDF similarity query over indexed chunks.
func (e *Engine) FindSimilar(code string, k int) []simindex.Match {
	return e.sim.FindSimilar(code, k)
}

// FindReferences returns every Reference recorded for name.
func (e *Engine) FindReferences(name string) []parser.Reference {
	return e.store.FindReferences(name)
}

// Callers returns the Symbols that call symbolID.
func (e *Engine) Callers(symbolID string) []parser.Symbol {
	return e.store.Callers(symbolID)
}

// Callees returns the Symbols symbolID calls.
func (e *Engine) Callees(symbolID string) []parser.Symbol {
	return e.store.Callees(symbolID)
}

// TaintedPaths returns up to k lexical source-to-sink findings.
func (e *Engine) TaintedPaths(k int) []taint.Finding {
	return taint.New(e.store, e.taintMaxHops).TaintedPaths(k)
}

// ListFiles returns every indexed file path.
func (e *Engine) ListFiles() []string {
	return e.store.ListFiles()
}

// Stats reports {files, symbols, chunks}.
type Stats struct {
	Files   int
	Symbols int
	Chunks  int
}

// Stats returns the current corpus-level counts.
func (e *Engine) Stats() Stats {
	gs := e.store.Stats()
	return Stats{Files: gs.Files, Symbols: gs.Symbols, Chunks: e.sim.Count()}
}

func splitLines(content string) []string {
	if content == "" {
		return nil
	}
	return strings.Split(strings.TrimSuffix(content, "\n"), "\n")
}

// sliceLines returns the 1-based, inclusive [start, end] line range, clamped to bounds.
func sliceLines(lines []string, start, end int) string {
	if start < 1 {
		start = 1
	}
	if end > len(lines) {
		end = len(lines)
	}
	if start > end || start > len(lines) {
		return ""
	}
	return strings.Join(lines[start-1:end], "\n")
}

// tokenLineMap maps each token position, in tokenize order, to the 1-based source line it
// came from. Tokenizing line by line and concatenating is equivalent to tokenizing the
// whole file, since newlines already fall outside the tokenizer's alphanumeric runs.
func tokenLineMap(lines []string) []int {
	var out []int
	for i, line := range lines {
		n := len(tokenize.Tokenize(line))
		for j := 0; j < n; j++ {
			out = append(out, i+1)
		}
	}
	return out
}
