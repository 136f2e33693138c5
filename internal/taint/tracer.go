// Package taint implements the lexical source/sink data-flow tracer: a bounded BFS over
// the Graph Store's call edges, grounded on the same BFS shape the teacher used for
// transitive-dependency and call-chain traversal.
package taint

import (
	"sort"
	"strings"

	"github.com/heefoo/codeintel/internal/graph"
	"github.com/heefoo/codeintel/internal/parser"
)

// sourcePatterns and sinkPatterns are matched as case-insensitive substrings against a
// CallEdge's callee_name. callee_name is always the bare trailing identifier of the call
// (§4.3's right-most-identifier rule), never a package- or receiver-qualified selector, so
// these patterns must match on the identifier alone rather than on a qualified form like
// "os.Getenv" or "exec.Command(".
var sourcePatterns = []string{
	"getenv", "form", "args", "readall", "input", "scanln", "stdin",
}

var sinkPatterns = []string{
	"command", "query", "exec", "eval", "system", "unmarshal", "open",
}

func matchesAny(name string, patterns []string) bool {
	lower := strings.ToLower(name)
	for _, p := range patterns {
		if strings.Contains(lower, p) {
			return true
		}
	}
	return false
}

// Finding is a lexical data-flow hint: a path from a Symbol whose body calls something
// matching a source pattern to one matching a sink pattern.
type Finding struct {
	Source   parser.Symbol
	Sink     parser.Symbol
	Path     []string // ordered Symbol ids, source first, sink last
	HopCount int
}

// Tracer runs bounded BFS over a Store's call edges. maxHops bounds path length; it is an
// engine construction-time default, not tunable per query.
type Tracer struct {
	store   *graph.Store
	maxHops int
}

// New returns a Tracer bounded to maxHops call-edge hops.
func New(store *graph.Store, maxHops int) *Tracer {
	if maxHops <= 0 {
		maxHops = 10
	}
	return &Tracer{store: store, maxHops: maxHops}
}

// isSource reports whether sym's own outgoing calls include a source-pattern match.
func (t *Tracer) isSource(sym parser.Symbol) bool {
	for _, e := range t.store.CallEdgesFrom(sym.ID) {
		if matchesAny(e.CalleeName, sourcePatterns) {
			return true
		}
	}
	return false
}

func (t *Tracer) isSink(sym parser.Symbol) bool {
	for _, e := range t.store.CallEdgesFrom(sym.ID) {
		if matchesAny(e.CalleeName, sinkPatterns) {
			return true
		}
	}
	return false
}

// TaintedPaths returns up to k Findings, ordered by ascending hop count then by smaller
// source Symbol id. Re-derived from the Graph Store on every call; never fails.
func (t *Tracer) TaintedPaths(k int) []Finding {
	if k <= 0 {
		return nil
	}

	var sources []parser.Symbol
	for _, path := range t.store.ListFiles() {
		for _, sym := range t.store.SymbolsInFile(path) {
			if t.isSource(sym) {
				sources = append(sources, sym)
			}
		}
	}
	sort.Slice(sources, func(i, j int) bool { return sources[i].ID < sources[j].ID })

	var findings []Finding
	for _, source := range sources {
		findings = append(findings, t.bfsFrom(source)...)
	}

	sort.Slice(findings, func(i, j int) bool {
		if findings[i].HopCount != findings[j].HopCount {
			return findings[i].HopCount < findings[j].HopCount
		}
		return findings[i].Source.ID < findings[j].Source.ID
	})

	if len(findings) > k {
		findings = findings[:k]
	}
	return findings
}

type queueItem struct {
	sym  parser.Symbol
	path []string
}

func (t *Tracer) bfsFrom(source parser.Symbol) []Finding {
	var findings []Finding

	visited := map[string]bool{source.ID: true}
	queue := []queueItem{{sym: source, path: []string{source.ID}}}

	for len(queue) > 0 {
		item := queue[0]
		queue = queue[1:]

		if len(item.path) > 1 && t.isSink(item.sym) {
			findings = append(findings, Finding{
				Source:   source,
				Sink:     item.sym,
				Path:     append([]string{}, item.path...),
				HopCount: len(item.path) - 1,
			})
			continue
		}

		if len(item.path)-1 >= t.maxHops {
			continue
		}

		for _, callee := range t.store.Callees(item.sym.ID) {
			if visited[callee.ID] {
				continue
			}
			visited[callee.ID] = true
			nextPath := append(append([]string{}, item.path...), callee.ID)
			queue = append(queue, queueItem{sym: callee, path: nextPath})
		}
	}

	return findings
}
