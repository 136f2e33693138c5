// Package graph holds the in-memory Graph Store: Symbols addressable by id and by
// (file_path, name), with CallEdges indexed both forward (by caller) and reverse (by callee
// name), and References indexed by identifier name.
package graph

import (
	"sort"
	"strings"
	"sync"

	"github.com/heefoo/codeintel/internal/lang"
	"github.com/heefoo/codeintel/internal/parser"
	"github.com/heefoo/codeintel/internal/util"
)

// Store is the in-memory Graph Store. Safe for concurrent use.
type Store struct {
	mu sync.RWMutex

	symbols   map[string]parser.Symbol // id -> Symbol
	byFile    map[string][]string      // file_path -> symbol ids, declaration order
	byName    map[string][]string      // name -> symbol ids
	byFileName map[string]string       // file_path + "\x00" + name -> symbol id (last wins)

	callsFrom map[string][]parser.CallEdge // caller symbol id -> edges
	callsTo   map[string][]parser.CallEdge // callee name -> edges

	refsByName map[string][]parser.Reference // identifier name -> references

	imports []parser.ImportEdge
}

// New returns an empty Store.
func New() *Store {
	return &Store{
		symbols:    make(map[string]parser.Symbol),
		byFile:     make(map[string][]string),
		byName:     make(map[string][]string),
		byFileName: make(map[string]string),
		callsFrom:  make(map[string][]parser.CallEdge),
		callsTo:    make(map[string][]parser.CallEdge),
		refsByName: make(map[string][]parser.Reference),
	}
}

// IndexFile replaces everything previously recorded for filePath with fp's contents.
func (s *Store) IndexFile(filePath string, fp *parser.FileParse) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.removeFileLocked(filePath)

	ids := make([]string, 0, len(fp.Symbols))
	for _, sym := range fp.Symbols {
		s.symbols[sym.ID] = sym
		ids = append(ids, sym.ID)
		s.byName[sym.Name] = append(s.byName[sym.Name], sym.ID)
		s.byFileName[fileNameKey(filePath, sym.Name)] = sym.ID
	}
	s.byFile[filePath] = ids

	for _, c := range fp.Calls {
		s.callsFrom[c.CallerSymbolID] = append(s.callsFrom[c.CallerSymbolID], c)
		s.callsTo[c.CalleeName] = append(s.callsTo[c.CalleeName], c)
	}

	for _, r := range fp.References {
		s.refsByName[r.Name] = append(s.refsByName[r.Name], r)
	}

	for _, im := range fp.Imports {
		s.imports = append(s.imports, im)
	}
}

// RemoveFile removes every Symbol, CallEdge, Reference and ImportEdge recorded for
// filePath. Reports whether anything was removed.
func (s *Store) RemoveFile(filePath string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.removeFileLocked(filePath)
}

func (s *Store) removeFileLocked(filePath string) bool {
	ids, ok := s.byFile[filePath]
	if !ok {
		return false
	}

	idSet := make(map[string]bool, len(ids))
	for _, id := range ids {
		idSet[id] = true
		sym := s.symbols[id]
		delete(s.symbols, id)
		delete(s.byFileName, fileNameKey(filePath, sym.Name))
		s.byName[sym.Name] = removeString(s.byName[sym.Name], id)
		if len(s.byName[sym.Name]) == 0 {
			delete(s.byName, sym.Name)
		}
	}
	delete(s.byFile, filePath)

	for caller := range s.callsFrom {
		if idSet[caller] {
			delete(s.callsFrom, caller)
		}
	}
	for callee, edges := range s.callsTo {
		filtered := edges[:0]
		for _, e := range edges {
			if e.FilePath != filePath {
				filtered = append(filtered, e)
			}
		}
		if len(filtered) == 0 {
			delete(s.callsTo, callee)
		} else {
			s.callsTo[callee] = filtered
		}
	}

	for name, refs := range s.refsByName {
		filtered := refs[:0]
		for _, r := range refs {
			if r.FilePath != filePath {
				filtered = append(filtered, r)
			}
		}
		if len(filtered) == 0 {
			delete(s.refsByName, name)
		} else {
			s.refsByName[name] = filtered
		}
	}

	filteredImports := s.imports[:0]
	for _, im := range s.imports {
		if im.SourceFilePath != filePath {
			filteredImports = append(filteredImports, im)
		}
	}
	s.imports = filteredImports

	return true
}

// Clear drops all indexed state.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.symbols = make(map[string]parser.Symbol)
	s.byFile = make(map[string][]string)
	s.byName = make(map[string][]string)
	s.byFileName = make(map[string]string)
	s.callsFrom = make(map[string][]parser.CallEdge)
	s.callsTo = make(map[string][]parser.CallEdge)
	s.refsByName = make(map[string][]parser.Reference)
	s.imports = nil
}

func fileNameKey(filePath, name string) string {
	return filePath + "\x00" + name
}

func removeString(list []string, v string) []string {
	out := list[:0]
	for _, item := range list {
		if item != v {
			out = append(out, item)
		}
	}
	return out
}

// SymbolsInFile returns filePath's Symbols in declaration order.
func (s *Store) SymbolsInFile(filePath string) []parser.Symbol {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := s.byFile[filePath]
	out := make([]parser.Symbol, 0, len(ids))
	for _, id := range ids {
		out = append(out, s.symbols[id])
	}
	return out
}

// SymbolAt returns the innermost Symbol in filePath whose [StartLine, EndLine] contains
// line, or false if none does.
func (s *Store) SymbolAt(filePath string, line int) (parser.Symbol, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var best parser.Symbol
	found := false
	for _, id := range s.byFile[filePath] {
		sym := s.symbols[id]
		if sym.StartLine <= line && line <= sym.EndLine {
			if !found || (sym.EndLine-sym.StartLine) < (best.EndLine-best.StartLine) {
				best = sym
				found = true
			}
		}
	}
	return best, found
}

// FindSymbols returns Symbols matching namePattern (case-insensitive substring, or glob if
// the pattern contains '*' or '?') and, if kind is non-empty, exactly matching kind.
func (s *Store) FindSymbols(namePattern string, kind lang.SymbolKind) []parser.Symbol {
	s.mu.RLock()
	defer s.mu.RUnlock()

	matchName := func(name string) bool { return true }
	if namePattern != "" {
		if strings.ContainsAny(namePattern, "*?") {
			matchName = func(name string) bool {
				return util.MatchPattern(namePattern, name)
			}
		} else {
			lowerPattern := strings.ToLower(namePattern)
			matchName = func(name string) bool {
				return strings.Contains(strings.ToLower(name), lowerPattern)
			}
		}
	}

	var out []parser.Symbol
	for _, sym := range s.symbols {
		if kind != "" && sym.Kind != kind {
			continue
		}
		if !matchName(sym.Name) {
			continue
		}
		out = append(out, sym)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// ResolveName returns the Symbols matching name, per SPEC_FULL §4.6's resolution rules:
// an exact match within sameFile wins over cross-file matches; otherwise every Symbol
// named name is returned. qualifiedHint, if non-empty, narrows multi-target results to
// Symbols whose QualifiedName has it as a prefix.
func (s *Store) ResolveName(name, sameFile, qualifiedHint string) []parser.Symbol {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := s.byName[name]
	if len(ids) == 0 {
		return nil
	}

	if sameFile != "" {
		if id, ok := s.byFileName[fileNameKey(sameFile, name)]; ok {
			return []parser.Symbol{s.symbols[id]}
		}
	}

	all := make([]parser.Symbol, 0, len(ids))
	for _, id := range ids {
		all = append(all, s.symbols[id])
	}

	if qualifiedHint != "" {
		var narrowed []parser.Symbol
		for _, sym := range all {
			if strings.HasPrefix(sym.QualifiedName, qualifiedHint) {
				narrowed = append(narrowed, sym)
			}
		}
		if len(narrowed) > 0 {
			all = narrowed
		}
	}

	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })
	return all
}

// Callers returns the Symbols of every CallEdge whose callee_name resolves (via
// ResolveName) to symbolID.
func (s *Store) Callers(symbolID string) []parser.Symbol {
	s.mu.RLock()
	target, ok := s.symbols[symbolID]
	if !ok {
		s.mu.RUnlock()
		return nil
	}
	edges := s.callsTo[target.Name]
	callerIDs := make(map[string]bool, len(edges))
	for _, e := range edges {
		callerIDs[e.CallerSymbolID] = true
	}
	var out []parser.Symbol
	for id := range callerIDs {
		if sym, ok := s.symbols[id]; ok {
			out = append(out, sym)
		}
	}
	s.mu.RUnlock()

	resolved := out[:0]
	for _, caller := range out {
		for _, callee := range s.ResolveName(target.Name, caller.FilePath, caller.QualifiedName) {
			if callee.ID == symbolID {
				resolved = append(resolved, caller)
				break
			}
		}
	}
	out = resolved

	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Callees returns the Symbols called by symbolID, resolving each CallEdge's callee_name
// with ResolveName (same-file-first, then all matches).
func (s *Store) Callees(symbolID string) []parser.Symbol {
	s.mu.RLock()
	caller, ok := s.symbols[symbolID]
	edges := append([]parser.CallEdge{}, s.callsFrom[symbolID]...)
	s.mu.RUnlock()
	if !ok {
		return nil
	}

	seen := make(map[string]bool)
	var out []parser.Symbol
	for _, e := range edges {
		for _, callee := range s.ResolveName(e.CalleeName, caller.FilePath, caller.QualifiedName) {
			if !seen[callee.ID] {
				seen[callee.ID] = true
				out = append(out, callee)
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// FindReferences returns every Reference recorded for name.
func (s *Store) FindReferences(name string) []parser.Reference {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := append([]parser.Reference{}, s.refsByName[name]...)
	sort.Slice(out, func(i, j int) bool {
		if out[i].FilePath != out[j].FilePath {
			return out[i].FilePath < out[j].FilePath
		}
		return out[i].Line < out[j].Line
	})
	return out
}

// ListFiles returns every indexed file path.
func (s *Store) ListFiles() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, 0, len(s.byFile))
	for path := range s.byFile {
		out = append(out, path)
	}
	sort.Strings(out)
	return out
}

// Stats reports the current symbol and file counts.
type Stats struct {
	Files   int
	Symbols int
}

// Stats returns the current Files and Symbols counts (Chunks is reported by the engine,
// which owns the similarity index).
func (s *Store) Stats() Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Stats{Files: len(s.byFile), Symbols: len(s.symbols)}
}

// CallEdgesFrom returns the raw CallEdges recorded for caller symbolID, unresolved.
func (s *Store) CallEdgesFrom(symbolID string) []parser.CallEdge {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]parser.CallEdge{}, s.callsFrom[symbolID]...)
}

// Symbol looks up a Symbol by id.
func (s *Store) Symbol(id string) (parser.Symbol, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sym, ok := s.symbols[id]
	return sym, ok
}
