// Package simindex implements the TF-IDF cosine similarity index over code chunks, the
// companion to internal/textindex's BM25 index.
package simindex

import (
	"math"
	"sort"
	"strconv"
	"sync"

	"github.com/heefoo/codeintel/internal/tokenize"
)

// Chunk is one unit of similarity-indexed text: a Symbol's body, or a fixed-line window of
// a file with no Symbols.
type Chunk struct {
	ID        string
	FilePath  string
	StartLine int
	EndLine   int
}

// Match is one ranked similarity result.
type Match struct {
	Chunk      Chunk
	Similarity float64
}

// Index is a TF-IDF similarity index over chunks. Safe for concurrent use. Correctness is
// defined as the exhaustive cosine comparison; per-term postings here are only an
// optimization to avoid scoring every chunk against every query.
type Index struct {
	mu sync.RWMutex

	chunks   map[string]Chunk
	termFreq map[string]map[string]int // chunkID -> term -> count
	postings map[string]map[string]bool // term -> set of chunkIDs containing it
}

// New returns an empty Index.
func New() *Index {
	return &Index{
		chunks:   make(map[string]Chunk),
		termFreq: make(map[string]map[string]int),
		postings: make(map[string]map[string]bool),
	}
}

// Clear drops every indexed chunk.
func (idx *Index) Clear() {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	idx.chunks = make(map[string]Chunk)
	idx.termFreq = make(map[string]map[string]int)
	idx.postings = make(map[string]map[string]bool)
}

// Count returns the number of chunks currently indexed.
func (idx *Index) Count() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return len(idx.chunks)
}

// AddChunk inserts or replaces a chunk's bag-of-tokens built from text.
func (idx *Index) AddChunk(chunk Chunk, text string) {
	tokens := tokenize.Tokenize(text)

	idx.mu.Lock()
	defer idx.mu.Unlock()
	idx.removeLocked(chunk.ID)

	if len(tokens) == 0 {
		idx.chunks[chunk.ID] = chunk
		return
	}

	counts := make(map[string]int, len(tokens))
	for _, tok := range tokens {
		counts[tok]++
	}

	idx.chunks[chunk.ID] = chunk
	idx.termFreq[chunk.ID] = counts
	for term := range counts {
		if idx.postings[term] == nil {
			idx.postings[term] = make(map[string]bool)
		}
		idx.postings[term][chunk.ID] = true
	}
}

// RemoveFile removes every chunk whose FilePath equals path.
func (idx *Index) RemoveFile(path string) {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	var ids []string
	for id, c := range idx.chunks {
		if c.FilePath == path {
			ids = append(ids, id)
		}
	}
	for _, id := range ids {
		idx.removeLocked(id)
	}
}

func (idx *Index) removeLocked(chunkID string) {
	for term := range idx.termFreq[chunkID] {
		delete(idx.postings[term], chunkID)
		if len(idx.postings[term]) == 0 {
			delete(idx.postings, term)
		}
	}
	delete(idx.termFreq, chunkID)
	delete(idx.chunks, chunkID)
}

// FindSimilar tokenizes codeText, builds its IDF-weighted query vector, and returns the top
// k chunks by cosine similarity, descending, tie-broken by smaller chunk ID.
func (idx *Index) FindSimilar(codeText string, k int) []Match {
	tokens := tokenize.Tokenize(codeText)
	if len(tokens) == 0 || k <= 0 {
		return nil
	}

	idx.mu.RLock()
	defer idx.mu.RUnlock()

	if len(idx.chunks) == 0 {
		return nil
	}

	queryCounts := make(map[string]int)
	for _, tok := range tokens {
		queryCounts[tok]++
	}

	candidates := make(map[string]bool)
	for term := range queryCounts {
		for id := range idx.postings[term] {
			candidates[id] = true
		}
	}

	idf := func(term string) float64 {
		df := len(idx.postings[term])
		if df == 0 {
			return 0
		}
		return math.Log(float64(len(idx.chunks)) / float64(df))
	}

	queryVec := make(map[string]float64, len(queryCounts))
	var queryNorm float64
	for term, tf := range queryCounts {
		w := float64(tf) * idf(term)
		queryVec[term] = w
		queryNorm += w * w
	}
	queryNorm = math.Sqrt(queryNorm)

	matches := make([]Match, 0, len(candidates))
	for id := range candidates {
		counts := idx.termFreq[id]
		var dot, docNorm float64
		for term, tf := range counts {
			w := float64(tf) * idf(term)
			docNorm += w * w
			if qw, ok := queryVec[term]; ok {
				dot += qw * w
			}
		}
		docNorm = math.Sqrt(docNorm)
		if queryNorm == 0 || docNorm == 0 {
			continue
		}
		sim := dot / (queryNorm * docNorm)
		if sim <= 0 {
			continue
		}
		matches = append(matches, Match{Chunk: idx.chunks[id], Similarity: sim})
	}

	sort.Slice(matches, func(i, j int) bool {
		if matches[i].Similarity != matches[j].Similarity {
			return matches[i].Similarity > matches[j].Similarity
		}
		return matches[i].Chunk.ID < matches[j].Chunk.ID
	})

	if len(matches) > k {
		matches = matches[:k]
	}
	return matches
}

// WindowChunks splits a file with no Symbols into fixed-line windows of size lines with
// the given overlap, per SPEC_FULL §4.5 (default 50/10).
func WindowChunks(filePath string, lines []string, size, overlap int) []Chunk {
	if size <= 0 || overlap >= size || len(lines) == 0 {
		return nil
	}

	var chunks []Chunk
	step := size - overlap
	for start := 0; start < len(lines); start += step {
		end := start + size
		if end > len(lines) {
			end = len(lines)
		}
		chunks = append(chunks, Chunk{
			ID:        chunkID(filePath, start+1),
			FilePath:  filePath,
			StartLine: start + 1,
			EndLine:   end,
		})
		if end == len(lines) {
			break
		}
	}
	return chunks
}

func chunkID(filePath string, startLine int) string {
	return filePath + "::window::" + strconv.Itoa(startLine)
}
