// Package textindex implements the BM25 full-text index over indexed documents.
package textindex

import (
	"math"
	"sort"
	"sync"

	"github.com/heefoo/codeintel/internal/tokenize"
)

const (
	k1 = 1.2
	b  = 0.75
)

type posting struct {
	docID string
	freq  int
	// firstPos is the token index of the term's first occurrence, used to anchor excerpts.
	firstPos int
}

// Hit is one ranked search result.
type Hit struct {
	DocID string
	Score float64
	// MatchedToken is the token index of the first occurrence of any query term in the
	// document; the caller maps this back to a line number to produce an excerpt.
	MatchedToken int
}

// Index is a BM25 inverted index. Safe for concurrent use.
type Index struct {
	mu sync.RWMutex

	postings map[string][]posting // term -> postings, sorted by docID
	docLen   map[string]int       // docID -> token count
	docTerms map[string]map[string]bool
	totalLen int
	docCount int
}

// New returns an empty Index.
func New() *Index {
	return &Index{
		postings: make(map[string][]posting),
		docLen:   make(map[string]int),
		docTerms: make(map[string]map[string]bool),
	}
}

// Clear drops every indexed document.
func (idx *Index) Clear() {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	idx.postings = make(map[string][]posting)
	idx.docLen = make(map[string]int)
	idx.docTerms = make(map[string]map[string]bool)
	idx.totalLen = 0
	idx.docCount = 0
}

// Add inserts or replaces the postings for docID, tokenizing text with the shared
// tokenizer. A pre-existing docID is removed first so reindexing a file is idempotent.
func (idx *Index) Add(docID string, text string) {
	tokens := tokenize.Tokenize(text)

	idx.mu.Lock()
	defer idx.mu.Unlock()
	idx.removeLocked(docID)

	if len(tokens) == 0 {
		return
	}

	counts := make(map[string]int, len(tokens))
	firstPos := make(map[string]int, len(tokens))
	for i, tok := range tokens {
		if _, ok := firstPos[tok]; !ok {
			firstPos[tok] = i
		}
		counts[tok]++
	}

	terms := make(map[string]bool, len(counts))
	for term, freq := range counts {
		idx.postings[term] = insertPosting(idx.postings[term], posting{docID: docID, freq: freq, firstPos: firstPos[term]})
		terms[term] = true
	}

	idx.docTerms[docID] = terms
	idx.docLen[docID] = len(tokens)
	idx.totalLen += len(tokens)
	idx.docCount++
}

func insertPosting(list []posting, p posting) []posting {
	i := sort.Search(len(list), func(i int) bool { return list[i].docID >= p.docID })
	list = append(list, posting{})
	copy(list[i+1:], list[i:])
	list[i] = p
	return list
}

// Remove deletes all postings for docID.
func (idx *Index) Remove(docID string) {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	idx.removeLocked(docID)
}

func (idx *Index) removeLocked(docID string) {
	terms, ok := idx.docTerms[docID]
	if !ok {
		return
	}
	for term := range terms {
		list := idx.postings[term]
		for i, p := range list {
			if p.docID == docID {
				idx.postings[term] = append(list[:i], list[i+1:]...)
				break
			}
		}
		if len(idx.postings[term]) == 0 {
			delete(idx.postings, term)
		}
	}
	idx.totalLen -= idx.docLen[docID]
	idx.docCount--
	delete(idx.docLen, docID)
	delete(idx.docTerms, docID)
}

// Search tokenizes query identically to indexed documents and returns the top k documents
// by summed BM25 score across query terms, descending, tie-broken by smaller docID. A query
// that yields no tokens (empty, or only punctuation and single characters) returns nil.
func (idx *Index) Search(query string, k int) []Hit {
	terms := tokenize.Tokenize(query)
	if len(terms) == 0 || k <= 0 {
		return nil
	}

	idx.mu.RLock()
	defer idx.mu.RUnlock()

	if idx.docCount == 0 {
		return nil
	}
	avgLen := float64(idx.totalLen) / float64(idx.docCount)

	scores := make(map[string]float64)
	offsets := make(map[string]int)
	seen := make(map[string]bool)
	for _, term := range terms {
		if seen[term] {
			continue
		}
		seen[term] = true

		list := idx.postings[term]
		if len(list) == 0 {
			continue
		}
		idf := math.Log(1 + (float64(idx.docCount)-float64(len(list))+0.5)/(float64(len(list))+0.5))

		for _, p := range list {
			dl := float64(idx.docLen[p.docID])
			tf := float64(p.freq)
			score := idf * (tf * (k1 + 1)) / (tf + k1*(1-b+b*dl/avgLen))
			scores[p.docID] += score

			if off, ok := offsets[p.docID]; !ok || p.firstPos < off {
				offsets[p.docID] = p.firstPos
			}
		}
	}

	hits := make([]Hit, 0, len(scores))
	for docID, score := range scores {
		hits = append(hits, Hit{DocID: docID, Score: score, MatchedToken: offsets[docID]})
	}
	sort.Slice(hits, func(i, j int) bool {
		if hits[i].Score != hits[j].Score {
			return hits[i].Score > hits[j].Score
		}
		return hits[i].DocID < hits[j].DocID
	})

	if len(hits) > k {
		hits = hits[:k]
	}
	return hits
}
