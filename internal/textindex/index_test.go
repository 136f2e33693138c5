package textindex

import "testing"

func TestSearchRanksHigherTermFrequencyFirst(t *testing.T) {
	idx := New()
	idx.Add("b.go", "func parseConfig() { parseConfig() }")
	idx.Add("a.go", "func parseConfig() {}")
	idx.Add("c.go", "func unrelated() {}")

	hits := idx.Search("parseConfig", 10)
	if len(hits) != 2 {
		t.Fatalf("expected 2 hits, got %d: %+v", len(hits), hits)
	}
	if hits[0].DocID != "b.go" {
		t.Errorf("expected b.go (higher term frequency) to rank first, got %s", hits[0].DocID)
	}
}

func TestSearchTieBreaksBySmallerDocID(t *testing.T) {
	idx := New()
	idx.Add("z.go", "widget factory")
	idx.Add("a.go", "widget factory")

	hits := idx.Search("widget", 10)
	if len(hits) != 2 {
		t.Fatalf("expected 2 hits, got %d", len(hits))
	}
	if hits[0].DocID != "a.go" {
		t.Errorf("expected tie-break to favor a.go, got %s", hits[0].DocID)
	}
}

func TestRemoveDropsPostings(t *testing.T) {
	idx := New()
	idx.Add("a.go", "widget factory")
	idx.Remove("a.go")

	if hits := idx.Search("widget", 10); len(hits) != 0 {
		t.Errorf("expected no hits after remove, got %+v", hits)
	}
}

func TestReaddReplacesPreviousContent(t *testing.T) {
	idx := New()
	idx.Add("a.go", "widget factory")
	idx.Add("a.go", "completely different content")

	if hits := idx.Search("widget", 10); len(hits) != 0 {
		t.Errorf("expected stale tokens gone after reindex, got %+v", hits)
	}
	if hits := idx.Search("different", 10); len(hits) != 1 {
		t.Errorf("expected new content indexed, got %+v", hits)
	}
}

func TestEmptyQueryReturnsEmptyNotError(t *testing.T) {
	idx := New()
	idx.Add("a.go", "widget factory")

	if hits := idx.Search("", 10); hits != nil {
		t.Errorf("expected nil/empty for empty query, got %+v", hits)
	}
	if hits := idx.Search("!!!", 10); hits != nil {
		t.Errorf("expected nil/empty for an all-punctuation query, got %+v", hits)
	}
}
