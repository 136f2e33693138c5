package simindex

import "testing"

func TestFindSimilarRanksClosestChunkFirst(t *testing.T) {
	idx := New()
	idx.AddChunk(Chunk{ID: "a", FilePath: "a.go", StartLine: 1, EndLine: 10}, "parse config file and validate schema")
	idx.AddChunk(Chunk{ID: "b", FilePath: "b.go", StartLine: 1, EndLine: 10}, "parse config file and write schema to disk")
	idx.AddChunk(Chunk{ID: "c", FilePath: "c.go", StartLine: 1, EndLine: 10}, "render html template for dashboard")

	matches := idx.FindSimilar("parse config file and validate schema", 10)
	if len(matches) == 0 {
		t.Fatal("expected at least one match")
	}
	if matches[0].Chunk.ID != "a" {
		t.Errorf("expected exact-text chunk a to rank first, got %s", matches[0].Chunk.ID)
	}
	for _, m := range matches {
		if m.Chunk.ID == "c" {
			t.Errorf("unrelated chunk c should not score positively: %+v", m)
		}
	}
}

func TestRemoveFileDropsAllItsChunks(t *testing.T) {
	idx := New()
	idx.AddChunk(Chunk{ID: "a1", FilePath: "a.go"}, "widget factory pattern")
	idx.AddChunk(Chunk{ID: "a2", FilePath: "a.go"}, "widget builder pattern")
	idx.AddChunk(Chunk{ID: "b1", FilePath: "b.go"}, "widget factory pattern")

	idx.RemoveFile("a.go")

	matches := idx.FindSimilar("widget factory pattern", 10)
	for _, m := range matches {
		if m.Chunk.FilePath == "a.go" {
			t.Errorf("expected a.go's chunks removed, still found %+v", m)
		}
	}
}

func TestWindowChunksOverlap(t *testing.T) {
	lines := make([]string, 120)
	for i := range lines {
		lines[i] = "line"
	}
	chunks := WindowChunks("big.txt", lines, 50, 10)
	if len(chunks) < 2 {
		t.Fatalf("expected multiple windows, got %d", len(chunks))
	}
	if chunks[0].StartLine != 1 || chunks[0].EndLine != 50 {
		t.Errorf("first window: got [%d,%d]", chunks[0].StartLine, chunks[0].EndLine)
	}
	if chunks[1].StartLine != 41 {
		t.Errorf("second window should start at line 41 (50-10 overlap), got %d", chunks[1].StartLine)
	}
	last := chunks[len(chunks)-1]
	if last.EndLine != 120 {
		t.Errorf("last window should end at the final line, got %d", last.EndLine)
	}
}
