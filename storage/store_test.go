package storage

import (
	"testing"

	"videoTranscribe/core"
)

func indexedStore() *MemoryVectorStore {
	s := newMemoryVectorStore()
	s.Upsert("vid1", "en", []core.Segment{
		{ID: 0, Start: 0, End: 5, Text: "the cat sat on the mat"},
		{ID: 1, Start: 5, End: 10, Text: "dogs chase the ball in the park"},
		{ID: 2, Start: 10, End: 15, Text: "weather today is sunny and warm"},
	})
	return s
}

func TestMemorySearchRanksByRelevance(t *testing.T) {
	s := indexedStore()
	hits := s.Search("vid1", "cat mat", 2)
	if len(hits) != 2 {
		t.Fatalf("got %d hits, want 2", len(hits))
	}
	if hits[0].Text != "the cat sat on the mat" {
		t.Errorf("top hit = %q", hits[0].Text)
	}
	if hits[0].Score < hits[1].Score {
		t.Error("hits not ordered by descending score")
	}
	if hits[0].Start != 0 || hits[0].End != 5 {
		t.Errorf("top hit timing = %v..%v", hits[0].Start, hits[0].End)
	}
}

func TestMemorySearchScopedToVideo(t *testing.T) {
	s := indexedStore()
	if hits := s.Search("other-video", "cat", 5); len(hits) != 0 {
		t.Errorf("search must not leak across videos, got %+v", hits)
	}
}

func TestMemoryUpsertReplaces(t *testing.T) {
	s := indexedStore()
	n := s.Upsert("vid1", "en", []core.Segment{{Start: 0, End: 3, Text: "only one now"}})
	if n != 1 {
		t.Errorf("Upsert returned %d, want 1", n)
	}
	hits := s.Search("vid1", "cat", 10)
	if len(hits) != 1 {
		t.Fatalf("old segments still indexed: %+v", hits)
	}
	if hits[0].Text != "only one now" {
		t.Errorf("hit = %q", hits[0].Text)
	}
}

func TestMemorySearchDefaultTopK(t *testing.T) {
	s := indexedStore()
	if hits := s.Search("vid1", "the", 0); len(hits) != 3 {
		t.Errorf("non-positive topK should cap at available docs, got %d", len(hits))
	}
}

func TestCosine(t *testing.T) {
	a := map[string]float64{"cat": 1, "mat": 1}
	if got := cosine(a, a); got < 0.999 || got > 1.001 {
		t.Errorf("self similarity = %v, want 1", got)
	}
	b := map[string]float64{"dog": 1}
	if got := cosine(a, b); got != 0 {
		t.Errorf("disjoint similarity = %v, want 0", got)
	}
	if got := cosine(a, map[string]float64{}); got != 0 {
		t.Errorf("empty vector similarity = %v, want 0", got)
	}
}
