package vectorstore

import (
	"errors"
	"math"
	"testing"

	"docquiz/internal/domain"
)

func chunk(id, docID string) domain.Chunk {
	return domain.Chunk{ID: id, DocumentID: docID, Text: "text for " + id}
}

func TestAdd_EstablishesDimension(t *testing.T) {
	s := NewMemoryStore()
	if err := s.Add(chunk("a:0", "a"), []float64{1, 0, 0}); err != nil {
		t.Fatalf("first Add: %v", err)
	}
	err := s.Add(chunk("a:1", "a"), []float64{1, 0})
	if !errors.Is(err, domain.ErrInvalidConfig) {
		t.Fatalf("mismatched Add error = %v, want ErrInvalidConfig", err)
	}
	if s.Len() != 1 {
		t.Errorf("Len = %d after rejected Add, want 1", s.Len())
	}
}

func TestAdd_EmptyVector(t *testing.T) {
	s := NewMemoryStore()
	if err := s.Add(chunk("a:0", "a"), nil); !errors.Is(err, domain.ErrInvalidConfig) {
		t.Errorf("empty vector Add error = %v, want ErrInvalidConfig", err)
	}
}

func TestSearch_OrdersByDescendingSimilarity(t *testing.T) {
	s := NewMemoryStore()
	s.Add(chunk("a:0", "a"), []float64{1, 0, 0})
	s.Add(chunk("a:1", "a"), []float64{0, 1, 0})
	s.Add(chunk("a:2", "a"), []float64{0.9, 0.1, 0})

	results, err := s.Search([]float64{1, 0, 0}, 3)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("got %d results, want 3", len(results))
	}
	if results[0].Chunk.ID != "a:0" || results[1].Chunk.ID != "a:2" || results[2].Chunk.ID != "a:1" {
		t.Errorf("order = %s, %s, %s", results[0].Chunk.ID, results[1].Chunk.ID, results[2].Chunk.ID)
	}
	for i := 1; i < len(results); i++ {
		if results[i].Score > results[i-1].Score {
			t.Errorf("scores not descending at %d", i)
		}
	}
	if math.Abs(results[0].Score-1.0) > 1e-9 {
		t.Errorf("exact match score = %g, want 1", results[0].Score)
	}
}

func TestSearch_StableTies(t *testing.T) {
	s := NewMemoryStore()
	// Identical vectors tie exactly; insertion order must hold.
	s.Add(chunk("a:0", "a"), []float64{0, 1})
	s.Add(chunk("a:1", "a"), []float64{0, 1})
	s.Add(chunk("a:2", "a"), []float64{0, 1})

	results, err := s.Search([]float64{1, 1}, 3)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	for i, want := range []string{"a:0", "a:1", "a:2"} {
		if results[i].Chunk.ID != want {
			t.Errorf("result %d = %s, want %s", i, results[i].Chunk.ID, want)
		}
	}
}

func TestSearch_TopKClamping(t *testing.T) {
	s := NewMemoryStore()
	s.Add(chunk("a:0", "a"), []float64{1, 0})
	s.Add(chunk("a:1", "a"), []float64{0, 1})

	results, err := s.Search([]float64{1, 0}, 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 2 {
		t.Errorf("topK beyond size: got %d results, want 2", len(results))
	}

	results, _ = s.Search([]float64{1, 0}, 1)
	if len(results) != 1 {
		t.Errorf("topK 1: got %d results", len(results))
	}
}

func TestSearch_EmptyStore(t *testing.T) {
	s := NewMemoryStore()
	results, err := s.Search([]float64{1, 0}, 5)
	if err != nil {
		t.Fatalf("Search on empty store: %v", err)
	}
	if results != nil {
		t.Errorf("got %d results from empty store", len(results))
	}
}

func TestSearch_DimensionMismatch(t *testing.T) {
	s := NewMemoryStore()
	s.Add(chunk("a:0", "a"), []float64{1, 0, 0})
	_, err := s.Search([]float64{1, 0}, 5)
	if !errors.Is(err, domain.ErrInvalidConfig) {
		t.Errorf("mismatched query error = %v, want ErrInvalidConfig", err)
	}
}

func TestDeleteDocument(t *testing.T) {
	s := NewMemoryStore()
	s.Add(chunk("a:0", "a"), []float64{1, 0})
	s.Add(chunk("b:0", "b"), []float64{0, 1})
	s.Add(chunk("a:1", "a"), []float64{1, 1})

	if removed := s.DeleteDocument("a"); removed != 2 {
		t.Errorf("removed = %d, want 2", removed)
	}
	if s.Len() != 1 {
		t.Errorf("Len = %d after delete, want 1", s.Len())
	}
	if got := s.DocumentChunks("a"); len(got) != 0 {
		t.Errorf("document a still has %d chunks", len(got))
	}
	results, err := s.Search([]float64{0, 1}, 5)
	if err != nil {
		t.Fatalf("Search after delete: %v", err)
	}
	if len(results) != 1 || results[0].Chunk.ID != "b:0" {
		t.Errorf("survivor = %+v", results)
	}
	if removed := s.DeleteDocument("missing"); removed != 0 {
		t.Errorf("removed = %d for unknown document", removed)
	}
}

func TestClear_ResetsDimension(t *testing.T) {
	s := NewMemoryStore()
	s.Add(chunk("a:0", "a"), []float64{1, 0, 0})
	s.Clear()
	if s.Len() != 0 {
		t.Fatalf("Len = %d after Clear", s.Len())
	}
	if err := s.Add(chunk("b:0", "b"), []float64{1, 0}); err != nil {
		t.Errorf("Add with new dimension after Clear: %v", err)
	}
}

func TestChunks_InsertionOrder(t *testing.T) {
	s := NewMemoryStore()
	s.Add(chunk("a:0", "a"), []float64{1, 0})
	s.Add(chunk("b:0", "b"), []float64{0, 1})
	s.Add(chunk("a:1", "a"), []float64{1, 1})

	all := s.Chunks()
	for i, want := range []string{"a:0", "b:0", "a:1"} {
		if all[i].ID != want {
			t.Errorf("Chunks()[%d] = %s, want %s", i, all[i].ID, want)
		}
	}
	docA := s.DocumentChunks("a")
	if len(docA) != 2 || docA[0].ID != "a:0" || docA[1].ID != "a:1" {
		t.Errorf("DocumentChunks(a) = %+v", docA)
	}
}

func TestCosine(t *testing.T) {
	cases := []struct {
		a, b []float64
		want float64
	}{
		{[]float64{1, 0}, []float64{1, 0}, 1},
		{[]float64{1, 0}, []float64{0, 1}, 0},
		{[]float64{1, 0}, []float64{-1, 0}, -1},
		{[]float64{0, 0}, []float64{1, 0}, 0},
	}
	for _, tc := range cases {
		if got := cosine(tc.a, tc.b); math.Abs(got-tc.want) > 1e-9 {
			t.Errorf("cosine(%v, %v) = %g, want %g", tc.a, tc.b, got, tc.want)
		}
	}
}
