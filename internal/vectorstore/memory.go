package vectorstore

import (
	"fmt"
	"math"
	"sort"
	"sync"

	"docquiz/internal/domain"
)

// MemoryStore is an in-memory vector store using brute-force cosine
// similarity. It is scoped to a single session; records live only as long as
// the process. Mutation is serialized against concurrent searches.
type MemoryStore struct {
	mu        sync.RWMutex
	dimension int
	chunks    []domain.Chunk
	vectors   [][]float64
}

// NewMemoryStore creates an empty store. Dimensionality is established by
// the first Add.
func NewMemoryStore() *MemoryStore { return &MemoryStore{} }

// Add inserts a chunk with its embedding. A vector whose dimensionality does
// not match the store's established dimensionality is rejected and the store
// is left unchanged.
func (s *MemoryStore) Add(chunk domain.Chunk, vector []float64) error {
	if len(vector) == 0 {
		return fmt.Errorf("%w: empty vector", domain.ErrInvalidConfig)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.dimension == 0 {
		s.dimension = len(vector)
	} else if len(vector) != s.dimension {
		return fmt.Errorf("%w: vector dimension %d, store dimension %d",
			domain.ErrInvalidConfig, len(vector), s.dimension)
	}
	chunk.Embedding = vector
	s.chunks = append(s.chunks, chunk)
	s.vectors = append(s.vectors, vector)
	return nil
}

// Search returns up to topK records ordered by descending cosine similarity,
// ties broken by insertion order. topK larger than the store returns all.
func (s *MemoryStore) Search(vector []float64, topK int) ([]domain.RetrievalResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.vectors) == 0 {
		return nil, nil
	}
	if len(vector) != s.dimension {
		return nil, fmt.Errorf("%w: query dimension %d, store dimension %d",
			domain.ErrInvalidConfig, len(vector), s.dimension)
	}
	results := make([]domain.RetrievalResult, len(s.vectors))
	for i := range s.vectors {
		results[i] = domain.RetrievalResult{
			Chunk: s.chunks[i],
			Score: cosine(vector, s.vectors[i]),
		}
	}
	sort.SliceStable(results, func(i, j int) bool { return results[i].Score > results[j].Score })
	if topK > 0 && topK < len(results) {
		results = results[:topK]
	}
	return results, nil
}

// Len returns the number of stored records.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.chunks)
}

// Chunks returns all stored chunks in insertion order.
func (s *MemoryStore) Chunks() []domain.Chunk {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Chunk, len(s.chunks))
	copy(out, s.chunks)
	return out
}

// DocumentChunks returns the stored chunks of one document in insertion order.
func (s *MemoryStore) DocumentChunks(documentID string) []domain.Chunk {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.Chunk
	for _, ch := range s.chunks {
		if ch.DocumentID == documentID {
			out = append(out, ch)
		}
	}
	return out
}

// DeleteDocument removes all chunks of a document and returns how many were
// removed.
func (s *MemoryStore) DeleteDocument(documentID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	chunks := s.chunks[:0]
	vectors := s.vectors[:0]
	for i, ch := range s.chunks {
		if ch.DocumentID == documentID {
			removed++
			continue
		}
		chunks = append(chunks, ch)
		vectors = append(vectors, s.vectors[i])
	}
	s.chunks = chunks
	s.vectors = vectors
	return removed
}

// Clear removes all records. Dimensionality is re-established on the next Add.
func (s *MemoryStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dimension = 0
	s.chunks = nil
	s.vectors = nil
}

// cosine calculates the cosine similarity between two vectors, in [-1, 1].
func cosine(a, b []float64) float64 {
	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
