package domain

import "context"

// Chunker splits document text into overlapping chunks suitable for
// retrieval indexing.
type Chunker interface {
	Chunk(documentID, text string) ([]Chunk, error)
}

// Embedder converts free text into fixed-dimension numeric vectors.
// Implementations must be idempotent: the same text yields the same vector
// for a given backend availability state.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float64, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float64, error)
	Dimension() int
}

// VectorStore holds embedded chunks in memory and supports k-nearest-neighbor
// similarity search. Safe for concurrent use.
type VectorStore interface {
	Add(chunk Chunk, vector []float64) error
	Search(vector []float64, topK int) ([]RetrievalResult, error)
	Len() int
	Chunks() []Chunk
	DocumentChunks(documentID string) []Chunk
	DeleteDocument(documentID string) int
	Clear()
}

// ReRanker re-scores an initial candidate set using a signal complementary
// to the first-pass similarity ranking.
type ReRanker interface {
	Rerank(query string, candidates []RetrievalResult, topK int) []RetrievalResult
}

// Retriever is the ingestion and retrieval surface exposed by the pipeline.
type Retriever interface {
	Ingest(ctx context.Context, documentID, text string) (int, error)
	RetrieveContext(ctx context.Context, topic string, maxChunks int) ([]Chunk, error)
}

// Summarizer produces a brief summary of the provided text.
type Summarizer interface {
	Summarize(text string, maxSentences int) (string, error)
}
