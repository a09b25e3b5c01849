package pipeline

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"strings"
	"sync"

	"docquiz/internal/domain"
)

// Pipeline orchestrates chunking, embedding, storage and retrieval for one
// session's documents.
type Pipeline struct {
	chunker    domain.Chunker
	embedder   domain.Embedder
	store      domain.VectorStore
	reranker   domain.ReRanker
	oversample int

	mu        sync.Mutex
	docHashes map[string]string // content hash -> document id
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithOversample sets how many raw candidates are fetched per requested
// chunk before re-ranking. Default is 3.
func WithOversample(factor int) Option {
	return func(p *Pipeline) {
		if factor >= 1 {
			p.oversample = factor
		}
	}
}

// New assembles a retrieval pipeline around an explicit store instance, so
// sessions and tests stay isolated from one another.
func New(chunker domain.Chunker, embedder domain.Embedder, store domain.VectorStore, reranker domain.ReRanker, opts ...Option) *Pipeline {
	p := &Pipeline{
		chunker:    chunker,
		embedder:   embedder,
		store:      store,
		reranker:   reranker,
		oversample: 3,
		docHashes:  make(map[string]string),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Ingest chunks, embeds and stores a document, returning the number of
// chunks stored. Re-ingesting identical content is a no-op returning 0.
func (p *Pipeline) Ingest(ctx context.Context, documentID, text string) (int, error) {
	hash := contentHash(text)
	p.mu.Lock()
	if _, seen := p.docHashes[hash]; seen {
		p.mu.Unlock()
		return 0, nil
	}
	p.docHashes[hash] = documentID
	p.mu.Unlock()

	chunks, err := p.chunker.Chunk(documentID, text)
	if err != nil {
		return 0, fmt.Errorf("chunk document %s: %w", documentID, err)
	}
	if len(chunks) == 0 {
		return 0, nil
	}
	texts := make([]string, len(chunks))
	for i, ch := range chunks {
		texts[i] = ch.Text
	}
	vectors, err := p.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return 0, fmt.Errorf("embed document %s: %w", documentID, err)
	}
	for i, ch := range chunks {
		if err := p.store.Add(ch, vectors[i]); err != nil {
			return i, fmt.Errorf("store chunk %s: %w", ch.ID, err)
		}
	}
	return len(chunks), nil
}

// RetrieveContext returns up to maxChunks chunks relevant to the topic, in
// descending rerank order. An empty topic returns the first chunks in
// document order; an empty store returns an empty result.
func (p *Pipeline) RetrieveContext(ctx context.Context, topic string, maxChunks int) ([]domain.Chunk, error) {
	if maxChunks <= 0 {
		maxChunks = 5
	}
	if p.store.Len() == 0 {
		return nil, nil
	}
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return firstN(p.store.Chunks(), maxChunks), nil
	}

	vec, err := p.embedder.Embed(ctx, topic)
	if err != nil {
		return nil, fmt.Errorf("embed topic: %w", err)
	}
	k := maxChunks * p.oversample
	if k < maxChunks {
		k = maxChunks
	}
	candidates, err := p.store.Search(vec, k)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}
	ranked := p.reranker.Rerank(topic, candidates, maxChunks)
	chunks := make([]domain.Chunk, len(ranked))
	for i, r := range ranked {
		chunks[i] = r.Chunk
	}
	return chunks, nil
}

// DeleteDocument removes a document's chunks from the store and allows the
// same content to be ingested again.
func (p *Pipeline) DeleteDocument(documentID string) int {
	p.mu.Lock()
	for hash, id := range p.docHashes {
		if id == documentID {
			delete(p.docHashes, hash)
		}
	}
	p.mu.Unlock()
	return p.store.DeleteDocument(documentID)
}

// Clear drops all documents from the session.
func (p *Pipeline) Clear() {
	p.mu.Lock()
	p.docHashes = make(map[string]string)
	p.mu.Unlock()
	p.store.Clear()
}

// Stats describes the session's retrieval state.
type Stats struct {
	Chunks    int `json:"total_chunks"`
	Documents int `json:"unique_documents"`
}

// Stats returns counts over the current store contents.
func (p *Pipeline) Stats() Stats {
	docs := make(map[string]struct{})
	for _, ch := range p.store.Chunks() {
		docs[ch.DocumentID] = struct{}{}
	}
	return Stats{Chunks: p.store.Len(), Documents: len(docs)}
}

func firstN(chunks []domain.Chunk, n int) []domain.Chunk {
	if n > len(chunks) {
		n = len(chunks)
	}
	return chunks[:n]
}

func contentHash(text string) string {
	h := sha1.Sum([]byte(text))
	return hex.EncodeToString(h[:])
}
