package embedding

import (
	"context"
	"log"
	"sync/atomic"
	"time"
)

// Encoder is the remote embedding call the engine wraps.
type Encoder interface {
	Encode(ctx context.Context, texts []string) ([][]float64, error)
}

// Engine produces embeddings via a remote encoder, falling back to a
// deterministic local hash encoding when the remote path fails. The engine
// never surfaces transport errors to callers: a failed remote call degrades
// relevance, it does not break the pipeline.
type Engine struct {
	remote   Encoder
	fallback *HashEncoder
	timeout  time.Duration
	degraded atomic.Bool
}

// NewEngine creates an engine of the given dimension. The fallback encoder
// uses the same dimension as the remote model, so vectors from either path
// are interchangeable in one store. A nil remote encoder means the fallback
// path is always used.
func NewEngine(remote Encoder, dim int, timeout time.Duration) *Engine {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Engine{
		remote:   remote,
		fallback: NewHashEncoder(dim),
		timeout:  timeout,
	}
}

// Dimension returns the dimensionality of produced vectors.
func (e *Engine) Dimension() int { return e.fallback.Dimension() }

// Degraded reports whether the fallback path has been used at least once.
func (e *Engine) Degraded() bool { return e.degraded.Load() }

// Embed returns the embedding for a single text.
func (e *Engine) Embed(ctx context.Context, text string) ([]float64, error) {
	vecs, err := e.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vecs[0], nil
}

// EmbedBatch embeds texts preserving input order and length. The remote call
// is retried once before falling back.
func (e *Engine) EmbedBatch(ctx context.Context, texts []string) ([][]float64, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	if e.remote != nil {
		if vecs, ok := e.tryRemote(ctx, texts); ok {
			return vecs, nil
		}
	}
	e.markDegraded()
	out := make([][]float64, len(texts))
	for i, t := range texts {
		out[i] = e.fallback.Encode(t)
	}
	return out, nil
}

func (e *Engine) tryRemote(ctx context.Context, texts []string) ([][]float64, bool) {
	for attempt := 0; attempt < 2; attempt++ {
		callCtx, cancel := context.WithTimeout(ctx, e.timeout)
		vecs, err := e.remote.Encode(callCtx, texts)
		cancel()
		if err == nil && e.validDims(vecs) {
			return vecs, true
		}
		if err != nil {
			log.Printf("embedding: remote call failed (attempt %d): %v", attempt+1, err)
		} else {
			log.Printf("embedding: remote returned wrong dimensionality, ignoring")
			return nil, false
		}
		if ctx.Err() != nil {
			break
		}
	}
	return nil, false
}

func (e *Engine) validDims(vecs [][]float64) bool {
	for _, v := range vecs {
		if len(v) != e.fallback.Dimension() {
			return false
		}
	}
	return true
}

func (e *Engine) markDegraded() {
	if e.degraded.CompareAndSwap(false, true) {
		log.Printf("embedding: remote encoder unavailable, using local hash fallback")
	}
}
