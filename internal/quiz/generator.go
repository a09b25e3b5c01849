package quiz

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"docquiz/internal/domain"
)

// Generator turns retrieved context into a validated quiz via the
// generative backend. The backend's output is never trusted: every candidate
// question is validated and repaired or dropped.
type Generator struct {
	backend         Backend
	summarizer      domain.Summarizer
	timeout         time.Duration
	retryDelay      time.Duration
	maxContextChars int
}

// GeneratorOption configures a Generator.
type GeneratorOption func(*Generator)

// WithTimeout sets the per-call backend timeout.
func WithTimeout(d time.Duration) GeneratorOption {
	return func(g *Generator) { g.timeout = d }
}

// WithRetryDelay sets the delay before the single backend retry.
func WithRetryDelay(d time.Duration) GeneratorOption {
	return func(g *Generator) { g.retryDelay = d }
}

// WithContextBudget sets the character budget for assembled context.
func WithContextBudget(chars int) GeneratorOption {
	return func(g *Generator) {
		if chars > 0 {
			g.maxContextChars = chars
		}
	}
}

// NewGenerator creates a quiz generator. The summarizer supplies a title
// when the backend response lacks one; it may be nil.
func NewGenerator(backend Backend, summarizer domain.Summarizer, opts ...GeneratorOption) *Generator {
	g := &Generator{
		backend:         backend,
		summarizer:      summarizer,
		timeout:         60 * time.Second,
		retryDelay:      2 * time.Second,
		maxContextChars: 12000,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Generate produces a quiz from the given context chunks. It fails with
// ErrInsufficientContext before any backend call when context is empty, and
// with ErrGenerationFailed when the backend is unreachable after one retry
// or yields no valid questions. Partial results (fewer questions than
// requested) are returned as-is, never padded.
func (g *Generator) Generate(ctx context.Context, cfg domain.GenerationConfig, chunks []domain.Chunk) (*domain.Quiz, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("generation config: %w", err)
	}
	if len(chunks) == 0 {
		return nil, domain.ErrInsufficientContext
	}

	prompt := buildPrompt(cfg, chunks, g.maxContextChars)
	raw, err := g.invoke(ctx, prompt)
	if err != nil {
		return nil, err
	}

	title, candidates, err := parseResponse(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrGenerationFailed, err)
	}

	seen := make(map[string]struct{})
	var questions []domain.Question
	for _, cand := range candidates {
		q, ok := repair(cand, cfg)
		if !ok {
			log.Printf("quiz: dropping invalid question %q", clip(cand.Question, 60))
			continue
		}
		key := dedupeKey(q.Question)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		questions = append(questions, q)
		if len(questions) == cfg.NumQuestions {
			break
		}
	}
	if len(questions) == 0 {
		return nil, fmt.Errorf("%w: no valid questions in response", domain.ErrGenerationFailed)
	}

	return &domain.Quiz{
		ID:         uuid.NewString(),
		Title:      g.title(title, cfg, chunks),
		Difficulty: cfg.Difficulty,
		Questions:  questions,
		CreatedAt:  time.Now().UTC(),
	}, nil
}

// invoke calls the backend once, retrying once with a short backoff on
// transient failure.
func (g *Generator) invoke(ctx context.Context, prompt string) (string, error) {
	var lastErr error
	for attempt := 0; attempt < 2; attempt++ {
		if attempt > 0 {
			select {
			case <-time.After(g.retryDelay):
			case <-ctx.Done():
				return "", fmt.Errorf("%w: %w: %v", domain.ErrGenerationFailed, domain.ErrBackendUnavailable, ctx.Err())
			}
		}
		callCtx, cancel := context.WithTimeout(ctx, g.timeout)
		raw, err := g.backend.Complete(callCtx, prompt)
		cancel()
		if err == nil {
			return raw, nil
		}
		lastErr = err
		log.Printf("quiz: backend call failed (attempt %d): %v", attempt+1, err)
	}
	return "", fmt.Errorf("%w: %w: %v", domain.ErrGenerationFailed, domain.ErrBackendUnavailable, lastErr)
}

// title prefers the backend-provided title, then the topic, then a summary
// of the leading context chunk.
func (g *Generator) title(backendTitle string, cfg domain.GenerationConfig, chunks []domain.Chunk) string {
	if t := strings.TrimSpace(backendTitle); t != "" {
		return t
	}
	if cfg.Topic != "" {
		return "Quiz: " + cfg.Topic
	}
	if g.summarizer != nil && len(chunks) > 0 {
		if s, err := g.summarizer.Summarize(chunks[0].Text, 1); err == nil && s != "" {
			return "Quiz: " + clip(s, 80)
		}
	}
	return "Generated Quiz"
}

func dedupeKey(prompt string) string {
	return strings.Join(strings.Fields(strings.ToLower(prompt)), " ")
}

func clip(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
