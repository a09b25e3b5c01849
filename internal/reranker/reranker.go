package reranker

import (
	"regexp"
	"sort"
	"strings"

	"docquiz/internal/domain"
)

// LexicalReRanker refines an initial candidate set by blending the
// first-pass cosine score with a query/chunk token-overlap score. Coarse
// embeddings can surface superficially similar but topically irrelevant
// chunks; the lexical signal corrects for that over the small candidate set.
type LexicalReRanker struct {
	semanticWeight float64
	keywordWeight  float64
	tokenPattern   *regexp.Regexp
}

// New creates a re-ranker with the default 0.7 semantic / 0.3 keyword blend.
func New() *LexicalReRanker {
	return &LexicalReRanker{
		semanticWeight: 0.7,
		keywordWeight:  0.3,
		tokenPattern:   regexp.MustCompile(`\p{L}+|\p{N}+`),
	}
}

// Rerank re-scores candidates and returns the topK by combined score,
// stable-sorted. topK beyond the candidate count returns all of them.
func (r *LexicalReRanker) Rerank(query string, candidates []domain.RetrievalResult, topK int) []domain.RetrievalResult {
	if len(candidates) == 0 {
		return nil
	}
	queryTokens := r.tokenSet(query)
	out := make([]domain.RetrievalResult, len(candidates))
	for i, c := range candidates {
		c.RerankScore = r.semanticWeight*c.Score + r.keywordWeight*r.overlap(queryTokens, c.Chunk.Text)
		out[i] = c
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].RerankScore > out[j].RerankScore })
	if topK > 0 && topK < len(out) {
		out = out[:topK]
	}
	return out
}

// overlap is the fraction of query tokens that appear in the text.
func (r *LexicalReRanker) overlap(queryTokens map[string]struct{}, text string) float64 {
	if len(queryTokens) == 0 {
		return 0
	}
	textTokens := r.tokenSet(text)
	matched := 0
	for tok := range queryTokens {
		if _, ok := textTokens[tok]; ok {
			matched++
		}
	}
	return float64(matched) / float64(len(queryTokens))
}

func (r *LexicalReRanker) tokenSet(s string) map[string]struct{} {
	tokens := r.tokenPattern.FindAllString(strings.ToLower(s), -1)
	m := make(map[string]struct{}, len(tokens))
	for _, t := range tokens {
		m[t] = struct{}{}
	}
	return m
}
