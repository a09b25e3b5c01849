package embedding

import (
	"hash/fnv"
	"math"
	"regexp"
	"strings"
)

var tokenPattern = regexp.MustCompile(`\p{L}+|\p{N}+`)

// HashEncoder maps text to a fixed-dimension vector using a stable token
// hash. Identical text always yields an identical vector, so the retrieval
// pipeline keeps working (with degraded relevance) without connectivity.
type HashEncoder struct {
	dim int
}

// NewHashEncoder creates a deterministic local encoder of the given dimension.
func NewHashEncoder(dim int) *HashEncoder {
	if dim <= 0 {
		dim = 384
	}
	return &HashEncoder{dim: dim}
}

// Dimension returns the dimensionality of produced vectors.
func (e *HashEncoder) Dimension() int { return e.dim }

// Encode computes the fallback embedding for the given text. Text is
// normalized (lowercased, tokenized) first, so formatting differences do not
// change the vector. Each token spreads weight over up to three slots keyed
// by its hash.
func (e *HashEncoder) Encode(text string) []float64 {
	vec := make([]float64, e.dim)
	tokens := tokenPattern.FindAllString(strings.ToLower(text), -1)
	for _, tok := range tokens {
		h := fnv.New64a()
		h.Write([]byte(tok))
		sum := h.Sum64()
		slots := len(tok)
		if slots > 3 {
			slots = 3
		}
		for i := 0; i < slots; i++ {
			idx := (sum + uint64(i)*127) % uint64(e.dim)
			vec[idx] += 1.0
		}
	}
	norm := 0.0
	for _, v := range vec {
		norm += v * v
	}
	if norm > 0 {
		norm = math.Sqrt(norm)
		for i := range vec {
			vec[i] /= norm
		}
	}
	return vec
}
