package chunker

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"docquiz/internal/domain"
)

// TextChunker splits text into overlapping chunks bounded by a character
// budget, packing whole sentences where possible.
type TextChunker struct {
	chunkSize int
	overlap   int
	splitter  *regexp.Regexp
}

// New creates a chunker with the given character budget and overlap.
// Overlap must be strictly smaller than the chunk size.
func New(chunkSize, overlap int) (*TextChunker, error) {
	if chunkSize <= 0 {
		return nil, fmt.Errorf("%w: chunk size %d", domain.ErrInvalidConfig, chunkSize)
	}
	if overlap < 0 || overlap >= chunkSize {
		return nil, fmt.Errorf("%w: overlap %d for chunk size %d", domain.ErrInvalidConfig, overlap, chunkSize)
	}
	return &TextChunker{
		chunkSize: chunkSize,
		overlap:   overlap,
		splitter:  regexp.MustCompile(`(?m)(?U)([^.!?]+[.!?]+\s*|[^.!?]+$)`),
	}, nil
}

// Chunk splits the document text into chunks in document order. Empty or
// whitespace-only input yields no chunks and no error.
func (c *TextChunker) Chunk(documentID, text string) ([]domain.Chunk, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, nil
	}

	sentences := c.splitSentences(text)
	var chunks []domain.Chunk
	var current []string
	length := 0

	flush := func() {
		if len(current) == 0 {
			return
		}
		pos := len(chunks)
		chunks = append(chunks, domain.Chunk{
			ID:         documentID + ":" + strconv.Itoa(pos),
			DocumentID: documentID,
			Text:       strings.Join(current, " "),
			Position:   pos,
		})
	}

	for _, sentence := range sentences {
		// Oversized sentences get hard-split so a single run-on cannot
		// blow the chunk budget.
		for _, part := range hardSplit(sentence, c.chunkSize) {
			if length+len(part) > c.chunkSize && len(current) > 0 {
				flush()
				current = c.overlapTail(current)
				length = joinedLen(current)
			}
			current = append(current, part)
			length += len(part) + 1
		}
	}
	flush()
	return chunks, nil
}

func (c *TextChunker) splitSentences(text string) []string {
	raw := c.splitter.FindAllString(text, -1)
	if len(raw) == 0 {
		return []string{text}
	}
	out := raw[:0]
	for _, s := range raw {
		s = strings.TrimSpace(s)
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}

// overlapTail returns the trailing sentences of the previous chunk that fit
// within the overlap budget, used to seed the next chunk.
func (c *TextChunker) overlapTail(sentences []string) []string {
	if c.overlap == 0 {
		return nil
	}
	chars := 0
	i := len(sentences)
	for i > 0 && chars+len(sentences[i-1]) <= c.overlap {
		chars += len(sentences[i-1])
		i--
	}
	tail := make([]string, len(sentences)-i)
	copy(tail, sentences[i:])
	return tail
}

func hardSplit(s string, limit int) []string {
	if len(s) <= limit {
		return []string{s}
	}
	var parts []string
	for len(s) > limit {
		cut := limit
		// prefer a space boundary when one is close
		if idx := strings.LastIndexByte(s[:limit], ' '); idx > limit/2 {
			cut = idx
		}
		parts = append(parts, strings.TrimSpace(s[:cut]))
		s = strings.TrimSpace(s[cut:])
	}
	if s != "" {
		parts = append(parts, s)
	}
	return parts
}

func joinedLen(parts []string) int {
	n := 0
	for _, p := range parts {
		n += len(p) + 1
	}
	return n
}
