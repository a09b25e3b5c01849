package domain

import "time"

// Chunk is a bounded slice of a document's text, the unit of retrieval.
type Chunk struct {
	ID         string
	DocumentID string
	Text       string
	Position   int
	Embedding  []float64
}

// RetrievalResult is a matching chunk with its similarity scores.
// RerankScore is only set after a re-ranking pass.
type RetrievalResult struct {
	Chunk       Chunk
	Score       float64
	RerankScore float64
}

// Difficulty of a quiz or a single question.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// QuestionType identifies the shape of a question.
type QuestionType string

const (
	MultipleChoice QuestionType = "multiple_choice"
	TrueFalse      QuestionType = "true_false"
	ShortAnswer    QuestionType = "short_answer"
	Comprehension  QuestionType = "comprehension"
)

// HasOptions reports whether the question type carries discrete answer options.
func (t QuestionType) HasOptions() bool {
	return t == MultipleChoice || t == TrueFalse
}

// KnownQuestionType reports whether t is one of the supported types.
func KnownQuestionType(t QuestionType) bool {
	switch t {
	case MultipleChoice, TrueFalse, ShortAnswer, Comprehension:
		return true
	}
	return false
}

// KnownDifficulty reports whether d is one of the supported difficulties.
func KnownDifficulty(d Difficulty) bool {
	switch d {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		return true
	}
	return false
}

// GenerationConfig is the immutable input to one quiz generation call.
type GenerationConfig struct {
	NumQuestions  int
	Difficulty    Difficulty
	QuestionTypes []QuestionType
	Topic         string
}

// Validate checks the config against the supported ranges and enumerations.
func (c GenerationConfig) Validate() error {
	if c.NumQuestions < 1 || c.NumQuestions > 50 {
		return ErrInvalidConfig
	}
	if !KnownDifficulty(c.Difficulty) {
		return ErrInvalidConfig
	}
	if len(c.QuestionTypes) == 0 {
		return ErrInvalidConfig
	}
	for _, t := range c.QuestionTypes {
		if !KnownQuestionType(t) {
			return ErrInvalidConfig
		}
	}
	return nil
}

// Question is a single validated quiz question.
// Options is present only for types with discrete choices.
type Question struct {
	Type          QuestionType `json:"type"`
	Question      string       `json:"question"`
	Options       []string     `json:"options,omitempty"`
	CorrectAnswer string       `json:"correct_answer"`
	Explanation   string       `json:"explanation"`
	Difficulty    Difficulty   `json:"difficulty"`
}

// Quiz is a generated set of questions. Immutable once returned by the
// generator; ownership passes to the caller.
type Quiz struct {
	ID         string     `json:"id"`
	Title      string     `json:"title"`
	Difficulty Difficulty `json:"difficulty"`
	Questions  []Question `json:"questions"`
	CreatedAt  time.Time  `json:"created_at"`
}
