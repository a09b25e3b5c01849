package store

import (
	"context"
	"time"

	"docquiz/internal/domain"
)

// QuizSummary is a listing row for a stored quiz.
type QuizSummary struct {
	ID           string            `json:"id"`
	Title        string            `json:"title"`
	Difficulty   domain.Difficulty `json:"difficulty"`
	NumQuestions int               `json:"num_questions"`
	CreatedAt    time.Time         `json:"created_at"`
}

// Attempt is one user run through a quiz.
type Attempt struct {
	ID             string     `json:"id"`
	QuizID         string     `json:"quiz_id"`
	Status         string     `json:"status"` // in_progress, completed
	Score          float64    `json:"score"`
	CorrectCount   int        `json:"correct_count"`
	TotalQuestions int        `json:"total_questions"`
	StartedAt      time.Time  `json:"started_at"`
	CompletedAt    *time.Time `json:"completed_at,omitempty"`
}

// AnswerResult is the feedback for one submitted answer.
type AnswerResult struct {
	Correct       bool   `json:"correct"`
	CorrectAnswer string `json:"correct_answer"`
	Explanation   string `json:"explanation"`
}

// Store persists generated quizzes and attempt history.
type Store interface {
	SaveQuiz(ctx context.Context, quiz *domain.Quiz) error
	GetQuiz(ctx context.Context, id string) (*domain.Quiz, error)
	ListQuizzes(ctx context.Context, limit int) ([]QuizSummary, error)
	CountQuizzes(ctx context.Context) (int, error)

	StartAttempt(ctx context.Context, quizID string) (*Attempt, error)
	SubmitAnswer(ctx context.Context, attemptID string, questionIndex int, answer string) (*AnswerResult, error)
	CompleteAttempt(ctx context.Context, attemptID string) (*Attempt, error)
	ListAttempts(ctx context.Context, quizID string, limit int) ([]Attempt, error)

	Close() error
}
