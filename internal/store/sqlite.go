package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"docquiz/internal/domain"
	"docquiz/internal/quiz"
)

const schema = `
CREATE TABLE IF NOT EXISTS quizzes (
	id          TEXT PRIMARY KEY,
	title       TEXT NOT NULL,
	difficulty  TEXT NOT NULL,
	created_at  TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS questions (
	quiz_id         TEXT NOT NULL REFERENCES quizzes(id) ON DELETE CASCADE,
	position        INTEGER NOT NULL,
	type            TEXT NOT NULL,
	question        TEXT NOT NULL,
	options         TEXT,
	correct_answer  TEXT NOT NULL,
	explanation     TEXT,
	difficulty      TEXT NOT NULL,
	PRIMARY KEY (quiz_id, position)
);
CREATE TABLE IF NOT EXISTS attempts (
	id            TEXT PRIMARY KEY,
	quiz_id       TEXT NOT NULL REFERENCES quizzes(id) ON DELETE CASCADE,
	status        TEXT NOT NULL,
	score         REAL NOT NULL DEFAULT 0,
	correct_count INTEGER NOT NULL DEFAULT 0,
	total         INTEGER NOT NULL DEFAULT 0,
	started_at    TEXT NOT NULL,
	completed_at  TEXT
);
CREATE TABLE IF NOT EXISTS answers (
	attempt_id  TEXT NOT NULL REFERENCES attempts(id) ON DELETE CASCADE,
	position    INTEGER NOT NULL,
	answer      TEXT NOT NULL,
	is_correct  INTEGER NOT NULL,
	answered_at TEXT NOT NULL,
	PRIMARY KEY (attempt_id, position)
);
`

// SQLiteStore implements Store on a local SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (and initializes) the database at dsn. Use ":memory:"
// for tests.
func NewSQLiteStore(dsn string) (*SQLiteStore, error) {
	if dsn == "" {
		dsn = "data/docquiz.db"
	}
	if dir := filepath.Dir(dsn); dsn != ":memory:" && dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create data directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// SQLite serializes writes anyway, and an in-memory database exists per
	// connection, so the pool stays at one.
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error { return s.db.Close() }

// SaveQuiz persists a quiz and its questions in one transaction.
func (s *SQLiteStore) SaveQuiz(ctx context.Context, q *domain.Quiz) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO quizzes (id, title, difficulty, created_at) VALUES (?, ?, ?, ?)`,
		q.ID, q.Title, string(q.Difficulty), formatTime(q.CreatedAt))
	if err != nil {
		return fmt.Errorf("insert quiz: %w", err)
	}
	for i, question := range q.Questions {
		var options sql.NullString
		if len(question.Options) > 0 {
			data, err := json.Marshal(question.Options)
			if err != nil {
				return fmt.Errorf("marshal options: %w", err)
			}
			options = sql.NullString{String: string(data), Valid: true}
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO questions (quiz_id, position, type, question, options, correct_answer, explanation, difficulty)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			q.ID, i, string(question.Type), question.Question, options,
			question.CorrectAnswer, question.Explanation, string(question.Difficulty))
		if err != nil {
			return fmt.Errorf("insert question %d: %w", i, err)
		}
	}
	return tx.Commit()
}

// GetQuiz loads a quiz with its questions in order.
func (s *SQLiteStore) GetQuiz(ctx context.Context, id string) (*domain.Quiz, error) {
	var q domain.Quiz
	var difficulty, created string
	err := s.db.QueryRowContext(ctx,
		`SELECT id, title, difficulty, created_at FROM quizzes WHERE id = ?`, id).
		Scan(&q.ID, &q.Title, &difficulty, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("quiz %s: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("query quiz: %w", err)
	}
	q.Difficulty = domain.Difficulty(difficulty)
	q.CreatedAt = parseTime(created)

	rows, err := s.db.QueryContext(ctx,
		`SELECT type, question, options, correct_answer, explanation, difficulty
		 FROM questions WHERE quiz_id = ? ORDER BY position`, id)
	if err != nil {
		return nil, fmt.Errorf("query questions: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var question domain.Question
		var qType, qDifficulty string
		var options sql.NullString
		if err := rows.Scan(&qType, &question.Question, &options,
			&question.CorrectAnswer, &question.Explanation, &qDifficulty); err != nil {
			return nil, fmt.Errorf("scan question: %w", err)
		}
		question.Type = domain.QuestionType(qType)
		question.Difficulty = domain.Difficulty(qDifficulty)
		if options.Valid {
			if err := json.Unmarshal([]byte(options.String), &question.Options); err != nil {
				return nil, fmt.Errorf("unmarshal options: %w", err)
			}
		}
		q.Questions = append(q.Questions, question)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate questions: %w", err)
	}
	return &q, nil
}

// ListQuizzes returns the most recent quizzes.
func (s *SQLiteStore) ListQuizzes(ctx context.Context, limit int) ([]QuizSummary, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT q.id, q.title, q.difficulty, q.created_at,
		        (SELECT COUNT(*) FROM questions WHERE quiz_id = q.id)
		 FROM quizzes q ORDER BY q.created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query quizzes: %w", err)
	}
	defer rows.Close()
	var out []QuizSummary
	for rows.Next() {
		var sum QuizSummary
		var difficulty, created string
		if err := rows.Scan(&sum.ID, &sum.Title, &difficulty, &created, &sum.NumQuestions); err != nil {
			return nil, fmt.Errorf("scan quiz: %w", err)
		}
		sum.Difficulty = domain.Difficulty(difficulty)
		sum.CreatedAt = parseTime(created)
		out = append(out, sum)
	}
	return out, rows.Err()
}

// CountQuizzes returns the number of stored quizzes.
func (s *SQLiteStore) CountQuizzes(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM quizzes`).Scan(&n)
	return n, err
}

// StartAttempt creates a new in-progress attempt for a quiz.
func (s *SQLiteStore) StartAttempt(ctx context.Context, quizID string) (*Attempt, error) {
	q, err := s.GetQuiz(ctx, quizID)
	if err != nil {
		return nil, err
	}
	a := &Attempt{
		ID:             uuid.NewString(),
		QuizID:         quizID,
		Status:         "in_progress",
		TotalQuestions: len(q.Questions),
		StartedAt:      time.Now().UTC(),
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO attempts (id, quiz_id, status, total, started_at) VALUES (?, ?, ?, ?, ?)`,
		a.ID, a.QuizID, a.Status, a.TotalQuestions, formatTime(a.StartedAt))
	if err != nil {
		return nil, fmt.Errorf("insert attempt: %w", err)
	}
	return a, nil
}

// SubmitAnswer records one answer and returns correctness feedback.
func (s *SQLiteStore) SubmitAnswer(ctx context.Context, attemptID string, questionIndex int, answer string) (*AnswerResult, error) {
	var quizID string
	err := s.db.QueryRowContext(ctx,
		`SELECT quiz_id FROM attempts WHERE id = ? AND status = 'in_progress'`, attemptID).Scan(&quizID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("attempt %s: %w", attemptID, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("query attempt: %w", err)
	}

	q, err := s.GetQuiz(ctx, quizID)
	if err != nil {
		return nil, err
	}
	if questionIndex < 0 || questionIndex >= len(q.Questions) {
		return nil, fmt.Errorf("question index %d: %w", questionIndex, domain.ErrNotFound)
	}
	question := q.Questions[questionIndex]
	correct := quiz.CheckAnswer(question, answer)

	_, err = s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO answers (attempt_id, position, answer, is_correct, answered_at)
		 VALUES (?, ?, ?, ?, ?)`,
		attemptID, questionIndex, answer, boolInt(correct), formatTime(time.Now()))
	if err != nil {
		return nil, fmt.Errorf("insert answer: %w", err)
	}
	return &AnswerResult{
		Correct:       correct,
		CorrectAnswer: question.CorrectAnswer,
		Explanation:   question.Explanation,
	}, nil
}

// CompleteAttempt finalizes an attempt and computes its score.
func (s *SQLiteStore) CompleteAttempt(ctx context.Context, attemptID string) (*Attempt, error) {
	a, err := s.getAttempt(ctx, attemptID)
	if err != nil {
		return nil, err
	}
	var correct int
	err = s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM answers WHERE attempt_id = ? AND is_correct = 1`, attemptID).Scan(&correct)
	if err != nil {
		return nil, fmt.Errorf("count answers: %w", err)
	}
	now := time.Now().UTC()
	score := 0.0
	if a.TotalQuestions > 0 {
		score = float64(correct) / float64(a.TotalQuestions) * 100
	}
	_, err = s.db.ExecContext(ctx,
		`UPDATE attempts SET status = 'completed', score = ?, correct_count = ?, completed_at = ? WHERE id = ?`,
		score, correct, formatTime(now), attemptID)
	if err != nil {
		return nil, fmt.Errorf("update attempt: %w", err)
	}
	a.Status = "completed"
	a.Score = score
	a.CorrectCount = correct
	a.CompletedAt = &now
	return a, nil
}

// ListAttempts returns recent attempts, optionally filtered to one quiz.
func (s *SQLiteStore) ListAttempts(ctx context.Context, quizID string, limit int) ([]Attempt, error) {
	if limit <= 0 {
		limit = 20
	}
	query := `SELECT id, quiz_id, status, score, correct_count, total, started_at, completed_at
	          FROM attempts`
	args := []any{}
	if quizID != "" {
		query += ` WHERE quiz_id = ?`
		args = append(args, quizID)
	}
	query += ` ORDER BY started_at DESC LIMIT ?`
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query attempts: %w", err)
	}
	defer rows.Close()
	var out []Attempt
	for rows.Next() {
		var a Attempt
		var started string
		var completed sql.NullString
		if err := rows.Scan(&a.ID, &a.QuizID, &a.Status, &a.Score, &a.CorrectCount,
			&a.TotalQuestions, &started, &completed); err != nil {
			return nil, fmt.Errorf("scan attempt: %w", err)
		}
		a.StartedAt = parseTime(started)
		if completed.Valid {
			t := parseTime(completed.String)
			a.CompletedAt = &t
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) getAttempt(ctx context.Context, id string) (*Attempt, error) {
	var a Attempt
	var started string
	var completed sql.NullString
	err := s.db.QueryRowContext(ctx,
		`SELECT id, quiz_id, status, score, correct_count, total, started_at, completed_at
		 FROM attempts WHERE id = ?`, id).
		Scan(&a.ID, &a.QuizID, &a.Status, &a.Score, &a.CorrectCount,
			&a.TotalQuestions, &started, &completed)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("attempt %s: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("query attempt: %w", err)
	}
	a.StartedAt = parseTime(started)
	if completed.Valid {
		t := parseTime(completed.String)
		a.CompletedAt = &t
	}
	return &a, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
