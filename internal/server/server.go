// Package server exposes the quiz pipeline over HTTP.
package server

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"docquiz/internal/domain"
	"docquiz/internal/pipeline"
	"docquiz/internal/store"
)

// Generator is the quiz-generation surface the server depends on.
type Generator interface {
	Generate(ctx context.Context, cfg domain.GenerationConfig, chunks []domain.Chunk) (*domain.Quiz, error)
}

// EmbeddingStatus reports whether the embedding fallback path has been used.
type EmbeddingStatus interface {
	Degraded() bool
}

// Server holds the dependencies for the HTTP handlers.
type Server struct {
	pipeline   *pipeline.Pipeline
	generator  Generator
	quizzes    store.Store
	summarizer domain.Summarizer
	embeddings EmbeddingStatus
	maxChunks  int
}

// SetEmbeddingStatus wires the embedding engine's degradation flag into the
// stats endpoint.
func (s *Server) SetEmbeddingStatus(es EmbeddingStatus) { s.embeddings = es }

// New creates a Server. The summarizer may be nil; ingest responses then
// omit the summary.
func New(p *pipeline.Pipeline, g Generator, quizzes store.Store, summarizer domain.Summarizer, maxChunks int) *Server {
	if maxChunks <= 0 {
		maxChunks = 5
	}
	return &Server{
		pipeline:   p,
		generator:  g,
		quizzes:    quizzes,
		summarizer: summarizer,
		maxChunks:  maxChunks,
	}
}

// Router creates and configures the HTTP router.
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()
	r.Use(loggingMiddleware)
	r.Use(corsMiddleware)

	r.HandleFunc("/api/documents", s.handleIngest).Methods("POST", "OPTIONS")
	r.HandleFunc("/api/documents/{id}", s.handleDeleteDocument).Methods("DELETE", "OPTIONS")
	r.HandleFunc("/api/generate-quiz", s.handleGenerateQuiz).Methods("POST", "OPTIONS")
	r.HandleFunc("/api/quizzes", s.handleListQuizzes).Methods("GET")
	r.HandleFunc("/api/quizzes/{id}", s.handleGetQuiz).Methods("GET")
	r.HandleFunc("/api/attempts", s.handleStartAttempt).Methods("POST", "OPTIONS")
	r.HandleFunc("/api/attempts", s.handleListAttempts).Methods("GET")
	r.HandleFunc("/api/attempts/{id}/answers", s.handleSubmitAnswer).Methods("POST", "OPTIONS")
	r.HandleFunc("/api/attempts/{id}/complete", s.handleCompleteAttempt).Methods("POST", "OPTIONS")
	r.HandleFunc("/api/stats", s.handleStats).Methods("GET")
	r.HandleFunc("/health", s.handleHealth).Methods("GET")
	return r
}

func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		log.Printf("%s %s - %v", r.Method, r.URL.Path, time.Since(start))
	})
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}
