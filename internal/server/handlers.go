package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"docquiz/internal/domain"
)

type envelope struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

func sendJSON(w http.ResponseWriter, status int, body envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func sendData(w http.ResponseWriter, data any) {
	sendJSON(w, http.StatusOK, envelope{Success: true, Data: data})
}

func sendError(w http.ResponseWriter, status int, msg string) {
	sendJSON(w, status, envelope{Success: false, Error: msg})
}

type ingestRequest struct {
	DocumentID string `json:"document_id"`
	Text       string `json:"text"`
}

type ingestResponse struct {
	DocumentID  string `json:"document_id"`
	ChunksAdded int    `json:"chunks_added"`
	Summary     string `json:"summary,omitempty"`
}

func (s *Server) handleIngest(w http.ResponseWriter, r *http.Request) {
	var req ingestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		sendError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}
	if req.DocumentID == "" {
		sendError(w, http.StatusBadRequest, "document_id is required")
		return
	}
	count, err := s.pipeline.Ingest(r.Context(), req.DocumentID, req.Text)
	if err != nil {
		sendError(w, http.StatusInternalServerError, err.Error())
		return
	}
	resp := ingestResponse{DocumentID: req.DocumentID, ChunksAdded: count}
	if s.summarizer != nil && count > 0 {
		if summary, err := s.summarizer.Summarize(req.Text, 3); err == nil {
			resp.Summary = summary
		}
	}
	sendData(w, resp)
}

func (s *Server) handleDeleteDocument(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	removed := s.pipeline.DeleteDocument(id)
	sendData(w, map[string]any{"document_id": id, "chunks_removed": removed})
}

type generateRequest struct {
	NumQuestions  int      `json:"num_questions"`
	Difficulty    string   `json:"difficulty"`
	QuestionTypes []string `json:"question_types"`
	Topic         string   `json:"topic"`
}

func (s *Server) handleGenerateQuiz(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		sendError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}
	cfg := buildGenerationConfig(req)

	chunks, err := s.pipeline.RetrieveContext(r.Context(), cfg.Topic, s.maxChunks)
	if err != nil {
		sendError(w, http.StatusInternalServerError, err.Error())
		return
	}
	quiz, err := s.generator.Generate(r.Context(), cfg, chunks)
	switch {
	case errors.Is(err, domain.ErrInsufficientContext):
		sendError(w, http.StatusBadRequest, "no documents loaded, upload a document first")
		return
	case errors.Is(err, domain.ErrInvalidConfig):
		sendError(w, http.StatusBadRequest, err.Error())
		return
	case errors.Is(err, domain.ErrGenerationFailed):
		sendError(w, http.StatusBadGateway, err.Error())
		return
	case err != nil:
		sendError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if s.quizzes != nil {
		if err := s.quizzes.SaveQuiz(r.Context(), quiz); err != nil {
			sendError(w, http.StatusInternalServerError, "save quiz: "+err.Error())
			return
		}
	}
	sendData(w, quiz)
}

// buildGenerationConfig maps the loose request body onto the core config,
// clamping the question count to the API's 1..20 range.
func buildGenerationConfig(req generateRequest) domain.GenerationConfig {
	n := req.NumQuestions
	if n < 1 {
		n = 5
	}
	if n > 20 {
		n = 20
	}
	difficulty := domain.Difficulty(strings.ToLower(req.Difficulty))
	if !domain.KnownDifficulty(difficulty) {
		difficulty = domain.DifficultyMedium
	}
	var types []domain.QuestionType
	for _, t := range req.QuestionTypes {
		qt := domain.QuestionType(strings.ToLower(t))
		if domain.KnownQuestionType(qt) {
			types = append(types, qt)
		}
	}
	if len(types) == 0 {
		types = []domain.QuestionType{domain.MultipleChoice}
	}
	return domain.GenerationConfig{
		NumQuestions:  n,
		Difficulty:    difficulty,
		QuestionTypes: types,
		Topic:         strings.TrimSpace(req.Topic),
	}
}

func (s *Server) handleListQuizzes(w http.ResponseWriter, r *http.Request) {
	quizzes, err := s.quizzes.ListQuizzes(r.Context(), 20)
	if err != nil {
		sendError(w, http.StatusInternalServerError, err.Error())
		return
	}
	sendData(w, quizzes)
}

func (s *Server) handleGetQuiz(w http.ResponseWriter, r *http.Request) {
	quiz, err := s.quizzes.GetQuiz(r.Context(), mux.Vars(r)["id"])
	if errors.Is(err, domain.ErrNotFound) {
		sendError(w, http.StatusNotFound, err.Error())
		return
	}
	if err != nil {
		sendError(w, http.StatusInternalServerError, err.Error())
		return
	}
	sendData(w, quiz)
}

func (s *Server) handleStartAttempt(w http.ResponseWriter, r *http.Request) {
	var req struct {
		QuizID string `json:"quiz_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.QuizID == "" {
		sendError(w, http.StatusBadRequest, "quiz_id is required")
		return
	}
	attempt, err := s.quizzes.StartAttempt(r.Context(), req.QuizID)
	if errors.Is(err, domain.ErrNotFound) {
		sendError(w, http.StatusNotFound, err.Error())
		return
	}
	if err != nil {
		sendError(w, http.StatusInternalServerError, err.Error())
		return
	}
	sendData(w, attempt)
}

func (s *Server) handleSubmitAnswer(w http.ResponseWriter, r *http.Request) {
	var req struct {
		QuestionIndex int    `json:"question_index"`
		Answer        string `json:"answer"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		sendError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}
	result, err := s.quizzes.SubmitAnswer(r.Context(), mux.Vars(r)["id"], req.QuestionIndex, req.Answer)
	if errors.Is(err, domain.ErrNotFound) {
		sendError(w, http.StatusNotFound, err.Error())
		return
	}
	if err != nil {
		sendError(w, http.StatusInternalServerError, err.Error())
		return
	}
	sendData(w, result)
}

func (s *Server) handleCompleteAttempt(w http.ResponseWriter, r *http.Request) {
	attempt, err := s.quizzes.CompleteAttempt(r.Context(), mux.Vars(r)["id"])
	if errors.Is(err, domain.ErrNotFound) {
		sendError(w, http.StatusNotFound, err.Error())
		return
	}
	if err != nil {
		sendError(w, http.StatusInternalServerError, err.Error())
		return
	}
	sendData(w, attempt)
}

func (s *Server) handleListAttempts(w http.ResponseWriter, r *http.Request) {
	attempts, err := s.quizzes.ListAttempts(r.Context(), r.URL.Query().Get("quiz_id"), 20)
	if err != nil {
		sendError(w, http.StatusInternalServerError, err.Error())
		return
	}
	sendData(w, attempts)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	stats := s.pipeline.Stats()
	body := map[string]any{
		"total_chunks":     stats.Chunks,
		"unique_documents": stats.Documents,
	}
	if s.quizzes != nil {
		if n, err := s.quizzes.CountQuizzes(r.Context()); err == nil {
			body["total_quizzes"] = n
		}
	}
	if s.embeddings != nil {
		mode := "remote"
		if s.embeddings.Degraded() {
			mode = "fallback"
		}
		body["embedding_mode"] = mode
	}
	sendData(w, body)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	sendData(w, map[string]string{"status": "ok"})
}
