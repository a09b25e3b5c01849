package quiz

import (
	"encoding/json"
	"testing"

	"docquiz/internal/domain"
)

func allTypesConfig() domain.GenerationConfig {
	return domain.GenerationConfig{
		NumQuestions: 10,
		Difficulty:   domain.DifficultyMedium,
		QuestionTypes: []domain.QuestionType{
			domain.MultipleChoice, domain.TrueFalse, domain.ShortAnswer, domain.Comprehension,
		},
	}
}

func TestExtractJSON(t *testing.T) {
	cases := []struct {
		name string
		raw  string
		want string
	}{
		{"bare object", `{"a": 1}`, `{"a": 1}`},
		{"bare array", `[1, 2]`, `[1, 2]`},
		{"fenced", "```json\n{\"a\": 1}\n```", `{"a": 1}`},
		{"fenced no language", "```\n{\"a\": 1}\n```", `{"a": 1}`},
		{"prose around object", `Sure! {"a": 1} Hope this helps.`, `{"a": 1}`},
		{"no payload", "I cannot do that.", ""},
		{"empty", "", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := extractJSON(tc.raw); got != tc.want {
				t.Errorf("extractJSON(%q) = %q, want %q", tc.raw, got, tc.want)
			}
		})
	}
}

func TestParseResponse_ObjectAndArrayShapes(t *testing.T) {
	title, qs, err := parseResponse(`{"title": "T", "questions": [{"question": "Q?", "type": "short_answer", "answer": "yes"}]}`)
	if err != nil {
		t.Fatalf("object shape: %v", err)
	}
	if title != "T" || len(qs) != 1 {
		t.Errorf("title = %q, questions = %d", title, len(qs))
	}

	title, qs, err = parseResponse(`{"quiz_title": "T2", "questions": []}`)
	if err != nil {
		t.Fatalf("quiz_title alias: %v", err)
	}
	if title != "T2" {
		t.Errorf("title = %q, want T2", title)
	}

	_, qs, err = parseResponse(`[{"question": "Q?", "type": "short_answer", "answer": "yes"}]`)
	if err != nil {
		t.Fatalf("array shape: %v", err)
	}
	if len(qs) != 1 {
		t.Errorf("questions = %d", len(qs))
	}

	if _, _, err := parseResponse("not json at all"); err == nil {
		t.Error("expected error for non-JSON input")
	}
}

func TestRepair_MultipleChoiceAnswerForms(t *testing.T) {
	cases := []struct {
		name   string
		answer string
		want   string
	}{
		{"bare letter", "B", "B"},
		{"lowercase letter", "b", "B"},
		{"letter with paren", "B)", "B"},
		{"letter with dot and text", "B. Lyon", "B"},
		{"option text", "Lyon", "B"},
		{"option text case-insensitive", "lyon", "B"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			raw := rawQuestion{
				Question:      "Which city?",
				Type:          "multiple_choice",
				Options:       json.RawMessage(`["A) Paris", "B) Lyon", "C) Nice"]`),
				CorrectAnswer: tc.answer,
			}
			q, ok := repair(raw, allTypesConfig())
			if !ok {
				t.Fatalf("repair dropped answer %q", tc.answer)
			}
			if q.CorrectAnswer != tc.want {
				t.Errorf("CorrectAnswer = %q, want %q", q.CorrectAnswer, tc.want)
			}
		})
	}
}

func TestRepair_OptionNormalization(t *testing.T) {
	raw := rawQuestion{
		Question:      "Which city?",
		Type:          "multiple_choice",
		Options:       json.RawMessage(`["Paris", "Lyon", "Nice", "Lille"]`),
		CorrectAnswer: "C",
	}
	q, ok := repair(raw, allTypesConfig())
	if !ok {
		t.Fatal("repair dropped valid question")
	}
	want := []string{"A) Paris", "B) Lyon", "C) Nice", "D) Lille"}
	for i, opt := range q.Options {
		if opt != want[i] {
			t.Errorf("option %d = %q, want %q", i, opt, want[i])
		}
	}
}

func TestRepair_LetterMapOptions(t *testing.T) {
	raw := rawQuestion{
		Question:      "Which city?",
		Type:          "multiple_choice",
		Options:       json.RawMessage(`{"B": "Lyon", "A": "Paris", "C": "Nice"}`),
		CorrectAnswer: "Paris",
	}
	q, ok := repair(raw, allTypesConfig())
	if !ok {
		t.Fatal("repair dropped letter-map options")
	}
	want := []string{"A) Paris", "B) Lyon", "C) Nice"}
	for i, opt := range q.Options {
		if opt != want[i] {
			t.Errorf("option %d = %q, want %q", i, opt, want[i])
		}
	}
	if q.CorrectAnswer != "A" {
		t.Errorf("CorrectAnswer = %q, want A", q.CorrectAnswer)
	}
}

func TestRepair_MultipleChoiceRejections(t *testing.T) {
	cases := []struct {
		name string
		raw  rawQuestion
	}{
		{"no options", rawQuestion{Question: "Q?", Type: "multiple_choice", CorrectAnswer: "A"}},
		{"one option", rawQuestion{Question: "Q?", Type: "multiple_choice",
			Options: json.RawMessage(`["A) only"]`), CorrectAnswer: "A"}},
		{"letter out of range", rawQuestion{Question: "Q?", Type: "multiple_choice",
			Options: json.RawMessage(`["A) x", "B) y"]`), CorrectAnswer: "D"}},
		{"answer matches nothing", rawQuestion{Question: "Q?", Type: "multiple_choice",
			Options: json.RawMessage(`["A) x", "B) y"]`), CorrectAnswer: "Marseille"}},
		{"empty answer", rawQuestion{Question: "Q?", Type: "multiple_choice",
			Options: json.RawMessage(`["A) x", "B) y"]`)}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, ok := repair(tc.raw, allTypesConfig()); ok {
				t.Error("repair accepted an irreparable question")
			}
		})
	}
}

func TestRepair_TrueFalse(t *testing.T) {
	cases := []struct {
		answer string
		want   string
	}{
		{"True", "True"},
		{"true", "True"},
		{"t", "True"},
		{"A", "True"},
		{"The statement is true", "True"},
		{"False", "False"},
		{"FALSE", "False"},
		{"f", "False"},
		{"B", "False"},
	}
	for _, tc := range cases {
		raw := rawQuestion{Question: "The sky is green.", Type: "true_false", CorrectAnswer: tc.answer}
		q, ok := repair(raw, allTypesConfig())
		if !ok {
			t.Errorf("repair dropped true_false answer %q", tc.answer)
			continue
		}
		if q.CorrectAnswer != tc.want {
			t.Errorf("answer %q canonicalized to %q, want %q", tc.answer, q.CorrectAnswer, tc.want)
		}
		if len(q.Options) != 2 {
			t.Errorf("true_false options = %v", q.Options)
		}
	}

	raw := rawQuestion{Question: "Q?", Type: "true_false", CorrectAnswer: "maybe"}
	if _, ok := repair(raw, allTypesConfig()); ok {
		t.Error("repair accepted unresolvable boolean")
	}
}

func TestRepair_TypeAliases(t *testing.T) {
	cases := map[string]domain.QuestionType{
		"qcm":           domain.MultipleChoice,
		"MCQ":           domain.MultipleChoice,
		"true/false":    domain.TrueFalse,
		"TrueFalse":     domain.TrueFalse,
		"short":         domain.ShortAnswer,
		"open":          domain.Comprehension,
		"comprehension": domain.Comprehension,
	}
	for alias, want := range cases {
		raw := rawQuestion{Question: "Q?", Type: alias, CorrectAnswer: "True"}
		if want == domain.MultipleChoice {
			raw.Options = json.RawMessage(`["A) x", "B) y"]`)
			raw.CorrectAnswer = "A"
		}
		q, ok := repair(raw, allTypesConfig())
		if !ok {
			t.Errorf("repair dropped type alias %q", alias)
			continue
		}
		if q.Type != want {
			t.Errorf("alias %q resolved to %s, want %s", alias, q.Type, want)
		}
	}
}

func TestRepair_FieldAliases(t *testing.T) {
	raw := rawQuestion{Text: "Aliased prompt?", Type: "short_answer", Answer: "forty-two"}
	q, ok := repair(raw, allTypesConfig())
	if !ok {
		t.Fatal("repair dropped aliased fields")
	}
	if q.Question != "Aliased prompt?" {
		t.Errorf("Question = %q", q.Question)
	}
	if q.CorrectAnswer != "forty-two" {
		t.Errorf("CorrectAnswer = %q", q.CorrectAnswer)
	}
}

func TestRepair_DifficultyFallback(t *testing.T) {
	raw := rawQuestion{Question: "Q?", Type: "short_answer", CorrectAnswer: "x", Difficulty: "impossible"}
	q, ok := repair(raw, allTypesConfig())
	if !ok {
		t.Fatal("repair dropped question")
	}
	if q.Difficulty != domain.DifficultyMedium {
		t.Errorf("Difficulty = %s, want config fallback medium", q.Difficulty)
	}

	raw.Difficulty = "HARD"
	q, _ = repair(raw, allTypesConfig())
	if q.Difficulty != domain.DifficultyHard {
		t.Errorf("Difficulty = %s, want hard", q.Difficulty)
	}
}

func TestRepair_UnknownType(t *testing.T) {
	raw := rawQuestion{Question: "Q?", Type: "matching", CorrectAnswer: "x"}
	if _, ok := repair(raw, allTypesConfig()); ok {
		t.Error("repair accepted unknown question type")
	}
}
