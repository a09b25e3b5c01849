package quiz

import (
	"fmt"
	"strings"

	"docquiz/internal/domain"
)

var difficultyPrompts = map[domain.Difficulty]string{
	domain.DifficultyEasy:   "basic recall of facts stated directly in the text, simple vocabulary",
	domain.DifficultyMedium: "understanding and application of the concepts in the text",
	domain.DifficultyHard:   "analysis, synthesis and subtle distinctions that require close reading",
}

var typePrompts = map[domain.QuestionType]string{
	domain.MultipleChoice: `"multiple_choice": exactly 4 options labeled A) to D), one correct`,
	domain.TrueFalse:      `"true_false": a statement to judge, correct_answer is "True" or "False"`,
	domain.ShortAnswer:    `"short_answer": open question answerable in a few words, no options`,
	domain.Comprehension:  `"comprehension": open question testing understanding of a passage, no options`,
}

// buildPrompt assembles the generation prompt from the retrieved context and
// the config. Context is concatenated up to maxChars; when over budget the
// oldest chunks are dropped first.
func buildPrompt(cfg domain.GenerationConfig, chunks []domain.Chunk, maxChars int) string {
	parts := make([]string, len(chunks))
	total := 0
	for i, ch := range chunks {
		parts[i] = ch.Text
		total += len(ch.Text)
	}
	for len(parts) > 1 && total > maxChars {
		total -= len(parts[0])
		parts = parts[1:]
	}
	if len(parts) == 1 && len(parts[0]) > maxChars {
		parts[0] = parts[0][:maxChars]
	}
	context := strings.Join(parts, "\n\n---\n\n")

	var b strings.Builder
	fmt.Fprintf(&b, "Generate exactly %d quiz questions from the document excerpts below.\n\n", cfg.NumQuestions)
	fmt.Fprintf(&b, "Difficulty: %s (%s).\n", cfg.Difficulty, difficultyPrompts[cfg.Difficulty])
	b.WriteString("Allowed question types:\n")
	for _, t := range cfg.QuestionTypes {
		fmt.Fprintf(&b, "- %s\n", typePrompts[t])
	}
	if cfg.Topic != "" {
		fmt.Fprintf(&b, "Focus on the topic: %s.\n", cfg.Topic)
	}
	b.WriteString(`
Answer with a single JSON object of the form:
{
  "title": "short quiz title",
  "questions": [
    {
      "question": "...",
      "type": "multiple_choice",
      "options": ["A) ...", "B) ...", "C) ...", "D) ..."],
      "correct_answer": "A",
      "explanation": "..."
    }
  ]
}
Omit "options" for open-ended types. Every question must be answerable from
the excerpts alone.

Document excerpts:
`)
	b.WriteString(context)
	return b.String()
}
