package quiz

import (
	"strings"

	"docquiz/internal/domain"
)

// CheckAnswer reports whether the user's answer matches the question's
// correct answer, applying the same normalization per question type as the
// repair pass: option letters for multiple choice, boolean canonicalization
// for true/false, case-insensitive text match otherwise.
func CheckAnswer(q domain.Question, userAnswer string) bool {
	userAnswer = strings.TrimSpace(userAnswer)
	if userAnswer == "" {
		return false
	}
	switch q.Type {
	case domain.MultipleChoice:
		letter, ok := leadingLetter(userAnswer)
		if !ok {
			letter, ok = matchOptionText(userAnswer, q.Options)
		}
		return ok && letter == q.CorrectAnswer
	case domain.TrueFalse:
		canonical, ok := canonicalBool(userAnswer)
		return ok && canonical == q.CorrectAnswer
	default:
		return strings.EqualFold(userAnswer, q.CorrectAnswer)
	}
}

func matchOptionText(answer string, options []string) (string, bool) {
	for i, opt := range options {
		if strings.EqualFold(stripLetterPrefix(opt), answer) {
			return string(rune('A' + i)), true
		}
	}
	return "", false
}
