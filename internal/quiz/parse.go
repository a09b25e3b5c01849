package quiz

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"docquiz/internal/domain"
)

// rawQuestion mirrors the untrusted backend payload. Field aliases cover the
// shapes models actually produce.
type rawQuestion struct {
	Question      string          `json:"question"`
	Text          string          `json:"text"`
	Type          string          `json:"type"`
	Options       json.RawMessage `json:"options"`
	CorrectAnswer string          `json:"correct_answer"`
	Answer        string          `json:"answer"`
	Explanation   string          `json:"explanation"`
	Difficulty    string          `json:"difficulty"`
}

type rawPayload struct {
	Title     string        `json:"title"`
	QuizTitle string        `json:"quiz_title"`
	Questions []rawQuestion `json:"questions"`
}

// parseResponse extracts the question candidates from the backend's raw
// output. Accepts a fenced or bare JSON object, or a bare question array.
func parseResponse(raw string) (title string, questions []rawQuestion, err error) {
	payload := extractJSON(raw)
	if payload == "" {
		return "", nil, fmt.Errorf("no JSON payload in response")
	}
	var obj rawPayload
	if err := json.Unmarshal([]byte(payload), &obj); err == nil && obj.Questions != nil {
		title = obj.Title
		if title == "" {
			title = obj.QuizTitle
		}
		return title, obj.Questions, nil
	}
	var list []rawQuestion
	if err := json.Unmarshal([]byte(payload), &list); err == nil {
		return "", list, nil
	}
	return "", nil, fmt.Errorf("response is not question JSON")
}

// extractJSON strips markdown fences and surrounding prose from the payload.
func extractJSON(raw string) string {
	raw = strings.TrimSpace(raw)
	if idx := strings.Index(raw, "```"); idx >= 0 {
		rest := raw[idx+3:]
		rest = strings.TrimPrefix(rest, "json")
		if end := strings.Index(rest, "```"); end >= 0 {
			raw = rest[:end]
		} else {
			raw = rest
		}
		raw = strings.TrimSpace(raw)
	}
	start := strings.IndexAny(raw, "{[")
	if start < 0 {
		return ""
	}
	var closer byte = '}'
	if raw[start] == '[' {
		closer = ']'
	}
	end := strings.LastIndexByte(raw, closer)
	if end <= start {
		return ""
	}
	return raw[start : end+1]
}

var typeAliases = map[string]domain.QuestionType{
	"multiple_choice": domain.MultipleChoice,
	"multiplechoice":  domain.MultipleChoice,
	"mcq":             domain.MultipleChoice,
	"qcm":             domain.MultipleChoice,
	"true_false":      domain.TrueFalse,
	"truefalse":       domain.TrueFalse,
	"true/false":      domain.TrueFalse,
	"short_answer":    domain.ShortAnswer,
	"shortanswer":     domain.ShortAnswer,
	"short":           domain.ShortAnswer,
	"comprehension":   domain.Comprehension,
	"open":            domain.Comprehension,
}

// repair validates one candidate against the Question invariants and
// normalizes its format. ok is false when the candidate is irreparable and
// must be dropped.
func repair(raw rawQuestion, cfg domain.GenerationConfig) (q domain.Question, ok bool) {
	prompt := strings.TrimSpace(raw.Question)
	if prompt == "" {
		prompt = strings.TrimSpace(raw.Text)
	}
	if prompt == "" {
		return q, false
	}

	qType, known := typeAliases[strings.ToLower(strings.TrimSpace(raw.Type))]
	if !known || !allowedType(qType, cfg.QuestionTypes) {
		return q, false
	}

	difficulty := domain.Difficulty(strings.ToLower(strings.TrimSpace(raw.Difficulty)))
	if !domain.KnownDifficulty(difficulty) {
		difficulty = cfg.Difficulty
	}

	answer := strings.TrimSpace(raw.CorrectAnswer)
	if answer == "" {
		answer = strings.TrimSpace(raw.Answer)
	}

	q = domain.Question{
		Type:        qType,
		Question:    prompt,
		Explanation: strings.TrimSpace(raw.Explanation),
		Difficulty:  difficulty,
	}

	switch qType {
	case domain.MultipleChoice:
		options := decodeOptions(raw.Options)
		if len(options) < 2 {
			return q, false
		}
		letter, resolved := resolveAnswer(answer, options)
		if !resolved {
			return q, false
		}
		q.Options = options
		q.CorrectAnswer = letter
	case domain.TrueFalse:
		canonical, resolved := canonicalBool(answer)
		if !resolved {
			return q, false
		}
		q.Options = []string{"True", "False"}
		q.CorrectAnswer = canonical
	default:
		if answer == "" {
			return q, false
		}
		q.CorrectAnswer = answer
	}
	return q, true
}

func allowedType(t domain.QuestionType, allowed []domain.QuestionType) bool {
	for _, a := range allowed {
		if a == t {
			return true
		}
	}
	return false
}

// decodeOptions accepts either a list of option strings or a letter-keyed
// map, and normalizes every option to the "A) text" form.
func decodeOptions(raw json.RawMessage) []string {
	if len(raw) == 0 {
		return nil
	}
	var list []string
	if err := json.Unmarshal(raw, &list); err != nil {
		var byLetter map[string]string
		if err := json.Unmarshal(raw, &byLetter); err != nil {
			return nil
		}
		letters := make([]string, 0, len(byLetter))
		for k := range byLetter {
			letters = append(letters, k)
		}
		sort.Strings(letters)
		for _, k := range letters {
			list = append(list, byLetter[k])
		}
	}
	out := make([]string, 0, len(list))
	for i, opt := range list {
		opt = strings.TrimSpace(opt)
		if opt == "" {
			continue
		}
		if stripLetterPrefix(opt) == opt {
			opt = fmt.Sprintf("%c) %s", 'A'+i, opt)
		}
		out = append(out, opt)
	}
	return out
}

// resolveAnswer derives the correct option letter from the answer, which may
// be a bare letter, a letter-prefixed option, or the option text itself.
func resolveAnswer(answer string, options []string) (string, bool) {
	if answer == "" {
		return "", false
	}
	if letter, ok := leadingLetter(answer); ok {
		if int(letter[0]-'A') < len(options) {
			return letter, true
		}
		return "", false
	}
	for i, opt := range options {
		if strings.EqualFold(stripLetterPrefix(opt), answer) {
			return string(rune('A' + i)), true
		}
	}
	return "", false
}

// leadingLetter extracts an option letter from answers like "A", "b)" or
// "C. Paris".
func leadingLetter(s string) (string, bool) {
	s = strings.ToUpper(strings.TrimSpace(s))
	if len(s) == 0 || s[0] < 'A' || s[0] > 'F' {
		return "", false
	}
	if len(s) == 1 {
		return s[:1], true
	}
	switch s[1] {
	case ')', '.', ':', ' ':
		return s[:1], true
	}
	return "", false
}

func stripLetterPrefix(opt string) string {
	if len(opt) >= 2 && opt[0] >= 'A' && opt[0] <= 'F' {
		rest := opt[1:]
		for _, sep := range []string{")", ".", ":"} {
			if strings.HasPrefix(rest, sep) {
				return strings.TrimSpace(rest[1:])
			}
		}
	}
	return opt
}

func canonicalBool(answer string) (string, bool) {
	lower := strings.ToLower(answer)
	switch {
	case strings.Contains(lower, "true") || lower == "t" || lower == "a":
		return "True", true
	case strings.Contains(lower, "false") || lower == "f" || lower == "b":
		return "False", true
	}
	return "", false
}
