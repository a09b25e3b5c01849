// Package tui implements the interactive terminal quiz session.
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"docquiz/internal/domain"
	"docquiz/internal/quiz"
)

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	questionStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	correctStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true)
	wrongStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	statusStyle   = lipgloss.NewStyle().Faint(true)
)

type phase int

const (
	phaseAnswering phase = iota
	phaseFeedback
	phaseDone
)

// Model is the Bubble Tea model for taking a quiz in the terminal.
type Model struct {
	quiz     *domain.Quiz
	idx      int
	phase    phase
	correct  int
	lastOK   bool
	input    textinput.Model
	viewport viewport.Model
	ready    bool
	status   string
}

// New creates a quiz session model.
func New(q *domain.Quiz) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "Answer (letter or text), Enter to submit"
	ti.Focus()
	ti.CharLimit = 0
	return Model{
		quiz:     q,
		input:    ti,
		viewport: viewport.New(0, 0),
		status:   "Answer each question. Ctrl+C quits.",
	}
}

// Init starts the text input cursor blink.
func (m Model) Init() tea.Cmd { return textinput.Blink }

// Update handles key and window events.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		_, frame := questionStyle.GetFrameSize()
		h := msg.Height - frame - 6
		if h < 5 {
			h = 5
		}
		m.viewport.Width = max(20, msg.Width-2)
		m.viewport.Height = h
		m.viewport.SetContent(m.renderBody())
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || msg.Type == tea.KeyCtrlD {
			return m, tea.Quit
		}
		switch m.phase {
		case phaseAnswering:
			if msg.String() == "enter" {
				answer := strings.TrimSpace(m.input.Value())
				if answer == "" {
					return m, nil
				}
				m.lastOK = quiz.CheckAnswer(m.quiz.Questions[m.idx], answer)
				if m.lastOK {
					m.correct++
				}
				m.phase = phaseFeedback
				m.input.Blur()
				m.status = "Enter for next question"
				m.viewport.SetContent(m.renderBody())
				return m, nil
			}
		case phaseFeedback:
			if msg.String() == "enter" {
				m.idx++
				m.input.SetValue("")
				if m.idx >= len(m.quiz.Questions) {
					m.phase = phaseDone
					m.status = "Quiz finished. Press q to quit."
				} else {
					m.phase = phaseAnswering
					m.input.Focus()
					m.status = "Answer each question. Ctrl+C quits."
				}
				m.viewport.SetContent(m.renderBody())
				return m, nil
			}
		case phaseDone:
			if msg.String() == "q" || msg.String() == "enter" {
				return m, tea.Quit
			}
		}
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// View renders the session.
func (m Model) View() string {
	if !m.ready {
		return "loading..."
	}
	header := titleStyle.Render(m.quiz.Title) + "  " +
		statusStyle.Render(fmt.Sprintf("[%s, %d questions]", m.quiz.Difficulty, len(m.quiz.Questions)))
	var b strings.Builder
	b.WriteString(header)
	b.WriteString("\n")
	b.WriteString(questionStyle.Render(m.viewport.View()))
	b.WriteString("\n")
	if m.phase == phaseAnswering {
		b.WriteString(m.input.View())
		b.WriteString("\n")
	}
	b.WriteString(statusStyle.Render(m.status))
	return b.String()
}

func (m Model) renderBody() string {
	switch m.phase {
	case phaseDone:
		pct := 0.0
		if n := len(m.quiz.Questions); n > 0 {
			pct = float64(m.correct) / float64(n) * 100
		}
		return fmt.Sprintf("Done!\n\nScore: %d/%d (%.0f%%)", m.correct, len(m.quiz.Questions), pct)
	case phaseFeedback:
		q := m.quiz.Questions[m.idx]
		verdict := correctStyle.Render("Correct!")
		if !m.lastOK {
			verdict = wrongStyle.Render("Incorrect. Answer: " + q.CorrectAnswer)
		}
		body := m.renderQuestion(q) + "\n\n" + verdict
		if q.Explanation != "" {
			body += "\n\n" + q.Explanation
		}
		return body
	default:
		return m.renderQuestion(m.quiz.Questions[m.idx])
	}
}

func (m Model) renderQuestion(q domain.Question) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Question %d of %d (%s)\n\n", m.idx+1, len(m.quiz.Questions), q.Type)
	b.WriteString(q.Question)
	for _, opt := range q.Options {
		b.WriteString("\n  ")
		b.WriteString(opt)
	}
	return b.String()
}
