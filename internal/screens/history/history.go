package history

import (
	"context"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/mateai/mate/internal/router"
	"github.com/mateai/mate/internal/screen"
	"github.com/mateai/mate/internal/store"
	"github.com/mateai/mate/internal/ui/layout"
	"github.com/mateai/mate/internal/ui/theme"
)

// Source reads the local session log. store.EventRepo implements it.
type Source interface {
	ListSessions(ctx context.Context, limit int) ([]store.SessionSummary, error)
	SessionAttempts(ctx context.Context, sessionID string) ([]store.AttemptRecord, error)
}

type historyLoadedMsg struct {
	Sessions []store.SessionSummary
	Err      error
}

type attemptsLoadedMsg struct {
	SessionID string
	Attempts  []store.AttemptRecord
	Err       error
}

// HistoryScreen lists past sessions; Enter shows a session's attempts.
type HistoryScreen struct {
	source   Source
	sessions []store.SessionSummary
	attempts map[string][]store.AttemptRecord
	selected int
	expanded map[int]bool
	loaded   bool
	errMsg   string
}

var _ screen.Screen = (*HistoryScreen)(nil)
var _ screen.KeyHintProvider = (*HistoryScreen)(nil)

// New creates a new HistoryScreen.
func New(source Source) *HistoryScreen {
	return &HistoryScreen{
		source:   source,
		attempts: make(map[string][]store.AttemptRecord),
		expanded: make(map[int]bool),
	}
}

func (s *HistoryScreen) Init() tea.Cmd {
	return func() tea.Msg {
		sessions, err := s.source.ListSessions(context.Background(), 50)
		return historyLoadedMsg{Sessions: sessions, Err: err}
	}
}

func (s *HistoryScreen) Title() string {
	return "Historial"
}

func (s *HistoryScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "Enter", Description: "Detalles"},
		{Key: "↑↓", Description: "Navegar"},
		{Key: "Esc", Description: "Volver"},
	}
}

func (s *HistoryScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case historyLoadedMsg:
		if msg.Err != nil {
			s.errMsg = msg.Err.Error()
		} else {
			s.sessions = msg.Sessions
		}
		s.loaded = true
		return s, nil

	case attemptsLoadedMsg:
		if msg.Err != nil {
			s.errMsg = msg.Err.Error()
			return s, nil
		}
		s.attempts[msg.SessionID] = msg.Attempts
		return s, nil

	case tea.KeyPressMsg:
		switch msg.String() {
		case "esc":
			return s, func() tea.Msg { return router.PopScreenMsg{} }
		case "up", "k":
			if s.selected > 0 {
				s.selected--
			}
			return s, nil
		case "down", "j":
			if s.selected < len(s.sessions)-1 {
				s.selected++
			}
			return s, nil
		case "enter":
			if s.selected >= len(s.sessions) {
				return s, nil
			}
			s.expanded[s.selected] = !s.expanded[s.selected]
			return s, s.loadAttempts(s.sessions[s.selected].SessionID)
		}
	}
	return s, nil
}

// loadAttempts fetches a session's attempts the first time it is opened.
func (s *HistoryScreen) loadAttempts(sessionID string) tea.Cmd {
	if _, ok := s.attempts[sessionID]; ok {
		return nil
	}
	source := s.source
	return func() tea.Msg {
		attempts, err := source.SessionAttempts(context.Background(), sessionID)
		return attemptsLoadedMsg{SessionID: sessionID, Attempts: attempts, Err: err}
	}
}

func (s *HistoryScreen) View(width, height int) string {
	if s.errMsg != "" {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.Error).
			Render(fmt.Sprintf("\n\nError: %s", s.errMsg))
	}
	if !s.loaded {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.TextDim).
			Render("\n\n  Cargando historial...")
	}
	if len(s.sessions) == 0 {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.TextDim).Italic(true).
			Render("\n\n  Aún no hay sesiones. ¡Empieza a practicar!")
	}

	var b strings.Builder
	b.WriteString("\n")

	for i, sess := range s.sessions {
		prefix := "  "
		if i == s.selected {
			prefix = "> "
		}

		line := fmt.Sprintf("%s%s  %-11s %-20s %s  %d/%d  %d%%%s",
			prefix,
			sess.StartedAt.Local().Format("02/01/2006 15:04"),
			kindLabel(sess.Kind),
			truncate(sess.Topic, 20),
			layout.FormatClock(sess.DurationSecs),
			sess.CorrectAnswers, sess.QuestionsTotal, sess.Score,
			statusSuffix(sess.Status))

		style := lipgloss.NewStyle().Foreground(theme.Text)
		if i == s.selected {
			style = style.Foreground(theme.Primary).Bold(true)
		}
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, style.Render(line)))
		b.WriteString("\n")

		if s.expanded[i] {
			b.WriteString(s.renderAttempts(sess.SessionID, width))
		}
	}

	return b.String()
}

func (s *HistoryScreen) renderAttempts(sessionID string, width int) string {
	attempts, ok := s.attempts[sessionID]
	dim := lipgloss.NewStyle().Foreground(theme.TextDim).Italic(true)
	if !ok {
		return lipgloss.PlaceHorizontal(width, lipgloss.Center, dim.Render("    Cargando...")) + "\n"
	}
	if len(attempts) == 0 {
		return lipgloss.PlaceHorizontal(width, lipgloss.Center, dim.Render("    Sin respuestas registradas")) + "\n"
	}

	var b strings.Builder
	for _, a := range attempts {
		mark, style := "✓", theme.Correct
		switch {
		case a.Unvalidated:
			mark, style = "?", theme.Hint
		case !a.Correct:
			mark, style = "✗", theme.Incorrect
		}
		answer := a.Answer
		if answer == "" {
			answer = "(sin respuesta)"
		}
		line := fmt.Sprintf("    %s %s → %s", mark, truncate(a.Statement, 40), truncate(answer, 20))
		if a.HintsUsed > 0 {
			line += fmt.Sprintf("  💡%d", a.HintsUsed)
		}
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, style.Render(line)))
		b.WriteString("\n")
	}
	return b.String()
}

func kindLabel(kind string) string {
	if kind == "evaluacion" {
		return "Evaluación"
	}
	return "Práctica"
}

func statusSuffix(status string) string {
	switch status {
	case store.SessionAbandon:
		return "  (abandonada)"
	case store.SessionStart:
		return "  (en curso)"
	}
	return ""
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
