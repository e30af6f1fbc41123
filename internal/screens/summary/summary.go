package summary

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/mateai/mate/internal/practice"
	"github.com/mateai/mate/internal/router"
	"github.com/mateai/mate/internal/screen"
	"github.com/mateai/mate/internal/tutor"
	"github.com/mateai/mate/internal/ui/components"
	"github.com/mateai/mate/internal/ui/layout"
	"github.com/mateai/mate/internal/ui/theme"
)

// SummaryScreen displays the result of a finished session.
type SummaryScreen struct {
	state practice.State
}

var _ screen.Screen = (*SummaryScreen)(nil)
var _ screen.KeyHintProvider = (*SummaryScreen)(nil)

// New creates a new SummaryScreen.
func New(state practice.State) *SummaryScreen {
	return &SummaryScreen{state: state}
}

func (s *SummaryScreen) Init() tea.Cmd {
	return nil
}

func (s *SummaryScreen) Title() string {
	return "Resumen"
}

func (s *SummaryScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "Enter", Description: "Continuar"},
		{Key: "Esc", Description: "Inicio"},
	}
}

func (s *SummaryScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	if kmsg, ok := msg.(tea.KeyPressMsg); ok {
		switch kmsg.String() {
		case "enter", "esc":
			return s, func() tea.Msg { return router.PopScreenMsg{} }
		}
	}
	return s, nil
}

func (s *SummaryScreen) View(width, height int) string {
	st := s.state
	center := func(str string) string {
		return lipgloss.PlaceHorizontal(width, lipgloss.Center, str)
	}

	var b strings.Builder

	heading := "¡Práctica terminada!"
	if st.Kind == tutor.KindAssigned {
		heading = "¡Evaluación terminada!"
	}
	if st.Expired {
		heading = "Se acabó el tiempo"
	}
	b.WriteString(center(theme.Title.Render(heading)))
	b.WriteString("\n\n")

	stats := st.Stats
	statsLine := fmt.Sprintf("Preguntas: %d      Correctas: %d      Puntuación: %d%%",
		stats.Total, stats.Correct, stats.Score)
	b.WriteString(center(theme.Body.Render(statsLine)))
	b.WriteString("\n")
	b.WriteString(center(theme.Hint.Render(fmt.Sprintf("Intentos: %d   Pistas: %d", stats.Attempts, stats.Hints))))
	b.WriteString("\n\n")
	bar := components.ProgressBar{Label: "Correctas", Done: stats.Correct, Total: stats.Total, ShowCount: true, Width: min(width-8, 60)}
	b.WriteString(center(bar.View()))
	b.WriteString("\n\n")

	divider := lipgloss.NewStyle().Foreground(theme.Border).Render(strings.Repeat("─", min(width-8, 60)))
	b.WriteString(center(divider))
	b.WriteString("\n")

	for i, ex := range st.Exercises {
		b.WriteString(center(exerciseLine(i, ex, st.Attempts)))
		b.WriteString("\n")
	}
	b.WriteString(center(divider))
	b.WriteString("\n\n")

	if st.Report != nil {
		cardWidth := min(width-8, 72)
		if st.Report.DetailedReport != "" {
			b.WriteString(center(theme.Card.Width(cardWidth).Render(st.Report.DetailedReport)))
			b.WriteString("\n")
		}
		if st.Report.Advice != "" {
			advice := lipgloss.NewStyle().Foreground(theme.Accent).Bold(true).Render("Consejos") +
				"\n" + st.Report.Advice
			b.WriteString(center(theme.Card.Width(cardWidth).Render(advice)))
			b.WriteString("\n")
		}
	}

	switch {
	case st.ReportErr != nil:
		b.WriteString(center(theme.ErrorText.Render(st.ReportErr.Error())))
	case st.Saved:
		b.WriteString(center(lipgloss.NewStyle().Foreground(theme.Success).Render("Resultado guardado ✓")))
	}

	return b.String()
}

// exerciseLine renders "✓ 1. statement (2 intentos)".
func exerciseLine(i int, ex tutor.Exercise, attempts []tutor.Attempt) string {
	n, correct := 0, false
	for _, a := range attempts {
		if a.ExerciseID != ex.ID {
			continue
		}
		n++
		correct = correct || a.IsCorrect
	}

	statement := []rune(ex.Statement)
	if len(statement) > 48 {
		statement = append(statement[:47], '…')
	}
	line := fmt.Sprintf("%d. %s (%d %s)", i+1, string(statement), n, plural(n, "intento", "intentos"))
	if correct {
		return theme.Correct.Render("✓ " + line)
	}
	return theme.Incorrect.Render("✗ " + line)
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
