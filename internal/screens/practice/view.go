package practice

import (
	"fmt"
	"strings"
	"time"

	"charm.land/lipgloss/v2"

	prac "github.com/mateai/mate/internal/practice"
	"github.com/mateai/mate/internal/ui/components"
	"github.com/mateai/mate/internal/ui/layout"
	"github.com/mateai/mate/internal/ui/theme"
)

func (s *PracticeScreen) renderConfig(width int, st prac.State) string {
	var b strings.Builder
	b.WriteString(layout.Centered(theme.Title.Render("Nueva práctica"), width))
	b.WriteString("\n\n")
	b.WriteString(theme.Card.Render(s.form.view()))
	b.WriteString("\n\n")

	switch {
	case s.notice != "":
		b.WriteString(theme.ErrorText.Render(s.notice))
	case st.Err != nil:
		b.WriteString(theme.ErrorText.Render(st.Err.Error()))
	}
	return b.String()
}

// renderInfoLine renders "Ejercicio 2/5 · Intentos 1/3 · Pistas 1 · 4:59".
func renderInfoLine(width int, st prac.State) string {
	title := st.Settings.Topic
	if st.TestTitle != "" {
		title = st.TestTitle
	}
	left := lipgloss.NewStyle().
		Foreground(theme.Secondary).
		Bold(true).
		Render("  " + title)

	parts := []string{fmt.Sprintf("Ejercicio %d/%d", st.Index+1, len(st.Exercises))}
	if st.MaxAttempts > 0 {
		parts = append(parts, fmt.Sprintf("Intentos %d/%d", st.AttemptsMade, st.MaxAttempts))
	} else {
		parts = append(parts, fmt.Sprintf("Intentos %d", st.AttemptsMade))
	}
	parts = append(parts, fmt.Sprintf("Pistas %d", st.HintsUsed))
	if !st.Deadline.IsZero() {
		secs := int(st.Remaining(time.Now()).Seconds())
		clock := lipgloss.NewStyle().Foreground(theme.Accent).Render("⏱ " + layout.FormatClock(secs))
		if secs < 60 {
			clock = theme.ErrorText.Render("⏱ " + layout.FormatClock(secs))
		}
		parts = append(parts, clock)
	}
	right := lipgloss.NewStyle().Foreground(theme.TextDim).Render(strings.Join(parts, " · "))

	line := left
	if pad := width - lipgloss.Width(left) - lipgloss.Width(right) - 4; pad > 0 {
		line += strings.Repeat(" ", pad) + right
	}
	bar := components.ProgressBar{Done: st.Index, Total: len(st.Exercises), Width: max(width-4, 10)}
	return line + "\n  " + bar.View() + "\n\n"
}

func (s *PracticeScreen) renderExercise(width int, st prac.State) string {
	ex := st.Current()
	if ex == nil {
		return ""
	}

	var b strings.Builder
	b.WriteString(renderInfoLine(width, st))

	if st.Index == 0 && st.Instructions != "" {
		b.WriteString(theme.Hint.Render(st.Instructions) + "\n\n")
	}

	b.WriteString(lipgloss.NewStyle().
		Width(width - 4).
		Foreground(theme.Text).
		Bold(true).
		Render(ex.Statement))
	b.WriteString("\n\n")

	if len(ex.Options) > 0 {
		b.WriteString(s.choice.View())
	} else {
		b.WriteString("Respuesta: " + s.input.View())
	}
	b.WriteString("\n\n")

	for i, h := range st.Hints {
		b.WriteString(lipgloss.NewStyle().Foreground(theme.Accent).Render(fmt.Sprintf("💡 Pista %d: ", i+1)))
		b.WriteString(theme.Body.Render(h) + "\n")
	}

	switch {
	case st.Phase == prac.PhaseValidating:
		b.WriteString(theme.Hint.Render("Revisando tu respuesta..."))
	case s.waiting:
		b.WriteString(theme.Hint.Render("Buscando una pista..."))
	case s.notice != "":
		b.WriteString(theme.ErrorText.Render(s.notice))
	case st.Err != nil:
		b.WriteString(theme.ErrorText.Render(st.Err.Error()))
	}
	return b.String()
}

func (s *PracticeScreen) renderReveal(width int, st prac.State) string {
	ex := st.Current()
	if ex == nil {
		return ""
	}

	var b strings.Builder
	b.WriteString(renderInfoLine(width, st))
	b.WriteString(lipgloss.NewStyle().Width(width - 4).Foreground(theme.Text).Render(ex.Statement))
	b.WriteString("\n\n")

	if st.Outcome == prac.OutcomeSucceeded {
		b.WriteString(theme.Correct.Render("✓ ¡Correcto!"))
	} else {
		b.WriteString(theme.Incorrect.Render("✗ La respuesta correcta es: " + ex.CorrectAnswer))
	}
	b.WriteString("\n\n")

	if st.Validation != nil && len(st.Validation.Suggestions) > 0 && st.Outcome != prac.OutcomeSucceeded {
		for _, sug := range st.Validation.Suggestions {
			b.WriteString(theme.Hint.Render("• "+sug) + "\n")
		}
		b.WriteString("\n")
	}

	if st.Explanation != "" {
		b.WriteString(theme.Card.Width(max(width-8, 20)).Render(st.Explanation))
		b.WriteString("\n\n")
	}

	if s.waiting {
		b.WriteString(theme.Hint.Render("Preparando la explicación paso a paso..."))
	}
	return b.String()
}

// renderLoading renders a centered status line.
func renderLoading(width, height int, text string) string {
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center,
		lipgloss.NewStyle().Foreground(theme.TextDim).Render(text))
}

// renderError renders a failure that ends the screen.
func renderError(width, height int, msg string) string {
	content := theme.ErrorText.Render(msg) + "\n\n" +
		theme.Hint.Render("Presiona cualquier tecla para volver")
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, content)
}

// renderQuitConfirm asks before abandoning the session.
func renderQuitConfirm(width, height int) string {
	content := theme.Body.Bold(true).Render("¿Salir de la sesión?") + "\n\n" +
		theme.Hint.Render("Perderás el progreso de esta sesión.") + "\n\n" +
		theme.Body.Render("[S] Salir   [N] Seguir")
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, theme.Card.Render(content))
}
