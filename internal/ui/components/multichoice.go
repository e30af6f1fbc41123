package components

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/mateai/mate/internal/ui/theme"
)

// MultiChoice selects one of an exercise's options. Options can also be
// picked by letter.
type MultiChoice struct {
	Options  []string
	Selected int
	// Marked is the option shown as the student's answer after
	// validation, or -1.
	Marked  int
	Correct bool
}

// NewMultiChoice creates a selector over options.
func NewMultiChoice(options []string) MultiChoice {
	return MultiChoice{Options: options, Marked: -1}
}

// ChoiceMsg is emitted when an option is chosen with enter or its letter.
type ChoiceMsg struct {
	Index int
	Value string
}

// Update handles keyboard navigation and selection.
func (m MultiChoice) Update(msg tea.Msg) (MultiChoice, tea.Cmd) {
	kmsg, ok := msg.(tea.KeyPressMsg)
	if !ok || len(m.Options) == 0 {
		return m, nil
	}

	key := kmsg.String()
	switch key {
	case "up", "k":
		if m.Selected > 0 {
			m.Selected--
		}
		return m, nil
	case "down", "j":
		if m.Selected < len(m.Options)-1 {
			m.Selected++
		}
		return m, nil
	case "enter":
		return m, m.choose(m.Selected)
	}

	if len(key) == 1 {
		if i := strings.IndexByte("abcdefgh", key[0]); i >= 0 && i < len(m.Options) {
			m.Selected = i
			return m, m.choose(i)
		}
	}
	return m, nil
}

func (m MultiChoice) choose(i int) tea.Cmd {
	value := m.Options[i]
	return func() tea.Msg { return ChoiceMsg{Index: i, Value: value} }
}

// Mark shows the option equal to answer as right or wrong.
func (m *MultiChoice) Mark(answer string, correct bool) {
	m.Marked = -1
	for i, opt := range m.Options {
		if opt == answer {
			m.Marked = i
			break
		}
	}
	m.Correct = correct
}

// Letter returns the label of option i: A, B, C...
func Letter(i int) string {
	return string(rune('A' + i))
}

// View renders the options.
func (m MultiChoice) View() string {
	var b strings.Builder
	for i, opt := range m.Options {
		prefix := "  "
		if i == m.Selected {
			prefix = "▸ "
		}
		line := fmt.Sprintf("%s%s)  %s", prefix, Letter(i), opt)

		switch {
		case i == m.Marked && m.Correct:
			line = theme.Correct.Render(line + "  ✓")
		case i == m.Marked:
			line = theme.Incorrect.Render(line + "  ✗")
		case i == m.Selected:
			line = theme.Selected.Render(line)
		default:
			line = lipgloss.NewStyle().Foreground(theme.Text).Render(line)
		}
		b.WriteString(line + "\n")
	}
	return b.String()
}
