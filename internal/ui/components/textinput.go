package components

import (
	"strconv"
	"strings"

	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/mateai/mate/internal/ui/theme"
)

// TextInput wraps bubbles/textinput with Mate styling.
type TextInput struct {
	Model       textinput.Model
	Label       string
	NumericOnly bool
	MaxWidth    int
}

// NewTextInput creates a new styled, focused text input.
func NewTextInput(label, placeholder string, numericOnly bool, maxWidth int) TextInput {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.Focus()

	if maxWidth > 0 {
		ti.CharLimit = maxWidth
	}

	return TextInput{
		Model:       ti,
		Label:       label,
		NumericOnly: numericOnly,
		MaxWidth:    maxWidth,
	}
}

// NewPasswordInput creates a text input that masks what is typed.
func NewPasswordInput(label, placeholder string) TextInput {
	t := NewTextInput(label, placeholder, false, 128)
	t.Model.EchoMode = textinput.EchoPassword
	t.Model.EchoCharacter = '•'
	return t
}

// Update handles messages. Numeric inputs drop non-digit keys.
func (t TextInput) Update(msg tea.Msg) (TextInput, tea.Cmd) {
	if t.NumericOnly {
		if kmsg, ok := msg.(tea.KeyPressMsg); ok {
			key := kmsg.String()
			if len(key) == 1 && (key[0] < '0' || key[0] > '9') {
				return t, nil
			}
		}
	}

	var cmd tea.Cmd
	t.Model, cmd = t.Model.Update(msg)
	return t, cmd
}

// View renders the label and the input.
func (t TextInput) View() string {
	view := t.Model.View()
	if t.Label == "" {
		return view
	}
	style := lipgloss.NewStyle().Foreground(theme.TextDim)
	if t.Model.Focused() {
		style = theme.Selected
	}
	return style.Render(t.Label) + "\n" + view
}

// Focus focuses the input.
func (t *TextInput) Focus() tea.Cmd {
	return t.Model.Focus()
}

// Blur removes focus.
func (t *TextInput) Blur() {
	t.Model.Blur()
}

// Value returns the current input value without surrounding spaces.
func (t TextInput) Value() string {
	return strings.TrimSpace(t.Model.Value())
}

// SetValue replaces the input value.
func (t *TextInput) SetValue(s string) {
	t.Model.SetValue(s)
}

// Reset clears the input.
func (t *TextInput) Reset() {
	t.Model.Reset()
}

// NumericValue returns the input value as an integer.
func (t TextInput) NumericValue() (int, error) {
	return strconv.Atoi(t.Value())
}
