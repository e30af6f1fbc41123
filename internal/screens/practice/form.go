package practice

import (
	"fmt"
	"strconv"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	prac "github.com/mateai/mate/internal/practice"
	"github.com/mateai/mate/internal/tutor"
	"github.com/mateai/mate/internal/ui/components"
	"github.com/mateai/mate/internal/ui/theme"
)

// Form fields in focus order.
const (
	fieldGrade = iota
	fieldTopic
	fieldDifficulty
	fieldCount
	numFields
)

// configForm collects the settings of a free practice session.
type configForm struct {
	grade      components.TextInput
	topic      components.TextInput
	count      components.TextInput
	difficulty int
	focus      int
}

func newConfigForm(s prac.Settings) configForm {
	f := configForm{
		grade: components.NewTextInput("Grado", "p. ej. 5", false, 20),
		topic: components.NewTextInput("Tema", "p. ej. Fracciones", false, 80),
		count: components.NewTextInput("Cantidad de ejercicios", "5", true, 2),
	}
	f.grade.SetValue(s.Grade)
	f.topic.SetValue(s.Topic)
	if s.Count > 0 {
		f.count.SetValue(strconv.Itoa(s.Count))
	}
	for i, d := range tutor.Difficulties {
		if d == s.Difficulty {
			f.difficulty = i
		}
	}
	// Start on the topic when the grade is already known.
	if s.Grade != "" {
		f.focus = fieldTopic
	}
	f.applyFocus()
	return f
}

// settings returns the values typed so far.
func (f configForm) settings() prac.Settings {
	count, _ := f.count.NumericValue()
	return prac.Settings{
		Grade:      f.grade.Value(),
		Topic:      f.topic.Value(),
		Difficulty: tutor.Difficulties[f.difficulty],
		Count:      count,
	}
}

// validate reports the first missing field in Spanish, or "".
func (f configForm) validate() string {
	s := f.settings()
	switch {
	case s.Grade == "":
		return "Indica tu grado."
	case s.Topic == "":
		return "El tema es obligatorio."
	case s.Count < 0 || s.Count > 20:
		return "La cantidad debe estar entre 1 y 20."
	}
	return ""
}

func (f *configForm) next() {
	f.focus = (f.focus + 1) % numFields
	f.applyFocus()
}

func (f *configForm) prev() {
	f.focus = (f.focus + numFields - 1) % numFields
	f.applyFocus()
}

func (f *configForm) applyFocus() {
	f.grade.Blur()
	f.topic.Blur()
	f.count.Blur()
	switch f.focus {
	case fieldGrade:
		f.grade.Focus()
	case fieldTopic:
		f.topic.Focus()
	case fieldCount:
		f.count.Focus()
	}
}

// onLastField reports whether enter should start the session.
func (f configForm) onLastField() bool {
	return f.focus == fieldCount
}

// update forwards a message to the focused field.
func (f configForm) update(msg tea.Msg) (configForm, tea.Cmd) {
	if kmsg, ok := msg.(tea.KeyPressMsg); ok && f.focus == fieldDifficulty {
		switch kmsg.String() {
		case "left", "h":
			f.difficulty = (f.difficulty + len(tutor.Difficulties) - 1) % len(tutor.Difficulties)
		case "right", "l", "space":
			f.difficulty = (f.difficulty + 1) % len(tutor.Difficulties)
		}
		return f, nil
	}

	var cmd tea.Cmd
	switch f.focus {
	case fieldGrade:
		f.grade, cmd = f.grade.Update(msg)
	case fieldTopic:
		f.topic, cmd = f.topic.Update(msg)
	case fieldCount:
		f.count, cmd = f.count.Update(msg)
	}
	return f, cmd
}

func (f configForm) view() string {
	var b strings.Builder
	b.WriteString(f.grade.View() + "\n\n")
	b.WriteString(f.topic.View() + "\n\n")

	label := lipgloss.NewStyle().Foreground(theme.TextDim)
	if f.focus == fieldDifficulty {
		label = theme.Selected
	}
	b.WriteString(label.Render("Dificultad") + "\n")
	var opts []string
	for i, d := range tutor.Difficulties {
		if i == f.difficulty {
			opts = append(opts, theme.Selected.Render(fmt.Sprintf("[%s]", d.Label())))
		} else {
			opts = append(opts, theme.Unselected.Render(fmt.Sprintf(" %s ", d.Label())))
		}
	}
	b.WriteString("◂ " + strings.Join(opts, " ") + " ▸\n\n")

	b.WriteString(f.count.View())
	return b.String()
}
