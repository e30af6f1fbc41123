// Package assignments lists the tests assigned to the student and opens
// one in the practice screen.
package assignments

import (
	"context"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/mateai/mate/internal/gateway"
	"github.com/mateai/mate/internal/router"
	"github.com/mateai/mate/internal/screen"
	"github.com/mateai/mate/internal/ui/layout"
	"github.com/mateai/mate/internal/ui/theme"
)

// Source reads assignments from the backend. *gateway.Client implements it.
type Source interface {
	ListAssignments(ctx context.Context) ([]gateway.Assignment, error)
	GetTest(ctx context.Context, id string) (*gateway.Test, error)
}

// StartFunc builds the screen that runs test.
type StartFunc func(test gateway.Test, assignmentID string) screen.Screen

type assignmentsLoadedMsg struct {
	Assignments []gateway.Assignment
	Err         error
}

type testLoadedMsg struct {
	Test         *gateway.Test
	AssignmentID string
	Err          error
}

// AssignmentsScreen implements screen.Screen for the assigned tests list.
type AssignmentsScreen struct {
	source      Source
	start       StartFunc
	assignments []gateway.Assignment
	selected    int
	loaded      bool
	opening     bool
	errMsg      string
}

var _ screen.Screen = (*AssignmentsScreen)(nil)
var _ screen.KeyHintProvider = (*AssignmentsScreen)(nil)
var _ screen.Resumer = (*AssignmentsScreen)(nil)

// New creates an AssignmentsScreen.
func New(source Source, start StartFunc) *AssignmentsScreen {
	return &AssignmentsScreen{source: source, start: start}
}

func (s *AssignmentsScreen) Init() tea.Cmd {
	source := s.source
	return func() tea.Msg {
		list, err := source.ListAssignments(context.Background())
		return assignmentsLoadedMsg{Assignments: pending(list), Err: err}
	}
}

// Resume reloads the list when a test screen closes, so handed-in tests
// drop out.
func (s *AssignmentsScreen) Resume() tea.Cmd {
	s.opening = false
	return s.Init()
}

// pending drops assignments the student already handed in.
func pending(list []gateway.Assignment) []gateway.Assignment {
	out := list[:0:0]
	for _, a := range list {
		if a.Status == gateway.AssignmentCompleted {
			continue
		}
		out = append(out, a)
	}
	return out
}

func (s *AssignmentsScreen) Title() string {
	return "Evaluaciones"
}

func (s *AssignmentsScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "Enter", Description: "Comenzar"},
		{Key: "↑↓", Description: "Navegar"},
		{Key: "R", Description: "Actualizar"},
		{Key: "Esc", Description: "Volver"},
	}
}

func (s *AssignmentsScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case assignmentsLoadedMsg:
		s.loaded = true
		if msg.Err != nil {
			s.errMsg = msg.Err.Error()
			return s, nil
		}
		s.errMsg = ""
		s.assignments = msg.Assignments
		s.selected = min(s.selected, max(len(s.assignments)-1, 0))
		return s, nil

	case testLoadedMsg:
		s.opening = false
		if msg.Err != nil {
			s.errMsg = msg.Err.Error()
			return s, nil
		}
		next := s.start(*msg.Test, msg.AssignmentID)
		return s, func() tea.Msg { return router.PushScreenMsg{Screen: next} }

	case tea.KeyPressMsg:
		if s.opening {
			return s, nil
		}
		switch msg.String() {
		case "esc":
			return s, func() tea.Msg { return router.PopScreenMsg{} }
		case "up", "k":
			if s.selected > 0 {
				s.selected--
			}
		case "down", "j":
			if s.selected < len(s.assignments)-1 {
				s.selected++
			}
		case "r", "R":
			s.loaded = false
			return s, s.Init()
		case "enter":
			return s, s.open()
		}
	}
	return s, nil
}

// open loads the selected test. Embedded tests without questions are
// fetched again in full.
func (s *AssignmentsScreen) open() tea.Cmd {
	if s.selected >= len(s.assignments) {
		return nil
	}
	a := s.assignments[s.selected]
	if a.Test != nil && len(a.Test.Questions) > 0 {
		test := *a.Test
		return func() tea.Msg { return testLoadedMsg{Test: &test, AssignmentID: a.ID} }
	}
	s.opening = true
	s.errMsg = ""
	source := s.source
	return func() tea.Msg {
		test, err := source.GetTest(context.Background(), a.TestID)
		return testLoadedMsg{Test: test, AssignmentID: a.ID, Err: err}
	}
}

func (s *AssignmentsScreen) View(width, height int) string {
	center := func(str string) string {
		return lipgloss.PlaceHorizontal(width, lipgloss.Center, str)
	}
	if !s.loaded {
		return center(theme.Hint.Render("\n\nCargando evaluaciones..."))
	}

	var b strings.Builder
	b.WriteString("\n")
	if len(s.assignments) == 0 && s.errMsg == "" {
		b.WriteString(center(theme.Hint.Render("No tienes evaluaciones pendientes.")))
		return b.String()
	}

	for i, a := range s.assignments {
		b.WriteString(center(renderAssignment(a, i == s.selected)))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	switch {
	case s.opening:
		b.WriteString(center(theme.Hint.Render("Abriendo evaluación...")))
	case s.errMsg != "":
		b.WriteString(center(theme.ErrorText.Render(s.errMsg)))
	}
	return b.String()
}

func renderAssignment(a gateway.Assignment, selected bool) string {
	title := a.TestID
	var details []string
	if t := a.Test; t != nil {
		title = t.Title
		if t.Topic != "" {
			details = append(details, t.Topic)
		}
		if n := len(t.Questions); n > 0 {
			details = append(details, fmt.Sprintf("%d preguntas", n))
		}
		if t.TimeLimit > 0 {
			details = append(details, fmt.Sprintf("%d min", t.TimeLimit))
		}
	}
	if a.DueDate != nil {
		details = append(details, "entrega "+a.DueDate.Local().Format("02/01 15:04"))
	}

	prefix := "  "
	style := theme.Unselected
	if selected {
		prefix = "▸ "
		style = theme.Selected
	}
	line := style.Render(prefix + title)
	if len(details) > 0 {
		line += "  " + lipgloss.NewStyle().Foreground(theme.TextDim).Render(strings.Join(details, " · "))
	}
	return line
}
