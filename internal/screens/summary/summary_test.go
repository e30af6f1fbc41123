package summary

import (
	"errors"
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"

	"github.com/mateai/mate/internal/practice"
	"github.com/mateai/mate/internal/router"
	"github.com/mateai/mate/internal/tutor"
)

func testState() practice.State {
	exercises := []tutor.Exercise{
		{ID: "e1", Statement: "¿Cuánto es 1/2 + 1/4?", CorrectAnswer: "3/4"},
		{ID: "e2", Statement: "Simplifica 2/4", CorrectAnswer: "1/2"},
	}
	return practice.State{
		Phase:     practice.PhaseCompleted,
		Kind:      tutor.KindPractice,
		Settings:  practice.Settings{Grade: "3", Topic: "Fracciones"},
		Exercises: exercises,
		Attempts: []tutor.Attempt{
			{ExerciseID: "e1", AnswerText: "2/6"},
			{ExerciseID: "e1", AnswerText: "3/4", IsCorrect: true},
			{ExerciseID: "e2", AnswerText: "2"},
		},
		Stats:  tutor.Stats{Total: 2, Correct: 1, Incorrect: 1, Score: 50, Attempts: 3},
		Report: &tutor.Report{DetailedReport: "Buen avance con sumas.", Advice: "Repasa la simplificación."},
		Saved:  true,
	}
}

func TestSummaryScreen_Title(t *testing.T) {
	s := New(testState())
	if s.Title() != "Resumen" {
		t.Errorf("Title = %q, want %q", s.Title(), "Resumen")
	}
}

func TestSummaryScreen_Display(t *testing.T) {
	s := New(testState())
	view := s.View(100, 40)
	for _, want := range []string{"Puntuación: 50%", "Buen avance con sumas.", "Repasa la simplificación.", "2 intentos", "Resultado guardado"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
}

func TestSummaryScreen_ReportError(t *testing.T) {
	st := testState()
	st.Report = nil
	st.Saved = false
	st.ReportErr = errors.New("No se pudo generar el reporte.")
	view := New(st).View(100, 40)
	if !strings.Contains(view, "No se pudo generar el reporte.") {
		t.Error("expected report error in view")
	}
}

func TestSummaryScreen_Expired(t *testing.T) {
	st := testState()
	st.Kind = tutor.KindAssigned
	st.Expired = true
	if view := New(st).View(100, 40); !strings.Contains(view, "Se acabó el tiempo") {
		t.Error("expected time-out heading")
	}
}

func TestSummaryScreen_Navigation(t *testing.T) {
	for _, key := range []rune{tea.KeyEnter, tea.KeyEscape} {
		s := New(testState())
		_, cmd := s.Update(tea.KeyPressMsg{Code: key})
		if cmd == nil {
			t.Fatalf("expected a command on key %d", key)
		}
		if _, ok := cmd().(router.PopScreenMsg); !ok {
			t.Errorf("key %d: expected PopScreenMsg", key)
		}
	}
}

func TestSummaryScreen_KeyHints(t *testing.T) {
	s := New(testState())
	if hints := s.KeyHints(); len(hints) != 2 {
		t.Errorf("KeyHints length = %d, want 2", len(hints))
	}
}
