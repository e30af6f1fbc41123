package history

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	tea "charm.land/bubbletea/v2"

	"github.com/mateai/mate/internal/router"
	"github.com/mateai/mate/internal/store"
)

type fakeSource struct {
	sessions     []store.SessionSummary
	attempts     map[string][]store.AttemptRecord
	err          error
	attemptCalls int
}

func (f *fakeSource) ListSessions(_ context.Context, limit int) ([]store.SessionSummary, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.sessions, nil
}

func (f *fakeSource) SessionAttempts(_ context.Context, sessionID string) ([]store.AttemptRecord, error) {
	f.attemptCalls++
	return f.attempts[sessionID], nil
}

func testSource() *fakeSource {
	at := time.Date(2026, 5, 4, 10, 0, 0, 0, time.UTC)
	return &fakeSource{
		sessions: []store.SessionSummary{
			{SessionID: "s1", Kind: "practica-ia", Topic: "Fracciones", StartedAt: at, Status: store.SessionEnd, QuestionsTotal: 4, CorrectAnswers: 3, Score: 75, DurationSecs: 245},
			{SessionID: "s2", Kind: "evaluacion", Topic: "Decimales", StartedAt: at.Add(-time.Hour), Status: store.SessionAbandon},
		},
		attempts: map[string][]store.AttemptRecord{
			"s1": {
				{AttemptEventData: store.AttemptEventData{Statement: "1/2 + 1/4", Answer: "3/4", Correct: true}},
				{AttemptEventData: store.AttemptEventData{Statement: "2/4", Answer: "", HintsUsed: 1}},
			},
		},
	}
}

func loaded(t *testing.T, src *fakeSource) *HistoryScreen {
	t.Helper()
	s := New(src)
	s.Update(s.Init()())
	if !s.loaded {
		t.Fatal("expected history to be loaded")
	}
	return s
}

func TestHistory_List(t *testing.T) {
	s := loaded(t, testSource())
	view := s.View(120, 30)
	for _, want := range []string{"Fracciones", "3/4  75%", "4:05", "Evaluación", "(abandonada)"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
}

func TestHistory_ExpandLoadsAttemptsOnce(t *testing.T) {
	src := testSource()
	s := loaded(t, src)

	_, cmd := s.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	if cmd == nil {
		t.Fatal("expected a load command")
	}
	s.Update(cmd())

	view := s.View(120, 30)
	if !strings.Contains(view, "✓ 1/2 + 1/4 → 3/4") || !strings.Contains(view, "(sin respuesta)") {
		t.Errorf("attempts not shown:\n%s", view)
	}

	// Collapse and expand again: no second fetch.
	s.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	_, cmd = s.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	if cmd != nil {
		t.Error("expected cached attempts")
	}
	if src.attemptCalls != 1 {
		t.Errorf("SessionAttempts calls = %d, want 1", src.attemptCalls)
	}
}

func TestHistory_Empty(t *testing.T) {
	s := loaded(t, &fakeSource{})
	if !strings.Contains(s.View(100, 30), "Aún no hay sesiones") {
		t.Error("expected empty message")
	}
}

func TestHistory_Error(t *testing.T) {
	s := loaded(t, &fakeSource{err: errors.New("database is locked")})
	if !strings.Contains(s.View(100, 30), "database is locked") {
		t.Error("expected error in view")
	}
}

func TestHistory_Navigation(t *testing.T) {
	s := loaded(t, testSource())
	s.Update(tea.KeyPressMsg{Code: tea.KeyDown})
	s.Update(tea.KeyPressMsg{Code: tea.KeyDown})
	if s.selected != 1 {
		t.Errorf("selected = %d, want 1", s.selected)
	}
	_, cmd := s.Update(tea.KeyPressMsg{Code: tea.KeyEscape})
	if _, ok := cmd().(router.PopScreenMsg); !ok {
		t.Error("expected PopScreenMsg on Esc")
	}
}
