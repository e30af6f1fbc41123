package router

import (
	"testing"

	tea "charm.land/bubbletea/v2"

	"github.com/mateai/mate/internal/screen"
)

type stubScreen struct {
	title   string
	inits   int
	resumes int
}

func (s *stubScreen) Init() tea.Cmd {
	s.inits++
	return nil
}
func (s *stubScreen) Update(tea.Msg) (screen.Screen, tea.Cmd) { return s, nil }
func (s *stubScreen) View(int, int) string                    { return s.title }
func (s *stubScreen) Title() string                           { return s.title }

type resumeMsg struct{ title string }

// listScreen reloads on resume, like the assignments list.
type listScreen struct {
	stubScreen
}

func (s *listScreen) Resume() tea.Cmd {
	s.resumes++
	title := s.title
	return func() tea.Msg { return resumeMsg{title: title} }
}

func titles(r *Router) []string {
	out := make([]string, 0, r.Depth())
	for _, s := range r.stack {
		out = append(out, s.Title())
	}
	return out
}

func equal(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestNavigation(t *testing.T) {
	tests := []struct {
		name string
		msgs []tea.Msg
		want []string
	}{
		{"push", []tea.Msg{PushScreenMsg{Screen: &stubScreen{title: "practice"}}}, []string{"home", "practice"}},
		{"pop", []tea.Msg{PushScreenMsg{Screen: &stubScreen{title: "practice"}}, PopScreenMsg{}}, []string{"home"}},
		{"pop at root", []tea.Msg{PopScreenMsg{}, PopScreenMsg{}}, []string{"home"}},
		{"replace root", []tea.Msg{ReplaceScreenMsg{Screen: &stubScreen{title: "login"}}}, []string{"login"}},
		{"replace keeps depth", []tea.Msg{
			PushScreenMsg{Screen: &stubScreen{title: "practice"}},
			ReplaceScreenMsg{Screen: &stubScreen{title: "summary"}},
		}, []string{"home", "summary"}},
		{"pop to root", []tea.Msg{
			PushScreenMsg{Screen: &stubScreen{title: "assignments"}},
			PushScreenMsg{Screen: &stubScreen{title: "practice"}},
			PopToRootMsg{},
		}, []string{"home"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := New(&stubScreen{title: "home"})
			for _, msg := range tt.msgs {
				r.Update(msg)
			}
			if got := titles(r); !equal(got, tt.want) {
				t.Errorf("stack = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPushAndReplaceRunInit(t *testing.T) {
	r := New(&stubScreen{title: "home"})
	practice := &stubScreen{title: "practice"}
	summary := &stubScreen{title: "summary"}

	r.Update(PushScreenMsg{Screen: practice})
	r.Update(ReplaceScreenMsg{Screen: summary})

	if practice.inits != 1 || summary.inits != 1 {
		t.Errorf("inits: practice %d, summary %d", practice.inits, summary.inits)
	}
}

func TestPopResumesUncoveredScreen(t *testing.T) {
	list := &listScreen{stubScreen{title: "assignments"}}
	r := New(&stubScreen{title: "home"})
	r.Push(list)
	r.Push(&stubScreen{title: "practice"})

	cmd := r.Update(PopScreenMsg{})
	if cmd == nil {
		t.Fatal("expected the resume command")
	}
	if msg, ok := cmd().(resumeMsg); !ok || msg.title != "assignments" {
		t.Errorf("msg = %#v", msg)
	}
	if list.resumes != 1 || list.inits != 1 {
		t.Errorf("resumes %d, inits %d", list.resumes, list.inits)
	}

	if cmd := r.Update(PopScreenMsg{}); cmd != nil {
		t.Error("a plain screen should not be resumed")
	}
}

func TestPopToRootResumesRoot(t *testing.T) {
	root := &listScreen{stubScreen{title: "home"}}
	r := New(root)

	if cmd := r.PopToRoot(); cmd != nil || root.resumes != 0 {
		t.Error("nothing to unwind at the root")
	}

	r.Push(&stubScreen{title: "history"})
	r.Push(&stubScreen{title: "detail"})
	if cmd := r.PopToRoot(); cmd == nil || root.resumes != 1 {
		t.Errorf("expected root resumed once, got %d", root.resumes)
	}
}

func TestUpdateForwardsToActive(t *testing.T) {
	r := New(&stubScreen{title: "home"})
	if cmd := r.Update(tea.KeyPressMsg{Code: 'x', Text: "x"}); cmd != nil {
		t.Error("stub screen returns no command")
	}
	if got := r.View(80, 24); got != "home" {
		t.Errorf("View = %q", got)
	}
}
