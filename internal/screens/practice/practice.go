// Package practice is the screen that runs a free practice session or an
// assigned test on top of a practice.Controller.
package practice

import (
	"context"
	"errors"
	"fmt"
	"time"

	tea "charm.land/bubbletea/v2"

	"github.com/mateai/mate/internal/gateway"
	prac "github.com/mateai/mate/internal/practice"
	"github.com/mateai/mate/internal/router"
	"github.com/mateai/mate/internal/screen"
	"github.com/mateai/mate/internal/screens/summary"
	"github.com/mateai/mate/internal/ui/components"
	"github.com/mateai/mate/internal/ui/layout"
)

// assignedStart identifies the test an assigned screen opens with.
type assignedStart struct {
	test         gateway.Test
	assignmentID string
}

// PracticeScreen implements screen.Screen for one session.
type PracticeScreen struct {
	ctrl     *prac.Controller
	assigned *assignedStart

	// ctx is cancelled when the screen is left, aborting in-flight calls.
	ctx    context.Context
	cancel context.CancelFunc

	form   configForm
	input  components.TextInput
	choice components.MultiChoice

	// shown is the exercise index the input was built for.
	shown       int
	confirmQuit bool
	// waiting is set while a hint or explanation is being fetched.
	waiting bool
	ticking bool
	notice  string
	errMsg  string
}

var _ screen.Screen = (*PracticeScreen)(nil)
var _ screen.KeyHintProvider = (*PracticeScreen)(nil)
var _ screen.EscapeHandler = (*PracticeScreen)(nil)

// New creates a free practice screen. The form is prefilled with the
// controller's last settings.
func New(ctrl *prac.Controller) *PracticeScreen {
	if st := ctrl.Snapshot(); st.Phase != prac.PhaseConfiguring {
		ctrl.Restart()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &PracticeScreen{
		ctrl:   ctrl,
		ctx:    ctx,
		cancel: cancel,
		form:   newConfigForm(ctrl.Snapshot().Settings),
		shown:  -1,
	}
}

// NewAssigned creates a screen that starts test right away.
func NewAssigned(ctrl *prac.Controller, test gateway.Test, assignmentID string) *PracticeScreen {
	s := New(ctrl)
	s.assigned = &assignedStart{test: test, assignmentID: assignmentID}
	return s
}

func (s *PracticeScreen) Init() tea.Cmd {
	if s.assigned != nil {
		a := *s.assigned
		ctx, ctrl := s.ctx, s.ctrl
		return func() tea.Msg {
			return startedMsg{Err: ctrl.StartAssigned(ctx, a.test, a.assignmentID)}
		}
	}
	return nil
}

func (s *PracticeScreen) Title() string {
	if s.assigned != nil {
		return "Evaluación"
	}
	return "Práctica con IA"
}

// HandlesEscape is true once a session is under way, so Esc asks before
// abandoning it.
func (s *PracticeScreen) HandlesEscape() bool {
	if s.errMsg != "" {
		return false
	}
	switch s.ctrl.Snapshot().Phase {
	case prac.PhaseConfiguring, prac.PhaseCompleted:
		return s.confirmQuit
	}
	return true
}

func (s *PracticeScreen) KeyHints() []layout.KeyHint {
	if s.confirmQuit {
		return []layout.KeyHint{
			{Key: "S", Description: "Salir"},
			{Key: "N", Description: "Seguir"},
		}
	}
	st := s.ctrl.Snapshot()
	switch st.Phase {
	case prac.PhaseConfiguring:
		return []layout.KeyHint{
			{Key: "Tab", Description: "Siguiente campo"},
			{Key: "Enter", Description: "Comenzar"},
			{Key: "Esc", Description: "Volver"},
		}
	case prac.PhaseAnswering:
		hints := []layout.KeyHint{{Key: "Enter", Description: "Responder"}}
		if st.HintsLeft != 0 {
			hints = append(hints, layout.KeyHint{Key: "Ctrl+T", Description: "Pista"})
		}
		if st.MaxAttempts == 0 {
			hints = append(hints, layout.KeyHint{Key: "Ctrl+O", Description: "Omitir"})
		}
		return append(hints, layout.KeyHint{Key: "Esc", Description: "Salir"})
	case prac.PhaseRevealed:
		return []layout.KeyHint{
			{Key: "Enter", Description: "Continuar"},
			{Key: "E", Description: "Explicación paso a paso"},
			{Key: "Esc", Description: "Salir"},
		}
	}
	return []layout.KeyHint{{Key: "Esc", Description: "Salir"}}
}

func (s *PracticeScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case startedMsg:
		return s.handleStarted(msg)

	case submittedMsg:
		return s.handleSubmitted(msg)

	case hintMsg:
		s.waiting = false
		if msg.Err != nil && !errors.Is(msg.Err, prac.ErrDiscarded) {
			s.notice = msg.Err.Error()
		}
		return s.sync()

	case explainedMsg:
		s.waiting = false
		return s.sync()

	case continuedMsg, expiredMsg:
		return s.sync()

	case timerTickMsg:
		return s.handleTimerTick()

	case components.ChoiceMsg:
		return s.submit(msg.Value)

	case tea.KeyPressMsg:
		return s.handleKey(msg)
	}

	return s, nil
}

func (s *PracticeScreen) handleStarted(msg startedMsg) (screen.Screen, tea.Cmd) {
	if errors.Is(msg.Err, prac.ErrDiscarded) {
		return s, nil
	}
	if msg.Err != nil {
		if s.assigned != nil {
			s.errMsg = msg.Err.Error()
		}
		// Free practice errors stay in the controller state and are
		// shown on the form.
		return s, nil
	}
	scr, cmd := s.sync()
	if !s.ctrl.Snapshot().Deadline.IsZero() && !s.ticking {
		s.ticking = true
		return scr, tea.Batch(cmd, tickCmd())
	}
	return scr, cmd
}

func (s *PracticeScreen) handleSubmitted(msg submittedMsg) (screen.Screen, tea.Cmd) {
	if errors.Is(msg.Err, prac.ErrDiscarded) {
		return s, nil
	}
	st := s.ctrl.Snapshot()
	if msg.Err == nil && st.Phase == prac.PhaseAnswering {
		// Wrong answer below the attempt ceiling: try again.
		s.input.Reset()
		s.choice.Mark(st.Attempts[len(st.Attempts)-1].AnswerText, false)
		if st.MaxAttempts > 0 {
			s.notice = fmt.Sprintf("Respuesta incorrecta. Te quedan %d intentos.", st.MaxAttempts-st.AttemptsMade)
		} else {
			s.notice = "Respuesta incorrecta. Inténtalo de nuevo."
		}
	}
	return s.sync()
}

func (s *PracticeScreen) handleTimerTick() (screen.Screen, tea.Cmd) {
	st := s.ctrl.Snapshot()
	if st.Deadline.IsZero() || st.Expired || st.Phase == prac.PhaseCompleted || st.Phase == prac.PhaseConfiguring {
		s.ticking = false
		return s, nil
	}
	if s.ctrl.Remaining() > 0 {
		return s, tickCmd()
	}
	s.ticking = false
	ctx, ctrl := s.ctx, s.ctrl
	return s, func() tea.Msg {
		return expiredMsg{Err: ctrl.Expire(ctx)}
	}
}

// sync rebuilds the input for a newly shown exercise and leaves for the
// summary once the session completes.
func (s *PracticeScreen) sync() (screen.Screen, tea.Cmd) {
	st := s.ctrl.Snapshot()
	if st.Phase == prac.PhaseCompleted {
		s.cancel()
		return s, func() tea.Msg {
			return router.ReplaceScreenMsg{Screen: summary.New(st)}
		}
	}
	if st.Phase == prac.PhaseAnswering && st.Index != s.shown {
		s.shown = st.Index
		s.notice = ""
		ex := st.Current()
		s.choice = components.NewMultiChoice(ex.Options)
		s.input = components.NewTextInput("", "Escribe tu respuesta...", false, 120)
		return s, s.input.Focus()
	}
	return s, nil
}

func (s *PracticeScreen) handleKey(msg tea.KeyPressMsg) (screen.Screen, tea.Cmd) {
	key := msg.String()

	if s.errMsg != "" {
		return s.leave()
	}

	if s.confirmQuit {
		switch key {
		case "s", "S", "y", "Y":
			s.confirmQuit = false
			s.cancel()
			s.ctrl.Restart()
			return s.leave()
		case "n", "N", "esc":
			s.confirmQuit = false
		}
		return s, nil
	}

	st := s.ctrl.Snapshot()
	switch st.Phase {
	case prac.PhaseConfiguring:
		return s.handleFormKey(msg)
	case prac.PhaseAnswering:
		return s.handleAnswerKey(msg, st)
	case prac.PhaseRevealed:
		return s.handleRevealKey(key)
	}

	if key == "esc" {
		s.confirmQuit = true
	}
	return s, nil
}

// leave cancels pending controller calls and pops the screen.
func (s *PracticeScreen) leave() (screen.Screen, tea.Cmd) {
	s.cancel()
	return s, func() tea.Msg { return router.PopScreenMsg{} }
}

func (s *PracticeScreen) handleFormKey(msg tea.KeyPressMsg) (screen.Screen, tea.Cmd) {
	switch msg.String() {
	case "esc":
		return s.leave()
	case "tab", "down":
		s.form.next()
		return s, nil
	case "shift+tab", "up":
		s.form.prev()
		return s, nil
	case "enter":
		if !s.form.onLastField() {
			s.form.next()
			return s, nil
		}
		return s.start()
	}

	var cmd tea.Cmd
	s.form, cmd = s.form.update(msg)
	return s, cmd
}

func (s *PracticeScreen) start() (screen.Screen, tea.Cmd) {
	if problem := s.form.validate(); problem != "" {
		s.notice = problem
		return s, nil
	}
	s.notice = ""
	settings := s.form.settings()
	ctx, ctrl := s.ctx, s.ctrl
	return s, func() tea.Msg {
		return startedMsg{Err: ctrl.Start(ctx, settings)}
	}
}

func (s *PracticeScreen) handleAnswerKey(msg tea.KeyPressMsg, st prac.State) (screen.Screen, tea.Cmd) {
	switch msg.String() {
	case "esc":
		s.confirmQuit = true
		return s, nil
	case "ctrl+t":
		return s.requestHint(st)
	case "ctrl+o":
		if err := s.ctrl.Skip(s.ctx); err != nil {
			s.notice = err.Error()
		}
		return s, nil
	}

	if s.waiting {
		return s, nil
	}

	if len(st.Current().Options) > 0 {
		var cmd tea.Cmd
		s.choice, cmd = s.choice.Update(msg)
		return s, cmd
	}

	if msg.String() == "enter" {
		return s.submit(s.input.Value())
	}
	var cmd tea.Cmd
	s.input, cmd = s.input.Update(msg)
	s.ctrl.SetDraft(s.input.Value())
	return s, cmd
}

func (s *PracticeScreen) submit(answer string) (screen.Screen, tea.Cmd) {
	if s.waiting {
		return s, nil
	}
	s.notice = ""
	ctx, ctrl := s.ctx, s.ctrl
	return s, func() tea.Msg {
		return submittedMsg{Err: ctrl.Submit(ctx, answer)}
	}
}

func (s *PracticeScreen) requestHint(st prac.State) (screen.Screen, tea.Cmd) {
	if s.waiting {
		return s, nil
	}
	if st.HintsLeft == 0 {
		s.notice = prac.ErrNoHintsLeft.Error()
		return s, nil
	}
	s.waiting = true
	s.notice = ""
	ctx, ctrl := s.ctx, s.ctrl
	return s, func() tea.Msg {
		hint, err := ctrl.RequestHint(ctx)
		return hintMsg{Hint: hint, Err: err}
	}
}

func (s *PracticeScreen) handleRevealKey(key string) (screen.Screen, tea.Cmd) {
	if s.waiting {
		return s, nil
	}
	ctx, ctrl := s.ctx, s.ctrl
	switch key {
	case "esc":
		s.confirmQuit = true
	case "enter", "space":
		return s, func() tea.Msg {
			return continuedMsg{Err: ctrl.Continue(ctx)}
		}
	case "e", "E":
		s.waiting = true
		return s, func() tea.Msg {
			_, err := ctrl.Explain(ctx)
			return explainedMsg{Err: err}
		}
	}
	return s, nil
}

func (s *PracticeScreen) View(width, height int) string {
	if s.errMsg != "" {
		return renderError(width, height, s.errMsg)
	}
	if s.confirmQuit {
		return renderQuitConfirm(width, height)
	}
	st := s.ctrl.Snapshot()
	switch st.Phase {
	case prac.PhaseConfiguring:
		return s.renderConfig(width, st)
	case prac.PhaseGenerating:
		return renderLoading(width, height, "Generando ejercicios...")
	case prac.PhaseAnswering, prac.PhaseValidating:
		return s.renderExercise(width, st)
	case prac.PhaseRevealed:
		return s.renderReveal(width, st)
	}
	return renderLoading(width, height, "Preparando tu reporte...")
}

// tickCmd returns a 1-second tick command.
func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return timerTickMsg(t)
	})
}
