package practice

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/mateai/mate/internal/gateway"
	"github.com/mateai/mate/internal/tutor"
)

// fakeTutor answers from the exercises' correct answers and can hold
// calls open until released.
type fakeTutor struct {
	mu        sync.Mutex
	exercises []tutor.Exercise
	hints     int

	genGate    chan struct{}
	valGate    chan struct{}
	valStarted chan struct{}
	valErr     error
}

func (f *fakeTutor) GenerateExercises(ctx context.Context, req tutor.ExerciseRequest) ([]tutor.Exercise, error) {
	if f.genGate != nil {
		<-f.genGate
	}
	return f.exercises, nil
}

func (f *fakeTutor) GenerateHint(context.Context, tutor.Exercise, string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.hints++
	return "Piensa en el orden de las operaciones."
}

func (f *fakeTutor) ValidateAnswer(_ context.Context, in tutor.ValidationInput) (tutor.Validation, error) {
	if f.valStarted != nil {
		f.valStarted <- struct{}{}
	}
	if f.valGate != nil {
		<-f.valGate
	}
	if f.valErr != nil {
		return tutor.Validation{}, f.valErr
	}
	return tutor.Validation{IsCorrect: tutor.Equivalent(in.Answer, in.Exercise), Explanation: "ok"}, nil
}

func (f *fakeTutor) GenerateReport(_ context.Context, data tutor.SessionData) (tutor.Report, tutor.Stats, error) {
	return tutor.Report{DetailedReport: "Reporte.", Advice: "Consejos."}, tutor.ComputeStats(data), nil
}

func (f *fakeTutor) GenerateExplanation(_ context.Context, ex tutor.Exercise, _ string) string {
	return "Paso a paso: " + ex.CorrectAnswer
}

// fakeClock is a settable Now.
type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

func assignedTest(n int, minutes int) gateway.Test {
	test := gateway.Test{
		ID:           "t1",
		Title:        "Evaluación de fracciones",
		Instructions: "Responde sin calculadora.",
		Topic:        "Fracciones",
		Grade:        "4",
		Difficulty:   "media",
		TimeLimit:    minutes,
	}
	answers := []string{"1/2", "3/4", "2/3", "1/5"}
	for i := 0; i < n; i++ {
		test.Questions = append(test.Questions, gateway.Question{
			ID:            string(rune('a' + i)),
			Statement:     "Simplifica",
			Options:       []string{answers[i], "9/9", "0"},
			CorrectAnswer: answers[i],
		})
	}
	return test
}

func newAssignedController(ft *fakeTutor, clock *fakeClock) (*Controller, *sink, *recorder) {
	s, r := &sink{}, &recorder{}
	opts := Options{Tutor: ft, Sink: s, Events: r, Limits: DefaultLimits(), Student: student}
	if clock != nil {
		opts.Now = clock.Now
	}
	return New(opts), s, r
}

func TestStartAssigned(t *testing.T) {
	clock := &fakeClock{t: time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC)}
	c, _, _ := newAssignedController(&fakeTutor{}, clock)

	if err := c.StartAssigned(context.Background(), assignedTest(3, 20), "as-1"); err != nil {
		t.Fatal(err)
	}
	s := c.Snapshot()
	if s.Kind != tutor.KindAssigned || s.TestID != "t1" || s.Instructions == "" {
		t.Errorf("test metadata missing: %+v", s)
	}
	if s.MaxAttempts != 0 || s.HintsLeft != -1 {
		t.Errorf("assigned limits: attempts %d hints %d", s.MaxAttempts, s.HintsLeft)
	}
	if s.Settings.Difficulty != tutor.Medium || s.Settings.Grade != "4" {
		t.Errorf("settings = %+v", s.Settings)
	}
	if want := clock.Now().Add(20 * time.Minute); !s.Deadline.Equal(want) {
		t.Errorf("deadline = %v, want %v", s.Deadline, want)
	}
	if got := c.Remaining(); got != 20*time.Minute {
		t.Errorf("Remaining() = %v", got)
	}

	if err := c.StartAssigned(context.Background(), gateway.Test{ID: "empty"}, ""); !errors.Is(err, ErrWrongPhase) {
		t.Errorf("second start: %v", err)
	}
}

func TestStartAssigned_NoQuestions(t *testing.T) {
	c, _, _ := newAssignedController(&fakeTutor{}, nil)
	if err := c.StartAssigned(context.Background(), gateway.Test{ID: "t"}, ""); !errors.Is(err, ErrNoQuestions) {
		t.Fatalf("got %v", err)
	}
}

func TestAssigned_UnlimitedHintsAndAttempts(t *testing.T) {
	ft := &fakeTutor{}
	c, sk, _ := newAssignedController(ft, nil)
	ctx := context.Background()
	if err := c.StartAssigned(ctx, assignedTest(2, 0), "as-1"); err != nil {
		t.Fatal(err)
	}

	for i := 0; i < 3; i++ {
		if _, err := c.RequestHint(ctx); err != nil {
			t.Fatalf("hint %d: %v", i, err)
		}
	}
	for i := 0; i < 5; i++ {
		if err := c.Submit(ctx, "0/1 no"); err != nil {
			t.Fatal(err)
		}
	}
	s := c.Snapshot()
	if s.Phase != PhaseAnswering || s.AttemptsMade != 5 || s.HintsUsed != 3 {
		t.Fatalf("state: %s attempts %d hints %d", s.Phase, s.AttemptsMade, s.HintsUsed)
	}

	// Option letter selects the option text.
	if err := c.Submit(ctx, "a"); err != nil {
		t.Fatal(err)
	}
	if s := c.Snapshot(); s.Outcome != OutcomeSucceeded {
		t.Fatalf("outcome = %s", s.Outcome)
	}
	if err := c.Continue(ctx); err != nil {
		t.Fatal(err)
	}

	if err := c.Skip(ctx); err != nil {
		t.Fatalf("Skip: %v", err)
	}
	if s := c.Snapshot(); s.Phase != PhaseRevealed || s.Outcome != OutcomeFailed {
		t.Fatalf("after skip: %s/%s", s.Phase, s.Outcome)
	}
	if exp, err := c.Explain(ctx); err != nil || exp != "Paso a paso: 3/4" {
		t.Errorf("Explain() = %q, %v", exp, err)
	}
	if err := c.Continue(ctx); err != nil {
		t.Fatal(err)
	}

	if c.Snapshot().Phase != PhaseCompleted {
		t.Fatal("session should be completed")
	}
	if len(sk.submissions) != 1 {
		t.Fatalf("submissions = %d", len(sk.submissions))
	}
	sub := sk.submissions[0]
	if sub.AssignmentID != "as-1" || len(sub.Answers) != 2 || sub.Score != 50 {
		t.Errorf("submission = %+v", sub)
	}
	if sub.Answers[0].Attempts != 6 || !sub.Answers[0].IsCorrect || sub.Answers[0].HintsUsed != 3 {
		t.Errorf("first answer = %+v", sub.Answers[0])
	}
	if sub.Answers[1].Attempts != 1 || sub.Answers[1].IsCorrect {
		t.Errorf("skipped answer = %+v", sub.Answers[1])
	}
	if len(sk.reports) != 1 || sk.reports[0].PracticeType != string(tutor.KindAssigned) {
		t.Errorf("assigned report not saved: %+v", sk.reports)
	}
}

func TestSkip_NotAllowedWithCeiling(t *testing.T) {
	ft := &fakeTutor{exercises: []tutor.Exercise{{ID: "x", Statement: "1+1", CorrectAnswer: "2"}}}
	c, _, _ := newAssignedController(ft, nil)
	ctx := context.Background()
	if err := c.Start(ctx, Settings{Topic: "Sumas"}); err != nil {
		t.Fatal(err)
	}
	if err := c.Skip(ctx); !errors.Is(err, ErrCannotSkip) {
		t.Fatalf("got %v", err)
	}
}

func TestExpire_SubmitsDraftAndClosesRemaining(t *testing.T) {
	clock := &fakeClock{t: time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC)}
	c, sk, _ := newAssignedController(&fakeTutor{}, clock)
	ctx := context.Background()
	if err := c.StartAssigned(ctx, assignedTest(4, 10), "as-1"); err != nil {
		t.Fatal(err)
	}

	if err := c.Submit(ctx, "1/2"); err != nil {
		t.Fatal(err)
	}
	if err := c.Continue(ctx); err != nil {
		t.Fatal(err)
	}
	c.SetDraft("0")
	clock.Advance(11 * time.Minute)

	if err := c.Expire(ctx); err != nil {
		t.Fatal(err)
	}

	s := c.Snapshot()
	if s.Phase != PhaseCompleted || !s.Expired {
		t.Fatalf("state: %s expired %v", s.Phase, s.Expired)
	}
	if len(s.Attempts) != 4 {
		t.Fatalf("attempts = %d, want one per exercise", len(s.Attempts))
	}
	if s.Attempts[1].AnswerText != "0" || s.Attempts[1].IsCorrect {
		t.Errorf("draft attempt = %+v", s.Attempts[1])
	}
	for _, a := range s.Attempts[2:] {
		if a.AnswerText != "" || a.IsCorrect {
			t.Errorf("closed attempt = %+v", a)
		}
	}
	if s.Stats.Correct != 1 || s.Stats.Score != 25 {
		t.Errorf("stats = %+v", s.Stats)
	}
	if len(sk.submissions) != 1 || len(sk.submissions[0].Answers) != 4 {
		t.Errorf("submission = %+v", sk.submissions)
	}

	if err := c.Expire(ctx); err != nil {
		t.Errorf("second Expire should be a no-op: %v", err)
	}
}

func TestExpire_UnvalidatedDraftIsMarked(t *testing.T) {
	clock := &fakeClock{t: time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC)}
	ft := &fakeTutor{}
	c, _, rec := newAssignedController(ft, clock)
	ctx := context.Background()
	if err := c.StartAssigned(ctx, assignedTest(2, 10), "as-1"); err != nil {
		t.Fatal(err)
	}

	ft.valErr = &tutor.TransportError{Status: 500, Err: errors.New("boom")}
	c.SetDraft("1/2")
	clock.Advance(11 * time.Minute)
	if err := c.Expire(ctx); err != nil {
		t.Fatal(err)
	}

	s := c.Snapshot()
	if s.Phase != PhaseCompleted || s.Attempts[0].IsCorrect {
		t.Fatalf("state: %s attempts %+v", s.Phase, s.Attempts)
	}
	if len(rec.attempts) != 2 {
		t.Fatalf("attempt events = %d, want 2", len(rec.attempts))
	}
	if !rec.attempts[0].Unvalidated || rec.attempts[0].Answer != "1/2" {
		t.Errorf("forced attempt event = %+v", rec.attempts[0])
	}
	if rec.attempts[1].Unvalidated {
		t.Errorf("closed exercise should not be marked unvalidated: %+v", rec.attempts[1])
	}
}

func TestExpire_DuringValidationWaitsForSubmit(t *testing.T) {
	ft := &fakeTutor{valGate: make(chan struct{}), valStarted: make(chan struct{}, 1)}
	c, _, _ := newAssignedController(ft, nil)
	ctx := context.Background()
	if err := c.StartAssigned(ctx, assignedTest(2, 5), ""); err != nil {
		t.Fatal(err)
	}

	done := make(chan error, 1)
	go func() { done <- c.Submit(ctx, "1/2") }()
	<-ft.valStarted

	if err := c.Expire(ctx); err != nil {
		t.Fatal(err)
	}
	if s := c.Snapshot(); s.Phase != PhaseValidating || s.Expired {
		t.Fatalf("expire must wait for the submit in flight: %s", s.Phase)
	}
	if _, err := c.RequestHint(ctx); !errors.Is(err, ErrBusy) {
		t.Errorf("hint during validation: %v", err)
	}

	close(ft.valGate)
	if err := <-done; err != nil {
		t.Fatalf("Submit: %v", err)
	}

	s := c.Snapshot()
	if s.Phase != PhaseCompleted || !s.Expired {
		t.Fatalf("state: %s expired %v", s.Phase, s.Expired)
	}
	if !s.Attempts[0].IsCorrect || s.Attempts[0].AnswerText != "1/2" {
		t.Errorf("the student's submit should win: %+v", s.Attempts[0])
	}
	if len(s.Attempts) != 2 || s.Attempts[1].IsCorrect {
		t.Errorf("remaining exercise should be closed as failed: %+v", s.Attempts)
	}
}

func TestCountdown_ExpiresAtDeadline(t *testing.T) {
	clock := &fakeClock{t: time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC)}
	c, _, _ := newAssignedController(&fakeTutor{}, clock)
	ctx := context.Background()
	if err := c.StartAssigned(ctx, assignedTest(2, 1), ""); err != nil {
		t.Fatal(err)
	}

	var ticks []time.Duration
	clock.Advance(90 * time.Second)
	err := c.Countdown(ctx, time.Millisecond, func(left time.Duration) { ticks = append(ticks, left) })
	if err != nil {
		t.Fatal(err)
	}
	if len(ticks) != 1 || ticks[0] != 0 {
		t.Errorf("ticks = %v", ticks)
	}
	if s := c.Snapshot(); s.Phase != PhaseCompleted || !s.Expired {
		t.Errorf("state: %s expired %v", s.Phase, s.Expired)
	}
}

func TestCountdown_UntimedReturns(t *testing.T) {
	c, _, _ := newAssignedController(&fakeTutor{}, nil)
	if err := c.StartAssigned(context.Background(), assignedTest(1, 0), ""); err != nil {
		t.Fatal(err)
	}
	if err := c.Countdown(context.Background(), time.Millisecond, nil); err != nil {
		t.Fatal(err)
	}
	if c.Snapshot().Phase != PhaseAnswering {
		t.Error("untimed session must not expire")
	}
}

func TestRestart_DiscardsInFlightGeneration(t *testing.T) {
	ft := &fakeTutor{
		exercises: []tutor.Exercise{{ID: "x", Statement: "1+1", CorrectAnswer: "2"}},
		genGate:   make(chan struct{}),
	}
	c, _, rec := newAssignedController(ft, nil)

	done := make(chan error, 1)
	go func() { done <- c.Start(context.Background(), Settings{Topic: "Sumas"}) }()

	deadline := time.Now().Add(time.Second)
	for c.Snapshot().Phase != PhaseGenerating {
		if time.Now().After(deadline) {
			t.Fatal("Start never reached Generating")
		}
		time.Sleep(time.Millisecond)
	}

	c.Restart()
	close(ft.genGate)
	if err := <-done; !errors.Is(err, ErrDiscarded) {
		t.Fatalf("Start() = %v, want ErrDiscarded", err)
	}
	if s := c.Snapshot(); s.Phase != PhaseConfiguring || len(s.Exercises) != 0 {
		t.Errorf("late result applied: %s", s.Phase)
	}

	rec.mu.Lock()
	defer rec.mu.Unlock()
	if len(rec.sessions) != 1 || rec.sessions[0].Action != "abandon" {
		t.Errorf("session events = %+v", rec.sessions)
	}
}
