// Package practice runs one practice session or assigned test at a time:
// exercises in order, attempts and hints per exercise, the closing report.
package practice

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mateai/mate/internal/gateway"
	"github.com/mateai/mate/internal/logger"
	"github.com/mateai/mate/internal/store"
	"github.com/mateai/mate/internal/tutor"
)

// Tutor is the AI side of a session. tutor.Client and tutor.Remote both
// implement it.
type Tutor interface {
	GenerateExercises(ctx context.Context, req tutor.ExerciseRequest) ([]tutor.Exercise, error)
	GenerateHint(ctx context.Context, ex tutor.Exercise, questionContext string) string
	ValidateAnswer(ctx context.Context, in tutor.ValidationInput) (tutor.Validation, error)
	GenerateReport(ctx context.Context, data tutor.SessionData) (tutor.Report, tutor.Stats, error)
	GenerateExplanation(ctx context.Context, ex tutor.Exercise, studentAnswer string) string
}

// ReportSink persists finished sessions. *gateway.Client implements it.
type ReportSink interface {
	SavePerformanceReport(ctx context.Context, r gateway.PerformanceReport) (*gateway.PerformanceReport, error)
	SubmitTest(ctx context.Context, testID string, sub gateway.TestSubmission) (*gateway.SubmissionResult, error)
}

// EventRecorder keeps the local session log. store.EventRepo implements it.
type EventRecorder interface {
	AppendSessionEvent(ctx context.Context, data store.SessionEventData) error
	AppendAttemptEvent(ctx context.Context, data store.AttemptEventData) error
	AppendHintEvent(ctx context.Context, data store.HintEventData) error
}

// Options configure a Controller. Only Tutor is required.
type Options struct {
	Tutor  Tutor
	Sink   ReportSink
	Events EventRecorder
	Limits Limits

	// Student supplies the default grade and the report's student ID.
	Student *gateway.User

	// DefaultCount is used when Settings.Count is 0.
	DefaultCount int

	Logger *logger.Logger
	Now    func() time.Time
}

// Controller owns the state of the active session. Methods are safe for
// concurrent use; a call that would overlap one in flight fails with
// ErrBusy, except Expire, which is deferred until the call returns.
type Controller struct {
	tutor        Tutor
	sink         ReportSink
	events       EventRecorder
	limits       Limits
	defaultCount int
	log          *logger.Logger
	now          func() time.Time

	mu      sync.Mutex
	state   State
	student *gateway.User

	// epoch changes on every restart so late results are dropped.
	epoch uint64
	// pending is set while a hint or explanation call is in flight.
	pending bool
	// expirePending records an Expire that arrived during a call.
	expirePending bool

	assignmentID string
	started      time.Time
	shownAt      time.Time
	spent        time.Duration
}

// New creates a Controller in PhaseConfiguring.
func New(opts Options) *Controller {
	c := &Controller{
		tutor:        opts.Tutor,
		sink:         opts.Sink,
		events:       opts.Events,
		limits:       opts.Limits,
		defaultCount: opts.DefaultCount,
		log:          opts.Logger,
		now:          opts.Now,
		student:      opts.Student,
	}
	if c.log == nil {
		c.log = logger.NewNop()
	}
	if c.now == nil {
		c.now = time.Now
	}
	if c.defaultCount <= 0 {
		c.defaultCount = 5
	}
	c.state = State{Phase: PhaseConfiguring, Kind: tutor.KindPractice, Settings: c.defaults(Settings{})}
	return c
}

// SetStudent replaces the profile used for defaults and reports.
func (c *Controller) SetStudent(u *gateway.User) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.student = u
	if c.state.Phase == PhaseConfiguring {
		c.state.Settings = c.defaults(c.state.Settings)
	}
}

// Snapshot returns a copy of the current state.
func (c *Controller) Snapshot() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := c.state
	s.Exercises = append([]tutor.Exercise(nil), c.state.Exercises...)
	s.Attempts = append([]tutor.Attempt(nil), c.state.Attempts...)
	s.Hints = append([]string(nil), c.state.Hints...)
	return s
}

// Start generates exercises for s and shows the first one. On failure the
// controller stays in PhaseConfiguring with the error in State.Err.
func (c *Controller) Start(ctx context.Context, s Settings) error {
	c.mu.Lock()
	if c.state.Phase != PhaseConfiguring && c.state.Phase != PhaseCompleted {
		c.mu.Unlock()
		return ErrWrongPhase
	}
	s = c.defaults(s)
	s.Topic = strings.TrimSpace(s.Topic)
	if s.Topic == "" {
		err := &tutor.UserInputError{Field: "topic", Message: "El tema es obligatorio."}
		c.state.Settings = s
		c.state.Err = err
		c.mu.Unlock()
		return err
	}

	c.resetLocked(s, tutor.KindPractice)
	c.state.Phase = PhaseGenerating
	epoch := c.epoch
	req := tutor.ExerciseRequest{
		Grade:      s.Grade,
		Topic:      s.Topic,
		Difficulty: s.Difficulty,
		Count:      s.Count,
		StudentID:  c.studentIDLocked(),
	}
	c.mu.Unlock()

	exercises, err := c.tutor.GenerateExercises(ctx, req)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.epoch != epoch {
		return ErrDiscarded
	}
	if err == nil && len(exercises) == 0 {
		err = errors.New("el modelo no devolvió ejercicios")
	}
	if err != nil {
		c.state.Phase = PhaseConfiguring
		var ue *tutor.UserInputError
		if errors.As(err, &ue) {
			c.state.Err = ue
			return ue
		}
		genErr := &GenerationError{Err: err}
		c.state.Err = genErr
		c.log.Error("exercise generation failed", "op", "start", "session_id", c.state.SessionID, "topic", s.Topic, "error", err)
		return genErr
	}

	c.beginLocked(ctx, exercises, 0)
	return nil
}

// StartAssigned runs a teacher-assigned test. Questions, time limit and
// instructions come from the backend; options are fixed and attempts are
// bounded by Limits.AssignedMaxAttempts.
func (c *Controller) StartAssigned(ctx context.Context, test gateway.Test, assignmentID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state.Phase != PhaseConfiguring && c.state.Phase != PhaseCompleted {
		return ErrWrongPhase
	}
	if len(test.Questions) == 0 {
		c.state.Err = ErrNoQuestions
		return ErrNoQuestions
	}

	difficulty, _ := tutor.ParseDifficulty(test.Difficulty)
	topic := test.Topic
	if topic == "" {
		topic = test.Title
	}
	s := c.defaults(Settings{Grade: test.Grade, Topic: topic, Difficulty: difficulty, Count: len(test.Questions)})

	exercises := make([]tutor.Exercise, len(test.Questions))
	for i, q := range test.Questions {
		id := q.ID
		if id == "" {
			id = uuid.NewString()
		}
		exercises[i] = tutor.Exercise{
			ID:            id,
			Statement:     q.Statement,
			Options:       q.Options,
			CorrectAnswer: q.CorrectAnswer,
			Explanation:   q.Explanation,
			Difficulty:    s.Difficulty,
			Topic:         s.Topic,
			Grade:         s.Grade,
		}
		if exercises[i].CorrectAnswer == "" {
			exercises[i].CorrectAnswer = tutor.PlaceholderAnswer
		}
	}

	c.resetLocked(s, tutor.KindAssigned)
	c.assignmentID = assignmentID
	c.state.TestID = test.ID
	c.state.TestTitle = test.Title
	c.state.Instructions = test.Instructions
	c.beginLocked(ctx, exercises, test.Duration())
	return nil
}

// SetDraft stores the text being typed, which Expire submits.
func (c *Controller) SetDraft(text string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state.Phase == PhaseAnswering {
		c.state.Draft = text
	}
}

// RequestHint fetches a hint for the current exercise. Free practice
// allows Limits.HintSlots hints per exercise; assigned tests are
// unlimited. Only hints actually delivered are counted.
func (c *Controller) RequestHint(ctx context.Context) (string, error) {
	c.mu.Lock()
	if err := c.readyLocked(PhaseAnswering); err != nil {
		c.mu.Unlock()
		return "", err
	}
	if c.state.HintsLeft == 0 {
		c.mu.Unlock()
		return "", ErrNoHintsLeft
	}
	ex := c.state.Exercises[c.state.Index]
	questionContext := fmt.Sprintf("Ejercicio %d de %d. Intentos realizados: %d.",
		c.state.Index+1, len(c.state.Exercises), c.state.AttemptsMade)
	epoch, index := c.epoch, c.state.Index
	c.pending = true
	c.mu.Unlock()

	hint := c.tutor.GenerateHint(ctx, ex, questionContext)

	c.mu.Lock()
	if c.epoch != epoch {
		c.mu.Unlock()
		return "", ErrDiscarded
	}
	c.pending = false
	if index == c.state.Index && hint != tutor.HintUnavailable {
		c.state.Hints = append(c.state.Hints, hint)
		c.state.HintsUsed++
		c.state.HintsLeft = c.hintsLeftLocked()
		c.appendHint(ctx, store.HintEventData{
			SessionID:  c.state.SessionID,
			ExerciseID: ex.ID,
			Statement:  ex.Statement,
			HintText:   hint,
		})
	}
	return hint, c.releaseAndExpire(ctx)
}

// Submit checks answer against the current exercise. A correct answer, or
// a wrong one at the attempt ceiling, reveals the exercise; a wrong one
// below the ceiling clears the input for another try. When validation
// itself fails nothing is recorded and the student submits again.
func (c *Controller) Submit(ctx context.Context, answer string) error {
	c.mu.Lock()
	if err := c.readyLocked(PhaseAnswering); err != nil {
		c.mu.Unlock()
		return err
	}
	if strings.TrimSpace(answer) == "" {
		err := &tutor.UserInputError{Field: "answer", Message: "Escribe una respuesta antes de enviar."}
		c.state.Err = err
		c.mu.Unlock()
		return err
	}
	c.state.Draft = answer
	c.state.Err = nil
	c.state.Phase = PhaseValidating
	ex := c.state.Exercises[c.state.Index]
	epoch := c.epoch
	c.mu.Unlock()

	v, err := c.tutor.ValidateAnswer(ctx, tutor.ValidationInput{Exercise: ex, Answer: answer})

	c.mu.Lock()
	if c.epoch != epoch {
		c.mu.Unlock()
		return ErrDiscarded
	}
	if err != nil {
		c.state.Phase = PhaseAnswering
		valErr := &ValidationError{Err: err}
		c.state.Err = valErr
		c.log.Error("answer validation failed", "op", "submit", "session_id", c.state.SessionID, "exercise_id", ex.ID, "error", err)
		if rerr := c.releaseAndExpire(ctx); rerr != nil {
			return rerr
		}
		return valErr
	}

	c.recordAttemptLocked(ctx, ex, answer, v.IsCorrect, false, c.state.HintsUsed)
	c.state.Validation = &v
	switch {
	case v.IsCorrect:
		explanation := v.Explanation
		if explanation == "" {
			explanation = ex.Explanation
		}
		c.revealLocked(OutcomeSucceeded, explanation)
	case c.state.MaxAttempts > 0 && c.state.AttemptsMade >= c.state.MaxAttempts:
		c.revealLocked(OutcomeFailed, ex.Explanation)
	default:
		c.state.Phase = PhaseAnswering
		c.state.Draft = ""
	}
	return c.releaseAndExpire(ctx)
}

// Skip gives up on the current exercise. It is only allowed when attempts
// are unlimited; otherwise the ceiling ends the exercise.
func (c *Controller) Skip(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.readyLocked(PhaseAnswering); err != nil {
		return err
	}
	if c.state.MaxAttempts > 0 {
		return ErrCannotSkip
	}
	ex := c.state.Exercises[c.state.Index]
	if c.state.AttemptsMade == 0 {
		c.recordAttemptLocked(ctx, ex, strings.TrimSpace(c.state.Draft), false, false, c.state.HintsUsed)
	}
	c.revealLocked(OutcomeFailed, ex.Explanation)
	return nil
}

// Explain replaces the revealed explanation with a step-by-step one for
// the student's last answer.
func (c *Controller) Explain(ctx context.Context) (string, error) {
	c.mu.Lock()
	if err := c.readyLocked(PhaseRevealed); err != nil {
		c.mu.Unlock()
		return "", err
	}
	ex := c.state.Exercises[c.state.Index]
	last := ""
	if n := len(c.state.Attempts); n > 0 && c.state.Attempts[n-1].ExerciseID == ex.ID {
		last = c.state.Attempts[n-1].AnswerText
	}
	epoch, index := c.epoch, c.state.Index
	c.pending = true
	c.mu.Unlock()

	explanation := c.tutor.GenerateExplanation(ctx, ex, last)

	c.mu.Lock()
	if c.epoch != epoch {
		c.mu.Unlock()
		return "", ErrDiscarded
	}
	c.pending = false
	if index == c.state.Index && c.state.Phase == PhaseRevealed && explanation != "" {
		c.state.Explanation = explanation
	}
	return explanation, c.releaseAndExpire(ctx)
}

// Continue leaves a revealed exercise: the next one is shown, or after
// the last one the report is generated and the session completes.
func (c *Controller) Continue(ctx context.Context) error {
	c.mu.Lock()
	if err := c.readyLocked(PhaseRevealed); err != nil {
		c.mu.Unlock()
		return err
	}
	if c.state.Index+1 < len(c.state.Exercises) {
		c.state.Index++
		c.enterExerciseLocked()
		c.mu.Unlock()
		return nil
	}
	job := c.summarizeLocked()
	c.mu.Unlock()
	return c.report(ctx, job)
}

// Expire ends a timed session. The current draft is submitted, every
// remaining exercise is closed as failed with an empty attempt, and the
// report is generated. If a call is in flight, Expire takes effect when it
// returns.
func (c *Controller) Expire(ctx context.Context) error {
	c.mu.Lock()
	if c.pending || c.state.Phase == PhaseValidating {
		c.expirePending = true
		c.mu.Unlock()
		return nil
	}
	if c.state.Phase != PhaseAnswering && c.state.Phase != PhaseRevealed {
		c.mu.Unlock()
		return nil
	}
	c.state.Expired = true

	if c.state.Phase == PhaseAnswering {
		ex := c.state.Exercises[c.state.Index]
		draft := strings.TrimSpace(c.state.Draft)
		correct, unvalidated := false, false
		if draft != "" {
			c.state.Phase = PhaseValidating
			epoch := c.epoch
			c.mu.Unlock()

			v, err := c.tutor.ValidateAnswer(ctx, tutor.ValidationInput{Exercise: ex, Answer: draft})

			c.mu.Lock()
			if c.epoch != epoch {
				c.mu.Unlock()
				return ErrDiscarded
			}
			if err != nil {
				c.log.Warn("forced submission could not be validated", "op", "expire", "session_id", c.state.SessionID, "exercise_id", ex.ID, "error", err)
			}
			correct = err == nil && v.IsCorrect
			unvalidated = err != nil
		}
		c.recordAttemptLocked(ctx, ex, draft, correct, unvalidated, c.state.HintsUsed)
		outcome := OutcomeFailed
		if correct {
			outcome = OutcomeSucceeded
		}
		c.revealLocked(outcome, ex.Explanation)
	}

	for i := c.state.Index + 1; i < len(c.state.Exercises); i++ {
		c.state.Index = i
		c.shownAt = c.now()
		c.recordAttemptLocked(ctx, c.state.Exercises[i], "", false, false, 0)
		c.state.Outcome = OutcomeFailed
	}

	job := c.summarizeLocked()
	c.mu.Unlock()
	return c.report(ctx, job)
}

// Restart discards the session and returns to PhaseConfiguring with the
// previous settings prefilled. In-flight results are dropped.
func (c *Controller) Restart() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state.Phase != PhaseConfiguring && c.state.Phase != PhaseCompleted && c.state.SessionID != "" {
		c.appendSession(context.Background(), c.sessionEventLocked(store.SessionAbandon))
	}
	settings := c.state.Settings
	if c.state.Kind == tutor.KindAssigned {
		settings = Settings{}
	}
	c.epoch++
	c.pending = false
	c.expirePending = false
	c.assignmentID = ""
	c.state = State{Phase: PhaseConfiguring, Kind: tutor.KindPractice, Settings: c.defaults(settings)}
}

// readyLocked checks that phase is current and nothing is in flight.
func (c *Controller) readyLocked(phase Phase) error {
	if c.pending || c.state.Phase.busy() {
		return ErrBusy
	}
	if c.state.Phase != phase {
		return ErrWrongPhase
	}
	return nil
}

// releaseAndExpire unlocks mu and runs an Expire that arrived while a
// call was in flight.
func (c *Controller) releaseAndExpire(ctx context.Context) error {
	pending := c.expirePending
	c.expirePending = false
	c.mu.Unlock()
	if pending {
		return c.Expire(ctx)
	}
	return nil
}

func (c *Controller) defaults(s Settings) Settings {
	if s.Grade == "" && c.student != nil {
		s.Grade = c.student.Grade
	}
	if s.Difficulty == "" {
		s.Difficulty = tutor.Basic
	}
	if s.Count == 0 {
		s.Count = c.defaultCount
	}
	return s
}

func (c *Controller) studentIDLocked() string {
	if c.student == nil {
		return ""
	}
	return c.student.ID
}

func (c *Controller) resetLocked(s Settings, kind tutor.Kind) {
	c.state = State{
		Phase:     PhaseConfiguring,
		SessionID: uuid.NewString(),
		Kind:      kind,
		Settings:  s,
	}
	c.pending = false
	c.expirePending = false
	c.assignmentID = ""
	c.spent = 0
}

func (c *Controller) beginLocked(ctx context.Context, exercises []tutor.Exercise, limit time.Duration) {
	c.started = c.now()
	c.state.Exercises = exercises
	c.state.Settings.Count = len(exercises)
	c.state.Index = 0
	if limit > 0 {
		c.state.Deadline = c.started.Add(limit)
	}
	c.enterExerciseLocked()
	c.appendSession(ctx, c.sessionEventLocked(store.SessionStart))
	c.log.Info("session started", "session_id", c.state.SessionID, "kind", c.state.Kind, "topic", c.state.Settings.Topic, "exercises", len(exercises))
}

func (c *Controller) enterExerciseLocked() {
	c.state.Phase = PhaseAnswering
	c.state.Outcome = OutcomeNone
	c.state.Err = nil
	c.state.Draft = ""
	c.state.Hints = nil
	c.state.HintsUsed = 0
	c.state.AttemptsMade = 0
	c.state.Validation = nil
	c.state.Explanation = ""
	c.state.MaxAttempts = c.maxAttemptsLocked()
	c.state.HintsLeft = c.hintsLeftLocked()
	c.shownAt = c.now()
}

func (c *Controller) maxAttemptsLocked() int {
	if c.state.Kind == tutor.KindAssigned {
		return c.limits.AssignedMaxAttempts
	}
	return c.limits.MaxAttempts
}

func (c *Controller) hintsLeftLocked() int {
	if c.state.Kind == tutor.KindAssigned || c.limits.HintSlots <= 0 {
		return -1
	}
	return max(c.limits.HintSlots-c.state.HintsUsed, 0)
}

// recordAttemptLocked appends an attempt. unvalidated is set when no
// verdict could be obtained and correct is only the fallback.
func (c *Controller) recordAttemptLocked(ctx context.Context, ex tutor.Exercise, answer string, correct, unvalidated bool, hints int) {
	now := c.now()
	a := tutor.Attempt{
		ID:             uuid.NewString(),
		ExerciseID:     ex.ID,
		AnswerText:     answer,
		IsCorrect:      correct,
		HintsUsed:      hints,
		AttemptedAt:    now,
		ResolutionTime: now.Sub(c.shownAt),
	}
	c.state.Attempts = append(c.state.Attempts, a)
	c.state.AttemptsMade++

	if c.events == nil {
		return
	}
	if err := c.events.AppendAttemptEvent(ctx, store.AttemptEventData{
		SessionID:     c.state.SessionID,
		ExerciseID:    ex.ID,
		Statement:     ex.Statement,
		Answer:        answer,
		CorrectAnswer: ex.CorrectAnswer,
		Correct:       correct,
		Unvalidated:   unvalidated,
		AttemptNumber: c.state.AttemptsMade,
		HintsUsed:     hints,
		TimeMs:        a.ResolutionTime.Milliseconds(),
	}); err != nil {
		c.log.Warn("record attempt failed", "session_id", c.state.SessionID, "exercise_id", ex.ID, "error", err)
	}
}

func (c *Controller) revealLocked(outcome Outcome, explanation string) {
	c.state.Phase = PhaseRevealed
	c.state.Outcome = outcome
	c.state.Explanation = explanation
	c.state.Draft = ""
	c.spent += c.now().Sub(c.shownAt)
}

// reportJob is what the report step needs, captured under the lock.
type reportJob struct {
	epoch      uint64
	data       tutor.SessionData
	testID     string
	submission gateway.TestSubmission
}

func (c *Controller) summarizeLocked() reportJob {
	c.state.Phase = PhaseSummarizing
	now := c.now()
	data := tutor.SessionData{
		Kind:            c.state.Kind,
		StudentID:       c.studentIDLocked(),
		Grade:           c.state.Settings.Grade,
		Topic:           c.state.Settings.Topic,
		Difficulty:      c.state.Settings.Difficulty,
		Exercises:       append([]tutor.Exercise(nil), c.state.Exercises...),
		Attempts:        append([]tutor.Attempt(nil), c.state.Attempts...),
		TotalTime:       c.spent,
		SessionDuration: now.Sub(c.started),
	}
	job := reportJob{epoch: c.epoch, data: data}
	if c.state.Kind == tutor.KindAssigned {
		job.testID = c.state.TestID
		job.submission = buildSubmission(data, c.assignmentID)
	}
	c.state.Phase = PhaseReportPending
	return job
}

// report generates and persists the report, then completes the session.
// A missing report or a failed save does not block completion.
func (c *Controller) report(ctx context.Context, job reportJob) error {
	report, stats, err := c.tutor.GenerateReport(ctx, job.data)
	if err != nil {
		c.log.Error("report generation failed", "op", "report", "session_id", c.sessionID(), "error", err)
	}

	saved := false
	if c.sink != nil {
		if job.testID != "" {
			if _, serr := c.sink.SubmitTest(ctx, job.testID, job.submission); serr != nil {
				c.log.Error("test submission failed", "op", "submit test", "session_id", c.sessionID(), "test_id", job.testID, "error", serr)
			}
		}
		if err == nil && job.data.StudentID != "" {
			payload := gateway.NewPerformanceReport(job.data, report, stats, c.now())
			if _, serr := c.sink.SavePerformanceReport(ctx, payload); serr != nil {
				c.log.Error("report persistence failed", "op", "save report", "session_id", c.sessionID(), "error", serr)
			} else {
				saved = true
			}
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.epoch != job.epoch {
		return ErrDiscarded
	}
	c.state.Stats = stats
	c.state.Saved = saved
	if err != nil {
		c.state.ReportErr = err
	} else {
		c.state.Report = &report
	}
	c.state.Phase = PhaseCompleted
	c.appendSession(ctx, c.sessionEventLocked(store.SessionEnd))
	c.log.Info("session completed", "session_id", c.state.SessionID, "score", stats.Score, "saved", saved)
	return nil
}

func (c *Controller) sessionID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.SessionID
}

func (c *Controller) sessionEventLocked(action string) store.SessionEventData {
	ev := store.SessionEventData{
		SessionID:  c.state.SessionID,
		Action:     action,
		Kind:       string(c.state.Kind),
		Topic:      c.state.Settings.Topic,
		Grade:      c.state.Settings.Grade,
		Difficulty: string(c.state.Settings.Difficulty),
		TestID:     c.state.TestID,
	}
	if action != store.SessionStart {
		stats := tutor.ComputeStats(tutor.SessionData{Exercises: c.state.Exercises, Attempts: c.state.Attempts})
		ev.QuestionsTotal = stats.Total
		ev.CorrectAnswers = stats.Correct
		ev.Score = stats.Score
		ev.DurationSecs = int(c.now().Sub(c.started).Seconds())
	}
	return ev
}

func (c *Controller) appendSession(ctx context.Context, ev store.SessionEventData) {
	if c.events == nil {
		return
	}
	if err := c.events.AppendSessionEvent(ctx, ev); err != nil {
		c.log.Warn("record session event failed", "session_id", ev.SessionID, "action", ev.Action, "error", err)
	}
}

func (c *Controller) appendHint(ctx context.Context, ev store.HintEventData) {
	if c.events == nil {
		return
	}
	if err := c.events.AppendHintEvent(ctx, ev); err != nil {
		c.log.Warn("record hint failed", "session_id", ev.SessionID, "exercise_id", ev.ExerciseID, "error", err)
	}
}

// buildSubmission summarizes the attempts per question for SubmitTest.
func buildSubmission(data tutor.SessionData, assignmentID string) gateway.TestSubmission {
	sub := gateway.TestSubmission{
		AssignmentID: assignmentID,
		TotalTime:    int(data.TotalTime.Round(time.Second) / time.Second),
		Score:        tutor.ComputeStats(data).Score,
	}
	for _, ex := range data.Exercises {
		ans := gateway.SubmittedAnswer{QuestionID: ex.ID}
		for _, a := range data.Attempts {
			if a.ExerciseID != ex.ID {
				continue
			}
			ans.Attempts++
			ans.Answer = a.AnswerText
			ans.IsCorrect = ans.IsCorrect || a.IsCorrect
			ans.HintsUsed = max(ans.HintsUsed, a.HintsUsed)
			ans.TimeMs = a.ResolutionTime.Milliseconds()
		}
		sub.Answers = append(sub.Answers, ans)
	}
	return sub
}
