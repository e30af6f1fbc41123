package practice

import (
	"time"

	"github.com/mateai/mate/internal/tutor"
)

// Phase is the controller's position in a session.
type Phase int

const (
	PhaseConfiguring   Phase = iota // Collecting grade, topic, difficulty, count
	PhaseGenerating                 // Waiting for exercises
	PhaseAnswering                  // Exercise Index shown, accepting input
	PhaseValidating                 // Checking the submitted answer
	PhaseRevealed                   // Exercise Index finished; see Outcome
	PhaseSummarizing                // All exercises finished, building session data
	PhaseReportPending              // Waiting for the report
	PhaseCompleted                  // Terminal; Restart returns to Configuring
)

func (p Phase) String() string {
	switch p {
	case PhaseConfiguring:
		return "configuring"
	case PhaseGenerating:
		return "generating"
	case PhaseAnswering:
		return "answering"
	case PhaseValidating:
		return "validating"
	case PhaseRevealed:
		return "revealed"
	case PhaseSummarizing:
		return "summarizing"
	case PhaseReportPending:
		return "report-pending"
	case PhaseCompleted:
		return "completed"
	default:
		return "unknown"
	}
}

// busy reports whether a call is in flight.
func (p Phase) busy() bool {
	return p == PhaseGenerating || p == PhaseValidating || p == PhaseSummarizing || p == PhaseReportPending
}

// Outcome is how a revealed exercise ended.
type Outcome int

const (
	OutcomeNone Outcome = iota
	OutcomeSucceeded
	OutcomeFailed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSucceeded:
		return "succeeded"
	case OutcomeFailed:
		return "failed"
	default:
		return "none"
	}
}

// Settings configure a free practice session.
type Settings struct {
	Grade      string
	Topic      string
	Difficulty tutor.Difficulty
	Count      int
}

// Limits bound attempts and hints per exercise. Zero means unlimited.
type Limits struct {
	MaxAttempts         int
	AssignedMaxAttempts int
	HintSlots           int
}

// DefaultLimits: three attempts and one hint in free practice, no limit
// on assigned tests.
func DefaultLimits() Limits {
	return Limits{MaxAttempts: 3, AssignedMaxAttempts: 0, HintSlots: 1}
}

// State is a copy of the session for rendering.
type State struct {
	Phase   Phase
	Index   int
	Outcome Outcome

	// Err is the last failure to show to the student. It is cleared by
	// the next successful action.
	Err error

	SessionID string
	Kind      tutor.Kind
	Settings  Settings

	// Assigned tests only.
	TestID       string
	TestTitle    string
	Instructions string

	Exercises []tutor.Exercise
	Attempts  []tutor.Attempt

	// Current exercise.
	Draft        string
	Hints        []string
	HintsUsed    int
	AttemptsMade int
	MaxAttempts  int
	HintsLeft    int // -1 when unlimited
	Validation   *tutor.Validation
	Explanation  string

	// Deadline is zero for untimed sessions.
	Deadline time.Time
	Expired  bool

	Report    *tutor.Report
	Stats     tutor.Stats
	ReportErr error
	Saved     bool
}

// Current returns the exercise at Index, or nil outside a session.
func (s State) Current() *tutor.Exercise {
	if s.Index < 0 || s.Index >= len(s.Exercises) {
		return nil
	}
	ex := s.Exercises[s.Index]
	return &ex
}

// Remaining returns the time left before Deadline, or 0.
func (s State) Remaining(now time.Time) time.Duration {
	if s.Deadline.IsZero() {
		return 0
	}
	if d := s.Deadline.Sub(now); d > 0 {
		return d
	}
	return 0
}
