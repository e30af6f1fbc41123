package store

import (
	"context"
	"time"
)

// QueryOpts configures event queries with filtering and pagination.
type QueryOpts struct {
	Limit     int       // max results (0 = unlimited)
	After     int64     // sequence > After
	Before    int64     // sequence < Before
	From      time.Time // timestamp >= From
	To        time.Time // timestamp <= To
	Purpose   string    // LLM events only
	SessionID string
}

// LLMRequestEventData captures the data for a single LLM request event.
type LLMRequestEventData struct {
	Provider     string
	Model        string
	Purpose      string
	SessionID    string
	InputTokens  int
	OutputTokens int
	LatencyMs    int64
	Success      bool
	ErrorMessage string
	RequestBody  string
	ResponseBody string
}

// LLMEvent is a stored LLM request event.
type LLMEvent struct {
	ID        int
	Sequence  int64
	Timestamp time.Time
	LLMRequestEventData
}

// PurposeUsage aggregates LLM usage for one purpose label.
type PurposeUsage struct {
	Purpose      string
	Calls        int
	InputTokens  int
	OutputTokens int
	AvgLatencyMs int64
}

// ModelUsage aggregates LLM usage for one model.
type ModelUsage struct {
	Model        string
	Calls        int
	InputTokens  int
	OutputTokens int
}

// Session actions.
const (
	SessionStart   = "start"
	SessionEnd     = "end"
	SessionAbandon = "abandon"
)

// SessionEventData captures a practice session start or end.
type SessionEventData struct {
	SessionID      string
	Action         string // SessionStart, SessionEnd or SessionAbandon
	Kind           string // "practica-ia" or "evaluacion"
	Topic          string
	Grade          string
	Difficulty     string
	TestID         string
	QuestionsTotal int
	CorrectAnswers int
	Score          int
	DurationSecs   int
}

// AttemptEventData captures one submitted answer.
type AttemptEventData struct {
	SessionID     string
	ExerciseID    string
	Statement     string
	Answer        string
	CorrectAnswer string
	Correct       bool
	// Unvalidated marks an answer forced in at the deadline whose
	// verdict could not be obtained; Correct is false.
	Unvalidated   bool
	AttemptNumber int
	HintsUsed     int
	TimeMs        int64
}

// HintEventData captures one hint shown to the student.
type HintEventData struct {
	SessionID  string
	ExerciseID string
	Statement  string
	HintText   string
}

// SessionSummary folds a session's start and end events into one row.
type SessionSummary struct {
	SessionID      string
	Kind           string
	Topic          string
	Grade          string
	Difficulty     string
	TestID         string
	StartedAt      time.Time
	EndedAt        time.Time // zero while the session is open
	Status         string    // last action seen
	QuestionsTotal int
	CorrectAnswers int
	Score          int
	DurationSecs   int
}

// AttemptRecord is a stored attempt event.
type AttemptRecord struct {
	Sequence  int64
	Timestamp time.Time
	AttemptEventData
}

// EventRepo provides append and query access to domain events.
type EventRepo interface {
	AppendLLMRequest(ctx context.Context, data LLMRequestEventData) error
	AppendSessionEvent(ctx context.Context, data SessionEventData) error
	AppendAttemptEvent(ctx context.Context, data AttemptEventData) error
	AppendHintEvent(ctx context.Context, data HintEventData) error

	// QueryLLMEvents returns LLM events newest first.
	QueryLLMEvents(ctx context.Context, opts QueryOpts) ([]LLMEvent, error)
	// GetLLMEvent returns nil when no event has the given id.
	GetLLMEvent(ctx context.Context, id int) (*LLMEvent, error)
	LLMUsageByPurpose(ctx context.Context) ([]PurposeUsage, error)
	LLMUsageByModel(ctx context.Context) ([]ModelUsage, error)
	// PruneLLMEvents deletes LLM events older than before and returns the
	// number removed.
	PruneLLMEvents(ctx context.Context, before time.Time) (int64, error)

	// ListSessions returns sessions newest first.
	ListSessions(ctx context.Context, limit int) ([]SessionSummary, error)
	// SessionAttempts returns a session's attempts in the order made.
	SessionAttempts(ctx context.Context, sessionID string) ([]AttemptRecord, error)
}
