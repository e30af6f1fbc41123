package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
)

// eventRepo implements EventRepo on ent's SQL builder and the global
// sequence counter.
type eventRepo struct {
	db  *sql.DB
	seq *sequenceCounter
}

func (r *eventRepo) AppendLLMRequest(ctx context.Context, data LLMRequestEventData) error {
	return r.append(ctx, LLMRequestEventsTable.Name,
		[]string{"provider", "model", "purpose", "session_id", "input_tokens", "output_tokens",
			"latency_ms", "success", "error_message", "request_body", "response_body"},
		data.Provider, data.Model, data.Purpose, data.SessionID, data.InputTokens, data.OutputTokens,
		data.LatencyMs, data.Success, data.ErrorMessage, data.RequestBody, data.ResponseBody,
	)
}

func (r *eventRepo) AppendSessionEvent(ctx context.Context, data SessionEventData) error {
	return r.append(ctx, SessionEventsTable.Name,
		[]string{"session_id", "action", "kind", "topic", "grade", "difficulty", "test_id",
			"questions_total", "correct_answers", "score", "duration_secs"},
		data.SessionID, data.Action, data.Kind, data.Topic, data.Grade, data.Difficulty, data.TestID,
		data.QuestionsTotal, data.CorrectAnswers, data.Score, data.DurationSecs,
	)
}

func (r *eventRepo) AppendAttemptEvent(ctx context.Context, data AttemptEventData) error {
	return r.append(ctx, AttemptEventsTable.Name,
		[]string{"session_id", "exercise_id", "statement", "answer", "correct_answer", "correct",
			"unvalidated", "attempt_number", "hints_used", "time_ms"},
		data.SessionID, data.ExerciseID, data.Statement, data.Answer, data.CorrectAnswer, data.Correct,
		data.Unvalidated, data.AttemptNumber, data.HintsUsed, data.TimeMs,
	)
}

func (r *eventRepo) AppendHintEvent(ctx context.Context, data HintEventData) error {
	return r.append(ctx, HintEventsTable.Name,
		[]string{"session_id", "exercise_id", "statement", "hint_text"},
		data.SessionID, data.ExerciseID, data.Statement, data.HintText,
	)
}

// append inserts one event row, prefixed with the next sequence number and
// the current UTC time.
func (r *eventRepo) append(ctx context.Context, table string, columns []string, values ...any) error {
	seqNum, err := r.seq.Next(ctx)
	if err != nil {
		return fmt.Errorf("next sequence: %w", err)
	}

	query, args := entsql.Dialect(dialect.SQLite).
		Insert(table).
		Columns(append([]string{"sequence", "timestamp"}, columns...)...).
		Values(append([]any{seqNum, time.Now().UTC()}, values...)...).
		Query()
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("save %s: %w", table, err)
	}
	return nil
}
