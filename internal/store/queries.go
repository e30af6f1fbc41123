package store

import (
	"context"
	"fmt"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
)

var llmEventColumns = []string{
	"id", "sequence", "timestamp", "provider", "model", "purpose", "session_id",
	"input_tokens", "output_tokens", "latency_ms", "success", "error_message",
	"request_body", "response_body",
}

func selectFrom(table string, columns ...string) *entsql.Selector {
	d := entsql.Dialect(dialect.SQLite)
	return d.Select(columns...).From(d.Table(table))
}

// applyOpts adds the QueryOpts filters shared by every event table.
func applyOpts(sel *entsql.Selector, opts QueryOpts) *entsql.Selector {
	if opts.After > 0 {
		sel.Where(entsql.GT("sequence", opts.After))
	}
	if opts.Before > 0 {
		sel.Where(entsql.LT("sequence", opts.Before))
	}
	if !opts.From.IsZero() {
		sel.Where(entsql.GTE("timestamp", opts.From.UTC()))
	}
	if !opts.To.IsZero() {
		sel.Where(entsql.LTE("timestamp", opts.To.UTC()))
	}
	if opts.SessionID != "" {
		sel.Where(entsql.EQ("session_id", opts.SessionID))
	}
	if opts.Limit > 0 {
		sel.Limit(opts.Limit)
	}
	return sel
}

func (r *eventRepo) QueryLLMEvents(ctx context.Context, opts QueryOpts) ([]LLMEvent, error) {
	sel := selectFrom(LLMRequestEventsTable.Name, llmEventColumns...)
	if opts.Purpose != "" {
		sel.Where(entsql.EQ("purpose", opts.Purpose))
	}
	applyOpts(sel, opts).OrderBy(entsql.Desc("sequence"))

	query, args := sel.Query()
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query llm events: %w", err)
	}
	defer rows.Close()

	var events []LLMEvent
	for rows.Next() {
		e, err := scanLLMEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, *e)
	}
	return events, rows.Err()
}

func (r *eventRepo) GetLLMEvent(ctx context.Context, id int) (*LLMEvent, error) {
	query, args := selectFrom(LLMRequestEventsTable.Name, llmEventColumns...).
		Where(entsql.EQ("id", id)).
		Query()
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("get llm event: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, rows.Err()
	}
	return scanLLMEvent(rows)
}

type scanner interface {
	Scan(dest ...any) error
}

func scanLLMEvent(s scanner) (*LLMEvent, error) {
	var e LLMEvent
	err := s.Scan(
		&e.ID, &e.Sequence, &e.Timestamp, &e.Provider, &e.Model, &e.Purpose, &e.SessionID,
		&e.InputTokens, &e.OutputTokens, &e.LatencyMs, &e.Success, &e.ErrorMessage,
		&e.RequestBody, &e.ResponseBody,
	)
	if err != nil {
		return nil, fmt.Errorf("scan llm event: %w", err)
	}
	return &e, nil
}

func (r *eventRepo) LLMUsageByPurpose(ctx context.Context) ([]PurposeUsage, error) {
	query, args := selectFrom(LLMRequestEventsTable.Name,
		"purpose",
		entsql.As(entsql.Count("*"), "calls"),
		entsql.As(entsql.Sum("input_tokens"), "input"),
		entsql.As(entsql.Sum("output_tokens"), "output"),
		entsql.As(entsql.Avg("latency_ms"), "avg_latency"),
	).GroupBy("purpose").OrderBy(entsql.Desc("calls")).Query()

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query usage by purpose: %w", err)
	}
	defer rows.Close()

	var out []PurposeUsage
	for rows.Next() {
		var u PurposeUsage
		var avg float64
		if err := rows.Scan(&u.Purpose, &u.Calls, &u.InputTokens, &u.OutputTokens, &avg); err != nil {
			return nil, fmt.Errorf("scan usage: %w", err)
		}
		u.AvgLatencyMs = int64(avg)
		out = append(out, u)
	}
	return out, rows.Err()
}

func (r *eventRepo) LLMUsageByModel(ctx context.Context) ([]ModelUsage, error) {
	query, args := selectFrom(LLMRequestEventsTable.Name,
		"model",
		entsql.As(entsql.Count("*"), "calls"),
		entsql.As(entsql.Sum("input_tokens"), "input"),
		entsql.As(entsql.Sum("output_tokens"), "output"),
	).GroupBy("model").OrderBy(entsql.Desc("calls")).Query()

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query usage by model: %w", err)
	}
	defer rows.Close()

	var out []ModelUsage
	for rows.Next() {
		var u ModelUsage
		if err := rows.Scan(&u.Model, &u.Calls, &u.InputTokens, &u.OutputTokens); err != nil {
			return nil, fmt.Errorf("scan usage: %w", err)
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

func (r *eventRepo) PruneLLMEvents(ctx context.Context, before time.Time) (int64, error) {
	query, args := entsql.Dialect(dialect.SQLite).
		Delete(LLMRequestEventsTable.Name).
		Where(entsql.LT("timestamp", before.UTC())).
		Query()
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("prune llm events: %w", err)
	}
	return res.RowsAffected()
}

func (r *eventRepo) ListSessions(ctx context.Context, limit int) ([]SessionSummary, error) {
	query, args := selectFrom(SessionEventsTable.Name,
		"session_id", "timestamp", "action", "kind", "topic", "grade", "difficulty", "test_id",
		"questions_total", "correct_answers", "score", "duration_secs",
	).OrderBy(entsql.Asc("sequence")).Query()

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query sessions: %w", err)
	}
	defer rows.Close()

	byID := make(map[string]*SessionSummary)
	var order []string
	for rows.Next() {
		var (
			ts time.Time
			d  SessionEventData
		)
		err := rows.Scan(&d.SessionID, &ts, &d.Action, &d.Kind, &d.Topic, &d.Grade, &d.Difficulty,
			&d.TestID, &d.QuestionsTotal, &d.CorrectAnswers, &d.Score, &d.DurationSecs)
		if err != nil {
			return nil, fmt.Errorf("scan session event: %w", err)
		}

		s, ok := byID[d.SessionID]
		if !ok {
			s = &SessionSummary{SessionID: d.SessionID, StartedAt: ts}
			byID[d.SessionID] = s
			order = append(order, d.SessionID)
		}
		s.Status = d.Action
		if d.Action == SessionStart {
			s.StartedAt = ts
			s.Kind, s.Topic, s.Grade = d.Kind, d.Topic, d.Grade
			s.Difficulty, s.TestID = d.Difficulty, d.TestID
			s.QuestionsTotal = d.QuestionsTotal
			continue
		}
		s.EndedAt = ts
		s.QuestionsTotal = d.QuestionsTotal
		s.CorrectAnswers = d.CorrectAnswers
		s.Score = d.Score
		s.DurationSecs = d.DurationSecs
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	out := make([]SessionSummary, 0, len(order))
	for i := len(order) - 1; i >= 0; i-- {
		out = append(out, *byID[order[i]])
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *eventRepo) SessionAttempts(ctx context.Context, sessionID string) ([]AttemptRecord, error) {
	query, args := selectFrom(AttemptEventsTable.Name,
		"sequence", "timestamp", "session_id", "exercise_id", "statement", "answer",
		"correct_answer", "correct", "unvalidated", "attempt_number", "hints_used", "time_ms",
	).Where(entsql.EQ("session_id", sessionID)).OrderBy(entsql.Asc("sequence")).Query()

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query attempts: %w", err)
	}
	defer rows.Close()

	var out []AttemptRecord
	for rows.Next() {
		var a AttemptRecord
		err := rows.Scan(&a.Sequence, &a.Timestamp, &a.SessionID, &a.ExerciseID, &a.Statement,
			&a.Answer, &a.CorrectAnswer, &a.Correct, &a.Unvalidated, &a.AttemptNumber, &a.HintsUsed, &a.TimeMs)
		if err != nil {
			return nil, fmt.Errorf("scan attempt: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}
