package gateway

import (
	"context"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/mateai/mate/internal/tutor"
)

// ReportFilter narrows ListPerformanceReports. Zero fields are ignored.
type ReportFilter struct {
	StudentID string
	Topic     string
	Limit     int
}

func (f ReportFilter) query() url.Values {
	q := url.Values{}
	if f.StudentID != "" {
		q.Set("estudianteId", f.StudentID)
	}
	if f.Topic != "" {
		q.Set("tema", f.Topic)
	}
	if f.Limit > 0 {
		q.Set("limit", strconv.Itoa(f.Limit))
	}
	return q
}

func (c *Client) ListPerformanceReports(ctx context.Context, f ReportFilter) ([]PerformanceReport, error) {
	var out []PerformanceReport
	err := c.get(ctx, "list performance reports", "/performance-reports", f.query(), &out)
	return out, err
}

func (c *Client) GetPerformanceReport(ctx context.Context, id string) (*PerformanceReport, error) {
	var out PerformanceReport
	if err := c.get(ctx, "get performance report", "/performance-reports/"+escape(id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// SavePerformanceReport persists a session report and returns it with
// its backend ID.
func (c *Client) SavePerformanceReport(ctx context.Context, r PerformanceReport) (*PerformanceReport, error) {
	var out PerformanceReport
	if err := c.post(ctx, "save performance report", "/performance-reports", r, &out); err != nil {
		return nil, err
	}
	if out.ID == "" && out.StudentID == "" {
		return &r, nil
	}
	return &out, nil
}

func (c *Client) DeletePerformanceReport(ctx context.Context, id string) error {
	return c.delete(ctx, "delete performance report", "/performance-reports/"+escape(id))
}

// reportExcerptChars bounds the report text quoted back to the model.
const reportExcerptChars = 300

// PriorPerformance lists the student's earlier reports for
// personalization.
func (c *Client) PriorPerformance(ctx context.Context, studentID string) ([]tutor.PriorPerformance, error) {
	reports, err := c.ListPerformanceReports(ctx, ReportFilter{StudentID: studentID})
	if err != nil {
		return nil, err
	}
	out := make([]tutor.PriorPerformance, 0, len(reports))
	for _, r := range reports {
		out = append(out, tutor.PriorPerformance{
			Date:          r.Date,
			Topic:         r.Topic,
			Score:         float64(r.Score),
			Advice:        r.Advice,
			ReportExcerpt: cut(r.DetailedReport, reportExcerptChars),
		})
	}
	return out, nil
}

// NewPerformanceReport builds the payload persisted at the end of a
// session. Stats come from tutor.ComputeStats, never from the model.
func NewPerformanceReport(data tutor.SessionData, report tutor.Report, stats tutor.Stats, at time.Time) PerformanceReport {
	return PerformanceReport{
		StudentID:       data.StudentID,
		Topic:           data.Topic,
		Grade:           data.Grade,
		TotalQuestions:  stats.Total,
		CorrectAnswers:  stats.Correct,
		WrongAnswers:    stats.Incorrect,
		Score:           stats.Score,
		TotalTime:       int(data.TotalTime.Round(time.Second) / time.Second),
		SessionDuration: int(data.SessionDuration.Round(time.Second) / time.Second),
		PracticeType:    string(data.Kind),
		DetailedReport:  report.DetailedReport,
		Advice:          report.Advice,
		Date:            at.UTC(),
	}
}

func cut(s string, n int) string {
	s = strings.TrimSpace(s)
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "…"
}
