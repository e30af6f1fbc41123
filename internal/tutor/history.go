package tutor

import (
	"context"
	"sort"
	"strings"
)

// HistorySource looks up a student's earlier performance reports.
type HistorySource interface {
	PriorPerformance(ctx context.Context, studentID string) ([]PriorPerformance, error)
}

// relevantHistory keeps the entries whose topic contains, or is contained
// in, topic (ignoring case and accents), newest first, at most max.
func relevantHistory(all []PriorPerformance, topic string, max int) []PriorPerformance {
	want := fold(topic)
	var out []PriorPerformance
	for _, p := range all {
		got := fold(p.Topic)
		if got == "" || want == "" {
			continue
		}
		if strings.Contains(got, want) || strings.Contains(want, got) {
			out = append(out, p)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	if max > 0 && len(out) > max {
		out = out[:max]
	}
	return out
}
