package llm

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/mateai/mate/internal/store"
)

type recordingSink struct {
	events []store.LLMRequestEventData
	err    error
}

func (r *recordingSink) AppendLLMRequest(_ context.Context, data store.LLMRequestEventData) error {
	r.events = append(r.events, data)
	return r.err
}

func TestLoggingProvider_RecordsSuccess(t *testing.T) {
	sink := &recordingSink{}
	mock := NewMockProvider(MockResponse{Text: `{"pista":"x"}`, Usage: Usage{InputTokens: 7, OutputTokens: 3}})
	p := WithLogging(mock, "mock", sink, nil)

	ctx := WithSessionID(WithPurpose(context.Background(), "hint"), "sess-1")
	if _, err := p.Generate(ctx, Request{System: "sys", Messages: User("hola"), MaxTokens: 50}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(sink.events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(sink.events))
	}
	e := sink.events[0]
	if e.Purpose != "hint" || e.SessionID != "sess-1" || !e.Success {
		t.Fatalf("unexpected event: %+v", e)
	}
	if e.InputTokens != 7 || e.OutputTokens != 3 {
		t.Fatalf("tokens not recorded: %+v", e)
	}
	if !strings.Contains(e.RequestBody, "[system]\nsys") || !strings.Contains(e.RequestBody, "hola") {
		t.Fatalf("request body not serialized: %q", e.RequestBody)
	}
	if e.ResponseBody != `{"pista":"x"}` {
		t.Fatalf("response body = %q", e.ResponseBody)
	}
}

func TestLoggingProvider_RecordsFailureAndIgnoresSinkErrors(t *testing.T) {
	sink := &recordingSink{err: errors.New("disk full")}
	mock := NewMockProvider(MockResponse{Err: &ErrProviderUnavailable{StatusCode: 500, Err: errors.New("boom")}})
	p := WithLogging(mock, "mock", sink, nil)

	_, err := p.Generate(context.Background(), Request{})
	if StatusCode(err) != 500 {
		t.Fatalf("provider error not propagated: %v", err)
	}
	if len(sink.events) != 1 || sink.events[0].Success || sink.events[0].ErrorMessage == "" {
		t.Fatalf("failure not recorded: %+v", sink.events)
	}
}
