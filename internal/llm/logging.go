package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/mateai/mate/internal/logger"
	"github.com/mateai/mate/internal/store"
)

// EventSink receives one record per LLM call.
type EventSink interface {
	AppendLLMRequest(ctx context.Context, data store.LLMRequestEventData) error
}

// LoggingProvider records every call in the event store and the log.
type LoggingProvider struct {
	inner    Provider
	provider string
	sink     EventSink
	log      *logger.Logger
}

// WithLogging wraps a Provider with event logging. sink and log may be nil.
func WithLogging(p Provider, providerName string, sink EventSink, log *logger.Logger) Provider {
	if log == nil {
		log = logger.NewNop()
	}
	return &LoggingProvider{inner: p, provider: providerName, sink: sink, log: log}
}

func (l *LoggingProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	start := time.Now()
	resp, err := l.inner.Generate(ctx, req)
	latency := time.Since(start)

	data := store.LLMRequestEventData{
		Provider:    l.provider,
		Model:       l.inner.ModelID(),
		Purpose:     PurposeFrom(ctx),
		SessionID:   SessionIDFrom(ctx),
		LatencyMs:   latency.Milliseconds(),
		Success:     err == nil,
		RequestBody: serializeRequest(req),
	}
	if resp != nil {
		data.InputTokens = resp.Usage.InputTokens
		data.OutputTokens = resp.Usage.OutputTokens
		if resp.Model != "" {
			data.Model = resp.Model
		}
		data.ResponseBody = resp.Text
	}

	fields := []any{
		"provider", data.Provider,
		"model", data.Model,
		"purpose", data.Purpose,
		"latency_ms", data.LatencyMs,
		"input_tokens", data.InputTokens,
		"output_tokens", data.OutputTokens,
	}
	if err != nil {
		data.ErrorMessage = err.Error()
		l.log.Warn("llm request failed", append(fields, "status", StatusCode(err), "error", err)...)
	} else {
		l.log.Debug("llm request", fields...)
	}

	if l.sink != nil {
		// Use a detached context so a cancelled request is still recorded.
		if logErr := l.sink.AppendLLMRequest(context.WithoutCancel(ctx), data); logErr != nil {
			l.log.Warn("failed to record LLM request event", "error", logErr)
		}
	}

	return resp, err
}

func (l *LoggingProvider) ModelID() string {
	return l.inner.ModelID()
}

// serializeRequest renders a request for `mate llm view`.
func serializeRequest(req Request) string {
	var b strings.Builder

	if req.System != "" {
		b.WriteString("[system]\n")
		b.WriteString(req.System)
		b.WriteString("\n\n")
	}
	for _, m := range req.Messages {
		fmt.Fprintf(&b, "[%s]\n%s\n\n", m.Role, m.Content)
	}
	fmt.Fprintf(&b, "[params] max_tokens=%d temperature=%.2f json=%v\n", req.MaxTokens, req.Temperature, req.JSON)
	if req.Schema != nil {
		if def, err := json.Marshal(req.Schema.Definition); err == nil {
			fmt.Fprintf(&b, "[schema: %s]\n%s\n", req.Schema.Name, def)
		}
	}
	return b.String()
}
