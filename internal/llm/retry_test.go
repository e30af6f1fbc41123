package llm

import (
	"context"
	"errors"
	"testing"
	"time"
)

func retryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts: 3,
		InitialWait: 1 * time.Millisecond,
		MaxWait:     10 * time.Millisecond,
		Multiplier:  2.0,
	}
}

func TestRetry_SucceedsOnFirstAttempt(t *testing.T) {
	mock := NewMockProvider(MockResponse{Text: `{"ok":true}`})
	resp, err := WithRetry(mock, retryConfig()).Generate(context.Background(), Request{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Text != `{"ok":true}` {
		t.Fatalf("unexpected text: %s", resp.Text)
	}
	if mock.CallCount() != 1 {
		t.Fatalf("expected 1 call, got %d", mock.CallCount())
	}
}

func TestRetry_TransientThenSuccess(t *testing.T) {
	mock := NewMockProvider(
		MockResponse{Err: &ErrProviderUnavailable{StatusCode: 503, Err: errors.New("down")}},
		MockResponse{Err: &ErrRateLimit{Err: errors.New("slow down")}},
		MockResponse{Text: `{"ok":true}`},
	)
	if _, err := WithRetry(mock, retryConfig()).Generate(context.Background(), Request{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if mock.CallCount() != 3 {
		t.Fatalf("expected 3 calls, got %d", mock.CallCount())
	}
}

func TestRetry_SingleAttemptDisablesRetry(t *testing.T) {
	cfg := retryConfig()
	cfg.MaxAttempts = 1
	mock := NewMockProvider(
		MockResponse{Err: &ErrProviderUnavailable{StatusCode: 500, Err: errors.New("down")}},
		MockResponse{Text: `{"ok":true}`},
	)
	_, err := WithRetry(mock, cfg).Generate(context.Background(), Request{})
	if StatusCode(err) != 500 {
		t.Fatalf("expected the 500 to surface, got %v", err)
	}
	if mock.CallCount() != 1 {
		t.Fatalf("expected 1 call, got %d", mock.CallCount())
	}
}

func TestRetry_ClientErrorNotRetried(t *testing.T) {
	mock := NewMockProvider(
		MockResponse{Err: &ErrProviderUnavailable{StatusCode: 400, Err: errors.New("bad request")}},
		MockResponse{Text: `{}`},
	)
	if _, err := WithRetry(mock, retryConfig()).Generate(context.Background(), Request{}); err == nil {
		t.Fatal("expected error")
	}
	if mock.CallCount() != 1 {
		t.Fatalf("expected 1 call, got %d", mock.CallCount())
	}
}

func TestRetry_InvalidResponseNotRetried(t *testing.T) {
	mock := NewMockProvider(
		MockResponse{Err: &ErrInvalidResponse{Err: errors.New("no choices")}},
		MockResponse{Text: `{}`},
	)
	if _, err := WithRetry(mock, retryConfig()).Generate(context.Background(), Request{}); err == nil {
		t.Fatal("expected error")
	}
	if mock.CallCount() != 1 {
		t.Fatalf("expected 1 call, got %d", mock.CallCount())
	}
}

func TestRetry_ExhaustsAttempts(t *testing.T) {
	down := &ErrProviderUnavailable{Err: errors.New("down")}
	mock := NewMockProvider(MockResponse{Err: down}, MockResponse{Err: down}, MockResponse{Err: down})
	_, err := WithRetry(mock, retryConfig()).Generate(context.Background(), Request{})
	if !errors.Is(err, down) {
		t.Fatalf("expected last error, got %v", err)
	}
	if mock.CallCount() != 3 {
		t.Fatalf("expected 3 calls, got %d", mock.CallCount())
	}
}

func TestRetry_RespectsContextCancel(t *testing.T) {
	cfg := retryConfig()
	cfg.InitialWait = time.Hour
	cfg.MaxWait = time.Hour
	mock := NewMockProvider(MockResponse{Err: &ErrProviderUnavailable{Err: errors.New("down")}})

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	_, err := WithRetry(mock, cfg).Generate(ctx, Request{})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
