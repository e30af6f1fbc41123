package tutor

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/mateai/mate/internal/logger"
)

// TokenSource supplies the bearer token sent to `mate serve`.
type TokenSource interface {
	Token() string
}

// Remote implements the tutor operations against a `mate serve`
// instance, so the AI provider key never leaves the server.
type Remote struct {
	baseURL string
	tokens  TokenSource
	http    *http.Client
	log     *logger.Logger
}

// NewRemote creates a Remote for the service at baseURL (for example
// http://localhost:8080). tokens and log may be nil.
func NewRemote(baseURL string, tokens TokenSource, timeout time.Duration, log *logger.Logger) *Remote {
	if log == nil {
		log = logger.NewNop()
	}
	if timeout <= 0 {
		timeout = 2 * time.Minute
	}
	return &Remote{
		baseURL: strings.TrimRight(baseURL, "/"),
		tokens:  tokens,
		http:    &http.Client{Timeout: timeout},
		log:     log,
	}
}

func (r *Remote) GenerateExercises(ctx context.Context, req ExerciseRequest) ([]Exercise, error) {
	if strings.TrimSpace(req.Topic) == "" {
		return nil, &UserInputError{Field: "topic", Message: "El tema es obligatorio."}
	}
	var out ExercisesResponse
	if err := r.post(ctx, "/api/ai/exercises", "generate exercises", req, &out); err != nil {
		return nil, err
	}
	return out.Exercises, nil
}

func (r *Remote) GenerateHint(ctx context.Context, ex Exercise, questionContext string) string {
	var out HintResponse
	if err := r.post(ctx, "/api/ai/hint", "generate hint", HintRequest{Exercise: ex, Context: questionContext}, &out); err != nil {
		r.log.Warn("remote hint failed", "exercise_id", ex.ID, "error", err)
		return HintUnavailable
	}
	if out.Hint == "" {
		return HintUnavailable
	}
	return out.Hint
}

func (r *Remote) ValidateAnswer(ctx context.Context, in ValidationInput) (Validation, error) {
	if strings.TrimSpace(in.Answer) == "" {
		return Validation{}, &UserInputError{Field: "answer", Message: "Escribe una respuesta antes de enviar."}
	}
	if Equivalent(in.Answer, in.Exercise) {
		return localVerdict(in.Exercise), nil
	}
	var out Validation
	err := r.post(ctx, "/api/ai/validate", "validate answer", in, &out)
	return out, err
}

func (r *Remote) GenerateReport(ctx context.Context, data SessionData) (Report, Stats, error) {
	var out ReportResponse
	if err := r.post(ctx, "/api/ai/report", "generate report", data, &out); err != nil {
		var rf *ReportGenerationFailure
		if !errors.As(err, &rf) {
			err = &ReportGenerationFailure{Err: err}
		}
		return Report{}, ComputeStats(data), err
	}
	return out.Report, out.Stats, nil
}

func (r *Remote) GenerateExplanation(ctx context.Context, ex Exercise, studentAnswer string) string {
	var out ExplanationResponse
	err := r.post(ctx, "/api/ai/explanation", "generate explanation", ExplanationRequest{Exercise: ex, Answer: studentAnswer}, &out)
	if err != nil || out.Explanation == "" {
		if err != nil {
			r.log.Warn("remote explanation failed", "exercise_id", ex.ID, "error", err)
		}
		return ex.Explanation
	}
	return out.Explanation
}

func (r *Remote) post(ctx context.Context, path, op string, in, out any) error {
	body, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("encode %s request: %w", op, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build %s request: %w", op, err)
	}
	req.Header.Set("Content-Type", "application/json")
	if r.tokens != nil {
		if tok := r.tokens.Token(); tok != "" {
			req.Header.Set("Authorization", "Bearer "+tok)
		}
	}

	resp, err := r.http.Do(req)
	if err != nil {
		return &GenerationFailure{Op: op, Err: &TransportError{Err: err}}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var eb ErrorBody
		_ = json.NewDecoder(resp.Body).Decode(&eb)
		r.log.Warn("remote tutor call failed", "op", op, "status", resp.StatusCode, "code", eb.Error.Code)
		return DecodeError(resp.StatusCode, eb, op)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &GenerationFailure{Op: op, Err: &TransportError{Status: resp.StatusCode, Err: fmt.Errorf("decode response: %w", err)}}
	}
	return nil
}
