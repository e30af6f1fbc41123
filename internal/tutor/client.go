// Package tutor turns practice requests into chat-completion prompts and
// the model's replies back into exercises, hints, verdicts and reports.
package tutor

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/mateai/mate/internal/extract"
	"github.com/mateai/mate/internal/llm"
	"github.com/mateai/mate/internal/logger"
)

// ErrNoProvider is the cause of every model call made without a provider.
var ErrNoProvider = errors.New("ningún proveedor de IA configurado")

// HintUnavailable is returned by GenerateHint when no hint could be produced.
const HintUnavailable = "Pista no disponible en este momento."

// Purpose labels recorded with every LLM event.
const (
	PurposeExercises   = "exercise-gen"
	PurposeHint        = "hint"
	PurposeValidate    = "validate"
	PurposeReport      = "report"
	PurposeExplanation = "explanation"
)

// Client implements the tutor operations on an llm.Provider.
type Client struct {
	provider llm.Provider
	config   Config
	history  HistorySource
	log      *logger.Logger
}

// New creates a Client. history and log may be nil. A nil provider still
// serves local verdicts; every model call fails with ErrNoProvider.
func New(provider llm.Provider, cfg Config, history HistorySource, log *logger.Logger) *Client {
	if log == nil {
		log = logger.NewNop()
	}
	return &Client{provider: provider, config: cfg, history: history, log: log}
}

// GenerateExercises asks the model for req.Count exercises. The result
// holds as many exercises as the model returned.
func (c *Client) GenerateExercises(ctx context.Context, req ExerciseRequest) ([]Exercise, error) {
	req.Topic = strings.TrimSpace(req.Topic)
	if req.Topic == "" {
		return nil, &UserInputError{Field: "topic", Message: "El tema es obligatorio."}
	}
	if req.Count <= 0 {
		return nil, &UserInputError{Field: "count", Message: "La cantidad de ejercicios debe ser mayor que cero."}
	}
	if req.Difficulty == "" {
		req.Difficulty = Basic
	}

	history := c.priorPerformance(ctx, req)
	prompt := buildExercisesPrompt(req, history, c.config.ExcerptChars)

	raw, err := c.complete(ctx, PurposeExercises, exercisesSystemPrompt, prompt, c.config.Exercises)
	if err != nil {
		return nil, c.fail("generate exercises", err)
	}

	doc, err := extract.Default.Parse(raw)
	if err != nil {
		return nil, c.fail("generate exercises", err)
	}
	items, err := decodeExercises(doc)
	if err != nil {
		return nil, c.fail("generate exercises", &extract.ParseError{
			Raw:     raw,
			Reasons: []extract.Reason{{Parser: "decode", Err: err}},
		})
	}

	exercises := make([]Exercise, 0, len(items))
	for i, item := range items {
		n := normalize(item, req)
		if len(n.Defaulted) > 0 {
			c.log.Debug("exercise fields defaulted", "index", i, "fields", n.Defaulted)
		}
		exercises = append(exercises, n.Exercise)
	}
	if len(exercises) != req.Count {
		c.log.Info("model returned a different exercise count", "requested", req.Count, "returned", len(exercises))
	}
	return exercises, nil
}

// priorPerformance looks up relevant history. Lookup failures only cost
// personalization.
func (c *Client) priorPerformance(ctx context.Context, req ExerciseRequest) []PriorPerformance {
	if c.history == nil || req.StudentID == "" {
		return nil
	}
	all, err := c.history.PriorPerformance(ctx, req.StudentID)
	if err != nil {
		c.log.Warn("history lookup failed", "student_id", req.StudentID, "error", err)
		return nil
	}
	return relevantHistory(all, req.Topic, c.config.MaxHistory)
}

// GenerateHint returns a hint for ex, or HintUnavailable. It never fails.
func (c *Client) GenerateHint(ctx context.Context, ex Exercise, questionContext string) string {
	raw, err := c.complete(ctx, PurposeHint, hintSystemPrompt, buildHintPrompt(ex, questionContext), c.config.Hint)
	if err != nil {
		c.log.Warn("hint generation failed", "exercise_id", ex.ID, "error", err)
		return HintUnavailable
	}

	var out struct {
		Pista string `json:"pista"`
	}
	if err := extract.Decode(raw, &out); err != nil || strings.TrimSpace(out.Pista) == "" {
		c.log.Warn("hint reply unusable", "exercise_id", ex.ID, "error", err)
		return HintUnavailable
	}
	return strings.TrimSpace(out.Pista)
}

// verdictSchema is the shape ValidateAnswer requires from the model.
var verdictSchema = &llm.Schema{
	Name: "answer-verdict",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"esCorrecta":  map[string]any{"type": "boolean"},
			"explicacion": map[string]any{"type": "string"},
			"sugerencias": map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
		},
		"required": []any{"esCorrecta", "explicacion"},
	},
}

// ValidateAnswer decides whether in.Answer is correct. Answers that are
// Equivalent to the correct answer are accepted without a model call.
// A reply that cannot be read is an error, never a default verdict.
func (c *Client) ValidateAnswer(ctx context.Context, in ValidationInput) (Validation, error) {
	if strings.TrimSpace(in.Answer) == "" {
		return Validation{}, &UserInputError{Field: "answer", Message: "Escribe una respuesta antes de enviar."}
	}

	if Equivalent(in.Answer, in.Exercise) {
		return localVerdict(in.Exercise), nil
	}

	raw, err := c.complete(ctx, PurposeValidate, validateSystemPrompt, buildValidatePrompt(in), c.config.Validate)
	if err != nil {
		return Validation{}, c.fail("validate answer", err)
	}

	doc, err := extract.Default.Parse(raw)
	if err != nil {
		return Validation{}, c.fail("validate answer", err)
	}
	if err := llm.ValidateJSON(verdictSchema, doc); err != nil {
		refusal := &ValidationRefusal{Missing: missingVerdictFields(doc)}
		c.log.Warn("validation reply rejected", "exercise_id", in.Exercise.ID, "missing", refusal.Missing, "error", err)
		return Validation{}, &GenerationFailure{Op: "validate answer", Err: refusal}
	}

	var out struct {
		EsCorrecta  bool     `json:"esCorrecta"`
		Explicacion string   `json:"explicacion"`
		Sugerencias []string `json:"sugerencias"`
	}
	if err := json.Unmarshal(doc, &out); err != nil {
		return Validation{}, c.fail("validate answer", &extract.ParseError{
			Raw:     raw,
			Reasons: []extract.Reason{{Parser: "decode", Err: err}},
		})
	}
	return Validation{IsCorrect: out.EsCorrecta, Explanation: out.Explicacion, Suggestions: out.Sugerencias}, nil
}

func localVerdict(ex Exercise) Validation {
	explanation := ex.Explanation
	if explanation == "" || explanation == PlaceholderExplanation {
		explanation = "¡Correcto!"
	}
	return Validation{IsCorrect: true, Explanation: explanation, Local: true}
}

// missingVerdictFields names the verdict fields that are absent or of the
// wrong type.
func missingVerdictFields(doc json.RawMessage) []string {
	var m map[string]any
	if err := json.Unmarshal(doc, &m); err != nil {
		return []string{"esCorrecta", "explicacion"}
	}
	var missing []string
	if _, ok := m["esCorrecta"].(bool); !ok {
		missing = append(missing, "esCorrecta")
	}
	if _, ok := m["explicacion"].(string); !ok {
		missing = append(missing, "explicacion")
	}
	if v, ok := m["sugerencias"]; ok {
		if _, isList := v.([]any); !isList {
			missing = append(missing, "sugerencias")
		}
	}
	return missing
}

// GenerateReport computes the session stats locally and asks the model
// for the free-text analysis.
func (c *Client) GenerateReport(ctx context.Context, data SessionData) (Report, Stats, error) {
	stats := ComputeStats(data)

	raw, err := c.complete(ctx, PurposeReport, reportSystemPrompt, buildReportPrompt(data, stats), c.config.Report)
	if err != nil {
		c.log.Error("report generation failed", "op", "generate report", "error", err)
		return Report{}, stats, &ReportGenerationFailure{Err: err}
	}

	var report Report
	if err := extract.Decode(raw, &report); err != nil {
		c.log.Error("report reply unusable", "op", "generate report", "error", err)
		return Report{}, stats, &ReportGenerationFailure{Err: err}
	}

	var missing []string
	if strings.TrimSpace(report.DetailedReport) == "" {
		missing = append(missing, "reporteDetallado")
	}
	if strings.TrimSpace(report.Advice) == "" {
		missing = append(missing, "consejos")
	}
	if len(missing) == 2 {
		return Report{}, stats, &ReportGenerationFailure{Err: &ValidationRefusal{Missing: missing}}
	}
	return report, stats, nil
}

// GenerateExplanation returns a step-by-step solution for ex, falling
// back to the exercise's own explanation.
func (c *Client) GenerateExplanation(ctx context.Context, ex Exercise, studentAnswer string) string {
	raw, err := c.complete(ctx, PurposeExplanation, explanationSystemPrompt, buildExplanationPrompt(ex, studentAnswer), c.config.Explanation)
	if err != nil {
		c.log.Warn("explanation generation failed", "exercise_id", ex.ID, "error", err)
		return ex.Explanation
	}

	var out struct {
		Explicacion string `json:"explicacion"`
	}
	if err := extract.Decode(raw, &out); err != nil || strings.TrimSpace(out.Explicacion) == "" {
		c.log.Warn("explanation reply unusable", "exercise_id", ex.ID, "error", err)
		return ex.Explanation
	}
	return strings.TrimSpace(out.Explicacion)
}

// complete sends one chat request and returns the reply text. Truncated
// replies are passed on; extraction decides whether they are usable.
func (c *Client) complete(ctx context.Context, purpose, system, user string, p Params) (string, error) {
	if c.provider == nil {
		return "", &TransportError{Err: ErrNoProvider}
	}
	ctx = llm.WithPurpose(ctx, purpose)
	resp, err := c.provider.Generate(ctx, llm.Request{
		System:      system,
		Messages:    llm.User(user),
		JSON:        true,
		MaxTokens:   p.MaxTokens,
		Temperature: p.Temperature,
	})

	var truncated *llm.ErrMaxTokensExceeded
	var invalid *llm.ErrInvalidResponse
	switch {
	case err == nil:
		return resp.Text, nil
	case errors.As(err, &truncated):
		c.log.Warn("llm reply truncated", "purpose", purpose, "max_tokens", p.MaxTokens)
		return truncated.Content, nil
	case errors.As(err, &invalid):
		return "", &extract.ParseError{
			Raw:     invalid.Content,
			Reasons: []extract.Reason{{Parser: "provider", Err: invalid.Err}},
		}
	default:
		return "", &TransportError{Status: llm.StatusCode(err), Err: err}
	}
}

func (c *Client) fail(op string, err error) error {
	c.log.Error("tutor operation failed", "op", op, "status", statusOf(err), "error", err)
	return &GenerationFailure{Op: op, Err: err}
}

func statusOf(err error) int {
	var te *TransportError
	if errors.As(err, &te) {
		return te.Status
	}
	return 0
}
