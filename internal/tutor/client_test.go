package tutor

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/mateai/mate/internal/extract"
	"github.com/mateai/mate/internal/llm"
)

func exerciseJSON(n int, topic, difficulty string) string {
	items := make([]string, n)
	for i := range items {
		items[i] = fmt.Sprintf(`{"id": "%d", "enunciado": "¿Cuánto es 1/%d + 1/%d?", "opciones": ["2/%d", "1/%d", "2", "0"],
			"respuestaCorrecta": "2/%d", "explicacion": "Se suman los numeradores.", "dificultad": %q, "tema": %q, "grado": "3"}`,
			i+1, i+2, i+2, i+2, i+2, i+2, difficulty, topic)
	}
	return `{"ejercicios": [` + strings.Join(items, ",") + `]}`
}

func newTestClient(responses ...llm.MockResponse) (*Client, *llm.MockProvider) {
	mock := llm.NewMockProvider(responses...)
	return New(mock, DefaultConfig(), nil, nil), mock
}

func TestGenerateExercises_FraccionesScenario(t *testing.T) {
	c, mock := newTestClient(llm.MockResponse{
		Text: "Aquí tienes:\n```json\n" + exerciseJSON(3, "Fracciones", "basica") + "\n```",
	})

	exercises, err := c.GenerateExercises(context.Background(), ExerciseRequest{
		Grade: "3", Topic: "Fracciones", Difficulty: Basic, Count: 3,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(exercises) != 3 {
		t.Fatalf("got %d exercises, want 3", len(exercises))
	}

	seen := map[string]bool{}
	for i, ex := range exercises {
		if ex.Topic != "Fracciones" || ex.Difficulty != Basic {
			t.Errorf("exercise %d: topic %q difficulty %q", i, ex.Topic, ex.Difficulty)
		}
		if ex.ID == "" || seen[ex.ID] {
			t.Errorf("exercise %d: id %q not unique", i, ex.ID)
		}
		seen[ex.ID] = true
		if len(ex.Options) != 4 {
			t.Errorf("exercise %d: %d options", i, len(ex.Options))
		}
	}

	call := mock.LastCall()
	if !call.JSON {
		t.Error("request should ask for JSON output")
	}
	if !strings.Contains(call.System, "LaTeX") || !strings.Contains(call.System, "español") {
		t.Errorf("system prompt missing language or markup rules: %q", call.System)
	}
	prompt := call.Messages[0].Content
	for _, want := range []string{"exactamente 3", "Grado: 3", "Tema: Fracciones", "Dificultad: basica"} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
	if call.MaxTokens != 2000 || call.Temperature != 0.7 {
		t.Errorf("params = %d/%v", call.MaxTokens, call.Temperature)
	}
}

func TestGenerateExercises_ReturnsWhatTheModelReturned(t *testing.T) {
	c, _ := newTestClient(llm.MockResponse{Text: exerciseJSON(2, "Álgebra", "media")})

	exercises, err := c.GenerateExercises(context.Background(), ExerciseRequest{Topic: "Álgebra", Count: 5})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(exercises) != 2 {
		t.Fatalf("got %d exercises, want the 2 the model returned", len(exercises))
	}
}

func TestGenerateExercises_DefaultsMissingFields(t *testing.T) {
	c, _ := newTestClient(llm.MockResponse{
		Text: `[{"enunciado": "2 + 2", "respuestaCorrecta": 4}, {"opciones": ["a", ""]}]`,
	})

	exercises, err := c.GenerateExercises(context.Background(), ExerciseRequest{
		Grade: "1", Topic: "Sumas", Difficulty: Medium, Count: 2,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	first := exercises[0]
	if first.CorrectAnswer != "4" {
		t.Errorf("numeric answer = %q, want \"4\"", first.CorrectAnswer)
	}
	if first.Topic != "Sumas" || first.Grade != "1" || first.Difficulty != Medium {
		t.Errorf("request values not used as defaults: %+v", first)
	}

	second := exercises[1]
	if second.CorrectAnswer != PlaceholderAnswer || second.Statement != PlaceholderStatement {
		t.Errorf("placeholders not applied: %+v", second)
	}
	if len(second.Options) != 1 {
		t.Errorf("blank options should be dropped: %v", second.Options)
	}
}

func TestNormalize_RecordsDefaultedFields(t *testing.T) {
	statement := text("3 x 4")
	n := normalize(rawExercise{Enunciado: &statement}, ExerciseRequest{Topic: "Multiplicación", Difficulty: Basic})

	want := []string{"respuestaCorrecta", "explicacion", "tema", "grado", "dificultad"}
	if strings.Join(n.Defaulted, ",") != strings.Join(want, ",") {
		t.Errorf("Defaulted = %v, want %v", n.Defaulted, want)
	}
}

func TestGenerateExercises_TransportFailure(t *testing.T) {
	c, _ := newTestClient(llm.MockResponse{
		Err: &llm.ErrProviderUnavailable{StatusCode: 500, Err: errors.New("internal error")},
	})

	_, err := c.GenerateExercises(context.Background(), ExerciseRequest{Topic: "Fracciones", Count: 3})

	var gf *GenerationFailure
	if !errors.As(err, &gf) {
		t.Fatalf("expected GenerationFailure, got %T: %v", err, err)
	}
	var te *TransportError
	if !errors.As(err, &te) || te.Status != 500 {
		t.Fatalf("expected TransportError with status 500, got %v", err)
	}
}

func TestGenerateExercises_ParseFailure(t *testing.T) {
	c, _ := newTestClient(llm.MockResponse{Text: "No puedo generar ejercicios ahora."})

	_, err := c.GenerateExercises(context.Background(), ExerciseRequest{Topic: "Fracciones", Count: 3})

	var pe *extract.ParseError
	if !errors.As(err, &pe) {
		t.Fatalf("expected ParseError, got %T: %v", err, err)
	}
}

func TestGenerateExercises_RejectsBadInput(t *testing.T) {
	tests := []struct {
		name  string
		req   ExerciseRequest
		field string
	}{
		{"blank topic", ExerciseRequest{Topic: "  ", Count: 3}, "topic"},
		{"zero count", ExerciseRequest{Topic: "Fracciones"}, "count"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, mock := newTestClient()
			_, err := c.GenerateExercises(context.Background(), tt.req)
			var ue *UserInputError
			if !errors.As(err, &ue) || ue.Field != tt.field {
				t.Fatalf("expected UserInputError on %s, got %v", tt.field, err)
			}
			if mock.CallCount() != 0 {
				t.Error("provider should not be called")
			}
		})
	}
}

type fakeHistory struct {
	entries []PriorPerformance
	err     error
}

func (f fakeHistory) PriorPerformance(context.Context, string) ([]PriorPerformance, error) {
	return f.entries, f.err
}

func TestGenerateExercises_PersonalizesFromHistory(t *testing.T) {
	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	var entries []PriorPerformance
	for i := 0; i < 7; i++ {
		entries = append(entries, PriorPerformance{
			Date: base.AddDate(0, 0, i), Topic: "fracciones equivalentes", Score: float64(40 + i),
			Advice: fmt.Sprintf("consejo %d", i),
		})
	}
	entries = append(entries, PriorPerformance{Date: base, Topic: "Geometría", Score: 10, Advice: "triángulos"})

	mock := llm.NewMockProvider(llm.MockResponse{Text: exerciseJSON(1, "Fracciones", "media")})
	c := New(mock, DefaultConfig(), fakeHistory{entries: entries}, nil)

	if _, err := c.GenerateExercises(context.Background(), ExerciseRequest{
		Topic: "Fracciones", Count: 1, StudentID: "st-1",
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	prompt := mock.LastCall().Messages[0].Content
	if !strings.Contains(prompt, "Historial reciente") {
		t.Fatal("personalization block missing")
	}
	if strings.Contains(prompt, "triángulos") {
		t.Error("unrelated topic leaked into the prompt")
	}
	if !strings.Contains(prompt, "consejo 6") || strings.Contains(prompt, "consejo 1") {
		t.Error("expected the 5 newest matching entries only")
	}
}

func TestGenerateExercises_HistoryFailureIsIgnored(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Text: exerciseJSON(1, "Fracciones", "basica")})
	c := New(mock, DefaultConfig(), fakeHistory{err: errors.New("backend down")}, nil)

	exercises, err := c.GenerateExercises(context.Background(), ExerciseRequest{Topic: "Fracciones", Count: 1, StudentID: "st-1"})
	if err != nil || len(exercises) != 1 {
		t.Fatalf("history failure should not fail generation: %v", err)
	}
	if strings.Contains(mock.LastCall().Messages[0].Content, "Historial") {
		t.Error("no personalization expected without history")
	}
}

func TestGenerateHint(t *testing.T) {
	ex := Exercise{ID: "e1", Statement: "¿Cuánto es 3/4 de 8?", Difficulty: Basic, Topic: "Fracciones", CorrectAnswer: "6"}

	tests := []struct {
		name string
		resp llm.MockResponse
		want string
	}{
		{"fenced", llm.MockResponse{Text: "```json\n{\"pista\": \"Divide 8 en 4 partes.\"}\n```"}, "Divide 8 en 4 partes."},
		{"transport failure", llm.MockResponse{Err: &llm.ErrRateLimit{Err: errors.New("slow")}}, HintUnavailable},
		{"garbage", llm.MockResponse{Text: "lo siento"}, HintUnavailable},
		{"empty hint", llm.MockResponse{Text: `{"pista": "  "}`}, HintUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, mock := newTestClient(tt.resp)
			if got := c.GenerateHint(context.Background(), ex, ""); got != tt.want {
				t.Errorf("GenerateHint() = %q, want %q", got, tt.want)
			}
			if p := mock.LastCall().Messages[0].Content; strings.Contains(p, "Respuesta correcta") {
				t.Error("hint prompt must not reveal the answer")
			}
		})
	}
}

func TestValidateAnswer_IdenticalAnswerIsCorrect(t *testing.T) {
	c, mock := newTestClient()
	ex := Exercise{ID: "e1", Statement: "1/2 + 1/4", CorrectAnswer: "3/4", Explanation: "Común denominador 4."}

	v, err := c.ValidateAnswer(context.Background(), ValidationInput{Exercise: ex, Answer: "3/4"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !v.IsCorrect || !v.Local {
		t.Fatalf("identical answer must be correct locally: %+v", v)
	}
	if mock.CallCount() != 0 {
		t.Error("no model call expected")
	}
}

func TestValidateAnswer_ModelVerdict(t *testing.T) {
	c, mock := newTestClient(llm.MockResponse{
		Text: `{"esCorrecta": true, "explicacion": "Tres cuartos es lo mismo.", "sugerencias": []}`,
	})
	ex := Exercise{ID: "e1", Statement: "1/2 + 1/4", CorrectAnswer: "3/4"}

	v, err := c.ValidateAnswer(context.Background(), ValidationInput{Exercise: ex, Answer: "tres cuartos"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !v.IsCorrect || v.Local || v.Explanation == "" {
		t.Fatalf("unexpected verdict: %+v", v)
	}

	call := mock.LastCall()
	if !strings.Contains(call.System, "conceptualmente equivalente") || !strings.Contains(call.Messages[0].Content, "conceptualmente equivalente") {
		t.Error("leniency rules must appear in both system and user prompts")
	}
	if call.Temperature != 0.1 {
		t.Errorf("temperature = %v", call.Temperature)
	}
}

func TestValidateAnswer_WithoutProvider(t *testing.T) {
	c := New(nil, DefaultConfig(), nil, nil)
	ex := Exercise{ID: "e1", Statement: "2 x 3", CorrectAnswer: "6"}

	v, err := c.ValidateAnswer(context.Background(), ValidationInput{Exercise: ex, Answer: "6"})
	if err != nil || !v.IsCorrect {
		t.Fatalf("exact answer must validate locally: %+v, %v", v, err)
	}

	_, err = c.ValidateAnswer(context.Background(), ValidationInput{Exercise: ex, Answer: "seis"})
	if !errors.Is(err, ErrNoProvider) {
		t.Fatalf("err = %v, want ErrNoProvider", err)
	}
	if hint := c.GenerateHint(context.Background(), ex, ""); hint != HintUnavailable {
		t.Errorf("hint = %q", hint)
	}
}

func TestValidateAnswer_Failures(t *testing.T) {
	ex := Exercise{ID: "e1", Statement: "2 x 3", CorrectAnswer: "6"}

	t.Run("missing verdict", func(t *testing.T) {
		c, _ := newTestClient(llm.MockResponse{Text: `{"explicacion": "no sé"}`})
		_, err := c.ValidateAnswer(context.Background(), ValidationInput{Exercise: ex, Answer: "5"})
		var vr *ValidationRefusal
		if !errors.As(err, &vr) {
			t.Fatalf("expected ValidationRefusal, got %v", err)
		}
		if len(vr.Missing) != 1 || vr.Missing[0] != "esCorrecta" {
			t.Errorf("Missing = %v", vr.Missing)
		}
	})

	t.Run("unparseable", func(t *testing.T) {
		c, _ := newTestClient(llm.MockResponse{Text: "Creo que sí."})
		_, err := c.ValidateAnswer(context.Background(), ValidationInput{Exercise: ex, Answer: "5"})
		var pe *extract.ParseError
		if !errors.As(err, &pe) {
			t.Fatalf("expected ParseError, got %v", err)
		}
	})

	t.Run("empty answer", func(t *testing.T) {
		c, mock := newTestClient()
		_, err := c.ValidateAnswer(context.Background(), ValidationInput{Exercise: ex, Answer: " "})
		var ue *UserInputError
		if !errors.As(err, &ue) {
			t.Fatalf("expected UserInputError, got %v", err)
		}
		if mock.CallCount() != 0 {
			t.Error("no model call expected")
		}
	})
}

func sessionFixture(kind Kind) SessionData {
	exercises := []Exercise{
		{ID: "a", Statement: "1+1", CorrectAnswer: "2"},
		{ID: "b", Statement: "2+2", CorrectAnswer: "4"},
		{ID: "c", Statement: "3+3", CorrectAnswer: "6"},
	}
	attempts := []Attempt{
		{ExerciseID: "a", AnswerText: "2", IsCorrect: true},
		{ExerciseID: "b", AnswerText: "5"},
		{ExerciseID: "b", AnswerText: "4", IsCorrect: true, HintsUsed: 2},
		{ExerciseID: "c", AnswerText: "7", HintsUsed: 1},
		{ExerciseID: "c", AnswerText: "8", HintsUsed: 1},
		{ExerciseID: "c", AnswerText: "9", HintsUsed: 1},
	}
	return SessionData{Kind: kind, Grade: "2", Topic: "Sumas", Exercises: exercises, Attempts: attempts, TotalTime: 95 * time.Second}
}

func TestComputeStats(t *testing.T) {
	s := ComputeStats(sessionFixture(KindPractice))
	want := Stats{Total: 3, Correct: 2, Incorrect: 1, Score: 67, Attempts: 6, Hints: 3}
	if s != want {
		t.Errorf("ComputeStats() = %+v, want %+v", s, want)
	}
	if ComputeStats(SessionData{}).Score != 0 {
		t.Error("empty session should score 0")
	}
}

func TestGenerateReport(t *testing.T) {
	c, mock := newTestClient(llm.MockResponse{
		Text: `{"reporteDetallado": "Buen trabajo en sumas.", "consejos": "Practica sumas con llevadas."}`,
	})

	report, stats, err := c.GenerateReport(context.Background(), sessionFixture(KindAssigned))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report.DetailedReport == "" || report.Advice == "" {
		t.Fatalf("empty report: %+v", report)
	}
	if stats.Score != 67 {
		t.Errorf("score = %d, want 67", stats.Score)
	}

	prompt := mock.LastCall().Messages[0].Content
	for _, want := range []string{"evaluación", "Recomendaciones para el profesor", "1800", "1200", "Puntuación: 67%"} {
		if !strings.Contains(prompt, want) {
			t.Errorf("assigned report prompt missing %q", want)
		}
	}
}

func TestGenerateReport_PracticeWording(t *testing.T) {
	c, mock := newTestClient(llm.MockResponse{Text: `{"reporteDetallado": "x", "consejos": "y"}`})
	if _, _, err := c.GenerateReport(context.Background(), sessionFixture(KindPractice)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	prompt := mock.LastCall().Messages[0].Content
	if !strings.Contains(prompt, "sesión de práctica") || strings.Contains(prompt, "Recomendaciones para el profesor") {
		t.Error("practice wording expected")
	}
}

func TestGenerateReport_Failure(t *testing.T) {
	tests := []llm.MockResponse{
		{Err: &llm.ErrProviderUnavailable{StatusCode: 503, Err: errors.New("down")}},
		{Text: "sin JSON"},
		{Text: `{"otro": 1}`},
	}
	for i, resp := range tests {
		c, _ := newTestClient(resp)
		_, stats, err := c.GenerateReport(context.Background(), sessionFixture(KindPractice))
		var rf *ReportGenerationFailure
		if !errors.As(err, &rf) {
			t.Errorf("case %d: expected ReportGenerationFailure, got %v", i, err)
		}
		if stats.Total != 3 {
			t.Errorf("case %d: stats should be computed regardless", i)
		}
	}
}

func TestGenerateExplanation(t *testing.T) {
	ex := Exercise{ID: "e1", Statement: "5 x 6", CorrectAnswer: "30", Explanation: "5 veces 6 es 30."}

	c, _ := newTestClient(llm.MockResponse{Text: `{"explicacion": "1. Suma 6 cinco veces. 2. Obtienes 30."}`})
	if got := c.GenerateExplanation(context.Background(), ex, "25"); !strings.HasPrefix(got, "1. Suma") {
		t.Errorf("GenerateExplanation() = %q", got)
	}

	c, _ = newTestClient(llm.MockResponse{Err: &llm.ErrProviderUnavailable{Err: errors.New("offline")}})
	if got := c.GenerateExplanation(context.Background(), ex, "25"); got != ex.Explanation {
		t.Errorf("fallback = %q, want the exercise explanation", got)
	}
}
