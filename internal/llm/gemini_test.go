package llm

import (
	"fmt"
	"testing"

	"google.golang.org/genai"
)

func TestGeminiModelMapping(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"gemini-flash", "gemini-2.0-flash"},
		{"gemini-pro", "gemini-2.0-pro"},
		{"gemini-2.5-flash", "gemini-2.5-flash"},
	}
	for _, tt := range tests {
		if got := resolveModel(tt.input, geminiModels); got != tt.expected {
			t.Errorf("resolveModel(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}

func TestBuildGeminiSchema(t *testing.T) {
	def := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"esCorrecta":  map[string]any{"type": "boolean"},
			"explicacion": map[string]any{"type": "string"},
			"dificultad":  map[string]any{"type": "string", "enum": []any{"basica", "media", "avanzada"}},
			"sugerencias": map[string]any{
				"type":  "array",
				"items": map[string]any{"type": "string"},
			},
		},
		"required": []any{"esCorrecta", "explicacion"},
	}

	schema := buildGeminiSchema(def)

	if schema.Type != genai.TypeObject {
		t.Fatalf("expected OBJECT type, got %s", schema.Type)
	}
	if len(schema.Properties) != 4 {
		t.Fatalf("expected 4 properties, got %d", len(schema.Properties))
	}
	if schema.Properties["esCorrecta"].Type != genai.TypeBoolean {
		t.Fatalf("expected BOOLEAN, got %s", schema.Properties["esCorrecta"].Type)
	}
	if len(schema.Properties["dificultad"].Enum) != 3 {
		t.Fatalf("expected 3 enum values, got %d", len(schema.Properties["dificultad"].Enum))
	}
	if schema.Properties["sugerencias"].Items.Type != genai.TypeString {
		t.Fatalf("expected STRING items, got %s", schema.Properties["sugerencias"].Items.Type)
	}
	if len(schema.Required) != 2 {
		t.Fatalf("expected 2 required fields, got %d", len(schema.Required))
	}
}

func TestMapGeminiError(t *testing.T) {
	err := mapGeminiError(fmt.Errorf("generate: %w", genai.APIError{Code: 503, Message: "overloaded"}))
	if got := StatusCode(err); got != 503 {
		t.Fatalf("StatusCode = %d, want 503", got)
	}

	err = mapGeminiError(genai.APIError{Code: 429})
	var rl *ErrRateLimit
	if !asRateLimit(err, &rl) {
		t.Fatalf("expected ErrRateLimit, got %T", err)
	}
}

func asRateLimit(err error, target **ErrRateLimit) bool {
	e, ok := err.(*ErrRateLimit)
	if ok {
		*target = e
	}
	return ok
}
