package llm

import (
	"errors"
	"testing"
)

func verdictSchema() *Schema {
	return &Schema{
		Name: "test-verdict",
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
}

func TestValidateJSON(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		wantErr bool
	}{
		{"complete", `{"esCorrecta":true,"explicacion":"ok","sugerencias":["a"]}`, false},
		{"without optional", `{"esCorrecta":false,"explicacion":"no"}`, false},
		{"missing required", `{"explicacion":"ok"}`, true},
		{"wrong type", `{"esCorrecta":"si","explicacion":"ok"}`, true},
		{"not json", `esCorrecta: true`, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateJSON(verdictSchema(), []byte(tt.raw))
			if (err != nil) != tt.wantErr {
				t.Fatalf("ValidateJSON() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				var inv *ErrInvalidResponse
				if !errors.As(err, &inv) {
					t.Fatalf("expected ErrInvalidResponse, got %T", err)
				}
			}
		})
	}
}

func TestValidateJSON_NilSchema(t *testing.T) {
	if err := ValidateJSON(nil, []byte(`anything`)); err != nil {
		t.Fatalf("nil schema should accept everything, got %v", err)
	}
}
