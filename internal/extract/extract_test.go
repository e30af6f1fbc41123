package extract

import (
	"errors"
	"reflect"
	"strings"
	"testing"
)

type hint struct {
	Pista string   `json:"pista"`
	Pasos []string `json:"pasos"`
}

func TestDecode_AllFormsAgree(t *testing.T) {
	const doc = `{"pista": "Divide {el} todo en partes iguales", "pasos": ["a", "b"]}`
	want := hint{Pista: "Divide {el} todo en partes iguales", Pasos: []string{"a", "b"}}

	tests := []struct {
		name string
		raw  string
	}{
		{"standalone", doc},
		{"standalone with whitespace", "\n  " + doc + "\n"},
		{"json fence", "```json\n" + doc + "\n```"},
		{"json fence upper case", "Aquí está:\n```JSON\n" + doc + "\n```\nSuerte."},
		{"bare fence", "```\n" + doc + "\n```"},
		{"prose around braces", "Claro, aquí tienes la pista: " + doc + " ¡Ánimo!"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got hint
			if err := Decode(tt.raw, &got); err != nil {
				t.Fatalf("Decode() error = %v", err)
			}
			if !reflect.DeepEqual(got, want) {
				t.Fatalf("Decode() = %+v, want %+v", got, want)
			}
		})
	}
}

func TestChain_FirstSuccessWins(t *testing.T) {
	raw := "```json\n{\"a\": 1}\n```\nand later {\"a\": 2}"
	doc, err := Default.Parse(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(doc) != `{"a": 1}` {
		t.Fatalf("Parse() = %s, want the fenced document", doc)
	}
}

func TestChain_AggregatesReasons(t *testing.T) {
	_, err := Default.Parse("Lo siento, no puedo ayudar con eso.")

	var perr *ParseError
	if !errors.As(err, &perr) {
		t.Fatalf("expected *ParseError, got %T", err)
	}
	if len(perr.Reasons) != len(Default) {
		t.Fatalf("got %d reasons, want %d", len(perr.Reasons), len(Default))
	}
	for i, p := range Default {
		if perr.Reasons[i].Parser != p.Name() {
			t.Errorf("reason %d from %q, want %q", i, perr.Reasons[i].Parser, p.Name())
		}
	}
	if !strings.Contains(perr.Error(), "brace-span") {
		t.Errorf("error message should name every parser: %s", perr.Error())
	}
}

func TestParsers(t *testing.T) {
	tests := []struct {
		parser Parser
		raw    string
		ok     bool
	}{
		{DirectJSON{}, `[1, 2]`, true},
		{DirectJSON{}, `"just a string"`, false},
		{DirectJSON{}, "```json\n{}\n```", false},
		{FencedJSONBlock{}, "```\n{}\n```", false},
		{FencedJSONBlock{}, "```json {\"x\":1}```", true},
		{FencedCodeBlock{}, "```javascript\n{\"x\":1}\n```", true},
		{FencedCodeBlock{}, "```\nnot json\n```", false},
		{FirstBraceSpan{}, "x } y { z", false},
		{FirstBraceSpan{}, "prefix {\"x\": {\"y\": 2}} suffix", true},
		{FirstBraceSpan{}, "{\"x\": 1} and {\"y\": 2}", false},
	}

	for _, tt := range tests {
		_, err := tt.parser.Parse(tt.raw)
		if (err == nil) != tt.ok {
			t.Errorf("%s.Parse(%q) error = %v, want ok=%v", tt.parser.Name(), tt.raw, err, tt.ok)
		}
	}
}

func TestDecode_ShapeMismatch(t *testing.T) {
	var got hint
	err := Decode(`{"pista": 42}`, &got)
	var perr *ParseError
	if !errors.As(err, &perr) {
		t.Fatalf("expected *ParseError, got %v", err)
	}
	if perr.Reasons[0].Parser != "decode" {
		t.Errorf("reason = %+v", perr.Reasons[0])
	}
}
