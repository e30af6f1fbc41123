// Package extract pulls a JSON document out of free-form model output.
//
// Chat models are asked for JSON but often wrap it in markdown fences or
// surround it with prose. A Chain tries a fixed list of Parsers in order
// and returns the first document one of them recovers.
package extract

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// Parser recovers a JSON document from raw model output.
type Parser interface {
	Name() string
	Parse(raw string) (json.RawMessage, error)
}

var errNoCandidate = errors.New("no candidate found")

// DirectJSON accepts output that is a JSON document as a whole.
type DirectJSON struct{}

func (DirectJSON) Name() string { return "direct" }

func (DirectJSON) Parse(raw string) (json.RawMessage, error) {
	return validDocument(strings.TrimSpace(raw))
}

var (
	jsonFence = regexp.MustCompile("(?is)```json\\s*(.*?)```")
	codeFence = regexp.MustCompile("(?s)```[A-Za-z]*\\s*(.*?)```")
)

// FencedJSONBlock accepts the body of the first ```json fence.
type FencedJSONBlock struct{}

func (FencedJSONBlock) Name() string { return "json-fence" }

func (FencedJSONBlock) Parse(raw string) (json.RawMessage, error) {
	return fenced(jsonFence, raw)
}

// FencedCodeBlock accepts the body of the first ``` fence, whatever its
// language tag.
type FencedCodeBlock struct{}

func (FencedCodeBlock) Name() string { return "code-fence" }

func (FencedCodeBlock) Parse(raw string) (json.RawMessage, error) {
	return fenced(codeFence, raw)
}

func fenced(re *regexp.Regexp, raw string) (json.RawMessage, error) {
	m := re.FindStringSubmatch(raw)
	if m == nil {
		return nil, errNoCandidate
	}
	return validDocument(strings.TrimSpace(m[1]))
}

// FirstBraceSpan accepts the span from the first '{' to the last '}'.
type FirstBraceSpan struct{}

func (FirstBraceSpan) Name() string { return "brace-span" }

func (FirstBraceSpan) Parse(raw string) (json.RawMessage, error) {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start < 0 || end <= start {
		return nil, errNoCandidate
	}
	return validDocument(raw[start : end+1])
}

// validDocument accepts JSON objects and arrays; bare scalars are not a
// useful model reply.
func validDocument(s string) (json.RawMessage, error) {
	if s == "" {
		return nil, errNoCandidate
	}
	if s[0] != '{' && s[0] != '[' {
		return nil, fmt.Errorf("not an object or array")
	}
	var v any
	if err := json.Unmarshal([]byte(s), &v); err != nil {
		return nil, err
	}
	return json.RawMessage(s), nil
}

// Reason is one parser's failure.
type Reason struct {
	Parser string
	Err    error
}

// ParseError reports that no parser recovered a document. Reasons holds
// every parser's failure in the order tried.
type ParseError struct {
	Raw     string
	Reasons []Reason
}

func (e *ParseError) Error() string {
	parts := make([]string, len(e.Reasons))
	for i, r := range e.Reasons {
		parts[i] = fmt.Sprintf("%s: %v", r.Parser, r.Err)
	}
	return "could not extract JSON from model output (" + strings.Join(parts, "; ") + ")"
}

// Chain tries each Parser in order.
type Chain []Parser

// Default is direct parse, ```json fence, ``` fence, brace span.
var Default = Chain{DirectJSON{}, FencedJSONBlock{}, FencedCodeBlock{}, FirstBraceSpan{}}

// Parse returns the first document recovered, or a *ParseError listing
// why every parser failed.
func (c Chain) Parse(raw string) (json.RawMessage, error) {
	perr := &ParseError{Raw: raw}
	for _, p := range c {
		doc, err := p.Parse(raw)
		if err == nil {
			return doc, nil
		}
		perr.Reasons = append(perr.Reasons, Reason{Parser: p.Name(), Err: err})
	}
	return nil, perr
}

// Decode extracts a document with c and unmarshals it into v. A document
// that does not fit v is reported as a *ParseError too.
func (c Chain) Decode(raw string, v any) error {
	doc, err := c.Parse(raw)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(doc, v); err != nil {
		return &ParseError{Raw: raw, Reasons: []Reason{{Parser: "decode", Err: err}}}
	}
	return nil
}

// Decode runs the Default chain.
func Decode(raw string, v any) error {
	return Default.Decode(raw, v)
}
