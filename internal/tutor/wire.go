package tutor

import (
	"errors"
	"net/http"

	"github.com/mateai/mate/internal/extract"
)

// Request and response bodies of the /api/ai endpoints served by
// `mate serve` and called by Remote.

type ExercisesResponse struct {
	Exercises []Exercise `json:"exercises"`
}

type HintRequest struct {
	Exercise Exercise `json:"exercise"`
	Context  string   `json:"context,omitempty"`
}

type HintResponse struct {
	Hint string `json:"hint"`
}

type ReportResponse struct {
	Report Report `json:"report"`
	Stats  Stats  `json:"stats"`
}

type ExplanationRequest struct {
	Exercise Exercise `json:"exercise"`
	Answer   string   `json:"answer,omitempty"`
}

type ExplanationResponse struct {
	Explanation string `json:"explanation"`
}

// Error codes carried in ErrorBody.
const (
	CodeUserInput         = "user_input"
	CodeTransport         = "transport"
	CodeParse             = "parse_error"
	CodeValidationRefusal = "validation_refusal"
	CodeReportFailed      = "report_failed"
	CodeUnauthorized      = "unauthorized"
	CodeInternal          = "internal"
)

// ErrorBody is the error envelope of the /api/ai endpoints.
type ErrorBody struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail carries enough to rebuild the typed error on the client.
// Status is the AI provider's HTTP status for transport errors.
type ErrorDetail struct {
	Message string   `json:"message"`
	Code    string   `json:"code"`
	Field   string   `json:"field,omitempty"`
	Status  int      `json:"status,omitempty"`
	Missing []string `json:"missing,omitempty"`
}

// EncodeError maps a tutor error to an HTTP status and envelope.
func EncodeError(err error) (int, ErrorBody) {
	var (
		input   *UserInputError
		refusal *ValidationRefusal
		parse   *extract.ParseError
		trans   *TransportError
		report  *ReportGenerationFailure
	)
	d := ErrorDetail{Message: err.Error()}
	status := http.StatusInternalServerError

	switch {
	case errors.As(err, &input):
		d.Code, d.Field, d.Message = CodeUserInput, input.Field, input.Message
		return http.StatusBadRequest, ErrorBody{Error: d}
	case errors.As(err, &refusal):
		d.Code, d.Missing = CodeValidationRefusal, refusal.Missing
		status = http.StatusUnprocessableEntity
	case errors.As(err, &parse):
		d.Code = CodeParse
		status = http.StatusUnprocessableEntity
	case errors.As(err, &trans):
		d.Code, d.Status = CodeTransport, trans.Status
		status = http.StatusBadGateway
	default:
		d.Code = CodeInternal
	}

	if errors.As(err, &report) {
		d.Code = CodeReportFailed
	}
	return status, ErrorBody{Error: d}
}

// DecodeError rebuilds the typed error EncodeError produced. op names the
// failed operation for GenerationFailure.
func DecodeError(status int, body ErrorBody, op string) error {
	d := body.Error
	msg := d.Message
	if msg == "" {
		msg = http.StatusText(status)
	}
	cause := errors.New(msg)

	switch d.Code {
	case CodeUserInput:
		return &UserInputError{Field: d.Field, Message: msg}
	case CodeValidationRefusal:
		return &GenerationFailure{Op: op, Err: &ValidationRefusal{Missing: d.Missing}}
	case CodeParse:
		return &GenerationFailure{Op: op, Err: &extract.ParseError{
			Reasons: []extract.Reason{{Parser: "remote", Err: cause}},
		}}
	case CodeReportFailed:
		return &ReportGenerationFailure{Err: cause}
	case CodeTransport:
		return &GenerationFailure{Op: op, Err: &TransportError{Status: d.Status, Err: cause}}
	default:
		return &GenerationFailure{Op: op, Err: &TransportError{Status: status, Err: cause}}
	}
}
