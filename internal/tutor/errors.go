package tutor

import (
	"fmt"
	"strings"
)

// TransportError reports a failed call to the AI provider. Status is the
// HTTP status, or 0 when no response arrived.
type TransportError struct {
	Status int
	Err    error
}

func (e *TransportError) Error() string {
	if e.Status > 0 {
		return fmt.Sprintf("el servicio de IA respondió con error HTTP %d", e.Status)
	}
	return fmt.Sprintf("no se pudo contactar al servicio de IA: %v", e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// ValidationRefusal reports a model reply that lacks required fields.
type ValidationRefusal struct {
	Missing []string
}

func (e *ValidationRefusal) Error() string {
	return "la respuesta del modelo no incluye: " + strings.Join(e.Missing, ", ")
}

// UserInputError reports a required field left blank.
type UserInputError struct {
	Field   string
	Message string
}

func (e *UserInputError) Error() string { return e.Message }

// GenerationFailure wraps a transport or parse failure of one operation.
type GenerationFailure struct {
	Op  string
	Err error
}

func (e *GenerationFailure) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *GenerationFailure) Unwrap() error { return e.Err }

// ReportGenerationFailure reports that no report could be produced.
type ReportGenerationFailure struct {
	Err error
}

func (e *ReportGenerationFailure) Error() string {
	return fmt.Sprintf("no se pudo generar el reporte: %v", e.Err)
}

func (e *ReportGenerationFailure) Unwrap() error { return e.Err }
