package practice

import (
	"errors"

	"github.com/mateai/mate/internal/extract"
	"github.com/mateai/mate/internal/tutor"
)

var (
	ErrBusy        = errors.New("Espera a que termine la operación en curso.")
	ErrWrongPhase  = errors.New("Esta acción no está disponible en este momento.")
	ErrNoHintsLeft = errors.New("Ya usaste las pistas disponibles para este ejercicio.")
	ErrCannotSkip  = errors.New("Este ejercicio no se puede omitir.")
	ErrNoQuestions = errors.New("La evaluación no tiene preguntas.")

	// ErrDiscarded is returned by a call whose session was restarted
	// while it was in flight.
	ErrDiscarded = errors.New("session restarted; result discarded")
)

// GenerationError is the banner shown when exercises could not be
// generated.
type GenerationError struct {
	Err error
}

func (e *GenerationError) Error() string {
	return "Error al generar ejercicios: " + describe(e.Err)
}

func (e *GenerationError) Unwrap() error { return e.Err }

// ValidationError is the banner shown when an answer could not be checked.
// The answer is not recorded; the student submits again.
type ValidationError struct {
	Err error
}

func (e *ValidationError) Error() string {
	return "No se pudo validar la respuesta: " + describe(e.Err)
}

func (e *ValidationError) Unwrap() error { return e.Err }

// describe renders err for students, without operation prefixes.
func describe(err error) string {
	var (
		te *tutor.TransportError
		pe *extract.ParseError
		vr *tutor.ValidationRefusal
		ue *tutor.UserInputError
	)
	switch {
	case errors.As(err, &ue):
		return ue.Message
	case errors.As(err, &te):
		return te.Error()
	case errors.As(err, &vr):
		return vr.Error()
	case errors.As(err, &pe):
		return "la respuesta del modelo no tiene el formato esperado"
	case err == nil:
		return "error desconocido"
	default:
		return err.Error()
	}
}
