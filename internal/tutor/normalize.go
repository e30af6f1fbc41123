package tutor

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// Placeholders substituted for fields the model left out.
const (
	PlaceholderStatement   = "Enunciado no disponible"
	PlaceholderAnswer      = "Respuesta no disponible"
	PlaceholderExplanation = "Explicación no disponible"
)

// text accepts a JSON string, number or boolean; models are loose about
// answer types.
type text string

func (t *text) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*t = text(s)
		return nil
	}
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	switch x := v.(type) {
	case float64:
		*t = text(strconv.FormatFloat(x, 'f', -1, 64))
	case bool:
		*t = text(strconv.FormatBool(x))
	case nil:
		*t = ""
	default:
		*t = text(bytes.TrimSpace(b))
	}
	return nil
}

// rawExercise is one exercise as the model returned it. Every field is
// optional.
type rawExercise struct {
	ID                *text  `json:"id"`
	Enunciado         *text  `json:"enunciado"`
	Opciones          []text `json:"opciones"`
	RespuestaCorrecta *text  `json:"respuestaCorrecta"`
	Explicacion       *text  `json:"explicacion"`
	Dificultad        *text  `json:"dificultad"`
	Tema              *text  `json:"tema"`
	Grado             *text  `json:"grado"`
}

type rawExerciseSet struct {
	Ejercicios []rawExercise `json:"ejercicios"`
}

func value(t *text) string {
	if t == nil {
		return ""
	}
	return strings.TrimSpace(string(*t))
}

// normalize turns a raw exercise into a complete Exercise. Missing fields
// take a placeholder or the request's value and are listed in Defaulted.
// Every exercise gets a fresh session-local ID.
func normalize(raw rawExercise, req ExerciseRequest) NormalizedExercise {
	var n NormalizedExercise
	pick := func(field, got, fallback string) string {
		if got != "" {
			return got
		}
		n.Defaulted = append(n.Defaulted, field)
		return fallback
	}

	n.ID = uuid.NewString()
	n.Statement = pick("enunciado", value(raw.Enunciado), PlaceholderStatement)
	n.CorrectAnswer = pick("respuestaCorrecta", value(raw.RespuestaCorrecta), PlaceholderAnswer)
	n.Explanation = pick("explicacion", value(raw.Explicacion), PlaceholderExplanation)
	n.Topic = pick("tema", value(raw.Tema), req.Topic)
	n.Grade = pick("grado", value(raw.Grado), req.Grade)

	if d, ok := ParseDifficulty(value(raw.Dificultad)); ok {
		n.Difficulty = d
	} else {
		n.Defaulted = append(n.Defaulted, "dificultad")
		n.Difficulty = req.Difficulty
	}

	n.Options = make([]string, 0, len(raw.Opciones))
	for _, o := range raw.Opciones {
		if s := strings.TrimSpace(string(o)); s != "" {
			n.Options = append(n.Options, s)
		}
	}
	return n
}

// decodeExercises accepts {"ejercicios": [...]} or a bare array.
func decodeExercises(doc json.RawMessage) ([]rawExercise, error) {
	if len(doc) > 0 && doc[0] == '[' {
		var list []rawExercise
		err := json.Unmarshal(doc, &list)
		return list, err
	}
	var set rawExerciseSet
	err := json.Unmarshal(doc, &set)
	return set.Ejercicios, err
}
