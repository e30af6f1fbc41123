package tutor

import (
	"fmt"
	"strings"
	"time"
)

const plainMath = `No uses LaTeX ni secuencias de escape con barra invertida (por ejemplo \frac, \times, \( o \[): rompen el JSON. Escribe las expresiones en texto plano: 3/4, 2 x 5, raíz de 9, 10^2.`

const exercisesSystemPrompt = `Eres un profesor de matemáticas que crea ejercicios de práctica para estudiantes de habla hispana.
Responde siempre en español y únicamente con un objeto JSON válido, sin texto antes ni después.
` + plainMath

const exercisesFormat = `Responde con este formato JSON exacto:
{
  "ejercicios": [
    {
      "id": "1",
      "enunciado": "texto del problema",
      "opciones": ["opción A", "opción B", "opción C", "opción D"],
      "respuestaCorrecta": "texto exacto de la opción correcta",
      "explicacion": "solución paso a paso",
      "dificultad": "basica | media | avanzada",
      "tema": "tema del ejercicio",
      "grado": "grado escolar"
    }
  ]
}`

// buildExercisesPrompt renders the user message for GenerateExercises.
func buildExercisesPrompt(req ExerciseRequest, history []PriorPerformance, excerptChars int) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Genera exactamente %d ejercicios de matemáticas.\n", req.Count)
	fmt.Fprintf(&b, "Grado: %s\n", req.Grade)
	fmt.Fprintf(&b, "Tema: %s\n", req.Topic)
	fmt.Fprintf(&b, "Dificultad: %s\n", req.Difficulty)

	if len(history) > 0 {
		b.WriteString("\nHistorial reciente del estudiante en este tema:\n")
		for i, h := range history {
			fmt.Fprintf(&b, "%d. %s, puntuación %.0f%%", i+1, formatDate(h.Date), h.Score)
			if h.Advice != "" {
				fmt.Fprintf(&b, "\n   Consejos recibidos: %s", excerpt(h.Advice, excerptChars))
			}
			if h.ReportExcerpt != "" {
				fmt.Fprintf(&b, "\n   Extracto del reporte: %s", excerpt(h.ReportExcerpt, excerptChars))
			}
			b.WriteString("\n")
		}
		b.WriteString("Personaliza los ejercicios: ajusta la dificultad a esos resultados y dedica más ejercicios a los aspectos en los que el estudiante tuvo dificultades.\n")
	}

	b.WriteString("\nReglas:\n")
	b.WriteString("- Cada ejercicio tiene 4 opciones y exactamente una es correcta.\n")
	b.WriteString("- respuestaCorrecta repite el texto de la opción correcta.\n")
	b.WriteString("- Usa contextos cotidianos apropiados para la edad.\n")
	fmt.Fprintf(&b, "- %s\n\n", plainMath)
	b.WriteString(exercisesFormat)
	return b.String()
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return "fecha desconocida"
	}
	return t.Format("2006-01-02")
}

const hintSystemPrompt = `Eres un tutor de matemáticas paciente. Das pistas que guían al estudiante sin revelar la respuesta.
Responde en español y únicamente con un objeto JSON válido.
` + plainMath

func buildHintPrompt(ex Exercise, questionContext string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Ejercicio: %s\n", ex.Statement)
	if len(ex.Options) > 0 {
		fmt.Fprintf(&b, "Opciones: %s\n", strings.Join(ex.Options, " | "))
	}
	fmt.Fprintf(&b, "Dificultad: %s\n", ex.Difficulty)
	fmt.Fprintf(&b, "Tema: %s\n", ex.Topic)
	if questionContext != "" {
		fmt.Fprintf(&b, "Contexto: %s\n", questionContext)
	}
	b.WriteString("\nEscribe una pista breve (una o dos oraciones) que ayude a razonar el problema. No digas la respuesta ni cuál opción es la correcta.\n")
	b.WriteString(`Formato: {"pista": "texto de la pista"}`)
	return b.String()
}

const leniency = `Criterio de evaluación (obligatorio):
- Marca como correcta una respuesta textualmente igual a la respuesta correcta.
- Marca como correcta una respuesta numéricamente equivalente (0.5, 1/2, 0,5 y 50% son equivalentes; 3 y 3.0 también).
- Marca como correcta una respuesta conceptualmente equivalente aunque use otras palabras, unidades omitidas o distinto formato.
- Marca como correcta la letra o el número de la opción correcta.
- Solo marca como incorrecta una respuesta claramente equivocada.`

const validateSystemPrompt = `Eres un profesor de matemáticas que evalúa respuestas de estudiantes con criterio flexible.
` + leniency + `
Responde en español y únicamente con un objeto JSON válido.
` + plainMath

func buildValidatePrompt(in ValidationInput) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Ejercicio: %s\n", in.Exercise.Statement)
	if len(in.Exercise.Options) > 0 {
		b.WriteString("Opciones:\n")
		for i, o := range in.Exercise.Options {
			fmt.Fprintf(&b, "  %c) %s\n", 'a'+i, o)
		}
	}
	fmt.Fprintf(&b, "Respuesta correcta: %s\n", in.Exercise.CorrectAnswer)
	fmt.Fprintf(&b, "Respuesta del estudiante: %s\n\n", in.Answer)
	b.WriteString(leniency)
	b.WriteString("\n\nFormato:\n")
	b.WriteString(`{"esCorrecta": true, "explicacion": "por qué es correcta o incorrecta", "sugerencias": ["sugerencia breve"]}`)
	return b.String()
}

const reportSystemPrompt = `Eres un profesor de matemáticas que redacta reportes de desempeño claros, concretos y motivadores.
Responde en español y únicamente con un objeto JSON válido.
` + plainMath

// buildReportPrompt renders the report request. Assigned tests are
// described as an evaluation and get a recommendation block for the
// teacher; free practice is described as practice.
func buildReportPrompt(data SessionData, stats Stats) string {
	assigned := data.Kind == KindAssigned
	noun := "práctica"
	if assigned {
		noun = "evaluación"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Analiza esta sesión de %s de matemáticas.\n\n", noun)
	fmt.Fprintf(&b, "Grado: %s\nTema: %s\n", data.Grade, data.Topic)
	fmt.Fprintf(&b, "Ejercicios: %d\nCorrectos: %d\nIncorrectos: %d\nPuntuación: %d%%\n",
		stats.Total, stats.Correct, stats.Incorrect, stats.Score)
	fmt.Fprintf(&b, "Intentos totales: %d\nPistas usadas: %d\n", stats.Attempts, stats.Hints)
	fmt.Fprintf(&b, "Tiempo total: %s\nDuración de la sesión: %s\n\n",
		formatDuration(data.TotalTime), formatDuration(data.SessionDuration))

	b.WriteString("Detalle por ejercicio:\n")
	for i, ex := range data.Exercises {
		fmt.Fprintf(&b, "%d. %s\n   Respuesta correcta: %s\n", i+1, ex.Statement, ex.CorrectAnswer)
		attempts := attemptsFor(data.Attempts, ex.ID)
		if len(attempts) == 0 {
			b.WriteString("   Sin respuesta\n")
			continue
		}
		for j, a := range attempts {
			verdict := "incorrecta"
			if a.IsCorrect {
				verdict = "correcta"
			}
			answer := a.AnswerText
			if answer == "" {
				answer = "(vacía)"
			}
			fmt.Fprintf(&b, "   Intento %d: %q (%s, %d pistas, %s)\n",
				j+1, answer, verdict, a.HintsUsed, formatDuration(a.ResolutionTime))
		}
	}

	b.WriteString("\nEl campo reporteDetallado (máximo 1800 caracteres) cubre:\n")
	b.WriteString("1. Desempeño general\n2. Análisis por ejercicio\n3. Observaciones de comportamiento (intentos, pistas, tiempo)\n4. Fortalezas\n5. Debilidades\n")
	b.WriteString("El campo consejos (máximo 1200 caracteres) cubre:\n")
	b.WriteString("6. Próximos objetivos\n7. Estrategias de estudio\n8. Parámetros sugeridos para la próxima práctica (tema, dificultad, cantidad)\n")
	if assigned {
		b.WriteString("\nAgrega al final de consejos un bloque \"Recomendaciones para el profesor\" con acciones concretas de refuerzo para este estudiante.\n")
	}
	b.WriteString("\nFormato:\n")
	b.WriteString(`{"reporteDetallado": "análisis", "consejos": "recomendaciones"}`)
	return b.String()
}

func formatDuration(d time.Duration) string {
	if d <= 0 {
		return "0s"
	}
	return d.Round(time.Second).String()
}

const explanationSystemPrompt = `Eres un tutor de matemáticas. Explicas soluciones paso a paso con lenguaje sencillo.
Responde en español y únicamente con un objeto JSON válido.
` + plainMath

func buildExplanationPrompt(ex Exercise, studentAnswer string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Ejercicio: %s\n", ex.Statement)
	fmt.Fprintf(&b, "Respuesta correcta: %s\n", ex.CorrectAnswer)
	if studentAnswer != "" {
		fmt.Fprintf(&b, "Respuesta del estudiante: %s\n", studentAnswer)
		b.WriteString("Explica paso a paso cómo llegar a la respuesta correcta y señala el error probable del estudiante.\n")
	} else {
		b.WriteString("Explica paso a paso cómo llegar a la respuesta correcta.\n")
	}
	b.WriteString(`Formato: {"explicacion": "pasos numerados"}`)
	return b.String()
}
