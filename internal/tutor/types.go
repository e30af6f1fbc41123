package tutor

import (
	"strings"
	"time"
)

// Difficulty is an exercise difficulty level. Values are the Spanish
// labels the prompts and the backend use.
type Difficulty string

const (
	Basic    Difficulty = "basica"
	Medium   Difficulty = "media"
	Advanced Difficulty = "avanzada"
)

// Difficulties lists the levels in increasing order.
var Difficulties = []Difficulty{Basic, Medium, Advanced}

// Label returns the accented display name.
func (d Difficulty) Label() string {
	switch d {
	case Basic:
		return "Básica"
	case Medium:
		return "Media"
	case Advanced:
		return "Avanzada"
	default:
		return string(d)
	}
}

// ParseDifficulty accepts the Spanish labels with or without accents and
// their English equivalents.
func ParseDifficulty(s string) (Difficulty, bool) {
	switch fold(s) {
	case "basica", "basico", "basic", "facil", "easy":
		return Basic, true
	case "media", "medio", "medium", "intermedia", "intermedio":
		return Medium, true
	case "avanzada", "avanzado", "advanced", "dificil", "hard":
		return Advanced, true
	default:
		return "", false
	}
}

// ExerciseRequest asks for a batch of exercises.
type ExerciseRequest struct {
	Grade      string     `json:"grade"`
	Topic      string     `json:"topic"`
	Difficulty Difficulty `json:"difficulty"`
	Count      int        `json:"count"`
	StudentID  string     `json:"studentId,omitempty"`
}

// Exercise is one math question. Options is empty for open answers.
type Exercise struct {
	ID            string     `json:"id"`
	Statement     string     `json:"statement"`
	Options       []string   `json:"options"`
	CorrectAnswer string     `json:"correctAnswer"`
	Explanation   string     `json:"explanation"`
	Difficulty    Difficulty `json:"difficulty"`
	Topic         string     `json:"topic"`
	Grade         string     `json:"grade"`
}

// NormalizedExercise is an Exercise plus the names of the fields that
// normalization had to fill in.
type NormalizedExercise struct {
	Exercise
	Defaulted []string
}

// Attempt is one submitted answer. HintsUsed counts the hints shown for
// the exercise up to this attempt.
type Attempt struct {
	ID             string        `json:"id"`
	ExerciseID     string        `json:"exerciseId"`
	AnswerText     string        `json:"answerText"`
	IsCorrect      bool          `json:"isCorrect"`
	HintsUsed      int           `json:"hintsUsed"`
	AttemptedAt    time.Time     `json:"attemptedAt"`
	ResolutionTime time.Duration `json:"resolutionTime"`
}

// Report is the model's free-text performance analysis.
type Report struct {
	DetailedReport string `json:"reporteDetallado"`
	Advice         string `json:"consejos"`
}

// PriorPerformance summarizes an earlier report for personalization.
type PriorPerformance struct {
	Date          time.Time
	Topic         string
	Score         float64
	Advice        string
	ReportExcerpt string
}

// Kind tags a session as free practice or an assigned test. The values
// double as the backend's practice type tag.
type Kind string

const (
	KindPractice Kind = "practica-ia"
	KindAssigned Kind = "evaluacion"
)

// SessionData is everything GenerateReport needs about a finished session.
type SessionData struct {
	Kind            Kind          `json:"kind"`
	StudentID       string        `json:"studentId,omitempty"`
	Grade           string        `json:"grade"`
	Topic           string        `json:"topic"`
	Difficulty      Difficulty    `json:"difficulty,omitempty"`
	Exercises       []Exercise    `json:"exercises"`
	Attempts        []Attempt     `json:"attempts"`
	TotalTime       time.Duration `json:"totalTime"`
	SessionDuration time.Duration `json:"sessionDuration"`
}

// ValidationInput is a student answer to check.
type ValidationInput struct {
	Exercise Exercise `json:"exercise"`
	Answer   string   `json:"answer"`
}

// Validation is the verdict on one answer. Local is set when the answer
// matched without asking the model.
type Validation struct {
	IsCorrect   bool     `json:"isCorrect"`
	Explanation string   `json:"explanation"`
	Suggestions []string `json:"suggestions"`
	Local       bool     `json:"local,omitempty"`
}

// First runes of s, with an ellipsis when cut.
func excerpt(s string, n int) string {
	s = strings.TrimSpace(s)
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return strings.TrimSpace(string(r[:n])) + "…"
}
