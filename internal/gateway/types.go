package gateway

import "time"

// Roles.
const (
	RoleStudent = "estudiante"
	RoleTeacher = "profesor"
)

// User is a backend profile.
type User struct {
	ID          string `json:"id"`
	Name        string `json:"nombre"`
	LastName    string `json:"apellido,omitempty"`
	Email       string `json:"email"`
	Role        string `json:"rol"`
	Grade       string `json:"grado,omitempty"`
	School      string `json:"institucion,omitempty"`
	Description string `json:"descripcion,omitempty"`
}

// FullName joins first and last name.
func (u User) FullName() string {
	if u.LastName == "" {
		return u.Name
	}
	return u.Name + " " + u.LastName
}

// Credentials log a user in.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Registration creates an account.
type Registration struct {
	Name     string `json:"nombre"`
	LastName string `json:"apellido,omitempty"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"rol"`
	Grade    string `json:"grado,omitempty"`
}

// ProfileUpdate holds the editable profile fields; nil fields are left
// unchanged.
type ProfileUpdate struct {
	Name        *string `json:"nombre,omitempty"`
	LastName    *string `json:"apellido,omitempty"`
	Grade       *string `json:"grado,omitempty"`
	School      *string `json:"institucion,omitempty"`
	Description *string `json:"descripcion,omitempty"`
}

// Association request states.
const (
	RequestPending  = "pendiente"
	RequestAccepted = "aceptada"
	RequestRejected = "rechazada"
)

// AssociationRequest asks a teacher to take on a student.
type AssociationRequest struct {
	ID        string    `json:"id"`
	StudentID string    `json:"estudianteId"`
	TeacherID string    `json:"profesorId"`
	Student   *User     `json:"estudiante,omitempty"`
	Teacher   *User     `json:"profesor,omitempty"`
	Message   string    `json:"mensaje,omitempty"`
	Status    string    `json:"estado"`
	CreatedAt time.Time `json:"fechaCreacion"`
}

// Group is a teacher's class.
type Group struct {
	ID          string   `json:"id"`
	Name        string   `json:"nombre"`
	Description string   `json:"descripcion,omitempty"`
	Grade       string   `json:"grado,omitempty"`
	TeacherID   string   `json:"profesorId,omitempty"`
	StudentIDs  []string `json:"estudiantes,omitempty"`
}

// Announcement is a message from a teacher to a group.
type Announcement struct {
	ID        string    `json:"id"`
	GroupID   string    `json:"grupoId,omitempty"`
	Title     string    `json:"titulo"`
	Body      string    `json:"contenido"`
	AuthorID  string    `json:"autorId,omitempty"`
	Read      bool      `json:"leido"`
	CreatedAt time.Time `json:"fechaCreacion"`
}

// Question is one question of a test or template.
type Question struct {
	ID            string   `json:"id"`
	Statement     string   `json:"enunciado"`
	Options       []string `json:"opciones,omitempty"`
	CorrectAnswer string   `json:"respuestaCorrecta"`
	Explanation   string   `json:"explicacion,omitempty"`
	Points        int      `json:"puntos,omitempty"`
}

// Template is a reusable set of questions.
type Template struct {
	ID          string     `json:"id"`
	Title       string     `json:"titulo"`
	Description string     `json:"descripcion,omitempty"`
	Topic       string     `json:"tema,omitempty"`
	Grade       string     `json:"grado,omitempty"`
	Difficulty  string     `json:"dificultad,omitempty"`
	Questions   []Question `json:"preguntas"`
}

// Test is a teacher-authored or AI-generated test. TimeLimit is in
// minutes; 0 means untimed.
type Test struct {
	ID           string     `json:"id"`
	Title        string     `json:"titulo"`
	Instructions string     `json:"instrucciones,omitempty"`
	Topic        string     `json:"tema,omitempty"`
	Grade        string     `json:"grado,omitempty"`
	Difficulty   string     `json:"dificultad,omitempty"`
	TimeLimit    int        `json:"tiempoLimite,omitempty"`
	TemplateID   string     `json:"plantillaId,omitempty"`
	Questions    []Question `json:"preguntas"`
	AIGenerated  bool       `json:"generadoPorIA,omitempty"`
}

// Duration returns the time limit, or 0 when untimed.
func (t Test) Duration() time.Duration {
	return time.Duration(t.TimeLimit) * time.Minute
}

// Assignment states.
const (
	AssignmentPending   = "pendiente"
	AssignmentCompleted = "completada"
)

// Assignment gives a test to a group or a single student.
type Assignment struct {
	ID        string     `json:"id"`
	TestID    string     `json:"testId"`
	Test      *Test      `json:"test,omitempty"`
	GroupID   string     `json:"grupoId,omitempty"`
	StudentID string     `json:"estudianteId,omitempty"`
	DueDate   *time.Time `json:"fechaLimite,omitempty"`
	Status    string     `json:"estado,omitempty"`
}

// SubmittedAnswer is the outcome of one question.
type SubmittedAnswer struct {
	QuestionID string `json:"preguntaId"`
	Answer     string `json:"respuesta"`
	IsCorrect  bool   `json:"esCorrecta"`
	Attempts   int    `json:"intentos"`
	HintsUsed  int    `json:"pistasUsadas"`
	TimeMs     int64  `json:"tiempoMs"`
}

// TestSubmission is sent when a student finishes an assigned test.
// TotalTime is in seconds.
type TestSubmission struct {
	AssignmentID string            `json:"asignacionId,omitempty"`
	Answers      []SubmittedAnswer `json:"respuestas"`
	TotalTime    int               `json:"tiempoTotal"`
	Score        int               `json:"puntuacion"`
}

// SubmissionResult is the backend's grading of a submission.
type SubmissionResult struct {
	ID    string `json:"id"`
	Score int    `json:"puntuacion"`
}

// Progress is a student's aggregate record.
type Progress struct {
	StudentID      string          `json:"estudianteId"`
	TotalSessions  int             `json:"totalSesiones"`
	AverageScore   float64         `json:"promedio"`
	CompletedTests int             `json:"testsCompletados"`
	ByTopic        []TopicProgress `json:"porTema,omitempty"`
}

// TopicProgress is the per-topic slice of Progress.
type TopicProgress struct {
	Topic        string  `json:"tema"`
	Sessions     int     `json:"sesiones"`
	AverageScore float64 `json:"promedio"`
}

// PerformanceReport is a persisted session report. TotalTime and
// SessionDuration are in seconds.
type PerformanceReport struct {
	ID              string    `json:"id,omitempty"`
	StudentID       string    `json:"estudianteId"`
	Topic           string    `json:"tema"`
	Grade           string    `json:"grado"`
	TotalQuestions  int       `json:"totalPreguntas"`
	CorrectAnswers  int       `json:"respuestasCorrectas"`
	WrongAnswers    int       `json:"respuestasIncorrectas"`
	Score           int       `json:"puntuacion"`
	TotalTime       int       `json:"tiempoTotal"`
	SessionDuration int       `json:"duracionSesion"`
	PracticeType    string    `json:"tipoPractica"`
	DetailedReport  string    `json:"reporteDetallado"`
	Advice          string    `json:"consejos"`
	Date            time.Time `json:"fecha"`
}
