package gateway

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mateai/mate/internal/tutor"
)

func newTestClient(t *testing.T, token string, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewClient(Config{BaseURL: srv.URL + "/api/"}, NewTokenSession(token))
}

func TestErrorMapping(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		want    string
		cleared bool
	}{
		{"unauthorized", 401, `{"message":"jwt expired"}`, MsgSessionExpired, true},
		{"rate limited", 429, ``, MsgTooManyRequests, false},
		{"server error", 500, `{"message":"stack trace"}`, MsgServerError, false},
		{"server message", 404, `{"message":"Test no encontrado"}`, "Test no encontrado", false},
		{"error field", 409, `{"error":"Solicitud duplicada"}`, "Solicitud duplicada", false},
		{"generic", 418, `not json`, "Error 418", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, "tok", func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, tt.body)
			})

			_, err := c.GetTest(context.Background(), "t1")
			require.Error(t, err)

			var apiErr *APIError
			require.ErrorAs(t, err, &apiErr)
			assert.Equal(t, tt.status, apiErr.Status)
			assert.Equal(t, tt.want, apiErr.Error())
			assert.Equal(t, tt.cleared, !c.Session().LoggedIn())
			assert.Equal(t, tt.status == 401, IsUnauthorized(err))
		})
	}
}

func TestUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()
	c := NewClient(Config{BaseURL: srv.URL}, nil)

	_, err := c.ListGroups(context.Background())
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 0, apiErr.Status)
	assert.Equal(t, MsgUnreachable, apiErr.Message)
}

func TestLoginPersistsSession(t *testing.T) {
	var gotAuth []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = append(gotAuth, r.Header.Get("Authorization"))
		switch r.URL.Path {
		case "/auth/login":
			var creds Credentials
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&creds))
			assert.Equal(t, "ana@example.test", creds.Email)
			_ = json.NewEncoder(w).Encode(map[string]any{
				"token": "jwt-1",
				"user":  map[string]any{"id": "u1", "nombre": "Ana", "email": creds.Email, "rol": RoleStudent, "grado": "3"},
			})
		case "/assignments":
			_, _ = io.WriteString(w, `[]`)
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	path := filepath.Join(t.TempDir(), "mate", "session.json")
	session, err := NewSession(FileStore{Path: path})
	require.NoError(t, err)
	c := NewClient(Config{BaseURL: srv.URL}, session)

	user, err := c.Login(context.Background(), Credentials{Email: "ana@example.test", Password: "secreto"})
	require.NoError(t, err)
	assert.Equal(t, "Ana", user.Name)
	assert.Equal(t, "jwt-1", session.Token())

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	reloaded, err := NewSession(FileStore{Path: path})
	require.NoError(t, err)
	assert.Equal(t, "jwt-1", reloaded.Token())
	require.NotNil(t, reloaded.User())
	assert.Equal(t, "3", reloaded.User().Grade)

	_, err = c.ListAssignments(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"", "Bearer jwt-1"}, gotAuth)

	require.NoError(t, c.Logout())
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))
	assert.False(t, session.LoggedIn())
}

func TestSubmitTest(t *testing.T) {
	c := newTestClient(t, "tok", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/tests/t%201/submit", r.URL.EscapedPath())
		var sub TestSubmission
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&sub))
		assert.Len(t, sub.Answers, 2)
		assert.Equal(t, 3, sub.Answers[1].Attempts)
		_, _ = io.WriteString(w, `{"id":"s1","puntuacion":50}`)
	})

	res, err := c.SubmitTest(context.Background(), "t 1", TestSubmission{
		Answers: []SubmittedAnswer{
			{QuestionID: "q1", Answer: "4", IsCorrect: true, Attempts: 1},
			{QuestionID: "q2", Answer: "7", Attempts: 3},
		},
		TotalTime: 120,
		Score:     50,
	})
	require.NoError(t, err)
	assert.Equal(t, 50, res.Score)
}

func TestPriorPerformance(t *testing.T) {
	long := make([]rune, 400)
	for i := range long {
		long[i] = 'a'
	}
	c := newTestClient(t, "tok", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/performance-reports", r.URL.Path)
		assert.Equal(t, "st-1", r.URL.Query().Get("estudianteId"))
		_ = json.NewEncoder(w).Encode([]PerformanceReport{{
			ID: "r1", StudentID: "st-1", Topic: "Fracciones", Score: 80,
			Advice: "Repasa equivalencias.", DetailedReport: string(long),
			Date: time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC),
		}})
	})

	var source tutor.HistorySource = c
	got, err := source.PriorPerformance(context.Background(), "st-1")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Fracciones", got[0].Topic)
	assert.Equal(t, 80.0, got[0].Score)
	assert.Equal(t, "Repasa equivalencias.", got[0].Advice)
	assert.Len(t, []rune(got[0].ReportExcerpt), reportExcerptChars+1)
}

func TestNewPerformanceReport(t *testing.T) {
	var exercises []tutor.Exercise
	var attempts []tutor.Attempt
	for _, id := range []string{"a", "b", "c", "d", "e"} {
		exercises = append(exercises, tutor.Exercise{ID: id})
		attempts = append(attempts, tutor.Attempt{ExerciseID: id, IsCorrect: true})
	}
	data := tutor.SessionData{
		Kind: tutor.KindPractice, StudentID: "st-1", Grade: "3", Topic: "Fracciones",
		Exercises: exercises, Attempts: attempts,
		TotalTime: 90*time.Second + 400*time.Millisecond, SessionDuration: 2 * time.Minute,
	}
	at := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

	payload := NewPerformanceReport(data, tutor.Report{DetailedReport: "Excelente.", Advice: "Sigue así."}, tutor.ComputeStats(data), at)

	raw, err := json.Marshal(payload)
	require.NoError(t, err)
	var m map[string]any
	require.NoError(t, json.Unmarshal(raw, &m))

	assert.Equal(t, "st-1", m["estudianteId"])
	assert.Equal(t, "Fracciones", m["tema"])
	assert.Equal(t, "3", m["grado"])
	assert.EqualValues(t, 5, m["totalPreguntas"])
	assert.EqualValues(t, 5, m["respuestasCorrectas"])
	assert.EqualValues(t, 0, m["respuestasIncorrectas"])
	assert.EqualValues(t, 100, m["puntuacion"])
	assert.EqualValues(t, 90, m["tiempoTotal"])
	assert.EqualValues(t, 120, m["duracionSesion"])
	assert.Equal(t, "practica-ia", m["tipoPractica"])
	assert.Equal(t, "Excelente.", m["reporteDetallado"])
	assert.Equal(t, "Sigue así.", m["consejos"])
	assert.Equal(t, "2026-05-01T12:00:00Z", m["fecha"])
	assert.NotContains(t, m, "id")
}

func TestMemorySessionIsIndependentPerClient(t *testing.T) {
	a := NewTokenSession("one")
	b := NewTokenSession("two")
	require.NoError(t, a.Clear())
	assert.Equal(t, "", a.Token())
	assert.Equal(t, "two", b.Token())
}

func TestEndpointRouting(t *testing.T) {
	ctx := context.Background()
	tests := []struct {
		method, path string
		call         func(c *Client) error
	}{
		{"GET", "/users/profile", func(c *Client) error { _, err := c.Profile(ctx); return err }},
		{"PUT", "/users/profile", func(c *Client) error { _, err := c.UpdateProfile(ctx, ProfileUpdate{}); return err }},
		{"GET", "/users/teachers", func(c *Client) error { _, err := c.SearchTeachers(ctx, "ana"); return err }},
		{"POST", "/association-requests", func(c *Client) error { _, err := c.CreateAssociationRequest(ctx, "t1", ""); return err }},
		{"GET", "/association-requests", func(c *Client) error { _, err := c.ListAssociationRequests(ctx, ""); return err }},
		{"PUT", "/association-requests/r1", func(c *Client) error { _, err := c.RespondAssociationRequest(ctx, "r1", true); return err }},
		{"DELETE", "/association-requests/r1", func(c *Client) error { return c.CancelAssociationRequest(ctx, "r1") }},
		{"GET", "/groups", func(c *Client) error { _, err := c.ListGroups(ctx); return err }},
		{"GET", "/groups/g1", func(c *Client) error { _, err := c.GetGroup(ctx, "g1"); return err }},
		{"POST", "/groups", func(c *Client) error { _, err := c.CreateGroup(ctx, Group{Name: "5A"}); return err }},
		{"PUT", "/groups/g1", func(c *Client) error { _, err := c.UpdateGroup(ctx, Group{ID: "g1"}); return err }},
		{"DELETE", "/groups/g1", func(c *Client) error { return c.DeleteGroup(ctx, "g1") }},
		{"GET", "/announcements", func(c *Client) error { _, err := c.ListAnnouncements(ctx, "g1"); return err }},
		{"POST", "/announcements", func(c *Client) error { _, err := c.CreateAnnouncement(ctx, Announcement{}); return err }},
		{"PUT", "/announcements/a1", func(c *Client) error { _, err := c.UpdateAnnouncement(ctx, Announcement{ID: "a1"}); return err }},
		{"DELETE", "/announcements/a1", func(c *Client) error { return c.DeleteAnnouncement(ctx, "a1") }},
		{"POST", "/announcements/a1/read", func(c *Client) error { return c.MarkAnnouncementRead(ctx, "a1") }},
		{"GET", "/templates", func(c *Client) error { _, err := c.ListTemplates(ctx); return err }},
		{"GET", "/templates/p1", func(c *Client) error { _, err := c.GetTemplate(ctx, "p1"); return err }},
		{"POST", "/templates", func(c *Client) error { _, err := c.CreateTemplate(ctx, Template{}); return err }},
		{"PUT", "/templates/p1", func(c *Client) error { _, err := c.UpdateTemplate(ctx, Template{ID: "p1"}); return err }},
		{"DELETE", "/templates/p1", func(c *Client) error { return c.DeleteTemplate(ctx, "p1") }},
		{"GET", "/tests", func(c *Client) error { _, err := c.ListTests(ctx); return err }},
		{"GET", "/tests/t 1", func(c *Client) error { _, err := c.GetTest(ctx, "t 1"); return err }},
		{"POST", "/tests", func(c *Client) error { _, err := c.CreateTest(ctx, Test{}); return err }},
		{"PUT", "/tests/t1", func(c *Client) error { _, err := c.UpdateTest(ctx, Test{ID: "t1"}); return err }},
		{"DELETE", "/tests/t1", func(c *Client) error { return c.DeleteTest(ctx, "t1") }},
		{"GET", "/assignments", func(c *Client) error { _, err := c.ListAssignments(ctx); return err }},
		{"POST", "/assignments", func(c *Client) error { _, err := c.CreateAssignment(ctx, Assignment{}); return err }},
		{"PUT", "/assignments/as1", func(c *Client) error { _, err := c.UpdateAssignment(ctx, Assignment{ID: "as1"}); return err }},
		{"DELETE", "/assignments/as1", func(c *Client) error { return c.DeleteAssignment(ctx, "as1") }},
		{"GET", "/progress/st-1", func(c *Client) error { _, err := c.Progress(ctx, "st-1"); return err }},
		{"GET", "/performance-reports/pr1", func(c *Client) error { _, err := c.GetPerformanceReport(ctx, "pr1"); return err }},
		{"DELETE", "/performance-reports/pr1", func(c *Client) error { return c.DeletePerformanceReport(ctx, "pr1") }},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			var method, path, auth string
			c := newTestClient(t, "tok", func(w http.ResponseWriter, r *http.Request) {
				method, path, auth = r.Method, r.URL.Path, r.Header.Get("Authorization")
				w.WriteHeader(http.StatusOK)
			})

			require.NoError(t, tt.call(c))
			assert.Equal(t, tt.method, method)
			assert.Equal(t, "/api"+tt.path, path)
			assert.Equal(t, "Bearer tok", auth)
		})
	}
}
