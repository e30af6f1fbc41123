package server

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mateai/mate/internal/llm"
	"github.com/mateai/mate/internal/tutor"
)

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "model": s.provider.ModelID()})
}

func (s *Server) handleExercises(c *gin.Context) {
	var req tutor.ExerciseRequest
	if !bind(c, &req) {
		return
	}
	req.StudentID = studentID(c, req.StudentID)
	exercises, err := s.tutorFor(c).GenerateExercises(requestContext(c), req)
	if err != nil {
		s.respondError(c, "generate exercises", err)
		return
	}
	c.JSON(http.StatusOK, tutor.ExercisesResponse{Exercises: exercises})
}

func (s *Server) handleHint(c *gin.Context) {
	var req tutor.HintRequest
	if !bind(c, &req) {
		return
	}
	hint := s.tutorFor(c).GenerateHint(requestContext(c), req.Exercise, req.Context)
	c.JSON(http.StatusOK, tutor.HintResponse{Hint: hint})
}

func (s *Server) handleValidate(c *gin.Context) {
	var in tutor.ValidationInput
	if !bind(c, &in) {
		return
	}
	v, err := s.tutorFor(c).ValidateAnswer(requestContext(c), in)
	if err != nil {
		s.respondError(c, "validate answer", err)
		return
	}
	c.JSON(http.StatusOK, v)
}

func (s *Server) handleReport(c *gin.Context) {
	var data tutor.SessionData
	if !bind(c, &data) {
		return
	}
	data.StudentID = studentID(c, data.StudentID)
	report, stats, err := s.tutorFor(c).GenerateReport(requestContext(c), data)
	if err != nil {
		s.respondError(c, "generate report", err)
		return
	}
	c.JSON(http.StatusOK, tutor.ReportResponse{Report: report, Stats: stats})
}

func (s *Server) handleExplanation(c *gin.Context) {
	var req tutor.ExplanationRequest
	if !bind(c, &req) {
		return
	}
	explanation := s.tutorFor(c).GenerateExplanation(requestContext(c), req.Exercise, req.Answer)
	c.JSON(http.StatusOK, tutor.ExplanationResponse{Explanation: explanation})
}

// studentID prefers the verified token subject over an ID sent in the
// body, which is only used when auth is disabled.
func studentID(c *gin.Context, fromBody string) string {
	if sub := c.GetString(subjectKey); sub != "" {
		return sub
	}
	return fromBody
}

func bind(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		c.JSON(http.StatusBadRequest, tutor.ErrorBody{Error: tutor.ErrorDetail{
			Message: "invalid request body: " + err.Error(),
			Code:    tutor.CodeUserInput,
		}})
		return false
	}
	return true
}

func (s *Server) respondError(c *gin.Context, op string, err error) {
	status, body := tutor.EncodeError(err)
	if status >= http.StatusInternalServerError {
		s.log.Error("tutor call failed", "op", op, "status", status, "code", body.Error.Code, "error", err)
	}
	c.JSON(status, body)
}

// requestContext tags LLM events with the caller so `mate llm list` can
// attribute them.
func requestContext(c *gin.Context) context.Context {
	ctx := c.Request.Context()
	if sub := c.GetString(subjectKey); sub != "" {
		ctx = llm.WithSessionID(ctx, sub)
	}
	return ctx
}
