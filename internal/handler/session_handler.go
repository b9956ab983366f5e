package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/saqibtanveer-dev/fha-examportal-sub001/internal/apperr"
	"github.com/saqibtanveer-dev/fha-examportal-sub001/internal/middleware"
	"github.com/saqibtanveer-dev/fha-examportal-sub001/internal/model"
	"github.com/saqibtanveer-dev/fha-examportal-sub001/internal/response"
	"github.com/saqibtanveer-dev/fha-examportal-sub001/internal/service"
	"github.com/saqibtanveer-dev/fha-examportal-sub001/internal/validator"
)

// failFromError maps a service error onto the response envelope,
// logging anything that surfaces as internal.
func failFromError(c *gin.Context, err error) {
	status, code := response.StatusAndCode(err)
	if status == http.StatusInternalServerError && apperr.CodeOf(err) == "" {
		log.Error().Err(err).Str("path", c.FullPath()).Msg("unhandled service error")
	}
	response.Fail(c, status, code)
}

// SessionHandler handles the student-facing session lifecycle.
type SessionHandler struct {
	sessionService   *service.SessionService
	anticheatService *service.AnticheatService
}

// NewSessionHandler creates a new SessionHandler.
func NewSessionHandler(sessionService *service.SessionService, anticheatService *service.AnticheatService) *SessionHandler {
	return &SessionHandler{
		sessionService:   sessionService,
		anticheatService: anticheatService,
	}
}

// StartExam godoc
// POST /api/v1/student/exams/:exam_id/start
// Opens a session, or returns the student's existing active one.
func (h *SessionHandler) StartExam(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	examID, err := uuid.Parse(c.Param("exam_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	session, err := h.sessionService.StartExam(c.Request.Context(), examID, claims.UserID)
	if err != nil {
		failFromError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, session)
}

// GetSession godoc
// GET /api/v1/student/sessions/:session_id
func (h *SessionHandler) GetSession(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	sessionID, err := uuid.Parse(c.Param("session_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	session, err := h.sessionService.GetSession(c.Request.Context(), sessionID, claims.UserID)
	if err != nil {
		failFromError(c, err)
		return
	}

	response.Success(c, http.StatusOK, session)
}

// SubmitAnswers godoc
// POST /api/v1/student/sessions/:session_id/submit
// Writes the final answers and freezes the session.
func (h *SessionHandler) SubmitAnswers(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	sessionID, err := uuid.Parse(c.Param("session_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	var req model.SubmitAnswersRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	session, err := h.sessionService.Submit(c.Request.Context(), sessionID, claims.UserID, &req)
	if err != nil {
		failFromError(c, err)
		return
	}

	response.Success(c, http.StatusOK, session)
}

// RecordViolation godoc
// POST /api/v1/student/sessions/:session_id/violations
// Increments a violation counter on the student's in-progress session.
func (h *SessionHandler) RecordViolation(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	sessionID, err := uuid.Parse(c.Param("session_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	var req model.RecordViolationRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	session, err := h.anticheatService.RecordViolation(c.Request.Context(), sessionID, claims.UserID, req.ViolationType)
	if err != nil {
		failFromError(c, err)
		return
	}

	response.Success(c, http.StatusOK, session)
}

// GetResult godoc
// GET /api/v1/student/sessions/:session_id/result
// Returns the student's published result; unpublished results 404.
func (h *SessionHandler) GetResult(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	sessionID, err := uuid.Parse(c.Param("session_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	result, err := h.sessionService.GetStudentResult(c.Request.Context(), sessionID, claims.UserID)
	if err != nil {
		failFromError(c, err)
		return
	}

	response.Success(c, http.StatusOK, result)
}
