package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/saqibtanveer-dev/fha-examportal-sub001/internal/middleware"
	"github.com/saqibtanveer-dev/fha-examportal-sub001/internal/model"
	"github.com/saqibtanveer-dev/fha-examportal-sub001/internal/response"
	"github.com/saqibtanveer-dev/fha-examportal-sub001/internal/service"
	"github.com/saqibtanveer-dev/fha-examportal-sub001/internal/validator"
)

// GradingHandler handles the staff grading workflow.
type GradingHandler struct {
	gradingService *service.GradingService
	resultService  *service.ResultService
}

// NewGradingHandler creates a new GradingHandler.
func NewGradingHandler(gradingService *service.GradingService, resultService *service.ResultService) *GradingHandler {
	return &GradingHandler{
		gradingService: gradingService,
		resultService:  resultService,
	}
}

// AutoGradeSession godoc
// POST /api/v1/staff/sessions/:session_id/auto-grade
// Scores every ungraded objective answer; idempotent.
func (h *GradingHandler) AutoGradeSession(c *gin.Context) {
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

	summary, err := h.gradingService.AutoGrade(c.Request.Context(), sessionID, claims.UserID)
	if err != nil {
		failFromError(c, err)
		return
	}

	response.Success(c, http.StatusOK, summary)
}

// AIGradeAnswer godoc
// POST /api/v1/staff/answers/:answer_id/ai-grade
// Asks the scoring model to grade one subjective answer.
func (h *GradingHandler) AIGradeAnswer(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	answerID, err := uuid.Parse(c.Param("answer_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	grade, err := h.gradingService.AIGrade(c.Request.Context(), answerID, claims.UserID)
	if err != nil {
		failFromError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, grade)
}

// OverrideGrade godoc
// PUT /api/v1/staff/answers/:answer_id/grade
// Replaces an existing grade with the teacher's decision.
func (h *GradingHandler) OverrideGrade(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	answerID, err := uuid.Parse(c.Param("answer_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	var req model.OverrideGradeRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	grade, err := h.gradingService.OverrideGrade(c.Request.Context(), answerID, claims.UserID, &req)
	if err != nil {
		failFromError(c, err)
		return
	}

	response.Success(c, http.StatusOK, grade)
}

// ListPendingReview godoc
// GET /api/v1/staff/exams/:exam_id/pending-review
// Lists unreviewed model-proposed grades for the exam.
func (h *GradingHandler) ListPendingReview(c *gin.Context) {
	examID, err := uuid.Parse(c.Param("exam_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	items, err := h.gradingService.ListPendingReview(c.Request.Context(), examID)
	if err != nil {
		failFromError(c, err)
		return
	}
	if items == nil {
		items = []model.PendingReviewItem{}
	}

	response.Success(c, http.StatusOK, gin.H{"items": items})
}

// FinalizeSession godoc
// POST /api/v1/staff/sessions/:session_id/finalize
// Completes grading and computes the session result.
func (h *GradingHandler) FinalizeSession(c *gin.Context) {
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

	result, err := h.resultService.Finalize(c.Request.Context(), sessionID, claims.UserID)
	if err != nil {
		failFromError(c, err)
		return
	}

	response.Success(c, http.StatusOK, result)
}

// ReopenSession godoc
// POST /api/v1/staff/sessions/:session_id/reopen
// Moves a GRADED session back to GRADING for corrections.
func (h *GradingHandler) ReopenSession(c *gin.Context) {
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

	session, err := h.resultService.Reopen(c.Request.Context(), sessionID, claims.UserID)
	if err != nil {
		failFromError(c, err)
		return
	}

	response.Success(c, http.StatusOK, session)
}
