package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/saqibtanveer-dev/fha-examportal-sub001/internal/middleware"
	"github.com/saqibtanveer-dev/fha-examportal-sub001/internal/model"
	"github.com/saqibtanveer-dev/fha-examportal-sub001/internal/response"
	"github.com/saqibtanveer-dev/fha-examportal-sub001/internal/service"
)

// ResultHandler handles staff result publication and listing.
type ResultHandler struct {
	resultService *service.ResultService
}

// NewResultHandler creates a new ResultHandler.
func NewResultHandler(resultService *service.ResultService) *ResultHandler {
	return &ResultHandler{resultService: resultService}
}

// PublishResult godoc
// POST /api/v1/staff/sessions/:session_id/publish
// Makes the session's result visible to the student. Idempotent.
func (h *ResultHandler) PublishResult(c *gin.Context) {
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

	result, err := h.resultService.Publish(c.Request.Context(), sessionID, claims.UserID)
	if err != nil {
		failFromError(c, err)
		return
	}

	response.Success(c, http.StatusOK, result)
}

// PublishAllResults godoc
// POST /api/v1/staff/exams/:exam_id/publish-all
func (h *ResultHandler) PublishAllResults(c *gin.Context) {
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

	count, err := h.resultService.PublishAll(c.Request.Context(), examID, claims.UserID)
	if err != nil {
		failFromError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"published": count})
}

// ListResults godoc
// GET /api/v1/staff/exams/:exam_id/results?page=1&per_page=50
func (h *ResultHandler) ListResults(c *gin.Context) {
	examID, err := uuid.Parse(c.Param("exam_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	if page < 1 {
		page = 1
	}
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", "50"))
	if perPage < 1 || perPage > 200 {
		perPage = 50
	}

	results, total, err := h.resultService.ListResults(c.Request.Context(), examID, page, perPage)
	if err != nil {
		failFromError(c, err)
		return
	}
	if results == nil {
		results = []model.ExamResult{}
	}

	totalPages := int((total + int64(perPage) - 1) / int64(perPage))
	response.SuccessWithPagination(c, http.StatusOK, results, &response.Pagination{
		Page:       page,
		PerPage:    perPage,
		TotalItems: int(total),
		TotalPages: totalPages,
	})
}
