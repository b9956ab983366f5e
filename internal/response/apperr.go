package response

import (
	"net/http"

	"github.com/saqibtanveer-dev/fha-examportal-sub001/internal/apperr"
)

// StatusAndCode maps a service-layer error to an HTTP status and envelope
// error code. Unclassified errors come back as internal; the handler is
// expected to log those.
func StatusAndCode(err error) (int, ErrCode) {
	switch apperr.CodeOf(err) {
	case apperr.CodeInvalidState:
		return http.StatusConflict, ErrInvalidState
	case apperr.CodeForbidden:
		return http.StatusForbidden, ErrForbidden
	case apperr.CodeNotFound:
		return http.StatusNotFound, ErrNotFound
	case apperr.CodeScoringUnavailable:
		return http.StatusServiceUnavailable, ErrScoringUnavailable
	case apperr.CodeValidationFailed:
		return http.StatusBadRequest, ErrValidation
	case apperr.CodeAlreadyGraded:
		return http.StatusConflict, ErrAlreadyGraded
	case apperr.CodeConflict:
		return http.StatusConflict, ErrConflict
	default:
		return http.StatusInternalServerError, ErrInternal
	}
}
