package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/saqibtanveer-dev/fha-examportal-sub001/internal/response"
)

// Permission codes carried in staff JWTs.
const (
	PermissionGradingRead    = "grading:read"
	PermissionGradingWrite   = "grading:write"
	PermissionResultsRead    = "results:read"
	PermissionResultsPublish = "results:publish"
	PermissionSessionsReopen = "sessions:reopen"
	PermissionExamsMonitor   = "exams:monitor"
)

// RequirePermission checks that the staff JWT contains the required permission code.
func RequirePermission(permissionCode string) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := GetClaims(c)
		if claims == nil {
			response.AbortFail(c, http.StatusUnauthorized, response.ErrTokenRequired)
			return
		}

		for _, p := range claims.Permissions {
			if p == permissionCode {
				c.Next()
				return
			}
		}

		response.AbortFail(c, http.StatusForbidden, response.ErrPermissionDenied)
	}
}

// HasPermission reports whether the request's claims carry the permission.
// For handlers that gate inside the handler body (e.g. after a WS upgrade).
func HasPermission(c *gin.Context, permissionCode string) bool {
	claims := GetClaims(c)
	if claims == nil {
		return false
	}
	for _, p := range claims.Permissions {
		if p == permissionCode {
			return true
		}
	}
	return false
}
