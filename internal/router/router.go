package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/saqibtanveer-dev/fha-examportal-sub001/internal/config"
	"github.com/saqibtanveer-dev/fha-examportal-sub001/internal/handler"
	"github.com/saqibtanveer-dev/fha-examportal-sub001/internal/middleware"
	"github.com/saqibtanveer-dev/fha-examportal-sub001/internal/response"
	"github.com/saqibtanveer-dev/fha-examportal-sub001/internal/service"
)

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Session *handler.SessionHandler
	Grading *handler.GradingHandler
	Result  *handler.ResultHandler
	Monitor *handler.MonitorHandler
}

// SetupRouter configures all Gin route groups with appropriate middlewares.
func SetupRouter(
	authService *service.AuthService,
	handlers *Handlers,
	violationLimiter *middleware.ViolationRateLimiter,
	cfg *config.Config,
) *gin.Engine {
	gin.SetMode(cfg.GinMode)
	router := gin.Default()

	// ─── CORS ──────────────────────────────────────────────────────────
	// If AllowedOrigins is set in config, restrict to that list;
	// otherwise allow all (*) so dev works without extra config.
	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"}
	corsConfig.ExposeHeaders = []string{"X-Request-ID"}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	// Apply request ID middleware globally so every response includes metadata.
	router.Use(response.RequestIDMiddleware())

	// Health check.
	router.GET("/health", func(c *gin.Context) {
		response.Success(c, http.StatusOK, gin.H{"status": "ok"})
	})

	// ─── 1. Student Group (Student JWT) ────────────────────────────────
	studentAPI := router.Group("/api/v1/student")
	studentAPI.Use(middleware.RequireStudentJWT(authService))
	{
		studentAPI.POST("/exams/:exam_id/start", handlers.Session.StartExam)
		studentAPI.GET("/sessions/:session_id", handlers.Session.GetSession)
		studentAPI.POST("/sessions/:session_id/submit", handlers.Session.SubmitAnswers)
		studentAPI.POST("/sessions/:session_id/violations",
			violationLimiter.Middleware(), handlers.Session.RecordViolation)
		studentAPI.GET("/sessions/:session_id/result", handlers.Session.GetResult)
	}

	// ─── 2. Staff Group (Staff JWT + Permissions) ──────────────────────
	staffAPI := router.Group("/api/v1/staff")
	staffAPI.Use(middleware.RequireStaffJWT(authService))
	{
		staffAPI.POST("/sessions/:session_id/auto-grade",
			middleware.RequirePermission(middleware.PermissionGradingWrite),
			handlers.Grading.AutoGradeSession)
		staffAPI.POST("/answers/:answer_id/ai-grade",
			middleware.RequirePermission(middleware.PermissionGradingWrite),
			handlers.Grading.AIGradeAnswer)
		staffAPI.PUT("/answers/:answer_id/grade",
			middleware.RequirePermission(middleware.PermissionGradingWrite),
			handlers.Grading.OverrideGrade)
		staffAPI.GET("/exams/:exam_id/pending-review",
			middleware.RequirePermission(middleware.PermissionGradingRead),
			handlers.Grading.ListPendingReview)
		staffAPI.POST("/sessions/:session_id/finalize",
			middleware.RequirePermission(middleware.PermissionGradingWrite),
			handlers.Grading.FinalizeSession)
		staffAPI.POST("/sessions/:session_id/reopen",
			middleware.RequirePermission(middleware.PermissionSessionsReopen),
			handlers.Grading.ReopenSession)

		staffAPI.POST("/sessions/:session_id/publish",
			middleware.RequirePermission(middleware.PermissionResultsPublish),
			handlers.Result.PublishResult)
		staffAPI.POST("/exams/:exam_id/publish-all",
			middleware.RequirePermission(middleware.PermissionResultsPublish),
			handlers.Result.PublishAllResults)
		staffAPI.GET("/exams/:exam_id/results",
			middleware.RequirePermission(middleware.PermissionResultsRead),
			handlers.Result.ListResults)
	}

	// ─── 3. WebSocket Group (Staff WS Auth) ────────────────────────────
	ws := router.Group("/ws/v1")
	ws.Use(middleware.RequireStaffWSAuth(authService))
	{
		ws.GET("/staff/exams/:exam_id/monitor", handlers.Monitor.MonitorExam)
	}

	return router
}
