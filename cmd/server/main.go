package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/saqibtanveer-dev/fha-examportal-sub001/internal/audit"
	"github.com/saqibtanveer-dev/fha-examportal-sub001/internal/config"
	"github.com/saqibtanveer-dev/fha-examportal-sub001/internal/database"
	"github.com/saqibtanveer-dev/fha-examportal-sub001/internal/handler"
	"github.com/saqibtanveer-dev/fha-examportal-sub001/internal/llm"
	"github.com/saqibtanveer-dev/fha-examportal-sub001/internal/logger"
	"github.com/saqibtanveer-dev/fha-examportal-sub001/internal/middleware"
	"github.com/saqibtanveer-dev/fha-examportal-sub001/internal/repository"
	"github.com/saqibtanveer-dev/fha-examportal-sub001/internal/router"
	"github.com/saqibtanveer-dev/fha-examportal-sub001/internal/service"
	"github.com/saqibtanveer-dev/fha-examportal-sub001/internal/validator"
	"github.com/saqibtanveer-dev/fha-examportal-sub001/internal/worker"
)

func main() {
	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.Load()

	// ─── Initialize Logger ─────────────────────────────────────────────
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	log.Info().
		Str("port", cfg.ServerPort).
		Str("mode", cfg.GinMode).
		Str("log_level", cfg.LogLevel).
		Msg("Starting Exam Portal Backend")

	// ─── Initialize Validator ──────────────────────────────────────────
	validator.Setup()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ─── Connect to PostgreSQL ─────────────────────────────────────────
	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	// ─── Connect to Redis ──────────────────────────────────────────────
	rdb, err := database.NewRedisClient(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer rdb.Close()

	// ─── Initialize Repositories ───────────────────────────────────────
	examRepo := repository.NewExamRepository(pool)
	questionRepo := repository.NewQuestionRepository(pool)
	sessionRepo := repository.NewExamSessionRepository(pool)
	answerRepo := repository.NewStudentAnswerRepository(pool)
	gradeRepo := repository.NewAnswerGradeRepository(pool)
	resultRepo := repository.NewExamResultRepository(pool)
	scaleRepo := repository.NewGradingScaleRepository(pool)

	// ─── Initialize Services ──────────────────────────────────────────
	auditSink := audit.NewRedisSink(rdb)
	scorer := llm.New(cfg.ScoringAPIBase, cfg.ScoringAPIKey, cfg.ScoringModel)

	authService := service.NewAuthService(cfg)
	sessionService := service.NewSessionService(pool, examRepo, sessionRepo, answerRepo, questionRepo, resultRepo)
	anticheatService := service.NewAnticheatService(pool, sessionRepo, rdb, cfg.TabSwitchFlagThreshold)
	resultService := service.NewResultService(pool, examRepo, sessionRepo, answerRepo, gradeRepo, resultRepo, scaleRepo, rdb, auditSink)
	gradingService := service.NewGradingService(pool, sessionRepo, answerRepo, gradeRepo, resultService, scorer, cfg.ScoringTimeout, auditSink)

	// ─── Initialize Handlers ──────────────────────────────────────────
	handlers := &router.Handlers{
		Session: handler.NewSessionHandler(sessionService, anticheatService),
		Grading: handler.NewGradingHandler(gradingService, resultService),
		Result:  handler.NewResultHandler(resultService),
		Monitor: handler.NewMonitorHandler(rdb, examRepo, log, cfg.AllowedOrigins),
	}

	// ─── Start Background Workers ─────────────────────────────────────
	workerCtx, workerCancel := context.WithCancel(context.Background())

	violationWorker := worker.NewViolationWorker(pool, rdb, log)
	auditWorker := worker.NewAuditWorker(pool, rdb, log)
	rankWorker := worker.NewRankWorker(resultService, rdb, log)

	go violationWorker.Start(workerCtx)
	go auditWorker.Start(workerCtx)
	go rankWorker.Start(workerCtx)

	// ─── Setup Router ──────────────────────────────────────────────────
	violationLimiter := middleware.NewViolationRateLimiter(rdb, 30, time.Minute)
	r := router.SetupRouter(authService, handlers, violationLimiter, cfg)

	// ─── Create HTTP Server ────────────────────────────────────────────
	srv := &http.Server{
		Addr:    ":" + cfg.ServerPort,
		Handler: r,
	}

	// ─── Start Server in Goroutine ─────────────────────────────────────
	go func() {
		log.Info().Str("addr", ":"+cfg.ServerPort).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server error")
		}
	}()

	// ─── Graceful Shutdown ─────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	log.Info().Str("signal", sig.String()).Msg("Shutting down gracefully...")

	// 1. Stop accepting new HTTP requests (5s timeout).
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown error")
	}

	// 2. Stop background workers and wait for queues to drain.
	workerCancel()
	time.Sleep(2 * time.Second) // Allow workers to drain.

	log.Info().Msg("Shutdown complete")
}

// init sets zerolog global defaults before main runs.
func init() {
	zerolog.TimeFieldFormat = time.RFC3339
}
