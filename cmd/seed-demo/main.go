package main

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/saqibtanveer-dev/fha-examportal-sub001/internal/config"
	"github.com/saqibtanveer-dev/fha-examportal-sub001/internal/database"
	"github.com/saqibtanveer-dev/fha-examportal-sub001/internal/logger"
	"github.com/saqibtanveer-dev/fha-examportal-sub001/internal/middleware"
	"github.com/saqibtanveer-dev/fha-examportal-sub001/internal/model"
	"github.com/saqibtanveer-dev/fha-examportal-sub001/internal/service"
)

// Seeds one published demo exam with a mixed question set and prints
// JWTs for a demo student and a demo teacher, so the API can be
// exercised end to end with curl.
func main() {
	cfg := config.Load()
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	fmt.Println("=== Seeding demo exam ===")

	examID := uuid.New()
	_, err = pool.Exec(ctx,
		`INSERT INTO exams (id, title, author_id, status, total_marks, passing_marks, duration_minutes)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		examID, "Demo Mathematics Exam", 1, model.ExamStatusPublished, 100, 40, 60,
	)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to insert exam")
	}

	type seedQuestion struct {
		text     string
		qtype    model.QuestionType
		options  *string
		correct  *string
		modelAns *string
		rubric   *string
		marks    int
		orderNum int
	}

	options := `[{"id":"a","text":"2"},{"id":"b","text":"4"},{"id":"c","text":"8"}]`
	correct := "b"
	modelAns := "The derivative of x^2 is 2x, by the power rule."
	rubric := "Full marks for the power rule with correct exponent handling. Half marks for the right rule with arithmetic slips."

	questions := []seedQuestion{
		{"What is 2 + 2?", model.QuestionTypeMultipleChoice, &options, &correct, nil, nil, 20, 1},
		{"State the derivative of x^2.", model.QuestionTypeShortAnswer, nil, nil, &modelAns, &rubric, 30, 2},
		{"Explain the fundamental theorem of calculus in your own words.", model.QuestionTypeLongAnswer, nil, nil, nil, &rubric, 50, 3},
	}

	for _, q := range questions {
		_, err := pool.Exec(ctx,
			`INSERT INTO questions (exam_id, question_text, question_type, options, correct_option_id, model_answer, rubric, marks, order_num)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
			examID, q.text, q.qtype, q.options, q.correct, q.modelAns, q.rubric, q.marks, q.orderNum,
		)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to insert question")
		}
	}

	fmt.Printf("Exam ID: %s\n", examID)

	authService := service.NewAuthService(cfg)

	studentToken, err := authService.GenerateStudentToken(1001, 24*time.Hour)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to generate student token")
	}
	staffToken, err := authService.GenerateStaffToken(1, []string{
		middleware.PermissionGradingRead,
		middleware.PermissionGradingWrite,
		middleware.PermissionResultsRead,
		middleware.PermissionResultsPublish,
		middleware.PermissionSessionsReopen,
		middleware.PermissionExamsMonitor,
	}, 24*time.Hour)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to generate staff token")
	}

	fmt.Printf("Student (1001) token:\n%s\n\n", studentToken)
	fmt.Printf("Staff (1) token:\n%s\n", staffToken)
	fmt.Println("=== Done ===")
}
