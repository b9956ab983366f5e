package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/saqibtanveer-dev/fha-examportal-sub001/internal/model"
)

// QuestionRepository handles question data access. Soft-deleted questions
// (deleted_at set) are excluded everywhere: grading coverage counts only
// live questions.
type QuestionRepository struct {
	pool *pgxpool.Pool
}

// NewQuestionRepository creates a new QuestionRepository.
func NewQuestionRepository(pool *pgxpool.Pool) *QuestionRepository {
	return &QuestionRepository{pool: pool}
}

const questionColumns = `id, exam_id, question_text, question_type, options, correct_option_id, model_answer, rubric, marks, order_num`

// ListActiveByExam retrieves all non-deleted questions of an exam in order.
func (r *QuestionRepository) ListActiveByExam(ctx context.Context, q Querier, examID uuid.UUID) ([]model.Question, error) {
	rows, err := q.Query(ctx,
		`SELECT `+questionColumns+`
		 FROM questions
		 WHERE exam_id = $1 AND deleted_at IS NULL
		 ORDER BY order_num ASC`, examID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanQuestions(rows)
}

// GetByID retrieves a single non-deleted question.
func (r *QuestionRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Question, error) {
	question := &model.Question{}
	err := r.pool.QueryRow(ctx,
		`SELECT `+questionColumns+`
		 FROM questions
		 WHERE id = $1 AND deleted_at IS NULL`, id,
	).Scan(
		&question.ID, &question.ExamID, &question.QuestionText, &question.QuestionType,
		&question.Options, &question.CorrectOptionID, &question.ModelAnswer, &question.Rubric,
		&question.Marks, &question.OrderNum,
	)
	if err != nil {
		return nil, err
	}
	return question, nil
}

func scanQuestions(rows pgx.Rows) ([]model.Question, error) {
	var questions []model.Question
	for rows.Next() {
		var question model.Question
		if err := rows.Scan(
			&question.ID, &question.ExamID, &question.QuestionText, &question.QuestionType,
			&question.Options, &question.CorrectOptionID, &question.ModelAnswer, &question.Rubric,
			&question.Marks, &question.OrderNum,
		); err != nil {
			return nil, err
		}
		questions = append(questions, question)
	}
	return questions, rows.Err()
}
