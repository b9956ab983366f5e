package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/saqibtanveer-dev/fha-examportal-sub001/internal/model"
	"github.com/shopspring/decimal"
)

// StudentAnswerRepository handles student answer data access.
type StudentAnswerRepository struct {
	pool *pgxpool.Pool
}

// NewStudentAnswerRepository creates a new StudentAnswerRepository.
func NewStudentAnswerRepository(pool *pgxpool.Pool) *StudentAnswerRepository {
	return &StudentAnswerRepository{pool: pool}
}

// UpsertMany writes the submitted answers inside the caller's submit
// transaction. Last write wins per (session, question); after the session
// leaves IN_PROGRESS the submit path can no longer run, so answers are
// effectively frozen.
func (r *StudentAnswerRepository) UpsertMany(ctx context.Context, q Querier, sessionID uuid.UUID, answers []model.AnswerSubmission) error {
	for _, a := range answers {
		_, err := q.Exec(ctx,
			`INSERT INTO student_answers (session_id, question_id, answer_text, selected_option_id)
			 VALUES ($1, $2, $3, $4)
			 ON CONFLICT (session_id, question_id)
			 DO UPDATE SET answer_text = EXCLUDED.answer_text, selected_option_id = EXCLUDED.selected_option_id`,
			sessionID, a.QuestionID, a.AnswerText, a.SelectedOptionID,
		)
		if err != nil {
			return err
		}
	}
	return nil
}

// AnswerForGrading joins an answer with the grading-relevant parts of its
// question and session.
type AnswerForGrading struct {
	Answer          model.StudentAnswer
	QuestionType    model.QuestionType
	CorrectOptionID *string
	ModelAnswer     *string
	Rubric          *string
	QuestionText    string
	QuestionMarks   decimal.Decimal
	SessionStatus   model.SessionStatus
	ExamID          uuid.UUID
	StudentID       int
}

const answerForGradingQuery = `
	SELECT a.id, a.session_id, a.question_id, a.answer_text, a.selected_option_id,
	       q.question_type, q.correct_option_id, q.model_answer, q.rubric, q.question_text, q.marks,
	       s.status, s.exam_id, s.student_id
	FROM student_answers a
	JOIN questions q ON a.question_id = q.id AND q.deleted_at IS NULL
	JOIN exam_sessions s ON a.session_id = s.id`

// GetForGrading retrieves one answer with its question key and session state.
func (r *StudentAnswerRepository) GetForGrading(ctx context.Context, q Querier, answerID uuid.UUID) (*AnswerForGrading, error) {
	row := q.QueryRow(ctx, answerForGradingQuery+` WHERE a.id = $1`, answerID)

	g := &AnswerForGrading{}
	err := row.Scan(
		&g.Answer.ID, &g.Answer.SessionID, &g.Answer.QuestionID, &g.Answer.AnswerText, &g.Answer.SelectedOptionID,
		&g.QuestionType, &g.CorrectOptionID, &g.ModelAnswer, &g.Rubric, &g.QuestionText, &g.QuestionMarks,
		&g.SessionStatus, &g.ExamID, &g.StudentID,
	)
	if err != nil {
		return nil, err
	}
	return g, nil
}

// ListUngradedObjective retrieves the session's multiple-choice answers
// that have no grade yet.
func (r *StudentAnswerRepository) ListUngradedObjective(ctx context.Context, q Querier, sessionID uuid.UUID) ([]AnswerForGrading, error) {
	rows, err := q.Query(ctx, answerForGradingQuery+`
		 LEFT JOIN answer_grades g ON g.student_answer_id = a.id
		 WHERE a.session_id = $1 AND q.question_type = $2 AND g.id IS NULL
		 ORDER BY q.order_num ASC`,
		sessionID, model.QuestionTypeMultipleChoice,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []AnswerForGrading
	for rows.Next() {
		var g AnswerForGrading
		if err := rows.Scan(
			&g.Answer.ID, &g.Answer.SessionID, &g.Answer.QuestionID, &g.Answer.AnswerText, &g.Answer.SelectedOptionID,
			&g.QuestionType, &g.CorrectOptionID, &g.ModelAnswer, &g.Rubric, &g.QuestionText, &g.QuestionMarks,
			&g.SessionStatus, &g.ExamID, &g.StudentID,
		); err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

// CountUngraded counts the session's answers to non-deleted questions
// that still lack an AnswerGrade. Zero means the session is fully graded.
func (r *StudentAnswerRepository) CountUngraded(ctx context.Context, q Querier, sessionID uuid.UUID) (int, error) {
	var n int
	err := q.QueryRow(ctx,
		`SELECT COUNT(*)
		 FROM student_answers a
		 JOIN questions qu ON a.question_id = qu.id AND qu.deleted_at IS NULL
		 LEFT JOIN answer_grades g ON g.student_answer_id = a.id
		 WHERE a.session_id = $1 AND g.id IS NULL`,
		sessionID,
	).Scan(&n)
	return n, err
}
