package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/saqibtanveer-dev/fha-examportal-sub001/internal/model"
	"github.com/shopspring/decimal"
)

// AnswerGradeRepository handles answer grade data access.
type AnswerGradeRepository struct {
	pool *pgxpool.Pool
}

// NewAnswerGradeRepository creates a new AnswerGradeRepository.
func NewAnswerGradeRepository(pool *pgxpool.Pool) *AnswerGradeRepository {
	return &AnswerGradeRepository{pool: pool}
}

const gradeColumns = `id, student_answer_id, marks_awarded, feedback, graded_by, ai_confidence, is_reviewed, created_at, updated_at`

// InsertIfAbsent writes a grade unless the answer already has one.
// Returns inserted=false on the existing-grade case: grading calls never
// overwrite, whatever produced the earlier grade.
func (r *AnswerGradeRepository) InsertIfAbsent(ctx context.Context, q Querier, g *model.AnswerGrade) (bool, error) {
	err := q.QueryRow(ctx,
		`INSERT INTO answer_grades (student_answer_id, marks_awarded, feedback, graded_by, ai_confidence, is_reviewed)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 ON CONFLICT (student_answer_id) DO NOTHING
		 RETURNING id, created_at, updated_at`,
		g.StudentAnswerID, g.MarksAwarded, g.Feedback, g.GradedBy, g.AIConfidence, g.IsReviewed,
	).Scan(&g.ID, &g.CreatedAt, &g.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// GetByAnswerID retrieves the grade of an answer, if any.
func (r *AnswerGradeRepository) GetByAnswerID(ctx context.Context, q Querier, answerID uuid.UUID) (*model.AnswerGrade, error) {
	g := &model.AnswerGrade{}
	err := q.QueryRow(ctx,
		`SELECT `+gradeColumns+` FROM answer_grades WHERE student_answer_id = $1`, answerID,
	).Scan(&g.ID, &g.StudentAnswerID, &g.MarksAwarded, &g.Feedback, &g.GradedBy, &g.AIConfidence, &g.IsReviewed, &g.CreatedAt, &g.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return g, nil
}

// Override replaces an existing grade's marks and feedback with a manual
// teacher decision. The AI confidence is cleared: the stored value no
// longer describes the stored marks.
func (r *AnswerGradeRepository) Override(ctx context.Context, q Querier, g *model.AnswerGrade) (bool, error) {
	err := q.QueryRow(ctx,
		`UPDATE answer_grades
		 SET marks_awarded = $1, feedback = $2, graded_by = $3, ai_confidence = NULL, is_reviewed = TRUE, updated_at = NOW()
		 WHERE student_answer_id = $4
		 RETURNING `+gradeColumns,
		g.MarksAwarded, g.Feedback, model.GradedByManual, g.StudentAnswerID,
	).Scan(&g.ID, &g.StudentAnswerID, &g.MarksAwarded, &g.Feedback, &g.GradedBy, &g.AIConfidence, &g.IsReviewed, &g.CreatedAt, &g.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// SumAwardedBySession totals the marks awarded across a session's graded
// answers. Answers to soft-deleted questions are excluded so the sum
// matches the live question set.
func (r *AnswerGradeRepository) SumAwardedBySession(ctx context.Context, q Querier, sessionID uuid.UUID) (decimal.Decimal, error) {
	var sum decimal.Decimal
	err := q.QueryRow(ctx,
		`SELECT COALESCE(SUM(g.marks_awarded), 0)
		 FROM answer_grades g
		 JOIN student_answers a ON g.student_answer_id = a.id
		 JOIN questions qu ON a.question_id = qu.id AND qu.deleted_at IS NULL
		 WHERE a.session_id = $1`,
		sessionID,
	).Scan(&sum)
	return sum, err
}

// SumObjectiveAwarded totals the marks awarded to a session's
// multiple-choice answers.
func (r *AnswerGradeRepository) SumObjectiveAwarded(ctx context.Context, q Querier, sessionID uuid.UUID) (decimal.Decimal, error) {
	var sum decimal.Decimal
	err := q.QueryRow(ctx,
		`SELECT COALESCE(SUM(g.marks_awarded), 0)
		 FROM answer_grades g
		 JOIN student_answers a ON g.student_answer_id = a.id
		 JOIN questions qu ON a.question_id = qu.id AND qu.deleted_at IS NULL
		 WHERE a.session_id = $1 AND qu.question_type = $2`,
		sessionID, model.QuestionTypeMultipleChoice,
	).Scan(&sum)
	return sum, err
}

// ListPendingReview retrieves all unreviewed AI grades for an exam, with
// the session's anti-cheat metadata attached read-only.
func (r *AnswerGradeRepository) ListPendingReview(ctx context.Context, examID uuid.UUID) ([]model.PendingReviewItem, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT g.id, g.student_answer_id, g.marks_awarded, g.feedback, g.graded_by, g.ai_confidence, g.is_reviewed, g.created_at, g.updated_at,
		        a.id, a.session_id, a.question_id, a.answer_text, a.selected_option_id,
		        q.question_text, q.marks,
		        s.id, s.student_id, s.is_flagged, s.tab_switch_count, s.fullscreen_exits, s.copy_paste_attempts
		 FROM answer_grades g
		 JOIN student_answers a ON g.student_answer_id = a.id
		 JOIN questions q ON a.question_id = q.id
		 JOIN exam_sessions s ON a.session_id = s.id
		 WHERE s.exam_id = $1 AND g.graded_by = $2 AND g.is_reviewed = FALSE
		 ORDER BY g.created_at ASC`,
		examID, model.GradedByAI,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []model.PendingReviewItem
	for rows.Next() {
		var it model.PendingReviewItem
		if err := rows.Scan(
			&it.Grade.ID, &it.Grade.StudentAnswerID, &it.Grade.MarksAwarded, &it.Grade.Feedback,
			&it.Grade.GradedBy, &it.Grade.AIConfidence, &it.Grade.IsReviewed, &it.Grade.CreatedAt, &it.Grade.UpdatedAt,
			&it.Answer.ID, &it.Answer.SessionID, &it.Answer.QuestionID, &it.Answer.AnswerText, &it.Answer.SelectedOptionID,
			&it.QuestionText, &it.QuestionMarks,
			&it.SessionID, &it.StudentID, &it.IsFlagged, &it.TabSwitchCount, &it.FullscreenExits, &it.CopyPasteAttempts,
		); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}
