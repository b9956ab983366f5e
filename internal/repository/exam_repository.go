package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/saqibtanveer-dev/fha-examportal-sub001/internal/model"
)

// ExamRepository handles exam data access. Exams are authored elsewhere;
// the core only reads them.
type ExamRepository struct {
	pool *pgxpool.Pool
}

// NewExamRepository creates a new ExamRepository.
func NewExamRepository(pool *pgxpool.Pool) *ExamRepository {
	return &ExamRepository{pool: pool}
}

const examColumns = `id, title, author_id, status, total_marks, passing_marks, duration_minutes, created_at, updated_at`

// GetByID retrieves an exam.
func (r *ExamRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Exam, error) {
	return r.get(ctx, r.pool, id)
}

// GetByIDTx retrieves an exam inside a caller-owned transaction.
func (r *ExamRepository) GetByIDTx(ctx context.Context, q Querier, id uuid.UUID) (*model.Exam, error) {
	return r.get(ctx, q, id)
}

func (r *ExamRepository) get(ctx context.Context, q Querier, id uuid.UUID) (*model.Exam, error) {
	e := &model.Exam{}
	err := q.QueryRow(ctx,
		`SELECT `+examColumns+` FROM exams WHERE id = $1`, id,
	).Scan(&e.ID, &e.Title, &e.AuthorID, &e.Status, &e.TotalMarks, &e.PassingMarks, &e.DurationMinutes, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return e, nil
}
