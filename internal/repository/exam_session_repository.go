package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/saqibtanveer-dev/fha-examportal-sub001/internal/model"
)

// ExamSessionRepository handles exam session data access.
type ExamSessionRepository struct {
	pool *pgxpool.Pool
}

// NewExamSessionRepository creates a new ExamSessionRepository.
func NewExamSessionRepository(pool *pgxpool.Pool) *ExamSessionRepository {
	return &ExamSessionRepository{pool: pool}
}

const sessionColumns = `id, exam_id, student_id, attempt_number, status, started_at, submitted_at,
	tab_switch_count, fullscreen_exits, copy_paste_attempts, is_flagged, created_at, updated_at`

// Create inserts a new IN_PROGRESS session with the next attempt number.
// The partial unique index on (exam_id, student_id) over active statuses
// makes this a check-and-insert: a concurrent start loses the race and
// gets pgx.ErrNoRows back, at which point the caller re-fetches the
// winner's session.
func (r *ExamSessionRepository) Create(ctx context.Context, s *model.ExamSession) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO exam_sessions (exam_id, student_id, attempt_number, status)
		 SELECT $1, $2,
		        COALESCE((SELECT MAX(attempt_number) FROM exam_sessions WHERE exam_id = $1 AND student_id = $2), 0) + 1,
		        $3
		 ON CONFLICT (exam_id, student_id) WHERE status IN ('NOT_STARTED', 'IN_PROGRESS') DO NOTHING
		 RETURNING id, attempt_number, started_at, created_at, updated_at`,
		s.ExamID, s.StudentID, model.SessionStatusInProgress,
	).Scan(&s.ID, &s.AttemptNumber, &s.StartedAt, &s.CreatedAt, &s.UpdatedAt)
}

// GetByID retrieves a session.
func (r *ExamSessionRepository) GetByID(ctx context.Context, q Querier, id uuid.UUID) (*model.ExamSession, error) {
	s := &model.ExamSession{}
	err := q.QueryRow(ctx,
		`SELECT `+sessionColumns+` FROM exam_sessions WHERE id = $1`, id,
	).Scan(
		&s.ID, &s.ExamID, &s.StudentID, &s.AttemptNumber, &s.Status, &s.StartedAt, &s.SubmittedAt,
		&s.TabSwitchCount, &s.FullscreenExits, &s.CopyPasteAttempts, &s.IsFlagged, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// GetActiveByExamAndStudent retrieves the student's active session for an
// exam, if any.
func (r *ExamSessionRepository) GetActiveByExamAndStudent(ctx context.Context, examID uuid.UUID, studentID int) (*model.ExamSession, error) {
	s := &model.ExamSession{}
	err := r.pool.QueryRow(ctx,
		`SELECT `+sessionColumns+`
		 FROM exam_sessions
		 WHERE exam_id = $1 AND student_id = $2 AND status IN ('NOT_STARTED', 'IN_PROGRESS')`,
		examID, studentID,
	).Scan(
		&s.ID, &s.ExamID, &s.StudentID, &s.AttemptNumber, &s.Status, &s.StartedAt, &s.SubmittedAt,
		&s.TabSwitchCount, &s.FullscreenExits, &s.CopyPasteAttempts, &s.IsFlagged, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// Transition conditionally moves a session from one of the given statuses
// to another. Returns false when the session was not in an allowed source
// status — the caller treats that as an illegal transition and nothing is
// mutated.
func (r *ExamSessionRepository) Transition(ctx context.Context, q Querier, id uuid.UUID, from []model.SessionStatus, to model.SessionStatus) (bool, error) {
	tag, err := q.Exec(ctx,
		`UPDATE exam_sessions
		 SET status = $1, updated_at = NOW()
		 WHERE id = $2 AND status = ANY($3)`,
		to, id, statusStrings(from),
	)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

// MarkSubmitted flips IN_PROGRESS → SUBMITTED and stamps submitted_at.
func (r *ExamSessionRepository) MarkSubmitted(ctx context.Context, q Querier, id uuid.UUID) (bool, error) {
	tag, err := q.Exec(ctx,
		`UPDATE exam_sessions
		 SET status = $1, submitted_at = NOW(), updated_at = NOW()
		 WHERE id = $2 AND status = $3`,
		model.SessionStatusSubmitted, id, model.SessionStatusInProgress,
	)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

// IncrementViolation atomically increments one violation counter and
// returns the updated session row. Fails with pgx.ErrNoRows when the
// session is not IN_PROGRESS, so the check and the write are one
// statement.
func (r *ExamSessionRepository) IncrementViolation(ctx context.Context, q Querier, id uuid.UUID, vtype model.ViolationType) (*model.ExamSession, error) {
	col, err := violationColumn(vtype)
	if err != nil {
		return nil, err
	}

	s := &model.ExamSession{}
	err = q.QueryRow(ctx,
		`UPDATE exam_sessions
		 SET `+col+` = `+col+` + 1, updated_at = NOW()
		 WHERE id = $1 AND status = $2
		 RETURNING `+sessionColumns,
		id, model.SessionStatusInProgress,
	).Scan(
		&s.ID, &s.ExamID, &s.StudentID, &s.AttemptNumber, &s.Status, &s.StartedAt, &s.SubmittedAt,
		&s.TabSwitchCount, &s.FullscreenExits, &s.CopyPasteAttempts, &s.IsFlagged, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// SetFlagged raises the anti-cheat flag. One-way: there is no clear path.
func (r *ExamSessionRepository) SetFlagged(ctx context.Context, q Querier, id uuid.UUID) error {
	_, err := q.Exec(ctx,
		`UPDATE exam_sessions SET is_flagged = TRUE, updated_at = NOW() WHERE id = $1`, id)
	return err
}

func violationColumn(vtype model.ViolationType) (string, error) {
	switch vtype {
	case model.ViolationTabSwitch:
		return "tab_switch_count", nil
	case model.ViolationFullscreenExit:
		return "fullscreen_exits", nil
	case model.ViolationCopyPaste:
		return "copy_paste_attempts", nil
	}
	return "", fmt.Errorf("unknown violation type %q", vtype)
}

func statusStrings(statuses []model.SessionStatus) []string {
	out := make([]string, len(statuses))
	for i, s := range statuses {
		out[i] = string(s)
	}
	return out
}
