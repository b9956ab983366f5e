package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"

	"github.com/saqibtanveer-dev/fha-examportal-sub001/internal/apperr"
	"github.com/saqibtanveer-dev/fha-examportal-sub001/internal/model"
	"github.com/saqibtanveer-dev/fha-examportal-sub001/internal/repository"
)

// SessionService drives the student-facing session lifecycle: starting
// an attempt, submitting answers, and reading the published result.
type SessionService struct {
	pool         *pgxpool.Pool
	examRepo     *repository.ExamRepository
	sessionRepo  *repository.ExamSessionRepository
	answerRepo   *repository.StudentAnswerRepository
	questionRepo *repository.QuestionRepository
	resultRepo   *repository.ExamResultRepository
}

// NewSessionService creates a new SessionService.
func NewSessionService(
	pool *pgxpool.Pool,
	examRepo *repository.ExamRepository,
	sessionRepo *repository.ExamSessionRepository,
	answerRepo *repository.StudentAnswerRepository,
	questionRepo *repository.QuestionRepository,
	resultRepo *repository.ExamResultRepository,
) *SessionService {
	return &SessionService{
		pool:         pool,
		examRepo:     examRepo,
		sessionRepo:  sessionRepo,
		answerRepo:   answerRepo,
		questionRepo: questionRepo,
		resultRepo:   resultRepo,
	}
}

// StartExam opens a session for the student, or returns the student's
// existing active session when one is already open. The single-active-
// session rule is enforced by the database, so two concurrent starts
// both come back holding the same session.
func (s *SessionService) StartExam(ctx context.Context, examID uuid.UUID, studentID int) (*model.ExamSession, error) {
	exam, err := s.examRepo.GetByID(ctx, examID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("exam %s not found", examID)
	}
	if err != nil {
		return nil, err
	}
	if !exam.Joinable() {
		return nil, apperr.InvalidState("exam is %s and cannot be taken", exam.Status)
	}

	session := &model.ExamSession{
		ExamID:    examID,
		StudentID: studentID,
		Status:    model.SessionStatusInProgress,
	}
	err = s.sessionRepo.Create(ctx, session)
	if errors.Is(err, pgx.ErrNoRows) {
		// Lost the insert race or an active session already exists.
		existing, ferr := s.sessionRepo.GetActiveByExamAndStudent(ctx, examID, studentID)
		if ferr != nil {
			return nil, ferr
		}
		return existing, nil
	}
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("session_id", session.ID.String()).
		Str("exam_id", examID.String()).
		Int("student_id", studentID).
		Int("attempt", session.AttemptNumber).
		Msg("exam session started")
	return session, nil
}

// GetSession retrieves the student's own session.
func (s *SessionService) GetSession(ctx context.Context, sessionID uuid.UUID, studentID int) (*model.ExamSession, error) {
	session, err := s.sessionRepo.GetByID(ctx, s.pool, sessionID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("session %s not found", sessionID)
	}
	if err != nil {
		return nil, err
	}
	if session.StudentID != studentID {
		return nil, apperr.Forbidden("session belongs to another student")
	}
	return session, nil
}

// Submit writes the final answers and moves the session to SUBMITTED.
// Answers and the status flip commit together; after this the answer set
// is frozen and only grading may touch the session.
func (s *SessionService) Submit(ctx context.Context, sessionID uuid.UUID, studentID int, req *model.SubmitAnswersRequest) (*model.ExamSession, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	session, err := s.sessionRepo.GetByID(ctx, tx, sessionID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("session %s not found", sessionID)
	}
	if err != nil {
		return nil, err
	}
	if session.StudentID != studentID {
		return nil, apperr.Forbidden("session belongs to another student")
	}
	if session.Status != model.SessionStatusInProgress {
		return nil, apperr.InvalidState("cannot submit a %s session", session.Status)
	}

	questions, err := s.questionRepo.ListActiveByExam(ctx, tx, session.ExamID)
	if err != nil {
		return nil, err
	}
	known := make(map[uuid.UUID]struct{}, len(questions))
	for _, q := range questions {
		known[q.ID] = struct{}{}
	}
	for _, a := range req.Answers {
		if _, ok := known[a.QuestionID]; !ok {
			return nil, apperr.ValidationFailed("question %s does not belong to this exam", a.QuestionID)
		}
	}

	if err := s.answerRepo.UpsertMany(ctx, tx, sessionID, req.Answers); err != nil {
		return nil, err
	}

	ok, err := s.sessionRepo.MarkSubmitted(ctx, tx, sessionID)
	if err != nil {
		return nil, err
	}
	if !ok {
		// A concurrent submit won between our read and the update.
		return nil, apperr.InvalidState("session is no longer in progress")
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	session, err = s.sessionRepo.GetByID(ctx, s.pool, sessionID)
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("session_id", sessionID.String()).
		Int("student_id", studentID).
		Int("answers", len(req.Answers)).
		Msg("exam session submitted")
	return session, nil
}

// GetStudentResult retrieves the student's own result for a session.
// Unpublished results are indistinguishable from missing ones.
func (s *SessionService) GetStudentResult(ctx context.Context, sessionID uuid.UUID, studentID int) (*model.ExamResult, error) {
	session, err := s.sessionRepo.GetByID(ctx, s.pool, sessionID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("session %s not found", sessionID)
	}
	if err != nil {
		return nil, err
	}
	if session.StudentID != studentID {
		return nil, apperr.Forbidden("session belongs to another student")
	}

	result, err := s.resultRepo.GetPublishedBySession(ctx, sessionID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("no published result for session %s", sessionID)
	}
	if err != nil {
		return nil, err
	}
	return result, nil
}
