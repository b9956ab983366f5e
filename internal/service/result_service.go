package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/saqibtanveer-dev/fha-examportal-sub001/internal/apperr"
	"github.com/saqibtanveer-dev/fha-examportal-sub001/internal/audit"
	"github.com/saqibtanveer-dev/fha-examportal-sub001/internal/config"
	"github.com/saqibtanveer-dev/fha-examportal-sub001/internal/model"
	"github.com/saqibtanveer-dev/fha-examportal-sub001/internal/repository"
)

// ResultService owns result computation, publication, ranking, and the
// reopen path. Results are immutable once written: recomputation
// supersedes the live row and inserts a fresh one.
type ResultService struct {
	pool         *pgxpool.Pool
	examRepo     *repository.ExamRepository
	sessionRepo  *repository.ExamSessionRepository
	answerRepo   *repository.StudentAnswerRepository
	gradeRepo    *repository.AnswerGradeRepository
	resultRepo   *repository.ExamResultRepository
	scaleRepo    *repository.GradingScaleRepository
	rdb          *redis.Client
	auditSink    audit.Sink
}

// NewResultService creates a new ResultService.
func NewResultService(
	pool *pgxpool.Pool,
	examRepo *repository.ExamRepository,
	sessionRepo *repository.ExamSessionRepository,
	answerRepo *repository.StudentAnswerRepository,
	gradeRepo *repository.AnswerGradeRepository,
	resultRepo *repository.ExamResultRepository,
	scaleRepo *repository.GradingScaleRepository,
	rdb *redis.Client,
	auditSink audit.Sink,
) *ResultService {
	return &ResultService{
		pool:         pool,
		examRepo:     examRepo,
		sessionRepo:  sessionRepo,
		answerRepo:   answerRepo,
		gradeRepo:    gradeRepo,
		resultRepo:   resultRepo,
		scaleRepo:    scaleRepo,
		rdb:          rdb,
		auditSink:    auditSink,
	}
}

// Finalize completes grading: every answer must be graded, the session
// moves GRADING → GRADED, and the result is computed in the same
// transaction. Ranks are recomputed asynchronously afterwards.
func (s *ResultService) Finalize(ctx context.Context, sessionID uuid.UUID, staffID int) (*model.ExamResult, error) {
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
	if session.Status != model.SessionStatusGrading {
		return nil, apperr.InvalidState("cannot finalize a %s session", session.Status)
	}

	ungraded, err := s.answerRepo.CountUngraded(ctx, tx, sessionID)
	if err != nil {
		return nil, err
	}
	if ungraded > 0 {
		return nil, apperr.InvalidState("%d answers are still ungraded", ungraded)
	}

	ok, err := s.sessionRepo.Transition(ctx, tx, sessionID,
		[]model.SessionStatus{model.SessionStatusGrading}, model.SessionStatusGraded)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperr.InvalidState("session is no longer under grading")
	}

	if err := s.computeAndStore(ctx, tx, session); err != nil {
		// A lost race on the live-result index means a concurrent
		// finalize already produced the result; surface the winner's.
		if errors.Is(err, repository.ErrResultExists) {
			return s.resultRepo.GetLiveBySession(ctx, s.pool, sessionID)
		}
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	result, err := s.resultRepo.GetLiveBySession(ctx, s.pool, sessionID)
	if err != nil {
		return nil, err
	}

	s.enqueueRankRecompute(ctx, session.ExamID)
	s.auditSink.Record(ctx, audit.Event{
		ActorID:    staffID,
		ActorType:  "staff",
		Action:     "session.finalize",
		EntityType: "exam_session",
		EntityID:   sessionID.String(),
	})

	log.Info().
		Str("session_id", sessionID.String()).
		Str("percentage", result.Percentage.String()).
		Bool("passed", result.IsPassed).
		Msg("session finalized")
	return result, nil
}

// computeAndStore derives the session's result from its grades and
// writes it as the live result, superseding any previous one. The new
// result is always unpublished; republication is an explicit act.
func (s *ResultService) computeAndStore(ctx context.Context, q repository.Querier, session *model.ExamSession) error {
	exam, err := s.examRepo.GetByIDTx(ctx, q, session.ExamID)
	if err != nil {
		return err
	}

	obtained, err := s.gradeRepo.SumAwardedBySession(ctx, q, session.ID)
	if err != nil {
		return err
	}

	bands, err := s.scaleRepo.ListBands(ctx)
	if err != nil {
		return err
	}

	if _, err := s.resultRepo.Supersede(ctx, q, session.ID); err != nil {
		return err
	}
	return s.resultRepo.InsertLive(ctx, q, buildResult(session, exam, obtained, bands))
}

// buildResult assembles an unranked result from a session's summed
// grades. TotalMarks is the exam's configured total, not the sum of the
// current question set, so later question edits or soft deletes cannot
// retroactively shift already-computed percentages.
func buildResult(session *model.ExamSession, exam *model.Exam, obtained decimal.Decimal, bands []model.GradingBand) *model.ExamResult {
	percentage := computePercentage(obtained, exam.TotalMarks)
	return &model.ExamResult{
		SessionID:     session.ID,
		ExamID:        session.ExamID,
		StudentID:     session.StudentID,
		TotalMarks:    exam.TotalMarks,
		ObtainedMarks: obtained,
		Percentage:    percentage,
		IsPassed:      obtained.GreaterThanOrEqual(exam.PassingMarks),
		Grade:         resolveBand(bands, percentage),
	}
}

// Publish makes the session's live result visible to the student.
// Publishing twice is a no-op, not an error.
func (s *ResultService) Publish(ctx context.Context, sessionID uuid.UUID, staffID int) (*model.ExamResult, error) {
	published, err := s.resultRepo.SetPublished(ctx, s.pool, sessionID)
	if err != nil {
		return nil, err
	}

	result, err := s.resultRepo.GetLiveBySession(ctx, s.pool, sessionID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("session %s has no result to publish", sessionID)
	}
	if err != nil {
		return nil, err
	}

	if published {
		s.enqueueRankRecompute(ctx, result.ExamID)
		s.auditSink.Record(ctx, audit.Event{
			ActorID:    staffID,
			ActorType:  "staff",
			Action:     "result.publish",
			EntityType: "exam_result",
			EntityID:   result.ID.String(),
		})
	}
	return result, nil
}

// PublishAll publishes every unpublished live result of an exam.
func (s *ResultService) PublishAll(ctx context.Context, examID uuid.UUID, staffID int) (int64, error) {
	if _, err := s.examRepo.GetByID(ctx, examID); errors.Is(err, pgx.ErrNoRows) {
		return 0, apperr.NotFound("exam %s not found", examID)
	} else if err != nil {
		return 0, err
	}

	count, err := s.resultRepo.PublishAllByExam(ctx, examID)
	if err != nil {
		return 0, err
	}

	if count > 0 {
		s.enqueueRankRecompute(ctx, examID)
		s.auditSink.Record(ctx, audit.Event{
			ActorID:    staffID,
			ActorType:  "staff",
			Action:     "result.publish_all",
			EntityType: "exam",
			EntityID:   examID.String(),
		})
	}

	log.Info().Str("exam_id", examID.String()).Int64("published", count).Msg("exam results published")
	return count, nil
}

// Reopen moves a GRADED session back to GRADING and retires its live
// result. Existing grades stay; the teacher overrides what needs fixing
// and finalizes again, which computes a fresh result.
func (s *ResultService) Reopen(ctx context.Context, sessionID uuid.UUID, staffID int) (*model.ExamSession, error) {
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

	ok, err := s.sessionRepo.Transition(ctx, tx, sessionID,
		[]model.SessionStatus{model.SessionStatusGraded}, model.SessionStatusGrading)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperr.InvalidState("only a GRADED session can be reopened, session is %s", session.Status)
	}
	session.Status = model.SessionStatusGrading

	if _, err := s.resultRepo.Supersede(ctx, tx, sessionID); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	s.auditSink.Record(ctx, audit.Event{
		ActorID:    staffID,
		ActorType:  "staff",
		Action:     "session.reopen",
		EntityType: "exam_session",
		EntityID:   sessionID.String(),
	})

	log.Info().Str("session_id", sessionID.String()).Int("staff_id", staffID).Msg("session reopened for re-grading")
	return session, nil
}

// ListResults retrieves an exam's live results for staff, best first.
func (s *ResultService) ListResults(ctx context.Context, examID uuid.UUID, page, perPage int) ([]model.ExamResult, int64, error) {
	return s.resultRepo.ListByExam(ctx, examID, page, perPage)
}

// RecomputeRanks reranks all live results of an exam. Called from the
// rank worker; safe to run repeatedly and concurrently, last write wins
// with identical input.
func (s *ResultService) RecomputeRanks(ctx context.Context, examID uuid.UUID) error {
	rankable, err := s.resultRepo.ListRankable(ctx, examID)
	if err != nil {
		return err
	}
	if len(rankable) == 0 {
		return nil
	}

	ids := make([]uuid.UUID, len(rankable))
	for i, r := range rankable {
		ids[i] = r.ID
	}
	ranks := assignRanks(rankable)

	if err := s.resultRepo.ApplyRanks(ctx, ids, ranks); err != nil {
		return err
	}
	log.Debug().Str("exam_id", examID.String()).Int("results", len(rankable)).Msg("ranks recomputed")
	return nil
}

func (s *ResultService) enqueueRankRecompute(ctx context.Context, examID uuid.UUID) {
	if err := s.rdb.LPush(ctx, config.WorkerKey.RecomputeRanksQueue, examID.String()).Err(); err != nil {
		log.Error().Err(err).Str("exam_id", examID.String()).Msg("failed to enqueue rank recompute")
	}
}
