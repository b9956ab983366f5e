package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/saqibtanveer-dev/fha-examportal-sub001/internal/apperr"
	"github.com/saqibtanveer-dev/fha-examportal-sub001/internal/audit"
	"github.com/saqibtanveer-dev/fha-examportal-sub001/internal/llm"
	"github.com/saqibtanveer-dev/fha-examportal-sub001/internal/model"
	"github.com/saqibtanveer-dev/fha-examportal-sub001/internal/repository"
)

// AnswerScorer proposes a grade for one free-text answer. Implemented by
// the llm package; faked in tests.
type AnswerScorer interface {
	Score(ctx context.Context, req llm.ScoreRequest) (llm.ScoreResult, error)
}

// AutoGradeSummary reports the outcome of one auto-grade pass. McqMarks
// is the session's full multiple-choice tally, so re-running reports the
// same value; FullyGraded is true only when this pass completed the
// session.
type AutoGradeSummary struct {
	Session           *model.ExamSession `json:"session"`
	GradedCount       int                `json:"graded_count"`
	RemainingUngraded int                `json:"remaining_ungraded"`
	McqMarks          decimal.Decimal    `json:"mcq_marks"`
	FullyGraded       bool               `json:"fully_graded"`
}

// GradingService runs the three grading paths: deterministic scoring of
// objective answers, model-proposed grades for subjective answers, and
// manual teacher overrides. Existing grades are never overwritten;
// override is the only way to change one.
type GradingService struct {
	pool           *pgxpool.Pool
	sessionRepo    *repository.ExamSessionRepository
	answerRepo     *repository.StudentAnswerRepository
	gradeRepo      *repository.AnswerGradeRepository
	resultSvc      *ResultService
	scorer         AnswerScorer
	scoringTimeout time.Duration
	auditSink      audit.Sink
}

// NewGradingService creates a new GradingService.
func NewGradingService(
	pool *pgxpool.Pool,
	sessionRepo *repository.ExamSessionRepository,
	answerRepo *repository.StudentAnswerRepository,
	gradeRepo *repository.AnswerGradeRepository,
	resultSvc *ResultService,
	scorer AnswerScorer,
	scoringTimeout time.Duration,
	auditSink audit.Sink,
) *GradingService {
	return &GradingService{
		pool:           pool,
		sessionRepo:    sessionRepo,
		answerRepo:     answerRepo,
		gradeRepo:      gradeRepo,
		resultSvc:      resultSvc,
		scorer:         scorer,
		scoringTimeout: scoringTimeout,
		auditSink:      auditSink,
	}
}

// AutoGrade scores every ungraded multiple-choice answer of a submitted
// session and moves it to GRADING. Re-running is safe: already-graded
// answers are skipped, so a second pass grades nothing and changes
// nothing. When no ungraded answers remain afterwards the session
// completes to GRADED and its result is computed in the same
// transaction.
func (s *GradingService) AutoGrade(ctx context.Context, sessionID uuid.UUID, staffID int) (*AutoGradeSummary, error) {
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
	// A GRADED session has nothing left to grade; report the existing
	// tally instead of failing so repeated calls stay interchangeable.
	if session.Status == model.SessionStatusGraded {
		mcqMarks, err := s.gradeRepo.SumObjectiveAwarded(ctx, tx, sessionID)
		if err != nil {
			return nil, err
		}
		return &AutoGradeSummary{Session: session, McqMarks: mcqMarks}, nil
	}
	if session.Status != model.SessionStatusSubmitted && session.Status != model.SessionStatusGrading {
		return nil, apperr.InvalidState("cannot auto-grade a %s session", session.Status)
	}

	if session.Status == model.SessionStatusSubmitted {
		ok, err := s.sessionRepo.Transition(ctx, tx, sessionID,
			[]model.SessionStatus{model.SessionStatusSubmitted}, model.SessionStatusGrading)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, apperr.InvalidState("session is no longer submitted")
		}
		session.Status = model.SessionStatusGrading
	}

	ungraded, err := s.answerRepo.ListUngradedObjective(ctx, tx, sessionID)
	if err != nil {
		return nil, err
	}

	graded := 0
	for i := range ungraded {
		a := &ungraded[i]
		question := model.Question{
			QuestionType:    a.QuestionType,
			CorrectOptionID: a.CorrectOptionID,
			Marks:           a.QuestionMarks,
		}
		key, ok := question.Key()
		if !ok {
			return nil, fmt.Errorf("question %s has no usable grading key", a.Answer.QuestionID)
		}

		grade := &model.AnswerGrade{
			StudentAnswerID: a.Answer.ID,
			MarksAwarded:    scoreObjective(key, &a.Answer),
			GradedBy:        model.GradedByAuto,
			IsReviewed:      true,
		}
		inserted, err := s.gradeRepo.InsertIfAbsent(ctx, tx, grade)
		if err != nil {
			return nil, err
		}
		if inserted {
			graded++
		}
	}

	remaining, err := s.answerRepo.CountUngraded(ctx, tx, sessionID)
	if err != nil {
		return nil, err
	}
	mcqMarks, err := s.gradeRepo.SumObjectiveAwarded(ctx, tx, sessionID)
	if err != nil {
		return nil, err
	}

	fullyGraded := false
	if remaining == 0 {
		ok, err := s.sessionRepo.Transition(ctx, tx, sessionID,
			[]model.SessionStatus{model.SessionStatusGrading}, model.SessionStatusGraded)
		if err != nil {
			return nil, err
		}
		if ok {
			session.Status = model.SessionStatusGraded
			fullyGraded = true
			if err := s.resultSvc.computeAndStore(ctx, tx, session); err != nil {
				if errors.Is(err, repository.ErrResultExists) {
					return nil, apperr.Conflict("result for session %s was computed concurrently", sessionID)
				}
				return nil, err
			}
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	log.Info().
		Str("session_id", sessionID.String()).
		Int("graded", graded).
		Int("remaining", remaining).
		Str("status", string(session.Status)).
		Msg("auto-grade pass completed")

	s.auditSink.Record(ctx, audit.Event{
		ActorID:    staffID,
		ActorType:  "staff",
		Action:     "session.auto_grade",
		EntityType: "exam_session",
		EntityID:   sessionID.String(),
		Detail:     jsonDetail(map[string]any{"graded": graded, "remaining": remaining}),
	})

	return &AutoGradeSummary{
		Session:           session,
		GradedCount:       graded,
		RemainingUngraded: remaining,
		McqMarks:          mcqMarks,
		FullyGraded:       fullyGraded,
	}, nil
}

// checkAIGradeable decides whether an answer is eligible for a
// model-proposed grade: a subjective question with a usable grading key,
// in a session that has been submitted and is not yet fully graded.
func checkAIGradeable(a *repository.AnswerForGrading) (model.GradingKey, error) {
	if a.SessionStatus != model.SessionStatusSubmitted && a.SessionStatus != model.SessionStatusGrading {
		return model.GradingKey{}, apperr.InvalidState("cannot grade an answer of a %s session", a.SessionStatus)
	}
	if a.QuestionType.Objective() {
		return model.GradingKey{}, apperr.ValidationFailed("objective answers are auto-graded, not model-graded")
	}

	question := model.Question{
		QuestionType: a.QuestionType,
		ModelAnswer:  a.ModelAnswer,
		Rubric:       a.Rubric,
		Marks:        a.QuestionMarks,
	}
	key, ok := question.Key()
	if !ok {
		return model.GradingKey{}, apperr.ValidationFailed("question has neither model answer nor rubric")
	}
	return key, nil
}

// proposeGrade runs the scorer against one answer and shapes the
// response into a provisional unreviewed grade, with marks clamped to
// [0, max] and confidence to [0, 1]. A provider failure writes nothing
// and surfaces as SCORING_UNAVAILABLE so the caller can retry.
func proposeGrade(ctx context.Context, scorer AnswerScorer, timeout time.Duration, a *repository.AnswerForGrading, key model.GradingKey) (*model.AnswerGrade, error) {
	answerText := ""
	if a.Answer.AnswerText != nil {
		answerText = *a.Answer.AnswerText
	}

	scoreCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	result, err := scorer.Score(scoreCtx, llm.ScoreRequest{
		QuestionText: a.QuestionText,
		AnswerText:   answerText,
		ModelAnswer:  key.ModelAnswer,
		Rubric:       key.Rubric,
		MaxMarks:     key.MaxMarks,
	})
	if err != nil {
		return nil, apperr.ScoringUnavailable(err)
	}

	confidence := clampConfidence(result.Confidence)
	grade := &model.AnswerGrade{
		StudentAnswerID: a.Answer.ID,
		MarksAwarded:    clampMarks(result.Marks, key.MaxMarks),
		GradedBy:        model.GradedByAI,
		AIConfidence:    &confidence,
		IsReviewed:      false,
	}
	if result.Feedback != "" {
		grade.Feedback = &result.Feedback
	}
	return grade, nil
}

// AIGrade asks the scoring model to grade one subjective answer. The
// provider call happens outside any transaction with the session
// unlocked; the insert re-checks for an existing grade, so a concurrent
// grader cannot be overwritten, only beaten to the write.
func (s *GradingService) AIGrade(ctx context.Context, answerID uuid.UUID, staffID int) (*model.AnswerGrade, error) {
	a, err := s.answerRepo.GetForGrading(ctx, s.pool, answerID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("answer %s not found", answerID)
	}
	if err != nil {
		return nil, err
	}
	key, err := checkAIGradeable(a)
	if err != nil {
		return nil, err
	}

	// Reject before spending a provider call when a grade already exists.
	if _, err := s.gradeRepo.GetByAnswerID(ctx, s.pool, answerID); err == nil {
		return nil, apperr.AlreadyGraded("answer %s already has a grade", answerID)
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}

	grade, err := proposeGrade(ctx, s.scorer, s.scoringTimeout, a, key)
	if err != nil {
		log.Error().Err(err).Str("answer_id", answerID.String()).Msg("scoring provider call failed")
		return nil, err
	}

	inserted, err := s.gradeRepo.InsertIfAbsent(ctx, s.pool, grade)
	if err != nil {
		return nil, err
	}
	if !inserted {
		return nil, apperr.AlreadyGraded("answer %s was graded concurrently", answerID)
	}

	log.Info().
		Str("answer_id", answerID.String()).
		Str("marks", grade.MarksAwarded.String()).
		Str("confidence", grade.AIConfidence.String()).
		Msg("answer graded by model")

	s.auditSink.Record(ctx, audit.Event{
		ActorID:    staffID,
		ActorType:  "staff",
		Action:     "answer.ai_grade",
		EntityType: "student_answer",
		EntityID:   answerID.String(),
		Detail:     jsonDetail(map[string]any{"marks": grade.MarksAwarded, "confidence": grade.AIConfidence}),
	})

	return grade, nil
}

// OverrideGrade replaces an existing grade with the teacher's decision
// and marks it reviewed. Overrides apply while the session is under
// grading; a GRADED session must be reopened first.
func (s *GradingService) OverrideGrade(ctx context.Context, answerID uuid.UUID, staffID int, req *model.OverrideGradeRequest) (*model.AnswerGrade, error) {
	a, err := s.answerRepo.GetForGrading(ctx, s.pool, answerID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("answer %s not found", answerID)
	}
	if err != nil {
		return nil, err
	}
	if a.SessionStatus != model.SessionStatusGrading {
		return nil, apperr.InvalidState("cannot override a grade of a %s session", a.SessionStatus)
	}
	if req.MarksAwarded.IsNegative() || req.MarksAwarded.GreaterThan(a.QuestionMarks) {
		return nil, apperr.ValidationFailed("marks must be between 0 and %s", a.QuestionMarks)
	}

	grade := &model.AnswerGrade{
		StudentAnswerID: answerID,
		MarksAwarded:    req.MarksAwarded,
		Feedback:        req.Feedback,
	}
	updated, err := s.gradeRepo.Override(ctx, s.pool, grade)
	if err != nil {
		return nil, err
	}
	if !updated {
		return nil, apperr.NotFound("answer %s has no grade to override", answerID)
	}

	log.Info().
		Str("answer_id", answerID.String()).
		Int("staff_id", staffID).
		Str("marks", grade.MarksAwarded.String()).
		Msg("grade overridden")

	s.auditSink.Record(ctx, audit.Event{
		ActorID:    staffID,
		ActorType:  "staff",
		Action:     "grade.override",
		EntityType: "student_answer",
		EntityID:   answerID.String(),
		Detail:     jsonDetail(map[string]any{"marks": grade.MarksAwarded}),
	})

	return grade, nil
}

// ListPendingReview retrieves the exam's unreviewed model-proposed
// grades for the teacher review queue.
func (s *GradingService) ListPendingReview(ctx context.Context, examID uuid.UUID) ([]model.PendingReviewItem, error) {
	return s.gradeRepo.ListPendingReview(ctx, examID)
}

func jsonDetail(v map[string]any) json.RawMessage {
	b, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	return b
}
