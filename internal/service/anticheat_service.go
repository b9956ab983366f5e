package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/saqibtanveer-dev/fha-examportal-sub001/internal/apperr"
	"github.com/saqibtanveer-dev/fha-examportal-sub001/internal/config"
	"github.com/saqibtanveer-dev/fha-examportal-sub001/internal/model"
	"github.com/saqibtanveer-dev/fha-examportal-sub001/internal/repository"
)

// ViolationEvent is the queued and broadcast form of one recorded
// violation. The worker persists these to the event log; the proctor
// monitor receives them live over Pub/Sub.
type ViolationEvent struct {
	SessionID         uuid.UUID           `json:"session_id"`
	ExamID            uuid.UUID           `json:"exam_id"`
	StudentID         int                 `json:"student_id"`
	ViolationType     model.ViolationType `json:"violation_type"`
	TabSwitchCount    int                 `json:"tab_switch_count"`
	FullscreenExits   int                 `json:"fullscreen_exits"`
	CopyPasteAttempts int                 `json:"copy_paste_attempts"`
	IsFlagged         bool                `json:"is_flagged"`
	OccurredAt        time.Time           `json:"occurred_at"`
}

// AnticheatService records proctoring violations against in-progress
// sessions. Counters and the flag are advisory for graders; they never
// feed into scores.
type AnticheatService struct {
	pool          *pgxpool.Pool
	sessionRepo   *repository.ExamSessionRepository
	rdb           *redis.Client
	flagThreshold int
}

// NewAnticheatService creates a new AnticheatService.
func NewAnticheatService(pool *pgxpool.Pool, sessionRepo *repository.ExamSessionRepository, rdb *redis.Client, flagThreshold int) *AnticheatService {
	return &AnticheatService{
		pool:          pool,
		sessionRepo:   sessionRepo,
		rdb:           rdb,
		flagThreshold: flagThreshold,
	}
}

// RecordViolation increments the matching counter on the student's own
// in-progress session, flags the session once tab switches reach the
// threshold, then fans the event out to the persistence queue and the
// exam's live monitor channel. The fan-out is best effort; the counter
// update is the source of truth.
func (s *AnticheatService) RecordViolation(ctx context.Context, sessionID uuid.UUID, studentID int, vtype model.ViolationType) (*model.ExamSession, error) {
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

	session, err = s.sessionRepo.IncrementViolation(ctx, tx, sessionID, vtype)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.InvalidState("violations are only recorded while the session is in progress")
	}
	if err != nil {
		return nil, err
	}

	if !session.IsFlagged && session.TabSwitchCount >= s.flagThreshold {
		if err := s.sessionRepo.SetFlagged(ctx, tx, sessionID); err != nil {
			return nil, err
		}
		session.IsFlagged = true
		log.Warn().
			Str("session_id", sessionID.String()).
			Int("student_id", studentID).
			Int("tab_switches", session.TabSwitchCount).
			Msg("session flagged for review")
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	s.publishEvent(ctx, session, vtype)
	return session, nil
}

func (s *AnticheatService) publishEvent(ctx context.Context, session *model.ExamSession, vtype model.ViolationType) {
	event := ViolationEvent{
		SessionID:         session.ID,
		ExamID:            session.ExamID,
		StudentID:         session.StudentID,
		ViolationType:     vtype,
		TabSwitchCount:    session.TabSwitchCount,
		FullscreenExits:   session.FullscreenExits,
		CopyPasteAttempts: session.CopyPasteAttempts,
		IsFlagged:         session.IsFlagged,
		OccurredAt:        time.Now().UTC(),
	}

	payload, err := json.Marshal(event)
	if err != nil {
		log.Error().Err(err).Str("session_id", session.ID.String()).Msg("failed to marshal violation event")
		return
	}

	if err := s.rdb.LPush(ctx, config.WorkerKey.PersistViolationsQueue, payload).Err(); err != nil {
		log.Error().Err(err).Str("session_id", session.ID.String()).Msg("failed to queue violation event")
	}

	channel := config.CacheKey.ExamMonitorChannel(session.ExamID.String())
	if err := s.rdb.Publish(ctx, channel, payload).Err(); err != nil {
		log.Error().Err(err).Str("channel", channel).Msg("failed to publish violation event")
	}
}
