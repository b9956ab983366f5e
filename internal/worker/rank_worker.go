package worker

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/saqibtanveer-dev/fha-examportal-sub001/internal/config"
	"github.com/saqibtanveer-dev/fha-examportal-sub001/internal/service"
)

const (
	// RankDebounce coalesces bursts: publishing a whole exam enqueues one
	// recompute per result, but an exam is only reranked once per window.
	RankDebounce    = 2 * time.Second
	RankPollTimeout = 1 * time.Second
)

// RankWorker consumes exam IDs from the recompute queue and reranks
// each exam's live results.
type RankWorker struct {
	resultSvc *service.ResultService
	rdb       *redis.Client
	log       zerolog.Logger
}

func NewRankWorker(resultSvc *service.ResultService, rdb *redis.Client, log zerolog.Logger) *RankWorker {
	return &RankWorker{
		resultSvc: resultSvc,
		rdb:       rdb,
		log:       log.With().Str("component", "rank_worker").Logger(),
	}
}

func (w *RankWorker) Start(ctx context.Context) {
	w.log.Info().Msg("RankWorker started")

	pending := make(map[uuid.UUID]struct{})
	lastFlush := time.Now()

	for {
		if len(pending) > 0 && time.Since(lastFlush) >= RankDebounce {
			w.flush(ctx, pending)
			pending = make(map[uuid.UUID]struct{})
			lastFlush = time.Now()
		}

		select {
		case <-ctx.Done():
			if len(pending) > 0 {
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				w.flush(shutdownCtx, pending)
				cancel()
			}
			return
		default:
		}

		result, err := w.rdb.BLPop(ctx, RankPollTimeout, config.WorkerKey.RecomputeRanksQueue).Result()
		if err != nil {
			if err == redis.Nil {
				continue
			}
			if ctx.Err() != nil {
				return
			}
			w.log.Error().Err(err).Msg("Redis connection error, sleeping 3s")
			time.Sleep(3 * time.Second)
			continue
		}

		if len(result) < 2 {
			continue
		}

		examID, err := uuid.Parse(result[1])
		if err != nil {
			w.log.Error().Str("data", result[1]).Msg("Discarding malformed exam ID")
			continue
		}
		pending[examID] = struct{}{}
	}
}

func (w *RankWorker) flush(ctx context.Context, pending map[uuid.UUID]struct{}) {
	for examID := range pending {
		if err := w.resultSvc.RecomputeRanks(ctx, examID); err != nil {
			w.log.Error().Err(err).Str("exam_id", examID.String()).Msg("Rank recompute failed, requeueing")
			if rerr := w.rdb.RPush(ctx, config.WorkerKey.RecomputeRanksQueue, examID.String()).Err(); rerr != nil {
				w.log.Error().Err(rerr).Str("exam_id", examID.String()).Msg("CRITICAL: Failed to requeue rank recompute")
			}
		}
	}
}
