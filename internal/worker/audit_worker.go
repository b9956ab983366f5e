package worker

import (
	"context"
	"encoding/json"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/saqibtanveer-dev/fha-examportal-sub001/internal/audit"
	"github.com/saqibtanveer-dev/fha-examportal-sub001/internal/config"
)

// AuditWorker drains queued audit events into the audit_logs table.
type AuditWorker struct {
	pool *pgxpool.Pool
	rdb  *redis.Client
	log  zerolog.Logger
}

func NewAuditWorker(pool *pgxpool.Pool, rdb *redis.Client, log zerolog.Logger) *AuditWorker {
	return &AuditWorker{
		pool: pool,
		rdb:  rdb,
		log:  log.With().Str("component", "audit_worker").Logger(),
	}
}

func (w *AuditWorker) Start(ctx context.Context) {
	w.log.Info().Msg("AuditWorker started")

	buffer := make([]*audit.Event, 0, BatchSize)
	lastFlush := time.Now()

	for {
		if len(buffer) > 0 {
			if len(buffer) >= BatchSize || time.Since(lastFlush) >= BatchTimeout {
				w.flushSafe(ctx, buffer)
				buffer = buffer[:0]
				lastFlush = time.Now()
			}
		}

		select {
		case <-ctx.Done():
			w.log.Info().Msg("Worker stopping, flushing remaining buffer...")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			if len(buffer) > 0 {
				w.flushSafe(shutdownCtx, buffer)
			}
			cancel()
			return
		default:
		}

		result, err := w.rdb.BLPop(ctx, PollTimeout, config.WorkerKey.PersistAuditQueue).Result()
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

		var event audit.Event
		if err := json.Unmarshal([]byte(result[1]), &event); err != nil {
			w.log.Error().Err(err).Str("data", result[1]).Msg("Discarding malformed audit event")
			continue
		}

		buffer = append(buffer, &event)
	}
}

func (w *AuditWorker) flushSafe(ctx context.Context, batch []*audit.Event) {
	if err := w.bulkInsert(ctx, batch); err != nil {
		w.log.Warn().Err(err).Int("count", len(batch)).Msg("Bulk insert failed, attempting row-by-row recovery")
		w.fallbackInsert(ctx, batch)
	}
}

func (w *AuditWorker) bulkInsert(ctx context.Context, batch []*audit.Event) error {
	rows := make([][]interface{}, 0, len(batch))
	for _, e := range batch {
		rows = append(rows, []interface{}{
			e.ActorID, e.ActorType, e.Action, e.EntityType, e.EntityID, []byte(e.Detail), e.OccurredAt,
		})
	}

	_, err := w.pool.CopyFrom(
		ctx,
		pgx.Identifier{"audit_logs"},
		[]string{"actor_id", "actor_type", "action", "entity_type", "entity_id", "detail", "occurred_at"},
		pgx.CopyFromRows(rows),
	)
	return err
}

func (w *AuditWorker) fallbackInsert(ctx context.Context, batch []*audit.Event) {
	requeueList := make([]*audit.Event, 0)

	for _, e := range batch {
		_, err := w.pool.Exec(ctx,
			`INSERT INTO audit_logs (actor_id, actor_type, action, entity_type, entity_id, detail, occurred_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			e.ActorID, e.ActorType, e.Action, e.EntityType, e.EntityID, []byte(e.Detail), e.OccurredAt,
		)
		if err != nil {
			w.log.Error().Err(err).Str("action", e.Action).Msg("Insert failed, requeueing")
			requeueList = append(requeueList, e)
		}
	}

	if len(requeueList) > 0 {
		pipe := w.rdb.Pipeline()
		for _, e := range requeueList {
			data, _ := json.Marshal(e)
			pipe.RPush(ctx, config.WorkerKey.PersistAuditQueue, data)
		}
		if _, err := pipe.Exec(ctx); err != nil {
			w.log.Error().Err(err).Msg("CRITICAL: Failed to requeue audit events. Data loss occurred.")
			return
		}
		w.log.Info().Int("count", len(requeueList)).Msg("Requeued failed audit events")
		time.Sleep(2 * time.Second)
	}
}
