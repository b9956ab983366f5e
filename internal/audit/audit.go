// Package audit records staff and grading actions for later inspection.
// Events are queued to Redis and persisted in batches by a worker so the
// request path never waits on the audit table.
package audit

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/saqibtanveer-dev/fha-examportal-sub001/internal/config"
)

type Event struct {
	ActorID    int             `json:"actor_id"`
	ActorType  string          `json:"actor_type"`
	Action     string          `json:"action"`
	EntityType string          `json:"entity_type"`
	EntityID   string          `json:"entity_id"`
	Detail     json.RawMessage `json:"detail,omitempty"`
	OccurredAt time.Time       `json:"occurred_at"`
}

// Sink accepts audit events. Implementations must not block the caller on
// persistence.
type Sink interface {
	Record(ctx context.Context, event Event)
}

type redisSink struct {
	rdb *redis.Client
}

func NewRedisSink(rdb *redis.Client) Sink {
	return &redisSink{rdb: rdb}
}

// Record pushes the event onto the persistence queue. Failures are logged
// and dropped; audit writes never fail the originating request.
func (s *redisSink) Record(ctx context.Context, event Event) {
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now().UTC()
	}

	payload, err := json.Marshal(event)
	if err != nil {
		log.Error().Err(err).Str("action", event.Action).Msg("failed to marshal audit event")
		return
	}

	if err := s.rdb.LPush(ctx, config.WorkerKey.PersistAuditQueue, payload).Err(); err != nil {
		log.Error().Err(err).Str("action", event.Action).Msg("failed to queue audit event")
	}
}
