package handler

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/saqibtanveer-dev/fha-examportal-sub001/internal/config"
	"github.com/saqibtanveer-dev/fha-examportal-sub001/internal/middleware"
	"github.com/saqibtanveer-dev/fha-examportal-sub001/internal/repository"
	"github.com/saqibtanveer-dev/fha-examportal-sub001/internal/response"
	"github.com/saqibtanveer-dev/fha-examportal-sub001/internal/service"
	ws "github.com/saqibtanveer-dev/fha-examportal-sub001/internal/websocket"
)

const keepAliveInterval = 30 * time.Second

// buildUpgrader creates a WebSocket upgrader with origin validation.
// An empty allowedOrigins slice permits all origins (development mode).
func buildUpgrader(allowedOrigins []string) websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			if len(allowedOrigins) == 0 {
				return true
			}
			origin := r.Header.Get("Origin")
			for _, allowed := range allowedOrigins {
				if strings.EqualFold(allowed, origin) {
					return true
				}
			}
			return false
		},
	}
}

// MonitorHandler streams live violation events to proctoring staff.
type MonitorHandler struct {
	rdb      *redis.Client
	examRepo *repository.ExamRepository
	log      zerolog.Logger
	upgrader websocket.Upgrader
}

// NewMonitorHandler creates a new MonitorHandler.
func NewMonitorHandler(rdb *redis.Client, examRepo *repository.ExamRepository, log zerolog.Logger, allowedOrigins []string) *MonitorHandler {
	return &MonitorHandler{
		rdb:      rdb,
		examRepo: examRepo,
		log:      log.With().Str("component", "monitor_handler").Logger(),
		upgrader: buildUpgrader(allowedOrigins),
	}
}

// MonitorExam godoc
// WS /ws/v1/staff/exams/:exam_id/monitor
// Upgrades to WebSocket and forwards the exam's violation events live.
func (h *MonitorHandler) MonitorExam(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}
	if !middleware.HasPermission(c, middleware.PermissionExamsMonitor) {
		response.Fail(c, http.StatusForbidden, response.ErrPermissionDenied)
		return
	}

	examID, err := uuid.Parse(c.Param("exam_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}
	if _, err := h.examRepo.GetByID(c.Request.Context(), examID); err != nil {
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Error().Err(err).Msg("WebSocket upgrade failed")
		return
	}
	defer conn.Close()

	reqCtx := c.Request.Context()
	channelName := config.CacheKey.ExamMonitorChannel(examID.String())
	pubsub := h.rdb.Subscribe(reqCtx, channelName)
	defer pubsub.Close()

	h.log.Info().
		Str("exam_id", examID.String()).
		Int("staff_id", claims.UserID).
		Msg("Staff attached to live monitor")

	// Reader goroutine: discard client messages, unblock on disconnect.
	clientGone := make(chan struct{})
	go func() {
		defer close(clientGone)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	events := pubsub.Channel()
	keepAlive := time.NewTicker(keepAliveInterval)
	defer keepAlive.Stop()

	for {
		select {
		case <-reqCtx.Done():
			return
		case <-clientGone:
			return
		case <-keepAlive.C:
			if err := ws.WriteTyped(conn, ws.PongResponse{Event: ws.EventPong}); err != nil {
				return
			}
		case msg, ok := <-events:
			if !ok {
				return
			}
			notice, err := violationNotice([]byte(msg.Payload))
			if err != nil {
				h.log.Error().Err(err).Msg("Discarding malformed monitor event")
				continue
			}
			if err := ws.WriteTyped(conn, notice); err != nil {
				return
			}
		}
	}
}

func violationNotice(payload []byte) (ws.ViolationNotice, error) {
	var event service.ViolationEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		return ws.ViolationNotice{}, err
	}
	return ws.ViolationNotice{
		Event:             ws.EventViolation,
		SessionID:         event.SessionID.String(),
		StudentID:         event.StudentID,
		ViolationType:     string(event.ViolationType),
		TabSwitchCount:    event.TabSwitchCount,
		FullscreenExits:   event.FullscreenExits,
		CopyPasteAttempts: event.CopyPasteAttempts,
		IsFlagged:         event.IsFlagged,
		OccurredAt:        event.OccurredAt.Format(time.RFC3339),
	}, nil
}
