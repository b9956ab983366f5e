package websocket

// ─── Events (Server → Client) ───────────────────────────────────────

type Event string

const (
	EventViolation Event = "violation"
	EventError     Event = "error"
	EventPong      Event = "pong"
)

// ViolationNotice carries one live violation to the proctor monitor.
// The counters are the session totals after the violation, so a client
// that reconnects mid-exam catches up from the next event.
type ViolationNotice struct {
	Event             Event  `json:"event"`
	SessionID         string `json:"session_id"`
	StudentID         int    `json:"student_id"`
	ViolationType     string `json:"violation_type"`
	TabSwitchCount    int    `json:"tab_switch_count"`
	FullscreenExits   int    `json:"fullscreen_exits"`
	CopyPasteAttempts int    `json:"copy_paste_attempts"`
	IsFlagged         bool   `json:"is_flagged"`
	OccurredAt        string `json:"occurred_at"`
}

type ErrorResponse struct {
	Event Event  `json:"event"`
	Error string `json:"error"`
}

type PongResponse struct {
	Event Event `json:"event"`
}
