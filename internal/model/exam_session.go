package model

import (
	"time"

	"github.com/google/uuid"
)

// SessionStatus enumerates exam session states.
type SessionStatus string

const (
	SessionStatusNotStarted SessionStatus = "NOT_STARTED"
	SessionStatusInProgress SessionStatus = "IN_PROGRESS"
	SessionStatusSubmitted  SessionStatus = "SUBMITTED"
	SessionStatusGrading    SessionStatus = "GRADING"
	SessionStatusGraded     SessionStatus = "GRADED"
)

// Active reports whether the session still occupies the student's single
// active slot for the exam.
func (s SessionStatus) Active() bool {
	return s == SessionStatusNotStarted || s == SessionStatusInProgress
}

// transitions is the legal state graph. GRADED→GRADING exists only for
// the explicit reopen operation; no other backward edge is legal.
var transitions = map[SessionStatus][]SessionStatus{
	SessionStatusNotStarted: {SessionStatusInProgress},
	SessionStatusInProgress: {SessionStatusSubmitted},
	SessionStatusSubmitted:  {SessionStatusGrading, SessionStatusGraded},
	SessionStatusGrading:    {SessionStatusGraded},
	SessionStatusGraded:     {SessionStatusGrading},
}

// CanTransition reports whether moving a session from one status to
// another is legal.
func CanTransition(from, to SessionStatus) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// ViolationType enumerates the anti-cheat signals a session accumulates.
type ViolationType string

const (
	ViolationTabSwitch      ViolationType = "TAB_SWITCH"
	ViolationFullscreenExit ViolationType = "FULLSCREEN_EXIT"
	ViolationCopyPaste      ViolationType = "COPY_PASTE"
)

// Valid reports whether the violation type is one of the tracked kinds.
func (v ViolationType) Valid() bool {
	switch v {
	case ViolationTabSwitch, ViolationFullscreenExit, ViolationCopyPaste:
		return true
	}
	return false
}

// ExamSession represents one student's attempt at one exam. The violation
// counters and flag are advisory metadata for graders; they never affect
// score computation.
type ExamSession struct {
	ID                uuid.UUID     `json:"id"`
	ExamID            uuid.UUID     `json:"exam_id"`
	StudentID         int           `json:"student_id"`
	AttemptNumber     int           `json:"attempt_number"`
	Status            SessionStatus `json:"status"`
	StartedAt         time.Time     `json:"started_at"`
	SubmittedAt       *time.Time    `json:"submitted_at,omitempty"`
	TabSwitchCount    int           `json:"tab_switch_count"`
	FullscreenExits   int           `json:"fullscreen_exits"`
	CopyPasteAttempts int           `json:"copy_paste_attempts"`
	IsFlagged         bool          `json:"is_flagged"`
	CreatedAt         time.Time     `json:"created_at"`
	UpdatedAt         time.Time     `json:"updated_at"`
}

// RecordViolationRequest is the payload for reporting a violation event.
type RecordViolationRequest struct {
	ViolationType ViolationType `json:"violation_type" binding:"required,oneof=TAB_SWITCH FULLSCREEN_EXIT COPY_PASTE"`
}
