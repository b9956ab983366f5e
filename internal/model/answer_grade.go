package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// GradedBy identifies which path produced a grade.
type GradedBy string

const (
	GradedByAuto   GradedBy = "AUTO"
	GradedByAI     GradedBy = "AI"
	GradedByManual GradedBy = "MANUAL"
)

// AnswerGrade is the score assigned to one StudentAnswer. MarksAwarded is
// always within [0, question marks]. AIConfidence is present only when
// GradedBy is AI, and an AI grade stays IsReviewed=false until a teacher
// confirms or overrides it.
type AnswerGrade struct {
	ID              uuid.UUID        `json:"id"`
	StudentAnswerID uuid.UUID        `json:"student_answer_id"`
	MarksAwarded    decimal.Decimal  `json:"marks_awarded"`
	Feedback        *string          `json:"feedback,omitempty"`
	GradedBy        GradedBy         `json:"graded_by"`
	AIConfidence    *decimal.Decimal `json:"ai_confidence,omitempty"`
	IsReviewed      bool             `json:"is_reviewed"`
	CreatedAt       time.Time        `json:"created_at"`
	UpdatedAt       time.Time        `json:"updated_at"`
}

// OverrideGradeRequest is the payload for a manual teacher override.
type OverrideGradeRequest struct {
	MarksAwarded decimal.Decimal `json:"marks_awarded" binding:"required"`
	Feedback     *string         `json:"feedback"`
}

// PendingReviewItem is an unreviewed AI grade surfaced to the teacher
// workflow, with the owning session's anti-cheat metadata attached
// read-only.
type PendingReviewItem struct {
	Grade             AnswerGrade     `json:"grade"`
	Answer            StudentAnswer   `json:"answer"`
	QuestionText      string          `json:"question_text"`
	QuestionMarks     decimal.Decimal `json:"question_marks"`
	SessionID         uuid.UUID       `json:"session_id"`
	StudentID         int             `json:"student_id"`
	IsFlagged         bool            `json:"is_flagged"`
	TabSwitchCount    int             `json:"tab_switch_count"`
	FullscreenExits   int             `json:"fullscreen_exits"`
	CopyPasteAttempts int             `json:"copy_paste_attempts"`
}
