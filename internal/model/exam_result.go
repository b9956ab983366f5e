package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ExamResult is the aggregated outcome of a graded session. At most one
// live (non-superseded) result exists per session; recomputation
// supersedes the old row and inserts a new one, never patches in place.
// PublishedAt is nil until a teacher explicitly publishes.
type ExamResult struct {
	ID            uuid.UUID       `json:"id"`
	SessionID     uuid.UUID       `json:"session_id"`
	ExamID        uuid.UUID       `json:"exam_id"`
	StudentID     int             `json:"student_id"`
	TotalMarks    decimal.Decimal `json:"total_marks"`
	ObtainedMarks decimal.Decimal `json:"obtained_marks"`
	Percentage    decimal.Decimal `json:"percentage"`
	IsPassed      bool            `json:"is_passed"`
	Grade         *string         `json:"grade,omitempty"`
	Rank          *int            `json:"rank,omitempty"`
	ComputedAt    time.Time       `json:"computed_at"`
	PublishedAt   *time.Time      `json:"published_at,omitempty"`
	SupersededAt  *time.Time      `json:"superseded_at,omitempty"`
}

// GradingBand is one ordered band of the school's grading scale.
// Bands are evaluated high-to-low; the first band whose inclusive range
// contains the percentage wins.
type GradingBand struct {
	Label      string          `json:"label"`
	MinPercent decimal.Decimal `json:"min_percent"`
	MaxPercent decimal.Decimal `json:"max_percent"`
	Position   int             `json:"position"`
}
