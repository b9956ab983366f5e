package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ExamStatus enumerates the possible states of an exam.
type ExamStatus string

const (
	ExamStatusDraft     ExamStatus = "DRAFT"
	ExamStatusPublished ExamStatus = "PUBLISHED"
	ExamStatusActive    ExamStatus = "ACTIVE"
	ExamStatusCompleted ExamStatus = "COMPLETED"
	ExamStatusArchived  ExamStatus = "ARCHIVED"
)

// Exam represents an exam entity. TotalMarks and PassingMarks are decimal
// so that sums of per-question marks reconcile exactly with the configured
// total.
type Exam struct {
	ID              uuid.UUID       `json:"id"`
	Title           string          `json:"title"`
	AuthorID        int             `json:"author_id"`
	Status          ExamStatus      `json:"status"`
	TotalMarks      decimal.Decimal `json:"total_marks"`
	PassingMarks    decimal.Decimal `json:"passing_marks"`
	DurationMinutes int             `json:"duration_minutes"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// Joinable reports whether students may start an attempt at this exam.
func (e *Exam) Joinable() bool {
	return e.Status == ExamStatusPublished || e.Status == ExamStatusActive
}
