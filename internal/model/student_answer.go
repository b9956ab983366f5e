package model

import (
	"github.com/google/uuid"
)

// StudentAnswer is one answer to one exam question within a session.
// AnswerText is set for subjective questions, SelectedOptionID for
// multiple choice. Answers are immutable once the session is SUBMITTED;
// only grading attaches to them afterwards.
type StudentAnswer struct {
	ID               uuid.UUID `json:"id"`
	SessionID        uuid.UUID `json:"session_id"`
	QuestionID       uuid.UUID `json:"question_id"`
	AnswerText       *string   `json:"answer_text,omitempty"`
	SelectedOptionID *string   `json:"selected_option_id,omitempty"`
}

// Answered reports whether the student provided any content.
func (a *StudentAnswer) Answered() bool {
	if a.SelectedOptionID != nil && *a.SelectedOptionID != "" {
		return true
	}
	return a.AnswerText != nil && *a.AnswerText != ""
}

// SubmitAnswersRequest is the payload for submitting a session.
type SubmitAnswersRequest struct {
	Answers []AnswerSubmission `json:"answers" binding:"required,dive"`
}

// AnswerSubmission is one answer in a submit payload.
type AnswerSubmission struct {
	QuestionID       uuid.UUID `json:"question_id" binding:"required"`
	AnswerText       *string   `json:"answer_text"`
	SelectedOptionID *string   `json:"selected_option_id"`
}
