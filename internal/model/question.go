package model

import (
	"encoding/json"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// QuestionType discriminates objective questions (deterministically
// scorable) from subjective ones (scored by model or teacher).
type QuestionType string

const (
	QuestionTypeMultipleChoice QuestionType = "MULTIPLE_CHOICE"
	QuestionTypeShortAnswer    QuestionType = "SHORT_ANSWER"
	QuestionTypeLongAnswer     QuestionType = "LONG_ANSWER"
)

// Objective reports whether answers to this type can be auto-graded.
func (t QuestionType) Objective() bool {
	return t == QuestionTypeMultipleChoice
}

// Question represents a single exam question. Exactly one of the grading
// key variants applies: CorrectOptionID for MULTIPLE_CHOICE, a model
// answer and/or rubric for the subjective types.
type Question struct {
	ID              uuid.UUID       `json:"id"`
	ExamID          uuid.UUID       `json:"exam_id"`
	QuestionText    string          `json:"question_text"`
	QuestionType    QuestionType    `json:"question_type"`
	Options         json.RawMessage `json:"options,omitempty"`
	CorrectOptionID *string         `json:"correct_option_id,omitempty"`
	ModelAnswer     *string         `json:"model_answer,omitempty"`
	Rubric          *string         `json:"rubric,omitempty"`
	Marks           decimal.Decimal `json:"marks"`
	OrderNum        int             `json:"order_num"`
}

// GradingKeyKind tags the grading key variant of a question.
type GradingKeyKind string

const (
	GradingKeyObjective GradingKeyKind = "OBJECTIVE"
	GradingKeyRubric    GradingKeyKind = "RUBRIC"
)

// GradingKey is the statically-typed scoring contract of a question:
// either the correct option of an objective question or the reference
// material a scorer compares a free-text answer against.
type GradingKey struct {
	Kind            GradingKeyKind
	CorrectOptionID string // OBJECTIVE only
	ModelAnswer     string // RUBRIC only
	Rubric          string // RUBRIC only
	MaxMarks        decimal.Decimal
}

// Key derives the grading key for the question. ok is false when the
// question carries no usable key (objective without a correct option, or
// subjective without both model answer and rubric).
func (q *Question) Key() (GradingKey, bool) {
	if q.QuestionType.Objective() {
		if q.CorrectOptionID == nil || *q.CorrectOptionID == "" {
			return GradingKey{}, false
		}
		return GradingKey{
			Kind:            GradingKeyObjective,
			CorrectOptionID: *q.CorrectOptionID,
			MaxMarks:        q.Marks,
		}, true
	}

	key := GradingKey{Kind: GradingKeyRubric, MaxMarks: q.Marks}
	if q.ModelAnswer != nil {
		key.ModelAnswer = *q.ModelAnswer
	}
	if q.Rubric != nil {
		key.Rubric = *q.Rubric
	}
	if key.ModelAnswer == "" && key.Rubric == "" {
		return GradingKey{}, false
	}
	return key, true
}
