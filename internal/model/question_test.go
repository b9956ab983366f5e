package model

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestQuestionKey(t *testing.T) {
	ptr := func(s string) *string { return &s }
	marks := decimal.NewFromInt(10)

	tests := []struct {
		name     string
		question Question
		wantOK   bool
		wantKind GradingKeyKind
	}{
		{
			"objective with correct option",
			Question{QuestionType: QuestionTypeMultipleChoice, CorrectOptionID: ptr("b"), Marks: marks},
			true, GradingKeyObjective,
		},
		{
			"objective without correct option",
			Question{QuestionType: QuestionTypeMultipleChoice, Marks: marks},
			false, "",
		},
		{
			"objective with empty correct option",
			Question{QuestionType: QuestionTypeMultipleChoice, CorrectOptionID: ptr(""), Marks: marks},
			false, "",
		},
		{
			"subjective with model answer only",
			Question{QuestionType: QuestionTypeShortAnswer, ModelAnswer: ptr("42"), Marks: marks},
			true, GradingKeyRubric,
		},
		{
			"subjective with rubric only",
			Question{QuestionType: QuestionTypeLongAnswer, Rubric: ptr("award marks for clarity"), Marks: marks},
			true, GradingKeyRubric,
		},
		{
			"subjective with neither",
			Question{QuestionType: QuestionTypeLongAnswer, Marks: marks},
			false, "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key, ok := tt.question.Key()
			if ok != tt.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tt.wantOK)
			}
			if !ok {
				return
			}
			if key.Kind != tt.wantKind {
				t.Errorf("kind = %s, want %s", key.Kind, tt.wantKind)
			}
			if !key.MaxMarks.Equal(marks) {
				t.Errorf("max marks = %s, want %s", key.MaxMarks, marks)
			}
		})
	}
}
