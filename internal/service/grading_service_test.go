package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/saqibtanveer-dev/fha-examportal-sub001/internal/apperr"
	"github.com/saqibtanveer-dev/fha-examportal-sub001/internal/llm"
	"github.com/saqibtanveer-dev/fha-examportal-sub001/internal/model"
	"github.com/saqibtanveer-dev/fha-examportal-sub001/internal/repository"
)

// stubScorer returns a canned result or error and records what it was
// asked.
type stubScorer struct {
	result      llm.ScoreResult
	err         error
	gotReq      llm.ScoreRequest
	hadDeadline bool
}

func (s *stubScorer) Score(ctx context.Context, req llm.ScoreRequest) (llm.ScoreResult, error) {
	s.gotReq = req
	_, s.hadDeadline = ctx.Deadline()
	if s.err != nil {
		return llm.ScoreResult{}, s.err
	}
	return s.result, nil
}

func subjectiveAnswer(status model.SessionStatus) *repository.AnswerForGrading {
	return &repository.AnswerForGrading{
		Answer: model.StudentAnswer{
			ID:         uuid.New(),
			AnswerText: strPtr("Photosynthesis converts light into chemical energy."),
		},
		QuestionType:  model.QuestionTypeShortAnswer,
		ModelAnswer:   strPtr("Light energy is converted into chemical energy."),
		Rubric:        strPtr("Award full marks for mentioning energy conversion."),
		QuestionText:  "Explain photosynthesis.",
		QuestionMarks: dec("10"),
		SessionStatus: status,
	}
}

func TestCheckAIGradeable(t *testing.T) {
	tests := []struct {
		name     string
		answer   *repository.AnswerForGrading
		wantCode apperr.Code
	}{
		{"submitted session", subjectiveAnswer(model.SessionStatusSubmitted), ""},
		{"grading session", subjectiveAnswer(model.SessionStatusGrading), ""},
		{"in-progress session", subjectiveAnswer(model.SessionStatusInProgress), apperr.CodeInvalidState},
		{"graded session", subjectiveAnswer(model.SessionStatusGraded), apperr.CodeInvalidState},
		{
			"objective question",
			&repository.AnswerForGrading{
				QuestionType:    model.QuestionTypeMultipleChoice,
				CorrectOptionID: strPtr("a"),
				QuestionMarks:   dec("5"),
				SessionStatus:   model.SessionStatusGrading,
			},
			apperr.CodeValidationFailed,
		},
		{
			"no model answer or rubric",
			&repository.AnswerForGrading{
				QuestionType:  model.QuestionTypeLongAnswer,
				QuestionMarks: dec("10"),
				SessionStatus: model.SessionStatusGrading,
			},
			apperr.CodeValidationFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key, err := checkAIGradeable(tt.answer)
			if apperr.CodeOf(err) != tt.wantCode {
				t.Fatalf("checkAIGradeable() code = %q, want %q (err: %v)", apperr.CodeOf(err), tt.wantCode, err)
			}
			if tt.wantCode == "" {
				if key.Kind != model.GradingKeyRubric {
					t.Errorf("key kind = %s, want %s", key.Kind, model.GradingKeyRubric)
				}
				if !key.MaxMarks.Equal(dec("10")) {
					t.Errorf("key max marks = %s, want 10", key.MaxMarks)
				}
			}
		})
	}
}

func TestProposeGradeClampsModelOutput(t *testing.T) {
	tests := []struct {
		name           string
		result         llm.ScoreResult
		wantMarks      string
		wantConfidence string
	}{
		{"within bounds", llm.ScoreResult{Marks: dec("7.5"), Confidence: dec("0.8")}, "7.5", "0.8"},
		{"marks over max", llm.ScoreResult{Marks: dec("15"), Confidence: dec("1.4")}, "10", "1"},
		{"negative marks", llm.ScoreResult{Marks: dec("-3"), Confidence: dec("-0.2")}, "0", "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := subjectiveAnswer(model.SessionStatusGrading)
			key, err := checkAIGradeable(a)
			if err != nil {
				t.Fatalf("checkAIGradeable() error: %v", err)
			}

			scorer := &stubScorer{result: tt.result}
			grade, err := proposeGrade(context.Background(), scorer, time.Second, a, key)
			if err != nil {
				t.Fatalf("proposeGrade() error: %v", err)
			}
			if !grade.MarksAwarded.Equal(dec(tt.wantMarks)) {
				t.Errorf("marks = %s, want %s", grade.MarksAwarded, tt.wantMarks)
			}
			if grade.AIConfidence == nil || !grade.AIConfidence.Equal(dec(tt.wantConfidence)) {
				t.Errorf("confidence = %v, want %s", grade.AIConfidence, tt.wantConfidence)
			}
			if grade.GradedBy != model.GradedByAI {
				t.Errorf("graded_by = %s, want %s", grade.GradedBy, model.GradedByAI)
			}
			if grade.IsReviewed {
				t.Error("an AI grade must start unreviewed")
			}
		})
	}
}

func TestProposeGradeRequestContents(t *testing.T) {
	a := subjectiveAnswer(model.SessionStatusSubmitted)
	key, err := checkAIGradeable(a)
	if err != nil {
		t.Fatalf("checkAIGradeable() error: %v", err)
	}

	scorer := &stubScorer{result: llm.ScoreResult{Marks: dec("6"), Confidence: dec("0.9"), Feedback: "Good answer."}}
	grade, err := proposeGrade(context.Background(), scorer, time.Second, a, key)
	if err != nil {
		t.Fatalf("proposeGrade() error: %v", err)
	}

	if scorer.gotReq.QuestionText != a.QuestionText {
		t.Errorf("request question = %q, want %q", scorer.gotReq.QuestionText, a.QuestionText)
	}
	if scorer.gotReq.AnswerText != *a.Answer.AnswerText {
		t.Errorf("request answer = %q, want %q", scorer.gotReq.AnswerText, *a.Answer.AnswerText)
	}
	if scorer.gotReq.ModelAnswer != *a.ModelAnswer {
		t.Errorf("request model answer = %q, want %q", scorer.gotReq.ModelAnswer, *a.ModelAnswer)
	}
	if !scorer.gotReq.MaxMarks.Equal(dec("10")) {
		t.Errorf("request max marks = %s, want 10", scorer.gotReq.MaxMarks)
	}
	if !scorer.hadDeadline {
		t.Error("scorer context has no deadline")
	}
	if grade.Feedback == nil || *grade.Feedback != "Good answer." {
		t.Errorf("feedback = %v, want Good answer.", grade.Feedback)
	}
	if grade.StudentAnswerID != a.Answer.ID {
		t.Errorf("student answer id = %s, want %s", grade.StudentAnswerID, a.Answer.ID)
	}
}

func TestProposeGradeProviderFailure(t *testing.T) {
	a := subjectiveAnswer(model.SessionStatusGrading)
	key, err := checkAIGradeable(a)
	if err != nil {
		t.Fatalf("checkAIGradeable() error: %v", err)
	}

	scorer := &stubScorer{err: errors.New("upstream timeout")}
	grade, err := proposeGrade(context.Background(), scorer, time.Second, a, key)
	if grade != nil {
		t.Fatalf("proposeGrade() = %+v on failure, want nil", grade)
	}
	if apperr.CodeOf(err) != apperr.CodeScoringUnavailable {
		t.Fatalf("code = %q, want %q", apperr.CodeOf(err), apperr.CodeScoringUnavailable)
	}
}
