package llm

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"
)

func TestBuildScoringPrompt(t *testing.T) {
	req := ScoreRequest{
		QuestionText: "Explain photosynthesis.",
		AnswerText:   "Plants convert light into energy.",
		ModelAnswer:  "Light energy is converted into chemical energy in chloroplasts.",
		Rubric:       "Must mention light and chemical energy.",
		MaxMarks:     decimal.NewFromInt(40),
	}

	prompt := buildScoringPrompt(req)

	for _, want := range []string{req.QuestionText, req.ModelAnswer, req.Rubric, "MAX MARKS: 40"} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt should contain %q", want)
		}
	}
	if strings.Contains(prompt, req.AnswerText) {
		t.Error("student answer must not appear in the system prompt")
	}
}

func TestBuildScoringPromptOmitsEmptySections(t *testing.T) {
	prompt := buildScoringPrompt(ScoreRequest{
		QuestionText: "Define osmosis.",
		ModelAnswer:  "Movement of water across a membrane.",
		MaxMarks:     decimal.NewFromInt(10),
	})

	if strings.Contains(prompt, "GRADING RUBRIC") {
		t.Error("rubric section should be omitted when no rubric is set")
	}
	if !strings.Contains(prompt, "MODEL ANSWER") {
		t.Error("model answer section should be present")
	}
}

func TestParseScoreResponse(t *testing.T) {
	tests := []struct {
		name       string
		raw        string
		wantErr    bool
		marks      string
		confidence string
	}{
		{"valid", `{"marks": 30, "feedback": "good", "confidence": 0.8}`, false, "30", "0.8"},
		{"fractional marks", `{"marks": 12.5, "feedback": "", "confidence": 1}`, false, "12.5", "1"},
		{"malformed json", `{"marks": `, true, "", ""},
		{"plain text", `I would give this 30 marks.`, true, "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseScoreResponse(tt.raw)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected parse error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !got.Marks.Equal(decimal.RequireFromString(tt.marks)) {
				t.Errorf("marks = %s, want %s", got.Marks, tt.marks)
			}
			if !got.Confidence.Equal(decimal.RequireFromString(tt.confidence)) {
				t.Errorf("confidence = %s, want %s", got.Confidence, tt.confidence)
			}
		})
	}
}
