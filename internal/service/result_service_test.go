package service

import (
	"testing"

	"github.com/google/uuid"

	"github.com/saqibtanveer-dev/fha-examportal-sub001/internal/model"
)

func TestBuildResult(t *testing.T) {
	session := &model.ExamSession{
		ID:        uuid.New(),
		ExamID:    uuid.New(),
		StudentID: 7,
	}
	bands := []model.GradingBand{
		{Label: "A+", MinPercent: dec("90"), MaxPercent: dec("100"), Position: 1},
		{Label: "A", MinPercent: dec("80"), MaxPercent: dec("89.99"), Position: 2},
		{Label: "B", MinPercent: dec("70"), MaxPercent: dec("79.99"), Position: 3},
		{Label: "C", MinPercent: dec("60"), MaxPercent: dec("69.99"), Position: 4},
		{Label: "F", MinPercent: dec("0"), MaxPercent: dec("59.99"), Position: 5},
	}

	tests := []struct {
		name           string
		examTotal      string
		passing        string
		obtained       string
		wantPercentage string
		wantPassed     bool
		wantGrade      string
	}{
		// The divisor is the exam's configured total even when the
		// question pool sums to something else.
		{"question pool below exam total", "100", "40", "90", "90", true, "A+"},
		{"exact pass boundary", "100", "40", "40", "40", true, "F"},
		{"below passing", "100", "40", "35", "35", false, "F"},
		{"mixed grading scenario", "100", "40", "70", "70", true, "B"},
		{"non-integer percentage", "110", "40", "68", "61.82", true, "C"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			exam := &model.Exam{
				TotalMarks:   dec(tt.examTotal),
				PassingMarks: dec(tt.passing),
			}
			res := buildResult(session, exam, dec(tt.obtained), bands)

			if !res.TotalMarks.Equal(dec(tt.examTotal)) {
				t.Errorf("total marks = %s, want %s", res.TotalMarks, tt.examTotal)
			}
			if !res.ObtainedMarks.Equal(dec(tt.obtained)) {
				t.Errorf("obtained marks = %s, want %s", res.ObtainedMarks, tt.obtained)
			}
			if !res.Percentage.Equal(dec(tt.wantPercentage)) {
				t.Errorf("percentage = %s, want %s", res.Percentage, tt.wantPercentage)
			}
			if res.IsPassed != tt.wantPassed {
				t.Errorf("is_passed = %v, want %v", res.IsPassed, tt.wantPassed)
			}
			if tt.wantGrade != "" {
				if res.Grade == nil || *res.Grade != tt.wantGrade {
					t.Errorf("grade = %v, want %s", res.Grade, tt.wantGrade)
				}
			}
			if res.SessionID != session.ID || res.ExamID != session.ExamID || res.StudentID != session.StudentID {
				t.Error("result does not carry the session identity")
			}
		})
	}
}
