package service

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/saqibtanveer-dev/fha-examportal-sub001/internal/model"
	"github.com/saqibtanveer-dev/fha-examportal-sub001/internal/repository"
)

func strPtr(s string) *string { return &s }

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestScoreObjective(t *testing.T) {
	key := model.GradingKey{
		Kind:            model.GradingKeyObjective,
		CorrectOptionID: "b",
		MaxMarks:        dec("5"),
	}

	tests := []struct {
		name   string
		answer model.StudentAnswer
		want   string
	}{
		{"correct option", model.StudentAnswer{SelectedOptionID: strPtr("b")}, "5"},
		{"wrong option", model.StudentAnswer{SelectedOptionID: strPtr("c")}, "0"},
		{"unanswered", model.StudentAnswer{}, "0"},
		{"empty option", model.StudentAnswer{SelectedOptionID: strPtr("")}, "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := scoreObjective(key, &tt.answer)
			if !got.Equal(dec(tt.want)) {
				t.Errorf("scoreObjective() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestClampMarks(t *testing.T) {
	max := dec("10")

	tests := []struct {
		name  string
		marks string
		want  string
	}{
		{"within bounds", "7.5", "7.5"},
		{"negative", "-3", "0"},
		{"above max", "12", "10"},
		{"exactly max", "10", "10"},
		{"zero", "0", "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := clampMarks(dec(tt.marks), max)
			if !got.Equal(dec(tt.want)) {
				t.Errorf("clampMarks(%s) = %s, want %s", tt.marks, got, tt.want)
			}
		})
	}
}

func TestClampConfidence(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"0.85", "0.85"},
		{"-0.1", "0"},
		{"1.2", "1"},
		{"1", "1"},
	}

	for _, tt := range tests {
		got := clampConfidence(dec(tt.in))
		if !got.Equal(dec(tt.want)) {
			t.Errorf("clampConfidence(%s) = %s, want %s", tt.in, got, tt.want)
		}
	}
}

func TestComputePercentage(t *testing.T) {
	tests := []struct {
		name     string
		obtained string
		total    string
		want     string
	}{
		{"passing scenario", "70", "100", "70"},
		{"repeating fraction rounds", "1", "3", "33.33"},
		{"full marks", "50", "50", "100"},
		{"zero total", "0", "0", "0"},
		{"fractional marks", "12.5", "40", "31.25"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := computePercentage(dec(tt.obtained), dec(tt.total))
			if !got.Equal(dec(tt.want)) {
				t.Errorf("computePercentage(%s, %s) = %s, want %s", tt.obtained, tt.total, got, tt.want)
			}
		})
	}
}

func TestResolveBand(t *testing.T) {
	bands := []model.GradingBand{
		{Label: "A", MinPercent: dec("80"), MaxPercent: dec("100"), Position: 1},
		{Label: "B", MinPercent: dec("70"), MaxPercent: dec("79.99"), Position: 2},
		{Label: "C", MinPercent: dec("50"), MaxPercent: dec("69.99"), Position: 3},
		{Label: "F", MinPercent: dec("0"), MaxPercent: dec("49.99"), Position: 4},
	}

	tests := []struct {
		pct  string
		want string
	}{
		{"100", "A"},
		{"80", "A"},
		{"79.99", "B"},
		{"70", "B"},
		{"50", "C"},
		{"0", "F"},
	}

	for _, tt := range tests {
		got := resolveBand(bands, dec(tt.pct))
		if got == nil || *got != tt.want {
			t.Errorf("resolveBand(%s) = %v, want %s", tt.pct, got, tt.want)
		}
	}

	if got := resolveBand(nil, dec("50")); got != nil {
		t.Errorf("resolveBand with no bands = %v, want nil", got)
	}
}

func TestAssignRanks(t *testing.T) {
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	mk := func(pct string, offset time.Duration) repository.RankableResult {
		return repository.RankableResult{
			ID:          uuid.New(),
			Percentage:  dec(pct),
			SubmittedAt: base.Add(offset),
		}
	}

	tests := []struct {
		name    string
		results []repository.RankableResult
		want    []int
	}{
		{
			"no ties",
			[]repository.RankableResult{mk("90", 0), mk("80", 0), mk("70", 0)},
			[]int{1, 2, 3},
		},
		{
			"two-way tie skips a rank",
			[]repository.RankableResult{mk("90", 0), mk("85", 0), mk("85", time.Minute), mk("70", 0)},
			[]int{1, 2, 2, 4},
		},
		{
			"all tied",
			[]repository.RankableResult{mk("60", 0), mk("60", time.Minute), mk("60", 2 * time.Minute)},
			[]int{1, 1, 1},
		},
		{
			"single result",
			[]repository.RankableResult{mk("42", 0)},
			[]int{1},
		},
		{
			"empty",
			nil,
			[]int{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := assignRanks(tt.results)
			if len(got) != len(tt.want) {
				t.Fatalf("assignRanks() returned %d ranks, want %d", len(got), len(tt.want))
			}
			for i := range tt.want {
				if got[i] != tt.want[i] {
					t.Errorf("rank[%d] = %d, want %d", i, got[i], tt.want[i])
				}
			}
		})
	}
}
