package service

import (
	"github.com/shopspring/decimal"

	"github.com/saqibtanveer-dev/fha-examportal-sub001/internal/model"
	"github.com/saqibtanveer-dev/fha-examportal-sub001/internal/repository"
)

var hundred = decimal.NewFromInt(100)

// scoreObjective scores a multiple-choice answer against its key:
// full marks for the correct option, zero otherwise. An unanswered
// question scores zero rather than erroring, so grading always covers
// the whole session.
func scoreObjective(key model.GradingKey, answer *model.StudentAnswer) decimal.Decimal {
	if answer.SelectedOptionID == nil || *answer.SelectedOptionID != key.CorrectOptionID {
		return decimal.Zero
	}
	return key.MaxMarks
}

// clampMarks bounds a proposed mark to [0, max].
func clampMarks(marks, max decimal.Decimal) decimal.Decimal {
	if marks.IsNegative() {
		return decimal.Zero
	}
	if marks.GreaterThan(max) {
		return max
	}
	return marks
}

// clampConfidence bounds a confidence value to [0, 1].
func clampConfidence(c decimal.Decimal) decimal.Decimal {
	if c.IsNegative() {
		return decimal.Zero
	}
	if c.GreaterThan(decimal.NewFromInt(1)) {
		return decimal.NewFromInt(1)
	}
	return c
}

// computePercentage returns obtained/total as a percentage rounded to
// two decimal places. A zero or negative total yields zero instead of a
// division error; such exams produce 0% results rather than failures.
func computePercentage(obtained, total decimal.Decimal) decimal.Decimal {
	if !total.IsPositive() {
		return decimal.Zero
	}
	return obtained.Div(total).Mul(hundred).Round(2)
}

// resolveBand picks the grade label for a percentage. Bands are assumed
// ordered by position (best first); the first band whose inclusive
// [min, max] range contains the percentage wins. Nil when no band
// matches, which leaves the result ungraded-by-letter.
func resolveBand(bands []model.GradingBand, percentage decimal.Decimal) *string {
	for _, b := range bands {
		if percentage.GreaterThanOrEqual(b.MinPercent) && percentage.LessThanOrEqual(b.MaxPercent) {
			label := b.Label
			return &label
		}
	}
	return nil
}

// assignRanks computes standard competition ranks ("1224") over results
// already sorted best-first. Equal percentages share a rank; the entry
// after a tie takes its positional rank, so a two-way tie at rank 2 is
// followed by rank 4.
func assignRanks(results []repository.RankableResult) []int {
	ranks := make([]int, len(results))
	for i := range results {
		if i > 0 && results[i].Percentage.Equal(results[i-1].Percentage) {
			ranks[i] = ranks[i-1]
			continue
		}
		ranks[i] = i + 1
	}
	return ranks
}
