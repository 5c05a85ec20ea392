package scoring

import (
	"sort"

	"insurance-advisor/internal/models"
)

// Rank orders plans best first and numbers them from 1. Ties on composite
// go to the better coverage ratio, then the better-rated provider, then
// provider id.
func Rank(plans []models.ScoredPlan) {
	sort.SliceStable(plans, func(i, j int) bool {
		a, b := plans[i], plans[j]
		if a.Score.Composite != b.Score.Composite {
			return a.Score.Composite > b.Score.Composite
		}
		if a.Score.CoverageRatio.Value != b.Score.CoverageRatio.Value {
			return a.Score.CoverageRatio.Value > b.Score.CoverageRatio.Value
		}
		if a.Plan.Reliability.Rating != b.Plan.Reliability.Rating {
			return a.Plan.Reliability.Rating > b.Plan.Reliability.Rating
		}
		return a.Plan.ProviderID < b.Plan.ProviderID
	})
	for i := range plans {
		plans[i].Rank = i + 1
	}
}
