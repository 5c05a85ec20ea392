package scoring

import (
	"fmt"
	"math"
	"sort"

	"insurance-advisor/internal/models"
)

const (
	referenceScore       = 70.0
	perFeatureBonus      = 2.0
	maxFeatureBonus      = 10.0
	deductibleShareLimit = 0.10
	deductiblePenalty    = 5.0
	waitingGraceDays     = 90.0
	waitingStepDays      = 90.0
	perWaitingStep       = 5.0
	maxWaitingPenalty    = 15.0
)

// Ratio is coverage bought per dollar of annual premium, 0 for a plan
// with no premium.
func Ratio(plan *models.QuotePlan) float64 {
	if plan.AnnualPremium <= 0 {
		return 0
	}
	return plan.CoverageAmount / plan.AnnualPremium
}

// ReferenceRatio is the median Ratio across plans, ignoring free plans.
func ReferenceRatio(plans []models.QuotePlan) float64 {
	ratios := make([]float64, 0, len(plans))
	for i := range plans {
		if r := Ratio(&plans[i]); r > 0 {
			ratios = append(ratios, r)
		}
	}
	if len(ratios) == 0 {
		return 0
	}
	sort.Float64s(ratios)
	mid := len(ratios) / 2
	if len(ratios)%2 == 0 {
		return (ratios[mid-1] + ratios[mid]) / 2
	}
	return ratios[mid]
}

func coverageRatio(plan *models.QuotePlan, reference float64) models.MetricScore {
	ratio := Ratio(plan)
	if reference <= 0 {
		reference = ratio
	}

	base := referenceScore
	if reference > 0 {
		base = math.Min(referenceScore*ratio/reference, 100)
	}
	score := base
	basis := fmt.Sprintf("$%.0f cover per premium dollar against a reference of $%.0f", ratio, reference)

	score += math.Min(perFeatureBonus*float64(len(plan.Features)), maxFeatureBonus)

	if plan.CoverageAmount > 0 && plan.Deductible > plan.CoverageAmount*deductibleShareLimit {
		score -= deductiblePenalty
		basis += ", deductible above 10% of cover"
	}

	if avg := plan.AverageWaitingDays(); avg > waitingGraceDays {
		steps := math.Floor((avg - waitingGraceDays) / waitingStepDays)
		if penalty := math.Min(perWaitingStep*steps, maxWaitingPenalty); penalty > 0 {
			score -= penalty
			basis += fmt.Sprintf(", %.0f day average wait", avg)
		}
	}

	return models.MetricScore{Value: round1(clamp(score)), Defined: true, Basis: basis}
}
