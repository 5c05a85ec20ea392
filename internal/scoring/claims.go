package scoring

import (
	"fmt"

	"insurance-advisor/internal/models"
)

// Ease-of-claims blend of provider reliability.
const (
	approvalWeight   = 0.45
	processingWeight = 0.30
	ratingWeight     = 0.25

	fastProcessingDays = 5
	perSlowDay         = 2.5

	highDeductible    = 2500
	longWaitingDays   = 180
	complexityPenalty = 3.0
	noDeductibleBonus = 2.0
)

func processingScore(days float64) float64 {
	return clamp(100 - perSlowDay*(days-fastProcessingDays))
}

func easeOfClaims(plan *models.QuotePlan) models.MetricScore {
	r := plan.Reliability
	score := approvalWeight*r.ClaimsApprovalRate*100 +
		processingWeight*processingScore(r.AvgProcessingDays) +
		ratingWeight*r.Rating/5*100

	basis := fmt.Sprintf("%.0f%% approvals, %.0f day processing, rated %.1f",
		r.ClaimsApprovalRate*100, r.AvgProcessingDays, r.Rating)

	switch {
	case plan.Deductible > highDeductible:
		score -= complexityPenalty
		basis += ", high deductible"
	case plan.Deductible == 0:
		score += noDeductibleBonus
		basis += ", no deductible"
	}
	if plan.MaxWaitingDays() > longWaitingDays {
		score -= complexityPenalty
		basis += ", long waiting periods"
	}

	return models.MetricScore{Value: round1(clamp(score)), Defined: true, Basis: basis}
}
