// Package scoring rates quote plans against the applicant's own finances.
package scoring

import (
	"math"

	"insurance-advisor/internal/common/errors"
	"insurance-advisor/internal/common/logger"
	"insurance-advisor/internal/models"
)

// Metric weights. They sum to 1.0.
const (
	WeightAffordability = 0.40
	WeightEaseOfClaims  = 0.25
	WeightCoverageRatio = 0.35
)

// Engine computes PolicyScores. It is stateless apart from its anchors and
// safe for concurrent use.
type Engine struct {
	anchors []Anchor
	log     logger.Logger
}

// NewEngine builds an engine over the given affordability anchors; an empty
// slice uses DefaultAnchors.
func NewEngine(anchors []Anchor, log logger.Logger) *Engine {
	if len(anchors) == 0 {
		anchors = DefaultAnchors
	}
	return &Engine{
		anchors: sortedAnchors(anchors),
		log:     log.WithFields(map[string]interface{}{"component": "scoring"}),
	}
}

// Weights returns the effective weights. Without affordability the other two
// are renormalized to sum to 1.
func Weights(affordabilityDefined bool) map[string]float64 {
	if affordabilityDefined {
		return map[string]float64{
			models.MetricAffordability: WeightAffordability,
			models.MetricEaseOfClaims:  WeightEaseOfClaims,
			models.MetricCoverageRatio: WeightCoverageRatio,
		}
	}
	rest := WeightEaseOfClaims + WeightCoverageRatio
	return map[string]float64{
		models.MetricAffordability: 0,
		models.MetricEaseOfClaims:  WeightEaseOfClaims / rest,
		models.MetricCoverageRatio: WeightCoverageRatio / rest,
	}
}

// Score rates one plan. reference is the coverage ratio the plan is compared
// against, normally the median of its quote set.
func (e *Engine) Score(plan *models.QuotePlan, profile *models.ApplicantProfile, reference float64) models.PolicyScore {
	aff := affordability(e.anchors, plan, profile)
	claims := easeOfClaims(plan)
	cov := coverageRatio(plan, reference)

	weights := Weights(aff.Defined)
	composite := weights[models.MetricEaseOfClaims]*claims.Value +
		weights[models.MetricCoverageRatio]*cov.Value
	if aff.Defined {
		composite += weights[models.MetricAffordability] * aff.Value
	}
	composite = round1(composite)

	score := models.PolicyScore{
		PlanID:        plan.ID,
		ProviderID:    plan.ProviderID,
		Affordability: aff,
		EaseOfClaims:  claims,
		CoverageRatio: cov,
		Composite:     composite,
		Category:      Category(composite),
		Weights:       weights,
	}
	if !aff.Defined {
		note := errors.NewScoringError(models.MetricAffordability, "annual income unknown, weights renormalized")
		score.Degraded = append(score.Degraded, note.Error())
	}
	return score
}

// ScoreSet scores every plan in set against the set's median coverage ratio
// and returns them ranked.
func (e *Engine) ScoreSet(set *models.QuoteSet, profile *models.ApplicantProfile) []models.ScoredPlan {
	if set == nil || len(set.Plans) == 0 {
		return []models.ScoredPlan{}
	}

	reference := ReferenceRatio(set.Plans)
	scored := make([]models.ScoredPlan, 0, len(set.Plans))
	for i := range set.Plans {
		plan := set.Plans[i]
		scored = append(scored, models.ScoredPlan{
			Plan:  plan,
			Score: e.Score(&plan, profile, reference),
		})
	}
	Rank(scored)

	fields := map[string]interface{}{
		"quoteSetId": set.ID,
		"plans":      len(scored),
		"reference":  round1(reference),
		"top":        scored[0].Plan.ProviderID,
	}
	if len(scored[0].Score.Degraded) > 0 {
		e.log.Warn("scoring degraded", fields)
	} else {
		e.log.Debug("quote set scored", fields)
	}
	return scored
}

// Category bands a composite score.
func Category(composite float64) string {
	switch {
	case composite >= 90:
		return "excellent"
	case composite >= 80:
		return "very_good"
	case composite >= 70:
		return "good"
	case composite >= 60:
		return "fair"
	}
	return "poor"
}

func clamp(v float64) float64 {
	return math.Max(0, math.Min(100, v))
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
