package scoring

import (
	"fmt"
	"sort"

	"insurance-advisor/internal/common/config"
	"insurance-advisor/internal/models"
)

// Anchor is one point of the affordability curve: the share of annual
// income spent on premium and the score it earns.
type Anchor struct {
	Ratio float64
	Score float64
}

// DefaultAnchors score 2% of income as 100 and 8% as 40.
var DefaultAnchors = []Anchor{{Ratio: 0.02, Score: 100}, {Ratio: 0.08, Score: 40}}

const (
	feeShareLimit        = 0.10
	feePenalty           = 5.0
	maxDeductiblePenalty = 10.0
)

// AnchorsFromConfig converts configured anchors, falling back to the defaults.
func AnchorsFromConfig(cfg config.ScoringConfig) []Anchor {
	if len(cfg.AffordabilityAnchors) == 0 {
		return DefaultAnchors
	}
	out := make([]Anchor, 0, len(cfg.AffordabilityAnchors))
	for _, a := range cfg.AffordabilityAnchors {
		out = append(out, Anchor{Ratio: a.Ratio, Score: a.Score})
	}
	return out
}

// interpolate is piecewise-linear over anchors sorted by ratio and flat
// outside the first and last anchor.
func interpolate(anchors []Anchor, ratio float64) float64 {
	if len(anchors) == 0 {
		return 0
	}
	if ratio <= anchors[0].Ratio {
		return anchors[0].Score
	}
	last := anchors[len(anchors)-1]
	if ratio >= last.Ratio {
		return last.Score
	}
	for i := 1; i < len(anchors); i++ {
		lo, hi := anchors[i-1], anchors[i]
		if ratio <= hi.Ratio {
			t := (ratio - lo.Ratio) / (hi.Ratio - lo.Ratio)
			return lo.Score + t*(hi.Score-lo.Score)
		}
	}
	return last.Score
}

func sortedAnchors(in []Anchor) []Anchor {
	out := append([]Anchor(nil), in...)
	sort.Slice(out, func(i, j int) bool { return out[i].Ratio < out[j].Ratio })
	return out
}

// affordability scores premium against the applicant's income. It is
// undefined when income is unknown or zero.
func affordability(anchors []Anchor, plan *models.QuotePlan, profile *models.ApplicantProfile) models.MetricScore {
	if profile == nil || !profile.IncomeKnown() {
		return models.MetricScore{Defined: false, Basis: "annual income unknown"}
	}

	income := profile.AnnualIncome
	ratio := plan.AnnualPremium / income
	score := interpolate(anchors, ratio)

	basis := fmt.Sprintf("premium is %.1f%% of income", ratio*100)
	if plan.MonthlyFees*12 > plan.AnnualPremium*feeShareLimit {
		score -= feePenalty
		basis += ", fees above 10% of premium"
	}
	if plan.Deductible > 0 {
		penalty := plan.Deductible / income * 100
		if penalty > maxDeductiblePenalty {
			penalty = maxDeductiblePenalty
		}
		score -= penalty
		basis += fmt.Sprintf(", deductible costs %.1f points", penalty)
	}

	return models.MetricScore{Value: round1(clamp(score)), Defined: true, Basis: basis}
}
