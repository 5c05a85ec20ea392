package scoring

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"insurance-advisor/internal/common/config"
	"insurance-advisor/internal/common/errors"
	"insurance-advisor/internal/common/logger"
	"insurance-advisor/internal/models"
)

func declaredIncome(v float64) *models.ApplicantProfile {
	return &models.ApplicantProfile{AnnualIncome: v, IncomeSource: models.IncomeDeclared}
}

func plan(id string, coverage, annual float64) models.QuotePlan {
	return models.QuotePlan{
		ID:             id,
		ProviderID:     id,
		CoverageAmount: coverage,
		AnnualPremium:  annual,
		MonthlyPremium: annual / 12,
		MonthlyFees:    annual / 12 * 0.08,
		Reliability:    models.Reliability{ClaimsApprovalRate: 0.9, AvgProcessingDays: 10, Rating: 4},
	}
}

// ==========================
// Affordability
// ==========================

func TestAffordability_Scenarios(t *testing.T) {
	p := plan("p", 250000, 3000)
	p.Deductible = 1000

	t.Run("mid curve with deductible", func(t *testing.T) {
		got := affordability(DefaultAnchors, &p, declaredIncome(60000))
		require.True(t, got.Defined)
		assert.InDelta(t, 68.3, got.Value, 0.001)
	})

	t.Run("beyond last anchor", func(t *testing.T) {
		got := affordability(DefaultAnchors, &p, declaredIncome(30000))
		require.True(t, got.Defined)
		assert.LessOrEqual(t, got.Value, 40.0)
		assert.InDelta(t, 36.7, got.Value, 0.001)
	})
}

func TestAffordability_Curve(t *testing.T) {
	tests := []struct {
		name   string
		income float64
		want   float64
	}{
		{"below first anchor is flat", 300000, 100},
		{"on first anchor", 150000, 100},
		{"half way", 60000, 70},
		{"on last anchor", 37500, 40},
		{"far beyond", 10000, 40},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := plan("p", 250000, 3000)
			got := affordability(DefaultAnchors, &p, declaredIncome(tt.income))
			assert.InDelta(t, tt.want, got.Value, 0.001)
		})
	}
}

func TestAffordability_Penalties(t *testing.T) {
	p := plan("p", 250000, 3000)
	p.MonthlyFees = 30 // 360/yr, above 10% of premium
	got := affordability(DefaultAnchors, &p, declaredIncome(60000))
	assert.InDelta(t, 65, got.Value, 0.001)

	p = plan("p", 250000, 3000)
	p.Deductible = 50000
	got = affordability(DefaultAnchors, &p, declaredIncome(60000))
	assert.InDelta(t, 60, got.Value, 0.001, "deductible penalty is capped at 10")
}

func TestAffordability_UnknownIncome(t *testing.T) {
	p := plan("p", 250000, 3000)

	for _, prof := range []*models.ApplicantProfile{
		{IncomeSource: models.IncomeUnknown},
		{AnnualIncome: 0, IncomeSource: models.IncomeDeclared},
		nil,
	} {
		got := affordability(DefaultAnchors, &p, prof)
		assert.False(t, got.Defined)
		assert.Zero(t, got.Value)
	}
}

func TestAnchorsFromConfig(t *testing.T) {
	assert.Equal(t, DefaultAnchors, AnchorsFromConfig(config.ScoringConfig{}))

	got := AnchorsFromConfig(config.ScoringConfig{AffordabilityAnchors: []config.AffordabilityAnchor{
		{Ratio: 0.01, Score: 100}, {Ratio: 0.05, Score: 60}, {Ratio: 0.1, Score: 20},
	}})
	require.Len(t, got, 3)
	assert.Equal(t, Anchor{Ratio: 0.05, Score: 60}, got[1])
}

func TestInterpolate_MultipleSegments(t *testing.T) {
	anchors := sortedAnchors([]Anchor{{0.1, 20}, {0.01, 100}, {0.05, 60}})
	assert.InDelta(t, 80, interpolate(anchors, 0.03), 0.001)
	assert.InDelta(t, 40, interpolate(anchors, 0.075), 0.001)
	assert.InDelta(t, 20, interpolate(anchors, 0.5), 0.001)
}

// ==========================
// Ease of claims
// ==========================

func TestEaseOfClaims(t *testing.T) {
	tests := []struct {
		name       string
		rel        models.Reliability
		deductible float64
		waiting    map[string]int
		want       float64
	}{
		{
			name:       "fast reliable provider",
			rel:        models.Reliability{ClaimsApprovalRate: 0.97, AvgProcessingDays: 8, Rating: 4.7},
			deductible: 500,
			waiting:    map[string]int{"general": 14, "pre_existing": 180},
			want:       94.9,
		},
		{
			name:       "high deductible and long wait",
			rel:        models.Reliability{ClaimsApprovalRate: 0.86, AvgProcessingDays: 22, Rating: 3.8},
			deductible: 5000,
			waiting:    map[string]int{"general": 60, "pre_existing": 540},
			want:       68.95,
		},
		{
			name: "no deductible bonus",
			rel:  models.Reliability{ClaimsApprovalRate: 0.86, AvgProcessingDays: 22, Rating: 3.8},
			want: 76.95,
		},
		{
			name: "processing faster than five days is capped",
			rel:  models.Reliability{ClaimsApprovalRate: 1, AvgProcessingDays: 1, Rating: 5},
			want: 100,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := models.QuotePlan{Reliability: tt.rel, Deductible: tt.deductible, WaitingPeriods: tt.waiting}
			got := easeOfClaims(&p)
			assert.True(t, got.Defined)
			assert.InDelta(t, tt.want, got.Value, 0.1)
			assert.NotEmpty(t, got.Basis)
		})
	}
}

// ==========================
// Coverage ratio
// ==========================

func TestCoverageRatio(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(p *models.QuotePlan)
		reference float64
		want      float64
	}{
		{"at reference", func(p *models.QuotePlan) {}, 500, 70},
		{"features add up to ten", func(p *models.QuotePlan) { p.Features = []string{"a", "b", "c", "d", "e", "f"} }, 500, 80},
		{"double the reference caps at 100", func(p *models.QuotePlan) {}, 250, 100},
		{"half the reference", func(p *models.QuotePlan) {}, 1000, 35},
		{"deductible above tenth of cover", func(p *models.QuotePlan) { p.Deductible = 60000 }, 500, 65},
		{"one full waiting step", func(p *models.QuotePlan) { p.WaitingPeriods = map[string]int{"a": 30, "b": 365} }, 500, 65},
		{"waiting penalty is capped", func(p *models.QuotePlan) { p.WaitingPeriods = map[string]int{"a": 730} }, 500, 55},
		{"short waits are free", func(p *models.QuotePlan) { p.WaitingPeriods = map[string]int{"a": 150} }, 500, 70},
		{"no reference uses own ratio", func(p *models.QuotePlan) {}, 0, 70},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := plan("p", 500000, 1000)
			tt.mutate(&p)
			got := coverageRatio(&p, tt.reference)
			assert.InDelta(t, tt.want, got.Value, 0.001)
		})
	}
}

func TestCoverageRatio_Monotone(t *testing.T) {
	const reference = 300.0

	prev := -1.0
	for _, coverage := range []float64{50000, 100000, 200000, 300000, 500000, 1000000} {
		p := plan("p", coverage, 1000)
		got := coverageRatio(&p, reference).Value
		assert.GreaterOrEqual(t, got, prev, "coverage %.0f", coverage)
		prev = got
	}

	prev = 101.0
	for _, premium := range []float64{200, 500, 1000, 2000, 5000} {
		p := plan("p", 300000, premium)
		got := coverageRatio(&p, reference).Value
		assert.LessOrEqual(t, got, prev, "premium %.0f", premium)
		prev = got
	}
}

func TestReferenceRatio(t *testing.T) {
	odd := []models.QuotePlan{plan("a", 100000, 1000), plan("b", 300000, 1000), plan("c", 200000, 1000)}
	assert.InDelta(t, 200, ReferenceRatio(odd), 0.001)

	even := append(odd, plan("d", 400000, 1000))
	assert.InDelta(t, 250, ReferenceRatio(even), 0.001)

	free := append([]models.QuotePlan{plan("z", 100000, 0)}, odd...)
	assert.InDelta(t, 200, ReferenceRatio(free), 0.001)

	assert.Zero(t, ReferenceRatio(nil))
}

// ==========================
// Composite and ranking
// ==========================

func TestWeights_SumToOne(t *testing.T) {
	for _, defined := range []bool{true, false} {
		total := 0.0
		for _, w := range Weights(defined) {
			total += w
		}
		assert.InDelta(t, 1.0, total, 1e-9, "affordability defined=%v", defined)
	}
	assert.Zero(t, Weights(false)[models.MetricAffordability])
}

func TestScore_Composite(t *testing.T) {
	engine := NewEngine(nil, logger.NewTestLogger(t))
	p := plan("p", 250000, 3000)
	p.Deductible = 1000
	p.Features = []string{"level_premium"}

	got := engine.Score(&p, declaredIncome(60000), Ratio(&p))

	want := 0.40*got.Affordability.Value + 0.25*got.EaseOfClaims.Value + 0.35*got.CoverageRatio.Value
	assert.InDelta(t, want, got.Composite, 0.051)
	assert.Equal(t, "p", got.PlanID)
	assert.Equal(t, Category(got.Composite), got.Category)
	assert.Empty(t, got.Degraded)
}

func TestScore_DegradedWithoutIncome(t *testing.T) {
	engine := NewEngine(DefaultAnchors, logger.NewTestLogger(t))
	p := plan("p", 250000, 3000)

	got := engine.Score(&p, &models.ApplicantProfile{IncomeSource: models.IncomeUnknown}, Ratio(&p))

	assert.False(t, got.Affordability.Defined)
	require.Len(t, got.Degraded, 1)
	assert.Contains(t, got.Degraded[0], string(errors.ErrCodeScoringDegraded))

	want := got.EaseOfClaims.Value*0.25/0.60 + got.CoverageRatio.Value*0.35/0.60
	assert.InDelta(t, want, got.Composite, 0.051)
}

func TestCategory(t *testing.T) {
	tests := []struct {
		score float64
		want  string
	}{
		{95, "excellent"}, {90, "excellent"}, {89.9, "very_good"}, {80, "very_good"},
		{75, "good"}, {60, "fair"}, {59.9, "poor"}, {0, "poor"},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("%.1f", tt.score), func(t *testing.T) {
			assert.Equal(t, tt.want, Category(tt.score))
		})
	}
}

func TestRank_TieBreaks(t *testing.T) {
	mk := func(id string, composite, coverage, rating float64) models.ScoredPlan {
		return models.ScoredPlan{
			Plan: models.QuotePlan{ProviderID: id, Reliability: models.Reliability{Rating: rating}},
			Score: models.PolicyScore{
				Composite:     composite,
				CoverageRatio: models.MetricScore{Value: coverage},
			},
		}
	}
	plans := []models.ScoredPlan{
		mk("low", 60, 90, 5),
		mk("tie-rating-low", 80, 70, 4.0),
		mk("tie-coverage", 80, 75, 3.0),
		mk("tie-rating-high", 80, 70, 4.5),
		mk("best", 85, 10, 1),
	}

	Rank(plans)

	var order []string
	for i, p := range plans {
		order = append(order, p.Plan.ProviderID)
		assert.Equal(t, i+1, p.Rank)
	}
	assert.Equal(t, []string{"best", "tie-coverage", "tie-rating-high", "tie-rating-low", "low"}, order)
}

func TestScoreSet(t *testing.T) {
	engine := NewEngine(nil, logger.NewTestLogger(t))

	cheap := plan("cheap", 500000, 1200)
	mid := plan("mid", 500000, 2400)
	dear := plan("dear", 500000, 6000)
	set := &models.QuoteSet{ID: "qs", Plans: []models.QuotePlan{dear, mid, cheap}}

	scored := engine.ScoreSet(set, declaredIncome(80000))

	require.Len(t, scored, 3)
	assert.Equal(t, "cheap", scored[0].Plan.ProviderID)
	assert.Equal(t, "dear", scored[2].Plan.ProviderID)
	for i, sp := range scored {
		assert.Equal(t, i+1, sp.Rank)
		if i > 0 {
			assert.LessOrEqual(t, sp.Score.Composite, scored[i-1].Score.Composite)
		}
	}
	// median plan sits exactly on the reference
	assert.InDelta(t, 70, scored[1].Score.CoverageRatio.Value, 0.001)
}

func TestScoreSet_Empty(t *testing.T) {
	engine := NewEngine(nil, logger.NewNoOpLogger())
	assert.Empty(t, engine.ScoreSet(&models.QuoteSet{}, declaredIncome(1)))
	assert.Empty(t, engine.ScoreSet(nil, nil))
}
