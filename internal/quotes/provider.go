package quotes

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"

	"insurance-advisor/internal/common/errors"
	"insurance-advisor/internal/models"
)

// Provider prices one product type for an applicant.
type Provider interface {
	ID() string
	Name() string
	// Timeout is the provider's own deadline; zero means the aggregator default.
	Timeout() time.Duration
	Offers(productType models.ProductType) bool
	Quote(ctx context.Context, profile *models.ApplicantProfile, req models.QuoteRequest) (*models.QuotePlan, error)
}

// RateTableProvider prices from a ProviderSpec. It holds no mutable state
// and is safe for concurrent use.
type RateTableProvider struct {
	spec  ProviderSpec
	now   func() time.Time
	newID func() string
}

func NewRateTableProvider(spec ProviderSpec) *RateTableProvider {
	return &RateTableProvider{
		spec:  spec,
		now:   func() time.Time { return time.Now().UTC() },
		newID: func() string { return uuid.New().String() },
	}
}

func (p *RateTableProvider) ID() string { return p.spec.ID }
func (p *RateTableProvider) Name() string { return p.spec.Name }
func (p *RateTableProvider) Timeout() time.Duration { return p.spec.Timeout }
func (p *RateTableProvider) Spec() ProviderSpec { return p.spec }

func (p *RateTableProvider) Offers(t models.ProductType) bool {
	_, ok := p.product(t)
	return ok
}

func (p *RateTableProvider) product(t models.ProductType) (Product, bool) {
	for _, prod := range p.spec.Products {
		if prod.Type == t {
			return prod, true
		}
	}
	return Product{}, false
}

func (p *RateTableProvider) Quote(ctx context.Context, profile *models.ApplicantProfile, req models.QuoteRequest) (*models.QuotePlan, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.NewQuoteProviderError(p.spec.ID, "timeout", err)
	}

	prod, ok := p.product(req.ProductType)
	if !ok {
		return nil, errors.NewQuoteProviderError(p.spec.ID, "product_not_offered", nil)
	}

	coverage := req.CoverageAmount
	if coverage < prod.MinCoverage || (prod.MaxCoverage > 0 && coverage > prod.MaxCoverage) {
		return nil, errors.NewQuoteProviderError(p.spec.ID, "coverage_out_of_range",
			fmt.Errorf("coverage %.0f outside [%.0f, %.0f]", coverage, prod.MinCoverage, prod.MaxCoverage))
	}

	score := RiskScore(profile, p.spec.Rates)
	monthly := roundCents(basePremium(prod, coverage, p.spec.RiskAppetite) * RiskMultiplier(profile, p.spec, score))
	now := p.now()

	plan := &models.QuotePlan{
		ID:              p.newID(),
		ProviderID:      p.spec.ID,
		ProviderName:    p.spec.Name,
		ProductID:       prod.ID,
		ProductName:     prod.Name,
		ProductType:     prod.Type,
		MonthlyPremium:  monthly,
		AnnualPremium:   roundCents(monthly * 12),
		MonthlyFees:     roundCents(monthly * FeeRate),
		CoverageAmount:  coverage,
		Deductible:      prod.Deductible,
		WaitingPeriods:  copyWaiting(prod.WaitingPeriods),
		Features:        append([]string(nil), prod.Features...),
		RiskScore:       score,
		RiskRating:      RiskRating(score),
		InstantApproval: score < InstantApprovalLimit,
		Reliability:     p.spec.Reliability,
		CreatedAt:       now,
		ValidUntil:      now.Add(QuoteValidity),
	}
	return plan, nil
}

func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}

func copyWaiting(in map[string]int) map[string]int {
	if in == nil {
		return nil
	}
	out := make(map[string]int, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
