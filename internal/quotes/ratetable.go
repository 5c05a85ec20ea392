package quotes

import (
	"fmt"
	"time"

	"insurance-advisor/internal/models"
)

// PricingUnit says how a product's base rate is applied.
type PricingUnit string

const (
	// UnitFlat is a flat monthly rate.
	UnitFlat PricingUnit = "flat"
	// UnitPerThousand is a monthly rate per $1000 of coverage.
	UnitPerThousand PricingUnit = "per_thousand"
)

// FeeRate is the share of the monthly premium charged as fees.
const FeeRate = 0.08

// QuoteValidity is how long a priced plan stays valid.
const QuoteValidity = 30 * 24 * time.Hour

var riskAppetiteFactor = map[string]float64{
	"conservative": 1.2,
	"moderate":     1.0,
	"aggressive":   0.85,
}

// Band is one step of a banded factor. A value falls into the first band
// whose Max it is strictly below; a zero Max is open-ended.
type Band struct {
	Max    float64
	Factor float64
}

// RateTable holds the factors a provider applies to an applicant.
type RateTable struct {
	AgeBands         []Band
	BMIBands         []Band
	SmokerFactor     float64
	ActivityLoadings map[string]int
}

// Product is one sellable product in a provider's catalog.
type Product struct {
	ID             string
	Name           string
	Type           models.ProductType
	BaseRate       float64
	Unit           PricingUnit
	MinCoverage    float64
	MaxCoverage    float64
	Deductible     float64
	WaitingPeriods map[string]int
	Features       []string
}

// ProviderSpec is the full definition of a rate-table provider.
type ProviderSpec struct {
	ID           string
	Name         string
	Reliability  models.Reliability
	RiskAppetite string
	Timeout      time.Duration
	StateFactors map[string]float64
	Rates        RateTable
	Products     []Product
}

func bandFactor(bands []Band, v float64) float64 {
	for _, b := range bands {
		if b.Max == 0 || v < b.Max {
			return b.Factor
		}
	}
	return 1.0
}

// basePremium is the monthly price before applicant risk.
func basePremium(p Product, coverage float64, appetite string) float64 {
	premium := p.BaseRate
	if p.Unit == UnitPerThousand {
		premium = coverage / 1000 * p.BaseRate
	}
	factor, ok := riskAppetiteFactor[appetite]
	if !ok {
		factor = 1.0
	}
	return premium * factor
}

// Validate checks a spec for values that would make pricing meaningless.
func (s ProviderSpec) Validate() error {
	if s.ID == "" {
		return fmt.Errorf("provider without id")
	}
	if r := s.Reliability; r.ClaimsApprovalRate < 0 || r.ClaimsApprovalRate > 1 {
		return fmt.Errorf("provider %s: approval rate %.2f outside [0,1]", s.ID, r.ClaimsApprovalRate)
	}
	if r := s.Reliability; r.Rating < 0 || r.Rating > 5 {
		return fmt.Errorf("provider %s: rating %.1f outside [0,5]", s.ID, r.Rating)
	}
	if _, ok := riskAppetiteFactor[s.RiskAppetite]; !ok && s.RiskAppetite != "" {
		return fmt.Errorf("provider %s: unknown risk appetite %q", s.ID, s.RiskAppetite)
	}
	if len(s.Products) == 0 {
		return fmt.Errorf("provider %s: no products", s.ID)
	}
	for _, p := range s.Products {
		if !p.Type.Valid() {
			return fmt.Errorf("provider %s: product %s has unknown type %q", s.ID, p.ID, p.Type)
		}
		if p.Unit != UnitFlat && p.Unit != UnitPerThousand {
			return fmt.Errorf("provider %s: product %s has unknown unit %q", s.ID, p.ID, p.Unit)
		}
		if p.BaseRate < 0 || p.Deductible < 0 {
			return fmt.Errorf("provider %s: product %s has negative rate or deductible", s.ID, p.ID)
		}
		if p.MaxCoverage > 0 && p.MinCoverage > p.MaxCoverage {
			return fmt.Errorf("provider %s: product %s min coverage above max", s.ID, p.ID)
		}
	}
	return nil
}
