package quotes

import (
	"fmt"
	"time"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	"insurance-advisor/internal/models"
)

// hclRateBook is the top-level structure of a rate book file.
type hclRateBook struct {
	Providers []*hclProvider `hcl:"provider,block"`
}

type hclProvider struct {
	ID           string             `hcl:"id,label"`
	Name         string             `hcl:"name"`
	RiskAppetite string             `hcl:"risk_appetite,optional"`
	TimeoutMS    int                `hcl:"timeout_ms,optional"`
	StateFactors map[string]float64 `hcl:"state_factors,optional"`
	Reliability  *hclReliability    `hcl:"reliability,block"`
	Rates        *hclRates          `hcl:"rates,block"`
	Products     []*hclProduct      `hcl:"product,block"`
}

type hclReliability struct {
	ApprovalRate   float64 `hcl:"approval_rate"`
	ProcessingDays float64 `hcl:"processing_days"`
	Rating         float64 `hcl:"rating"`
}

type hclBand struct {
	Max    float64 `hcl:"max,optional"`
	Factor float64 `hcl:"factor"`
}

type hclRates struct {
	SmokerFactor     float64        `hcl:"smoker_factor,optional"`
	ActivityLoadings map[string]int `hcl:"activity_loadings,optional"`
	AgeBands         []*hclBand     `hcl:"age_band,block"`
	BMIBands         []*hclBand     `hcl:"bmi_band,block"`
}

type hclProduct struct {
	ID             string         `hcl:"id,label"`
	Name           string         `hcl:"name"`
	Type           string         `hcl:"type"`
	Unit           string         `hcl:"unit,optional"`
	BaseRate       float64        `hcl:"base_rate"`
	MinCoverage    float64        `hcl:"min_coverage,optional"`
	MaxCoverage    float64        `hcl:"max_coverage,optional"`
	Deductible     float64        `hcl:"deductible,optional"`
	WaitingPeriods map[string]int `hcl:"waiting_periods,optional"`
	Features       []string       `hcl:"features,optional"`
}

// LoadRateBook parses an HCL rate book file into provider specs.
func LoadRateBook(path string) ([]ProviderSpec, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(path)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse rate book %s: %w", path, diags)
	}
	return decodeRateBook(file, path)
}

// ParseRateBook parses rate book source held in memory.
func ParseRateBook(src []byte, filename string) ([]ProviderSpec, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse rate book %s: %w", filename, diags)
	}
	return decodeRateBook(file, filename)
}

func decodeRateBook(file *hcl.File, filename string) ([]ProviderSpec, error) {
	var book hclRateBook
	if diags := gohcl.DecodeBody(file.Body, nil, &book); diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode rate book %s: %w", filename, diags)
	}
	if len(book.Providers) == 0 {
		return nil, fmt.Errorf("rate book %s defines no providers", filename)
	}

	seen := make(map[string]bool)
	specs := make([]ProviderSpec, 0, len(book.Providers))
	for _, hp := range book.Providers {
		if seen[hp.ID] {
			return nil, fmt.Errorf("rate book %s: duplicate provider %q", filename, hp.ID)
		}
		seen[hp.ID] = true

		spec := hp.toSpec()
		if err := spec.Validate(); err != nil {
			return nil, fmt.Errorf("rate book %s: %w", filename, err)
		}
		specs = append(specs, spec)
	}
	return specs, nil
}

func (hp *hclProvider) toSpec() ProviderSpec {
	spec := ProviderSpec{
		ID:           hp.ID,
		Name:         hp.Name,
		RiskAppetite: hp.RiskAppetite,
		Timeout:      time.Duration(hp.TimeoutMS) * time.Millisecond,
		StateFactors: hp.StateFactors,
	}
	if spec.RiskAppetite == "" {
		spec.RiskAppetite = "moderate"
	}
	if hp.Reliability != nil {
		spec.Reliability = models.Reliability{
			ClaimsApprovalRate: hp.Reliability.ApprovalRate,
			AvgProcessingDays:  hp.Reliability.ProcessingDays,
			Rating:             hp.Reliability.Rating,
		}
	}
	if hp.Rates != nil {
		spec.Rates = RateTable{
			SmokerFactor:     hp.Rates.SmokerFactor,
			ActivityLoadings: hp.Rates.ActivityLoadings,
			AgeBands:         toBands(hp.Rates.AgeBands),
			BMIBands:         toBands(hp.Rates.BMIBands),
		}
	}
	for _, p := range hp.Products {
		unit := PricingUnit(p.Unit)
		if unit == "" {
			unit = UnitFlat
		}
		spec.Products = append(spec.Products, Product{
			ID:             p.ID,
			Name:           p.Name,
			Type:           models.ProductType(p.Type),
			BaseRate:       p.BaseRate,
			Unit:           unit,
			MinCoverage:    p.MinCoverage,
			MaxCoverage:    p.MaxCoverage,
			Deductible:     p.Deductible,
			WaitingPeriods: p.WaitingPeriods,
			Features:       p.Features,
		})
	}
	return spec
}

func toBands(in []*hclBand) []Band {
	out := make([]Band, 0, len(in))
	for _, b := range in {
		out = append(out, Band{Max: b.Max, Factor: b.Factor})
	}
	return out
}

// NewProviders wraps specs as rate-table providers.
func NewProviders(specs []ProviderSpec) []Provider {
	out := make([]Provider, 0, len(specs))
	for _, s := range specs {
		out = append(out, NewRateTableProvider(s))
	}
	return out
}

var standardAgeBands = []Band{{Max: 25, Factor: 0.9}, {Max: 35, Factor: 1.0}, {Max: 45, Factor: 1.25}, {Max: 55, Factor: 1.7}, {Max: 65, Factor: 2.4}, {Factor: 3.5}}

var standardBMIBands = []Band{{Max: 18.5, Factor: 1.1}, {Max: 25, Factor: 1.0}, {Max: 30, Factor: 1.1}, {Max: 35, Factor: 1.3}, {Factor: 1.6}}

// DefaultProviders is the built-in rate book used when no file is configured.
func DefaultProviders() []ProviderSpec {
	return []ProviderSpec{
		{
			ID:           "lifesecure",
			Name:         "LifeSecure",
			Reliability:  models.Reliability{ClaimsApprovalRate: 0.94, AvgProcessingDays: 12, Rating: 4.5},
			RiskAppetite: "moderate",
			StateFactors: map[string]float64{"NY": 1.15, "CA": 1.1, "FL": 1.05},
			Rates: RateTable{
				AgeBands: standardAgeBands, BMIBands: standardBMIBands, SmokerFactor: 2.0,
				ActivityLoadings: map[string]int{"skydiving": 15, "racing": 15, "climbing": 10, "scuba": 8, "motorcycling": 10},
			},
			Products: []Product{
				{ID: "ls-term", Name: "LifeSecure Term 20", Type: models.ProductLifeTerm, Unit: UnitPerThousand, BaseRate: 0.08,
					MinCoverage: 50000, MaxCoverage: 2000000, WaitingPeriods: map[string]int{"suicide_clause": 730},
					Features: []string{"level_premium", "convertible", "terminal_illness_benefit"}},
				{ID: "ls-whole", Name: "LifeSecure Whole Life", Type: models.ProductLifeWhole, Unit: UnitPerThousand, BaseRate: 0.55,
					MinCoverage: 25000, MaxCoverage: 1000000, Features: []string{"cash_value", "level_premium"}},
				{ID: "ls-ci", Name: "LifeSecure Critical Care", Type: models.ProductCriticalIllness, Unit: UnitPerThousand, BaseRate: 0.35,
					MinCoverage: 25000, MaxCoverage: 500000, WaitingPeriods: map[string]int{"general": 90},
					Features: []string{"lump_sum", "cancer_cover"}},
			},
		},
		{
			ID:           "healthguard",
			Name:         "HealthGuard",
			Reliability:  models.Reliability{ClaimsApprovalRate: 0.89, AvgProcessingDays: 18, Rating: 4.1},
			RiskAppetite: "aggressive",
			StateFactors: map[string]float64{"NY": 1.2, "CA": 1.15},
			Rates: RateTable{
				AgeBands: []Band{{Max: 30, Factor: 0.85}, {Max: 45, Factor: 1.1}, {Max: 60, Factor: 1.6}, {Factor: 2.6}},
				BMIBands: standardBMIBands, SmokerFactor: 1.6,
				ActivityLoadings: map[string]int{"skydiving": 10, "racing": 12, "climbing": 6, "scuba": 5, "motorcycling": 8},
			},
			Products: []Product{
				{ID: "hg-basic", Name: "HealthGuard Essential", Type: models.ProductHealthBasic, Unit: UnitFlat, BaseRate: 180,
					MinCoverage: 25000, MaxCoverage: 1000000, Deductible: 2500,
					WaitingPeriods: map[string]int{"general": 30, "pre_existing": 365},
					Features: []string{"telehealth", "generic_drugs"}},
				{ID: "hg-premium", Name: "HealthGuard Complete", Type: models.ProductHealthPremium, Unit: UnitFlat, BaseRate: 340,
					MinCoverage: 100000, MaxCoverage: 5000000, Deductible: 1000,
					WaitingPeriods: map[string]int{"general": 30, "pre_existing": 180},
					Features: []string{"telehealth", "specialists", "dental", "vision"}},
				{ID: "hg-term", Name: "HealthGuard Term", Type: models.ProductLifeTerm, Unit: UnitPerThousand, BaseRate: 0.09,
					MinCoverage: 100000, MaxCoverage: 1500000, Features: []string{"level_premium"}},
			},
		},
		{
			ID:           "primecare",
			Name:         "PrimeCare",
			Reliability:  models.Reliability{ClaimsApprovalRate: 0.97, AvgProcessingDays: 8, Rating: 4.7},
			RiskAppetite: "conservative",
			StateFactors: map[string]float64{"NY": 1.1},
			Rates: RateTable{
				AgeBands: standardAgeBands, BMIBands: []Band{{Max: 18.5, Factor: 1.2}, {Max: 27, Factor: 1.0}, {Max: 32, Factor: 1.2}, {Factor: 1.8}},
				SmokerFactor:     2.2,
				ActivityLoadings: map[string]int{"skydiving": 20, "racing": 20, "climbing": 12, "scuba": 10, "motorcycling": 12},
			},
			Products: []Product{
				{ID: "pc-basic", Name: "PrimeCare Health Plus", Type: models.ProductHealthBasic, Unit: UnitFlat, BaseRate: 210,
					MinCoverage: 50000, MaxCoverage: 2000000, Deductible: 500,
					WaitingPeriods: map[string]int{"general": 14, "pre_existing": 180},
					Features: []string{"telehealth", "specialists", "wellness_rewards"}},
				{ID: "pc-term", Name: "PrimeCare Term Shield", Type: models.ProductLifeTerm, Unit: UnitPerThousand, BaseRate: 0.085,
					MinCoverage: 100000, MaxCoverage: 3000000,
					Features: []string{"level_premium", "convertible", "accelerated_benefit", "waiver_of_premium"}},
				{ID: "pc-ci", Name: "PrimeCare Critical Shield", Type: models.ProductCriticalIllness, Unit: UnitPerThousand, BaseRate: 0.4,
					MinCoverage: 50000, MaxCoverage: 750000, WaitingPeriods: map[string]int{"general": 60},
					Features: []string{"lump_sum", "cancer_cover", "heart_cover"}},
			},
		},
		{
			ID:           "securelife",
			Name:         "SecureLife",
			Reliability:  models.Reliability{ClaimsApprovalRate: 0.86, AvgProcessingDays: 22, Rating: 3.8},
			RiskAppetite: "aggressive",
			Rates: RateTable{
				AgeBands: []Band{{Max: 35, Factor: 0.95}, {Max: 50, Factor: 1.3}, {Max: 65, Factor: 2.0}, {Factor: 3.0}},
				BMIBands: standardBMIBands, SmokerFactor: 1.7,
				ActivityLoadings: map[string]int{"skydiving": 8, "racing": 10, "climbing": 5, "scuba": 4, "motorcycling": 6},
			},
			Products: []Product{
				{ID: "sl-term", Name: "SecureLife Value Term", Type: models.ProductLifeTerm, Unit: UnitPerThousand, BaseRate: 0.07,
					MinCoverage: 25000, MaxCoverage: 1000000, Deductible: 0,
					WaitingPeriods: map[string]int{"suicide_clause": 730, "contestability": 730},
					Features: []string{"level_premium"}},
				{ID: "sl-basic", Name: "SecureLife Health Saver", Type: models.ProductHealthBasic, Unit: UnitFlat, BaseRate: 150,
					MinCoverage: 25000, MaxCoverage: 500000, Deductible: 5000,
					WaitingPeriods: map[string]int{"general": 60, "pre_existing": 540},
					Features: []string{"generic_drugs"}},
			},
		},
		{
			ID:           "guardian",
			Name:         "Guardian",
			Reliability:  models.Reliability{ClaimsApprovalRate: 0.95, AvgProcessingDays: 10, Rating: 4.6},
			RiskAppetite: "moderate",
			StateFactors: map[string]float64{"CA": 1.08, "NY": 1.12},
			Rates: RateTable{
				AgeBands: standardAgeBands, BMIBands: standardBMIBands, SmokerFactor: 1.9,
				ActivityLoadings: map[string]int{"skydiving": 12, "racing": 15, "climbing": 8, "scuba": 6, "motorcycling": 10},
			},
			Products: []Product{
				{ID: "gd-term", Name: "Guardian Family Term", Type: models.ProductLifeTerm, Unit: UnitPerThousand, BaseRate: 0.082,
					MinCoverage: 50000, MaxCoverage: 2500000,
					Features: []string{"level_premium", "convertible", "child_rider"}},
				{ID: "gd-whole", Name: "Guardian Whole Life", Type: models.ProductLifeWhole, Unit: UnitPerThousand, BaseRate: 0.6,
					MinCoverage: 25000, MaxCoverage: 2000000, Features: []string{"cash_value", "dividends", "level_premium"}},
				{ID: "gd-premium", Name: "Guardian Health Premier", Type: models.ProductHealthPremium, Unit: UnitFlat, BaseRate: 360,
					MinCoverage: 100000, MaxCoverage: 5000000, Deductible: 750,
					WaitingPeriods: map[string]int{"general": 14, "pre_existing": 120},
					Features: []string{"telehealth", "specialists", "dental", "vision", "mental_health"}},
				{ID: "gd-ci", Name: "Guardian Critical Illness", Type: models.ProductCriticalIllness, Unit: UnitPerThousand, BaseRate: 0.38,
					MinCoverage: 25000, MaxCoverage: 1000000, WaitingPeriods: map[string]int{"general": 90},
					Features: []string{"lump_sum", "cancer_cover", "heart_cover", "stroke_cover"}},
			},
		},
	}
}
