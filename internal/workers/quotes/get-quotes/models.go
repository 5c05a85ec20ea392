// internal/workers/quotes/get-quotes/models.go
package getquotes

import "insurance-advisor/internal/models"

type Input struct {
	SessionID      string  `json:"sessionId"`
	ProductType    string  `json:"productType,omitempty"`
	CoverageAmount float64 `json:"coverageAmount,omitempty"`
}

type Output struct {
	QuoteSetID     string                   `json:"quoteSetId"`
	ProfileSummary ProfileSummary           `json:"profileSummary"`
	Plans          []PlanResult             `json:"plans"`
	Skipped        int                      `json:"skipped"`
	Unavailable    []models.ProviderFailure `json:"unavailable"`
}

// ProfileSummary is the slice of the applicant profile a process needs
// for display and routing.
type ProfileSummary struct {
	SessionID      string              `json:"sessionId"`
	Age            int                 `json:"age"`
	State          string              `json:"state"`
	Smoker         bool                `json:"smoker"`
	ProductType    models.ProductType  `json:"productType"`
	CoverageAmount float64             `json:"coverageAmount"`
	AnnualIncome   float64             `json:"annualIncome"`
	IncomeSource   models.IncomeSource `json:"incomeSource"`
	MonthlyBudget  *float64            `json:"monthlyBudget,omitempty"`
	Flags          []string            `json:"flags"`
}

type PlanResult struct {
	Rank      int                   `json:"rank"`
	Plan      models.QuotePlan      `json:"plan"`
	Score     models.PolicyScore    `json:"score"`
	Narrative *models.PlanNarrative `json:"narrative,omitempty"`
}

func summarize(p *models.ApplicantProfile, req models.QuoteRequest) ProfileSummary {
	return ProfileSummary{
		SessionID:      p.SessionID,
		Age:            p.Age,
		State:          p.State,
		Smoker:         p.Smoker,
		ProductType:    req.ProductType,
		CoverageAmount: req.CoverageAmount,
		AnnualIncome:   p.AnnualIncome,
		IncomeSource:   p.IncomeSource,
		MonthlyBudget:  p.MonthlyBudget,
		Flags:          p.Flags,
	}
}
