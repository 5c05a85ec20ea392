package models

import "time"

// ProductType identifies an insurance product family.
type ProductType string

const (
	ProductHealthBasic     ProductType = "HEALTH_BASIC"
	ProductHealthPremium   ProductType = "HEALTH_PREMIUM"
	ProductLifeTerm        ProductType = "LIFE_TERM"
	ProductLifeWhole       ProductType = "LIFE_WHOLE"
	ProductCriticalIllness ProductType = "CRITICAL_ILLNESS"
)

// Valid reports whether t is a known product type.
func (t ProductType) Valid() bool {
	switch t {
	case ProductHealthBasic, ProductHealthPremium, ProductLifeTerm, ProductLifeWhole, ProductCriticalIllness:
		return true
	}
	return false
}

// Reliability is the provider's historical service record.
type Reliability struct {
	ClaimsApprovalRate float64 `json:"claimsApprovalRate"`
	AvgProcessingDays  float64 `json:"avgProcessingDays"`
	Rating             float64 `json:"rating"`
}

// QuoteRequest asks for one product type at a coverage amount.
type QuoteRequest struct {
	ProductType    ProductType `json:"productType"`
	CoverageAmount float64     `json:"coverageAmount"`
}

// QuotePlan is a single priced offer. It is never mutated after creation.
type QuotePlan struct {
	ID              string         `json:"id"`
	ProviderID      string         `json:"providerId"`
	ProviderName    string         `json:"providerName"`
	ProductID       string         `json:"productId"`
	ProductName     string         `json:"productName"`
	ProductType     ProductType    `json:"productType"`
	MonthlyPremium  float64        `json:"monthlyPremium"`
	AnnualPremium   float64        `json:"annualPremium"`
	MonthlyFees     float64        `json:"monthlyFees"`
	CoverageAmount  float64        `json:"coverageAmount"`
	Deductible      float64        `json:"deductible"`
	WaitingPeriods  map[string]int `json:"waitingPeriods,omitempty"`
	Features        []string       `json:"features,omitempty"`
	RiskScore       int            `json:"riskScore"`
	RiskRating      string         `json:"riskRating"`
	InstantApproval bool           `json:"instantApproval"`
	Reliability     Reliability    `json:"reliability"`
	CreatedAt       time.Time      `json:"createdAt"`
	ValidUntil      time.Time      `json:"validUntil"`
}

// AverageWaitingDays returns the mean of all waiting periods, 0 when none.
func (p *QuotePlan) AverageWaitingDays() float64 {
	if len(p.WaitingPeriods) == 0 {
		return 0
	}
	total := 0
	for _, d := range p.WaitingPeriods {
		total += d
	}
	return float64(total) / float64(len(p.WaitingPeriods))
}

// MaxWaitingDays returns the longest waiting period.
func (p *QuotePlan) MaxWaitingDays() int {
	max := 0
	for _, d := range p.WaitingPeriods {
		if d > max {
			max = d
		}
	}
	return max
}

// ProviderFailure records a provider excluded from a QuoteSet.
type ProviderFailure struct {
	ProviderID string `json:"providerId"`
	Reason     string `json:"reason"`
}

// QuoteSet is the result of one aggregation. Skipped == len(Unavailable).
type QuoteSet struct {
	ID          string            `json:"id"`
	SessionID   string            `json:"sessionId,omitempty"`
	Request     QuoteRequest      `json:"request"`
	Plans       []QuotePlan       `json:"plans"`
	Skipped     int               `json:"skipped"`
	Unavailable []ProviderFailure `json:"unavailable,omitempty"`
	GeneratedAt time.Time         `json:"generatedAt"`
}

// Empty reports whether no provider produced a plan.
func (s *QuoteSet) Empty() bool {
	return len(s.Plans) == 0
}
