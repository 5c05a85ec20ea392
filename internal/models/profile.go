package models

import "time"

// IncomeSource records where ApplicantProfile.AnnualIncome came from.
type IncomeSource string

const (
	IncomeDeclared  IncomeSource = "declared"
	IncomeEstimated IncomeSource = "estimated"
	IncomeUnknown   IncomeSource = "unknown"
)

// Profile flags set by the conversion rule table.
const (
	FlagBeneficiaryProtection = "beneficiary_protection"
	FlagDebtProtection        = "debt_protection"
	FlagKeyPerson             = "key_person"
	FlagHighRiskLifestyle     = "high_risk_lifestyle"
	FlagFinalExpenses         = "final_expenses"
	FlagNeedsGuidance         = "needs_guidance"
	FlagUrgent                = "urgent"
)

// ApplicantProfile is the technical record derived from questionnaire answers.
type ApplicantProfile struct {
	SessionID string `json:"sessionId"`

	FirstName    string    `json:"firstName,omitempty"`
	LastName     string    `json:"lastName,omitempty"`
	DateOfBirth  time.Time `json:"dateOfBirth"`
	Age          int       `json:"age"`
	Gender       string    `json:"gender,omitempty"`
	Email        string    `json:"email,omitempty"`
	Phone        string    `json:"phone,omitempty"`
	AddressLine1 string    `json:"addressLine1,omitempty"`
	City         string    `json:"city,omitempty"`
	State        string    `json:"state"`
	PostalCode   string    `json:"postalCode,omitempty"`

	HeightCM float64 `json:"heightCm"`
	WeightKG float64 `json:"weightKg"`

	Smoker             bool     `json:"smoker"`
	MedicalConditions  []string `json:"medicalConditions"`
	Hospitalizations   int      `json:"hospitalizations"`
	HighRiskActivities []string `json:"highRiskActivities"`
	TravelFrequency    string   `json:"travelFrequency"`
	OccupationClass    string   `json:"occupationClass"`
	OverallHealth      string   `json:"overallHealth,omitempty"`
	LifestyleRisk      string   `json:"lifestyleRisk,omitempty"`

	AnnualIncome  float64      `json:"annualIncome"`
	IncomeSource  IncomeSource `json:"incomeSource"`
	Savings       float64      `json:"savings"`
	Debt          float64      `json:"debt"`
	MonthlyBudget *float64     `json:"monthlyBudget,omitempty"`

	LifeStage         string      `json:"lifeStage,omitempty"`
	Dependents        string      `json:"dependents,omitempty"`
	MainConcern       string      `json:"mainConcern,omitempty"`
	ProductType       ProductType `json:"productType"`
	CoverageAmount    float64     `json:"coverageAmount"`
	DesiredAddOns     []string    `json:"desiredAddOns,omitempty"`
	Timeline          string      `json:"timeline,omitempty"`
	CoverageStartDate string      `json:"coverageStartDate,omitempty"`
	KnowledgeLevel    string      `json:"knowledgeLevel,omitempty"`
	DecisionFactor    string      `json:"decisionFactor,omitempty"`

	Flags []string `json:"flags"`
}

// BMI returns body mass index, or 0 when height is unknown.
func (p *ApplicantProfile) BMI() float64 {
	if p.HeightCM <= 0 {
		return 0
	}
	m := p.HeightCM / 100
	return p.WeightKG / (m * m)
}

// HasFlag reports whether flag was set by conversion.
func (p *ApplicantProfile) HasFlag(flag string) bool {
	for _, f := range p.Flags {
		if f == flag {
			return true
		}
	}
	return false
}

// IncomeKnown reports whether affordability can be computed.
func (p *ApplicantProfile) IncomeKnown() bool {
	return p.IncomeSource != IncomeUnknown && p.AnnualIncome > 0
}
