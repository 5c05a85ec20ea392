// Package profile turns questionnaire responses into the technical
// ApplicantProfile that pricing and scoring read.
package profile

import (
	"strconv"
	"strings"
	"time"

	"insurance-advisor/internal/models"
	"insurance-advisor/internal/questionnaire"
)

// Body defaults when height or weight were not declared.
const (
	DefaultHeightCM = 170.0
	DefaultWeightKG = 75.0
)

var incomeByStage = map[string]float64{
	"young_single":       45000,
	"young_couple":       45000,
	"new_parents":        65000,
	"growing_family":     65000,
	"established_family": 85000,
	"empty_nesters":      75000,
}

const defaultStageIncome = 55000.0

var incomeDependentsFactor = map[string]float64{
	"spouse_kids": 1.3,
	"multiple":    1.3,
	"spouse":      1.1,
	"parents":     1.1,
}

var weightFactorByHealth = map[string]float64{
	"excellent": 0.9,
	"poor":      1.1,
	"improving": 1.1,
}

// Converter maps sessions to profiles. It never fails: missing answers fall
// back to documented defaults.
type Converter struct {
	rules []Rule
	now   func() time.Time
}

// NewConverter returns a converter over the default rule table. A nil clock
// means time.Now.
func NewConverter(now func() time.Time) *Converter {
	if now == nil {
		now = time.Now
	}
	return &Converter{rules: Rules, now: now}
}

// ToApplicantProfile is a pure function of the session and the clock.
func (c *Converter) ToApplicantProfile(s *models.Session) *models.ApplicantProfile {
	a := questionnaire.Answers(s.Answers())
	p := &models.ApplicantProfile{
		SessionID:          s.ID,
		FirstName:          a.String("personal_first_name"),
		LastName:           a.String("personal_last_name"),
		Gender:             a.String("personal_gender"),
		Email:              a.String("personal_email"),
		Phone:              a.String("personal_phone"),
		AddressLine1:       a.String("address_line1"),
		City:               a.String("address_city"),
		State:              strings.ToUpper(a.String("address_state")),
		PostalCode:         a.String("address_postal_code"),
		OverallHealth:      a.String("health_overall"),
		LifestyleRisk:      a.String("lifestyle_risk"),
		LifeStage:          a.String("life_stage"),
		Dependents:         a.String("financial_dependents"),
		MainConcern:        a.String("main_concern"),
		Timeline:           a.String("insurance_timeline"),
		CoverageStartDate:  a.String("coverage_start_date"),
		KnowledgeLevel:     a.String("insurance_knowledge"),
		DecisionFactor:     a.String("decision_factors"),
		DesiredAddOns:      withoutNone(a.Strings("desired_add_ons")),
		HighRiskActivities: withoutNone(a.Strings("high_risk_activities")),
		MedicalConditions:  []string{},
		Flags:              []string{},
	}

	if dob, err := time.Parse("2006-01-02", a.String("personal_dob")); err == nil {
		p.DateOfBirth = dob
		p.Age = ageAt(dob, c.now())
	}

	c.applyBody(p, a)

	if n, ok := a.Number("hospitalizations"); ok {
		p.Hospitalizations = int(n)
	}

	c.applyFinances(p, a)

	for _, r := range c.rules {
		if r.When(a) {
			r.Apply(p)
		}
	}

	income := p.AnnualIncome
	if p.IncomeSource == models.IncomeUnknown {
		income = FallbackIncome
	}
	p.CoverageAmount = EstimateCoverage(coverageInputs(a, income))

	return p
}

func (c *Converter) applyBody(p *models.ApplicantProfile, a questionnaire.Answers) {
	if h, ok := a.Number("height_cm"); ok && h > 0 {
		p.HeightCM = h
	} else {
		p.HeightCM = DefaultHeightCM
	}

	if w, ok := a.Number("weight_kg"); ok && w > 0 {
		p.WeightKG = w
		return
	}
	factor, ok := weightFactorByHealth[p.OverallHealth]
	if !ok {
		factor = 1.0
	}
	p.WeightKG = DefaultWeightKG * factor
}

func (c *Converter) applyFinances(p *models.ApplicantProfile, a questionnaire.Answers) {
	switch income, ok := a.Number("annual_income"); {
	case ok && income > 0:
		p.AnnualIncome = income
		p.IncomeSource = models.IncomeDeclared
	case ok:
		p.IncomeSource = models.IncomeUnknown
	default:
		p.AnnualIncome = EstimateIncome(p.LifeStage, p.Dependents)
		p.IncomeSource = models.IncomeEstimated
	}

	p.Savings, _ = a.Number("savings_amount")
	p.Debt, _ = a.Number("outstanding_debt")

	choice := a.String("monthly_budget")
	if v, err := strconv.ParseFloat(choice, 64); err == nil {
		p.MonthlyBudget = &v
	} else if choice == "flexible" {
		if ceiling, ok := a.Number("budget_ceiling"); ok {
			p.MonthlyBudget = &ceiling
		}
	}
}

// EstimateIncome guesses a yearly income from life stage and dependents.
func EstimateIncome(lifeStage, dependents string) float64 {
	income, ok := incomeByStage[lifeStage]
	if !ok {
		income = defaultStageIncome
	}
	if f, ok := incomeDependentsFactor[dependents]; ok {
		income *= f
	}
	return income
}

func ageAt(dob, now time.Time) int {
	age := now.Year() - dob.Year()
	if now.Month() < dob.Month() || (now.Month() == dob.Month() && now.Day() < dob.Day()) {
		age--
	}
	if age < 0 {
		return 0
	}
	return age
}

func withoutNone(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v != "none" {
			out = append(out, v)
		}
	}
	return out
}
