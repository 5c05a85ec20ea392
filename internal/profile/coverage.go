package profile

import (
	"math"

	"insurance-advisor/internal/questionnaire"
)

// Coverage estimation constants.
const (
	// FallbackIncome stands in for an unknown income when estimating coverage.
	FallbackIncome = 55000.0
	// MinCoverage is the smallest coverage ever recommended.
	MinCoverage = 25000.0
	// CeilingCoverageFactor converts a monthly budget ceiling into a coverage cap.
	CeilingCoverageFactor = 5000.0
)

var dependentsMultiplier = map[string]float64{
	"none":          3,
	"spouse":        6,
	"parents":       6,
	"spouse_kids":   10,
	"children_only": 10,
	"extended":      12,
	"multiple":      12,
}

const defaultDependentsMultiplier = 5

var concernMultiplier = map[string]float64{
	"income_replacement":  1.2,
	"mortgage_debt":       1.5,
	"children_future":     1.3,
	"medical_bills":       0.8,
	"burial_costs":        0.3,
	"business_protection": 1.4,
}

var stageMultiplier = map[string]float64{
	"new_parents":        1.2,
	"growing_family":     1.2,
	"established_family": 1.1,
	"empty_nesters":      0.7,
	"pre_retirement":     0.7,
}

var budgetCoverageCap = map[string]float64{
	"25":  250000,
	"50":  250000,
	"100": 500000,
	"200": 1000000,
}

// CoverageInputs are the values the coverage formula reads.
type CoverageInputs struct {
	Income       float64
	Dependents   string
	Concern      string
	LifeStage    string
	Debt         float64
	Savings      float64
	BudgetChoice string
	BudgetCeil   float64
}

// EstimateCoverage computes
//
//	need = income × dep × concern × stage + debt − savings
//
// caps it by the monthly budget choice, rounds to a market-friendly step and
// applies the MinCoverage floor.
func EstimateCoverage(in CoverageInputs) float64 {
	income := in.Income
	if income <= 0 {
		income = FallbackIncome
	}

	dep, ok := dependentsMultiplier[in.Dependents]
	if !ok {
		dep = defaultDependentsMultiplier
	}
	concern, ok := concernMultiplier[in.Concern]
	if !ok {
		concern = 1.0
	}
	stage, ok := stageMultiplier[in.LifeStage]
	if !ok {
		stage = 1.0
	}

	need := income*dep*concern*stage + in.Debt - in.Savings

	if limit, ok := budgetCoverageCap[in.BudgetChoice]; ok && need > limit {
		need = limit
	}
	if in.BudgetChoice == "flexible" && in.BudgetCeil > 0 {
		if limit := in.BudgetCeil * CeilingCoverageFactor; need > limit {
			need = limit
		}
	}

	need = roundCoverage(need)
	if need < MinCoverage {
		need = MinCoverage
	}
	return need
}

func roundCoverage(v float64) float64 {
	step := 100000.0
	switch {
	case v <= 100000:
		step = 25000
	case v <= 500000:
		step = 50000
	}
	return math.Round(v/step) * step
}

func coverageInputs(a questionnaire.Answers, income float64) CoverageInputs {
	debt, _ := a.Number("outstanding_debt")
	savings, _ := a.Number("savings_amount")
	ceiling, _ := a.Number("budget_ceiling")
	return CoverageInputs{
		Income:       income,
		Dependents:   a.String("financial_dependents"),
		Concern:      a.String("main_concern"),
		LifeStage:    a.String("life_stage"),
		Debt:         debt,
		Savings:      savings,
		BudgetChoice: a.String("monthly_budget"),
		BudgetCeil:   ceiling,
	}
}
