package quotes

import "insurance-advisor/internal/models"

// Risk score constants.
const (
	baseRiskScore = 30
	maxRiskScore  = 100

	// InstantApprovalLimit is the risk score below which approval is instant.
	InstantApprovalLimit = 70
)

// RiskScore rates an applicant from 0 to 100 under a provider's loadings.
func RiskScore(p *models.ApplicantProfile, table RateTable) int {
	score := baseRiskScore

	switch {
	case p.Age > 60:
		score += 20
	case p.Age > 45:
		score += 10
	case p.Age > 0 && p.Age < 25:
		score += 5
	}

	if p.Smoker {
		score += 15
	}

	switch bmi := p.BMI(); {
	case bmi > 35:
		score += 15
	case bmi > 30:
		score += 10
	case bmi > 0 && bmi < 18:
		score += 5
	}

	score += 5 * len(p.MedicalConditions)
	if p.Hospitalizations > 2 {
		score += 10
	}
	if p.OccupationClass == "hazardous" {
		score += 15
	}
	if p.TravelFrequency == "frequent" {
		score += 5
	}
	for _, activity := range p.HighRiskActivities {
		score += table.ActivityLoadings[activity]
	}

	if score > maxRiskScore {
		score = maxRiskScore
	}
	return score
}

// RiskRating buckets a risk score.
func RiskRating(score int) string {
	switch {
	case score > 70:
		return "high"
	case score > 40:
		return "medium"
	}
	return "low"
}

// RiskMultiplier is the factor applied to the base premium:
//
//	ageBand × smoker × bmiBand × state × (1 + riskScore/200)
func RiskMultiplier(p *models.ApplicantProfile, spec ProviderSpec, score int) float64 {
	m := bandFactor(spec.Rates.AgeBands, float64(p.Age))
	if p.Smoker && spec.Rates.SmokerFactor > 0 {
		m *= spec.Rates.SmokerFactor
	}
	m *= bandFactor(spec.Rates.BMIBands, p.BMI())
	if f, ok := spec.StateFactors[p.State]; ok {
		m *= f
	}
	return m * (1 + float64(score)/200)
}
