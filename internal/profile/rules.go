package profile

import (
	"insurance-advisor/internal/models"
	"insurance-advisor/internal/questionnaire"
)

// Rule maps a condition over answers to profile fields. Rules run in table
// order, so a later rule may refine what an earlier one set.
type Rule struct {
	Name  string
	When  func(questionnaire.Answers) bool
	Apply func(*models.ApplicantProfile)
}

func answerIs(id string, values ...string) func(questionnaire.Answers) bool {
	return func(a questionnaire.Answers) bool { return a.Is(id, values...) }
}

func always(questionnaire.Answers) bool { return true }

func addFlag(flag string) func(*models.ApplicantProfile) {
	return func(p *models.ApplicantProfile) {
		if !p.HasFlag(flag) {
			p.Flags = append(p.Flags, flag)
		}
	}
}

func setConditions(conditions ...string) func(*models.ApplicantProfile) {
	return func(p *models.ApplicantProfile) {
		p.MedicalConditions = append([]string(nil), conditions...)
	}
}

func setSmoker(smoker bool) func(*models.ApplicantProfile) {
	return func(p *models.ApplicantProfile) { p.Smoker = smoker }
}

func setProduct(t models.ProductType) func(*models.ApplicantProfile) {
	return func(p *models.ApplicantProfile) { p.ProductType = t }
}

var familyStages = []string{"new_parents", "growing_family", "established_family"}

var dependentsWithChildren = []string{"spouse_kids", "children_only"}

// Rules is the conversion table applied after direct field mapping.
var Rules = []Rule{
	{Name: "smoker", When: answerIs("smoking_habits", "regular", "occasional", "recent_quit"), Apply: setSmoker(true)},
	{Name: "non-smoker", When: answerIs("smoking_habits", "never", "quit"), Apply: setSmoker(false)},

	{Name: "minor conditions", When: answerIs("health_conditions", "minor"), Apply: setConditions("allergies", "mild_asthma")},
	{Name: "managed conditions", When: answerIs("health_conditions", "managed"), Apply: setConditions("controlled_condition")},
	{Name: "serious conditions", When: answerIs("health_conditions", "serious"), Apply: setConditions("chronic_condition")},
	{Name: "undisclosed conditions", When: answerIs("health_conditions", "prefer_discuss"), Apply: setConditions("undisclosed_condition")},

	{Name: "travel frequency", When: always, Apply: func(p *models.ApplicantProfile) { p.TravelFrequency = "rare" }},
	{Name: "frequent traveller", When: answerIs("lifestyle_risk", "travel"),
		Apply: func(p *models.ApplicantProfile) { p.TravelFrequency = "frequent" }},
	{Name: "risky lifestyle", When: answerIs("lifestyle_risk", "regular_risk", "high_risk"), Apply: addFlag(models.FlagHighRiskLifestyle)},

	{Name: "office occupation", When: always, Apply: func(p *models.ApplicantProfile) { p.OccupationClass = "office" }},
	{Name: "hazardous occupation", When: func(a questionnaire.Answers) bool {
		return !a.Is("life_stage", "young_single") && a.Is("lifestyle_risk", "high_risk")
	}, Apply: func(p *models.ApplicantProfile) { p.OccupationClass = "hazardous" }},

	{Name: "children's future", When: func(a questionnaire.Answers) bool {
		return a.Is("main_concern", "children_future") || a.Is("financial_dependents", dependentsWithChildren...)
	}, Apply: addFlag(models.FlagBeneficiaryProtection)},
	{Name: "debt", When: answerIs("main_concern", "mortgage_debt"), Apply: addFlag(models.FlagDebtProtection)},
	{Name: "business", When: answerIs("main_concern", "business_protection"), Apply: addFlag(models.FlagKeyPerson)},
	{Name: "final expenses", When: answerIs("main_concern", "burial_costs"), Apply: addFlag(models.FlagFinalExpenses)},
	{Name: "guidance", When: func(a questionnaire.Answers) bool {
		return a.Is("main_concern", "not_sure") || a.Is("insurance_knowledge", "beginner") || a.Is("decision_factors", "not_sure")
	}, Apply: addFlag(models.FlagNeedsGuidance)},
	{Name: "urgent", When: answerIs("insurance_timeline", "immediately"), Apply: addFlag(models.FlagUrgent)},

	{Name: "default product", When: always, Apply: setProduct(models.ProductLifeTerm)},
	{Name: "young single", When: answerIs("life_stage", "young_single"), Apply: setProduct(models.ProductHealthBasic)},
	{Name: "family protection", When: func(a questionnaire.Answers) bool {
		return a.Is("life_stage", familyStages...) ||
			(a.Has("financial_dependents") && !a.Is("financial_dependents", "none"))
	}, Apply: setProduct(models.ProductLifeTerm)},
	{Name: "medical bills", When: answerIs("main_concern", "medical_bills"), Apply: setProduct(models.ProductHealthBasic)},
	{Name: "critical illness", When: func(a questionnaire.Answers) bool {
		return a.Is("main_concern", "medical_bills") && a.Contains("desired_add_ons", "critical_illness")
	}, Apply: setProduct(models.ProductCriticalIllness)},
}
