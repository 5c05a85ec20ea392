package questionnaire

import "sync"

// PrefillField maps a key of an uploaded profile to the profile-phase
// question it answers.
type PrefillField struct {
	Key        string
	QuestionID string
}

// PrefillFields lists the accepted pre-fill keys in catalog order.
var PrefillFields = []PrefillField{
	{Key: "first_name", QuestionID: "personal_first_name"},
	{Key: "last_name", QuestionID: "personal_last_name"},
	{Key: "dob", QuestionID: "personal_dob"},
	{Key: "gender", QuestionID: "personal_gender"},
	{Key: "email", QuestionID: "personal_email"},
	{Key: "phone", QuestionID: "personal_phone"},
	{Key: "address_line1", QuestionID: "address_line1"},
	{Key: "city", QuestionID: "address_city"},
	{Key: "state", QuestionID: "address_state"},
	{Key: "postal_code", QuestionID: "address_postal_code"},
}

var (
	defaultCatalog     *Catalog
	defaultCatalogOnce sync.Once
)

// DefaultCatalog returns the built-in questionnaire. The definitions are
// static, so a construction error is a programming error and panics.
func DefaultCatalog() *Catalog {
	defaultCatalogOnce.Do(func() {
		c, err := NewCatalog(defaultPhases())
		if err != nil {
			panic("questionnaire: invalid default catalog: " + err.Error())
		}
		defaultCatalog = c
	})
	return defaultCatalog
}

// showWhen hides a question unless the answer to id is one of values.
// An unanswered dependency keeps the question hidden.
func showWhen(id string, values ...string) SkipPredicate {
	return func(a Answers) bool {
		return !a.Is(id, values...)
	}
}

func bound(v float64) *float64 { return &v }

func opts(pairs ...string) []Option {
	out := make([]Option, 0, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		out = append(out, Option{Value: pairs[i], Label: pairs[i+1]})
	}
	return out
}

func defaultPhases() []Phase {
	return []Phase{
		{
			Name:    "personal",
			Title:   "About you",
			Profile: true,
			Questions: []*Question{
				{ID: "personal_first_name", Type: FreeText, Text: "What's your first name?"},
				{ID: "personal_last_name", Type: FreeText, Text: "And your last name?"},
				{ID: "personal_dob", Type: Date, PastOnly: true, Text: "When were you born?",
					Help: "This helps us find age-appropriate coverage options"},
				{ID: "personal_gender", Type: SingleChoice, Text: "Gender (for insurance rates)?",
					Options: opts("M", "Male", "F", "Female", "OTHER", "Prefer not to say")},
				{ID: "personal_email", Type: FreeText, Format: "email", Text: "What's your email address?"},
				{ID: "personal_phone", Type: FreeText, Text: "And your phone number?"},
			},
		},
		{
			Name:    "address",
			Title:   "Where you live",
			Profile: true,
			Questions: []*Question{
				{ID: "address_line1", Type: FreeText, Text: "What's your home address?"},
				{ID: "address_city", Type: FreeText, Text: "Which city?"},
				{ID: "address_state", Type: FreeText, Text: "Which state?"},
				{ID: "address_postal_code", Type: FreeText, Text: "And your ZIP code?"},
			},
		},
		{
			Name:  "lifestyle",
			Title: "Life stage and lifestyle",
			Questions: []*Question{
				{ID: "life_stage", Type: SingleChoice, Text: "What best describes your current life stage?",
					Help: "This helps us understand what kind of protection you need most",
					Options: opts(
						"young_single", "Young adult, single, starting career",
						"young_couple", "Young couple, no kids yet",
						"new_parents", "New parents with young children",
						"growing_family", "Growing family with school-age kids",
						"established_family", "Established family with teens",
						"empty_nesters", "Kids are grown and independent",
						"pre_retirement", "Planning for retirement soon",
						"other", "Something else",
					)},
				{ID: "financial_dependents", Type: SingleChoice, Text: "Who depends on your income?",
					Help: "This is key to determining how much coverage you might need",
					Options: opts(
						"none", "Just me, no one depends on my income",
						"spouse", "My spouse or partner",
						"spouse_kids", "My spouse and children",
						"children_only", "My children (single parent)",
						"parents", "My aging parents",
						"extended", "Extended family members",
						"multiple", "Several people depend on me",
					)},
				{ID: "lifestyle_risk", Type: SingleChoice, Text: "Any hobbies or activities that might be considered risky?",
					Options: opts(
						"low_risk", "Pretty standard lifestyle, nothing risky",
						"some_adventure", "Some adventure sports occasionally",
						"regular_risk", "Regular risky hobbies (motorcycles, climbing)",
						"high_risk", "High-risk activities are a big part of my life",
						"travel", "I travel frequently to various countries",
					)},
				{ID: "high_risk_activities", Type: MultiChoice, Text: "Which of these do you take part in?",
					Exclusive: "none",
					Skip:      showWhen("lifestyle_risk", "some_adventure", "regular_risk", "high_risk"),
					Options: opts(
						"motorcycling", "Motorcycling",
						"climbing", "Rock or mountain climbing",
						"scuba", "Scuba diving",
						"skydiving", "Skydiving or paragliding",
						"racing", "Motor racing",
						"none", "None of these",
					)},
			},
		},
		{
			Name:  "priorities",
			Title: "What matters to you",
			Questions: []*Question{
				{ID: "main_concern", Type: SingleChoice, Text: "What's your biggest worry if something happened to you?",
					Help: "Understanding your priorities helps us recommend the right coverage",
					Options: opts(
						"income_replacement", "My family couldn't pay bills without my income",
						"mortgage_debt", "My family couldn't pay the mortgage or other debts",
						"children_future", "My kids' education and future would suffer",
						"medical_bills", "Medical bills would be overwhelming",
						"burial_costs", "Funeral and final expenses",
						"business_protection", "My business or employees would struggle",
						"not_sure", "I'm not sure what I should worry about",
					)},
				{ID: "outstanding_debt", Type: Numeric, Min: bound(0), Max: bound(100_000_000),
					Text: "Roughly how much do you still owe on your mortgage and other debts?",
					Skip: showWhen("main_concern", "mortgage_debt")},
			},
		},
		{
			Name:  "budget",
			Title: "Budget",
			Questions: []*Question{
				{ID: "annual_income", Type: Numeric, Min: bound(0), Max: bound(100_000_000),
					Text: "What is your yearly household income before tax?",
					Help: "Enter 0 if you'd rather not say"},
				{ID: "savings_amount", Type: Numeric, Min: bound(0), Max: bound(100_000_000),
					Text: "About how much do you have in savings?"},
				{ID: "monthly_budget", Type: SingleChoice, Text: "What can you comfortably afford to spend monthly on insurance?",
					Help: "There are good options at every budget level",
					Options: opts(
						"25", "Around $25/month, keeping it minimal",
						"50", "About $50/month, reasonable protection",
						"100", "Around $100/month, good coverage",
						"200", "About $200/month, comprehensive protection",
						"flexible", "I want to see options and decide",
						"unsure", "I honestly don't know what's reasonable",
					)},
				{ID: "budget_ceiling", Type: Numeric, Min: bound(1), Max: bound(10_000),
					Text: "What is the most you would pay per month?",
					Skip: showWhen("monthly_budget", "flexible")},
			},
		},
		{
			Name:  "health",
			Title: "Health",
			Questions: []*Question{
				{ID: "health_overall", Type: SingleChoice, Text: "How would you describe your overall health?",
					Options: opts(
						"excellent", "Excellent, very healthy and active",
						"good", "Good, generally healthy with minor issues",
						"fair", "Fair, some manageable concerns",
						"poor", "Poor, significant health challenges",
						"improving", "Getting better, recovering from health issues",
					)},
				{ID: "smoking_habits", Type: SingleChoice, Text: "Do you smoke or use tobacco?",
					Options: opts(
						"never", "I've never been a smoker",
						"quit", "I quit smoking over 12 months ago",
						"recent_quit", "I quit within the last year",
						"occasional", "Only occasionally or socially",
						"regular", "I'm a regular smoker",
					)},
				{ID: "health_conditions", Type: SingleChoice, Text: "Do you currently have any ongoing health conditions?",
					Options: opts(
						"none", "No ongoing health issues",
						"minor", "Minor conditions (allergies, mild asthma)",
						"managed", "Well-controlled conditions (diabetes, high blood pressure)",
						"serious", "More serious conditions",
						"prefer_discuss", "I'd prefer to discuss this privately",
					)},
				{ID: "hospitalizations", Type: Numeric, Min: bound(0), Max: bound(50),
					Text: "How many times have you been hospitalized in the last five years?",
					Skip: showWhen("health_conditions", "managed", "serious")},
				{ID: "height_cm", Type: Numeric, Min: bound(100), Max: bound(250), Text: "How tall are you, in centimetres?"},
				{ID: "weight_kg", Type: Numeric, Min: bound(30), Max: bound(300), Text: "And your weight, in kilograms?"},
			},
		},
		{
			Name:  "timeline",
			Title: "Timing",
			Questions: []*Question{
				{ID: "insurance_timeline", Type: SingleChoice, Text: "When are you looking to have coverage start?",
					Options: opts(
						"immediately", "As soon as possible",
						"month", "Within the next month",
						"few_months", "In the next few months",
						"planning", "Just planning ahead for now",
						"specific_date", "By a specific date",
					)},
				{ID: "coverage_start_date", Type: Date, Text: "Which date should coverage start by?",
					Skip: showWhen("insurance_timeline", "specific_date")},
			},
		},
		{
			Name:  "preferences",
			Title: "Preferences",
			Questions: []*Question{
				{ID: "insurance_knowledge", Type: SingleChoice, Text: "How familiar are you with life insurance?",
					Options: opts(
						"beginner", "Complete beginner",
						"some_research", "I've done some research online",
						"basic_understanding", "I understand the basics",
						"experienced", "I've had insurance before",
						"very_knowledgeable", "I know quite a bit about insurance",
					)},
				{ID: "decision_factors", Type: SingleChoice, Text: "What matters most to you in choosing insurance?",
					Options: opts(
						"lowest_cost", "Lowest monthly cost",
						"best_value", "Best balance of cost and coverage",
						"most_coverage", "Maximum coverage",
						"company_reputation", "Trusted company with a good reputation",
						"simple_process", "Simple process with quick approval",
						"not_sure", "I need help figuring out what should matter most",
					)},
				{ID: "desired_add_ons", Type: MultiChoice, Text: "Would you like any of these extras?",
					Exclusive: "none",
					Options: opts(
						"critical_illness", "Critical illness cover",
						"disability_income", "Disability income",
						"accidental_death", "Accidental death benefit",
						"waiver_of_premium", "Waiver of premium",
						"none", "No extras",
					)},
			},
		},
	}
}
