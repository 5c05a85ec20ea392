package models

// Metric names used in PolicyScore and scoring notes.
const (
	MetricAffordability = "affordability"
	MetricEaseOfClaims  = "ease_of_claims"
	MetricCoverageRatio = "coverage_ratio"
)

// MetricScore is one sub-score in [0,100] with the reasoning behind it.
// Defined is false when the inputs needed for the metric were missing.
type MetricScore struct {
	Value   float64 `json:"value"`
	Defined bool    `json:"defined"`
	Basis   string  `json:"basis"`
}

// PolicyScore is the scoring result for one QuotePlan.
type PolicyScore struct {
	PlanID        string             `json:"planId"`
	ProviderID    string             `json:"providerId"`
	Affordability MetricScore        `json:"affordability"`
	EaseOfClaims  MetricScore        `json:"easeOfClaims"`
	CoverageRatio MetricScore        `json:"coverageRatio"`
	Composite     float64            `json:"composite"`
	Category      string             `json:"category"`
	Weights       map[string]float64 `json:"weights"`
	Degraded      []string           `json:"degraded,omitempty"`
}

// ScoredPlan pairs a plan with its score and, once ranked, its position.
type ScoredPlan struct {
	Plan  QuotePlan   `json:"plan"`
	Score PolicyScore `json:"score"`
	Rank  int         `json:"rank"`
}

// PlanNarrative is display copy for a ranked plan.
type PlanNarrative struct {
	PlanID  string   `json:"planId"`
	Title   string   `json:"title"`
	Summary string   `json:"summary"`
	Labels  []string `json:"labels,omitempty"`
}
