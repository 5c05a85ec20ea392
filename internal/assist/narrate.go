package assist

import (
	"context"
	"fmt"
	"strings"

	"insurance-advisor/internal/models"
)

// Plan labels.
const (
	LabelBestValue     = "best value"
	LabelLowestPrice   = "lowest price"
	LabelEasiestClaims = "easiest claims"
	LabelMostCoverage  = "most coverage"
)

// Narrator writes display copy for ranked plans. It returns one narrative
// per plan, in the order given.
type Narrator interface {
	Narrate(ctx context.Context, profile *models.ApplicantProfile, plans []models.ScoredPlan) ([]models.PlanNarrative, error)
}

// Labels marks the standout plans. The plans are expected ranked, so the
// first one is the best value.
func Labels(plans []models.ScoredPlan) map[string][]string {
	out := make(map[string][]string)
	if len(plans) == 0 {
		return out
	}

	cheapest, easiest, biggest := 0, 0, 0
	for i := 1; i < len(plans); i++ {
		p := plans[i]
		if p.Plan.MonthlyPremium < plans[cheapest].Plan.MonthlyPremium {
			cheapest = i
		}
		if p.Score.EaseOfClaims.Value > plans[easiest].Score.EaseOfClaims.Value {
			easiest = i
		}
		if p.Plan.CoverageAmount > plans[biggest].Plan.CoverageAmount {
			biggest = i
		}
	}

	add := func(i int, label string) {
		id := plans[i].Plan.ID
		out[id] = append(out[id], label)
	}
	add(0, LabelBestValue)
	add(cheapest, LabelLowestPrice)
	add(easiest, LabelEasiestClaims)
	if len(plans) > 1 && plans[biggest].Plan.CoverageAmount > plans[0].Plan.CoverageAmount {
		add(biggest, LabelMostCoverage)
	}
	return out
}

// TemplateNarrator builds narratives from the scores alone.
type TemplateNarrator struct{}

func NewTemplateNarrator() *TemplateNarrator {
	return &TemplateNarrator{}
}

func (n *TemplateNarrator) Narrate(_ context.Context, _ *models.ApplicantProfile, plans []models.ScoredPlan) ([]models.PlanNarrative, error) {
	labels := Labels(plans)
	out := make([]models.PlanNarrative, 0, len(plans))
	for _, sp := range plans {
		out = append(out, models.PlanNarrative{
			PlanID:  sp.Plan.ID,
			Title:   title(sp.Plan),
			Summary: templateSummary(sp),
			Labels:  labels[sp.Plan.ID],
		})
	}
	return out, nil
}

func title(p models.QuotePlan) string {
	if p.ProductName == "" {
		return p.ProviderName
	}
	return p.ProviderName + " " + strings.TrimPrefix(p.ProductName, p.ProviderName+" ")
}

func templateSummary(sp models.ScoredPlan) string {
	s := sp.Score

	var opening string
	switch {
	case s.Composite >= 85:
		opening = "Excellent choice"
	case s.Composite >= 75:
		opening = "Very good option"
	case s.Composite >= 65:
		opening = "Solid choice"
	default:
		opening = "Consider alternatives"
	}

	var strengths, weaknesses []string
	if s.Affordability.Defined {
		if s.Affordability.Value >= 80 {
			strengths = append(strengths, "very affordable")
		} else if s.Affordability.Value < 60 {
			weaknesses = append(weaknesses, "expensive relative to income")
		}
	}
	if s.EaseOfClaims.Value >= 85 {
		strengths = append(strengths, "easy claims process")
	} else if s.EaseOfClaims.Value < 65 {
		weaknesses = append(weaknesses, "complex claims process")
	}
	if s.CoverageRatio.Value >= 80 {
		strengths = append(strengths, "excellent coverage value")
	} else if s.CoverageRatio.Value < 65 {
		weaknesses = append(weaknesses, "limited coverage value")
	}

	var b strings.Builder
	if len(strengths) > 0 {
		fmt.Fprintf(&b, "%s with %s.", opening, strings.Join(strengths, ", "))
	} else {
		fmt.Fprintf(&b, "%s for your situation.", opening)
	}
	if len(weaknesses) > 0 {
		fmt.Fprintf(&b, " Note: %s.", strings.Join(weaknesses, ", "))
	}
	fmt.Fprintf(&b, " $%.2f a month for $%s of cover.", sp.Plan.MonthlyPremium, thousands(sp.Plan.CoverageAmount))
	return b.String()
}

// thousands formats a whole amount with comma separators.
func thousands(v float64) string {
	s := fmt.Sprintf("%.0f", v)
	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")

	var b strings.Builder
	for i, r := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	if neg {
		return "-" + b.String()
	}
	return b.String()
}
