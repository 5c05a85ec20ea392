package assist

import (
	"context"
	"regexp"
	"strconv"
	"strings"

	"insurance-advisor/internal/questionnaire"
)

type keywordRule struct {
	keywords    []string
	unless      []string
	candidates  []string
	explanation string
	// only limits a candidate to the listed question ids.
	only map[string][]string
}

func (r keywordRule) matches(text string) bool {
	return containsAny(text, r.keywords) && !containsAny(text, r.unless)
}

func (r keywordRule) offers(q *questionnaire.Question, candidate string) bool {
	if !q.HasOption(candidate) {
		return false
	}
	ids, scoped := r.only[candidate]
	if !scoped {
		return true
	}
	for _, id := range ids {
		if id == q.ID {
			return true
		}
	}
	return false
}

// Rules are tried in order. The first rule with a matching keyword and a
// candidate that the question offers wins.
var keywordRules = []keywordRule{
	{
		keywords:    []string{"non-smoker", "never smoke", "don't smoke", "do not smoke", "quit smoking"},
		candidates:  []string{"never", "quit"},
		explanation: "You mentioned you don't smoke.",
	},
	{
		keywords:    []string{"young", "single", "just started", "first job", "college"},
		unless:      []string{"parent", "kids", "children", "baby"},
		candidates:  []string{"young_single", "none", "medical_bills", "beginner", "25", "lowest_cost"},
		explanation: "Starting out, basic health cover and a small term policy usually fit best.",
		only:        map[string][]string{"none": {"financial_dependents"}},
	},
	{
		keywords:    []string{"married", "spouse", "partner", "wedding"},
		candidates:  []string{"young_couple", "spouse", "income_replacement"},
		explanation: "As a couple, protecting each other's income is usually the first priority.",
	},
	{
		keywords:    []string{"kids", "children", "baby", "family", "pregnant"},
		candidates:  []string{"growing_family", "spouse_kids", "children_future", "most_coverage"},
		explanation: "With children depending on you, life cover becomes much more important.",
	},
	{
		keywords:    []string{"mortgage", "house", "bought home", "debt"},
		candidates:  []string{"mortgage_debt", "established_family"},
		explanation: "A mortgage or large debt is best covered so your family can keep the home.",
	},
	{
		keywords:    []string{"business", "self employed", "self-employed", "entrepreneur"},
		candidates:  []string{"business_protection"},
		explanation: "Business owners often need key person protection alongside personal cover.",
	},
	{
		keywords:    []string{"health problem", "medical", "condition", "doctor"},
		candidates:  []string{"medical_bills", "managed", "fair", "critical_illness"},
		explanation: "With health concerns, good medical cover should come first.",
	},
	{
		keywords:    []string{"budget", "tight", "afford", "cheap", "expensive"},
		candidates:  []string{"lowest_cost", "25", "50"},
		explanation: "Some protection is better than none; start with what you can afford.",
	},
	{
		keywords:    []string{"smoke", "smoker", "cigarette", "vape"},
		candidates:  []string{"regular", "occasional"},
		explanation: "You mentioned smoking.",
	},
}

const (
	keywordConfidence = 0.6
	numberConfidence  = 0.5
	defaultConfidence = 0.2
)

var numberPattern = regexp.MustCompile(`\d[\d,]*(\.\d+)?\s*(k\b)?`)

// KeywordSuggester is the deterministic fallback suggester.
type KeywordSuggester struct{}

func NewKeywordSuggester() *KeywordSuggester {
	return &KeywordSuggester{}
}

func (k *KeywordSuggester) Suggest(_ context.Context, q *questionnaire.Question, description string) (*Suggestion, error) {
	text := strings.ToLower(description)
	out := &Suggestion{QuestionID: q.ID, Source: SourceKeyword}

	switch q.Type {
	case questionnaire.SingleChoice, questionnaire.MultiChoice:
		for _, rule := range keywordRules {
			if !rule.matches(text) {
				continue
			}
			for _, c := range rule.candidates {
				if rule.offers(q, c) {
					out.Value = choiceValue(q, c)
					out.Explanation = rule.explanation
					out.Confidence = keywordConfidence
					return out, nil
				}
			}
		}
		first := q.Options[0].Value
		out.Value = choiceValue(q, first)
		out.Explanation = "Nothing in your description points to a specific answer; " + q.Options[0].Label + " is the first option."
		out.Confidence = defaultConfidence
		return out, nil

	case questionnaire.Numeric:
		if v, ok := firstNumber(text); ok {
			if normalized, err := q.Validate(v); err == nil {
				out.Value = normalized
				out.Explanation = "Taken from the amount in your description."
				out.Confidence = numberConfidence
				return out, nil
			}
		}
	}

	out.Explanation = "Please answer this one directly."
	return out, nil
}

func choiceValue(q *questionnaire.Question, v string) interface{} {
	if q.Type == questionnaire.MultiChoice {
		return []string{v}
	}
	return v
}

func containsAny(text string, words []string) bool {
	for _, w := range words {
		if strings.Contains(text, w) {
			return true
		}
	}
	return false
}

// firstNumber reads "85,000", "85000.50" or "85k".
func firstNumber(text string) (float64, bool) {
	m := numberPattern.FindStringSubmatch(text)
	if m == nil {
		return 0, false
	}
	raw := strings.TrimSpace(m[0])
	thousands := strings.HasSuffix(raw, "k")
	raw = strings.TrimSpace(strings.TrimSuffix(raw, "k"))
	raw = strings.ReplaceAll(raw, ",", "")

	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, false
	}
	if thousands {
		v *= 1000
	}
	return v, true
}
