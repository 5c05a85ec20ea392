package questionnaire

import (
	"fmt"

	"insurance-advisor/internal/common/validation"
	"insurance-advisor/internal/models"
)

// QuestionType is the declared answer type of a question.
type QuestionType string

const (
	SingleChoice QuestionType = "single_choice"
	MultiChoice  QuestionType = "multi_choice"
	FreeText     QuestionType = "free_text"
	Date         QuestionType = "date"
	Numeric      QuestionType = "numeric"
)

// Option is one selectable answer of a choice question.
type Option struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// SkipPredicate decides from prior answers whether a question is hidden.
// It must be pure.
type SkipPredicate func(Answers) bool

// Question is immutable once its catalog is built.
type Question struct {
	ID        string        `json:"id"`
	Phase     string        `json:"phase"`
	Type      QuestionType  `json:"type"`
	Text      string        `json:"text"`
	Help      string        `json:"help,omitempty"`
	Options   []Option      `json:"options,omitempty"`
	Min       *float64      `json:"min,omitempty"`
	Max       *float64      `json:"max,omitempty"`
	Format    string        `json:"format,omitempty"`
	Exclusive string        `json:"exclusive,omitempty"`
	PastOnly  bool          `json:"-"`
	Skip      SkipPredicate `json:"-"`

	schema *validation.Compiled
}

// Skipped evaluates the skip predicate against answers.
func (q *Question) Skipped(answers Answers) bool {
	return q.Skip != nil && q.Skip(answers)
}

// HasOption reports whether value is a declared option.
func (q *Question) HasOption(value string) bool {
	for _, o := range q.Options {
		if o.Value == value {
			return true
		}
	}
	return false
}

// OptionValues lists the declared option values in order.
func (q *Question) OptionValues() []string {
	out := make([]string, len(q.Options))
	for i, o := range q.Options {
		out[i] = o.Value
	}
	return out
}

// Phase is a named, ordered group of questions.
type Phase struct {
	Name      string
	Title     string
	Profile   bool // satisfiable from a pre-filled profile
	Questions []*Question
}

// Catalog is the ordered set of phases and questions.
type Catalog struct {
	phases []Phase
	order  []*Question
	index  map[string]*Question
}

// NewCatalog validates definitions and compiles each question's answer schema.
func NewCatalog(phases []Phase) (*Catalog, error) {
	c := &Catalog{index: make(map[string]*Question)}

	seenPhase := make(map[string]bool)
	for _, p := range phases {
		if p.Name == "" {
			return nil, fmt.Errorf("phase without name")
		}
		if seenPhase[p.Name] {
			return nil, fmt.Errorf("duplicate phase %q", p.Name)
		}
		seenPhase[p.Name] = true

		for _, q := range p.Questions {
			if q.ID == "" {
				return nil, fmt.Errorf("question without id in phase %q", p.Name)
			}
			if _, dup := c.index[q.ID]; dup {
				return nil, fmt.Errorf("duplicate question id %q", q.ID)
			}
			if (q.Type == SingleChoice || q.Type == MultiChoice) && len(q.Options) == 0 {
				return nil, fmt.Errorf("choice question %q has no options", q.ID)
			}
			if q.Exclusive != "" && !q.HasOption(q.Exclusive) {
				return nil, fmt.Errorf("question %q: exclusive option %q is not declared", q.ID, q.Exclusive)
			}

			q.Phase = p.Name
			compiled, err := validation.Compile(q.AnswerSchema())
			if err != nil {
				return nil, fmt.Errorf("question %q: %w", q.ID, err)
			}
			q.schema = compiled

			c.index[q.ID] = q
			c.order = append(c.order, q)
		}
		c.phases = append(c.phases, p)
	}

	if len(c.order) == 0 {
		return nil, fmt.Errorf("catalog has no questions")
	}
	return c, nil
}

// Question looks up a question by id.
func (c *Catalog) Question(id string) (*Question, bool) {
	q, ok := c.index[id]
	return q, ok
}

// Questions returns all questions in traversal order.
func (c *Catalog) Questions() []*Question {
	return append([]*Question(nil), c.order...)
}

// PhaseNames returns phase names in traversal order.
func (c *Catalog) PhaseNames() []string {
	out := make([]string, len(c.phases))
	for i, p := range c.phases {
		out[i] = p.Name
	}
	return out
}

// ProfileQuestions returns the questions of profile phases in order.
func (c *Catalog) ProfileQuestions() []*Question {
	var out []*Question
	for _, p := range c.phases {
		if p.Profile {
			out = append(out, p.Questions...)
		}
	}
	return out
}

// Next returns the first question that is neither answered nor skipped,
// or nil when the questionnaire is complete.
func (c *Catalog) Next(answers Answers) *Question {
	for _, q := range c.order {
		if answers.Has(q.ID) || q.Skipped(answers) {
			continue
		}
		return q
	}
	return nil
}

// Progress counts reachable questions under the current answers. Questions
// answered from a pre-filled profile are left out of both numbers.
func (c *Catalog) Progress(session *models.Session) models.Progress {
	answers := Answers(session.Answers())
	prefilled := make(map[string]bool)
	for _, r := range session.Responses {
		if r.Prefilled {
			prefilled[r.QuestionID] = true
		}
	}

	var p models.Progress
	for _, q := range c.order {
		if prefilled[q.ID] || q.Skipped(answers) {
			continue
		}
		p.Total++
		if answers.Has(q.ID) {
			p.Current++
		}
	}
	return p
}
