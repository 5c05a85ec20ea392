package questionnaire

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"insurance-advisor/internal/common/errors"
	"insurance-advisor/internal/common/validation"
)

const (
	dateLayout        = "2006-01-02"
	maxFreeTextLength = 200
)

// AnswerSchema returns the JSON Schema an answer to q must satisfy.
func (q *Question) AnswerSchema() validation.Schema {
	switch q.Type {
	case SingleChoice:
		return validation.Schema{"type": "string", "enum": q.OptionValues()}
	case MultiChoice:
		return validation.Schema{
			"type":        "array",
			"minItems":    1,
			"uniqueItems": true,
			"items":       map[string]interface{}{"type": "string", "enum": q.OptionValues()},
		}
	case Date:
		return validation.Schema{"type": "string", "pattern": `^[0-9]{4}-[0-9]{2}-[0-9]{2}$`}
	case Numeric:
		s := validation.Schema{"type": "number"}
		if q.Min != nil {
			s["minimum"] = *q.Min
		}
		if q.Max != nil {
			s["maximum"] = *q.Max
		}
		return s
	default:
		s := validation.Schema{"type": "string", "minLength": 1, "maxLength": maxFreeTextLength}
		if q.Format != "" {
			s["format"] = q.Format
		}
		return s
	}
}

// Validate checks value against the question's type, options and range and
// returns it in canonical form: trimmed strings, []string for multi-choice
// and float64 for numbers. Past-only dates are checked against time.Now.
func (q *Question) Validate(value interface{}) (interface{}, error) {
	return q.ValidateAt(value, time.Now())
}

// ValidateAt is Validate with past-only dates checked against now.
func (q *Question) ValidateAt(value interface{}, now time.Time) (interface{}, error) {
	if value == nil {
		return nil, errors.NewValidationError(q.ID, "an answer is required")
	}

	normalized, err := q.normalize(value)
	if err != nil {
		return nil, err
	}

	schema := q.schema
	if schema == nil {
		if schema, err = validation.Compile(q.AnswerSchema()); err != nil {
			return nil, errors.NewInternalError(err)
		}
	}

	result, err := schema.Validate(normalized)
	if err != nil {
		return nil, errors.NewInternalError(err)
	}
	if !result.Valid {
		return nil, errors.NewValidationError(q.ID, q.describe(result))
	}

	switch q.Type {
	case Date:
		d, err := time.Parse(dateLayout, normalized.(string))
		if err != nil {
			return nil, errors.NewValidationError(q.ID, fmt.Sprintf("%q is not a calendar date", normalized))
		}
		if q.PastOnly && !d.Before(now) {
			return nil, errors.NewValidationError(q.ID, "date must be in the past")
		}
	case MultiChoice:
		list := normalized.([]string)
		if q.Exclusive != "" && len(list) > 1 {
			for _, v := range list {
				if v == q.Exclusive {
					return nil, errors.NewValidationError(q.ID,
						fmt.Sprintf("%q cannot be combined with other options", q.Exclusive))
				}
			}
		}
	}

	return normalized, nil
}

func (q *Question) normalize(value interface{}) (interface{}, error) {
	switch q.Type {
	case MultiChoice:
		switch v := value.(type) {
		case []string:
			out := make([]string, len(v))
			for i, s := range v {
				out[i] = strings.TrimSpace(s)
			}
			return out, nil
		case []interface{}:
			out := make([]string, 0, len(v))
			for _, item := range v {
				s, ok := item.(string)
				if !ok {
					return nil, errors.NewValidationError(q.ID, fmt.Sprintf("option %v is not a string", item))
				}
				out = append(out, strings.TrimSpace(s))
			}
			return out, nil
		}
		return nil, errors.NewValidationError(q.ID, fmt.Sprintf("expected a list of options, got %T", value))
	case Numeric:
		switch v := value.(type) {
		case float64:
			return v, nil
		case float32:
			return float64(v), nil
		case int:
			return float64(v), nil
		case int64:
			return float64(v), nil
		case json.Number:
			f, err := v.Float64()
			if err != nil {
				return nil, errors.NewValidationError(q.ID, fmt.Sprintf("%q is not a number", v.String()))
			}
			return f, nil
		}
		return nil, errors.NewValidationError(q.ID, fmt.Sprintf("expected a number, got %T", value))
	default:
		s, ok := value.(string)
		if !ok {
			return nil, errors.NewValidationError(q.ID, fmt.Sprintf("expected text, got %T", value))
		}
		return strings.TrimSpace(s), nil
	}
}

func (q *Question) describe(result *validation.ValidationResult) string {
	if q.Type == SingleChoice {
		return fmt.Sprintf("value is not one of the allowed options %v", q.OptionValues())
	}
	return result.String()
}
