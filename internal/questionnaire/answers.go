package questionnaire

import "encoding/json"

// Answers is the accumulated answer map that skip predicates and the
// profile converter read from. Keys are question ids.
type Answers map[string]interface{}

// Has reports whether id was answered.
func (a Answers) Has(id string) bool {
	_, ok := a[id]
	return ok
}

// String returns the answer as a string, or "" when absent or not a string.
func (a Answers) String(id string) string {
	s, _ := a[id].(string)
	return s
}

// Strings returns a multi-choice answer. A single string is returned as a
// one element list.
func (a Answers) Strings(id string) []string {
	switch v := a[id].(type) {
	case []string:
		return v
	case []interface{}:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	case string:
		if v == "" {
			return nil
		}
		return []string{v}
	}
	return nil
}

// Number returns a numeric answer.
func (a Answers) Number(id string) (float64, bool) {
	switch v := a[id].(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case json.Number:
		f, err := v.Float64()
		return f, err == nil
	}
	return 0, false
}

// Is reports whether the single-choice answer for id is one of values.
func (a Answers) Is(id string, values ...string) bool {
	got, ok := a[id].(string)
	if !ok {
		return false
	}
	for _, v := range values {
		if got == v {
			return true
		}
	}
	return false
}

// Contains reports whether the multi-choice answer for id includes value.
func (a Answers) Contains(id, value string) bool {
	for _, v := range a.Strings(id) {
		if v == value {
			return true
		}
	}
	return false
}
