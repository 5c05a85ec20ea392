package validation

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// Schema is a JSON Schema document expressed as Go values.
type Schema map[string]interface{}

type ValidationResult struct {
	Valid  bool              `json:"valid"`
	Errors []ValidationError `json:"errors,omitempty"`
}

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// Messages flattens the result into human readable strings.
func (r *ValidationResult) Messages() []string {
	out := make([]string, 0, len(r.Errors))
	for _, e := range r.Errors {
		if e.Field != "" && e.Field != "(root)" {
			out = append(out, fmt.Sprintf("%s: %s", e.Field, e.Message))
			continue
		}
		out = append(out, e.Message)
	}
	return out
}

// String joins Messages with "; ".
func (r *ValidationResult) String() string {
	return strings.Join(r.Messages(), "; ")
}

// Validate checks value against schema. An error is returned only when the
// schema itself is unusable; document problems are reported in the result.
func Validate(schema Schema, value interface{}) (*ValidationResult, error) {
	result, err := gojsonschema.Validate(
		gojsonschema.NewGoLoader(map[string]interface{}(schema)),
		gojsonschema.NewGoLoader(value),
	)
	if err != nil {
		return nil, fmt.Errorf("validation error: %w", err)
	}

	out := &ValidationResult{Valid: result.Valid()}
	for _, desc := range result.Errors() {
		out.Errors = append(out.Errors, ValidationError{
			Field:   desc.Field(),
			Message: desc.Description(),
			Code:    strings.ToUpper(desc.Type()),
		})
	}
	return out, nil
}

// Compiled is a schema parsed once and reused for many documents.
type Compiled struct {
	schema *gojsonschema.Schema
}

// Compile parses schema up front so repeated validation skips the parse.
func Compile(schema Schema) (*Compiled, error) {
	s, err := gojsonschema.NewSchema(gojsonschema.NewGoLoader(map[string]interface{}(schema)))
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	return &Compiled{schema: s}, nil
}

// Validate checks value against the compiled schema.
func (c *Compiled) Validate(value interface{}) (*ValidationResult, error) {
	result, err := c.schema.Validate(gojsonschema.NewGoLoader(value))
	if err != nil {
		return nil, fmt.Errorf("validation error: %w", err)
	}

	out := &ValidationResult{Valid: result.Valid()}
	for _, desc := range result.Errors() {
		out.Errors = append(out.Errors, ValidationError{
			Field:   desc.Field(),
			Message: desc.Description(),
			Code:    strings.ToUpper(desc.Type()),
		})
	}
	return out, nil
}
