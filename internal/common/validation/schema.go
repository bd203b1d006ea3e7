package validation

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

type ValidationResult struct {
	Valid  bool              `json:"valid"`
	Errors []ValidationError `json:"errors,omitempty"`
}

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// MaxRatingRange is the largest rating scale accepted from generated content.
const MaxRatingRange = 10

// SurveySchema is the minimal shape a generated survey document must have
// before it is accepted. Unknown fields are allowed; LLMs add them freely.
var SurveySchema = map[string]interface{}{
	"type":     "object",
	"required": []interface{}{"questions"},
	"properties": map[string]interface{}{
		"name": map[string]interface{}{"type": "string"},
		"questions": map[string]interface{}{
			"type": "array",
			"items": map[string]interface{}{
				"type":     "object",
				"required": []interface{}{"type", "headline"},
				"properties": map[string]interface{}{
					"type": map[string]interface{}{
						"type": "string",
						"enum": []interface{}{"rating", "multipleChoice", "openText", "dropdown", "matrix"},
					},
					"headline": map[string]interface{}{"type": "string", "minLength": 1},
					"required": map[string]interface{}{"type": "boolean"},
					"choices": map[string]interface{}{
						"type":  "array",
						"items": map[string]interface{}{"type": "string"},
					},
					"range": map[string]interface{}{"type": "integer", "minimum": 2, "maximum": MaxRatingRange},
				},
			},
		},
		"welcomeCard":  cardSchema,
		"thankYouCard": cardSchema,
	},
}

var cardSchema = map[string]interface{}{
	"type": "object",
	"properties": map[string]interface{}{
		"enabled":  map[string]interface{}{"type": "boolean"},
		"headline": map[string]interface{}{"type": "string"},
		"html":     map[string]interface{}{"type": "string"},
	},
}

// ValidateDocument checks a decoded JSON document against a JSON schema.
func ValidateDocument(schema map[string]interface{}, document interface{}) (*ValidationResult, error) {
	schemaLoader := gojsonschema.NewGoLoader(schema)
	documentLoader := gojsonschema.NewGoLoader(document)

	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
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

// ValidateSurveyShape is ValidateDocument against SurveySchema.
func ValidateSurveyShape(document interface{}) (*ValidationResult, error) {
	return ValidateDocument(SurveySchema, document)
}

// GetErrorMessages returns a simple list of error messages
func (vr *ValidationResult) GetErrorMessages() []string {
	messages := make([]string, len(vr.Errors))
	for i, err := range vr.Errors {
		messages[i] = fmt.Sprintf("%s: %s", err.Field, err.Message)
	}
	return messages
}

// HasErrors checks if validation has errors for specific field
func (vr *ValidationResult) HasErrors(field string) bool {
	for _, err := range vr.Errors {
		if err.Field == field || strings.HasPrefix(err.Field, field+".") {
			return true
		}
	}
	return false
}

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// ValidateEmail validates email format
func ValidateEmail(email string) bool {
	return emailPattern.MatchString(email)
}
