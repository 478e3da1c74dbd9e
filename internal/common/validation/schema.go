// internal/common/validation/schema.go
package validation

import (
	"embed"
	"encoding/json"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	apperrors "planmytrip/internal/common/errors"

	"github.com/xeipuuv/gojsonschema"
)

//go:embed schemas/*.json
var schemaFS embed.FS

const (
	CodeRequiredFieldMissing = "REQUIRED_FIELD_MISSING"
	CodeInvalidType          = "INVALID_TYPE"
	CodeInvalidEnumValue     = "INVALID_ENUM_VALUE"
	CodeMinimumViolation     = "MINIMUM_VIOLATION"
	CodeMaximumViolation     = "MAXIMUM_VIOLATION"
	CodeMinItemsViolation    = "MIN_ITEMS_VIOLATION"
	CodeEmptyValue           = "EMPTY_VALUE"
	CodeInvalidValue         = "INVALID_VALUE"
)

const rootField = "(root)"

type ValidationResult struct {
	Valid  bool              `json:"valid"`
	Errors []ValidationError `json:"errors,omitempty"`
}

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// Schema is a compiled JSON Schema document.
type Schema struct {
	name   string
	schema *gojsonschema.Schema
}

// MustLoadSchema compiles an embedded schema file and panics if it is
// missing or invalid.
func MustLoadSchema(file string) *Schema {
	s, err := LoadSchema(file)
	if err != nil {
		panic(err)
	}
	return s
}

func LoadSchema(file string) (*Schema, error) {
	raw, err := schemaFS.ReadFile("schemas/" + file)
	if err != nil {
		return nil, fmt.Errorf("read schema %s: %w", file, err)
	}
	compiled, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(raw))
	if err != nil {
		return nil, fmt.Errorf("compile schema %s: %w", file, err)
	}
	return &Schema{name: file, schema: compiled}, nil
}

// Validate checks a decoded JSON document and returns every violation,
// sorted by field path.
func (s *Schema) Validate(doc interface{}) *ValidationResult {
	result, err := s.schema.Validate(gojsonschema.NewGoLoader(doc))
	if err != nil {
		return &ValidationResult{
			Valid: false,
			Errors: []ValidationError{{
				Field:   rootField,
				Message: fmt.Sprintf("document could not be read: %v", err),
				Code:    CodeInvalidType,
			}},
		}
	}
	if result.Valid() {
		return &ValidationResult{Valid: true}
	}

	errs := make([]ValidationError, 0, len(result.Errors()))
	seen := make(map[string]bool)
	for _, re := range result.Errors() {
		ve := toValidationError(re)
		key := ve.Field + "|" + ve.Code
		if seen[key] {
			continue
		}
		seen[key] = true
		errs = append(errs, ve)
	}
	sort.SliceStable(errs, func(i, j int) bool { return errs[i].Field < errs[j].Field })

	return &ValidationResult{Valid: false, Errors: errs}
}

func toValidationError(re gojsonschema.ResultError) ValidationError {
	field := fieldPath(re.Context())
	details := re.Details()

	switch re.Type() {
	case "required":
		prop, _ := details["property"].(string)
		field = joinField(field, prop)
		return ValidationError{Field: field, Message: "required field missing", Code: CodeRequiredFieldMissing}
	case "invalid_type":
		return ValidationError{
			Field:   field,
			Message: fmt.Sprintf("expected %v, got %v", details["expected"], details["given"]),
			Code:    CodeInvalidType,
		}
	case "enum":
		return ValidationError{
			Field:   field,
			Message: fmt.Sprintf("value must be one of %v", details["allowed"]),
			Code:    CodeInvalidEnumValue,
		}
	case "number_gte":
		return ValidationError{
			Field:   field,
			Message: fmt.Sprintf("value must be >= %v", details["min"]),
			Code:    CodeMinimumViolation,
		}
	case "number_lte":
		return ValidationError{
			Field:   field,
			Message: fmt.Sprintf("value must be <= %v", details["max"]),
			Code:    CodeMaximumViolation,
		}
	case "array_min_items":
		return ValidationError{
			Field:   field,
			Message: fmt.Sprintf("must contain at least %v item(s)", details["min"]),
			Code:    CodeMinItemsViolation,
		}
	case "pattern":
		return ValidationError{Field: field, Message: "value must not be blank", Code: CodeEmptyValue}
	default:
		return ValidationError{Field: field, Message: re.Description(), Code: CodeInvalidValue}
	}
}

// fieldPath turns "(root).days.0.activities.1" into "days[0].activities[1]".
func fieldPath(ctx *gojsonschema.JsonContext) string {
	if ctx == nil {
		return rootField
	}
	var b strings.Builder
	for _, seg := range strings.Split(ctx.String(), ".") {
		if seg == "" || seg == rootField {
			continue
		}
		if _, err := strconv.Atoi(seg); err == nil {
			b.WriteString("[" + seg + "]")
			continue
		}
		if b.Len() > 0 {
			b.WriteByte('.')
		}
		b.WriteString(seg)
	}
	if b.Len() == 0 {
		return rootField
	}
	return b.String()
}

func joinField(parent, child string) string {
	if child == "" {
		return parent
	}
	if parent == rootField || parent == "" {
		return child
	}
	return parent + "." + child
}

// decodeInto converts a validated generic document into a typed value.
func decodeInto(doc interface{}, out interface{}) error {
	raw, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, out)
}

// ToFieldViolations converts the result into the violation list carried
// by StandardError.
func (r *ValidationResult) ToFieldViolations() []apperrors.FieldViolation {
	if r == nil {
		return nil
	}
	out := make([]apperrors.FieldViolation, 0, len(r.Errors))
	for _, e := range r.Errors {
		out = append(out, apperrors.FieldViolation{Field: e.Field, Message: e.Message, Code: e.Code})
	}
	return out
}

// GetErrorMessages returns formatted error messages
func GetErrorMessages(result *ValidationResult) []string {
	messages := make([]string, len(result.Errors))
	for i, err := range result.Errors {
		messages[i] = fmt.Sprintf("%s: %s", err.Field, err.Message)
	}
	return messages
}

// HasErrors checks if validation result has errors
func HasErrors(result *ValidationResult) bool {
	return result != nil && !result.Valid && len(result.Errors) > 0
}

// GetErrorsForField returns errors for a specific field
func GetErrorsForField(result *ValidationResult, field string) []ValidationError {
	var fieldErrors []ValidationError
	for _, err := range result.Errors {
		if err.Field == field {
			fieldErrors = append(fieldErrors, err)
		}
	}
	return fieldErrors
}

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// ValidateEmail validates email format
func ValidateEmail(email string) bool {
	return emailPattern.MatchString(email)
}
