// Package validation checks a finished form before submit. The rules live in
// an OpenAPI 3 object schema so the same document can be published to
// clients.
package validation

import (
	"errors"
	"sort"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/goliatone/go-campcert/pkg/formstate"
)

// Issue is one failed rule.
type Issue struct {
	Path    string `json:"path,omitempty"`
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}

// Result captures the validation outcome.
type Result struct {
	Valid  bool    `json:"valid"`
	Issues []Issue `json:"issues,omitempty"`
}

// Validator validates snapshots against the certificate schema.
type Validator struct {
	schema *openapi3.Schema
}

// New builds a validator. camps restricts campName; an empty list falls back
// to formstate.DefaultCamps.
func New(camps []string) *Validator {
	return &Validator{schema: Schema(camps)}
}

// Schema returns the object schema for the form.
func Schema(camps []string) *openapi3.Schema {
	if len(camps) == 0 {
		camps = formstate.DefaultCamps()
	}
	enum := make([]any, 0, len(camps))
	for _, camp := range camps {
		enum = append(enum, camp)
	}

	schema := openapi3.NewObjectSchema()
	required := make([]string, 0, len(formstate.Definitions()))
	for _, def := range formstate.Definitions() {
		var prop *openapi3.Schema
		switch def.Kind {
		case formstate.KindInteger:
			prop = openapi3.NewIntegerSchema()
			if def.Range != nil {
				prop = prop.WithMin(float64(def.Range.Min)).WithMax(float64(def.Range.Max))
			}
		default:
			prop = openapi3.NewStringSchema().WithMinLength(1)
		}
		if def.Key == formstate.FieldCampName {
			prop = prop.WithEnum(enum...)
		}
		prop.Title = def.Label
		schema = schema.WithProperty(def.Key, prop)
		required = append(required, def.Key)
	}
	schema.Required = required
	return schema
}

// Validate reports every missing or out-of-range field. Missing fields use
// the field's required message; one issue is reported per field.
func (v *Validator) Validate(state formstate.State) Result {
	result := Result{Valid: true}
	seen := make(map[string]bool)

	for _, def := range formstate.Definitions() {
		if present(state, def) {
			continue
		}
		seen[def.Key] = true
		result.Issues = append(result.Issues, Issue{
			Path:    "/" + def.Key,
			Field:   def.Key,
			Message: def.RequiredMessage,
		})
	}

	if err := v.schema.VisitJSON(document(state), openapi3.MultiErrors()); err != nil {
		for _, schemaErr := range flatten(err) {
			if schemaErr.SchemaField == "required" {
				continue
			}
			pointer := schemaErr.JSONPointer()
			field := ""
			if len(pointer) > 0 {
				field = pointer[0]
			}
			if seen[field] {
				continue
			}
			seen[field] = true
			result.Issues = append(result.Issues, Issue{
				Path:    "/" + strings.Join(pointer, "/"),
				Field:   field,
				Message: strings.TrimSpace(schemaErr.Reason),
			})
		}
	}

	sortIssues(result.Issues)
	result.Valid = len(result.Issues) == 0
	return result
}

func present(state formstate.State, def formstate.Definition) bool {
	value, ok := state.Get(def.Key)
	if !ok || value == nil {
		return false
	}
	if s, isString := value.(string); isString {
		return strings.TrimSpace(s) != ""
	}
	return true
}

// document converts the snapshot into the JSON value shapes the schema
// visitor expects.
func document(state formstate.State) map[string]any {
	values := state.Values()
	out := make(map[string]any, len(values))
	for key, value := range values {
		if n, ok := value.(int); ok {
			out[key] = float64(n)
			continue
		}
		out[key] = value
	}
	return out
}

func flatten(err error) []*openapi3.SchemaError {
	var multi openapi3.MultiError
	if errors.As(err, &multi) {
		var out []*openapi3.SchemaError
		for _, inner := range multi {
			out = append(out, flatten(inner)...)
		}
		return out
	}
	var schemaErr *openapi3.SchemaError
	if errors.As(err, &schemaErr) {
		return []*openapi3.SchemaError{schemaErr}
	}
	return nil
}

var fieldOrder = func() map[string]int {
	out := make(map[string]int)
	for idx, def := range formstate.Definitions() {
		out[def.Key] = idx
	}
	return out
}()

func sortIssues(issues []Issue) {
	sort.SliceStable(issues, func(i, j int) bool {
		return fieldOrder[issues[i].Field] < fieldOrder[issues[j].Field]
	})
}
