package validation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/go-logr/logr"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-formsync/pkg/field"
)

var missingPropertyPattern = regexp.MustCompile(`property "([^"]+)" is missing`)

// SchemaValidator validates inputs against an OpenAPI object schema whose
// properties are keyed by input name.
type SchemaValidator struct {
	schema          *openapi3.Schema
	includeDisabled bool
	debug           bool
	log             logr.Logger
}

// SchemaOption configures a SchemaValidator.
type SchemaOption func(*SchemaValidator)

// IncludeDisabled validates disabled inputs too. By default they are skipped,
// like a browser skips them on submit.
func IncludeDisabled() SchemaOption {
	return func(v *SchemaValidator) { v.includeDisabled = true }
}

// WithDebug traces every validation run to log.
func WithDebug(log logr.Logger) SchemaOption {
	return func(v *SchemaValidator) {
		v.debug = true
		v.log = log
	}
}

// NewSchemaValidator builds a validator for schema.
func NewSchemaValidator(schema *openapi3.Schema, opts ...SchemaOption) (*SchemaValidator, error) {
	if schema == nil {
		return nil, errors.New("validation: schema is nil")
	}
	v := &SchemaValidator{schema: schema, log: logr.Discard()}
	for _, opt := range opts {
		if opt != nil {
			opt(v)
		}
	}
	return v, nil
}

// SchemaFromBytes parses a standalone schema written in JSON or YAML.
func SchemaFromBytes(data []byte) (*openapi3.Schema, error) {
	if len(strings.TrimSpace(string(data))) == 0 {
		return nil, errors.New("validation: schema is empty")
	}
	raw := data
	if !json.Valid(data) {
		var doc map[string]any
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("validation: parse schema: %w", err)
		}
		converted, err := json.Marshal(doc)
		if err != nil {
			return nil, fmt.Errorf("validation: convert schema: %w", err)
		}
		raw = converted
	}
	schema := &openapi3.Schema{}
	if err := schema.UnmarshalJSON(raw); err != nil {
		return nil, fmt.Errorf("validation: decode schema: %w", err)
	}
	return schema, nil
}

// SchemaFromDocument loads an OpenAPI document and returns the named
// component schema.
func SchemaFromDocument(ctx context.Context, data []byte, component string) (*openapi3.Schema, error) {
	loader := &openapi3.Loader{Context: ctx}
	doc, err := loader.LoadFromData(data)
	if err != nil {
		return nil, fmt.Errorf("validation: load document: %w", err)
	}
	if err := doc.Validate(ctx, openapi3.DisableExamplesValidation()); err != nil {
		return nil, fmt.Errorf("validation: validate document: %w", err)
	}
	if doc.Components == nil {
		return nil, fmt.Errorf("validation: document has no components")
	}
	ref, ok := doc.Components.Schemas[component]
	if !ok || ref == nil || ref.Value == nil {
		return nil, fmt.Errorf("validation: schema %q not found", component)
	}
	return ref.Value, nil
}

// Validate implements Validator.
func (v *SchemaValidator) Validate(ctx context.Context, inputs []field.Input) Result {
	if err := ctx.Err(); err != nil {
		return Result{Errors: []Issue{{Message: err.Error()}}}
	}
	values, ids := v.collect(inputs)
	err := v.schema.VisitJSON(values, openapi3.MultiErrors())
	if err == nil {
		if v.debug {
			v.log.V(1).Info("validation passed", "values", values)
		}
		return Result{Valid: true}
	}

	var issues []Issue
	for _, item := range flatten(err) {
		issue := issueFromError(item)
		issue.ID = ids[issue.Field]
		issues = append(issues, issue)
	}
	if v.debug {
		v.log.V(1).Info("validation failed", "values", values, "issues", issues)
	}
	return Result{Valid: false, Errors: issues}
}

// collect maps inputs onto the JSON value the schema validates. Empty values
// are omitted so "required" reports them as missing.
func (v *SchemaValidator) collect(inputs []field.Input) (map[string]any, map[string]string) {
	values := make(map[string]any, len(inputs))
	ids := make(map[string]string, len(inputs))
	for _, in := range inputs {
		if in == nil || (in.Disabled() && !v.includeDisabled) {
			continue
		}
		name := field.NameOf(in)
		if name == "" {
			continue
		}
		if _, seen := ids[name]; !seen {
			ids[name] = in.ID()
		}
		prop := v.property(name)
		switch in.Kind() {
		case field.KindCheckbox:
			checked, _ := field.CheckedOf(in)
			if isType(prop, openapi3.TypeBoolean) {
				values[name] = checked
			} else if checked {
				values[name] = in.Value()
			}
		case field.KindRadio:
			if checked, _ := field.CheckedOf(in); checked {
				values[name] = coerce(prop, in.Value())
			}
		case field.KindMultiSelect:
			selected := field.SelectedOf(in)
			if len(selected) == 0 {
				continue
			}
			items := make([]any, 0, len(selected))
			for _, s := range selected {
				items = append(items, s)
			}
			values[name] = items
		default:
			if value := in.Value(); value != "" {
				values[name] = coerce(prop, value)
			}
		}
	}
	return values, ids
}

func (v *SchemaValidator) property(name string) *openapi3.Schema {
	ref, ok := v.schema.Properties[name]
	if !ok || ref == nil {
		return nil
	}
	return ref.Value
}

func isType(schema *openapi3.Schema, typ string) bool {
	if schema == nil || schema.Type == nil {
		return false
	}
	for _, t := range schema.Type.Slice() {
		if t == typ {
			return true
		}
	}
	return false
}

func coerce(schema *openapi3.Schema, value string) any {
	switch {
	case isType(schema, openapi3.TypeInteger):
		if n, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64); err == nil {
			return float64(n)
		}
	case isType(schema, openapi3.TypeNumber):
		if f, err := strconv.ParseFloat(strings.TrimSpace(value), 64); err == nil {
			return f
		}
	case isType(schema, openapi3.TypeBoolean):
		if b, err := strconv.ParseBool(strings.TrimSpace(value)); err == nil {
			return b
		}
	}
	return value
}

func flatten(err error) []error {
	var multi openapi3.MultiError
	if errors.As(err, &multi) {
		var out []error
		for _, item := range multi {
			out = append(out, flatten(item)...)
		}
		return out
	}
	return []error{err}
}

func issueFromError(err error) Issue {
	var schemaErr *openapi3.SchemaError
	if !errors.As(err, &schemaErr) {
		return Issue{Message: strings.TrimSpace(err.Error())}
	}
	pointer := schemaErr.JSONPointer()
	issue := Issue{
		Path:    "/" + strings.Join(pointer, "/"),
		Message: strings.TrimSpace(schemaErr.Reason),
	}
	if len(pointer) > 0 {
		issue.Field = pointer[0]
	}
	if m := missingPropertyPattern.FindStringSubmatch(schemaErr.Reason); len(m) == 2 {
		issue.Field = m[1]
		issue.Path = "/" + m[1]
		issue.Message = "is required"
	}
	return issue
}
