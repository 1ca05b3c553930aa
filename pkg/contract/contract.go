// Package contract derives the submission payload contract of a form as an
// OpenAPI schema and checks recorded responses against it.
package contract

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/goliatone/go-formbuilder/pkg/model"
)

// Extension keys carried on generated schemas.
const (
	ExtensionKind    = "x-formbuilder-kind"
	ExtensionPattern = "x-formbuilder-pattern"
	ExtensionRef     = "x-formbuilder-ref"
)

// Issue is one contract violation.
type Issue struct {
	Path    string `json:"path,omitempty"`
	Message string `json:"message"`
}

func (i Issue) String() string {
	if i.Path == "" {
		return i.Message
	}
	return i.Path + ": " + i.Message
}

// Schema builds the payload schema of a form: one property per input field,
// required from the field flags, with literal enums and bounds. Array-rooted
// forms describe a list of such objects.
func Schema(form model.Form) *openapi3.Schema {
	object := objectSchema(form.Fields)
	object.Title = form.Title
	object.Description = form.Description
	if form.Root != model.RootArray {
		return object
	}
	list := openapi3.NewArraySchema()
	list.Title = form.Title
	list.Items = openapi3.NewSchemaRef("", object)
	return list
}

func objectSchema(fields []model.Field) *openapi3.Schema {
	object := openapi3.NewObjectSchema()
	for _, field := range fields {
		if !field.Type.IsInput() || field.WidgetName == "" {
			continue
		}
		object.Properties[field.WidgetName] = openapi3.NewSchemaRef("", fieldSchema(field))
		if field.IsRequired && !field.IsHidden && !field.Type.IsContainer() {
			object.Required = append(object.Required, field.WidgetName)
		}
	}
	return object
}

func fieldSchema(field model.Field) *openapi3.Schema {
	var schema *openapi3.Schema
	switch cfg := field.Config.(type) {
	case *model.ObjectConfig:
		schema = objectSchema(cfg.Children)
	case *model.ArrayConfig:
		schema = openapi3.NewArraySchema()
		schema.Items = openapi3.NewSchemaRef("", objectSchema(cfg.Children))
		if n, ok := cfg.MinLength.Get(); ok && n > 0 {
			schema.MinItems = uint64(n)
		}
		if n, ok := cfg.MaxLength.Get(); ok && n >= 0 {
			limit := uint64(n)
			schema.MaxItems = &limit
		}
	case *model.NumericConfig:
		if field.Type == model.FieldTypeInteger {
			schema = openapi3.NewIntegerSchema()
		} else {
			schema = openapi3.NewFloat64Schema()
		}
		if n, ok := cfg.Minimum.Get(); ok {
			schema.Min = &n
			schema.ExclusiveMin = cfg.ExclusiveMinimum
		}
		if n, ok := cfg.Maximum.Get(); ok {
			schema.Max = &n
			schema.ExclusiveMax = cfg.ExclusiveMaximum
		}
	case *model.InputConfig:
		schema = openapi3.NewStringSchema()
		applyText(schema, cfg)
	case *model.ChoiceConfig:
		schema = openapi3.NewStringSchema()
		if ref := cfg.Enum.Reference(); ref != "" {
			schema.Extensions = map[string]any{ExtensionRef: ref}
		} else if options := cfg.Enum.Options(); len(options) > 0 {
			for _, option := range options {
				schema.Enum = append(schema.Enum, option.Value)
			}
		}
	case *model.CheckboxConfig:
		schema = openapi3.NewBoolSchema()
	case *model.DateConfig:
		schema = openapi3.NewStringSchema()
	default:
		schema = openapi3.NewSchema()
	}
	schema.Title = field.Title
	schema.Description = field.Description
	if schema.Extensions == nil {
		schema.Extensions = map[string]any{}
	}
	schema.Extensions[ExtensionKind] = string(field.Type)
	return schema
}

func applyText(schema *openapi3.Schema, cfg *model.InputConfig) {
	if n, ok := cfg.MinLength.Get(); ok && n > 0 {
		schema.MinLength = uint64(n)
	}
	if n, ok := cfg.MaxLength.Get(); ok && n >= 0 {
		limit := uint64(n)
		schema.MaxLength = &limit
	}
	if cfg.Pattern == "" {
		return
	}
	// ECMAScript-only constructs stay out of the schema.
	if _, err := regexp.Compile(cfg.Pattern); err != nil {
		schema.Extensions = map[string]any{ExtensionPattern: cfg.Pattern}
		return
	}
	schema.Pattern = cfg.Pattern
}

// Payload shapes submitted values into the contract's form: object children
// nest under the object name, numeric strings become numbers, checkbox
// strings become booleans and empty values are dropped.
func Payload(form model.Form, values map[string]any) map[string]any {
	return payload(form.Fields, values)
}

func payload(fields []model.Field, values map[string]any) map[string]any {
	out := make(map[string]any)
	for _, field := range fields {
		if !field.Type.IsInput() || field.WidgetName == "" {
			continue
		}
		value, ok := values[field.WidgetName]
		if field.Type == model.FieldTypeObject {
			nested, isMap := value.(map[string]any)
			if !isMap {
				nested = values
			}
			out[field.WidgetName] = payload(field.Children(), nested)
			continue
		}
		if !ok || value == nil || value == "" {
			continue
		}
		out[field.WidgetName] = coerce(field.Type, value)
	}
	return out
}

func coerce(t model.FieldType, value any) any {
	text, ok := value.(string)
	if !ok {
		return value
	}
	switch t {
	case model.FieldTypeInteger, model.FieldTypeNumber:
		if n, err := strconv.ParseFloat(strings.TrimSpace(text), 64); err == nil {
			return n
		}
	case model.FieldTypeCheckbox:
		if b, err := strconv.ParseBool(strings.TrimSpace(text)); err == nil {
			return b
		}
	}
	return text
}

// Validate checks submitted values against the form's contract.
func Validate(form model.Form, values map[string]any) ([]Issue, error) {
	doc, err := normalize(Payload(form, values))
	if err != nil {
		return nil, err
	}
	var target any = doc
	if form.Root == model.RootArray {
		target = []any{doc}
	}
	return Check(Schema(form), target)
}

// Check visits value with schema and flattens every violation.
func Check(schema *openapi3.Schema, value any) ([]Issue, error) {
	err := schema.VisitJSON(value, openapi3.MultiErrors())
	if err == nil {
		return nil, nil
	}
	var issues []Issue
	collect(err, &issues)
	if len(issues) == 0 {
		return nil, fmt.Errorf("contract: visit: %w", err)
	}
	return issues, nil
}

func collect(err error, issues *[]Issue) {
	var multi openapi3.MultiError
	if errors.As(err, &multi) {
		for _, inner := range multi {
			collect(inner, issues)
		}
		return
	}
	var schemaErr *openapi3.SchemaError
	if errors.As(err, &schemaErr) {
		*issues = append(*issues, Issue{
			Path:    strings.Join(schemaErr.JSONPointer(), "/"),
			Message: schemaErr.Reason,
		})
	}
}

// normalize turns Go values into their decoded JSON equivalents.
func normalize(doc map[string]any) (map[string]any, error) {
	data, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("contract: marshal payload: %w", err)
	}
	out := map[string]any{}
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("contract: unmarshal payload: %w", err)
	}
	return out, nil
}

// MarshalSchema renders the contract as indented JSON.
func MarshalSchema(form model.Form) ([]byte, error) {
	return json.MarshalIndent(Schema(form), "", "  ")
}
