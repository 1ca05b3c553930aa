package codec

import (
	"fmt"

	"github.com/goliatone/go-formbuilder/internal/jsondoc"
	"github.com/goliatone/go-formbuilder/pkg/model"
)

// Decode parses a schema document into a form.
func Decode(data []byte) (model.Form, error) {
	root, err := jsondoc.Parse(data)
	if err != nil {
		return model.Form{}, fmt.Errorf("%w: %v", ErrInvalidJSON, err)
	}
	obj, ok := jsondoc.AsObject(root)
	if !ok {
		return model.Form{}, ErrNoDefinition
	}
	name, def, ok := locate(obj)
	if !ok {
		return model.Form{}, ErrNoDefinition
	}
	return decodeDefinition(name, def), nil
}

// DecodeDefinition parses a single form definition (the value stored under a
// form name) into a form called name.
func DecodeDefinition(name string, data []byte) (model.Form, error) {
	root, err := jsondoc.Parse(data)
	if err != nil {
		return model.Form{}, fmt.Errorf("%w: %v", ErrInvalidJSON, err)
	}
	def, ok := jsondoc.AsObject(root)
	if !ok {
		return model.Form{}, ErrNoDefinition
	}
	return decodeDefinition(name, def), nil
}

// locate finds the form definition, trying the nested envelope, then a bare
// object schema, then the first named definition.
func locate(doc *jsondoc.Object) (string, *jsondoc.Object, bool) {
	if defs, ok := doc.Path("data", "form_schema", "formDefinitions"); ok {
		if defsObj, ok := jsondoc.AsObject(defs); ok {
			if name, value, ok := defsObj.First(); ok {
				if def, ok := jsondoc.AsObject(value); ok {
					return name, def, true
				}
			}
		}
	}

	if t, _ := doc.StringOf(keyType); t == typeObject && doc.Has(keyProperties) {
		name := DefaultFormName
		if title, ok := doc.StringOf(keyTitle); ok {
			if camel := CamelName(title); camel != "" {
				name = camel
			}
		}
		return name, doc, true
	}

	for _, key := range doc.Keys() {
		value, _ := doc.Get(key)
		def, ok := jsondoc.AsObject(value)
		if !ok {
			continue
		}
		if t, _ := def.StringOf(keyType); t == typeObject || t == typeArray {
			return key, def, true
		}
	}
	return "", nil, false
}

func decodeDefinition(name string, def *jsondoc.Object) model.Form {
	form := model.Form{
		Name:  name,
		Title: name,
		Root:  model.RootObject,
	}
	if title, ok := def.StringOf(keyTitle); ok {
		form.Title = title
	}
	form.Description, _ = def.StringOf(keyDescription)

	source := def
	if t, _ := def.StringOf(keyType); t == typeArray {
		form.Root = model.RootArray
		source = itemsOf(def)
	}

	form.Fields = decodeLevel(source)
	switchValue, ok := source.Lookup(keySwitch)
	if !ok {
		switchValue, _ = def.Lookup(keySwitch)
	}
	form.Rules = decodeRules(switchValue)

	if form.Description != "" {
		desc := model.Field{
			ID:          model.NewID(),
			Type:        model.FieldTypeDescription,
			WidgetName:  name,
			Description: form.Description,
			Config:      &model.DescriptionConfig{},
		}
		form.Fields = append([]model.Field{desc}, form.Fields...)
	}
	return form
}

// itemsOf returns the item schema of an array root, or the definition itself
// when items is missing or not an object.
func itemsOf(def *jsondoc.Object) *jsondoc.Object {
	items, _ := def.Get(keyItems)
	if obj, ok := jsondoc.AsObject(items); ok {
		return obj
	}
	return def
}

// level holds the keyword sets of one object level. Nested levels never
// inherit the sets of their parent.
type level struct {
	required   map[string]struct{}
	hidden     map[string]struct{}
	uneditable map[string]struct{}
}

func newLevel(src *jsondoc.Object) level {
	get := func(key string) any {
		v, _ := src.Get(key)
		return v
	}
	return level{
		required:   jsondoc.StringSet(get(keyRequired)),
		hidden:     jsondoc.StringSet(get(keyHidden)),
		uneditable: jsondoc.StringSet(get(keyUneditable)),
	}
}

func (l level) has(set map[string]struct{}, name string) bool {
	_, ok := set[name]
	return ok
}

func decodeLevel(src *jsondoc.Object) []model.Field {
	lvl := newLevel(src)
	propsValue, _ := src.Get(keyProperties)
	props, ok := jsondoc.AsObject(propsValue)
	if !ok {
		return []model.Field{}
	}
	fields := make([]model.Field, 0, props.Len())
	for _, name := range props.Keys() {
		value, _ := props.Get(name)
		prop, ok := jsondoc.AsObject(value)
		if !ok {
			continue
		}
		if field, ok := decodeField(name, prop, lvl); ok {
			fields = append(fields, field)
		}
	}
	return fields
}

// detectType maps a property to a field kind. The first matching rule wins.
func detectType(name string, prop *jsondoc.Object, lvl level) (model.FieldType, bool) {
	t, _ := prop.StringOf(keyType)
	switch t {
	case typeInstruction:
		return model.FieldTypeInstruction, true
	case typeCalculation:
		return model.FieldTypeCalculation, true
	case typeEvaluation:
		return model.FieldTypeEvaluation, true
	case typeCommodity:
		return model.FieldTypeCommodity, true
	case typeDeepLink:
		return model.FieldTypeDeepLink, true
	case typeEmbedded:
		return model.FieldTypeEmbedded, true
	case typeMetadata:
		return model.FieldTypeMetadata, true
	case typeMedia:
		return model.FieldTypeDescription, true
	case typeString:
		return detectStringType(prop), true
	case typeInteger:
		return model.FieldTypeInteger, true
	case typeNumber:
		return model.FieldTypeNumber, true
	case typeBoolean:
		if lvl.has(lvl.required, name) {
			return model.FieldTypeBoolean, true
		}
		return model.FieldTypeCheckbox, true
	case typeObject:
		return model.FieldTypeObject, true
	case typeArray:
		return model.FieldTypeArray, true
	}
	return "", false
}

func detectStringType(prop *jsondoc.Object) model.FieldType {
	format, _ := prop.StringOf(keyFormat)
	switch format {
	case formatDate:
		return model.FieldTypeDate
	case formatDateCalendar:
		return model.FieldTypeDateCalendar
	case formatDateTime:
		return model.FieldTypeDateTime
	case formatHoursMinutes:
		return model.FieldTypeTime
	case formatHosClock:
		return model.FieldTypeHosClock
	case formatSeparator:
		return model.FieldTypeSeparator
	case formatSignature:
		return model.FieldTypeSignature
	case formatBarcode:
		return model.FieldTypeBarcode
	case formatPhotoCapture:
		return model.FieldTypePhotoCapture
	}

	hint, _ := prop.StringOf(keyFieldType)
	switch hint {
	case string(model.FieldTypeRadio):
		return model.FieldTypeRadio
	case string(model.FieldTypeDropdown):
		return model.FieldTypeDropdown
	}

	if choices, _ := prop.Get(keyChoices); isArray(choices) {
		return model.FieldTypeDropdown
	}
	if enum, _ := prop.Get(keyEnum); isArray(enum) {
		items, _ := jsondoc.Array(enum)
		if len(items) <= 2 && hint != string(model.FieldTypeDropdown) {
			return model.FieldTypeRadio
		}
		return model.FieldTypeDropdown
	}
	return model.FieldTypeText
}

func isArray(v any) bool {
	_, ok := jsondoc.Array(v)
	return ok
}

func decodeField(name string, prop *jsondoc.Object, lvl level) (model.Field, bool) {
	t, ok := detectType(name, prop, lvl)
	if !ok {
		return model.Field{}, false
	}
	field := model.Field{
		ID:           model.NewID(),
		Type:         t,
		WidgetName:   name,
		IsRequired:   lvl.has(lvl.required, name),
		IsHidden:     lvl.has(lvl.hidden, name),
		IsUneditable: lvl.has(lvl.uneditable, name),
	}
	field.Title, _ = prop.StringOf(keyTitle)
	field.Description, _ = prop.StringOf(keyDescription)
	if style, ok := prop.Lookup(keyStyle, "widgetStyle"); ok {
		field.Style = decodeStyle(style)
	}
	field.Config = decodeConfig(t, prop)
	return field, true
}
