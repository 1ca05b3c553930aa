package codec

import (
	"encoding/json"
	"fmt"

	"github.com/goliatone/go-formbuilder/internal/jsondoc"
	"github.com/goliatone/go-formbuilder/pkg/model"
)

// Encode renders a form as a named schema document:
// {"<name>": {"type": "object", "title": ..., "properties": {...}}}.
func Encode(form model.Form) ([]byte, error) {
	data, err := json.Marshal(Document(form))
	if err != nil {
		return nil, fmt.Errorf("codec: encode %q: %w", form.Name, err)
	}
	return data, nil
}

// EncodeIndent is Encode with indented output.
func EncodeIndent(form model.Form, indent string) ([]byte, error) {
	data, err := json.MarshalIndent(Document(form), "", indent)
	if err != nil {
		return nil, fmt.Errorf("codec: encode %q: %w", form.Name, err)
	}
	return data, nil
}

// Normalize decodes any accepted wrapper shape and re-encodes it in the
// named shape.
func Normalize(data []byte, indent string) ([]byte, error) {
	form, err := Decode(data)
	if err != nil {
		return nil, err
	}
	return EncodeIndent(form, indent)
}

// Document builds the ordered document Encode marshals. The value marshals to
// JSON through its MarshalJSON method.
func Document(form model.Form) json.Marshaler {
	name, def := encodeDefinition(form)
	return jsondoc.New().Set(name, def)
}

func encodeDefinition(form model.Form) (string, *jsondoc.Object) {
	name := form.Name
	description := form.Description
	fields := form.Fields
	if desc, ok := form.DescriptionField(); ok {
		name = desc.WidgetName
		description = desc.Description
		fields = withoutField(fields, desc.ID, desc.WidgetName)
	}
	if name == "" {
		name = DefaultFormName
	}
	title := form.Title
	if title == "" {
		title = name
	}

	body := encodeLevel(fields, form.Rules)
	def := jsondoc.New()
	if form.Root == model.RootArray {
		body.Set(keyType, typeObject)
		def.Set(keyType, typeArray)
		def.Set(keyTitle, title)
		if description != "" {
			def.Set(keyDescription, description)
		}
		def.Set(keyItems, prepend(body, keyType))
		return name, def
	}

	def.Set(keyType, typeObject)
	def.Set(keyTitle, title)
	if description != "" {
		def.Set(keyDescription, description)
	}
	for _, key := range body.Keys() {
		value, _ := body.Get(key)
		def.Set(key, value)
	}
	return name, def
}

// withoutField drops the first field matching id and name.
func withoutField(fields []model.Field, id, name string) []model.Field {
	out := make([]model.Field, 0, len(fields))
	dropped := false
	for _, field := range fields {
		if !dropped && field.ID == id && field.WidgetName == name {
			dropped = true
			continue
		}
		out = append(out, field)
	}
	return out
}

// prepend returns a copy of obj with key moved to the front.
func prepend(obj *jsondoc.Object, key string) *jsondoc.Object {
	out := jsondoc.New()
	if value, ok := obj.Get(key); ok {
		out.Set(key, value)
	}
	for _, k := range obj.Keys() {
		if k == key {
			continue
		}
		value, _ := obj.Get(k)
		out.Set(k, value)
	}
	return out
}

// encodeLevel emits the keyword arrays and properties of one object level.
// Boolean fields are always listed as required: the decoder relies on the
// required list to tell them apart from checkboxes.
func encodeLevel(fields []model.Field, rules []model.Rule) *jsondoc.Object {
	var required, hidden, uneditable []string
	props := jsondoc.New()
	for _, field := range fields {
		if field.IsRequired || field.Type == model.FieldTypeBoolean {
			required = append(required, field.WidgetName)
		}
		if field.IsHidden {
			hidden = append(hidden, field.WidgetName)
		}
		if field.IsUneditable {
			uneditable = append(uneditable, field.WidgetName)
		}
		props.Set(field.WidgetName, encodeField(field))
	}

	out := jsondoc.New()
	if len(required) > 0 {
		out.Set(keyRequired, required)
	}
	if len(hidden) > 0 {
		out.Set(keyHidden, hidden)
	}
	if len(uneditable) > 0 {
		out.Set(keyUneditable, uneditable)
	}
	out.Set(keyProperties, props)
	if len(rules) > 0 {
		out.Set(keySwitch, encodeRules(rules))
	}
	return out
}

func encodeField(field model.Field) *jsondoc.Object {
	prop := jsondoc.New()
	typ, format := wireType(field.Type)
	prop.Set(keyType, typ)
	if format != "" {
		prop.Set(keyFormat, format)
	}
	if field.Title != "" {
		prop.Set(keyTitle, field.Title)
	}
	if field.Description != "" {
		prop.Set(keyDescription, field.Description)
	}
	if field.Style != nil {
		if field.Style.IsReference() {
			prop.Set(keyStyle, field.Style.Reference)
		} else if style, ok := field.Style.Get(); ok {
			obj := jsondoc.New()
			if style.BackgroundColor != "" {
				obj.Set("backgroundColor", style.BackgroundColor)
			}
			if style.TextColor != "" {
				obj.Set("textColor", style.TextColor)
			}
			prop.Set(keyStyle, obj)
		}
	}
	encodeConfig(prop, field)
	return prop
}

// wireType maps a field kind to its schema type and string format.
func wireType(t model.FieldType) (string, string) {
	switch t {
	case model.FieldTypeText:
		return typeString, ""
	case model.FieldTypeInteger:
		return typeInteger, ""
	case model.FieldTypeNumber:
		return typeNumber, ""
	case model.FieldTypeBoolean, model.FieldTypeCheckbox:
		return typeBoolean, ""
	case model.FieldTypeRadio, model.FieldTypeDropdown:
		return typeString, ""
	case model.FieldTypeDate:
		return typeString, formatDate
	case model.FieldTypeDateCalendar:
		return typeString, formatDateCalendar
	case model.FieldTypeDateTime:
		return typeString, formatDateTime
	case model.FieldTypeTime:
		return typeString, formatHoursMinutes
	case model.FieldTypeHosClock:
		return typeString, formatHosClock
	case model.FieldTypeSeparator:
		return typeString, formatSeparator
	case model.FieldTypeSignature:
		return typeString, formatSignature
	case model.FieldTypeBarcode:
		return typeString, formatBarcode
	case model.FieldTypePhotoCapture:
		return typeString, formatPhotoCapture
	case model.FieldTypeInstruction:
		return typeInstruction, ""
	case model.FieldTypeCalculation:
		return typeCalculation, ""
	case model.FieldTypeEvaluation:
		return typeEvaluation, ""
	case model.FieldTypeCommodity:
		return typeCommodity, ""
	case model.FieldTypeDeepLink:
		return typeDeepLink, ""
	case model.FieldTypeEmbedded:
		return typeEmbedded, ""
	case model.FieldTypeMetadata:
		return typeMetadata, ""
	case model.FieldTypeObject:
		return typeObject, ""
	case model.FieldTypeArray:
		return typeArray, ""
	case model.FieldTypeDescription:
		return typeMedia, ""
	}
	return typeString, ""
}

func encodeConfig(prop *jsondoc.Object, field model.Field) {
	switch cfg := field.Config.(type) {
	case *model.InputConfig:
		encodeInput(prop, cfg)
	case *model.NumericConfig:
		encodeInput(prop, &cfg.InputConfig)
		setRefNumber(prop, "minimum", cfg.Minimum)
		setRefNumber(prop, "maximum", cfg.Maximum)
		if cfg.ExclusiveMinimum {
			prop.Set("exclusiveMinimum", true)
		}
		if cfg.ExclusiveMaximum {
			prop.Set("exclusiveMaximum", true)
		}
	case *model.ChoiceConfig:
		if field.Type != model.FieldTypeBoolean {
			prop.Set(keyFieldType, string(field.Type))
		}
		encodeEnum(prop, cfg.Enum)
		setString(prop, keyDefault, cfg.Default)
		setString(prop, "parameter_name", cfg.ParameterName)
		setToggles(prop, cfg.Toggles)
	case *model.CheckboxConfig:
		if cfg.Default != nil {
			prop.Set(keyDefault, *cfg.Default)
		}
		setString(prop, "parameter_name", cfg.ParameterName)
		setToggles(prop, cfg.Toggles)
	case *model.DateConfig:
		setString(prop, keyDefault, cfg.Default)
		setString(prop, "parameter_name", cfg.ParameterName)
		switch field.Type {
		case model.FieldTypeDate, model.FieldTypeDateCalendar, model.FieldTypeDateTime:
			setString(prop, "timezone", cfg.TimeZoneID)
		case model.FieldTypeHosClock:
			setString(prop, "hos_clock_type", cfg.HosClockType)
		}
		setLimit(prop, "minimum", "exclusiveMinimum", cfg.Min)
		setLimit(prop, "maximum", "exclusiveMaximum", cfg.Max)
		setToggles(prop, cfg.Toggles)
	case *model.InstructionConfig:
		if len(cfg.FormatArgs) > 0 {
			prop.Set("string_format_args", cfg.FormatArgs)
		}
	case *model.SeparatorConfig:
		setString(prop, keyDefault, cfg.Default)
	case *model.CalculationConfig:
		setString(prop, "calculation_formula", cfg.Formula)
		setString(prop, "parameter_name", cfg.ParameterName)
		if cfg.DecimalPlaces != nil {
			prop.Set("decimal_places", *cfg.DecimalPlaces)
		}
	case *model.EvaluationConfig:
		setString(prop, "reference_to_value", cfg.ReferenceToValue)
		setString(prop, "reference_to_decrease_value", cfg.ReferenceToDecreaseValue)
		setString(prop, "parameter_name", cfg.ParameterName)
	case *model.PhotoCaptureConfig:
		setRefNumber(prop, "min_number_of_photos", cfg.MinPhotos)
		setRefNumber(prop, "max_number_of_photos", cfg.MaxPhotos)
	case *model.SignatureConfig:
		if cfg.Entries != nil {
			if cfg.Entries.IsReference() {
				prop.Set("signature_entries", cfg.Entries.Reference)
			} else if entries, ok := cfg.Entries.Get(); ok && len(entries) > 0 {
				items := make([]any, 0, len(entries))
				for _, entry := range entries {
					items = append(items, jsondoc.New().Set("label", entry.Label).Set("value", entry.Value))
				}
				prop.Set("signature_entries", items)
			}
		}
		setString(prop, "signature_message", cfg.Message)
	case *model.BarcodeConfig:
		if cfg.AllowDuplicates != nil {
			if cfg.AllowDuplicates.IsReference() {
				prop.Set("allow_duplicates", cfg.AllowDuplicates.Reference)
			} else if v, ok := cfg.AllowDuplicates.Get(); ok {
				prop.Set("allow_duplicates", v)
			}
		}
		setRefNumber(prop, "min_characters", cfg.MinCharacters)
		setRefNumber(prop, "max_characters", cfg.MaxCharacters)
		setRefNumber(prop, "min_barcodes", cfg.MinBarcodes)
		setRefNumber(prop, "max_barcodes", cfg.MaxBarcodes)
	case *model.DeepLinkConfig:
		prop.Set("label", cfg.Label)
		if cfg.Kind == model.DeepLinkObject {
			prop.Set("deeplink", jsondoc.New().Set("jsonString", cfg.Value))
		} else {
			prop.Set("deeplink", cfg.Value)
		}
	case *model.CommodityConfig:
		prop.Set("commodity_id", cfg.CommodityID)
		setString(prop, "parameter_name", cfg.ParameterName)
	case *model.EmbeddedConfig:
		setString(prop, "reference_container_id", cfg.ReferenceContainerID)
	case *model.MetadataConfig:
		setString(prop, "metadata_id", cfg.MetadataID)
		items := make([]any, 0, len(cfg.Entries))
		for _, entry := range cfg.Entries {
			items = append(items, jsondoc.New().Set(entry.Key, entry.Value))
		}
		prop.Set("metadata", items)
	case *model.ObjectConfig:
		body := encodeLevel(cfg.Children, cfg.Rules)
		for _, key := range body.Keys() {
			if key == keySwitch {
				continue
			}
			value, _ := body.Get(key)
			prop.Set(key, value)
		}
		if cfg.Orientation == model.OrientationHorizontal {
			prop.Set("layout", string(model.OrientationHorizontal))
		}
		if value, ok := body.Get(keySwitch); ok {
			prop.Set(keySwitch, value)
		}
	case *model.ArrayConfig:
		items := jsondoc.New().Set(keyType, typeObject)
		body := encodeLevel(cfg.Children, cfg.Rules)
		for _, key := range body.Keys() {
			value, _ := body.Get(key)
			items.Set(key, value)
		}
		prop.Set(keyItems, items)
		setRefNumber(prop, "minLength", cfg.MinLength)
		setRefNumber(prop, "maxLength", cfg.MaxLength)
		if cfg.Fixed {
			prop.Set("fixed", true)
		}
	case *model.DescriptionConfig, nil:
	}
}

func encodeInput(prop *jsondoc.Object, cfg *model.InputConfig) {
	setString(prop, keyDefault, cfg.Default)
	setString(prop, "parameter_name", cfg.ParameterName)
	setString(prop, "hint", cfg.Hint)
	setString(prop, "pattern", cfg.Pattern)
	setString(prop, "pattern_error_message", cfg.PatternErrorMessage)
	setRefNumber(prop, "minLength", cfg.MinLength)
	setRefNumber(prop, "maxLength", cfg.MaxLength)
	setToggles(prop, cfg.Toggles)
}

// encodeEnum emits simple options under enum and labelled options under
// choices as [value, label] tuples.
func encodeEnum(prop *jsondoc.Object, enum *model.EnumOptions) {
	if enum == nil {
		return
	}
	if enum.Kind == model.EnumPaired {
		prop.Set(keyChoices, enumValue(enum))
		return
	}
	prop.Set(keyEnum, enumValue(enum))
}

func enumValue(enum *model.EnumOptions) any {
	if ref := enum.Reference(); ref != "" {
		return ref
	}
	if enum.Kind == model.EnumPaired {
		pairs, _ := enum.Paired.Get()
		out := make([]any, 0, len(pairs))
		for _, pair := range pairs {
			out = append(out, []any{pair.Value, pair.Label})
		}
		return out
	}
	values, _ := enum.Simple.Get()
	if values == nil {
		values = []string{}
	}
	return values
}

func encodeLimit(limit *model.DateLimit) any {
	if limit.Kind != model.LimitComplex || limit.Offset == nil {
		return limit.Value
	}
	obj := jsondoc.New().Set("value", limit.Value)
	if limit.Offset.Sign == model.OffsetMinus {
		return obj.Set("decrease", limit.Offset.TotalMinutes())
	}
	return obj.Set("increase", limit.Offset.TotalMinutes())
}

func setLimit(prop *jsondoc.Object, key, exclusiveKey string, limit *model.DateLimit) {
	if limit == nil {
		return
	}
	prop.Set(key, encodeLimit(limit))
	if limit.Exclusive {
		prop.Set(exclusiveKey, true)
	}
}

func setString(prop *jsondoc.Object, key, value string) {
	if value != "" {
		prop.Set(key, value)
	}
}

func setRefNumber(prop *jsondoc.Object, key string, ref *model.Ref[float64]) {
	if ref == nil {
		return
	}
	if ref.IsReference() {
		prop.Set(key, ref.Reference)
		return
	}
	if v, ok := ref.Get(); ok {
		prop.Set(key, v)
	}
}

func setToggles(prop *jsondoc.Object, toggles []model.Toggle) {
	if len(toggles) == 0 {
		return
	}
	items := make([]any, 0, len(toggles))
	for _, toggle := range toggles {
		cond := jsondoc.New().Set(keyType, string(toggle.Condition.Kind))
		if toggle.Condition.Kind == model.ToggleExpression {
			cond.Set("comparison", string(toggle.Condition.Comparison))
			cond.Set("referenceToWidget", toggle.Condition.ReferenceToWidget)
		} else {
			cond.Set("value", toggle.Condition.Value)
		}
		targets := toggle.Targets
		if targets == nil {
			targets = []string{}
		}
		items = append(items, jsondoc.New().Set("condition", cond).Set("accessToWidgets", targets))
	}
	prop.Set(keyToggle, items)
}
