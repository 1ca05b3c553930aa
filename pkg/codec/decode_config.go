package codec

import (
	"encoding/json"

	"github.com/goliatone/go-formbuilder/internal/jsondoc"
	"github.com/goliatone/go-formbuilder/pkg/model"
	"github.com/goliatone/go-formbuilder/pkg/reference"
)

func decodeConfig(t model.FieldType, prop *jsondoc.Object) model.Config {
	switch t {
	case model.FieldTypeText:
		cfg := decodeInput(prop)
		return &cfg
	case model.FieldTypeInteger, model.FieldTypeNumber:
		cfg := &model.NumericConfig{InputConfig: decodeInput(prop)}
		cfg.Minimum = refNumber(lookup(prop, "minimum"))
		cfg.Maximum = refNumber(lookup(prop, "maximum"))
		cfg.ExclusiveMinimum = isTrue(prop, "exclusiveMinimum")
		cfg.ExclusiveMaximum = isTrue(prop, "exclusiveMaximum")
		return cfg
	case model.FieldTypeBoolean, model.FieldTypeRadio, model.FieldTypeDropdown:
		return &model.ChoiceConfig{
			Default:       stringOrEmpty(lookup(prop, keyDefault)),
			ParameterName: str(prop, "parameterName", "parameter_name"),
			Enum:          decodeEnum(prop),
			Toggles:       decodeToggles(lookup(prop, keyToggle)),
		}
	case model.FieldTypeCheckbox:
		return &model.CheckboxConfig{
			Default:       checkboxDefault(lookup(prop, keyDefault)),
			ParameterName: str(prop, "parameterName", "parameter_name"),
			Toggles:       decodeToggles(lookup(prop, keyToggle)),
		}
	case model.FieldTypeDate, model.FieldTypeDateCalendar, model.FieldTypeDateTime, model.FieldTypeTime, model.FieldTypeHosClock:
		return decodeDate(t, prop)
	case model.FieldTypeInstruction:
		args := jsondoc.Strings(lookup(prop, "stringFormatArgs", "string_format_args"))
		if args == nil {
			args = []string{}
		}
		return &model.InstructionConfig{FormatArgs: args}
	case model.FieldTypeSeparator:
		return &model.SeparatorConfig{Default: stringOrEmpty(lookup(prop, keyDefault))}
	case model.FieldTypeCalculation:
		cfg := &model.CalculationConfig{
			Formula:       str(prop, "calculationFormula", "calculation_formula", "formula"),
			ParameterName: str(prop, "parameterName", "parameter_name"),
		}
		if n, ok := jsondoc.Int(lookup(prop, "decimalPlaces", "decimal_places")); ok {
			cfg.DecimalPlaces = &n
		}
		return cfg
	case model.FieldTypeEvaluation:
		return &model.EvaluationConfig{
			ReferenceToValue:         str(prop, "referenceToValue", "reference_to_value"),
			ReferenceToDecreaseValue: str(prop, "referenceToDecreaseValue", "reference_to_decrease_value"),
			ParameterName:            str(prop, "parameterName", "parameter_name"),
		}
	case model.FieldTypePhotoCapture:
		return &model.PhotoCaptureConfig{
			MinPhotos: refNumber(lookup(prop, "minNumberOfPhotos", "min_number_of_photos")),
			MaxPhotos: refNumber(lookup(prop, "maxNumberOfPhotos", "max_number_of_photos")),
		}
	case model.FieldTypeSignature:
		return &model.SignatureConfig{
			Entries: decodeSignatureEntries(lookup(prop, "signatureEntries", "signature_entries")),
			Message: str(prop, "signatureMessage", "signature_message"),
		}
	case model.FieldTypeBarcode:
		return &model.BarcodeConfig{
			AllowDuplicates: refBool(lookup(prop, "allowDuplicates", "allow_duplicates")),
			MinCharacters:   refNumber(lookup(prop, "minCharacters", "min_characters")),
			MaxCharacters:   refNumber(lookup(prop, "maxCharacters", "max_characters")),
			MinBarcodes:     refNumber(lookup(prop, "minBarcodes", "min_barcodes")),
			MaxBarcodes:     refNumber(lookup(prop, "maxBarcodes", "max_barcodes")),
		}
	case model.FieldTypeDeepLink:
		return decodeDeepLink(prop)
	case model.FieldTypeCommodity:
		cfg := &model.CommodityConfig{ParameterName: str(prop, "parameterName", "parameter_name")}
		cfg.CommodityID, _ = jsondoc.Int(lookup(prop, "commodityId", "commodity_id"))
		return cfg
	case model.FieldTypeEmbedded:
		return &model.EmbeddedConfig{
			ReferenceContainerID: str(prop, "referenceContainerId", "reference_container_id", "ref"),
		}
	case model.FieldTypeMetadata:
		return decodeMetadata(prop)
	case model.FieldTypeObject:
		cfg := &model.ObjectConfig{
			Children:    decodeLevel(prop),
			Rules:       decodeRules(lookup(prop, keySwitch)),
			Orientation: model.OrientationVertical,
		}
		if layout, _ := prop.StringOf("layout"); layout == string(model.OrientationHorizontal) {
			cfg.Orientation = model.OrientationHorizontal
		}
		return cfg
	case model.FieldTypeArray:
		cfg := &model.ArrayConfig{
			Children:  []model.Field{},
			MinLength: refNumber(lookup(prop, "minLength", "minItems")),
			MaxLength: refNumber(lookup(prop, "maxLength", "maxItems")),
			Fixed:     isTrue(prop, "fixed") || isTrue(prop, "isFixed"),
		}
		if items, ok := jsondoc.AsObject(lookup(prop, keyItems)); ok {
			cfg.Children = decodeLevel(items)
			cfg.Rules = decodeRules(lookup(items, keySwitch))
		}
		return cfg
	case model.FieldTypeDescription:
		return &model.DescriptionConfig{}
	}
	return nil
}

func decodeInput(prop *jsondoc.Object) model.InputConfig {
	return model.InputConfig{
		Default:             stringOrEmpty(lookup(prop, keyDefault)),
		ParameterName:       str(prop, "parameterName", "parameter_name"),
		Hint:                str(prop, "hint"),
		Pattern:             str(prop, "pattern"),
		PatternErrorMessage: str(prop, "patternErrorMessage", "pattern_error_message"),
		MinLength:           refNumber(lookup(prop, "minLength")),
		MaxLength:           refNumber(lookup(prop, "maxLength")),
		Toggles:             decodeToggles(lookup(prop, keyToggle)),
	}
}

func decodeDate(t model.FieldType, prop *jsondoc.Object) *model.DateConfig {
	cfg := &model.DateConfig{
		Default:       stringOrEmpty(lookup(prop, keyDefault)),
		ParameterName: str(prop, "parameterName", "parameter_name"),
		Min:           decodeLimit(lookup(prop, "minimum"), isTrue(prop, "exclusiveMinimum")),
		Max:           decodeLimit(lookup(prop, "maximum"), isTrue(prop, "exclusiveMaximum")),
		Toggles:       decodeToggles(lookup(prop, keyToggle)),
	}
	switch t {
	case model.FieldTypeDate, model.FieldTypeDateCalendar, model.FieldTypeDateTime:
		cfg.TimeZoneID = str(prop, "timezone", "timeZoneId")
	case model.FieldTypeHosClock:
		cfg.HosClockType = str(prop, "hos_clock_type", "hosClockType")
		if cfg.HosClockType == "" {
			cfg.HosClockType = model.DefaultHosClockType
		}
	}
	return cfg
}

// decodeLimit reads a date limitation: a string is an absolute limit, an
// object {value, increase|decrease} is an offset in minutes from value.
func decodeLimit(v any, exclusive bool) *model.DateLimit {
	switch t := v.(type) {
	case string:
		return &model.DateLimit{Kind: model.LimitSimple, Value: t, Exclusive: exclusive}
	case *jsondoc.Object:
		base, ok := t.StringOf("value")
		if !ok {
			base = "current"
		}
		if minutes, ok := t.Get("increase"); ok {
			if n, ok := minutes.(float64); ok {
				off := model.OffsetFromMinutes(model.OffsetPlus, int(n))
				return &model.DateLimit{Kind: model.LimitComplex, Value: base, Offset: &off, Exclusive: exclusive}
			}
		}
		if minutes, ok := t.Get("decrease"); ok {
			if n, ok := minutes.(float64); ok {
				off := model.OffsetFromMinutes(model.OffsetMinus, int(n))
				return &model.DateLimit{Kind: model.LimitComplex, Value: base, Offset: &off, Exclusive: exclusive}
			}
		}
		return &model.DateLimit{Kind: model.LimitSimple, Value: base, Exclusive: exclusive}
	}
	return nil
}

// decodeEnum reads `choices` (paired) before `enum` (simple).
func decodeEnum(prop *jsondoc.Object) *model.EnumOptions {
	if choices, ok := prop.Get(keyChoices); ok {
		switch t := choices.(type) {
		case string:
			if reference.IsReference(t) {
				return model.PairedEnumRef(t)
			}
		case []any:
			if len(t) == 0 {
				return model.PairedEnum()
			}
			if _, nested := t[0].([]any); nested {
				return model.PairedEnum(decodePairs(t)...)
			}
		}
	}
	if enum, ok := prop.Get(keyEnum); ok {
		switch t := enum.(type) {
		case string:
			if reference.IsReference(t) {
				return model.SimpleEnumRef(t)
			}
		case []any:
			values := make([]string, len(t))
			for i, item := range t {
				values[i] = reference.Stringify(item)
			}
			return model.SimpleEnum(values...)
		}
	}
	return nil
}

// decodePairs reads [value, label] tuples. A missing label falls back to the
// value.
func decodePairs(items []any) []model.Pair {
	pairs := make([]model.Pair, 0, len(items))
	for _, item := range items {
		tuple, ok := item.([]any)
		if !ok {
			continue
		}
		var pair model.Pair
		if len(tuple) > 0 {
			pair.Value = reference.Stringify(tuple[0])
			pair.Label = pair.Value
		}
		if len(tuple) > 1 && tuple[1] != nil {
			pair.Label = reference.Stringify(tuple[1])
		}
		pairs = append(pairs, pair)
	}
	return pairs
}

// decodeToggles accepts the map form {"value": [widgets]} and the list form
// [{condition, accessToWidgets}].
func decodeToggles(v any) []model.Toggle {
	switch t := v.(type) {
	case *jsondoc.Object:
		var out []model.Toggle
		for _, key := range t.Keys() {
			targets, _ := t.Get(key)
			if !isArray(targets) {
				continue
			}
			out = append(out, model.Toggle{
				Condition: model.ToggleCondition{Kind: model.ToggleEqualTo, Value: key},
				Targets:   stringifyAll(targets),
			})
		}
		return out
	case []any:
		var out []model.Toggle
		for _, item := range t {
			entry, ok := jsondoc.AsObject(item)
			if !ok {
				continue
			}
			toggle := model.Toggle{Targets: jsondoc.Strings(lookup(entry, "accessToWidgets"))}
			if toggle.Targets == nil {
				toggle.Targets = []string{}
			}
			cond, _ := jsondoc.AsObject(lookup(entry, "condition"))
			if kind, _ := cond.StringOf("type"); kind == string(model.ToggleExpression) {
				comparison, ok := cond.StringOf("comparison")
				if !ok {
					comparison = string(model.OpEqual)
				}
				toggle.Condition = model.ToggleCondition{
					Kind:              model.ToggleExpression,
					Comparison:        model.Operator(comparison),
					ReferenceToWidget: str(cond, "referenceToWidget"),
				}
			} else {
				toggle.Condition = model.ToggleCondition{Kind: model.ToggleEqualTo, Value: str(cond, "value")}
			}
			out = append(out, toggle)
		}
		return out
	}
	return nil
}

func decodeSignatureEntries(v any) *model.Ref[[]model.SignatureEntry] {
	switch t := v.(type) {
	case string:
		if reference.IsReference(t) {
			return model.Reference[[]model.SignatureEntry](t)
		}
	case []any:
		var entries []model.SignatureEntry
		for _, item := range t {
			entry, ok := jsondoc.AsObject(item)
			if !ok {
				continue
			}
			entries = append(entries, model.SignatureEntry{Label: str(entry, "label"), Value: str(entry, "value")})
		}
		if len(entries) > 0 {
			return model.Literal(entries)
		}
	}
	return nil
}

func decodeDeepLink(prop *jsondoc.Object) *model.DeepLinkConfig {
	cfg := &model.DeepLinkConfig{Kind: model.DeepLinkURL, Label: model.DefaultDeepLinkLabel}
	if label, ok := prop.StringOf("label", keyTitle); ok {
		cfg.Label = label
	}
	switch t := lookup(prop, "deeplink", "deepLink", "deep_link").(type) {
	case string:
		cfg.Value = t
	case *jsondoc.Object:
		if url, ok := t.StringOf("url"); ok && url != "" {
			cfg.Value = url
			return cfg
		}
		cfg.Kind = model.DeepLinkObject
		if payload, ok := t.StringOf("jsonString"); ok && payload != "" {
			cfg.Value = payload
			return cfg
		}
		raw, err := json.Marshal(t)
		if err == nil {
			cfg.Value = string(raw)
		}
	}
	return cfg
}

func decodeMetadata(prop *jsondoc.Object) *model.MetadataConfig {
	cfg := &model.MetadataConfig{
		MetadataID: str(prop, "id", "metadataId", "metadata_id"),
		Entries:    []model.MetadataEntry{},
	}
	items, _ := jsondoc.Array(lookup(prop, "metadata"))
	for _, item := range items {
		entry, ok := jsondoc.AsObject(item)
		if !ok {
			continue
		}
		for _, key := range entry.Keys() {
			value, _ := entry.Get(key)
			cfg.Entries = append(cfg.Entries, model.MetadataEntry{Key: key, Value: reference.Stringify(value)})
		}
	}
	return cfg
}

func decodeStyle(v any) *model.Ref[model.Style] {
	switch t := v.(type) {
	case string:
		if reference.IsReference(t) {
			return model.Reference[model.Style](t)
		}
	case *jsondoc.Object:
		return model.Literal(model.Style{
			BackgroundColor: str(t, "backgroundColor", "background_color"),
			TextColor:       str(t, "textColor", "text_color"),
		})
	}
	return nil
}

// refNumber reads a reference, a number or a numeric string.
func refNumber(v any) *model.Ref[float64] {
	if s, ok := v.(string); ok && reference.IsReference(s) {
		return model.Reference[float64](s)
	}
	if v == nil {
		return nil
	}
	if n, ok := jsondoc.Number(v); ok {
		return model.Literal(n)
	}
	return nil
}

func refBool(v any) *model.Ref[bool] {
	switch t := v.(type) {
	case string:
		if reference.IsReference(t) {
			return model.Reference[bool](t)
		}
	case bool:
		return model.Literal(t)
	}
	return nil
}

func checkboxDefault(v any) *bool {
	var b bool
	switch v {
	case true, "true":
		b = true
	case false, "false":
		b = false
	default:
		return nil
	}
	return &b
}

// lookup returns the first present non-null value among keys.
func lookup(obj *jsondoc.Object, keys ...string) any {
	v, _ := obj.Lookup(keys...)
	return v
}

// str returns the first string stored under keys, or "".
func str(obj *jsondoc.Object, keys ...string) string {
	s, _ := obj.StringOf(keys...)
	return s
}

func stringOrEmpty(v any) string {
	return reference.Stringify(v)
}

func isTrue(obj *jsondoc.Object, key string) bool {
	v, _ := obj.Get(key)
	b, ok := v.(bool)
	return ok && b
}

func stringifyAll(v any) []string {
	items, _ := jsondoc.Array(v)
	out := make([]string, len(items))
	for i, item := range items {
		out[i] = reference.Stringify(item)
	}
	return out
}
