package codec

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/goliatone/go-formbuilder/pkg/conditional"
	"github.com/goliatone/go-formbuilder/pkg/model"
	"github.com/goliatone/go-formbuilder/pkg/reference"
)

var treeOpts = []cmp.Option{
	cmpopts.EquateEmpty(),
	cmpopts.IgnoreFields(model.Field{}, "ID"),
	cmpopts.IgnoreFields(model.Rule{}, "ID"),
	cmpopts.IgnoreFields(model.Condition{}, "ID"),
}

func intPtr(v int) *int    { return &v }
func boolPtr(v bool) *bool { return &v }

func field(t model.FieldType, name string, cfg model.Config) model.Field {
	return model.Field{Type: t, WidgetName: name, Config: cfg}
}

// sampleFields returns one configured field per kind except description,
// which only appears nested.
func sampleFields() []model.Field {
	text := field(model.FieldTypeText, "Name", &model.InputConfig{
		Default:             "Bob",
		ParameterName:       "driver_name",
		Hint:                "Full name",
		Pattern:             "^[A-Z]",
		PatternErrorMessage: "Capitalize",
		MinLength:           model.Literal(2.0),
		MaxLength:           model.Reference[float64]("$job.limits.name"),
		Toggles: []model.Toggle{{
			Condition: model.ToggleCondition{Kind: model.ToggleEqualTo, Value: "Bob"},
			Targets:   []string{"Count"},
		}},
	})
	text.Title = "Driver name"
	text.IsRequired = true
	text.Style = model.Literal(model.Style{BackgroundColor: "#fff", TextColor: "#000"})

	integer := field(model.FieldTypeInteger, "Count", &model.NumericConfig{
		Minimum:          model.Literal(0.0),
		Maximum:          model.Literal(10.0),
		ExclusiveMaximum: true,
	})
	integer.IsHidden = true

	number := field(model.FieldTypeNumber, "Weight", &model.NumericConfig{
		InputConfig: model.InputConfig{Toggles: []model.Toggle{{
			Condition: model.ToggleCondition{Kind: model.ToggleExpression, Comparison: model.OpGreaterThan, ReferenceToWidget: "$this.Count"},
			Targets:   []string{"Note"},
		}}},
		Minimum: model.Reference[float64]("$step.min_weight"),
	})
	number.IsUneditable = true
	number.Style = model.Reference[model.Style]("$job.style")

	boolean := field(model.FieldTypeBoolean, "Hazmat", &model.ChoiceConfig{Enum: model.SimpleEnum("Yes", "No"), Default: "No"})
	boolean.IsRequired = true

	checkbox := field(model.FieldTypeCheckbox, "Agree", &model.CheckboxConfig{Default: boolPtr(true), ParameterName: "agree"})

	radio := field(model.FieldTypeRadio, "Color", &model.ChoiceConfig{
		Default: "r",
		Enum:    model.PairedEnum(model.Pair{Label: "Red", Value: "r"}, model.Pair{Label: "Blue", Value: "b"}, model.Pair{Label: "Green", Value: "g"}),
	})
	dropdown := field(model.FieldTypeDropdown, "Size", &model.ChoiceConfig{Enum: model.SimpleEnumRef("$job.sizes")})
	dropdownPaired := field(model.FieldTypeDropdown, "Dock", &model.ChoiceConfig{Enum: model.PairedEnumRef("$job.docks")})

	date := field(model.FieldTypeDate, "Pickup", &model.DateConfig{
		TimeZoneID: "America/Chicago",
		Min:        &model.DateLimit{Kind: model.LimitSimple, Value: "2024-01-01", Exclusive: true},
		Max: &model.DateLimit{Kind: model.LimitComplex, Value: "current", Offset: &model.DateOffset{
			Sign: model.OffsetPlus, Unit: model.OffsetDateTime, Days: 1, Hours: 2,
		}},
	})
	calendar := field(model.FieldTypeDateCalendar, "Calendar", &model.DateConfig{})
	dateTime := field(model.FieldTypeDateTime, "Arrival", &model.DateConfig{
		Default: "2024-05-01T10:00",
		Min: &model.DateLimit{Kind: model.LimitComplex, Value: "current", Exclusive: true, Offset: &model.DateOffset{
			Sign: model.OffsetMinus, Unit: model.OffsetTime, Hours: 3,
		}},
	})
	clock := field(model.FieldTypeTime, "Start", &model.DateConfig{ParameterName: "start"})
	hos := field(model.FieldTypeHosClock, "Hos", &model.DateConfig{HosClockType: "DRIVING"})

	instruction := field(model.FieldTypeInstruction, "Intro", &model.InstructionConfig{FormatArgs: []string{"$job.id"}})
	instruction.Description = "Load %s before leaving"

	return []model.Field{
		text, integer, number, boolean, checkbox, radio, dropdown, dropdownPaired,
		date, calendar, dateTime, clock, hos, instruction,
		field(model.FieldTypeSeparator, "Sep", &model.SeparatorConfig{Default: ":"}),
		field(model.FieldTypeCalculation, "Total", &model.CalculationConfig{Formula: "Count * 2", ParameterName: "total", DecimalPlaces: intPtr(2)}),
		field(model.FieldTypeEvaluation, "Fuel", &model.EvaluationConfig{ReferenceToValue: "$job.fuel", ReferenceToDecreaseValue: "$job.used", ParameterName: "fuel"}),
		field(model.FieldTypePhotoCapture, "Photos", &model.PhotoCaptureConfig{MinPhotos: model.Literal(1.0), MaxPhotos: model.Reference[float64]("$job.max_photos")}),
		field(model.FieldTypeSignature, "Sign", &model.SignatureConfig{
			Entries: model.Literal([]model.SignatureEntry{{Label: "Driver", Value: "driver"}}),
			Message: "Sign here",
		}),
		field(model.FieldTypeSignature, "SignRef", &model.SignatureConfig{Entries: model.Reference[[]model.SignatureEntry]("$job.signers")}),
		field(model.FieldTypeBarcode, "Scan", &model.BarcodeConfig{
			AllowDuplicates: model.Reference[bool]("$job.dupes"),
			MinCharacters:   model.Literal(1.0),
			MaxCharacters:   model.Literal(50.0),
			MinBarcodes:     model.Literal(1.0),
			MaxBarcodes:     model.Literal(10.0),
		}),
		field(model.FieldTypeDeepLink, "Map", &model.DeepLinkConfig{Label: "Open map", Kind: model.DeepLinkURL, Value: "geo:0,0"}),
		field(model.FieldTypeDeepLink, "App", &model.DeepLinkConfig{Label: "Launch", Kind: model.DeepLinkObject, Value: `{"screen":"home"}`}),
		field(model.FieldTypeCommodity, "Goods", &model.CommodityConfig{CommodityID: 7, ParameterName: "goods"}),
		field(model.FieldTypeEmbedded, "Child", &model.EmbeddedConfig{ReferenceContainerID: "container-1"}),
		field(model.FieldTypeMetadata, "Meta", &model.MetadataConfig{MetadataID: "meta-1", Entries: []model.MetadataEntry{{Key: "source", Value: "scanner"}}}),
		{
			Type:       model.FieldTypeObject,
			WidgetName: "Group",
			Title:      "Group",
			Config: &model.ObjectConfig{
				Orientation: model.OrientationHorizontal,
				Children: []model.Field{
					field(model.FieldTypeText, "Inner", &model.InputConfig{}),
					{Type: model.FieldTypeDescription, WidgetName: "Help", Description: "Fill the group", Config: &model.DescriptionConfig{}},
				},
				Rules: []model.Rule{sampleRule()},
			},
		},
		{
			Type:       model.FieldTypeArray,
			WidgetName: "Stops",
			Config: &model.ArrayConfig{
				Children:  []model.Field{field(model.FieldTypeNumber, "Miles", &model.NumericConfig{})},
				MinLength: model.Literal(1.0),
				MaxLength: model.Literal(3.0),
				Fixed:     true,
			},
		},
	}
}

func sampleRule() model.Rule {
	return model.Rule{
		Expression: model.Expression{Kind: model.AllOf, Conditions: []model.Condition{
			{Operator: model.OpEqual, Left: "$this.Inner", Right: "x"},
		}},
		Then: []model.Action{{Kind: model.ActionShow, Fields: []string{"Help"}}},
		ElseRule: &model.Rule{
			Expression: model.Expression{Kind: model.AnyOf, Conditions: []model.Condition{
				{Operator: model.OpGreaterThan, Left: "$this.Inner", Right: "3"},
				{Operator: model.OpNotEqual, Left: "$job.mode", Right: "test"},
			}},
			Then:          []model.Action{{Kind: model.ActionSetValue, Values: []model.Assignment{{Widget: "Inner", Value: "1"}}}},
			Else:          []model.Action{{Kind: model.ActionExclude, Fields: []string{"Help", "Inner"}}},
			ContainsBreak: true,
		},
	}
}

func topRules() []model.Rule {
	return []model.Rule{
		{
			Expression: model.Expression{Kind: model.AllOf, Conditions: []model.Condition{
				{Operator: model.OpEqual, Left: "$this.Hazmat", Right: "Yes"},
			}},
			Then: []model.Action{
				{Kind: model.ActionShow, Fields: []string{"Count"}},
				{Kind: model.ActionSetRequired, Fields: []string{"Weight"}},
				{Kind: model.ActionSetObservableValue, Values: []model.Assignment{{Widget: "Name", Value: "$job.driver"}}},
				{Kind: model.ActionSetEnum, Enums: []model.EnumAssignment{{Widget: "Size", Options: model.SimpleEnum("S", "M")}}},
				{Kind: model.ActionSetChoices, Enums: []model.EnumAssignment{
					{Widget: "Color", Options: model.PairedEnumRef("$job.colors")},
					{Widget: "Dock", Options: model.PairedEnum(model.Pair{Label: "North", Value: "n"})},
				}},
			},
			ContainsBreak: true,
		},
		{
			Expression: model.Expression{Kind: model.AllOf, Conditions: []model.Condition{}},
			Then:       []model.Action{{Kind: model.ActionExclude, Fields: []string{"Sep"}}},
		},
	}
}

func roundTrip(t *testing.T, form model.Form) model.Form {
	t.Helper()
	data, err := Encode(form)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	got, err := Decode(data)
	if err != nil {
		t.Fatalf("decode: %v\n%s", err, data)
	}
	return got
}

func TestRoundTripEachKind(t *testing.T) {
	t.Parallel()

	for _, f := range sampleFields() {
		f := f
		t.Run(f.WidgetName, func(t *testing.T) {
			t.Parallel()
			form := model.Form{Name: "Single", Title: "Single", Root: model.RootObject, Fields: []model.Field{f}}
			got := roundTrip(t, form)
			if diff := cmp.Diff(form, got, treeOpts...); diff != "" {
				t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestRoundTripNestedTwoLevels(t *testing.T) {
	t.Parallel()

	inner := model.Field{
		Type:       model.FieldTypeObject,
		WidgetName: "Inner",
		Config:     &model.ObjectConfig{Orientation: model.OrientationVertical, Children: sampleFields()},
	}
	outer := model.Field{
		Type:       model.FieldTypeArray,
		WidgetName: "Outer",
		Config:     &model.ArrayConfig{Children: []model.Field{inner}, Rules: []model.Rule{sampleRule()}},
	}
	form := model.Form{Name: "Nested", Title: "Nested", Root: model.RootObject, Fields: []model.Field{outer}, Rules: topRules()}

	got := roundTrip(t, form)
	if diff := cmp.Diff(form, got, treeOpts...); diff != "" {
		t.Fatalf("nested round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestRoundTripArrayRoot(t *testing.T) {
	t.Parallel()

	form := model.Form{
		Name:   "Deliveries",
		Title:  "Deliveries",
		Root:   model.RootArray,
		Fields: []model.Field{field(model.FieldTypeText, "Ref", &model.InputConfig{})},
		Rules:  []model.Rule{sampleRule()},
	}
	data, err := Encode(form)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	var doc map[string]map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if doc["Deliveries"]["type"] != "array" {
		t.Fatalf("expected array root, got %v", doc["Deliveries"]["type"])
	}

	got := roundTrip(t, form)
	if diff := cmp.Diff(form, got, treeOpts...); diff != "" {
		t.Fatalf("array root mismatch (-want +got):\n%s", diff)
	}
}

func TestEncodeKeywordPlacement(t *testing.T) {
	t.Parallel()

	form := model.Form{Name: "Check", Fields: sampleFields(), Rules: topRules()}
	data, err := Encode(form)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	var doc map[string]struct {
		Title      string                    `json:"title"`
		Required   []string                  `json:"required"`
		Hidden     []string                  `json:"hidden"`
		Uneditable []string                  `json:"uneditable"`
		Properties map[string]map[string]any `json:"properties"`
		Switch     []map[string]any          `json:"switch"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	def := doc["Check"]
	if def.Title != "Check" {
		t.Fatalf("expected title to default to the form name, got %q", def.Title)
	}
	if diff := cmp.Diff([]string{"Name", "Hazmat"}, def.Required); diff != "" {
		t.Fatalf("required mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"Count"}, def.Hidden); diff != "" {
		t.Fatalf("hidden mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"Weight"}, def.Uneditable); diff != "" {
		t.Fatalf("uneditable mismatch (-want +got):\n%s", diff)
	}
	if got := def.Properties["Color"]["field_type"]; got != "radio" {
		t.Fatalf("expected radio field_type, got %v", got)
	}
	if got := def.Properties["Start"]["format"]; got != "hours_minutes" {
		t.Fatalf("expected time to use hours_minutes, got %v", got)
	}
	if got := def.Properties["Hos"]["format"]; got != "time" {
		t.Fatalf("expected hos clock to use time, got %v", got)
	}
	if got := def.Properties["Pickup"]["maximum"]; !cmp.Equal(got, map[string]any{"value": "current", "increase": 1560.0}) {
		t.Fatalf("unexpected complex limit %v", got)
	}
	if len(def.Switch) != 2 {
		t.Fatalf("expected 2 switch entries, got %d", len(def.Switch))
	}
	if _, ok := def.Switch[0]["continue"]; ok {
		t.Fatalf("breaking rule should not emit continue")
	}
	if def.Switch[1]["continue"] != true {
		t.Fatalf("non-breaking rule should emit continue:true")
	}
}

func TestDecodeWrapperShapes(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name     string
		doc      string
		wantName string
		wantRoot model.RootKind
		want     []string
	}{
		{
			name:     "nested envelope",
			doc:      `{"data":{"form_schema":{"formDefinitions":{"Pickup":{"type":"object","properties":{"A":{"type":"string"}}},"Other":{}}}}}`,
			wantName: "Pickup",
			wantRoot: model.RootObject,
			want:     []string{"A"},
		},
		{
			name:     "bare schema",
			doc:      `{"type":"object","title":"driver check-in form","properties":{"B":{"type":"integer"},"A":{"type":"string"}}}`,
			wantName: "driverCheckInForm",
			wantRoot: model.RootObject,
			want:     []string{"B", "A"},
		},
		{
			name:     "bare schema without title",
			doc:      `{"type":"object","properties":{"A":{"type":"string"}}}`,
			wantName: DefaultFormName,
			wantRoot: model.RootObject,
			want:     []string{"A"},
		},
		{
			name:     "named array",
			doc:      `{"meta":{"x":1},"Delivery":{"type":"array","items":{"type":"object","properties":{"Stop":{"type":"string"}}}}}`,
			wantName: "Delivery",
			wantRoot: model.RootArray,
			want:     []string{"Stop"},
		},
		{
			name:     "array without items",
			doc:      `{"F":{"type":"array","properties":{"a":{"type":"string"}}}}`,
			wantName: "F",
			wantRoot: model.RootArray,
			want:     []string{"a"},
		},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			form, err := Decode([]byte(tc.doc))
			if err != nil {
				t.Fatalf("decode: %v", err)
			}
			if form.Name != tc.wantName || form.Root != tc.wantRoot {
				t.Fatalf("got name %q root %q", form.Name, form.Root)
			}
			var names []string
			for _, f := range form.Fields {
				names = append(names, f.WidgetName)
			}
			if diff := cmp.Diff(tc.want, names); diff != "" {
				t.Fatalf("field order mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestDecodeFailures(t *testing.T) {
	t.Parallel()

	if _, err := Decode([]byte(`{"foo": 1, "bar": {"type": "string"}}`)); !errors.Is(err, ErrNoDefinition) {
		t.Fatalf("expected ErrNoDefinition, got %v", err)
	}
	if _, err := Decode([]byte(`[1,2]`)); !errors.Is(err, ErrNoDefinition) {
		t.Fatalf("expected ErrNoDefinition for array document, got %v", err)
	}
	if _, err := Decode([]byte(`{"a":`)); !errors.Is(err, ErrInvalidJSON) {
		t.Fatalf("expected ErrInvalidJSON, got %v", err)
	}
}

func TestDecodeBooleanDependsOnRequired(t *testing.T) {
	t.Parallel()

	doc := `{"F":{"type":"object","required":["Yes"],"properties":{
		"Yes":{"type":"boolean"},
		"No":{"type":"boolean","default":"true"},
		"Group":{"type":"object","properties":{"Yes":{"type":"boolean"}}}
	}}}`
	form, err := Decode([]byte(doc))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if form.Fields[0].Type != model.FieldTypeBoolean || !form.Fields[0].IsRequired {
		t.Fatalf("required boolean should decode as boolean, got %s", form.Fields[0].Type)
	}
	if form.Fields[1].Type != model.FieldTypeCheckbox {
		t.Fatalf("optional boolean should decode as checkbox, got %s", form.Fields[1].Type)
	}
	if cfg := form.Fields[1].Config.(*model.CheckboxConfig); cfg.Default == nil || !*cfg.Default {
		t.Fatalf("expected string default to decode as true")
	}
	nested := form.Fields[2].Children()
	if nested[0].Type != model.FieldTypeCheckbox {
		t.Fatalf("nested level must not inherit parent required set, got %s", nested[0].Type)
	}
}

func TestEncodeListsBooleansAsRequired(t *testing.T) {
	t.Parallel()

	optional := field(model.FieldTypeBoolean, "Sealed", &model.ChoiceConfig{Enum: model.SimpleEnum("Yes", "No")})
	data, err := Encode(model.Form{Name: "F", Fields: []model.Field{optional}})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	var doc map[string]struct {
		Required []string `json:"required"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if diff := cmp.Diff([]string{"Sealed"}, doc["F"].Required); diff != "" {
		t.Fatalf("required mismatch (-want +got):\n%s", diff)
	}

	form, err := Decode(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got := form.Fields[0]; got.Type != model.FieldTypeBoolean || !got.IsRequired {
		t.Fatalf("boolean should come back required, got %s required=%v", got.Type, got.IsRequired)
	}
}

func TestDecodeDetectsKinds(t *testing.T) {
	t.Parallel()

	doc := `{"F":{"type":"object","properties":{
		"Two":{"type":"string","enum":["a","b"]},
		"Three":{"type":"string","enum":["a","b","c"]},
		"Hinted":{"type":"string","enum":["a"],"field_type":"dropdown"},
		"Pairs":{"type":"string","choices":[["r","Red"],["b"]]},
		"Unknown":{"type":"mystery"},
		"Media":{"type":"media","description":"hello"},
		"Cal":{"type":"string","format":"date_calendar"},
		"Plain":{"type":"string"}
	}}}`
	form, err := Decode([]byte(doc))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	got := map[string]model.FieldType{}
	for _, f := range form.Fields {
		got[f.WidgetName] = f.Type
	}
	want := map[string]model.FieldType{
		"Two":    model.FieldTypeRadio,
		"Three":  model.FieldTypeDropdown,
		"Hinted": model.FieldTypeDropdown,
		"Pairs":  model.FieldTypeDropdown,
		"Media":  model.FieldTypeDescription,
		"Cal":    model.FieldTypeDateCalendar,
		"Plain":  model.FieldTypeText,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("kind mismatch (-want +got):\n%s", diff)
	}

	pairs, _ := model.FindByName(form.Fields, "Pairs")
	wantPairs := []model.Pair{{Label: "Red", Value: "r"}, {Label: "b", Value: "b"}}
	if diff := cmp.Diff(wantPairs, pairs.Config.(*model.ChoiceConfig).Enum.Options()); diff != "" {
		t.Fatalf("pairs mismatch (-want +got):\n%s", diff)
	}
}

func TestDecodeAcceptsAlternateSpellings(t *testing.T) {
	t.Parallel()

	doc := `{"F":{"type":"object","properties":{
		"T":{"type":"string","parameterName":"p","patternErrorMessage":"bad","toggle":{"yes":["X"]}},
		"D":{"type":"string","format":"date","timeZoneId":"UTC","minimum":{"increase":90}},
		"H":{"type":"string","format":"time","hosClockType":"ON_DUTY"},
		"C":{"type":"calculation","formula":"a+b","decimalPlaces":1},
		"L":{"type":"deeplink_button","title":"Go","deep_link":{"url":"https://example.com"}},
		"J":{"type":"deeplink_button","deeplink":{"screen":"home"}},
		"M":{"type":"metadata","metadataId":"m","metadata":[{"a":1,"b":true}]},
		"E":{"type":"embedded","ref":"c-9"},
		"A":{"type":"array","minItems":2,"isFixed":true,"items":{"type":"object","properties":{}}},
		"S":{"type":"string","format":"signature","signature_entries":[]},
		"W":{"type":"string","widgetStyle":{"background_color":"red"}}
	}}}`
	form, err := Decode([]byte(doc))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	byName := func(name string) model.Field {
		f, ok := model.FindByName(form.Fields, name)
		if !ok {
			t.Fatalf("missing field %s", name)
		}
		return *f
	}

	text := byName("T").Config.(*model.InputConfig)
	if text.ParameterName != "p" || text.PatternErrorMessage != "bad" {
		t.Fatalf("unexpected text config %+v", text)
	}
	wantToggle := []model.Toggle{{Condition: model.ToggleCondition{Kind: model.ToggleEqualTo, Value: "yes"}, Targets: []string{"X"}}}
	if diff := cmp.Diff(wantToggle, text.Toggles); diff != "" {
		t.Fatalf("toggle mismatch (-want +got):\n%s", diff)
	}

	date := byName("D").Config.(*model.DateConfig)
	wantMin := &model.DateLimit{Kind: model.LimitComplex, Value: "current", Offset: &model.DateOffset{Sign: model.OffsetPlus, Unit: model.OffsetTime, Hours: 1, Minutes: 30}}
	if date.TimeZoneID != "UTC" {
		t.Fatalf("expected timezone alias to decode, got %q", date.TimeZoneID)
	}
	if diff := cmp.Diff(wantMin, date.Min); diff != "" {
		t.Fatalf("limit mismatch (-want +got):\n%s", diff)
	}
	if got := byName("H").Config.(*model.DateConfig).HosClockType; got != "ON_DUTY" {
		t.Fatalf("unexpected hos clock type %q", got)
	}
	calc := byName("C").Config.(*model.CalculationConfig)
	if calc.Formula != "a+b" || calc.DecimalPlaces == nil || *calc.DecimalPlaces != 1 {
		t.Fatalf("unexpected calculation config %+v", calc)
	}
	link := byName("L").Config.(*model.DeepLinkConfig)
	if link.Label != "Go" || link.Kind != model.DeepLinkURL || link.Value != "https://example.com" {
		t.Fatalf("unexpected deep link %+v", link)
	}
	payload := byName("J").Config.(*model.DeepLinkConfig)
	if payload.Label != model.DefaultDeepLinkLabel || payload.Kind != model.DeepLinkObject || payload.Value != `{"screen":"home"}` {
		t.Fatalf("unexpected object deep link %+v", payload)
	}
	meta := byName("M").Config.(*model.MetadataConfig)
	wantMeta := []model.MetadataEntry{{Key: "a", Value: "1"}, {Key: "b", Value: "true"}}
	if meta.MetadataID != "m" {
		t.Fatalf("unexpected metadata id %q", meta.MetadataID)
	}
	if diff := cmp.Diff(wantMeta, meta.Entries); diff != "" {
		t.Fatalf("metadata mismatch (-want +got):\n%s", diff)
	}
	if got := byName("E").Config.(*model.EmbeddedConfig).ReferenceContainerID; got != "c-9" {
		t.Fatalf("unexpected container id %q", got)
	}
	arr := byName("A").Config.(*model.ArrayConfig)
	if lo, _ := arr.MinLength.Get(); lo != 2 || !arr.Fixed {
		t.Fatalf("unexpected array config %+v", arr)
	}
	if byName("S").Config.(*model.SignatureConfig).Entries != nil {
		t.Fatalf("empty signature entries should decode as unset")
	}
	if style, _ := byName("W").Style.Get(); style.BackgroundColor != "red" {
		t.Fatalf("unexpected style %+v", style)
	}
}

func TestDescriptionFieldBecomesDocumentDescription(t *testing.T) {
	t.Parallel()

	form := model.Form{
		Name:  "Ignored",
		Title: "Inspection",
		Fields: []model.Field{
			{Type: model.FieldTypeDescription, WidgetName: "Inspection", Description: "Daily check", Config: &model.DescriptionConfig{}},
			field(model.FieldTypeText, "Plate", &model.InputConfig{}),
		},
	}
	data, err := Encode(form)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	var doc map[string]map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	def, ok := doc["Inspection"]
	if !ok {
		t.Fatalf("expected description widget name as top-level key, got %s", data)
	}
	if def["description"] != "Daily check" {
		t.Fatalf("unexpected description %v", def["description"])
	}
	if _, ok := def["properties"].(map[string]any)["Inspection"]; ok {
		t.Fatalf("description field must not be emitted as a property")
	}

	got, err := Decode(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	want := model.Form{
		Name:        "Inspection",
		Title:       "Inspection",
		Description: "Daily check",
		Root:        model.RootObject,
		Fields:      form.Fields,
	}
	if diff := cmp.Diff(want, got, treeOpts...); diff != "" {
		t.Fatalf("description round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestDecodeSwitchShapes(t *testing.T) {
	t.Parallel()

	doc := `{"F":{"type":"object","properties":{},"switch":[
		{"if":{"anyOf":[{"$this.A":{"gte":"1"}},{"$this.B":{}}]},"then":{"show":[],"setValue":{}},"else":{"setEnum":{"X":"$job.x","Y":[["1","One"]]}},"continue":true},
		{"then":{"setChoices":{"Z":[]}}}
	]}}`
	form, err := Decode([]byte(doc))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	want := []model.Rule{
		{
			Expression: model.Expression{Kind: model.AnyOf, Conditions: []model.Condition{
				{Operator: model.OpEqual, Left: "$this.A", Right: "1"},
				{Operator: model.OpEqual},
			}},
			Then: []model.Action{{Kind: model.ActionShow}},
			Else: []model.Action{{Kind: model.ActionSetEnum, Enums: []model.EnumAssignment{
				{Widget: "X", Options: model.SimpleEnumRef("$job.x")},
				{Widget: "Y", Options: model.PairedEnum(model.Pair{Label: "One", Value: "1"})},
			}}},
		},
		{
			Expression:    model.Expression{Kind: model.AllOf},
			Then:          []model.Action{{Kind: model.ActionSetChoices, Enums: []model.EnumAssignment{{Widget: "Z", Options: model.PairedEnum()}}}},
			ContainsBreak: true,
		},
	}
	if diff := cmp.Diff(want, form.Rules, treeOpts...); diff != "" {
		t.Fatalf("switch mismatch (-want +got):\n%s", diff)
	}
}

func TestEndToEndScenario(t *testing.T) {
	t.Parallel()

	form := model.Form{
		Name: "Scenario",
		Fields: []model.Field{
			{Type: model.FieldTypeText, WidgetName: "Name", IsRequired: true, Config: &model.InputConfig{}},
			{Type: model.FieldTypeDropdown, WidgetName: "Color", IsHidden: true, Config: &model.ChoiceConfig{Enum: model.SimpleEnum("Red", "Blue")}},
		},
		Rules: []model.Rule{{
			Expression: model.Expression{Kind: model.AllOf, Conditions: []model.Condition{{Operator: model.OpEqual, Left: "$this.Name", Right: "Bob"}}},
			Then:       []model.Action{{Kind: model.ActionShow, Fields: []string{"Color"}}},
		}},
	}

	got := roundTrip(t, form)
	if len(got.Fields) != 2 {
		t.Fatalf("expected 2 fields, got %d", len(got.Fields))
	}
	for i, f := range got.Fields {
		if f.WidgetName != form.Fields[i].WidgetName || f.Type != form.Fields[i].Type {
			t.Fatalf("field %d mismatch: got %s/%s", i, f.WidgetName, f.Type)
		}
	}
	if len(got.Rules) != 1 {
		t.Fatalf("expected 1 rule, got %d", len(got.Rules))
	}
	rule := got.Rules[0]
	wantCond := []model.Condition{{Operator: model.OpEqual, Left: "$this.Name", Right: "Bob"}}
	if rule.Expression.Kind != model.AllOf {
		t.Fatalf("expected allOf, got %s", rule.Expression.Kind)
	}
	if diff := cmp.Diff(wantCond, rule.Expression.Conditions, treeOpts...); diff != "" {
		t.Fatalf("condition mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]model.Action{{Kind: model.ActionShow, Fields: []string{"Color"}}}, rule.Then); diff != "" {
		t.Fatalf("action mismatch (-want +got):\n%s", diff)
	}

	color := got.Fields[1]
	state := conditional.EvaluateForm(got, map[string]any{"Name": "Bob"}, reference.Context{})
	if !state.IsShown("Color") || !conditional.IsVisible(color, state) {
		t.Fatalf("Color should be shown for Bob")
	}
	state = conditional.EvaluateForm(got, map[string]any{"Name": "Alice"}, reference.Context{})
	if conditional.IsVisible(color, state) {
		t.Fatalf("hidden Color should stay invisible for Alice")
	}
}

func TestNormalizeRewritesToNamedShape(t *testing.T) {
	t.Parallel()

	out, err := Normalize([]byte(`{"type":"object","title":"Quick Form","properties":{"A":{"type":"string","parameterName":"a"}}}`), "  ")
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	var doc map[string]map[string]any
	if err := json.Unmarshal(out, &doc); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	props := doc["QuickForm"]["properties"].(map[string]any)
	if got := props["A"].(map[string]any)["parameter_name"]; got != "a" {
		t.Fatalf("expected snake_case parameter name, got %v", got)
	}
}

func TestCamelName(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"driver check-in form": "driverCheckInForm",
		"Daily Inspection":     "DailyInspection",
		"already":              "already",
		"  ":                   "",
		"a--b__c":              "aBC",
	}
	for in, want := range cases {
		if got := CamelName(in); got != want {
			t.Fatalf("CamelName(%q) = %q, want %q", in, got, want)
		}
	}
}
