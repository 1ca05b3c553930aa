package model

import (
	"fmt"
	"strconv"
	"sync"

	"github.com/google/uuid"
)

// DefaultHosClockType is the clock type of a freshly added HOS clock.
const DefaultHosClockType = "UNKNOWN_HOS_CLOCK"

// DefaultDeepLinkLabel is the button label used when none is configured.
const DefaultDeepLinkLabel = "Open"

var namePrefixes = map[FieldType]string{
	FieldTypeText:         "TextField",
	FieldTypeInteger:      "IntegerField",
	FieldTypeNumber:       "NumberField",
	FieldTypeBoolean:      "BooleanField",
	FieldTypeCheckbox:     "CheckboxField",
	FieldTypeRadio:        "RadioField",
	FieldTypeDropdown:     "DropdownField",
	FieldTypeDate:         "DateField",
	FieldTypeDateCalendar: "CalendarDateField",
	FieldTypeDateTime:     "DateTimeField",
	FieldTypeTime:         "TimeField",
	FieldTypeHosClock:     "HosClockField",
	FieldTypeInstruction:  "Instruction",
	FieldTypeSeparator:    "Separator",
	FieldTypeCalculation:  "CalculationField",
	FieldTypeEvaluation:   "EvaluationField",
	FieldTypePhotoCapture: "PhotoCapture",
	FieldTypeSignature:    "Signature",
	FieldTypeBarcode:      "Barcode",
	FieldTypeDeepLink:     "DeepLink",
	FieldTypeCommodity:    "Commodity",
	FieldTypeEmbedded:     "Embedded",
	FieldTypeMetadata:     "Metadata",
	FieldTypeObject:       "ObjectGroup",
	FieldTypeArray:        "ArrayGroup",
	FieldTypeDescription:  "FormDescription",
}

var defaultTitles = map[FieldType]string{
	FieldTypeText:         "Text Field",
	FieldTypeInteger:      "Integer Field",
	FieldTypeNumber:       "Number Field",
	FieldTypeBoolean:      "Yes/No Field",
	FieldTypeCheckbox:     "Checkbox",
	FieldTypeRadio:        "Radio Selection",
	FieldTypeDropdown:     "Dropdown",
	FieldTypeDate:         "Date",
	FieldTypeDateCalendar: "Calendar Date",
	FieldTypeDateTime:     "Date & Time",
	FieldTypeTime:         "Time",
	FieldTypeHosClock:     "HOS Clock",
	FieldTypeCalculation:  "Calculation",
	FieldTypePhotoCapture: "Photo Capture",
	FieldTypeSignature:    "Signature",
	FieldTypeBarcode:      "Barcode Scanner",
	FieldTypeDeepLink:     "Deep Link",
	FieldTypeCommodity:    "Commodity",
	FieldTypeEmbedded:     "Embedded Form",
	FieldTypeObject:       "Group",
	FieldTypeArray:        "Repeating Group",
}

// Namer hands out default widget names such as TextField1, ObjectGroup2. The
// counter is shared across kinds.
type Namer struct {
	mu    sync.Mutex
	count int
}

// Next returns the next default name for the field kind.
func (n *Namer) Next(t FieldType) string {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.count++
	return namePrefixes[t] + strconv.Itoa(n.count)
}

// Reset restarts the counter.
func (n *Namer) Reset() {
	n.mu.Lock()
	n.count = 0
	n.mu.Unlock()
}

// NewID returns a fresh identifier for fields, rules and conditions.
func NewID() string {
	return uuid.NewString()
}

// NewField builds a field of the given kind populated with the defaults a
// newly added widget starts with. An empty name is filled from namer.
func NewField(t FieldType, name string, namer *Namer) (Field, error) {
	if !t.Valid() {
		return Field{}, fmt.Errorf("model: unknown field type %q", t)
	}
	if name == "" {
		if namer == nil {
			namer = &Namer{}
		}
		name = namer.Next(t)
	}
	field := Field{
		ID:         NewID(),
		Type:       t,
		WidgetName: name,
		Title:      defaultTitles[t],
		Config:     defaultConfig(t),
	}
	switch t {
	case FieldTypeBoolean:
		field.IsRequired = true
	case FieldTypeInstruction:
		field.Description = "Enter instruction text here."
	case FieldTypeDescription:
		field.Description = "Form description"
	}
	return field, nil
}

func defaultConfig(t FieldType) Config {
	switch t {
	case FieldTypeBoolean:
		return &ChoiceConfig{Enum: SimpleEnum("Yes", "No")}
	case FieldTypeRadio, FieldTypeDropdown:
		return &ChoiceConfig{Enum: SimpleEnum("Option 1", "Option 2", "Option 3")}
	case FieldTypeCheckbox:
		unchecked := false
		return &CheckboxConfig{Default: &unchecked}
	case FieldTypeHosClock:
		return &DateConfig{HosClockType: DefaultHosClockType}
	case FieldTypeSeparator:
		return &SeparatorConfig{Default: ":"}
	case FieldTypePhotoCapture:
		return &PhotoCaptureConfig{MinPhotos: Literal(1.0), MaxPhotos: Literal(5.0)}
	case FieldTypeBarcode:
		return &BarcodeConfig{
			AllowDuplicates: Literal(false),
			MinCharacters:   Literal(1.0),
			MaxCharacters:   Literal(50.0),
			MinBarcodes:     Literal(1.0),
			MaxBarcodes:     Literal(10.0),
		}
	case FieldTypeDeepLink:
		return &DeepLinkConfig{Label: DefaultDeepLinkLabel, Kind: DeepLinkURL}
	case FieldTypeObject:
		return &ObjectConfig{Children: []Field{}, Orientation: OrientationVertical}
	case FieldTypeArray:
		return &ArrayConfig{Children: []Field{}, MinLength: Literal(1.0), MaxLength: Literal(5.0)}
	}
	return ConfigFor(t)
}
