package model

// FieldType is the discriminator of a field node.
type FieldType string

const (
	FieldTypeText         FieldType = "text"
	FieldTypeInteger      FieldType = "integer"
	FieldTypeNumber       FieldType = "number"
	FieldTypeBoolean      FieldType = "boolean"
	FieldTypeCheckbox     FieldType = "checkbox"
	FieldTypeRadio        FieldType = "radio"
	FieldTypeDropdown     FieldType = "dropdown"
	FieldTypeDate         FieldType = "date"
	FieldTypeDateCalendar FieldType = "dateCalendar"
	FieldTypeDateTime     FieldType = "dateTime"
	FieldTypeTime         FieldType = "time"
	FieldTypeHosClock     FieldType = "hosClock"
	FieldTypeInstruction  FieldType = "instruction"
	FieldTypeSeparator    FieldType = "separator"
	FieldTypeCalculation  FieldType = "calculation"
	FieldTypeEvaluation   FieldType = "evaluation"
	FieldTypePhotoCapture FieldType = "photoCapture"
	FieldTypeSignature    FieldType = "signature"
	FieldTypeBarcode      FieldType = "barcode"
	FieldTypeDeepLink     FieldType = "deepLink"
	FieldTypeCommodity    FieldType = "commodity"
	FieldTypeEmbedded     FieldType = "embedded"
	FieldTypeMetadata     FieldType = "metadata"
	FieldTypeObject       FieldType = "object"
	FieldTypeArray        FieldType = "array"
	FieldTypeDescription  FieldType = "description"
)

// FieldTypes lists every field kind in palette order.
var FieldTypes = []FieldType{
	FieldTypeText,
	FieldTypeInteger,
	FieldTypeNumber,
	FieldTypeBoolean,
	FieldTypeCheckbox,
	FieldTypeRadio,
	FieldTypeDropdown,
	FieldTypeDate,
	FieldTypeDateCalendar,
	FieldTypeDateTime,
	FieldTypeTime,
	FieldTypeHosClock,
	FieldTypeInstruction,
	FieldTypeSeparator,
	FieldTypeCalculation,
	FieldTypeEvaluation,
	FieldTypePhotoCapture,
	FieldTypeSignature,
	FieldTypeBarcode,
	FieldTypeDeepLink,
	FieldTypeCommodity,
	FieldTypeEmbedded,
	FieldTypeMetadata,
	FieldTypeObject,
	FieldTypeArray,
	FieldTypeDescription,
}

// Valid reports whether t names a known field kind.
func (t FieldType) Valid() bool {
	for _, known := range FieldTypes {
		if t == known {
			return true
		}
	}
	return false
}

// IsContainer reports whether fields of this kind hold children.
func (t FieldType) IsContainer() bool {
	return t == FieldTypeObject || t == FieldTypeArray
}

// IsInput reports whether the kind collects a value from the user. Layout
// widgets are skipped by validation and by the payload contract.
func (t FieldType) IsInput() bool {
	switch t {
	case FieldTypeSeparator, FieldTypeInstruction, FieldTypeDescription:
		return false
	}
	return true
}

// Style is the visual style attached to a widget.
type Style struct {
	BackgroundColor string `json:"backgroundColor,omitempty"`
	TextColor       string `json:"textColor,omitempty"`
}

// Field is one node of the form tree.
type Field struct {
	ID           string      `json:"id"`
	Type         FieldType   `json:"fieldType"`
	WidgetName   string      `json:"widgetName"`
	Title        string      `json:"title,omitempty"`
	Description  string      `json:"description,omitempty"`
	IsRequired   bool        `json:"isRequired,omitempty"`
	IsHidden     bool        `json:"isHidden,omitempty"`
	IsUneditable bool        `json:"isUneditable,omitempty"`
	Style        *Ref[Style] `json:"widgetStyle,omitempty"`
	Config       Config      `json:"-"`
}

// Label returns the human label used in messages: the title when set,
// otherwise the widget name.
func (f Field) Label() string {
	if f.Title != "" {
		return f.Title
	}
	return f.WidgetName
}

// Children returns the nested fields of a container, or nil.
func (f Field) Children() []Field {
	switch cfg := f.Config.(type) {
	case *ObjectConfig:
		return cfg.Children
	case *ArrayConfig:
		return cfg.Children
	}
	return nil
}

// Rules returns the local conditional rules of a container, or nil.
func (f Field) Rules() []Rule {
	switch cfg := f.Config.(type) {
	case *ObjectConfig:
		return cfg.Rules
	case *ArrayConfig:
		return cfg.Rules
	}
	return nil
}

// Toggles returns the toggle rules attached to a leaf field, or nil.
func (f Field) Toggles() []Toggle {
	switch cfg := f.Config.(type) {
	case *InputConfig:
		return cfg.Toggles
	case *NumericConfig:
		return cfg.Toggles
	case *ChoiceConfig:
		return cfg.Toggles
	case *CheckboxConfig:
		return cfg.Toggles
	case *DateConfig:
		return cfg.Toggles
	}
	return nil
}

// Config holds the attributes specific to one field kind.
type Config interface {
	config()
}

// InputConfig configures text fields.
type InputConfig struct {
	Default             string        `json:"defaultValue,omitempty"`
	ParameterName       string        `json:"parameterName,omitempty"`
	Hint                string        `json:"hint,omitempty"`
	Pattern             string        `json:"pattern,omitempty"`
	PatternErrorMessage string        `json:"patternErrorMessage,omitempty"`
	MinLength           *Ref[float64] `json:"minLength,omitempty"`
	MaxLength           *Ref[float64] `json:"maxLength,omitempty"`
	Toggles             []Toggle      `json:"toggleOperators,omitempty"`
}

// NumericConfig configures integer and number fields.
type NumericConfig struct {
	InputConfig
	Minimum          *Ref[float64] `json:"minimumValue,omitempty"`
	Maximum          *Ref[float64] `json:"maximumValue,omitempty"`
	ExclusiveMinimum bool          `json:"exclusiveMinimum,omitempty"`
	ExclusiveMaximum bool          `json:"exclusiveMaximum,omitempty"`
}

// ChoiceConfig configures boolean, radio and dropdown fields.
type ChoiceConfig struct {
	Default       string       `json:"defaultValue,omitempty"`
	ParameterName string       `json:"parameterName,omitempty"`
	Enum          *EnumOptions `json:"enumOptions,omitempty"`
	Toggles       []Toggle     `json:"toggleOperators,omitempty"`
}

// CheckboxConfig configures checkbox fields. A nil Default means unset.
type CheckboxConfig struct {
	Default       *bool    `json:"defaultValue,omitempty"`
	ParameterName string   `json:"parameterName,omitempty"`
	Toggles       []Toggle `json:"toggleOperators,omitempty"`
}

// DateConfig configures the date, calendar date, date-time, time and HOS
// clock kinds. TimeZoneID applies to the date kinds and HosClockType to the
// HOS clock only.
type DateConfig struct {
	Default       string     `json:"defaultValue,omitempty"`
	ParameterName string     `json:"parameterName,omitempty"`
	TimeZoneID    string     `json:"timeZoneId,omitempty"`
	HosClockType  string     `json:"hosClockType,omitempty"`
	Min           *DateLimit `json:"minLimitation,omitempty"`
	Max           *DateLimit `json:"maxLimitation,omitempty"`
	Toggles       []Toggle   `json:"toggleOperators,omitempty"`
}

// InstructionConfig configures instruction widgets.
type InstructionConfig struct {
	FormatArgs []string `json:"stringFormatArgs,omitempty"`
}

// SeparatorConfig configures separators.
type SeparatorConfig struct {
	Default string `json:"defaultValue,omitempty"`
}

// CalculationConfig configures calculated fields.
type CalculationConfig struct {
	Formula       string `json:"calculationFormula,omitempty"`
	ParameterName string `json:"parameterName,omitempty"`
	DecimalPlaces *int   `json:"decimalPlaces,omitempty"`
}

// EvaluationConfig configures evaluation fields.
type EvaluationConfig struct {
	ReferenceToValue         string `json:"referenceToValue,omitempty"`
	ReferenceToDecreaseValue string `json:"referenceToDecreaseValue,omitempty"`
	ParameterName            string `json:"parameterName,omitempty"`
}

// PhotoCaptureConfig configures photo capture widgets.
type PhotoCaptureConfig struct {
	MinPhotos *Ref[float64] `json:"minNumberOfPhotos,omitempty"`
	MaxPhotos *Ref[float64] `json:"maxNumberOfPhotos,omitempty"`
}

// SignatureEntry is one signer slot.
type SignatureEntry struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// SignatureConfig configures signature widgets.
type SignatureConfig struct {
	Entries *Ref[[]SignatureEntry] `json:"signatureEntries,omitempty"`
	Message string                 `json:"signatureMessage,omitempty"`
}

// BarcodeConfig configures barcode scanners.
type BarcodeConfig struct {
	AllowDuplicates *Ref[bool]    `json:"allowDuplicates,omitempty"`
	MinCharacters   *Ref[float64] `json:"minCharacters,omitempty"`
	MaxCharacters   *Ref[float64] `json:"maxCharacters,omitempty"`
	MinBarcodes     *Ref[float64] `json:"minBarcodes,omitempty"`
	MaxBarcodes     *Ref[float64] `json:"maxBarcodes,omitempty"`
}

// DeepLinkKind tells whether a deep link value is a URL or a JSON payload.
type DeepLinkKind string

const (
	DeepLinkURL    DeepLinkKind = "url"
	DeepLinkObject DeepLinkKind = "object"
)

// DeepLinkConfig configures deep link buttons.
type DeepLinkConfig struct {
	Label string       `json:"label,omitempty"`
	Kind  DeepLinkKind `json:"deepLinkType,omitempty"`
	Value string       `json:"deepLinkValue,omitempty"`
}

// CommodityConfig configures commodity pickers.
type CommodityConfig struct {
	CommodityID   int    `json:"commodityId,omitempty"`
	ParameterName string `json:"parameterName,omitempty"`
}

// EmbeddedConfig configures embedded forms.
type EmbeddedConfig struct {
	ReferenceContainerID string `json:"referenceContainerId,omitempty"`
}

// MetadataEntry is one key/value pair of a metadata widget.
type MetadataEntry struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// MetadataConfig configures hidden metadata widgets.
type MetadataConfig struct {
	MetadataID string          `json:"metadataId,omitempty"`
	Entries    []MetadataEntry `json:"metadataEntries,omitempty"`
}

// Orientation controls object layout.
type Orientation string

const (
	OrientationVertical   Orientation = "vertical"
	OrientationHorizontal Orientation = "horizontal"
)

// ObjectConfig configures object groups.
type ObjectConfig struct {
	Children    []Field     `json:"children"`
	Rules       []Rule      `json:"switchOperators,omitempty"`
	Orientation Orientation `json:"orientationType,omitempty"`
}

// ArrayConfig configures repeating groups. MinLength and MaxLength bound the
// number of items.
type ArrayConfig struct {
	Children  []Field       `json:"children"`
	Rules     []Rule        `json:"switchOperators,omitempty"`
	MinLength *Ref[float64] `json:"minLength,omitempty"`
	MaxLength *Ref[float64] `json:"maxLength,omitempty"`
	Fixed     bool          `json:"isFixed,omitempty"`
}

// DescriptionConfig configures rich description blocks. The text lives in
// Field.Description.
type DescriptionConfig struct{}

func (*InputConfig) config()        {}
func (*NumericConfig) config()      {}
func (*ChoiceConfig) config()       {}
func (*CheckboxConfig) config()     {}
func (*DateConfig) config()         {}
func (*InstructionConfig) config()  {}
func (*SeparatorConfig) config()    {}
func (*CalculationConfig) config()  {}
func (*EvaluationConfig) config()   {}
func (*PhotoCaptureConfig) config() {}
func (*SignatureConfig) config()    {}
func (*BarcodeConfig) config()      {}
func (*DeepLinkConfig) config()     {}
func (*CommodityConfig) config()    {}
func (*EmbeddedConfig) config()     {}
func (*MetadataConfig) config()     {}
func (*ObjectConfig) config()       {}
func (*ArrayConfig) config()        {}
func (*DescriptionConfig) config()  {}

// ConfigFor returns an empty config of the variant matching t.
func ConfigFor(t FieldType) Config {
	switch t {
	case FieldTypeText:
		return &InputConfig{}
	case FieldTypeInteger, FieldTypeNumber:
		return &NumericConfig{}
	case FieldTypeBoolean, FieldTypeRadio, FieldTypeDropdown:
		return &ChoiceConfig{}
	case FieldTypeCheckbox:
		return &CheckboxConfig{}
	case FieldTypeDate, FieldTypeDateCalendar, FieldTypeDateTime, FieldTypeTime, FieldTypeHosClock:
		return &DateConfig{}
	case FieldTypeInstruction:
		return &InstructionConfig{}
	case FieldTypeSeparator:
		return &SeparatorConfig{}
	case FieldTypeCalculation:
		return &CalculationConfig{}
	case FieldTypeEvaluation:
		return &EvaluationConfig{}
	case FieldTypePhotoCapture:
		return &PhotoCaptureConfig{}
	case FieldTypeSignature:
		return &SignatureConfig{}
	case FieldTypeBarcode:
		return &BarcodeConfig{}
	case FieldTypeDeepLink:
		return &DeepLinkConfig{}
	case FieldTypeCommodity:
		return &CommodityConfig{}
	case FieldTypeEmbedded:
		return &EmbeddedConfig{}
	case FieldTypeMetadata:
		return &MetadataConfig{}
	case FieldTypeObject:
		return &ObjectConfig{}
	case FieldTypeArray:
		return &ArrayConfig{}
	case FieldTypeDescription:
		return &DescriptionConfig{}
	}
	return nil
}
