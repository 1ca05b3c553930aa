// Package codec converts between a form's field tree and the JSON Schema
// shaped document the workflow engine consumes.
//
// Decode accepts three wrapper shapes: the nested
// data.form_schema.formDefinitions envelope, a bare object schema, and a
// single named definition. Encode always emits the named shape. Unknown
// property types are dropped while decoding so partially understood
// documents still produce an editable tree.
package codec

import (
	"errors"
	"regexp"
	"strings"
	"unicode/utf8"
)

var (
	// ErrNoDefinition is returned when no form definition can be located in a
	// document.
	ErrNoDefinition = errors.New("codec: no form definition found")
	// ErrInvalidJSON wraps JSON syntax errors.
	ErrInvalidJSON = errors.New("codec: invalid JSON")
)

// DefaultFormName names forms decoded from a bare schema without a title.
const DefaultFormName = "ImportedForm"

// Wire keywords shared by the encoder and decoder.
const (
	keyType        = "type"
	keyFormat      = "format"
	keyTitle       = "title"
	keyDescription = "description"
	keyProperties  = "properties"
	keyItems       = "items"
	keyRequired    = "required"
	keyHidden      = "hidden"
	keyUneditable  = "uneditable"
	keySwitch      = "switch"
	keyToggle      = "toggle"
	keyDefault     = "default"
	keyFieldType   = "field_type"
	keyEnum        = "enum"
	keyChoices     = "choices"
	keyStyle       = "widget_style"
)

// Schema type keywords.
const (
	typeString      = "string"
	typeInteger     = "integer"
	typeNumber      = "number"
	typeBoolean     = "boolean"
	typeObject      = "object"
	typeArray       = "array"
	typeInstruction = "instruction"
	typeCalculation = "calculation"
	typeEvaluation  = "evaluation"
	typeCommodity   = "commodity"
	typeDeepLink    = "deeplink_button"
	typeEmbedded    = "embedded"
	typeMetadata    = "metadata"
	typeMedia       = "media"
)

// String formats. The time formats are inverted relative to the field kinds:
// hours_minutes is a plain time field and time is the HOS clock.
const (
	formatDate         = "date"
	formatDateCalendar = "date_calendar"
	formatDateTime     = "date_time"
	formatHoursMinutes = "hours_minutes"
	formatHosClock     = "time"
	formatSeparator    = "separator"
	formatSignature    = "signature"
	formatBarcode      = "barcode"
	formatPhotoCapture = "photo_capture"
)

var (
	camelBoundary = regexp.MustCompile(`[^a-zA-Z0-9]+(.)`)
	nonAlnum      = regexp.MustCompile(`[^a-zA-Z0-9]`)
)

// CamelName turns a human title into a form name: separators are dropped and
// the character after each separator run is upper cased.
func CamelName(title string) string {
	out := camelBoundary.ReplaceAllStringFunc(title, func(m string) string {
		r, _ := utf8.DecodeLastRuneInString(m)
		return strings.ToUpper(string(r))
	})
	return nonAlnum.ReplaceAllString(out, "")
}
