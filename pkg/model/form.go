package model

// RootKind tells whether a form document wraps its fields in an object or in
// an array of objects.
type RootKind string

const (
	RootObject RootKind = "object"
	RootArray  RootKind = "array"
)

// Form is a complete form definition: the field tree plus its top-level
// conditional rules.
type Form struct {
	Name        string   `json:"formName"`
	Title       string   `json:"formTitle,omitempty"`
	Description string   `json:"formDescription,omitempty"`
	Root        RootKind `json:"root,omitempty"`
	Fields      []Field  `json:"fields"`
	Rules       []Rule   `json:"switchOperators,omitempty"`
}

// DescriptionField returns the first top-level description field, if any.
func (f Form) DescriptionField() (Field, bool) {
	for _, field := range f.Fields {
		if field.Type == FieldTypeDescription {
			return field, true
		}
	}
	return Field{}, false
}
