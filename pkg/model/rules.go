package model

// ExpressionKind combines the conditions of a rule.
type ExpressionKind string

const (
	AllOf ExpressionKind = "allOf"
	AnyOf ExpressionKind = "anyOf"
)

// Operator compares the two operands of a condition.
type Operator string

const (
	OpEqual       Operator = "eq"
	OpNotEqual    Operator = "ne"
	OpGreaterThan Operator = "gt"
	OpLessThan    Operator = "lt"
)

// ParseOperator maps a wire operator, falling back to eq for unknown input.
func ParseOperator(raw string) Operator {
	switch Operator(raw) {
	case OpEqual, OpNotEqual, OpGreaterThan, OpLessThan:
		return Operator(raw)
	}
	return OpEqual
}

// Condition is one comparison. Left and Right are literals, `$this.<name>`
// lookups or context references.
type Condition struct {
	ID       string   `json:"id"`
	Operator Operator `json:"operator"`
	Left     string   `json:"leftValue"`
	Right    string   `json:"rightValue"`
}

// Expression groups conditions. An expression without conditions never
// matches.
type Expression struct {
	Kind       ExpressionKind `json:"type"`
	Conditions []Condition    `json:"conditions"`
}

// ActionKind names what an action does to the conditional state.
type ActionKind string

const (
	ActionShow               ActionKind = "show"
	ActionExclude            ActionKind = "exclude"
	ActionSetRequired        ActionKind = "setRequired"
	ActionSetValue           ActionKind = "setValue"
	ActionSetObservableValue ActionKind = "setObservableValue"
	ActionSetEnum            ActionKind = "setEnum"
	ActionSetChoices         ActionKind = "setChoices"
)

// ActionKinds lists the action kinds in their canonical emission order.
var ActionKinds = []ActionKind{
	ActionShow,
	ActionExclude,
	ActionSetRequired,
	ActionSetValue,
	ActionSetObservableValue,
	ActionSetEnum,
	ActionSetChoices,
}

// Assignment targets one widget with a literal value or a reference.
type Assignment struct {
	Widget string `json:"widgetAccess"`
	Value  string `json:"value"`
}

// EnumAssignment replaces the option set of one widget.
type EnumAssignment struct {
	Widget  string       `json:"widgetAccess"`
	Options *EnumOptions `json:"enumOptions"`
}

// Action is one effect of a rule. Fields is used by show, exclude and
// setRequired; Values by setValue and setObservableValue; Enums by setEnum
// and setChoices.
type Action struct {
	Kind   ActionKind       `json:"type"`
	Fields []string         `json:"fields,omitempty"`
	Values []Assignment     `json:"values,omitempty"`
	Enums  []EnumAssignment `json:"options,omitempty"`
}

// Rule is a conditional operator: when Expression matches, Then applies;
// otherwise ElseRule is evaluated when set, else the flat Else actions apply.
type Rule struct {
	ID            string     `json:"id"`
	Expression    Expression `json:"expression"`
	Then          []Action   `json:"thenActions"`
	ElseRule      *Rule      `json:"elseOperator,omitempty"`
	Else          []Action   `json:"elseActions,omitempty"`
	ContainsBreak bool       `json:"containsBreak"`
}

// ToggleKind is the condition shape of a toggle.
type ToggleKind string

const (
	ToggleEqualTo    ToggleKind = "equalTo"
	ToggleExpression ToggleKind = "expression"
)

// ToggleCondition compares a field's own value against a literal (equalTo)
// or against another widget's value (expression).
type ToggleCondition struct {
	Kind              ToggleKind `json:"type"`
	Value             string     `json:"value,omitempty"`
	Comparison        Operator   `json:"comparison,omitempty"`
	ReferenceToWidget string     `json:"referenceToWidget,omitempty"`
}

// Toggle reveals Targets when its condition holds.
type Toggle struct {
	Condition ToggleCondition `json:"condition"`
	Targets   []string        `json:"accessToWidgets"`
}
