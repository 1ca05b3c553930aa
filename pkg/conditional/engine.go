// Package conditional evaluates switch rules and toggle rules against the
// current form values and produces the visibility, requirement and override
// state the validator and renderers consume.
package conditional

import (
	"log/slog"
	"strconv"
	"strings"

	"github.com/goliatone/go-formbuilder/pkg/model"
	"github.com/goliatone/go-formbuilder/pkg/reference"
)

const thisPrefix = reference.RootThis + "."

// ResolveFunc resolves a `$` path expression.
type ResolveFunc func(path string, ctx reference.Context, values map[string]any) any

// FieldToggles groups the toggles attached to one field.
type FieldToggles struct {
	Field   string
	Toggles []model.Toggle
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger used for debug tracing of rule matches.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithResolver overrides reference resolution.
func WithResolver(fn ResolveFunc) Option {
	return func(e *Engine) {
		if fn != nil {
			e.resolve = fn
		}
	}
}

// Engine evaluates rules. The zero value is not usable; call New.
type Engine struct {
	logger  *slog.Logger
	resolve ResolveFunc
}

// New constructs an Engine.
func New(opts ...Option) *Engine {
	e := &Engine{
		logger:  slog.Default(),
		resolve: reference.Resolve,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(e)
		}
	}
	return e
}

var defaultEngine = New()

// Evaluate runs the default engine.
func Evaluate(rules []model.Rule, toggles []FieldToggles, values map[string]any, ctx reference.Context) *State {
	return defaultEngine.Evaluate(rules, toggles, values, ctx)
}

// EvaluateForm runs the default engine over a form.
func EvaluateForm(form model.Form, values map[string]any, ctx reference.Context) *State {
	return defaultEngine.EvaluateForm(form, values, ctx)
}

// Evaluate applies every top-level rule in order, later writes winning, then
// layers the toggles on top. ContainsBreak does not stop evaluation of the
// following rules.
func (e *Engine) Evaluate(rules []model.Rule, toggles []FieldToggles, values map[string]any, ctx reference.Context) *State {
	state := NewState()
	for i := range rules {
		e.evaluateRule(&rules[i], values, ctx, state)
	}
	for _, ft := range toggles {
		e.evaluateToggles(ft, values, ctx, state)
	}
	return state
}

// EvaluateForm evaluates a form's top-level rules and every toggle in its
// tree.
func (e *Engine) EvaluateForm(form model.Form, values map[string]any, ctx reference.Context) *State {
	return e.Evaluate(form.Rules, CollectToggles(form.Fields), values, ctx)
}

// Scope returns the state governing a container's children: the parent
// state when the container has no local rules, otherwise a fresh pass over
// its rules and the toggles of its children.
func (e *Engine) Scope(container model.Field, parent *State, values map[string]any, ctx reference.Context) *State {
	rules := container.Rules()
	if parent != nil && len(rules) == 0 {
		return parent
	}
	return e.Evaluate(rules, CollectToggles(container.Children()), values, ctx)
}

func (e *Engine) evaluateRule(rule *model.Rule, values map[string]any, ctx reference.Context, state *State) bool {
	if e.matches(rule.Expression, values, ctx) {
		e.logger.Debug("conditional: rule matched", "rule", rule.ID)
		e.apply(rule.Then, values, ctx, state)
		return true
	}
	if rule.ElseRule != nil {
		return e.evaluateRule(rule.ElseRule, values, ctx, state)
	}
	if len(rule.Else) > 0 {
		e.apply(rule.Else, values, ctx, state)
	}
	return false
}

func (e *Engine) matches(expr model.Expression, values map[string]any, ctx reference.Context) bool {
	if len(expr.Conditions) == 0 {
		return false
	}
	if expr.Kind == model.AnyOf {
		for _, cond := range expr.Conditions {
			if e.condition(cond, values, ctx) {
				return true
			}
		}
		return false
	}
	for _, cond := range expr.Conditions {
		if !e.condition(cond, values, ctx) {
			return false
		}
	}
	return true
}

func (e *Engine) condition(cond model.Condition, values map[string]any, ctx reference.Context) bool {
	left := e.operand(cond.Left, values, ctx)
	right := e.operand(cond.Right, values, ctx)
	return compare(cond.Operator, left, right)
}

// operand resolves one side of a comparison to its string form.
func (e *Engine) operand(raw string, values map[string]any, ctx reference.Context) string {
	if raw == "" {
		return ""
	}
	if name, ok := strings.CutPrefix(raw, thisPrefix); ok {
		return reference.Stringify(values[name])
	}
	if reference.IsReference(raw) {
		return reference.Stringify(e.resolve(raw, ctx, values))
	}
	return raw
}

func compare(op model.Operator, left, right string) bool {
	switch op {
	case model.OpEqual:
		return left == right
	case model.OpNotEqual:
		return left != right
	case model.OpGreaterThan, model.OpLessThan:
		ln, lok := parseNumber(left)
		rn, rok := parseNumber(right)
		if !lok || !rok {
			return false
		}
		if op == model.OpGreaterThan {
			return ln > rn
		}
		return ln < rn
	}
	return false
}

func parseNumber(s string) (float64, bool) {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

func (e *Engine) apply(actions []model.Action, values map[string]any, ctx reference.Context, state *State) {
	for _, action := range actions {
		switch action.Kind {
		case model.ActionShow:
			addAll(state.Shown, action.Fields)
		case model.ActionExclude:
			addAll(state.Hidden, action.Fields)
		case model.ActionSetRequired:
			addAll(state.Required, action.Fields)
		case model.ActionSetValue:
			for _, v := range action.Values {
				state.Values[v.Widget] = v.Value
			}
		case model.ActionSetObservableValue:
			for _, v := range action.Values {
				resolved := e.resolve(v.Value, ctx, values)
				if resolved == nil {
					continue
				}
				state.Values[v.Widget] = reference.Stringify(resolved)
			}
		case model.ActionSetEnum, model.ActionSetChoices:
			for _, o := range action.Enums {
				state.Enums[o.Widget] = o.Options
			}
		default:
			e.logger.Warn("conditional: unknown action", "kind", action.Kind)
		}
	}
}

func addAll(set map[string]struct{}, names []string) {
	for _, name := range names {
		set[name] = struct{}{}
	}
}

func (e *Engine) evaluateToggles(ft FieldToggles, values map[string]any, ctx reference.Context, state *State) {
	current := reference.Stringify(values[ft.Field])
	for _, toggle := range ft.Toggles {
		var ok bool
		switch toggle.Condition.Kind {
		case model.ToggleEqualTo:
			ok = current == toggle.Condition.Value
		case model.ToggleExpression:
			other := e.operand(toggle.Condition.ReferenceToWidget, values, ctx)
			ok = compare(toggle.Condition.Comparison, current, other)
		}
		if ok {
			addAll(state.Shown, toggle.Targets)
		}
	}
}

// CollectToggles gathers the toggles of every field in the tree, containers
// included.
func CollectToggles(fields []model.Field) []FieldToggles {
	var out []FieldToggles
	for _, field := range fields {
		if toggles := field.Toggles(); len(toggles) > 0 {
			out = append(out, FieldToggles{Field: field.WidgetName, Toggles: toggles})
		}
		if children := field.Children(); len(children) > 0 {
			out = append(out, CollectToggles(children)...)
		}
	}
	return out
}
