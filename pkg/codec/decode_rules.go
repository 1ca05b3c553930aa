package codec

import (
	"github.com/goliatone/go-formbuilder/internal/jsondoc"
	"github.com/goliatone/go-formbuilder/pkg/model"
	"github.com/goliatone/go-formbuilder/pkg/reference"
)

// Switch keywords.
const (
	keyIf       = "if"
	keyThen     = "then"
	keyElse     = "else"
	keyContinue = "continue"
)

func decodeRules(v any) []model.Rule {
	items, ok := jsondoc.Array(v)
	if !ok {
		return nil
	}
	rules := make([]model.Rule, 0, len(items))
	for _, item := range items {
		obj, ok := jsondoc.AsObject(item)
		if !ok {
			continue
		}
		rules = append(rules, decodeRule(obj))
	}
	return rules
}

// decodeRule reads one switch entry. A rule stops the chain unless it sets
// continue:true; an else block holding its own if is an else-if.
func decodeRule(obj *jsondoc.Object) model.Rule {
	rule := model.Rule{
		ID:            model.NewID(),
		Expression:    decodeExpression(lookup(obj, keyIf)),
		Then:          decodeActions(lookup(obj, keyThen)),
		ContainsBreak: true,
	}
	if cont, ok := lookup(obj, keyContinue).(bool); ok && cont {
		rule.ContainsBreak = false
	}
	if elseBlock, ok := jsondoc.AsObject(lookup(obj, keyElse)); ok {
		if lookup(elseBlock, keyIf) != nil {
			next := decodeRule(elseBlock)
			rule.ElseRule = &next
		} else {
			rule.Else = decodeActions(elseBlock)
		}
	}
	return rule
}

func decodeExpression(v any) model.Expression {
	expr := model.Expression{Kind: model.AllOf, Conditions: []model.Condition{}}
	obj, ok := jsondoc.AsObject(v)
	if !ok {
		return expr
	}
	var items []any
	if allOf, ok := jsondoc.Array(lookup(obj, string(model.AllOf))); ok {
		items = allOf
	} else if anyOf, ok := jsondoc.Array(lookup(obj, string(model.AnyOf))); ok {
		expr.Kind = model.AnyOf
		items = anyOf
	}
	for _, item := range items {
		cond, ok := jsondoc.AsObject(item)
		if !ok {
			continue
		}
		expr.Conditions = append(expr.Conditions, decodeCondition(cond))
	}
	return expr
}

// decodeCondition reads {"<left>": {"<op>": <right>}}. Only the first
// comparison is used.
func decodeCondition(obj *jsondoc.Object) model.Condition {
	cond := model.Condition{ID: model.NewID(), Operator: model.OpEqual}
	for _, left := range obj.Keys() {
		raw, _ := obj.Get(left)
		comparison, ok := jsondoc.AsObject(raw)
		if !ok {
			continue
		}
		op, right, ok := comparison.First()
		if !ok {
			continue
		}
		cond.Operator = model.ParseOperator(op)
		cond.Left = left
		cond.Right = reference.Stringify(right)
		return cond
	}
	return cond
}

func decodeActions(v any) []model.Action {
	obj, ok := jsondoc.AsObject(v)
	if !ok {
		return nil
	}
	var actions []model.Action
	for _, kind := range model.ActionKinds {
		raw, present := obj.Get(string(kind))
		if !present {
			continue
		}
		switch kind {
		case model.ActionShow, model.ActionExclude, model.ActionSetRequired:
			if isArray(raw) {
				actions = append(actions, model.Action{Kind: kind, Fields: stringifyAll(raw)})
			}
		case model.ActionSetValue, model.ActionSetObservableValue:
			assignments, ok := jsondoc.AsObject(raw)
			if !ok || assignments.Len() == 0 {
				continue
			}
			action := model.Action{Kind: kind}
			for _, widget := range assignments.Keys() {
				value, _ := assignments.Get(widget)
				action.Values = append(action.Values, model.Assignment{Widget: widget, Value: reference.Stringify(value)})
			}
			actions = append(actions, action)
		case model.ActionSetEnum, model.ActionSetChoices:
			assignments, ok := jsondoc.AsObject(raw)
			if !ok || assignments.Len() == 0 {
				continue
			}
			action := model.Action{Kind: kind}
			for _, widget := range assignments.Keys() {
				value, _ := assignments.Get(widget)
				action.Enums = append(action.Enums, model.EnumAssignment{
					Widget:  widget,
					Options: decodeActionEnum(kind, value),
				})
			}
			actions = append(actions, action)
		}
	}
	return actions
}

// decodeActionEnum reads the option set carried by a setEnum or setChoices
// action. setChoices references and empty lists decode as paired options so
// they encode back under setChoices.
func decodeActionEnum(kind model.ActionKind, v any) *model.EnumOptions {
	paired := kind == model.ActionSetChoices
	switch t := v.(type) {
	case string:
		if reference.IsReference(t) {
			if paired {
				return model.PairedEnumRef(t)
			}
			return model.SimpleEnumRef(t)
		}
	case []any:
		if len(t) > 0 {
			if _, nested := t[0].([]any); nested {
				return model.PairedEnum(decodePairs(t)...)
			}
			values := make([]string, len(t))
			for i, item := range t {
				values[i] = reference.Stringify(item)
			}
			return model.SimpleEnum(values...)
		}
	}
	if paired {
		return model.PairedEnum()
	}
	return model.SimpleEnum()
}
