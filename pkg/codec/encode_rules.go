package codec

import (
	"github.com/goliatone/go-formbuilder/internal/jsondoc"
	"github.com/goliatone/go-formbuilder/pkg/model"
)

func encodeRules(rules []model.Rule) []any {
	out := make([]any, 0, len(rules))
	for i := range rules {
		out = append(out, encodeRule(&rules[i]))
	}
	return out
}

// encodeRule emits {if, then, else?, continue?}. continue is only written
// when the rule does not break the chain.
func encodeRule(rule *model.Rule) *jsondoc.Object {
	obj := jsondoc.New()
	obj.Set(keyIf, encodeExpression(rule.Expression))
	obj.Set(keyThen, encodeActions(rule.Then))
	switch {
	case rule.ElseRule != nil:
		obj.Set(keyElse, encodeRule(rule.ElseRule))
	case len(rule.Else) > 0:
		obj.Set(keyElse, encodeActions(rule.Else))
	}
	if !rule.ContainsBreak {
		obj.Set(keyContinue, true)
	}
	return obj
}

func encodeExpression(expr model.Expression) *jsondoc.Object {
	kind := expr.Kind
	if kind != model.AnyOf {
		kind = model.AllOf
	}
	conds := make([]any, 0, len(expr.Conditions))
	for _, cond := range expr.Conditions {
		op := cond.Operator
		if op == "" {
			op = model.OpEqual
		}
		conds = append(conds, jsondoc.New().Set(cond.Left, jsondoc.New().Set(string(op), cond.Right)))
	}
	return jsondoc.New().Set(string(kind), conds)
}

// encodeActions merges the actions into one keyword object, emitted in
// canonical action order.
func encodeActions(actions []model.Action) *jsondoc.Object {
	obj := jsondoc.New()
	for _, kind := range model.ActionKinds {
		var (
			fields  []string
			values  *jsondoc.Object
			enums   *jsondoc.Object
			present bool
		)
		for _, action := range actions {
			if action.Kind != kind {
				continue
			}
			present = true
			fields = append(fields, action.Fields...)
			for _, v := range action.Values {
				if values == nil {
					values = jsondoc.New()
				}
				values.Set(v.Widget, v.Value)
			}
			for _, e := range action.Enums {
				if enums == nil {
					enums = jsondoc.New()
				}
				enums.Set(e.Widget, actionEnumValue(e.Options))
			}
		}
		if !present {
			continue
		}
		switch kind {
		case model.ActionShow, model.ActionExclude, model.ActionSetRequired:
			if fields == nil {
				fields = []string{}
			}
			obj.Set(string(kind), fields)
		case model.ActionSetValue, model.ActionSetObservableValue:
			if values != nil {
				obj.Set(string(kind), values)
			}
		case model.ActionSetEnum, model.ActionSetChoices:
			if enums != nil {
				obj.Set(string(kind), enums)
			}
		}
	}
	return obj
}

func actionEnumValue(enum *model.EnumOptions) any {
	if enum == nil {
		return []any{}
	}
	return enumValue(enum)
}
