// Package tui fills forms and drives job test runs from the terminal.
package tui

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"os"
	"strings"

	"github.com/goliatone/go-formbuilder/pkg/conditional"
	"github.com/goliatone/go-formbuilder/pkg/model"
	"github.com/goliatone/go-formbuilder/pkg/reference"
	"github.com/goliatone/go-formbuilder/pkg/validation"
)

// noneOption lets optional choice fields stay empty.
const noneOption = "(none)"

// Filler prompts for the visible input fields of a form.
type Filler struct {
	driver PromptDriver
	engine *conditional.Engine
	logger *slog.Logger
	out    io.Writer
	theme  Theme
}

// New constructs a filler with the survey driver unless one is supplied.
func New(options ...Option) *Filler {
	f := &Filler{
		logger: slog.Default(),
		out:    os.Stdout,
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(f)
	}
	if f.engine == nil {
		f.engine = conditional.New(conditional.WithLogger(f.logger))
	}
	if f.driver == nil {
		f.driver = NewSurveyDriver(f.out)
	}
	return f
}

// Result is the outcome of filling a form.
type Result struct {
	Values     map[string]any
	State      *conditional.State
	Validation validation.Result
}

// Fill prompts field by field, starting from values. Rules are re-evaluated
// after every answer, so fields hidden or revealed by earlier answers are
// skipped or asked accordingly. An answer that fails validation is asked
// again.
func (f *Filler) Fill(ctx context.Context, form model.Form, values map[string]any, rctx reference.Context) (Result, error) {
	if ctx == nil {
		return Result{}, ErrNoContext
	}
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	s := &fill{Filler: f, form: form, values: maps.Clone(values), rctx: rctx}
	if s.values == nil {
		s.values = map[string]any{}
	}
	s.reevaluate()
	if err := s.list(ctx, form.Fields, func() *conditional.State { return s.state }); err != nil {
		return Result{}, err
	}
	s.reevaluate()
	return Result{
		Values:     s.values,
		State:      s.state,
		Validation: validation.Validate(form.Fields, s.values, s.state),
	}, nil
}

func (f *Filler) info(ctx context.Context, msg string) error {
	return f.driver.Info(ctx, f.theme.InfoPrefix+msg)
}

func (f *Filler) problem(ctx context.Context, msg string) error {
	return f.driver.Info(ctx, f.theme.ErrorPrefix+plainText(msg))
}

// fill is the state of one Fill call.
type fill struct {
	*Filler
	form   model.Form
	values map[string]any
	state  *conditional.State
	rctx   reference.Context
}

func (s *fill) reevaluate() {
	s.state = s.engine.EvaluateForm(s.form, s.values, s.rctx)
}

func (s *fill) list(ctx context.Context, fields []model.Field, scope func() *conditional.State) error {
	for _, field := range fields {
		if !conditional.IsVisible(field, scope()) {
			continue
		}
		var err error
		switch {
		case !field.Type.IsInput():
			if text := plainText(field.Description); text != "" {
				err = s.info(ctx, text)
			}
		case field.Type == model.FieldTypeObject:
			if title := plainText(field.Label()); title != "" {
				err = s.info(ctx, title)
			}
			if err == nil {
				container := field
				err = s.list(ctx, field.Children(), func() *conditional.State {
					return s.engine.Scope(container, s.state, s.values, s.rctx)
				})
			}
		case field.Type == model.FieldTypeArray:
			err = s.array(ctx, field, scope)
		default:
			err = s.field(ctx, field, scope)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func (s *fill) field(ctx context.Context, field model.Field, scope func() *conditional.State) error {
	for {
		state := scope()
		value, err := s.ask(ctx, field, state)
		if err != nil {
			return err
		}
		candidate := maps.Clone(s.values)
		if isBlank(value) {
			delete(candidate, field.WidgetName)
		} else {
			candidate[field.WidgetName] = value
		}
		result := validation.Validate([]model.Field{field}, candidate, state)
		if result.Valid {
			s.values = candidate
			s.reevaluate()
			return nil
		}
		for _, msg := range result.Messages() {
			if err := s.problem(ctx, msg); err != nil {
				return err
			}
		}
	}
}

func (s *fill) ask(ctx context.Context, field model.Field, state *conditional.State) (any, error) {
	required := conditional.IsRequired(field, state)
	label := plainText(field.Label())
	if required {
		label += " *"
	}
	help := plainText(field.Description)
	current := s.values[field.WidgetName]
	if override, ok := state.Value(field.WidgetName); ok && isBlank(current) {
		current = override
	}

	switch cfg := field.Config.(type) {
	case *model.CheckboxConfig:
		def := false
		switch v := current.(type) {
		case bool:
			def = v
		case string:
			def = strings.EqualFold(v, "true")
		case nil:
			if cfg.Default != nil {
				def = *cfg.Default
			}
		}
		return s.driver.Confirm(ctx, ConfirmConfig{Message: label, Default: def, Help: help})
	case *model.ChoiceConfig:
		if options := s.options(field, cfg, state); len(options) > 0 {
			return s.choose(ctx, label, help, options, reference.Stringify(current), required)
		}
	case *model.NumericConfig:
		if help == "" {
			help = "Enter a number"
		}
	}
	answer, err := s.driver.Input(ctx, InputConfig{Message: label, Default: reference.Stringify(current), Help: help})
	if err != nil {
		return nil, err
	}
	return strings.TrimSpace(answer), nil
}

func (s *fill) choose(ctx context.Context, label, help string, options []model.Pair, current string, required bool) (any, error) {
	labels := make([]string, 0, len(options)+1)
	def := -1
	for i, option := range options {
		labels = append(labels, plainText(option.Label))
		if option.Value == current {
			def = i
		}
	}
	if !required {
		labels = append(labels, noneOption)
	}
	idx, err := s.driver.Select(ctx, SelectConfig{Message: label, Options: labels, DefaultIndex: def, Help: help})
	if err != nil {
		return nil, err
	}
	if idx < 0 || idx >= len(options) {
		return "", nil
	}
	return options[idx].Value, nil
}

// options returns the active option list: a rule override first, then the
// literal options, then the options a reference resolves to.
func (s *fill) options(field model.Field, cfg *model.ChoiceConfig, state *conditional.State) []model.Pair {
	enum := cfg.Enum
	if override, ok := state.Enum(field.WidgetName); ok && override != nil {
		enum = override
	}
	if options := enum.Options(); len(options) > 0 {
		return options
	}
	path := enum.Reference()
	if path == "" {
		return nil
	}
	return toPairs(reference.Resolve(path, s.rctx, s.values))
}

func toPairs(v any) []model.Pair {
	items, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]model.Pair, 0, len(items))
	for _, item := range items {
		if obj, ok := item.(map[string]any); ok {
			value := reference.Stringify(obj["value"])
			label := reference.Stringify(obj["label"])
			if label == "" {
				label = value
			}
			out = append(out, model.Pair{Label: label, Value: value})
			continue
		}
		text := reference.Stringify(item)
		out = append(out, model.Pair{Label: text, Value: text})
	}
	return out
}

// array collects repeating group items, each filled as its own form scoped
// to the group's rules.
func (s *fill) array(ctx context.Context, field model.Field, scope func() *conditional.State) error {
	cfg, _ := field.Config.(*model.ArrayConfig)
	minItems, maxItems := 0, 0
	if cfg != nil {
		if n, ok := cfg.MinLength.Get(); ok {
			minItems = int(n)
		}
		if n, ok := cfg.MaxLength.Get(); ok {
			maxItems = int(n)
		}
	}
	if conditional.IsRequired(field, scope()) && minItems < 1 {
		minItems = 1
	}
	label := plainText(field.Label())
	item := model.Form{Name: field.WidgetName, Fields: field.Children(), Rules: field.Rules()}

	var items []any
	for maxItems <= 0 || len(items) < maxItems {
		if len(items) >= minItems {
			more, err := s.driver.Confirm(ctx, ConfirmConfig{Message: fmt.Sprintf("Add %s item %d?", label, len(items)+1)})
			if err != nil {
				return err
			}
			if !more {
				break
			}
		} else if err := s.info(ctx, fmt.Sprintf("%s item %d", label, len(items)+1)); err != nil {
			return err
		}
		result, err := s.Fill(ctx, item, nil, s.rctx)
		if err != nil {
			return err
		}
		items = append(items, result.Values)
	}
	if len(items) == 0 {
		delete(s.values, field.WidgetName)
	} else {
		s.values[field.WidgetName] = items
	}
	s.reevaluate()
	return nil
}

func isBlank(v any) bool {
	switch x := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(x) == ""
	}
	return false
}
