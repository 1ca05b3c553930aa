package jobtester

import (
	"github.com/goliatone/go-formbuilder/pkg/codec"
	"github.com/goliatone/go-formbuilder/pkg/model"
)

// FormSource looks up a project form by name, case-insensitively. It returns
// the decoded form, the raw schema document it was imported from, or both.
type FormSource interface {
	FormByName(name string) (model.Form, []byte, bool)
}

// FormSourceFunc adapts a function to FormSource.
type FormSourceFunc func(name string) (model.Form, []byte, bool)

// FormByName implements FormSource.
func (fn FormSourceFunc) FormByName(name string) (model.Form, []byte, bool) {
	return fn(name)
}

// Origin of a resolved form.
const (
	SourceProject     = "project"
	SourceDefinitions = "definitions"
)

// ResolvedForm is the form used to render and validate a task type.
type ResolvedForm struct {
	Form   model.Form
	Source string
}

// ResolveForm finds the form for a task type. A project form with the same
// name wins when it carries fields or a raw schema; otherwise the loaded
// definitions are decoded and cached per task type.
func (t *Tester) ResolveForm(taskType string) (ResolvedForm, bool) {
	if taskType == "" {
		return ResolvedForm{}, false
	}
	if resolved, ok := t.fromProject(taskType); ok {
		return resolved, true
	}
	if cached, ok := t.cache[taskType]; ok {
		return cached, true
	}
	raw, ok := t.definitions[taskType]
	if !ok {
		return ResolvedForm{}, false
	}
	form, err := codec.DecodeDefinition(taskType, raw)
	if err != nil {
		t.logger.Warn("jobtester: decode definition failed", "task_type", taskType, "error", err)
		return ResolvedForm{}, false
	}
	resolved := ResolvedForm{Form: form, Source: SourceDefinitions}
	t.cache[taskType] = resolved
	return resolved, true
}

func (t *Tester) fromProject(taskType string) (ResolvedForm, bool) {
	if t.source == nil {
		return ResolvedForm{}, false
	}
	form, raw, ok := t.source.FormByName(taskType)
	if !ok {
		return ResolvedForm{}, false
	}
	if len(form.Fields) > 0 {
		return ResolvedForm{Form: form, Source: SourceProject}, true
	}
	if len(raw) == 0 {
		return ResolvedForm{}, false
	}
	decoded, err := codec.Decode(raw)
	if err != nil {
		decoded, err = codec.DecodeDefinition(taskType, raw)
	}
	if err != nil {
		t.logger.Warn("jobtester: decode project schema failed", "form", taskType, "error", err)
		return ResolvedForm{}, false
	}
	return ResolvedForm{Form: decoded, Source: SourceProject}, true
}

// HasForm reports whether a task type has a project form or a definition.
func (t *Tester) HasForm(taskType string) bool {
	if taskType == "" {
		return false
	}
	if t.source != nil {
		if form, raw, ok := t.source.FormByName(taskType); ok && (len(form.Fields) > 0 || len(raw) > 0) {
			return true
		}
	}
	_, ok := t.definitions[taskType]
	return ok
}
