package editor

import (
	"fmt"
	"slices"

	"github.com/goliatone/go-formbuilder/pkg/model"
)

// Action is an edit applied by Editor.Dispatch. Actions work on a copy of
// the form, so a failing action never leaves partial changes behind.
type Action interface {
	apply(e *Editor, form *model.Form) error
}

// Direction of a MoveField action.
type Direction int

const (
	Up Direction = iota
	Down
)

// ParseDirection reads "up" or "down".
func ParseDirection(s string) (Direction, error) {
	switch s {
	case "up":
		return Up, nil
	case "down":
		return Down, nil
	}
	return Up, fmt.Errorf("editor: unknown direction %q", s)
}

// AddField inserts a default field of Type.
type AddField struct {
	Type     model.FieldType
	ParentID string
	Index    int

	id string
}

func (a *AddField) apply(e *Editor, form *model.Form) error {
	field, err := model.NewField(a.Type, "", &e.namer)
	if err != nil {
		return err
	}
	list := &form.Fields
	if a.ParentID != "" {
		parent, ok := model.Find(form.Fields, a.ParentID)
		if !ok {
			return fmt.Errorf("%w: %s", ErrFieldNotFound, a.ParentID)
		}
		if list, ok = childList(parent); !ok {
			return fmt.Errorf("%w: %s", ErrNotContainer, parent.WidgetName)
		}
	}
	index := a.Index
	if index < 0 || index > len(*list) {
		index = len(*list)
	}
	*list = slices.Insert(*list, index, field)
	a.id = field.ID
	return nil
}

// RemoveField deletes a field and its children.
type RemoveField struct {
	ID string
}

func (a RemoveField) apply(_ *Editor, form *model.Form) error {
	list, index, ok := locate(&form.Fields, a.ID)
	if !ok {
		return fmt.Errorf("%w: %s", ErrFieldNotFound, a.ID)
	}
	*list = slices.Delete(*list, index, index+1)
	return nil
}

// UpdateField edits a field in place. The field id cannot change.
type UpdateField struct {
	ID string
	Fn func(*model.Field)
}

func (a UpdateField) apply(_ *Editor, form *model.Form) error {
	field, ok := model.Find(form.Fields, a.ID)
	if !ok {
		return fmt.Errorf("%w: %s", ErrFieldNotFound, a.ID)
	}
	if a.Fn != nil {
		a.Fn(field)
	}
	field.ID = a.ID
	return nil
}

// MoveField swaps a field with a sibling.
type MoveField struct {
	ID        string
	Direction Direction
}

func (a MoveField) apply(_ *Editor, form *model.Form) error {
	list, index, ok := locate(&form.Fields, a.ID)
	if !ok {
		return fmt.Errorf("%w: %s", ErrFieldNotFound, a.ID)
	}
	target := index + 1
	if a.Direction == Up {
		target = index - 1
	}
	if target < 0 || target >= len(*list) {
		return nil
	}
	fields := *list
	fields[index], fields[target] = fields[target], fields[index]
	return nil
}

// DuplicateField inserts a renamed copy of a field after it.
type DuplicateField struct {
	ID string

	id string
}

func (a *DuplicateField) apply(_ *Editor, form *model.Form) error {
	list, index, ok := locate(&form.Fields, a.ID)
	if !ok {
		return fmt.Errorf("%w: %s", ErrFieldNotFound, a.ID)
	}
	dup := model.Clone((*list)[index : index+1])
	_ = model.Walk(dup, func(_ []string, field *model.Field) error {
		field.ID = model.NewID()
		field.WidgetName += "_copy"
		return nil
	})
	*list = slices.Insert(*list, index+1, dup[0])
	a.id = dup[0].ID
	return nil
}

// SetRules replaces the rules of a container or of the form.
type SetRules struct {
	ContainerID string
	Rules       []model.Rule
}

func (a SetRules) apply(_ *Editor, form *model.Form) error {
	rules := model.CloneRules(a.Rules)
	if a.ContainerID == "" {
		form.Rules = rules
		return nil
	}
	field, ok := model.Find(form.Fields, a.ContainerID)
	if !ok {
		return fmt.Errorf("%w: %s", ErrFieldNotFound, a.ContainerID)
	}
	switch cfg := field.Config.(type) {
	case *model.ObjectConfig:
		cfg.Rules = rules
	case *model.ArrayConfig:
		cfg.Rules = rules
	default:
		return fmt.Errorf("%w: %s", ErrNotContainer, field.WidgetName)
	}
	return nil
}

// replace swaps in an imported form.
type replace struct {
	form model.Form
}

func (a replace) apply(_ *Editor, form *model.Form) error {
	form.Fields = model.Clone(a.form.Fields)
	form.Rules = model.CloneRules(a.form.Rules)
	if a.form.Root != "" {
		form.Root = a.form.Root
	}
	if a.form.Name != "" {
		form.Name = a.form.Name
	}
	if a.form.Title != "" {
		form.Title = a.form.Title
	}
	if a.form.Description != "" {
		form.Description = a.form.Description
	}
	return nil
}

func childList(field *model.Field) (*[]model.Field, bool) {
	switch cfg := field.Config.(type) {
	case *model.ObjectConfig:
		return &cfg.Children, true
	case *model.ArrayConfig:
		return &cfg.Children, true
	}
	return nil, false
}

// locate finds the sibling list holding id and the field's index in it.
func locate(list *[]model.Field, id string) (*[]model.Field, int, bool) {
	for i := range *list {
		field := &(*list)[i]
		if field.ID == id {
			return list, i, true
		}
		if children, ok := childList(field); ok {
			if found, index, ok := locate(children, id); ok {
				return found, index, true
			}
		}
	}
	return nil, 0, false
}
