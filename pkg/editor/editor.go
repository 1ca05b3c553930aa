// Package editor holds the form being edited and applies editing actions to
// it with undo and redo.
package editor

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/goliatone/go-formbuilder/pkg/codec"
	"github.com/goliatone/go-formbuilder/pkg/model"
)

// Defaults for a new form.
const (
	DefaultName  = "NewForm"
	DefaultTitle = "New Form"
)

// HistoryLimit is the number of snapshots kept for undo.
const HistoryLimit = 50

var (
	// ErrFieldNotFound is returned for unknown field ids.
	ErrFieldNotFound = errors.New("editor: field not found")
	// ErrNotContainer is returned when a non-container is used as a parent.
	ErrNotContainer = errors.New("editor: field is not a container")
)

// Editor is the state of one form being edited. It is not safe for
// concurrent use.
type Editor struct {
	form     model.Form
	raw      []byte
	selected string
	dirty    bool
	history  *history
	namer    model.Namer
	logger   *slog.Logger
}

// Option configures an Editor.
type Option func(*Editor)

// WithLogger sets the editor logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Editor) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// New returns an editor holding an empty form.
func New(opts ...Option) *Editor {
	e := &Editor{logger: slog.Default()}
	for _, opt := range opts {
		if opt != nil {
			opt(e)
		}
	}
	e.NewForm()
	return e
}

// Form returns a copy of the edited form.
func (e *Editor) Form() model.Form { return model.CloneForm(e.form) }

// Raw returns the schema text the form was imported or loaded from, if any.
func (e *Editor) Raw() []byte { return e.raw }

// Selected returns the selected field id.
func (e *Editor) Selected() string { return e.selected }

// Select marks a field as selected. An empty id clears the selection.
func (e *Editor) Select(id string) { e.selected = id }

// Dirty reports whether the form changed since it was created or loaded.
func (e *Editor) Dirty() bool { return e.dirty }

// CanUndo reports whether Undo would change the form.
func (e *Editor) CanUndo() bool { return e.history.index > 0 }

// CanRedo reports whether Redo would change the form.
func (e *Editor) CanRedo() bool { return e.history.index < len(e.history.entries)-1 }

// SetName sets the form name. Metadata edits do not enter the history.
func (e *Editor) SetName(name string) {
	e.form.Name = name
	e.dirty = true
}

// SetTitle sets the form title.
func (e *Editor) SetTitle(title string) {
	e.form.Title = title
	e.dirty = true
}

// SetDescription sets the form description.
func (e *Editor) SetDescription(desc string) {
	e.form.Description = desc
	e.dirty = true
}

// Dispatch applies an action and records the result in the history. A
// failed action leaves the form unchanged.
func (e *Editor) Dispatch(action Action) error {
	next := model.CloneForm(e.form)
	if err := action.apply(e, &next); err != nil {
		return err
	}
	e.form = next
	e.dirty = true
	e.history.push(e.form)
	e.logger.Debug("editor: applied action", "action", fmt.Sprintf("%T", action))
	return nil
}

// AddField appends a new field of kind t to the container parentID, or to
// the top level when parentID is empty. It returns the new field's id.
func (e *Editor) AddField(t model.FieldType, parentID string) (string, error) {
	return e.AddFieldAt(t, parentID, -1)
}

// AddFieldAt inserts a new field at index. A negative or out of range index
// appends.
func (e *Editor) AddFieldAt(t model.FieldType, parentID string, index int) (string, error) {
	action := &AddField{Type: t, ParentID: parentID, Index: index}
	if err := e.Dispatch(action); err != nil {
		return "", err
	}
	e.selected = action.id
	return action.id, nil
}

// RemoveField deletes a field and its children.
func (e *Editor) RemoveField(id string) error {
	if err := e.Dispatch(RemoveField{ID: id}); err != nil {
		return err
	}
	if e.selected == id {
		e.selected = ""
	}
	return nil
}

// UpdateField edits a field in place through fn.
func (e *Editor) UpdateField(id string, fn func(*model.Field)) error {
	return e.Dispatch(UpdateField{ID: id, Fn: fn})
}

// MoveField swaps a field with its previous or next sibling. Moving past
// either end is a no-op.
func (e *Editor) MoveField(id string, dir Direction) error {
	return e.Dispatch(MoveField{ID: id, Direction: dir})
}

// DuplicateField inserts a copy of a field after it. The copy and its
// descendants get new ids and a "_copy" name suffix. It returns the copy's
// id.
func (e *Editor) DuplicateField(id string) (string, error) {
	action := &DuplicateField{ID: id}
	if err := e.Dispatch(action); err != nil {
		return "", err
	}
	return action.id, nil
}

// SetRules replaces the conditional rules of a container, or of the form
// when containerID is empty.
func (e *Editor) SetRules(containerID string, rules []model.Rule) error {
	return e.Dispatch(SetRules{ContainerID: containerID, Rules: rules})
}

// Import replaces the form with a decoded schema document. Metadata missing
// from the document keeps the current values.
func (e *Editor) Import(schema []byte) error {
	decoded, err := codec.Decode(schema)
	if err != nil {
		return err
	}
	if err := e.Dispatch(replace{form: decoded}); err != nil {
		return err
	}
	e.raw = append([]byte(nil), schema...)
	e.selected = ""
	return nil
}

// NewForm resets the editor to an empty form with a fresh history.
func (e *Editor) NewForm() {
	e.form = model.Form{Name: DefaultName, Title: DefaultTitle, Root: model.RootObject}
	e.raw = nil
	e.selected = ""
	e.dirty = false
	e.namer.Reset()
	e.history = newHistory(e.form)
}

// LoadForm replaces the editor state with a stored form. When the form has
// no fields but raw decodes, the decoded fields are used.
func (e *Editor) LoadForm(form model.Form, raw []byte) {
	form = model.CloneForm(form)
	if len(form.Fields) == 0 && len(raw) > 0 {
		if decoded, err := codec.Decode(raw); err == nil {
			form.Fields = decoded.Fields
			form.Rules = decoded.Rules
			form.Root = decoded.Root
			if decoded.Title != "" {
				form.Title = decoded.Title
			}
			if form.Name == "" || form.Name == DefaultName {
				form.Name = decoded.Name
			}
			if decoded.Description != "" {
				form.Description = decoded.Description
			}
		} else {
			e.logger.Warn("editor: stored schema does not decode", "form", form.Name, "error", err)
		}
	}
	e.form = form
	e.raw = append([]byte(nil), raw...)
	if len(raw) == 0 {
		e.raw = nil
	}
	e.selected = ""
	e.dirty = false
	e.history = newHistory(e.form)
}

// Undo steps back one snapshot. It reports whether anything changed.
func (e *Editor) Undo() bool {
	snap, ok := e.history.undo()
	if ok {
		e.restore(snap)
	}
	return ok
}

// Redo steps forward one snapshot. It reports whether anything changed.
func (e *Editor) Redo() bool {
	snap, ok := e.history.redo()
	if ok {
		e.restore(snap)
	}
	return ok
}

func (e *Editor) restore(snap snapshot) {
	e.form.Fields = model.Clone(snap.fields)
	e.form.Rules = model.CloneRules(snap.rules)
	if e.selected != "" {
		if _, ok := model.Find(e.form.Fields, e.selected); !ok {
			e.selected = ""
		}
	}
}

// Export encodes the form as an indented schema document.
func (e *Editor) Export() ([]byte, error) {
	return codec.EncodeIndent(e.form, "  ")
}
