package conditional

import (
	"sort"

	"github.com/goliatone/go-formbuilder/pkg/model"
)

// State is the outcome of one evaluation pass. It is rebuilt from scratch on
// every pass.
type State struct {
	Hidden   map[string]struct{}
	Shown    map[string]struct{}
	Required map[string]struct{}
	Values   map[string]string
	Enums    map[string]*model.EnumOptions
}

// NewState returns an empty state.
func NewState() *State {
	return &State{
		Hidden:   make(map[string]struct{}),
		Shown:    make(map[string]struct{}),
		Required: make(map[string]struct{}),
		Values:   make(map[string]string),
		Enums:    make(map[string]*model.EnumOptions),
	}
}

// IsHidden reports whether an exclude action targeted name.
func (s *State) IsHidden(name string) bool {
	return s != nil && has(s.Hidden, name)
}

// IsShown reports whether a show action or toggle revealed name.
func (s *State) IsShown(name string) bool {
	return s != nil && has(s.Shown, name)
}

// IsRequired reports whether a setRequired action targeted name.
func (s *State) IsRequired(name string) bool {
	return s != nil && has(s.Required, name)
}

// Value returns the value override for name.
func (s *State) Value(name string) (string, bool) {
	if s == nil {
		return "", false
	}
	v, ok := s.Values[name]
	return v, ok
}

// Enum returns the option override for name.
func (s *State) Enum(name string) (*model.EnumOptions, bool) {
	if s == nil {
		return nil, false
	}
	e, ok := s.Enums[name]
	return e, ok
}

// Sorted returns the members of a set in lexical order, for display and
// stable test output.
func Sorted(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for name := range set {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

func has(set map[string]struct{}, name string) bool {
	_, ok := set[name]
	return ok
}

// IsVisible derives a field's visibility. An exclude always wins; a
// statically hidden field is visible only when shown.
func IsVisible(field model.Field, state *State) bool {
	if state.IsHidden(field.WidgetName) {
		return false
	}
	if field.IsHidden && !state.IsShown(field.WidgetName) {
		return false
	}
	return true
}

// IsRequired derives whether a field must hold a value: its static flag or a
// setRequired action.
func IsRequired(field model.Field, state *State) bool {
	return field.IsRequired || state.IsRequired(field.WidgetName)
}
