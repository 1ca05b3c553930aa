package model

import (
	"errors"
	"fmt"
	"strings"

	"github.com/mohae/deepcopy"
)

// ErrSkipChildren can be returned by a WalkFunc to skip a container's
// children.
var ErrSkipChildren = errors.New("model: skip children")

// WalkFunc visits a field. Path holds the widget names of the enclosing
// containers.
type WalkFunc func(path []string, field *Field) error

// Walk visits fields depth first in document order. Fields are visited by
// pointer so callers may edit them in place.
func Walk(fields []Field, fn WalkFunc) error {
	return walk(nil, fields, fn)
}

func walk(path []string, fields []Field, fn WalkFunc) error {
	for i := range fields {
		field := &fields[i]
		err := fn(path, field)
		if errors.Is(err, ErrSkipChildren) {
			continue
		}
		if err != nil {
			return err
		}
		children := field.Children()
		if len(children) == 0 {
			continue
		}
		next := append(append([]string(nil), path...), field.WidgetName)
		if err := walk(next, children, fn); err != nil {
			return err
		}
	}
	return nil
}

// Find returns the field with the given ID anywhere in the tree.
func Find(fields []Field, id string) (*Field, bool) {
	var found *Field
	_ = Walk(fields, func(_ []string, field *Field) error {
		if found == nil && field.ID == id {
			found = field
		}
		return nil
	})
	return found, found != nil
}

// FindByName returns the first field with the given widget name in a single
// sibling list.
func FindByName(fields []Field, name string) (*Field, bool) {
	for i := range fields {
		if fields[i].WidgetName == name {
			return &fields[i], true
		}
	}
	return nil, false
}

// Clone returns a deep copy of the field list.
func Clone(fields []Field) []Field {
	if fields == nil {
		return nil
	}
	return deepcopy.Copy(fields).([]Field)
}

// CloneForm returns a deep copy of the form.
func CloneForm(form Form) Form {
	return deepcopy.Copy(form).(Form)
}

// CloneRules returns a deep copy of a rule list.
func CloneRules(rules []Rule) []Rule {
	if rules == nil {
		return nil
	}
	return deepcopy.Copy(rules).([]Rule)
}

// CheckNames reports widget names that repeat within one sibling list.
// Nested containers keep their own namespace.
func CheckNames(fields []Field) error {
	var problems []string
	checkNames("", fields, &problems)
	if len(problems) == 0 {
		return nil
	}
	return fmt.Errorf("model: duplicate widget names: %s", strings.Join(problems, ", "))
}

func checkNames(prefix string, fields []Field, problems *[]string) {
	seen := make(map[string]struct{}, len(fields))
	for _, field := range fields {
		if _, dup := seen[field.WidgetName]; dup {
			*problems = append(*problems, prefix+field.WidgetName)
		}
		seen[field.WidgetName] = struct{}{}
		if children := field.Children(); len(children) > 0 {
			checkNames(prefix+field.WidgetName+".", children, problems)
		}
	}
}

// CheckRefs validates every reference-or-literal value in the tree.
func CheckRefs(fields []Field) error {
	return Walk(fields, func(path []string, field *Field) error {
		if err := checkFieldRefs(field); err != nil {
			return fmt.Errorf("model: field %q: %w", strings.Join(append(path, field.WidgetName), "."), err)
		}
		return nil
	})
}

func checkFieldRefs(field *Field) error {
	errs := []error{field.Style.Check()}
	switch cfg := field.Config.(type) {
	case *InputConfig:
		errs = append(errs, cfg.MinLength.Check(), cfg.MaxLength.Check())
	case *NumericConfig:
		errs = append(errs, cfg.MinLength.Check(), cfg.MaxLength.Check(), cfg.Minimum.Check(), cfg.Maximum.Check())
	case *ChoiceConfig:
		errs = append(errs, cfg.Enum.Check())
	case *PhotoCaptureConfig:
		errs = append(errs, cfg.MinPhotos.Check(), cfg.MaxPhotos.Check())
	case *SignatureConfig:
		errs = append(errs, cfg.Entries.Check())
	case *BarcodeConfig:
		errs = append(errs,
			cfg.AllowDuplicates.Check(),
			cfg.MinCharacters.Check(),
			cfg.MaxCharacters.Check(),
			cfg.MinBarcodes.Check(),
			cfg.MaxBarcodes.Check(),
		)
	case *ArrayConfig:
		errs = append(errs, cfg.MinLength.Check(), cfg.MaxLength.Check())
	}
	return errors.Join(errs...)
}
