package model

import (
	"errors"
	"strings"
)

// ErrInvalidRef reports a Ref carrying both or neither of value and reference.
var ErrInvalidRef = errors.New("model: reference-or-literal must set exactly one of value or reference")

// Ref holds either a literal value or a `$`-prefixed reference resolved at
// runtime. Exactly one side is set on a valid Ref.
type Ref[T any] struct {
	Value     *T     `json:"value"`
	Reference string `json:"reference,omitempty"`
}

// Literal builds a Ref around a literal value.
func Literal[T any](v T) *Ref[T] {
	return &Ref[T]{Value: &v}
}

// Reference builds a Ref around a path expression.
func Reference[T any](path string) *Ref[T] {
	return &Ref[T]{Reference: path}
}

// IsReference reports whether the Ref points at a path expression.
func (r *Ref[T]) IsReference() bool {
	return r != nil && r.Reference != ""
}

// Get returns the literal value and whether one is set.
func (r *Ref[T]) Get() (T, bool) {
	var zero T
	if r == nil || r.Value == nil {
		return zero, false
	}
	return *r.Value, true
}

// Check validates the exactly-one invariant. A nil Ref is valid and means the
// property is unset.
func (r *Ref[T]) Check() error {
	if r == nil {
		return nil
	}
	hasRef := r.Reference != ""
	if hasRef == (r.Value != nil) {
		return ErrInvalidRef
	}
	if hasRef && !strings.HasPrefix(r.Reference, "$") {
		return ErrInvalidRef
	}
	return nil
}
