package model

import "errors"

// EnumKind distinguishes flat string options from label/value pairs.
type EnumKind string

const (
	EnumSimple EnumKind = "simple"
	EnumPaired EnumKind = "paired"
)

// Pair is a labelled option.
type Pair struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// EnumOptions is the option set of a choice field. Simple is set for
// EnumSimple and Paired for EnumPaired.
type EnumOptions struct {
	Kind   EnumKind       `json:"type"`
	Simple *Ref[[]string] `json:"simple,omitempty"`
	Paired *Ref[[]Pair]   `json:"paired,omitempty"`
}

// SimpleEnum builds a flat option list.
func SimpleEnum(values ...string) *EnumOptions {
	if values == nil {
		values = []string{}
	}
	return &EnumOptions{Kind: EnumSimple, Simple: Literal(values)}
}

// SimpleEnumRef builds a flat option list resolved from a reference.
func SimpleEnumRef(path string) *EnumOptions {
	return &EnumOptions{Kind: EnumSimple, Simple: Reference[[]string](path)}
}

// PairedEnum builds a labelled option list.
func PairedEnum(pairs ...Pair) *EnumOptions {
	if pairs == nil {
		pairs = []Pair{}
	}
	return &EnumOptions{Kind: EnumPaired, Paired: Literal(pairs)}
}

// PairedEnumRef builds a labelled option list resolved from a reference.
func PairedEnumRef(path string) *EnumOptions {
	return &EnumOptions{Kind: EnumPaired, Paired: Reference[[]Pair](path)}
}

// Reference returns the reference path of the option set, or "".
func (e *EnumOptions) Reference() string {
	if e == nil {
		return ""
	}
	switch e.Kind {
	case EnumPaired:
		if e.Paired != nil {
			return e.Paired.Reference
		}
	default:
		if e.Simple != nil {
			return e.Simple.Reference
		}
	}
	return ""
}

// Options returns the literal options as pairs. Simple values use the value
// as label.
func (e *EnumOptions) Options() []Pair {
	if e == nil {
		return nil
	}
	if e.Kind == EnumPaired {
		pairs, _ := e.Paired.Get()
		return pairs
	}
	values, _ := e.Simple.Get()
	out := make([]Pair, 0, len(values))
	for _, v := range values {
		out = append(out, Pair{Label: v, Value: v})
	}
	return out
}

// Check validates the option set shape.
func (e *EnumOptions) Check() error {
	if e == nil {
		return nil
	}
	switch e.Kind {
	case EnumSimple:
		if e.Simple == nil || e.Paired != nil {
			return errors.New("model: simple enum must carry only simple options")
		}
		return e.Simple.Check()
	case EnumPaired:
		if e.Paired == nil || e.Simple != nil {
			return errors.New("model: paired enum must carry only paired options")
		}
		return e.Paired.Check()
	}
	return errors.New("model: unknown enum kind " + string(e.Kind))
}
