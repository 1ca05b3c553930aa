package jsondoc

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestParsePreservesKeyOrder(t *testing.T) {
	t.Parallel()

	value, err := Parse([]byte(`{"zeta":1,"alpha":{"b":true,"a":null},"mid":["x",2]}`))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	obj, ok := AsObject(value)
	if !ok {
		t.Fatalf("expected object, got %T", value)
	}
	if diff := cmp.Diff([]string{"zeta", "alpha", "mid"}, obj.Keys()); diff != "" {
		t.Fatalf("keys mismatch (-want +got):\n%s", diff)
	}
	nested, _ := obj.Get("alpha")
	nestedObj, ok := AsObject(nested)
	if !ok {
		t.Fatalf("expected nested object, got %T", nested)
	}
	if diff := cmp.Diff([]string{"b", "a"}, nestedObj.Keys()); diff != "" {
		t.Fatalf("nested keys mismatch (-want +got):\n%s", diff)
	}

	out, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	want := `{"zeta":1,"alpha":{"b":true,"a":null},"mid":["x",2]}`
	if string(out) != want {
		t.Fatalf("unexpected output\nwant %s\ngot  %s", want, out)
	}
}

func TestParseRejectsTrailingData(t *testing.T) {
	t.Parallel()

	if _, err := Parse([]byte(`{} {}`)); !errors.Is(err, ErrTrailingData) {
		t.Fatalf("expected ErrTrailingData, got %v", err)
	}
	if _, err := Parse([]byte(`{"a":`)); err == nil {
		t.Fatalf("expected error for truncated document")
	}
}

func TestSetKeepsPosition(t *testing.T) {
	t.Parallel()

	obj := New().Set("a", 1).Set("b", 2).Set("a", 3)
	if diff := cmp.Diff([]string{"a", "b"}, obj.Keys()); diff != "" {
		t.Fatalf("keys mismatch (-want +got):\n%s", diff)
	}
	if v, _ := obj.Get("a"); v != 3 {
		t.Fatalf("expected overwritten value 3, got %v", v)
	}
}

func TestNumberAcceptsNumericStrings(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in   any
		want float64
		ok   bool
	}{
		{in: 4.5, want: 4.5, ok: true},
		{in: " 12 ", want: 12, ok: true},
		{in: "abc", ok: false},
		{in: true, ok: false},
	}
	for _, tc := range cases {
		got, ok := Number(tc.in)
		if ok != tc.ok || got != tc.want {
			t.Fatalf("Number(%v) = %v, %v; want %v, %v", tc.in, got, ok, tc.want, tc.ok)
		}
	}
}

func TestPathAndLookup(t *testing.T) {
	t.Parallel()

	value, err := Parse([]byte(`{"data":{"form_schema":{"formDefinitions":{"A":{}}}},"x":null,"y":"v"}`))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	obj, _ := AsObject(value)
	defs, ok := obj.Path("data", "form_schema", "formDefinitions")
	if !ok {
		t.Fatalf("expected path to resolve")
	}
	defsObj, _ := AsObject(defs)
	if key, _, _ := defsObj.First(); key != "A" {
		t.Fatalf("expected first key A, got %q", key)
	}
	if v, ok := obj.Lookup("x", "y"); !ok || v != "v" {
		t.Fatalf("expected lookup to skip null and return v, got %v", v)
	}
}
