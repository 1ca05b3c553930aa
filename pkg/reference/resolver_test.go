package reference

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func testContext() Context {
	return Context{
		Job: map[string]any{
			"shipment": map[string]any{"hazmat": true, "pieces": 3.0},
			"stops":    []any{"A", "B"},
		},
		Step: map[string]any{
			"external_data": []any{
				map[string]any{"label": "Color", "value": "Red"},
				map[string]any{"label": "Size", "value": map[string]any{"w": 10.0}},
			},
		},
		Task: map[string]any{"name": "Pickup"},
	}
}

func TestResolve(t *testing.T) {
	t.Parallel()

	ctx := testContext()
	values := map[string]any{"Age": "42", "Nested": map[string]any{"x": "y"}}

	cases := []struct {
		name string
		path string
		want any
	}{
		{name: "literal", path: "plain text", want: "plain text"},
		{name: "this", path: "$this.Age", want: "42"},
		{name: "this nested", path: "$this.Nested.x", want: "y"},
		{name: "job bool", path: "$job.shipment.hazmat", want: true},
		{name: "label lookup", path: "$step.external_data.Color", want: "Red"},
		{name: "label then key", path: "$step.external_data.Size.w", want: 10.0},
		{name: "numeric index", path: "$job.stops.1", want: "B"},
		{name: "index out of range", path: "$job.stops.5", want: nil},
		{name: "missing key", path: "$task.missing", want: nil},
		{name: "through scalar", path: "$task.name.first", want: nil},
		{name: "unknown root", path: "$driver.name", want: "$driver.name"},
		{name: "absent location", path: "$step_location.name", want: nil},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got := Resolve(tc.path, ctx, values)
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Fatalf("Resolve(%q) mismatch (-want +got):\n%s", tc.path, diff)
			}
		})
	}
}

func TestResolveRootWithoutPath(t *testing.T) {
	t.Parallel()

	ctx := testContext()
	got := Resolve("$task", ctx, nil)
	if diff := cmp.Diff(ctx.Task, got); diff != "" {
		t.Fatalf("root mismatch (-want +got):\n%s", diff)
	}
	if got := Resolve("$this.Age", ctx, nil); got != nil {
		t.Fatalf("expected nil without values, got %v", got)
	}
}

func TestWalkMatchesOnlyStringLabels(t *testing.T) {
	t.Parallel()

	doc := []any{
		map[string]any{"label": "first", "value": "by index"},
		map[string]any{"label": 0.0, "value": "numeric label"},
		map[string]any{"label": "0", "value": "string label"},
	}
	if got := Walk(doc, []string{"0"}); got != "string label" {
		t.Fatalf("expected the string label to win, got %v", got)
	}
	if got := Walk(doc[:2], []string{"0"}); !cmp.Equal(doc[0], got) {
		t.Fatalf("numeric labels must not match, got %v", got)
	}
}

func TestBuildContextFindsLocation(t *testing.T) {
	t.Parallel()

	job := map[string]any{
		"locations": []any{
			map[string]any{"external_id": "L1", "name": "Depot"},
			map[string]any{"external_id": "L2", "name": "Store"},
		},
	}
	step := map[string]any{"location_external_id": "L2"}
	ctx := BuildContext(job, step, map[string]any{})

	if got := Resolve("$step_location.name", ctx, nil); got != "Store" {
		t.Fatalf("expected Store, got %v", got)
	}

	ctx = BuildContext(job, map[string]any{}, nil)
	if ctx.StepLocation != nil {
		t.Fatalf("expected no location, got %v", ctx.StepLocation)
	}
}

func TestStringify(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in   any
		want string
	}{
		{nil, ""},
		{"x", "x"},
		{true, "true"},
		{42.0, "42"},
		{2.5, "2.5"},
		{[]any{"a", 1.0}, "a,1"},
		{map[string]any{"k": "v"}, `{"k":"v"}`},
	}
	for _, tc := range cases {
		if got := Stringify(tc.in); got != tc.want {
			t.Fatalf("Stringify(%v) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
