// Package reference resolves `$`-prefixed path expressions against the job,
// step, task and step location documents of a running task, plus the current
// form values bound to `$this`.
package reference

import (
	"strconv"
	"strings"
)

// Root prefixes understood by Resolve.
const (
	RootJob          = "$job"
	RootStep         = "$step"
	RootTask         = "$task"
	RootStepLocation = "$step_location"
	RootThis         = "$this"
)

// Context carries the documents a reference may point into. Each document is
// plain decoded JSON.
type Context struct {
	Job          map[string]any `json:"job,omitempty"`
	Step         map[string]any `json:"step,omitempty"`
	Task         map[string]any `json:"task,omitempty"`
	StepLocation map[string]any `json:"stepLocation,omitempty"`
}

// IsReference reports whether s is a path expression rather than a literal.
func IsReference(s string) bool {
	return strings.HasPrefix(s, "$")
}

// Resolve evaluates path. Literals and references with an unknown root are
// returned unchanged; a path that cannot be followed resolves to nil.
func Resolve(path string, ctx Context, values map[string]any) any {
	if !IsReference(path) {
		return path
	}
	root, rest, _ := strings.Cut(path, ".")

	var doc any
	switch root {
	case RootJob:
		doc = asAny(ctx.Job)
	case RootStep:
		doc = asAny(ctx.Step)
	case RootTask:
		doc = asAny(ctx.Task)
	case RootStepLocation:
		doc = asAny(ctx.StepLocation)
	case RootThis:
		doc = asAny(values)
	default:
		return path
	}
	if doc == nil || rest == "" {
		return doc
	}
	return Walk(doc, strings.Split(rest, "."))
}

// Walk follows a path through nested maps and arrays. Array segments first
// match an element shaped {label, value} whose string label equals the
// segment and descend into its value, then fall back to a numeric index.
func Walk(doc any, parts []string) any {
	cur := doc
	for _, part := range parts {
		switch node := cur.(type) {
		case nil:
			return nil
		case []any:
			next, ok := arrayStep(node, part)
			if !ok {
				return nil
			}
			cur = next
		case map[string]any:
			cur = node[part]
		default:
			return nil
		}
	}
	return cur
}

func arrayStep(items []any, part string) (any, bool) {
	for _, item := range items {
		entry, ok := item.(map[string]any)
		if !ok {
			continue
		}
		if label, ok := entry["label"].(string); ok && label == part {
			return entry["value"], true
		}
	}
	idx, err := strconv.Atoi(part)
	if err != nil || idx < 0 || idx >= len(items) {
		return nil, false
	}
	return items[idx], true
}

// asAny keeps a nil map from becoming a non-nil interface.
func asAny(m map[string]any) any {
	if m == nil {
		return nil
	}
	return m
}

// BuildContext assembles the reference context of a task. The step location
// is the entry of job.locations whose external_id matches the step's
// location_external_id.
func BuildContext(job, step, task map[string]any) Context {
	ctx := Context{Job: job, Step: step, Task: task}
	locationID, ok := step["location_external_id"]
	if !ok || locationID == nil {
		return ctx
	}
	locations, _ := job["locations"].([]any)
	want := Stringify(locationID)
	for _, item := range locations {
		loc, ok := item.(map[string]any)
		if !ok {
			continue
		}
		if id, ok := loc["external_id"]; ok && Stringify(id) == want {
			ctx.StepLocation = loc
			break
		}
	}
	return ctx
}
