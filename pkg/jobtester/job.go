package jobtester

import (
	"encoding/json"
	"errors"
	"sort"

	"github.com/goliatone/go-formbuilder/pkg/model"
	"github.com/goliatone/go-formbuilder/pkg/reference"
)

// Setup errors. The messages are shown to users verbatim.
var (
	ErrInvalidJSON   = errors.New("Invalid JSON")
	ErrNoSteps       = errors.New("No steps found in job JSON")
	ErrNoDefinitions = errors.New("Could not find formDefinitions in schemas JSON")
	ErrNoJob         = errors.New("No job loaded")
)

const (
	unnamedStep = "Unnamed Step"
	unnamedTask = "Unnamed Task"
)

// Job is a parsed job document. Steps and their tasks are sorted by order.
type Job struct {
	Raw   map[string]any
	Steps []Step
}

// ID returns the job's external id, falling back to its id.
func (j *Job) ID() string {
	if j == nil {
		return ""
	}
	if id, ok := j.Raw["external_id"]; ok && id != nil {
		return reference.Stringify(id)
	}
	return reference.Stringify(j.Raw["id"])
}

// Step is one job step.
type Step struct {
	Raw                map[string]any
	ID                 string
	Name               string
	Type               string
	Order              float64
	LocationExternalID string
	Tasks              []Task
}

// Task is one task of a step. Type selects the form.
type Task struct {
	Raw    map[string]any
	ID     string
	Name   string
	Type   string
	Order  float64
	Fields map[string]any
}

// ParseJob reads a job document. A job needs a non-empty steps array; each
// step may carry a tasks array.
func ParseJob(data []byte) (*Job, error) {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil || raw == nil {
		return nil, ErrInvalidJSON
	}
	items, ok := raw["steps"].([]any)
	if !ok || len(items) == 0 {
		return nil, ErrNoSteps
	}

	job := &Job{Raw: raw}
	for _, item := range items {
		obj, ok := item.(map[string]any)
		if !ok {
			continue
		}
		job.Steps = append(job.Steps, parseStep(obj))
	}
	sort.SliceStable(job.Steps, func(i, k int) bool { return job.Steps[i].Order < job.Steps[k].Order })
	return job, nil
}

func parseStep(obj map[string]any) Step {
	step := Step{
		Raw:   obj,
		ID:    identity(obj),
		Name:  stringOr(obj["name"], unnamedStep),
		Type:  stringOr(obj["type"], ""),
		Order: order(obj),
	}
	if loc, ok := obj["location_external_id"].(string); ok {
		step.LocationExternalID = loc
	}
	tasks, _ := obj["tasks"].([]any)
	for _, item := range tasks {
		taskObj, ok := item.(map[string]any)
		if !ok {
			continue
		}
		task := Task{
			Raw:    taskObj,
			ID:     identity(taskObj),
			Name:   stringOr(taskObj["name"], unnamedTask),
			Type:   stringOr(taskObj["type"], ""),
			Order:  order(taskObj),
			Fields: map[string]any{},
		}
		if fields, ok := taskObj["fields"].(map[string]any); ok {
			task.Fields = fields
		}
		step.Tasks = append(step.Tasks, task)
	}
	sort.SliceStable(step.Tasks, func(i, k int) bool { return step.Tasks[i].Order < step.Tasks[k].Order })
	return step
}

// identity returns id, then external_id, then a generated id.
func identity(obj map[string]any) string {
	for _, key := range []string{"id", "external_id"} {
		if v, ok := obj[key]; ok && v != nil {
			return reference.Stringify(v)
		}
	}
	return model.NewID()
}

func stringOr(v any, fallback string) string {
	if v == nil {
		return fallback
	}
	return reference.Stringify(v)
}

func order(obj map[string]any) float64 {
	n, _ := obj["order"].(float64)
	return n
}

// Definitions maps a task type to its raw form definition.
type Definitions map[string]json.RawMessage

// ParseDefinitions reads a schema-definitions document from
// data.form_schema.formDefinitions or a top-level formDefinitions key.
func ParseDefinitions(data []byte) (Definitions, error) {
	var raw struct {
		Data *struct {
			FormSchema *struct {
				FormDefinitions map[string]json.RawMessage `json:"formDefinitions"`
			} `json:"form_schema"`
		} `json:"data"`
		FormDefinitions map[string]json.RawMessage `json:"formDefinitions"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, ErrInvalidJSON
	}
	if raw.Data != nil && raw.Data.FormSchema != nil && raw.Data.FormSchema.FormDefinitions != nil {
		return raw.Data.FormSchema.FormDefinitions, nil
	}
	if raw.FormDefinitions != nil {
		return raw.FormDefinitions, nil
	}
	return nil, ErrNoDefinitions
}

// FlatTask addresses one task in the flattened step/task order.
type FlatTask struct {
	Cursor   Cursor
	StepName string
	Task     Task
}

// Flatten lists every task in step order.
func (j *Job) Flatten() []FlatTask {
	if j == nil {
		return nil
	}
	var out []FlatTask
	for si, step := range j.Steps {
		for ti, task := range step.Tasks {
			out = append(out, FlatTask{Cursor: Cursor{Step: si, Task: ti}, StepName: step.Name, Task: task})
		}
	}
	return out
}
