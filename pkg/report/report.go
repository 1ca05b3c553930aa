// Package report renders markdown summaries of job test runs and form
// outlines, and displays them in the terminal.
package report

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/goliatone/go-formbuilder/pkg/contract"
	"github.com/goliatone/go-formbuilder/pkg/jobtester"
	"github.com/goliatone/go-formbuilder/pkg/model"
	"github.com/goliatone/go-formbuilder/pkg/reference"
)

// Template names.
const (
	TemplateRun  = "run"
	TemplateForm = "form"
)

// Task statuses.
const (
	StatusSubmitted = "submitted"
	StatusInvalid   = "invalid"
	StatusSkipped   = "skipped"
	StatusPending   = "pending"
)

// Run is the report view of a tester run.
type Run struct {
	JobID       string
	GeneratedAt time.Time
	Summary     jobtester.Summary
	Steps       []StepRow
}

// StepRow groups the task rows of one step.
type StepRow struct {
	Name  string
	Tasks []TaskRow
}

// TaskRow is one task of the run.
type TaskRow struct {
	ID       string
	Name     string
	Type     string
	Status   string
	Form     string
	Values   []ValueRow
	Errors   []string
	Contract []string
}

// ValueRow is one submitted value.
type ValueRow struct {
	Name  string
	Value string
}

// BuildRun collects the rows of a tester run. Submitted responses with a
// resolved form are also checked against the form's payload contract.
func BuildRun(tester *jobtester.Tester, now time.Time) Run {
	run := Run{
		JobID:       tester.Job().ID(),
		GeneratedAt: now,
		Summary:     tester.Summary(),
	}
	index := make(map[string]int)
	for _, entry := range tester.Tasks() {
		pos, ok := index[entry.StepName]
		if !ok {
			pos = len(run.Steps)
			index[entry.StepName] = pos
			run.Steps = append(run.Steps, StepRow{Name: entry.StepName})
		}
		run.Steps[pos].Tasks = append(run.Steps[pos].Tasks, taskRow(tester, entry.Task))
	}
	return run
}

func taskRow(tester *jobtester.Tester, task jobtester.Task) TaskRow {
	row := TaskRow{ID: task.ID, Name: task.Name, Type: task.Type, Status: StatusPending}
	resolved, hasForm := tester.ResolveForm(task.Type)
	if hasForm {
		row.Form = fmt.Sprintf("%s (%s)", resolved.Form.Name, resolved.Source)
	}
	response, ok := tester.Response(task.ID)
	if !ok {
		return row
	}
	switch {
	case response.Skipped:
		row.Status = StatusSkipped
	case !response.Valid:
		row.Status = StatusInvalid
	default:
		row.Status = StatusSubmitted
	}
	row.Values = valueRows(response.Values)
	row.Errors = append(row.Errors, response.Errors...)
	if hasForm && !response.Skipped {
		issues, err := contract.Validate(resolved.Form, response.Values)
		if err != nil {
			row.Contract = append(row.Contract, err.Error())
		}
		for _, issue := range issues {
			row.Contract = append(row.Contract, issue.String())
		}
	}
	return row
}

func valueRows(values map[string]any) []ValueRow {
	names := make([]string, 0, len(values))
	for name := range values {
		names = append(names, name)
	}
	sort.Strings(names)
	rows := make([]ValueRow, 0, len(names))
	for _, name := range names {
		rows = append(rows, ValueRow{Name: name, Value: reference.Stringify(values[name])})
	}
	return rows
}

func (r Run) context() map[string]any {
	steps := make([]any, 0, len(r.Steps))
	for _, step := range r.Steps {
		tasks := make([]any, 0, len(step.Tasks))
		for _, task := range step.Tasks {
			values := make([]any, 0, len(task.Values))
			for _, v := range task.Values {
				values = append(values, map[string]any{"name": v.Name, "value": v.Value})
			}
			tasks = append(tasks, map[string]any{
				"id":       task.ID,
				"name":     task.Name,
				"type":     task.Type,
				"status":   task.Status,
				"form":     task.Form,
				"values":   values,
				"errors":   task.Errors,
				"contract": task.Contract,
			})
		}
		steps = append(steps, map[string]any{"name": step.Name, "tasks": tasks})
	}
	return map[string]any{
		"job_id":       r.JobID,
		"generated_at": r.GeneratedAt.UTC().Format(time.RFC3339),
		"summary": map[string]any{
			"total":     r.Summary.Total,
			"submitted": r.Summary.Submitted,
			"skipped":   r.Summary.Skipped,
			"pending":   r.Summary.Pending,
			"invalid":   r.Summary.Invalid,
		},
		"steps": steps,
	}
}

// RenderRun renders the markdown report of a run.
func (e *Engine) RenderRun(run Run, out ...io.Writer) (string, error) {
	return e.Render(TemplateRun, run.context(), out...)
}

// RenderForm renders a markdown outline of a form's field tree.
func (e *Engine) RenderForm(form model.Form, out ...io.Writer) (string, error) {
	return e.Render(TemplateForm, formContext(form), out...)
}

func formContext(form model.Form) map[string]any {
	var rows []any
	count := 0
	rules := len(form.Rules)
	_ = model.Walk(form.Fields, func(path []string, field *model.Field) error {
		count++
		rules += len(field.Rules())
		rows = append(rows, map[string]any{
			"indent": strings.Repeat("- ", len(path)),
			"name":   field.WidgetName,
			"kind":   string(field.Type),
			"title":  field.Title,
			"flags":  flags(*field),
		})
		return nil
	})
	root := form.Root
	if root == "" {
		root = model.RootObject
	}
	return map[string]any{
		"form": map[string]any{
			"name":        form.Name,
			"title":       form.Title,
			"description": form.Description,
			"root":        string(root),
			"count":       count,
			"rules":       rules,
		},
		"fields": rows,
	}
}

func flags(field model.Field) string {
	var out []string
	if field.IsRequired {
		out = append(out, "required")
	}
	if field.IsHidden {
		out = append(out, "hidden")
	}
	if field.IsUneditable {
		out = append(out, "read-only")
	}
	if len(field.Toggles()) > 0 {
		out = append(out, "toggles")
	}
	return strings.Join(out, ", ")
}
