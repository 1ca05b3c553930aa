// Package jobtester drives a test run of a job's tasks against the forms
// resolved for each task type. A Tester moves through three phases: setup,
// stepping and results.
package jobtester

import (
	"encoding/json"
	"log/slog"
	"maps"
	"time"

	"github.com/goliatone/go-formbuilder/pkg/conditional"
	"github.com/goliatone/go-formbuilder/pkg/reference"
	"github.com/goliatone/go-formbuilder/pkg/validation"
)

// Phase is the tester lifecycle phase.
type Phase string

const (
	PhaseSetup    Phase = "setup"
	PhaseStepping Phase = "stepping"
	PhaseResults  Phase = "results"
)

// Cursor addresses a task by step and task index.
type Cursor struct {
	Step int `json:"stepIndex"`
	Task int `json:"taskIndex"`
}

// Response records the outcome of one task. Responses are keyed by task id;
// a later submission replaces an earlier one.
type Response struct {
	TaskID      string         `json:"taskId"`
	TaskName    string         `json:"taskName"`
	TaskType    string         `json:"taskType"`
	StepName    string         `json:"stepName"`
	Values      map[string]any `json:"formValues"`
	SubmittedAt time.Time      `json:"submittedAt"`
	Valid       bool           `json:"isValid"`
	Errors      []string       `json:"errors"`
	Skipped     bool           `json:"skipped,omitempty"`
}

// Option configures a Tester.
type Option func(*Tester)

// WithFormSource sets the project forms consulted before the definitions
// document.
func WithFormSource(src FormSource) Option {
	return func(t *Tester) {
		t.source = src
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(t *Tester) {
		if logger != nil {
			t.logger = logger
		}
	}
}

// WithClock overrides the clock used to stamp responses.
func WithClock(now func() time.Time) Option {
	return func(t *Tester) {
		if now != nil {
			t.now = now
		}
	}
}

// WithEngine sets the conditional engine used by Check.
func WithEngine(engine *conditional.Engine) Option {
	return func(t *Tester) {
		if engine != nil {
			t.engine = engine
		}
	}
}

// Tester is the job tester state machine. It is not safe for concurrent use.
type Tester struct {
	logger *slog.Logger
	now    func() time.Time
	engine *conditional.Engine
	source FormSource

	phase       Phase
	job         *Job
	rawJob      []byte
	definitions Definitions
	rawDefs     []byte
	tasks       []FlatTask
	cursor      Cursor
	values      map[string]any
	responses   map[string]Response
	cache       map[string]ResolvedForm
}

// New constructs a Tester in the setup phase.
func New(opts ...Option) *Tester {
	t := &Tester{
		logger: slog.Default(),
		now:    time.Now,
		engine: conditional.New(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(t)
		}
	}
	t.clear()
	return t
}

func (t *Tester) clear() {
	t.phase = PhaseSetup
	t.job = nil
	t.rawJob = nil
	t.definitions = nil
	t.rawDefs = nil
	t.tasks = nil
	t.cursor = Cursor{}
	t.values = map[string]any{}
	t.responses = map[string]Response{}
	t.cache = map[string]ResolvedForm{}
}

// LoadJob parses and stores a job document. On failure the previously loaded
// job is kept.
func (t *Tester) LoadJob(data []byte) error {
	job, err := ParseJob(data)
	if err != nil {
		return err
	}
	t.job = job
	t.rawJob = append([]byte(nil), data...)
	t.tasks = job.Flatten()
	t.logger.Debug("jobtester: job loaded", "steps", len(job.Steps), "tasks", len(t.tasks))
	return nil
}

// LoadDefinitions parses and stores a schema-definitions document and drops
// every cached form. On failure the previous definitions are kept.
func (t *Tester) LoadDefinitions(data []byte) error {
	defs, err := ParseDefinitions(data)
	if err != nil {
		return err
	}
	t.definitions = defs
	t.rawDefs = append([]byte(nil), data...)
	t.cache = map[string]ResolvedForm{}
	return nil
}

// Job returns the loaded job, or nil.
func (t *Tester) Job() *Job { return t.job }

// Phase returns the current phase.
func (t *Tester) Phase() Phase { return t.phase }

// Cursor returns the current position.
func (t *Tester) Cursor() Cursor { return t.cursor }

// Tasks returns the flattened task list.
func (t *Tester) Tasks() []FlatTask { return t.tasks }

// Index returns the flat index of the current task, or -1.
func (t *Tester) Index() int {
	for i, entry := range t.tasks {
		if entry.Cursor == t.cursor {
			return i
		}
	}
	return -1
}

// Start enters the stepping phase at the first task, prefilled with its
// field data. Previous responses are discarded.
func (t *Tester) Start() error {
	if t.job == nil {
		return ErrNoJob
	}
	t.phase = PhaseStepping
	t.cursor = Cursor{}
	t.values = t.prefill(t.cursor)
	t.responses = map[string]Response{}
	return nil
}

// Current returns the step and task under the cursor.
func (t *Tester) Current() (Step, Task, bool) {
	return t.at(t.cursor)
}

func (t *Tester) at(c Cursor) (Step, Task, bool) {
	if t.job == nil || c.Step < 0 || c.Step >= len(t.job.Steps) {
		return Step{}, Task{}, false
	}
	step := t.job.Steps[c.Step]
	if c.Task < 0 || c.Task >= len(step.Tasks) {
		return step, Task{}, false
	}
	return step, step.Tasks[c.Task], true
}

func (t *Tester) prefill(c Cursor) map[string]any {
	_, task, ok := t.at(c)
	if !ok || task.Fields == nil {
		return map[string]any{}
	}
	return maps.Clone(task.Fields)
}

// Values returns a copy of the current form values.
func (t *Tester) Values() map[string]any {
	return maps.Clone(t.values)
}

// SetValue stores one form value.
func (t *Tester) SetValue(name string, value any) {
	t.values[name] = value
}

// Submit records the current values for the current task and advances.
func (t *Tester) Submit(valid bool, errs []string) {
	step, task, ok := t.Current()
	if !ok {
		return
	}
	if errs == nil {
		errs = []string{}
	}
	t.responses[task.ID] = Response{
		TaskID:      task.ID,
		TaskName:    task.Name,
		TaskType:    task.Type,
		StepName:    step.Name,
		Values:      maps.Clone(t.values),
		SubmittedAt: t.now(),
		Valid:       valid,
		Errors:      errs,
	}
	t.Next()
}

// Skip records an empty response for the current task and advances.
func (t *Tester) Skip() {
	step, task, ok := t.Current()
	if !ok {
		return
	}
	t.responses[task.ID] = Response{
		TaskID:      task.ID,
		TaskName:    task.Name,
		TaskType:    task.Type,
		StepName:    step.Name,
		Values:      map[string]any{},
		SubmittedAt: t.now(),
		Valid:       true,
		Errors:      []string{},
		Skipped:     true,
	}
	t.Next()
}

// Next moves to the following task, crossing step boundaries. Moving past
// the last task enters the results phase and returns false.
func (t *Tester) Next() bool {
	if t.job == nil || len(t.job.Steps) == 0 {
		return false
	}
	step := t.job.Steps[t.cursor.Step]
	if t.cursor.Task < len(step.Tasks)-1 {
		t.move(Cursor{Step: t.cursor.Step, Task: t.cursor.Task + 1})
		return true
	}
	if t.cursor.Step < len(t.job.Steps)-1 {
		t.move(Cursor{Step: t.cursor.Step + 1})
		return true
	}
	t.phase = PhaseResults
	return false
}

// Prev moves to the preceding task, crossing step boundaries.
func (t *Tester) Prev() bool {
	if t.job == nil {
		return false
	}
	if t.cursor.Task > 0 {
		t.move(Cursor{Step: t.cursor.Step, Task: t.cursor.Task - 1})
		return true
	}
	if t.cursor.Step > 0 {
		prev := t.job.Steps[t.cursor.Step-1]
		t.move(Cursor{Step: t.cursor.Step - 1, Task: len(prev.Tasks) - 1})
		return true
	}
	return false
}

// GoTo jumps to a task and resets the values to its prefilled fields.
func (t *Tester) GoTo(stepIndex, taskIndex int) bool {
	c := Cursor{Step: stepIndex, Task: taskIndex}
	if _, _, ok := t.at(c); !ok {
		return false
	}
	t.move(c)
	return true
}

func (t *Tester) move(c Cursor) {
	t.cursor = c
	t.values = t.prefill(c)
}

// Finish enters the results phase.
func (t *Tester) Finish() {
	t.phase = PhaseResults
}

// Reset returns to an empty setup phase.
func (t *Tester) Reset() {
	t.clear()
}

// ContextFor builds the reference context of the task under c.
func (t *Tester) ContextFor(c Cursor) reference.Context {
	step, task, ok := t.at(c)
	if !ok {
		return reference.Context{}
	}
	return reference.BuildContext(t.job.Raw, step.Raw, task.Raw)
}

// Check evaluates the current task's form against the current values. Tasks
// without a form are always valid.
func (t *Tester) Check() (validation.Result, *conditional.State) {
	_, task, ok := t.Current()
	if !ok {
		return validation.Result{Valid: true}, conditional.NewState()
	}
	resolved, ok := t.ResolveForm(task.Type)
	if !ok {
		return validation.Result{Valid: true}, conditional.NewState()
	}
	state := t.engine.EvaluateForm(resolved.Form, t.values, t.ContextFor(t.cursor))
	return validation.Validate(resolved.Form.Fields, t.values, state), state
}

// SubmitChecked validates the current task, records the outcome and
// advances.
func (t *Tester) SubmitChecked() validation.Result {
	result, _ := t.Check()
	t.Submit(result.Valid, result.Messages())
	return result
}

// RunAutomatic submits every remaining task with its prefilled values and
// returns the summary. It starts the run when still in setup.
func (t *Tester) RunAutomatic() (Summary, error) {
	if t.phase != PhaseStepping {
		if err := t.Start(); err != nil {
			return Summary{}, err
		}
	}
	for t.phase == PhaseStepping {
		if _, _, ok := t.Current(); !ok {
			// a step without tasks
			if !t.Next() {
				break
			}
			continue
		}
		t.SubmitChecked()
	}
	t.phase = PhaseResults
	return t.Summary(), nil
}

// Response returns the response recorded for a task id.
func (t *Tester) Response(taskID string) (Response, bool) {
	r, ok := t.responses[taskID]
	return r, ok
}

// Responses returns the recorded responses in task order.
func (t *Tester) Responses() []Response {
	out := make([]Response, 0, len(t.responses))
	for _, entry := range t.tasks {
		if r, ok := t.responses[entry.Task.ID]; ok {
			out = append(out, r)
		}
	}
	return out
}

// Summary aggregates the run. Submitted counts answered tasks, Skipped the
// tasks skipped explicitly and Pending the tasks never reached.
type Summary struct {
	Total     int `json:"total"`
	Submitted int `json:"submitted"`
	Skipped   int `json:"skipped"`
	Pending   int `json:"pending"`
	Invalid   int `json:"invalid"`
}

// Summary counts the responses against the task list.
func (t *Tester) Summary() Summary {
	s := Summary{Total: len(t.tasks)}
	seen := make(map[string]struct{}, len(t.tasks))
	for _, entry := range t.tasks {
		if _, dup := seen[entry.Task.ID]; dup {
			continue
		}
		seen[entry.Task.ID] = struct{}{}
		r, ok := t.responses[entry.Task.ID]
		switch {
		case !ok:
			s.Pending++
		case r.Skipped:
			s.Skipped++
		default:
			s.Submitted++
			if !r.Valid {
				s.Invalid++
			}
		}
	}
	return s
}

// Export is the downloadable result of a run.
type Export struct {
	ExportedAt time.Time  `json:"exportedAt"`
	JobID      string     `json:"jobId"`
	Summary    Summary    `json:"summary"`
	Responses  []Response `json:"responses"`
}

// Export assembles the run result.
func (t *Tester) Export() Export {
	return Export{
		ExportedAt: t.now(),
		JobID:      t.job.ID(),
		Summary:    t.Summary(),
		Responses:  t.Responses(),
	}
}

// ExportJSON marshals Export with indentation.
func (t *Tester) ExportJSON() ([]byte, error) {
	return json.MarshalIndent(t.Export(), "", "  ")
}
