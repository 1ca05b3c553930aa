package tui

import (
	"context"
	"fmt"

	"github.com/goliatone/go-formbuilder/pkg/jobtester"
)

// Task menu choices, in display order.
const (
	choiceFill   = "Fill and submit"
	choiceSkip   = "Skip"
	choiceBack   = "Back"
	choiceFinish = "Finish"
)

var taskChoices = []string{choiceFill, choiceSkip, choiceBack, choiceFinish}

// RunTester steps through a job test interactively. Each task offers a menu
// to fill it, skip it, go back or finish early. Tasks whose type resolves to
// no form are submitted with their prefilled values.
func (f *Filler) RunTester(ctx context.Context, t *jobtester.Tester) (jobtester.Summary, error) {
	if ctx == nil {
		return jobtester.Summary{}, ErrNoContext
	}
	if t.Phase() != jobtester.PhaseStepping {
		if err := t.Start(); err != nil {
			return jobtester.Summary{}, err
		}
	}
	total := len(t.Tasks())
	for t.Phase() == jobtester.PhaseStepping {
		if err := ctx.Err(); err != nil {
			return jobtester.Summary{}, err
		}
		step, task, ok := t.Current()
		if !ok {
			if !t.Next() {
				break
			}
			continue
		}
		header := fmt.Sprintf("[%d/%d] %s: %s (%s)", t.Index()+1, total, plainText(step.Name), plainText(task.Name), task.Type)
		if err := f.info(ctx, header); err != nil {
			return jobtester.Summary{}, err
		}
		idx, err := f.driver.Select(ctx, SelectConfig{Message: "Action", Options: taskChoices})
		if err != nil {
			return jobtester.Summary{}, err
		}
		switch taskChoices[clamp(idx, len(taskChoices))] {
		case choiceFill:
			if err := f.fillTask(ctx, t, task); err != nil {
				return jobtester.Summary{}, err
			}
		case choiceSkip:
			t.Skip()
		case choiceBack:
			if !t.Prev() {
				if err := f.info(ctx, "Already at the first task"); err != nil {
					return jobtester.Summary{}, err
				}
			}
		case choiceFinish:
			t.Finish()
		}
	}
	return t.Summary(), nil
}

func (f *Filler) fillTask(ctx context.Context, t *jobtester.Tester, task jobtester.Task) error {
	resolved, ok := t.ResolveForm(task.Type)
	if !ok {
		if err := f.info(ctx, fmt.Sprintf("No form for task type %q, submitting prefilled values", task.Type)); err != nil {
			return err
		}
		t.SubmitChecked()
		return nil
	}
	result, err := f.Fill(ctx, resolved.Form, t.Values(), t.ContextFor(t.Cursor()))
	if err != nil {
		return err
	}
	for name := range t.Values() {
		if _, kept := result.Values[name]; !kept {
			t.SetValue(name, "")
		}
	}
	for name, value := range result.Values {
		t.SetValue(name, value)
	}
	checked := t.SubmitChecked()
	for _, msg := range checked.Messages() {
		if err := f.problem(ctx, msg); err != nil {
			return err
		}
	}
	return nil
}

func clamp(i, n int) int {
	if i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}
