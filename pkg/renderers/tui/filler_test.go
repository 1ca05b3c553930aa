package tui

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formbuilder/pkg/jobtester"
	"github.com/goliatone/go-formbuilder/pkg/model"
	"github.com/goliatone/go-formbuilder/pkg/reference"
)

type stubDriver struct {
	inputs       []string
	selectIdx    []int
	confirm      []bool
	prompts      []string
	infoMessages []string
	inputPos     int
	selectPos    int
	confirmPos   int
}

func (s *stubDriver) Input(_ context.Context, cfg InputConfig) (string, error) {
	s.prompts = append(s.prompts, cfg.Message)
	if s.inputPos >= len(s.inputs) {
		return "", errors.New("no input scripted")
	}
	val := s.inputs[s.inputPos]
	s.inputPos++
	return val, nil
}

func (s *stubDriver) Confirm(_ context.Context, cfg ConfirmConfig) (bool, error) {
	s.prompts = append(s.prompts, cfg.Message)
	if s.confirmPos >= len(s.confirm) {
		return false, errors.New("no confirm scripted")
	}
	val := s.confirm[s.confirmPos]
	s.confirmPos++
	return val, nil
}

func (s *stubDriver) Select(_ context.Context, cfg SelectConfig) (int, error) {
	s.prompts = append(s.prompts, cfg.Message)
	if s.selectPos >= len(s.selectIdx) {
		return -1, errors.New("no select scripted")
	}
	val := s.selectIdx[s.selectPos]
	s.selectPos++
	return val, nil
}

func (s *stubDriver) Info(_ context.Context, msg string) error {
	s.infoMessages = append(s.infoMessages, msg)
	return nil
}

var quiet = slog.New(slog.NewTextHandler(io.Discard, nil))

func newFiller(driver *stubDriver) *Filler {
	return New(WithPromptDriver(driver), WithLogger(quiet))
}

func TestFill_RetriesInvalidAnswers(t *testing.T) {
	t.Parallel()

	form := model.Form{Name: "Inspection", Fields: []model.Field{
		{Type: model.FieldTypeText, WidgetName: "Driver", Title: "<b>Driver</b> &amp; co", IsRequired: true, Config: &model.InputConfig{}},
		{Type: model.FieldTypeInteger, WidgetName: "Odometer", Title: "Odometer", Config: &model.NumericConfig{Minimum: model.Literal(100.0)}},
	}}
	driver := &stubDriver{inputs: []string{"  ", "Ann", "12", "150"}}

	result, err := newFiller(driver).Fill(context.Background(), form, nil, reference.Context{})
	if err != nil {
		t.Fatalf("Fill: %v", err)
	}
	if diff := cmp.Diff(map[string]any{"Driver": "Ann", "Odometer": "150"}, result.Values); diff != "" {
		t.Fatalf("values mismatch (-want +got):\n%s", diff)
	}
	if !result.Validation.Valid {
		t.Fatalf("expected a valid result, got %v", result.Validation.Messages())
	}
	wantInfo := []string{"Driver & co is required", "Odometer must be at least 100"}
	if diff := cmp.Diff(wantInfo, driver.infoMessages); diff != "" {
		t.Fatalf("info mismatch (-want +got):\n%s", diff)
	}
	if driver.prompts[0] != "Driver & co *" {
		t.Fatalf("unexpected sanitized label %q", driver.prompts[0])
	}
}

func damageForm() model.Form {
	return model.Form{Name: "Damage", Fields: []model.Field{
		{Type: model.FieldTypeDropdown, WidgetName: "Damage", IsRequired: true, Config: &model.ChoiceConfig{
			Enum: model.SimpleEnum("Yes", "No"),
			Toggles: []model.Toggle{{
				Condition: model.ToggleCondition{Kind: model.ToggleEqualTo, Value: "Yes"},
				Targets:   []string{"Details"},
			}},
		}},
		{Type: model.FieldTypeText, WidgetName: "Details", IsHidden: true, Config: &model.InputConfig{}},
		{Type: model.FieldTypeCheckbox, WidgetName: "Photos", Config: &model.CheckboxConfig{}},
	}}
}

func TestFill_RevealsFieldsAfterAnswers(t *testing.T) {
	t.Parallel()

	driver := &stubDriver{selectIdx: []int{0}, inputs: []string{"Dent on the door"}, confirm: []bool{true}}
	result, err := newFiller(driver).Fill(context.Background(), damageForm(), nil, reference.Context{})
	if err != nil {
		t.Fatalf("Fill: %v", err)
	}
	want := map[string]any{"Damage": "Yes", "Details": "Dent on the door", "Photos": true}
	if diff := cmp.Diff(want, result.Values); diff != "" {
		t.Fatalf("values mismatch (-want +got):\n%s", diff)
	}

	driver = &stubDriver{selectIdx: []int{1}, confirm: []bool{false}}
	result, err = newFiller(driver).Fill(context.Background(), damageForm(), nil, reference.Context{})
	if err != nil {
		t.Fatalf("Fill: %v", err)
	}
	want = map[string]any{"Damage": "No", "Photos": false}
	if diff := cmp.Diff(want, result.Values); diff != "" {
		t.Fatalf("hidden field should not be asked (-want +got):\n%s", diff)
	}
}

func TestFill_OptionalChoiceCanStayEmpty(t *testing.T) {
	t.Parallel()

	form := model.Form{Fields: []model.Field{
		{Type: model.FieldTypeRadio, WidgetName: "Shift", Config: &model.ChoiceConfig{Enum: model.SimpleEnumRef("$job.shifts")}},
	}}
	rctx := reference.BuildContext(map[string]any{"shifts": []any{"Day", map[string]any{"label": "Night", "value": "N"}}}, nil, nil)

	driver := &stubDriver{selectIdx: []int{1}}
	result, err := newFiller(driver).Fill(context.Background(), form, nil, rctx)
	if err != nil {
		t.Fatalf("Fill: %v", err)
	}
	if got := result.Values["Shift"]; got != "N" {
		t.Fatalf("Shift = %v, want N", got)
	}

	driver = &stubDriver{selectIdx: []int{2}}
	result, err = newFiller(driver).Fill(context.Background(), form, map[string]any{"Shift": "Day"}, rctx)
	if err != nil {
		t.Fatalf("Fill: %v", err)
	}
	if _, ok := result.Values["Shift"]; ok {
		t.Fatalf("choosing (none) should clear the value, got %v", result.Values)
	}
}

func TestFill_RepeatingGroup(t *testing.T) {
	t.Parallel()

	form := model.Form{Fields: []model.Field{
		{Type: model.FieldTypeArray, WidgetName: "Seals", Title: "Seals", Config: &model.ArrayConfig{
			MinLength: model.Literal(1.0),
			MaxLength: model.Literal(2.0),
			Children: []model.Field{
				{Type: model.FieldTypeText, WidgetName: "Seal", Config: &model.InputConfig{}},
			},
		}},
	}}
	driver := &stubDriver{inputs: []string{"S1", "S2"}, confirm: []bool{true}}
	result, err := newFiller(driver).Fill(context.Background(), form, nil, reference.Context{})
	if err != nil {
		t.Fatalf("Fill: %v", err)
	}
	want := []any{map[string]any{"Seal": "S1"}, map[string]any{"Seal": "S2"}}
	if diff := cmp.Diff(want, result.Values["Seals"]); diff != "" {
		t.Fatalf("items mismatch (-want +got):\n%s", diff)
	}
	if driver.confirmPos != 1 {
		t.Fatalf("the maximum should stop the loop without asking again")
	}
}

func TestFill_ShowsInstructionsAndAborts(t *testing.T) {
	t.Parallel()

	form := model.Form{Fields: []model.Field{
		{Type: model.FieldTypeInstruction, WidgetName: "Intro", Description: "<p>Check   the <i>tires</i></p>"},
		{Type: model.FieldTypeText, WidgetName: "Notes", Config: &model.InputConfig{}},
	}}
	driver := &stubDriver{}
	_, err := newFiller(driver).Fill(context.Background(), form, nil, reference.Context{})
	if err == nil {
		t.Fatalf("expected the driver error to surface")
	}
	if diff := cmp.Diff([]string{"Check the tires"}, driver.infoMessages); diff != "" {
		t.Fatalf("info mismatch (-want +got):\n%s", diff)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := newFiller(driver).Fill(ctx, form, nil, reference.Context{}); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func loadTester(t *testing.T) *jobtester.Tester {
	t.Helper()
	read := func(name string) []byte {
		data, err := os.ReadFile(filepath.Join("..", "..", "jobtester", "testdata", name))
		if err != nil {
			t.Fatalf("read %s: %v", name, err)
		}
		return data
	}
	tester := jobtester.New(jobtester.WithLogger(quiet))
	if err := tester.LoadJob(read("job.json")); err != nil {
		t.Fatalf("LoadJob: %v", err)
	}
	if err := tester.LoadDefinitions(read("definitions.json")); err != nil {
		t.Fatalf("LoadDefinitions: %v", err)
	}
	return tester
}

func TestRunTester(t *testing.T) {
	t.Parallel()

	tester := loadTester(t)
	driver := &stubDriver{
		// fill Arrive, fill Inspect, skip Proof
		selectIdx: []int{0, 0, 1},
		inputs:    []string{"on time", "150"},
	}
	summary, err := newFiller(driver).RunTester(context.Background(), tester)
	if err != nil {
		t.Fatalf("RunTester: %v", err)
	}
	want := jobtester.Summary{Total: 3, Submitted: 2, Skipped: 1}
	if diff := cmp.Diff(want, summary); diff != "" {
		t.Fatalf("summary mismatch (-want +got):\n%s", diff)
	}
	if tester.Phase() != jobtester.PhaseResults {
		t.Fatalf("phase = %v, want results", tester.Phase())
	}
	inspect, ok := tester.Response("t2")
	if !ok || inspect.Values["Odometer"] != "150" || !inspect.Valid {
		t.Fatalf("unexpected inspect response %+v", inspect)
	}
	if !strings.HasPrefix(driver.infoMessages[0], "[1/3] Pickup: Arrive") {
		t.Fatalf("unexpected header %q", driver.infoMessages[0])
	}
}

func TestRunTester_BackAndFinish(t *testing.T) {
	t.Parallel()

	tester := loadTester(t)
	driver := &stubDriver{selectIdx: []int{2, 1, 3}}
	summary, err := newFiller(driver).RunTester(context.Background(), tester)
	if err != nil {
		t.Fatalf("RunTester: %v", err)
	}
	want := jobtester.Summary{Total: 3, Skipped: 1, Pending: 2}
	if diff := cmp.Diff(want, summary); diff != "" {
		t.Fatalf("summary mismatch (-want +got):\n%s", diff)
	}
	if !contains(driver.infoMessages, "Already at the first task") {
		t.Fatalf("expected a notice when going back from the first task, got %v", driver.infoMessages)
	}
}

func contains(list []string, want string) bool {
	for _, item := range list {
		if item == want {
			return true
		}
	}
	return false
}
