package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formbuilder/pkg/codec"
	"github.com/goliatone/go-formbuilder/pkg/model"
)

func runCLI(t *testing.T, args ...string) (stdout []byte, stderr []byte, err error) {
	t.Helper()

	cmd := NewRootCmd()

	var outBuf bytes.Buffer
	var errBuf bytes.Buffer
	cmd.SetOut(&outBuf)
	cmd.SetErr(&errBuf)
	cmd.SetArgs(append([]string{"--style", "notty", "--log-level", "error", "--store-driver", "memory"}, args...))

	e := cmd.Execute()
	return outBuf.Bytes(), errBuf.Bytes(), e
}

func mustRun(t *testing.T, args ...string) string {
	t.Helper()
	stdout, stderr, err := runCLI(t, args...)
	if err != nil {
		t.Fatalf("command failed: formbuilder %v\nerr: %v\nstderr:\n%s\nstdout:\n%s", args, err, stderr, stdout)
	}
	return string(stdout)
}

func inspectionForm() model.Form {
	return model.Form{
		Name:  "Inspection",
		Title: "Trailer inspection",
		Fields: []model.Field{
			{Type: model.FieldTypeText, WidgetName: "Driver", Title: "Driver", IsRequired: true, Config: &model.InputConfig{}},
			{Type: model.FieldTypeInteger, WidgetName: "Odometer", Title: "Odometer", Config: &model.NumericConfig{Minimum: model.Literal(100.0)}},
			{Type: model.FieldTypeDropdown, WidgetName: "Damage", Title: "Damage", Config: &model.ChoiceConfig{Enum: model.SimpleEnum("Yes", "No")}},
			{Type: model.FieldTypeText, WidgetName: "Details", Title: "Details", IsHidden: true, Config: &model.InputConfig{}},
		},
		Rules: []model.Rule{{
			Expression: model.Expression{Kind: model.AllOf, Conditions: []model.Condition{{Operator: model.OpEqual, Left: "$this.Damage", Right: "Yes"}}},
			Then:       []model.Action{{Kind: model.ActionShow, Fields: []string{"Details"}}, {Kind: model.ActionSetRequired, Fields: []string{"Details"}}},
		}},
	}
}

func writeFile(t *testing.T, dir, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func writeSchema(t *testing.T, dir string) string {
	t.Helper()
	data, err := codec.EncodeIndent(inspectionForm(), "  ")
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	return writeFile(t, dir, "inspection.json", data)
}

func TestDecode(t *testing.T) {
	t.Parallel()

	schema := writeSchema(t, t.TempDir())

	var rows []outlineRow
	if err := json.Unmarshal([]byte(mustRun(t, "decode", "--json", schema)), &rows); err != nil {
		t.Fatalf("decode --json output: %v", err)
	}
	var paths []string
	for _, row := range rows {
		paths = append(paths, row.Path)
	}
	if diff := cmp.Diff([]string{"Driver", "Odometer", "Damage", "Details"}, paths); diff != "" {
		t.Fatalf("outline mismatch (-want +got):\n%s", diff)
	}
	if !rows[0].Required || !rows[3].Hidden {
		t.Fatalf("flags lost in outline: %+v", rows)
	}

	out := mustRun(t, "decode", schema)
	for _, want := range []string{"Trailer inspection", "Odometer", "Details"} {
		if !strings.Contains(out, want) {
			t.Fatalf("rendered outline missing %q:\n%s", want, out)
		}
	}
}

func TestDecode_Invalid(t *testing.T) {
	t.Parallel()

	path := writeFile(t, t.TempDir(), "broken.json", []byte("{"))
	if _, _, err := runCLI(t, "decode", path); err == nil || !strings.Contains(err.Error(), "broken.json") {
		t.Fatalf("expected a decode error naming the file, got %v", err)
	}
}

func TestNormalize(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	in := writeFile(t, dir, "quick.json", []byte(`{"type":"object","title":"Quick Form","properties":{"A":{"type":"string"}}}`))
	out := filepath.Join(dir, "out", "quick.json")
	mustRun(t, "normalize", in, "-o", out)

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("normalized output is not JSON: %v", err)
	}
	if _, ok := doc["QuickForm"]; !ok {
		t.Fatalf("expected the named shape, got keys %v", doc)
	}

	mustRun(t, "normalize", "--write", in)
	rewritten, err := os.ReadFile(in)
	if err != nil {
		t.Fatalf("read rewritten: %v", err)
	}
	if !bytes.Equal(rewritten, data) {
		t.Fatalf("in-place output differs from -o output")
	}
}

func TestValidate(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	schema := writeSchema(t, dir)

	bad := writeFile(t, dir, "bad.json", []byte(`{"Odometer":"12","Damage":"Yes"}`))
	stdout, _, err := runCLI(t, "validate", schema, bad)
	if !errors.Is(err, errFailed) {
		t.Fatalf("expected errFailed, got %v", err)
	}
	for _, want := range []string{"invalid (3)", "Driver is required", "Odometer must be at least 100", "Details is required"} {
		if !strings.Contains(string(stdout), want) {
			t.Fatalf("output missing %q:\n%s", want, stdout)
		}
	}

	good := writeFile(t, dir, "good.json", []byte(`{"Driver":"Ann","Odometer":"150","Damage":"No"}`))
	if out := mustRun(t, "validate", schema, good); !strings.Contains(out, "valid") {
		t.Fatalf("expected valid, got %s", out)
	}

	var result struct {
		Valid  bool `json:"valid"`
		Issues []struct {
			Field string `json:"field"`
		} `json:"issues"`
	}
	stdout, _, _ = runCLI(t, "validate", "--json", schema, bad)
	if err := json.Unmarshal(stdout, &result); err != nil {
		t.Fatalf("validate --json output: %v", err)
	}
	if result.Valid || len(result.Issues) != 3 {
		t.Fatalf("unexpected JSON result %+v", result)
	}
}

func TestContract(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	schema := writeSchema(t, dir)

	var doc struct {
		Type       string         `json:"type"`
		Properties map[string]any `json:"properties"`
		Required   []string       `json:"required"`
	}
	if err := json.Unmarshal([]byte(mustRun(t, "contract", schema)), &doc); err != nil {
		t.Fatalf("contract output: %v", err)
	}
	if doc.Type != "object" || len(doc.Properties) != 4 {
		t.Fatalf("unexpected contract %+v", doc)
	}

	bad := writeFile(t, dir, "bad.json", []byte(`{"Damage":"Maybe"}`))
	stdout, _, err := runCLI(t, "contract", schema, bad)
	if !errors.Is(err, errFailed) {
		t.Fatalf("expected errFailed, got %v\n%s", err, stdout)
	}
	if !strings.Contains(string(stdout), "invalid") {
		t.Fatalf("expected issues in output:\n%s", stdout)
	}
}

func TestLint(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeSchema(t, dir)
	pattern := filepath.Join(dir, "*.json")

	if out := mustRun(t, "lint", pattern); !strings.Contains(out, "1 files, no problems") {
		t.Fatalf("unexpected clean lint output:\n%s", out)
	}

	writeFile(t, dir, "broken.json", []byte("[1,2"))
	stdout, stderr, err := runCLI(t, "lint", pattern)
	if !errors.Is(err, errFailed) {
		t.Fatalf("expected errFailed, got %v", err)
	}
	if !strings.Contains(string(stdout), "2 files, 1 problems") {
		t.Fatalf("unexpected summary:\n%s", stdout)
	}
	if !strings.Contains(string(stderr), "broken.json: document -> ") {
		t.Fatalf("expected the violation on stderr:\n%s", stderr)
	}
}

func TestJobtest_Auto(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	testdata := filepath.Join("..", "..", "pkg", "jobtester", "testdata")
	exportPath := filepath.Join(dir, "export.json")
	reportPath := filepath.Join(dir, "report.md")

	out := mustRun(t, "jobtest", "--auto",
		"--job", filepath.Join(testdata, "job.json"),
		"--definitions", filepath.Join(testdata, "definitions.json"),
		"--export", exportPath,
		"--report", reportPath,
	)
	if !strings.Contains(out, "JOB-1") {
		t.Fatalf("report should name the job:\n%s", out)
	}

	data, err := os.ReadFile(exportPath)
	if err != nil {
		t.Fatalf("read export: %v", err)
	}
	var export struct {
		JobID   string `json:"jobId"`
		Summary struct {
			Total     int `json:"total"`
			Submitted int `json:"submitted"`
			Invalid   int `json:"invalid"`
		} `json:"summary"`
	}
	if err := json.Unmarshal(data, &export); err != nil {
		t.Fatalf("export is not JSON: %v", err)
	}
	if export.JobID != "JOB-1" || export.Summary.Total != 3 || export.Summary.Submitted != 3 || export.Summary.Invalid != 1 {
		t.Fatalf("unexpected export %+v", export)
	}

	md, err := os.ReadFile(reportPath)
	if err != nil {
		t.Fatalf("read report: %v", err)
	}
	if !strings.Contains(string(md), "Inspect") {
		t.Fatalf("report missing the Inspect task:\n%s", md)
	}
}

func TestForms(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	schema := writeSchema(t, dir)
	storeDir := filepath.Join(dir, "store")
	store := []string{"--store-driver", "file", "--store-path", storeDir}
	run := func(args ...string) string {
		t.Helper()
		return mustRun(t, append(append([]string(nil), store...), args...)...)
	}

	if out := run("forms", "list"); !strings.Contains(out, "no forms saved") {
		t.Fatalf("expected an empty store:\n%s", out)
	}
	if out := run("forms", "import", schema, "--folder", "Fleet/Checks"); !strings.Contains(out, "saved Inspection") {
		t.Fatalf("unexpected import output:\n%s", out)
	}

	list := run("forms", "list")
	for _, want := range []string{"Fleet/", "  Checks/", "    Inspection"} {
		if !strings.Contains(list, want) {
			t.Fatalf("list missing %q:\n%s", want, list)
		}
	}

	exported := filepath.Join(dir, "exported.json")
	run("forms", "export", "inspection", "-o", exported)
	data, err := os.ReadFile(exported)
	if err != nil {
		t.Fatalf("read export: %v", err)
	}
	form, err := codec.Decode(data)
	if err != nil {
		t.Fatalf("exported schema does not decode: %v", err)
	}
	if form.Name != "Inspection" || len(form.Fields) != 4 || len(form.Rules) != 1 {
		t.Fatalf("unexpected exported form %+v", form)
	}

	run("forms", "rm", "Inspection")
	if _, _, err := runCLI(t, append(append([]string(nil), store...), "forms", "export", "Inspection")...); err == nil {
		t.Fatalf("expected export of a removed form to fail")
	}
	if list := run("forms", "list"); strings.Contains(list, "Inspection") {
		t.Fatalf("removed form still listed:\n%s", list)
	}
}

func TestVersion(t *testing.T) {
	t.Parallel()

	if out := mustRun(t, "version"); !strings.HasPrefix(out, "formbuilder "+Version) {
		t.Fatalf("unexpected version output %q", out)
	}
}
