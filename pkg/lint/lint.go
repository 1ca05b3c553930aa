// Package lint checks form schema documents for problems the decoder
// tolerates, such as duplicate widget names, malformed references, patterns
// that do not compile, unknown time zones and rules pointing at widgets that
// do not exist.
package lint

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/dlclark/regexp2"

	"github.com/goliatone/go-formbuilder/pkg/codec"
	"github.com/goliatone/go-formbuilder/pkg/model"
	"github.com/goliatone/go-formbuilder/pkg/reference"
)

// DefaultPattern matches every JSON document below the working directory.
const DefaultPattern = "**/*.json"

// ErrNoFiles is returned by Files when no pattern matched a file.
var ErrNoFiles = errors.New("lint: no files matched")

// Violation is one problem found in a document.
type Violation struct {
	File     string `json:"file"`
	Location string `json:"location"`
	Message  string `json:"message"`
}

func (v Violation) String() string {
	return fmt.Sprintf("%s: %s -> %s", v.File, v.Location, v.Message)
}

var knownRoots = map[string]struct{}{
	reference.RootJob:          {},
	reference.RootStep:         {},
	reference.RootTask:         {},
	reference.RootStepLocation: {},
	reference.RootThis:         {},
}

// Files expands glob patterns into a sorted, de-duplicated file list. Plain
// paths pass through when they exist.
func Files(patterns ...string) ([]string, error) {
	if len(patterns) == 0 {
		patterns = []string{DefaultPattern}
	}
	seen := map[string]struct{}{}
	var files []string
	for _, pattern := range patterns {
		matches, err := doublestar.FilepathGlob(pattern, doublestar.WithFilesOnly())
		if err != nil {
			return nil, fmt.Errorf("lint: pattern %q: %w", pattern, err)
		}
		for _, match := range matches {
			clean := filepath.Clean(match)
			if _, dup := seen[clean]; dup {
				continue
			}
			seen[clean] = struct{}{}
			files = append(files, clean)
		}
	}
	if len(files) == 0 {
		return nil, ErrNoFiles
	}
	sort.Strings(files)
	return files, nil
}

// Paths lints every file and returns the violations sorted by file, then
// location, then message. A file that cannot be read is an error.
func Paths(files []string) ([]Violation, error) {
	var out []Violation
	for _, file := range files {
		data, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("lint: read %s: %w", file, err)
		}
		out = append(out, Document(file, data)...)
	}
	Sort(out)
	return out, nil
}

// Sort orders violations by file, location and message.
func Sort(violations []Violation) {
	sort.Slice(violations, func(i, j int) bool {
		if violations[i].File == violations[j].File {
			if violations[i].Location == violations[j].Location {
				return violations[i].Message < violations[j].Message
			}
			return violations[i].Location < violations[j].Location
		}
		return violations[i].File < violations[j].File
	})
}

// Document lints one schema document.
func Document(file string, data []byte) []Violation {
	form, err := codec.Decode(data)
	if err != nil {
		return []Violation{{File: file, Location: "document", Message: err.Error()}}
	}
	return Form(file, form)
}

// Form lints a decoded form.
func Form(file string, form model.Form) []Violation {
	l := &linter{file: file}
	if err := model.CheckNames(form.Fields); err != nil {
		l.add("fields", err.Error())
	}
	if err := model.CheckRefs(form.Fields); err != nil {
		l.add("fields", err.Error())
	}

	names := map[string]struct{}{}
	_ = model.Walk(form.Fields, func(_ []string, field *model.Field) error {
		names[field.WidgetName] = struct{}{}
		return nil
	})
	l.names = names

	_ = model.Walk(form.Fields, func(path []string, field *model.Field) error {
		at := strings.Join(append(append([]string(nil), path...), field.WidgetName), ".")
		l.field(at, *field)
		return nil
	})
	l.rules("switchOperators", form.Rules)
	Sort(l.out)
	return l.out
}

type linter struct {
	file  string
	names map[string]struct{}
	out   []Violation
}

func (l *linter) add(location, message string) {
	l.out = append(l.out, Violation{File: l.file, Location: location, Message: message})
}

func (l *linter) field(at string, field model.Field) {
	if !field.Type.Valid() {
		l.add(at, fmt.Sprintf("unknown field type %q", field.Type))
	}
	if pattern := patternOf(field); pattern != "" {
		if _, err := regexp2.Compile(pattern, regexp2.ECMAScript); err != nil {
			l.add(at+".pattern", fmt.Sprintf("pattern %q does not compile: %v", pattern, err))
		}
	}
	if cfg, ok := field.Config.(*model.DateConfig); ok && cfg.TimeZoneID != "" && !reference.IsReference(cfg.TimeZoneID) {
		if _, err := time.LoadLocation(cfg.TimeZoneID); err != nil {
			l.add(at+".timeZoneId", fmt.Sprintf("unknown time zone %q", cfg.TimeZoneID))
		}
	}
	for i, toggle := range field.Toggles() {
		loc := fmt.Sprintf("%s.toggles[%d]", at, i)
		for _, target := range toggle.Targets {
			l.target(loc, target)
		}
		if ref := toggle.Condition.ReferenceToWidget; ref != "" {
			l.target(loc, ref)
		}
	}
	if rules := field.Rules(); len(rules) > 0 {
		l.rules(at+".switchOperators", rules)
	}
}

func (l *linter) rules(at string, rules []model.Rule) {
	for i, rule := range rules {
		l.rule(fmt.Sprintf("%s[%d]", at, i), rule)
	}
}

func (l *linter) rule(at string, rule model.Rule) {
	if len(rule.Expression.Conditions) == 0 {
		l.add(at, "rule has no conditions and never matches")
	}
	for i, cond := range rule.Expression.Conditions {
		loc := fmt.Sprintf("%s.conditions[%d]", at, i)
		l.operand(loc, cond.Left)
		l.operand(loc, cond.Right)
	}
	l.actions(at+".thenActions", rule.Then)
	l.actions(at+".elseActions", rule.Else)
	if rule.ElseRule != nil {
		l.rule(at+".elseOperator", *rule.ElseRule)
	}
}

func (l *linter) actions(at string, actions []model.Action) {
	for i, action := range actions {
		loc := fmt.Sprintf("%s[%d]", at, i)
		for _, name := range action.Fields {
			l.target(loc, name)
		}
		for _, value := range action.Values {
			l.target(loc, value.Widget)
			l.operand(loc, value.Value)
		}
		for _, enum := range action.Enums {
			l.target(loc, enum.Widget)
			if enum.Options != nil {
				l.operand(loc, enum.Options.Reference())
			}
		}
	}
}

func (l *linter) target(at, name string) {
	if name == "" {
		l.add(at, "empty widget target")
		return
	}
	if _, ok := l.names[name]; !ok {
		l.add(at, fmt.Sprintf("unknown widget %q", name))
	}
}

func (l *linter) operand(at, value string) {
	if !reference.IsReference(value) {
		return
	}
	root, rest, _ := strings.Cut(value, ".")
	if _, ok := knownRoots[root]; !ok {
		l.add(at, fmt.Sprintf("unknown reference root %q", root))
		return
	}
	if root == reference.RootThis {
		name, _, _ := strings.Cut(rest, ".")
		if name == "" {
			l.add(at, "$this needs a widget name")
			return
		}
		l.target(at, name)
	}
}

func patternOf(field model.Field) string {
	switch cfg := field.Config.(type) {
	case *model.InputConfig:
		return cfg.Pattern
	case *model.NumericConfig:
		return cfg.Pattern
	}
	return ""
}
