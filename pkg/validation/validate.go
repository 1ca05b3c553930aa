// Package validation checks submitted form values against the visible fields
// of a form tree.
package validation

import (
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/dlclark/regexp2"

	"github.com/goliatone/go-formbuilder/pkg/conditional"
	"github.com/goliatone/go-formbuilder/pkg/model"
	"github.com/goliatone/go-formbuilder/pkg/reference"
)

// MatchTimeout bounds a single pattern match.
const MatchTimeout = 100 * time.Millisecond

// Issue is one validation failure.
type Issue struct {
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}

// Result captures the outcome of a validation pass.
type Result struct {
	Valid  bool    `json:"valid"`
	Issues []Issue `json:"issues,omitempty"`
}

// Messages returns the issue messages in order.
func (r Result) Messages() []string {
	out := make([]string, 0, len(r.Issues))
	for _, issue := range r.Issues {
		out = append(out, issue.Message)
	}
	return out
}

// Validate checks values against the visible input fields. Object fields
// validate their children against the nested map stored under the object's
// name, falling back to values itself. Array items are not validated.
// Issue.Field holds the dotted path of the field, such as "Trailer.Seal".
func Validate(fields []model.Field, values map[string]any, state *conditional.State) Result {
	c := &collector{seen: make(map[string]struct{})}
	for _, field := range fields {
		if !conditional.IsVisible(field, state) {
			continue
		}
		validateField("", field, values, state, c)
	}
	return Result{Valid: len(c.issues) == 0, Issues: c.issues}
}

type collector struct {
	issues []Issue
	seen   map[string]struct{}
}

// add records an issue. A message repeated for the same field path is
// recorded once; distinct fields always get their own issue.
func (c *collector) add(field, message string) {
	message = strings.TrimSpace(message)
	if message == "" {
		return
	}
	key := field + "\x00" + message
	if _, ok := c.seen[key]; ok {
		return
	}
	c.seen[key] = struct{}{}
	c.issues = append(c.issues, Issue{Field: field, Message: message})
}

func validateField(prefix string, field model.Field, values map[string]any, state *conditional.State, c *collector) {
	if !field.Type.IsInput() {
		return
	}
	value := values[field.WidgetName]
	label := field.Label()
	path := prefix + field.WidgetName

	if field.Type == model.FieldTypeObject {
		nested, ok := value.(map[string]any)
		if !ok {
			nested = values
		}
		for _, child := range field.Children() {
			if !conditional.IsVisible(child, state) {
				continue
			}
			validateField(path+".", child, nested, state, c)
		}
		return
	}

	if conditional.IsRequired(field, state) && isBlank(value) {
		c.add(path, fmt.Sprintf("%s is required", label))
		return
	}
	if value == nil || value == "" {
		return
	}

	text := reference.Stringify(value)
	minLength, maxLength := lengthBounds(field)
	if n, ok := minLength.Get(); ok && float64(utf8.RuneCountInString(text)) < n {
		c.add(path, fmt.Sprintf("%s must be at least %s characters", label, format(n)))
	}
	if n, ok := maxLength.Get(); ok && field.Type != model.FieldTypeArray && float64(utf8.RuneCountInString(text)) > n {
		c.add(path, fmt.Sprintf("%s must be at most %s characters", label, format(n)))
	}

	if cfg, ok := field.Config.(*model.NumericConfig); ok {
		checkRange(path, label, text, cfg, c)
	}

	if pattern, message := patternOf(field); pattern != "" {
		re, ok := compile(pattern)
		if !ok {
			return
		}
		matched, err := re.MatchString(text)
		if err != nil {
			return
		}
		if !matched {
			if message == "" {
				message = fmt.Sprintf("%s does not match the required pattern", label)
			}
			c.add(path, message)
		}
	}
}

func checkRange(name, label, text string, cfg *model.NumericConfig, c *collector) {
	num, err := strconv.ParseFloat(strings.TrimSpace(text), 64)
	if err != nil {
		return
	}
	if lo, ok := cfg.Minimum.Get(); ok {
		if cfg.ExclusiveMinimum && num <= lo {
			c.add(name, fmt.Sprintf("%s must be greater than %s", label, format(lo)))
		} else if !cfg.ExclusiveMinimum && num < lo {
			c.add(name, fmt.Sprintf("%s must be at least %s", label, format(lo)))
		}
	}
	if hi, ok := cfg.Maximum.Get(); ok {
		if cfg.ExclusiveMaximum && num >= hi {
			c.add(name, fmt.Sprintf("%s must be less than %s", label, format(hi)))
		} else if !cfg.ExclusiveMaximum && num > hi {
			c.add(name, fmt.Sprintf("%s must be at most %s", label, format(hi)))
		}
	}
}

// lengthBounds returns the literal length bounds of a field. Reference
// bounds are not resolved here and are ignored.
func lengthBounds(field model.Field) (*model.Ref[float64], *model.Ref[float64]) {
	switch cfg := field.Config.(type) {
	case *model.InputConfig:
		return cfg.MinLength, cfg.MaxLength
	case *model.NumericConfig:
		return cfg.MinLength, cfg.MaxLength
	case *model.ArrayConfig:
		return cfg.MinLength, cfg.MaxLength
	}
	return nil, nil
}

func patternOf(field model.Field) (string, string) {
	switch cfg := field.Config.(type) {
	case *model.InputConfig:
		return cfg.Pattern, cfg.PatternErrorMessage
	case *model.NumericConfig:
		return cfg.Pattern, cfg.PatternErrorMessage
	}
	return "", ""
}

func isBlank(value any) bool {
	switch v := value.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(v) == ""
	}
	return false
}

func format(n float64) string {
	return reference.Stringify(n)
}

var patterns sync.Map

type compiled struct {
	re *regexp2.Regexp
}

// compile returns the cached ECMAScript regexp for pattern. Patterns that do
// not compile are cached as misses and skipped by callers.
func compile(pattern string) (*regexp2.Regexp, bool) {
	if cached, ok := patterns.Load(pattern); ok {
		entry := cached.(compiled)
		return entry.re, entry.re != nil
	}
	re, err := regexp2.Compile(pattern, regexp2.ECMAScript)
	if err != nil {
		patterns.Store(pattern, compiled{})
		return nil, false
	}
	re.MatchTimeout = MatchTimeout
	patterns.Store(pattern, compiled{re: re})
	return re, true
}
