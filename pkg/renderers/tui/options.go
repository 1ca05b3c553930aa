package tui

import (
	"io"
	"log/slog"

	"github.com/goliatone/go-formbuilder/pkg/conditional"
)

// Theme captures optional message prefixes the filler applies to info and
// error lines.
type Theme struct {
	InfoPrefix  string
	ErrorPrefix string
}

// Option configures the Filler.
type Option func(*Filler)

// WithPromptDriver overrides the prompt driver used by the filler.
func WithPromptDriver(driver PromptDriver) Option {
	return func(f *Filler) {
		if driver != nil {
			f.driver = driver
		}
	}
}

// WithEngine sets the conditional engine used between answers.
func WithEngine(engine *conditional.Engine) Option {
	return func(f *Filler) {
		if engine != nil {
			f.engine = engine
		}
	}
}

// WithLogger sets the filler logger.
func WithLogger(logger *slog.Logger) Option {
	return func(f *Filler) {
		if logger != nil {
			f.logger = logger
		}
	}
}

// WithOutput sets where the default driver prints info lines.
func WithOutput(w io.Writer) Option {
	return func(f *Filler) {
		if w != nil {
			f.out = w
		}
	}
}

// WithTheme applies message prefixes.
func WithTheme(theme Theme) Option {
	return func(f *Filler) {
		f.theme = theme
	}
}
