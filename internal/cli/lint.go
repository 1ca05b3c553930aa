package cli

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-formbuilder/pkg/lint"
)

func newLintCmd(app *App) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "lint [pattern...]",
		Short: "Check schema documents for broken names, references, patterns and rule targets",
		Long:  "Patterns are doublestar globs; the default is " + lint.DefaultPattern + ".",
		RunE: func(cmd *cobra.Command, args []string) error {
			files, err := lint.Files(args...)
			if err != nil {
				return err
			}
			violations, err := lint.Paths(files)
			if err != nil {
				return err
			}
			app.logger.Debug("lint finished", "files", len(files), "violations", len(violations))
			if asJSON {
				if err := writeJSON(cmd, map[string]any{"files": files, "violations": violations}); err != nil {
					return err
				}
			} else {
				printViolations(cmd, len(files), violations)
			}
			if len(violations) > 0 {
				return errFailed
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print files and violations as JSON")
	return cmd
}

func newWatchCmd(app *App) *cobra.Command {
	var debounce time.Duration

	cmd := &cobra.Command{
		Use:   "watch [pattern...]",
		Short: "Lint schema documents again whenever they change",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return runWatch(ctx, cmd, app, args, debounce)
		},
	}

	cmd.Flags().DurationVar(&debounce, "debounce", lint.DefaultDebounce, "Quiet period after the last change")
	return cmd
}

func runWatch(ctx context.Context, cmd *cobra.Command, app *App, patterns []string, debounce time.Duration) error {
	w := lint.NewWatcher(patterns, lint.WithDebounce(debounce), lint.WithLogger(app.logger))
	p := newPalette(cmd.OutOrStdout())
	return w.Run(ctx, func(r lint.Report) {
		fmt.Fprintln(cmd.OutOrStdout(), p.muted.Render(time.Now().Format("15:04:05")))
		if r.Err != nil {
			fmt.Fprintln(cmd.OutOrStdout(), p.bad.Render(r.Err.Error()))
			return
		}
		printViolations(cmd, len(r.Files), r.Violations)
	})
}

func printViolations(cmd *cobra.Command, files int, violations []lint.Violation) {
	p := newPalette(cmd.OutOrStdout())
	for _, v := range violations {
		fmt.Fprintln(cmd.ErrOrStderr(), v.String())
	}
	if len(violations) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), p.ok.Render(fmt.Sprintf("%d files, no problems", files)))
		return
	}
	fmt.Fprintln(cmd.OutOrStdout(), p.bad.Render(fmt.Sprintf("%d files, %d problems", files, len(violations))))
}
