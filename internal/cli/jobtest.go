package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-formbuilder/pkg/jobtester"
	"github.com/goliatone/go-formbuilder/pkg/renderers/tui"
	"github.com/goliatone/go-formbuilder/pkg/report"
)

func newJobtestCmd(app *App) *cobra.Command {
	var (
		jobPath    string
		defsPath   string
		auto       bool
		useProject bool
		reportPath string
		exportPath string
	)

	cmd := &cobra.Command{
		Use:   "jobtest",
		Short: "Step through a job's tasks with the forms their types resolve to",
		Long: "Tasks are filled interactively unless --auto submits every task with its\n" +
			"prefilled values. Project forms named like a task type take precedence\n" +
			"over the job's form definitions when --project is set.",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			opts := []jobtester.Option{jobtester.WithLogger(app.logger)}
			if useProject {
				store, closeStore, err := app.openProject(ctx)
				if err != nil {
					return err
				}
				defer func() {
					if err := closeStore(); err != nil {
						app.logger.Warn("close project store", "error", err)
					}
				}()
				opts = append(opts, jobtester.WithFormSource(store))
			}
			tester := jobtester.New(opts...)

			job, err := readInput(cmd, jobPath)
			if err != nil {
				return err
			}
			if err := tester.LoadJob(job); err != nil {
				return fmt.Errorf("%s: %w", jobPath, err)
			}
			if defsPath != "" {
				defs, err := readInput(cmd, defsPath)
				if err != nil {
					return err
				}
				if err := tester.LoadDefinitions(defs); err != nil {
					return fmt.Errorf("%s: %w", defsPath, err)
				}
			}

			var summary jobtester.Summary
			if auto {
				summary, err = tester.RunAutomatic()
			} else {
				filler := tui.New(tui.WithLogger(app.logger), tui.WithOutput(cmd.OutOrStdout()))
				summary, err = filler.RunTester(ctx, tester)
			}
			if err != nil {
				return err
			}
			app.logger.Info("job test finished",
				"job", tester.Job().ID(),
				"submitted", summary.Submitted,
				"skipped", summary.Skipped,
				"pending", summary.Pending,
				"invalid", summary.Invalid,
			)

			engine, err := app.reportEngine()
			if err != nil {
				return err
			}
			md, err := engine.RenderRun(report.BuildRun(tester, time.Now()))
			if err != nil {
				return err
			}
			if reportPath != "" {
				if err := writeOutput(cmd, reportPath, []byte(md)); err != nil {
					return err
				}
			}
			if exportPath != "" {
				data, err := tester.ExportJSON()
				if err != nil {
					return err
				}
				if err := writeOutput(cmd, exportPath, append(data, '\n')); err != nil {
					return err
				}
			}
			return app.printMarkdown(cmd, md)
		},
	}

	cmd.Flags().StringVar(&jobPath, "job", "", "Job JSON file")
	cmd.Flags().StringVar(&defsPath, "definitions", "", "Form definitions JSON file (data.form_schema.formDefinitions)")
	cmd.Flags().BoolVar(&auto, "auto", false, "Submit every task with its prefilled values")
	cmd.Flags().BoolVar(&useProject, "project", false, "Resolve task types against forms in the project store first")
	cmd.Flags().StringVar(&reportPath, "report", "", "Write the markdown report to a file")
	cmd.Flags().StringVar(&exportPath, "export", "", "Write the responses as JSON to a file")
	_ = cmd.MarkFlagRequired("job")
	return cmd
}
