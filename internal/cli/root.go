package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-formbuilder/internal/config"
	"github.com/goliatone/go-formbuilder/internal/kvstore"
	"github.com/goliatone/go-formbuilder/pkg/project"
	"github.com/goliatone/go-formbuilder/pkg/report"
)

// Version is stamped at build time with -ldflags.
var Version = "dev"

// errFailed marks a command that ran but found problems; the details were
// already printed.
var errFailed = errors.New("problems found")

// App holds the global flags and the state built from them.
type App struct {
	ConfigPath  string
	LogLevel    string
	StoreDriver string
	StorePath   string
	Style       string

	cfg    *config.Config
	logger *slog.Logger
}

func NewRootCmd() *cobra.Command {
	app := &App{}

	cmd := &cobra.Command{
		Use:           "formbuilder",
		Short:         "Build, check and test workflow form schemas",
		SilenceUsage:  true,
		SilenceErrors: true,
		Example: strings.TrimSpace(`
  # Print the field outline of a schema
  formbuilder decode forms/inspection.json

  # Check every schema below the working directory
  formbuilder lint "forms/**/*.json"

  # Validate submitted values against a schema
  formbuilder validate forms/inspection.json values.json

  # Step through a job with its form definitions
  formbuilder jobtest --job job.json --definitions definitions.json

  # Keep forms in the local project store
  formbuilder forms import forms/inspection.json --folder Fleet/Checks
`),
	}

	cmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		return app.setup(cmd)
	}

	cmd.PersistentFlags().StringVar(&app.ConfigPath, "config", envOr("FORMBUILDER_CONFIG", ""), "Config file (layered over ~/.config/formbuilder/config.yaml and ./formbuilder.yaml)")
	cmd.PersistentFlags().StringVar(&app.LogLevel, "log-level", "", "Log level (debug|info|warn|error)")
	cmd.PersistentFlags().StringVar(&app.StoreDriver, "store-driver", "", "Project store driver (sqlite|file|memory)")
	cmd.PersistentFlags().StringVar(&app.StorePath, "store-path", "", "Project store database file or directory")
	cmd.PersistentFlags().StringVar(&app.Style, "style", "", "Terminal style for rendered markdown (auto|dark|light|notty)")

	cmd.AddCommand(newDecodeCmd(app))
	cmd.AddCommand(newNormalizeCmd(app))
	cmd.AddCommand(newLintCmd(app))
	cmd.AddCommand(newWatchCmd(app))
	cmd.AddCommand(newValidateCmd(app))
	cmd.AddCommand(newContractCmd(app))
	cmd.AddCommand(newJobtestCmd(app))
	cmd.AddCommand(newFormsCmd(app))
	cmd.AddCommand(newVersionCmd())

	return cmd
}

func (app *App) setup(cmd *cobra.Command) error {
	cfg, err := config.NewLoader(slog.New(slog.NewTextHandler(io.Discard, nil))).Load(app.ConfigPath)
	if err != nil {
		return err
	}
	if app.LogLevel != "" {
		cfg.Log.Level = app.LogLevel
	}
	if app.StoreDriver != "" {
		cfg.Store.Driver = app.StoreDriver
	}
	if app.StorePath != "" {
		cfg.Store.Path = app.StorePath
	}
	if app.Style != "" {
		cfg.Report.Style = app.Style
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	logger, err := config.NewLogger(cmd.ErrOrStderr(), cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return err
	}
	app.cfg = cfg
	app.logger = logger
	return nil
}

// openProject opens the configured project store. The returned close
// function flushes pending writes before closing the backend.
func (app *App) openProject(ctx context.Context) (*project.Store, func() error, error) {
	kv, err := kvstore.Open(ctx, app.cfg.Store.Driver, app.cfg.Store.Path)
	if err != nil {
		return nil, nil, err
	}
	p := project.NewPersister(kv,
		project.WithDebounce(app.cfg.Store.Debounce),
		project.WithPersisterLogger(app.logger),
	)
	store := project.Open(ctx, p, project.WithLogger(app.logger))
	closeFn := func() error {
		return errors.Join(p.Close(ctx), kv.Close())
	}
	return store, closeFn, nil
}

func (app *App) reportEngine() (*report.Engine, error) {
	return report.NewEngine(report.WithBaseDir(app.cfg.Report.Templates))
}

// printMarkdown renders md for the terminal in the configured style.
func (app *App) printMarkdown(cmd *cobra.Command, md string) error {
	_, err := fmt.Fprintln(cmd.OutOrStdout(), report.Terminal(md, app.cfg.Report.Style, app.cfg.Report.Width))
	return err
}

func envOr(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}
