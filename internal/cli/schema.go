package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-formbuilder/pkg/codec"
	"github.com/goliatone/go-formbuilder/pkg/conditional"
	"github.com/goliatone/go-formbuilder/pkg/contract"
	"github.com/goliatone/go-formbuilder/pkg/model"
	"github.com/goliatone/go-formbuilder/pkg/reference"
	"github.com/goliatone/go-formbuilder/pkg/validation"
)

func decodeFile(cmd *cobra.Command, path string) (model.Form, error) {
	data, err := readInput(cmd, path)
	if err != nil {
		return model.Form{}, err
	}
	form, err := codec.Decode(data)
	if err != nil {
		return model.Form{}, fmt.Errorf("%s: %w", path, err)
	}
	return form, nil
}

type outlineRow struct {
	Path     string `json:"path"`
	Type     string `json:"type"`
	Title    string `json:"title,omitempty"`
	Required bool   `json:"required,omitempty"`
	Hidden   bool   `json:"hidden,omitempty"`
	Rules    int    `json:"rules,omitempty"`
}

func outline(form model.Form) []outlineRow {
	rows := []outlineRow{}
	_ = model.Walk(form.Fields, func(path []string, field *model.Field) error {
		rows = append(rows, outlineRow{
			Path:     strings.Join(append(append([]string(nil), path...), field.WidgetName), "."),
			Type:     string(field.Type),
			Title:    field.Title,
			Required: field.IsRequired,
			Hidden:   field.IsHidden,
			Rules:    len(field.Rules()),
		})
		return nil
	})
	return rows
}

func newDecodeCmd(app *App) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "decode <schema.json|->",
		Short: "Decode a schema document and print its field outline",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			form, err := decodeFile(cmd, args[0])
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd, outline(form))
			}
			engine, err := app.reportEngine()
			if err != nil {
				return err
			}
			md, err := engine.RenderForm(form)
			if err != nil {
				return err
			}
			return app.printMarkdown(cmd, md)
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the field outline as JSON")
	return cmd
}

func newNormalizeCmd(app *App) *cobra.Command {
	var (
		indent  string
		out     string
		inPlace bool
	)

	cmd := &cobra.Command{
		Use:   "normalize <schema.json|->",
		Short: "Rewrite a schema document in the canonical named shape",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := readInput(cmd, args[0])
			if err != nil {
				return err
			}
			normalized, err := codec.Normalize(data, indent)
			if err != nil {
				return fmt.Errorf("%s: %w", args[0], err)
			}
			normalized = append(normalized, '\n')
			target := out
			if inPlace {
				if args[0] == "-" {
					return fmt.Errorf("--write needs a file argument")
				}
				target = args[0]
			}
			if err := writeOutput(cmd, target, normalized); err != nil {
				return err
			}
			if target != "" && target != "-" {
				app.logger.Debug("normalized schema written", "path", target)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&indent, "indent", "  ", "Indentation; empty for compact output")
	cmd.Flags().StringVarP(&out, "out", "o", "", "Output file (default stdout)")
	cmd.Flags().BoolVarP(&inPlace, "write", "w", false, "Rewrite the input file")
	return cmd
}

func newValidateCmd(app *App) *cobra.Command {
	var (
		contextPath string
		asJSON      bool
	)

	cmd := &cobra.Command{
		Use:   "validate <schema.json> <values.json>",
		Short: "Validate form values against a schema, applying its rules",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			form, err := decodeFile(cmd, args[0])
			if err != nil {
				return err
			}
			values := map[string]any{}
			if err := readJSON(cmd, args[1], &values); err != nil {
				return err
			}
			var rctx reference.Context
			if contextPath != "" {
				if err := readJSON(cmd, contextPath, &rctx); err != nil {
					return err
				}
			}

			engine := conditional.New(conditional.WithLogger(app.logger))
			state := engine.EvaluateForm(form, values, rctx)
			result := validation.Validate(form.Fields, values, state)

			if asJSON {
				if err := writeJSON(cmd, result); err != nil {
					return err
				}
			} else {
				printResult(cmd, result.Valid, result.Messages())
			}
			if !result.Valid {
				return errFailed
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&contextPath, "context", "", "JSON file with job, step, task and stepLocation documents for $ references")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the result as JSON")
	return cmd
}

func newContractCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "contract <schema.json> [values.json]",
		Short: "Print the payload contract of a schema, or check values against it",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			form, err := decodeFile(cmd, args[0])
			if err != nil {
				return err
			}
			if len(args) == 1 {
				out, err := contract.MarshalSchema(form)
				if err != nil {
					return err
				}
				return writeOutput(cmd, "", append(out, '\n'))
			}

			values := map[string]any{}
			if err := readJSON(cmd, args[1], &values); err != nil {
				return err
			}
			issues, err := contract.Validate(form, values)
			if err != nil {
				return err
			}
			messages := make([]string, 0, len(issues))
			for _, issue := range issues {
				messages = append(messages, issue.String())
			}
			app.logger.Debug("contract checked", "form", form.Name, "issues", len(issues))
			printResult(cmd, len(issues) == 0, messages)
			if len(issues) > 0 {
				return errFailed
			}
			return nil
		},
	}
	return cmd
}

func printResult(cmd *cobra.Command, valid bool, messages []string) {
	p := newPalette(cmd.OutOrStdout())
	out := cmd.OutOrStdout()
	if valid {
		fmt.Fprintln(out, p.ok.Render("valid"))
		return
	}
	fmt.Fprintln(out, p.bad.Render(fmt.Sprintf("invalid (%d)", len(messages))))
	for _, msg := range messages {
		fmt.Fprintf(out, "  - %s\n", msg)
	}
}
