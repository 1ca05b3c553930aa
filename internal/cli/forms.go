package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-formbuilder/pkg/codec"
	"github.com/goliatone/go-formbuilder/pkg/project"
)

func newFormsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "forms",
		Short: "Manage forms saved in the project store",
	}
	cmd.AddCommand(newFormsListCmd(app))
	cmd.AddCommand(newFormsImportCmd(app))
	cmd.AddCommand(newFormsExportCmd(app))
	cmd.AddCommand(newFormsRemoveCmd(app))
	return cmd
}

// withProject runs fn against the configured project store and flushes it
// afterwards.
func withProject(cmd *cobra.Command, app *App, fn func(*project.Store) error) error {
	store, closeStore, err := app.openProject(cmd.Context())
	if err != nil {
		return err
	}
	return errors.Join(fn(store), closeStore())
}

func newFormsListCmd(app *App) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "Print the project tree with its folders and forms",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withProject(cmd, app, func(store *project.Store) error {
				if asJSON {
					return writeJSON(cmd, store.Snapshot())
				}
				entries := store.Tree().Outline()
				out := cmd.OutOrStdout()
				p := newPalette(out)
				if len(entries) == 0 {
					fmt.Fprintln(out, p.muted.Render("no forms saved"))
					return nil
				}
				for _, entry := range entries {
					indent := strings.Repeat("  ", entry.Depth)
					if entry.Node.IsFolder() {
						fmt.Fprintf(out, "%s%s\n", indent, p.heading.Render(entry.Node.Name+"/"))
						continue
					}
					fmt.Fprintf(out, "%s%s %s\n", indent, entry.Node.Name, p.muted.Render(entry.Node.FormID))
				}
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the stored tree and forms as JSON")
	return cmd
}

func newFormsImportCmd(app *App) *cobra.Command {
	var (
		folder string
		name   string
	)

	cmd := &cobra.Command{
		Use:   "import <schema.json|->",
		Short: "Save a schema document as a project form",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := readInput(cmd, args[0])
			if err != nil {
				return err
			}
			form, err := codec.Decode(raw)
			if err != nil {
				return fmt.Errorf("%s: %w", args[0], err)
			}
			if name = strings.TrimSpace(name); name != "" {
				form.Name = name
			}
			return withProject(cmd, app, func(store *project.Store) error {
				parentID := ""
				if folder != "" {
					if parentID, err = store.EnsureFolder(folder); err != nil {
						return err
					}
				}
				saved, err := store.SaveForm(parentID, form, raw)
				if err != nil {
					return err
				}
				p := newPalette(cmd.OutOrStdout())
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s %s\n", p.ok.Render("saved"), saved.Name, p.muted.Render(saved.ID))
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&folder, "folder", "", "Folder path, created as needed (e.g. Fleet/Checks)")
	cmd.Flags().StringVar(&name, "name", "", "Form name (default: the name in the document)")
	return cmd
}

func newFormsExportCmd(app *App) *cobra.Command {
	var (
		out string
		raw bool
	)

	cmd := &cobra.Command{
		Use:   "export <name>",
		Short: "Write a saved form as a schema document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withProject(cmd, app, func(store *project.Store) error {
				saved, ok := store.FindFormByName(args[0])
				if !ok {
					return fmt.Errorf("form %q: %w", args[0], project.ErrNotFound)
				}
				if raw && saved.RawSchema != "" {
					return writeOutput(cmd, out, []byte(saved.RawSchema))
				}
				form, err := saved.Form()
				if err != nil {
					return err
				}
				data, err := codec.EncodeIndent(form, "  ")
				if err != nil {
					return err
				}
				return writeOutput(cmd, out, append(data, '\n'))
			})
		},
	}

	cmd.Flags().StringVarP(&out, "out", "o", "", "Output file (default stdout)")
	cmd.Flags().BoolVar(&raw, "raw", false, "Write the document as originally imported when available")
	return cmd
}

func newFormsRemoveCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "rm <name>",
		Aliases: []string{"remove"},
		Short:   "Delete a saved form",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withProject(cmd, app, func(store *project.Store) error {
				saved, ok := store.FindFormByName(args[0])
				if !ok {
					return fmt.Errorf("form %q: %w", args[0], project.ErrNotFound)
				}
				if err := store.DeleteForm(saved.ID); err != nil {
					return err
				}
				p := newPalette(cmd.OutOrStdout())
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", p.ok.Render("removed"), saved.Name)
				return nil
			})
		},
	}
	return cmd
}
