package commands

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/metcalfc/trr/internal/printers"
)

func addAdd(topLevel *cobra.Command, a *app) {
	name := ""
	cmd := &cobra.Command{
		Use:   "add <file>",
		Short: "Add a document to the reading list, or rename it.",
		Example: `
trr add novel.txt
trr add ~/Downloads/report.epub --name "Q3 notes"
`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.setup(cmd); err != nil {
				return err
			}
			path, err := documentPath(args[0])
			if err != nil {
				return err
			}
			if name == "" {
				name = a.store.DisplayName(path)
			}
			if err := a.store.SetDisplayName(path, name); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added %s as %q\n", path, name)
			return nil
		},
	}
	cmd.Flags().StringVarP(&name, "name", "n", "", "Display name (defaults to the file name).")

	topLevel.AddCommand(cmd)
}

func addRemove(topLevel *cobra.Command, a *app) {
	cmd := &cobra.Command{
		Use:     "rm <file>",
		Aliases: []string{"remove"},
		Short:   "Remove a document and its progress from the reading list.",
		Example: `
trr rm novel.txt
`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.setup(cmd); err != nil {
				return err
			}
			// The file may already be gone, so no Stat here.
			path, err := filepath.Abs(args[0])
			if err != nil {
				return err
			}
			if err := a.store.Remove(path); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %s\n", path)
			return nil
		},
	}

	topLevel.AddCommand(cmd)
}

func addList(topLevel *cobra.Command, a *app) {
	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "Show the reading list with the last chapter read.",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.setup(cmd); err != nil {
				return err
			}
			pp := &printers.PrettyPrint{Out: cmd.OutOrStdout()}
			pp.ReadingList(a.store.List())
			return nil
		},
	}

	topLevel.AddCommand(cmd)
}
