package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	goversion "go.hein.dev/go-version"

	"github.com/metcalfc/trr/internal/config"
	"github.com/metcalfc/trr/internal/document"
	"github.com/metcalfc/trr/internal/state"
)

func addInfo(topLevel *cobra.Command, a *app) {
	cmd := &cobra.Command{
		Use:   "info [file]",
		Short: "Show where settings and progress live, or details about one document.",
		Example: `
trr info
trr info novel.txt
`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.setup(cmd); err != nil {
				return err
			}
			w := cmd.OutOrStdout()

			if len(args) == 0 {
				if override := os.Getenv("TRR_CONFIG_PATH"); override != "" {
					fmt.Fprintln(w, "TRR_CONFIG_PATH found on env, using", override)
				} else {
					fmt.Fprintln(w, "TRR_CONFIG_PATH env var not set")
				}
				dir, err := a.cfg.State.Dir()
				if err != nil {
					return err
				}
				fmt.Fprintf(w, "State backend: %s\n", a.cfg.State.Backend)
				if a.cfg.State.Backend != config.BackendMemory {
					fmt.Fprintf(w, "State path:    %s\n", dir)
				}
				fmt.Fprintf(w, "Documents:     %d\n", len(a.store.List()))
				fmt.Fprintln(w, "Formats:")
				for _, f := range document.SupportedFormats() {
					fmt.Fprintf(w, "  %s\n", f)
				}
				return nil
			}

			path, err := documentPath(args[0])
			if err != nil {
				return err
			}
			hash, err := state.ComputeHash(path)
			if err != nil {
				return err
			}
			spans, err := a.engine().Chapters(cmd.Context(), path)
			if err != nil {
				return err
			}
			total := 0
			for _, sp := range spans {
				total += sp.LineCount
			}

			fmt.Fprintf(w, "Path:     %s\n", path)
			fmt.Fprintf(w, "Name:     %s", a.store.DisplayName(path))
			if state.HasCustomName(a.store, path) {
				fmt.Fprint(w, " (custom)")
			}
			fmt.Fprintln(w)
			fmt.Fprintf(w, "Hash:     %s\n", hash)
			fmt.Fprintf(w, "Lines:    %d\n", total)
			fmt.Fprintf(w, "Chapters: %d\n", len(spans))
			if p, ok := a.store.Get(path); ok {
				fmt.Fprintf(w, "Progress: %s (line %d)\n", p.ChapterTitle, p.LineNumber+1)
			} else {
				fmt.Fprintln(w, "Progress: none")
			}
			return nil
		},
	}

	topLevel.AddCommand(cmd)
}

func addVersion(topLevel *cobra.Command, a *app) {
	shortened := false
	output := "json"
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Get trr version.",
		Example: `
trr version
`,
		Args: cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			resp := goversion.FuncWithOutput(shortened, a.build.Version, a.build.Commit, a.build.Date, output)
			fmt.Fprint(cmd.OutOrStdout(), resp)
		},
	}

	cmd.Flags().BoolVarP(&shortened, "short", "s", false, "Print just the version number.")
	cmd.Flags().StringVarP(&output, "output", "o", "json", "Output format. One of 'yaml' or 'json'.")

	topLevel.AddCommand(cmd)
}
