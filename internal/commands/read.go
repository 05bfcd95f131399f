package commands

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/metcalfc/trr/internal/disguise"
	"github.com/metcalfc/trr/internal/printers"
)

func addChapters(topLevel *cobra.Command, a *app) {
	cmd := &cobra.Command{
		Use:   "chapters <file>",
		Short: "List the chapters found in a document.",
		Example: `
trr chapters novel.txt
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
			spans, err := a.engine().Chapters(cmd.Context(), path)
			if err != nil {
				return err
			}

			current := -1
			if p, ok := a.store.Get(path); ok {
				for i, sp := range spans {
					if sp.Title == p.ChapterTitle && sp.StartLine == p.LineNumber {
						current = i
						break
					}
				}
			}
			pp := &printers.PrettyPrint{Out: cmd.OutOrStdout()}
			pp.Chapters(spans, current)
			return nil
		},
	}

	topLevel.AddCommand(cmd)
}

func addCat(topLevel *cobra.Command, a *app) {
	var (
		chapterN  int
		page      int
		fresh     bool
		disguised bool
		ratio     float64
	)
	cmd := &cobra.Command{
		Use:   "cat <file>",
		Short: "Print one page of a chapter.",
		Long: `Print one page of a chapter. Without --chapter the saved chapter is
used, and progress is saved for the chapter printed.`,
		Example: `
trr cat novel.txt
trr cat novel.txt --chapter 3 --page 2
trr cat novel.txt --disguise --ratio 0.5
`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.setup(cmd); err != nil {
				return err
			}
			opts := a.cfg.Disguise.Options()
			if cmd.Flags().Changed("disguise") {
				opts.Enabled = disguised
			}
			if cmd.Flags().Changed("ratio") {
				if ratio < 0 || ratio > 1 {
					return fmt.Errorf("--ratio must be between 0 and 1, got %v", ratio)
				}
				opts.Ratio = ratio
			}

			path, err := documentPath(args[0])
			if err != nil {
				return err
			}
			fi, err := os.Stat(path)
			if err != nil {
				return err
			}

			e := a.engine()
			defer e.Close()
			s, err := a.open(cmd, e, path, chapterN, fresh)
			if s == nil {
				return err
			}

			pg := s.Page(page, a.cfg.Reader.LinesPerPage)
			pp := &printers.PrettyPrint{Out: cmd.OutOrStdout()}
			pp.Header(printers.PageHeader{
				Path:     path,
				Chapter:  s.Current(),
				FileSize: fi.Size(),
				Page:     pg,
				Disguise: opts,
			})
			pp.Lines(disguise.NewMixer(nil, nil).Render(pg.Lines, pg.StartLine, opts))
			return err
		},
	}
	cmd.Flags().IntVarP(&chapterN, "chapter", "c", 0, "Chapter number, starting at 1.")
	cmd.Flags().IntVarP(&page, "page", "p", 1, "Page number within the chapter, starting at 1.")
	cmd.Flags().BoolVar(&fresh, "fresh", false, "Ignore saved progress and start at the first chapter.")
	cmd.Flags().BoolVarP(&disguised, "disguise", "d", false, "Mix synthetic log lines into the output.")
	cmd.Flags().Float64Var(&ratio, "ratio", 0.3, "Disguise intensity between 0 and 1.")

	topLevel.AddCommand(cmd)
}

func addRead(topLevel *cobra.Command, a *app) {
	var (
		chapterN int
		fresh    bool
	)
	cmd := &cobra.Command{
		Use:   "read <file>",
		Short: "Read a document interactively.",
		Example: `
trr read novel.txt
trr read novel.txt --fresh
trr read novel.txt --chapter 12
`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if a.launch == nil {
				return errors.New("this build has no interactive reader")
			}
			if err := a.setup(cmd); err != nil {
				return err
			}
			path, err := documentPath(args[0])
			if err != nil {
				return err
			}

			e := a.engine()
			defer e.Close()
			s, err := a.open(cmd, e, path, chapterN, fresh)
			if s == nil {
				return err
			}
			if lerr := a.launch(cmd.Context(), &Reader{
				Engine: e,
				Store:  a.store,
				Config: a.cfg,
				Mixer:  disguise.NewMixer(nil, nil),
				Path:   path,
				Name:   a.store.DisplayName(path),
			}); lerr != nil {
				return lerr
			}
			return err
		},
	}
	cmd.Flags().IntVarP(&chapterN, "chapter", "c", 0, "Chapter number to open, starting at 1.")
	cmd.Flags().BoolVar(&fresh, "fresh", false, "Ignore saved progress and start at the first chapter.")

	topLevel.AddCommand(cmd)
}
