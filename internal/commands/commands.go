package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/metcalfc/trr/internal/config"
	"github.com/metcalfc/trr/internal/disguise"
	"github.com/metcalfc/trr/internal/document"
	"github.com/metcalfc/trr/internal/session"
	"github.com/metcalfc/trr/internal/state"
)

// BuildInfo is stamped in by the linker.
type BuildInfo struct {
	Version string
	Commit  string
	Date    string
}

// Reader is what an interactive presenter needs to show an open document.
type Reader struct {
	Engine *session.Engine
	Store  state.Store
	Config *config.Config
	Mixer  *disguise.Mixer
	Path   string
	Name   string
}

// Launcher runs an interactive presenter until the user quits.
type Launcher func(ctx context.Context, r *Reader) error

// app carries what every subcommand shares once the root has loaded
// config.
type app struct {
	build      BuildInfo
	launch     Launcher
	configPath string
	verbose    bool

	cfg    *config.Config
	store  state.Store
	logger *log.Logger
}

// New returns the trr root command. launch backs `trr read`; nil leaves
// the command reporting that no interactive reader is available.
func New(build BuildInfo, launch Launcher) *cobra.Command {
	a := &app{build: build, launch: launch}

	cmd := &cobra.Command{
		Use:   "trr",
		Short: "Read long text files in the terminal, one chapter at a time.",
		Long: `trr splits a text, Markdown or EPUB file into chapters, remembers
where you stopped, and can hide the text among log-like lines.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
	cmd.PersistentFlags().StringVar(&a.configPath, "config", "", "Config file (default is .trr.yaml in $TRR_CONFIG_PATH, ./ or $HOME).")
	cmd.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "Log engine activity to stderr.")

	addCommands(cmd, a)
	return cmd
}

func addCommands(topLevel *cobra.Command, a *app) {
	addAdd(topLevel, a)
	addRemove(topLevel, a)
	addList(topLevel, a)
	addChapters(topLevel, a)
	addCat(topLevel, a)
	addRead(topLevel, a)
	addInfo(topLevel, a)
	addVersion(topLevel, a)
}

// setup loads config and opens the store. Subcommands call it first.
func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	store, err := cfg.State.OpenStore()
	if err != nil {
		return fmt.Errorf("open state: %w", err)
	}
	var w io.Writer = io.Discard
	if a.verbose {
		w = cmd.ErrOrStderr()
	}
	a.cfg = cfg
	a.store = store
	a.logger = log.New(w, "[session] ", log.LstdFlags)
	return nil
}

func (a *app) engine() *session.Engine {
	return session.New(a.store, document.FileLoader{}, session.WithLogger(a.logger))
}

// documentPath resolves arg to the absolute path used as the document ID.
func documentPath(arg string) (string, error) {
	path, err := filepath.Abs(arg)
	if err != nil {
		return "", err
	}
	fi, err := os.Stat(path)
	if err != nil {
		return "", err
	}
	if fi.IsDir() {
		return "", fmt.Errorf("%s is a directory", arg)
	}
	return path, nil
}

// open starts a session at the requested chapter (one-based), or resumes
// saved progress when chapterN is zero. A chapter that could not be
// resumed is reported on stderr and is not an error. A *PersistError comes
// back with a usable session; callers show the session and then report it.
func (a *app) open(cmd *cobra.Command, e *session.Engine, path string, chapterN int, fresh bool) (*session.Session, error) {
	ctx := cmd.Context()
	switch {
	case chapterN > 0:
		spans, err := e.Chapters(ctx, path)
		if err != nil {
			return nil, err
		}
		if chapterN > len(spans) {
			return nil, fmt.Errorf("chapter %d out of range, %s has %d", chapterN, filepath.Base(path), len(spans))
		}
		return e.Open(ctx, path, &spans[chapterN-1])
	case fresh:
		return e.Open(ctx, path, nil)
	}

	s, err := e.Resume(ctx, path)
	var rerr *session.ResumeError
	if errors.As(err, &rerr) && s != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: %v\n", rerr)
		var perr *session.PersistError
		if errors.As(err, &perr) {
			return s, perr
		}
		return s, nil
	}
	return s, err
}
