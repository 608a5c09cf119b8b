// subunit filters, summarizes and converts subunit test result streams.
//
// Usage:
//
//	python -m subunit.run discover | subunit filter | subunit stats
//	prove --merge -v t/ | subunit tap2subunit | subunit ls --failing
//	go test -json ./... | subunit convert | subunit show
//	go test -json ./... | subunit gotest2subunit | subunit browse
//
// Every command reads a stream on stdin and writes to stdout.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/dkoosis/subunit/internal/config"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

// exitError carries a process exit code out of a command without a message.
type exitError struct {
	code int
}

func (e *exitError) Error() string { return fmt.Sprintf("exit status %d", e.code) }

// app is the state shared by all subcommands of one invocation.
type app struct {
	stdin          io.Reader
	stdout, stderr io.Writer

	flags  config.CLIFlags
	cfg    *config.Resolved
	logger *slog.Logger
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	a := &app{stdin: stdin, stdout: stdout, stderr: stderr}
	root := newRootCmd(a)
	if args == nil {
		args = []string{} // cobra falls back to os.Args on nil
	}
	root.SetArgs(args)
	root.SetIn(stdin)
	root.SetOut(stdout)
	root.SetErr(stderr)

	err := root.ExecuteContext(ctx)
	if err == nil {
		return 0
	}
	var ee *exitError
	if errors.As(err, &ee) {
		return ee.code
	}
	if ctx.Err() != nil {
		return 130
	}
	fmt.Fprintf(stderr, "subunit: %v\n", err)
	return 2
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "subunit",
		Short:         "Filter, summarize and convert subunit test streams",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&a.flags.ThemeName, "theme", "", "Theme: default, orca, mono")
	pf.BoolVar(&a.flags.NoColor, "no-color", false, "Disable colored output")
	pf.BoolVar(&a.flags.CI, "ci", false, "CI mode: plain output")
	pf.BoolVar(&a.flags.Debug, "debug", false, "Log parser decisions to stderr")

	root.AddCommand(
		newFilterCmd(a),
		newStatsCmd(a),
		newLsCmd(a),
		newTagsCmd(a),
		newTap2SubunitCmd(a),
		newGoTest2SubunitCmd(a),
		newConvertCmd(a),
		newShowCmd(a),
		newBrowseCmd(a),
		newVersionCmd(a),
	)
	return root
}

// setup resolves configuration and builds the logger.
func (a *app) setup(cmd *cobra.Command) error {
	pf := cmd.Flags()
	a.flags.NoColorSet = pf.Changed("no-color")
	a.flags.CISet = pf.Changed("ci")
	a.flags.DebugSet = pf.Changed("debug")

	cfg, err := config.Resolve(a.flags)
	if err != nil {
		return err
	}
	a.cfg = cfg

	level := slog.LevelWarn
	if cfg.Debug {
		level = slog.LevelDebug
	}
	a.logger = slog.New(slog.NewTextHandler(a.stderr, &slog.HandlerOptions{Level: level}))
	a.logger.Debug("config resolved",
		"path", cfg.ConfigPath,
		"theme", cfg.ThemeName, "theme_source", cfg.ThemeSource,
		"no_color", cfg.NoColor, "no_color_source", cfg.NoColorSource,
		"ci", cfg.CI, "debug_source", cfg.DebugSource)
	return nil
}

// isTTYWriter reports whether w is a terminal.
func isTTYWriter(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// termSize returns the terminal dimensions for w, defaulting to 80x24.
func termSize(w io.Writer) (width, height int) {
	width, height = 80, 24
	if f, ok := w.(*os.File); ok {
		if tw, th, err := term.GetSize(int(f.Fd())); err == nil {
			if tw > 0 {
				width = tw
			}
			if th > 0 {
				height = th
			}
		}
	}
	return width, height
}
