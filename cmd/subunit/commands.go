package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/dkoosis/subunit/internal/detect"
	"github.com/dkoosis/subunit/internal/version"
	"github.com/dkoosis/subunit/pkg/browse"
	"github.com/dkoosis/subunit/pkg/render"
	"github.com/dkoosis/subunit/pkg/results"
	"github.com/dkoosis/subunit/pkg/stream"
	"github.com/dkoosis/subunit/pkg/subunit"
	"github.com/dkoosis/subunit/pkg/tags"
	"github.com/dkoosis/subunit/pkg/tap"
	"github.com/dkoosis/subunit/pkg/testjson"
)

// parse reads a subunit stream from stdin into r, discarding non-protocol lines.
func (a *app) parse(cmd *cobra.Command, r subunit.Result) error {
	p := subunit.NewParser(r, subunit.WithPassthrough(io.Discard), subunit.WithLogger(a.logger))
	return p.ReadFrom(cmd.Context(), a.stdin)
}

func newStatsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Summarize a subunit stream; exit 1 if any test failed",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s := results.NewStats()
			if err := a.parse(cmd, s); err != nil {
				return err
			}
			if isTTYWriter(a.stdout) {
				fmt.Fprint(a.stdout, render.RenderStats(s, a.cfg.Theme))
			} else if err := s.Format(a.stdout); err != nil {
				return err
			}
			if !s.WasSuccessful() {
				return &exitError{code: 1}
			}
			return nil
		},
	}
}

func newLsCmd(a *app) *cobra.Command {
	var failing bool
	cmd := &cobra.Command{
		Use:   "ls",
		Short: "List the tests in a subunit stream",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			l := &results.List{OnlyFailures: failing}
			if err := a.parse(cmd, l); err != nil {
				return err
			}
			if isTTYWriter(a.stdout) {
				width, _ := termSize(a.stdout)
				fmt.Fprint(a.stdout, render.RenderList(l.Entries(), a.cfg.Theme, width))
				return nil
			}
			for _, e := range l.Entries() {
				if _, err := fmt.Fprintln(a.stdout, e.Test); err != nil {
					return fmt.Errorf("writing list: %w", err)
				}
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&failing, "failing", false, "List only failures and errors")
	return cmd
}

func newTagsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "tags [TAG|-TAG]...",
		Short: "Add or remove tags across a whole subunit stream",
		Long: `Copy a subunit stream from stdin to stdout with the given tags applied to
every test. A leading '-' removes a tag. Without arguments the tags list
of .subunit.yaml is used.`,
		RunE: func(_ *cobra.Command, args []string) error {
			tokens := args
			if len(tokens) == 0 {
				tokens = a.cfg.Tags
			}
			if len(tokens) == 0 {
				return errors.New("tags: no tags given and none configured")
			}
			return tags.Rewrite(a.stdin, a.stdout, tokens)
		},
	}
}

func newTap2SubunitCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "tap2subunit",
		Short: "Convert TAP to subunit",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			n, err := tap.ToSubunit(a.stdin, a.stdout)
			a.logger.Debug("tap converted", "tests", n)
			return err
		},
	}
}

func newGoTest2SubunitCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "gotest2subunit",
		Short: "Convert go test -json output to subunit",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			malformed, err := testjson.ToSubunit(cmd.Context(), a.stdin, a.stdout)
			if malformed > 0 {
				a.logger.Debug("non-JSON lines copied through", "count", malformed)
			}
			return err
		},
	}
}

func newConvertCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "convert",
		Short: "Detect the input format and convert it to subunit",
		Long: `Sniff stdin as subunit, TAP or go test -json and write subunit to stdout.
Subunit input is copied through unchanged.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			br := bufio.NewReaderSize(a.stdin, 8*1024)
			peeked, _ := br.Peek(4096)
			if len(peeked) == 0 {
				return nil
			}

			format := detect.Sniff(peeked)
			a.logger.Debug("input format", "format", format)
			switch format {
			case detect.Subunit:
				if _, err := io.Copy(a.stdout, br); err != nil {
					return fmt.Errorf("copying subunit: %w", err)
				}
				return nil
			case detect.TAP:
				_, err := tap.ToSubunit(br, a.stdout)
				return err
			case detect.GoTestJSON:
				_, err := testjson.ToSubunit(cmd.Context(), br, a.stdout)
				return err
			default:
				return errors.New("unrecognized input format (expected subunit, TAP, or go test -json)")
			}
		},
	}
}

func newShowCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Display a subunit stream live as tests finish",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var style stream.StyleFunc
			if isTTYWriter(a.stdout) {
				style = stream.ThemeStyle(a.cfg.Theme)
			}
			width, height := termSize(a.stdout)
			if code := stream.Run(cmd.Context(), a.stdin, a.stdout, width, height, style); code != 0 {
				return &exitError{code: code}
			}
			return nil
		},
	}
}

func newBrowseCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "browse",
		Short: "Browse a subunit stream interactively",
		Long: `Browse reads a subunit stream from stdin and shows the finished tests
in a navigable list beside the details of the selected test. Keys are read
from the terminal, so the stream can be piped in.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !isTTYWriter(a.stdout) {
				return errors.New("browse needs a terminal; use show or stats instead")
			}
			code, err := browse.Run(cmd.Context(), a.stdin, a.stdout, a.cfg.Theme)
			if err != nil {
				return fmt.Errorf("browse: %w", err)
			}
			if code != 0 {
				return &exitError{code: code}
			}
			return nil
		},
	}
}

func newVersionCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(_ *cobra.Command, _ []string) {
			fmt.Fprintln(a.stdout, version.String())
		},
	}
}
