package main

import (
	"fmt"
	"io"
	"regexp"

	"github.com/spf13/cobra"

	"github.com/dkoosis/subunit/pkg/results"
	"github.com/dkoosis/subunit/pkg/subunit"
)

type filterFlags struct {
	noError, noFailure, success, noSkip, noXfail, noPassthrough bool
	with, without                                               string
}

func newFilterCmd(a *app) *cobra.Command {
	var f filterFlags
	cmd := &cobra.Command{
		Use:   "filter",
		Short: "Select tests from a subunit stream by outcome or pattern",
		Long: `Read a subunit stream on stdin and write the tests that pass the filters
to stdout. By default successes are dropped and everything else is kept;
defaults come from the filter block of .subunit.yaml.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			opts, passthrough, err := f.options(cmd, a)
			if err != nil {
				return err
			}
			ptOut := io.Discard
			if passthrough {
				ptOut = a.stdout
			}
			sink := results.NewFilter(subunit.NewSerializer(a.stdout), opts)
			p := subunit.NewParser(sink, subunit.WithPassthrough(ptOut), subunit.WithLogger(a.logger))
			return p.ReadFrom(cmd.Context(), a.stdin)
		},
	}

	fl := cmd.Flags()
	fl.BoolVarP(&f.noError, "no-error", "e", false, "Exclude errors")
	fl.BoolVarP(&f.noFailure, "no-failure", "f", false, "Exclude failures")
	fl.BoolVarP(&f.success, "success", "s", false, "Include successes")
	fl.BoolVar(&f.noSkip, "no-skip", false, "Exclude skips")
	fl.BoolVar(&f.noXfail, "no-xfail", false, "Exclude expected failures")
	fl.BoolVar(&f.noPassthrough, "no-passthrough", false, "Drop non-subunit lines")
	fl.StringVar(&f.with, "with", "", "Keep only tests whose id or message matches `REGEX`")
	fl.StringVar(&f.without, "without", "", "Drop tests whose id or message matches `REGEX`")
	return cmd
}

// options layers explicitly set flags over the configured filter defaults.
func (f *filterFlags) options(cmd *cobra.Command, a *app) (results.FilterOptions, bool, error) {
	conf := a.cfg.Filter
	fl := cmd.Flags()
	if fl.Changed("no-error") {
		conf.Error = f.noError
	}
	if fl.Changed("no-failure") {
		conf.Failure = f.noFailure
	}
	if fl.Changed("success") {
		conf.Success = !f.success
	}
	if fl.Changed("no-skip") {
		conf.Skip = f.noSkip
	}
	if fl.Changed("no-xfail") {
		conf.Xfail = f.noXfail
	}
	if fl.Changed("no-passthrough") {
		conf.Passthrough = !f.noPassthrough
	}

	opts := conf.Options()
	pred, err := regexpPredicate(f.with, f.without)
	if err != nil {
		return opts, false, err
	}
	opts.Predicate = pred
	return opts, conf.Passthrough, nil
}

// regexpPredicate keeps tests whose id or message matches with and
// neither matches without. Empty patterns are not applied.
func regexpPredicate(with, without string) (results.Predicate, error) {
	if with == "" && without == "" {
		return nil, nil
	}
	var withRe, withoutRe *regexp.Regexp
	var err error
	if with != "" {
		if withRe, err = regexp.Compile(with); err != nil {
			return nil, fmt.Errorf("--with: %w", err)
		}
	}
	if without != "" {
		if withoutRe, err = regexp.Compile(without); err != nil {
			return nil, fmt.Errorf("--without: %w", err)
		}
	}

	return func(test subunit.TestID, ev *subunit.Evidence) bool {
		var msg string
		if ev != nil {
			msg = ev.Message()
		}
		matches := func(re *regexp.Regexp) bool {
			return re.MatchString(string(test)) || (msg != "" && re.MatchString(msg))
		}
		if withRe != nil && !matches(withRe) {
			return false
		}
		if withoutRe != nil && matches(withoutRe) {
			return false
		}
		return true
	}, nil
}
