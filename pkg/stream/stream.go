package stream

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/dkoosis/subunit/pkg/results"
	"github.com/dkoosis/subunit/pkg/subunit"
)

// LineKind identifies the type of output line for styling.
type LineKind int

const (
	KindPass LineKind = iota
	KindFail
	KindError
	KindSkip
	KindXfail
	KindOutput
	KindPassthrough
	KindSeparator
)

// StyleFunc formats a line with colors/symbols.
// If nil, no styling is applied.
type StyleFunc func(kind LineKind, text string) string

const (
	symPass  = "·"
	symFail  = "✗"
	symError = "!"
	symSkip  = "○"
	symXfail = "◌"
)

// streamer renders a subunit result stream as it arrives: one history line
// per finished test, plus a footer naming the test in flight.
type streamer struct {
	sc    *screen
	style StyleFunc
	stats *results.Stats

	current   subunit.TestID
	running   bool
	started   time.Time // stream clock when current started
	testTags  subunit.TagSet
	runTags   subunit.TagSet
	remaining []int // progress stack; remaining[0] is the run-level count

	clock      time.Time // last time: directive
	firstClock time.Time
}

var (
	_ subunit.SkipResult            = (*streamer)(nil)
	_ subunit.ExpectedFailureResult = (*streamer)(nil)
	_ subunit.TagObserver           = (*streamer)(nil)
	_ subunit.TimeObserver          = (*streamer)(nil)
	_ subunit.ProgressObserver      = (*streamer)(nil)
)

func newStreamer(sc *screen, style StyleFunc) *streamer {
	return &streamer{
		sc:        sc,
		style:     style,
		stats:     results.NewStats(),
		runTags:   subunit.TagSet{},
		remaining: []int{0},
	}
}

// styleLine applies the style function if set, otherwise returns text unchanged.
func (s *streamer) styleLine(kind LineKind, text string) string {
	if s.style != nil {
		return s.style(kind, text)
	}
	return text
}

func (s *streamer) StartTest(test subunit.TestID) error {
	s.current = test
	s.running = true
	s.started = s.clock
	s.testTags = subunit.TagSet{}
	if err := s.stats.StartTest(test); err != nil {
		return err
	}
	s.redrawFooter()
	return nil
}

func (s *streamer) StopTest(test subunit.TestID) error {
	s.running = false
	s.testTags = nil
	if top := len(s.remaining) - 1; s.remaining[top] > 0 {
		s.remaining[top]--
	}
	s.redrawFooter()
	return s.stats.StopTest(test)
}

func (s *streamer) AddSuccess(test subunit.TestID, d subunit.Details) error {
	s.printResult(KindPass, symPass, test, "")
	return s.stats.AddSuccess(test, d)
}

func (s *streamer) AddFailure(test subunit.TestID, ev subunit.Evidence) error {
	s.printResult(KindFail, symFail, test, "")
	s.printMessage(ev.Message())
	return s.stats.AddFailure(test, ev)
}

func (s *streamer) AddError(test subunit.TestID, ev subunit.Evidence) error {
	s.printResult(KindError, symError, test, "")
	s.printMessage(ev.Message())
	return s.stats.AddError(test, ev)
}

func (s *streamer) AddSkip(test subunit.TestID, ev subunit.Evidence) error {
	reason := strings.TrimSpace(ev.Message())
	s.printResult(KindSkip, symSkip, test, reason)
	return s.stats.AddSkip(test, ev)
}

func (s *streamer) AddExpectedFailure(test subunit.TestID, ev subunit.Evidence) error {
	s.printResult(KindXfail, symXfail, test, "")
	return s.stats.AddExpectedFailure(test, ev)
}

func (s *streamer) Tags(d subunit.TagDelta) error {
	if s.running {
		s.testTags.Add(d.Added)
		s.testTags.Remove(d.Removed)
		return nil
	}
	s.runTags.Add(d.Added)
	s.runTags.Remove(d.Removed)
	return s.stats.Tags(d)
}

func (s *streamer) Time(t time.Time) error {
	if s.firstClock.IsZero() {
		s.firstClock = t
	}
	s.clock = t
	return nil
}

func (s *streamer) Progress(p subunit.Progress) error {
	top := len(s.remaining) - 1
	switch p.Mode() {
	case subunit.ProgressModeSet:
		n, _ := p.Amount()
		s.remaining[top] = max(n, 0)
	case subunit.ProgressModeCur:
		n, _ := p.Amount()
		s.remaining[top] = max(s.remaining[top]+n, 0)
	case subunit.ProgressModePush:
		s.remaining = append(s.remaining, 0)
	case subunit.ProgressModePop:
		if top > 0 {
			s.remaining = s.remaining[:top]
		}
	}
	s.redrawFooter()
	return nil
}

// tagList renders the tags in effect for the running test.
func (s *streamer) tagList() string {
	effective := subunit.TagSet{}
	effective.Add(s.runTags)
	effective.Add(s.testTags)
	if len(effective) == 0 {
		return ""
	}
	return "[" + strings.Join(effective.Sorted(), " ") + "]"
}

func (s *streamer) printResult(kind LineKind, sym string, test subunit.TestID, note string) {
	var sb strings.Builder
	sb.WriteString("  ")
	sb.WriteString(sym)
	sb.WriteString(" ")
	sb.WriteString(string(test))
	if tags := s.tagList(); tags != "" {
		sb.WriteString(" ")
		sb.WriteString(tags)
	}
	if !s.started.IsZero() && s.clock.After(s.started) {
		fmt.Fprintf(&sb, "  %.2fs", s.clock.Sub(s.started).Seconds())
	}
	if note != "" {
		sb.WriteString("  (")
		sb.WriteString(note)
		sb.WriteString(")")
	}
	s.sc.println(s.styleLine(kind, sb.String()))
}

// printMessage flushes failure evidence under the result line.
func (s *streamer) printMessage(msg string) {
	msg = strings.TrimRight(msg, "\n")
	if strings.TrimSpace(msg) == "" {
		return
	}
	lines := strings.Split(msg, "\n")
	for i, l := range lines {
		lines[i] = s.styleLine(KindOutput, "      "+l)
	}
	s.sc.println(lines...)
}

// Write receives non-protocol lines from the parser.
func (s *streamer) Write(p []byte) (int, error) {
	lines := strings.Split(strings.TrimSuffix(string(p), "\n"), "\n")
	for i, l := range lines {
		lines[i] = s.styleLine(KindPassthrough, l)
	}
	s.sc.println(lines...)
	return len(p), nil
}

// redrawFooter rebuilds the in-flight footer.
func (s *streamer) redrawFooter() {
	left := s.remaining[len(s.remaining)-1]
	if !s.running && left == 0 {
		s.sc.setFooter(nil)
		return
	}

	var lines []string
	lines = append(lines, "  ─── running ────────────────────────────────────")
	if s.running {
		lines = append(lines, fmt.Sprintf("  %s", s.current))
	}
	done := s.stats.Total
	if s.running {
		done--
	}
	status := fmt.Sprintf("  [%d done", done)
	if left > 0 {
		status += fmt.Sprintf(", %d remaining", left)
	}
	if depth := len(s.remaining) - 1; depth > 0 {
		status += fmt.Sprintf(", depth %d", depth)
	}
	lines = append(lines, status+"]")

	s.sc.setFooter(lines)
}

// finish erases the footer and prints the final summary line.
func (s *streamer) finish() {
	s.sc.setFooter(nil)
	sep := s.styleLine(KindSeparator, "  ─────────────────────────────────────────────")

	var elapsed string
	if !s.firstClock.IsZero() && s.clock.After(s.firstClock) {
		elapsed = fmt.Sprintf(" (%.1fs)", s.clock.Sub(s.firstClock).Seconds())
	}
	var skipped string
	if s.stats.Skipped > 0 {
		skipped = fmt.Sprintf(", %d skipped", s.stats.Skipped)
	}

	if s.stats.WasSuccessful() {
		summary := fmt.Sprintf("  PASS%s %d tests%s", elapsed, s.stats.Total, skipped)
		s.sc.println(sep, s.styleLine(KindPass, summary))
		return
	}
	summary := fmt.Sprintf("  FAIL%s %d/%d tests failed%s", elapsed, s.stats.Failed, s.stats.Total, skipped)
	s.sc.println(sep, s.styleLine(KindFail, summary))
}

// Run reads a subunit stream from r and renders it to out.
// Returns exit code: 0=all pass, 1=failures, 2=error, 130=interrupted.
func Run(ctx context.Context, r io.Reader, out io.Writer, width, height int, style StyleFunc) int {
	s := newStreamer(newScreen(out, width, height), style)
	p := subunit.NewParser(s, subunit.WithPassthrough(s))

	err := p.ReadFrom(ctx, r)
	s.finish()
	if err != nil {
		if ctx.Err() != nil && errors.Is(err, ctx.Err()) {
			return 130
		}
		return 2
	}
	if !s.stats.WasSuccessful() {
		return 1
	}
	return 0
}
