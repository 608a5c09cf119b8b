// Package tap converts Test Anything Protocol output into a subunit stream.
//
// Results are numbered as they arrive; a result whose number skips ahead
// of the running counter causes one error test per missing number, and so
// does a declared plan that the stream never reaches. Failures are data in
// the emitted stream, never conversion errors.
package tap

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/dkoosis/subunit/pkg/subunit"
)

// State is the converter's position in a TAP stream.
type State int

const (
	BeforePlan State = iota
	AfterPlan
	// SkipStream passes every remaining line through verbatim.
	SkipStream
)

func (s State) String() string {
	switch s {
	case BeforePlan:
		return "before plan"
	case AfterPlan:
		return "after plan"
	case SkipStream:
		return "skip stream"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

const missingMessage = "test missing from TAP output"

// pending is the buffered result awaiting its trailing comment lines.
type pending struct {
	name    string
	outcome subunit.Outcome
}

// Converter translates TAP one line at a time. Call Close after the last
// line to flush the buffered result and fill the rest of the plan.
type Converter struct {
	w        io.Writer
	state    State
	next     int
	planStop int
	cur      *pending
	log      []string
	emitted  int
	closed   bool
}

// NewConverter returns a Converter writing subunit to w.
func NewConverter(w io.Writer) *Converter {
	return &Converter{w: w, state: BeforePlan, next: 1}
}

// State returns the current state.
func (c *Converter) State() State { return c.state }

// Emitted returns the number of tests written so far.
func (c *Converter) Emitted() int { return c.emitted }

// Feed consumes one line, with or without its trailing newline.
func (c *Converter) Feed(line string) error {
	body := strings.TrimSuffix(line, "\n")
	if c.state == SkipStream {
		return c.write(line)
	}

	if c.state == BeforePlan {
		if stop, comment, ok := matchPlan(body); ok {
			c.state = AfterPlan
			c.planStop = stop
			if stop == 0 && c.next > stop {
				c.state = SkipStream
				return c.emit("file skip", subunit.OutcomeSkip, nonEmpty(comment))
			}
			return nil
		}
	}

	if r, ok := matchResult(body); ok {
		return c.result(r)
	}
	if reason, ok := matchBailOut(body); ok {
		return c.bailOut(reason)
	}
	if isComment(body) {
		c.log = append(c.log, body)
		return nil
	}
	return c.write(line)
}

func (c *Converter) result(r resultLine) error {
	if err := c.flush(); err != nil {
		return err
	}

	outcome := subunit.OutcomeFailure
	if r.OK {
		outcome = subunit.OutcomeSuccess
	}
	switch r.Directive {
	case DirectiveTodo:
		outcome = subunit.OutcomeXfail
	case DirectiveSkip:
		outcome = subunit.OutcomeSkip
	}
	if r.Directive != DirectiveNone && r.Comment != "" {
		c.log = append(c.log, r.Comment)
	}

	if r.HasNumber {
		for c.next < r.Number {
			if err := c.missing(); err != nil {
				return err
			}
		}
	}

	name := fmt.Sprintf("test %d", c.next)
	if r.Description != "" {
		name += " " + r.Description
	}
	c.next++
	c.cur = &pending{name: name, outcome: outcome}
	return nil
}

func (c *Converter) bailOut(reason string) error {
	if err := c.flush(); err != nil {
		return err
	}
	name := "Bail out!"
	if reason != "" {
		name += " " + reason
	}
	c.state = SkipStream
	c.cur = &pending{name: name, outcome: subunit.OutcomeError}
	return c.flush()
}

// Close flushes the buffered result and emits an error test for every
// planned number the stream did not report.
func (c *Converter) Close() error {
	if c.closed {
		return nil
	}
	c.closed = true
	if err := c.flush(); err != nil {
		return err
	}
	for c.next <= c.planStop {
		if err := c.missing(); err != nil {
			return err
		}
	}
	return nil
}

func (c *Converter) flush() error {
	if c.cur == nil {
		return nil
	}
	cur, log := c.cur, c.log
	c.cur, c.log = nil, nil
	return c.emit(cur.name, cur.outcome, log)
}

func (c *Converter) missing() error {
	name := fmt.Sprintf("test %d", c.next)
	c.next++
	return c.emit(name, subunit.OutcomeError, []string{missingMessage})
}

// emit writes one test block. With no log lines the outcome is bare.
func (c *Converter) emit(name string, outcome subunit.Outcome, log []string) error {
	c.emitted++
	var sb strings.Builder
	fmt.Fprintf(&sb, "test: %s\n", name)
	if len(log) == 0 {
		fmt.Fprintf(&sb, "%s: %s\n", outcome, name)
		return c.write(sb.String())
	}
	fmt.Fprintf(&sb, "%s: %s [\n", outcome, name)
	for _, l := range log {
		sb.WriteString(subunit.QuoteMessage(l))
		sb.WriteByte('\n')
	}
	sb.WriteString("]\n")
	return c.write(sb.String())
}

func (c *Converter) write(s string) error {
	if _, err := io.WriteString(c.w, s); err != nil {
		return fmt.Errorf("writing subunit: %w", err)
	}
	return nil
}

func nonEmpty(s string) []string {
	if s == "" {
		return nil
	}
	return []string{s}
}

// ToSubunit converts the TAP stream r into subunit on w and returns the
// number of tests written. A final line without a newline gets one.
func ToSubunit(r io.Reader, w io.Writer) (int, error) {
	c := NewConverter(w)
	br := bufio.NewReader(r)
	for {
		line, err := br.ReadString('\n')
		if line != "" {
			if !strings.HasSuffix(line, "\n") {
				line += "\n"
			}
			if ferr := c.Feed(line); ferr != nil {
				return c.Emitted(), ferr
			}
		}
		if err != nil {
			if !errors.Is(err, io.EOF) {
				return c.Emitted(), fmt.Errorf("reading TAP: %w", err)
			}
			break
		}
	}
	if err := c.Close(); err != nil {
		return c.Emitted(), err
	}
	return c.Emitted(), nil
}
