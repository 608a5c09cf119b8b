package testjson

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/dkoosis/subunit/pkg/subunit"
)

// boilerplate are go test status lines already carried by the outcome.
var boilerplate = []string{"=== RUN", "=== PAUSE", "=== CONT", "=== NAME", "--- PASS", "--- FAIL", "--- SKIP"}

// Converter turns go test events into subunit. Output is buffered per test
// and written with the test's outcome, so parallel tests that interleave
// in go test output still appear one at a time.
type Converter struct {
	w      io.Writer
	ser    *subunit.Serializer
	output map[subunit.TestID][]string
	tests  map[string]int
	count  int
}

// NewConverter returns a Converter writing subunit to w.
func NewConverter(w io.Writer) *Converter {
	return &Converter{
		w:      w,
		ser:    subunit.NewSerializer(w),
		output: make(map[subunit.TestID][]string),
		tests:  make(map[string]int),
	}
}

// Emitted returns the number of tests written.
func (c *Converter) Emitted() int { return c.count }

// TestID names a go test in subunit: package path, a dot, the test name.
func TestID(pkg, test string) subunit.TestID {
	if test == "" {
		return subunit.TestID(pkg)
	}
	return subunit.TestID(pkg + "." + test)
}

var _ Handler = (*Converter)(nil)

// Event converts one go test event.
func (c *Converter) Event(e TestEvent) error {
	id := TestID(e.Package, e.Test)
	switch e.Action {
	case ActionOutput:
		if keepOutput(e.Output) {
			c.output[id] = append(c.output[id], e.Output)
		}
		return nil
	case ActionPass, ActionFail, ActionSkip:
	default:
		return nil
	}

	out := c.output[id]
	delete(c.output, id)

	if e.Test == "" {
		// A failed package that reported no tests did not build or
		// crashed before running any.
		if e.Action != ActionFail || c.tests[e.Package] > 0 {
			return nil
		}
		return c.emit(e, id, subunit.OutcomeError, out)
	}

	c.tests[e.Package]++
	switch e.Action {
	case ActionPass:
		return c.emit(e, id, subunit.OutcomeSuccess, out)
	case ActionSkip:
		return c.emit(e, id, subunit.OutcomeSkip, out)
	default:
		if panicked(out) {
			return c.emit(e, id, subunit.OutcomeError, out)
		}
		return c.emit(e, id, subunit.OutcomeFailure, out)
	}
}

// Malformed copies a line that is not a go test event. A line that would
// read as a subunit command, or as the close of a quoted block, is indented
// by one space so downstream parsers pass it through.
func (c *Converter) Malformed(line []byte) error {
	prefix := ""
	if looksLikeProtocol(string(line)) {
		prefix = " "
	}
	if _, err := fmt.Fprintf(c.w, "%s%s\n", prefix, line); err != nil {
		return fmt.Errorf("writing passthrough: %w", err)
	}
	return nil
}

func (c *Converter) emit(e TestEvent, id subunit.TestID, outcome subunit.Outcome, out []string) error {
	c.count++
	if !e.Time.IsZero() {
		if err := c.ser.Time(e.Time); err != nil {
			return err
		}
	}
	if err := c.ser.StartTest(id); err != nil {
		return err
	}
	ev := subunit.ErrorEvidence(subunit.QuoteMessage(strings.Join(out, "")))

	var err error
	switch outcome {
	case subunit.OutcomeSuccess:
		err = c.ser.AddSuccess(id, nil)
	case subunit.OutcomeSkip:
		err = c.ser.AddSkip(id, ev)
	case subunit.OutcomeError:
		err = c.ser.AddError(id, ev)
	default:
		err = c.ser.AddFailure(id, ev)
	}
	if err != nil {
		return err
	}
	return c.ser.StopTest(id)
}

// commands are the subunit v1 keywords a parser acts on.
var commands = map[string]bool{
	"test": true, "testing": true, "success": true, "successful": true,
	"failure": true, "error": true, "skip": true, "xfail": true,
	"tags": true, "time": true, "progress": true,
}

func looksLikeProtocol(line string) bool {
	if strings.HasPrefix(line, "]") {
		return true
	}
	i := strings.IndexAny(line, " \t")
	if i <= 0 {
		return false
	}
	return commands[strings.Trim(line[:i], ":")]
}

func keepOutput(line string) bool {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return false
	}
	for _, p := range boilerplate {
		if strings.HasPrefix(trimmed, p) {
			return false
		}
	}
	return true
}

func panicked(out []string) bool {
	for _, line := range out {
		if strings.HasPrefix(line, "panic:") {
			return true
		}
	}
	return false
}

// ToSubunit converts go test -json on r to subunit on w. Lines that are not
// JSON events are copied through, indented if they would read as subunit.
// Returns the number of malformed lines.
func ToSubunit(ctx context.Context, r io.Reader, w io.Writer) (int, error) {
	return Decode(ctx, r, NewConverter(w))
}
