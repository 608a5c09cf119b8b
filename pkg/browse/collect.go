// Package browse is an interactive terminal browser for subunit streams:
// a list of finished tests beside the details of the selected one.
package browse

import (
	"context"
	"io"
	"strings"
	"time"

	"github.com/dkoosis/subunit/pkg/results"
	"github.com/dkoosis/subunit/pkg/subunit"
)

// Item is one finished test as shown in the browser.
type Item struct {
	results.Entry
	Tags     []string
	Duration time.Duration
}

// collector turns parser events into Items on a channel.
type collector struct {
	ctx   context.Context
	items chan<- Item

	runTags  subunit.TagSet
	testTags subunit.TagSet
	inTest   bool
	clock    time.Time
	started  time.Time
	pending  *Item
}

var (
	_ subunit.SkipResult            = (*collector)(nil)
	_ subunit.ExpectedFailureResult = (*collector)(nil)
	_ subunit.TagObserver           = (*collector)(nil)
	_ subunit.TimeObserver          = (*collector)(nil)
)

func (c *collector) StartTest(subunit.TestID) error {
	c.inTest = true
	c.testTags = subunit.TagSet{}
	c.started = c.clock
	return nil
}

// StopTest sends the finished item once the test's own tags are known.
func (c *collector) StopTest(subunit.TestID) error {
	c.inTest = false
	it := c.pending
	c.pending = nil
	if it == nil {
		return nil
	}
	tags := subunit.TagSet{}
	tags.Add(c.runTags)
	tags.Add(c.testTags)
	it.Tags = tags.Sorted()
	if !c.started.IsZero() && c.clock.After(c.started) {
		it.Duration = c.clock.Sub(c.started)
	}
	select {
	case c.items <- *it:
		return nil
	case <-c.ctx.Done():
		return c.ctx.Err()
	}
}

func (c *collector) AddSuccess(test subunit.TestID, _ subunit.Details) error {
	return c.add(test, subunit.OutcomeSuccess, subunit.Evidence{})
}

func (c *collector) AddFailure(test subunit.TestID, ev subunit.Evidence) error {
	return c.add(test, subunit.OutcomeFailure, ev)
}

func (c *collector) AddError(test subunit.TestID, ev subunit.Evidence) error {
	return c.add(test, subunit.OutcomeError, ev)
}

func (c *collector) AddSkip(test subunit.TestID, ev subunit.Evidence) error {
	return c.add(test, subunit.OutcomeSkip, ev)
}

func (c *collector) AddExpectedFailure(test subunit.TestID, ev subunit.Evidence) error {
	return c.add(test, subunit.OutcomeXfail, ev)
}

func (c *collector) add(test subunit.TestID, outcome subunit.Outcome, ev subunit.Evidence) error {
	it := &Item{Entry: results.Entry{Test: test, Outcome: outcome}}
	if ev.Err != nil || ev.Details != nil {
		it.Message = strings.TrimRight(ev.Message(), "\n")
	}
	c.pending = it
	return nil
}

func (c *collector) Tags(d subunit.TagDelta) error {
	target := c.runTags
	if c.inTest {
		target = c.testTags
	}
	target.Add(d.Added)
	target.Remove(d.Removed)
	return nil
}

func (c *collector) Time(t time.Time) error {
	c.clock = t
	return nil
}

// Collect parses the subunit stream on r in the background. Items arrive
// in finishing order; both channels close when the stream ends, after at
// most one error.
func Collect(ctx context.Context, r io.Reader) (<-chan Item, <-chan error) {
	items := make(chan Item)
	errs := make(chan error, 1)
	go func() {
		defer close(errs)
		defer close(items)
		c := &collector{ctx: ctx, items: items, runTags: subunit.TagSet{}}
		p := subunit.NewParser(c, subunit.WithPassthrough(io.Discard))
		if err := p.ReadFrom(ctx, r); err != nil {
			errs <- err
		}
	}()
	return items, errs
}
