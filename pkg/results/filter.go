// Package results holds subunit sinks that select, count and list tests.
package results

import (
	"time"

	"github.com/dkoosis/subunit/pkg/subunit"
)

// Predicate decides whether a test is kept. ev is nil for successes.
type Predicate func(test subunit.TestID, ev *subunit.Evidence) bool

// FilterOptions selects which outcomes a Filter drops. A true Filter* field
// drops that outcome.
type FilterOptions struct {
	FilterError   bool
	FilterFailure bool
	FilterSuccess bool
	FilterSkip    bool
	FilterXfail   bool
	// Predicate, when set, must also accept a test for it to be kept.
	Predicate Predicate
}

// DefaultFilterOptions drops successes and keeps everything else.
func DefaultFilterOptions() FilterOptions {
	return FilterOptions{FilterSuccess: true}
}

// current is the test between its start and stop.
type current struct {
	test      subunit.TestID
	forwarded bool
	tags      subunit.TagDelta
}

// Filter forwards only the tests its options keep. A kept test reaches the
// downstream sink as start, outcome, its own tags, stop. A dropped test
// leaves no trace downstream.
type Filter struct {
	next *subunit.Sink
	opts FilterOptions
	cur  *current
}

var (
	_ subunit.SkipResult            = (*Filter)(nil)
	_ subunit.ExpectedFailureResult = (*Filter)(nil)
	_ subunit.TagObserver           = (*Filter)(nil)
	_ subunit.TimeObserver          = (*Filter)(nil)
	_ subunit.ProgressObserver      = (*Filter)(nil)
)

// NewFilter returns a Filter sending kept tests to next.
func NewFilter(next subunit.Result, opts FilterOptions) *Filter {
	return &Filter{next: subunit.NewSink(next), opts: opts}
}

// StartTest records the test; the downstream start waits for the outcome.
func (f *Filter) StartTest(test subunit.TestID) error {
	f.cur = &current{test: test, tags: emptyDelta()}
	return nil
}

// StopTest stops the test downstream if it was forwarded, preceded by the
// tags it accumulated.
func (f *Filter) StopTest(test subunit.TestID) error {
	cur := f.cur
	f.cur = nil
	if cur == nil || !cur.forwarded {
		return nil
	}
	if !cur.tags.Empty() {
		if err := f.next.Tags(cur.tags); err != nil {
			return err
		}
	}
	return f.next.StopTest(test)
}

func (f *Filter) AddSuccess(test subunit.TestID, details subunit.Details) error {
	if !f.keep(f.opts.FilterSuccess, test, nil) {
		return nil
	}
	return f.forward(test, func() error { return f.next.AddSuccess(test, details) })
}

func (f *Filter) AddFailure(test subunit.TestID, ev subunit.Evidence) error {
	if !f.keep(f.opts.FilterFailure, test, &ev) {
		return nil
	}
	return f.forward(test, func() error { return f.next.AddFailure(test, ev) })
}

func (f *Filter) AddError(test subunit.TestID, ev subunit.Evidence) error {
	if !f.keep(f.opts.FilterError, test, &ev) {
		return nil
	}
	return f.forward(test, func() error { return f.next.AddError(test, ev) })
}

func (f *Filter) AddSkip(test subunit.TestID, ev subunit.Evidence) error {
	if !f.keep(f.opts.FilterSkip, test, &ev) {
		return nil
	}
	return f.forward(test, func() error { return f.next.AddSkip(test, ev) })
}

func (f *Filter) AddExpectedFailure(test subunit.TestID, ev subunit.Evidence) error {
	if !f.keep(f.opts.FilterXfail, test, &ev) {
		return nil
	}
	return f.forward(test, func() error { return f.next.AddExpectedFailure(test, ev) })
}

// Tags inside a test are held until the test stops; outside a test they
// apply to the run and go straight through.
func (f *Filter) Tags(d subunit.TagDelta) error {
	if f.cur == nil {
		return f.next.Tags(d)
	}
	acc := f.cur.tags
	acc.Added.Add(d.Added)
	acc.Added.Remove(d.Removed)
	acc.Removed.Add(d.Removed)
	acc.Removed.Remove(d.Added)
	return nil
}

func (f *Filter) Time(t time.Time) error { return f.next.Time(t) }

func (f *Filter) Progress(p subunit.Progress) error { return f.next.Progress(p) }

func (f *Filter) keep(filtered bool, test subunit.TestID, ev *subunit.Evidence) bool {
	if filtered {
		return false
	}
	return f.opts.Predicate == nil || f.opts.Predicate(test, ev)
}

func (f *Filter) forward(test subunit.TestID, outcome func() error) error {
	if f.cur != nil && f.cur.test == test {
		f.cur.forwarded = true
	}
	if err := f.next.StartTest(test); err != nil {
		return err
	}
	return outcome()
}

func emptyDelta() subunit.TagDelta {
	return subunit.TagDelta{Added: subunit.TagSet{}, Removed: subunit.TagSet{}}
}
