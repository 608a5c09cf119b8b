package results

import (
	"github.com/dkoosis/subunit/pkg/subunit"
)

// Entry is one finished test.
type Entry struct {
	Test    subunit.TestID
	Outcome subunit.Outcome
	Message string
}

// Failed reports whether the entry is a failure or an error.
func (e Entry) Failed() bool {
	return e.Outcome == subunit.OutcomeFailure || e.Outcome == subunit.OutcomeError
}

// List records finished tests in arrival order.
type List struct {
	// OnlyFailures keeps failures and errors only.
	OnlyFailures bool

	entries []Entry
}

var (
	_ subunit.SkipResult            = (*List)(nil)
	_ subunit.ExpectedFailureResult = (*List)(nil)
)

// Entries returns the recorded tests.
func (l *List) Entries() []Entry { return l.entries }

func (l *List) StartTest(subunit.TestID) error { return nil }

func (l *List) StopTest(subunit.TestID) error { return nil }

func (l *List) AddSuccess(test subunit.TestID, _ subunit.Details) error {
	return l.add(test, subunit.OutcomeSuccess, subunit.Evidence{})
}

func (l *List) AddFailure(test subunit.TestID, ev subunit.Evidence) error {
	return l.add(test, subunit.OutcomeFailure, ev)
}

func (l *List) AddError(test subunit.TestID, ev subunit.Evidence) error {
	return l.add(test, subunit.OutcomeError, ev)
}

func (l *List) AddSkip(test subunit.TestID, ev subunit.Evidence) error {
	return l.add(test, subunit.OutcomeSkip, ev)
}

func (l *List) AddExpectedFailure(test subunit.TestID, ev subunit.Evidence) error {
	return l.add(test, subunit.OutcomeXfail, ev)
}

func (l *List) add(test subunit.TestID, outcome subunit.Outcome, ev subunit.Evidence) error {
	e := Entry{Test: test, Outcome: outcome}
	if ev.Err != nil || ev.Details != nil {
		e.Message = ev.Message()
	}
	if l.OnlyFailures && !e.Failed() {
		return nil
	}
	l.entries = append(l.entries, e)
	return nil
}
