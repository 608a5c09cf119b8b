package subunit

import "time"

// Result receives the lifecycle of each test: StartTest, exactly one
// outcome, then StopTest.
type Result interface {
	StartTest(test TestID) error
	StopTest(test TestID) error
	AddSuccess(test TestID, details Details) error
	AddFailure(test TestID, ev Evidence) error
	AddError(test TestID, ev Evidence) error
}

// SkipResult is implemented by results that can represent skipped tests.
type SkipResult interface {
	AddSkip(test TestID, ev Evidence) error
}

// ExpectedFailureResult is implemented by results that can represent
// expected failures.
type ExpectedFailureResult interface {
	AddExpectedFailure(test TestID, ev Evidence) error
}

// TagObserver receives tag changes. Outside a test they apply to the rest
// of the run; inside a test, to that test only.
type TagObserver interface {
	Tags(delta TagDelta) error
}

// TimeObserver receives the stream's clock.
type TimeObserver interface {
	Time(t time.Time) error
}

// ProgressObserver receives progress directives.
type ProgressObserver interface {
	Progress(p Progress) error
}

// Sink wraps a Result with its optional capabilities resolved once.
// Every capability method is always callable on a Sink: missing ones
// degrade or drop.
type Sink struct {
	Result

	skip     SkipResult
	xfail    ExpectedFailureResult
	tags     TagObserver
	clock    TimeObserver
	progress ProgressObserver
}

// NewSink resolves the capabilities of r. Wrapping a *Sink returns it as is.
func NewSink(r Result) *Sink {
	if s, ok := r.(*Sink); ok {
		return s
	}
	s := &Sink{Result: r}
	s.skip, _ = r.(SkipResult)
	s.xfail, _ = r.(ExpectedFailureResult)
	s.tags, _ = r.(TagObserver)
	s.clock, _ = r.(TimeObserver)
	s.progress, _ = r.(ProgressObserver)
	return s
}

// CanSkip reports whether the wrapped result represents skips natively.
func (s *Sink) CanSkip() bool { return s.skip != nil }

// CanExpectFailure reports whether the wrapped result represents expected
// failures natively.
func (s *Sink) CanExpectFailure() bool { return s.xfail != nil }

// AddSkip reports a skip, or an error carrying the same evidence when the
// result cannot represent skips.
func (s *Sink) AddSkip(test TestID, ev Evidence) error {
	if s.skip == nil {
		return s.AddError(test, ev)
	}
	return s.skip.AddSkip(test, ev)
}

// AddExpectedFailure reports an expected failure, or a plain success when
// the result cannot represent one.
func (s *Sink) AddExpectedFailure(test TestID, ev Evidence) error {
	if s.xfail == nil {
		return s.AddSuccess(test, nil)
	}
	return s.xfail.AddExpectedFailure(test, ev)
}

// Tags forwards delta if the result observes tags.
func (s *Sink) Tags(delta TagDelta) error {
	if s.tags == nil {
		return nil
	}
	return s.tags.Tags(delta)
}

// Time forwards t if the result observes time.
func (s *Sink) Time(t time.Time) error {
	if s.clock == nil {
		return nil
	}
	return s.clock.Time(t)
}

// Progress forwards p if the result observes progress.
func (s *Sink) Progress(p Progress) error {
	if s.progress == nil {
		return nil
	}
	return s.progress.Progress(p)
}
