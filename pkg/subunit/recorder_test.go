package subunit

import (
	"bytes"
	"io"
	"log/slog"
	"testing"
	"time"
)

// event is one recorded sink call.
type event struct {
	Kind     string
	Test     TestID
	Message  string
	Details  Details
	Tags     string
	Time     time.Time
	Progress string
}

// recorder is a Result implementing every capability.
type recorder struct {
	events []event
}

func (r *recorder) add(e event) error {
	r.events = append(r.events, e)
	return nil
}

func (r *recorder) outcome(kind string, test TestID, ev Evidence) error {
	e := event{Kind: kind, Test: test, Details: ev.Details}
	if ev.Err != nil {
		e.Message = ev.Err.Description
	}
	return r.add(e)
}

func (r *recorder) StartTest(test TestID) error { return r.add(event{Kind: "start", Test: test}) }
func (r *recorder) StopTest(test TestID) error  { return r.add(event{Kind: "stop", Test: test}) }
func (r *recorder) AddSuccess(test TestID, d Details) error {
	return r.add(event{Kind: "success", Test: test, Details: d})
}
func (r *recorder) AddFailure(test TestID, ev Evidence) error { return r.outcome("failure", test, ev) }
func (r *recorder) AddError(test TestID, ev Evidence) error   { return r.outcome("error", test, ev) }
func (r *recorder) AddSkip(test TestID, ev Evidence) error    { return r.outcome("skip", test, ev) }
func (r *recorder) AddExpectedFailure(test TestID, ev Evidence) error {
	return r.outcome("xfail", test, ev)
}
func (r *recorder) Tags(d TagDelta) error     { return r.add(event{Kind: "tags", Tags: d.String()}) }
func (r *recorder) Time(t time.Time) error    { return r.add(event{Kind: "time", Time: t}) }
func (r *recorder) Progress(p Progress) error { return r.add(event{Kind: "progress", Progress: p.String()}) }

// plainResult exposes only the required Result methods of a recorder.
type plainResult struct {
	r *recorder
}

func (p plainResult) StartTest(test TestID) error             { return p.r.StartTest(test) }
func (p plainResult) StopTest(test TestID) error              { return p.r.StopTest(test) }
func (p plainResult) AddSuccess(test TestID, d Details) error { return p.r.AddSuccess(test, d) }
func (p plainResult) AddFailure(test TestID, ev Evidence) error {
	return p.r.AddFailure(test, ev)
}
func (p plainResult) AddError(test TestID, ev Evidence) error { return p.r.AddError(test, ev) }

// feedAll feeds lines to a parser over res and returns the passthrough output.
func feedAll(t *testing.T, res Result, lines ...string) (*Parser, string) {
	t.Helper()
	var pass bytes.Buffer
	p := NewParser(res, WithPassthrough(&pass))
	for _, l := range lines {
		if err := p.Feed(l); err != nil {
			t.Fatalf("Feed(%q) error: %v", l, err)
		}
	}
	return p, pass.String()
}

func newTestLogger(w io.Writer) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug}))
}
