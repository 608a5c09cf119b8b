// Package testjson reads go test -json NDJSON streams and converts them to
// subunit.
package testjson

import "time"

// Actions reported by go test -json.
const (
	ActionStart  = "start"
	ActionRun    = "run"
	ActionPause  = "pause"
	ActionCont   = "cont"
	ActionPass   = "pass"
	ActionFail   = "fail"
	ActionSkip   = "skip"
	ActionOutput = "output"
	ActionBench  = "bench"
)

// KnownAction reports whether a is an action go test -json emits.
func KnownAction(a string) bool {
	switch a {
	case ActionStart, ActionRun, ActionPause, ActionCont, ActionPass,
		ActionFail, ActionSkip, ActionOutput, ActionBench:
		return true
	}
	return false
}

// TestEvent represents a single event from go test -json output.
type TestEvent struct {
	Time    time.Time `json:"Time"`
	Action  string    `json:"Action"`
	Package string    `json:"Package"`
	Test    string    `json:"Test"`
	Elapsed float64   `json:"Elapsed"`
	Output  string    `json:"Output"`
}

// Terminal reports whether the event ends a test or package.
func (e TestEvent) Terminal() bool {
	switch e.Action {
	case ActionPass, ActionFail, ActionSkip:
		return true
	}
	return false
}
