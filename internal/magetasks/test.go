package magetasks

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"

	"github.com/magefile/mage/sh"

	"github.com/dkoosis/subunit/pkg/render"
	"github.com/dkoosis/subunit/pkg/results"
	"github.com/dkoosis/subunit/pkg/subunit"
	"github.com/dkoosis/subunit/pkg/testjson"
)

// TestAll runs all tests.
func TestAll() error {
	if err := Run("Tests", "go", "test", "./..."); err != nil {
		PrintError("Tests failed")
		return err
	}
	PrintSuccess("All tests passed")
	return nil
}

// TestCoverage runs tests with coverage.
func TestCoverage() error {
	if err := Run("Test Coverage", "go", "test", "-coverprofile=coverage.out", "./..."); err != nil {
		PrintError("Tests failed")
		return err
	}
	_ = sh.RunV("go", "tool", "cover", "-func=coverage.out")
	PrintSuccess("Coverage report generated")
	return nil
}

// TestRace runs tests with race detector.
func TestRace() error {
	if err := Run("Race Detector", "go", "test", "-race", "./..."); err != nil {
		PrintError("Race detector found issues")
		return err
	}
	PrintSuccess("No race conditions detected")
	return nil
}

// TestReport runs the tests as go test -json, converts the events to
// subunit and prints the summary.
func TestReport() error {
	PrintH2Header("Test Report")

	var out bytes.Buffer
	cmd := exec.Command("go", "test", "-json", "./...")
	cmd.Stdout = &out
	cmd.Stderr = os.Stderr
	runErr := cmd.Run()
	var exitErr *exec.ExitError
	if runErr != nil && !errors.As(runErr, &exitErr) {
		return fmt.Errorf("running go test: %w", runErr)
	}

	stats, err := summarizeGoTest(context.Background(), &out, Console, consoleTheme())
	if err != nil {
		return err
	}
	if !stats.WasSuccessful() {
		return fmt.Errorf("%d of %d tests failed", stats.Failed, stats.Total)
	}
	return nil
}

// summarizeGoTest reads go test -json events from r, prints the failing
// tests and the stats to w, and returns the stats.
func summarizeGoTest(ctx context.Context, r io.Reader, w io.Writer, theme render.Theme) (*results.Stats, error) {
	var sub bytes.Buffer
	if _, err := testjson.ToSubunit(ctx, r, &sub); err != nil {
		return nil, fmt.Errorf("converting test events: %w", err)
	}

	stats := results.NewStats()
	failures := &results.List{OnlyFailures: true}
	sink := subunit.NewSink(tee{stats, failures})
	p := subunit.NewParser(sink, subunit.WithPassthrough(io.Discard))
	if err := p.ReadFrom(ctx, &sub); err != nil {
		return nil, fmt.Errorf("reading converted stream: %w", err)
	}

	if entries := failures.Entries(); len(entries) > 0 {
		fmt.Fprint(w, render.RenderList(entries, theme, 0))
	}
	fmt.Fprint(w, render.RenderStats(stats, theme))
	return stats, nil
}

// tee sends every event to both results.
type tee struct {
	stats *results.Stats
	list  *results.List
}

func (t tee) StartTest(id subunit.TestID) error {
	return errors.Join(t.stats.StartTest(id), t.list.StartTest(id))
}

func (t tee) StopTest(id subunit.TestID) error {
	return errors.Join(t.stats.StopTest(id), t.list.StopTest(id))
}

func (t tee) AddSuccess(id subunit.TestID, d subunit.Details) error {
	return errors.Join(t.stats.AddSuccess(id, d), t.list.AddSuccess(id, d))
}

func (t tee) AddFailure(id subunit.TestID, ev subunit.Evidence) error {
	return errors.Join(t.stats.AddFailure(id, ev), t.list.AddFailure(id, ev))
}

func (t tee) AddError(id subunit.TestID, ev subunit.Evidence) error {
	return errors.Join(t.stats.AddError(id, ev), t.list.AddError(id, ev))
}

func (t tee) AddSkip(id subunit.TestID, ev subunit.Evidence) error {
	return errors.Join(t.stats.AddSkip(id, ev), t.list.AddSkip(id, ev))
}

func (t tee) Tags(d subunit.TagDelta) error { return t.stats.Tags(d) }
