package results

import (
	"fmt"
	"io"
	"strings"

	"github.com/dkoosis/subunit/pkg/subunit"
)

// Stats counts tests by outcome. Errors count as failures; expected
// failures count as passes.
type Stats struct {
	Total    int
	Failed   int
	Skipped  int
	SeenTags subunit.TagSet
}

var (
	_ subunit.SkipResult            = (*Stats)(nil)
	_ subunit.ExpectedFailureResult = (*Stats)(nil)
	_ subunit.TagObserver           = (*Stats)(nil)
)

// NewStats returns an empty Stats.
func NewStats() *Stats {
	return &Stats{SeenTags: subunit.TagSet{}}
}

// Passed is Total minus Failed minus Skipped.
func (s *Stats) Passed() int { return s.Total - s.Failed - s.Skipped }

// WasSuccessful reports whether no test failed or errored.
func (s *Stats) WasSuccessful() bool { return s.Failed == 0 }

func (s *Stats) StartTest(subunit.TestID) error {
	s.Total++
	return nil
}

func (s *Stats) StopTest(subunit.TestID) error { return nil }

func (s *Stats) AddSuccess(subunit.TestID, subunit.Details) error { return nil }

func (s *Stats) AddExpectedFailure(subunit.TestID, subunit.Evidence) error { return nil }

func (s *Stats) AddFailure(subunit.TestID, subunit.Evidence) error {
	s.Failed++
	return nil
}

func (s *Stats) AddError(subunit.TestID, subunit.Evidence) error {
	s.Failed++
	return nil
}

func (s *Stats) AddSkip(subunit.TestID, subunit.Evidence) error {
	s.Skipped++
	return nil
}

// Tags records every added tag; removals do not unsee a tag.
func (s *Stats) Tags(d subunit.TagDelta) error {
	if s.SeenTags == nil {
		s.SeenTags = subunit.TagSet{}
	}
	s.SeenTags.Add(d.Added)
	return nil
}

// Format writes the plain-text report.
func (s *Stats) Format(w io.Writer) error {
	_, err := fmt.Fprintf(w,
		"Total tests:   %5d\nPassed tests:  %5d\nFailed tests:  %5d\nSkipped tests: %5d\nSeen tags: %s\n",
		s.Total, s.Passed(), s.Failed, s.Skipped, strings.Join(s.SeenTags.Sorted(), ", "))
	if err != nil {
		return fmt.Errorf("writing stats: %w", err)
	}
	return nil
}
