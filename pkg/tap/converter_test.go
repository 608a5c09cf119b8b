package tap

import (
	"bytes"
	"strings"
	"testing"

	"github.com/dkoosis/subunit/pkg/subunit"
)

func convert(t *testing.T, in string) (string, int) {
	t.Helper()
	var out bytes.Buffer
	n, err := ToSubunit(strings.NewReader(in), &out)
	if err != nil {
		t.Fatalf("ToSubunit() error: %v", err)
	}
	return out.String(), n
}

func TestToSubunit(t *testing.T) {
	tests := []struct {
		name  string
		in    string
		want  string
		tests int
	}{
		{
			name: "gap in numbering",
			in:   "1..3\nok 1 first\nok 3 third\n",
			want: "test: test 1 first\nsuccess: test 1 first\n" +
				"test: test 2\nerror: test 2 [\ntest missing from TAP output\n]\n" +
				"test: test 3 third\nsuccess: test 3 third\n",
			tests: 3,
		},
		{
			name: "plan not reached",
			in:   "1..3\nok 1\n",
			want: "test: test 1\nsuccess: test 1\n" +
				"test: test 2\nerror: test 2 [\ntest missing from TAP output\n]\n" +
				"test: test 3\nerror: test 3 [\ntest missing from TAP output\n]\n",
			tests: 3,
		},
		{
			name:  "empty plan",
			in:    "0..0\n",
			want:  "test: file skip\nskip: file skip\n",
			tests: 1,
		},
		{
			name:  "skipped file with reason",
			in:    "1..0 # Skipped: no database\nok 1\n",
			want:  "test: file skip\nskip: file skip [\nSkipped: no database\n]\nok 1\n",
			tests: 1,
		},
		{
			name: "comments attach to the buffered result",
			in:   "1..2\nnot ok 1 - broken\n# expected 1\n# got 2\nok 2\n",
			want: "test: test 1 - broken\nfailure: test 1 - broken [\n# expected 1\n# got 2\n]\n" +
				"test: test 2\nsuccess: test 2\n",
			tests: 2,
		},
		{
			name: "comments before the first result",
			in:   "# header\nok 1\n",
			want: "test: test 1\nsuccess: test 1 [\n# header\n]\n",
			tests: 1,
		},
		{
			name: "directives",
			in:   "ok 1 # SKIP no network\nnot ok 2 flaky # TODO fix later\nok 3 # TODO\n",
			want: "test: test 1\nskip: test 1 [\nno network\n]\n" +
				"test: test 2 flaky\nxfail: test 2 flaky [\nfix later\n]\n" +
				"test: test 3\nxfail: test 3\n",
			tests: 3,
		},
		{
			name: "bail out",
			in:   "1..4\nok 1\nBail out! database down\nok 2\n",
			want: "test: test 1\nsuccess: test 1\n" +
				"test: Bail out! database down\nerror: Bail out! database down\n" +
				"ok 2\n" +
				"test: test 2\nerror: test 2 [\ntest missing from TAP output\n]\n" +
				"test: test 3\nerror: test 3 [\ntest missing from TAP output\n]\n" +
				"test: test 4\nerror: test 4 [\ntest missing from TAP output\n]\n",
			tests: 5,
		},
		{
			name:  "bail out without reason",
			in:    "Bail out!\n",
			want:  "test: Bail out!\nerror: Bail out!\n",
			tests: 1,
		},
		{
			name:  "non-TAP lines pass through",
			in:    "hello\nok 1 foo # bar\nokay\n",
			want:  "hello\nok 1 foo # bar\nokay\n",
			tests: 0,
		},
		{
			name:  "no plan and unterminated last line",
			in:    "ok\nnot ok",
			want:  "test: test 1\nsuccess: test 1\ntest: test 2\nfailure: test 2\n",
			tests: 2,
		},
		{
			name:  "bracket in directive comment is escaped",
			in:    "ok 1 # SKIP ]weird\n",
			want:  "test: test 1\nskip: test 1 [\n ]weird\n]\n",
			tests: 1,
		},
		{
			name:  "second plan line passes through",
			in:    "1..1\n1..1\nok 1\n",
			want:  "1..1\ntest: test 1\nsuccess: test 1\n",
			tests: 1,
		},
		{
			name:  "oversized test number passes through",
			in:    "1..1\nok 99999999999999999999\nok 1\n",
			want:  "ok 99999999999999999999\ntest: test 1\nsuccess: test 1\n",
			tests: 1,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, n := convert(t, tt.in)
			if got != tt.want {
				t.Errorf("output mismatch\ngot:\n%s\nwant:\n%s", got, tt.want)
			}
			if n != tt.tests {
				t.Errorf("ToSubunit() = %d tests, want %d", n, tt.tests)
			}
		})
	}
}

func TestConverter_States(t *testing.T) {
	var out bytes.Buffer
	c := NewConverter(&out)
	if c.State() != BeforePlan {
		t.Fatalf("initial State() = %v", c.State())
	}
	for _, step := range []struct {
		line string
		want State
	}{
		{"not a plan\n", BeforePlan},
		{"1..2\n", AfterPlan},
		{"ok 1\n", AfterPlan},
		{"Bail out!\n", SkipStream},
		{"ok 2\n", SkipStream},
	} {
		if err := c.Feed(step.line); err != nil {
			t.Fatal(err)
		}
		if c.State() != step.want {
			t.Errorf("after %q State() = %v, want %v", step.line, c.State(), step.want)
		}
	}
	if err := c.Close(); err != nil {
		t.Fatal(err)
	}
	if err := c.Close(); err != nil {
		t.Fatalf("second Close() error: %v", err)
	}
	if c.Emitted() != 3 {
		t.Errorf("Emitted() = %d, want 3", c.Emitted())
	}
}

// counter tallies parsed outcomes.
type counter struct {
	starts   int
	outcomes map[string]int
}

func (c *counter) StartTest(subunit.TestID) error { c.starts++; return nil }
func (c *counter) StopTest(subunit.TestID) error  { return nil }
func (c *counter) AddSuccess(subunit.TestID, subunit.Details) error {
	c.outcomes["success"]++
	return nil
}
func (c *counter) AddFailure(subunit.TestID, subunit.Evidence) error {
	c.outcomes["failure"]++
	return nil
}
func (c *counter) AddError(subunit.TestID, subunit.Evidence) error {
	c.outcomes["error"]++
	return nil
}
func (c *counter) AddSkip(subunit.TestID, subunit.Evidence) error {
	c.outcomes["skip"]++
	return nil
}
func (c *counter) AddExpectedFailure(subunit.TestID, subunit.Evidence) error {
	c.outcomes["xfail"]++
	return nil
}

func TestToSubunit_OutputParses(t *testing.T) {
	in := "1..6\nok 1 a\nnot ok 2 b\n# detail\nok 3 # SKIP later\nnot ok 4 # TODO\n"
	out, _ := convert(t, in)

	c := &counter{outcomes: map[string]int{}}
	var pass bytes.Buffer
	p := subunit.NewParser(c, subunit.WithPassthrough(&pass))
	for _, line := range strings.SplitAfter(out, "\n") {
		if line == "" {
			continue
		}
		if err := p.Feed(line); err != nil {
			t.Fatalf("Feed(%q) error: %v", line, err)
		}
	}
	if p.State() != subunit.OutsideTest {
		t.Errorf("parser left in %v", p.State())
	}
	if pass.Len() != 0 {
		t.Errorf("unexpected passthrough %q", pass.String())
	}

	want := map[string]int{"success": 1, "failure": 1, "skip": 1, "xfail": 1, "error": 2}
	if c.starts != 6 {
		t.Errorf("starts = %d, want 6", c.starts)
	}
	for k, v := range want {
		if c.outcomes[k] != v {
			t.Errorf("outcomes[%s] = %d, want %d", k, c.outcomes[k], v)
		}
	}
}
