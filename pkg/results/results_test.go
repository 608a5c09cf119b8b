package results

import (
	"bytes"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dkoosis/subunit/pkg/subunit"
)

// calls records sink calls as short strings.
type calls struct {
	log []string
}

func (c *calls) addf(format string, args ...any) error {
	c.log = append(c.log, fmt.Sprintf(format, args...))
	return nil
}

func (c *calls) StartTest(test subunit.TestID) error { return c.addf("start %s", test) }
func (c *calls) StopTest(test subunit.TestID) error  { return c.addf("stop %s", test) }
func (c *calls) AddSuccess(test subunit.TestID, _ subunit.Details) error {
	return c.addf("success %s", test)
}
func (c *calls) AddFailure(test subunit.TestID, ev subunit.Evidence) error {
	return c.addf("failure %s: %s", test, strings.TrimSpace(ev.Message()))
}
func (c *calls) AddError(test subunit.TestID, ev subunit.Evidence) error {
	return c.addf("error %s: %s", test, strings.TrimSpace(ev.Message()))
}

// fullCalls adds every optional capability.
type fullCalls struct {
	calls
}

func (c *fullCalls) AddSkip(test subunit.TestID, ev subunit.Evidence) error {
	return c.addf("skip %s: %s", test, strings.TrimSpace(ev.Message()))
}
func (c *fullCalls) AddExpectedFailure(test subunit.TestID, _ subunit.Evidence) error {
	return c.addf("xfail %s", test)
}
func (c *fullCalls) Tags(d subunit.TagDelta) error { return c.addf("tags %s", d) }
func (c *fullCalls) Time(t time.Time) error        { return c.addf("time %s", t.Format(time.RFC3339)) }
func (c *fullCalls) Progress(p subunit.Progress) error {
	return c.addf("progress %s", p)
}

// parse feeds a subunit stream to res.
func parse(t *testing.T, res subunit.Result, stream string) {
	t.Helper()
	p := subunit.NewParser(res, subunit.WithPassthrough(nil))
	for _, line := range strings.SplitAfter(stream, "\n") {
		if line == "" {
			continue
		}
		require.NoError(t, p.Feed(line))
	}
	require.NoError(t, p.ConnectionLost())
}

const mixedStream = "test: a\nsuccess: a\n" +
	"test: b\nfailure: b [\nbad value\n]\n" +
	"test: c\nerror: c\n" +
	"test: d\nskip: d [\nlater\n]\n" +
	"test: e\nxfail: e\n"

func TestFilter_DefaultDropsSuccesses(t *testing.T) {
	down := &fullCalls{}
	parse(t, NewFilter(down, DefaultFilterOptions()), mixedStream)

	assert.Equal(t, []string{
		"start b", "failure b: bad value", "stop b",
		"start c", "error c: ", "stop c",
		"start d", "skip d: later", "stop d",
		"start e", "xfail e", "stop e",
	}, down.log)
}

func TestFilter_Toggles(t *testing.T) {
	tests := []struct {
		name string
		opts FilterOptions
		want []string
	}{
		{
			name: "keep everything",
			opts: FilterOptions{},
			want: []string{"a", "b", "c", "d", "e"},
		},
		{
			name: "failures only",
			opts: FilterOptions{FilterError: true, FilterSuccess: true, FilterSkip: true, FilterXfail: true},
			want: []string{"b"},
		},
		{
			name: "no errors or skips",
			opts: FilterOptions{FilterError: true, FilterSkip: true},
			want: []string{"a", "b", "e"},
		},
		{
			name: "drop all",
			opts: FilterOptions{FilterError: true, FilterFailure: true, FilterSuccess: true, FilterSkip: true, FilterXfail: true},
			want: nil,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			down := &fullCalls{}
			parse(t, NewFilter(down, tt.opts), mixedStream)

			var started []string
			for _, c := range down.log {
				if id, ok := strings.CutPrefix(c, "start "); ok {
					started = append(started, id)
				}
			}
			assert.Equal(t, tt.want, started)
			assert.Len(t, down.log, 3*len(tt.want), "each kept test is start, outcome, stop")
		})
	}
}

func TestFilter_Predicate(t *testing.T) {
	down := &fullCalls{}
	opts := FilterOptions{
		Predicate: func(test subunit.TestID, ev *subunit.Evidence) bool {
			if ev == nil {
				return test == "a"
			}
			return strings.Contains(ev.Message(), "later")
		},
	}
	parse(t, NewFilter(down, opts), mixedStream)

	assert.Equal(t, []string{
		"start a", "success a", "stop a",
		"start d", "skip d: later", "stop d",
	}, down.log)
}

func TestFilter_Tags(t *testing.T) {
	stream := "tags: global\n" +
		"test: a\ntags: dropped\nsuccess: a\n" +
		"test: b\ntags: t2 -x\ntags: t3\nfailure: b\n" +
		"tags: -global\n"

	down := &fullCalls{}
	parse(t, NewFilter(down, DefaultFilterOptions()), stream)

	assert.Equal(t, []string{
		"tags global",
		"start b",
		"failure b: ",
		"tags t2 t3 -x",
		"stop b",
		"tags -global",
	}, down.log)
}

func TestFilter_TimeAndProgressPassThrough(t *testing.T) {
	stream := "progress: 2\ntime: 2024-01-02 03:04:05Z\ntest: a\nsuccess: a\n"
	down := &fullCalls{}
	parse(t, NewFilter(down, DefaultFilterOptions()), stream)

	assert.Equal(t, []string{"progress 2", "time 2024-01-02T03:04:05Z"}, down.log)
}

func TestFilter_DegradesForPlainDownstream(t *testing.T) {
	down := &calls{}
	parse(t, NewFilter(down, DefaultFilterOptions()), mixedStream)

	assert.Equal(t, []string{
		"start b", "failure b: bad value", "stop b",
		"start c", "error c: ", "stop c",
		"start d", "error d: later", "stop d",
		"start e", "success e", "stop e",
	}, down.log)
}

func TestStats(t *testing.T) {
	stream := "tags: unit\n" + mixedStream + "test: f\ntags: slow -unit\nfailure: f\n" + "test: g\n"
	stats := NewStats()
	parse(t, stats, stream)

	assert.Equal(t, 7, stats.Total)
	assert.Equal(t, 4, stats.Failed, "two failures, an error and the truncated test")
	assert.Equal(t, 1, stats.Skipped)
	assert.Equal(t, 2, stats.Passed())
	assert.False(t, stats.WasSuccessful())
	assert.Equal(t, []string{"slow", "unit"}, stats.SeenTags.Sorted())

	var buf bytes.Buffer
	require.NoError(t, stats.Format(&buf))
	assert.Equal(t, "Total tests:       7\n"+
		"Passed tests:      2\n"+
		"Failed tests:      4\n"+
		"Skipped tests:     1\n"+
		"Seen tags: slow, unit\n", buf.String())
}

func TestStats_Empty(t *testing.T) {
	var s Stats
	assert.True(t, s.WasSuccessful())
	require.NoError(t, s.Tags(subunit.ParseTags([]string{"x"})))
	assert.True(t, s.SeenTags.Has("x"))

	var buf bytes.Buffer
	require.NoError(t, NewStats().Format(&buf))
	assert.Contains(t, buf.String(), "Seen tags: \n")
}

func TestList(t *testing.T) {
	all := &List{}
	parse(t, all, mixedStream)
	require.Len(t, all.Entries(), 5)
	assert.Equal(t, Entry{Test: "b", Outcome: subunit.OutcomeFailure, Message: "bad value\n"}, all.Entries()[1])
	assert.Equal(t, Entry{Test: "a", Outcome: subunit.OutcomeSuccess}, all.Entries()[0])

	failing := &List{OnlyFailures: true}
	parse(t, failing, mixedStream)
	var ids []subunit.TestID
	for _, e := range failing.Entries() {
		assert.True(t, e.Failed())
		ids = append(ids, e.Test)
	}
	assert.Equal(t, []subunit.TestID{"b", "c"}, ids)
}
