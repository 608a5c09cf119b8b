package stream

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dkoosis/subunit/pkg/render"
	"github.com/dkoosis/subunit/pkg/subunit"
)

// runStream feeds a subunit document through a streamer and returns the
// output with ANSI escapes removed.
func runStream(t *testing.T, doc string) (string, *streamer) {
	t.Helper()
	var buf bytes.Buffer
	s := newStreamer(newScreen(&buf, 120, 24), nil)
	p := subunit.NewParser(s, subunit.WithPassthrough(s))
	require.NoError(t, p.ReadFrom(context.Background(), strings.NewReader(doc)))
	s.finish()
	return stripANSI(buf.String()), s
}

func TestStreamer_PassingTest_PrintsResultLine(t *testing.T) {
	out, _ := runStream(t, "test: pkg.TestHello\nsuccess: pkg.TestHello\n")
	assert.Contains(t, out, "  · pkg.TestHello\n")
	assert.Contains(t, out, "PASS 1 tests")
}

func TestStreamer_FailingTest_FlushesMessage(t *testing.T) {
	doc := "test: pkg.TestBar\nfailure: pkg.TestBar [\nexpected 1, got 2\n]\n"
	out, s := runStream(t, doc)

	assert.Contains(t, out, "  ✗ pkg.TestBar\n      expected 1, got 2\n")
	assert.Contains(t, out, "FAIL 1/1 tests failed")
	assert.False(t, s.stats.WasSuccessful())
}

func TestStreamer_SkipShowsReason(t *testing.T) {
	out, _ := runStream(t, "test: a\nskip: a [\nno network\n]\n")
	assert.Contains(t, out, "  ○ a  (no network)\n")
	assert.Contains(t, out, "PASS 1 tests, 1 skipped")
}

func TestStreamer_ErrorAndXfail(t *testing.T) {
	out, s := runStream(t, "test: a\nerror: a\ntest: b\nxfail: b\n")
	assert.Contains(t, out, "  ! a\n")
	assert.Contains(t, out, "  ◌ b\n")
	assert.Equal(t, 1, s.stats.Failed)
}

func TestStreamer_LostConnectionIsError(t *testing.T) {
	out, _ := runStream(t, "test: half\n")
	assert.Contains(t, out, "  ! half\n")
	assert.Contains(t, out, "lost connection during test 'half'")
}

func TestStreamer_DurationFromStreamClock(t *testing.T) {
	doc := "time: 2024-01-01 00:00:00Z\ntest: a\ntime: 2024-01-01 00:00:01.5Z\nsuccess: a\n"
	out, _ := runStream(t, doc)
	assert.Contains(t, out, "  · a  1.50s\n")
	assert.Contains(t, out, "PASS (1.5s) 1 tests")
}

func TestStreamer_TagsShownOnResult(t *testing.T) {
	doc := "tags: unit\ntest: a\ntags: slow\nsuccess: a\ntest: b\nsuccess: b\n"
	out, s := runStream(t, doc)
	assert.Contains(t, out, "  · a [slow unit]\n")
	assert.Contains(t, out, "  · b [unit]\n")
	assert.True(t, s.stats.SeenTags.Has("unit"))
}

func TestStreamer_PassthroughPrinted(t *testing.T) {
	out, _ := runStream(t, "building...\ntest: a\nsuccess: a\n")
	assert.Contains(t, out, "building...\n")
}

func TestStreamer_ProgressStack(t *testing.T) {
	var buf bytes.Buffer
	s := newStreamer(newScreen(&buf, 120, 24), nil)

	require.NoError(t, s.Progress(subunit.ProgressSet(3)))
	require.NoError(t, s.Progress(subunit.ProgressCur(2)))
	assert.Equal(t, []int{5}, s.remaining)

	require.NoError(t, s.Progress(subunit.ProgressPush()))
	require.NoError(t, s.Progress(subunit.ProgressSet(1)))
	assert.Equal(t, []int{5, 1}, s.remaining)

	require.NoError(t, s.StartTest("a"))
	require.NoError(t, s.AddSuccess("a", nil))
	require.NoError(t, s.StopTest("a"))
	assert.Equal(t, []int{5, 0}, s.remaining)

	require.NoError(t, s.Progress(subunit.ProgressPop()))
	require.NoError(t, s.Progress(subunit.ProgressPop()))
	assert.Equal(t, []int{5}, s.remaining, "pop never removes the run level")

	require.NoError(t, s.Progress(subunit.ProgressCur(-9)))
	assert.Equal(t, []int{0}, s.remaining)
}

func TestStreamer_FooterShowsRunningTest(t *testing.T) {
	var buf bytes.Buffer
	s := newStreamer(newScreen(&buf, 120, 24), nil)
	require.NoError(t, s.Progress(subunit.ProgressSet(4)))
	require.NoError(t, s.StartTest("pkg.TestSlow"))

	out := stripANSI(buf.String())
	assert.Contains(t, out, "pkg.TestSlow")
	assert.Contains(t, out, "[0 done, 4 remaining]")
	assert.Positive(t, s.sc.drawn)

	s.finish()
	assert.Zero(t, s.sc.drawn)
}

func TestThemeStyle(t *testing.T) {
	style := ThemeStyle(render.MonoTheme())
	assert.Equal(t, "text", stripANSI(style(KindFail, "text")))
	assert.Equal(t, "plain", style(KindPassthrough, "plain"))
}

func TestRun_ExitCodes(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want int
	}{
		{"all pass", "test: a\nsuccess: a\n", 0},
		{"empty", "", 0},
		{"failure", "test: a\nfailure: a\n", 1},
		{"lost connection", "test: a\n", 1},
		{"skip only", "test: a\nskip: a\n", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			got := Run(context.Background(), strings.NewReader(tt.doc), &buf, 80, 24, nil)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRun_ReadErrorIsExitTwo(t *testing.T) {
	var buf bytes.Buffer
	r := io.MultiReader(strings.NewReader("test: a\n"), errReader{})
	assert.Equal(t, 2, Run(context.Background(), r, &buf, 80, 24, nil))
}

func TestRun_CancelledIsExit130(t *testing.T) {
	pr, pw := io.Pipe()
	defer pw.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var buf bytes.Buffer
	assert.Equal(t, 130, Run(ctx, pr, &buf, 80, 24, nil))
}

type errReader struct{}

func (errReader) Read([]byte) (int, error) { return 0, io.ErrUnexpectedEOF }
