package testjson

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recorder collects everything a Decode run delivers.
type recorder struct {
	events    []TestEvent
	malformed []string
}

func (r *recorder) Event(e TestEvent) error {
	r.events = append(r.events, e)
	return nil
}

func (r *recorder) Malformed(line []byte) error {
	r.malformed = append(r.malformed, string(line))
	return nil
}

func TestDecode_EventsAndMalformedLines(t *testing.T) {
	input := "warning: no go files\r\n" +
		`{"Action":"start","Package":"example.com/pkg"}` + "\n" +
		"\n" +
		`{"Action":"run","Package":"example.com/pkg","Test":"TestFoo"}` + "\n" +
		"{CORRUPTED}\n" +
		`{"Action":"pass","Package":"example.com/pkg","Test":"TestFoo","Elapsed":0.01}`

	var rec recorder
	malformed, err := Decode(context.Background(), strings.NewReader(input), &rec)
	require.NoError(t, err)

	assert.Equal(t, 2, malformed)
	assert.Equal(t, []string{"warning: no go files", "{CORRUPTED}"}, rec.malformed)
	require.Len(t, rec.events, 3)
	assert.Equal(t, ActionStart, rec.events[0].Action)
	assert.Equal(t, "TestFoo", rec.events[1].Test)
	assert.True(t, rec.events[2].Terminal(), "last line needs no trailing newline")
	assert.InDelta(t, 0.01, rec.events[2].Elapsed, 1e-9)
}

func TestDecode_LongLine(t *testing.T) {
	long := strings.Repeat("x", 2<<20)
	input := `{"Action":"output","Package":"p","Test":"T","Output":"` + long + `"}` + "\n"

	var rec recorder
	_, err := Decode(context.Background(), strings.NewReader(input), &rec)
	require.NoError(t, err)
	require.Len(t, rec.events, 1)
	assert.Len(t, rec.events[0].Output, len(long))
}

func TestDecode_StopsOnHandlerError(t *testing.T) {
	input := strings.Repeat(`{"Action":"run","Package":"x","Test":"T"}`+"\n", 5)
	stop := errors.New("stop")

	count := 0
	_, err := Decode(context.Background(), strings.NewReader(input), EventFunc(func(TestEvent) error {
		count++
		if count == 2 {
			return stop
		}
		return nil
	}))
	require.ErrorIs(t, err, stop)
	assert.Equal(t, 2, count)
}

func TestEventFunc_IgnoresMalformed(t *testing.T) {
	malformed, err := Decode(context.Background(), strings.NewReader("junk\n"), EventFunc(func(TestEvent) error {
		t.Fatal("no events expected")
		return nil
	}))
	require.NoError(t, err)
	assert.Equal(t, 1, malformed)
}

// stalledReader blocks in Read until closed.
type stalledReader struct{ closed chan struct{} }

func (s *stalledReader) Read([]byte) (int, error) {
	<-s.closed
	return 0, io.ErrClosedPipe
}

func (s *stalledReader) Close() error {
	select {
	case <-s.closed:
	default:
		close(s.closed)
	}
	return nil
}

func TestDecode_CancelClosesReader(t *testing.T) {
	r := &stalledReader{closed: make(chan struct{})}
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		_, err := Decode(ctx, r, EventFunc(func(TestEvent) error { return nil }))
		done <- err
	}()

	select {
	case err := <-done:
		require.ErrorIs(t, err, context.DeadlineExceeded)
	case <-time.After(2 * time.Second):
		t.Fatal("Decode still blocked after cancellation")
	}
	select {
	case <-r.closed:
	default:
		t.Error("reader was not closed")
	}
}

func TestKnownAction(t *testing.T) {
	for _, a := range []string{ActionStart, ActionRun, ActionOutput, ActionPass, ActionFail, ActionSkip, ActionBench} {
		assert.True(t, KnownAction(a), a)
	}
	assert.False(t, KnownAction("explode"))
	assert.False(t, KnownAction(""))
}
