package testjson

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// Handler receives a go test -json stream one line at a time.
type Handler interface {
	// Event receives a line that decoded as a test event.
	Event(TestEvent) error
	// Malformed receives any other non-blank line, without its newline.
	Malformed(line []byte) error
}

// EventFunc is a Handler that ignores malformed lines.
type EventFunc func(TestEvent) error

func (f EventFunc) Event(e TestEvent) error { return f(e) }

func (EventFunc) Malformed([]byte) error { return nil }

type lineOrErr struct {
	line []byte
	err  error
}

// Decode reads go test -json events from r and hands them to h until EOF,
// the first handler error, or ctx is done. It returns the number of
// malformed lines seen.
//
// Lines are read on a separate goroutine. When ctx is done Decode closes r
// if it is an io.Closer; otherwise that goroutine exits once its blocked
// read returns.
func Decode(ctx context.Context, r io.Reader, h Handler) (int, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	lines := make(chan lineOrErr)
	go readLines(ctx, bufio.NewReaderSize(r, 64*1024), lines)

	malformed := 0
	for {
		select {
		case <-ctx.Done():
			if c, ok := r.(io.Closer); ok {
				_ = c.Close()
			}
			return malformed, ctx.Err()
		case l, ok := <-lines:
			if !ok {
				return malformed, nil
			}
			if l.err != nil {
				return malformed, fmt.Errorf("reading test events: %w", l.err)
			}
			var e TestEvent
			if json.Unmarshal(l.line, &e) != nil {
				malformed++
				if err := h.Malformed(l.line); err != nil {
					return malformed, err
				}
				continue
			}
			if err := h.Event(e); err != nil {
				return malformed, err
			}
		}
	}
}

// readLines sends each non-blank line of br, trimmed of its line ending.
func readLines(ctx context.Context, br *bufio.Reader, out chan<- lineOrErr) {
	defer close(out)
	send := func(l lineOrErr) bool {
		select {
		case out <- l:
			return true
		case <-ctx.Done():
			return false
		}
	}
	for {
		line, err := br.ReadBytes('\n')
		if line = bytes.TrimRight(line, "\r\n"); len(bytes.TrimSpace(line)) > 0 {
			if !send(lineOrErr{line: line}) {
				return
			}
		}
		if err != nil {
			if !errors.Is(err, io.EOF) {
				send(lineOrErr{err: err})
			}
			return
		}
	}
}
