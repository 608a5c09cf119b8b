package subunit

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

// lineResult carries a line or a terminal read error from the reader goroutine.
type lineResult struct {
	line string
	err  error
}

// ReadFrom feeds every line of r to the parser, then calls ConnectionLost.
// A final line without a newline is fed with one appended.
//
// Cancellation: lines are read in a background goroutine. On context cancel,
// ReadFrom closes r (if it implements io.Closer) to unblock the read,
// terminates any in-flight test and returns ctx.Err().
func (p *Parser) ReadFrom(ctx context.Context, r io.Reader) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	br := bufio.NewReaderSize(r, 64*1024)
	lines := make(chan lineResult)
	go func() {
		defer close(lines)
		for {
			line, err := br.ReadString('\n')
			if line != "" {
				if !strings.HasSuffix(line, "\n") {
					line += "\n"
				}
				select {
				case lines <- lineResult{line: line}:
				case <-ctx.Done():
					return
				}
			}
			if err != nil {
				if !errors.Is(err, io.EOF) {
					select {
					case lines <- lineResult{err: err}:
					case <-ctx.Done():
					}
				}
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			if c, ok := r.(io.Closer); ok {
				_ = c.Close()
			}
			return errors.Join(ctx.Err(), p.ConnectionLost())
		case res, ok := <-lines:
			if !ok {
				return p.ConnectionLost()
			}
			if res.err != nil {
				return errors.Join(fmt.Errorf("reading subunit stream: %w", res.err), p.ConnectionLost())
			}
			if err := p.Feed(res.line); err != nil {
				return errors.Join(err, p.ConnectionLost())
			}
		}
	}
}
