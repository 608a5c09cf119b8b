// Package tags rewrites the tag directives of a subunit stream.
//
// A rewrite applies a global delta: its additions and removals are
// announced once at the start of the stream, and every later tags: line
// loses the instructions the global delta already settles. Lines that are
// not tags: directives are copied unchanged.
package tags

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/dkoosis/subunit/pkg/subunit"
)

const directive = "tags:"

// Rewriter applies a global tag delta line by line.
type Rewriter struct {
	w       io.Writer
	global  subunit.TagDelta
	started bool
}

// NewRewriter returns a Rewriter applying tokens ("tag" or "-tag") to w.
func NewRewriter(w io.Writer, tokens []string) *Rewriter {
	return &Rewriter{w: w, global: subunit.ParseTags(tokens)}
}

// Start writes the global delta. Line calls Start on first use.
func (r *Rewriter) Start() error {
	if r.started {
		return nil
	}
	r.started = true
	return r.writeTags(r.global)
}

// Line rewrites one line.
func (r *Rewriter) Line(line string) error {
	if err := r.Start(); err != nil {
		return err
	}
	if !strings.HasPrefix(line, directive) {
		return r.write(line)
	}
	delta := subunit.ParseTags(strings.Fields(line[len(directive):]))
	return r.writeTags(r.strip(delta))
}

// strip drops every instruction naming a tag the global delta mentions,
// in either direction. Stripping both directions makes a second pass over
// the output a no-op.
func (r *Rewriter) strip(d subunit.TagDelta) subunit.TagDelta {
	return subunit.TagDelta{
		Added:   d.Added.Minus(r.global.Removed, r.global.Added),
		Removed: d.Removed.Minus(r.global.Added, r.global.Removed),
	}
}

func (r *Rewriter) writeTags(d subunit.TagDelta) error {
	if d.Empty() {
		return nil
	}
	return r.write(directive + " " + d.String() + "\n")
}

func (r *Rewriter) write(s string) error {
	if _, err := io.WriteString(r.w, s); err != nil {
		return fmt.Errorf("writing rewritten stream: %w", err)
	}
	return nil
}

// Rewrite copies the subunit stream in to out, applying the tag tokens.
func Rewrite(in io.Reader, out io.Writer, tokens []string) error {
	rw := NewRewriter(out, tokens)
	if err := rw.Start(); err != nil {
		return err
	}
	br := bufio.NewReader(in)
	for {
		line, err := br.ReadString('\n')
		if line != "" {
			if werr := rw.Line(line); werr != nil {
				return werr
			}
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return fmt.Errorf("reading stream: %w", err)
		}
	}
}
