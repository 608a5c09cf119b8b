// Package stream provides a live terminal display for subunit streams.
package stream

import (
	"fmt"
	"io"
	"strings"

	"github.com/mattn/go-runewidth"
)

const (
	// cursorUp moves to the start of the line n rows up; clearBelow erases
	// from the cursor to the end of the screen.
	cursorUp   = "\033[%dF"
	clearBelow = "\033[J"
)

// screen owns all terminal output while a stream is shown. History lines
// scroll up; the footer stays pinned beneath them and is redrawn after
// every history write.
type screen struct {
	out    io.Writer
	width  int
	height int

	footer []string // already truncated and capped
	drawn  int      // footer rows currently on the terminal
}

func newScreen(out io.Writer, width, height int) *screen {
	if width <= 0 {
		width = 80
	}
	if height <= 0 {
		height = 24
	}
	return &screen{out: out, width: width, height: height}
}

// println appends lines to the history above the footer.
func (sc *screen) println(lines ...string) {
	var b strings.Builder
	sc.erase(&b)
	for _, l := range lines {
		b.WriteString(l)
		b.WriteByte('\n')
	}
	sc.draw(&b)
	_, _ = io.WriteString(sc.out, b.String())
}

// setFooter replaces the pinned footer. A nil slice removes it.
func (sc *screen) setFooter(lines []string) {
	sc.footer = sc.fit(lines)
	var b strings.Builder
	sc.erase(&b)
	sc.draw(&b)
	_, _ = io.WriteString(sc.out, b.String())
}

func (sc *screen) erase(b *strings.Builder) {
	if sc.drawn == 0 {
		return
	}
	fmt.Fprintf(b, cursorUp, sc.drawn)
	b.WriteString(clearBelow)
	sc.drawn = 0
}

func (sc *screen) draw(b *strings.Builder) {
	for _, l := range sc.footer {
		b.WriteString(l)
		b.WriteByte('\n')
	}
	sc.drawn = len(sc.footer)
}

// fit truncates footer lines to the width and keeps the footer within a
// third of the screen height (at least 3 rows), summarizing the rest.
func (sc *screen) fit(lines []string) []string {
	limit := max(sc.height/3, 3)
	var out []string
	for i, l := range lines {
		if len(lines) > limit && i == limit-1 {
			out = append(out, truncateToWidth(fmt.Sprintf("  … %d more", len(lines)-i), sc.width))
			break
		}
		out = append(out, truncateToWidth(l, sc.width))
	}
	return out
}

func truncateToWidth(s string, width int) string {
	if runewidth.StringWidth(s) <= width {
		return s
	}
	tail := "..."
	if width <= len(tail) {
		tail = ""
	}
	return runewidth.Truncate(s, width, tail)
}
