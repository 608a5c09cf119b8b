package stream

import (
	"bytes"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScreen_PrintlnWithoutFooter(t *testing.T) {
	var buf bytes.Buffer
	sc := newScreen(&buf, 80, 24)
	sc.println("hello", "world")
	assert.Equal(t, "hello\nworld\n", buf.String())
}

func TestScreen_FooterRedrawnBelowHistory(t *testing.T) {
	var buf bytes.Buffer
	sc := newScreen(&buf, 80, 24)
	sc.setFooter([]string{"running a", "[0 done]"})
	assert.Equal(t, "running a\n[0 done]\n", buf.String())
	assert.Equal(t, 2, sc.drawn)

	buf.Reset()
	sc.println("history")
	assert.Equal(t, "\033[2F\033[Jhistory\nrunning a\n[0 done]\n", buf.String())
	assert.Equal(t, 2, sc.drawn)

	buf.Reset()
	sc.setFooter(nil)
	assert.Equal(t, "\033[2F\033[J", buf.String())
	assert.Zero(t, sc.drawn)
}

func TestScreen_FooterTruncatedToWidth(t *testing.T) {
	var buf bytes.Buffer
	sc := newScreen(&buf, 20, 24)
	sc.setFooter([]string{"this is a very long line that exceeds twenty chars"})
	assert.Equal(t, "this is a very lo...\n", buf.String())
}

func TestScreen_FooterCappedByHeight(t *testing.T) {
	var buf bytes.Buffer
	sc := newScreen(&buf, 80, 12) // room for 4 footer rows
	var lines []string
	for i := range 10 {
		lines = append(lines, fmt.Sprintf("line %d", i))
	}
	sc.setFooter(lines)
	assert.Equal(t, 4, sc.drawn)
	assert.Equal(t, "line 0\nline 1\nline 2\n  … 7 more\n", buf.String())
}

func TestScreen_Defaults(t *testing.T) {
	sc := newScreen(&bytes.Buffer{}, 0, -1)
	assert.Equal(t, 80, sc.width)
	assert.Equal(t, 24, sc.height)
}

func TestTruncateToWidth(t *testing.T) {
	tests := []struct {
		in    string
		width int
		want  string
	}{
		{"short", 20, "short"},
		{"日本語のテスト", 7, "日本..."},
		{"abcdef", 3, "abc"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, truncateToWidth(tt.in, tt.width), "%q at %d", tt.in, tt.width)
	}
}

// stripANSI removes CSI escape sequences.
func stripANSI(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] != '\033' || i+1 >= len(s) || s[i+1] != '[' {
			b.WriteByte(s[i])
			continue
		}
		i += 2
		for i < len(s) && (s[i] < 0x40 || s[i] > 0x7e) {
			i++
		}
	}
	return b.String()
}
