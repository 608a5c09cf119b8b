package render

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/dkoosis/subunit/pkg/results"
)

// RenderStats formats run statistics as a verdict line followed by one
// aligned row per count.
func RenderStats(s *results.Stats, theme Theme) string {
	var sb strings.Builder

	if s.WasSuccessful() {
		sb.WriteString(theme.Success.Bold(true).Render(theme.Icons.Pass + " PASS"))
	} else {
		sb.WriteString(theme.Error.Bold(true).Render(theme.Icons.Fail + " FAIL"))
	}
	sb.WriteString(theme.Muted.Render(fmt.Sprintf("  %d tests", s.Total)))
	sb.WriteString("\n")

	rows := []struct {
		label string
		value int
		style lipgloss.Style
	}{
		{"total tests", s.Total, theme.Bold},
		{"passed tests", s.Passed(), theme.Success},
		{"failed tests", s.Failed, theme.Error},
		{"skipped tests", s.Skipped, theme.Warning},
	}

	labelWidth := len("seen tags")
	valueWidth := 1
	for _, r := range rows {
		labelWidth = max(labelWidth, len(r.label))
		valueWidth = max(valueWidth, len(strconv.Itoa(r.value)))
	}

	for _, r := range rows {
		style := r.style
		if r.value == 0 && r.label != "total tests" {
			style = theme.Muted
		}
		sb.WriteString("  ")
		sb.WriteString(padRight(title(r.label), labelWidth))
		sb.WriteString("  ")
		sb.WriteString(style.Render(padLeft(strconv.Itoa(r.value), valueWidth)))
		sb.WriteString("\n")
	}

	tags := s.SeenTags.Sorted()
	if len(tags) > 0 {
		sb.WriteString("  ")
		sb.WriteString(padRight(title("seen tags"), labelWidth))
		sb.WriteString("  ")
		sb.WriteString(theme.Primary.Render(strings.Join(tags, ", ")))
		sb.WriteString("\n")
	}
	return sb.String()
}
