package render

import (
	"strings"

	"github.com/dkoosis/subunit/pkg/results"
)

// RenderList formats one line per test: outcome icon and test id, with the
// message of failures and errors indented beneath. Ids wider than width are
// truncated; width <= 0 disables truncation.
func RenderList(entries []results.Entry, theme Theme, width int) string {
	var sb strings.Builder
	idWidth := 0
	if width > 0 {
		idWidth = max(width-4, 8)
	}
	for _, e := range entries {
		icon, style := theme.OutcomeStyle(e.Outcome)
		sb.WriteString("  ")
		sb.WriteString(style.Render(icon))
		sb.WriteString(" ")
		sb.WriteString(Truncate(string(e.Test), idWidth))
		sb.WriteString("\n")

		if !e.Failed() {
			continue
		}
		msg := strings.TrimRight(e.Message, "\n")
		if strings.TrimSpace(msg) == "" {
			continue
		}
		for _, line := range strings.Split(msg, "\n") {
			sb.WriteString("    ")
			sb.WriteString(theme.Muted.Render(line))
			sb.WriteString("\n")
		}
	}
	return sb.String()
}
