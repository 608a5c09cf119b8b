package magetasks

import (
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/dkoosis/subunit/pkg/render"
)

// Console receives task headers and status lines.
var Console io.Writer = os.Stdout

// consoleTheme colors output only when Console is a terminal.
func consoleTheme() render.Theme {
	if f, ok := Console.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		return render.DefaultTheme()
	}
	return render.MonoTheme()
}

// PrintH1Header prints a banner for a multi-step task.
func PrintH1Header(title string) {
	t := consoleTheme()
	rule := t.Primary.Render(strings.Repeat("━", 60))
	fmt.Fprintf(Console, "\n%s\n  %s\n%s\n\n", rule, t.Bold.Render(title), rule)
}

// PrintH2Header prints a section header.
func PrintH2Header(title string) {
	t := consoleTheme()
	fmt.Fprintf(Console, "\n%s %s\n\n", t.Primary.Render("▸"), t.Bold.Render(title))
}

func PrintSuccess(msg string) {
	t := consoleTheme()
	fmt.Fprintf(Console, "%s %s\n", t.Success.Render(t.Icons.Pass), msg)
}

func PrintWarning(msg string) {
	t := consoleTheme()
	fmt.Fprintf(Console, "%s %s\n", t.Warning.Render("!"), msg)
}

func PrintError(msg string) {
	t := consoleTheme()
	fmt.Fprintf(Console, "%s %s\n", t.Error.Render(t.Icons.Fail), msg)
}
