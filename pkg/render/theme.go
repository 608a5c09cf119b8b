package render

import (
	"sort"

	"github.com/charmbracelet/lipgloss"

	"github.com/dkoosis/subunit/pkg/subunit"
)

// Theme is the set of styles and outcome icons used by every renderer.
type Theme struct {
	Name    string
	Primary lipgloss.Style
	Success lipgloss.Style
	Warning lipgloss.Style
	Error   lipgloss.Style
	Muted   lipgloss.Style
	Bold    lipgloss.Style
	Icons   ThemeIcons
}

// ThemeIcons defines the icon set for a theme, one per outcome.
type ThemeIcons struct {
	Pass    string
	Fail    string
	Error   string
	Skip    string
	Xfail   string
	Running string
	Bullet  string
}

// palette is the data behind a built-in theme. An empty color leaves the
// style uncolored.
type palette struct {
	primary, success, warning, failure, muted string
	icons                                     ThemeIcons
}

var palettes = map[string]palette{
	"default": {
		primary: "39",  // blue
		success: "34",  // green
		warning: "214", // orange
		failure: "196", // red
		muted:   "242",
		icons:   ThemeIcons{Pass: "✓", Fail: "✗", Error: "‼", Skip: "⚠", Xfail: "◌", Running: "○", Bullet: "·"},
	},
	"orca": {
		primary: "75",  // pale blue
		success: "108", // sage
		warning: "179", // muted gold
		failure: "167", // muted red
		muted:   "245",
		icons:   ThemeIcons{Pass: "✓", Fail: "✗", Error: "!", Skip: "~", Xfail: "·", Running: "○", Bullet: "·"},
	},
	"mono": {
		icons: ThemeIcons{Pass: "+", Fail: "x", Error: "E", Skip: "s", Xfail: "X", Running: "-", Bullet: "-"},
	},
}

func (p palette) theme(name string) Theme {
	fg := func(c string) lipgloss.Style {
		if c == "" {
			return lipgloss.NewStyle()
		}
		return lipgloss.NewStyle().Foreground(lipgloss.Color(c))
	}
	return Theme{
		Name:    name,
		Primary: fg(p.primary),
		Success: fg(p.success),
		Warning: fg(p.warning),
		Error:   fg(p.failure),
		Muted:   fg(p.muted),
		Bold:    lipgloss.NewStyle().Bold(true),
		Icons:   p.icons,
	}
}

// DefaultTheme is the 256-color theme used on terminals.
func DefaultTheme() Theme { return palettes["default"].theme("default") }

// OrcaTheme is a lower-contrast variant of DefaultTheme.
func OrcaTheme() Theme { return palettes["orca"].theme("orca") }

// MonoTheme has no colors and ASCII icons, for pipes and NO_COLOR.
func MonoTheme() Theme { return palettes["mono"].theme("mono") }

// ThemeNames lists the built-in theme names in sorted order.
func ThemeNames() []string {
	names := make([]string, 0, len(palettes))
	for name := range palettes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// LookupTheme returns the named theme and whether it exists.
func LookupTheme(name string) (Theme, bool) {
	p, ok := palettes[name]
	if !ok {
		return Theme{}, false
	}
	return p.theme(name), true
}

// ThemeByName is LookupTheme falling back to DefaultTheme.
func ThemeByName(name string) Theme {
	if t, ok := LookupTheme(name); ok {
		return t
	}
	return DefaultTheme()
}

// OutcomeStyle returns the icon and style for an outcome.
func (t Theme) OutcomeStyle(o subunit.Outcome) (string, lipgloss.Style) {
	switch o {
	case subunit.OutcomeSuccess:
		return t.Icons.Pass, t.Success
	case subunit.OutcomeFailure:
		return t.Icons.Fail, t.Error
	case subunit.OutcomeError:
		return t.Icons.Error, t.Error
	case subunit.OutcomeSkip:
		return t.Icons.Skip, t.Warning
	case subunit.OutcomeXfail:
		return t.Icons.Xfail, t.Muted
	default:
		return t.Icons.Running, t.Muted
	}
}
