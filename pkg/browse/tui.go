package browse

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/dkoosis/subunit/pkg/render"
)

// Run reads a subunit stream from r and shows it until the user quits.
// Keys are read from the controlling terminal, since r is usually a pipe.
// The exit code is 1 if any test failed or errored.
func Run(ctx context.Context, r io.Reader, out io.Writer, theme render.Theme) (int, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel() // releases the parser if the user quits early
	items, errs := Collect(ctx, r)
	program := tea.NewProgram(newModel(items, errs, theme),
		tea.WithContext(ctx), tea.WithOutput(out), tea.WithInputTTY(), tea.WithAltScreen())
	finalModel, err := program.Run()
	if err != nil {
		return 1, err
	}
	return finalModel.(model).exitCode(), nil
}

type model struct {
	theme render.Theme
	items []Item
	feed  <-chan Item
	errs  <-chan error
	err   error
	done  bool

	selected    int
	viewport    viewport.Model
	ready       bool
	width       int
	height      int
	listWidth   int
	detailWidth int
}

func newModel(feed <-chan Item, errs <-chan error, theme render.Theme) model {
	vp := viewport.New(0, 0)
	vp.SetContent("Waiting for tests...")
	return model{theme: theme, feed: feed, errs: errs, viewport: vp}
}

type itemMsg Item
type doneMsg struct{ err error }

func (m model) Init() tea.Cmd {
	return m.listen()
}

// listen waits for the next item, or for the end of the stream.
func (m model) listen() tea.Cmd {
	return func() tea.Msg {
		it, ok := <-m.feed
		if !ok {
			return doneMsg{err: <-m.errs}
		}
		return itemMsg(it)
	}
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "up", "k":
			if m.selected > 0 {
				m.selected--
				m.refreshViewport()
			}
		case "down", "j":
			if m.selected < len(m.items)-1 {
				m.selected++
				m.refreshViewport()
			}
		case "n":
			m.nextFailure()
		default:
			var cmd tea.Cmd
			m.viewport, cmd = m.viewport.Update(msg)
			return m, cmd
		}
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.listWidth = min(max(m.longestID()+6, 24), m.width/2)
		m.detailWidth = m.width - m.listWidth - 1
		m.viewport.Width = max(m.detailWidth-4, 1)
		m.viewport.Height = max(m.height-8, 1)
		m.ready = true
		m.refreshViewport()
	case itemMsg:
		m.items = append(m.items, Item(msg))
		if len(m.items) == 1 {
			m.refreshViewport()
		}
		return m, m.listen()
	case doneMsg:
		m.done = true
		m.err = msg.err
	}
	return m, nil
}

// nextFailure moves the selection to the next failure or error, wrapping.
func (m *model) nextFailure() {
	n := len(m.items)
	for step := 1; step <= n; step++ {
		i := (m.selected + step) % n
		if m.items[i].Failed() {
			m.selected = i
			m.refreshViewport()
			return
		}
	}
}

func (m *model) longestID() int {
	longest := 0
	for _, it := range m.items {
		longest = max(longest, len(it.Test))
	}
	return longest
}

func (m *model) refreshViewport() {
	if m.selected < 0 || m.selected >= len(m.items) {
		return
	}
	m.viewport.SetContent(detail(m.items[m.selected]))
	m.viewport.GotoTop()
}

// detail renders the right-hand pane for one item.
func detail(it Item) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "outcome: %s\n", it.Outcome)
	if it.Duration > 0 {
		fmt.Fprintf(&sb, "duration: %s\n", formatDuration(it.Duration))
	}
	if len(it.Tags) > 0 {
		fmt.Fprintf(&sb, "tags: %s\n", strings.Join(it.Tags, " "))
	}
	if it.Message != "" {
		sb.WriteString("\n")
		sb.WriteString(it.Message)
		sb.WriteString("\n")
	}
	return sb.String()
}

func (m model) View() string {
	if !m.ready {
		return "Loading..."
	}
	contentHeight := max(m.height-6, 5)

	listPanel := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(m.theme.Muted.GetForeground()).
		Width(m.listWidth).
		Render(fitLines(m.renderList(contentHeight), contentHeight))

	var detailContent string
	if m.selected < len(m.items) {
		header := m.theme.Bold.Render(render.Truncate(string(m.items[m.selected].Test), m.detailWidth-4))
		detailContent = header + "\n\n" + m.viewport.View()
	} else {
		detailContent = "Waiting for tests..."
	}
	detailPanel := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(m.theme.Primary.GetForeground()).
		Width(m.detailWidth).
		Render(fitLines(detailContent, contentHeight))

	panels := lipgloss.JoinHorizontal(lipgloss.Top, listPanel, detailPanel)
	return lipgloss.JoinVertical(lipgloss.Left, panels, m.statusLine())
}

// renderList renders the window of the list that keeps the selection visible.
func (m model) renderList(height int) string {
	first := 0
	if m.selected >= height {
		first = m.selected - height + 1
	}
	var lines []string
	for i := first; i < len(m.items) && i < first+height; i++ {
		it := m.items[i]
		icon, style := m.theme.OutcomeStyle(it.Outcome)
		name := render.Truncate(string(it.Test), m.listWidth-4)
		if i == m.selected {
			lines = append(lines, m.theme.Bold.Reverse(true).Render(icon+" "+name))
			continue
		}
		lines = append(lines, style.Render(icon)+" "+name)
	}
	return strings.Join(lines, "\n")
}

func (m model) statusLine() string {
	failed := 0
	for _, it := range m.items {
		if it.Failed() {
			failed++
		}
	}
	state := "running"
	switch {
	case m.err != nil:
		state = "stream error: " + m.err.Error()
	case m.done:
		state = "done"
	}
	help := "↑/↓ navigate • n next failure • q quit"
	return m.theme.Muted.Render(fmt.Sprintf("%d tests, %d failed, %s • %s", len(m.items), failed, state, help))
}

// fitLines pads or truncates s to exactly n lines.
func fitLines(s string, n int) string {
	lines := strings.Split(s, "\n")
	for len(lines) < n {
		lines = append(lines, "")
	}
	return strings.Join(lines[:n], "\n")
}

func formatDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	return fmt.Sprintf("%.1fs", d.Round(100*time.Millisecond).Seconds())
}

func (m model) exitCode() int {
	for _, it := range m.items {
		if it.Failed() {
			return 1
		}
	}
	if m.err != nil {
		return 2
	}
	return 0
}
