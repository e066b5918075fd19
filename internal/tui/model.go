package tui

import (
	"fmt"
	"strings"
	"sync"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/matsen/labsite/internal/view"
	"github.com/matsen/labsite/internal/viz"
)

// Styles
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color(viz.ThemeColor)).
			MarginLeft(2).
			MarginTop(1)

	descriptionStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#525252")).
				MarginLeft(2)

	frameStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#E5E5E5")).
			Padding(0, 1).
			MarginLeft(2)

	skeletonStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#A3A3A3")).
			Background(lipgloss.Color("#F5F5F5"))

	emptyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6B7280")).
			Padding(1, 4)

	detailStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#333333")).
			MarginLeft(2).
			MarginTop(1)

	hintStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(lipgloss.Color("#1F2937")).
			Padding(0, 1).
			MarginLeft(2)

	hintIconStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#4ADE80")).
			Background(lipgloss.Color("#1F2937"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888888")).
			MarginTop(1).
			MarginLeft(2)
)

type keyMap struct {
	Select key.Binding
	Clear  key.Binding
	Up     key.Binding
	Down   key.Binding
	Quit   key.Binding
}

var keys = keyMap{
	Select: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "copy edge"),
	),
	Clear: key.NewBinding(
		key.WithKeys("esc"),
		key.WithHelp("esc", "clear selection"),
	),
	Up: key.NewBinding(
		key.WithKeys("up", "k"),
		key.WithHelp("↑/k", "up"),
	),
	Down: key.NewBinding(
		key.WithKeys("down", "j"),
		key.WithHelp("↓/j", "down"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Select, k.Clear, k.Up, k.Down, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Select, k.Clear},
		{k.Up, k.Down},
		{k.Quit},
	}
}

// changeMsg reports that the view's state changed outside of Update, e.g. the copy
// hint timer expired.
type changeMsg struct{}

const (
	skeletonWidth  = 60
	skeletonHeight = 12
	minTableHeight = 5
	chromeHeight   = 14 // title, description, detail pane, hint, help
)

// Model is the bubbletea model hosting a graph view.
type Model struct {
	view    *view.View
	widget  *Widget
	changes chan struct{}
	done    chan struct{} // closed on quit; releases waitForChange
	stopped *sync.Once
	table   table.Model
	help    help.Model
	edgeIDs []string
	width   int
	height  int
	err     error
}

// New creates a model for v, which must render through w.
func New(v *view.View, w *Widget) Model {
	t := table.New(
		table.WithColumns(columns(80)),
		table.WithFocused(true),
		table.WithHeight(10),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color(viz.LinkBaseColor)).
		BorderBottom(true).
		Bold(true)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("#FFFFFF")).
		Background(lipgloss.Color(viz.ThemeColor)).
		Bold(false)
	t.SetStyles(s)

	changes := make(chan struct{}, 1)
	v.OnChange(func() {
		select {
		case changes <- struct{}{}:
		default: // a redraw is already pending
		}
	})

	return Model{
		view:    v,
		widget:  w,
		changes: changes,
		done:    make(chan struct{}),
		stopped: &sync.Once{},
		table:   t,
		help:    help.New(),
	}
}

func columns(width int) []table.Column {
	nameWidth := (width - 20) / 2
	if nameWidth < 12 {
		nameWidth = 12
	}
	return []table.Column{
		{Title: "Author", Width: nameWidth},
		{Title: "Co-author", Width: nameWidth},
		{Title: "Papers", Width: 8},
	}
}

// waitForChange blocks until the view changes or the model stops.
func (m Model) waitForChange() tea.Msg {
	select {
	case <-m.changes:
		return changeMsg{}
	case <-m.done:
		return nil
	}
}

// stop releases a pending waitForChange. Safe to call more than once.
func (m Model) stop() {
	m.stopped.Do(func() { close(m.done) })
}

// Init starts listening for view changes.
func (m Model) Init() tea.Cmd {
	return m.waitForChange
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.table.SetColumns(columns(msg.Width))
		height := msg.Height - chromeHeight
		if height < minTableHeight {
			height = minTableHeight
		}
		m.table.SetHeight(height)

		// The terminal size is known, so the view can draw.
		if err := m.view.Mount(); err != nil {
			m.err = err
		}
		m.refreshRows()
		return m, nil

	case changeMsg:
		m.refreshRows()
		return m, m.waitForChange

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Quit):
			m.view.Unmount()
			m.stop()
			return m, tea.Quit
		case key.Matches(msg, keys.Select):
			if id, ok := m.cursorEdge(); ok {
				m.widget.SelectEdge(id)
			}
			return m, nil
		case key.Matches(msg, keys.Clear):
			m.widget.ClickBackground()
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

// refreshRows rebuilds the table from the widget's edges.
func (m *Model) refreshRows() {
	edges := m.widget.Edges()
	if len(edges) == len(m.edgeIDs) && m.sameEdges(edges) {
		return
	}

	rows := make([]table.Row, len(edges))
	m.edgeIDs = make([]string, len(edges))
	for i, e := range edges {
		rows[i] = table.Row{e.From, e.To, fmt.Sprintf("%d", e.Value)}
		m.edgeIDs[i] = e.ID
	}
	m.table.SetRows(rows)
	if m.table.Cursor() >= len(rows) {
		m.table.SetCursor(0)
	}
}

func (m *Model) sameEdges(edges []viz.Edge) bool {
	for i, e := range edges {
		if m.edgeIDs[i] != e.ID {
			return false
		}
	}
	return true
}

func (m Model) cursorEdge() (string, bool) {
	i := m.table.Cursor()
	if i < 0 || i >= len(m.edgeIDs) {
		return "", false
	}
	return m.edgeIDs[i], true
}

// View renders the screen.
func (m Model) View() string {
	state := m.view.State()

	var sb strings.Builder
	sb.WriteString(titleStyle.Render(state.Config.Title))
	sb.WriteString("\n")
	if state.Config.Description != "" {
		sb.WriteString(descriptionStyle.Render(state.Config.Description))
		sb.WriteString("\n")
	}
	sb.WriteString("\n")

	switch state.Status {
	case view.StatusPlaceholder:
		sb.WriteString(frameStyle.Render(skeleton(state.Embedded)))
	case view.StatusEmpty:
		sb.WriteString(frameStyle.Render(emptyStyle.Render("▦  None")))
	case view.StatusError:
		sb.WriteString(frameStyle.Render(emptyStyle.Render("Could not draw the graph: " + state.Err.Error())))
	case view.StatusGraph:
		sb.WriteString(frameStyle.Render(m.table.View()))
		sb.WriteString("\n")
		sb.WriteString(detailStyle.Render(fmt.Sprintf("%d authors, %d links", state.Nodes, state.Edges)))
		if detail := m.cursorDetail(); detail != "" {
			sb.WriteString("\n")
			sb.WriteString(detailStyle.Render(detail))
		}
	}
	sb.WriteString("\n")

	if state.Copied {
		sb.WriteString("\n")
		sb.WriteString(hintStyle.Render(hintIconStyle.Render("✓") + " Copied!"))
		sb.WriteString("\n")
	}
	if m.err != nil && state.Status != view.StatusError {
		sb.WriteString("\n")
		sb.WriteString(detailStyle.Render("Error: " + m.err.Error()))
		sb.WriteString("\n")
	}

	sb.WriteString(helpStyle.Render(m.help.View(keys)))
	return sb.String()
}

// cursorDetail is the copy text of the edge under the cursor.
func (m Model) cursorDetail() string {
	id, ok := m.cursorEdge()
	if !ok {
		return ""
	}
	for _, e := range m.widget.Edges() {
		if e.ID == id {
			return viz.CopyText(e.Title)
		}
	}
	return ""
}

// skeleton is the placeholder drawn until the terminal size is known.
func skeleton(embedded bool) string {
	height := skeletonHeight
	if embedded {
		height = skeletonHeight / 2
	}
	line := strings.Repeat("░", skeletonWidth)
	lines := make([]string, height)
	for i := range lines {
		lines[i] = line
	}
	return skeletonStyle.Render(strings.Join(lines, "\n"))
}

// Run runs the browser until the user quits. The view is unmounted on exit.
func Run(v *view.View, w *Widget, opts ...tea.ProgramOption) error {
	defer v.Unmount()
	m := New(v, w)
	defer m.stop()
	_, err := tea.NewProgram(m, opts...).Run()
	return err
}
