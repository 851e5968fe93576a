package observe

import (
	"fmt"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/starlane-io/starlane/internal/auditlog"
)

// Monitor palette, matching the teacher's tui.WaveTheme cyan/muted/white
// scheme.
var (
	monitorCyan  = lipgloss.Color("6")
	monitorMuted = lipgloss.Color("244")
)

var monitorTitleStyle = lipgloss.NewStyle().Bold(true).Foreground(monitorCyan).Margin(1, 0, 1, 2)

// eventMsg wraps a Hub event for the bubbletea update loop.
type eventMsg auditlog.Event

// Model is the live monitor dashboard: a rolling table of the most recent
// auditlog events, newest first, rendering exchange and traversal
// activity as it streams in over sub. sub may be a local Hub subscription
// or a channel fed by an SSE client reading a remote star's /events
// endpoint — the Model doesn't care which.
type Model struct {
	sub      chan auditlog.Event
	onQuit   func()
	table    table.Model
	events   []auditlog.Event
	max      int
}

// NewModel builds a Monitor that reads events from sub until it closes or
// the user quits. onQuit, if non-nil, runs when the user quits (e.g. to
// unsubscribe a Hub or close an SSE connection).
func NewModel(sub chan auditlog.Event, onQuit func()) Model {
	columns := []table.Column{
		{Title: "Time", Width: 12},
		{Title: "Kind", Width: 18},
		{Title: "Point", Width: 24},
		{Title: "Layer", Width: 10},
		{Title: "Status", Width: 6},
		{Title: "Message", Width: 30},
	}
	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(20),
	)
	style := table.DefaultStyles()
	style.Header = style.Header.BorderForeground(monitorCyan).Bold(true)
	style.Selected = style.Selected.Foreground(lipgloss.Color("0")).Background(monitorCyan)
	t.SetStyles(style)

	return Model{sub: sub, onQuit: onQuit, table: t, max: 200}
}

// NewModelFromHub builds a Monitor subscribed directly to an in-process Hub.
func NewModelFromHub(hub *Hub) Model {
	sub := hub.Subscribe()
	return NewModel(sub, func() { hub.Unsubscribe(sub) })
}

func (m Model) Init() tea.Cmd {
	return waitForEvent(m.sub)
}

func waitForEvent(sub chan auditlog.Event) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-sub
		if !ok {
			return tea.Quit()
		}
		return eventMsg(ev)
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			if m.onQuit != nil {
				m.onQuit()
			}
			return m, tea.Quit
		}
	case eventMsg:
		ev := auditlog.Event(msg)
		m.events = append(m.events, ev)
		if len(m.events) > m.max {
			m.events = m.events[len(m.events)-m.max:]
		}
		m.table.SetRows(m.rows())
		return m, waitForEvent(m.sub)
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m Model) rows() []table.Row {
	rows := make([]table.Row, 0, len(m.events))
	for i := len(m.events) - 1; i >= 0; i-- {
		ev := m.events[i]
		rows = append(rows, table.Row{
			ev.Timestamp.Format("15:04:05.000"),
			string(ev.Kind),
			ev.Point,
			ev.Layer,
			statusCell(ev.Status),
			ev.Message,
		})
	}
	return rows
}

func statusCell(status uint16) string {
	if status == 0 {
		return ""
	}
	return fmt.Sprintf("%d", status)
}

func (m Model) View() string {
	header := monitorTitleStyle.Render("starlane monitor")
	footer := lipgloss.NewStyle().Foreground(monitorMuted).Margin(0, 0, 1, 2).
		Render(fmt.Sprintf("%d events — q to quit", len(m.events)))
	return header + "\n" + m.table.View() + "\n" + footer + "\n"
}
