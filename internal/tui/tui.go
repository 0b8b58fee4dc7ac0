// Package tui renders the widget's snapshot stream as a live terminal
// view for watching a mailbox without a browser.
package tui

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/mailpane/mailpane/internal/format"
	"github.com/mailpane/mailpane/internal/widget"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).
			Foreground(lipgloss.Color("15")).
			Background(lipgloss.Color("62")).
			Padding(0, 1)

	counterStyle = lipgloss.NewStyle().Bold(true).
			Foreground(lipgloss.Color("15")).
			Background(lipgloss.Color("160")).
			Padding(0, 1)

	fromStyle    = lipgloss.NewStyle().Bold(true)
	timeStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("243"))
	newStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("84"))
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("246")).Italic(true)
	errStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
	helpStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	newMarkStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("84")).Bold(true)
)

// highlightFor is how long new-item highlights stay lit after a render.
const highlightFor = 3 * time.Second

// snapshotMsg carries one applied tick into the model.
type snapshotMsg widget.Snapshot

// streamClosedMsg signals the widget's snapshot stream ended.
type streamClosedMsg struct{}

// clearHighlightMsg fades the new-item marks for one render generation.
type clearHighlightMsg struct{ gen int }

// Model is the bubbletea model over a mounted widget.
type Model struct {
	widget *widget.Widget

	snap   widget.Snapshot
	gen    int
	closed bool
	width  int
}

// NewModel wraps a mounted widget.
func NewModel(w *widget.Widget) Model {
	return Model{
		widget: w,
		snap:   widget.Snapshot{State: widget.StateLoading},
	}
}

// Init starts pumping snapshots into the update loop.
func (m Model) Init() tea.Cmd {
	return m.waitForSnapshot()
}

// waitForSnapshot blocks on the stream and resolves to exactly one
// message; Update re-arms it after each delivery.
func (m Model) waitForSnapshot() tea.Cmd {
	return func() tea.Msg {
		snap, ok := <-m.widget.Snapshots()
		if !ok {
			return streamClosedMsg{}
		}
		return snapshotMsg(snap)
	}
}

// Update handles key presses and snapshot deliveries.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			m.widget.Destroy()
			return m, tea.Quit
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width

	case snapshotMsg:
		m.snap = widget.Snapshot(msg)
		m.gen++
		cmds := []tea.Cmd{m.waitForSnapshot()}
		if hasNew(m.snap) {
			gen := m.gen
			cmds = append(cmds, tea.Tick(highlightFor, func(time.Time) tea.Msg {
				return clearHighlightMsg{gen: gen}
			}))
		}
		return m, tea.Batch(cmds...)

	case clearHighlightMsg:
		// A newer snapshot owns the highlights now; leave them alone.
		if msg.gen == m.gen {
			for i := range m.snap.Items {
				m.snap.Items[i].New = false
			}
		}
		return m, nil

	case streamClosedMsg:
		m.closed = true
		return m, tea.Quit
	}
	return m, nil
}

// View renders the current snapshot.
func (m Model) View() string {
	header := lipgloss.JoinHorizontal(lipgloss.Top,
		titleStyle.Render("Непрочитанные сообщения"),
		" ",
		counterStyle.Render(fmt.Sprintf("%d", m.snap.Count)),
	)

	body := m.renderBody()
	help := helpStyle.Render("q: выход")
	return header + "\n\n" + body + "\n\n" + help + "\n"
}

func hasNew(snap widget.Snapshot) bool {
	for _, item := range snap.Items {
		if item.New {
			return true
		}
	}
	return false
}

func (m Model) renderBody() string {
	switch m.snap.State {
	case widget.StateLoading:
		return dimStyle.Render("Загрузка...")
	case widget.StateEmpty:
		return dimStyle.Render("Нет новых сообщений")
	case widget.StateRetrying:
		return errStyle.Render("Не удалось загрузить сообщения, повторная попытка...")
	case widget.StateUnavailable:
		return errStyle.Render("Сервис временно недоступен")
	}

	out := ""
	for _, item := range m.snap.Items {
		mark := "  "
		if item.New {
			mark = newMarkStyle.Render("● ")
		}
		subject := format.Truncate(item.Message.Subject)
		if item.New {
			subject = newStyle.Render(subject)
		}
		out += fmt.Sprintf("%s%s  %s  %s\n",
			mark,
			fromStyle.Render(item.Message.From),
			subject,
			timeStyle.Render(format.Time(item.Message.Received)),
		)
	}
	return out
}
