package timeline

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	sessiondto "siav/internal/modules/session/dto"
	"siav/internal/ui/theme"
)

// Model is a scrollable, newest-first event log.
type Model struct {
	viewport viewport.Model
	entries  []sessiondto.TimelineEntryOutput
	width    int
	height   int
}

func New() Model {
	vp := viewport.New(0, 0)
	vp.Style = lipgloss.NewStyle().Background(theme.Mantle).Foreground(theme.Text)
	return Model{viewport: vp}
}

// SetEntries replaces the log. The scroll position is kept unless the user
// is at the top, where new events appear.
func (m *Model) SetEntries(entries []sessiondto.TimelineEntryOutput) {
	if len(entries) == len(m.entries) && (len(entries) == 0 || entries[0].Seq == m.entries[0].Seq) {
		return
	}
	atTop := m.viewport.AtTop()
	m.entries = entries
	m.viewport.SetContent(m.render())
	if atTop {
		m.viewport.GotoTop()
	}
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if size, ok := msg.(tea.WindowSizeMsg); ok {
		m.width = size.Width
		m.height = size.Height
		m.viewport.Width = size.Width
		m.viewport.Height = size.Height - 2
		if m.viewport.Height < 1 {
			m.viewport.Height = 1
		}
		m.viewport.SetContent(m.render())
	}
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	header := theme.Title.Render("Timeline") + theme.Muted.Render(fmt.Sprintf("  %d events  ↑/↓: scroll", len(m.entries)))
	return lipgloss.JoinVertical(lipgloss.Left, header, m.viewport.View())
}

func (m Model) render() string {
	if len(m.entries) == 0 {
		return theme.Muted.Render("(no events)")
	}
	var sb strings.Builder
	for _, e := range m.entries {
		style := lipgloss.NewStyle().Foreground(theme.Accent(e.Severity))
		fmt.Fprintf(&sb, "%s  %s %s\n",
			theme.Muted.Render(e.Clock),
			style.Render(fmt.Sprintf("%-7s", e.Kind)),
			style.Render(e.Text))
	}
	return sb.String()
}
