package guidance

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	sessiondto "siav/internal/modules/session/dto"
	"siav/internal/ui/theme"
)

// ─── messages ────────────────────────────────────────────────────────────────

// SnapshotMsg carries the latest engine state to the view.
type SnapshotMsg struct {
	Snapshot sessiondto.SnapshotOutput
}

// ─── model ───────────────────────────────────────────────────────────────────

// Model renders the guidance screen: cycle clock, recommendation card and
// the counters a team leader glances at.
type Model struct {
	snap   sessiondto.SnapshotOutput
	width  int
	height int
}

func New() Model { return Model{} }

func (m Model) Init() tea.Cmd { return nil }

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
	case SnapshotMsg:
		m.snap = msg.Snapshot
	}
	return m, nil
}

func (m Model) View() string {
	if m.snap.SessionID == "" {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center,
			theme.Title.Render("No active session")+"\n\n"+
				theme.Muted.Render("n: new session   :start <name> <age> <weight>"))
	}
	w := m.width
	if w < 40 {
		w = 80
	}
	sections := []string{
		m.renderHeader(w),
		m.renderCycle(w),
		m.renderRecommendation(w),
		m.renderKeys(),
	}
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// ─── private ─────────────────────────────────────────────────────────────────

func (m Model) renderHeader(w int) string {
	s := m.snap
	name := s.PatientName
	if name == "" {
		name = "unidentified patient"
	}
	left := theme.Title.Render(name) + theme.Muted.Render("  "+s.SessionID)
	stats := []string{
		theme.Hot.Render(s.ElapsedClock),
		fmt.Sprintf("cycle %d", s.CycleCount),
		fmt.Sprintf("shocks %d", s.ShockCount),
		fmt.Sprintf("drugs %d", s.Medications),
	}
	if s.LastRhythm != "" {
		stats = append(stats, "rhythm "+s.LastRhythm)
	}
	right := strings.Join(stats, theme.Muted.Render(" · "))
	gap := w - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		gap = 1
	}
	return left + strings.Repeat(" ", gap) + right + "\n"
}

func (m Model) renderCycle(w int) string {
	s := m.snap
	label := strings.ToUpper(strings.ReplaceAll(s.Phase, "_", " "))
	phase := lipgloss.NewStyle().Foreground(phaseColor(s.Phase)).Bold(true).Render(label)
	barW := w - 24
	if barW < 10 {
		barW = 10
	}
	line := phase
	if s.Phase == "compressions" {
		line += "  " + progressBar(s.Progress, barW) + fmt.Sprintf("  %s", clock(s.UntilCheck))
	}
	return line + "\n"
}

func (m Model) renderRecommendation(w int) string {
	rec := m.snap.Recommendation
	accent := theme.Accent(rec.Urgency)
	var sb strings.Builder
	msg := lipgloss.NewStyle().Foreground(accent).Bold(true).Render(rec.Message)
	if rec.CriticalAction != "" {
		msg = theme.Alarm.Render(rec.CriticalAction) + " " + msg
	}
	sb.WriteString(msg + "\n")
	if rec.Dose != "" {
		sb.WriteString(theme.Muted.Render("dose:  ") + rec.Dose + "\n")
	}
	if rec.Detail != "" {
		sb.WriteString(theme.Muted.Render(rec.Detail) + "\n")
	}
	if rec.Countdown > 0 {
		sb.WriteString(theme.Muted.Render("next adrenaline in ") + clock(rec.Countdown) + "\n")
	}
	for i, item := range rec.Checklist {
		sb.WriteString(fmt.Sprintf("  %d. %s\n", i+1, item))
	}
	if rec.Secondary != "" {
		sb.WriteString("\n" + lipgloss.NewStyle().Foreground(theme.Yellow).Render(rec.Secondary) + "\n")
	}
	return theme.Pane.BorderForeground(accent).Width(w - 2).Render(strings.TrimRight(sb.String(), "\n"))
}

func (m Model) renderKeys() string {
	return theme.Muted.Render(
		"c: compressions  r: rhythm check  1-4: FV/TVSP/AESP/Asys  s: shock  a: adrenaline  m: amiodarone  o: ROSC  :: palette")
}

func progressBar(pct float64, width int) string {
	filled := int(pct / 100 * float64(width))
	if filled > width {
		filled = width
	}
	if filled < 0 {
		filled = 0
	}
	bar := lipgloss.NewStyle().Foreground(theme.Green).Render(strings.Repeat("█", filled))
	rest := lipgloss.NewStyle().Foreground(theme.Surface1).Render(strings.Repeat("░", width-filled))
	return bar + rest
}

func phaseColor(phase string) lipgloss.Color {
	switch phase {
	case "compressions":
		return theme.Green
	case "rhythm_check":
		return theme.Yellow
	case "shock_advised":
		return theme.Red
	default:
		return theme.Sapphire
	}
}

func clock(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}
