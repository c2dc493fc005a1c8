package app

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	sessiondto "siav/internal/modules/session/dto"
	apperrors "siav/internal/platform/errors"
	"siav/internal/ui/components"
	"siav/internal/ui/theme"
	guidanceview "siav/internal/ui/views/guidance"
	timelineview "siav/internal/ui/views/timeline"
)

// ─── ports ───────────────────────────────────────────────────────────────────

type sessionPort interface {
	Start(ctx context.Context, patient sessiondto.PatientInput) (sessiondto.SessionOutput, error)
	BeginCompressions(ctx context.Context) (sessiondto.SnapshotOutput, error)
	CheckRhythm(ctx context.Context) (sessiondto.SnapshotOutput, error)
	Rhythm(ctx context.Context, rhythm, notes string) (sessiondto.RhythmOutput, error)
	Shock(ctx context.Context, joules int) (sessiondto.ShockOutput, error)
	Medication(ctx context.Context, drug, dose, route string) (sessiondto.MedicationOutput, error)
	Note(ctx context.Context, text, severity string) error
	Vitals(ctx context.Context, systolic, diastolic, heartRate, spo2 int) (sessiondto.VitalsOutput, error)
	Glasgow(ctx context.Context, eye, verbal, motor int) (sessiondto.GlasgowOutput, error)
	Quality(ctx context.Context, rate int, depthCm float64) (sessiondto.QualityOutput, error)
	Snapshot(ctx context.Context) (sessiondto.SnapshotOutput, error)
	ROSC(ctx context.Context) (sessiondto.FinishOutput, error)
	Finish(ctx context.Context, notes string) (sessiondto.FinishOutput, error)
}

// RefreshInterval is how often the screen re-reads the engine state.
const RefreshInterval = 500 * time.Millisecond

const bannerTTL = 4 * time.Second

// ─── tab index ───────────────────────────────────────────────────────────────

type tabID int

const (
	tabGuidance tabID = iota
	tabTimeline
	tabCount
)

var tabLabels = [tabCount]string{
	"Guidance", "Timeline",
}

// ─── async messages ───────────────────────────────────────────────────────────

type refreshMsg time.Time

type snapshotMsg struct {
	snap sessiondto.SnapshotOutput
	err  error
}

type cueMsg struct{ cue string }

type actionDoneMsg struct {
	status string
	err    error
}

type finishedMsg struct {
	out sessiondto.FinishOutput
	err error
}

// ─── key bindings ─────────────────────────────────────────────────────────────

type keyMap struct {
	Tab          key.Binding
	Help         key.Binding
	Palette      key.Binding
	Quit         key.Binding
	Start        key.Binding
	Compressions key.Binding
	RhythmCheck  key.Binding
	Rhythms      key.Binding
	Shock        key.Binding
	Adrenaline   key.Binding
	Amiodarone   key.Binding
	ROSC         key.Binding
}

func defaultKeys() keyMap {
	return keyMap{
		Tab:          key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next tab")),
		Help:         key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Palette:      key.NewBinding(key.WithKeys(":"), key.WithHelp(":", "palette")),
		Quit:         key.NewBinding(key.WithKeys("ctrl+c", "q"), key.WithHelp("q", "quit")),
		Start:        key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "new session")),
		Compressions: key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "begin compressions")),
		RhythmCheck:  key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "rhythm check now")),
		Rhythms:      key.NewBinding(key.WithKeys("1", "2", "3", "4"), key.WithHelp("1-4", "FV/TVSP/AESP/asystole")),
		Shock:        key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "shock (advised energy)")),
		Adrenaline:   key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "adrenaline given")),
		Amiodarone:   key.NewBinding(key.WithKeys("m"), key.WithHelp("m", "amiodarone given")),
		ROSC:         key.NewBinding(key.WithKeys("o"), key.WithHelp("o", "ROSC")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Tab, k.Help, k.Palette, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Start, k.Compressions, k.RhythmCheck, k.Rhythms},
		{k.Shock, k.Adrenaline, k.Amiodarone, k.ROSC},
		{k.Tab, k.Help, k.Palette, k.Quit},
	}
}

var rhythmKeys = map[string]string{
	"1": "FV",
	"2": "TVSP",
	"3": "AESP",
	"4": "Assistolia",
}

// ─── model ───────────────────────────────────────────────────────────────────

// Model is the root Bubble Tea model. It polls the engine for snapshots,
// turns key presses into clinical actions and flashes cues as they arrive.
// Protocol decisions stay in the engine; this layer only renders them.
type Model struct {
	session sessionPort
	cues    <-chan string

	guidance guidanceview.Model
	timeline timelineview.Model

	activeTab   tabID
	keys        keyMap
	help        help.Model
	showHelp    bool
	palette     components.Palette
	snap        sessiondto.SnapshotOutput
	banner      string
	bannerUntil time.Time
	status      string
	width       int
	height      int
}

// ─── constructor ─────────────────────────────────────────────────────────────

func NewModel(session sessionPort, cues <-chan string) Model {
	return Model{
		session:   session,
		cues:      cues,
		guidance:  guidanceview.New(),
		timeline:  timelineview.New(),
		activeTab: tabGuidance,
		keys:      defaultKeys(),
		help:      help.New(),
		palette:   components.NewPalette(),
		status:    "ready",
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.snapshotCmd(), refreshCmd(), m.waitCueCmd())
}

// ─── update ───────────────────────────────────────────────────────────────────

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	// The palette intercepts all input while open.
	if m.palette.Visible() {
		var cmd tea.Cmd
		m.palette, cmd = m.palette.Update(msg)
		if _, isKey := msg.(tea.KeyMsg); isKey {
			return m, cmd
		}
		cmds = append(cmds, cmd)
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.palette.SetWidth(min(m.width-4, 80))
		m.help.Width = m.width
		m.propagateSize()

	case refreshMsg:
		return m, tea.Batch(append(cmds, m.snapshotCmd(), refreshCmd())...)

	case snapshotMsg:
		if msg.err != nil {
			if !errors.Is(msg.err, apperrors.ErrNoActiveSession) {
				m.status = "snapshot: " + msg.err.Error()
			}
			m.snap = sessiondto.SnapshotOutput{}
		} else {
			m.snap = msg.snap
		}
		m.guidance, _ = m.guidance.Update(guidanceview.SnapshotMsg{Snapshot: m.snap})
		m.timeline.SetEntries(m.snap.Timeline)
		return m, nil

	case cueMsg:
		m.banner = msg.cue
		m.bannerUntil = time.Now().Add(bannerTTL)
		return m, tea.Batch(m.waitCueCmd(), m.snapshotCmd())

	case actionDoneMsg:
		if msg.err != nil {
			m.status = msg.status + " failed: " + msg.err.Error()
		} else {
			m.status = msg.status
		}
		return m, m.snapshotCmd()

	case finishedMsg:
		if msg.err != nil {
			m.status = "finish failed: " + msg.err.Error()
		} else {
			m.status = describeFinish(msg.out)
		}
		return m, m.snapshotCmd()

	case components.PaletteSubmitMsg:
		return m.executePalette(msg.Input)

	case components.PaletteCancelMsg:
		m.status = "ready"

	case tea.KeyMsg:
		if m.showHelp {
			if msg.String() == "?" || msg.String() == "esc" {
				m.showHelp = false
			}
			return m, nil
		}

		switch s := msg.String(); s {
		case "ctrl+c":
			return m, tea.Quit
		case "q":
			if m.snap.Active {
				m.status = "session running: finish or record ROSC first (ctrl+c forces quit)"
				return m, nil
			}
			return m, tea.Quit
		case "tab":
			m.activeTab = (m.activeTab + 1) % tabCount
		case "shift+tab":
			m.activeTab = (m.activeTab + tabCount - 1) % tabCount
		case "?":
			m.showHelp = !m.showHelp
		case ":":
			return m, m.palette.Open()
		case "n":
			return m, m.startCmd(sessiondto.PatientInput{})
		case "c":
			return m, m.actionCmd("compressions started", func(ctx context.Context) error {
				_, err := m.session.BeginCompressions(ctx)
				return err
			})
		case "r":
			return m, m.actionCmd("rhythm check", func(ctx context.Context) error {
				_, err := m.session.CheckRhythm(ctx)
				return err
			})
		case "1", "2", "3", "4":
			return m, m.rhythmCmd(rhythmKeys[s], "")
		case "s":
			return m, m.shockCmd(0)
		case "a":
			return m, m.drugCmd("adrenaline", "")
		case "m":
			return m, m.drugCmd("amiodarone", "")
		case "o":
			return m, m.roscCmd()
		}
	}

	var tabCmd tea.Cmd
	if m.activeTab == tabTimeline {
		m.timeline, tabCmd = m.timeline.Update(msg)
	}
	cmds = append(cmds, tabCmd)

	return m, tea.Batch(cmds...)
}

// ─── view ────────────────────────────────────────────────────────────────────

func (m Model) View() string {
	tabBar := m.renderTabBar()
	statusBar := m.renderStatusBar()
	contentH := m.height - lipgloss.Height(tabBar) - lipgloss.Height(statusBar)
	if contentH < 1 {
		contentH = 1
	}

	var content string
	switch {
	case m.showHelp:
		content = lipgloss.NewStyle().Width(m.width).Height(contentH).
			Render(m.help.View(m.keys))
	case m.palette.Visible():
		content = lipgloss.Place(m.width, contentH,
			lipgloss.Center, lipgloss.Center, m.palette.View())
	case m.activeTab == tabTimeline:
		content = m.timeline.View()
	default:
		content = m.guidance.View()
	}

	return lipgloss.JoinVertical(lipgloss.Left, tabBar, content, statusBar)
}

func (m Model) renderTabBar() string {
	parts := make([]string, tabCount)
	for i := tabID(0); i < tabCount; i++ {
		label := tabLabels[i]
		if i == m.activeTab {
			parts[i] = theme.Hot.Render(" " + label + " ")
		} else {
			parts[i] = theme.Muted.Render(" " + label + " ")
		}
	}
	bar := "siav  " + strings.Join(parts, theme.Muted.Render(" │ "))
	if m.banner != "" && time.Now().Before(m.bannerUntil) {
		bar += "   " + theme.Alarm.Render("⚠ "+m.banner)
	}
	return lipgloss.NewStyle().Background(theme.Mantle).Width(m.width).Render(bar) + "\n"
}

func (m Model) renderStatusBar() string {
	left := m.status
	if m.snap.Active {
		left = theme.Hot.Render("● "+m.snap.ElapsedClock) + "  " + left
	}
	right := theme.Muted.Render("?:help  tab:switch  :::palette  q:quit")
	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		gap = 1
	}
	bar := left + strings.Repeat(" ", gap) + right
	return "\n" + lipgloss.NewStyle().Background(theme.Mantle).Width(m.width).Render(bar)
}

// ─── palette execution ────────────────────────────────────────────────────────

func (m Model) executePalette(input string) (tea.Model, tea.Cmd) {
	if strings.TrimSpace(input) == "" {
		return m, nil
	}
	parts := strings.Fields(input)
	rest := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(input), parts[0]))

	switch parts[0] {
	case "start":
		patient := sessiondto.PatientInput{}
		if len(parts) >= 2 {
			patient.Name = parts[1]
		}
		if len(parts) >= 3 {
			age, err := strconv.Atoi(parts[2])
			if err != nil {
				m.status = "invalid age"
				return m, nil
			}
			patient.AgeYears = age
		}
		if len(parts) >= 4 {
			weight, err := strconv.ParseFloat(parts[3], 64)
			if err != nil {
				m.status = "invalid weight"
				return m, nil
			}
			patient.WeightKg = weight
		}
		return m, m.startCmd(patient)

	case "rhythm":
		if len(parts) < 2 {
			m.status = "usage: rhythm <FV|TVSP|AESP|Assistolia> [notes]"
			return m, nil
		}
		notes := strings.TrimSpace(strings.TrimPrefix(rest, parts[1]))
		return m, m.rhythmCmd(parts[1], notes)

	case "shock":
		joules := 0
		if len(parts) >= 2 {
			j, err := strconv.Atoi(parts[1])
			if err != nil {
				m.status = "invalid energy"
				return m, nil
			}
			joules = j
		}
		return m, m.shockCmd(joules)

	case "drug":
		if len(parts) < 2 {
			m.status = "usage: drug <name> [dose]"
			return m, nil
		}
		dose := strings.TrimSpace(strings.TrimPrefix(rest, parts[1]))
		return m, m.drugCmd(parts[1], dose)

	case "note":
		if rest == "" {
			m.status = "usage: note <text>"
			return m, nil
		}
		return m, m.actionCmd("note added", func(ctx context.Context) error {
			return m.session.Note(ctx, rest, "")
		})

	case "vitals":
		nums, err := ints(parts[1:], 4)
		if err != nil {
			m.status = "usage: vitals <sys> <dia> <hr> <spo2>"
			return m, nil
		}
		return m, func() tea.Msg {
			out, err := m.session.Vitals(context.Background(), nums[0], nums[1], nums[2], nums[3])
			return actionDoneMsg{status: fmt.Sprintf("vitals: MAP %d, %s", out.MAP, out.Severity), err: err}
		}

	case "glasgow":
		nums, err := ints(parts[1:], 3)
		if err != nil {
			m.status = "usage: glasgow <eye> <verbal> <motor>"
			return m, nil
		}
		return m, func() tea.Msg {
			out, err := m.session.Glasgow(context.Background(), nums[0], nums[1], nums[2])
			return actionDoneMsg{status: fmt.Sprintf("glasgow %d (%s)", out.Total, out.Band), err: err}
		}

	case "quality":
		if len(parts) < 2 {
			m.status = "usage: quality <rate> [depth-cm]"
			return m, nil
		}
		rate, err := strconv.Atoi(parts[1])
		if err != nil {
			m.status = "invalid rate"
			return m, nil
		}
		depth := 0.0
		if len(parts) >= 3 {
			if depth, err = strconv.ParseFloat(parts[2], 64); err != nil {
				m.status = "invalid depth"
				return m, nil
			}
		}
		return m, func() tea.Msg {
			out, err := m.session.Quality(context.Background(), rate, depth)
			status := "CPR quality on target"
			if !out.OK {
				status = strings.Join(out.Messages, "; ")
			}
			return actionDoneMsg{status: status, err: err}
		}

	case "rosc":
		return m, m.roscCmd()

	case "finish":
		return m, func() tea.Msg {
			out, err := m.session.Finish(context.Background(), rest)
			return finishedMsg{out: out, err: err}
		}

	default:
		m.status = "unknown command: " + parts[0]
	}
	return m, nil
}

// ─── helpers ─────────────────────────────────────────────────────────────────

func (m *Model) propagateSize() {
	sz := tea.WindowSizeMsg{Width: m.width, Height: m.height - 3}
	m.guidance, _ = m.guidance.Update(sz)
	m.timeline, _ = m.timeline.Update(sz)
}

func ints(fields []string, n int) ([]int, error) {
	if len(fields) < n {
		return nil, fmt.Errorf("want %d numbers", n)
	}
	out := make([]int, n)
	for i := 0; i < n; i++ {
		v, err := strconv.Atoi(fields[i])
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func describeFinish(out sessiondto.FinishOutput) string {
	outcome := "without ROSC"
	if out.Summary.ROSC {
		outcome = "with ROSC"
	}
	status := fmt.Sprintf("session %s finished %s", out.SessionID, outcome)
	switch {
	case out.Synced:
		status += ", log synced"
	case out.Queued:
		status += ", log queued for sync"
	}
	return status
}

// ─── async commands ───────────────────────────────────────────────────────────

func refreshCmd() tea.Cmd {
	return tea.Tick(RefreshInterval, func(t time.Time) tea.Msg { return refreshMsg(t) })
}

func (m Model) snapshotCmd() tea.Cmd {
	return func() tea.Msg {
		snap, err := m.session.Snapshot(context.Background())
		return snapshotMsg{snap: snap, err: err}
	}
}

// waitCueCmd blocks on the cue channel; it is re-armed after every cue.
func (m Model) waitCueCmd() tea.Cmd {
	if m.cues == nil {
		return nil
	}
	return func() tea.Msg {
		cue, ok := <-m.cues
		if !ok {
			return nil
		}
		return cueMsg{cue: cue}
	}
}

func (m Model) actionCmd(status string, fn func(ctx context.Context) error) tea.Cmd {
	return func() tea.Msg {
		return actionDoneMsg{status: status, err: fn(context.Background())}
	}
}

func (m Model) startCmd(patient sessiondto.PatientInput) tea.Cmd {
	return func() tea.Msg {
		out, err := m.session.Start(context.Background(), patient)
		return actionDoneMsg{status: "session started: " + out.SessionID, err: err}
	}
}

func (m Model) rhythmCmd(rhythm, notes string) tea.Cmd {
	return func() tea.Msg {
		out, err := m.session.Rhythm(context.Background(), rhythm, notes)
		status := "rhythm " + out.Label
		if out.Shockable {
			status += " (shockable)"
		}
		return actionDoneMsg{status: status, err: err}
	}
}

func (m Model) shockCmd(joules int) tea.Cmd {
	return func() tea.Msg {
		out, err := m.session.Shock(context.Background(), joules)
		return actionDoneMsg{status: fmt.Sprintf("shock #%d at %d J", out.Ordinal, out.Joules), err: err}
	}
}

func (m Model) drugCmd(drug, dose string) tea.Cmd {
	return func() tea.Msg {
		out, err := m.session.Medication(context.Background(), drug, dose, "")
		return actionDoneMsg{status: fmt.Sprintf("%s %s %s", out.Drug, out.Dose, out.Route), err: err}
	}
}

func (m Model) roscCmd() tea.Cmd {
	return func() tea.Msg {
		out, err := m.session.ROSC(context.Background())
		return finishedMsg{out: out, err: err}
	}
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
