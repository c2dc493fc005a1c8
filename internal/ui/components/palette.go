package components

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"siav/internal/ui/theme"
)

// PaletteSubmitMsg is emitted when the user confirms a command.
type PaletteSubmitMsg struct{ Input string }

// PaletteCancelMsg is emitted when the user presses esc.
type PaletteCancelMsg struct{}

var (
	paletteStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(theme.Peach).
			Background(theme.Mantle).
			Foreground(theme.Text).
			Padding(0, 1)

	verbStyle = lipgloss.NewStyle().Foreground(theme.Lavender).Bold(true)
	hintStyle = lipgloss.NewStyle().Foreground(theme.Subtext0)
)

// Hint documents one palette command.
type Hint struct {
	Verb string
	Args string
	Help string
}

var paletteHints = []Hint{
	{"start", "[name] [age] [weight]", "open a session"},
	{"rhythm", "<FV|TVSP|AESP|Assistolia> [notes]", "record the rhythm read"},
	{"shock", "[joules]", "deliver a shock, default energy when omitted"},
	{"drug", "<name> [dose]", "record a medication"},
	{"note", "<text>", "free-text timeline note"},
	{"vitals", "<sys> <dia> <hr> <spo2>", "record vital signs"},
	{"glasgow", "<eye> <verbal> <motor>", "record the coma scale"},
	{"quality", "<rate> [depth-cm]", "check compression quality"},
	{"rosc", "", "return of circulation, ends the session"},
	{"finish", "[notes]", "end the session"},
}

// Hints lists the palette commands in display order.
func Hints() []Hint {
	return append([]Hint(nil), paletteHints...)
}

const (
	maxHints   = 5
	maxHistory = 20
)

// Palette is a command-palette overlay backed by bubbles/textinput. It keeps
// a short history of submitted commands, recalled with up/down.
type Palette struct {
	input   textinput.Model
	visible bool
	width   int
	history []string
	cursor  int
}

// NewPalette creates an inactive Palette ready to be opened.
func NewPalette() Palette {
	ti := textinput.New()
	ti.Placeholder = "rhythm FV, drug adrenaline, note ..."
	ti.CharLimit = 256
	return Palette{input: ti}
}

func (p Palette) Visible() bool { return p.visible }

// Open shows the palette, clears the input, and returns the focus command.
func (p *Palette) Open() tea.Cmd {
	p.visible = true
	p.cursor = len(p.history)
	p.input.SetValue("")
	return p.input.Focus()
}

func (p *Palette) SetWidth(w int) { p.width = w }

func (p Palette) Update(msg tea.Msg) (Palette, tea.Cmd) {
	if !p.visible {
		return p, nil
	}
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "esc":
			p.close()
			return p, func() tea.Msg { return PaletteCancelMsg{} }
		case "enter":
			val := strings.TrimSpace(p.input.Value())
			p.remember(val)
			p.close()
			return p, func() tea.Msg { return PaletteSubmitMsg{Input: val} }
		case "tab":
			if matches := matchHints(p.input.Value()); len(matches) > 0 && !strings.Contains(p.input.Value(), " ") {
				p.input.SetValue(matches[0].Verb + " ")
				p.input.CursorEnd()
			}
			return p, nil
		case "up":
			if p.cursor > 0 {
				p.cursor--
				p.input.SetValue(p.history[p.cursor])
				p.input.CursorEnd()
			}
			return p, nil
		case "down":
			if p.cursor < len(p.history) {
				p.cursor++
				if p.cursor == len(p.history) {
					p.input.SetValue("")
				} else {
					p.input.SetValue(p.history[p.cursor])
				}
				p.input.CursorEnd()
			}
			return p, nil
		}
	}
	var cmd tea.Cmd
	p.input, cmd = p.input.Update(msg)
	return p, cmd
}

func (p *Palette) close() {
	p.visible = false
	p.input.Blur()
}

func (p *Palette) remember(val string) {
	if val == "" {
		return
	}
	if n := len(p.history); n > 0 && p.history[n-1] == val {
		return
	}
	p.history = append(p.history, val)
	if len(p.history) > maxHistory {
		p.history = p.history[len(p.history)-maxHistory:]
	}
}

// matchHints filters on the verb only, so the hint stays visible while the
// arguments are typed.
func matchHints(input string) []Hint {
	verb, _, _ := strings.Cut(strings.ToLower(strings.TrimSpace(input)), " ")
	var out []Hint
	for _, h := range paletteHints {
		if verb == "" || strings.HasPrefix(h.Verb, verb) {
			out = append(out, h)
			if len(out) == maxHints {
				break
			}
		}
	}
	return out
}

func (p Palette) View() string {
	if !p.visible {
		return ""
	}

	var sb strings.Builder
	sb.WriteString(theme.Title.Render("Command") + "\n")
	sb.WriteString(": " + p.input.View() + "\n")
	if matching := matchHints(p.input.Value()); len(matching) > 0 {
		sb.WriteString("\n")
		for _, h := range matching {
			line := "  " + verbStyle.Render(h.Verb)
			if h.Args != "" {
				line += " " + hintStyle.Render(h.Args)
			}
			sb.WriteString(line + hintStyle.Render("  "+h.Help) + "\n")
		}
	}

	w := p.width
	if w < 20 {
		w = 64
	}
	return paletteStyle.Width(w - 2).Render(sb.String())
}
