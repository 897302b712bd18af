package components

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"mindboost/internal/ui/theme"
)

// PaletteSubmitMsg carries the confirmed command line.
type PaletteSubmitMsg struct{ Input string }

type PaletteCancelMsg struct{}

// Command describes one palette entry. Usage starts with the command name.
type Command struct {
	Usage string
	Desc  string
}

func (c Command) name() string {
	name, _, _ := strings.Cut(c.Usage, " ")
	return name
}

var (
	frameStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(theme.Peach).
			Padding(0, 1)
	selectedStyle = lipgloss.NewStyle().Foreground(theme.Peach)
)

// Palette is a one-line command prompt with prefix matching over a fixed
// command set. Tab completes the highlighted command name.
type Palette struct {
	commands []Command
	input    textinput.Model
	cursor   int
	visible  bool
	width    int
}

func NewPalette(commands []Command) Palette {
	ti := textinput.New()
	ti.Prompt = ": "
	ti.Placeholder = "command"
	ti.CharLimit = 2048
	return Palette{commands: commands, input: ti}
}

func (p Palette) Visible() bool { return p.visible }

func (p *Palette) Open() tea.Cmd {
	p.visible = true
	p.cursor = 0
	p.input.SetValue("")
	return p.input.Focus()
}

func (p *Palette) SetWidth(w int) { p.width = w }

func (p Palette) Update(msg tea.Msg) (Palette, tea.Cmd) {
	if !p.visible {
		return p, nil
	}
	if msg, ok := msg.(tea.KeyMsg); ok {
		matches := p.matches()
		switch msg.String() {
		case "esc":
			p.close()
			return p, func() tea.Msg { return PaletteCancelMsg{} }
		case "enter":
			line := strings.TrimSpace(p.input.Value())
			p.close()
			return p, func() tea.Msg { return PaletteSubmitMsg{Input: line} }
		case "up":
			if p.cursor > 0 {
				p.cursor--
			}
			return p, nil
		case "down":
			if p.cursor < len(matches)-1 {
				p.cursor++
			}
			return p, nil
		case "tab":
			if len(matches) > 0 {
				p.input.SetValue(matches[p.cursor].name() + " ")
				p.input.CursorEnd()
			}
			return p, nil
		}
	}
	var cmd tea.Cmd
	p.input, cmd = p.input.Update(msg)
	if n := len(p.matches()); p.cursor >= n {
		p.cursor = max(n-1, 0)
	}
	return p, cmd
}

func (p Palette) View() string {
	if !p.visible {
		return ""
	}
	var sb strings.Builder
	sb.WriteString(theme.Title.Render("Commands") + "\n")
	sb.WriteString(p.input.View() + "\n")
	for i, c := range p.matches() {
		line := "  " + c.Usage
		if c.Desc != "" {
			line += theme.Muted.Render("  " + c.Desc)
		}
		if i == p.cursor {
			line = selectedStyle.Render("›") + line[1:]
		}
		sb.WriteString("\n" + line)
	}
	w := p.width
	if w < 20 {
		w = 64
	}
	return frameStyle.Width(w - 2).Render(sb.String())
}

// matches returns the commands whose name starts with the first typed word.
func (p Palette) matches() []Command {
	typed, _, _ := strings.Cut(strings.ToLower(strings.TrimSpace(p.input.Value())), " ")
	var out []Command
	for _, c := range p.commands {
		if strings.HasPrefix(c.name(), typed) {
			out = append(out, c)
		}
	}
	return out
}

func (p *Palette) close() {
	p.visible = false
	p.input.Blur()
}
