package app

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	authdto "mindboost/internal/modules/auth/dto"
	"mindboost/internal/ui/components"
	"mindboost/internal/ui/router"
	"mindboost/internal/ui/theme"
	dashboardview "mindboost/internal/ui/views/dashboard"
	loginview "mindboost/internal/ui/views/login"
)

// ─── ports ───────────────────────────────────────────────────────────────────

type authPort interface {
	Login(ctx context.Context, identifier, secret string) (authdto.LoginOutput, error)
	Logout(ctx context.Context) error
	IsAuthenticated() bool
}

// ─── async messages ───────────────────────────────────────────────────────────

type loggedOutMsg struct{ err error }

// ─── key bindings ─────────────────────────────────────────────────────────────

type keyMap struct {
	Help    key.Binding
	Palette key.Binding
	Quit    key.Binding
	dash    dashboardview.KeyMap
}

func defaultKeys() keyMap {
	return keyMap{
		Help:    key.NewBinding(key.WithKeys("f1"), key.WithHelp("f1", "help")),
		Palette: key.NewBinding(key.WithKeys("ctrl+p"), key.WithHelp("ctrl+p", "palette")),
		Quit:    key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("ctrl+c", "quit")),
		dash:    dashboardview.DefaultKeys(),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Help, k.Palette, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.dash.Focus, k.dash.Enter, k.dash.Convert, k.dash.Scroll},
		{k.dash.Save, k.dash.Burnout, k.dash.Logout},
		{k.Help, k.Palette, k.Quit},
	}
}

// ─── model ───────────────────────────────────────────────────────────────────

// Model is the root Bubble Tea model. It owns routing between the login and
// dashboard views, the help overlay and the command palette. Every
// navigation goes through the gate.
type Model struct {
	auth authPort
	gate router.Gate

	loginView loginview.Model
	dashView  dashboardview.Model

	route    router.Route
	keys     keyMap
	help     help.Model
	showHelp bool
	palette  components.Palette
	subject  string
	status   string
	width    int
	height   int
}

func NewModel(auth authPort, study dashboardview.Port) Model {
	m := Model{
		auth:      auth,
		gate:      router.NewGate(auth),
		loginView: loginview.New(auth),
		dashView:  dashboardview.New(study),
		keys:      defaultKeys(),
		help:      help.New(),
		palette:   components.NewPalette(paletteCommands),
		status:    "ready",
	}
	m.route = m.gate.Resolve(router.RouteDashboard)
	return m
}

func (m Model) Route() router.Route { return m.route }

func (m Model) Init() tea.Cmd {
	if m.route == router.RouteLogin {
		return m.loginView.Init()
	}
	return m.dashView.Init()
}

// ─── update ───────────────────────────────────────────────────────────────────

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	// The palette intercepts all input while open.
	if m.palette.Visible() {
		var cmd tea.Cmd
		m.palette, cmd = m.palette.Update(msg)
		return m, cmd
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.palette.SetWidth(min(m.width-4, 80))
		m.help.Width = m.width
		m.propagateSize()
		return m, nil

	case loginview.LoggedInMsg:
		m.subject = msg.Subject
		m.status = "logged in"
		return m, m.navigate(router.RouteDashboard)

	case dashboardview.LogoutMsg:
		return m, m.logoutCmd()

	case loggedOutMsg:
		m.subject = ""
		// Nothing from the previous session stays on screen.
		m.dashView.ClearSession()
		if msg.err != nil {
			m.status = "logout: " + msg.err.Error()
		} else {
			m.status = "logged out"
		}
		return m, m.navigate(router.RouteDashboard)

	case components.PaletteSubmitMsg:
		return m.executePalette(msg.Input)

	case components.PaletteCancelMsg:
		m.status = "ready"
		return m, nil

	case tea.KeyMsg:
		if m.showHelp {
			if key.Matches(msg, m.keys.Help) || msg.String() == "esc" {
				m.showHelp = false
			}
			return m, nil
		}
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Help):
			m.showHelp = true
			return m, nil
		case key.Matches(msg, m.keys.Palette) && m.route == router.RouteDashboard:
			return m, m.palette.Open()
		}
	}

	return m.updateActive(msg)
}

// updateActive forwards msg to the view behind the current route. Task
// results that arrive for the other view are still delivered so its state
// stays consistent.
func (m Model) updateActive(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch msg.(type) {
	case loginview.ResultMsg:
		m.loginView, cmd = m.loginView.Update(msg)
		return m, cmd
	case dashboardview.SelectedMsg, dashboardview.ConvertedMsg, dashboardview.AnsweredMsg, dashboardview.SavedMsg:
		m.dashView, cmd = m.dashView.Update(msg)
		return m, cmd
	}
	if m.route == router.RouteLogin {
		m.loginView, cmd = m.loginView.Update(msg)
	} else {
		m.dashView, cmd = m.dashView.Update(msg)
	}
	return m, cmd
}

// navigate asks for target and shows whatever the gate allows.
func (m *Model) navigate(target router.Route) tea.Cmd {
	prev := m.route
	m.route = m.gate.Resolve(target)
	if m.route == prev {
		return nil
	}
	if m.route == router.RouteLogin {
		return m.loginView.Reset()
	}
	return m.dashView.Init()
}

// ─── view ────────────────────────────────────────────────────────────────────

func (m Model) View() string {
	header := m.renderHeader()
	statusBar := m.renderStatusBar()
	contentH := max(m.height-lipgloss.Height(header)-lipgloss.Height(statusBar), 1)

	var content string
	switch {
	case m.showHelp:
		content = lipgloss.NewStyle().Width(m.width).Height(contentH).
			Render(m.help.FullHelpView(m.keys.FullHelp()))
	case m.palette.Visible():
		content = lipgloss.Place(m.width, contentH,
			lipgloss.Center, lipgloss.Center, m.palette.View())
	case m.route == router.RouteLogin:
		content = m.loginView.View()
	default:
		content = m.dashView.View()
	}
	return lipgloss.JoinVertical(lipgloss.Left, header, content, statusBar)
}

func (m Model) renderHeader() string {
	bar := theme.Hot.Render(" MindBoost ") + theme.Muted.Render(" "+string(m.route))
	return theme.Bar.Width(m.width).Render(bar)
}

func (m Model) renderStatusBar() string {
	left := m.status
	if m.subject != "" {
		left = theme.Success.Render("● "+m.subject) + "  " + left
	}
	right := theme.Muted.Render(m.help.ShortHelpView(m.keys.ShortHelp()))
	gap := max(m.width-lipgloss.Width(left)-lipgloss.Width(right), 1)
	return theme.Bar.Width(m.width).Render(left + strings.Repeat(" ", gap) + right)
}

// ─── palette execution ────────────────────────────────────────────────────────

// paletteCommands must stay in sync with the switch in executePalette.
var paletteCommands = []components.Command{
	{Usage: "select <path>", Desc: "pick a document to upload"},
	{Usage: "convert", Desc: "build the knowledge graph"},
	{Usage: "ask <question>", Desc: "ask the assistant"},
	{Usage: "reask <question>", Desc: "replace the pending question"},
	{Usage: "save", Desc: "save the last answer as a note"},
	{Usage: "burnout", Desc: "am I burnt out?"},
	{Usage: "logout"},
	{Usage: "help"},
}

func (m Model) executePalette(input string) (tea.Model, tea.Cmd) {
	if strings.TrimSpace(input) == "" {
		return m, nil
	}
	name, rest, _ := strings.Cut(input, " ")
	rest = strings.TrimSpace(rest)

	switch name {
	case "select":
		if rest == "" {
			m.status = "usage: select <path>"
			return m, nil
		}
		return m, m.dashView.Select(rest)
	case "convert":
		cmd := m.dashView.SubmitConvert()
		if cmd == nil {
			m.status = "nothing to convert"
		}
		return m, cmd
	case "ask":
		m.dashView.SetQuestion(rest)
		cmd := m.dashView.SubmitAsk()
		if cmd == nil {
			m.status = "usage: ask <question>"
		}
		return m, cmd
	case "reask":
		m.dashView.SetQuestion(rest)
		cmd := m.dashView.ReplaceAsk()
		if cmd == nil {
			m.status = "usage: reask <question>"
		}
		return m, cmd
	case "save":
		return m, m.dashView.SaveAnswer()
	case "burnout":
		m.dashView.ShowBurnoutNotice()
		return m, nil
	case "logout":
		return m, m.logoutCmd()
	case "help":
		m.showHelp = true
		return m, nil
	default:
		m.status = "unknown command: " + name
	}
	return m, nil
}

// ─── helpers ─────────────────────────────────────────────────────────────────

func (m *Model) propagateSize() {
	sz := tea.WindowSizeMsg{Width: m.width, Height: max(m.height-2, 1)}
	m.loginView, _ = m.loginView.Update(sz)
	m.dashView, _ = m.dashView.Update(sz)
}

func (m Model) logoutCmd() tea.Cmd {
	auth := m.auth
	return func() tea.Msg {
		return loggedOutMsg{err: auth.Logout(context.Background())}
	}
}
