package login

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	authdto "mindboost/internal/modules/auth/dto"
	"mindboost/internal/platform/asynctask"
	"mindboost/internal/ui/theme"
)

const fallbackMessage = "Login failed. Please check your credentials."

// Port is the slice of the auth usecase this view needs.
type Port interface {
	Login(ctx context.Context, identifier, secret string) (authdto.LoginOutput, error)
}

type credentials struct {
	identifier string
	secret     string
}

// ResultMsg carries the outcome of one login attempt.
type ResultMsg struct {
	RequestID uint64
	Output    authdto.LoginOutput
	Err       error
}

// LoggedInMsg tells the parent a session now exists and the dashboard may be
// requested.
type LoggedInMsg struct {
	Subject string
}

type keyMap struct {
	Next    key.Binding
	Prev    key.Binding
	Submit  key.Binding
	Dismiss key.Binding
}

func defaultKeys() keyMap {
	return keyMap{
		Next:    key.NewBinding(key.WithKeys("tab", "down"), key.WithHelp("tab", "next field")),
		Prev:    key.NewBinding(key.WithKeys("shift+tab", "up"), key.WithHelp("shift+tab", "prev field")),
		Submit:  key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "login")),
		Dismiss: key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "dismiss error")),
	}
}

type Model struct {
	port     Port
	keys     keyMap
	username textinput.Model
	password textinput.Model
	spinner  spinner.Model
	task     asynctask.Controller[credentials, authdto.LoginOutput]
	focus    int
	width    int
	height   int
}

func New(port Port) Model {
	user := textinput.New()
	user.Placeholder = "username or email"
	user.Prompt = "Username: "
	user.CharLimit = 256
	user.Focus()

	pass := textinput.New()
	pass.Placeholder = "password"
	pass.Prompt = "Password: "
	pass.EchoMode = textinput.EchoPassword
	pass.EchoCharacter = '•'
	pass.CharLimit = 256

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(theme.Lavender)

	return Model{
		port:     port,
		keys:     defaultKeys(),
		username: user,
		password: pass,
		spinner:  sp,
		task: asynctask.New[credentials, authdto.LoginOutput](func(c credentials) bool {
			return strings.TrimSpace(c.identifier) != "" && c.secret != ""
		}, fallbackMessage),
	}
}

func (m Model) Init() tea.Cmd { return textinput.Blink }

// Reset clears the form, used when the view is shown again after logout.
func (m *Model) Reset() tea.Cmd {
	m.task.Reset()
	m.username.SetValue("")
	m.password.SetValue("")
	m.focus = 0
	m.password.Blur()
	return m.username.Focus()
}

func (m Model) Pending() bool { return m.task.Pending() }

// Error returns the inline error currently shown, if any.
func (m Model) Error() (string, bool) { return m.task.ErrMessage() }

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case ResultMsg:
		if !m.task.Complete(msg.RequestID, msg.Output, msg.Err) {
			return m, nil
		}
		if out, ok := m.task.Result(); ok {
			m.password.SetValue("")
			return m, func() tea.Msg { return LoggedInMsg{Subject: out.Subject} }
		}
		return m, nil

	case spinner.TickMsg:
		if !m.task.Pending() {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Dismiss):
			if _, failed := m.task.ErrMessage(); failed {
				m.task.Reset()
			}
			return m, nil
		case key.Matches(msg, m.keys.Next):
			return m, m.setFocus((m.focus + 1) % 2)
		case key.Matches(msg, m.keys.Prev):
			return m, m.setFocus((m.focus + 1) % 2) // two fields: prev == next
		case key.Matches(msg, m.keys.Submit):
			if m.focus == 0 && m.password.Value() == "" {
				return m, m.setFocus(1)
			}
			return m, m.Submit()
		}
	}

	var cmd tea.Cmd
	if m.focus == 0 {
		m.username, cmd = m.username.Update(msg)
	} else {
		m.password, cmd = m.password.Update(msg)
	}
	return m, cmd
}

// Submit starts a login attempt with the current field values. It returns
// nil when the fields are empty or an attempt is already running.
func (m *Model) Submit() tea.Cmd {
	creds := credentials{identifier: strings.TrimSpace(m.username.Value()), secret: m.password.Value()}
	requestID, ok := m.task.Submit(creds)
	if !ok {
		return nil
	}
	port := m.port
	return tea.Batch(func() tea.Msg {
		out, err := port.Login(context.Background(), creds.identifier, creds.secret)
		return ResultMsg{RequestID: requestID, Output: out, Err: err}
	}, m.spinner.Tick)
}

func (m Model) View() string {
	var sb strings.Builder
	sb.WriteString(theme.Title.Render("MindBoost") + theme.Muted.Render("  sign in to continue") + "\n\n")
	sb.WriteString(m.username.View() + "\n")
	sb.WriteString(m.password.View() + "\n\n")

	creds := credentials{identifier: m.username.Value(), secret: m.password.Value()}
	switch {
	case m.task.Pending():
		sb.WriteString(m.spinner.View() + " Logging in…")
	case m.task.CanSubmit(creds):
		sb.WriteString(theme.Hot.Render("[ Login ]") + theme.Muted.Render("  enter"))
	default:
		sb.WriteString(theme.Muted.Render("[ Login ]"))
	}
	if msg, ok := m.task.ErrMessage(); ok {
		sb.WriteString("\n\n" + theme.Error.Render(msg) + theme.Muted.Render("  esc: dismiss"))
	}

	width := 60
	if m.width > 0 && m.width-4 < width {
		width = max(m.width-4, 20)
	}
	box := theme.PaneActive.Width(width).Render(sb.String())
	if m.width == 0 || m.height == 0 {
		return box
	}
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box)
}

func (m *Model) setFocus(i int) tea.Cmd {
	m.focus = i
	if i == 0 {
		m.password.Blur()
		return m.username.Focus()
	}
	m.username.Blur()
	return m.password.Focus()
}
