package dashboard

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	studydto "mindboost/internal/modules/study/dto"
	"mindboost/internal/platform/asynctask"
	"mindboost/internal/ui/theme"
)

const (
	convertFallback = "Failed to parse PDF"
	askFallback     = "Failed to get answer"
	burnoutNotice   = "Burnout assessment feature coming soon! We're developing an AI-powered tool to help you recognize early signs of academic burnout."
	maxGraphLines   = 8
)

// ─── port ────────────────────────────────────────────────────────────────────

// Port is the minimal interface this view needs from the study usecase.
type Port interface {
	SelectDocument(ctx context.Context, path string) (studydto.DocumentOutput, error)
	ConvertDocument(ctx context.Context, doc studydto.DocumentOutput) (studydto.GraphOutput, error)
	Ask(ctx context.Context, question string) (studydto.AnswerOutput, error)
	SaveAnswer(ctx context.Context, question, answer string) (studydto.SaveAnswerOutput, error)
}

// ─── messages ────────────────────────────────────────────────────────────────

type SelectedMsg struct {
	Seq uint64
	Doc studydto.DocumentOutput
	Err error
}

type ConvertedMsg struct {
	RequestID uint64
	Graph     studydto.GraphOutput
	Err       error
}

type AnsweredMsg struct {
	RequestID uint64
	Answer    studydto.AnswerOutput
	Err       error
}

type SavedMsg struct {
	Path string
	Err  error
}

// LogoutMsg asks the parent to end the session.
type LogoutMsg struct{}

// ─── keys ────────────────────────────────────────────────────────────────────

type KeyMap struct {
	Focus   key.Binding
	Enter   key.Binding
	Convert key.Binding
	Save    key.Binding
	Burnout key.Binding
	Logout  key.Binding
	Scroll  key.Binding
}

func DefaultKeys() KeyMap {
	return KeyMap{
		Focus:   key.NewBinding(key.WithKeys("tab", "shift+tab"), key.WithHelp("tab", "switch field")),
		Enter:   key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "select file / ask")),
		Convert: key.NewBinding(key.WithKeys("ctrl+g"), key.WithHelp("ctrl+g", "convert to graph")),
		Save:    key.NewBinding(key.WithKeys("ctrl+n"), key.WithHelp("ctrl+n", "save answer as note")),
		Burnout: key.NewBinding(key.WithKeys("ctrl+b"), key.WithHelp("ctrl+b", "am I burnt out?")),
		Logout:  key.NewBinding(key.WithKeys("ctrl+x"), key.WithHelp("ctrl+x", "logout")),
		Scroll:  key.NewBinding(key.WithKeys("pgup", "pgdown"), key.WithHelp("pgup/pgdn", "scroll answer")),
	}
}

// ─── model ───────────────────────────────────────────────────────────────────

type focusArea int

const (
	focusPath focusArea = iota
	focusQuestion
)

// Model is the protected study view: one file upload task and one question
// task, each with its own lifecycle.
type Model struct {
	port     Port
	keys     KeyMap
	path     textinput.Model
	question textinput.Model
	spinner  spinner.Model
	answer   viewport.Model
	renderer *glamour.TermRenderer

	doc       studydto.DocumentOutput
	hasDoc    bool
	selectSeq uint64
	selectErr string

	convert asynctask.Controller[studydto.DocumentOutput, studydto.GraphOutput]
	ask     asynctask.Controller[string, studydto.AnswerOutput]

	notice string
	focus  focusArea
	width  int
	height int
}

func New(port Port) Model {
	path := textinput.New()
	path.Prompt = "File: "
	path.Placeholder = "path to a .pdf, .doc, .docx or .txt file"
	path.CharLimit = 1024
	path.Focus()

	q := textinput.New()
	q.Prompt = "Question: "
	q.Placeholder = "ask anything about your material"
	q.CharLimit = 2000

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(theme.Lavender)

	vp := viewport.New(0, 0)
	vp.KeyMap = viewport.KeyMap{
		PageDown: key.NewBinding(key.WithKeys("pgdown")),
		PageUp:   key.NewBinding(key.WithKeys("pgup")),
	}

	r, _ := glamour.NewTermRenderer(
		glamour.WithStylePath("dark"),
		glamour.WithWordWrap(0),
	)

	return Model{
		port:     port,
		keys:     DefaultKeys(),
		path:     path,
		question: q,
		spinner:  sp,
		answer:   vp,
		renderer: r,
		convert: asynctask.New[studydto.DocumentOutput, studydto.GraphOutput](func(d studydto.DocumentOutput) bool {
			return d.Path != "" && d.Size > 0
		}, convertFallback),
		ask: asynctask.New[string, studydto.AnswerOutput](func(q string) bool {
			return strings.TrimSpace(q) != ""
		}, askFallback),
	}
}

func (m Model) Init() tea.Cmd { return textinput.Blink }

func (m Model) Keys() KeyMap { return m.keys }

// ConvertTask and AskTask expose read-only snapshots for the parent and tests.
func (m Model) ConvertTask() asynctask.Snapshot[studydto.GraphOutput] { return m.convert.Snapshot() }

func (m Model) AskTask() asynctask.Snapshot[studydto.AnswerOutput] { return m.ask.Snapshot() }

func (m Model) Document() (studydto.DocumentOutput, bool) { return m.doc, m.hasDoc }

func (m Model) Notice() string { return m.notice }

func (m Model) busy() bool { return m.convert.Pending() || m.ask.Pending() }

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()
		return m, nil

	case SelectedMsg:
		if msg.Seq != m.selectSeq {
			return m, nil
		}
		if msg.Err != nil {
			m.doc, m.hasDoc = studydto.DocumentOutput{}, false
			m.selectErr = msg.Err.Error()
			return m, nil
		}
		m.doc, m.hasDoc = msg.Doc, true
		m.selectErr = ""
		return m, nil

	case ConvertedMsg:
		m.convert.Complete(msg.RequestID, msg.Graph, msg.Err)
		return m, nil

	case AnsweredMsg:
		if m.ask.Complete(msg.RequestID, msg.Answer, msg.Err) {
			m.renderAnswer()
		}
		return m, nil

	case SavedMsg:
		if msg.Err != nil {
			m.notice = "save failed: " + msg.Err.Error()
		} else {
			m.notice = "answer saved to " + msg.Path
		}
		return m, nil

	case spinner.TickMsg:
		if !m.busy() {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Focus):
			return m, m.toggleFocus()
		case key.Matches(msg, m.keys.Enter):
			if m.focus == focusPath {
				return m, m.Select(m.path.Value())
			}
			return m, m.SubmitAsk()
		case key.Matches(msg, m.keys.Convert):
			return m, m.SubmitConvert()
		case key.Matches(msg, m.keys.Save):
			return m, m.SaveAnswer()
		case key.Matches(msg, m.keys.Burnout):
			m.ShowBurnoutNotice()
			return m, nil
		case key.Matches(msg, m.keys.Logout):
			return m, func() tea.Msg { return LogoutMsg{} }
		case key.Matches(msg, m.keys.Scroll):
			var cmd tea.Cmd
			m.answer, cmd = m.answer.Update(msg)
			return m, cmd
		}
	}

	var cmd tea.Cmd
	if m.focus == focusPath {
		m.path, cmd = m.path.Update(msg)
	} else {
		m.question, cmd = m.question.Update(msg)
	}
	return m, cmd
}

// Select starts inspecting path as the new upload. Any previous graph result
// or error is cleared immediately and an in-flight conversion is fenced out.
func (m *Model) Select(path string) tea.Cmd {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil
	}
	m.path.SetValue(path)
	m.convert.Reset()
	m.selectSeq++
	m.doc, m.hasDoc = studydto.DocumentOutput{}, false
	m.selectErr = ""
	seq, port := m.selectSeq, m.port
	return func() tea.Msg {
		doc, err := port.SelectDocument(context.Background(), path)
		return SelectedMsg{Seq: seq, Doc: doc, Err: err}
	}
}

// SubmitConvert uploads the selected document. It returns nil when nothing
// is selected or a conversion is already running.
func (m *Model) SubmitConvert() tea.Cmd {
	wasBusy := m.busy()
	requestID, ok := m.convert.Submit(m.doc)
	if !ok {
		return nil
	}
	doc, port := m.doc, m.port
	call := func() tea.Msg {
		graph, err := port.ConvertDocument(context.Background(), doc)
		return ConvertedMsg{RequestID: requestID, Graph: graph, Err: err}
	}
	return m.withSpinner(call, wasBusy)
}

// SubmitAsk sends the question field. It returns nil when the field is blank
// or a question is already pending. The field is cleared on submission.
func (m *Model) SubmitAsk() tea.Cmd {
	wasBusy := m.busy()
	question := strings.TrimSpace(m.question.Value())
	requestID, ok := m.ask.Submit(question)
	if !ok {
		return nil
	}
	m.question.SetValue("")
	m.answer.SetContent("")
	port := m.port
	call := func() tea.Msg {
		answer, err := port.Ask(context.Background(), question)
		return AnsweredMsg{RequestID: requestID, Answer: answer, Err: err}
	}
	return m.withSpinner(call, wasBusy)
}

// ReplaceAsk sends the question field even while another question is
// pending. The older request is fenced out and its answer is dropped.
func (m *Model) ReplaceAsk() tea.Cmd {
	wasBusy := m.busy()
	question := strings.TrimSpace(m.question.Value())
	requestID, ok := m.ask.Supersede(question)
	if !ok {
		return nil
	}
	m.question.SetValue("")
	m.answer.SetContent("")
	port := m.port
	call := func() tea.Msg {
		answer, err := port.Ask(context.Background(), question)
		return AnsweredMsg{RequestID: requestID, Answer: answer, Err: err}
	}
	return m.withSpinner(call, wasBusy)
}

// ClearSession drops everything the previous user left on screen. Request
// ids keep counting so late responses from that session never match.
func (m *Model) ClearSession() {
	m.convert.Reset()
	m.ask.Reset()
	m.selectSeq++
	m.doc, m.hasDoc = studydto.DocumentOutput{}, false
	m.selectErr = ""
	m.notice = ""
	m.path.SetValue("")
	m.question.SetValue("")
	m.answer.SetContent("")
}

// SetQuestion replaces the question field, used by the command palette.
func (m *Model) SetQuestion(q string) { m.question.SetValue(q) }

func (m *Model) ShowBurnoutNotice() { m.notice = burnoutNotice }

func (m *Model) SaveAnswer() tea.Cmd {
	answer, ok := m.ask.Result()
	if !ok {
		m.notice = "nothing to save yet"
		return nil
	}
	port := m.port
	return func() tea.Msg {
		out, err := port.SaveAnswer(context.Background(), answer.Question, answer.Text)
		return SavedMsg{Path: out.Path, Err: err}
	}
}

func (m Model) View() string {
	sections := []string{
		m.renderDocument(),
		m.renderQuestion(),
	}
	if m.notice != "" {
		sections = append(sections, theme.Muted.Render(m.notice))
	}
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// ─── private ─────────────────────────────────────────────────────────────────

func (m *Model) withSpinner(call tea.Cmd, wasBusy bool) tea.Cmd {
	if wasBusy {
		return call
	}
	return tea.Batch(call, m.spinner.Tick)
}

func (m *Model) toggleFocus() tea.Cmd {
	if m.focus == focusPath {
		m.focus = focusQuestion
		m.path.Blur()
		return m.question.Focus()
	}
	m.focus = focusPath
	m.question.Blur()
	return m.path.Focus()
}

func (m *Model) resize() {
	w := max(m.width-4, 20)
	m.path.Width = w - lipgloss.Width(m.path.Prompt) - 2
	m.question.Width = w - lipgloss.Width(m.question.Prompt) - 2
	m.answer.Width = w
	m.answer.Height = max(m.height-(maxGraphLines+12), 3)
	if r, err := glamour.NewTermRenderer(
		glamour.WithStylePath("dark"),
		glamour.WithWordWrap(w),
	); err == nil {
		m.renderer = r
	}
	m.renderAnswer()
}

func (m *Model) renderAnswer() {
	answer, ok := m.ask.Result()
	if !ok {
		return
	}
	content := answer.Text
	if answer.Recognized && m.renderer != nil {
		if rendered, err := m.renderer.Render(answer.Text); err == nil {
			content = rendered
		}
	}
	m.answer.SetContent(content)
	m.answer.GotoTop()
}

func (m Model) paneStyle(area focusArea) lipgloss.Style {
	style := theme.Pane
	if m.focus == area {
		style = theme.PaneActive
	}
	if m.width > 0 {
		style = style.Width(m.width - 2)
	}
	return style
}

func (m Model) renderDocument() string {
	var sb strings.Builder
	sb.WriteString(theme.Title.Render("Document → knowledge graph") + "\n")
	sb.WriteString(m.path.View() + "\n")

	switch {
	case m.selectErr != "":
		sb.WriteString(theme.Error.Render(m.selectErr) + "\n")
	case m.hasDoc:
		info := fmt.Sprintf("%s · %s · %s", m.doc.DisplayName, m.doc.Kind, humanSize(m.doc.Size))
		if m.doc.Pages > 0 {
			info += fmt.Sprintf(" · %d pages", m.doc.Pages)
		}
		sb.WriteString(theme.Muted.Render(info) + "\n")
	default:
		sb.WriteString(theme.Muted.Render("no file selected") + "\n")
	}

	snap := m.convert.Snapshot()
	switch snap.Status {
	case asynctask.Pending:
		sb.WriteString(m.spinner.View() + " Converting…")
	case asynctask.Failed:
		sb.WriteString(theme.Error.Render(snap.ErrMessage))
	case asynctask.Succeeded:
		sb.WriteString(theme.Success.Render(snap.Result.Summary) + "\n")
		sb.WriteString(renderGraph(snap.Result))
	default:
		if m.convert.CanSubmit(m.doc) {
			sb.WriteString(theme.Hot.Render("[ Convert ]") + theme.Muted.Render("  ctrl+g"))
		} else {
			sb.WriteString(theme.Muted.Render("[ Convert ]"))
		}
	}
	return m.paneStyle(focusPath).Render(sb.String())
}

func (m Model) renderQuestion() string {
	var sb strings.Builder
	sb.WriteString(theme.Title.Render("Ask") + "\n")
	sb.WriteString(m.question.View() + "\n")

	snap := m.ask.Snapshot()
	switch snap.Status {
	case asynctask.Pending:
		sb.WriteString(m.spinner.View() + " Thinking about: " + theme.Muted.Render(m.ask.Input()))
	case asynctask.Failed:
		sb.WriteString(theme.Error.Render(snap.ErrMessage))
	case asynctask.Succeeded:
		sb.WriteString(theme.Muted.Render("Q: "+snap.Result.Question) + "\n")
		sb.WriteString(m.answer.View())
	default:
		if m.ask.CanSubmit(m.question.Value()) {
			sb.WriteString(theme.Hot.Render("[ Ask ]") + theme.Muted.Render("  enter"))
		} else {
			sb.WriteString(theme.Muted.Render("[ Ask ]"))
		}
	}
	return m.paneStyle(focusQuestion).Render(sb.String())
}

func renderGraph(g studydto.GraphOutput) string {
	if !g.Recognized {
		raw := g.Raw
		if len(raw) > 400 {
			raw = raw[:400] + "…"
		}
		return theme.Muted.Render(raw)
	}
	labels := make(map[string]string, len(g.Nodes))
	for _, n := range g.Nodes {
		labels[n.ID] = n.Label
	}
	name := func(id string) string {
		if l, ok := labels[id]; ok && l != "" {
			return l
		}
		return id
	}
	lines := make([]string, 0, maxGraphLines)
	for _, l := range g.Links {
		if len(lines) == maxGraphLines {
			break
		}
		lines = append(lines, "  "+name(l.Source)+" → "+name(l.Target))
	}
	if len(g.Links) == 0 {
		for _, n := range g.Nodes {
			if len(lines) == maxGraphLines {
				break
			}
			lines = append(lines, "  • "+name(n.ID))
		}
	}
	total := len(g.Links)
	if total == 0 {
		total = len(g.Nodes)
	}
	if rest := total - len(lines); rest > 0 {
		lines = append(lines, theme.Muted.Render(fmt.Sprintf("  … %d more", rest)))
	}
	return strings.Join(lines, "\n")
}

func humanSize(n int64) string {
	switch {
	case n >= 1<<20:
		return fmt.Sprintf("%.1f MB", float64(n)/(1<<20))
	case n >= 1<<10:
		return fmt.Sprintf("%.1f KB", float64(n)/(1<<10))
	}
	return fmt.Sprintf("%d B", n)
}
