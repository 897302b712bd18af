package dashboard

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	studydto "mindboost/internal/modules/study/dto"
	"mindboost/internal/platform/asynctask"
	apperrors "mindboost/internal/platform/errors"
)

type fakePort struct {
	docs     map[string]studydto.DocumentOutput
	graph    studydto.GraphOutput
	convErr  error
	answer   string
	askErr   error
	converts int
	asks     []string
	saved    []string
}

func (f *fakePort) SelectDocument(_ context.Context, path string) (studydto.DocumentOutput, error) {
	doc, ok := f.docs[path]
	if !ok {
		return studydto.DocumentOutput{}, apperrors.ErrNotFound
	}
	return doc, nil
}

func (f *fakePort) ConvertDocument(context.Context, studydto.DocumentOutput) (studydto.GraphOutput, error) {
	f.converts++
	return f.graph, f.convErr
}

func (f *fakePort) Ask(_ context.Context, q string) (studydto.AnswerOutput, error) {
	f.asks = append(f.asks, q)
	if f.askErr != nil {
		return studydto.AnswerOutput{}, f.askErr
	}
	return studydto.AnswerOutput{Question: q, Text: f.answer, Recognized: true}, nil
}

func (f *fakePort) SaveAnswer(_ context.Context, q, a string) (studydto.SaveAnswerOutput, error) {
	f.saved = append(f.saved, q+"|"+a)
	return studydto.SaveAnswerOutput{Path: "/notes/answer.md"}, nil
}

func newPort() *fakePort {
	return &fakePort{
		docs: map[string]studydto.DocumentOutput{
			"a.pdf": {Path: "a.pdf", DisplayName: "a.pdf", Size: 10, Kind: "pdf", Pages: 2},
			"b.pdf": {Path: "b.pdf", DisplayName: "b.pdf", Size: 20, Kind: "pdf"},
		},
		graph: studydto.GraphOutput{
			Nodes:      []studydto.NodeOutput{{ID: "0", Label: "Cells"}, {ID: "1", Label: "DNA"}},
			Links:      []studydto.LinkOutput{{Source: "0", Target: "1"}},
			Recognized: true,
			Summary:    "2 nodes, 1 links",
		},
		answer: "Mitosis is cell division.",
	}
}

// run executes cmd and returns every message it produces, flattening batches
// and dropping spinner ticks.
func run(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	switch msg := msg.(type) {
	case tea.BatchMsg:
		var out []tea.Msg
		for _, c := range msg {
			out = append(out, run(c)...)
		}
		return out
	case spinner.TickMsg, nil:
		return nil
	}
	return []tea.Msg{msg}
}

func feed(t *testing.T, m Model, msgs []tea.Msg) Model {
	t.Helper()
	for _, msg := range msgs {
		m, _ = m.Update(msg)
	}
	return m
}

func selectDoc(t *testing.T, m Model, path string) Model {
	t.Helper()
	cmd := m.Select(path)
	return feed(t, m, run(cmd))
}

func TestConvertLifecycle(t *testing.T) {
	t.Parallel()
	port := newPort()
	m := New(port)

	if cmd := m.SubmitConvert(); cmd != nil {
		t.Fatal("convert must be disabled without a selection")
	}
	m = selectDoc(t, m, "a.pdf")
	if doc, ok := m.Document(); !ok || doc.Pages != 2 {
		t.Fatalf("expected a.pdf selected, got %+v %v", doc, ok)
	}

	cmd := m.SubmitConvert()
	if cmd == nil {
		t.Fatal("expected convert to start")
	}
	if m.ConvertTask().Status != asynctask.Pending {
		t.Fatalf("expected pending, got %s", m.ConvertTask().Status)
	}
	m = feed(t, m, run(cmd))
	snap := m.ConvertTask()
	if snap.Status != asynctask.Succeeded || snap.Result.Summary != "2 nodes, 1 links" {
		t.Fatalf("unexpected snapshot %+v", snap)
	}
	if port.converts != 1 {
		t.Fatalf("expected one upload, got %d", port.converts)
	}
}

func TestNewSelectionClearsResultAndFencesPendingConvert(t *testing.T) {
	t.Parallel()
	port := newPort()
	m := New(port)
	m = selectDoc(t, m, "a.pdf")
	m = feed(t, m, run(m.SubmitConvert()))
	if m.ConvertTask().Status != asynctask.Succeeded {
		t.Fatal("expected first conversion to succeed")
	}

	m = selectDoc(t, m, "b.pdf")
	if m.ConvertTask().Status != asynctask.Idle {
		t.Fatalf("new selection must clear the result, got %s", m.ConvertTask().Status)
	}

	// A conversion in flight when the user picks another file must not land.
	inflight := m.SubmitConvert()
	stale := run(inflight)
	m = selectDoc(t, m, "a.pdf")
	m = feed(t, m, stale)
	if m.ConvertTask().Status != asynctask.Idle {
		t.Fatalf("stale conversion applied: %+v", m.ConvertTask())
	}
	if doc, _ := m.Document(); doc.Path != "a.pdf" {
		t.Fatalf("expected a.pdf selected, got %+v", doc)
	}
}

func TestOutOfOrderSelectionIsIgnored(t *testing.T) {
	t.Parallel()
	m := New(newPort())
	first := run(m.Select("a.pdf"))
	second := run(m.Select("b.pdf"))
	m = feed(t, m, second)
	m = feed(t, m, first)
	if doc, _ := m.Document(); doc.Path != "b.pdf" {
		t.Fatalf("expected latest selection b.pdf, got %+v", doc)
	}
}

func TestSelectionErrorIsShown(t *testing.T) {
	t.Parallel()
	m := New(newPort())
	m = selectDoc(t, m, "missing.pdf")
	if _, ok := m.Document(); ok {
		t.Fatal("failed selection must leave nothing selected")
	}
	if m.selectErr == "" {
		t.Fatal("expected selection error to be shown")
	}
}

func TestDoubleAskSendsOneRequest(t *testing.T) {
	t.Parallel()
	port := newPort()
	m := New(port)
	m.question.SetValue("What is mitosis?")
	first := m.SubmitAsk()
	if m.question.Value() != "" {
		t.Fatal("question field must be cleared on submission")
	}
	m.question.SetValue("What is mitosis?")
	second := m.SubmitAsk()
	if first == nil || second != nil {
		t.Fatalf("expected exactly one submission, got first=%v second=%v", first != nil, second != nil)
	}
	if m.question.Value() != "What is mitosis?" {
		t.Fatal("a declined submission must leave the field alone")
	}
	m = feed(t, m, run(first))
	if len(port.asks) != 1 {
		t.Fatalf("expected one backend call, got %d", len(port.asks))
	}
	snap := m.AskTask()
	if snap.Status != asynctask.Succeeded || snap.Result.Text != "Mitosis is cell division." {
		t.Fatalf("unexpected ask snapshot %+v", snap)
	}
}

func TestBlankQuestionIsNotSent(t *testing.T) {
	t.Parallel()
	port := newPort()
	m := New(port)
	m.question.SetValue("   ")
	if cmd := m.SubmitAsk(); cmd != nil {
		t.Fatal("blank question must not submit")
	}
	if m.AskTask().Status != asynctask.Idle {
		t.Fatal("blank question must leave the task idle")
	}
}

func TestStaleAnswerIsDiscarded(t *testing.T) {
	t.Parallel()
	m := New(newPort())
	m.question.SetValue("first")
	m = feed(t, m, run(m.SubmitAsk()))
	current := m.AskTask().RequestID

	m.question.SetValue("second")
	pending := m.SubmitAsk()
	m, _ = m.Update(AnsweredMsg{RequestID: current, Answer: studydto.AnswerOutput{Text: "late"}})
	if m.AskTask().Status != asynctask.Pending {
		t.Fatalf("stale answer changed state: %+v", m.AskTask())
	}
	m = feed(t, m, run(pending))
	if got := m.AskTask().Result.Question; got != "second" {
		t.Fatalf("expected answer to second question, got %q", got)
	}
}

func TestAskFailureShowsDetailOrFallback(t *testing.T) {
	t.Parallel()
	port := newPort()
	port.askErr = &apperrors.BackendError{Status: 500, Message: askFallback, Err: errors.New("boom")}
	m := New(port)
	m.question.SetValue("q")
	m = feed(t, m, run(m.SubmitAsk()))
	if snap := m.AskTask(); snap.Status != asynctask.Failed || snap.ErrMessage != askFallback {
		t.Fatalf("expected fallback failure, got %+v", snap)
	}

	port.askErr = &apperrors.BackendError{Status: 422, Detail: "Question too long"}
	m.question.SetValue("q")
	m = feed(t, m, run(m.SubmitAsk()))
	if snap := m.AskTask(); snap.ErrMessage != "Question too long" {
		t.Fatalf("expected backend detail, got %+v", snap)
	}
}

func TestSaveAnswerAndBurnoutNotice(t *testing.T) {
	t.Parallel()
	port := newPort()
	m := New(port)
	if cmd := m.SaveAnswer(); cmd != nil {
		t.Fatal("nothing to save before an answer")
	}
	m.question.SetValue("What is mitosis?")
	m = feed(t, m, run(m.SubmitAsk()))
	m = feed(t, m, run(m.SaveAnswer()))
	if len(port.saved) != 1 || port.saved[0] != "What is mitosis?|Mitosis is cell division." {
		t.Fatalf("unexpected saves %v", port.saved)
	}
	if m.Notice() != "answer saved to /notes/answer.md" {
		t.Fatalf("unexpected notice %q", m.Notice())
	}

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyCtrlB})
	if !strings.HasPrefix(m.Notice(), "Burnout assessment feature coming soon!") {
		t.Fatalf("expected burnout notice, got %q", m.Notice())
	}
}

func TestLogoutKeyRequestsLogout(t *testing.T) {
	t.Parallel()
	m := New(newPort())
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlX})
	msgs := run(cmd)
	if len(msgs) != 1 {
		t.Fatalf("expected one message, got %v", msgs)
	}
	if _, ok := msgs[0].(LogoutMsg); !ok {
		t.Fatalf("expected LogoutMsg, got %T", msgs[0])
	}
}

func TestClearSessionFencesInFlightTasks(t *testing.T) {
	t.Parallel()
	port := newPort()
	m := New(port)
	m.question.SetValue("What is mitosis?")
	ask := m.SubmitAsk()
	if ask == nil {
		t.Fatal("expected question to be sent")
	}
	before := m.AskTask().RequestID

	m.ClearSession()
	if m.AskTask().Status != asynctask.Idle {
		t.Fatalf("expected idle question after clearing, got %s", m.AskTask().Status)
	}
	m = feed(t, m, run(ask))
	if m.AskTask().Status != asynctask.Idle {
		t.Fatal("an answer issued before clearing must not be applied")
	}

	m.question.SetValue("What is meiosis?")
	if m.SubmitAsk() == nil {
		t.Fatal("expected a fresh question to be sent")
	}
	if m.AskTask().RequestID <= before {
		t.Fatalf("request ids must keep increasing, got %d after %d", m.AskTask().RequestID, before)
	}
}
