package out_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"gopkg.in/yaml.v3"

	studyout "mindboost/internal/modules/study/adapter/out"
	"mindboost/internal/modules/study/domain"
	apperrors "mindboost/internal/platform/errors"
)

// minimalPDF builds a well-formed PDF with the given number of empty pages.
func minimalPDF(pages int) []byte {
	var objects []string
	kids := make([]string, 0, pages)
	for i := 0; i < pages; i++ {
		kids = append(kids, fmt.Sprintf("%d 0 R", i+3))
	}
	objects = append(objects, "<< /Type /Catalog /Pages 2 0 R >>")
	objects = append(objects, fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>", strings.Join(kids, " "), pages))
	for i := 0; i < pages; i++ {
		objects = append(objects, "<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] >>")
	}

	var b strings.Builder
	b.WriteString("%PDF-1.4\n")
	offsets := make([]int, len(objects))
	for i, obj := range objects {
		offsets[i] = b.Len()
		fmt.Fprintf(&b, "%d 0 obj\n%s\nendobj\n", i+1, obj)
	}
	xref := b.Len()
	fmt.Fprintf(&b, "xref\n0 %d\n0000000000 65535 f \n", len(objects)+1)
	for _, off := range offsets {
		fmt.Fprintf(&b, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&b, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objects)+1, xref)
	return []byte(b.String())
}

func TestInspectorCountsPDFPages(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "Biology Notes.pdf")
	if err := os.WriteFile(path, minimalPDF(3), 0o644); err != nil {
		t.Fatalf("write pdf: %v", err)
	}
	sel, err := studyout.NewLocalDocumentInspector().Inspect(context.Background(), path)
	if err != nil {
		t.Fatalf("inspect: %v", err)
	}
	if sel.DisplayName != "Biology Notes.pdf" || sel.Kind != domain.DocumentPDF || sel.Pages != 3 || !sel.Ready() {
		t.Fatalf("unexpected selection %+v", sel)
	}
}

func TestInspectorAcceptsUnreadablePDFAndOtherKinds(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	broken := filepath.Join(dir, "broken.pdf")
	if err := os.WriteFile(broken, []byte("not really a pdf"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	sel, err := studyout.NewLocalDocumentInspector().Inspect(context.Background(), broken)
	if err != nil || sel.Pages != 0 || sel.Kind != domain.DocumentPDF {
		t.Fatalf("unreadable pdf must still be selectable, got %+v %v", sel, err)
	}

	txt := filepath.Join(dir, "lecture.txt")
	if err := os.WriteFile(txt, []byte("cells divide."), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	sel, err = studyout.NewLocalDocumentInspector().Inspect(context.Background(), txt)
	if err != nil || sel.Kind != domain.DocumentText || sel.Size != int64(len("cells divide.")) {
		t.Fatalf("unexpected text selection %+v %v", sel, err)
	}
}

func TestInspectorRejectsMissingAndEmptyFiles(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	inspector := studyout.NewLocalDocumentInspector()
	if _, err := inspector.Inspect(context.Background(), filepath.Join(dir, "nope.pdf")); !errors.Is(err, apperrors.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	empty := filepath.Join(dir, "empty.pdf")
	if err := os.WriteFile(empty, nil, 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := inspector.Inspect(context.Background(), empty); !errors.Is(err, apperrors.ErrEmptyDocument) {
		t.Fatalf("expected empty document, got %v", err)
	}
	if _, err := inspector.Inspect(context.Background(), dir); !errors.Is(err, apperrors.ErrInvalidInput) {
		t.Fatalf("expected invalid input for directory, got %v", err)
	}
}

func TestSQLiteHistoryStoreListsNewestFirst(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store, err := studyout.NewSQLiteHistoryStore(filepath.Join(t.TempDir(), "mindboost.db"))
	if err != nil {
		t.Fatalf("open history: %v", err)
	}
	base := time.Date(2026, 10, 17, 9, 0, 0, 0, time.UTC)
	for i, kind := range []domain.ActivityKind{domain.ActivityConvert, domain.ActivityAsk, domain.ActivityAsk} {
		err := store.Append(ctx, domain.Activity{
			ID:        fmt.Sprintf("a-%d", i),
			Kind:      kind,
			Subject:   fmt.Sprintf("subject %d", i),
			Outcome:   domain.OutcomeSucceeded,
			Summary:   "ok",
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		})
		if err != nil {
			t.Fatalf("append %d: %v", i, err)
		}
	}
	items, err := store.List(ctx, 2)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(items) != 2 || items[0].ID != "a-2" || items[1].ID != "a-1" {
		t.Fatalf("unexpected order %+v", items)
	}
	if !items[0].CreatedAt.Equal(base.Add(2*time.Minute)) || items[0].Kind != domain.ActivityAsk {
		t.Fatalf("unexpected decoded activity %+v", items[0])
	}
}

func TestVaultNoteExporterWritesFrontmatter(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	asked := time.Date(2026, 10, 17, 14, 30, 5, 0, time.UTC)
	path, err := studyout.NewVaultNoteExporter(dir).SaveAnswer(context.Background(), domain.AnswerNote{
		ID:       "note-1",
		Question: "What is mitosis and why does it matter for growth?",
		Answer:   "Mitosis is cell division.",
		AskedAt:  asked,
	})
	if err != nil {
		t.Fatalf("save answer: %v", err)
	}
	want := filepath.Join(dir, "answers", "2026", "10", "17", "143005-what-is-mitosis-and-why-does-it-matter.md")
	if path != want {
		t.Fatalf("expected %s, got %s", want, path)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read note: %v", err)
	}
	meta, body := splitNote(t, string(b))
	if meta["id"] != "note-1" || meta["type"] != "answer" {
		t.Fatalf("unexpected frontmatter %+v", meta)
	}
	if !strings.Contains(body, "Mitosis is cell division.") {
		t.Fatalf("body missing answer: %s", body)
	}
}

func TestVaultNoteExporterKeepsSameSecondSaves(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	exporter := studyout.NewVaultNoteExporter(dir)
	asked := time.Date(2026, 10, 17, 14, 30, 5, 0, time.UTC)

	var paths []string
	for i, answer := range []string{"First take.", "Second take.", "Third take."} {
		path, err := exporter.SaveAnswer(context.Background(), domain.AnswerNote{
			ID:       fmt.Sprintf("note-%d", i+1),
			Question: "What is mitosis?",
			Answer:   answer,
			AskedAt:  asked,
		})
		if err != nil {
			t.Fatalf("save answer %d: %v", i+1, err)
		}
		paths = append(paths, path)
	}

	day := filepath.Join(dir, "answers", "2026", "10", "17")
	want := []string{
		filepath.Join(day, "143005-what-is-mitosis.md"),
		filepath.Join(day, "143005-what-is-mitosis-2.md"),
		filepath.Join(day, "143005-what-is-mitosis-3.md"),
	}
	for i := range want {
		if paths[i] != want[i] {
			t.Fatalf("save %d: expected %s, got %s", i+1, want[i], paths[i])
		}
		b, err := os.ReadFile(paths[i])
		if err != nil {
			t.Fatalf("read note %d: %v", i+1, err)
		}
		meta, _ := splitNote(t, string(b))
		if meta["id"] != fmt.Sprintf("note-%d", i+1) {
			t.Fatalf("note %d was overwritten: %+v", i+1, meta)
		}
	}
}

func splitNote(t *testing.T, content string) (map[string]any, string) {
	t.Helper()
	rest, ok := strings.CutPrefix(content, "---\n")
	if !ok {
		t.Fatalf("note has no frontmatter:\n%s", content)
	}
	raw, body, ok := strings.Cut(rest, "---\n")
	if !ok {
		t.Fatalf("frontmatter is not closed:\n%s", content)
	}
	meta := map[string]any{}
	if err := yaml.Unmarshal([]byte(raw), &meta); err != nil {
		t.Fatalf("decode frontmatter: %v", err)
	}
	return meta, body
}
