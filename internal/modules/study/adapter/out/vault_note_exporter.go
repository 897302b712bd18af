package out

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"mindboost/internal/modules/study/domain"
	studyout "mindboost/internal/modules/study/port/out"
	"mindboost/internal/platform/markdown"
	"mindboost/internal/platform/slug"
)

// VaultNoteExporter writes answers as markdown notes laid out by date, so a
// notes folder can double as an Obsidian vault.
type VaultNoteExporter struct {
	notesDir string
}

func NewVaultNoteExporter(notesDir string) studyout.NoteExporter {
	return &VaultNoteExporter{notesDir: notesDir}
}

func (e *VaultNoteExporter) SaveAnswer(_ context.Context, note domain.AnswerNote) (string, error) {
	date := note.AskedAt
	dir := filepath.Join(e.notesDir, "answers", date.Format("2006"), date.Format("01"), date.Format("02"))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create notes dir: %w", err)
	}
	base := fmt.Sprintf("%s-%s", date.Format("150405"), slug.FromWords(note.Question, 8))

	fields := []markdown.Field{
		{Key: "schema_version", Value: domain.SchemaVersion},
		{Key: "id", Value: note.ID},
		{Key: "type", Value: "answer"},
		{Key: "asked_at", Value: date.Format(time.RFC3339)},
		{Key: "question", Value: note.Question},
	}
	body := fmt.Sprintf("# %s\n\n%s\n", note.Question, note.Answer)
	rendered, err := markdown.Render(fields, body)
	if err != nil {
		return "", err
	}
	return writeNew(dir, base, []byte(rendered))
}

// writeNew never overwrites: a taken name gets a -2, -3, ... suffix.
func writeNew(dir, base string, data []byte) (string, error) {
	for n := 1; ; n++ {
		name := base + ".md"
		if n > 1 {
			name = fmt.Sprintf("%s-%d.md", base, n)
		}
		path := filepath.Join(dir, name)
		f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if errors.Is(err, os.ErrExist) {
			continue
		}
		if err != nil {
			return "", fmt.Errorf("create answer note: %w", err)
		}
		if _, err := f.Write(data); err != nil {
			_ = f.Close()
			return "", fmt.Errorf("write answer note: %w", err)
		}
		if err := f.Close(); err != nil {
			return "", fmt.Errorf("write answer note: %w", err)
		}
		return path, nil
	}
}
