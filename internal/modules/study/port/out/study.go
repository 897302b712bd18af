package out

import (
	"context"

	"mindboost/internal/modules/study/domain"
)

// Backend is the remote study-assistant. Failures are *apperrors.BackendError.
type Backend interface {
	ConvertDocument(ctx context.Context, doc domain.UploadSelection) (domain.GraphResult, error)
	AskQuestion(ctx context.Context, question string) (domain.AnswerResult, error)
}

type DocumentInspector interface {
	Inspect(ctx context.Context, path string) (domain.UploadSelection, error)
}

type HistoryStore interface {
	Append(ctx context.Context, activity domain.Activity) error
	List(ctx context.Context, limit int) ([]domain.Activity, error)
}

type NoteExporter interface {
	SaveAnswer(ctx context.Context, note domain.AnswerNote) (string, error)
}
