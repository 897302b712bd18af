package out

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"rsc.io/pdf"

	"mindboost/internal/modules/study/domain"
	studyout "mindboost/internal/modules/study/port/out"
	apperrors "mindboost/internal/platform/errors"
)

// LocalDocumentInspector stats the file and, for PDFs, counts pages. Page
// counting is informational: an unreadable PDF still uploads, the backend
// decides.
type LocalDocumentInspector struct{}

func NewLocalDocumentInspector() studyout.DocumentInspector {
	return &LocalDocumentInspector{}
}

func (i *LocalDocumentInspector) Inspect(_ context.Context, path string) (domain.UploadSelection, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return domain.UploadSelection{}, fmt.Errorf("%w: %s", apperrors.ErrNotFound, path)
		}
		return domain.UploadSelection{}, fmt.Errorf("stat document: %w", err)
	}
	if info.IsDir() {
		return domain.UploadSelection{}, fmt.Errorf("%w: %s is a directory", apperrors.ErrInvalidInput, path)
	}
	if info.Size() == 0 {
		return domain.UploadSelection{}, fmt.Errorf("%w: %s", apperrors.ErrEmptyDocument, path)
	}
	sel := domain.UploadSelection{
		Path:        path,
		DisplayName: filepath.Base(path),
		Size:        info.Size(),
		Kind:        domain.KindFromExtension(filepath.Ext(path)),
	}
	if sel.Kind == domain.DocumentPDF {
		sel.Pages = countPages(path)
	}
	return sel, nil
}

func countPages(path string) (pages int) {
	defer func() {
		// rsc.io/pdf panics on some malformed cross-reference tables.
		if recover() != nil {
			pages = 0
		}
	}()
	doc, err := pdf.Open(path)
	if err != nil {
		return 0
	}
	return doc.NumPage()
}
