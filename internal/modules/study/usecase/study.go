package usecase

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"mindboost/internal/modules/study/domain"
	studydto "mindboost/internal/modules/study/dto"
	studyin "mindboost/internal/modules/study/port/in"
	studyout "mindboost/internal/modules/study/port/out"
	"mindboost/internal/modules/study/service"
	apperrors "mindboost/internal/platform/errors"
)

const defaultHistoryLimit = 20

type Interactor struct {
	svc       *service.StudyService
	inspector studyout.DocumentInspector
	logger    *zap.Logger
}

func NewInteractor(svc *service.StudyService, inspector studyout.DocumentInspector, logger *zap.Logger) studyin.Usecase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Interactor{svc: svc, inspector: inspector, logger: logger.With(zap.String("module", "study"))}
}

func (i *Interactor) SelectDocument(ctx context.Context, path string) (studydto.DocumentOutput, error) {
	if strings.TrimSpace(path) == "" {
		return studydto.DocumentOutput{}, fmt.Errorf("%w: file path is required", apperrors.ErrInvalidInput)
	}
	sel, err := i.inspector.Inspect(ctx, strings.TrimSpace(path))
	if err != nil {
		return studydto.DocumentOutput{}, err
	}
	return toDocumentOutput(sel), nil
}

func (i *Interactor) ConvertDocument(ctx context.Context, doc studydto.DocumentOutput) (studydto.GraphOutput, error) {
	sel := domain.UploadSelection{
		Path:        doc.Path,
		DisplayName: doc.DisplayName,
		Size:        doc.Size,
		Kind:        domain.DocumentKind(doc.Kind),
		Pages:       doc.Pages,
	}
	if !sel.Ready() {
		return studydto.GraphOutput{}, fmt.Errorf("%w: no document selected", apperrors.ErrInvalidInput)
	}
	graph, activity, err := i.svc.Convert(ctx, sel)
	i.record(ctx, activity)
	if err != nil {
		return studydto.GraphOutput{}, fmt.Errorf("convert %s: %w", sel.DisplayName, err)
	}
	return toGraphOutput(graph), nil
}

func (i *Interactor) Ask(ctx context.Context, input studydto.AskInput) (studydto.AnswerOutput, error) {
	question := strings.TrimSpace(input.Question)
	if question == "" {
		return studydto.AnswerOutput{}, fmt.Errorf("%w: question is required", apperrors.ErrInvalidInput)
	}
	answer, activity, err := i.svc.Ask(ctx, question)
	i.record(ctx, activity)
	if err != nil {
		return studydto.AnswerOutput{}, fmt.Errorf("ask: %w", err)
	}
	return studydto.AnswerOutput{Question: question, Text: answer.Text, Recognized: answer.Recognized}, nil
}

func (i *Interactor) History(ctx context.Context, limit int) ([]studydto.ActivityOutput, error) {
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	items, err := i.svc.History(ctx, limit)
	if err != nil {
		return nil, err
	}
	out := make([]studydto.ActivityOutput, 0, len(items))
	for _, a := range items {
		out = append(out, studydto.ActivityOutput{
			ID:        a.ID,
			Kind:      string(a.Kind),
			Subject:   a.Subject,
			Outcome:   string(a.Outcome),
			Summary:   a.Summary,
			CreatedAt: a.CreatedAt,
		})
	}
	return out, nil
}

func (i *Interactor) SaveAnswer(ctx context.Context, input studydto.SaveAnswerInput) (studydto.SaveAnswerOutput, error) {
	if strings.TrimSpace(input.Question) == "" || strings.TrimSpace(input.Answer) == "" {
		return studydto.SaveAnswerOutput{}, fmt.Errorf("%w: nothing to save", apperrors.ErrInvalidInput)
	}
	path, err := i.svc.SaveAnswer(ctx, input.Question, input.Answer)
	if err != nil {
		return studydto.SaveAnswerOutput{}, err
	}
	return studydto.SaveAnswerOutput{Path: path}, nil
}

// record never fails the calling action; history is best effort.
func (i *Interactor) record(ctx context.Context, activity domain.Activity) {
	if err := i.svc.Record(context.WithoutCancel(ctx), activity); err != nil {
		i.logger.Warn("record activity", zap.Error(err))
		return
	}
	i.logger.Info("backend call finished",
		zap.String("kind", string(activity.Kind)),
		zap.String("outcome", string(activity.Outcome)))
}

func toDocumentOutput(sel domain.UploadSelection) studydto.DocumentOutput {
	return studydto.DocumentOutput{
		Path:        sel.Path,
		DisplayName: sel.DisplayName,
		Size:        sel.Size,
		Kind:        string(sel.Kind),
		Pages:       sel.Pages,
	}
}

func toGraphOutput(g domain.GraphResult) studydto.GraphOutput {
	out := studydto.GraphOutput{Raw: g.Raw, Recognized: g.Recognized, Summary: g.Summary()}
	for _, n := range g.Nodes {
		out.Nodes = append(out.Nodes, studydto.NodeOutput{ID: n.ID, Label: n.Label})
	}
	for _, l := range g.Links {
		out.Links = append(out.Links, studydto.LinkOutput{Source: l.Source, Target: l.Target})
	}
	return out
}
