package service

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"mindboost/internal/modules/study/domain"
	studyout "mindboost/internal/modules/study/port/out"
	"mindboost/internal/platform/clock"
	apperrors "mindboost/internal/platform/errors"
	"mindboost/internal/platform/id"
)

const (
	convertFallback = "Failed to parse PDF"
	askFallback     = "Failed to get answer"
	summaryRunes    = 120
)

type StudyService struct {
	clock   clock.Clock
	idGen   id.Generator
	backend studyout.Backend
	history studyout.HistoryStore
	notes   studyout.NoteExporter
}

func NewStudyService(clock clock.Clock, idGen id.Generator, backend studyout.Backend, history studyout.HistoryStore, notes studyout.NoteExporter) *StudyService {
	return &StudyService{clock: clock, idGen: idGen, backend: backend, history: history, notes: notes}
}

// Convert sends doc to the backend. The returned activity describes the
// outcome and is meant for the history store.
func (s *StudyService) Convert(ctx context.Context, doc domain.UploadSelection) (domain.GraphResult, domain.Activity, error) {
	graph, err := s.backend.ConvertDocument(ctx, doc)
	activity := s.activity(domain.ActivityConvert, doc.DisplayName)
	if err != nil {
		activity.Outcome = domain.OutcomeFailed
		activity.Summary = apperrors.Message(err, convertFallback)
		return domain.GraphResult{}, activity, err
	}
	activity.Summary = graph.Summary()
	return graph, activity, nil
}

func (s *StudyService) Ask(ctx context.Context, question string) (domain.AnswerResult, domain.Activity, error) {
	answer, err := s.backend.AskQuestion(ctx, question)
	activity := s.activity(domain.ActivityAsk, question)
	if err != nil {
		activity.Outcome = domain.OutcomeFailed
		activity.Summary = apperrors.Message(err, askFallback)
		return domain.AnswerResult{}, activity, err
	}
	activity.Summary = truncate(answer.Text)
	return answer, activity, nil
}

func (s *StudyService) Record(ctx context.Context, activity domain.Activity) error {
	if s.history == nil {
		return nil
	}
	return s.history.Append(ctx, activity)
}

func (s *StudyService) History(ctx context.Context, limit int) ([]domain.Activity, error) {
	if s.history == nil {
		return nil, nil
	}
	return s.history.List(ctx, limit)
}

func (s *StudyService) SaveAnswer(ctx context.Context, question, answer string) (string, error) {
	if s.notes == nil {
		return "", fmt.Errorf("note exporter is not configured")
	}
	return s.notes.SaveAnswer(ctx, domain.AnswerNote{
		ID:       s.idGen.New(),
		Question: question,
		Answer:   answer,
		AskedAt:  s.clock.Now(),
	})
}

func (s *StudyService) activity(kind domain.ActivityKind, subject string) domain.Activity {
	return domain.Activity{
		ID:        s.idGen.New(),
		Kind:      kind,
		Subject:   truncate(subject),
		Outcome:   domain.OutcomeSucceeded,
		CreatedAt: s.clock.Now(),
	}
}

func truncate(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	if utf8.RuneCountInString(s) <= summaryRunes {
		return s
	}
	r := []rune(s)
	return string(r[:summaryRunes-1]) + "…"
}
