package in

import (
	"context"

	studydto "mindboost/internal/modules/study/dto"
	studyin "mindboost/internal/modules/study/port/in"
)

type CLIHandler struct {
	usecase studyin.Usecase
}

func NewCLIHandler(usecase studyin.Usecase) CLIHandler {
	return CLIHandler{usecase: usecase}
}

// Convert selects path and uploads it in one step.
func (h CLIHandler) Convert(ctx context.Context, path string) (studydto.DocumentOutput, studydto.GraphOutput, error) {
	doc, err := h.usecase.SelectDocument(ctx, path)
	if err != nil {
		return studydto.DocumentOutput{}, studydto.GraphOutput{}, err
	}
	graph, err := h.usecase.ConvertDocument(ctx, doc)
	return doc, graph, err
}

func (h CLIHandler) Ask(ctx context.Context, question string) (studydto.AnswerOutput, error) {
	return h.usecase.Ask(ctx, studydto.AskInput{Question: question})
}

func (h CLIHandler) History(ctx context.Context, limit int) ([]studydto.ActivityOutput, error) {
	return h.usecase.History(ctx, limit)
}

func (h CLIHandler) SaveAnswer(ctx context.Context, question, answer string) (studydto.SaveAnswerOutput, error) {
	return h.usecase.SaveAnswer(ctx, studydto.SaveAnswerInput{Question: question, Answer: answer})
}
