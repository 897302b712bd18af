package in

import (
	"context"

	studydto "mindboost/internal/modules/study/dto"
	studyin "mindboost/internal/modules/study/port/in"
)

// TUIHandler exposes the step-by-step flow the dashboard needs: pick a file
// first, convert it later.
type TUIHandler struct {
	usecase studyin.Usecase
}

func NewTUIHandler(usecase studyin.Usecase) TUIHandler {
	return TUIHandler{usecase: usecase}
}

func (h TUIHandler) SelectDocument(ctx context.Context, path string) (studydto.DocumentOutput, error) {
	return h.usecase.SelectDocument(ctx, path)
}

func (h TUIHandler) ConvertDocument(ctx context.Context, doc studydto.DocumentOutput) (studydto.GraphOutput, error) {
	return h.usecase.ConvertDocument(ctx, doc)
}

func (h TUIHandler) Ask(ctx context.Context, question string) (studydto.AnswerOutput, error) {
	return h.usecase.Ask(ctx, studydto.AskInput{Question: question})
}

func (h TUIHandler) SaveAnswer(ctx context.Context, question, answer string) (studydto.SaveAnswerOutput, error) {
	return h.usecase.SaveAnswer(ctx, studydto.SaveAnswerInput{Question: question, Answer: answer})
}
