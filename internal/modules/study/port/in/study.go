package in

import (
	"context"

	"mindboost/internal/modules/study/dto"
)

type Usecase interface {
	SelectDocument(ctx context.Context, path string) (dto.DocumentOutput, error)
	ConvertDocument(ctx context.Context, doc dto.DocumentOutput) (dto.GraphOutput, error)
	Ask(ctx context.Context, input dto.AskInput) (dto.AnswerOutput, error)
	History(ctx context.Context, limit int) ([]dto.ActivityOutput, error)
	SaveAnswer(ctx context.Context, input dto.SaveAnswerInput) (dto.SaveAnswerOutput, error)
}
