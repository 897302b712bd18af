package in

import (
	"context"

	authdto "mindboost/internal/modules/auth/dto"
	authin "mindboost/internal/modules/auth/port/in"
)

type CLIHandler struct {
	usecase authin.Usecase
}

func NewCLIHandler(usecase authin.Usecase) CLIHandler {
	return CLIHandler{usecase: usecase}
}

func (h CLIHandler) Login(ctx context.Context, identifier, secret string) (authdto.LoginOutput, error) {
	return h.usecase.Login(ctx, authdto.LoginInput{Identifier: identifier, Secret: secret})
}

func (h CLIHandler) Logout(ctx context.Context) error {
	return h.usecase.Logout(ctx)
}

func (h CLIHandler) Status(ctx context.Context) (authdto.StatusOutput, error) {
	return h.usecase.Status(ctx)
}

func (h CLIHandler) IsAuthenticated() bool {
	return h.usecase.IsAuthenticated()
}
