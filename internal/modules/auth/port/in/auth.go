package in

import (
	"context"

	"mindboost/internal/modules/auth/dto"
)

type Usecase interface {
	Restore(ctx context.Context) error
	Login(ctx context.Context, input dto.LoginInput) (dto.LoginOutput, error)
	Logout(ctx context.Context) error
	IsAuthenticated() bool
	Status(ctx context.Context) (dto.StatusOutput, error)
	Token() string
}
