package usecase

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	authdto "mindboost/internal/modules/auth/dto"
	authin "mindboost/internal/modules/auth/port/in"
	authout "mindboost/internal/modules/auth/port/out"
	"mindboost/internal/modules/auth/service"
	apperrors "mindboost/internal/platform/errors"
)

const loginFallback = "Login failed. Please check your credentials."

type Interactor struct {
	svc    *service.SessionManager
	claims authout.ClaimsDecoder
	logger *zap.Logger
}

func NewInteractor(svc *service.SessionManager, claims authout.ClaimsDecoder, logger *zap.Logger) authin.Usecase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Interactor{svc: svc, claims: claims, logger: logger.With(zap.String("module", "auth"))}
}

func (i *Interactor) Restore(ctx context.Context) error {
	if err := i.svc.Restore(ctx); err != nil {
		return err
	}
	i.logger.Debug("session restored", zap.Bool("authenticated", i.svc.IsAuthenticated()))
	return nil
}

func (i *Interactor) Login(ctx context.Context, input authdto.LoginInput) (authdto.LoginOutput, error) {
	if strings.TrimSpace(input.Identifier) == "" || input.Secret == "" {
		return authdto.LoginOutput{}, fmt.Errorf("%w: username and password are required", apperrors.ErrInvalidInput)
	}
	session, err := i.svc.Login(ctx, strings.TrimSpace(input.Identifier), input.Secret)
	if err != nil {
		i.logger.Info("login failed", zap.Error(err))
		return authdto.LoginOutput{}, apperrors.NewAuthError(err, loginFallback)
	}
	out := authdto.LoginOutput{Authenticated: session.Authenticated()}
	if i.claims != nil {
		if c, ok := i.claims.Decode(session.Token); ok {
			out.Subject = c.Subject
		}
	}
	i.logger.Info("login succeeded")
	return out, nil
}

func (i *Interactor) Logout(ctx context.Context) error {
	wasAuthenticated := i.svc.IsAuthenticated()
	if err := i.svc.Logout(ctx); err != nil {
		return err
	}
	if wasAuthenticated {
		i.logger.Info("logged out")
	}
	return nil
}

func (i *Interactor) IsAuthenticated() bool {
	return i.svc.IsAuthenticated()
}

func (i *Interactor) Token() string {
	return i.svc.Token()
}

func (i *Interactor) Status(_ context.Context) (authdto.StatusOutput, error) {
	session := i.svc.Session()
	out := authdto.StatusOutput{Authenticated: session.Authenticated()}
	if !out.Authenticated || i.claims == nil {
		return out, nil
	}
	if c, ok := i.claims.Decode(session.Token); ok {
		out.Subject = c.Subject
		if c.HasExpiry() {
			out.ExpiresAt = c.ExpiresAt
		}
	}
	return out, nil
}
