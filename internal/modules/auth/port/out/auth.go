package out

import (
	"context"

	"mindboost/internal/modules/auth/domain"
)

// CredentialStore is durable key-value persistence. Get returns
// apperrors.ErrNoCredential when key is absent; Clear of a missing key is not
// an error.
type CredentialStore interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Clear(ctx context.Context, key string) error
}

// Authenticator exchanges credentials for a bearer token.
type Authenticator interface {
	Authenticate(ctx context.Context, identifier, secret string) (string, error)
}

type ClaimsDecoder interface {
	Decode(token string) (domain.Claims, bool)
}
