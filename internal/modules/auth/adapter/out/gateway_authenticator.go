package out

import (
	"context"

	authout "mindboost/internal/modules/auth/port/out"
	"mindboost/internal/gateway"
)

type GatewayAuthenticator struct {
	client *gateway.Client
}

func NewGatewayAuthenticator(client *gateway.Client) authout.Authenticator {
	return &GatewayAuthenticator{client: client}
}

func (a *GatewayAuthenticator) Authenticate(ctx context.Context, identifier, secret string) (string, error) {
	out, err := a.client.Authenticate(ctx, identifier, secret)
	if err != nil {
		return "", err
	}
	return out.AccessToken, nil
}
