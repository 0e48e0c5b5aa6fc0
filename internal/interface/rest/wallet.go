package rest

import (
	"context"

	"github.com/totegamma/rebento/internal/domain"
	"github.com/totegamma/rebento/internal/usecase"
)

// requestWallet exposes the identity carried by the request's bearer token
// as a wallet. Scopes are the ones the token was issued with.
type requestWallet struct {
	address string
	scopes  []string
}

func (w requestWallet) Permissions(ctx context.Context) ([]string, error) {
	return w.scopes, nil
}

func (w requestWallet) ActiveAddress(ctx context.Context) (string, error) {
	return w.address, nil
}

// walletFromContext returns nil when the request is anonymous.
func walletFromContext(ctx context.Context) usecase.Wallet {
	address, _ := ctx.Value(domain.RequesterIdCtxKey).(string)
	if address == "" {
		return nil
	}
	scopes, _ := ctx.Value(domain.RequesterScopesCtxKey).([]string)
	return requestWallet{address: address, scopes: scopes}
}
