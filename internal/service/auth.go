package service

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
	"go.opentelemetry.io/otel"

	"github.com/totegamma/rebento/jwt"
)

var tracer = otel.Tracer("auth")

const tokenSubject = "rebento"

type AuthService struct {
	audience string
}

func NewAuthService(audience string) *AuthService {
	return &AuthService{
		audience: audience,
	}
}

type AuthResult struct {
	Address string
	Scopes  []string
}

func (s *AuthService) AuthJwt(ctx context.Context, token string) (*AuthResult, error) {
	_, span := tracer.Start(ctx, "Auth.Service.AuthJwt")
	defer span.End()

	header, claims, err := jwt.Validate(token)
	if err != nil {
		span.RecordError(errors.Wrap(err, "jwt validation failed"))
		return nil, err
	}

	if s.audience != "" && claims.Audience != s.audience {
		err := fmt.Errorf("jwt audience mismatch: expected %s, got %s", s.audience, claims.Audience)
		span.RecordError(err)
		return nil, err
	}

	if claims.Subject != tokenSubject {
		err := fmt.Errorf("invalid subject")
		span.RecordError(err)
		return nil, err
	}

	keyID := header.KeyID
	if keyID == "" {
		keyID = claims.Issuer
	}
	if keyID == "" {
		err := fmt.Errorf("invalid issuer")
		span.RecordError(err)
		return nil, err
	}

	return &AuthResult{Address: keyID, Scopes: claims.Scopes}, nil
}
