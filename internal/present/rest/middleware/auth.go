package middleware

import (
	"context"
	"fmt"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/totegamma/rebento/internal/domain"
	"github.com/totegamma/rebento/internal/service"
)

var tracer = otel.Tracer("auth")

type AuthMiddleware struct {
	auth *service.AuthService
}

func NewAuthMiddleware(auth *service.AuthService) *AuthMiddleware {
	return &AuthMiddleware{
		auth: auth,
	}
}

// IdentifyIdentity attaches the viewer address and granted scopes to the
// request context when a valid bearer token is present. Requests without
// one continue anonymously.
func (s *AuthMiddleware) IdentifyIdentity(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx, span := tracer.Start(c.Request().Context(), "Auth.Middleware.IdentifyIdentity")
		defer span.End()

		if authHeader := c.Request().Header.Get("authorization"); authHeader != "" {
			ctx = s.identify(ctx, authHeader)
		}

		c.SetRequest(c.Request().WithContext(ctx))
		return next(c)
	}
}

func (s *AuthMiddleware) identify(ctx context.Context, authHeader string) context.Context {
	span := trace.SpanFromContext(ctx)

	authType, token, found := strings.Cut(authHeader, " ")
	if !found {
		span.RecordError(fmt.Errorf("invalid authentication header"))
		return ctx
	}
	if authType != "Bearer" {
		span.RecordError(fmt.Errorf("only Bearer is acceptable"))
		return ctx
	}

	result, err := s.auth.AuthJwt(ctx, token)
	if err != nil {
		span.RecordError(errors.Wrap(err, "AuthMiddleware.IdentifyIdentity: s.auth.AuthJwt failed"))
		return ctx
	}

	ctx = context.WithValue(ctx, domain.RequesterIdCtxKey, result.Address)
	ctx = context.WithValue(ctx, domain.RequesterScopesCtxKey, result.Scopes)
	span.SetAttributes(attribute.String("RequesterId", result.Address))
	return ctx
}
