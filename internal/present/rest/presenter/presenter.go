package presenter

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/totegamma/rebento"
	"github.com/totegamma/rebento/internal/domain"
)

type errorResponse struct {
	Error  string `json:"error"`
	Reason string `json:"reason,omitempty"`
}

// OK wraps a successful response.
func OK(c echo.Context, payload any) error {
	return c.JSON(http.StatusOK, payload)
}

func BadRequest(c echo.Context, err error) error {
	slog.DebugContext(c.Request().Context(), "bad request", slog.String("error", err.Error()))
	return c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
}

func BadRequestMessage(c echo.Context, msg string) error {
	return c.JSON(http.StatusBadRequest, errorResponse{Error: msg})
}

func Unauthorized(c echo.Context, msg string) error {
	return c.JSON(http.StatusUnauthorized, errorResponse{Error: msg, Reason: "not-authenticated"})
}

func Forbidden(c echo.Context, msg string) error {
	return c.JSON(http.StatusForbidden, errorResponse{Error: msg, Reason: "forbidden"})
}

func InternalError(c echo.Context, err error) error {
	slog.ErrorContext(c.Request().Context(), "internal error", slog.String("error", err.Error()))
	return c.JSON(http.StatusInternalServerError, errorResponse{Error: err.Error()})
}

// Error maps a domain error to its status code and reason.
func Error(c echo.Context, err error) error {
	status, reason := Classify(err)
	if status == http.StatusInternalServerError {
		return InternalError(c, err)
	}
	return c.JSON(status, errorResponse{Error: err.Error(), Reason: reason})
}

// Classify returns the status code and reason string for err.
func Classify(err error) (int, string) {
	var pub *domain.PublishError
	if errors.As(err, &pub) {
		switch pub.Reason {
		case domain.PublishOversized:
			return http.StatusRequestEntityTooLarge, string(pub.Reason)
		case domain.PublishUnauthenticated:
			return http.StatusUnauthorized, string(pub.Reason)
		case domain.PublishSigning:
			return http.StatusInternalServerError, string(pub.Reason)
		default:
			return http.StatusBadGateway, string(pub.Reason)
		}
	}

	var nf domain.NotFoundError
	if errors.As(err, &nf) {
		if nf.Reason == domain.NotFoundUnreachable {
			return http.StatusBadGateway, string(nf.Reason)
		}
		return http.StatusNotFound, string(nf.Reason)
	}

	var perm *domain.PermissionError
	if errors.As(err, &perm) {
		switch perm.Reason {
		case domain.PermissionNoWallet, domain.PermissionNotAuthenticated:
			return http.StatusUnauthorized, string(perm.Reason)
		default:
			return http.StatusForbidden, string(perm.Reason)
		}
	}

	switch {
	case errors.Is(err, rebento.ErrBlockNotFound):
		return http.StatusNotFound, "block-not-found"
	case errors.Is(err, rebento.ErrKindImmutable):
		return http.StatusConflict, "kind-immutable"
	case errors.Is(err, rebento.ErrDuplicateBlock):
		return http.StatusBadRequest, "duplicate-block"
	case errors.Is(err, rebento.ErrInvalidBlock):
		return http.StatusBadRequest, "invalid-block"
	}

	return http.StatusInternalServerError, ""
}
