package handlers

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/SscSPs/estate_ledger/internal/apperrors"
	"github.com/SscSPs/estate_ledger/internal/core/domain"
	"github.com/SscSPs/estate_ledger/internal/dto"
	"github.com/SscSPs/estate_ledger/internal/middleware"
	"github.com/gin-gonic/gin"
)

// respondError maps a service error onto an HTTP status. Configuration errors are fatal: they are
// logged at error level and reported with the unresolved keys so an operator can act on them.
func respondError(c *gin.Context, logger *slog.Logger, err error, fallback string) {
	var cfgErr *apperrors.ConfigurationError
	switch {
	case errors.As(err, &cfgErr):
		logger.Error("Ledger configuration error", slog.String("error", err.Error()), slog.Any("missing", cfgErr.Missing))
		c.JSON(http.StatusServiceUnavailable, dto.ErrorResponse{Error: err.Error(), Fatal: true, Missing: cfgErr.Missing})
	case errors.Is(err, apperrors.ErrConfiguration):
		logger.Error("Ledger configuration error", slog.String("error", err.Error()))
		c.JSON(http.StatusServiceUnavailable, dto.ErrorResponse{Error: err.Error(), Fatal: true})
	case errors.Is(err, apperrors.ErrNotFound):
		logger.Warn("Resource not found", slog.String("error", err.Error()))
		c.JSON(http.StatusNotFound, dto.ErrorResponse{Error: err.Error()})
	case errors.Is(err, apperrors.ErrValidation), errors.Is(err, apperrors.ErrUnbalancedEntry):
		logger.Warn("Validation error", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
	case errors.Is(err, apperrors.ErrOverpayment):
		logger.Warn("Overpayment rejected", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
	case errors.Is(err, apperrors.ErrAlreadyVoid), errors.Is(err, apperrors.ErrConflict), errors.Is(err, apperrors.ErrDuplicate):
		logger.Warn("Conflicting request", slog.String("error", err.Error()))
		c.JSON(http.StatusConflict, dto.ErrorResponse{Error: err.Error()})
	case errors.Is(err, apperrors.ErrForbidden):
		logger.Warn("Forbidden", slog.String("error", err.Error()))
		c.JSON(http.StatusForbidden, dto.ErrorResponse{Error: "Forbidden"})
	case errors.Is(err, apperrors.ErrUnauthorized):
		c.JSON(http.StatusUnauthorized, dto.ErrorResponse{Error: "Unauthorized"})
	default:
		logger.Error(fallback, slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: fallback})
	}
}

// bindError reports a request that failed binding or validation.
func bindError(c *gin.Context, logger *slog.Logger, what string, err error) {
	logger.Warn("Failed to bind "+what, slog.String("error", err.Error()))
	c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid request format: " + err.Error()})
}

// requireActor returns the caller resolved by AuthMiddleware or TriggerKeyAuth, answering 401 when
// there is none.
func requireActor(c *gin.Context, logger *slog.Logger) (domain.Actor, bool) {
	actor, ok := middleware.GetActorFromContext(c)
	if !ok {
		logger.Error("Actor not found in context")
		c.JSON(http.StatusUnauthorized, dto.ErrorResponse{Error: "Unauthorized"})
		return domain.Actor{}, false
	}
	return actor, true
}

func validationf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", apperrors.ErrValidation, fmt.Sprintf(format, args...))
}
