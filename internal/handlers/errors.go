package handlers

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/SscSPs/erp_ledger/internal/apperrors"
	"github.com/SscSPs/erp_ledger/internal/middleware"
	"github.com/gin-gonic/gin"
)

const dateLayout = "2006-01-02"

// errorResponse is the body of every failed request.
type errorResponse struct {
	Error     string `json:"error"`
	Retryable bool   `json:"retryable,omitempty"`
}

// respondError maps err onto its HTTP status. Server-side failures are logged
// as errors and hidden behind a generic message.
func respondError(c *gin.Context, logger *slog.Logger, err error, action string) {
	status := apperrors.HTTPStatus(err)
	body := errorResponse{Error: err.Error(), Retryable: apperrors.IsRetryable(err)}
	if status >= http.StatusInternalServerError {
		logger.Error("Failed to "+action, slog.String("error", err.Error()))
		body.Error = "Failed to " + action
	} else {
		logger.Warn("Rejected request to "+action, slog.String("error", err.Error()), slog.Int("status", status))
	}
	c.JSON(status, body)
}

// badRequest reports malformed input caught while binding.
func badRequest(c *gin.Context, logger *slog.Logger, err error) {
	logger.Warn("Failed to bind request", slog.String("error", err.Error()))
	c.JSON(http.StatusBadRequest, errorResponse{Error: "Invalid request: " + err.Error()})
}

// requireActor returns the authenticated actor or aborts with 401.
func requireActor(c *gin.Context, logger *slog.Logger) (string, bool) {
	actorID, ok := middleware.GetActorIDFromContext(c)
	if !ok {
		logger.Error("Actor ID not found in context")
		c.JSON(http.StatusUnauthorized, errorResponse{Error: "Unauthorized"})
		return "", false
	}
	return actorID, true
}

// parseAsOf reads an optional YYYY-MM-DD query value.
func parseAsOf(value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	t, err := time.ParseInLocation(dateLayout, value, time.UTC)
	if err != nil {
		return nil, fmt.Errorf("%w: asOf must be a YYYY-MM-DD date", apperrors.ErrValidation)
	}
	return &t, nil
}
