package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	apperrors "github.com/aurevo/aurevo-server/internal/pkg/errors"
	"github.com/aurevo/aurevo-server/internal/requestdata"
	"github.com/aurevo/aurevo-server/internal/store"
)

type APIError struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

func RespondError(c *gin.Context, status int, code string, err error) {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	c.JSON(status, ErrorEnvelope{
		Error: APIError{
			Message: msg,
			Code:    code,
		},
	})
}

func RespondOK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}

// RespondStoreError maps store/service errors onto HTTP statuses. A
// cooldown rejection carries the remaining wait in whole minutes.
func RespondStoreError(c *gin.Context, err error) {
	var cooldown *store.CooldownError
	switch {
	case errors.As(err, &cooldown):
		c.JSON(http.StatusTooManyRequests, gin.H{
			"error":           cooldown.Error(),
			"retry_after_min": cooldown.RemainingMinutes(),
		})
	case errors.Is(err, apperrors.ErrCooldown):
		RespondError(c, http.StatusTooManyRequests, "cooldown", err)
	case errors.Is(err, apperrors.ErrInvalidArgument):
		RespondError(c, http.StatusBadRequest, "invalid_argument", err)
	case errors.Is(err, apperrors.ErrNotFound):
		RespondError(c, http.StatusNotFound, "not_found", err)
	case errors.Is(err, apperrors.ErrUnauthorized):
		RespondError(c, http.StatusForbidden, "unauthorized", err)
	default:
		RespondError(c, http.StatusInternalServerError, "internal", err)
	}
}

// userStores resolves the caller's store set from the request context;
// aborts with 403 when the auth middleware did not run.
func userStores(c *gin.Context, registry *store.Registry) (*store.Set, bool) {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil || rd.UserID == uuid.Nil {
		RespondError(c, http.StatusForbidden, "unauthorized", errors.New("no authenticated user in context"))
		return nil, false
	}
	return registry.ForUser(c.Request.Context(), rd.UserID), true
}
