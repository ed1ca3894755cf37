package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"uk.co.dudmesh.courier/internal/model"
	"uk.co.dudmesh.courier/pkg/twilio"
)

// httpError maps domain errors onto HTTP responses. Provider errors keep
// their detail so API callers see what the provider said.
func httpError(c echo.Context, err error) error {
	var providerErr *twilio.Error
	if errors.As(err, &providerErr) {
		status := http.StatusBadGateway
		if !providerErr.Retryable() {
			status = http.StatusUnprocessableEntity
		}
		return c.JSON(status, map[string]interface{}{
			"error": providerErr.Detail,
			"code":  providerErr.Code,
		})
	}

	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, model.ErrorInvalidInput), errors.Is(err, model.ErrorImmutableField):
		status = http.StatusBadRequest
	case errors.Is(err, model.ErrorTenantNotFound),
		errors.Is(err, model.ErrorConversationNotFound),
		errors.Is(err, model.ErrorMessageNotFound):
		status = http.StatusNotFound
	case errors.Is(err, model.ErrorConflict):
		status = http.StatusConflict
	case errors.Is(err, model.ErrorUnauthorized), errors.Is(err, model.ErrorInvalidUsernameOrPassword):
		status = http.StatusUnauthorized
	case errors.Is(err, model.ErrorForbidden):
		status = http.StatusForbidden
	}
	return c.JSON(status, map[string]string{"error": err.Error()})
}
