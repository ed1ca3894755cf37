package handlers

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"uk.co.dudmesh.courier/internal/model"
	"uk.co.dudmesh.courier/internal/service/dispatch"
)

type sendRequest struct {
	To       string `json:"to"`
	Body     string `json:"body"`
	MediaURL string `json:"media_url"`
}

func SendMessage(dispatcher Dispatcher) echo.HandlerFunc {
	return func(c echo.Context) error {
		tenant, err := tenantFromContext(c)
		if err != nil {
			return httpError(c, err)
		}

		params := &sendRequest{}
		if err := c.Bind(params); err != nil {
			return httpError(c, model.ErrorInvalidInput)
		}

		result, err := dispatcher.Send(c.Request().Context(), tenant, dispatch.SendParams{
			To:       params.To,
			Body:     params.Body,
			MediaURL: params.MediaURL,
		})
		if err != nil {
			return httpError(c, err)
		}
		return c.JSON(http.StatusOK, map[string]string{
			"message_sid":     result.Message.ProviderSID,
			"conversation_id": string(result.Conversation.ID),
		})
	}
}

func ListConversations(reader MessageReader) echo.HandlerFunc {
	return func(c echo.Context) error {
		tenant, err := tenantFromContext(c)
		if err != nil {
			return httpError(c, err)
		}
		limit, offset := pagination(c)
		conversations, err := reader.ListConversations(tenant.ID, limit, offset)
		if err != nil {
			return httpError(c, err)
		}
		return c.JSON(http.StatusOK, conversations)
	}
}

// ListConversationMessages returns a conversation's history oldest-first.
// A conversation owned by another tenant is an authorization failure, not a
// lookup miss.
func ListConversationMessages(reader MessageReader) echo.HandlerFunc {
	return func(c echo.Context) error {
		tenant, err := tenantFromContext(c)
		if err != nil {
			return httpError(c, err)
		}

		conversation, err := reader.GetConversation(model.ConversationID(c.Param("id")))
		if err != nil {
			return httpError(c, err)
		}
		if conversation.TenantID != tenant.ID {
			return httpError(c, model.ErrorForbidden)
		}

		limit, offset := pagination(c)
		messages, err := reader.ListMessagesByConversation(conversation.ID, model.OrderAscending, limit, offset)
		if err != nil {
			return httpError(c, err)
		}
		return c.JSON(http.StatusOK, messages)
	}
}

func ListMessages(reader MessageReader) echo.HandlerFunc {
	return func(c echo.Context) error {
		tenant, err := tenantFromContext(c)
		if err != nil {
			return httpError(c, err)
		}
		limit, offset := pagination(c)
		messages, err := reader.ListMessagesByTenant(tenant.ID, model.OrderDescending, limit, offset)
		if err != nil {
			return httpError(c, err)
		}
		return c.JSON(http.StatusOK, messages)
	}
}

func pagination(c echo.Context) (int, int) {
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	offset, _ := strconv.Atoi(c.QueryParam("offset"))
	return limit, offset
}
