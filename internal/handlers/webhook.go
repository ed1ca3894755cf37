package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/labstack/gommon/log"

	"uk.co.dudmesh.courier/internal/service/inbound"
)

// InboundWebhook receives provider-pushed inbound messages. It acknowledges
// every delivery with an empty 200 — even malformed payloads and internal
// failures — because anything else triggers a provider retry storm that no
// amount of redelivery can fix.
func InboundWebhook(processor InboundProcessor) echo.HandlerFunc {
	return func(c echo.Context) error {
		event := &inbound.Event{
			ProviderSID: c.FormValue("MessageSid"),
			From:        c.FormValue("From"),
			To:          c.FormValue("To"),
			Body:        c.FormValue("Body"),
		}
		numMedia, _ := strconv.Atoi(c.FormValue("NumMedia"))
		for i := 0; i < numMedia; i++ {
			if url := c.FormValue(fmt.Sprintf("MediaUrl%d", i)); url != "" {
				event.MediaURLs = append(event.MediaURLs, url)
			}
		}

		if err := processor.Process(c.Request().Context(), event); err != nil {
			log.Errorf("processing inbound webhook %s: %+v", event.ProviderSID, err)
		}
		return c.NoContent(http.StatusOK)
	}
}

// StatusCallback receives asynchronous delivery-status updates. Same
// always-acknowledge contract as the inbound webhook.
func StatusCallback(processor InboundProcessor) echo.HandlerFunc {
	return func(c echo.Context) error {
		sid := c.FormValue("MessageSid")
		status := c.FormValue("MessageStatus")

		if err := processor.ApplyStatus(sid, status); err != nil {
			log.Errorf("applying status callback %s=%s: %+v", sid, status, err)
		}
		return c.NoContent(http.StatusOK)
	}
}
