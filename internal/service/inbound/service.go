// Package inbound turns provider webhook events into ledger entries and
// reconciles delivery-status callbacks. Both paths are tolerant by design:
// the provider redelivers anything we fail to acknowledge, so internal
// problems are logged rather than surfaced.
package inbound

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/labstack/gommon/log"

	"uk.co.dudmesh.courier/internal/model"
	"uk.co.dudmesh.courier/internal/service/dispatch"
	"uk.co.dudmesh.courier/pkg/reply"
	"uk.co.dudmesh.courier/pkg/twilio"
)

type Database interface {
	GetTenantByAddress(address string) (*model.Tenant, error)
	FindOrCreateConversation(tenantID model.TenantID, externalUserID string, status model.ConversationStatus, now time.Time) (*model.Conversation, error)
	AppendMessage(message *model.Message) (*model.Message, bool, error)
	ApplyStatus(providerSID string, next model.DeliveryStatus) (bool, error)
}

type Dispatcher interface {
	Send(ctx context.Context, tenant *model.Tenant, params dispatch.SendParams) (*dispatch.Result, error)
}

// Event is one parsed inbound webhook delivery.
type Event struct {
	ProviderSID string
	From        string
	To          string
	Body        string
	MediaURLs   []string
}

type service struct {
	db          Database
	dispatcher  Dispatcher
	replyPolicy reply.Policy
}

func New(db Database, dispatcher Dispatcher, replyPolicy reply.Policy) *service {
	if replyPolicy == nil {
		replyPolicy = reply.None
	}
	return &service{db: db, dispatcher: dispatcher, replyPolicy: replyPolicy}
}

// Process runs the per-event pipeline: resolve tenant, resolve conversation,
// append the message, maybe reply. The returned error is diagnostic only —
// the webhook handler acknowledges receipt no matter what, because provider
// retries cannot fix an unknown address or a down store.
func (s *service) Process(ctx context.Context, event *Event) error {
	if event.ProviderSID == "" || event.From == "" || event.To == "" {
		return fmt.Errorf("%w: webhook payload missing MessageSid, From or To", model.ErrorInvalidInput)
	}

	tenant, err := s.db.GetTenantByAddress(twilio.BareAddress(event.To))
	if err != nil {
		if errors.Is(err, model.ErrorTenantNotFound) {
			return fmt.Errorf("no tenant provisioned for address %s: %w", event.To, err)
		}
		return fmt.Errorf("resolving tenant: %w", err)
	}

	now := time.Now().UTC()
	from := twilio.BareAddress(event.From)
	conversation, err := s.db.FindOrCreateConversation(tenant.ID, from, model.ConversationStatusOpen, now)
	if err != nil {
		return fmt.Errorf("resolving conversation: %w", err)
	}

	message := &model.Message{
		ID:             model.MessageID(model.CreateID()),
		CreatedAt:      now,
		ConversationID: conversation.ID,
		TenantID:       tenant.ID,
		ProviderSID:    event.ProviderSID,
		Direction:      model.DirectionInbound,
		Body:           event.Body,
		Status:         model.StatusDelivered,
		Timestamp:      now,
	}
	if len(event.MediaURLs) > 0 {
		mediaURL := event.MediaURLs[0]
		message.MediaURL = &mediaURL
	}

	_, created, err := s.db.AppendMessage(message)
	if err != nil {
		return fmt.Errorf("recording inbound message: %w", err)
	}
	if !created {
		// redelivered webhook; the first delivery already replied
		return nil
	}

	replyBody := s.replyPolicy(event.Body, tenant.Name)
	if replyBody == "" {
		return nil
	}

	// best effort: the inbound message is durable regardless of whether the
	// automated reply makes it out
	if _, err := s.dispatcher.Send(ctx, tenant, dispatch.SendParams{To: from, Body: replyBody}); err != nil {
		log.Warnf("automated reply to %s failed: %+v", from, err)
	}
	return nil
}

// ApplyStatus reconciles one delivery-status callback. Unknown statuses and
// unknown SIDs are logged and dropped: callbacks arrive at least once and can
// race ahead of the local send record.
func (s *service) ApplyStatus(providerSID string, rawStatus string) error {
	if providerSID == "" {
		return fmt.Errorf("%w: status callback missing MessageSid", model.ErrorInvalidInput)
	}
	status, ok := model.ParseDeliveryStatus(rawStatus)
	if !ok {
		log.Warnf("ignoring unknown delivery status %q for %s", rawStatus, providerSID)
		return nil
	}

	applied, err := s.db.ApplyStatus(providerSID, status)
	if err != nil {
		if errors.Is(err, model.ErrorMessageNotFound) {
			log.Infof("status callback for unknown message %s, ignoring", providerSID)
			return nil
		}
		return fmt.Errorf("applying status: %w", err)
	}
	if !applied {
		log.Debugf("stale status %s for %s, no-op", status, providerSID)
	}
	return nil
}
