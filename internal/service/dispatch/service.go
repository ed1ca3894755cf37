// Package dispatch sends outbound messages through the provider with the
// owning tenant's credentials and records every attempt, failures included,
// in the message ledger.
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/labstack/gommon/log"
	"github.com/nrednav/cuid2"

	"uk.co.dudmesh.courier/internal/model"
	"uk.co.dudmesh.courier/pkg/twilio"
)

type Config interface {
	ProviderTimeout() time.Duration
}

type Database interface {
	FindOrCreateConversation(tenantID model.TenantID, externalUserID string, status model.ConversationStatus, now time.Time) (*model.Conversation, error)
	AppendMessage(message *model.Message) (*model.Message, bool, error)
}

type ProviderClient interface {
	Send(ctx context.Context, creds twilio.Credentials, params twilio.SendParams) (*twilio.SendResult, error)
}

type SendParams struct {
	To       string
	Body     string
	MediaURL string
}

type Result struct {
	Message      *model.Message
	Conversation *model.Conversation
}

var e164 = regexp.MustCompile(`^\+?[1-9]\d{1,14}$`)

type service struct {
	config   Config
	db       Database
	provider ProviderClient
}

func New(config Config, db Database, provider ProviderClient) *service {
	return &service{config: config, db: db, provider: provider}
}

// Send delivers one message for a tenant. The provider call is bounded by the
// configured timeout and runs outside any database transaction; the ledger
// write happens after the call returns, whatever the outcome, so failed
// attempts stay auditable. Retry policy belongs to the caller: a duplicate
// retry is deduplicated by the provider SID on append.
func (s *service) Send(ctx context.Context, tenant *model.Tenant, params SendParams) (*Result, error) {
	if params.To == "" || params.Body == "" {
		return nil, fmt.Errorf("%w: to and body are required", model.ErrorInvalidInput)
	}
	to := twilio.BareAddress(params.To)
	if !e164.MatchString(to) {
		return nil, fmt.Errorf("%w: destination must be in E.164 format", model.ErrorInvalidInput)
	}

	now := time.Now().UTC()
	conversation, err := s.db.FindOrCreateConversation(tenant.ID, to, model.ConversationStatusActive, now)
	if err != nil {
		return nil, fmt.Errorf("resolving conversation: %w", err)
	}

	sendCtx, cancel := context.WithTimeout(ctx, s.config.ProviderTimeout())
	defer cancel()

	sent, sendErr := s.provider.Send(sendCtx, twilio.Credentials{
		AccountSID: tenant.AccountSID,
		AuthToken:  tenant.AuthToken,
	}, twilio.SendParams{
		From:     tenant.WhatsAppAddress,
		To:       to,
		Body:     params.Body,
		MediaURL: params.MediaURL,
	})

	message := &model.Message{
		ID:             model.MessageID(model.CreateID()),
		CreatedAt:      now,
		ConversationID: conversation.ID,
		TenantID:       tenant.ID,
		Direction:      model.DirectionOutbound,
		Body:           params.Body,
		Timestamp:      time.Now().UTC(),
	}
	if params.MediaURL != "" {
		mediaURL := params.MediaURL
		message.MediaURL = &mediaURL
	}

	if sendErr != nil {
		// the provider never assigned a SID; tag the failure with a local one
		// so it still lands in the ledger
		message.ProviderSID = "local-" + cuid2.Generate()
		message.Status = model.StatusFailed
	} else {
		message.ProviderSID = sent.SID
		if status, ok := model.ParseDeliveryStatus(sent.Status); ok {
			message.Status = status
		} else {
			message.Status = model.StatusQueued
		}
	}

	recorded, _, persistErr := s.db.AppendMessage(message)

	if sendErr != nil {
		if persistErr != nil {
			log.Errorf("recording failed dispatch %s: %+v", message.ProviderSID, persistErr)
		}
		return nil, fmt.Errorf("dispatching message: %w", sendErr)
	}
	if persistErr != nil {
		// the provider accepted the message; the external side effect stands,
		// so the caller still gets a success
		log.Errorf("recording dispatch %s: %+v", message.ProviderSID, persistErr)
		return &Result{Message: message, Conversation: conversation}, nil
	}

	return &Result{Message: recorded, Conversation: conversation}, nil
}

// Retryable reports whether a dispatch error is worth retrying.
func Retryable(err error) bool {
	var providerErr *twilio.Error
	if errors.As(err, &providerErr) {
		return providerErr.Retryable()
	}
	return false
}
