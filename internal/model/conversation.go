package model

import "time"

type ConversationID string

type ConversationStatus string

const (
	ConversationStatusOpen   ConversationStatus = "open"
	ConversationStatusActive ConversationStatus = "active"
	ConversationStatusClosed ConversationStatus = "closed"
)

type Conversation struct {
	ID             ConversationID     `db:"id" json:"id"`
	CreatedAt      time.Time          `db:"created_at" json:"created_at"`
	TenantID       TenantID           `db:"tenant_id" json:"tenant_id"`
	ExternalUserID string             `db:"external_user_id" json:"external_user_id"`
	Status         ConversationStatus `db:"status" json:"status"`
	LastMessageAt  time.Time          `db:"last_message_at" json:"last_message_at"`
}

// ConversationSummary is the list-view shape: a conversation plus a snippet
// of its most recent message body.
type ConversationSummary struct {
	Conversation
	LastMessageBody *string `db:"last_message_body" json:"last_message_body"`
}
