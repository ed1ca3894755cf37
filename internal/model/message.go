package model

import "time"

type MessageID string

type Direction string

const (
	DirectionInbound  Direction = "inbound"
	DirectionOutbound Direction = "outbound"
)

// DeliveryStatus follows the provider's message lifecycle. The happy path is
// queued -> sent -> delivered -> read; failed is terminal and incomparable
// with the rest once set.
type DeliveryStatus string

const (
	StatusQueued    DeliveryStatus = "queued"
	StatusSent      DeliveryStatus = "sent"
	StatusDelivered DeliveryStatus = "delivered"
	StatusRead      DeliveryStatus = "read"
	StatusFailed    DeliveryStatus = "failed"
)

// ParseDeliveryStatus maps a provider callback status string onto the local
// lifecycle. Provider-specific aliases collapse onto the canonical statuses.
func ParseDeliveryStatus(raw string) (DeliveryStatus, bool) {
	switch raw {
	case "queued", "accepted", "sending":
		return StatusQueued, true
	case "sent":
		return StatusSent, true
	case "delivered":
		return StatusDelivered, true
	case "read":
		return StatusRead, true
	case "failed", "undelivered":
		return StatusFailed, true
	}
	return "", false
}

type Message struct {
	ID             MessageID      `db:"id" json:"id"`
	CreatedAt      time.Time      `db:"created_at" json:"created_at"`
	ConversationID ConversationID `db:"conversation_id" json:"conversation_id"`
	TenantID       TenantID       `db:"tenant_id" json:"tenant_id"` // denormalised for tenant-wide queries
	ProviderSID    string         `db:"provider_sid" json:"provider_sid"`
	Direction      Direction      `db:"direction" json:"direction"`
	Body           string         `db:"body" json:"body"`
	MediaURL       *string        `db:"media_url" json:"media_url,omitempty"`
	Status         DeliveryStatus `db:"status" json:"status"`
	Timestamp      time.Time      `db:"timestamp" json:"timestamp"`
}

type ListOrder string

const (
	OrderAscending  ListOrder = "asc"
	OrderDescending ListOrder = "desc"
)
