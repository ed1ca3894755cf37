package model

import (
	"crypto/rand"
	"time"

	"github.com/btcsuite/btcutil/base58"
	"github.com/google/uuid"
)

type TenantID string

type Tenant struct {
	ID              TenantID   `db:"id" json:"id"`
	CreatedAt       time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt       *time.Time `db:"updated_at" json:"updated_at,omitempty"`
	Name            string     `db:"name" json:"name"`
	AccountSID      string     `db:"account_sid" json:"account_sid"`
	AuthToken       string     `db:"auth_token" json:"auth_token"`
	WhatsAppAddress string     `db:"whatsapp_address" json:"whatsapp_address"`
	APIKey          string     `db:"api_key" json:"api_key"`
}

type CreateTenantParams struct {
	Name            string `json:"name"`
	AccountSID      string `json:"account_sid"`
	AuthToken       string `json:"auth_token"`
	WhatsAppAddress string `json:"whatsapp_address"`
}

// UpdateTenantParams carries a partial update. Nil means "leave unchanged".
// APIKey is present only so its inclusion can be rejected: the key is
// immutable after provisioning.
type UpdateTenantParams struct {
	Name            *string `json:"name"`
	AccountSID      *string `json:"account_sid"`
	AuthToken       *string `json:"auth_token"`
	WhatsAppAddress *string `json:"whatsapp_address"`
	APIKey          *string `json:"api_key"`
}

func CreateID() string {
	return uuid.NewString()
}

func CreateAPIKey() string {
	buf := make([]byte, 24)
	rand.Read(buf)
	return base58.Encode(buf)
}
