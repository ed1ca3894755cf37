// Package tenant provisions and resolves tenants: the registry behind both
// the inbound "which tenant owns this number" lookup and API-key
// authentication.
package tenant

import (
	"fmt"
	"time"

	"uk.co.dudmesh.courier/internal/model"
	"uk.co.dudmesh.courier/pkg/twilio"
)

type Database interface {
	CreateTenant(tenant *model.Tenant) error
	GetTenant(id model.TenantID) (*model.Tenant, error)
	GetTenantByAddress(address string) (*model.Tenant, error)
	GetTenantByAPIKey(key string) (*model.Tenant, error)
	ListTenants() ([]model.Tenant, error)
	UpdateTenant(tenant *model.Tenant) error
	DeleteTenant(id model.TenantID) error
}

type service struct {
	db Database
}

func New(db Database) *service {
	return &service{db: db}
}

func (s *service) Create(params *model.CreateTenantParams) (*model.Tenant, error) {
	if params.Name == "" || params.AccountSID == "" || params.AuthToken == "" || params.WhatsAppAddress == "" {
		return nil, fmt.Errorf("%w: name, account_sid, auth_token and whatsapp_address are required", model.ErrorInvalidInput)
	}

	tenant := &model.Tenant{
		ID:              model.TenantID(model.CreateID()),
		CreatedAt:       time.Now().UTC(),
		Name:            params.Name,
		AccountSID:      params.AccountSID,
		AuthToken:       params.AuthToken,
		WhatsAppAddress: twilio.BareAddress(params.WhatsAppAddress),
		APIKey:          model.CreateAPIKey(),
	}

	if err := s.db.CreateTenant(tenant); err != nil {
		return nil, fmt.Errorf("creating tenant: %w", err)
	}
	return tenant, nil
}

func (s *service) Fetch(id model.TenantID) (*model.Tenant, error) {
	tenant, err := s.db.GetTenant(id)
	if err != nil {
		return nil, fmt.Errorf("fetching tenant: %w", err)
	}
	return tenant, nil
}

// ResolveByAddress maps a provider "to" address onto the owning tenant.
// Channel prefixes are stripped so webhook addresses and stored addresses
// compare equal.
func (s *service) ResolveByAddress(address string) (*model.Tenant, error) {
	tenant, err := s.db.GetTenantByAddress(twilio.BareAddress(address))
	if err != nil {
		return nil, fmt.Errorf("resolving tenant by address: %w", err)
	}
	return tenant, nil
}

func (s *service) ResolveByAPIKey(key string) (*model.Tenant, error) {
	if key == "" {
		return nil, model.ErrorUnauthorized
	}
	tenant, err := s.db.GetTenantByAPIKey(key)
	if err != nil {
		return nil, fmt.Errorf("resolving tenant by api key: %w", err)
	}
	return tenant, nil
}

func (s *service) List() ([]model.Tenant, error) {
	return s.db.ListTenants()
}

// Update applies a partial change set. The API key is immutable: its
// presence in the request is rejected outright rather than silently ignored.
func (s *service) Update(id model.TenantID, params *model.UpdateTenantParams) (*model.Tenant, error) {
	if params.APIKey != nil {
		return nil, fmt.Errorf("%w: api_key", model.ErrorImmutableField)
	}
	if params.Name == nil && params.AccountSID == nil && params.AuthToken == nil && params.WhatsAppAddress == nil {
		return nil, fmt.Errorf("%w: at least one field must be provided", model.ErrorInvalidInput)
	}

	tenant, err := s.db.GetTenant(id)
	if err != nil {
		return nil, fmt.Errorf("fetching tenant: %w", err)
	}

	if params.Name != nil {
		tenant.Name = *params.Name
	}
	if params.AccountSID != nil {
		tenant.AccountSID = *params.AccountSID
	}
	if params.AuthToken != nil {
		tenant.AuthToken = *params.AuthToken
	}
	if params.WhatsAppAddress != nil {
		tenant.WhatsAppAddress = twilio.BareAddress(*params.WhatsAppAddress)
	}
	now := time.Now().UTC()
	tenant.UpdatedAt = &now

	if err := s.db.UpdateTenant(tenant); err != nil {
		return nil, fmt.Errorf("updating tenant: %w", err)
	}
	return tenant, nil
}

func (s *service) Delete(id model.TenantID) error {
	if err := s.db.DeleteTenant(id); err != nil {
		return fmt.Errorf("deleting tenant: %w", err)
	}
	return nil
}
