package store

import (
	"database/sql"
	"errors"
	"fmt"

	"uk.co.dudmesh.courier/internal/model"
)

func (s *store) CreateTenant(tenant *model.Tenant) error {
	res, err := s.db.NamedExec(`insert into tenants
		(id, created_at, name, account_sid, auth_token, whatsapp_address, api_key)
		values(:id, :created_at, :name, :account_sid, :auth_token, :whatsapp_address, :api_key)`, tenant)

	if err != nil {
		if isUniqueViolation(err) {
			return model.ErrorConflict
		}
		return fmt.Errorf("inserting tenant: %w", err)
	}
	if rows, err := res.RowsAffected(); rows != 1 {
		return fmt.Errorf("expected 1 row to be affected, got %d", rows)
	} else if err != nil {
		return fmt.Errorf("getting rows affected: %w", err)
	}

	return nil
}

func (s *store) GetTenant(id model.TenantID) (*model.Tenant, error) {
	tenant := &model.Tenant{}
	err := s.db.Get(tenant, `select * from tenants where id = ?`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrorTenantNotFound
		}
		return nil, fmt.Errorf("fetching tenant: %w", err)
	}
	return tenant, nil
}

func (s *store) GetTenantByAddress(address string) (*model.Tenant, error) {
	tenant := &model.Tenant{}
	err := s.db.Get(tenant, `select * from tenants where whatsapp_address = ?`, address)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrorTenantNotFound
		}
		return nil, fmt.Errorf("fetching tenant by address: %w", err)
	}
	return tenant, nil
}

func (s *store) GetTenantByAPIKey(key string) (*model.Tenant, error) {
	tenant := &model.Tenant{}
	err := s.db.Get(tenant, `select * from tenants where api_key = ?`, key)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrorUnauthorized
		}
		return nil, fmt.Errorf("fetching tenant by api key: %w", err)
	}
	return tenant, nil
}

func (s *store) ListTenants() ([]model.Tenant, error) {
	tenants := []model.Tenant{}
	err := s.db.Select(&tenants, `select * from tenants order by created_at desc`)
	if err != nil {
		return nil, fmt.Errorf("listing tenants: %w", err)
	}
	return tenants, nil
}

// UpdateTenant rewrites every mutable column. The api_key column is left
// untouched regardless of the value on the passed record.
func (s *store) UpdateTenant(tenant *model.Tenant) error {
	res, err := s.db.NamedExec(`update tenants
		set name = :name,
		    account_sid = :account_sid,
		    auth_token = :auth_token,
		    whatsapp_address = :whatsapp_address,
		    updated_at = :updated_at
		where id = :id`, tenant)
	if err != nil {
		if isUniqueViolation(err) {
			return model.ErrorConflict
		}
		return fmt.Errorf("updating tenant: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("getting rows affected: %w", err)
	}
	if rows == 0 {
		return model.ErrorTenantNotFound
	}
	return nil
}

func (s *store) DeleteTenant(id model.TenantID) error {
	res, err := s.db.Exec(`delete from tenants where id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting tenant: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("getting rows affected: %w", err)
	}
	if rows == 0 {
		return model.ErrorTenantNotFound
	}
	return nil
}
