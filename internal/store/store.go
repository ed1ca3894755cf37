package store

import (
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/mattn/go-sqlite3"
)

type Config interface {
	DatabasePath() string
}

type store struct {
	db *sqlx.DB
}

// Open connects to the courier database, creating the schema on first use.
// Foreign keys are switched on so that deleting a tenant cascades to its
// conversations and messages.
func Open(config Config) (*store, error) {
	dsn := fmt.Sprintf("file:%s?_fk=1&_busy_timeout=5000&_journal_mode=WAL&_txlock=immediate", config.DatabasePath())
	db, err := sqlx.Connect("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	datastore := &store{db}
	if err := datastore.createTables(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating tables: %w", err)
	}

	return datastore, nil
}

func (s *store) Close() error {
	return s.db.Close()
}

func (s *store) createTables() error {
	_, err := s.db.Exec(`create table if not exists tenants(
		id               text not null primary key,
		created_at       datetime not null,
		updated_at       datetime null,
		name             text not null,
		account_sid      text not null,
		auth_token       text not null,
		whatsapp_address text not null unique,
		api_key          text not null unique
	)`)
	if err != nil {
		return fmt.Errorf("creating tenants table: %w", err)
	}

	_, err = s.db.Exec(`create table if not exists conversations(
		id               text not null primary key,
		created_at       datetime not null,
		tenant_id        text not null references tenants(id) on delete cascade,
		external_user_id text not null,
		status           text not null default 'open',
		last_message_at  datetime not null,
		unique(tenant_id, external_user_id)
	)`)
	if err != nil {
		return fmt.Errorf("creating conversations table: %w", err)
	}

	_, err = s.db.Exec(`create table if not exists messages(
		id              text not null primary key,
		created_at      datetime not null,
		conversation_id text not null references conversations(id) on delete cascade,
		tenant_id       text not null references tenants(id) on delete cascade,
		provider_sid    text not null unique,
		direction       text not null,
		body            text not null,
		media_url       text null,
		status          text not null default 'queued',
		timestamp       datetime not null
	)`)
	if err != nil {
		return fmt.Errorf("creating messages table: %w", err)
	}

	_, err = s.db.Exec(`create index if not exists idx_messages_conversation on messages(conversation_id, timestamp)`)
	if err != nil {
		return fmt.Errorf("creating message index: %w", err)
	}
	_, err = s.db.Exec(`create index if not exists idx_messages_tenant on messages(tenant_id, timestamp)`)
	if err != nil {
		return fmt.Errorf("creating tenant message index: %w", err)
	}

	return nil
}

func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
			sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}
	return false
}
