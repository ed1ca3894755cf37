package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"uk.co.dudmesh.courier/internal/model"
)

// FindOrCreateConversation returns the single conversation between a tenant
// and an external user, creating it on first contact. The insert is guarded
// by the (tenant_id, external_user_id) unique constraint so concurrent first
// contacts race safely: exactly one row is created and every caller reads the
// same one back.
func (s *store) FindOrCreateConversation(tenantID model.TenantID, externalUserID string, status model.ConversationStatus, now time.Time) (*model.Conversation, error) {
	_, err := s.db.Exec(`insert into conversations
		(id, created_at, tenant_id, external_user_id, status, last_message_at)
		values(?, ?, ?, ?, ?, ?)
		on conflict(tenant_id, external_user_id) do nothing`,
		model.CreateID(), now, tenantID, externalUserID, status, now)
	if err != nil {
		return nil, fmt.Errorf("upserting conversation: %w", err)
	}

	conversation := &model.Conversation{}
	err = s.db.Get(conversation, `select * from conversations
		where tenant_id = ? and external_user_id = ?`, tenantID, externalUserID)
	if err != nil {
		return nil, fmt.Errorf("fetching conversation: %w", err)
	}
	return conversation, nil
}

func (s *store) GetConversation(id model.ConversationID) (*model.Conversation, error) {
	conversation := &model.Conversation{}
	err := s.db.Get(conversation, `select * from conversations where id = ?`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrorConversationNotFound
		}
		return nil, fmt.Errorf("fetching conversation: %w", err)
	}
	return conversation, nil
}

// TouchConversation advances last_message_at. Stale timestamps are a no-op so
// out-of-order writers never move a conversation backwards.
func (s *store) TouchConversation(id model.ConversationID, timestamp time.Time) error {
	_, err := s.db.Exec(`update conversations set last_message_at = ?
		where id = ? and last_message_at < ?`, timestamp, id, timestamp)
	if err != nil {
		return fmt.Errorf("touching conversation: %w", err)
	}
	return nil
}

func (s *store) ListConversations(tenantID model.TenantID, limit int, offset int) ([]model.ConversationSummary, error) {
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	conversations := []model.ConversationSummary{}
	err := s.db.Select(&conversations, `select c.*,
		(select body from messages m where m.conversation_id = c.id order by m.timestamp desc limit 1) as last_message_body
		from conversations c
		where c.tenant_id = ?
		order by c.last_message_at desc
		limit ? offset ?`, tenantID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("listing conversations: %w", err)
	}
	return conversations, nil
}
