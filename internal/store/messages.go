package store

import (
	"database/sql"
	"errors"
	"fmt"

	"uk.co.dudmesh.courier/internal/model"
)

// AppendMessage records a message exactly once, keyed on the provider SID.
// A replayed webhook or a retried send returns the already-stored record
// unchanged. The insert and the conversation touch commit as one transaction
// so a timestamp bump is never visible without its message. Returns whether a
// new row was written.
func (s *store) AppendMessage(message *model.Message) (*model.Message, bool, error) {
	tx, err := s.db.Beginx()
	if err != nil {
		return nil, false, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	existing := &model.Message{}
	err = tx.Get(existing, `select * from messages where provider_sid = ?`, message.ProviderSID)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, false, fmt.Errorf("checking for existing message: %w", err)
	}

	_, err = tx.NamedExec(`insert into messages
		(id, created_at, conversation_id, tenant_id, provider_sid, direction, body, media_url, status, timestamp)
		values(:id, :created_at, :conversation_id, :tenant_id, :provider_sid, :direction, :body, :media_url, :status, :timestamp)`,
		message)
	if err != nil {
		if isUniqueViolation(err) {
			// lost the race to another writer with the same SID
			tx.Rollback()
			other := &model.Message{}
			if getErr := s.db.Get(other, `select * from messages where provider_sid = ?`, message.ProviderSID); getErr == nil {
				return other, false, nil
			}
		}
		return nil, false, fmt.Errorf("inserting message: %w", err)
	}

	_, err = tx.Exec(`update conversations set last_message_at = ?
		where id = ? and last_message_at < ?`, message.Timestamp, message.ConversationID, message.Timestamp)
	if err != nil {
		return nil, false, fmt.Errorf("touching conversation: %w", err)
	}

	if message.Direction == model.DirectionOutbound {
		_, err = tx.Exec(`update conversations set status = ?
			where id = ? and status = ?`, model.ConversationStatusActive, message.ConversationID, model.ConversationStatusOpen)
		if err != nil {
			return nil, false, fmt.Errorf("activating conversation: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, false, fmt.Errorf("committing message: %w", err)
	}
	return message, true, nil
}

// ApplyStatus moves a message's delivery status forward. Stale or out-of-order
// callbacks (a "sent" arriving after "delivered") leave the row untouched.
// Failed is terminal: it beats anything and nothing beats it. Returns whether
// the row changed; unknown SIDs yield ErrorMessageNotFound so the caller can
// decide to log rather than fail.
func (s *store) ApplyStatus(providerSID string, next model.DeliveryStatus) (bool, error) {
	res, err := s.db.Exec(`update messages set status = ?
		where provider_sid = ?
		and status != 'failed'
		and (? = 'failed' or
			case status when 'queued' then 0 when 'sent' then 1 when 'delivered' then 2 when 'read' then 3 end <
			case ? when 'queued' then 0 when 'sent' then 1 when 'delivered' then 2 when 'read' then 3 end)`,
		next, providerSID, next, next)
	if err != nil {
		return false, fmt.Errorf("applying status: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("getting rows affected: %w", err)
	}
	if rows > 0 {
		return true, nil
	}

	var exists int
	err = s.db.Get(&exists, `select count(1) from messages where provider_sid = ?`, providerSID)
	if err != nil {
		return false, fmt.Errorf("checking message existence: %w", err)
	}
	if exists == 0 {
		return false, model.ErrorMessageNotFound
	}
	return false, nil
}

func (s *store) GetMessageBySID(providerSID string) (*model.Message, error) {
	message := &model.Message{}
	err := s.db.Get(message, `select * from messages where provider_sid = ?`, providerSID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrorMessageNotFound
		}
		return nil, fmt.Errorf("fetching message: %w", err)
	}
	return message, nil
}

func (s *store) ListMessagesByConversation(conversationID model.ConversationID, order model.ListOrder, limit int, offset int) ([]model.Message, error) {
	return s.listMessages(`conversation_id`, string(conversationID), order, limit, offset)
}

func (s *store) ListMessagesByTenant(tenantID model.TenantID, order model.ListOrder, limit int, offset int) ([]model.Message, error) {
	return s.listMessages(`tenant_id`, string(tenantID), order, limit, offset)
}

func (s *store) listMessages(column string, value string, order model.ListOrder, limit int, offset int) ([]model.Message, error) {
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	direction := "asc"
	if order == model.OrderDescending {
		direction = "desc"
	}
	messages := []model.Message{}
	query := fmt.Sprintf(`select * from messages where %s = ? order by timestamp %s limit ? offset ?`, column, direction)
	err := s.db.Select(&messages, query, value, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("listing messages: %w", err)
	}
	return messages, nil
}
