package store

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"uk.co.dudmesh.courier/internal/model"
)

type testConfig struct {
	path string
}

func (c testConfig) DatabasePath() string {
	return c.path
}

func newTestStore(t *testing.T) *store {
	t.Helper()
	s, err := Open(testConfig{filepath.Join(t.TempDir(), "courier.db")})
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func newTestTenant(t *testing.T, s *store, address string) *model.Tenant {
	t.Helper()
	tenant := &model.Tenant{
		ID:              model.TenantID(model.CreateID()),
		CreatedAt:       time.Now().UTC(),
		Name:            "Acme",
		AccountSID:      "AC0123456789",
		AuthToken:       "secret",
		WhatsAppAddress: address,
		APIKey:          model.CreateAPIKey(),
	}
	require.NoError(t, s.CreateTenant(tenant))
	return tenant
}

func newTestMessage(tenant *model.Tenant, conversation *model.Conversation, sid string, direction model.Direction, at time.Time) *model.Message {
	return &model.Message{
		ID:             model.MessageID(model.CreateID()),
		CreatedAt:      at,
		ConversationID: conversation.ID,
		TenantID:       tenant.ID,
		ProviderSID:    sid,
		Direction:      direction,
		Body:           "hello",
		Status:         model.StatusQueued,
		Timestamp:      at,
	}
}
