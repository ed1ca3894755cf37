package store

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"uk.co.dudmesh.courier/internal/model"
)

func TestFindOrCreateConversation(t *testing.T) {
	assert := assert.New(t)
	s := newTestStore(t)

	tenant := newTestTenant(t, s, "+1000")
	now := time.Now().UTC()

	first, err := s.FindOrCreateConversation(tenant.ID, "+2000", model.ConversationStatusOpen, now)
	assert.Nil(err)
	assert.NotEmpty(first.ID)
	assert.Equal(model.ConversationStatusOpen, first.Status)

	second, err := s.FindOrCreateConversation(tenant.ID, "+2000", model.ConversationStatusActive, now.Add(time.Minute))
	assert.Nil(err)
	assert.Equal(first.ID, second.ID)
	// the second call found, not created: status and timestamps are untouched
	assert.Equal(model.ConversationStatusOpen, second.Status)

	other, err := s.FindOrCreateConversation(tenant.ID, "+3000", model.ConversationStatusOpen, now)
	assert.Nil(err)
	assert.NotEqual(first.ID, other.ID)
}

func TestFindOrCreateConversationConcurrent(t *testing.T) {
	require := require.New(t)
	s := newTestStore(t)

	tenant := newTestTenant(t, s, "+1000")
	now := time.Now().UTC()

	const callers = 8
	ids := make([]model.ConversationID, callers)
	errs := make([]error, callers)

	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			conversation, err := s.FindOrCreateConversation(tenant.ID, "+2000", model.ConversationStatusOpen, now)
			if err != nil {
				errs[i] = err
				return
			}
			ids[i] = conversation.ID
		}(i)
	}
	wg.Wait()

	for i := 0; i < callers; i++ {
		require.NoError(errs[i])
		require.Equal(ids[0], ids[i])
	}

	var count int
	require.NoError(s.db.Get(&count, `select count(1) from conversations where tenant_id = ?`, tenant.ID))
	require.Equal(1, count)
}

func TestTouchConversation(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)
	s := newTestStore(t)

	tenant := newTestTenant(t, s, "+1000")
	now := time.Now().UTC()
	conversation, err := s.FindOrCreateConversation(tenant.ID, "+2000", model.ConversationStatusOpen, now)
	require.NoError(err)

	t.Run("advances forward", func(t *testing.T) {
		later := now.Add(time.Hour)
		assert.Nil(s.TouchConversation(conversation.ID, later))
		found, err := s.GetConversation(conversation.ID)
		assert.Nil(err)
		assert.WithinDuration(later, found.LastMessageAt, time.Second)
	})

	t.Run("never moves backward", func(t *testing.T) {
		assert.Nil(s.TouchConversation(conversation.ID, now.Add(-time.Hour)))
		found, err := s.GetConversation(conversation.ID)
		assert.Nil(err)
		assert.WithinDuration(now.Add(time.Hour), found.LastMessageAt, time.Second)
	})
}

func TestListConversations(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)
	s := newTestStore(t)

	tenant := newTestTenant(t, s, "+1000")
	other := newTestTenant(t, s, "+5000")
	now := time.Now().UTC()

	older, err := s.FindOrCreateConversation(tenant.ID, "+2000", model.ConversationStatusOpen, now.Add(-time.Hour))
	require.NoError(err)
	newer, err := s.FindOrCreateConversation(tenant.ID, "+3000", model.ConversationStatusOpen, now)
	require.NoError(err)
	_, err = s.FindOrCreateConversation(other.ID, "+2000", model.ConversationStatusOpen, now)
	require.NoError(err)

	message := newTestMessage(tenant, older, "SM-snippet", model.DirectionInbound, now.Add(-time.Hour))
	message.Body = "latest words"
	_, _, err = s.AppendMessage(message)
	require.NoError(err)

	conversations, err := s.ListConversations(tenant.ID, 10, 0)
	assert.Nil(err)
	require.Len(conversations, 2)
	assert.Equal(newer.ID, conversations[0].ID)
	assert.Equal(older.ID, conversations[1].ID)
	assert.Nil(conversations[0].LastMessageBody)
	require.NotNil(conversations[1].LastMessageBody)
	assert.Equal("latest words", *conversations[1].LastMessageBody)
}
