package handlers

import (
	"context"

	"uk.co.dudmesh.courier/internal/model"
	"uk.co.dudmesh.courier/internal/service/dispatch"
	"uk.co.dudmesh.courier/internal/service/inbound"
)

type TenantService interface {
	Create(params *model.CreateTenantParams) (*model.Tenant, error)
	Fetch(id model.TenantID) (*model.Tenant, error)
	ResolveByAPIKey(key string) (*model.Tenant, error)
	List() ([]model.Tenant, error)
	Update(id model.TenantID, params *model.UpdateTenantParams) (*model.Tenant, error)
	Delete(id model.TenantID) error
}

type Dispatcher interface {
	Send(ctx context.Context, tenant *model.Tenant, params dispatch.SendParams) (*dispatch.Result, error)
}

type InboundProcessor interface {
	Process(ctx context.Context, event *inbound.Event) error
	ApplyStatus(providerSID string, rawStatus string) error
}

type MessageReader interface {
	GetConversation(id model.ConversationID) (*model.Conversation, error)
	ListConversations(tenantID model.TenantID, limit int, offset int) ([]model.ConversationSummary, error)
	ListMessagesByConversation(conversationID model.ConversationID, order model.ListOrder, limit int, offset int) ([]model.Message, error)
	ListMessagesByTenant(tenantID model.TenantID, order model.ListOrder, limit int, offset int) ([]model.Message, error)
}
