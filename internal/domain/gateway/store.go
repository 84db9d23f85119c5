package gateway

import (
	"context"

	"privacygate/internal/platform/querier"
)

type MessageStore interface {
	SaveMessage(ctx context.Context, msg Message) error
}

type Store struct {
	DB querier.Querier
}

func NewStore(db querier.Querier) *Store {
	return &Store{DB: db}
}

func (s *Store) SaveMessage(ctx context.Context, msg Message) error {
	_, err := s.DB.Exec(ctx, `
    INSERT INTO messages (tenant_id, user_id, role, content, provider, model)
    VALUES ($1,$2,$3,$4,$5,$6)
  `, msg.TenantID, msg.UserID, msg.Role, msg.Content, msg.Provider, msg.Model)
	return err
}
