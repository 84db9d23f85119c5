package consent

import (
	"context"
	"strings"
)

type Service struct {
	store StoreAPI
}

func NewService(store StoreAPI) *Service {
	return &Service{store: store}
}

func (s *Service) ListPurposes(ctx context.Context, tenantID string) ([]Purpose, error) {
	if strings.TrimSpace(tenantID) == "" {
		return nil, ErrMissingParameters
	}
	return s.store.ListPurposes(ctx, tenantID)
}

func (s *Service) ListConsents(ctx context.Context, tenantID, userID string) ([]Consent, error) {
	if strings.TrimSpace(tenantID) == "" {
		return nil, ErrMissingParameters
	}
	return s.store.ListConsents(ctx, tenantID, userID)
}

// Grant records an explicit consent decision for (tenant, user, purpose).
func (s *Service) Grant(ctx context.Context, tenantID, userID string, purpose PurposeIdentifier) (string, error) {
	if strings.TrimSpace(tenantID) == "" || strings.TrimSpace(userID) == "" || strings.TrimSpace(purpose.Value) == "" {
		return "", ErrMissingParameters
	}
	resolved, err := s.resolvePurpose(ctx, tenantID, purpose)
	if err != nil {
		return "", err
	}
	if resolved == nil {
		return "", ErrNotFound
	}
	return s.store.CreateConsent(ctx, tenantID, userID, resolved.ID, true)
}

// Deny records an explicit refusal, which blocks the purpose until a later
// grant supersedes it.
func (s *Service) Deny(ctx context.Context, tenantID, userID string, purpose PurposeIdentifier) (string, error) {
	if strings.TrimSpace(tenantID) == "" || strings.TrimSpace(userID) == "" || strings.TrimSpace(purpose.Value) == "" {
		return "", ErrMissingParameters
	}
	resolved, err := s.resolvePurpose(ctx, tenantID, purpose)
	if err != nil {
		return "", err
	}
	if resolved == nil {
		return "", ErrNotFound
	}
	return s.store.CreateConsent(ctx, tenantID, userID, resolved.ID, false)
}

// Revoke marks the consent row revoked. The row itself is evidentiary and is
// never removed here.
func (s *Service) Revoke(ctx context.Context, tenantID, consentID string) error {
	if strings.TrimSpace(tenantID) == "" || strings.TrimSpace(consentID) == "" {
		return ErrMissingParameters
	}
	return s.store.RevokeConsent(ctx, tenantID, consentID)
}

func (s *Service) resolvePurpose(ctx context.Context, tenantID string, purpose PurposeIdentifier) (*Purpose, error) {
	if purpose.Kind == ByID {
		return s.store.PurposeByID(ctx, tenantID, purpose.Value)
	}
	return s.store.PurposeByLabel(ctx, tenantID, purpose.Value)
}
