package consent

import (
	"context"
	"strings"
)

// GateStore is the read-side view the gate needs. Every call goes back to
// persisted state; the gate holds no cache, so a revocation is visible to the
// very next check from any caller.
type GateStore interface {
	PurposeByID(ctx context.Context, tenantID, purposeID string) (*Purpose, error)
	PurposeByLabel(ctx context.Context, tenantID, label string) (*Purpose, error)
	LatestConsent(ctx context.Context, tenantID, userID, purposeID string) (*Consent, error)
}

type Gate struct {
	store GateStore
}

func NewGate(store GateStore) *Gate {
	return &Gate{store: store}
}

// Check succeeds silently when (tenant, user, purpose) has an active granted
// consent, or when the purpose does not require consent at all. It is a pure
// read with no side effects.
func (g *Gate) Check(ctx context.Context, tenantID, userID string, purpose PurposeIdentifier) error {
	if strings.TrimSpace(tenantID) == "" || strings.TrimSpace(userID) == "" || strings.TrimSpace(purpose.Value) == "" {
		return ErrMissingParameters
	}

	resolved, err := g.resolvePurpose(ctx, tenantID, purpose)
	if err != nil {
		return err
	}
	if resolved == nil {
		return ErrNotFound
	}
	if !resolved.RequiresConsent {
		return nil
	}

	record, err := g.store.LatestConsent(ctx, tenantID, userID, resolved.ID)
	if err != nil {
		return err
	}
	switch {
	case record == nil:
		return ErrNotFound
	case record.RevokedAt != nil:
		return ErrRevoked
	case !record.Granted:
		return ErrDenied
	}
	return nil
}

func (g *Gate) resolvePurpose(ctx context.Context, tenantID string, purpose PurposeIdentifier) (*Purpose, error) {
	if purpose.Kind == ByID {
		return g.store.PurposeByID(ctx, tenantID, purpose.Value)
	}
	return g.store.PurposeByLabel(ctx, tenantID, purpose.Value)
}
