package consent

import "context"

type StoreAPI interface {
	GateStore
	ListPurposes(ctx context.Context, tenantID string) ([]Purpose, error)
	ListConsents(ctx context.Context, tenantID, userID string) ([]Consent, error)
	CreateConsent(ctx context.Context, tenantID, userID, purposeID string, granted bool) (string, error)
	RevokeConsent(ctx context.Context, tenantID, consentID string) error
}
