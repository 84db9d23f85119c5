package export

import "context"

// StoreAPI gathers records filtered at the query source; every method takes
// the owning (tenant, user) pair and must never post-filter a broader result.
type StoreAPI interface {
	Messages(ctx context.Context, tenantID, userID string) ([]map[string]any, error)
	Consents(ctx context.Context, tenantID, userID string) ([]map[string]any, error)
	AuditEvents(ctx context.Context, tenantID, userID string) ([]map[string]any, error)
	AccessLogs(ctx context.Context, tenantID, userID string) ([]map[string]any, error)

	SaveBundle(ctx context.Context, rec Record) error
	BundleByToken(ctx context.Context, token string) (*Record, error)
	// ConsumeDownload decrements downloadsRemaining and returns the
	// ciphertext in one atomic step; ok is false when no download was left.
	ConsumeDownload(ctx context.Context, token string) (ciphertext []byte, ok bool, err error)
	DeleteBundle(ctx context.Context, tenantID, exportID string) (bool, error)
	RecordAccess(ctx context.Context, tenantID, actorID, subjectUserID, resource string) error
}
