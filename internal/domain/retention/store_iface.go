package retention

import (
	"context"
	"time"
)

type RetentionRule struct {
	ID            string `json:"id"`
	DataCategory  string `json:"dataCategory"`
	RetentionDays int    `json:"retentionDays"`
}

type Run struct {
	ID           string    `json:"id"`
	DataCategory string    `json:"dataCategory"`
	CutoffDate   time.Time `json:"cutoffDate"`
	Status       string    `json:"status"`
	DryRun       bool      `json:"dryRun"`
	DeletedCount int64     `json:"deletedCount"`
	StartedAt    time.Time `json:"startedAt"`
	CompletedAt  time.Time `json:"completedAt"`
}

type StoreAPI interface {
	// PurgeCategory deletes records in category strictly older than cutoff,
	// strictly scoped to tenantID, and returns the affected count.
	PurgeCategory(ctx context.Context, tenantID, category string, cutoff time.Time) (int64, error)
	// CountCategory is the dry-run counterpart over the same predicate.
	CountCategory(ctx context.Context, tenantID, category string, cutoff time.Time) (int64, error)
	RecordRun(ctx context.Context, tenantID, category string, cutoff time.Time, status string, dryRun bool, deleted int64) (string, error)
	ListRuns(ctx context.Context, tenantID string) ([]Run, error)
	ListPolicies(ctx context.Context, tenantID string) ([]RetentionRule, error)
	UpsertPolicy(ctx context.Context, tenantID, category string, retentionDays int) (string, error)
	ListTenants(ctx context.Context) ([]string, error)
}
