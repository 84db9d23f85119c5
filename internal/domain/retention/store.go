package retention

import (
	"context"
	"fmt"
	"time"

	"privacygate/internal/platform/querier"
)

type Store struct {
	DB querier.Querier
}

func NewStore(db querier.Querier) *Store {
	return &Store{DB: db}
}

// categoryTables maps each category to its table and timestamp column. The
// predicate is always (tenant_id, column < cutoff), nothing order-dependent.
var categoryTables = map[string]struct {
	table  string
	column string
}{
	CategoryConversations: {table: "messages", column: "created_at"},
	CategoryAudit:         {table: "audit_events", column: "created_at"},
	CategoryAccessLogs:    {table: "access_logs", column: "created_at"},
	CategoryExports:       {table: "exports", column: "created_at"},
	CategoryJobRuns:       {table: "job_runs", column: "started_at"},
}

func (s *Store) PurgeCategory(ctx context.Context, tenantID, category string, cutoff time.Time) (int64, error) {
	target, ok := categoryTables[category]
	if !ok {
		return 0, fmt.Errorf("%s: %w", category, ErrUnknownCategory)
	}
	query := fmt.Sprintf("DELETE FROM %s WHERE tenant_id = $1 AND %s < $2", target.table, target.column)
	tag, err := s.DB.Exec(ctx, query, tenantID, cutoff)
	return tag.RowsAffected(), err
}

func (s *Store) CountCategory(ctx context.Context, tenantID, category string, cutoff time.Time) (int64, error) {
	target, ok := categoryTables[category]
	if !ok {
		return 0, fmt.Errorf("%s: %w", category, ErrUnknownCategory)
	}
	query := fmt.Sprintf("SELECT COUNT(1) FROM %s WHERE tenant_id = $1 AND %s < $2", target.table, target.column)
	var count int64
	err := s.DB.QueryRow(ctx, query, tenantID, cutoff).Scan(&count)
	return count, err
}

func (s *Store) RecordRun(ctx context.Context, tenantID, category string, cutoff time.Time, status string, dryRun bool, deleted int64) (string, error) {
	var runID string
	if err := s.DB.QueryRow(ctx, `
    INSERT INTO retention_runs (tenant_id, data_category, cutoff_date, status, dry_run, deleted_count)
    VALUES ($1,$2,$3,$4,$5,$6)
    RETURNING id
  `, tenantID, category, cutoff, status, dryRun, deleted).Scan(&runID); err != nil {
		return "", err
	}
	return runID, nil
}

func (s *Store) ListRuns(ctx context.Context, tenantID string) ([]Run, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id, data_category, cutoff_date, status, dry_run, deleted_count, started_at, completed_at
    FROM retention_runs
    WHERE tenant_id = $1
    ORDER BY started_at DESC
    LIMIT 100
  `, tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var run Run
		if err := rows.Scan(&run.ID, &run.DataCategory, &run.CutoffDate, &run.Status, &run.DryRun, &run.DeletedCount, &run.StartedAt, &run.CompletedAt); err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

func (s *Store) ListPolicies(ctx context.Context, tenantID string) ([]RetentionRule, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id, data_category, retention_days
    FROM retention_policies
    WHERE tenant_id = $1
  `, tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var rules []RetentionRule
	for rows.Next() {
		var rule RetentionRule
		if err := rows.Scan(&rule.ID, &rule.DataCategory, &rule.RetentionDays); err != nil {
			return nil, err
		}
		rules = append(rules, rule)
	}
	return rules, rows.Err()
}

func (s *Store) UpsertPolicy(ctx context.Context, tenantID, category string, retentionDays int) (string, error) {
	var id string
	if err := s.DB.QueryRow(ctx, `
    INSERT INTO retention_policies (tenant_id, data_category, retention_days)
    VALUES ($1,$2,$3)
    ON CONFLICT (tenant_id, data_category) DO UPDATE SET retention_days = EXCLUDED.retention_days
    RETURNING id
  `, tenantID, category, retentionDays).Scan(&id); err != nil {
		return "", err
	}
	return id, nil
}

func (s *Store) ListTenants(ctx context.Context) ([]string, error) {
	rows, err := s.DB.Query(ctx, `SELECT id FROM tenants ORDER BY created_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tenants []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		tenants = append(tenants, id)
	}
	return tenants, rows.Err()
}
