package db

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"privacygate/internal/platform/config"
)

type seedPurpose struct {
	label           string
	requiresConsent bool
}

var defaultPurposes = []seedPurpose{
	{label: "model_processing", requiresConsent: true},
	{label: "analytics", requiresConsent: true},
	{label: "support", requiresConsent: false},
}

var defaultRetentionDays = map[string]int{
	"conversations": 365,
	"audit":         730,
	"access_logs":   90,
	"exports":       7,
	"job_runs":      30,
}

// Seed ensures a tenant exists with the default purpose catalog and
// retention policies. Existing rows are left untouched.
func Seed(ctx context.Context, pool *pgxpool.Pool, cfg config.Config) error {
	var tenantID string
	err := pool.QueryRow(ctx, `
    INSERT INTO tenants (name) VALUES ($1)
    ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
    RETURNING id
  `, cfg.SeedTenantName).Scan(&tenantID)
	if err != nil {
		return err
	}

	for _, p := range defaultPurposes {
		if _, err := pool.Exec(ctx, `
      INSERT INTO purposes (tenant_id, label, requires_consent)
      VALUES ($1, $2, $3)
      ON CONFLICT (tenant_id, label) DO NOTHING
    `, tenantID, p.label, p.requiresConsent); err != nil {
			return err
		}
	}

	for category, days := range defaultRetentionDays {
		if _, err := pool.Exec(ctx, `
      INSERT INTO retention_policies (tenant_id, data_category, retention_days)
      VALUES ($1, $2, $3)
      ON CONFLICT (tenant_id, data_category) DO NOTHING
    `, tenantID, category, days); err != nil {
			return err
		}
	}

	return nil
}
