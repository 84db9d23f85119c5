package retention

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"privacygate/internal/domain/audit"
	"privacygate/internal/platform/metrics"
)

// Engine applies retention policies per category, per tenant. The deletion
// predicate is purely timestamp-based, so repeated runs over unchanged data
// are idempotent.
type Engine struct {
	store    StoreAPI
	recorder audit.Recorder
	metrics  *metrics.Collector
	locks    sync.Map // tenantID → *sync.Mutex
	now      func() time.Time
}

func NewEngine(store StoreAPI, recorder audit.Recorder, collector *metrics.Collector) *Engine {
	return &Engine{
		store:    store,
		recorder: recorder,
		metrics:  collector,
		now:      time.Now,
	}
}

// PurgeCategory counts (dry run) or deletes (live) records in one category
// strictly older than the policy cutoff, strictly scoped to tenantID.
func (e *Engine) PurgeCategory(ctx context.Context, tenantID string, policy Policy, category string, dryRun bool) (int64, error) {
	if strings.TrimSpace(tenantID) == "" || strings.TrimSpace(category) == "" {
		return 0, ErrMissingParameters
	}
	if err := ValidatePolicy(policy); err != nil {
		return 0, err
	}
	if forbiddenCategories[category] {
		return 0, fmt.Errorf("%s: %w", category, ErrForbiddenCategory)
	}
	days, ok := policy.Rules[category]
	if !ok {
		return 0, fmt.Errorf("%s: %w", category, ErrNoRuleForCategory)
	}

	cutoff := e.now().UTC().AddDate(0, 0, -days)

	if dryRun {
		count, err := e.store.CountCategory(ctx, tenantID, category, cutoff)
		if err != nil {
			return 0, err
		}
		if _, recErr := e.store.RecordRun(ctx, tenantID, category, cutoff, RunStatusDryRun, true, count); recErr != nil {
			slog.Warn("retention run record failed", "tenantId", tenantID, "category", category, "err", recErr)
		}
		return count, nil
	}

	deleted, err := e.store.PurgeCategory(ctx, tenantID, category, cutoff)
	status := RunStatusCompleted
	if err != nil {
		status = RunStatusFailed
	}
	if _, recErr := e.store.RecordRun(ctx, tenantID, category, cutoff, status, false, deleted); recErr != nil {
		slog.Warn("retention run record failed", "tenantId", tenantID, "category", category, "err", recErr)
	}
	if err != nil {
		return deleted, err
	}

	if e.metrics != nil {
		e.metrics.RecordPurged(deleted)
	}
	e.record(ctx, audit.Event{
		TenantID: tenantID,
		Action:   audit.ActionRetentionPurge,
		Meta: map[string]any{
			"category":      category,
			"deleted_count": deleted,
			"cutoff":        cutoff.Format(time.RFC3339),
		},
	})
	return deleted, nil
}

// PurgeTenant runs every policy rule for one tenant. Runs for the same
// tenant are serialized; different tenants proceed concurrently.
func (e *Engine) PurgeTenant(ctx context.Context, tenantID string, policy Policy, dryRun bool) (map[string]int64, error) {
	if strings.TrimSpace(tenantID) == "" {
		return nil, ErrMissingParameters
	}
	lock := e.tenantLock(tenantID)
	lock.Lock()
	defer lock.Unlock()

	results := map[string]int64{}
	for _, category := range Categories() {
		if _, ok := policy.Rules[category]; !ok {
			continue
		}
		affected, err := e.PurgeCategory(ctx, tenantID, policy, category, dryRun)
		if err != nil {
			return results, err
		}
		results[category] = affected
	}
	return results, nil
}

// PurgeAll iterates every tenant with that tenant's own persisted policy,
// using the same per-tenant primitive.
func (e *Engine) PurgeAll(ctx context.Context, dryRun bool) (map[string]map[string]int64, error) {
	tenants, err := e.store.ListTenants(ctx)
	if err != nil {
		return nil, err
	}

	results := map[string]map[string]int64{}
	for _, tenantID := range tenants {
		policy, err := e.TenantPolicy(ctx, tenantID)
		if err != nil {
			return results, err
		}
		if len(policy.Rules) == 0 {
			continue
		}
		tenantResults, err := e.PurgeTenant(ctx, tenantID, policy, dryRun)
		if err != nil {
			return results, err
		}
		results[tenantID] = tenantResults
	}
	return results, nil
}

// TenantPolicy loads the persisted policy rows for one tenant.
func (e *Engine) TenantPolicy(ctx context.Context, tenantID string) (Policy, error) {
	rules, err := e.store.ListPolicies(ctx, tenantID)
	if err != nil {
		return Policy{}, err
	}
	policy := Policy{Rules: map[string]int{}}
	for _, rule := range rules {
		policy.Rules[rule.DataCategory] = rule.RetentionDays
	}
	return policy, nil
}

// SetPolicy validates and persists one category rule.
func (e *Engine) SetPolicy(ctx context.Context, tenantID, category string, retentionDays int) (string, error) {
	if strings.TrimSpace(tenantID) == "" || strings.TrimSpace(category) == "" {
		return "", ErrMissingParameters
	}
	if err := ValidatePolicy(Policy{Rules: map[string]int{category: retentionDays}}); err != nil {
		return "", err
	}
	return e.store.UpsertPolicy(ctx, tenantID, category, retentionDays)
}

func (e *Engine) ListRuns(ctx context.Context, tenantID string) ([]Run, error) {
	if strings.TrimSpace(tenantID) == "" {
		return nil, ErrMissingParameters
	}
	return e.store.ListRuns(ctx, tenantID)
}

func (e *Engine) ListPolicies(ctx context.Context, tenantID string) ([]RetentionRule, error) {
	if strings.TrimSpace(tenantID) == "" {
		return nil, ErrMissingParameters
	}
	return e.store.ListPolicies(ctx, tenantID)
}

func (e *Engine) tenantLock(tenantID string) *sync.Mutex {
	lock, _ := e.locks.LoadOrStore(tenantID, &sync.Mutex{})
	return lock.(*sync.Mutex)
}

func (e *Engine) record(ctx context.Context, event audit.Event) {
	if e.recorder == nil {
		return
	}
	if err := e.recorder.Record(ctx, event); err != nil {
		slog.Warn("audit record failed", "action", event.Action, "err", err)
	}
}
