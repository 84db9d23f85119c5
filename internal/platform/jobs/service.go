package jobs

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"privacygate/internal/domain/retention"
)

const JobRetentionSweep = "retention_sweep"

// Service runs background work on a single worker goroutine and drives the
// scheduled retention sweep. Every run is bookkept in job_runs.
type Service struct {
	DB        *pgxpool.Pool
	Retention *retention.Engine
	queue     chan job
}

type job struct {
	Type     string
	TenantID string
	Run      func(context.Context) (any, error)
}

func New(db *pgxpool.Pool, engine *retention.Engine) *Service {
	return &Service{
		DB:        db,
		Retention: engine,
		queue:     make(chan job, 128),
	}
}

func (s *Service) Start(ctx context.Context, retentionInterval time.Duration) {
	go s.worker(ctx)
	if retentionInterval > 0 {
		go s.scheduleRetention(ctx, retentionInterval)
	}
}

func (s *Service) Enqueue(jobType, tenantID string, run func(context.Context) (any, error)) {
	select {
	case s.queue <- job{Type: jobType, TenantID: tenantID, Run: run}:
	default:
		slog.Warn("job queue full", "jobType", jobType, "tenantId", tenantID)
	}
}

func (s *Service) RunNow(ctx context.Context, jobType, tenantID string, run func(context.Context) (any, error)) (any, error) {
	return s.runJob(ctx, job{Type: jobType, TenantID: tenantID, Run: run})
}

func (s *Service) worker(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case j := <-s.queue:
			if _, err := s.runJob(ctx, j); err != nil {
				slog.Warn("job run failed", "jobType", j.Type, "tenantId", j.TenantID, "err", err)
			}
		}
	}
}

func (s *Service) runJob(ctx context.Context, j job) (any, error) {
	// Platform-wide jobs carry no tenant.
	var tenant any
	if j.TenantID != "" {
		tenant = j.TenantID
	}
	runID := ""
	if err := s.DB.QueryRow(ctx, `
    INSERT INTO job_runs (tenant_id, job_type, status)
    VALUES ($1,$2,$3)
    RETURNING id
  `, tenant, j.Type, "running").Scan(&runID); err != nil {
		slog.Warn("job run insert failed", "err", err)
	}

	details, err := j.Run(ctx)
	status := "completed"
	if err != nil {
		status = "failed"
	}
	detailsJSON, marshalErr := json.Marshal(details)
	if marshalErr != nil {
		slog.Warn("job details marshal failed", "err", marshalErr)
		detailsJSON = []byte("{}")
	}
	if runID != "" {
		if _, updErr := s.DB.Exec(ctx, `
      UPDATE job_runs
      SET status = $1, details_json = $2, completed_at = now()
      WHERE id = $3
    `, status, detailsJSON, runID); updErr != nil {
			slog.Warn("job run update failed", "err", updErr)
		}
	}
	return details, err
}

// scheduleRetention enqueues a platform-wide sweep on every tick. The engine
// serializes same-tenant runs itself, so overlapping ticks stay safe.
func (s *Service) scheduleRetention(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Enqueue(JobRetentionSweep, "", func(ctx context.Context) (any, error) {
				results, err := s.Retention.PurgeAll(ctx, false)
				return map[string]any{"tenants": results}, err
			})
		}
	}
}
