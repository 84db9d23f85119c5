package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"privacygate/internal/platform/querier"
)

const (
	ActionPIIDetected         = "pii_detected"
	ActionPIIRedactionDone    = "pii_redaction_completed"
	ActionPIIDetectionTimeout = "pii_detection_timeout"
	ActionConsentGranted      = "consent_granted"
	ActionConsentDenied       = "consent_denied"
	ActionConsentRevoked      = "consent_revoked"
	ActionExportRequested     = "export_requested"
	ActionExportDownloaded    = "export_downloaded"
	ActionExportDeleted       = "export_deleted"
	ActionRetentionPurge      = "retention_purge"
)

// Event carries identifiers, counts and type labels only. Raw personal-data
// values must never be placed in Meta.
type Event struct {
	ID        string         `json:"id"`
	TenantID  string         `json:"tenantId"`
	ActorID   string         `json:"actorId"`
	Action    string         `json:"action"`
	Meta      map[string]any `json:"meta,omitempty"`
	RequestID string         `json:"requestId,omitempty"`
	CreatedAt time.Time      `json:"createdAt"`
}

// Recorder is the append-only sink the core writes to. It is injected into
// every component that emits events; no process-wide singleton exists.
type Recorder interface {
	Record(ctx context.Context, event Event) error
}

type Filter struct {
	Action  string
	ActorID string
}

type Service struct {
	DB querier.Querier
}

func New(db querier.Querier) *Service {
	return &Service{DB: db}
}

func (s *Service) Record(ctx context.Context, event Event) error {
	metaJSON := []byte("{}")
	if event.Meta != nil {
		payload, err := json.Marshal(event.Meta)
		if err != nil {
			return err
		}
		metaJSON = payload
	}

	_, err := s.DB.Exec(ctx, `
    INSERT INTO audit_events (tenant_id, actor_id, action, meta_json, request_id)
    VALUES ($1,$2,$3,$4,$5)
  `, event.TenantID, event.ActorID, event.Action, metaJSON, event.RequestID)
	return err
}

func (s *Service) Count(ctx context.Context, tenantID string, filter Filter) (int, error) {
	query, args := s.buildBaseQuery("SELECT COUNT(1)", tenantID, filter)
	var total int
	if err := s.DB.QueryRow(ctx, query, args...).Scan(&total); err != nil {
		return 0, err
	}
	return total, nil
}

func (s *Service) List(ctx context.Context, tenantID string, filter Filter, limit, offset int) ([]Event, error) {
	query, args := s.buildBaseQuery("SELECT id, actor_id, action, meta_json, request_id, created_at", tenantID, filter)
	limitPos := len(args) + 1
	offsetPos := len(args) + 2
	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", limitPos, offsetPos)
	args = append(args, limit, offset)

	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Event
	for rows.Next() {
		var evt Event
		var metaJSON []byte
		if err := rows.Scan(&evt.ID, &evt.ActorID, &evt.Action, &metaJSON, &evt.RequestID, &evt.CreatedAt); err != nil {
			return nil, err
		}
		if len(metaJSON) > 0 {
			if err := json.Unmarshal(metaJSON, &evt.Meta); err != nil {
				return nil, err
			}
		}
		evt.TenantID = tenantID
		out = append(out, evt)
	}
	return out, rows.Err()
}

func (s *Service) buildBaseQuery(prefix, tenantID string, filter Filter) (string, []any) {
	query := prefix + " FROM audit_events WHERE tenant_id = $1"
	args := []any{tenantID}
	if filter.Action != "" {
		query += fmt.Sprintf(" AND action = $%d", len(args)+1)
		args = append(args, filter.Action)
	}
	if filter.ActorID != "" {
		query += fmt.Sprintf(" AND actor_id = $%d", len(args)+1)
		args = append(args, filter.ActorID)
	}
	return query, args
}
