package export

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/jackc/pgx/v5"

	"privacygate/internal/platform/querier"
)

type Store struct {
	DB querier.Querier
}

func NewStore(db querier.Querier) *Store {
	return &Store{DB: db}
}

func (s *Store) Messages(ctx context.Context, tenantID, userID string) ([]map[string]any, error) {
	return s.queryRowsAsJSON(ctx, `SELECT row_to_json(m) FROM messages m WHERE tenant_id = $1 AND user_id = $2 ORDER BY created_at`, tenantID, userID)
}

func (s *Store) Consents(ctx context.Context, tenantID, userID string) ([]map[string]any, error) {
	return s.queryRowsAsJSON(ctx, `SELECT row_to_json(c) FROM consents c WHERE tenant_id = $1 AND user_id = $2 ORDER BY granted_at`, tenantID, userID)
}

func (s *Store) AuditEvents(ctx context.Context, tenantID, userID string) ([]map[string]any, error) {
	return s.queryRowsAsJSON(ctx, `SELECT row_to_json(a) FROM audit_events a WHERE tenant_id = $1 AND actor_id = $2 ORDER BY created_at`, tenantID, userID)
}

func (s *Store) AccessLogs(ctx context.Context, tenantID, userID string) ([]map[string]any, error) {
	return s.queryRowsAsJSON(ctx, `SELECT row_to_json(al) FROM access_logs al WHERE tenant_id = $1 AND subject_user_id = $2 ORDER BY created_at`, tenantID, userID)
}

func (s *Store) SaveBundle(ctx context.Context, rec Record) error {
	_, err := s.DB.Exec(ctx, `
    INSERT INTO exports (id, tenant_id, user_id, download_token, ciphertext, downloads_remaining, expires_at, created_at)
    VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
  `, rec.ExportID, rec.TenantID, rec.UserID, rec.DownloadToken, rec.Ciphertext, rec.DownloadsRemaining, rec.ExpiresAt, rec.CreatedAt)
	return err
}

func (s *Store) BundleByToken(ctx context.Context, token string) (*Record, error) {
	var rec Record
	err := s.DB.QueryRow(ctx, `
    SELECT id, tenant_id, user_id, download_token, downloads_remaining, expires_at, created_at
    FROM exports
    WHERE download_token = $1
  `, token).Scan(&rec.ExportID, &rec.TenantID, &rec.UserID, &rec.DownloadToken, &rec.DownloadsRemaining, &rec.ExpiresAt, &rec.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// ConsumeDownload is a single conditional UPDATE so concurrent downloads
// cannot both pass a remaining count of one.
func (s *Store) ConsumeDownload(ctx context.Context, token string) ([]byte, bool, error) {
	var ciphertext []byte
	err := s.DB.QueryRow(ctx, `
    UPDATE exports
    SET downloads_remaining = downloads_remaining - 1
    WHERE download_token = $1 AND downloads_remaining > 0
    RETURNING ciphertext
  `, token).Scan(&ciphertext)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return ciphertext, true, nil
}

func (s *Store) DeleteBundle(ctx context.Context, tenantID, exportID string) (bool, error) {
	tag, err := s.DB.Exec(ctx, `
    DELETE FROM exports WHERE tenant_id = $1 AND id = $2
  `, tenantID, exportID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (s *Store) RecordAccess(ctx context.Context, tenantID, actorID, subjectUserID, resource string) error {
	_, err := s.DB.Exec(ctx, `
    INSERT INTO access_logs (tenant_id, actor_id, subject_user_id, resource)
    VALUES ($1,$2,$3,$4)
  `, tenantID, actorID, subjectUserID, resource)
	return err
}

func (s *Store) queryRowsAsJSON(ctx context.Context, query string, args ...any) ([]map[string]any, error) {
	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []map[string]any
	for rows.Next() {
		var rowJSON []byte
		if err := rows.Scan(&rowJSON); err != nil {
			return nil, err
		}
		var row map[string]any
		if err := json.Unmarshal(rowJSON, &row); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}
