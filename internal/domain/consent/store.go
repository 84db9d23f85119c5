package consent

import (
	"context"
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

func (s *Store) PurposeByID(ctx context.Context, tenantID, purposeID string) (*Purpose, error) {
	return s.scanPurpose(ctx, `
    SELECT id, tenant_id, label, requires_consent
    FROM purposes
    WHERE tenant_id = $1 AND id = $2
  `, tenantID, purposeID)
}

func (s *Store) PurposeByLabel(ctx context.Context, tenantID, label string) (*Purpose, error) {
	return s.scanPurpose(ctx, `
    SELECT id, tenant_id, label, requires_consent
    FROM purposes
    WHERE tenant_id = $1 AND label = $2
  `, tenantID, label)
}

func (s *Store) scanPurpose(ctx context.Context, query string, args ...any) (*Purpose, error) {
	var p Purpose
	err := s.DB.QueryRow(ctx, query, args...).Scan(&p.ID, &p.TenantID, &p.Label, &p.RequiresConsent)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *Store) LatestConsent(ctx context.Context, tenantID, userID, purposeID string) (*Consent, error) {
	var c Consent
	err := s.DB.QueryRow(ctx, `
    SELECT c.id, c.tenant_id, c.user_id, c.purpose_id, p.label, c.granted, c.granted_at, c.revoked_at
    FROM consents c
    JOIN purposes p ON p.id = c.purpose_id
    WHERE c.tenant_id = $1 AND c.user_id = $2 AND c.purpose_id = $3
    ORDER BY c.granted_at DESC
    LIMIT 1
  `, tenantID, userID, purposeID).Scan(&c.ID, &c.TenantID, &c.UserID, &c.PurposeID, &c.PurposeLabel, &c.Granted, &c.GrantedAt, &c.RevokedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *Store) ListPurposes(ctx context.Context, tenantID string) ([]Purpose, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id, tenant_id, label, requires_consent
    FROM purposes
    WHERE tenant_id = $1
    ORDER BY label
  `, tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var purposes []Purpose
	for rows.Next() {
		var p Purpose
		if err := rows.Scan(&p.ID, &p.TenantID, &p.Label, &p.RequiresConsent); err != nil {
			return nil, err
		}
		purposes = append(purposes, p)
	}
	return purposes, rows.Err()
}

func (s *Store) ListConsents(ctx context.Context, tenantID, userID string) ([]Consent, error) {
	query := `
    SELECT c.id, c.tenant_id, c.user_id, c.purpose_id, p.label, c.granted, c.granted_at, c.revoked_at
    FROM consents c
    JOIN purposes p ON p.id = c.purpose_id
    WHERE c.tenant_id = $1
  `
	args := []any{tenantID}
	if userID != "" {
		query += " AND c.user_id = $2"
		args = append(args, userID)
	}
	query += " ORDER BY c.granted_at DESC"

	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var consents []Consent
	for rows.Next() {
		var c Consent
		if err := rows.Scan(&c.ID, &c.TenantID, &c.UserID, &c.PurposeID, &c.PurposeLabel, &c.Granted, &c.GrantedAt, &c.RevokedAt); err != nil {
			return nil, err
		}
		consents = append(consents, c)
	}
	return consents, rows.Err()
}

func (s *Store) CreateConsent(ctx context.Context, tenantID, userID, purposeID string, granted bool) (string, error) {
	var id string
	if err := s.DB.QueryRow(ctx, `
    INSERT INTO consents (tenant_id, user_id, purpose_id, granted)
    VALUES ($1,$2,$3,$4)
    RETURNING id
  `, tenantID, userID, purposeID, granted).Scan(&id); err != nil {
		return "", err
	}
	return id, nil
}

func (s *Store) RevokeConsent(ctx context.Context, tenantID, consentID string) error {
	tag, err := s.DB.Exec(ctx, `
    UPDATE consents SET revoked_at = now()
    WHERE tenant_id = $1 AND id = $2 AND revoked_at IS NULL
  `, tenantID, consentID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
