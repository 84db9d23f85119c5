package export

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"privacygate/internal/domain/audit"
	"privacygate/internal/platform/crypto"
)

// Engine builds, encrypts and gates download of personal-data bundles.
type Engine struct {
	store         StoreAPI
	recorder      audit.Recorder
	downloadLimit int
	ttl           time.Duration
	now           func() time.Time
}

func NewEngine(store StoreAPI, recorder audit.Recorder, downloadLimit int, ttl time.Duration) *Engine {
	return &Engine{
		store:         store,
		recorder:      recorder,
		downloadLimit: downloadLimit,
		ttl:           ttl,
		now:           time.Now,
	}
}

// Request assembles the (tenant, user)-scoped bundle, encrypts it with a
// fresh one-time password and persists only the ciphertext. The receipt with
// the password is returned once and cannot be recovered afterwards.
func (e *Engine) Request(ctx context.Context, tenantID, userID string) (*Receipt, error) {
	if strings.TrimSpace(tenantID) == "" || strings.TrimSpace(userID) == "" {
		return nil, ErrMissingParameters
	}

	now := e.now().UTC()
	bundle := Bundle{
		ExportID:    uuid.NewString(),
		TenantID:    tenantID,
		UserID:      userID,
		GeneratedAt: now,
		ExpiresAt:   now.Add(e.ttl),
		Version:     BundleVersion,
		Data:        map[string][]map[string]any{},
	}

	gather := []struct {
		key  string
		load func(context.Context, string, string) ([]map[string]any, error)
	}{
		{"conversations", e.store.Messages},
		{"consents", e.store.Consents},
		{"auditTrail", e.store.AuditEvents},
		{"accessLogs", e.store.AccessLogs},
	}
	for _, g := range gather {
		rows, err := g.load(ctx, tenantID, userID)
		if err != nil {
			return nil, err
		}
		bundle.Data[g.key] = rows
	}

	plain, err := json.Marshal(bundle)
	if err != nil {
		return nil, err
	}

	password, err := crypto.NewPassword()
	if err != nil {
		return nil, err
	}
	ciphertext, err := crypto.Encrypt(plain, password)
	if err != nil {
		return nil, err
	}

	token, err := crypto.NewPassword()
	if err != nil {
		return nil, err
	}

	rec := Record{
		ExportID:           bundle.ExportID,
		TenantID:           tenantID,
		UserID:             userID,
		DownloadToken:      token,
		Ciphertext:         ciphertext,
		DownloadsRemaining: e.downloadLimit,
		ExpiresAt:          bundle.ExpiresAt,
		CreatedAt:          now,
	}
	if err := e.store.SaveBundle(ctx, rec); err != nil {
		return nil, err
	}

	e.record(ctx, audit.Event{
		TenantID: tenantID,
		ActorID:  userID,
		Action:   audit.ActionExportRequested,
		Meta:     map[string]any{"export_id": bundle.ExportID, "downloads": e.downloadLimit},
	})

	return &Receipt{
		ExportID:      bundle.ExportID,
		DownloadToken: token,
		Password:      password,
		ExpiresAt:     bundle.ExpiresAt,
	}, nil
}

// Download checks ownership, expiry and the remaining-download budget, then
// consumes one download atomically. Two concurrent calls can never both
// succeed past the configured limit.
func (e *Engine) Download(ctx context.Context, token, requestingUserID, requestingTenantID string) ([]byte, error) {
	if strings.TrimSpace(requestingTenantID) == "" || strings.TrimSpace(requestingUserID) == "" {
		return nil, ErrMissingParameters
	}

	rec, err := e.store.BundleByToken(ctx, token)
	if err != nil {
		return nil, err
	}
	if rec == nil || rec.TenantID != requestingTenantID || rec.UserID != requestingUserID {
		return nil, ErrNotOwned
	}
	if e.now().After(rec.ExpiresAt) {
		return nil, ErrExpired
	}
	if rec.DownloadsRemaining <= 0 {
		return nil, ErrLimitReached
	}

	ciphertext, ok, err := e.store.ConsumeDownload(ctx, token)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrLimitReached
	}

	if err := e.store.RecordAccess(ctx, rec.TenantID, requestingUserID, rec.UserID, "export:"+rec.ExportID); err != nil {
		slog.Warn("access log write failed", "exportId", rec.ExportID, "err", err)
	}
	e.record(ctx, audit.Event{
		TenantID: rec.TenantID,
		ActorID:  requestingUserID,
		Action:   audit.ActionExportDownloaded,
		Meta:     map[string]any{"export_id": rec.ExportID},
	})

	return ciphertext, nil
}

// Delete removes ciphertext and metadata. The one-time password was never
// stored, so this renders the bundle permanently unrecoverable.
func (e *Engine) Delete(ctx context.Context, tenantID, exportID string) error {
	if strings.TrimSpace(tenantID) == "" || strings.TrimSpace(exportID) == "" {
		return ErrMissingParameters
	}
	deleted, err := e.store.DeleteBundle(ctx, tenantID, exportID)
	if err != nil {
		return err
	}
	if deleted {
		e.record(ctx, audit.Event{
			TenantID: tenantID,
			Action:   audit.ActionExportDeleted,
			Meta:     map[string]any{"export_id": exportID},
		})
	}
	return nil
}

func (e *Engine) record(ctx context.Context, event audit.Event) {
	if e.recorder == nil {
		return
	}
	if err := e.recorder.Record(ctx, event); err != nil {
		slog.Warn("audit record failed", "action", event.Action, "err", err)
	}
}
