package export

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"privacygate/internal/domain/audit"
	"privacygate/internal/platform/crypto"
)

type memStore struct {
	mu       sync.Mutex
	messages map[string][]map[string]any // tenant/user → rows
	consents map[string][]map[string]any
	bundles  map[string]*Record // token → record
	accesses int
}

func newMemStore() *memStore {
	return &memStore{
		messages: map[string][]map[string]any{},
		consents: map[string][]map[string]any{},
		bundles:  map[string]*Record{},
	}
}

func key(tenantID, userID string) string { return tenantID + "/" + userID }

func (m *memStore) Messages(_ context.Context, tenantID, userID string) ([]map[string]any, error) {
	return m.messages[key(tenantID, userID)], nil
}

func (m *memStore) Consents(_ context.Context, tenantID, userID string) ([]map[string]any, error) {
	return m.consents[key(tenantID, userID)], nil
}

func (m *memStore) AuditEvents(_ context.Context, _, _ string) ([]map[string]any, error) {
	return nil, nil
}

func (m *memStore) AccessLogs(_ context.Context, _, _ string) ([]map[string]any, error) {
	return nil, nil
}

func (m *memStore) SaveBundle(_ context.Context, rec Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.bundles[rec.DownloadToken] = &rec
	return nil
}

func (m *memStore) BundleByToken(_ context.Context, token string) (*Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.bundles[token]
	if !ok {
		return nil, nil
	}
	clone := *rec
	return &clone, nil
}

func (m *memStore) ConsumeDownload(_ context.Context, token string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.bundles[token]
	if !ok || rec.DownloadsRemaining <= 0 {
		return nil, false, nil
	}
	rec.DownloadsRemaining--
	return rec.Ciphertext, true, nil
}

func (m *memStore) DeleteBundle(_ context.Context, tenantID, exportID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for token, rec := range m.bundles {
		if rec.TenantID == tenantID && rec.ExportID == exportID {
			delete(m.bundles, token)
			return true, nil
		}
	}
	return false, nil
}

func (m *memStore) RecordAccess(_ context.Context, _, _, _, _ string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.accesses++
	return nil
}

func seededStore() *memStore {
	store := newMemStore()
	store.messages[key("T1", "U1")] = []map[string]any{
		{"role": "user", "content": "Contact [PERSON_1] at [EMAIL_1]"},
	}
	store.messages[key("T1", "U2")] = []map[string]any{
		{"role": "user", "content": "other user's data"},
	}
	store.consents[key("T1", "U1")] = []map[string]any{
		{"purpose": "analytics", "granted": true},
	}
	return store
}

func TestRequestMissingParameters(t *testing.T) {
	engine := NewEngine(seededStore(), audit.NewMemory(), 3, time.Hour)
	if _, err := engine.Request(context.Background(), "", "U1"); !errors.Is(err, ErrMissingParameters) {
		t.Fatalf("expected ErrMissingParameters, got %v", err)
	}
	if _, err := engine.Request(context.Background(), "T1", ""); !errors.Is(err, ErrMissingParameters) {
		t.Fatalf("expected ErrMissingParameters, got %v", err)
	}
}

func TestRequestAndDecryptRoundTrip(t *testing.T) {
	store := seededStore()
	engine := NewEngine(store, audit.NewMemory(), 3, time.Hour)

	receipt, err := engine.Request(context.Background(), "T1", "U1")
	if err != nil {
		t.Fatalf("request error: %v", err)
	}
	if receipt.Password == "" || receipt.DownloadToken == "" {
		t.Fatal("receipt missing password or token")
	}

	ciphertext, err := engine.Download(context.Background(), receipt.DownloadToken, "U1", "T1")
	if err != nil {
		t.Fatalf("download error: %v", err)
	}

	plain, err := crypto.Decrypt(ciphertext, receipt.Password)
	if err != nil {
		t.Fatalf("decrypt error: %v", err)
	}

	var bundle Bundle
	if err := json.Unmarshal(plain, &bundle); err != nil {
		t.Fatalf("bundle unmarshal error: %v", err)
	}
	if bundle.TenantID != "T1" || bundle.UserID != "U1" || bundle.Version != BundleVersion {
		t.Fatalf("unexpected bundle header: %+v", bundle)
	}

	wantConversations := []map[string]any{
		{"role": "user", "content": "Contact [PERSON_1] at [EMAIL_1]"},
	}
	if diff := cmp.Diff(wantConversations, bundle.Data["conversations"]); diff != "" {
		t.Fatalf("conversations mismatch (-want +got):\n%s", diff)
	}
	for _, rows := range bundle.Data {
		for _, row := range rows {
			if row["content"] == "other user's data" {
				t.Fatal("bundle leaked another user's records")
			}
		}
	}
}

func TestDownloadWrongPasswordFails(t *testing.T) {
	engine := NewEngine(seededStore(), audit.NewMemory(), 3, time.Hour)

	receipt, err := engine.Request(context.Background(), "T1", "U1")
	if err != nil {
		t.Fatalf("request error: %v", err)
	}
	ciphertext, err := engine.Download(context.Background(), receipt.DownloadToken, "U1", "T1")
	if err != nil {
		t.Fatalf("download error: %v", err)
	}

	if _, err := crypto.Decrypt(ciphertext, "not-the-password"); !errors.Is(err, crypto.ErrDecryptionFailed) {
		t.Fatalf("expected ErrDecryptionFailed, got %v", err)
	}
}

func TestDownloadOwnershipChecks(t *testing.T) {
	engine := NewEngine(seededStore(), audit.NewMemory(), 3, time.Hour)

	receipt, err := engine.Request(context.Background(), "T1", "U1")
	if err != nil {
		t.Fatalf("request error: %v", err)
	}

	if _, err := engine.Download(context.Background(), receipt.DownloadToken, "U2", "T1"); !errors.Is(err, ErrNotOwned) {
		t.Fatalf("expected ErrNotOwned for wrong user, got %v", err)
	}
	if _, err := engine.Download(context.Background(), receipt.DownloadToken, "U1", "T2"); !errors.Is(err, ErrNotOwned) {
		t.Fatalf("expected ErrNotOwned for wrong tenant, got %v", err)
	}
	if _, err := engine.Download(context.Background(), "bogus-token", "U1", "T1"); !errors.Is(err, ErrNotOwned) {
		t.Fatalf("expected ErrNotOwned for unknown token, got %v", err)
	}
}

func TestDownloadLimit(t *testing.T) {
	engine := NewEngine(seededStore(), audit.NewMemory(), 2, time.Hour)

	receipt, err := engine.Request(context.Background(), "T1", "U1")
	if err != nil {
		t.Fatalf("request error: %v", err)
	}

	for i := 0; i < 2; i++ {
		if _, err := engine.Download(context.Background(), receipt.DownloadToken, "U1", "T1"); err != nil {
			t.Fatalf("download %d failed: %v", i+1, err)
		}
	}
	if _, err := engine.Download(context.Background(), receipt.DownloadToken, "U1", "T1"); !errors.Is(err, ErrLimitReached) {
		t.Fatalf("expected ErrLimitReached on download 3, got %v", err)
	}
}

func TestDownloadExpired(t *testing.T) {
	engine := NewEngine(seededStore(), audit.NewMemory(), 3, time.Hour)

	receipt, err := engine.Request(context.Background(), "T1", "U1")
	if err != nil {
		t.Fatalf("request error: %v", err)
	}

	engine.now = func() time.Time { return time.Now().Add(2 * time.Hour) }

	if _, err := engine.Download(context.Background(), receipt.DownloadToken, "U1", "T1"); !errors.Is(err, ErrExpired) {
		t.Fatalf("expected ErrExpired even with downloads remaining, got %v", err)
	}
}

func TestConcurrentDownloadsRespectLimit(t *testing.T) {
	engine := NewEngine(seededStore(), audit.NewMemory(), 3, time.Hour)

	receipt, err := engine.Request(context.Background(), "T1", "U1")
	if err != nil {
		t.Fatalf("request error: %v", err)
	}

	const attempts = 10
	var wg sync.WaitGroup
	results := make(chan error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := engine.Download(context.Background(), receipt.DownloadToken, "U1", "T1")
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	succeeded := 0
	for err := range results {
		if err == nil {
			succeeded++
		} else if !errors.Is(err, ErrLimitReached) {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if succeeded != 3 {
		t.Fatalf("expected exactly 3 successful downloads, got %d", succeeded)
	}
}

func TestDeleteIsCryptoShred(t *testing.T) {
	store := seededStore()
	recorder := audit.NewMemory()
	engine := NewEngine(store, recorder, 3, time.Hour)

	receipt, err := engine.Request(context.Background(), "T1", "U1")
	if err != nil {
		t.Fatalf("request error: %v", err)
	}
	if err := engine.Delete(context.Background(), "T1", receipt.ExportID); err != nil {
		t.Fatalf("delete error: %v", err)
	}

	if _, err := engine.Download(context.Background(), receipt.DownloadToken, "U1", "T1"); !errors.Is(err, ErrNotOwned) {
		t.Fatalf("expected deleted bundle to be gone, got %v", err)
	}
	if len(recorder.ByAction(audit.ActionExportDeleted)) != 1 {
		t.Fatal("expected export_deleted audit event")
	}
}
