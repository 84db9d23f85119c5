package gateway

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"privacygate/internal/domain/audit"
	"privacygate/internal/domain/consent"
	"privacygate/internal/domain/pii"
)

type fakeConsentStore struct {
	purposes map[string]*consent.Purpose
	consents map[string]*consent.Consent
}

func (f *fakeConsentStore) PurposeByID(_ context.Context, tenantID, purposeID string) (*consent.Purpose, error) {
	p, ok := f.purposes[purposeID]
	if !ok || p.TenantID != tenantID {
		return nil, nil
	}
	return p, nil
}

func (f *fakeConsentStore) PurposeByLabel(_ context.Context, tenantID, label string) (*consent.Purpose, error) {
	for _, p := range f.purposes {
		if p.TenantID == tenantID && p.Label == label {
			return p, nil
		}
	}
	return nil, nil
}

func (f *fakeConsentStore) LatestConsent(_ context.Context, tenantID, userID, purposeID string) (*consent.Consent, error) {
	c, ok := f.consents[tenantID+"/"+userID+"/"+purposeID]
	if !ok {
		return nil, nil
	}
	return c, nil
}

type stubProvider struct {
	calls    int
	lastText string
	respond  func(text string) string
	err      error
}

func (p *stubProvider) Name() string { return "stub" }

func (p *stubProvider) Complete(_ context.Context, req ProviderRequest) (*ProviderResponse, error) {
	p.calls++
	p.lastText = req.Text
	if p.err != nil {
		return nil, p.err
	}
	text := req.Text
	if p.respond != nil {
		text = p.respond(req.Text)
	}
	return &ProviderResponse{Text: text, Model: "stub-model"}, nil
}

type memMessageStore struct {
	messages []Message
}

func (m *memMessageStore) SaveMessage(_ context.Context, msg Message) error {
	m.messages = append(m.messages, msg)
	return nil
}

func grantedStore() *fakeConsentStore {
	return &fakeConsentStore{
		purposes: map[string]*consent.Purpose{
			"p-analytics": {ID: "p-analytics", TenantID: "T1", Label: "analytics", RequiresConsent: true},
		},
		consents: map[string]*consent.Consent{
			"T1/U1/p-analytics": {ID: "c1", TenantID: "T1", UserID: "U1", PurposeID: "p-analytics", Granted: true, GrantedAt: time.Now()},
		},
	}
}

func newGateway(store *fakeConsentStore, provider Provider, messages MessageStore) *Gateway {
	redactor := pii.NewRedactor(50*time.Millisecond, false, audit.NewMemory())
	return New(consent.NewGate(store), redactor, provider, messages, nil)
}

func TestInvokeMissingParameters(t *testing.T) {
	provider := &stubProvider{}
	gw := newGateway(grantedStore(), provider, nil)

	reqs := []InvokeRequest{
		{UserID: "U1", Purpose: consent.PurposeLabel("analytics"), Text: "hi"},
		{TenantID: "T1", Purpose: consent.PurposeLabel("analytics"), Text: "hi"},
		{TenantID: "T1", UserID: "U1", Text: "hi"},
		{TenantID: "T1", UserID: "U1", Purpose: consent.PurposeLabel("analytics")},
	}
	for _, req := range reqs {
		if _, err := gw.Invoke(context.Background(), req); !errors.Is(err, ErrMissingParameters) {
			t.Fatalf("expected ErrMissingParameters for %+v, got %v", req, err)
		}
	}
	if provider.calls != 0 {
		t.Fatalf("expected zero provider calls, got %d", provider.calls)
	}
}

func TestInvokeBlocksWithoutConsent(t *testing.T) {
	store := grantedStore()
	delete(store.consents, "T1/U1/p-analytics")
	provider := &stubProvider{}
	gw := newGateway(store, provider, nil)

	_, err := gw.Invoke(context.Background(), InvokeRequest{
		TenantID: "T1", UserID: "U1",
		Purpose: consent.PurposeLabel("analytics"),
		Text:    "run the numbers",
	})

	var consentErr *ConsentError
	if !errors.As(err, &consentErr) {
		t.Fatalf("expected ConsentError, got %v", err)
	}
	if !errors.Is(err, consent.ErrNotFound) {
		t.Fatalf("expected wrapped ErrNotFound, got %v", err)
	}
	if provider.calls != 0 {
		t.Fatalf("consent failure must abort before dispatch, provider calls = %d", provider.calls)
	}
}

func TestInvokeBlocksRevokedConsent(t *testing.T) {
	store := grantedStore()
	revoked := time.Now()
	store.consents["T1/U1/p-analytics"].RevokedAt = &revoked
	provider := &stubProvider{}
	gw := newGateway(store, provider, nil)

	_, err := gw.Invoke(context.Background(), InvokeRequest{
		TenantID: "T1", UserID: "U1",
		Purpose: consent.PurposeLabel("analytics"),
		Text:    "run the numbers",
	})
	if !errors.Is(err, consent.ErrRevoked) {
		t.Fatalf("expected wrapped ErrRevoked, got %v", err)
	}
	if provider.calls != 0 {
		t.Fatalf("expected zero provider calls, got %d", provider.calls)
	}
}

func TestInvokeRedactsBeforeDispatchAndRestoresAfter(t *testing.T) {
	provider := &stubProvider{
		respond: func(text string) string {
			return "I reached out to [PERSON_1] at [EMAIL_1]. Original request: " + text
		},
	}
	messages := &memMessageStore{}
	gw := newGateway(grantedStore(), provider, messages)

	result, err := gw.Invoke(context.Background(), InvokeRequest{
		TenantID: "T1", UserID: "U1",
		Purpose: consent.PurposeLabel("analytics"),
		Text:    "Contact Jane Doe at jane@example.com",
	})
	if err != nil {
		t.Fatalf("invoke error: %v", err)
	}

	if strings.Contains(provider.lastText, "Jane Doe") || strings.Contains(provider.lastText, "jane@example.com") {
		t.Fatalf("provider saw unredacted text: %q", provider.lastText)
	}
	if !strings.Contains(result.Text, "Jane Doe") || !strings.Contains(result.Text, "jane@example.com") {
		t.Fatalf("restored output missing originals: %q", result.Text)
	}
	if result.Provider != "stub" || result.Model != "stub-model" {
		t.Fatalf("unexpected result metadata: %+v", result)
	}

	if len(messages.messages) != 2 {
		t.Fatalf("expected 2 persisted messages, got %d", len(messages.messages))
	}
	for _, msg := range messages.messages {
		if strings.Contains(msg.Content, "jane@example.com") {
			t.Fatalf("persisted message leaks original value: %q", msg.Content)
		}
	}
}

func TestInvokeProviderFailure(t *testing.T) {
	provider := &stubProvider{err: errors.New("upstream 500")}
	gw := newGateway(grantedStore(), provider, nil)

	_, err := gw.Invoke(context.Background(), InvokeRequest{
		TenantID: "T1", UserID: "U1",
		Purpose: consent.PurposeLabel("analytics"),
		Text:    "hello",
	})

	var providerErr *ProviderError
	if !errors.As(err, &providerErr) {
		t.Fatalf("expected ProviderError, got %v", err)
	}
	if providerErr.Provider != "stub" {
		t.Fatalf("unexpected provider name: %q", providerErr.Provider)
	}
}

func TestInvokeRedactionTimeoutFailsClosed(t *testing.T) {
	provider := &stubProvider{}
	gw := newGateway(grantedStore(), provider, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := gw.Invoke(ctx, InvokeRequest{
		TenantID: "T1", UserID: "U1",
		Purpose: consent.PurposeLabel("analytics"),
		Text:    "Contact Jane Doe",
	})
	if !errors.Is(err, pii.ErrDetectionTimeout) {
		t.Fatalf("expected ErrDetectionTimeout, got %v", err)
	}
	if provider.calls != 0 {
		t.Fatalf("fail-closed redaction must block dispatch, provider calls = %d", provider.calls)
	}
}
