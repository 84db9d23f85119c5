package gateway

import (
	"context"
	"log/slog"
	"strings"

	"privacygate/internal/domain/consent"
	"privacygate/internal/domain/pii"
	"privacygate/internal/platform/metrics"
)

// Gateway runs one synchronous pipeline per invocation: validate, consent
// gate, redact, dispatch, restore. Invocations share no mutable state beyond
// the consent store, so concurrent calls for different users are independent.
type Gateway struct {
	gate     *consent.Gate
	redactor *pii.Redactor
	provider Provider
	messages MessageStore
	metrics  *metrics.Collector
}

func New(gate *consent.Gate, redactor *pii.Redactor, provider Provider, messages MessageStore, collector *metrics.Collector) *Gateway {
	return &Gateway{
		gate:     gate,
		redactor: redactor,
		provider: provider,
		messages: messages,
		metrics:  collector,
	}
}

// Invoke forwards one user text to the provider. Consent and redaction both
// fail closed: the provider is never called unless they succeed, and the
// redaction mapping is dropped before returning.
func (g *Gateway) Invoke(ctx context.Context, req InvokeRequest) (*Result, error) {
	if strings.TrimSpace(req.TenantID) == "" || strings.TrimSpace(req.UserID) == "" ||
		strings.TrimSpace(req.Purpose.Value) == "" || strings.TrimSpace(req.Text) == "" {
		return nil, ErrMissingParameters
	}

	if err := g.gate.Check(ctx, req.TenantID, req.UserID, req.Purpose); err != nil {
		g.recordCall(true)
		return nil, &ConsentError{Err: err}
	}

	masked, mapping, err := g.redactor.Redact(ctx, req.TenantID, req.UserID, req.Text)
	if err != nil {
		g.recordCall(true)
		return nil, err
	}
	if g.metrics != nil {
		g.metrics.RecordPIIDetections(mapping.Len())
	}

	resp, err := g.provider.Complete(ctx, ProviderRequest{Text: masked})
	if err != nil {
		g.recordCall(true)
		return nil, &ProviderError{Provider: g.provider.Name(), Err: err}
	}

	restored := pii.Restore(resp.Text, mapping)

	g.saveMessage(ctx, Message{
		TenantID: req.TenantID, UserID: req.UserID,
		Role: RoleUser, Content: masked,
		Provider: g.provider.Name(), Model: resp.Model,
	})
	g.saveMessage(ctx, Message{
		TenantID: req.TenantID, UserID: req.UserID,
		Role: RoleAssistant, Content: resp.Text,
		Provider: g.provider.Name(), Model: resp.Model,
	})

	g.recordCall(false)
	return &Result{Text: restored, Provider: g.provider.Name(), Model: resp.Model}, nil
}

func (g *Gateway) saveMessage(ctx context.Context, msg Message) {
	if g.messages == nil {
		return
	}
	if err := g.messages.SaveMessage(ctx, msg); err != nil {
		slog.Warn("message save failed", "tenantId", msg.TenantID, "role", msg.Role, "err", err)
	}
}

func (g *Gateway) recordCall(blocked bool) {
	if g.metrics != nil {
		g.metrics.RecordGatewayCall(blocked)
	}
}
