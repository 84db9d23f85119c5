package gateway

import "context"

type ProviderRequest struct {
	Model string
	Text  string
}

type ProviderResponse struct {
	Text  string
	Model string
}

// Provider is the adapter for one language-model backend. It only ever sees
// redacted text.
type Provider interface {
	Name() string
	Complete(ctx context.Context, req ProviderRequest) (*ProviderResponse, error)
}
