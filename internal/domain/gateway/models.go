package gateway

import "privacygate/internal/domain/consent"

type InvokeRequest struct {
	TenantID string                    `json:"tenantId"`
	UserID   string                    `json:"userId"`
	Purpose  consent.PurposeIdentifier `json:"purpose"`
	Text     string                    `json:"text"`
}

// Result deliberately carries no trace of the redaction mapping.
type Result struct {
	Text     string `json:"text"`
	Provider string `json:"provider"`
	Model    string `json:"model"`
}

// Message is a persisted conversation record. Content is always the redacted
// form; originals and mappings never reach storage.
type Message struct {
	TenantID string
	UserID   string
	Role     string
	Content  string
	Provider string
	Model    string
}

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)
