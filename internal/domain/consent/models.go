package consent

import "time"

type PurposeKind string

const (
	ByID    PurposeKind = "by_id"
	ByLabel PurposeKind = "by_label"
)

// PurposeIdentifier is a tagged reference to a purpose. An ID is
// authoritative; a label is the legacy addressing mode.
type PurposeIdentifier struct {
	Kind  PurposeKind `json:"kind"`
	Value string      `json:"value"`
}

func PurposeID(id string) PurposeIdentifier {
	return PurposeIdentifier{Kind: ByID, Value: id}
}

func PurposeLabel(label string) PurposeIdentifier {
	return PurposeIdentifier{Kind: ByLabel, Value: label}
}

type Purpose struct {
	ID              string `json:"id"`
	TenantID        string `json:"tenantId"`
	Label           string `json:"label"`
	RequiresConsent bool   `json:"requiresConsent"`
}

// Consent rows are never physically removed: revocation sets RevokedAt and a
// revoked row blocks regardless of Granted.
type Consent struct {
	ID           string     `json:"id"`
	TenantID     string     `json:"tenantId"`
	UserID       string     `json:"userId"`
	PurposeID    string     `json:"purposeId"`
	PurposeLabel string     `json:"purpose"`
	Granted      bool       `json:"granted"`
	GrantedAt    time.Time  `json:"grantedAt"`
	RevokedAt    *time.Time `json:"revokedAt,omitempty"`
}
