package pii

import "errors"

type EntityType string

const (
	TypePerson EntityType = "PERSON"
	TypeEmail  EntityType = "EMAIL"
	TypePhone  EntityType = "PHONE"
	TypeIBAN   EntityType = "IBAN"
)

// Entity is a detected personal-data span. Entities exist only for the
// duration of one redact/restore cycle and are never persisted.
type Entity struct {
	Type  EntityType
	Start int
	End   int
	Value string
}

var ErrDetectionTimeout = errors.New("pii detection exceeded budget")
