package retention

import (
	"errors"
	"testing"
)

func TestValidatePolicyAcceptsLegalRules(t *testing.T) {
	policy := Policy{Rules: map[string]int{
		CategoryConversations: 365,
		CategoryAudit:         400,
		CategoryAccessLogs:    90,
		CategoryExports:       7,
		CategoryJobRuns:       30,
	}}
	if err := ValidatePolicy(policy); err != nil {
		t.Fatalf("expected valid policy, got %v", err)
	}
}

func TestValidatePolicyRejectsForbiddenCategory(t *testing.T) {
	policy := Policy{Rules: map[string]int{CategoryConsents: 30}}
	err := ValidatePolicy(policy)
	if !errors.Is(err, ErrForbiddenCategory) {
		t.Fatalf("expected ErrForbiddenCategory, got %v", err)
	}
}

func TestValidatePolicyRejectsUnknownCategory(t *testing.T) {
	policy := Policy{Rules: map[string]int{"selfies": 30}}
	err := ValidatePolicy(policy)
	if !errors.Is(err, ErrUnknownCategory) {
		t.Fatalf("expected ErrUnknownCategory, got %v", err)
	}
}

func TestValidatePolicyEnforcesCeiling(t *testing.T) {
	policy := Policy{Rules: map[string]int{CategoryConversations: 731}}
	err := ValidatePolicy(policy)
	if !errors.Is(err, ErrExceedsCeiling) {
		t.Fatalf("expected ErrExceedsCeiling, got %v", err)
	}
	policy = Policy{Rules: map[string]int{CategoryConversations: 730}}
	if err := ValidatePolicy(policy); err != nil {
		t.Fatalf("ceiling itself should be legal, got %v", err)
	}
}

func TestValidatePolicyEnforcesFloor(t *testing.T) {
	policy := Policy{Rules: map[string]int{CategoryAudit: 180}}
	err := ValidatePolicy(policy)
	if !errors.Is(err, ErrBelowFloor) {
		t.Fatalf("expected ErrBelowFloor, got %v", err)
	}
	policy = Policy{Rules: map[string]int{CategoryAudit: 365}}
	if err := ValidatePolicy(policy); err != nil {
		t.Fatalf("floor itself should be legal, got %v", err)
	}
}

func TestValidatePolicyRejectsNonPositiveRetention(t *testing.T) {
	for _, days := range []int{0, -5} {
		policy := Policy{Rules: map[string]int{CategoryExports: days}}
		if err := ValidatePolicy(policy); !errors.Is(err, ErrInvalidRetention) {
			t.Fatalf("days=%d: expected ErrInvalidRetention, got %v", days, err)
		}
	}
}
