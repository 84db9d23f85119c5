package pii

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestDetectPersonAndEmail(t *testing.T) {
	detector := NewDetector(50 * time.Millisecond)

	entities, err := detector.Detect(context.Background(), "Contact Jane Doe at jane@example.com")
	if err != nil {
		t.Fatalf("detect error: %v", err)
	}

	want := []Entity{
		{Type: TypePerson, Start: 8, End: 16, Value: "Jane Doe"},
		{Type: TypeEmail, Start: 20, End: 36, Value: "jane@example.com"},
	}
	if diff := cmp.Diff(want, entities); diff != "" {
		t.Fatalf("entities mismatch (-want +got):\n%s", diff)
	}
}

func TestDetectPhoneAndIBAN(t *testing.T) {
	detector := NewDetector(50 * time.Millisecond)

	entities, err := detector.Detect(context.Background(), "Pay DE89370400440532013000 or call +49 30 901820")
	if err != nil {
		t.Fatalf("detect error: %v", err)
	}
	if len(entities) != 2 {
		t.Fatalf("expected 2 entities, got %d: %+v", len(entities), entities)
	}
	if entities[0].Type != TypeIBAN || entities[0].Value != "DE89370400440532013000" {
		t.Fatalf("expected IBAN first, got %+v", entities[0])
	}
	if entities[1].Type != TypePhone {
		t.Fatalf("expected phone second, got %+v", entities[1])
	}
}

func TestDetectNoEntities(t *testing.T) {
	detector := NewDetector(50 * time.Millisecond)

	entities, err := detector.Detect(context.Background(), "the quick brown fox")
	if err != nil {
		t.Fatalf("detect error: %v", err)
	}
	if len(entities) != 0 {
		t.Fatalf("expected no entities, got %+v", entities)
	}
}

func TestDetectDeterministic(t *testing.T) {
	detector := NewDetector(50 * time.Millisecond)
	text := "Jane Doe <jane@example.com> and John Smith <john@example.com>"

	first, err := detector.Detect(context.Background(), text)
	if err != nil {
		t.Fatalf("detect error: %v", err)
	}
	second, err := detector.Detect(context.Background(), text)
	if err != nil {
		t.Fatalf("detect error: %v", err)
	}
	if diff := cmp.Diff(first, second); diff != "" {
		t.Fatalf("detection not deterministic:\n%s", diff)
	}
}

func TestDetectEmailNotSplitByWeakerRules(t *testing.T) {
	detector := NewDetector(50 * time.Millisecond)

	entities, err := detector.Detect(context.Background(), "reach me at jane.doe99@example.com today")
	if err != nil {
		t.Fatalf("detect error: %v", err)
	}
	if len(entities) != 1 || entities[0].Type != TypeEmail {
		t.Fatalf("expected single email entity, got %+v", entities)
	}
}

func TestDetectCancelledContext(t *testing.T) {
	detector := NewDetector(50 * time.Millisecond)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := detector.Detect(ctx, "Jane Doe"); !errors.Is(err, ErrDetectionTimeout) {
		t.Fatalf("expected ErrDetectionTimeout, got %v", err)
	}
}
