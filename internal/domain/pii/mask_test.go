package pii

import (
	"context"
	"strings"
	"testing"
	"time"
)

func detect(t *testing.T, text string) []Entity {
	t.Helper()
	entities, err := NewDetector(50 * time.Millisecond).Detect(context.Background(), text)
	if err != nil {
		t.Fatalf("detect error: %v", err)
	}
	return entities
}

func TestMaskReplacesSpans(t *testing.T) {
	text := "Contact Jane Doe at jane@example.com"
	masked, mapping := Mask(text, detect(t, text))

	if strings.Contains(masked, "Jane Doe") || strings.Contains(masked, "jane@example.com") {
		t.Fatalf("masked text leaks originals: %q", masked)
	}
	if masked != "Contact [PERSON_1] at [EMAIL_1]" {
		t.Fatalf("unexpected masked text: %q", masked)
	}
	if mapping.Len() != 2 {
		t.Fatalf("expected 2 mappings, got %d", mapping.Len())
	}

	original, ok := mapping.Original("[PERSON_1]")
	if !ok || original != "Jane Doe" {
		t.Fatalf("mapping lost person value: %q", original)
	}
}

func TestMaskRepeatedValueReusesPlaceholder(t *testing.T) {
	text := "Email jane@example.com or jane@example.com again"
	masked, mapping := Mask(text, detect(t, text))

	if strings.Count(masked, "[EMAIL_1]") != 2 {
		t.Fatalf("expected placeholder reuse, got %q", masked)
	}
	if mapping.Len() != 1 {
		t.Fatalf("expected single mapping entry, got %d", mapping.Len())
	}
}

func TestMaskOrdinalsPerType(t *testing.T) {
	text := "Jane Doe wrote to john@example.com and anna@example.com"
	masked, _ := Mask(text, detect(t, text))

	for _, placeholder := range []string{"[PERSON_1]", "[EMAIL_1]", "[EMAIL_2]"} {
		if !strings.Contains(masked, placeholder) {
			t.Fatalf("expected %s in %q", placeholder, masked)
		}
	}
}

func TestRoundTrip(t *testing.T) {
	texts := []string{
		"Contact Jane Doe at jane@example.com",
		"Pay DE89370400440532013000 or call +49 30 901820",
		"Jane Doe, John Smith and jane@example.com, +1 (555) 010-2030",
		"no personal data here",
	}
	for _, text := range texts {
		masked, mapping := Mask(text, detect(t, text))
		restored := Restore(masked, mapping)
		if restored != text {
			t.Fatalf("round trip mismatch:\n  in:  %q\n  out: %q", text, restored)
		}
		if strings.Contains(restored, "[PERSON_") || strings.Contains(restored, "[EMAIL_") {
			t.Fatalf("residual placeholder in %q", restored)
		}
	}
}

func TestRestoreModelOutput(t *testing.T) {
	text := "Contact Jane Doe at jane@example.com"
	_, mapping := Mask(text, detect(t, text))

	modelOut := "Sure - I emailed [PERSON_1] via [EMAIL_1]."
	restored := Restore(modelOut, mapping)

	if restored != "Sure - I emailed Jane Doe via jane@example.com." {
		t.Fatalf("unexpected restored output: %q", restored)
	}
}

func TestRestoreWithEmptyMapping(t *testing.T) {
	if got := Restore("unchanged", newMapping()); got != "unchanged" {
		t.Fatalf("expected passthrough, got %q", got)
	}
	if got := Restore("unchanged", nil); got != "unchanged" {
		t.Fatalf("expected nil mapping passthrough, got %q", got)
	}
}
