package pii

import (
	"context"
	"log/slog"
	"time"

	"privacygate/internal/domain/audit"
)

// Redactor ties detection, masking and the audit contract together for one
// gateway invocation.
type Redactor struct {
	detector *Detector
	failOpen bool
	recorder audit.Recorder
}

// NewRedactor builds a redactor with the given detection budget. failOpen
// selects the degradation policy when detection exceeds its budget: open
// forwards the original text with a warning event, closed blocks the call.
func NewRedactor(budget time.Duration, failOpen bool, recorder audit.Recorder) *Redactor {
	return &Redactor{
		detector: NewDetector(budget),
		failOpen: failOpen,
		recorder: recorder,
	}
}

// Redact detects and masks personal data in text. The returned mapping is
// call-scoped; the caller hands it to Restore and then drops it.
func (r *Redactor) Redact(ctx context.Context, tenantID, actorID, text string) (string, *Mapping, error) {
	start := time.Now()

	entities, err := r.detector.Detect(ctx, text)
	if err != nil {
		r.record(ctx, audit.Event{
			TenantID: tenantID,
			ActorID:  actorID,
			Action:   audit.ActionPIIDetectionTimeout,
			Meta:     map[string]any{"budget_ms": r.detector.budget.Milliseconds()},
		})
		if r.failOpen {
			return text, newMapping(), nil
		}
		return "", nil, err
	}

	if len(entities) > 0 {
		r.record(ctx, audit.Event{
			TenantID: tenantID,
			ActorID:  actorID,
			Action:   audit.ActionPIIDetected,
			Meta: map[string]any{
				"pii_types": Types(entities),
				"pii_count": len(entities),
			},
		})
	}

	masked, mapping := Mask(text, entities)

	r.record(ctx, audit.Event{
		TenantID: tenantID,
		ActorID:  actorID,
		Action:   audit.ActionPIIRedactionDone,
		Meta: map[string]any{
			"duration_ms": time.Since(start).Milliseconds(),
			"pii_count":   len(entities),
		},
	})

	return masked, mapping, nil
}

func (r *Redactor) record(ctx context.Context, event audit.Event) {
	if r.recorder == nil {
		return
	}
	if err := r.recorder.Record(ctx, event); err != nil {
		slog.Warn("audit record failed", "action", event.Action, "err", err)
	}
}
