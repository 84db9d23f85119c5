package consenthandler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"privacygate/internal/domain/audit"
	"privacygate/internal/domain/consent"
	"privacygate/internal/transport/http/api"
	"privacygate/internal/transport/http/middleware"
)

type Handler struct {
	Service  *consent.Service
	Gate     *consent.Gate
	Recorder audit.Recorder
}

func NewHandler(service *consent.Service, gate *consent.Gate, recorder audit.Recorder) *Handler {
	return &Handler{Service: service, Gate: gate, Recorder: recorder}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/purposes", h.handleListPurposes)
	r.Route("/consents", func(r chi.Router) {
		r.Get("/", h.handleListConsents)
		r.Get("/check", h.handleCheck)
		r.Post("/grant", h.handleGrant)
		r.Post("/deny", h.handleDeny)
		r.Post("/{consentID}/revoke", h.handleRevoke)
	})
}

type decisionPayload struct {
	PurposeID    string `json:"purposeId"`
	PurposeLabel string `json:"purpose"`
}

func (p decisionPayload) identifier() (consent.PurposeIdentifier, bool) {
	if p.PurposeID != "" {
		return consent.PurposeID(p.PurposeID), true
	}
	if p.PurposeLabel != "" {
		return consent.PurposeLabel(p.PurposeLabel), true
	}
	return consent.PurposeIdentifier{}, false
}

func (h *Handler) handleListPurposes(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}
	purposes, err := h.Service.ListPurposes(r.Context(), user.TenantID)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "purpose_list_failed", "failed to list purposes", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, purposes, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleListConsents(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}
	consents, err := h.Service.ListConsents(r.Context(), user.TenantID, user.UserID)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "consent_list_failed", "failed to list consents", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, consents, middleware.GetRequestID(r.Context()))
}

// handleCheck answers whether the caller may be processed for a purpose right
// now. The answer is computed fresh on every call.
func (h *Handler) handleCheck(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}
	payload := decisionPayload{
		PurposeID:    r.URL.Query().Get("purposeId"),
		PurposeLabel: r.URL.Query().Get("purpose"),
	}
	purpose, ok := payload.identifier()
	if !ok {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "purpose id or label required", middleware.GetRequestID(r.Context()))
		return
	}

	if err := h.Gate.Check(r.Context(), user.TenantID, user.UserID, purpose); err != nil {
		h.failConsent(w, r, err)
		return
	}
	api.Success(w, map[string]bool{"allowed": true}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleGrant(w http.ResponseWriter, r *http.Request) {
	h.handleDecision(w, r, true)
}

func (h *Handler) handleDeny(w http.ResponseWriter, r *http.Request) {
	h.handleDecision(w, r, false)
}

func (h *Handler) handleDecision(w http.ResponseWriter, r *http.Request, granted bool) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}
	var payload decisionPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}
	purpose, ok := payload.identifier()
	if !ok {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "purpose id or label required", middleware.GetRequestID(r.Context()))
		return
	}

	var id string
	var err error
	action := audit.ActionConsentGranted
	if granted {
		id, err = h.Service.Grant(r.Context(), user.TenantID, user.UserID, purpose)
	} else {
		action = audit.ActionConsentDenied
		id, err = h.Service.Deny(r.Context(), user.TenantID, user.UserID, purpose)
	}
	if err != nil {
		h.failConsent(w, r, err)
		return
	}

	h.record(r, audit.Event{
		TenantID: user.TenantID,
		ActorID:  user.UserID,
		Action:   action,
		Meta:     map[string]any{"consent_id": id},
	})
	api.Created(w, map[string]string{"id": id}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleRevoke(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}
	consentID := chi.URLParam(r, "consentID")
	if err := h.Service.Revoke(r.Context(), user.TenantID, consentID); err != nil {
		h.failConsent(w, r, err)
		return
	}

	h.record(r, audit.Event{
		TenantID: user.TenantID,
		ActorID:  user.UserID,
		Action:   audit.ActionConsentRevoked,
		Meta:     map[string]any{"consent_id": consentID},
	})
	api.Success(w, map[string]string{"status": "revoked"}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) failConsent(w http.ResponseWriter, r *http.Request, err error) {
	requestID := middleware.GetRequestID(r.Context())
	switch {
	case errors.Is(err, consent.ErrMissingParameters):
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "purpose id or label required", requestID)
	case errors.Is(err, consent.ErrNotFound):
		api.Fail(w, http.StatusNotFound, "consent_not_found", "no consent on record for purpose", requestID)
	case errors.Is(err, consent.ErrRevoked):
		api.Fail(w, http.StatusForbidden, "consent_revoked", "consent has been revoked", requestID)
	case errors.Is(err, consent.ErrDenied):
		api.Fail(w, http.StatusForbidden, "consent_denied", "consent was refused", requestID)
	default:
		api.Fail(w, http.StatusInternalServerError, "consent_failed", "consent operation failed", requestID)
	}
}

func (h *Handler) record(r *http.Request, event audit.Event) {
	if h.Recorder == nil {
		return
	}
	event.RequestID = middleware.GetRequestID(r.Context())
	if err := h.Recorder.Record(r.Context(), event); err != nil {
		slog.Warn("audit record failed", "action", event.Action, "err", err)
	}
}
