package gatewayhandler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"privacygate/internal/domain/consent"
	"privacygate/internal/domain/gateway"
	"privacygate/internal/domain/pii"
	"privacygate/internal/transport/http/api"
	"privacygate/internal/transport/http/middleware"
)

type Handler struct {
	Gateway *gateway.Gateway
}

func NewHandler(gw *gateway.Gateway) *Handler {
	return &Handler{Gateway: gw}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/completions", h.handleComplete)
}

type completionPayload struct {
	PurposeID    string `json:"purposeId"`
	PurposeLabel string `json:"purpose"`
	Text         string `json:"text"`
}

func (h *Handler) handleComplete(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	var payload completionPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}

	var purpose consent.PurposeIdentifier
	switch {
	case payload.PurposeID != "":
		purpose = consent.PurposeID(payload.PurposeID)
	case payload.PurposeLabel != "":
		purpose = consent.PurposeLabel(payload.PurposeLabel)
	default:
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "purpose id or label required", middleware.GetRequestID(r.Context()))
		return
	}

	result, err := h.Gateway.Invoke(r.Context(), gateway.InvokeRequest{
		TenantID: user.TenantID,
		UserID:   user.UserID,
		Purpose:  purpose,
		Text:     payload.Text,
	})
	if err != nil {
		h.failInvoke(w, r, err)
		return
	}
	api.Success(w, result, middleware.GetRequestID(r.Context()))
}

func (h *Handler) failInvoke(w http.ResponseWriter, r *http.Request, err error) {
	requestID := middleware.GetRequestID(r.Context())
	var consentErr *gateway.ConsentError
	var providerErr *gateway.ProviderError
	switch {
	case errors.Is(err, gateway.ErrMissingParameters):
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "purpose and text required", requestID)
	case errors.As(err, &consentErr):
		switch {
		case errors.Is(err, consent.ErrRevoked):
			api.Fail(w, http.StatusForbidden, "consent_revoked", "consent has been revoked", requestID)
		case errors.Is(err, consent.ErrDenied):
			api.Fail(w, http.StatusForbidden, "consent_denied", "consent was refused", requestID)
		case errors.Is(err, consent.ErrNotFound):
			api.Fail(w, http.StatusForbidden, "consent_required", "no consent on record for purpose", requestID)
		default:
			api.Fail(w, http.StatusForbidden, "consent_required", "consent check failed", requestID)
		}
	case errors.Is(err, pii.ErrDetectionTimeout):
		api.Fail(w, http.StatusServiceUnavailable, "redaction_timeout", "request could not be screened in time", requestID)
	case errors.As(err, &providerErr):
		api.Fail(w, http.StatusBadGateway, "provider_failed", "model provider call failed", requestID)
	default:
		api.Fail(w, http.StatusInternalServerError, "completion_failed", "completion failed", requestID)
	}
}
