package exporthandler

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"privacygate/internal/domain/export"
	"privacygate/internal/platform/metrics"
	"privacygate/internal/transport/http/api"
	"privacygate/internal/transport/http/middleware"
)

type Handler struct {
	Engine  *export.Engine
	Metrics *metrics.Collector
}

func NewHandler(engine *export.Engine, collector *metrics.Collector) *Handler {
	return &Handler{Engine: engine, Metrics: collector}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/exports", func(r chi.Router) {
		r.Post("/", h.handleRequest)
		r.Get("/{token}/download", h.handleDownload)
		r.Delete("/{exportID}", h.handleDelete)
	})
}

// handleRequest returns the receipt exactly once. The password inside it is
// not stored anywhere, so this response is the only chance to capture it.
func (h *Handler) handleRequest(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	receipt, err := h.Engine.Request(r.Context(), user.TenantID, user.UserID)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "export_failed", "failed to build export", middleware.GetRequestID(r.Context()))
		return
	}
	api.Created(w, receipt, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleDownload(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	token := chi.URLParam(r, "token")
	ciphertext, err := h.Engine.Download(r.Context(), token, user.UserID, user.TenantID)
	if err != nil {
		h.failDownload(w, r, err)
		return
	}
	if h.Metrics != nil {
		h.Metrics.RecordExportDownload()
	}

	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=export-%s.bin", token))
	if _, err := w.Write(ciphertext); err != nil {
		slog.Warn("export download write failed", "err", err)
	}
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	exportID := chi.URLParam(r, "exportID")
	if err := h.Engine.Delete(r.Context(), user.TenantID, exportID); err != nil {
		if errors.Is(err, export.ErrMissingParameters) {
			api.Fail(w, http.StatusBadRequest, "invalid_payload", "export id required", middleware.GetRequestID(r.Context()))
			return
		}
		api.Fail(w, http.StatusInternalServerError, "export_delete_failed", "failed to delete export", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, map[string]string{"status": "deleted"}, middleware.GetRequestID(r.Context()))
}

// failDownload reports ownership failures as plain not-found so the endpoint
// leaks nothing about which tokens exist.
func (h *Handler) failDownload(w http.ResponseWriter, r *http.Request, err error) {
	requestID := middleware.GetRequestID(r.Context())
	switch {
	case errors.Is(err, export.ErrMissingParameters):
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "download token required", requestID)
	case errors.Is(err, export.ErrNotOwned):
		api.Fail(w, http.StatusNotFound, "not_found", "export not found", requestID)
	case errors.Is(err, export.ErrExpired):
		api.Fail(w, http.StatusGone, "export_expired", "export has expired", requestID)
	case errors.Is(err, export.ErrLimitReached):
		api.Fail(w, http.StatusGone, "download_limit_reached", "download limit reached", requestID)
	default:
		api.Fail(w, http.StatusInternalServerError, "export_download_failed", "failed to download export", requestID)
	}
}
