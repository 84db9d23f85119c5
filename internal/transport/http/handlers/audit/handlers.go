package audithandler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"privacygate/internal/domain/audit"
	"privacygate/internal/transport/http/api"
	"privacygate/internal/transport/http/middleware"
	"privacygate/internal/transport/http/shared"
)

type Lister interface {
	List(ctx context.Context, tenantID string, filter audit.Filter, limit, offset int) ([]audit.Event, error)
	Count(ctx context.Context, tenantID string, filter audit.Filter) (int, error)
}

type Handler struct {
	Audit Lister
}

func NewHandler(lister Lister) *Handler {
	return &Handler{Audit: lister}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/audit-events", h.handleList)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	filter := audit.Filter{
		Action:  r.URL.Query().Get("action"),
		ActorID: r.URL.Query().Get("actorId"),
	}
	page := shared.ParsePagination(r, 100, 500)

	total, err := h.Audit.Count(r.Context(), user.TenantID, filter)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "audit_list_failed", "failed to count audit events", middleware.GetRequestID(r.Context()))
		return
	}
	events, err := h.Audit.List(r.Context(), user.TenantID, filter, page.Limit, page.Offset)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "audit_list_failed", "failed to list audit events", middleware.GetRequestID(r.Context()))
		return
	}

	w.Header().Set("X-Total-Count", strconv.Itoa(total))
	api.Success(w, events, middleware.GetRequestID(r.Context()))
}
