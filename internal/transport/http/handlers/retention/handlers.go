package retentionhandler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"privacygate/internal/domain/retention"
	"privacygate/internal/platform/jobs"
	"privacygate/internal/transport/http/api"
	"privacygate/internal/transport/http/middleware"
)

type Handler struct {
	Engine *retention.Engine
	Jobs   *jobs.Service
}

func NewHandler(engine *retention.Engine, jobsSvc *jobs.Service) *Handler {
	return &Handler{Engine: engine, Jobs: jobsSvc}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/retention", func(r chi.Router) {
		r.Get("/policies", h.handleListPolicies)
		r.Post("/policies", h.handleSetPolicy)
		r.Get("/runs", h.handleListRuns)
		r.Post("/run", h.handleRun)
	})
}

func (h *Handler) handleListPolicies(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}
	policies, err := h.Engine.ListPolicies(r.Context(), user.TenantID)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "retention_list_failed", "failed to list retention policies", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, policies, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleSetPolicy(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	var payload struct {
		DataCategory  string `json:"dataCategory"`
		RetentionDays int    `json:"retentionDays"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}

	id, err := h.Engine.SetPolicy(r.Context(), user.TenantID, payload.DataCategory, payload.RetentionDays)
	if err != nil {
		h.failRetention(w, r, err)
		return
	}
	api.Created(w, map[string]string{"id": id}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleListRuns(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}
	runs, err := h.Engine.ListRuns(r.Context(), user.TenantID)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "retention_runs_failed", "failed to list retention runs", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, runs, middleware.GetRequestID(r.Context()))
}

// handleRun purges one category or, with no category given, every category the
// tenant policy covers. dryRun counts without deleting.
func (h *Handler) handleRun(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	var payload struct {
		DataCategory string `json:"dataCategory"`
		DryRun       bool   `json:"dryRun"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil && !errors.Is(err, io.EOF) {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}

	policy, err := h.Engine.TenantPolicy(r.Context(), user.TenantID)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "retention_run_failed", "failed to load retention policy", middleware.GetRequestID(r.Context()))
		return
	}

	run := func(ctx context.Context) (any, error) {
		if payload.DataCategory != "" {
			affected, err := h.Engine.PurgeCategory(ctx, user.TenantID, policy, payload.DataCategory, payload.DryRun)
			if err != nil {
				return nil, err
			}
			return map[string]int64{payload.DataCategory: affected}, nil
		}
		return h.Engine.PurgeTenant(ctx, user.TenantID, policy, payload.DryRun)
	}

	var results any
	if h.Jobs != nil {
		results, err = h.Jobs.RunNow(r.Context(), jobs.JobRetentionSweep, user.TenantID, run)
	} else {
		results, err = run(r.Context())
	}
	if err != nil {
		h.failRetention(w, r, err)
		return
	}
	api.Success(w, results, middleware.GetRequestID(r.Context()))
}

func (h *Handler) failRetention(w http.ResponseWriter, r *http.Request, err error) {
	requestID := middleware.GetRequestID(r.Context())
	switch {
	case errors.Is(err, retention.ErrMissingParameters):
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "category required", requestID)
	case errors.Is(err, retention.ErrForbiddenCategory):
		api.Fail(w, http.StatusBadRequest, "forbidden_category", "category may not be auto-purged", requestID)
	case errors.Is(err, retention.ErrUnknownCategory):
		api.Fail(w, http.StatusBadRequest, "unknown_category", "unknown data category", requestID)
	case errors.Is(err, retention.ErrBelowFloor):
		api.Fail(w, http.StatusBadRequest, "below_floor", "retention below legal floor", requestID)
	case errors.Is(err, retention.ErrExceedsCeiling):
		api.Fail(w, http.StatusBadRequest, "exceeds_ceiling", "retention exceeds legal ceiling", requestID)
	case errors.Is(err, retention.ErrInvalidRetention):
		api.Fail(w, http.StatusBadRequest, "invalid_retention", "retention days must be positive", requestID)
	case errors.Is(err, retention.ErrNoRuleForCategory):
		api.Fail(w, http.StatusBadRequest, "no_rule", "policy has no rule for category", requestID)
	default:
		api.Fail(w, http.StatusInternalServerError, "retention_failed", "retention operation failed", requestID)
	}
}
