package server

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"privacygate/internal/db"
	"privacygate/internal/domain/audit"
	"privacygate/internal/domain/consent"
	"privacygate/internal/domain/export"
	"privacygate/internal/domain/gateway"
	"privacygate/internal/domain/pii"
	"privacygate/internal/domain/retention"
	"privacygate/internal/platform/config"
	"privacygate/internal/platform/jobs"
	"privacygate/internal/platform/metrics"
	"privacygate/internal/transport/http/api"
	audithandler "privacygate/internal/transport/http/handlers/audit"
	consenthandler "privacygate/internal/transport/http/handlers/consent"
	exporthandler "privacygate/internal/transport/http/handlers/export"
	gatewayhandler "privacygate/internal/transport/http/handlers/gateway"
	retentionhandler "privacygate/internal/transport/http/handlers/retention"
	"privacygate/internal/transport/http/middleware"
)

const maxRequestBody = 1 << 20

func Run() {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("config invalid: %v", err)
	}

	ctx := context.Background()
	pool, err := db.Connect(ctx, cfg)
	if err != nil {
		log.Fatalf("db connect failed: %v", err)
	}
	defer pool.Close()

	if cfg.RunMigrations {
		if err := db.Migrate(ctx, pool, "migrations"); err != nil {
			log.Fatalf("migrations failed: %v", err)
		}
	}
	if cfg.RunSeed {
		if err := db.Seed(ctx, pool, cfg); err != nil {
			log.Fatalf("seed failed: %v", err)
		}
	}

	recorder := audit.New(pool)
	collector := metrics.New()

	consentStore := consent.NewStore(pool)
	gate := consent.NewGate(consentStore)
	consentService := consent.NewService(consentStore)

	redactor := pii.NewRedactor(cfg.PIIBudget, cfg.PIIFailMode == config.PIIFailOpen, recorder)
	provider := gateway.NewHTTPProvider("openai", cfg.ProviderBaseURL, cfg.ProviderAPIKey, cfg.ProviderModel, cfg.ProviderTimeout)
	gw := gateway.New(gate, redactor, provider, gateway.NewStore(pool), collector)

	exportEngine := export.NewEngine(export.NewStore(pool), recorder, cfg.ExportDownloadLimit, cfg.ExportTTL)
	retentionEngine := retention.NewEngine(retention.NewStore(pool), recorder, collector)

	jobsSvc := jobs.New(pool, retentionEngine)
	jobsSvc.Start(ctx, cfg.RetentionInterval)

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(middleware.Metrics(collector))
	router.Use(middleware.BodyLimit(maxRequestBody))
	router.Use(middleware.Auth(cfg.JWTSecret))

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	router.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := pool.Ping(ctx); err != nil {
			http.Error(w, "db not ready", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	if cfg.MetricsEnabled {
		router.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
			api.Success(w, collector.Snapshot(), middleware.GetRequestID(r.Context()))
		})
	}

	router.Route("/api/v1", func(r chi.Router) {
		consenthandler.NewHandler(consentService, gate, recorder).RegisterRoutes(r)
		gatewayhandler.NewHandler(gw).RegisterRoutes(r)
		exporthandler.NewHandler(exportEngine, collector).RegisterRoutes(r)
		retentionhandler.NewHandler(retentionEngine, jobsSvc).RegisterRoutes(r)
		audithandler.NewHandler(recorder).RegisterRoutes(r)
	})

	log.Printf("privacygate listening on %s", cfg.Addr)
	if err := http.ListenAndServe(cfg.Addr, router); err != nil {
		log.Fatalf("server failed: %v", err)
	}
}
