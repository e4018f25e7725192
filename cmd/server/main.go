package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"carehub/internal/platform/config"
	"carehub/internal/platform/httpserver"
	"carehub/internal/platform/logger"
	platformmetrics "carehub/internal/platform/metrics"
	"carehub/internal/platform/middleware"
	platformredis "carehub/internal/platform/redis"
	"carehub/internal/registry/cache"
	"carehub/internal/registry/gate"
	registryhandler "carehub/internal/registry/handler"
	registrymetrics "carehub/internal/registry/metrics"
	"carehub/internal/registry/service"
	profilestore "carehub/internal/registry/store/profile"
	id "carehub/pkg/domain"
	"carehub/pkg/platform/audit"
	auditpublisher "carehub/pkg/platform/audit/publisher"
	auditmemory "carehub/pkg/platform/audit/store/memory"
	auditworker "carehub/pkg/platform/audit/worker"
)

// main wires high-level dependencies, exposes the HTTP router, and keeps the
// server lifecycle small. Business logic lives in the registry packages.
func main() {
	cfg := config.FromEnv()
	log := logger.New(cfg.LogLevel)

	admin, err := id.Parse(cfg.AdminIdentity)
	if err != nil {
		log.Error("CAREHUB_ADMIN_IDENTITY must be a valid identity", "error", err)
		os.Exit(1)
	}
	g, err := gate.New(admin)
	if err != nil {
		log.Error("platform gate init failed", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var profiles profilestore.Store
	if cfg.PostgresURL != "" {
		db, err := sql.Open("pgx", cfg.PostgresURL)
		if err != nil {
			log.Error("postgres open failed", "error", err)
			os.Exit(1)
		}
		defer db.Close()
		if err := db.PingContext(ctx); err != nil {
			log.Error("postgres ping failed", "error", err)
			os.Exit(1)
		}
		profiles = profilestore.NewPostgres(db)
	} else {
		log.Warn("POSTGRES_URL not set, using in-memory profile store")
		profiles = profilestore.NewInMemory()
	}

	opts := []service.Option{
		service.WithLogger(log),
		service.WithMetrics(registrymetrics.New()),
	}

	redisClient, err := platformredis.New(cfg.Redis)
	if err != nil {
		log.Error("redis init failed", "error", err)
		os.Exit(1)
	}
	if redisClient != nil {
		defer redisClient.Close()
		opts = append(opts, service.WithScoreCache(cache.New(redisClient.Client, 0)))
	}

	group, ctx := errgroup.WithContext(ctx)

	if len(cfg.KafkaBrokers) > 0 {
		kafka, err := auditpublisher.NewKafka(ctx, cfg.KafkaBrokers, cfg.KafkaTopic)
		if err != nil {
			log.Error("kafka audit publisher init failed", "error", err)
			os.Exit(1)
		}
		defer kafka.Close()
		opts = append(opts, service.WithAuditPublisher(kafka))
	} else {
		// No broker configured: keep the audit trail in process so the
		// pipeline stays exercised in development.
		inbox := make(chan audit.Event, 256)
		opts = append(opts, service.WithAuditPublisher(audit.ChannelPublisher{C: inbox}))
		w := auditworker.NewWorker(auditmemory.NewInMemoryStore(), inbox)
		group.Go(func() error {
			if err := w.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		})
	}

	svc := service.New(profiles, g, opts...)
	h := registryhandler.New(svc, log)

	validator := middleware.NewHMACValidator(cfg.JWTSigningKey)
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(platformmetrics.New().Middleware)
	router.Group(h.RegisterReads)
	router.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth(validator, log))
		h.Register(r)
	})
	router.Handle("/metrics", promhttp.Handler())
	router.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	srv := httpserver.New(cfg.Addr, router)
	log.Info("starting carehub registry", "addr", cfg.Addr, "admin", admin.String())

	group.Go(func() error {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	group.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := group.Wait(); err != nil {
		log.Error("server exited", "error", err)
		os.Exit(1)
	}
}
