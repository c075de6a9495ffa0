package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"peakform/internal/directory"
	dircache "peakform/internal/directory/cache"
	dirmemory "peakform/internal/directory/store/memory"
	dirpostgres "peakform/internal/directory/store/postgres"
	evalhandler "peakform/internal/evaluation/handler"
	evalmetrics "peakform/internal/evaluation/metrics"
	"peakform/internal/evaluation/service"
	evalstore "peakform/internal/evaluation/store"
	evalmemory "peakform/internal/evaluation/store/memory"
	evalpostgres "peakform/internal/evaluation/store/postgres"
	"peakform/internal/evaluation/verification"
	jwttoken "peakform/internal/jwt_token"
	"peakform/internal/notify"
	"peakform/internal/platform/config"
	"peakform/internal/platform/httpserver"
	"peakform/internal/platform/logger"
	"peakform/internal/platform/postgres"
	platformredis "peakform/internal/platform/redis"
	"peakform/internal/proximity"
	proxhandler "peakform/internal/proximity/handler"
)

// main wires high-level dependencies, exposes the HTTP router, and keeps the
// server lifecycle small. Business logic lives in internal services packages.
func main() {
	cfg := config.FromEnv()
	log := logger.New()
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Persistence. Without DATABASE_URL everything runs in memory, which is
	// enough for local development.
	var (
		db       *sql.DB
		store    evalstore.Store
		dirStore directory.Store
	)
	if cfg.DatabaseURL != "" {
		var err error
		db, err = postgres.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Error("postgres connection failed", "error", err)
			os.Exit(1)
		}
		defer db.Close()

		evalPG := evalpostgres.New(db)
		dirPG := dirpostgres.New(db)
		if err := evalPG.Migrate(ctx); err != nil {
			log.Error("evaluation schema migration failed", "error", err)
			os.Exit(1)
		}
		if err := dirPG.Migrate(ctx); err != nil {
			log.Error("directory schema migration failed", "error", err)
			os.Exit(1)
		}
		store, dirStore = evalPG, dirPG
	} else {
		log.Warn("DATABASE_URL not set, using in-memory stores")
		store, dirStore = evalmemory.NewInMemoryStore(), dirmemory.NewInMemoryStore()
	}

	redisClient, err := platformredis.New(cfg.Redis)
	if err != nil {
		log.Error("redis connection failed", "error", err)
		os.Exit(1)
	}

	var dir directory.Directory = dirStore
	if redisClient != nil {
		defer redisClient.Close()
		dir = dircache.New(dirStore, redisClient.Client, log)
	}

	var emitter notify.Emitter = notify.NopEmitter{}
	if len(cfg.KafkaBrokers) > 0 {
		kafkaEmitter, err := notify.NewKafkaEmitter(cfg.KafkaBrokers, cfg.KafkaTopic, log)
		if err != nil {
			log.Error("kafka connection failed", "error", err)
			os.Exit(1)
		}
		defer kafkaEmitter.Close()
		emitter = kafkaEmitter
	} else {
		log.Warn("KAFKA_BROKERS not set, notifications disabled")
	}

	m := evalmetrics.New()
	issuer := verification.NewIssuer()
	ledger := service.NewLedger(store, dir, issuer,
		service.WithEmitter(emitter),
		service.WithMetrics(m),
		service.WithLogger(log),
		service.WithCooldown(cfg.RejectionCooldown),
	)
	redeemer := service.NewRedeemer(store, dir,
		service.WithMetrics(m),
		service.WithLogger(log),
	)
	matcher := proximity.NewMatcher(dir, log)

	jwtService := jwttoken.NewJWTService(cfg.JWTSigningKey, cfg.JWTIssuer, cfg.JWTAudience)
	validator := jwttoken.NewJWTServiceAdapter(jwtService)

	router := newRouter(
		evalhandler.New(ledger, redeemer, log, validator),
		proxhandler.New(matcher, log, validator),
	)

	srv := httpserver.New(cfg.Addr, router)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("starting peakform", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
	log.Info("shutdown complete")
}

// newRouter assembles the full HTTP surface. Each handler mounts its own
// subrouter at a distinct prefix.
func newRouter(eval *evalhandler.Handler, prox *proxhandler.Handler) chi.Router {
	router := chi.NewRouter()
	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	router.Method(http.MethodGet, "/metrics", promhttp.Handler())
	eval.Register(router)
	prox.Register(router)
	return router
}
