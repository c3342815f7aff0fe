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

	"github.com/benbjohnson/clock"
	_ "github.com/lib/pq"
	"golang.org/x/sync/errgroup"

	"idverify/internal/audit"
	"idverify/internal/credential"
	"idverify/internal/everify"
	"idverify/internal/philsys"
	"idverify/internal/philsys/session"
	"idverify/internal/platform/config"
	"idverify/internal/platform/httpserver"
	"idverify/internal/platform/logger"
	"idverify/internal/platform/metrics"
	platformredis "idverify/internal/platform/redis"
	httptransport "idverify/internal/transport/http"
	"idverify/internal/verify"
)

// main wires high-level dependencies, exposes the HTTP router, and keeps the
// server lifecycle small. Business logic lives in internal services packages.
func main() {
	cfg := config.FromEnv()
	log := logger.New(cfg.LogLevel)
	m := metrics.New()
	clk := clock.New()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Session cookie cache: redis when configured, in-process otherwise.
	var cookieCache session.Cache = session.NewMemory(clk, cfg.PhilSys.CookieTTL)
	if cfg.RedisURL != "" {
		rdb, err := platformredis.New(cfg.RedisURL)
		if err != nil {
			log.Error("redis connect failed", "error", err)
			os.Exit(1)
		}
		defer rdb.Close()
		cookieCache = session.NewRedis(rdb.Client, cfg.PhilSys.CookieTTL)
	}

	// Scan audit trail: postgres when configured, in-memory otherwise.
	var auditStore audit.Store = audit.NewInMemoryStore()
	if cfg.DatabaseURL != "" {
		db, err := sql.Open("postgres", cfg.DatabaseURL)
		if err != nil {
			log.Error("postgres open failed", "error", err)
			os.Exit(1)
		}
		defer db.Close()
		if err := db.PingContext(ctx); err != nil {
			log.Error("postgres ping failed", "error", err)
			os.Exit(1)
		}
		auditStore = audit.NewPostgresStore(db)
	}
	auditSvc := audit.NewService(auditStore, log, clk)

	statusClient := philsys.NewClient(philsys.Options{
		VerifyURL:    cfg.PhilSys.VerifyURL,
		APIURL:       cfg.PhilSys.APIURL,
		StaticCookie: cfg.PhilSys.Cookie,
		Cache:        cookieCache,
		Metrics:      m,
	}, log)
	registryClient := everify.NewClient(cfg.EVerify.BaseURL, log)
	envelope := credential.NewCOSEChecker()

	verifier := verify.New(verify.Options{
		Status:       statusClient,
		Registry:     registryClient,
		Envelope:     envelope,
		Recorder:     auditSvc,
		Metrics:      m,
		Clock:        clk,
		PublicKey:    cfg.PhilSys.PublicKey,
		PollInterval: cfg.EVerify.PollInterval,
		PollAttempts: cfg.EVerify.PollAttempts,
	}, log)

	handler := httptransport.NewHandler(verifier, registryClient, envelope, auditSvc, cfg.ForceOffline, log)
	router := httptransport.NewRouter(handler, log)
	srv := httpserver.New(cfg.Addr, router)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("starting idverify", "addr", cfg.Addr)
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
