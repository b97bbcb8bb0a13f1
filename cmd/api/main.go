package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/aqilnadzmi/library-duty-api/internal/config"
	"github.com/aqilnadzmi/library-duty-api/internal/db"
	httpx "github.com/aqilnadzmi/library-duty-api/internal/http"
	"github.com/aqilnadzmi/library-duty-api/internal/observability"
	"github.com/aqilnadzmi/library-duty-api/internal/redisclient"
	"github.com/aqilnadzmi/library-duty-api/internal/repo/postgres"
	"github.com/aqilnadzmi/library-duty-api/internal/security"
)

func main() {
	cfg := config.Load()

	log := observability.NewLogger(cfg.Env)

	if cfg.JWTSecret == "" {
		log.Error("JWT_SECRET is not set")
		os.Exit(1)
	}

	// tracing (optional; only when a collector endpoint is configured)
	if cfg.OTLPEndpoint != "" {
		shutdownTracer, err := observability.InitTracer(context.Background(), "library-duty-api", cfg.OTLPEndpoint)

		if err != nil {
			log.Error("tracer init failed", "err", err)
			os.Exit(1)
		}

		defer func() {
			ctx, cancel := config.WithTimeout(5 * time.Second)
			defer cancel()
			_ = shutdownTracer(ctx)
		}()
	}

	// database
	pool, err := db.NewPool(cfg.DBURL, cfg.DBMaxConns)

	if err != nil {
		log.Error("database connection failed", "err", err)
		os.Exit(1)
	}

	defer pool.Close()

	// metrics
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	prom := observability.NewProm(reg)

	// redis-backed login guard; skipped entirely when no addr is configured
	var guard *security.LoginGuard

	if cfg.RedisAddr != "" {
		rdb := redisclient.New(redisclient.Config{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})

		pingCtx, cancel := config.WithTimeout(2 * time.Second)
		err = rdb.Ping(pingCtx)
		cancel()

		if err != nil {
			log.Warn("redis unreachable, login guard disabled", "err", err)
			_ = rdb.Close()
		} else {
			guard = security.NewLoginGuard(rdb.Raw(), cfg.LoginFailLimit, time.Duration(cfg.LoginFailWindowMin)*time.Minute)
			defer rdb.Close()
		}
	}

	// seed the initial IT-staff account
	seedCtx, cancel := config.WithTimeout(5 * time.Second)
	err = db.EnsureITStaffAccount(seedCtx, postgres.NewAccountsRepo(pool, prom), cfg)
	cancel()

	if err != nil {
		log.Error("seeding IT-staff account failed", "err", err)
		os.Exit(1)
	}

	router := httpx.NewRouter(log, pool, cfg, guard, prom)
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Info("server starting", "port", cfg.Port, "env", cfg.Env)
		err := srv.ListenAndServe()

		if err != nil && err != http.ErrServerClosed {
			log.Error("server failed", "err", err)
			os.Exit(1)
		}
	}()

	// graceful shutdown

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	log.Info("server shutting down")

	shutdownCh := make(chan struct{})

	go func() {
		defer close(shutdownCh)

		ctx, cancel := config.WithTimeout(10 * time.Second)

		defer cancel()

		err := srv.Shutdown(ctx)

		if err != nil {
			log.Error("graceful shutdown failed", "err", err)

			return
		}
	}()

	select {
	case <-shutdownCh:
		log.Info("shutdown complete")

	case <-time.After(12 * time.Second):
		log.Error("shutdown timed out")
	}
}
