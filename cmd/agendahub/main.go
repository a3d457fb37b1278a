package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/geocoder89/agendahub/internal/cache"
	"github.com/geocoder89/agendahub/internal/config"
	"github.com/geocoder89/agendahub/internal/gateway"
	"github.com/geocoder89/agendahub/internal/notify"
	"github.com/geocoder89/agendahub/internal/observability"
	"github.com/geocoder89/agendahub/internal/refresh"
	"github.com/geocoder89/agendahub/internal/session"
	"github.com/geocoder89/agendahub/internal/snapshot"
	"github.com/geocoder89/agendahub/internal/store"
	"github.com/geocoder89/agendahub/internal/web"
)

func main() {
	// Load the config set up
	cfg := config.Load()

	// start up the observability logger
	log := observability.NewLogger(cfg.Env)
	slog.SetDefault(log)

	ctx, stopSignals := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stopSignals()

	// tracing is optional; without a collector endpoint spans stay local no-ops
	if cfg.OTLPEndpoint != "" {
		shutdownTracer, err := observability.InitTracer(ctx, "agendahub", cfg.OTLPEndpoint)
		if err != nil {
			log.Error("tracer init failed", "err", err)
		} else {
			defer func() {
				shutdownCtx, cancel := config.WithTimeout(5 * time.Second)
				defer cancel()
				if err := shutdownTracer(shutdownCtx); err != nil {
					log.Error("tracer shutdown failed", "err", err)
				}
			}()
		}
	}

	registry := prometheus.NewRegistry()
	prom := observability.NewProm(registry)

	gw := gateway.New(gateway.Config{BaseURL: cfg.APIBaseURL}, log, prom)
	st := store.New()

	// snapshot backend, only when configured
	var snap snapshot.Store = snapshot.Noop{}
	if cfg.RedisAddr != "" {
		r := snapshot.NewRedis(snapshot.RedisConfig{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})

		pingCtx, cancel := config.WithTimeout(2 * time.Second)
		err := r.Ping(pingCtx)
		cancel()

		if err != nil {
			log.Warn("snapshot redis unreachable, running without it", "err", err)
			_ = r.Close()
		} else {
			snap = r
			defer r.Close()
		}
	}

	// notices go both to the polling browser surface and the log
	buf := notify.NewBuffer(64)
	notifier := notify.Fanout{buf, notify.NewLogNotifier(log)}

	sess := session.New(st, gw, notifier, snap, log)

	// one informational probe + initial fetch (snapshot fallback inside)
	sess.Startup(ctx)

	// shared with the router: a background sync must drop the cached
	// month views together with the replaced list
	months := cache.NewMonthCache(30 * time.Second)

	refresher := refresh.New(sess, months, prom, log)
	if err := refresher.Start(cfg.RefreshSpec); err != nil {
		log.Error("invalid refresh spec", "spec", cfg.RefreshSpec, "err", err)
		os.Exit(1)
	}
	defer refresher.Stop()

	router := web.NewRouter(web.RouterConfig{
		Env:           cfg.Env,
		CORSOrigins:   cfg.CORSOrigins,
		UpcomingLimit: cfg.UpcomingLimit,
	}, log, sess, st, gw, buf, months, prom, registry)

	// server set up
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Info("UI host starting", "port", cfg.Port, "env", cfg.Env, "api", cfg.APIBaseURL)
		err := srv.ListenAndServe()

		if err != nil && err != http.ErrServerClosed {
			log.Error("UI host failed", "err", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown

	<-ctx.Done()
	log.Info("UI host shutting down")

	shutdownCh := make(chan struct{})

	go func() {
		defer close(shutdownCh)

		shutdownCtx, cancel := config.WithTimeout(10 * time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
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
