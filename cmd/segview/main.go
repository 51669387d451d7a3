package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/okian/segview/internal/adapters/backend"
	"github.com/okian/segview/internal/adapters/http/api"
	"github.com/okian/segview/internal/adapters/http/site"
	"github.com/okian/segview/internal/adapters/http/swagger"
	"github.com/okian/segview/internal/adapters/repository"
	service "github.com/okian/segview/internal/app"
	"github.com/okian/segview/internal/config"
	"github.com/okian/segview/internal/render"
	"github.com/okian/segview/pkg/logger"
	"github.com/okian/segview/pkg/metrics"
)

// HTTP server timeout constants.
const (
	readTimeout               = 10 * time.Second
	idleTimeout               = 60 * time.Second
	readHeaderTimeout         = 5 * time.Second
	writeTimeoutSlack         = 5 * time.Second
	shutdownTimeout           = 30 * time.Second
	systemMetricsInterval     = 10 * time.Second
	nanosecondsPerMillisecond = 1e6
)

func main() {
	// Default Go collectors are replaced by the custom system metrics below.
	prometheus.Unregister(collectors.NewGoCollector())
	prometheus.Unregister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		os.Exit(1)
	}

	if err := logger.InitWithWriter(os.Stdout, cfg.LogFormat); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	log := logger.Get()
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	mux, err := newMux(ctx, cfg, log)
	if err != nil {
		log.Error(ctx, "failed to build routes", logger.Error(err))
		os.Exit(1)
	}

	go startSystemMetricsUpdater(ctx)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           mux,
		ReadTimeout:       readTimeout,
		WriteTimeout:      cfg.RequestTimeout() + writeTimeoutSlack,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	go func() {
		log.Info(ctx, "starting HTTP server",
			logger.String("addr", cfg.Addr),
			logger.String("api_base", cfg.APIBase()),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error(ctx, "HTTP server failed", logger.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	log.Info(context.Background(), "shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error(shutdownCtx, "server shutdown failed", logger.Error(err))
	}
	log.Info(shutdownCtx, "server stopped")
}

// newMux wires every route: console pages, operational API and docs.
func newMux(ctx context.Context, cfg *config.Config, log logger.Logger) (*http.ServeMux, error) {
	renderer, err := render.New()
	if err != nil {
		return nil, err
	}

	client := backend.New(cfg.APIBase(),
		backend.WithTimeout(cfg.RequestTimeout()),
		backend.WithLogger(log.Named("backend")),
	)

	controllerLog := log.Named("controller")
	sessions := repository.NewSessionStore(func() *service.Controller {
		return service.New(client, renderer,
			service.WithLogger(controllerLog),
			service.WithAboutPath(cfg.AboutPath),
		)
	}, repository.WithCapacity(cfg.SessionCapacity))

	siteHandler := site.New(sessions, renderer,
		site.WithLogger(log.Named("site")),
		site.WithAppInfo(cfg.AppName, cfg.AppVersion),
		site.WithAboutPath(cfg.AboutPath),
		site.WithSecureCookie(cfg.SecureCookie),
	)

	mux := http.NewServeMux()
	swagger.Register(ctx, mux)
	api.NewServer(siteHandler).Register(ctx, mux)
	siteHandler.Register(ctx, mux)
	return mux, nil
}

// startSystemMetricsUpdater updates system metrics until ctx is done.
func startSystemMetricsUpdater(ctx context.Context) {
	ticker := time.NewTicker(systemMetricsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			updateSystemMetrics()
		}
	}
}

func updateSystemMetrics() {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	metrics.UpdateSystemMemoryUsage(m.Alloc)
	metrics.UpdateSystemGoroutineCount(runtime.NumGoroutine())

	if m.NumGC > 0 {
		avgPauseMs := float64(m.PauseTotalNs) / float64(m.NumGC) / nanosecondsPerMillisecond
		metrics.RecordSystemGCPauseTime(avgPauseMs)
	}
}
