package bootstrap

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/target/eventdesk/config"
	httpx "github.com/target/eventdesk/internal/http"
	"github.com/target/eventdesk/internal/observability/statsd"
)

// HTTPServerConfig contains configuration for HTTP server.
type HTTPServerConfig struct {
	Config   *config.AppConfig
	Services ServiceContainer
	Metrics  statsd.Sink // Optional
	Logger   *slog.Logger
}

// NewHTTPServer builds the router and the server around it without
// starting it.
func NewHTTPServer(cfg HTTPServerConfig) (*http.Server, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	appCfg := cfg.Config
	if appCfg == nil {
		appCfg = &config.AppConfig{}
	}
	loc, err := appCfg.Location()
	if err != nil {
		return nil, err
	}

	if appCfg.HTTP.CompressionEnabled {
		logger.Info("HTTP compression enabled", "level", appCfg.HTTP.CompressionLevel)
	}
	handler, err := httpx.NewRouter(httpx.RouterServices{
		Events:           cfg.Services.Events,
		Registrations:    cfg.Services.Registrations,
		Auth:             cfg.Services.Auth,
		Sessions:         cfg.Services.Sessions,
		CookieDomain:     appCfg.HTTP.CookieDomain,
		Compression:      appCfg.HTTP.CompressionEnabled,
		CompressionLevel: appCfg.HTTP.CompressionLevel,
		Location:         loc,
		IsDev:            appCfg.IsDev,
		Logger:           logger,
		Metrics:          cfg.Metrics,
	})
	if err != nil {
		return nil, err
	}

	addr := appCfg.HTTP.Addr
	// Guard against empty addr to avoid listening on Go default
	if addr == "" {
		addr = ":8080"
	}
	readHeader := appCfg.HTTP.ReadHeaderTimeout
	if readHeader <= 0 {
		readHeader = 10 * time.Second
	}
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: readHeader,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}, nil
}

// ServeConfig contains what Serve needs to run and stop the server.
type ServeConfig struct {
	Server          *http.Server
	Listener        net.Listener // Optional: defaults to listening on Server.Addr
	ShutdownTimeout time.Duration
	Logger          *slog.Logger
}

// Serve runs the server until ctx is cancelled or serving fails, then shuts
// it down gracefully.
func Serve(ctx context.Context, cfg ServeConfig) error {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	timeout := cfg.ShutdownTimeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	ln := cfg.Listener
	if ln == nil {
		var err error
		if ln, err = net.Listen("tcp", cfg.Server.Addr); err != nil {
			return err
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("starting HTTP server", "addr", ln.Addr().String())
		if err := cfg.Server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down HTTP server")
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeout)
		defer cancel()
		if err := cfg.Server.Shutdown(shutdownCtx); err != nil {
			return err
		}
		logger.Info("HTTP server stopped")
		return nil
	})
	return g.Wait()
}
