package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/target/eventdesk/config"
	"github.com/target/eventdesk/internal/bootstrap"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	logger := bootstrap.InitLogger()
	err := run(ctx, logger)
	stop()
	if err != nil {
		logger.ErrorContext(ctx, "fatal error", "error", err)
		os.Exit(1) //nolint:forbidigo // Main entrypoint should exit with non-zero status on fatal errors.
	}
}

func run(ctx context.Context, logger *slog.Logger) error {
	cfg, err := bootstrap.LoadConfig()
	if err != nil {
		return err
	}
	logger = bootstrap.ConfigureLogger(cfg.Logging)
	logStartupInfo(ctx, logger, &cfg)

	infra, err := bootstrap.ConnectInfrastructure(ctx, &cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := infra.Close(); cerr != nil {
			logger.ErrorContext(ctx, "close infrastructure failed", "error", cerr)
		}
	}()

	gateway, err := bootstrap.NewGateway(cfg.Gateway, infra)
	if err != nil {
		return err
	}
	store, err := bootstrap.NewSessionStore(cfg.Session, infra)
	if err != nil {
		return err
	}
	provider, err := bootstrap.BuildAuthProvider(ctx, cfg.Auth, logger)
	if err != nil {
		return err
	}

	services, err := bootstrap.NewServices(bootstrap.ServiceDeps{
		Gateway:  gateway,
		Store:    store,
		Provider: provider,
		Metrics:  infra.MetricsSink(),
		Logger:   logger,
	})
	if err != nil {
		return err
	}

	srv, err := bootstrap.NewHTTPServer(bootstrap.HTTPServerConfig{
		Config:   &cfg,
		Services: services,
		Metrics:  infra.MetricsSink(),
		Logger:   logger,
	})
	if err != nil {
		return err
	}
	return bootstrap.Serve(ctx, bootstrap.ServeConfig{
		Server:          srv,
		ShutdownTimeout: cfg.HTTP.ShutdownTimeout,
		Logger:          logger,
	})
}

func logStartupInfo(ctx context.Context, logger *slog.Logger, cfg *config.AppConfig) {
	logger.InfoContext(ctx, "starting eventdesk",
		"addr", cfg.HTTP.Addr,
		"gateway", cfg.Gateway.Driver,
		"session_store", cfg.Session.Store,
		"auth_mode", cfg.Auth.Mode,
		"metrics", cfg.Metrics.Enabled(),
		"dev", cfg.IsDev)
}
