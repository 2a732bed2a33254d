package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/target/eventdesk/config"
	"github.com/target/eventdesk/internal/bootstrap"
)

// withDatabase runs f against a direct Postgres connection.
func withDatabase(
	cmdCtx *commandContext,
	timeout time.Duration,
	f func(context.Context, *sql.DB) error,
) error {
	ctx, stop := signal.NotifyContext(cmdCtx.Ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	db, err := bootstrap.ConnectDB(ctx, cmdCtx.Config.Postgres, cmdCtx.Logger)
	if err != nil {
		return fmt.Errorf("connect db: %w", err)
	}
	defer func() {
		if cerr := db.Close(); cerr != nil {
			cmdCtx.Logger.Warn("db close failed", "error", cerr)
		}
	}()

	return f(ctx, db)
}

// withServices runs f against the services built over the configured data
// gateway. Sessions are never touched from the CLI, so the store is always
// in memory and Redis is not dialled.
func withServices(
	cmdCtx *commandContext,
	timeout time.Duration,
	f func(context.Context, bootstrap.ServiceContainer) error,
) error {
	ctx, stop := signal.NotifyContext(cmdCtx.Ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cfg := cmdCtx.Config
	cfg.Session.Store = config.SessionStoreMemory
	cfg.Postgres.RunMigrationsOnStart = false

	infra, err := bootstrap.ConnectInfrastructure(ctx, &cfg, cmdCtx.Logger)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := infra.Close(); cerr != nil {
			cmdCtx.Logger.Warn("close infrastructure failed", "error", cerr)
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
	svcs, err := bootstrap.NewServices(bootstrap.ServiceDeps{Gateway: gateway, Store: store, Logger: cmdCtx.Logger})
	if err != nil {
		return err
	}
	return f(ctx, svcs)
}

func requirePostgres(cfg *config.AppConfig, action string) error {
	if cfg.Gateway.Driver != config.GatewayPostgres {
		return fmt.Errorf("%s needs GATEWAY_DRIVER=postgres (got %q)", action, cfg.Gateway.Driver)
	}
	return nil
}

var errAborted = errors.New("aborted by user")
