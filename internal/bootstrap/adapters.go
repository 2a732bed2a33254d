package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/target/eventdesk/config"
	"github.com/target/eventdesk/internal/adapters/memgateway"
	"github.com/target/eventdesk/internal/adapters/memstore"
	"github.com/target/eventdesk/internal/adapters/postgrest"
	redisadapter "github.com/target/eventdesk/internal/adapters/redis"
	"github.com/target/eventdesk/internal/data"
	"github.com/target/eventdesk/internal/observability/statsd"
	"github.com/target/eventdesk/internal/ports"
)

// Infrastructure holds the external connections the selected drivers need.
// Any field may be nil.
type Infrastructure struct {
	DB      *sql.DB
	Redis   redis.UniversalClient
	Metrics *statsd.Client
}

// MetricsSink returns the StatsD client, or a no-op sink when metrics are off.
//
//nolint:ireturn // callers only need the Sink behaviour.
func (i *Infrastructure) MetricsSink() statsd.Sink {
	if i == nil || i.Metrics == nil {
		return statsd.Nop{}
	}
	return i.Metrics
}

// ConnectInfrastructure opens Postgres when the gateway driver is postgres
// and Redis when the session store is redis.
func ConnectInfrastructure(ctx context.Context, cfg *config.AppConfig, logger *slog.Logger) (*Infrastructure, error) {
	infra := &Infrastructure{}

	if cfg.Gateway.Driver == config.GatewayPostgres {
		db, err := ConnectDB(ctx, cfg.Postgres, logger)
		if err != nil {
			return nil, fmt.Errorf("connect db: %w", err)
		}
		infra.DB = db
		if cfg.Postgres.RunMigrationsOnStart {
			if err := RunMigrations(ctx, db, logger); err != nil {
				return nil, errors.Join(err, infra.Close())
			}
		} else {
			logger.InfoContext(ctx, "skipping database migrations on startup", "reason", "disabled via config")
		}
	}

	if cfg.Session.Store == config.SessionStoreRedis {
		client, err := ConnectRedis(ctx, cfg.Redis, logger)
		if err != nil {
			return nil, errors.Join(fmt.Errorf("connect redis: %w", err), infra.Close())
		}
		infra.Redis = client
	}

	if cfg.Metrics.Enabled() {
		tags := map[string]string{}
		if cfg.Metrics.Env != "" {
			tags["env"] = cfg.Metrics.Env
		}
		client, err := statsd.NewClient(ctx, statsd.Config{
			Address:    cfg.Metrics.StatsdAddress,
			Prefix:     cfg.Metrics.Prefix,
			GlobalTags: tags,
			Logger:     logger,
		})
		if err != nil {
			return nil, errors.Join(err, infra.Close())
		}
		infra.Metrics = client
		logger.InfoContext(ctx, "statsd metrics enabled", "address", cfg.Metrics.StatsdAddress)
	}
	return infra, nil
}

// Close releases every open connection.
func (i *Infrastructure) Close() error {
	var errs []error
	if i.DB != nil {
		if err := i.DB.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close database: %w", err))
		}
	}
	if i.Redis != nil {
		if err := i.Redis.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close redis: %w", err))
		}
	}
	if i.Metrics != nil {
		if err := i.Metrics.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close statsd: %w", err))
		}
	}
	return errors.Join(errs...)
}

// NewGateway builds the data gateway selected by cfg.Driver.
//
//nolint:ireturn // the driver is chosen at runtime.
func NewGateway(cfg config.GatewayConfig, infra *Infrastructure) (ports.Gateway, error) {
	switch cfg.Driver {
	case config.GatewayPostgREST:
		gw, err := postgrest.New(postgrest.Config{BaseURL: cfg.URL, APIKey: cfg.APIKey, Timeout: cfg.Timeout})
		if err != nil {
			return nil, err
		}
		return gw, nil
	case config.GatewayMemory:
		return memgateway.New(), nil
	case config.GatewayPostgres, "":
		if infra == nil || infra.DB == nil {
			return nil, errors.New("postgres gateway requires a database connection")
		}
		return data.NewGateway(infra.DB), nil
	default:
		return nil, fmt.Errorf("unknown gateway driver %q", cfg.Driver)
	}
}

// NewSessionStore builds the tab-scoped session store selected by cfg.Store.
//
//nolint:ireturn // the driver is chosen at runtime.
func NewSessionStore(cfg config.SessionConfig, infra *Infrastructure) (ports.SessionStore, error) {
	switch cfg.Store {
	case config.SessionStoreMemory:
		return memstore.NewWithOptions(cfg.TTL, nil), nil
	case config.SessionStoreRedis, "":
		if infra == nil || infra.Redis == nil {
			return nil, errors.New("redis session store requires a redis connection")
		}
		return redisadapter.NewTabStoreWithOptions(infra.Redis, cfg.KeyPrefix, cfg.TTL), nil
	default:
		return nil, fmt.Errorf("unknown session store %q", cfg.Store)
	}
}
