package bootstrap

import (
	"context"
	"io"
	"log/slog"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/target/eventdesk/config"
	"github.com/target/eventdesk/internal/adapters/devauth"
	"github.com/target/eventdesk/internal/adapters/memgateway"
	"github.com/target/eventdesk/internal/adapters/memstore"
	"github.com/target/eventdesk/internal/adapters/postgrest"
	"github.com/target/eventdesk/internal/observability/statsd"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestNewGateway(t *testing.T) {
	t.Parallel()

	gw, err := NewGateway(config.GatewayConfig{Driver: config.GatewayMemory}, nil)
	require.NoError(t, err)
	assert.IsType(t, &memgateway.Gateway{}, gw)

	gw, err = NewGateway(config.GatewayConfig{
		Driver:  config.GatewayPostgREST,
		URL:     "https://project.example.co/rest/v1",
		APIKey:  "anon",
		Timeout: time.Second,
	}, nil)
	require.NoError(t, err)
	assert.IsType(t, &postgrest.Gateway{}, gw)

	gw, err = NewGateway(config.GatewayConfig{Driver: config.GatewayPostgREST}, nil)
	require.Error(t, err)
	assert.Nil(t, gw)
	assert.True(t, gw == nil, "error path must return a nil interface")

	_, err = NewGateway(config.GatewayConfig{Driver: config.GatewayPostgres}, &Infrastructure{})
	require.Error(t, err)
}

func TestConnectInfrastructure_MemoryDrivers(t *testing.T) {
	t.Parallel()

	pc, err := net.ListenPacket("udp", "127.0.0.1:0")
	require.NoError(t, err)
	defer pc.Close()

	cfg := &config.AppConfig{
		Gateway: config.GatewayConfig{Driver: config.GatewayMemory},
		Session: config.SessionConfig{Store: config.SessionStoreMemory},
		Metrics: config.MetricsConfig{StatsdAddress: pc.LocalAddr().String(), Prefix: "eventdesk"},
	}
	infra, err := ConnectInfrastructure(context.Background(), cfg, discardLogger())
	require.NoError(t, err)
	assert.Nil(t, infra.DB)
	assert.Nil(t, infra.Redis)
	require.NotNil(t, infra.Metrics)
	assert.IsType(t, &statsd.Client{}, infra.MetricsSink())
	require.NoError(t, infra.Close())

	var none *Infrastructure
	assert.IsType(t, statsd.Nop{}, none.MetricsSink())
}

func TestNewSessionStore(t *testing.T) {
	t.Parallel()

	store, err := NewSessionStore(config.SessionConfig{Store: config.SessionStoreMemory}, nil)
	require.NoError(t, err)
	assert.IsType(t, &memstore.Store{}, store)

	_, err = NewSessionStore(config.SessionConfig{Store: config.SessionStoreRedis}, &Infrastructure{})
	require.Error(t, err)
}

func TestBuildAuthProvider(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	prov, err := BuildAuthProvider(ctx, config.AuthConfig{Mode: config.AuthModeNone}, discardLogger())
	require.NoError(t, err)
	assert.Nil(t, prov)

	prov, err = BuildAuthProvider(ctx, config.AuthConfig{
		Mode: config.AuthModeDev,
		Dev:  config.DevAuthConfig{Email: "admin@example.com"},
	}, discardLogger())
	require.NoError(t, err)
	assert.IsType(t, &devauth.Provider{}, prov)

	_, err = BuildAuthProvider(ctx, config.AuthConfig{Mode: config.AuthModeDev}, discardLogger())
	require.Error(t, err)
}

func TestNewServices(t *testing.T) {
	t.Parallel()

	_, err := NewServices(ServiceDeps{Store: memstore.New()})
	require.Error(t, err)
	_, err = NewServices(ServiceDeps{Gateway: memgateway.New()})
	require.Error(t, err)

	svc, err := NewServices(ServiceDeps{Gateway: memgateway.New(), Store: memstore.New(), Logger: discardLogger()})
	require.NoError(t, err)
	assert.NotNil(t, svc.Events)
	assert.NotNil(t, svc.Registrations)
	assert.NotNil(t, svc.Sessions)
	require.NotNil(t, svc.Auth)
	assert.False(t, svc.Auth.SSOEnabled())
}

func TestServe_ShutsDownOnCancel(t *testing.T) {
	t.Parallel()

	svc, err := NewServices(ServiceDeps{Gateway: memgateway.New(), Store: memstore.New(), Logger: discardLogger()})
	require.NoError(t, err)
	srv, err := NewHTTPServer(HTTPServerConfig{
		Config:   &config.AppConfig{HTTP: config.HTTPConfig{Addr: "127.0.0.1:0"}},
		Services: svc,
		Logger:   discardLogger(),
	})
	require.NoError(t, err)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- Serve(ctx, ServeConfig{Server: srv, Listener: ln, ShutdownTimeout: time.Second, Logger: discardLogger()})
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, "http://"+ln.Addr().String()+"/healthz", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}
