package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"connectrpc.com/connect"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/tablewise/internal/auth"
	"github.com/mmynk/tablewise/internal/events"
	"github.com/mmynk/tablewise/internal/idgen"
	"github.com/mmynk/tablewise/internal/lifecycle"
	"github.com/mmynk/tablewise/internal/metrics"
	"github.com/mmynk/tablewise/internal/middleware"
	"github.com/mmynk/tablewise/internal/storage"
	"github.com/mmynk/tablewise/internal/storage/sqlite"
	"github.com/mmynk/tablewise/pkg/api"
)

const testAdminPassword = "letmein"

var fixedNow = time.Date(2026, 3, 14, 19, 30, 0, 0, time.FixedZone("TRT", 3*60*60))

// recordingPublisher keeps every published event in memory.
type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, e events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, e)
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) types() []events.Type {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]events.Type, len(p.events))
	for i, e := range p.events {
		out[i] = e.Type
	}
	return out
}

type testServer struct {
	orders    *api.OrderServiceClient
	menu      *api.MenuServiceClient
	auth      *api.AuthServiceClient
	store     *storage.Store
	metrics   *metrics.Metrics
	publisher *recordingPublisher
}

// setupTestServer creates a test server with every service mounted behind the
// same interceptors the server binary uses.
func setupTestServer(t *testing.T) *testServer {
	t.Helper()

	backend, err := sqlite.New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)

	store := storage.New(backend)
	m := metrics.New(prometheus.NewRegistry())
	publisher := &recordingPublisher{}
	engine := lifecycle.NewEngine(idgen.NewSequence("line"), lifecycle.WithClock(func() time.Time { return fixedNow }))

	authenticator, err := auth.NewSecretAuthenticator(testAdminPassword)
	require.NoError(t, err)
	jwtManager := auth.NewJWTManager("test-secret", time.Hour)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	interceptors := connect.WithInterceptors(
		middleware.LoggingInterceptor(m),
		middleware.RequireAdmin(jwtManager, api.AdminProcedures...),
	)

	orderPath, orderHandler := api.NewOrderServiceHandler(
		NewOrderService(store, engine, WithPublisher(publisher), WithMetrics(m)), interceptors)
	menuPath, menuHandler := api.NewMenuServiceHandler(NewMenuService(store, idgen.NewSequence("product")), interceptors)
	authPath, authHandler := api.NewAuthServiceHandler(NewAuthService(authenticator, jwtManager, logger), interceptors)

	mux := http.NewServeMux()
	mux.Handle(orderPath, orderHandler)
	mux.Handle(menuPath, menuHandler)
	mux.Handle(authPath, authHandler)

	server := httptest.NewServer(mux)
	t.Cleanup(func() {
		server.Close()
		store.Close()
	})

	return &testServer{
		orders:    api.NewOrderServiceClient(http.DefaultClient, server.URL),
		menu:      api.NewMenuServiceClient(http.DefaultClient, server.URL),
		auth:      api.NewAuthServiceClient(http.DefaultClient, server.URL),
		store:     store,
		metrics:   m,
		publisher: publisher,
	}
}

// adminRequest wraps msg in a request carrying a freshly issued admin token.
func adminRequest[T any](t *testing.T, ts *testServer, msg *T) *connect.Request[T] {
	t.Helper()

	resp, err := ts.auth.Login(context.Background(), connect.NewRequest(&api.LoginRequest{Password: testAdminPassword}))
	require.NoError(t, err)

	req := connect.NewRequest(msg)
	req.Header().Set("Authorization", "Bearer "+resp.Msg.Token)
	return req
}

func requireCode(t *testing.T, err error, want connect.Code) {
	t.Helper()
	require.Error(t, err)

	var connectErr *connect.Error
	if !errors.As(err, &connectErr) {
		t.Fatalf("expected connect error, got %T: %v", err, err)
	}
	if connectErr.Code() != want {
		t.Fatalf("expected code %v, got %v (%s)", want, connectErr.Code(), connectErr.Message())
	}
}
