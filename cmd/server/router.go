package main

import (
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"connectrpc.com/connect"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mmynk/tablewise/internal/auth"
	"github.com/mmynk/tablewise/internal/metrics"
	"github.com/mmynk/tablewise/internal/middleware"
	"github.com/mmynk/tablewise/pkg/api"
)

type routerDeps struct {
	orders     api.OrderServiceHandler
	menu       api.MenuServiceHandler
	auth       api.AuthServiceHandler
	jwtManager *auth.JWTManager
	metrics    *metrics.Metrics
	registry   *prometheus.Registry
	staticPath string
}

// newRouter mounts the Connect services, /metrics, /healthz and the static
// front end on one mux.
func newRouter(deps routerDeps) (http.Handler, error) {
	mux := http.NewServeMux()

	interceptors := connect.WithInterceptors(
		middleware.LoggingInterceptor(deps.metrics),
		middleware.RequireAdmin(deps.jwtManager, api.AdminProcedures...),
	)

	orderPath, orderHandler := api.NewOrderServiceHandler(deps.orders, interceptors)
	mux.Handle(orderPath, orderHandler)

	menuPath, menuHandler := api.NewMenuServiceHandler(deps.menu, interceptors)
	mux.Handle(menuPath, menuHandler)

	authPath, authHandler := api.NewAuthServiceHandler(deps.auth, interceptors)
	mux.Handle(authPath, authHandler)

	mux.Handle("/metrics", promhttp.HandlerFor(deps.registry, promhttp.HandlerOpts{}))
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	staticDir, err := filepath.Abs(deps.staticPath)
	if err != nil {
		return nil, err
	}
	slog.Info("Serving static files", "path", staticDir)

	// Unknown RPC paths 404; everything else is the front end, with index.html
	// as the fallback for client-side routes.
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/tablewise.v1.") {
			http.NotFound(w, r)
			return
		}

		urlPath := r.URL.Path
		if urlPath == "/" {
			urlPath = "/index.html"
		}

		filePath := filepath.Join(staticDir, filepath.Clean("/"+urlPath))
		if _, err := os.Stat(filePath); os.IsNotExist(err) {
			http.ServeFile(w, r, filepath.Join(staticDir, "index.html"))
			return
		}

		http.ServeFile(w, r, filePath)
	})

	return loggingMiddleware(corsMiddleware(mux)), nil
}

// loggingMiddleware traces plain HTTP traffic at DEBUG. RPC outcomes are
// logged by middleware.LoggingInterceptor.
func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		slog.Debug("Request received",
			"method", r.Method,
			"path", r.URL.Path,
			"remote_addr", r.RemoteAddr,
			"user_agent", r.UserAgent(),
		)

		next.ServeHTTP(w, r)

		slog.Debug("Request completed",
			"method", r.Method,
			"path", r.URL.Path,
			"duration_ms", time.Since(start).Milliseconds(),
		)
	})
}

// corsMiddleware lets the browser front end call the Connect endpoints,
// including admin calls that carry an Authorization header.
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Authorization, Content-Type, Connect-Protocol-Version, Connect-Timeout-Ms")
		w.Header().Set("Access-Control-Expose-Headers", "Connect-Protocol-Version, Connect-Timeout-Ms")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
