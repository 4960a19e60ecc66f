package router

import (
	"net/http"

	_ "github.com/evyataryagoni/iplocation/docs" // Swagger docs
	"github.com/evyataryagoni/iplocation/internal/handler"
	"github.com/evyataryagoni/iplocation/internal/limiter"
	"github.com/evyataryagoni/iplocation/internal/logger"
	"github.com/evyataryagoni/iplocation/internal/metrics"
	custommiddleware "github.com/evyataryagoni/iplocation/internal/middleware"
	v1 "github.com/evyataryagoni/iplocation/internal/router/v1"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger/v2"
)

// HealthFunc reports whether the lookup backend can answer queries
type HealthFunc func() error

// Options holds everything the router wires together
type Options struct {
	Handler  *handler.IPHandler
	Limiter  limiter.Limiter
	Metrics  *metrics.Metrics
	Gatherer prometheus.Gatherer // defaults to prometheus.DefaultGatherer
	Logger   *logger.Logger
	Health   HealthFunc // optional
}

// SetupRouter creates the chi router with middleware, the v1 API, /health,
// /metrics and the Swagger UI
func SetupRouter(opts Options) chi.Router {
	r := chi.NewRouter()

	// order matters: the request ID and the real client address must be set
	// before logging and rate limiting
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(custommiddleware.LoggingMiddleware(opts.Logger))
	r.Use(middleware.Recoverer)
	r.Use(custommiddleware.MetricsMiddleware(opts.Metrics))

	r.Get("/health", healthCheckHandler(opts.Health))

	gatherer := opts.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	// Swagger UI at /swagger/index.html
	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	// only the API is rate limited
	r.Group(func(r chi.Router) {
		r.Use(custommiddleware.RateLimitMiddleware(opts.Limiter))
		r.Mount("/v1", v1.SetupRoutes(opts.Handler))
	})

	return r
}

// healthCheckHandler answers 200 OK, or 503 when health reports a problem
func healthCheckHandler(health HealthFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if health != nil {
			if err := health(); err != nil {
				http.Error(w, err.Error(), http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	}
}
