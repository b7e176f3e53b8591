package catalog

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"ProductCatalog/internal/auth"
	"ProductCatalog/pkg/kit"
)

type HTTPDeps struct {
	Log      *zap.Logger
	Service  string
	Registry *prometheus.Registry

	MetricsEnabled bool
	MetricsToken   string

	Verifier      *auth.Verifier
	WriteLimitMin int

	// TrustForwarded keys the write limiter on X-Forwarded-For instead of the
	// peer address.
	TrustForwarded bool
}

const (
	defaultWriteLimit = 120
	limitWindow       = time.Minute
)

func NewHandler(s *Server, deps HTTPDeps) http.Handler {
	if deps.Log == nil {
		deps.Log = zap.NewNop()
	}
	if s.Log == nil {
		s.Log = deps.Log
	}

	r := chi.NewRouter()

	setupMiddleware(r, deps)
	setupMetrics(r, deps)
	setupRoutes(r, s, deps)

	return r
}

func setupMiddleware(r *chi.Mux, deps HTTPDeps) {
	r.Use(chimw.RequestID)
	r.Use(kit.Recoverer(deps.Log))
	r.Use(kit.Logging(deps.Log))
}

func setupMetrics(r *chi.Mux, deps HTTPDeps) {
	if deps.Registry == nil {
		return
	}

	metrics := kit.NewMetrics(deps.Registry)
	r.Use(metrics.Middleware(deps.Service, kit.RoutePattern))

	if !deps.MetricsEnabled {
		return
	}

	r.With(kit.MetricsAuth(deps.MetricsToken)).
		Handle("/metrics", promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{}))
}

func setupRoutes(r *chi.Mux, s *Server, deps HTTPDeps) {
	limit := deps.WriteLimitMin
	if limit <= 0 {
		limit = defaultWriteLimit
	}
	writeLimiter := kit.NewIPRateLimiter(limit, limitWindow)
	if deps.TrustForwarded {
		writeLimiter.Key = kit.ClientIP
	}

	verifier := deps.Verifier
	if verifier == nil || !verifier.Enabled() {
		deps.Log.Warn("no JWT secret configured; catalog writes are disabled")
	}

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })
	r.Get("/readyz", s.readyz)

	r.Route("/products", func(pr chi.Router) {
		pr.Get("/", s.list)
		pr.Post("/search", s.search)
		pr.Get("/{id}", s.get)

		pr.Group(func(wr chi.Router) {
			wr.Use(writeLimiter.Middleware)
			wr.Use(auth.RequireRole(verifier, deps.Log, auth.RoleAdmin))

			wr.Post("/", s.create)
			wr.Put("/{id}/stock", s.updateStock)
			wr.Delete("/{id}", s.delete)
		})
	})
}
