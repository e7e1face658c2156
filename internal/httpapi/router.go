package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/amishk599/jobradar/internal/metrics"
)

// RouterOptions configure NewRouter.
type RouterOptions struct {
	CORSOrigins     []string
	RateLimitPerMin int
	// RequestTimeout bounds each request; it should exceed the search batch timeout.
	RequestTimeout time.Duration
}

// NewRouter builds the HTTP handler with all middlewares and routes.
func NewRouter(srv *Server, opts RouterOptions) http.Handler {
	metrics.Init()

	origins := opts.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	if opts.RequestTimeout > 0 {
		r.Use(middleware.Timeout(opts.RequestTimeout))
	}
	r.Use(metrics.HTTPMiddleware)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		ExposedHeaders:   []string{"X-Request-Id"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// Searches fan out to upstream providers, so they are rate limited per client.
	r.Group(func(wr chi.Router) {
		if opts.RateLimitPerMin > 0 {
			wr.Use(httprate.LimitByIP(opts.RateLimitPerMin, time.Minute))
		}
		wr.Post("/v1/search", srv.SearchHandler())
	})
	r.Get("/v1/queries", srv.QueriesHandler())
	r.Get("/v1/industries", srv.IndustriesHandler())
	r.Get("/v1/runs", srv.RunsHandler())
	r.Get("/v1/runs/{id}", srv.RunHandler())

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })
	r.Handle("/metrics", promhttp.Handler())

	return r
}
