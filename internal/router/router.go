package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"newsapp-summarizer/internal/handlers"
	"newsapp-summarizer/internal/middleware"
)

type Handlers struct {
	Summarize *handlers.SummarizeHandler
	Compare   *handlers.CompareHandler
	Models    *handlers.ModelsHandler
	History   *handlers.HistoryHandler // nil when no database is configured
}

type Options struct {
	CORSOrigin string
	// TrustProxy takes the client address from X-Forwarded-For / X-Real-IP.
	// Leave it off unless a proxy in front rewrites those headers, otherwise
	// clients can pick their own rate limit key.
	TrustProxy bool
}

func New(h Handlers, compareLimiter *middleware.RateLimiter, opts Options) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	if opts.TrustProxy {
		r.Use(chimiddleware.RealIP)
	}
	r.Use(middleware.RequestID)
	r.Use(middleware.CORS(opts.CORSOrigin))

	r.Get("/", handlers.Home)
	r.Get("/health", handlers.Health)
	r.Get("/models", h.Models.List)

	r.Post("/summarize", h.Summarize.Summarize)

	// Comparison routes (rate limited per IP)
	r.Group(func(r chi.Router) {
		r.Use(compareLimiter.Middleware)
		r.Post("/compare", h.Compare.Compare)
		r.Get("/ws/compare", h.Compare.Stream)
	})

	if h.History != nil {
		r.Route("/api", func(r chi.Router) {
			r.Use(chimiddleware.Timeout(30 * time.Second))
			r.Post("/store-summary", h.History.StoreSummary)
			r.Get("/last-category/{email}", h.History.LastCategory)
		})
	}

	return r
}
