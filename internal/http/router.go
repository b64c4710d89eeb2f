package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"rawda/internal/handlers"
	"rawda/internal/search"
	"rawda/internal/service"
	"rawda/internal/storage"
)

// Deps holds dependencies for the HTTP router.
type Deps struct {
	ReaderService   service.ReaderService
	SearchService   service.SearchService
	Searcher        search.Searcher // drives live search sessions
	CounterStore    storage.CounterStore
	PreferenceStore storage.PreferenceStore
	Presence        *handlers.Presence
	HealthChecks    map[string]handlers.CheckFunc
	LiveOptions     handlers.LiveOptions
	SearchRateLimit float64 // requests per second per client; 0 disables
}

// NewRouter creates a new HTTP router with the provided dependencies.
func NewRouter(deps *Deps) http.Handler {
	r := chi.NewRouter()

	// Add chi middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(LoggerMiddleware)
	r.Use(RequestLogger)

	// Add CORS middleware
	r.Use(CORS)

	healthHandler := handlers.NewHealthHandler(deps.HealthChecks)
	searchHandler := handlers.NewSearchHandler(deps.SearchService)
	liveHandler := handlers.NewLiveSearchHandler(deps.Searcher, deps.Presence, deps.LiveOptions)
	readerHandler := handlers.NewReaderHandler(deps.ReaderService)
	pageHandler := handlers.NewPageHandler(deps.ReaderService)
	statsHandler := handlers.NewStatsHandler(deps.CounterStore)
	prefHandler := handlers.NewPreferenceHandler(deps.PreferenceStore)

	limit := func(h http.Handler) http.Handler { return h }
	if deps.SearchRateLimit > 0 {
		burst := int(deps.SearchRateLimit * 2)
		limit = NewRateLimiter(deps.SearchRateLimit, burst, 10*time.Minute).Middleware
	}

	// Register API routes
	r.Route("/api", func(r chi.Router) {
		r.Method(http.MethodGet, "/health", healthHandler)

		r.Group(func(r chi.Router) {
			r.Use(limit)
			r.Method(http.MethodGet, "/search", searchHandler)
			r.Method(http.MethodGet, "/search/live", liveHandler)
		})

		r.Get("/manifests/{collection}", readerHandler.GetManifest)

		r.Route("/documents/{name}", func(r chi.Router) {
			r.Get("/", readerHandler.GetDocument)
			r.Get("/chapters/{chapterID}", readerHandler.GetChapter)
			r.Get("/views", statsHandler.GetChapterViews)
		})

		r.Route("/preferences", func(r chi.Router) {
			r.Get("/", prefHandler.List)
			r.Get("/{key}", prefHandler.Get)
			r.Put("/{key}", prefHandler.Put)
		})
	})

	// Reading pages
	r.Get("/chapters/{name}", pageHandler.Document)
	r.Get("/chapters/{name}/{chapterID}", pageHandler.Chapter)

	// Reading counters
	r.Route("/users-statement", func(r chi.Router) {
		r.Get("/total-pages", statsHandler.GetTotalPages)
		r.Post("/total-pages", statsHandler.AddTotalPages)
		r.Get("/daily-pages", statsHandler.GetDailyPages)
		r.Post("/daily-pages", statsHandler.AddDailyPages)
	})

	return r
}
