package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	"github.com/rpupo63/blogicum/config"
	"github.com/rpupo63/blogicum/database"
)

type Server struct {
	*http.Server
	startupTime time.Time
}

func NewServer(db database.Database, c map[string]string) (Server, error) {
	// Ensure correct port is set
	port := config.GetString(c, "PORT", "8080")
	address := fmt.Sprintf("0.0.0.0:%s", port) // Bind to 0.0.0.0 for external access

	// Capture startup time
	startupTime := time.Now()

	router, err := newRouter(db, withConfig(c), withStartupTime(startupTime))
	if err != nil {
		return Server{}, err
	}

	// Get timeout values from config with sensible defaults
	readTimeout := time.Duration(config.GetInt(c, "READ_TIMEOUT_SECONDS", 30)) * time.Second
	writeTimeout := time.Duration(config.GetInt(c, "WRITE_TIMEOUT_SECONDS", 30)) * time.Second
	idleTimeout := time.Duration(config.GetInt(c, "IDLE_TIMEOUT_SECONDS", 180)) * time.Second

	server := &http.Server{
		Addr:         address,
		Handler:      router,
		ReadTimeout:  readTimeout,  // Timeout for reading the entire request
		WriteTimeout: writeTimeout, // Timeout for writing the response
		IdleTimeout:  idleTimeout,  // Timeout for idle connections
	}

	return Server{server, startupTime}, nil
}

type router struct {
	config      map[string]string
	startupTime time.Time
	now         func() time.Time
	registry    *prometheus.Registry
}

func withConfig(c map[string]string) func(*router) {
	return func(r *router) {
		r.config = c
	}
}

func withStartupTime(startupTime time.Time) func(*router) {
	return func(r *router) {
		r.startupTime = startupTime
	}
}

func withClock(now func() time.Time) func(*router) {
	return func(r *router) {
		r.now = now
	}
}

func newRouter(db database.Database, opts ...func(*router)) (*chi.Mux, error) {
	router := router{now: time.Now}
	for _, opt := range opts {
		opt(&router)
	}
	if router.registry == nil {
		router.registry = prometheus.NewRegistry()
		router.registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}

	pages, err := loadPages(log.With().Str("component", "pages").Logger())
	if err != nil {
		return nil, fmt.Errorf("load templates: %w", err)
	}
	m := newMetrics(router.registry)

	tokenTTL := time.Duration(config.GetInt(router.config, "ADMIN_TOKEN_TTL_MINUTES", 720)) * time.Minute
	tokens := newJWTTokens(config.GetString(router.config, "ADMIN_TOKEN_SECRET", ""), tokenTTL, router.now)
	indexSize := config.GetInt(router.config, "INDEX_PAGE_SIZE", 5)

	// Initialize all handlers
	handlers := initializeHandlers(db, pages, m, tokens, router.now, indexSize)
	authMiddleware := newAuthMiddleware(tokens, db.UserRepo())

	chiRouter := chi.NewRouter()
	chiRouter.Use(RequestID)
	chiRouter.Use(LogInternalServerErrors)
	chiRouter.Use(m.instrument)
	chiRouter.Use(middleware.StripSlashes)
	if config.GetString(router.config, "LOG_FORMAT", "console") == "json" {
		chiRouter.Use(JSONHTTPLoggingMiddleware)
	} else {
		chiRouter.Use(ColoredHTTPLoggingMiddleware)
	}
	chiRouter.NotFound(handlers.publicHandler.notFound())

	setupPublicRoutes(chiRouter, handlers)
	setupAdminRoutes(chiRouter, handlers, authMiddleware, config.GetList(router.config, "ACCEPTED_ORIGINS"))
	setupOperationalRoutes(chiRouter, router.health(), promhttp.HandlerFor(router.registry, promhttp.HandlerOpts{}))

	return chiRouter, nil
}

type healthResponse struct {
	Status    string    `json:"status"`
	StartedAt time.Time `json:"startedAt"`
	Uptime    string    `json:"uptime"`
}

func (rt router) health() http.HandlerFunc {
	responder := NewResponder(log.With().Str("handlerName", "health").Logger())
	return func(w http.ResponseWriter, r *http.Request) {
		responder.WriteJSON(w, healthResponse{
			Status:    "ok",
			StartedAt: rt.startupTime,
			Uptime:    time.Since(rt.startupTime).Round(time.Second).String(),
		})
	}
}

func (s Server) Start(errChannel chan<- error) {
	log.Info().Msgf("Server started on: %s", s.Addr)
	errChannel <- s.ListenAndServe()
}

func (s Server) ShutdownGracefully(timeout time.Duration) {
	log.Info().Msg("Gracefully shutting down...")

	gracefullCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := s.Shutdown(gracefullCtx); err != nil {
		log.Error().Msgf("Error shutting down the server: %v", err)
	} else {
		log.Info().Msg("HttpServer gracefully shut down")
	}
}
