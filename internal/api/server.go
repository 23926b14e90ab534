package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"

	"github.com/foxzi/campaigner/internal/config"
	"github.com/foxzi/campaigner/internal/dispatch"
	"github.com/foxzi/campaigner/internal/gateway/resend"
	"github.com/foxzi/campaigner/internal/ipfilter"
	"github.com/foxzi/campaigner/internal/metrics"
	"github.com/foxzi/campaigner/internal/notify"
	"github.com/foxzi/campaigner/internal/store"
)

// Deps are the components the API drives
type Deps struct {
	Store         *store.Store
	Dispatcher    *dispatch.Dispatcher
	Notifications *notify.Feed
	// Relay forwards the relay endpoints to Resend; nil disables them
	Relay   *resend.Client
	Version string
}

// Server is the HTTP API server
type Server struct {
	router     *chi.Mux
	httpServer *http.Server
	store      *store.Store
	dispatcher *dispatch.Dispatcher
	feed       *notify.Feed
	relay      *resend.Client
	validate   *validator.Validate
	filter     *ipfilter.Filter
	config     *config.ServerConfig
	logger     *slog.Logger
	version    string
	startTime  time.Time
}

// NewServer creates a new API server
func NewServer(cfg *config.ServerConfig, deps Deps, logger *slog.Logger) *Server {
	s := &Server{
		router:     chi.NewRouter(),
		store:      deps.Store,
		dispatcher: deps.Dispatcher,
		feed:       deps.Notifications,
		relay:      deps.Relay,
		validate:   newValidator(),
		filter:     ipfilter.New(cfg.AllowedIPs, logger),
		config:     cfg,
		logger:     logger.With("component", "api"),
		version:    deps.Version,
		startTime:  time.Now(),
	}

	s.setupRoutes()
	return s
}

// setupRoutes configures the HTTP routes
func (s *Server) setupRoutes() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(s.loggingMiddleware)
	s.router.Use(middleware.Recoverer)
	s.router.Use(metrics.HTTPMiddleware)

	s.router.Get("/health", s.handleHealth)

	s.router.Group(func(r chi.Router) {
		r.Use(s.filter.Middleware)

		if s.relay != nil {
			r.Post("/api/send-email", s.handleRelaySend)
			r.Post("/api/domains", s.handleRelayDomains)
		}

		r.Route("/api/v1", func(r chi.Router) {
			r.Get("/state", s.handleGetState)
			r.Put("/state", s.handleReplaceState)

			r.Get("/settings", s.handleGetSettings)
			r.Put("/settings/api-key", s.handleSetAPIKey)
			r.Post("/settings/domains/refresh", s.handleRefreshDomains)

			r.Get("/tags", s.handleListTags)
			r.Post("/tags", s.handleCreateTag)
			r.Delete("/tags/{id}", s.handleDeleteTag)

			r.Get("/lists", s.handleListLists)
			r.Post("/lists", s.handleCreateList)
			r.Get("/lists/{id}", s.handleGetList)
			r.Put("/lists/{id}", s.handleUpdateList)
			r.Delete("/lists/{id}", s.handleDeleteList)
			r.Post("/lists/{id}/contacts", s.handleAddContacts)
			r.Put("/lists/{id}/contacts/{contactId}", s.handleUpdateContact)
			r.Delete("/lists/{id}/contacts/{contactId}", s.handleDeleteContact)

			r.Get("/templates", s.handleListTemplates)
			r.Post("/templates", s.handleCreateTemplate)
			r.Get("/templates/{id}", s.handleGetTemplate)
			r.Put("/templates/{id}", s.handleUpdateTemplate)
			r.Delete("/templates/{id}", s.handleDeleteTemplate)

			r.Get("/campaigns", s.handleListCampaigns)
			r.Post("/campaigns", s.handleCreateCampaign)
			r.Get("/campaigns/{id}", s.handleGetCampaign)
			r.Put("/campaigns/{id}", s.handleUpdateCampaign)
			r.Delete("/campaigns/{id}", s.handleDeleteCampaign)
			r.Get("/campaigns/{id}/audience", s.handleCampaignAudience)
			r.Post("/campaigns/{id}/send", s.handleSendCampaign)
			r.Post("/campaigns/{id}/schedule", s.handleScheduleCampaign)

			r.Post("/send", s.handleAdhocSend)
			r.Get("/notifications", s.handleNotifications)
		})
	})
}

// Handler returns the root HTTP handler
func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe starts the HTTP server
func (s *Server) ListenAndServe() error {
	s.httpServer = &http.Server{
		Addr:         s.config.ListenAddr,
		Handler:      s.router,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	s.logger.Info("starting HTTP API server", "addr", s.config.ListenAddr)
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down HTTP API server")
	if s.httpServer != nil {
		return s.httpServer.Shutdown(ctx)
	}
	return nil
}
