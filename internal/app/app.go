package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os/signal"
	"syscall"
	"time"

	"github.com/foxzi/campaigner/internal/api"
	"github.com/foxzi/campaigner/internal/config"
	"github.com/foxzi/campaigner/internal/dispatch"
	"github.com/foxzi/campaigner/internal/gateway"
	"github.com/foxzi/campaigner/internal/gateway/resend"
	smtpgw "github.com/foxzi/campaigner/internal/gateway/smtp"
	"github.com/foxzi/campaigner/internal/logging"
	"github.com/foxzi/campaigner/internal/metrics"
	"github.com/foxzi/campaigner/internal/notify"
	"github.com/foxzi/campaigner/internal/scheduler"
	"github.com/foxzi/campaigner/internal/store"
)

// App is the main application
type App struct {
	config        *config.Config
	storage       *store.BoltStorage
	store         *store.Store
	dispatcher    *dispatch.Dispatcher
	scheduler     *scheduler.Scheduler
	apiServer     *api.Server
	metricsServer *metrics.Server
	collector     *metrics.Collector
	logger        *slog.Logger
	logCloser     io.Closer
}

// New creates a new application
func New(cfg *config.Config, version string) (*App, error) {
	logger, logCloser := logging.New(cfg.Logging)

	storage, err := store.NewBoltStorage(cfg.Storage.Path)
	if err != nil {
		logCloser.Close()
		return nil, fmt.Errorf("failed to create storage: %w", err)
	}

	st := store.New(storage, logger)
	if cfg.Gateway.APIKey != "" && st.APIKey() == "" {
		st.SetAPIKey(cfg.Gateway.APIKey)
		logger.Info("API key seeded from configuration")
	}

	gw, err := newGateway(cfg.Gateway, logger)
	if err != nil {
		storage.Close()
		logCloser.Close()
		return nil, err
	}

	feed := notify.NewFeed(cfg.Server.NotificationCap, logger)
	dispatcher := dispatch.New(st, gw, feed, dispatch.Config{
		CampaignPacing: cfg.Dispatch.CampaignPacing,
		AdhocPacing:    cfg.Dispatch.AdhocPacing,
		SendTimeout:    cfg.Dispatch.SendTimeout,
	}, logger)

	a := &App{
		config:     cfg,
		storage:    storage,
		store:      st,
		dispatcher: dispatcher,
		logger:     logger,
		logCloser:  logCloser,
	}

	if cfg.SchedulerEnabled() {
		a.scheduler = scheduler.New(st, dispatcher, cfg.Scheduler.Interval, logger)
	}

	deps := api.Deps{
		Store:         st,
		Dispatcher:    dispatcher,
		Notifications: feed,
		Version:       version,
	}
	if cfg.Server.EnableRelay {
		deps.Relay = relayClient(cfg.Gateway)
		logger.Info("relay endpoints enabled")
	}
	a.apiServer = api.NewServer(&cfg.Server, deps, logger)

	if cfg.Metrics.Enabled {
		m := metrics.New()
		metrics.SetGlobal(m)
		a.metricsServer = metrics.NewServer(m, cfg.Metrics.ListenAddr, cfg.Metrics.Path, cfg.Metrics.AllowedIPs, logger)
		a.collector = metrics.NewCollector(m, st, cfg.Storage.Path, cfg.Metrics.UpdateInterval)
	}

	return a, nil
}

// newGateway builds the configured delivery provider
func newGateway(cfg config.GatewayConfig, logger *slog.Logger) (gateway.Gateway, error) {
	switch cfg.Kind {
	case "smtp":
		var signer *smtpgw.Signer
		if cfg.SMTP.DKIM.Enabled {
			var err error
			signer, err = smtpgw.NewSignerFromFile(cfg.SMTP.DKIM.KeyFile, cfg.SMTP.DKIM.Domain, cfg.SMTP.DKIM.Selector)
			if err != nil {
				return nil, fmt.Errorf("failed to load DKIM key: %w", err)
			}
			logger.Info("DKIM signing enabled", "domain", cfg.SMTP.DKIM.Domain, "selector", cfg.SMTP.DKIM.Selector)
		}
		return smtpgw.New(smtpgw.Config{
			Addr:        cfg.SMTP.Addr,
			Username:    cfg.SMTP.Username,
			Hostname:    cfg.SMTP.Hostname,
			StartTLS:    cfg.SMTP.StartTLS != "none",
			FromDomains: cfg.SMTP.FromDomains,
			Timeout:     cfg.Timeout,
		}, signer, logger.With("component", "smtp_gateway")), nil
	default:
		return resend.NewClient(cfg.BaseURL, resend.Mode(cfg.Mode), cfg.Timeout), nil
	}
}

// relayClient is the upstream of the relay endpoints. It always talks to the
// provider directly; a relay base URL would point back at this server.
func relayClient(cfg config.GatewayConfig) *resend.Client {
	baseURL := ""
	if cfg.Kind == "resend" && cfg.Mode == string(resend.ModeDirect) {
		baseURL = cfg.BaseURL
	}
	return resend.NewClient(baseURL, resend.ModeDirect, cfg.Timeout)
}

// Run starts all components and waits for shutdown
func (a *App) Run(ctx context.Context) error {
	a.logger.Info("starting campaigner",
		"api_addr", a.config.Server.ListenAddr,
		"gateway", a.config.Gateway.Kind,
		"storage", a.config.Storage.Path,
	)

	ctx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	errCh := make(chan error, 2)

	go func() {
		if err := a.apiServer.ListenAndServe(); err != nil {
			errCh <- fmt.Errorf("api server: %w", err)
		}
	}()

	if a.metricsServer != nil {
		a.collector.Start()
		go func() {
			if err := a.metricsServer.ListenAndServe(); err != nil {
				errCh <- fmt.Errorf("metrics server: %w", err)
			}
		}()
	}

	if a.scheduler != nil {
		a.scheduler.Start()
	}

	var runErr error
	select {
	case <-ctx.Done():
		a.logger.Info("shutdown signal received")
	case runErr = <-errCh:
		a.logger.Error("server error", "error", runErr)
		cancel()
	}

	if err := a.Shutdown(context.Background()); err != nil {
		return err
	}
	return runErr
}

// Shutdown gracefully shuts down all components. Running send loops are
// allowed to finish before storage is closed.
func (a *App) Shutdown(ctx context.Context) error {
	a.logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	// Stop promoting scheduled campaigns first
	if a.scheduler != nil {
		a.scheduler.Stop()
	}

	if err := a.apiServer.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("api server shutdown error", "error", err)
	}

	if a.metricsServer != nil {
		a.collector.Stop()
		if err := a.metricsServer.Shutdown(shutdownCtx); err != nil {
			a.logger.Error("metrics server shutdown error", "error", err)
		}
	}

	done := make(chan struct{})
	go func() {
		a.dispatcher.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-shutdownCtx.Done():
		a.logger.Warn("send loops still running at shutdown deadline")
	}

	if err := a.storage.Close(); err != nil {
		a.logger.Error("storage close error", "error", err)
	}

	a.logger.Info("shutdown complete")
	a.logCloser.Close()
	return nil
}

// Store exposes the state owner for CLI commands
func (a *App) Store() *store.Store {
	return a.store
}

// Dispatcher exposes the dispatcher for CLI commands
func (a *App) Dispatcher() *dispatch.Dispatcher {
	return a.dispatcher
}
