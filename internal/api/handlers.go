package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/foxzi/campaigner/internal/dispatch"
	"github.com/foxzi/campaigner/internal/gateway"
	"github.com/foxzi/campaigner/internal/models"
)

// HealthResponse is the response for the health check endpoint
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
	Uptime  string `json:"uptime"`
}

// SettingsResponse hides the credential itself
type SettingsResponse struct {
	HasAPIKey     bool            `json:"hasApiKey"`
	CachedDomains []models.Domain `json:"cachedDomains"`
}

// SetAPIKeyRequest sets or clears the provider credential
type SetAPIKeyRequest struct {
	APIKey string `json:"apiKey"`
}

// handleHealth handles GET /health
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.sendJSON(w, http.StatusOK, HealthResponse{
		Status:  "ok",
		Version: s.version,
		Uptime:  time.Since(s.startTime).Round(time.Second).String(),
	})
}

// handleGetState handles GET /api/v1/state
func (s *Server) handleGetState(w http.ResponseWriter, r *http.Request) {
	st := s.store.Snapshot()
	s.sendJSON(w, http.StatusOK, &st)
}

// handleReplaceState handles PUT /api/v1/state
func (s *Server) handleReplaceState(w http.ResponseWriter, r *http.Request) {
	var st models.State
	if !s.decode(w, r, &st) {
		return
	}
	err := s.dispatcher.WhenAllIdle(func() error {
		s.store.Replace(st)
		return nil
	})
	if err != nil {
		s.sendDomainError(w, err)
		return
	}
	snapshot := s.store.Snapshot()
	s.sendJSON(w, http.StatusOK, &snapshot)
}

// handleGetSettings handles GET /api/v1/settings
func (s *Server) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	settings := s.store.Settings()
	domains := settings.CachedDomains
	if domains == nil {
		domains = []models.Domain{}
	}
	s.sendJSON(w, http.StatusOK, SettingsResponse{
		HasAPIKey:     settings.ResendAPIKey != "",
		CachedDomains: domains,
	})
}

// handleSetAPIKey handles PUT /api/v1/settings/api-key
func (s *Server) handleSetAPIKey(w http.ResponseWriter, r *http.Request) {
	var req SetAPIKeyRequest
	if !s.decode(w, r, &req) {
		return
	}
	s.store.SetAPIKey(req.APIKey)
	w.WriteHeader(http.StatusNoContent)
}

// handleRefreshDomains handles POST /api/v1/settings/domains/refresh
func (s *Server) handleRefreshDomains(w http.ResponseWriter, r *http.Request) {
	domains, err := s.dispatcher.RefreshDomains(r.Context())
	if err != nil {
		var apiErr *gateway.APIError
		if errors.As(err, &apiErr) {
			s.sendError(w, http.StatusBadGateway, apiErr.Error())
			return
		}
		if errors.Is(err, dispatch.ErrNoCredential) {
			s.sendDomainError(w, err)
			return
		}
		s.sendError(w, http.StatusBadGateway, err.Error())
		return
	}
	s.sendJSON(w, http.StatusOK, domains)
}
