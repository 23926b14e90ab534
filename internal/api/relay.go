package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/foxzi/campaigner/internal/gateway"
	"github.com/foxzi/campaigner/internal/gateway/resend"
)

// The relay endpoints let a browser reach Resend through this server. The
// credential travels in the body and is never stored.

// handleRelaySend handles POST /api/send-email
func (s *Server) handleRelaySend(w http.ResponseWriter, r *http.Request) {
	var req resend.RelaySendRequest
	if !s.decodeRelay(w, r, &req) {
		return
	}
	if req.APIKey == "" {
		s.sendError(w, http.StatusBadRequest, "API key is required")
		return
	}
	if req.From == "" || req.To == "" || req.Subject == "" || req.HTML == "" {
		s.sendError(w, http.StatusBadRequest, "Missing required fields: from, to, subject, html")
		return
	}

	resp, err := s.relay.SendEmail(r.Context(), req.APIKey, &resend.SendRequest{
		From:    req.From,
		To:      req.To,
		Subject: req.Subject,
		HTML:    req.HTML,
	})
	if err != nil {
		s.sendRelayError(w, err)
		return
	}
	s.sendJSON(w, http.StatusOK, resend.RelayResponse[*resend.SendResponse]{Success: true, Data: resp})
}

// handleRelayDomains handles POST /api/domains
func (s *Server) handleRelayDomains(w http.ResponseWriter, r *http.Request) {
	var req resend.RelayDomainsRequest
	if !s.decodeRelay(w, r, &req) {
		return
	}
	if req.APIKey == "" {
		s.sendError(w, http.StatusBadRequest, "API key is required")
		return
	}

	resp, err := s.relay.Domains(r.Context(), req.APIKey)
	if err != nil {
		s.sendRelayError(w, err)
		return
	}
	s.sendJSON(w, http.StatusOK, resend.RelayResponse[*resend.DomainsResponse]{Success: true, Data: resp})
}

func (s *Server) decodeRelay(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		s.sendError(w, http.StatusBadRequest, "Invalid request body")
		return false
	}
	return true
}

// sendRelayError passes provider errors through with the provider's status
func (s *Server) sendRelayError(w http.ResponseWriter, err error) {
	var apiErr *gateway.APIError
	if errors.As(err, &apiErr) {
		s.sendError(w, apiErr.StatusCode, fmt.Sprintf("Resend API error: %d - %s", apiErr.StatusCode, apiErr.Message))
		return
	}
	s.logger.Error("relay request failed", "error", err)
	s.sendError(w, http.StatusInternalServerError, "Server error: "+err.Error())
}
