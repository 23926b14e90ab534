package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/foxzi/campaigner/internal/audience"
	"github.com/foxzi/campaigner/internal/dispatch"
	"github.com/foxzi/campaigner/internal/models"
)

// errStatusReserved is returned when a client tries to set Sending by hand
var errStatusReserved = errors.New("status sending is set by dispatch only")

// AudienceResponse is the resolved audience of a campaign
type AudienceResponse struct {
	Count      int              `json:"count"`
	Recipients []models.Contact `json:"recipients"`
}

// ScheduleRequest schedules a campaign
type ScheduleRequest struct {
	ScheduledAt *models.Timestamp `json:"scheduledAt" validate:"required"`
}

// AdhocResponse acknowledges a quick send
type AdhocResponse struct {
	Status     string `json:"status"`
	Recipients int    `json:"recipients"`
}

func (s *Server) handleListCampaigns(w http.ResponseWriter, r *http.Request) {
	s.sendJSON(w, http.StatusOK, s.store.Campaigns())
}

func (s *Server) handleCreateCampaign(w http.ResponseWriter, r *http.Request) {
	var in models.CampaignInput
	if !s.decode(w, r, &in) {
		return
	}
	if in.Status == models.StatusSending {
		s.sendError(w, http.StatusBadRequest, errStatusReserved.Error())
		return
	}
	s.sendJSON(w, http.StatusCreated, s.store.AddCampaign(in))
}

func (s *Server) handleGetCampaign(w http.ResponseWriter, r *http.Request) {
	c, err := s.store.Campaign(chi.URLParam(r, "id"))
	if err != nil {
		s.sendDomainError(w, err)
		return
	}
	s.sendJSON(w, http.StatusOK, c)
}

func (s *Server) handleUpdateCampaign(w http.ResponseWriter, r *http.Request) {
	var in models.CampaignInput
	if !s.decode(w, r, &in) {
		return
	}
	if in.Status == models.StatusSending {
		s.sendError(w, http.StatusBadRequest, errStatusReserved.Error())
		return
	}

	id := chi.URLParam(r, "id")
	var c models.Campaign
	err := s.dispatcher.WhenIdle(id, func() error {
		var err error
		c, err = s.store.UpdateCampaign(id, func(c *models.Campaign) error {
			applyCampaignInput(c, &in)
			return nil
		})
		return err
	})
	if err != nil {
		s.sendDomainError(w, err)
		return
	}
	s.sendJSON(w, http.StatusOK, c)
}

// applyCampaignInput replaces the editable fields of c
func applyCampaignInput(c *models.Campaign, in *models.CampaignInput) {
	c.Name = in.Name
	c.Subject = in.Subject
	c.FromName = in.FromName
	c.FromEmail = in.FromEmail
	c.Audience = models.Audience{
		ListIDs: append([]models.ID{}, in.Audience.ListIDs...),
		Tags:    append([]models.ID{}, in.Audience.Tags...),
	}
	c.TemplateID = in.TemplateID
	c.HTML = in.HTML
	if in.Status != "" {
		c.Status = in.Status
	}
	c.ScheduledAt = nil
	if in.ScheduledAt != nil {
		at := *in.ScheduledAt
		c.ScheduledAt = &at
	}
}

func (s *Server) handleDeleteCampaign(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	err := s.dispatcher.WhenIdle(id, func() error {
		return s.store.DeleteCampaign(id)
	})
	if err != nil {
		s.sendDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleCampaignAudience handles GET /api/v1/campaigns/{id}/audience
func (s *Server) handleCampaignAudience(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var (
		res   audience.Result
		found bool
	)
	s.store.View(func(st *models.State) {
		if c := st.FindCampaign(id); c != nil {
			res, found = audience.ForCampaign(st, c), true
		}
	})
	if !found {
		s.sendError(w, http.StatusNotFound, "campaign "+id+": not found")
		return
	}
	s.sendJSON(w, http.StatusOK, AudienceResponse{Count: res.Count, Recipients: res.Recipients})
}

// handleSendCampaign handles POST /api/v1/campaigns/{id}/send. The campaign is
// claimed before the response is written; delivery continues in the background.
func (s *Server) handleSendCampaign(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.dispatcher.StartCampaign(r.Context(), id); err != nil {
		s.sendDomainError(w, err)
		return
	}

	c, err := s.store.Campaign(id)
	if err != nil {
		s.sendDomainError(w, err)
		return
	}
	s.sendJSON(w, http.StatusAccepted, c)
}

// handleScheduleCampaign handles POST /api/v1/campaigns/{id}/schedule
func (s *Server) handleScheduleCampaign(w http.ResponseWriter, r *http.Request) {
	var req ScheduleRequest
	if !s.decode(w, r, &req) {
		return
	}

	c, err := s.dispatcher.ScheduleCampaign(chi.URLParam(r, "id"), req.ScheduledAt.Time())
	if err != nil {
		s.sendDomainError(w, err)
		return
	}
	s.sendJSON(w, http.StatusOK, c)
}

// handleAdhocSend handles POST /api/v1/send
func (s *Server) handleAdhocSend(w http.ResponseWriter, r *http.Request) {
	var req dispatch.AdhocRequest
	if !s.decode(w, r, &req) {
		return
	}
	if err := s.dispatcher.StartAdhoc(r.Context(), req); err != nil {
		s.sendDomainError(w, err)
		return
	}
	s.sendJSON(w, http.StatusAccepted, AdhocResponse{Status: "accepted", Recipients: len(req.To)})
}

// handleNotifications handles GET /api/v1/notifications
func (s *Server) handleNotifications(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			s.sendError(w, http.StatusBadRequest, "Invalid limit")
			return
		}
		limit = n
	}
	s.sendJSON(w, http.StatusOK, s.feed.Recent(limit))
}
