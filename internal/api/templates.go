package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// TemplateRequest creates or replaces a template
type TemplateRequest struct {
	Name string `json:"name" validate:"required"`
	HTML string `json:"html"`
}

func (s *Server) handleListTemplates(w http.ResponseWriter, r *http.Request) {
	s.sendJSON(w, http.StatusOK, s.store.Templates())
}

func (s *Server) handleCreateTemplate(w http.ResponseWriter, r *http.Request) {
	var req TemplateRequest
	if !s.decode(w, r, &req) {
		return
	}
	s.sendJSON(w, http.StatusCreated, s.store.AddTemplate(req.Name, req.HTML))
}

func (s *Server) handleGetTemplate(w http.ResponseWriter, r *http.Request) {
	tpl, err := s.store.Template(chi.URLParam(r, "id"))
	if err != nil {
		s.sendDomainError(w, err)
		return
	}
	s.sendJSON(w, http.StatusOK, tpl)
}

func (s *Server) handleUpdateTemplate(w http.ResponseWriter, r *http.Request) {
	var req TemplateRequest
	if !s.decode(w, r, &req) {
		return
	}
	tpl, err := s.store.UpdateTemplate(chi.URLParam(r, "id"), req.Name, req.HTML)
	if err != nil {
		s.sendDomainError(w, err)
		return
	}
	s.sendJSON(w, http.StatusOK, tpl)
}

func (s *Server) handleDeleteTemplate(w http.ResponseWriter, r *http.Request) {
	if err := s.store.DeleteTemplate(chi.URLParam(r, "id")); err != nil {
		s.sendDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
