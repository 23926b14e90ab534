package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// CreateTagRequest creates a tag
type CreateTagRequest struct {
	Name string `json:"name" validate:"required"`
}

func (s *Server) handleListTags(w http.ResponseWriter, r *http.Request) {
	s.sendJSON(w, http.StatusOK, s.store.Tags())
}

func (s *Server) handleCreateTag(w http.ResponseWriter, r *http.Request) {
	var req CreateTagRequest
	if !s.decode(w, r, &req) {
		return
	}
	s.sendJSON(w, http.StatusCreated, s.store.AddTag(req.Name))
}

func (s *Server) handleDeleteTag(w http.ResponseWriter, r *http.Request) {
	if err := s.store.DeleteTag(chi.URLParam(r, "id")); err != nil {
		s.sendDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
