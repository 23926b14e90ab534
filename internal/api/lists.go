package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/foxzi/campaigner/internal/models"
)

// ListRequest creates or renames a contact list
type ListRequest struct {
	Name        string `json:"name" validate:"required"`
	Description string `json:"description"`
}

// AddContactsRequest imports contacts into a list
type AddContactsRequest struct {
	Contacts []models.ContactInput `json:"contacts" validate:"required,min=1,dive"`
}

// AddContactsResponse reports the created contacts
type AddContactsResponse struct {
	Added    int              `json:"added"`
	Contacts []models.Contact `json:"contacts"`
}

func (s *Server) handleListLists(w http.ResponseWriter, r *http.Request) {
	s.sendJSON(w, http.StatusOK, s.store.Lists())
}

func (s *Server) handleCreateList(w http.ResponseWriter, r *http.Request) {
	var req ListRequest
	if !s.decode(w, r, &req) {
		return
	}
	s.sendJSON(w, http.StatusCreated, s.store.AddList(req.Name, req.Description))
}

func (s *Server) handleGetList(w http.ResponseWriter, r *http.Request) {
	list, err := s.store.List(chi.URLParam(r, "id"))
	if err != nil {
		s.sendDomainError(w, err)
		return
	}
	s.sendJSON(w, http.StatusOK, list)
}

func (s *Server) handleUpdateList(w http.ResponseWriter, r *http.Request) {
	var req ListRequest
	if !s.decode(w, r, &req) {
		return
	}

	id := chi.URLParam(r, "id")
	err := s.store.UpdateList(id, func(l *models.ContactList) {
		l.Name = req.Name
		l.Description = req.Description
	})
	if err != nil {
		s.sendDomainError(w, err)
		return
	}
	s.handleGetList(w, r)
}

func (s *Server) handleDeleteList(w http.ResponseWriter, r *http.Request) {
	if err := s.store.DeleteList(chi.URLParam(r, "id")); err != nil {
		s.sendDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleAddContacts(w http.ResponseWriter, r *http.Request) {
	var req AddContactsRequest
	if !s.decode(w, r, &req) {
		return
	}

	added, err := s.store.AddContacts(chi.URLParam(r, "id"), req.Contacts)
	if err != nil {
		s.sendDomainError(w, err)
		return
	}
	s.sendJSON(w, http.StatusCreated, AddContactsResponse{Added: len(added), Contacts: added})
}

func (s *Server) handleUpdateContact(w http.ResponseWriter, r *http.Request) {
	var req models.ContactInput
	if !s.decode(w, r, &req) {
		return
	}

	listID := chi.URLParam(r, "id")
	err := s.store.UpdateContact(listID, chi.URLParam(r, "contactId"), func(c *models.Contact) {
		c.Email = req.Email
		c.FirstName = req.FirstName
		c.LastName = req.LastName
		c.Tags = append([]models.ID{}, req.Tags...)
		c.Vars = nil
		if len(req.Vars) > 0 {
			c.Vars = make(map[string]string, len(req.Vars))
			for k, v := range req.Vars {
				c.Vars[k] = v
			}
		}
	})
	if err != nil {
		s.sendDomainError(w, err)
		return
	}

	list, err := s.store.List(listID)
	if err != nil {
		s.sendDomainError(w, err)
		return
	}
	s.sendJSON(w, http.StatusOK, list)
}

func (s *Server) handleDeleteContact(w http.ResponseWriter, r *http.Request) {
	err := s.store.DeleteContact(chi.URLParam(r, "id"), chi.URLParam(r, "contactId"))
	if err != nil {
		s.sendDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
