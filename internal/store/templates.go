package store

import (
	"fmt"

	"github.com/foxzi/campaigner/internal/models"
)

// Templates returns all templates
func (s *Store) Templates() []models.Template {
	var out []models.Template
	s.View(func(st *models.State) {
		out = append([]models.Template{}, st.Templates...)
	})
	return out
}

// Template returns one template
func (s *Store) Template(id models.ID) (models.Template, error) {
	var (
		out   models.Template
		found bool
	)
	s.View(func(st *models.State) {
		if t := st.FindTemplate(id); t != nil {
			out, found = *t, true
		}
	})
	if !found {
		return out, fmt.Errorf("template %s: %w", id, ErrNotFound)
	}
	return out, nil
}

// AddTemplate creates a template
func (s *Store) AddTemplate(name, html string) models.Template {
	now := models.Now()
	t := models.Template{ID: NewID("tpl"), Name: name, HTML: html, CreatedAt: now, UpdatedAt: now}
	s.Update(func(st *models.State) error {
		st.Templates = append(st.Templates, t)
		return nil
	})
	return t
}

// UpdateTemplate replaces name and body of a template
func (s *Store) UpdateTemplate(id models.ID, name, html string) (models.Template, error) {
	var out models.Template
	err := s.Update(func(st *models.State) error {
		t := st.FindTemplate(id)
		if t == nil {
			return fmt.Errorf("template %s: %w", id, ErrNotFound)
		}
		t.Name = name
		t.HTML = html
		t.UpdatedAt = models.Now()
		out = *t
		return nil
	})
	return out, err
}

// DeleteTemplate removes a template. Campaigns referencing it fall back to
// empty content at send time unless they carry their own html.
func (s *Store) DeleteTemplate(id models.ID) error {
	return s.Update(func(st *models.State) error {
		for i := range st.Templates {
			if st.Templates[i].ID == id {
				st.Templates = append(st.Templates[:i], st.Templates[i+1:]...)
				return nil
			}
		}
		return fmt.Errorf("template %s: %w", id, ErrNotFound)
	})
}
