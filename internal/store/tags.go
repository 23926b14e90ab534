package store

import (
	"fmt"

	"github.com/foxzi/campaigner/internal/models"
)

// Tags returns all tags in insertion order
func (s *Store) Tags() []models.Tag {
	var out []models.Tag
	s.View(func(st *models.State) {
		out = append([]models.Tag{}, st.Tags...)
	})
	return out
}

// AddTag creates a tag
func (s *Store) AddTag(name string) models.Tag {
	tag := models.Tag{ID: NewID("tag"), Name: name}
	s.Update(func(st *models.State) error {
		st.Tags = append(st.Tags, tag)
		return nil
	})
	return tag
}

// DeleteTag removes a tag. References held by contacts and campaigns are kept.
func (s *Store) DeleteTag(id models.ID) error {
	return s.Update(func(st *models.State) error {
		for i := range st.Tags {
			if st.Tags[i].ID == id {
				st.Tags = append(st.Tags[:i], st.Tags[i+1:]...)
				return nil
			}
		}
		return fmt.Errorf("tag %s: %w", id, ErrNotFound)
	})
}
