package store

import (
	"fmt"

	"github.com/foxzi/campaigner/internal/models"
)

// Lists returns copies of all contact lists
func (s *Store) Lists() []models.ContactList {
	var out []models.ContactList
	s.View(func(st *models.State) {
		out = make([]models.ContactList, len(st.Lists))
		for i, l := range st.Lists {
			out[i] = l.Clone()
		}
	})
	return out
}

// List returns a copy of one contact list
func (s *Store) List(id models.ID) (models.ContactList, error) {
	var (
		out   models.ContactList
		found bool
	)
	s.View(func(st *models.State) {
		if l := st.FindList(id); l != nil {
			out = l.Clone()
			found = true
		}
	})
	if !found {
		return out, fmt.Errorf("list %s: %w", id, ErrNotFound)
	}
	return out, nil
}

// AddList creates an empty contact list
func (s *Store) AddList(name, description string) models.ContactList {
	now := models.Now()
	list := models.ContactList{
		ID:          NewID("list"),
		Name:        name,
		Description: description,
		Contacts:    []models.Contact{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	s.Update(func(st *models.State) error {
		st.Lists = append(st.Lists, list)
		return nil
	})
	return list.Clone()
}

// UpdateList applies fn to the list and bumps its updatedAt
func (s *Store) UpdateList(id models.ID, fn func(l *models.ContactList)) error {
	return s.Update(func(st *models.State) error {
		l := st.FindList(id)
		if l == nil {
			return fmt.Errorf("list %s: %w", id, ErrNotFound)
		}
		fn(l)
		l.ID = id
		l.UpdatedAt = models.Now()
		return nil
	})
}

// DeleteList removes a list together with its contacts
func (s *Store) DeleteList(id models.ID) error {
	return s.Update(func(st *models.State) error {
		for i := range st.Lists {
			if st.Lists[i].ID == id {
				st.Lists = append(st.Lists[:i], st.Lists[i+1:]...)
				return nil
			}
		}
		return fmt.Errorf("list %s: %w", id, ErrNotFound)
	})
}

// AddContacts appends contacts to a list. Duplicate emails are allowed inside a
// list; deduplication happens when an audience is resolved.
func (s *Store) AddContacts(listID models.ID, inputs []models.ContactInput) ([]models.Contact, error) {
	now := models.Now()
	added := make([]models.Contact, 0, len(inputs))
	for _, in := range inputs {
		c := models.Contact{
			ID:        NewID("ct"),
			Email:     in.Email,
			FirstName: in.FirstName,
			LastName:  in.LastName,
			Tags:      append([]models.ID{}, in.Tags...),
			CreatedAt: now,
			UpdatedAt: now,
		}
		if len(in.Vars) > 0 {
			c.Vars = make(map[string]string, len(in.Vars))
			for k, v := range in.Vars {
				c.Vars[k] = v
			}
		}
		added = append(added, c)
	}

	err := s.Update(func(st *models.State) error {
		l := st.FindList(listID)
		if l == nil {
			return fmt.Errorf("list %s: %w", listID, ErrNotFound)
		}
		for _, c := range added {
			l.Contacts = append(l.Contacts, c.Clone())
		}
		l.UpdatedAt = now
		return nil
	})
	if err != nil {
		return nil, err
	}
	return added, nil
}

// UpdateContact applies fn to one contact of a list
func (s *Store) UpdateContact(listID, contactID models.ID, fn func(c *models.Contact)) error {
	return s.Update(func(st *models.State) error {
		l := st.FindList(listID)
		if l == nil {
			return fmt.Errorf("list %s: %w", listID, ErrNotFound)
		}
		now := models.Now()
		for i := range l.Contacts {
			if l.Contacts[i].ID == contactID {
				fn(&l.Contacts[i])
				l.Contacts[i].ID = contactID
				l.Contacts[i].UpdatedAt = now
				l.UpdatedAt = now
				return nil
			}
		}
		return fmt.Errorf("contact %s: %w", contactID, ErrNotFound)
	})
}

// DeleteContact removes one contact from a list
func (s *Store) DeleteContact(listID, contactID models.ID) error {
	return s.Update(func(st *models.State) error {
		l := st.FindList(listID)
		if l == nil {
			return fmt.Errorf("list %s: %w", listID, ErrNotFound)
		}
		for i := range l.Contacts {
			if l.Contacts[i].ID == contactID {
				l.Contacts = append(l.Contacts[:i], l.Contacts[i+1:]...)
				l.UpdatedAt = models.Now()
				return nil
			}
		}
		return fmt.Errorf("contact %s: %w", contactID, ErrNotFound)
	})
}
