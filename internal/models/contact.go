package models

// ID identifies any stored entity
type ID = string

// Tag is a label that can be attached to contacts and used as an audience filter
type Tag struct {
	ID   ID     `json:"id"`
	Name string `json:"name"`
}

// Contact represents a single recipient inside a contact list
type Contact struct {
	ID        ID                `json:"id"`
	Email     string            `json:"email"`
	FirstName string            `json:"firstName,omitempty"`
	LastName  string            `json:"lastName,omitempty"`
	Vars      map[string]string `json:"vars,omitempty"` // custom personalization fields
	Tags      []ID              `json:"tags"`
	CreatedAt Timestamp         `json:"createdAt"`
	UpdatedAt Timestamp         `json:"updatedAt"`
}

// HasAllTags reports whether the contact carries every tag in required
func (c *Contact) HasAllTags(required []ID) bool {
	for _, want := range required {
		found := false
		for _, have := range c.Tags {
			if have == want {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// ContactList is an ordered list of contacts; it owns its contacts exclusively
type ContactList struct {
	ID          ID        `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Contacts    []Contact `json:"contacts"`
	CreatedAt   Timestamp `json:"createdAt"`
	UpdatedAt   Timestamp `json:"updatedAt"`
}

// ContactInput holds the caller-supplied fields of a new contact
type ContactInput struct {
	Email     string            `json:"email" validate:"required,email"`
	FirstName string            `json:"firstName,omitempty"`
	LastName  string            `json:"lastName,omitempty"`
	Vars      map[string]string `json:"vars,omitempty"`
	Tags      []ID              `json:"tags,omitempty"`
}

// Clone returns a deep copy of the contact
func (c Contact) Clone() Contact {
	out := c
	out.Tags = append([]ID{}, c.Tags...)
	if c.Vars != nil {
		out.Vars = make(map[string]string, len(c.Vars))
		for k, v := range c.Vars {
			out.Vars[k] = v
		}
	}
	return out
}

// Clone returns a deep copy of the list and its contacts
func (l ContactList) Clone() ContactList {
	out := l
	out.Contacts = make([]Contact, len(l.Contacts))
	for i, c := range l.Contacts {
		out.Contacts[i] = c.Clone()
	}
	return out
}
