package models

import "time"

// Timestamp is a Unix time in milliseconds, the unit used by the persisted document
type Timestamp int64

// Now returns the current time as a Timestamp
func Now() Timestamp {
	return TimestampOf(time.Now())
}

// TimestampOf converts t to a Timestamp
func TimestampOf(t time.Time) Timestamp {
	return Timestamp(t.UnixMilli())
}

// Time converts the timestamp back to a time.Time
func (t Timestamp) Time() time.Time {
	return time.UnixMilli(int64(t))
}

// Template is a reusable HTML body
type Template struct {
	ID        ID        `json:"id"`
	Name      string    `json:"name"`
	HTML      string    `json:"html"`
	CreatedAt Timestamp `json:"createdAt"`
	UpdatedAt Timestamp `json:"updatedAt"`
}

// Domain is a sending domain known to the mail provider
type Domain struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Status string `json:"status"` // pending, verified, failed, ...
}

// Settings is process-wide configuration. Without an API key no send is attempted.
type Settings struct {
	ResendAPIKey  string   `json:"resendApiKey,omitempty"`
	CachedDomains []Domain `json:"cachedDomains,omitempty"`
}

// State is the whole persisted document
type State struct {
	Settings  Settings      `json:"settings"`
	Tags      []Tag         `json:"tags"`
	Lists     []ContactList `json:"lists"`
	Templates []Template    `json:"templates"`
	Campaigns []Campaign    `json:"campaigns"`
}

// NewState returns an empty but valid state
func NewState() State {
	return State{
		Tags:      []Tag{},
		Lists:     []ContactList{},
		Templates: []Template{},
		Campaigns: []Campaign{},
	}
}

// Normalize replaces nil collections with empty ones so the document always
// serializes with arrays rather than nulls.
func (s *State) Normalize() {
	if s.Tags == nil {
		s.Tags = []Tag{}
	}
	if s.Lists == nil {
		s.Lists = []ContactList{}
	}
	if s.Templates == nil {
		s.Templates = []Template{}
	}
	if s.Campaigns == nil {
		s.Campaigns = []Campaign{}
	}
	for i := range s.Lists {
		if s.Lists[i].Contacts == nil {
			s.Lists[i].Contacts = []Contact{}
		}
		for j := range s.Lists[i].Contacts {
			if s.Lists[i].Contacts[j].Tags == nil {
				s.Lists[i].Contacts[j].Tags = []ID{}
			}
		}
	}
	for i := range s.Campaigns {
		c := &s.Campaigns[i]
		if c.Audience.ListIDs == nil {
			c.Audience.ListIDs = []ID{}
		}
		if c.Audience.Tags == nil {
			c.Audience.Tags = []ID{}
		}
		if c.Links == nil {
			c.Links = []LinkStat{}
		}
		if c.Timeseries48h == nil {
			c.Timeseries48h = []SeriesPoint{}
		}
	}
}

// Clone returns a deep copy of the state
func (s State) Clone() State {
	out := State{
		Settings: Settings{
			ResendAPIKey:  s.Settings.ResendAPIKey,
			CachedDomains: append([]Domain(nil), s.Settings.CachedDomains...),
		},
		Tags:      append([]Tag{}, s.Tags...),
		Lists:     make([]ContactList, len(s.Lists)),
		Templates: append([]Template{}, s.Templates...),
		Campaigns: make([]Campaign, len(s.Campaigns)),
	}
	for i, l := range s.Lists {
		out.Lists[i] = l.Clone()
	}
	for i, c := range s.Campaigns {
		out.Campaigns[i] = c.Clone()
	}
	return out
}

// FindCampaign returns a pointer into s.Campaigns or nil
func (s *State) FindCampaign(id ID) *Campaign {
	for i := range s.Campaigns {
		if s.Campaigns[i].ID == id {
			return &s.Campaigns[i]
		}
	}
	return nil
}

// FindList returns a pointer into s.Lists or nil
func (s *State) FindList(id ID) *ContactList {
	for i := range s.Lists {
		if s.Lists[i].ID == id {
			return &s.Lists[i]
		}
	}
	return nil
}

// FindTemplate returns a pointer into s.Templates or nil
func (s *State) FindTemplate(id ID) *Template {
	for i := range s.Templates {
		if s.Templates[i].ID == id {
			return &s.Templates[i]
		}
	}
	return nil
}
