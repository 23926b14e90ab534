package store

import (
	"fmt"

	"github.com/foxzi/campaigner/internal/models"
)

// Campaigns returns copies of all campaigns, newest first
func (s *Store) Campaigns() []models.Campaign {
	var out []models.Campaign
	s.View(func(st *models.State) {
		out = make([]models.Campaign, len(st.Campaigns))
		for i, c := range st.Campaigns {
			out[i] = c.Clone()
		}
	})
	return out
}

// Campaign returns a copy of one campaign
func (s *Store) Campaign(id models.ID) (models.Campaign, error) {
	var (
		out   models.Campaign
		found bool
	)
	s.View(func(st *models.State) {
		if c := st.FindCampaign(id); c != nil {
			out, found = c.Clone(), true
		}
	})
	if !found {
		return out, fmt.Errorf("campaign %s: %w", id, ErrNotFound)
	}
	return out, nil
}

// AddCampaign creates a campaign at the head of the list. Status defaults to Draft.
func (s *Store) AddCampaign(in models.CampaignInput) models.Campaign {
	now := models.Now()
	status := in.Status
	if status == "" {
		status = models.StatusDraft
	}
	c := models.Campaign{
		ID:        NewID("cmp"),
		Name:      in.Name,
		Subject:   in.Subject,
		FromName:  in.FromName,
		FromEmail: in.FromEmail,
		Audience: models.Audience{
			ListIDs: append([]models.ID{}, in.Audience.ListIDs...),
			Tags:    append([]models.ID{}, in.Audience.Tags...),
		},
		TemplateID:    in.TemplateID,
		HTML:          in.HTML,
		Status:        status,
		Links:         []models.LinkStat{},
		Timeseries48h: []models.SeriesPoint{},
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if in.ScheduledAt != nil {
		at := *in.ScheduledAt
		c.ScheduledAt = &at
	}

	s.Update(func(st *models.State) error {
		st.Campaigns = append([]models.Campaign{c}, st.Campaigns...)
		return nil
	})
	return c.Clone()
}

// UpdateCampaign applies fn to a campaign and bumps its updatedAt. The updated
// campaign is returned.
func (s *Store) UpdateCampaign(id models.ID, fn func(c *models.Campaign) error) (models.Campaign, error) {
	var out models.Campaign
	err := s.Update(func(st *models.State) error {
		c := st.FindCampaign(id)
		if c == nil {
			return fmt.Errorf("campaign %s: %w", id, ErrNotFound)
		}
		if err := fn(c); err != nil {
			return err
		}
		c.ID = id
		c.UpdatedAt = models.Now()
		out = c.Clone()
		return nil
	})
	return out, err
}

// DeleteCampaign removes a campaign
func (s *Store) DeleteCampaign(id models.ID) error {
	return s.Update(func(st *models.State) error {
		for i := range st.Campaigns {
			if st.Campaigns[i].ID == id {
				st.Campaigns = append(st.Campaigns[:i], st.Campaigns[i+1:]...)
				return nil
			}
		}
		return fmt.Errorf("campaign %s: %w", id, ErrNotFound)
	})
}
