package store

import "github.com/foxzi/campaigner/internal/models"

// CampaignCounts returns the number of campaigns per status
func (s *Store) CampaignCounts() map[models.CampaignStatus]int {
	counts := make(map[models.CampaignStatus]int)
	s.View(func(st *models.State) {
		for _, c := range st.Campaigns {
			counts[c.Status]++
		}
	})
	return counts
}

// ContactCount returns the number of contacts across all lists, duplicates included
func (s *Store) ContactCount() int {
	var n int
	s.View(func(st *models.State) {
		for _, l := range st.Lists {
			n += len(l.Contacts)
		}
	})
	return n
}
