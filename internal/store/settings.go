package store

import "github.com/foxzi/campaigner/internal/models"

// Settings returns a copy of the process-wide settings
func (s *Store) Settings() models.Settings {
	var out models.Settings
	s.View(func(st *models.State) {
		out = models.Settings{
			ResendAPIKey:  st.Settings.ResendAPIKey,
			CachedDomains: append([]models.Domain(nil), st.Settings.CachedDomains...),
		}
	})
	return out
}

// APIKey returns the configured provider credential, or "" if none
func (s *Store) APIKey() string {
	var key string
	s.View(func(st *models.State) {
		key = st.Settings.ResendAPIKey
	})
	return key
}

// SetAPIKey stores the provider credential. An empty key clears it.
func (s *Store) SetAPIKey(key string) {
	s.Update(func(st *models.State) error {
		st.Settings.ResendAPIKey = key
		return nil
	})
}

// SetCachedDomains replaces the cached domain list
func (s *Store) SetCachedDomains(domains []models.Domain) {
	s.Update(func(st *models.State) error {
		st.Settings.CachedDomains = append([]models.Domain{}, domains...)
		return nil
	})
}
