// Package audience computes the recipients of a campaign from its list and tag
// selection.
package audience

import "github.com/foxzi/campaigner/internal/models"

// Result is a resolved, deduplicated recipient set
type Result struct {
	Recipients []models.Contact
	Count      int
}

// Resolve collects the contacts of every list in listIDs (list order, then
// contact order), keeps only contacts carrying ALL of requiredTags when that is
// non-empty, and drops every contact whose email was already seen.
//
// The tag catalogue is not consulted: a required tag id that no longer exists
// simply matches nobody.
func Resolve(lists []models.ContactList, listIDs, requiredTags []models.ID) Result {
	selected := make(map[models.ID]bool, len(listIDs))
	for _, id := range listIDs {
		selected[id] = true
	}

	seen := make(map[string]bool)
	recipients := []models.Contact{}
	for _, l := range lists {
		if !selected[l.ID] {
			continue
		}
		for _, c := range l.Contacts {
			if len(requiredTags) > 0 && !c.HasAllTags(requiredTags) {
				continue
			}
			if seen[c.Email] {
				continue
			}
			seen[c.Email] = true
			recipients = append(recipients, c.Clone())
		}
	}

	return Result{Recipients: recipients, Count: len(recipients)}
}

// ForCampaign resolves the audience of c against the given state
func ForCampaign(st *models.State, c *models.Campaign) Result {
	return Resolve(st.Lists, c.Audience.ListIDs, c.Audience.Tags)
}
