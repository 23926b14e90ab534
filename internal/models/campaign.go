package models

// CampaignStatus is the lifecycle state of a campaign
type CampaignStatus string

const (
	StatusDraft     CampaignStatus = "Draft"
	StatusScheduled CampaignStatus = "Scheduled"
	StatusSending   CampaignStatus = "Sending"
	StatusSent      CampaignStatus = "Sent"
	StatusFailed    CampaignStatus = "Failed"
)

// Valid reports whether s is one of the known statuses
func (s CampaignStatus) Valid() bool {
	switch s {
	case StatusDraft, StatusScheduled, StatusSending, StatusSent, StatusFailed:
		return true
	}
	return false
}

// Audience selects campaign recipients at send time
type Audience struct {
	ListIDs []ID `json:"listIds"`
	Tags    []ID `json:"tags"`
}

// CampaignMetrics holds engagement counters. Tracking is not implemented, so they stay zero.
type CampaignMetrics struct {
	Opens        int `json:"opens"`
	Clicks       int `json:"clicks"`
	Bounces      int `json:"bounces"`
	Unsubscribes int `json:"unsubscribes"`
}

// LinkStat is a hyperlink found in the campaign content
type LinkStat struct {
	URL    string `json:"url"`
	Clicks int    `json:"clicks"`
}

// SeriesPoint is one hourly bucket of the 48h report
type SeriesPoint struct {
	T      Timestamp `json:"t"`
	Opens  int       `json:"opens"`
	Clicks int       `json:"clicks"`
}

// Campaign represents an email campaign
type Campaign struct {
	ID              ID              `json:"id"`
	Name            string          `json:"name"`
	Subject         string          `json:"subject"`
	FromName        string          `json:"fromName"`
	FromEmail       string          `json:"fromEmail"`
	Audience        Audience        `json:"audience"`
	TemplateID      ID              `json:"templateId,omitempty"`
	HTML            string          `json:"html,omitempty"` // ad-hoc content, wins over TemplateID
	Status          CampaignStatus  `json:"status"`
	ScheduledAt     *Timestamp      `json:"scheduledAt,omitempty"`
	RecipientsCount int             `json:"recipientsCount"`
	Metrics         CampaignMetrics `json:"metrics"`
	Links           []LinkStat      `json:"links"`
	Timeseries48h   []SeriesPoint   `json:"timeseries48h"`
	CreatedAt       Timestamp       `json:"createdAt"`
	UpdatedAt       Timestamp       `json:"updatedAt"`
}

// CampaignInput holds the caller-supplied fields of a new campaign
type CampaignInput struct {
	Name        string         `json:"name" validate:"required"`
	Subject     string         `json:"subject" validate:"required"`
	FromName    string         `json:"fromName"`
	FromEmail   string         `json:"fromEmail" validate:"required,email"`
	Audience    Audience       `json:"audience"`
	TemplateID  ID             `json:"templateId,omitempty"`
	HTML        string         `json:"html,omitempty"`
	Status      CampaignStatus `json:"status,omitempty" validate:"omitempty,campaign_status"`
	ScheduledAt *Timestamp     `json:"scheduledAt,omitempty"`
}

// DueAt reports whether a scheduled campaign should be dispatched at now.
// A missing scheduledAt is treated as the epoch, i.e. always due.
func (c *Campaign) DueAt(now Timestamp) bool {
	if c.Status != StatusScheduled {
		return false
	}
	var at Timestamp
	if c.ScheduledAt != nil {
		at = *c.ScheduledAt
	}
	return at <= now
}

// Clone returns a deep copy of the campaign
func (c Campaign) Clone() Campaign {
	out := c
	out.Audience = Audience{
		ListIDs: append([]ID{}, c.Audience.ListIDs...),
		Tags:    append([]ID{}, c.Audience.Tags...),
	}
	if c.ScheduledAt != nil {
		at := *c.ScheduledAt
		out.ScheduledAt = &at
	}
	out.Links = append([]LinkStat{}, c.Links...)
	out.Timeseries48h = append([]SeriesPoint{}, c.Timeseries48h...)
	return out
}
