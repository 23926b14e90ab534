package dispatch

import (
	"errors"
	"time"

	"github.com/foxzi/campaigner/internal/models"
	"github.com/foxzi/campaigner/internal/notify"
)

var (
	// ErrDispatchInProgress is returned when a campaign already has a running send loop
	ErrDispatchInProgress = errors.New("dispatch already in progress")
	// ErrScheduleInPast is returned when a schedule time is not in the future
	ErrScheduleInPast = errors.New("scheduled time is in the past")
	// ErrNoCredential is returned when no provider API key is configured
	ErrNoCredential = errors.New("no API key configured")
)

// Trigger labels what started a dispatch
type Trigger string

const (
	TriggerManual    Trigger = "manual"
	TriggerScheduler Trigger = "scheduler"
	TriggerAdhoc     Trigger = "adhoc"
)

// Notifier receives user-facing outcome messages
type Notifier interface {
	Notify(level notify.Level, message string)
}

// Config controls pacing and timeouts of the send loop
type Config struct {
	CampaignPacing time.Duration
	AdhocPacing    time.Duration
	SendTimeout    time.Duration
}

// DefaultConfig returns the standard pacing of 150ms per campaign message and
// 120ms per ad-hoc message.
func DefaultConfig() Config {
	return Config{
		CampaignPacing: 150 * time.Millisecond,
		AdhocPacing:    120 * time.Millisecond,
		SendTimeout:    30 * time.Second,
	}
}

// Result summarizes one dispatch
type Result struct {
	CampaignID models.ID             `json:"campaignId,omitempty"`
	Status     models.CampaignStatus `json:"status,omitempty"`
	Recipients int                   `json:"recipients"`
	Sent       int                   `json:"sent"`
	Failed     int                   `json:"failed"`
}

// AdhocRecipient is a transient recipient of a quick send
type AdhocRecipient struct {
	Email     string            `json:"email" validate:"required,email"`
	FirstName string            `json:"firstName,omitempty"`
	LastName  string            `json:"lastName,omitempty"`
	Vars      map[string]string `json:"vars,omitempty"`
}

// AdhocRequest is a one-off send that is not persisted as a campaign
type AdhocRequest struct {
	Subject   string           `json:"subject" validate:"required"`
	FromName  string           `json:"fromName"`
	FromEmail string           `json:"fromEmail" validate:"required,email"`
	HTML      string           `json:"html"`
	To        []AdhocRecipient `json:"to" validate:"required,min=1,dive"`
}

// contact adapts the recipient for personalization
func (r AdhocRecipient) contact() models.Contact {
	return models.Contact{
		ID:        "adhoc",
		Email:     r.Email,
		FirstName: r.FirstName,
		LastName:  r.LastName,
		Vars:      r.Vars,
		Tags:      []models.ID{},
	}
}

// seriesPoints is the number of hourly buckets covering 48 hours inclusive
const seriesPoints = 49

// Series48h returns the placeholder reporting series starting at start
func Series48h(start time.Time) []models.SeriesPoint {
	points := make([]models.SeriesPoint, seriesPoints)
	for i := range points {
		points[i] = models.SeriesPoint{T: models.TimestampOf(start.Add(time.Duration(i) * time.Hour))}
	}
	return points
}
