// Package dispatch runs campaign and ad-hoc send loops against the gateway
// and drives the campaign status machine.
package dispatch

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/foxzi/campaigner/internal/audience"
	"github.com/foxzi/campaigner/internal/content"
	"github.com/foxzi/campaigner/internal/gateway"
	"github.com/foxzi/campaigner/internal/metrics"
	"github.com/foxzi/campaigner/internal/models"
	"github.com/foxzi/campaigner/internal/notify"
	"github.com/foxzi/campaigner/internal/store"
)

// Dispatcher owns the send loops. At most one loop runs per campaign.
type Dispatcher struct {
	store    *store.Store
	gateway  gateway.Gateway
	notifier Notifier
	cfg      Config
	logger   *slog.Logger

	now   func() time.Time
	sleep func(time.Duration)

	mu       sync.Mutex
	inflight map[models.ID]struct{}
	wg       sync.WaitGroup
}

// New creates a dispatcher
func New(st *store.Store, gw gateway.Gateway, notifier Notifier, cfg Config, logger *slog.Logger) *Dispatcher {
	if cfg.SendTimeout <= 0 {
		cfg.SendTimeout = DefaultConfig().SendTimeout
	}
	return &Dispatcher{
		store:    st,
		gateway:  gw,
		notifier: notifier,
		cfg:      cfg,
		logger:   logger.With("component", "dispatch"),
		now:      time.Now,
		sleep:    time.Sleep,
		inflight: make(map[models.ID]struct{}),
	}
}

// run is a claimed campaign dispatch ready for its send loop
type run struct {
	trigger    Trigger
	campaign   models.Campaign
	credential string
	recipients []models.Contact
	html       string
}

// ScheduleCampaign marks a campaign for sending at when
func (d *Dispatcher) ScheduleCampaign(id models.ID, when time.Time) (models.Campaign, error) {
	if !when.After(d.now()) {
		return models.Campaign{}, fmt.Errorf("campaign %s: %w", id, ErrScheduleInPast)
	}
	at := models.TimestampOf(when)
	var c models.Campaign
	err := d.WhenIdle(id, func() error {
		var err error
		c, err = d.store.UpdateCampaign(id, func(c *models.Campaign) error {
			c.Status = models.StatusScheduled
			c.ScheduledAt = &at
			return nil
		})
		return err
	})
	if err != nil {
		return models.Campaign{}, err
	}

	d.logger.Info("campaign scheduled", "campaign_id", id, "scheduled_at", when)
	return c, nil
}

// SendCampaignNow dispatches a campaign and blocks until every recipient has
// been attempted.
func (d *Dispatcher) SendCampaignNow(ctx context.Context, id models.ID) (*Result, error) {
	r, res, err := d.claim(id, TriggerManual)
	if err != nil || r == nil {
		return res, err
	}
	return d.execute(context.WithoutCancel(ctx), r), nil
}

// StartCampaign claims a campaign synchronously and runs its send loop in the
// background. Once StartCampaign returns the campaign is Sending or Failed.
func (d *Dispatcher) StartCampaign(ctx context.Context, id models.ID) error {
	return d.start(ctx, id, TriggerManual)
}

// StartScheduled is StartCampaign for campaigns picked up by the scheduler
func (d *Dispatcher) StartScheduled(ctx context.Context, id models.ID) error {
	return d.start(ctx, id, TriggerScheduler)
}

func (d *Dispatcher) start(ctx context.Context, id models.ID, trigger Trigger) error {
	r, _, err := d.claim(id, trigger)
	if err != nil || r == nil {
		return err
	}

	loopCtx := context.WithoutCancel(ctx)
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		d.execute(loopCtx, r)
	}()
	return nil
}

// InFlight reports whether a send loop is running for the campaign
func (d *Dispatcher) InFlight(id models.ID) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	_, ok := d.inflight[id]
	return ok
}

// WhenIdle runs fn while no send loop for the campaign is running. No loop can
// start for any campaign until fn returns, so fn must not call back into the
// dispatcher.
func (d *Dispatcher) WhenIdle(id models.ID, fn func() error) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.inflight[id]; ok {
		return fmt.Errorf("campaign %s: %w", id, ErrDispatchInProgress)
	}
	return fn()
}

// WhenAllIdle is WhenIdle across every campaign, for whole-state changes
func (d *Dispatcher) WhenAllIdle(fn func() error) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if n := len(d.inflight); n > 0 {
		return fmt.Errorf("%d campaigns sending: %w", n, ErrDispatchInProgress)
	}
	return fn()
}

// Wait blocks until all background send loops have finished
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

func (d *Dispatcher) acquire(id models.ID) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.inflight[id]; ok {
		return false
	}
	d.inflight[id] = struct{}{}
	return true
}

func (d *Dispatcher) release(id models.ID) {
	d.mu.Lock()
	delete(d.inflight, id)
	d.mu.Unlock()
}

// claim moves the campaign out of its current status. Without a credential it
// ends in Failed and no run is returned. Otherwise the campaign is Sending with
// its recipient count and links written before any message leaves.
func (d *Dispatcher) claim(id models.ID, trigger Trigger) (*run, *Result, error) {
	if !d.acquire(id) {
		metrics.IncDispatches(string(trigger), metrics.OutcomeRejected)
		return nil, nil, fmt.Errorf("campaign %s: %w", id, ErrDispatchInProgress)
	}

	credential := d.store.APIKey()
	if credential == "" {
		defer d.release(id)
		c, err := d.store.UpdateCampaign(id, func(c *models.Campaign) error {
			c.Status = models.StatusFailed
			return nil
		})
		if err != nil {
			return nil, nil, err
		}
		metrics.IncDispatches(string(trigger), metrics.OutcomeFailed)
		d.logger.Warn("campaign failed: no API key", "campaign_id", id, "trigger", trigger)
		d.notify(notify.LevelError, fmt.Sprintf("Campaign %q failed: add an API key in settings", c.Name))
		return nil, &Result{CampaignID: id, Status: models.StatusFailed}, nil
	}

	r := &run{trigger: trigger, credential: credential}
	err := d.store.Update(func(st *models.State) error {
		c := st.FindCampaign(id)
		if c == nil {
			return fmt.Errorf("campaign %s: %w", id, store.ErrNotFound)
		}

		resolved := audience.ForCampaign(st, c)
		html := c.HTML
		if html == "" {
			if t := st.FindTemplate(c.TemplateID); t != nil {
				html = t.HTML
			}
		}

		c.Status = models.StatusSending
		c.RecipientsCount = resolved.Count
		c.Links = content.SeedLinks(content.ExtractLinks(html))
		c.Timeseries48h = []models.SeriesPoint{}
		c.UpdatedAt = models.TimestampOf(d.now())

		r.campaign = c.Clone()
		r.recipients = resolved.Recipients
		r.html = html
		return nil
	})
	if err != nil {
		d.release(id)
		return nil, nil, err
	}

	d.logger.Info("campaign sending",
		"campaign_id", id,
		"trigger", trigger,
		"recipients", len(r.recipients),
	)
	return r, nil, nil
}

// execute runs the send loop of a claimed campaign and finalizes it as Sent
func (d *Dispatcher) execute(ctx context.Context, r *run) *Result {
	id := r.campaign.ID
	defer d.release(id)

	metrics.IncInflight()
	defer metrics.DecInflight()

	from := gateway.FormatFrom(r.campaign.FromEmail, r.campaign.FromName)
	sent, failed := d.deliver(ctx, r.credential, from, r.campaign.Subject, r.html, r.recipients, d.cfg.CampaignPacing)

	_, err := d.store.UpdateCampaign(id, func(c *models.Campaign) error {
		c.Status = models.StatusSent
		c.Timeseries48h = Series48h(d.now())
		return nil
	})
	if err != nil {
		d.logger.Warn("failed to finalize campaign", "campaign_id", id, "error", err)
	}

	metrics.IncDispatches(string(r.trigger), metrics.OutcomeSent)
	d.logger.Info("campaign sent", "campaign_id", id, "sent", sent, "failed", failed)

	if failed > 0 {
		d.notify(notify.LevelError, fmt.Sprintf("Campaign %q sent with errors: %d delivered, %d failed", r.campaign.Name, sent, failed))
	} else {
		d.notify(notify.LevelSuccess, fmt.Sprintf("Campaign %q sent to %d recipients", r.campaign.Name, sent))
	}

	return &Result{
		CampaignID: id,
		Status:     models.StatusSent,
		Recipients: len(r.recipients),
		Sent:       sent,
		Failed:     failed,
	}
}

// deliver sends to every recipient in order. A failed send is counted and the
// loop moves on; the pacing delay follows every attempt.
func (d *Dispatcher) deliver(ctx context.Context, credential, from, subject, html string, recipients []models.Contact, pacing time.Duration) (sent, failed int) {
	for i := range recipients {
		rcpt := &recipients[i]
		msg := &gateway.Message{
			From:    from,
			To:      rcpt.Email,
			Subject: subject,
			HTML:    content.Personalize(html, rcpt),
		}

		sendCtx, cancel := context.WithTimeout(ctx, d.cfg.SendTimeout)
		messageID, err := d.gateway.Send(sendCtx, credential, msg)
		cancel()

		if err != nil {
			failed++
			metrics.IncMessagesFailed()
			d.logger.Warn("send failed", "to", rcpt.Email, "error", err)
		} else {
			sent++
			metrics.IncMessagesSent()
			d.logger.Debug("message sent", "to", rcpt.Email, "message_id", messageID)
		}

		if pacing > 0 {
			d.sleep(pacing)
		}
	}
	return sent, failed
}

// SendAdhoc sends a one-off message to transient recipients and blocks until
// all have been attempted. Nothing is persisted.
func (d *Dispatcher) SendAdhoc(ctx context.Context, req AdhocRequest) (*Result, error) {
	credential := d.store.APIKey()
	if credential == "" {
		metrics.IncDispatches(string(TriggerAdhoc), metrics.OutcomeRejected)
		return nil, ErrNoCredential
	}
	return d.sendAdhoc(context.WithoutCancel(ctx), credential, req), nil
}

// StartAdhoc is SendAdhoc with the loop running in the background
func (d *Dispatcher) StartAdhoc(ctx context.Context, req AdhocRequest) error {
	credential := d.store.APIKey()
	if credential == "" {
		metrics.IncDispatches(string(TriggerAdhoc), metrics.OutcomeRejected)
		return ErrNoCredential
	}

	loopCtx := context.WithoutCancel(ctx)
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		d.sendAdhoc(loopCtx, credential, req)
	}()
	return nil
}

func (d *Dispatcher) sendAdhoc(ctx context.Context, credential string, req AdhocRequest) *Result {
	metrics.IncInflight()
	defer metrics.DecInflight()

	recipients := make([]models.Contact, len(req.To))
	for i, r := range req.To {
		recipients[i] = r.contact()
	}

	from := gateway.FormatFrom(req.FromEmail, req.FromName)
	sent, failed := d.deliver(ctx, credential, from, req.Subject, req.HTML, recipients, d.cfg.AdhocPacing)

	metrics.IncDispatches(string(TriggerAdhoc), metrics.OutcomeSent)
	d.logger.Info("ad-hoc send finished", "recipients", len(recipients), "sent", sent, "failed", failed)

	if failed > 0 {
		d.notify(notify.LevelError, fmt.Sprintf("Quick send finished: %d delivered, %d failed", sent, failed))
	} else {
		d.notify(notify.LevelSuccess, fmt.Sprintf("Quick send delivered to %d recipients", sent))
	}

	return &Result{Recipients: len(recipients), Sent: sent, Failed: failed}
}

// RefreshDomains lists provider domains and caches them. On failure the
// previous cache is kept.
func (d *Dispatcher) RefreshDomains(ctx context.Context) ([]models.Domain, error) {
	credential := d.store.APIKey()
	if credential == "" {
		return nil, ErrNoCredential
	}

	domains, err := d.gateway.ListDomains(ctx, credential)
	if err != nil {
		metrics.IncDomainRefreshErrors()
		d.logger.Warn("failed to list domains", "error", err)
		return nil, fmt.Errorf("list domains: %w", err)
	}

	d.store.SetCachedDomains(domains)
	d.logger.Info("domains refreshed", "count", len(domains))
	return domains, nil
}

func (d *Dispatcher) notify(level notify.Level, message string) {
	if d.notifier != nil {
		d.notifier.Notify(level, message)
	}
}

