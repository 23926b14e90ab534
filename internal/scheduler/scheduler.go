// Package scheduler promotes due Scheduled campaigns to dispatch
package scheduler

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/foxzi/campaigner/internal/dispatch"
	"github.com/foxzi/campaigner/internal/metrics"
	"github.com/foxzi/campaigner/internal/models"
)

// CampaignSource lists the current campaigns
type CampaignSource interface {
	Campaigns() []models.Campaign
}

// Starter claims a campaign and runs its send loop in the background
type Starter interface {
	StartScheduled(ctx context.Context, id models.ID) error
}

// DefaultInterval is the evaluation period
const DefaultInterval = 30 * time.Second

// Scheduler evaluates campaigns on a fixed interval
type Scheduler struct {
	source   CampaignSource
	starter  Starter
	interval time.Duration
	logger   *slog.Logger
	now      func() time.Time

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New creates a scheduler
func New(source CampaignSource, starter Starter, interval time.Duration, logger *slog.Logger) *Scheduler {
	if interval <= 0 {
		interval = DefaultInterval
	}
	ctx, cancel := context.WithCancel(context.Background())

	return &Scheduler{
		source:   source,
		starter:  starter,
		interval: interval,
		logger:   logger.With("component", "scheduler"),
		now:      time.Now,
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Start runs one evaluation immediately and then one per interval
func (s *Scheduler) Start() {
	s.wg.Add(1)
	go s.run()
	s.logger.Info("scheduler started", "interval", s.interval)
}

// Stop ends the loop. Send loops already started keep running.
func (s *Scheduler) Stop() {
	s.logger.Info("stopping scheduler...")
	s.cancel()
	s.wg.Wait()
	s.logger.Info("scheduler stopped")
}

func (s *Scheduler) run() {
	defer s.wg.Done()

	s.Tick()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.ctx.Done():
			return
		case <-ticker.C:
			s.Tick()
		}
	}
}

// Tick starts every Scheduled campaign whose time has come and returns how
// many were started.
func (s *Scheduler) Tick() int {
	metrics.IncSchedulerTicks()

	now := models.TimestampOf(s.now())
	started := 0

	for _, c := range s.source.Campaigns() {
		if !c.DueAt(now) {
			continue
		}

		err := s.starter.StartScheduled(s.ctx, c.ID)
		switch {
		case err == nil:
			started++
			metrics.IncSchedulerPromoted()
			s.logger.Info("scheduled campaign started", "campaign_id", c.ID, "name", c.Name)
		case errors.Is(err, dispatch.ErrDispatchInProgress):
			s.logger.Debug("campaign already in flight", "campaign_id", c.ID)
		default:
			s.logger.Error("failed to start scheduled campaign", "campaign_id", c.ID, "error", err)
		}
	}

	return started
}
