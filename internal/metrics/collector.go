package metrics

import (
	"os"
	"runtime"
	"sync"
	"time"

	"github.com/foxzi/campaigner/internal/models"
)

// StateStatsProvider reports aggregate counts from the state document
type StateStatsProvider interface {
	CampaignCounts() map[models.CampaignStatus]int
	ContactCount() int
}

var campaignStatuses = []models.CampaignStatus{
	models.StatusDraft,
	models.StatusScheduled,
	models.StatusSending,
	models.StatusSent,
	models.StatusFailed,
}

// Collector periodically refreshes gauges that are derived rather than counted
type Collector struct {
	metrics     *Metrics
	stats       StateStatsProvider
	storagePath string
	interval    time.Duration
	startTime   time.Time

	stopCh chan struct{}
	wg     sync.WaitGroup
}

// NewCollector creates a collector. storagePath may be empty for in-memory storage.
func NewCollector(m *Metrics, stats StateStatsProvider, storagePath string, interval time.Duration) *Collector {
	if interval <= 0 {
		interval = 15 * time.Second
	}
	return &Collector{
		metrics:     m,
		stats:       stats,
		storagePath: storagePath,
		interval:    interval,
		startTime:   time.Now(),
		stopCh:      make(chan struct{}),
	}
}

// Start begins the refresh loop
func (c *Collector) Start() {
	c.Update()

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		ticker := time.NewTicker(c.interval)
		defer ticker.Stop()

		for {
			select {
			case <-c.stopCh:
				return
			case <-ticker.C:
				c.Update()
			}
		}
	}()
}

// Stop ends the refresh loop
func (c *Collector) Stop() {
	close(c.stopCh)
	c.wg.Wait()
}

// Update refreshes all derived gauges once
func (c *Collector) Update() {
	c.metrics.UptimeSeconds.Set(time.Since(c.startTime).Seconds())
	c.metrics.Goroutines.Set(float64(runtime.NumGoroutine()))

	if c.storagePath != "" {
		if info, err := os.Stat(c.storagePath); err == nil {
			c.metrics.StorageUsedBytes.Set(float64(info.Size()))
		}
	}

	if c.stats == nil {
		return
	}
	counts := c.stats.CampaignCounts()
	for _, status := range campaignStatuses {
		c.metrics.Campaigns.WithLabelValues(string(status)).Set(float64(counts[status]))
	}
	c.metrics.Contacts.Set(float64(c.stats.ContactCount()))
}
