package scheduler

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/foxzi/campaigner/internal/dispatch"
	"github.com/foxzi/campaigner/internal/gateway"
	"github.com/foxzi/campaigner/internal/models"
	"github.com/foxzi/campaigner/internal/notify"
	"github.com/foxzi/campaigner/internal/store"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type countingGateway struct {
	mu   sync.Mutex
	sent []string
}

func (g *countingGateway) Send(ctx context.Context, credential string, msg *gateway.Message) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.sent = append(g.sent, msg.To)
	return "id", nil
}

func (g *countingGateway) ListDomains(ctx context.Context, credential string) ([]models.Domain, error) {
	return nil, nil
}

func (g *countingGateway) count() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.sent)
}

func newDispatcher(t *testing.T, st *store.Store, gw gateway.Gateway) *dispatch.Dispatcher {
	t.Helper()
	cfg := dispatch.Config{SendTimeout: time.Second}
	return dispatch.New(st, gw, notify.NewFeed(10, testLogger()), cfg, testLogger())
}

func seed(t *testing.T, st *store.Store, status models.CampaignStatus, at *models.Timestamp) models.Campaign {
	t.Helper()
	l := st.AddList("L", "")
	if _, err := st.AddContacts(l.ID, []models.ContactInput{{Email: "a@x.com"}}); err != nil {
		t.Fatalf("AddContacts() error = %v", err)
	}
	return st.AddCampaign(models.CampaignInput{
		Name:        "c",
		Subject:     "s",
		FromEmail:   "news@acme.com",
		Audience:    models.Audience{ListIDs: []models.ID{l.ID}},
		HTML:        "<p>x</p>",
		Status:      status,
		ScheduledAt: at,
	})
}

func ts(t time.Time) *models.Timestamp {
	v := models.TimestampOf(t)
	return &v
}

func TestScheduler_Tick(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	st := store.New(store.NewMemoryStorage(), testLogger())
	st.SetAPIKey("k")
	gw := &countingGateway{}
	d := newDispatcher(t, st, gw)

	due := seed(t, st, models.StatusScheduled, ts(now.Add(-time.Minute)))
	exact := seed(t, st, models.StatusScheduled, ts(now))
	noTime := seed(t, st, models.StatusScheduled, nil)
	future := seed(t, st, models.StatusScheduled, ts(now.Add(time.Hour)))
	draft := seed(t, st, models.StatusDraft, ts(now.Add(-time.Hour)))

	s := New(st, d, time.Minute, testLogger())
	s.now = func() time.Time { return now }

	if got := s.Tick(); got != 3 {
		t.Errorf("Tick() = %d, want 3", got)
	}
	d.Wait()

	want := map[models.ID]models.CampaignStatus{
		due.ID:    models.StatusSent,
		exact.ID:  models.StatusSent,
		noTime.ID: models.StatusSent,
		future.ID: models.StatusScheduled,
		draft.ID:  models.StatusDraft,
	}
	for id, status := range want {
		c, _ := st.Campaign(id)
		if c.Status != status {
			t.Errorf("campaign %s status = %q, want %q", id, c.Status, status)
		}
	}

	// Sent campaigns are never selected again
	if got := s.Tick(); got != 0 {
		t.Errorf("second Tick() = %d, want 0", got)
	}
	d.Wait()
	if gw.count() != 3 {
		t.Errorf("gateway calls = %d, want 3", gw.count())
	}
}

type blockingGateway struct {
	countingGateway
	release chan struct{}
}

func (g *blockingGateway) Send(ctx context.Context, credential string, msg *gateway.Message) (string, error) {
	<-g.release
	return g.countingGateway.Send(ctx, credential, msg)
}

func TestScheduler_ClaimIsSynchronous(t *testing.T) {
	now := time.Now()
	st := store.New(store.NewMemoryStorage(), testLogger())
	st.SetAPIKey("k")
	gw := &blockingGateway{release: make(chan struct{})}
	d := newDispatcher(t, st, gw)
	c := seed(t, st, models.StatusScheduled, ts(now.Add(-time.Second)))

	s := New(st, d, time.Minute, testLogger())
	s.now = func() time.Time { return now }

	if got := s.Tick(); got != 1 {
		t.Fatalf("Tick() = %d, want 1", got)
	}
	got, _ := st.Campaign(c.ID)
	if got.Status != models.StatusSending {
		t.Errorf("status after tick = %q, want Sending", got.Status)
	}

	// The loop is still blocked; a second tick must not re-select the campaign
	if got := s.Tick(); got != 0 {
		t.Errorf("Tick() during flight = %d, want 0", got)
	}

	close(gw.release)
	d.Wait()
	if gw.count() != 1 {
		t.Errorf("gateway calls = %d, want 1", gw.count())
	}
}

func TestScheduler_NoCredentialFails(t *testing.T) {
	now := time.Now()
	st := store.New(store.NewMemoryStorage(), testLogger())
	gw := &countingGateway{}
	d := newDispatcher(t, st, gw)
	c := seed(t, st, models.StatusScheduled, ts(now.Add(-time.Second)))

	s := New(st, d, time.Minute, testLogger())
	s.now = func() time.Time { return now }
	s.Tick()
	d.Wait()

	got, _ := st.Campaign(c.ID)
	if got.Status != models.StatusFailed {
		t.Errorf("status = %q, want Failed", got.Status)
	}
	if gw.count() != 0 {
		t.Errorf("gateway calls = %d, want 0", gw.count())
	}
	if s.Tick() != 0 {
		t.Error("failed campaign selected again")
	}
}

type fakeStarter struct {
	mu    sync.Mutex
	calls int
	done  chan struct{}
}

func (f *fakeStarter) StartScheduled(ctx context.Context, id models.ID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.calls == 1 {
		close(f.done)
	}
	return nil
}

type staticSource []models.Campaign

func (s staticSource) Campaigns() []models.Campaign { return s }

func TestScheduler_StartRunsImmediateTick(t *testing.T) {
	starter := &fakeStarter{done: make(chan struct{})}
	source := staticSource{{ID: "cmp_1", Status: models.StatusScheduled}}

	s := New(source, starter, time.Hour, testLogger())
	s.Start()

	select {
	case <-starter.done:
	case <-time.After(5 * time.Second):
		t.Fatal("no evaluation on start")
	}
	s.Stop()
}
