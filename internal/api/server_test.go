package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/foxzi/campaigner/internal/config"
	"github.com/foxzi/campaigner/internal/dispatch"
	"github.com/foxzi/campaigner/internal/gateway"
	"github.com/foxzi/campaigner/internal/models"
	"github.com/foxzi/campaigner/internal/notify"
	"github.com/foxzi/campaigner/internal/store"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// mockGateway records messages; a non-nil block channel holds every send
type mockGateway struct {
	mu       sync.Mutex
	messages []gateway.Message
	block    chan struct{}
	domains  []models.Domain
}

func (g *mockGateway) Send(ctx context.Context, credential string, msg *gateway.Message) (string, error) {
	if g.block != nil {
		<-g.block
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	g.messages = append(g.messages, *msg)
	return "msg-id", nil
}

func (g *mockGateway) ListDomains(ctx context.Context, credential string) ([]models.Domain, error) {
	return g.domains, nil
}

func (g *mockGateway) count() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.messages)
}

type testEnv struct {
	server  *Server
	store   *store.Store
	d       *dispatch.Dispatcher
	gateway *mockGateway
	feed    *notify.Feed
}

func newTestEnv(t *testing.T, cfg *config.ServerConfig) *testEnv {
	t.Helper()
	if cfg == nil {
		cfg = &config.ServerConfig{ListenAddr: ":0"}
	}
	env := &testEnv{
		store:   store.New(store.NewMemoryStorage(), testLogger()),
		gateway: &mockGateway{},
		feed:    notify.NewFeed(10, testLogger()),
	}
	env.d = dispatch.New(env.store, env.gateway, env.feed, dispatch.Config{
		CampaignPacing: time.Millisecond,
		AdhocPacing:    time.Millisecond,
		SendTimeout:    5 * time.Second,
	}, testLogger())
	env.server = NewServer(cfg, Deps{
		Store:         env.store,
		Dispatcher:    env.d,
		Notifications: env.feed,
		Version:       "test",
	}, testLogger())
	return env
}

func (e *testEnv) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	e.server.Handler().ServeHTTP(w, req)
	return w
}

func decodeBody[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(w.Body).Decode(&v); err != nil {
		t.Fatalf("decode response: %v (body %q)", err, w.Body.String())
	}
	return v
}

// seedCampaign creates a list with the given emails and a campaign targeting it
func (e *testEnv) seedCampaign(t *testing.T, emails ...string) models.Campaign {
	t.Helper()
	l := e.store.AddList("Main", "")
	inputs := make([]models.ContactInput, len(emails))
	for i, addr := range emails {
		inputs[i] = models.ContactInput{Email: addr}
	}
	if _, err := e.store.AddContacts(l.ID, inputs); err != nil {
		t.Fatalf("AddContacts() error = %v", err)
	}
	return e.store.AddCampaign(models.CampaignInput{
		Name:      "Launch",
		Subject:   "Hello {{firstName}}",
		FromName:  "Acme",
		FromEmail: "news@acme.com",
		Audience:  models.Audience{ListIDs: []models.ID{l.ID}},
		HTML:      `<a href="https://acme.com">Hi</a>`,
	})
}

func TestHandleHealth(t *testing.T) {
	env := newTestEnv(t, nil)

	w := env.do(t, http.MethodGet, "/health", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
	resp := decodeBody[HealthResponse](t, w)
	if resp.Status != "ok" {
		t.Errorf("Status = %q, want %q", resp.Status, "ok")
	}
	if resp.Version != "test" {
		t.Errorf("Version = %q, want %q", resp.Version, "test")
	}
}

func TestIPFilter(t *testing.T) {
	env := newTestEnv(t, &config.ServerConfig{AllowedIPs: []string{"10.0.0.0/8"}})

	// httptest requests originate from 192.0.2.1
	if w := env.do(t, http.MethodGet, "/api/v1/tags", nil); w.Code != http.StatusForbidden {
		t.Errorf("filtered status = %d, want %d", w.Code, http.StatusForbidden)
	}
	if w := env.do(t, http.MethodGet, "/health", nil); w.Code != http.StatusOK {
		t.Errorf("health status = %d, want %d", w.Code, http.StatusOK)
	}
}

func TestRelayRoutesDisabledWithoutClient(t *testing.T) {
	env := newTestEnv(t, nil)

	w := env.do(t, http.MethodPost, "/api/send-email", map[string]string{"apiKey": "k"})
	if w.Code != http.StatusNotFound && w.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want 404 or 405", w.Code)
	}
}
