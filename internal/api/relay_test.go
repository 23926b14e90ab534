package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/foxzi/campaigner/internal/config"
	"github.com/foxzi/campaigner/internal/gateway/resend"
)

// newRelayEnv points the relay at a fake Resend API
func newRelayEnv(t *testing.T, upstream http.HandlerFunc) *testEnv {
	t.Helper()
	srv := httptest.NewServer(upstream)
	t.Cleanup(srv.Close)

	env := newTestEnv(t, nil)
	env.server = NewServer(&config.ServerConfig{ListenAddr: ":0"}, Deps{
		Store:         env.store,
		Dispatcher:    env.d,
		Notifications: env.feed,
		Relay:         resend.NewClient(srv.URL, resend.ModeDirect, 5*time.Second),
	}, testLogger())
	return env
}

func TestRelaySend(t *testing.T) {
	var gotAuth string
	env := newRelayEnv(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		if r.URL.Path != "/emails" {
			t.Errorf("path = %q, want /emails", r.URL.Path)
		}
		var req resend.SendRequest
		json.NewDecoder(r.Body).Decode(&req)
		if req.To == "bad@example.com" {
			w.WriteHeader(http.StatusUnprocessableEntity)
			w.Write([]byte(`{"statusCode":422,"message":"Invalid to","name":"validation_error"}`))
			return
		}
		w.Write([]byte(`{"id":"email_1"}`))
	})

	full := resend.RelaySendRequest{
		APIKey:  "re_test",
		From:    "news@acme.com",
		To:      "a@example.com",
		Subject: "Hi",
		HTML:    "<p>x</p>",
	}

	tests := []struct {
		name       string
		mutate     func(r *resend.RelaySendRequest)
		wantStatus int
		wantError  string
	}{
		{"missing key", func(r *resend.RelaySendRequest) { r.APIKey = "" }, http.StatusBadRequest, "API key is required"},
		{"missing html", func(r *resend.RelaySendRequest) { r.HTML = "" }, http.StatusBadRequest, "Missing required fields: from, to, subject, html"},
		{"provider rejects", func(r *resend.RelaySendRequest) { r.To = "bad@example.com" }, http.StatusUnprocessableEntity, "Resend API error: 422 - Invalid to"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := full
			tt.mutate(&req)
			w := env.do(t, http.MethodPost, "/api/send-email", req)
			if w.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", w.Code, tt.wantStatus)
			}
			if got := decodeBody[ErrorResponse](t, w).Error; got != tt.wantError {
				t.Errorf("error = %q, want %q", got, tt.wantError)
			}
		})
	}

	w := env.do(t, http.MethodPost, "/api/send-email", full)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
	resp := decodeBody[resend.RelayResponse[resend.SendResponse]](t, w)
	if !resp.Success || resp.Data.ID != "email_1" {
		t.Errorf("response = %+v, want success with id email_1", resp)
	}
	if gotAuth != "Bearer re_test" {
		t.Errorf("Authorization = %q, want %q", gotAuth, "Bearer re_test")
	}
}

func TestRelayDomains(t *testing.T) {
	env := newRelayEnv(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet || r.URL.Path != "/domains" {
			t.Errorf("request = %s %s, want GET /domains", r.Method, r.URL.Path)
		}
		w.Write([]byte(`{"data":[{"id":"d1","name":"acme.com","status":"verified"}]}`))
	})

	if w := env.do(t, http.MethodPost, "/api/domains", resend.RelayDomainsRequest{}); w.Code != http.StatusBadRequest {
		t.Errorf("missing key status = %d, want %d", w.Code, http.StatusBadRequest)
	}

	w := env.do(t, http.MethodPost, "/api/domains", resend.RelayDomainsRequest{APIKey: "re_test"})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
	resp := decodeBody[resend.RelayResponse[resend.DomainsResponse]](t, w)
	if !resp.Success || len(resp.Data.Data) != 1 || resp.Data.Data[0].Name != "acme.com" {
		t.Errorf("response = %+v, want one acme.com domain", resp)
	}
}
