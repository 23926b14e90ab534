package app

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/foxzi/campaigner/internal/config"
	"github.com/foxzi/campaigner/internal/gateway/resend"
	smtpgw "github.com/foxzi/campaigner/internal/gateway/smtp"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func loadConfig(t *testing.T) *config.Config {
	t.Helper()
	t.Setenv("CAMPAIGNER_STORAGE_PATH", filepath.Join(t.TempDir(), "state.db"))
	t.Setenv("CAMPAIGNER_LOGGING_LEVEL", "error")
	cfg, err := config.Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	return cfg
}

func TestNew_SeedsAPIKey(t *testing.T) {
	t.Setenv("CAMPAIGNER_GATEWAY_API_KEY", "re_seed")
	cfg := loadConfig(t)

	a, err := New(cfg, "test")
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer a.Shutdown(context.Background())

	if got := a.Store().APIKey(); got != "re_seed" {
		t.Errorf("APIKey() = %q, want %q", got, "re_seed")
	}
	if a.scheduler == nil {
		t.Error("scheduler is nil, want enabled by default")
	}
	if a.metricsServer != nil {
		t.Error("metrics server created while metrics are disabled")
	}
}

func TestNew_KeepsStoredAPIKey(t *testing.T) {
	cfg := loadConfig(t)

	a, err := New(cfg, "test")
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	a.Store().SetAPIKey("re_user")
	a.Shutdown(context.Background())

	cfg.Gateway.APIKey = "re_config"
	a, err = New(cfg, "test")
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer a.Shutdown(context.Background())

	if got := a.Store().APIKey(); got != "re_user" {
		t.Errorf("APIKey() = %q, want %q", got, "re_user")
	}
}

func TestNew_BadDKIMKey(t *testing.T) {
	cfg := loadConfig(t)
	cfg.Gateway.Kind = "smtp"
	cfg.Gateway.SMTP.Addr = "localhost:2525"
	cfg.Gateway.SMTP.DKIM = config.DKIMConfig{
		Enabled:  true,
		Domain:   "acme.com",
		Selector: "s1",
		KeyFile:  filepath.Join(t.TempDir(), "missing.pem"),
	}

	if _, err := New(cfg, "test"); err == nil {
		t.Error("New() error = nil, want DKIM key error")
	}
}

func TestNewGateway(t *testing.T) {
	tests := []struct {
		name string
		cfg  config.GatewayConfig
		want string
	}{
		{"resend", config.GatewayConfig{Kind: "resend", Mode: "direct"}, "resend"},
		{"smtp", config.GatewayConfig{Kind: "smtp", SMTP: config.SMTPConfig{Addr: "localhost:2525"}}, "smtp"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gw, err := newGateway(tt.cfg, testLogger())
			if err != nil {
				t.Fatalf("newGateway() error = %v", err)
			}
			var got string
			switch gw.(type) {
			case *resend.Client:
				got = "resend"
			case *smtpgw.Gateway:
				got = "smtp"
			}
			if got != tt.want {
				t.Errorf("newGateway() = %T, want %s", gw, tt.want)
			}
		})
	}
}

func TestRelayClient(t *testing.T) {
	c := relayClient(config.GatewayConfig{Kind: "resend", Mode: "relay", BaseURL: "https://relay.example"})
	if c.Mode() != resend.ModeDirect {
		t.Errorf("Mode() = %q, want %q", c.Mode(), resend.ModeDirect)
	}
}
