package main

import (
	"bytes"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/foxzi/campaigner/internal/models"
	"github.com/foxzi/campaigner/internal/store"
)

func newStore() *store.Store {
	return store.New(store.NewMemoryStorage(), slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestExportImportState(t *testing.T) {
	src := newStore()
	src.SetAPIKey("re_test")
	l := src.AddList("Main", "")
	if _, err := src.AddContacts(l.ID, []models.ContactInput{{Email: "a@example.com"}}); err != nil {
		t.Fatalf("AddContacts() error = %v", err)
	}
	src.AddCampaign(models.CampaignInput{Name: "Launch", Subject: "Hi", FromEmail: "news@acme.com"})

	var buf bytes.Buffer
	if err := exportState(src, &buf); err != nil {
		t.Fatalf("exportState() error = %v", err)
	}

	dst := newStore()
	st, err := importState(dst, &buf)
	if err != nil {
		t.Fatalf("importState() error = %v", err)
	}
	if len(st.Lists) != 1 || len(st.Lists[0].Contacts) != 1 {
		t.Errorf("lists = %+v, want one list with one contact", st.Lists)
	}
	if len(st.Campaigns) != 1 {
		t.Errorf("len(Campaigns) = %d, want 1", len(st.Campaigns))
	}
	if got := dst.APIKey(); got != "re_test" {
		t.Errorf("APIKey() = %q, want %q", got, "re_test")
	}
}

func TestImportState_Invalid(t *testing.T) {
	dst := newStore()
	dst.AddTag("keep")

	if _, err := importState(dst, strings.NewReader("{not json")); err == nil {
		t.Fatal("importState() error = nil, want decode error")
	}
	if got := len(dst.Tags()); got != 1 {
		t.Errorf("len(Tags) = %d, want 1 (state untouched)", got)
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		in   string
		n    int
		want string
	}{
		{"short", 10, "short"},
		{"exactly10!", 10, "exactly10!"},
		{"much longer name", 10, "much lo..."},
	}
	for _, tt := range tests {
		if got := truncate(tt.in, tt.n); got != tt.want {
			t.Errorf("truncate(%q, %d) = %q, want %q", tt.in, tt.n, got, tt.want)
		}
	}
}
