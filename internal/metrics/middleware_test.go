package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
)

func TestHTTPMiddleware(t *testing.T) {
	m := New()
	SetGlobal(m)
	defer SetGlobal(nil)

	r := chi.NewRouter()
	r.Use(HTTPMiddleware)
	r.Get("/api/v1/campaigns/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	r.Get("/ok", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})

	for _, path := range []string{"/api/v1/campaigns/cmp_aaaaaaaaaaaa", "/api/v1/campaigns/cmp_bbbbbbbbbbbb", "/ok"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	if got := counterValue(t, m.APIRequestsTotal.WithLabelValues("GET", "/api/v1/campaigns/{id}", "404")); got != 2 {
		t.Errorf("requests{campaign,404} = %v, want 2", got)
	}
	if got := counterValue(t, m.APIRequestsTotal.WithLabelValues("GET", "/ok", "200")); got != 1 {
		t.Errorf("requests{ok,200} = %v, want 1", got)
	}
}

func TestNormalizePath_Fallback(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"/api/v1/lists/list_0123456789ab/contacts/ct_abcdefabcdef", "/api/v1/lists/{id}/contacts/{id}"},
		{"/api/v1/campaigns", "/api/v1/campaigns"},
		{"/api/v1/campaigns/not_an_id", "/api/v1/campaigns/not_an_id"},
	}

	for _, tt := range tests {
		r := httptest.NewRequest(http.MethodGet, tt.path, nil)
		if got := normalizePath(r); got != tt.want {
			t.Errorf("normalizePath(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}
