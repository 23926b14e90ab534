package gateway

import (
	"errors"
	"fmt"
	"net/mail"
	"testing"
)

func TestFormatFrom(t *testing.T) {
	tests := []struct {
		email string
		name  string
		want  string
	}{
		{"news@acme.com", "Acme", "Acme <news@acme.com>"},
		{"news@acme.com", "", "news@acme.com"},
		{"news@acme.com", "Acme News Team", "Acme News Team <news@acme.com>"},
		{"news@acme.com", "Dr. Lee", "Dr. Lee <news@acme.com>"},
		{"news@acme.com", "Acme, Inc.", `"Acme, Inc." <news@acme.com>`},
		{"news@acme.com", "Acme: News", `"Acme: News" <news@acme.com>`},
		{"news@acme.com", `Say "hi"`, `"Say \"hi\"" <news@acme.com>`},
		{"news@acme.com", "Ann (Sales)", `"Ann (Sales)" <news@acme.com>`},
	}

	for _, tt := range tests {
		got := FormatFrom(tt.email, tt.name)
		if got != tt.want {
			t.Errorf("FormatFrom(%q, %q) = %q, want %q", tt.email, tt.name, got, tt.want)
		}
		addr, err := mail.ParseAddress(got)
		if err != nil {
			t.Errorf("ParseAddress(%q) error = %v", got, err)
			continue
		}
		if addr.Address != tt.email {
			t.Errorf("ParseAddress(%q).Address = %q, want %q", got, addr.Address, tt.email)
		}
		if tt.name != "" && addr.Name != tt.name {
			t.Errorf("ParseAddress(%q).Name = %q, want %q", got, addr.Name, tt.name)
		}
	}
}

func TestAPIError(t *testing.T) {
	err := fmt.Errorf("send: %w", &APIError{StatusCode: 422, Message: "invalid from"})

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatal("errors.As() = false, want true")
	}
	if apiErr.StatusCode != 422 {
		t.Errorf("StatusCode = %d, want 422", apiErr.StatusCode)
	}
	if got := apiErr.Error(); got != "provider error: 422 - invalid from" {
		t.Errorf("Error() = %q", got)
	}
}
