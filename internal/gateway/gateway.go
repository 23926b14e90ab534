// Package gateway defines the contract between the dispatcher and an email
// delivery provider.
package gateway

import (
	"context"
	"fmt"
	"net/mail"
	"strings"

	"github.com/foxzi/campaigner/internal/models"
)

// Message is a single outgoing email
type Message struct {
	From    string `json:"from"`
	To      string `json:"to"`
	Subject string `json:"subject"`
	HTML    string `json:"html"`
}

// Gateway delivers messages through an external provider. The credential is
// passed per call because it lives in the mutable settings document.
type Gateway interface {
	Send(ctx context.Context, credential string, msg *Message) (string, error)
	ListDomains(ctx context.Context, credential string) ([]models.Domain, error)
}

// APIError is a non-success answer from the provider
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("provider error: %d - %s", e.StatusCode, e.Message)
}

// addressSpecials are the RFC 5322 specials that cannot appear unquoted in a
// display name. A period is allowed as an obsolete phrase.
const addressSpecials = `()<>[]:;@\,"`

// FormatFrom builds the From header value. An empty name yields the bare
// address; a name containing specials is quoted.
func FormatFrom(email, name string) string {
	if name == "" {
		return email
	}
	if strings.ContainsAny(name, addressSpecials) {
		return (&mail.Address{Name: name, Address: email}).String()
	}
	return fmt.Sprintf("%s <%s>", name, email)
}
