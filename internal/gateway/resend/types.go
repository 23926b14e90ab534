package resend

import "github.com/foxzi/campaigner/internal/models"

// Mode selects how the provider is reached
type Mode string

const (
	// ModeDirect calls the Resend REST API with a bearer credential
	ModeDirect Mode = "direct"
	// ModeRelay calls a same-origin relay that carries the credential in the body
	ModeRelay Mode = "relay"
)

// DefaultBaseURL is the public Resend API endpoint
const DefaultBaseURL = "https://api.resend.com"

// SendRequest is the body of POST /emails
type SendRequest struct {
	From    string `json:"from"`
	To      string `json:"to"`
	Subject string `json:"subject"`
	HTML    string `json:"html"`
}

// SendResponse is returned by POST /emails
type SendResponse struct {
	ID string `json:"id"`
}

// DomainsResponse is returned by GET /domains
type DomainsResponse struct {
	Data []models.Domain `json:"data"`
}

// RelaySendRequest is the body of the relay send endpoint
type RelaySendRequest struct {
	APIKey  string `json:"apiKey"`
	From    string `json:"from"`
	To      string `json:"to"`
	Subject string `json:"subject"`
	HTML    string `json:"html"`
}

// RelayDomainsRequest is the body of the relay domains endpoint
type RelayDomainsRequest struct {
	APIKey string `json:"apiKey"`
}

// RelayResponse wraps a successful relay answer
type RelayResponse[T any] struct {
	Success bool `json:"success"`
	Data    T    `json:"data"`
}

// RelayError is the error body of the relay endpoints
type RelayError struct {
	Error string `json:"error"`
}

// apiErrorBody is the error body of the Resend API
type apiErrorBody struct {
	StatusCode int    `json:"statusCode"`
	Message    string `json:"message"`
	Name       string `json:"name"`
}
