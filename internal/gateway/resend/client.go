// Package resend implements gateway.Gateway on top of the Resend HTTP API,
// either directly or through the relay endpoints.
package resend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/foxzi/campaigner/internal/gateway"
	"github.com/foxzi/campaigner/internal/models"
)

// Client is a Resend API client
type Client struct {
	baseURL    string
	mode       Mode
	httpClient *http.Client
}

// NewClient creates a new client. An empty baseURL selects the public API in
// direct mode; relay mode requires the relay origin.
func NewClient(baseURL string, mode Mode, timeout time.Duration) *Client {
	if mode == "" {
		mode = ModeDirect
	}
	if baseURL == "" && mode == ModeDirect {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		mode:    mode,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Mode returns the transport mode of the client
func (c *Client) Mode() Mode {
	return c.mode
}

// Send delivers one message and returns the provider message id
func (c *Client) Send(ctx context.Context, credential string, msg *gateway.Message) (string, error) {
	if c.mode == ModeRelay {
		var resp RelayResponse[SendResponse]
		body := &RelaySendRequest{
			APIKey:  credential,
			From:    msg.From,
			To:      msg.To,
			Subject: msg.Subject,
			HTML:    msg.HTML,
		}
		if err := c.request(ctx, http.MethodPost, "/api/send-email", "", body, &resp); err != nil {
			return "", err
		}
		return resp.Data.ID, nil
	}

	resp, err := c.SendEmail(ctx, credential, &SendRequest{
		From:    msg.From,
		To:      msg.To,
		Subject: msg.Subject,
		HTML:    msg.HTML,
	})
	if err != nil {
		return "", err
	}
	return resp.ID, nil
}

// ListDomains returns the sending domains registered with the provider
func (c *Client) ListDomains(ctx context.Context, credential string) ([]models.Domain, error) {
	if c.mode == ModeRelay {
		var resp RelayResponse[DomainsResponse]
		body := &RelayDomainsRequest{APIKey: credential}
		if err := c.request(ctx, http.MethodPost, "/api/domains", "", body, &resp); err != nil {
			return nil, err
		}
		return nonNil(resp.Data.Data), nil
	}

	resp, err := c.Domains(ctx, credential)
	if err != nil {
		return nil, err
	}
	return nonNil(resp.Data), nil
}

// SendEmail calls POST /emails on the Resend API
func (c *Client) SendEmail(ctx context.Context, credential string, req *SendRequest) (*SendResponse, error) {
	var resp SendResponse
	if err := c.request(ctx, http.MethodPost, "/emails", credential, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Domains calls GET /domains on the Resend API
func (c *Client) Domains(ctx context.Context, credential string) (*DomainsResponse, error) {
	var resp DomainsResponse
	if err := c.request(ctx, http.MethodGet, "/domains", credential, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// request performs an HTTP request. The bearer header is only set when a
// credential is given; relay calls carry it in the body instead.
func (c *Client) request(ctx context.Context, method, path, credential string, body any, result any) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	if credential != "" {
		req.Header.Set("Authorization", "Bearer "+credential)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
		return &gateway.APIError{
			StatusCode: resp.StatusCode,
			Message:    errorMessage(raw),
		}
	}

	if result != nil && resp.StatusCode != http.StatusNoContent {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}

	return nil
}

// errorMessage extracts a readable message from either error body shape,
// falling back to the raw text.
func errorMessage(raw []byte) string {
	var apiErr apiErrorBody
	if err := json.Unmarshal(raw, &apiErr); err == nil && apiErr.Message != "" {
		return apiErr.Message
	}
	var relayErr RelayError
	if err := json.Unmarshal(raw, &relayErr); err == nil && relayErr.Error != "" {
		return relayErr.Error
	}
	return strings.TrimSpace(string(raw))
}

func nonNil(domains []models.Domain) []models.Domain {
	if domains == nil {
		return []models.Domain{}
	}
	return domains
}
