// Package smtp implements gateway.Gateway by submitting messages to an SMTP
// relay with PLAIN authentication.
package smtp

import (
	"bytes"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/mail"
	"time"

	"github.com/emersion/go-sasl"
	"github.com/emersion/go-smtp"
	"github.com/google/uuid"

	"github.com/foxzi/campaigner/internal/gateway"
	"github.com/foxzi/campaigner/internal/models"
)

// Config holds submission settings
type Config struct {
	Addr        string
	Username    string
	Hostname    string
	FromDomains []string
	Timeout     time.Duration
	// StartTLS upgrades every session before authenticating; a relay
	// without STARTTLS is then an error
	StartTLS bool
	// TLSConfig is used for STARTTLS. Nil verifies against the host of Addr.
	TLSConfig *tls.Config
}

// Gateway submits messages over SMTP. The per-call credential is the
// submission password.
type Gateway struct {
	cfg    Config
	signer *Signer
	logger *slog.Logger
}

// New creates an SMTP gateway. signer may be nil.
func New(cfg Config, signer *Signer, logger *slog.Logger) *Gateway {
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.Hostname == "" {
		cfg.Hostname = "localhost"
	}
	return &Gateway{
		cfg:    cfg,
		signer: signer,
		logger: logger,
	}
}

// Send submits one message and returns its Message-ID
func (g *Gateway) Send(ctx context.Context, credential string, msg *gateway.Message) (string, error) {
	from, err := mail.ParseAddress(msg.From)
	if err != nil {
		return "", fmt.Errorf("invalid from address: %w", err)
	}
	to, err := mail.ParseAddress(msg.To)
	if err != nil {
		return "", fmt.Errorf("invalid recipient address: %w", err)
	}

	messageID := fmt.Sprintf("%s@%s", uuid.New().String(), domainOf(from.Address))
	data := buildMessage(from, to, msg.Subject, msg.HTML, messageID, time.Now())

	if g.signer != nil && g.signer.Domain() == domainOf(from.Address) {
		signed, err := g.signer.Sign(data)
		if err != nil {
			g.logger.Warn("DKIM signing failed, sending unsigned", "error", err)
		} else {
			data = signed
		}
	}

	if err := g.submit(ctx, credential, from.Address, to.Address, data); err != nil {
		return "", err
	}

	g.logger.Debug("message submitted", "message_id", messageID, "to", to.Address)
	return messageID, nil
}

// ListDomains reports the configured sender domains. A domain counts as
// verified when outgoing mail for it is DKIM-signed.
func (g *Gateway) ListDomains(ctx context.Context, credential string) ([]models.Domain, error) {
	domains := make([]models.Domain, 0, len(g.cfg.FromDomains))
	for _, name := range g.cfg.FromDomains {
		status := "pending"
		if g.signer != nil && g.signer.Domain() == name {
			status = "verified"
		}
		domains = append(domains, models.Domain{ID: name, Name: name, Status: status})
	}
	return domains, nil
}

func (g *Gateway) submit(ctx context.Context, password, from, to string, data []byte) error {
	ctx, cancel := context.WithTimeout(ctx, g.cfg.Timeout)
	defer cancel()

	dialer := &net.Dialer{}
	conn, err := dialer.DialContext(ctx, "tcp", g.cfg.Addr)
	if err != nil {
		return fmt.Errorf("dial %s: %w", g.cfg.Addr, err)
	}
	if deadline, ok := ctx.Deadline(); ok {
		conn.SetDeadline(deadline)
	}
	stop := context.AfterFunc(ctx, func() { conn.Close() })
	defer stop()

	c, err := g.newClient(conn)
	if err != nil {
		return err
	}
	defer c.Close()

	if err := c.Hello(g.cfg.Hostname); err != nil {
		return fmt.Errorf("EHLO: %w", err)
	}

	if g.cfg.Username != "" {
		if err := c.Auth(sasl.NewPlainClient("", g.cfg.Username, password)); err != nil {
			return mapError(err)
		}
	}

	if err := c.SendMail(from, []string{to}, bytes.NewReader(data)); err != nil {
		return mapError(err)
	}

	return c.Quit()
}

// newClient opens the SMTP session, upgrading it with STARTTLS when
// configured. The EHLO after the upgrade is left to the caller.
func (g *Gateway) newClient(conn net.Conn) (*smtp.Client, error) {
	if !g.cfg.StartTLS {
		return smtp.NewClient(conn), nil
	}
	tlsConfig := g.cfg.TLSConfig
	if tlsConfig == nil {
		host, _, _ := net.SplitHostPort(g.cfg.Addr)
		tlsConfig = &tls.Config{ServerName: host}
	}
	c, err := smtp.NewClientStartTLS(conn, tlsConfig)
	if err != nil {
		return nil, fmt.Errorf("STARTTLS: %w", err)
	}
	return c, nil
}

// mapError turns SMTP replies into gateway API errors
func mapError(err error) error {
	var smtpErr *smtp.SMTPError
	if errors.As(err, &smtpErr) {
		return &gateway.APIError{StatusCode: smtpErr.Code, Message: smtpErr.Message}
	}
	return err
}
