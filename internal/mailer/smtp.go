// Package mailer opens authenticated sessions to an SMTP relay.
//
// A session is scoped to one caller: dial, send one or more messages, close.
// Nothing is pooled or shared between callers.
package mailer

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"net/smtp"
	"strconv"
	"time"
)

// Errors returned by the mailer.
var (
	ErrNotConfigured = errors.New("mail relay not configured")
	ErrNoRecipients  = errors.New("no recipients")
	ErrNoStartTLS    = errors.New("relay does not offer STARTTLS")
	ErrSessionClosed = errors.New("session closed")
)

// Config holds relay connection parameters.
type Config struct {
	Host     string
	Port     int
	Username string
	Password string

	// Timeout bounds the whole session: connect, handshake, auth and sends.
	Timeout time.Duration

	// RequireTLS refuses to authenticate when the relay does not offer STARTTLS.
	RequireTLS bool

	// TLSConfig overrides the STARTTLS client config. ServerName defaults to Host.
	TLSConfig *tls.Config
}

// Session is an open, authenticated relay connection.
type Session interface {
	Send(ctx context.Context, msg *Message) error
	Close() error
}

// Dialer opens sessions.
type Dialer interface {
	Dial(ctx context.Context) (Session, error)
}

// SMTPDialer dials a relay with net/smtp.
type SMTPDialer struct {
	cfg Config
}

// NewSMTPDialer creates a dialer. It does not connect.
func NewSMTPDialer(cfg Config) *SMTPDialer {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	return &SMTPDialer{cfg: cfg}
}

// Dial connects, negotiates STARTTLS when offered and logs in.
// On any failure the connection is released before returning.
func (d *SMTPDialer) Dial(ctx context.Context) (Session, error) {
	cfg := d.cfg
	if cfg.Host == "" || cfg.Port <= 0 {
		return nil, ErrNotConfigured
	}

	addr := net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port))
	deadline := time.Now().Add(cfg.Timeout)
	if ctxDeadline, ok := ctx.Deadline(); ok && ctxDeadline.Before(deadline) {
		deadline = ctxDeadline
	}

	dialer := &net.Dialer{Deadline: deadline}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("connect %s: %w", addr, err)
	}
	if err := conn.SetDeadline(deadline); err != nil {
		conn.Close()
		return nil, fmt.Errorf("set deadline: %w", err)
	}

	client, err := smtp.NewClient(conn, cfg.Host)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("smtp greeting: %w", err)
	}

	if ok, _ := client.Extension("STARTTLS"); ok {
		tlsConfig := cfg.TLSConfig
		if tlsConfig == nil {
			tlsConfig = &tls.Config{MinVersion: tls.VersionTLS12}
		} else {
			tlsConfig = tlsConfig.Clone()
		}
		if tlsConfig.ServerName == "" {
			tlsConfig.ServerName = cfg.Host
		}
		if err := client.StartTLS(tlsConfig); err != nil {
			client.Close()
			return nil, fmt.Errorf("starttls: %w", err)
		}
	} else if cfg.RequireTLS {
		client.Close()
		return nil, ErrNoStartTLS
	}

	if cfg.Username != "" {
		auth := smtp.PlainAuth("", cfg.Username, cfg.Password, cfg.Host)
		if err := client.Auth(auth); err != nil {
			client.Close()
			return nil, fmt.Errorf("smtp auth: %w", err)
		}
	}

	return &smtpSession{client: client}, nil
}

type smtpSession struct {
	client *smtp.Client
	closed bool
}

// Send transmits one message on the open session.
func (s *smtpSession) Send(ctx context.Context, msg *Message) error {
	if s.closed {
		return ErrSessionClosed
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := msg.Validate(); err != nil {
		return err
	}

	body, err := msg.Bytes()
	if err != nil {
		return err
	}

	if err := s.client.Mail(msg.From); err != nil {
		return fmt.Errorf("mail from: %w", err)
	}
	for _, rcpt := range msg.Recipients() {
		if err := s.client.Rcpt(rcpt); err != nil {
			return fmt.Errorf("rcpt %s: %w", rcpt, err)
		}
	}

	w, err := s.client.Data()
	if err != nil {
		return fmt.Errorf("data: %w", err)
	}
	if _, err := w.Write(body); err != nil {
		w.Close()
		return fmt.Errorf("write body: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("end data: %w", err)
	}

	return nil
}

// Close says QUIT and always releases the connection.
func (s *smtpSession) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	if err := s.client.Quit(); err != nil {
		s.client.Close()
		return fmt.Errorf("quit: %w", err)
	}
	return nil
}
