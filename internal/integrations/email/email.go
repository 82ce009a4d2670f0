// Package email sends plain-text mail over SMTP.
package email

import (
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"net/smtp"
	"strings"

	"github.com/rs/zerolog"

	logx "github.com/mobiusvibe/assistant/pkg/logger"
)

type Config struct {
	Host     string `envconfig:"SMTP_HOST"`
	Port     int    `envconfig:"SMTP_PORT" default:"587"`
	Username string `envconfig:"SMTP_USER"`
	Password string `envconfig:"SMTP_PASSWORD"`
	Sender   string `envconfig:"SMTP_SENDER"`
}

// Configured reports whether every required SMTP setting is present.
func (c Config) Configured() bool {
	return c.Host != "" && c.Port > 0 && c.Username != "" && c.Password != "" && c.senderAddress() != ""
}

func (c Config) senderAddress() string {
	if c.Sender != "" {
		return c.Sender
	}
	return c.Username
}

// Service sends email on behalf of the assistant. All failures are reported
// through the (ok, message) pair; nothing escapes as an error value.
type Service struct {
	cfg Config
	log zerolog.Logger
}

func New(cfg Config) *Service {
	s := &Service{cfg: cfg, log: logx.Component("email")}
	if !cfg.Configured() {
		s.log.Warn().Msg("email service not fully configured; sends will be rejected")
	}
	return s
}

// Send delivers one plain-text message. Authentication, connection, and
// generic failures each produce a distinct user-facing message.
func (s *Service) Send(recipient, subject, body string) (bool, string) {
	if !s.cfg.Configured() {
		s.log.Error().Msg("cannot send email: service not configured")
		return false, "Error: Email service not configured. Please check SMTP settings."
	}

	sender := s.cfg.senderAddress()
	msg := buildMessage(sender, recipient, subject, body)
	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)
	auth := smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)

	s.log.Info().Str("to", recipient).Str("via", addr).Msg("sending email")

	var err error
	if s.cfg.Port == 465 {
		err = s.sendImplicitTLS(addr, auth, sender, recipient, msg)
	} else {
		err = s.sendStartTLS(addr, auth, sender, recipient, msg)
	}
	if err == nil {
		s.log.Info().Str("to", recipient).Msg("email sent")
		return true, fmt.Sprintf("Email successfully sent to %s.", recipient)
	}

	s.log.Error().Err(err).Str("to", recipient).Msg("failed to send email")
	switch {
	case isAuthError(err):
		return false, "Failed to send email: Authentication error. Check username/password."
	case isConnectError(err):
		return false, "Failed to send email: Connection error. Check server/port."
	default:
		return false, fmt.Sprintf("Failed to send email due to an unexpected error: %v", err)
	}
}

func (s *Service) sendStartTLS(addr string, auth smtp.Auth, from, to string, msg []byte) error {
	client, err := smtp.Dial(addr)
	if err != nil {
		return &connectError{err}
	}
	defer client.Close()

	if ok, _ := client.Extension("STARTTLS"); ok {
		if err := client.StartTLS(&tls.Config{ServerName: s.cfg.Host}); err != nil {
			return &connectError{err}
		}
	}
	return s.transact(client, auth, from, to, msg)
}

func (s *Service) sendImplicitTLS(addr string, auth smtp.Auth, from, to string, msg []byte) error {
	conn, err := tls.Dial("tcp", addr, &tls.Config{ServerName: s.cfg.Host})
	if err != nil {
		return &connectError{err}
	}
	client, err := smtp.NewClient(conn, s.cfg.Host)
	if err != nil {
		conn.Close()
		return &connectError{err}
	}
	defer client.Close()
	return s.transact(client, auth, from, to, msg)
}

func (s *Service) transact(client *smtp.Client, auth smtp.Auth, from, to string, msg []byte) error {
	if err := client.Auth(auth); err != nil {
		return &authError{err}
	}
	if err := client.Mail(from); err != nil {
		return err
	}
	if err := client.Rcpt(to); err != nil {
		return err
	}
	w, err := client.Data()
	if err != nil {
		return err
	}
	if _, err := w.Write(msg); err != nil {
		w.Close()
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}
	return client.Quit()
}

// buildMessage assembles the RFC 5322 message bytes.
func buildMessage(from, to, subject, body string) []byte {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("From: %s\r\n", from))
	b.WriteString(fmt.Sprintf("To: %s\r\n", to))
	b.WriteString(fmt.Sprintf("Subject: %s\r\n", subject))
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=UTF-8\r\n")
	b.WriteString("\r\n")
	b.WriteString(body)
	return []byte(b.String())
}

type authError struct{ err error }

func (e *authError) Error() string { return fmt.Sprintf("smtp auth: %v", e.err) }
func (e *authError) Unwrap() error { return e.err }

type connectError struct{ err error }

func (e *connectError) Error() string { return fmt.Sprintf("smtp connect: %v", e.err) }
func (e *connectError) Unwrap() error { return e.err }

func isAuthError(err error) bool {
	var ae *authError
	return errors.As(err, &ae)
}

func isConnectError(err error) bool {
	var ce *connectError
	if errors.As(err, &ce) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne)
}
