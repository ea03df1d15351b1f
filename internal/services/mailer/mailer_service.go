// -------------------------------------------------------------------------
// Last Modified: Tuesday, 18th August 2026 10:12:09 am
// Modified By: Bob McAllan
// -------------------------------------------------------------------------

package mailer

import (
	"context"
	"crypto/rand"
	"crypto/tls"
	"encoding/base64"
	"errors"
	"fmt"
	"net/smtp"
	"strings"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/tradedeck/internal/interfaces"
)

// ErrNotConfigured means the smtp_* settings are incomplete. Callers treat
// mail as an optional feature and surface this instead of retrying.
var ErrNotConfigured = errors.New("smtp is not configured")

// Attachment is a file attached to an outgoing email
type Attachment struct {
	Filename    string
	ContentType string // e.g. "application/pdf"; empty means octet-stream
	Content     []byte
}

// Service sends email through the SMTP server configured under the smtp_*
// settings keys. Delivery tries implicit TLS first and falls back to
// STARTTLS so both 465-style and 587-style servers work.
type Service struct {
	settings interfaces.SettingsService
	fromName string
	logger   arbor.ILogger
}

func NewService(settings interfaces.SettingsService, logger arbor.ILogger) *Service {
	return &Service{
		settings: settings,
		fromName: "TradeDeck",
		logger:   logger,
	}
}

// Configured reports whether enough smtp_* settings exist to attempt delivery
func (s *Service) Configured(ctx context.Context) bool {
	cfg, err := s.settings.SMTP(ctx)
	return err == nil && cfg.Configured()
}

// Send delivers a plain text email
func (s *Service) Send(ctx context.Context, to, subject, body string) error {
	return s.SendWithAttachments(ctx, to, subject, body, nil)
}

// SendWithAttachments delivers a plain text email with file attachments
func (s *Service) SendWithAttachments(ctx context.Context, to, subject, body string, attachments []Attachment) error {
	cfg, err := s.settings.SMTP(ctx)
	if err != nil {
		return err
	}
	if !cfg.Configured() {
		return ErrNotConfigured
	}

	msg := buildMessage(s.fromName, cfg.From, to, subject, body, attachments)

	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
	var auth smtp.Auth
	if cfg.Username != "" {
		auth = smtp.PlainAuth("", cfg.Username, cfg.Password, cfg.Host)
	}

	if err := s.transmit(addr, cfg.Host, auth, cfg.From, to, msg); err != nil {
		s.logger.Error().
			Str("to", to).
			Str("host", cfg.Host).
			Err(err).
			Msg("Email delivery failed")
		return err
	}

	s.logger.Info().
		Str("to", to).
		Str("subject", subject).
		Int("attachments", len(attachments)).
		Msg("Email sent")
	return nil
}

// transmit dials the server and runs one SMTP session. Implicit TLS is
// tried first; servers that only speak STARTTLS refuse the TLS handshake
// and get a plain dial with an upgrade instead.
func (s *Service) transmit(addr, host string, auth smtp.Auth, from, to, msg string) error {
	tlsConfig := &tls.Config{ServerName: host}

	conn, err := tls.Dial("tcp", addr, tlsConfig)
	if err == nil {
		defer conn.Close()
		client, err := smtp.NewClient(conn, host)
		if err != nil {
			return fmt.Errorf("failed to open smtp session: %w", err)
		}
		defer client.Close()
		return runSession(client, auth, from, to, msg)
	}

	client, err := smtp.Dial(addr)
	if err != nil {
		return fmt.Errorf("failed to connect to %s: %w", addr, err)
	}
	defer client.Close()

	if err := client.StartTLS(tlsConfig); err != nil {
		return fmt.Errorf("failed to start TLS: %w", err)
	}
	return runSession(client, auth, from, to, msg)
}

func runSession(client *smtp.Client, auth smtp.Auth, from, to, msg string) error {
	if auth != nil {
		if err := client.Auth(auth); err != nil {
			return fmt.Errorf("smtp authentication failed: %w", err)
		}
	}
	if err := client.Mail(from); err != nil {
		return fmt.Errorf("failed to set sender: %w", err)
	}
	if err := client.Rcpt(to); err != nil {
		return fmt.Errorf("failed to set recipient: %w", err)
	}

	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("failed to open data stream: %w", err)
	}
	if _, err := w.Write([]byte(msg)); err != nil {
		return fmt.Errorf("failed to write message: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("failed to finish message: %w", err)
	}
	return client.Quit()
}

// buildMessage assembles the MIME message. Without attachments the body is
// a single text/plain part; with them it becomes multipart/mixed with every
// part base64-encoded to stay inside RFC 5322 line limits.
func buildMessage(fromName, from, to, subject, body string, attachments []Attachment) string {
	var msg strings.Builder
	fmt.Fprintf(&msg, "From: %s <%s>\r\n", fromName, from)
	fmt.Fprintf(&msg, "To: %s\r\n", to)
	fmt.Fprintf(&msg, "Subject: %s\r\n", subject)

	if len(attachments) == 0 {
		msg.WriteString("Content-Type: text/plain; charset=\"UTF-8\"\r\n")
		msg.WriteString("\r\n")
		msg.WriteString(body)
		return msg.String()
	}

	boundary := newBoundary()
	msg.WriteString("MIME-Version: 1.0\r\n")
	fmt.Fprintf(&msg, "Content-Type: multipart/mixed; boundary=\"%s\"\r\n", boundary)
	msg.WriteString("\r\n")

	fmt.Fprintf(&msg, "--%s\r\n", boundary)
	msg.WriteString("Content-Type: text/plain; charset=\"UTF-8\"\r\n")
	msg.WriteString("Content-Transfer-Encoding: base64\r\n")
	msg.WriteString("\r\n")
	msg.WriteString(wrapBase64([]byte(body)))
	msg.WriteString("\r\n")

	for _, att := range attachments {
		contentType := att.ContentType
		if contentType == "" {
			contentType = "application/octet-stream"
		}
		fmt.Fprintf(&msg, "--%s\r\n", boundary)
		fmt.Fprintf(&msg, "Content-Type: %s; name=\"%s\"\r\n", contentType, att.Filename)
		msg.WriteString("Content-Transfer-Encoding: base64\r\n")
		fmt.Fprintf(&msg, "Content-Disposition: attachment; filename=\"%s\"\r\n", att.Filename)
		msg.WriteString("\r\n")
		msg.WriteString(wrapBase64(att.Content))
		msg.WriteString("\r\n")
	}

	fmt.Fprintf(&msg, "--%s--\r\n", boundary)
	return msg.String()
}

// newBoundary returns a MIME boundary that cannot collide with base64 content
func newBoundary() string {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "tradedeck_boundary"
	}
	return fmt.Sprintf("tradedeck_%x", b)
}

// wrapBase64 encodes content with 76-char lines per RFC 2045
func wrapBase64(content []byte) string {
	encoded := base64.StdEncoding.EncodeToString(content)

	var out strings.Builder
	const lineLen = 76
	for i := 0; i < len(encoded); i += lineLen {
		end := i + lineLen
		if end > len(encoded) {
			end = len(encoded)
		}
		out.WriteString(encoded[i:end])
		if end < len(encoded) {
			out.WriteString("\r\n")
		}
	}
	return out.String()
}
