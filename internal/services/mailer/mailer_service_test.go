package mailer

import (
	"context"
	"encoding/base64"
	"errors"
	"strings"
	"testing"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/tradedeck/internal/interfaces"
)

// stubSettings serves fixed SMTP settings
type stubSettings struct {
	interfaces.SettingsService
	smtp interfaces.SMTPSettings
	err  error
}

func (s *stubSettings) SMTP(ctx context.Context) (interfaces.SMTPSettings, error) {
	return s.smtp, s.err
}

func TestSendUnconfigured(t *testing.T) {
	svc := NewService(&stubSettings{}, arbor.NewLogger())

	if svc.Configured(context.Background()) {
		t.Error("empty settings report configured")
	}
	err := svc.Send(context.Background(), "to@example.com", "subject", "body")
	if !errors.Is(err, ErrNotConfigured) {
		t.Errorf("error: got %v, want ErrNotConfigured", err)
	}
}

func TestBuildMessagePlainText(t *testing.T) {
	msg := buildMessage("TradeDeck", "from@example.com", "to@example.com", "Daily report", "All quiet.", nil)

	for _, want := range []string{
		"From: TradeDeck <from@example.com>\r\n",
		"To: to@example.com\r\n",
		"Subject: Daily report\r\n",
		"Content-Type: text/plain; charset=\"UTF-8\"\r\n",
		"All quiet.",
	} {
		if !strings.Contains(msg, want) {
			t.Errorf("message missing %q:\n%s", want, msg)
		}
	}
	if strings.Contains(msg, "multipart") {
		t.Error("plain message is multipart")
	}
}

func TestBuildMessageWithAttachment(t *testing.T) {
	pdf := []byte("%PDF-1.4 fake content for the attachment body")
	msg := buildMessage("TradeDeck", "from@example.com", "to@example.com", "Report",
		"See attached.", []Attachment{
			{Filename: "portfolio.pdf", ContentType: "application/pdf", Content: pdf},
		})

	for _, want := range []string{
		"MIME-Version: 1.0\r\n",
		"Content-Type: multipart/mixed; boundary=",
		"Content-Type: application/pdf; name=\"portfolio.pdf\"\r\n",
		"Content-Disposition: attachment; filename=\"portfolio.pdf\"\r\n",
		"Content-Transfer-Encoding: base64\r\n",
	} {
		if !strings.Contains(msg, want) {
			t.Errorf("message missing %q", want)
		}
	}

	// The attachment must decode back to the original bytes.
	encoded := base64.StdEncoding.EncodeToString(pdf)
	stripped := strings.ReplaceAll(msg, "\r\n", "")
	if !strings.Contains(stripped, encoded) {
		t.Error("attachment content not found in encoded form")
	}

	// Boundary terminates the message.
	boundary := extractBoundary(t, msg)
	if !strings.Contains(msg, "--"+boundary+"--\r\n") {
		t.Error("closing boundary missing")
	}
}

func TestBuildMessageDefaultsContentType(t *testing.T) {
	msg := buildMessage("TradeDeck", "f@x.com", "t@x.com", "s", "b", []Attachment{
		{Filename: "data.bin", Content: []byte{0x00, 0x01}},
	})
	if !strings.Contains(msg, "Content-Type: application/octet-stream; name=\"data.bin\"") {
		t.Error("octet-stream default missing")
	}
}

func TestWrapBase64LineLength(t *testing.T) {
	content := make([]byte, 300)
	for i := range content {
		content[i] = byte(i % 251)
	}

	wrapped := wrapBase64(content)
	for i, line := range strings.Split(wrapped, "\r\n") {
		if len(line) > 76 {
			t.Errorf("line %d exceeds 76 chars: %d", i, len(line))
		}
	}

	decoded, err := base64.StdEncoding.DecodeString(strings.ReplaceAll(wrapped, "\r\n", ""))
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if len(decoded) != len(content) {
		t.Errorf("round trip length: got %d, want %d", len(decoded), len(content))
	}
}

func extractBoundary(t *testing.T, msg string) string {
	t.Helper()
	const marker = `boundary="`
	idx := strings.Index(msg, marker)
	if idx < 0 {
		t.Fatal("no boundary in message")
	}
	rest := msg[idx+len(marker):]
	end := strings.Index(rest, `"`)
	if end < 0 {
		t.Fatal("unterminated boundary")
	}
	return rest[:end]
}
