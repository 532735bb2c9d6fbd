package mail

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"mime"
	"net"
	"net/smtp"
	"strings"
	"sync"
	"time"
)

// Attachment is a file carried by a message.
type Attachment struct {
	Filename    string
	ContentType string
	Data        []byte
}

// Message is one outbound email.
type Message struct {
	To          string
	Subject     string
	HTMLBody    string
	TextBody    string
	Attachments []Attachment
}

// Dispatcher sends a message exactly once per call. There is no hidden retry:
// a duplicate send of a financial document must be an explicit caller choice.
type Dispatcher interface {
	Send(ctx context.Context, msg Message) error
}

// SMTPConfig configures the bundled SMTP dispatcher.
type SMTPConfig struct {
	Host        string
	Port        int
	Username    string
	Password    string
	From        string
	DialTimeout time.Duration
}

// SMTPDispatcher delivers over a plain SMTP transport.
type SMTPDispatcher struct {
	cfg SMTPConfig
}

func NewSMTPDispatcher(cfg SMTPConfig) *SMTPDispatcher {
	if cfg.DialTimeout <= 0 {
		cfg.DialTimeout = 10 * time.Second
	}
	return &SMTPDispatcher{cfg: cfg}
}

// Send performs a single delivery attempt. A timed-out dial is reported as a
// failure like any other.
func (d *SMTPDispatcher) Send(ctx context.Context, msg Message) error {
	if msg.To == "" {
		return fmt.Errorf("missing recipient address")
	}
	addr := net.JoinHostPort(d.cfg.Host, fmt.Sprintf("%d", d.cfg.Port))

	dialer := net.Dialer{Timeout: d.cfg.DialTimeout}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("smtp dial %s: %w", addr, err)
	}
	c, err := smtp.NewClient(conn, d.cfg.Host)
	if err != nil {
		conn.Close()
		return fmt.Errorf("smtp handshake: %w", err)
	}
	defer c.Close()

	if d.cfg.Username != "" {
		auth := smtp.PlainAuth("", d.cfg.Username, d.cfg.Password, d.cfg.Host)
		if ok, _ := c.Extension("AUTH"); ok {
			if err := c.Auth(auth); err != nil {
				return fmt.Errorf("smtp auth: %w", err)
			}
		}
	}
	if err := c.Mail(d.cfg.From); err != nil {
		return fmt.Errorf("smtp mail from: %w", err)
	}
	if err := c.Rcpt(msg.To); err != nil {
		return fmt.Errorf("smtp rcpt: %w", err)
	}
	w, err := c.Data()
	if err != nil {
		return fmt.Errorf("smtp data: %w", err)
	}
	if _, err := w.Write(encode(d.cfg.From, msg)); err != nil {
		return fmt.Errorf("smtp write: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("smtp close data: %w", err)
	}
	return c.Quit()
}

// encode builds a multipart MIME message with optional text/html alternatives
// and attachments.
func encode(from string, msg Message) []byte {
	var b bytes.Buffer
	boundary := "agencyhub-mixed-0000"

	fmt.Fprintf(&b, "From: %s\r\n", from)
	fmt.Fprintf(&b, "To: %s\r\n", msg.To)
	fmt.Fprintf(&b, "Subject: %s\r\n", mime.QEncoding.Encode("utf-8", msg.Subject))
	b.WriteString("MIME-Version: 1.0\r\n")
	fmt.Fprintf(&b, "Content-Type: multipart/mixed; boundary=%q\r\n\r\n", boundary)

	body := msg.HTMLBody
	bodyType := "text/html; charset=utf-8"
	if body == "" {
		body = msg.TextBody
		bodyType = "text/plain; charset=utf-8"
	}
	fmt.Fprintf(&b, "--%s\r\nContent-Type: %s\r\n\r\n%s\r\n", boundary, bodyType, body)

	for _, a := range msg.Attachments {
		ct := a.ContentType
		if ct == "" {
			ct = "application/octet-stream"
		}
		fmt.Fprintf(&b, "--%s\r\n", boundary)
		fmt.Fprintf(&b, "Content-Type: %s\r\n", ct)
		fmt.Fprintf(&b, "Content-Disposition: attachment; filename=%q\r\n", a.Filename)
		b.WriteString("Content-Transfer-Encoding: base64\r\n\r\n")
		enc := base64.StdEncoding.EncodeToString(a.Data)
		for len(enc) > 76 {
			b.WriteString(enc[:76] + "\r\n")
			enc = enc[76:]
		}
		b.WriteString(enc + "\r\n")
	}
	fmt.Fprintf(&b, "--%s--\r\n", boundary)
	return b.Bytes()
}

// RecordingDispatcher captures messages for tests and can be told to fail.
type RecordingDispatcher struct {
	mu       sync.Mutex
	Messages []Message
	Err      error
}

func (r *RecordingDispatcher) Send(_ context.Context, msg Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	r.Messages = append(r.Messages, msg)
	return nil
}

// Sent returns a copy of the captured messages.
func (r *RecordingDispatcher) Sent() []Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Message, len(r.Messages))
	copy(out, r.Messages)
	return out
}

var _ Dispatcher = (*SMTPDispatcher)(nil)
var _ Dispatcher = (*RecordingDispatcher)(nil)

// SubjectFor builds the default quote email subject.
func SubjectFor(agencyName string, quoteNumber int) string {
	return strings.TrimSpace(fmt.Sprintf("Quote #%d from %s", quoteNumber, agencyName))
}
