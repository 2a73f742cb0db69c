package services

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/base64"
	"fmt"
	"mime"
	"mime/multipart"
	"net"
	"net/smtp"
	"net/textproto"
	"strings"
	"time"

	"github.com/huangang/venturelink/internal/config"
	"github.com/huangang/venturelink/pkg/logger"
)

type MailAttachment struct {
	Name        string
	ContentType string
	Data        []byte
}

type MailMessage struct {
	To          string
	ReplyTo     string
	Subject     string
	HTMLBody    string
	Attachments []MailAttachment
}

// Mailer delivers one message. Implementations must be safe for concurrent use.
type Mailer interface {
	Send(ctx context.Context, msg *MailMessage) error
}

// NewMailer returns an SMTP mailer, or a log-only mailer when mail is disabled.
func NewMailer(cfg *config.MailConfig) Mailer {
	if !cfg.Enabled || cfg.Host == "" {
		logger.Infof("[Email] SMTP disabled, messages will only be logged")
		return LogMailer{}
	}
	return &SMTPMailer{cfg: *cfg}
}

// LogMailer records messages in the log instead of sending them.
type LogMailer struct{}

func (LogMailer) Send(_ context.Context, msg *MailMessage) error {
	logger.Info().
		Str("to", msg.To).
		Str("subject", msg.Subject).
		Int("attachments", len(msg.Attachments)).
		Msg("[Email] delivery skipped (smtp disabled)")
	return nil
}

type SMTPMailer struct {
	cfg config.MailConfig
}

func (m *SMTPMailer) from() string {
	if m.cfg.From != "" {
		return m.cfg.From
	}
	return m.cfg.Username
}

func (m *SMTPMailer) Send(ctx context.Context, msg *MailMessage) error {
	raw, err := buildMIMEMessage(m.from(), msg)
	if err != nil {
		return err
	}

	if err := m.deliver(ctx, msg.To, raw); err != nil {
		logger.Warnf("[Email] Failed to send %q to %s: %v", msg.Subject, msg.To, err)
		return err
	}
	logger.Infof("[Email] Sent %q to %s", msg.Subject, msg.To)
	return nil
}

func (m *SMTPMailer) deliver(ctx context.Context, to string, raw []byte) error {
	addr := fmt.Sprintf("%s:%d", m.cfg.Host, m.cfg.Port)

	dialer := &net.Dialer{Timeout: 15 * time.Second}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return err
	}
	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}

	// implicit TLS (port 465 style)
	if m.cfg.UseTLS {
		conn = tls.Client(conn, &tls.Config{ServerName: m.cfg.Host})
	}

	client, err := smtp.NewClient(conn, m.cfg.Host)
	if err != nil {
		conn.Close()
		return err
	}
	defer client.Close()

	if !m.cfg.UseTLS {
		if ok, _ := client.Extension("STARTTLS"); ok {
			if err := client.StartTLS(&tls.Config{ServerName: m.cfg.Host}); err != nil {
				return err
			}
		}
	}

	if m.cfg.Username != "" && m.cfg.Password != "" {
		if err := client.Auth(smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)); err != nil {
			return err
		}
	}

	if err := client.Mail(m.from()); err != nil {
		return err
	}
	if err := client.Rcpt(to); err != nil {
		return err
	}

	w, err := client.Data()
	if err != nil {
		return err
	}
	if _, err := w.Write(raw); err != nil {
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}
	return client.Quit()
}

// buildMIMEMessage renders msg as multipart/mixed with an HTML part followed
// by base64 attachments.
func buildMIMEMessage(from string, msg *MailMessage) ([]byte, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	headers := []struct{ k, v string }{
		{"From", from},
		{"To", msg.To},
		{"Subject", mime.QEncoding.Encode("utf-8", msg.Subject)},
		{"Date", time.Now().Format(time.RFC1123Z)},
		{"MIME-Version", "1.0"},
		{"Content-Type", "multipart/mixed; boundary=" + mw.Boundary()},
	}
	if msg.ReplyTo != "" {
		headers = append(headers, struct{ k, v string }{"Reply-To", msg.ReplyTo})
	}

	var head strings.Builder
	for _, h := range headers {
		head.WriteString(h.k + ": " + h.v + "\r\n")
	}
	head.WriteString("\r\n")

	htmlPart, err := mw.CreatePart(textproto.MIMEHeader{
		"Content-Type":              {"text/html; charset=UTF-8"},
		"Content-Transfer-Encoding": {"base64"},
	})
	if err != nil {
		return nil, err
	}
	if _, err := htmlPart.Write(wrapBase64([]byte(msg.HTMLBody))); err != nil {
		return nil, err
	}

	for _, a := range msg.Attachments {
		ct := a.ContentType
		if ct == "" {
			ct = detectContentType(a.Name, a.Data)
		}
		part, err := mw.CreatePart(textproto.MIMEHeader{
			"Content-Type":              {ct},
			"Content-Transfer-Encoding": {"base64"},
			"Content-Disposition":       {mime.FormatMediaType("attachment", map[string]string{"filename": a.Name})},
		})
		if err != nil {
			return nil, err
		}
		if _, err := part.Write(wrapBase64(a.Data)); err != nil {
			return nil, err
		}
	}
	if err := mw.Close(); err != nil {
		return nil, err
	}

	return append([]byte(head.String()), buf.Bytes()...), nil
}

// wrapBase64 encodes data in 76-column lines.
func wrapBase64(data []byte) []byte {
	enc := base64.StdEncoding.EncodeToString(data)
	var out bytes.Buffer
	for len(enc) > 76 {
		out.WriteString(enc[:76])
		out.WriteString("\r\n")
		enc = enc[76:]
	}
	out.WriteString(enc)
	out.WriteString("\r\n")
	return out.Bytes()
}
