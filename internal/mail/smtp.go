package mail

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/textproto"
	"strings"
	"time"

	"github.com/magabrotheeeer/notegenius/internal/lib/smtp"
)

// SMTPProvider отправляет письма через SMTP транспорт.
type SMTPProvider struct {
	transport smtp.TransportInterface
	fromName  string
}

// NewSMTPProvider создает провайдера. nil transport означает, что SMTP не настроен.
func NewSMTPProvider(transport smtp.TransportInterface, fromName string) *SMTPProvider {
	return &SMTPProvider{transport: transport, fromName: fromName}
}

func (p *SMTPProvider) Name() string { return "smtp" }

func (p *SMTPProvider) Configured() bool { return p.transport != nil }

func (p *SMTPProvider) Send(ctx context.Context, msg Message) (err error) {
	const op = "mail.SMTPProvider.Send"
	if !p.Configured() {
		return fmt.Errorf("%s: %w", op, ErrNotConfigured)
	}
	from := p.transport.GetSMTPUser()
	body, err := buildMIME(Address{Name: p.fromName, Email: from}, msg)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	client, err := p.transport.Connect(ctx)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		if closeErr := client.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("%s: close: %w", op, closeErr)
		}
	}()

	if err = client.Mail(from); err != nil {
		return fmt.Errorf("%s: mail from: %w", op, err)
	}
	if err = client.Rcpt(msg.To); err != nil {
		return fmt.Errorf("%s: rcpt: %w", op, err)
	}
	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("%s: data: %w", op, err)
	}
	if _, err = w.Write(body); err != nil {
		_ = w.Close()
		return fmt.Errorf("%s: write: %w", op, err)
	}
	if err = w.Close(); err != nil {
		return fmt.Errorf("%s: data close: %w", op, err)
	}
	if err = client.Quit(); err != nil {
		return fmt.Errorf("%s: quit: %w", op, err)
	}
	return nil
}

// buildMIME собирает multipart/related письмо: HTML часть и вложения.
func buildMIME(from Address, msg Message) ([]byte, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	header := textproto.MIMEHeader{}
	header.Set("From", mime.QEncoding.Encode("utf-8", from.Name)+" <"+from.Email+">")
	if from.Name == "" {
		header.Set("From", from.Email)
	}
	header.Set("To", msg.To)
	header.Set("Subject", mime.QEncoding.Encode("utf-8", msg.Subject))
	header.Set("Date", time.Now().Format(time.RFC1123Z))
	header.Set("MIME-Version", "1.0")
	header.Set("Content-Type", "multipart/related; boundary="+mw.Boundary())
	for _, k := range []string{"From", "To", "Subject", "Date", "MIME-Version", "Content-Type"} {
		fmt.Fprintf(&buf, "%s: %s\r\n", k, header.Get(k))
	}
	buf.WriteString("\r\n")

	htmlPart, err := mw.CreatePart(textproto.MIMEHeader{
		"Content-Type":              {"text/html; charset=utf-8"},
		"Content-Transfer-Encoding": {"base64"},
	})
	if err != nil {
		return nil, err
	}
	if err := writeBase64(htmlPart, []byte(msg.HTML)); err != nil {
		return nil, err
	}

	for _, a := range msg.Attachments {
		h := textproto.MIMEHeader{
			"Content-Type":              {a.ContentType},
			"Content-Transfer-Encoding": {"base64"},
		}
		if a.ContentID != "" {
			h.Set("Content-ID", "<"+a.ContentID+">")
			h.Set("Content-Disposition", mime.FormatMediaType("inline", map[string]string{"filename": a.Filename}))
		} else {
			h.Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": a.Filename}))
		}
		part, err := mw.CreatePart(h)
		if err != nil {
			return nil, err
		}
		if err := writeBase64(part, a.Content); err != nil {
			return nil, err
		}
	}
	if err := mw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// writeBase64 пишет data в base64 строками по 76 символов.
func writeBase64(w io.Writer, data []byte) error {
	encoded := base64.StdEncoding.EncodeToString(data)
	var sb strings.Builder
	for len(encoded) > 76 {
		sb.WriteString(encoded[:76])
		sb.WriteString("\r\n")
		encoded = encoded[76:]
	}
	sb.WriteString(encoded)
	sb.WriteString("\r\n")
	_, err := io.WriteString(w, sb.String())
	return err
}
