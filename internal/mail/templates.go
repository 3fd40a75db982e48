package mail

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"net/http"
	"os"
	"path/filepath"
	"time"
)

const (
	// VerificationSubject тема письма подтверждения почты.
	VerificationSubject = "Verify your Email - Note Genius"
	// PasswordResetSubject тема письма сброса пароля.
	PasswordResetSubject = "Reset Password - Note Genius"
	// LogoContentID идентификатор inline логотипа в шаблонах.
	LogoContentID = "logo"
)

//go:embed templates/*.html
var templateFS embed.FS

var templates = template.Must(template.ParseFS(templateFS, "templates/*.html"))

type templateData struct {
	Name string
	URL  string
	Year int
}

// VerificationMessage собирает письмо со ссылкой подтверждения почты.
func VerificationMessage(to, name, url string, logo *Attachment) (Message, error) {
	return render("verification.html", VerificationSubject, to, name, url, logo)
}

// PasswordResetMessage собирает письмо со ссылкой сброса пароля.
func PasswordResetMessage(to, name, url string, logo *Attachment) (Message, error) {
	return render("reset.html", PasswordResetSubject, to, name, url, logo)
}

func render(tmpl, subject, to, name, url string, logo *Attachment) (Message, error) {
	const op = "mail.render"
	if name == "" {
		name = "User"
	}
	var buf bytes.Buffer
	data := templateData{Name: name, URL: url, Year: time.Now().Year()}
	if err := templates.ExecuteTemplate(&buf, tmpl, data); err != nil {
		return Message{}, fmt.Errorf("%s: %w", op, err)
	}
	msg := Message{To: to, Subject: subject, HTML: buf.String()}
	if logo != nil {
		msg.Attachments = []Attachment{*logo}
	}
	return msg, nil
}

// LoadLogo читает логотип для inline вложения. Пустой путь означает письма без логотипа.
func LoadLogo(path string) (*Attachment, error) {
	const op = "mail.LoadLogo"
	if path == "" {
		return nil, nil
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &Attachment{
		Filename:    filepath.Base(path),
		ContentType: http.DetectContentType(content),
		ContentID:   LogoContentID,
		Content:     content,
	}, nil
}
