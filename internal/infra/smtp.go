package infra

import (
	"bytes"
	"fmt"
	"net/smtp"

	"inventario3g/internal/config"

	"github.com/jordan-wright/email"
)

// Adjunto is an in-memory email attachment.
type Adjunto struct {
	Nombre      string
	ContentType string
	Datos       []byte
}

// Mailer wraps SMTP configuration for sending emails with attachments.
type Mailer struct {
	host     string
	user     string
	password string
	from     string
	addr     string
}

func NewMailer(cfg *config.Config) *Mailer {
	from := cfg.SMTPFrom
	if from == "" {
		from = cfg.SMTPUser
	}
	return &Mailer{
		host:     cfg.SMTPHost,
		user:     cfg.SMTPUser,
		password: cfg.SMTPPassword,
		from:     from,
		addr:     fmt.Sprintf("%s:%d", cfg.SMTPHost, cfg.SMTPPort),
	}
}

// Configurado reports whether an SMTP host was provided.
func (m *Mailer) Configurado() bool { return m.host != "" }

// Send delivers a plain-text message with optional attachments.
func (m *Mailer) Send(to, subject, body string, adjuntos ...Adjunto) error {
	e := email.NewEmail()
	e.From = m.from
	e.To = []string{to}
	e.Subject = subject
	e.Text = []byte(body)

	for _, a := range adjuntos {
		if _, err := e.Attach(bytes.NewReader(a.Datos), a.Nombre, a.ContentType); err != nil {
			return fmt.Errorf("mailer: attach %s: %w", a.Nombre, err)
		}
	}

	var auth smtp.Auth
	if m.user != "" {
		auth = smtp.PlainAuth("", m.user, m.password, m.host)
	}
	return e.Send(m.addr, auth)
}
