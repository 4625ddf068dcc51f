package utils

import (
	"bytes"
	"html/template"

	"gopkg.in/gomail.v2"
)

// Mailer sends templated guest notifications.
type Mailer interface {
	Send(to, subject, htmlBody string) error
}

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

type SMTPMailer struct {
	cfg    SMTPConfig
	dialer *gomail.Dialer
}

func NewSMTPMailer(cfg SMTPConfig) *SMTPMailer {
	return &SMTPMailer{
		cfg:    cfg,
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
	}
}

func (m *SMTPMailer) Send(to, subject, htmlBody string) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.cfg.From)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", htmlBody)
	return m.dialer.DialAndSend(msg)
}

// LogMailer only logs. Used when SMTP is not configured.
type LogMailer struct{}

func (LogMailer) Send(to, subject, _ string) error {
	InfoLogger.Printf("Mail to %s skipped (SMTP disabled): %s", to, subject)
	return nil
}

// SendAsync renders the template and sends without blocking the request.
func SendAsync(m Mailer, to, subject string, tmpl *template.Template, data interface{}) {
	if m == nil || to == "" {
		return
	}
	var body bytes.Buffer
	if err := tmpl.Execute(&body, data); err != nil {
		ErrorLogger.Errorf("Failed to render mail %q: %v", subject, err)
		return
	}
	go func() {
		if err := m.Send(to, subject, body.String()); err != nil {
			ErrorLogger.Errorf("Failed to send mail %q to %s: %v", subject, to, err)
		}
	}()
}
