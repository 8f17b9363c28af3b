package services

import (
	"fmt"
	"log/slog"
	"net/smtp"
)

// Mailer is the outbound email collaborator. Callers treat it as
// fire-and-forget: failures are logged, never propagated.
type Mailer interface {
	Send(to, subject, body string) error
}

type SMTPMailer struct {
	Host     string
	Port     string
	From     string
	Password string
}

func (m *SMTPMailer) Send(to, subject, body string) error {
	message := fmt.Sprintf("From: %s\nTo: %s\nSubject: %s\n\n%s", m.From, to, subject, body)
	auth := smtp.PlainAuth("", m.From, m.Password, m.Host)
	return smtp.SendMail(m.Host+":"+m.Port, auth, m.From, []string{to}, []byte(message))
}

// LogMailer stands in when SMTP is not configured (local dev, tests).
type LogMailer struct {
	Log *slog.Logger
}

func (m *LogMailer) Send(to, subject, _ string) error {
	m.Log.Info("mail (not sent, smtp disabled)", "to", to, "subject", subject)
	return nil
}
