package mail

import (
	"fmt"
	"net"
	"net/smtp"
	"strconv"

	"github.com/dferreira/authserver/internal/config"
	"github.com/jordan-wright/email"
)

// Mailer delivers a rendered message to a single recipient.
type Mailer interface {
	Send(subject, htmlBody, to string) error
}

// SMTPMailer sends mail through a plain-auth SMTP relay.
type SMTPMailer struct {
	cfg *config.MailConfig
}

// NewSMTPMailer creates a mailer using the given SMTP settings.
func NewSMTPMailer(cfg *config.MailConfig) *SMTPMailer {
	return &SMTPMailer{cfg: cfg}
}

// Send delivers the message. The body is sent as HTML.
func (m *SMTPMailer) Send(subject, htmlBody, to string) error {
	e := email.NewEmail()
	e.From = m.cfg.From
	e.To = []string{to}
	if m.cfg.ReplyTo != "" {
		e.ReplyTo = []string{m.cfg.ReplyTo}
	}
	e.Subject = subject
	e.HTML = []byte(htmlBody)

	addr := net.JoinHostPort(m.cfg.Host, strconv.Itoa(m.cfg.Port))
	auth := smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)

	return e.Send(addr, auth)
}

// ResetEmailSubject is the subject line of password-reset messages.
const ResetEmailSubject = "Password Reset Request"

// ResetEmail renders the password-reset message for a user. The link is
// valid for 30 minutes.
func ResetEmail(name, resetURL string) string {
	return fmt.Sprintf(`<h2>Olá %s</h2>
<p>Por favor utilize o link abaixo para redefinir a sua password.</p>
<p>Este link é válido apenas por 30 minutos.</p>
<a href="%s" clicktracking="off">%s</a>
<p>Cumprimentos,</p>
<p>A Equipa</p>`, name, resetURL, resetURL)
}
