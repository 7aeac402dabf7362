package mock

import "errors"

// SentMail records one delivered message.
type SentMail struct {
	Subject string
	Body    string
	To      string
}

// Mailer is an in-memory mail.Mailer for tests. It records every delivery
// attempt, including the ones it is configured to fail.
type Mailer struct {
	Sent []SentMail
	Fail bool
}

// ErrDelivery is returned by a failing mock mailer.
var ErrDelivery = errors.New("mail delivery failed")

// Send records the message, then fails when configured to.
func (m *Mailer) Send(subject, htmlBody, to string) error {
	m.Sent = append(m.Sent, SentMail{Subject: subject, Body: htmlBody, To: to})
	if m.Fail {
		return ErrDelivery
	}
	return nil
}
