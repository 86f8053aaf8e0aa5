// server/internal/notify/mailer.go
package notify

import (
	"gopkg.in/gomail.v2"
)

// Mailer sends templated notification emails over SMTP. Delivery is
// best-effort: the caller logs failures and never fails a stage operation on
// a send error.
type Mailer struct {
	dialer *gomail.Dialer
	sender string
}

func NewMailer(host string, port int, sender, password string) *Mailer {
	return &Mailer{
		dialer: gomail.NewDialer(host, port, sender, password),
		sender: sender,
	}
}

// Send delivers one HTML email. There is no retry and no delivery guarantee;
// a failure is returned to the caller, which owns the logging.
func (m *Mailer) Send(toEmail, subject, htmlBody string) error {
	if m == nil || m.dialer == nil {
		return nil
	}
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.sender)
	msg.SetHeader("To", toEmail)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", htmlBody)

	return m.dialer.DialAndSend(msg)
}
