package mail

import (
	"fmt"

	"gopkg.in/gomail.v2"

	"welwexpress/internal/config"
)

// Sender delivers transactional mail. Callers decide whether a delivery
// failure propagates or is only logged.
type Sender interface {
	Send(htmlBody, subject, recipient string) error
}

type SMTPSender struct {
	dialer *gomail.Dialer
	from   string
}

func NewSMTPSender(cfg config.MailConfig) *SMTPSender {
	return &SMTPSender{
		dialer: gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.Username, cfg.Password),
		from:   cfg.From,
	}
}

func (s *SMTPSender) Send(htmlBody, subject, recipient string) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", s.from)
	msg.SetHeader("To", recipient)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", htmlBody)

	if err := s.dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("sending mail to %s: %w", recipient, err)
	}

	return nil
}
