package mailer

import (
	"context"
	"time"

	"github.com/techmaster-vietnam/blogkit/config"
	"github.com/techmaster-vietnam/goerrorkit"
	mail "gopkg.in/mail.v2"
)

// SMTPTransport gửi email qua SMTP server
type SMTPTransport struct {
	dialer *mail.Dialer
}

// NewSMTPTransport creates an SMTP transport from mail config
func NewSMTPTransport(cfg config.MailConfig) *SMTPTransport {
	dialer := mail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password)
	dialer.Timeout = 10 * time.Second
	dialer.StartTLSPolicy = mail.MandatoryStartTLS
	return &SMTPTransport{dialer: dialer}
}

// Send implements Transport
func (t *SMTPTransport) Send(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m := mail.NewMessage()
	m.SetHeader("From", msg.From)
	m.SetHeader("To", msg.To)
	m.SetHeader("Subject", msg.Subject)
	m.SetBody("text/plain", msg.Body)

	if err := t.dialer.DialAndSend(m); err != nil {
		return goerrorkit.WrapWithMessage(err, "Failed to send email via SMTP").WithData(map[string]interface{}{
			"host": t.dialer.Host,
			"to":   msg.To,
		})
	}
	return nil
}
