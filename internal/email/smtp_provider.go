package email

import (
	"fmt"
	"html"

	"gopkg.in/gomail.v2"
)

// SMTPConfig holds SMTP server settings.
type SMTPConfig struct {
	Host      string
	Port      int
	Username  string
	Password  string
	FromEmail string
	FromName  string
}

// SMTPProvider sends mail over SMTP. A dialer is kept per provider;
// gomail opens a connection per send.
type SMTPProvider struct {
	config *SMTPConfig
	dialer *gomail.Dialer
}

func NewSMTPProvider(config *SMTPConfig) *SMTPProvider {
	return &SMTPProvider{
		config: config,
		dialer: gomail.NewDialer(config.Host, config.Port, config.Username, config.Password),
	}
}

func (p *SMTPProvider) SendNotificationMail(toEmail, title, message string) error {
	m := gomail.NewMessage()
	m.SetAddressHeader("From", p.config.FromEmail, p.config.FromName)
	m.SetHeader("To", toEmail)
	m.SetHeader("Subject", title)
	m.SetBody("text/plain", message)
	m.AddAlternative("text/html", fmt.Sprintf(
		"<h3>%s</h3><p>%s</p>",
		html.EscapeString(title), html.EscapeString(message)))

	if err := p.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("smtp send to %s: %w", toEmail, err)
	}
	return nil
}
