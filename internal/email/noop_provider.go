package email

import "edulink_backend/internal/logger"

// NoopProvider logs instead of sending. Used when email is disabled in
// config and in tests.
type NoopProvider struct{}

func NewNoopProvider() *NoopProvider {
	return &NoopProvider{}
}

func (p *NoopProvider) SendNotificationMail(toEmail, title, message string) error {
	logger.Debug("email disabled, skipping send", "to", toEmail, "title", title)
	return nil
}
