package email

// Provider sends transactional mail. Implementations must be safe for
// concurrent use.
type Provider interface {
	// SendNotificationMail delivers a single notification email.
	SendNotificationMail(toEmail, title, message string) error
}
