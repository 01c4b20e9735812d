package worker

import "fmt"

// IMailer is the notification capability consumed by the identity service.
// Both sends are fire-and-forget.
type IMailer interface {
	SendVerificationCode(email, name, code string)
	SendPasswordResetLink(email, name, url string)
}

// Mailer composes identity emails and hands them to the worker pool
type Mailer struct {
	pool *EmailWorkerPool
}

// NewMailer creates a new mailer on top of an email worker pool
func NewMailer(pool *EmailWorkerPool) *Mailer {
	return &Mailer{pool: pool}
}

var _ IMailer = (*Mailer)(nil)

// SendVerificationCode enqueues a verification code email
func (m *Mailer) SendVerificationCode(email, name, code string) {
	body := fmt.Sprintf(
		"Hi %s,\n\nYour verification code is: %s\n\nThis code expires in 15 minutes.",
		name, code,
	)
	m.pool.Enqueue(EmailTask{
		Recipient: email,
		Subject:   "Verify Your Email",
		Body:      body,
	})
}

// SendPasswordResetLink enqueues a password reset email
func (m *Mailer) SendPasswordResetLink(email, name, url string) {
	body := fmt.Sprintf(
		"Hi %s,\n\nReset your password using the link below:\n\n%s\n\nThe link expires in 1 hour. If you did not request this, you can ignore this email.",
		name, url,
	)
	m.pool.Enqueue(EmailTask{
		Recipient: email,
		Subject:   "Reset Your Password",
		Body:      body,
	})
}
