package mailer

// Mailer defines the interface for sending account emails. Implementations
// are fire-and-forget collaborators; an error only means the message could
// not be handed off.
type Mailer interface {
	SendVerificationEmail(toEmail, username, verificationToken string) error
	SendPasswordResetEmail(toEmail, username, resetToken string) error
}
