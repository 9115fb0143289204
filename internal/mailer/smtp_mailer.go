package mailer

import (
	"fmt"
	"net/smtp"
	"strings"

	"go.uber.org/zap"
)

// SMTPMailerService implements the Mailer interface using net/smtp.
type SMTPMailerService struct {
	host            string
	port            int
	username        string
	password        string
	from            string
	senderName      string
	verificationURL string // base URL the token is appended to
	resetURL        string
	logger          *zap.Logger
}

// NewSMTPMailerService creates a new SMTPMailerService.
func NewSMTPMailerService(host string, port int, username, password, fromEmail, senderName, verificationURL, resetURL string, logger *zap.Logger) *SMTPMailerService {
	return &SMTPMailerService{
		host:            host,
		port:            port,
		username:        username,
		password:        password,
		from:            fromEmail,
		senderName:      senderName,
		verificationURL: verificationURL,
		resetURL:        resetURL,
		logger:          logger.Named("SMTPMailerService"),
	}
}

// SendVerificationEmail sends the email-verification link via SMTP.
func (s *SMTPMailerService) SendVerificationEmail(toEmail, username, verificationToken string) error {
	link := fmt.Sprintf("%s/%s", s.verificationURL, verificationToken)

	htmlBody := fmt.Sprintf(`<h2>Welcome to TaskVault!</h2>
                             <p>Hi %s,</p>
                             <p>Thank you for registering. Please click the link below to verify your email address:</p>
                             <p><a href="%s">Verify Email</a></p>
                             <p>Or copy this link: %s</p>
                             <p>This link will expire in 24 hours.</p>
                             <p>If you didn't create an account, please ignore this email.</p>`, username, link, link)

	textBody := fmt.Sprintf(`Hi %s,
                           Thank you for registering. Open this link to verify your email address: %s
                           This link will expire in 24 hours.
                           If you didn't create an account, please ignore this email.`, username, link)

	return s.send(toEmail, "Verify Your Email - TaskVault", textBody, htmlBody)
}

// SendPasswordResetEmail sends the password-reset link via SMTP.
func (s *SMTPMailerService) SendPasswordResetEmail(toEmail, username, resetToken string) error {
	link := fmt.Sprintf("%s/reset-password/%s", s.resetURL, resetToken)

	htmlBody := fmt.Sprintf(`<h2>Password Reset Request</h2>
                             <p>Hi %s,</p>
                             <p>We received a request to reset your password. Click the link below to reset it:</p>
                             <p><a href="%s">Reset Password</a></p>
                             <p>Or copy this link: %s</p>
                             <p>This link will expire in 1 hour.</p>
                             <p>If you didn't request a password reset, please ignore this email. Your password will remain unchanged.</p>`, username, link, link)

	textBody := fmt.Sprintf(`Hi %s,
                           We received a request to reset your password. Open this link to reset it: %s
                           This link will expire in 1 hour.
                           If you didn't request a password reset, please ignore this email.`, username, link)

	return s.send(toEmail, "Reset Your Password - TaskVault", textBody, htmlBody)
}

func (s *SMTPMailerService) send(toEmail, subject, plainTextBody, htmlBody string) error {
	s.logger.Info("Attempting to send email via SMTP",
		zap.String("toEmail", toEmail),
		zap.String("subject", subject),
		zap.String("smtpHost", s.host),
		zap.Int("smtpPort", s.port))

	auth := smtp.PlainAuth("", s.username, s.password, s.host)

	headers := make(map[string]string)
	if s.senderName != "" {
		headers["From"] = fmt.Sprintf("%s <%s>", s.senderName, s.from)
	} else {
		headers["From"] = s.from
	}
	headers["To"] = toEmail
	headers["Subject"] = subject
	headers["MIME-Version"] = "1.0"

	// Constructing a multipart message
	boundary := "taskvault-boundary-12345"
	headers["Content-Type"] = fmt.Sprintf("multipart/alternative; boundary=%s", boundary)

	var msgBuilder strings.Builder

	for k, v := range headers {
		msgBuilder.WriteString(fmt.Sprintf("%s: %s\r\n", k, v))
	}
	msgBuilder.WriteString("\r\n")

	// Plain text part
	msgBuilder.WriteString(fmt.Sprintf("--%s\r\n", boundary))
	msgBuilder.WriteString("Content-Type: text/plain; charset=\"utf-8\"\r\n")
	msgBuilder.WriteString("Content-Transfer-Encoding: 7bit\r\n\r\n")
	msgBuilder.WriteString(plainTextBody)
	msgBuilder.WriteString("\r\n\r\n")

	// HTML part
	msgBuilder.WriteString(fmt.Sprintf("--%s\r\n", boundary))
	msgBuilder.WriteString("Content-Type: text/html; charset=\"utf-8\"\r\n")
	msgBuilder.WriteString("Content-Transfer-Encoding: 7bit\r\n\r\n")
	msgBuilder.WriteString(htmlBody)
	msgBuilder.WriteString("\r\n\r\n")

	msgBuilder.WriteString(fmt.Sprintf("--%s--\r\n", boundary))

	addr := fmt.Sprintf("%s:%d", s.host, s.port)

	err := smtp.SendMail(addr, auth, s.from, []string{toEmail}, []byte(msgBuilder.String()))
	if err != nil {
		s.logger.Error("Failed to send email via SMTP",
			zap.Error(err),
			zap.String("toEmail", toEmail),
			zap.String("smtpHost", s.host))
		return fmt.Errorf("smtp.SendMail failed: %w", err)
	}

	s.logger.Info("Email sent successfully via SMTP", zap.String("toEmail", toEmail))
	return nil
}
