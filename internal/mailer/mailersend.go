package mailer

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"
)

const mailerSendAPIURL = "https://api.mailersend.com/v1/email"

// MailerSendService implements the Mailer interface using MailerSend.
type MailerSendService struct {
	apiKey          string
	fromEmail       string
	fromName        string
	verificationURL string
	resetURL        string
	client          *http.Client
	logger          *zap.Logger
}

// NewMailerSendService creates a new MailerSendService.
func NewMailerSendService(apiKey, fromEmail, fromName, verificationURL, resetURL string, logger *zap.Logger) *MailerSendService {
	return &MailerSendService{
		apiKey:          apiKey,
		fromEmail:       fromEmail,
		fromName:        fromName,
		verificationURL: verificationURL,
		resetURL:        resetURL,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
		logger: logger.Named("MailerSendService"),
	}
}

type mailerSendRequest struct {
	From    fromEmail `json:"from"`
	To      []toEmail `json:"to"`
	Subject string    `json:"subject"`
	Text    string    `json:"text"`
	HTML    string    `json:"html"`
}

type fromEmail struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

type toEmail struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

// SendVerificationEmail sends the email-verification link via MailerSend.
func (s *MailerSendService) SendVerificationEmail(toEmailAddr, username, verificationToken string) error {
	link := fmt.Sprintf("%s/%s", s.verificationURL, verificationToken)

	htmlBody := fmt.Sprintf(`<h2>Welcome to TaskVault!</h2>
                             <p>Hi %s,</p>
                             <p>Please click the link below to verify your email address:</p>
                             <p><a href="%s">Verify Email</a></p>
                             <p>This link will expire in 24 hours.</p>`, username, link)
	textBody := fmt.Sprintf(`Hi %s,
                           Open this link to verify your email address: %s
                           This link will expire in 24 hours.`, username, link)

	return s.send(toEmailAddr, username, "Verify Your Email - TaskVault", textBody, htmlBody)
}

// SendPasswordResetEmail sends the password-reset link via MailerSend.
func (s *MailerSendService) SendPasswordResetEmail(toEmailAddr, username, resetToken string) error {
	link := fmt.Sprintf("%s/reset-password/%s", s.resetURL, resetToken)

	htmlBody := fmt.Sprintf(`<h2>Password Reset Request</h2>
                             <p>Hi %s,</p>
                             <p>Click the link below to reset your password:</p>
                             <p><a href="%s">Reset Password</a></p>
                             <p>This link will expire in 1 hour.</p>`, username, link)
	textBody := fmt.Sprintf(`Hi %s,
                           Open this link to reset your password: %s
                           This link will expire in 1 hour.`, username, link)

	return s.send(toEmailAddr, username, "Reset Your Password - TaskVault", textBody, htmlBody)
}

func (s *MailerSendService) send(toEmailAddr, toName, subject, textBody, htmlBody string) error {
	s.logger.Info("Attempting to send email via MailerSend", zap.String("toEmail", toEmailAddr), zap.String("subject", subject))

	requestPayload := mailerSendRequest{
		From: fromEmail{
			Email: s.fromEmail,
			Name:  s.fromName,
		},
		To: []toEmail{
			{Email: toEmailAddr, Name: toName},
		},
		Subject: subject,
		Text:    textBody,
		HTML:    htmlBody,
	}

	payloadBytes, err := json.Marshal(requestPayload)
	if err != nil {
		s.logger.Error("Failed to marshal MailerSend request payload", zap.Error(err))
		return fmt.Errorf("failed to marshal request payload: %w", err)
	}

	req, err := http.NewRequest("POST", mailerSendAPIURL, bytes.NewBuffer(payloadBytes))
	if err != nil {
		s.logger.Error("Failed to create MailerSend HTTP request", zap.Error(err))
		return fmt.Errorf("failed to create http request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.apiKey)

	resp, err := s.client.Do(req)
	if err != nil {
		s.logger.Error("Failed to send request to MailerSend", zap.Error(err))
		return fmt.Errorf("failed to send request to MailerSend: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusAccepted {
		s.logger.Error("MailerSend API request failed", zap.Int("statusCode", resp.StatusCode))
		return fmt.Errorf("MailerSend API request failed with status code %d", resp.StatusCode)
	}

	s.logger.Info("Email sent successfully via MailerSend", zap.String("toEmail", toEmailAddr), zap.String("messageID", resp.Header.Get("X-Message-Id")))
	return nil
}
