package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/taskvault/taskvault/internal/port/repository"
)

// RequestPasswordReset starts the reset lifecycle. A missing account is
// not an error: the response must be indistinguishable from the success
// case so the endpoint cannot be used to enumerate accounts.
func (u *AuthUsecase) RequestPasswordReset(ctx context.Context, email string) error {
	if email == "" {
		return ErrMissingFields
	}
	email = strings.ToLower(email)

	user, err := u.users.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			u.logger.Debug("Password reset requested for unknown email")
			return nil
		}
		return err
	}

	resetToken, err := generateToken()
	if err != nil {
		u.logger.Error("Failed to generate reset token", zap.Error(err))
		return err
	}

	if err := u.users.SaveResetToken(ctx, email, resetToken, time.Now().Add(u.resetTTL)); err != nil {
		return err
	}

	if err := u.mail.SendPasswordResetEmail(email, user.Username, resetToken); err != nil {
		u.logger.Error("Failed to send password reset email", zap.String("email", email), zap.Error(err))
		return ErrEmailSendFailed
	}

	u.logger.Info("Password reset email sent", zap.String("email", email))
	return nil
}

// VerifyResetToken is a pure read check; it does not consume the token,
// so a client can validate a link before showing the reset form.
func (u *AuthUsecase) VerifyResetToken(ctx context.Context, resetToken string) error {
	if resetToken == "" {
		return ErrTokenInvalid
	}

	_, err := u.users.FindByResetToken(ctx, resetToken, time.Now())
	if err != nil {
		if errors.Is(err, repository.ErrTokenNotFound) {
			return ErrTokenInvalid
		}
		return err
	}
	return nil
}

// ResetPassword re-validates token and expiry (the token may have expired
// between verify and submit), replaces the password hash and clears the
// token in the same write.
func (u *AuthUsecase) ResetPassword(ctx context.Context, resetToken, newPassword string) error {
	if resetToken == "" {
		return ErrTokenInvalid
	}
	if newPassword == "" {
		return ErrMissingFields
	}
	if len(newPassword) < 6 {
		return ErrShortPassword
	}

	if err := u.users.ConsumeResetToken(ctx, resetToken, newPassword, time.Now()); err != nil {
		if errors.Is(err, repository.ErrTokenNotFound) {
			return ErrTokenInvalid
		}
		return err
	}

	u.logger.Info("Password reset completed")
	return nil
}
