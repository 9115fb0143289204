package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/taskvault/taskvault/internal/port/repository"
)

// VerifyEmail consumes a verification token. An already-verified account
// returns ErrAlreadyVerified so the caller can still redirect to the
// success outcome; missing, unknown and expired tokens fail closed with
// ErrTokenInvalid and mutate nothing.
func (u *AuthUsecase) VerifyEmail(ctx context.Context, verificationToken string) error {
	if verificationToken == "" {
		return ErrTokenInvalid
	}

	now := time.Now()
	user, err := u.users.FindByVerificationToken(ctx, verificationToken, now)
	if err != nil {
		if errors.Is(err, repository.ErrTokenNotFound) {
			return ErrTokenInvalid
		}
		return err
	}

	if user.IsEmailVerified {
		return ErrAlreadyVerified
	}

	if err := u.users.ConsumeVerificationToken(ctx, verificationToken, now); err != nil {
		if errors.Is(err, repository.ErrTokenNotFound) {
			// Lost the race to a concurrent consumption.
			return ErrTokenInvalid
		}
		return err
	}

	u.logger.Info("Email verified", zap.String("email", user.Email))
	return nil
}

// ResendVerification reissues the verification token, invalidating the
// previous one by overwrite. Resending for a verified account is a no-op
// reported as ErrAlreadyVerified.
func (u *AuthUsecase) ResendVerification(ctx context.Context, email string) error {
	if email == "" {
		return ErrMissingFields
	}
	email = strings.ToLower(email)

	user, err := u.users.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return ErrUserNotFound
		}
		return err
	}

	if user.IsEmailVerified {
		return ErrAlreadyVerified
	}

	verificationToken, err := generateToken()
	if err != nil {
		u.logger.Error("Failed to generate verification token", zap.Error(err))
		return err
	}

	if err := u.users.SaveVerificationToken(ctx, email, verificationToken, time.Now().Add(u.verificationTTL)); err != nil {
		return err
	}

	if err := u.mail.SendVerificationEmail(email, user.Username, verificationToken); err != nil {
		u.logger.Error("Failed to resend verification email", zap.String("email", email), zap.Error(err))
		return ErrEmailSendFailed
	}

	u.logger.Info("Verification email resent", zap.String("email", email))
	return nil
}
