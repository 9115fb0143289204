package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/taskvault/taskvault/internal/entity"
	"github.com/taskvault/taskvault/internal/port/repository"
)

const maxUsernameLength = 21

// Register creates an unverified account and sends the verification email.
// When sending fails the account stays created (the client retries through
// resend) but the call reports ErrEmailSendFailed.
func (u *AuthUsecase) Register(ctx context.Context, username, email, password string) (entity.PublicProfile, error) {
	if username == "" || email == "" || password == "" {
		return entity.PublicProfile{}, ErrMissingFields
	}
	if len(username) > maxUsernameLength || len(password) < 6 || !validEmail(email) {
		return entity.PublicProfile{}, ErrInvalidInput
	}
	email = strings.ToLower(email)

	// Friendly pre-checks; the unique indexes stay the real guard against
	// a concurrent duplicate.
	if _, err := u.users.GetUserByEmail(ctx, email); err == nil {
		return entity.PublicProfile{}, ErrEmailExists
	} else if !errors.Is(err, repository.ErrUserNotFound) {
		return entity.PublicProfile{}, err
	}
	if _, err := u.users.GetUserByUsername(ctx, username); err == nil {
		return entity.PublicProfile{}, ErrUsernameExists
	} else if !errors.Is(err, repository.ErrUserNotFound) {
		return entity.PublicProfile{}, err
	}

	verificationToken, err := generateToken()
	if err != nil {
		u.logger.Error("Failed to generate verification token", zap.Error(err))
		return entity.PublicProfile{}, err
	}
	expiresAt := time.Now().Add(u.verificationTTL)

	user := &entity.User{
		Username:                 username,
		Email:                    email,
		Password:                 password, // hashed in the repository
		IsEmailVerified:          false,
		EmailVerificationToken:   verificationToken,
		EmailVerificationExpires: &expiresAt,
	}

	if _, err := u.users.CreateUser(ctx, user); err != nil {
		switch {
		case errors.Is(err, repository.ErrDuplicateEmail):
			return entity.PublicProfile{}, ErrEmailExists
		case errors.Is(err, repository.ErrDuplicateUsername):
			return entity.PublicProfile{}, ErrUsernameExists
		}
		return entity.PublicProfile{}, err
	}

	if u.metrics != nil {
		u.metrics.RegistrationsTotal.Inc()
	}
	u.logger.Info("User registered", zap.String("email", email))

	if err := u.mail.SendVerificationEmail(email, username, verificationToken); err != nil {
		u.logger.Error("Failed to send verification email", zap.String("email", email), zap.Error(err))
		return user.Public(), ErrEmailSendFailed
	}

	return user.Public(), nil
}
