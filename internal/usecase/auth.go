package usecase

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"net/mail"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/taskvault/taskvault/internal/entity"
	"github.com/taskvault/taskvault/internal/mailer"
	"github.com/taskvault/taskvault/internal/platform/metrics"
	"github.com/taskvault/taskvault/internal/port/repository"
	"github.com/taskvault/taskvault/internal/token"
)

// AuthUsecase orchestrates registration, the verification and reset token
// lifecycles, and the login/refresh/logout session protocol.
type AuthUsecase struct {
	users   repository.UserRepository
	tokens  *token.Service
	mail    mailer.Mailer
	metrics *metrics.Manager

	verificationTTL time.Duration
	resetTTL        time.Duration
	cacheTTL        time.Duration // refresh-token cache window, matches the cookie

	logger *zap.Logger
}

func NewAuthUsecase(
	users repository.UserRepository,
	tokens *token.Service,
	mail mailer.Mailer,
	mm *metrics.Manager,
	verificationTTL, resetTTL, cacheTTL time.Duration,
	logger *zap.Logger,
) *AuthUsecase {
	return &AuthUsecase{
		users:           users,
		tokens:          tokens,
		mail:            mail,
		metrics:         mm,
		verificationTTL: verificationTTL,
		resetTTL:        resetTTL,
		cacheTTL:        cacheTTL,
		logger:          logger.Named("AuthUsecase"),
	}
}

// generateToken returns 32 random bytes hex-encoded, the wire format the
// verification and reset links carry.
func generateToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

func validEmail(email string) bool {
	_, err := mail.ParseAddress(email)
	return err == nil
}

// SessionResult carries everything a successful login or refresh returns.
type SessionResult struct {
	AccessToken  string
	RefreshToken string
	User         entity.PublicProfile
}

// Login verifies credentials and issues both token classes. The refresh
// token overwrites any previously stored one, which is the single-session
// invalidation point.
func (u *AuthUsecase) Login(ctx context.Context, email, password string) (*SessionResult, error) {
	if email == "" || password == "" || len(password) < 6 || !validEmail(email) {
		return nil, ErrInvalidInput
	}

	user, err := u.users.GetUserByEmail(ctx, strings.ToLower(email))
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	// Verification gate comes before the password check on purpose.
	if !user.IsEmailVerified {
		return nil, ErrEmailNotVerified
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, ErrInvalidPassword
	}

	identity := token.Identity{Email: user.Email, Username: user.Username}
	accessToken, err := u.tokens.IssueAccess(identity)
	if err != nil {
		u.logger.Error("Failed to issue access token", zap.String("email", user.Email), zap.Error(err))
		return nil, err
	}
	refreshToken, err := u.tokens.IssueRefresh(identity)
	if err != nil {
		u.logger.Error("Failed to issue refresh token", zap.String("email", user.Email), zap.Error(err))
		return nil, err
	}

	if err := u.users.SetRefreshToken(ctx, user.Email, refreshToken); err != nil {
		u.logger.Error("Failed to persist refresh token", zap.String("email", user.Email), zap.Error(err))
		return nil, err
	}

	// Cache is best-effort; Mongo stays the authority for refresh.
	if err := u.users.CacheRefreshToken(ctx, refreshToken, user.Email, u.cacheTTL); err != nil {
		u.logger.Warn("Failed to cache refresh token", zap.String("email", user.Email), zap.Error(err))
	}

	if u.metrics != nil {
		u.metrics.LoginsTotal.Inc()
	}
	u.logger.Info("User logged in", zap.String("email", user.Email))

	return &SessionResult{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		User:         user.Public(),
	}, nil
}

// Refresh exchanges a refresh token for a new access token. The store
// lookup runs before the cryptographic verify: a superseded token is
// rejected even when its signature is still valid.
func (u *AuthUsecase) Refresh(ctx context.Context, refreshToken string) (*SessionResult, error) {
	if refreshToken == "" {
		return nil, ErrUnauthorized
	}

	user, err := u.findRefreshOwner(ctx, refreshToken)
	if err != nil {
		return nil, err
	}

	identity, err := u.tokens.Verify(refreshToken, token.ClassRefresh)
	if err != nil || identity.Email != user.Email {
		return nil, ErrForbidden
	}

	accessToken, err := u.tokens.IssueAccess(token.Identity{Email: user.Email, Username: user.Username})
	if err != nil {
		u.logger.Error("Failed to issue access token on refresh", zap.String("email", user.Email), zap.Error(err))
		return nil, err
	}

	if u.metrics != nil {
		u.metrics.RefreshesTotal.Inc()
	}

	return &SessionResult{
		AccessToken: accessToken,
		User:        user.Public(),
	}, nil
}

// findRefreshOwner resolves the user currently holding the token, trying
// the Redis index first and falling back to the Mongo lookup. Either way
// the stored refresh token must still match.
func (u *AuthUsecase) findRefreshOwner(ctx context.Context, refreshToken string) (*entity.User, error) {
	if email, cacheErr := u.users.GetCachedRefreshEmail(ctx, refreshToken); cacheErr == nil && email != "" {
		user, err := u.users.GetUserByEmail(ctx, email)
		if err == nil && user.RefreshToken == refreshToken {
			return user, nil
		}
	}

	user, err := u.users.GetUserByRefreshToken(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrForbidden
		}
		return nil, err
	}
	return user, nil
}

// Logout clears the stored refresh token. It succeeds as a no-op when the
// token is absent or matches no user.
func (u *AuthUsecase) Logout(ctx context.Context, refreshToken string) error {
	if refreshToken == "" {
		return nil
	}

	if err := u.users.ClearRefreshTokenByValue(ctx, refreshToken); err != nil {
		return err
	}
	if err := u.users.InvalidateRefreshToken(ctx, refreshToken); err != nil {
		u.logger.Warn("Failed to invalidate cached refresh token", zap.Error(err))
	}
	return nil
}
