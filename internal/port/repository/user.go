package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/taskvault/taskvault/internal/entity"
)

// UserRepository covers account records and every credential-token field.
// All mutations are scoped by email or by token value, never by a
// client-supplied identifier.
type UserRepository interface {
	CreateUser(ctx context.Context, user *entity.User) (primitive.ObjectID, error)
	GetUserByEmail(ctx context.Context, email string) (*entity.User, error)
	GetUserByUsername(ctx context.Context, username string) (*entity.User, error)
	DeleteUserByEmail(ctx context.Context, email string) error

	UpdateUsername(ctx context.Context, email, username string) error
	// UpdatePassword hashes the clear password before persisting it.
	UpdatePassword(ctx context.Context, email, newPassword string) error
	UpdateProfileImage(ctx context.Context, email, imageURL string) error

	SetRefreshToken(ctx context.Context, email, refreshToken string) error
	GetUserByRefreshToken(ctx context.Context, refreshToken string) (*entity.User, error)
	// ClearRefreshTokenByValue is a no-op when no user holds the token.
	ClearRefreshTokenByValue(ctx context.Context, refreshToken string) error

	SaveVerificationToken(ctx context.Context, email, verificationToken string, expiresAt time.Time) error
	FindByVerificationToken(ctx context.Context, verificationToken string, now time.Time) (*entity.User, error)
	// ConsumeVerificationToken marks the email verified and clears the token
	// and expiry in one conditional write; the token stays the filter so a
	// double submit resolves to one winner.
	ConsumeVerificationToken(ctx context.Context, verificationToken string, now time.Time) error

	SaveResetToken(ctx context.Context, email, resetToken string, expiresAt time.Time) error
	FindByResetToken(ctx context.Context, resetToken string, now time.Time) (*entity.User, error)
	// ConsumeResetToken replaces the password hash and clears the reset
	// token and expiry in the same conditional write.
	ConsumeResetToken(ctx context.Context, resetToken, newPassword string, now time.Time) error

	CacheRefreshToken(ctx context.Context, refreshToken, email string, ttl time.Duration) error
	GetCachedRefreshEmail(ctx context.Context, refreshToken string) (string, error)
	InvalidateRefreshToken(ctx context.Context, refreshToken string) error
}
