package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/taskvault/taskvault/internal/entity"
	port "github.com/taskvault/taskvault/internal/port/repository"
)

// Sentinel errors live in the port package so usecases depend only on the
// interface.
var (
	ErrDuplicateEmail    = port.ErrDuplicateEmail
	ErrDuplicateUsername = port.ErrDuplicateUsername
	ErrUserNotFound      = port.ErrUserNotFound
	ErrTokenNotFound     = port.ErrTokenNotFound
)

const usersCollection = "users"

type UserRepository struct {
	db     *mongo.Database
	redis  *redis.Client
	logger *zap.Logger
}

func NewUserRepository(db *mongo.Database, rds *redis.Client, logger *zap.Logger) *UserRepository {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Ensure indexes (idempotent operation)
	users := db.Collection(usersCollection)
	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "username", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "refresh_token", Value: 1}}, Options: options.Index().SetSparse(true)},
	}
	_, err := users.Indexes().CreateMany(ctx, indexes)
	if err != nil {
		logger.Warn("Failed to create indexes for users collection (may already exist)", zap.Error(err))
	} else {
		logger.Info("Successfully ensured indexes for users collection")
	}

	return &UserRepository{
		db:     db,
		redis:  rds,
		logger: logger.Named("UserRepository"),
	}
}

func (r *UserRepository) users() *mongo.Collection {
	return r.db.Collection(usersCollection)
}

func duplicateKeyError(err error) error {
	var writeException mongo.WriteException
	if errors.As(err, &writeException) {
		for _, writeError := range writeException.WriteErrors {
			if writeError.Code == 11000 {
				if strings.Contains(writeError.Message, "email_1") {
					return ErrDuplicateEmail
				}
				if strings.Contains(writeError.Message, "username_1") {
					return ErrDuplicateUsername
				}
			}
		}
	}
	return nil
}

func (r *UserRepository) CreateUser(ctx context.Context, user *entity.User) (primitive.ObjectID, error) {
	r.logger.Info("Attempting to create user in repository", zap.String("email", user.Email))
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(user.Password), bcrypt.DefaultCost)
	if err != nil {
		r.logger.Error("Failed to hash password during user creation", zap.String("email", user.Email), zap.Error(err))
		return primitive.NilObjectID, err
	}

	dbUser := fromEntity(user)
	dbUser.Password = string(hashedPassword)
	dbUser.Email = strings.ToLower(dbUser.Email)
	if dbUser.ID.IsZero() {
		dbUser.ID = primitive.NewObjectID()
	}

	_, err = r.users().InsertOne(ctx, dbUser)
	if err != nil {
		if dupErr := duplicateKeyError(err); dupErr != nil {
			r.logger.Warn("Duplicate key during user creation", zap.String("email", user.Email), zap.Error(err))
			return primitive.NilObjectID, dupErr
		}
		r.logger.Error("Database error during user creation", zap.String("email", user.Email), zap.Error(err))
		return primitive.NilObjectID, err
	}
	r.logger.Info("User created successfully in repository", zap.String("userID", dbUser.ID.Hex()))
	return dbUser.ID, nil
}

func (r *UserRepository) findOne(ctx context.Context, filter bson.M) (*entity.User, error) {
	var dbUser mongoUser
	err := r.users().FindOne(ctx, filter).Decode(&dbUser)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrUserNotFound
		}
		r.logger.Error("Database error fetching user", zap.Error(err))
		return nil, err
	}
	return dbUser.toEntity(), nil
}

func (r *UserRepository) GetUserByEmail(ctx context.Context, email string) (*entity.User, error) {
	r.logger.Debug("Attempting to get user by email from repository", zap.String("email", email))
	return r.findOne(ctx, bson.M{"email": strings.ToLower(email)})
}

func (r *UserRepository) GetUserByUsername(ctx context.Context, username string) (*entity.User, error) {
	r.logger.Debug("Attempting to get user by username from repository", zap.String("username", username))
	return r.findOne(ctx, bson.M{"username": username})
}

func (r *UserRepository) GetUserByRefreshToken(ctx context.Context, refreshToken string) (*entity.User, error) {
	r.logger.Debug("Attempting to get user by refresh token from repository")
	return r.findOne(ctx, bson.M{"refresh_token": refreshToken})
}

func (r *UserRepository) DeleteUserByEmail(ctx context.Context, email string) error {
	r.logger.Info("Deleting user", zap.String("email", email))
	result, err := r.users().DeleteOne(ctx, bson.M{"email": strings.ToLower(email)})
	if err != nil {
		r.logger.Error("DB error deleting user", zap.String("email", email), zap.Error(err))
		return err
	}
	if result.DeletedCount == 0 {
		r.logger.Warn("User not found for delete", zap.String("email", email))
		return ErrUserNotFound
	}
	r.logger.Info("User deleted successfully", zap.String("email", email))
	return nil
}

func (r *UserRepository) updateByEmail(ctx context.Context, email string, update bson.M) error {
	result, err := r.users().UpdateOne(ctx, bson.M{"email": strings.ToLower(email)}, update)
	if err != nil {
		if dupErr := duplicateKeyError(err); dupErr != nil {
			return dupErr
		}
		r.logger.Error("Database error during user update", zap.String("email", email), zap.Error(err))
		return err
	}
	if result.MatchedCount == 0 {
		r.logger.Warn("User not found during update attempt", zap.String("email", email))
		return ErrUserNotFound
	}
	return nil
}

func (r *UserRepository) UpdateUsername(ctx context.Context, email, username string) error {
	r.logger.Info("Updating username", zap.String("email", email))
	return r.updateByEmail(ctx, email, bson.M{"$set": bson.M{"username": username}})
}

func (r *UserRepository) UpdatePassword(ctx context.Context, email, newPassword string) error {
	r.logger.Info("Updating password", zap.String("email", email))
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		r.logger.Error("Failed to hash new password", zap.String("email", email), zap.Error(err))
		return err
	}
	return r.updateByEmail(ctx, email, bson.M{"$set": bson.M{"password": string(hashedPassword)}})
}

func (r *UserRepository) UpdateProfileImage(ctx context.Context, email, imageURL string) error {
	r.logger.Info("Updating profile image", zap.String("email", email))
	return r.updateByEmail(ctx, email, bson.M{"$set": bson.M{"profile_image": imageURL}})
}

func (r *UserRepository) SetRefreshToken(ctx context.Context, email, refreshToken string) error {
	r.logger.Info("Storing refresh token", zap.String("email", email))
	return r.updateByEmail(ctx, email, bson.M{"$set": bson.M{"refresh_token": refreshToken}})
}

func (r *UserRepository) ClearRefreshTokenByValue(ctx context.Context, refreshToken string) error {
	r.logger.Debug("Clearing refresh token by value")
	// Matching zero documents is fine: logout is idempotent.
	_, err := r.users().UpdateOne(ctx,
		bson.M{"refresh_token": refreshToken},
		bson.M{"$unset": bson.M{"refresh_token": ""}},
	)
	if err != nil {
		r.logger.Error("DB error clearing refresh token", zap.Error(err))
	}
	return err
}

func (r *UserRepository) SaveVerificationToken(ctx context.Context, email, verificationToken string, expiresAt time.Time) error {
	r.logger.Info("Saving email verification token", zap.String("email", email))
	return r.updateByEmail(ctx, email, bson.M{"$set": bson.M{
		"email_verification_token":   verificationToken,
		"email_verification_expires": expiresAt,
	}})
}

func (r *UserRepository) FindByVerificationToken(ctx context.Context, verificationToken string, now time.Time) (*entity.User, error) {
	r.logger.Debug("Looking up user by verification token")
	user, err := r.findOne(ctx, bson.M{
		"email_verification_token":   verificationToken,
		"email_verification_expires": bson.M{"$gt": now},
	})
	if errors.Is(err, ErrUserNotFound) {
		return nil, ErrTokenNotFound
	}
	return user, err
}

func (r *UserRepository) ConsumeVerificationToken(ctx context.Context, verificationToken string, now time.Time) error {
	r.logger.Info("Consuming email verification token")
	result, err := r.users().UpdateOne(ctx,
		bson.M{
			"email_verification_token":   verificationToken,
			"email_verification_expires": bson.M{"$gt": now},
		},
		bson.M{
			"$set": bson.M{"is_email_verified": true},
			"$unset": bson.M{
				"email_verification_token":   "",
				"email_verification_expires": "",
			},
		},
	)
	if err != nil {
		r.logger.Error("DB error consuming verification token", zap.Error(err))
		return err
	}
	if result.MatchedCount == 0 {
		return ErrTokenNotFound
	}
	r.logger.Info("Email marked as verified")
	return nil
}

func (r *UserRepository) SaveResetToken(ctx context.Context, email, resetToken string, expiresAt time.Time) error {
	r.logger.Info("Saving password reset token", zap.String("email", email))
	return r.updateByEmail(ctx, email, bson.M{"$set": bson.M{
		"password_reset_token":   resetToken,
		"password_reset_expires": expiresAt,
	}})
}

func (r *UserRepository) FindByResetToken(ctx context.Context, resetToken string, now time.Time) (*entity.User, error) {
	r.logger.Debug("Looking up user by reset token")
	user, err := r.findOne(ctx, bson.M{
		"password_reset_token":   resetToken,
		"password_reset_expires": bson.M{"$gt": now},
	})
	if errors.Is(err, ErrUserNotFound) {
		return nil, ErrTokenNotFound
	}
	return user, err
}

func (r *UserRepository) ConsumeResetToken(ctx context.Context, resetToken, newPassword string, now time.Time) error {
	r.logger.Info("Consuming password reset token")
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		r.logger.Error("Failed to hash new password for reset", zap.Error(err))
		return err
	}
	result, err := r.users().UpdateOne(ctx,
		bson.M{
			"password_reset_token":   resetToken,
			"password_reset_expires": bson.M{"$gt": now},
		},
		bson.M{
			"$set": bson.M{"password": string(hashedPassword)},
			"$unset": bson.M{
				"password_reset_token":   "",
				"password_reset_expires": "",
			},
		},
	)
	if err != nil {
		r.logger.Error("DB error consuming reset token", zap.Error(err))
		return err
	}
	if result.MatchedCount == 0 {
		return ErrTokenNotFound
	}
	r.logger.Info("Password reset completed")
	return nil
}

// CacheRefreshToken stores a refresh-token -> email mapping in Redis.
func (r *UserRepository) CacheRefreshToken(ctx context.Context, refreshToken, email string, ttl time.Duration) error {
	return r.redis.Set(ctx, "refresh:"+refreshToken, strings.ToLower(email), ttl).Err()
}

// GetCachedRefreshEmail retrieves the owning email for a refresh token.
// A missing key is not an application error; Mongo stays the authority.
func (r *UserRepository) GetCachedRefreshEmail(ctx context.Context, refreshToken string) (string, error) {
	email, err := r.redis.Get(ctx, "refresh:"+refreshToken).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	return email, err
}

// InvalidateRefreshToken removes a refresh-token mapping from Redis.
func (r *UserRepository) InvalidateRefreshToken(ctx context.Context, refreshToken string) error {
	return r.redis.Del(ctx, "refresh:"+refreshToken).Err()
}
