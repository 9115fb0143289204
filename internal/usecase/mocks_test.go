package usecase

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/taskvault/taskvault/internal/entity"
)

type MockUserRepository struct{ mock.Mock }

func (m *MockUserRepository) CreateUser(ctx context.Context, user *entity.User) (primitive.ObjectID, error) {
	args := m.Called(ctx, user)
	return args.Get(0).(primitive.ObjectID), args.Error(1)
}
func (m *MockUserRepository) GetUserByEmail(ctx context.Context, email string) (*entity.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.User), args.Error(1)
}
func (m *MockUserRepository) GetUserByUsername(ctx context.Context, username string) (*entity.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.User), args.Error(1)
}
func (m *MockUserRepository) DeleteUserByEmail(ctx context.Context, email string) error {
	args := m.Called(ctx, email)
	return args.Error(0)
}
func (m *MockUserRepository) UpdateUsername(ctx context.Context, email, username string) error {
	args := m.Called(ctx, email, username)
	return args.Error(0)
}
func (m *MockUserRepository) UpdateProfileImage(ctx context.Context, email, imageURL string) error {
	args := m.Called(ctx, email, imageURL)
	return args.Error(0)
}
func (m *MockUserRepository) UpdatePassword(ctx context.Context, email, newPassword string) error {
	args := m.Called(ctx, email, newPassword)
	return args.Error(0)
}
func (m *MockUserRepository) SetRefreshToken(ctx context.Context, email, refreshToken string) error {
	args := m.Called(ctx, email, refreshToken)
	return args.Error(0)
}
func (m *MockUserRepository) GetUserByRefreshToken(ctx context.Context, refreshToken string) (*entity.User, error) {
	args := m.Called(ctx, refreshToken)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.User), args.Error(1)
}
func (m *MockUserRepository) ClearRefreshTokenByValue(ctx context.Context, refreshToken string) error {
	args := m.Called(ctx, refreshToken)
	return args.Error(0)
}
func (m *MockUserRepository) SaveVerificationToken(ctx context.Context, email, verificationToken string, expiresAt time.Time) error {
	args := m.Called(ctx, email, verificationToken, expiresAt)
	return args.Error(0)
}
func (m *MockUserRepository) FindByVerificationToken(ctx context.Context, verificationToken string, now time.Time) (*entity.User, error) {
	args := m.Called(ctx, verificationToken, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.User), args.Error(1)
}
func (m *MockUserRepository) ConsumeVerificationToken(ctx context.Context, verificationToken string, now time.Time) error {
	args := m.Called(ctx, verificationToken, now)
	return args.Error(0)
}
func (m *MockUserRepository) SaveResetToken(ctx context.Context, email, resetToken string, expiresAt time.Time) error {
	args := m.Called(ctx, email, resetToken, expiresAt)
	return args.Error(0)
}
func (m *MockUserRepository) FindByResetToken(ctx context.Context, resetToken string, now time.Time) (*entity.User, error) {
	args := m.Called(ctx, resetToken, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.User), args.Error(1)
}
func (m *MockUserRepository) ConsumeResetToken(ctx context.Context, resetToken, newPassword string, now time.Time) error {
	args := m.Called(ctx, resetToken, newPassword, now)
	return args.Error(0)
}
func (m *MockUserRepository) CacheRefreshToken(ctx context.Context, refreshToken, email string, ttl time.Duration) error {
	args := m.Called(ctx, refreshToken, email, ttl)
	return args.Error(0)
}
func (m *MockUserRepository) GetCachedRefreshEmail(ctx context.Context, refreshToken string) (string, error) {
	args := m.Called(ctx, refreshToken)
	return args.String(0), args.Error(1)
}
func (m *MockUserRepository) InvalidateRefreshToken(ctx context.Context, refreshToken string) error {
	args := m.Called(ctx, refreshToken)
	return args.Error(0)
}

type MockTaskRepository struct{ mock.Mock }

func (m *MockTaskRepository) AddTask(ctx context.Context, email string, task entity.Task) (entity.Task, error) {
	args := m.Called(ctx, email, task)
	return args.Get(0).(entity.Task), args.Error(1)
}
func (m *MockTaskRepository) CompleteTask(ctx context.Context, email string, task entity.Task, beforeDeadline bool) error {
	args := m.Called(ctx, email, task, beforeDeadline)
	return args.Error(0)
}
func (m *MockTaskRepository) EditTask(ctx context.Context, email string, task entity.Task) error {
	args := m.Called(ctx, email, task)
	return args.Error(0)
}
func (m *MockTaskRepository) DeleteTask(ctx context.Context, email string, taskID primitive.ObjectID) error {
	args := m.Called(ctx, email, taskID)
	return args.Error(0)
}
func (m *MockTaskRepository) AddGroup(ctx context.Context, email string, group entity.Group) (entity.Group, error) {
	args := m.Called(ctx, email, group)
	return args.Get(0).(entity.Group), args.Error(1)
}
func (m *MockTaskRepository) DeleteGroup(ctx context.Context, email string, groupID primitive.ObjectID) error {
	args := m.Called(ctx, email, groupID)
	return args.Error(0)
}
func (m *MockTaskRepository) AddStepTask(ctx context.Context, email string, groupID primitive.ObjectID, step entity.StepTask) (entity.StepTask, error) {
	args := m.Called(ctx, email, groupID, step)
	return args.Get(0).(entity.StepTask), args.Error(1)
}
func (m *MockTaskRepository) SaveGroup(ctx context.Context, email string, group entity.Group) error {
	args := m.Called(ctx, email, group)
	return args.Error(0)
}
func (m *MockTaskRepository) MarkNotificationRead(ctx context.Context, email string, notificationID primitive.ObjectID) error {
	args := m.Called(ctx, email, notificationID)
	return args.Error(0)
}
func (m *MockTaskRepository) SaveNotifications(ctx context.Context, email string, notifications []entity.Notification) error {
	args := m.Called(ctx, email, notifications)
	return args.Error(0)
}
func (m *MockTaskRepository) ListUsers(ctx context.Context) ([]*entity.User, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entity.User), args.Error(1)
}

type MockMailer struct{ mock.Mock }

func (m *MockMailer) SendVerificationEmail(toEmail, username, verificationToken string) error {
	args := m.Called(toEmail, username, verificationToken)
	return args.Error(0)
}
func (m *MockMailer) SendPasswordResetEmail(toEmail, username, resetToken string) error {
	args := m.Called(toEmail, username, resetToken)
	return args.Error(0)
}

type MockObjectStorage struct{ mock.Mock }

func (m *MockObjectStorage) Upload(ctx context.Context, fileName string, data []byte) (string, error) {
	args := m.Called(ctx, fileName, data)
	return args.String(0), args.Error(1)
}
func (m *MockObjectStorage) Remove(ctx context.Context, fileURL string) error {
	args := m.Called(ctx, fileURL)
	return args.Error(0)
}
