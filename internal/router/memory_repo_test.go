package router

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"

	"github.com/taskvault/taskvault/internal/entity"
	"github.com/taskvault/taskvault/internal/port/repository"
)

// memoryRepo is a map-backed stand-in for the Mongo/Redis repository, so
// the route table can be exercised end to end without a store.
type memoryRepo struct {
	mu    sync.Mutex
	users map[string]*entity.User
	cache map[string]string
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{
		users: make(map[string]*entity.User),
		cache: make(map[string]string),
	}
}

func (m *memoryRepo) CreateUser(ctx context.Context, user *entity.User) (primitive.ObjectID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[user.Email]; ok {
		return primitive.NilObjectID, repository.ErrDuplicateEmail
	}
	for _, u := range m.users {
		if u.Username == user.Username {
			return primitive.NilObjectID, repository.ErrDuplicateUsername
		}
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(user.Password), bcrypt.DefaultCost)
	if err != nil {
		return primitive.NilObjectID, err
	}
	user.ID = primitive.NewObjectID()
	user.Password = string(hash)
	m.users[user.Email] = user
	return user.ID, nil
}

func (m *memoryRepo) GetUserByEmail(ctx context.Context, email string) (*entity.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	user, ok := m.users[email]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	// Return a copy, like the Mongo repo decoding a fresh document, so
	// callers never alias the stored struct.
	copied := *user
	return &copied, nil
}

func (m *memoryRepo) GetUserByUsername(ctx context.Context, username string) (*entity.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Username == username {
			copied := *u
			return &copied, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

func (m *memoryRepo) DeleteUserByEmail(ctx context.Context, email string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[email]; !ok {
		return repository.ErrUserNotFound
	}
	delete(m.users, email)
	return nil
}

func (m *memoryRepo) UpdateUsername(ctx context.Context, email, username string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	user, ok := m.users[email]
	if !ok {
		return repository.ErrUserNotFound
	}
	user.Username = username
	return nil
}

func (m *memoryRepo) UpdateProfileImage(ctx context.Context, email, imageURL string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	user, ok := m.users[email]
	if !ok {
		return repository.ErrUserNotFound
	}
	user.ProfileImage = imageURL
	return nil
}

func (m *memoryRepo) UpdatePassword(ctx context.Context, email, newPassword string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	user, ok := m.users[email]
	if !ok {
		return repository.ErrUserNotFound
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	user.Password = string(hash)
	return nil
}

func (m *memoryRepo) SetRefreshToken(ctx context.Context, email, refreshToken string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	user, ok := m.users[email]
	if !ok {
		return repository.ErrUserNotFound
	}
	user.RefreshToken = refreshToken
	return nil
}

func (m *memoryRepo) GetUserByRefreshToken(ctx context.Context, refreshToken string) (*entity.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.RefreshToken == refreshToken {
			return u, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

func (m *memoryRepo) ClearRefreshTokenByValue(ctx context.Context, refreshToken string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.RefreshToken == refreshToken {
			u.RefreshToken = ""
		}
	}
	return nil
}

func (m *memoryRepo) SaveVerificationToken(ctx context.Context, email, verificationToken string, expiresAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	user, ok := m.users[email]
	if !ok {
		return repository.ErrUserNotFound
	}
	user.EmailVerificationToken = verificationToken
	user.EmailVerificationExpires = &expiresAt
	return nil
}

func (m *memoryRepo) FindByVerificationToken(ctx context.Context, verificationToken string, now time.Time) (*entity.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.EmailVerificationToken == verificationToken &&
			u.EmailVerificationExpires != nil && u.EmailVerificationExpires.After(now) {
			return u, nil
		}
	}
	return nil, repository.ErrTokenNotFound
}

func (m *memoryRepo) ConsumeVerificationToken(ctx context.Context, verificationToken string, now time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.EmailVerificationToken == verificationToken &&
			u.EmailVerificationExpires != nil && u.EmailVerificationExpires.After(now) {
			u.IsEmailVerified = true
			u.EmailVerificationToken = ""
			u.EmailVerificationExpires = nil
			return nil
		}
	}
	return repository.ErrTokenNotFound
}

func (m *memoryRepo) SaveResetToken(ctx context.Context, email, resetToken string, expiresAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	user, ok := m.users[email]
	if !ok {
		return repository.ErrUserNotFound
	}
	user.PasswordResetToken = resetToken
	user.PasswordResetExpires = &expiresAt
	return nil
}

func (m *memoryRepo) FindByResetToken(ctx context.Context, resetToken string, now time.Time) (*entity.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.PasswordResetToken == resetToken &&
			u.PasswordResetExpires != nil && u.PasswordResetExpires.After(now) {
			return u, nil
		}
	}
	return nil, repository.ErrTokenNotFound
}

func (m *memoryRepo) ConsumeResetToken(ctx context.Context, resetToken, newPassword string, now time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.PasswordResetToken == resetToken &&
			u.PasswordResetExpires != nil && u.PasswordResetExpires.After(now) {
			hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
			if err != nil {
				return err
			}
			u.Password = string(hash)
			u.PasswordResetToken = ""
			u.PasswordResetExpires = nil
			return nil
		}
	}
	return repository.ErrTokenNotFound
}

func (m *memoryRepo) CacheRefreshToken(ctx context.Context, refreshToken, email string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cache[refreshToken] = email
	return nil
}

func (m *memoryRepo) GetCachedRefreshEmail(ctx context.Context, refreshToken string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cache[refreshToken], nil
}

func (m *memoryRepo) InvalidateRefreshToken(ctx context.Context, refreshToken string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.cache, refreshToken)
	return nil
}

func (m *memoryRepo) AddTask(ctx context.Context, email string, task entity.Task) (entity.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	user, ok := m.users[email]
	if !ok {
		return entity.Task{}, repository.ErrUserNotFound
	}
	task.ID = primitive.NewObjectID()
	user.Tasks = append(user.Tasks, task)
	user.TasksCounter++
	return task, nil
}

func (m *memoryRepo) CompleteTask(ctx context.Context, email string, task entity.Task, beforeDeadline bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	user, ok := m.users[email]
	if !ok {
		return repository.ErrUserNotFound
	}
	for i := range user.Tasks {
		if user.Tasks[i].ID == task.ID {
			user.Tasks[i].Completed = true
			user.History = append(user.History, user.Tasks[i])
			if beforeDeadline {
				user.TasksFinishedBeforeDeadline++
			}
			return nil
		}
	}
	return repository.ErrTaskNotFound
}

func (m *memoryRepo) EditTask(ctx context.Context, email string, task entity.Task) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	user, ok := m.users[email]
	if !ok {
		return repository.ErrUserNotFound
	}
	for i := range user.Tasks {
		if user.Tasks[i].ID == task.ID {
			user.Tasks[i] = task
			return nil
		}
	}
	return repository.ErrTaskNotFound
}

func (m *memoryRepo) DeleteTask(ctx context.Context, email string, taskID primitive.ObjectID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	user, ok := m.users[email]
	if !ok {
		return repository.ErrUserNotFound
	}
	for i := range user.Tasks {
		if user.Tasks[i].ID == taskID {
			user.Tasks = append(user.Tasks[:i], user.Tasks[i+1:]...)
			return nil
		}
	}
	for i := range user.History {
		if user.History[i].ID == taskID {
			user.History = append(user.History[:i], user.History[i+1:]...)
			return nil
		}
	}
	return repository.ErrTaskNotFound
}

func (m *memoryRepo) AddGroup(ctx context.Context, email string, group entity.Group) (entity.Group, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	user, ok := m.users[email]
	if !ok {
		return entity.Group{}, repository.ErrUserNotFound
	}
	group.ID = primitive.NewObjectID()
	user.Groups = append(user.Groups, group)
	return group, nil
}

func (m *memoryRepo) DeleteGroup(ctx context.Context, email string, groupID primitive.ObjectID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	user, ok := m.users[email]
	if !ok {
		return repository.ErrUserNotFound
	}
	for i := range user.Groups {
		if user.Groups[i].ID == groupID {
			user.Groups = append(user.Groups[:i], user.Groups[i+1:]...)
			return nil
		}
	}
	return repository.ErrGroupNotFound
}

func (m *memoryRepo) AddStepTask(ctx context.Context, email string, groupID primitive.ObjectID, step entity.StepTask) (entity.StepTask, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	user, ok := m.users[email]
	if !ok {
		return entity.StepTask{}, repository.ErrUserNotFound
	}
	for i := range user.Groups {
		if user.Groups[i].ID == groupID {
			step.ID = primitive.NewObjectID()
			user.Groups[i].StepTasks = append(user.Groups[i].StepTasks, step)
			user.Groups[i].Completed = false
			return step, nil
		}
	}
	return entity.StepTask{}, repository.ErrGroupNotFound
}

func (m *memoryRepo) SaveGroup(ctx context.Context, email string, group entity.Group) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	user, ok := m.users[email]
	if !ok {
		return repository.ErrUserNotFound
	}
	for i := range user.Groups {
		if user.Groups[i].ID == group.ID {
			user.Groups[i] = group
			return nil
		}
	}
	return repository.ErrGroupNotFound
}

func (m *memoryRepo) MarkNotificationRead(ctx context.Context, email string, notificationID primitive.ObjectID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	user, ok := m.users[email]
	if !ok {
		return repository.ErrUserNotFound
	}
	for i := range user.Notifications {
		if user.Notifications[i].ID == notificationID {
			user.Notifications[i].Read = true
			return nil
		}
	}
	return repository.ErrNotificationNotFound
}

func (m *memoryRepo) SaveNotifications(ctx context.Context, email string, notifications []entity.Notification) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	user, ok := m.users[email]
	if !ok {
		return repository.ErrUserNotFound
	}
	user.Notifications = notifications
	return nil
}

func (m *memoryRepo) ListUsers(ctx context.Context) ([]*entity.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	users := make([]*entity.User, 0, len(m.users))
	for _, u := range m.users {
		users = append(users, u)
	}
	return users, nil
}

// recordingMailer captures outgoing tokens instead of sending mail.
type recordingMailer struct {
	mu                 sync.Mutex
	verificationTokens []string
	resetTokens        []string
	fail               bool
}

func (r *recordingMailer) SendVerificationEmail(toEmail, username, verificationToken string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail {
		return context.DeadlineExceeded
	}
	r.verificationTokens = append(r.verificationTokens, verificationToken)
	return nil
}

func (r *recordingMailer) SendPasswordResetEmail(toEmail, username, resetToken string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail {
		return context.DeadlineExceeded
	}
	r.resetTokens = append(r.resetTokens, resetToken)
	return nil
}

func (r *recordingMailer) lastVerificationToken() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.verificationTokens) == 0 {
		return ""
	}
	return r.verificationTokens[len(r.verificationTokens)-1]
}

func (r *recordingMailer) lastResetToken() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.resetTokens) == 0 {
		return ""
	}
	return r.resetTokens[len(r.resetTokens)-1]
}

// memoryStorage is a map-backed object store; keys double as URLs.
type memoryStorage struct {
	mu      sync.Mutex
	objects map[string][]byte
	seq     int
}

func newMemoryStorage() *memoryStorage {
	return &memoryStorage{objects: make(map[string][]byte)}
}

func (s *memoryStorage) Upload(ctx context.Context, fileName string, data []byte) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	fileURL := fmt.Sprintf("http://storage/profileImages/%d-%s", s.seq, fileName)
	s.objects[fileURL] = data
	return fileURL, nil
}

func (s *memoryStorage) Remove(ctx context.Context, fileURL string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.objects, fileURL)
	return nil
}

func (s *memoryStorage) has(fileURL string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.objects[fileURL]
	return ok
}
