package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/taskvault/taskvault/internal/entity"
	"github.com/taskvault/taskvault/internal/port/repository"
	"github.com/taskvault/taskvault/internal/storage"
)

// TaskUsecase owns every gated resource operation. All lookups and
// mutations are scoped by the authenticated email.
type TaskUsecase struct {
	users  repository.UserRepository
	tasks  repository.TaskRepository
	store  storage.ObjectStorage
	logger *zap.Logger
}

func NewTaskUsecase(users repository.UserRepository, tasks repository.TaskRepository, store storage.ObjectStorage, logger *zap.Logger) *TaskUsecase {
	return &TaskUsecase{
		users:  users,
		tasks:  tasks,
		store:  store,
		logger: logger.Named("TaskUsecase"),
	}
}

func (u *TaskUsecase) getUser(ctx context.Context, email string) (*entity.User, error) {
	user, err := u.users.GetUserByEmail(ctx, strings.ToLower(email))
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

// Profile returns the full user document for the profile endpoint.
func (u *TaskUsecase) Profile(ctx context.Context, email string) (*entity.User, error) {
	return u.getUser(ctx, email)
}

// DeleteAccount removes the user document. The refresh-token cache entry
// is cleared too so a stale cookie cannot shortcut the refresh lookup.
func (u *TaskUsecase) DeleteAccount(ctx context.Context, email, refreshToken string) error {
	err := u.users.DeleteUserByEmail(ctx, strings.ToLower(email))
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return ErrUserNotFound
		}
		return err
	}
	if refreshToken != "" {
		if err := u.users.InvalidateRefreshToken(ctx, refreshToken); err != nil {
			u.logger.Warn("Failed to invalidate cached refresh token on account delete", zap.Error(err))
		}
	}
	u.logger.Info("Account deleted", zap.String("email", email))
	return nil
}

// EditProfile updates the username and/or the password. Password changes
// require the current password; providing only one half of the pair is
// rejected.
func (u *TaskUsecase) EditProfile(ctx context.Context, email, username, currentPassword, newPassword string) error {
	if username == "" && (currentPassword == "" || newPassword == "") {
		return ErrMissingFields
	}
	if (currentPassword == "") != (newPassword == "") {
		return ErrIncompletePasswordPair
	}

	user, err := u.getUser(ctx, email)
	if err != nil {
		return err
	}

	if username != "" {
		if err := u.users.UpdateUsername(ctx, user.Email, strings.TrimSpace(username)); err != nil {
			if errors.Is(err, repository.ErrDuplicateUsername) {
				return ErrUsernameExists
			}
			return err
		}
	}

	if newPassword != "" {
		if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(currentPassword)); err != nil {
			return ErrInvalidPassword
		}
		if err := u.users.UpdatePassword(ctx, user.Email, newPassword); err != nil {
			return err
		}
	}

	u.logger.Info("Profile updated", zap.String("email", user.Email))
	return nil
}

// UploadProfileImage stores the image, points the profile at its URL and
// then removes the replaced image. Removal of the old object is
// best-effort: an orphan in the bucket beats a broken profile.
func (u *TaskUsecase) UploadProfileImage(ctx context.Context, email, fileName string, data []byte) (string, error) {
	if len(data) == 0 {
		return "", ErrMissingFields
	}
	if u.store == nil {
		return "", errors.New("object storage is not configured")
	}

	user, err := u.getUser(ctx, email)
	if err != nil {
		return "", err
	}

	imageURL, err := u.store.Upload(ctx, fileName, data)
	if err != nil {
		return "", err
	}
	if err := u.users.UpdateProfileImage(ctx, user.Email, imageURL); err != nil {
		return "", err
	}

	if user.ProfileImage != "" {
		if err := u.store.Remove(ctx, user.ProfileImage); err != nil {
			u.logger.Warn("Failed to remove replaced profile image",
				zap.String("email", user.Email), zap.Error(err))
		}
	}

	u.logger.Info("Profile image updated", zap.String("email", user.Email))
	return imageURL, nil
}

type AddTaskInput struct {
	Title    string
	Desc     string
	DeadLine *time.Time
	Priority string
}

func (u *TaskUsecase) AddTask(ctx context.Context, email string, input AddTaskInput) (entity.Task, error) {
	if input.Title == "" || input.Desc == "" {
		return entity.Task{}, ErrMissingFields
	}
	priority := input.Priority
	if priority == "" {
		priority = entity.PriorityLow
	}
	if !entity.ValidPriority(priority) {
		return entity.Task{}, ErrInvalidPriority
	}

	task := entity.Task{
		Title:     input.Title,
		Desc:      input.Desc,
		DeadLine:  input.DeadLine,
		Priority:  priority,
		CreatedAt: time.Now(),
	}

	created, err := u.tasks.AddTask(ctx, strings.ToLower(email), task)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return entity.Task{}, ErrUserNotFound
		}
		return entity.Task{}, err
	}
	return created, nil
}

func (u *TaskUsecase) Tasks(ctx context.Context, email string) ([]entity.Task, error) {
	user, err := u.getUser(ctx, email)
	if err != nil {
		return nil, err
	}
	return user.Tasks, nil
}

func (u *TaskUsecase) HistoryTasks(ctx context.Context, email string) ([]entity.Task, error) {
	user, err := u.getUser(ctx, email)
	if err != nil {
		return nil, err
	}
	return user.History, nil
}

func (u *TaskUsecase) DeleteTask(ctx context.Context, email, taskID string) error {
	id, err := primitive.ObjectIDFromHex(taskID)
	if err != nil {
		return ErrTaskNotFound
	}
	if err := u.tasks.DeleteTask(ctx, strings.ToLower(email), id); err != nil {
		switch {
		case errors.Is(err, repository.ErrUserNotFound):
			return ErrUserNotFound
		case errors.Is(err, repository.ErrTaskNotFound):
			return ErrTaskNotFound
		}
		return err
	}
	return nil
}

// ToggleTask completes a task exactly once; a copy travels to history and
// the before-deadline counter is bumped when the deadline was beaten.
func (u *TaskUsecase) ToggleTask(ctx context.Context, email, taskID string) (entity.Task, error) {
	id, err := primitive.ObjectIDFromHex(taskID)
	if err != nil {
		return entity.Task{}, ErrTaskNotFound
	}

	user, err := u.getUser(ctx, email)
	if err != nil {
		return entity.Task{}, err
	}

	var task *entity.Task
	for i := range user.Tasks {
		if user.Tasks[i].ID == id {
			task = &user.Tasks[i]
			break
		}
	}
	if task == nil {
		return entity.Task{}, ErrTaskNotFound
	}
	if task.Completed {
		return entity.Task{}, ErrTaskAlreadyCompleted
	}

	beforeDeadline := task.DeadLine == nil || task.DeadLine.After(time.Now())
	if err := u.tasks.CompleteTask(ctx, user.Email, *task, beforeDeadline); err != nil {
		if errors.Is(err, repository.ErrTaskNotFound) {
			return entity.Task{}, ErrTaskNotFound
		}
		return entity.Task{}, err
	}

	task.Completed = true
	return *task, nil
}

// EditTaskInput carries optional fields; nil means "leave unchanged".
// ClearDeadLine removes an existing deadline.
type EditTaskInput struct {
	Title         *string
	Desc          *string
	Priority      *string
	DeadLine      *time.Time
	ClearDeadLine bool
}

func (u *TaskUsecase) EditTask(ctx context.Context, email, taskID string, input EditTaskInput) (entity.Task, error) {
	id, err := primitive.ObjectIDFromHex(taskID)
	if err != nil {
		return entity.Task{}, ErrTaskNotFound
	}

	user, err := u.getUser(ctx, email)
	if err != nil {
		return entity.Task{}, err
	}

	var task *entity.Task
	for i := range user.Tasks {
		if user.Tasks[i].ID == id {
			task = &user.Tasks[i]
			break
		}
	}
	if task == nil {
		return entity.Task{}, ErrTaskNotFound
	}

	if input.Title != nil && *input.Title != "" {
		task.Title = *input.Title
	}
	if input.Desc != nil && *input.Desc != "" {
		task.Desc = *input.Desc
	}
	if input.Priority != nil && *input.Priority != "" {
		if !entity.ValidPriority(*input.Priority) {
			return entity.Task{}, ErrInvalidPriority
		}
		task.Priority = *input.Priority
	}
	if input.ClearDeadLine {
		task.DeadLine = nil
	} else if input.DeadLine != nil {
		task.DeadLine = input.DeadLine
	}

	if err := u.tasks.EditTask(ctx, user.Email, *task); err != nil {
		if errors.Is(err, repository.ErrTaskNotFound) {
			return entity.Task{}, ErrTaskNotFound
		}
		return entity.Task{}, err
	}
	return *task, nil
}

// TaskStatistics is the payload of the statistics endpoint. The overdue
// count is computed live from the active tasks.
type TaskStatistics struct {
	TasksCounter                int64 `json:"tasksCounter"`
	TasksFinishedBeforeDeadline int64 `json:"tasksFinishedBeforeDeadline"`
	OverdueTasks                int64 `json:"overDueTasks"`
}

func (u *TaskUsecase) Statistics(ctx context.Context, email string) (TaskStatistics, error) {
	user, err := u.getUser(ctx, email)
	if err != nil {
		return TaskStatistics{}, err
	}

	now := time.Now()
	var overdue int64
	for i := range user.Tasks {
		if user.Tasks[i].Overdue(now) {
			overdue++
		}
	}

	return TaskStatistics{
		TasksCounter:                user.TasksCounter,
		TasksFinishedBeforeDeadline: user.TasksFinishedBeforeDeadline,
		OverdueTasks:                overdue,
	}, nil
}
