package repository

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/taskvault/taskvault/internal/entity"
)

// TaskRepository covers the embedded task, group and notification
// collections of a user document.
type TaskRepository interface {
	AddTask(ctx context.Context, email string, task entity.Task) (entity.Task, error)
	CompleteTask(ctx context.Context, email string, task entity.Task, beforeDeadline bool) error
	EditTask(ctx context.Context, email string, task entity.Task) error
	// DeleteTask removes the task from the active list or from history,
	// whichever holds it.
	DeleteTask(ctx context.Context, email string, taskID primitive.ObjectID) error

	AddGroup(ctx context.Context, email string, group entity.Group) (entity.Group, error)
	DeleteGroup(ctx context.Context, email string, groupID primitive.ObjectID) error
	AddStepTask(ctx context.Context, email string, groupID primitive.ObjectID, step entity.StepTask) (entity.StepTask, error)
	// SaveGroup overwrites the whole embedded group in one write; used for
	// step-task toggles and deletions that renumber orders.
	SaveGroup(ctx context.Context, email string, group entity.Group) error

	MarkNotificationRead(ctx context.Context, email string, notificationID primitive.ObjectID) error
	SaveNotifications(ctx context.Context, email string, notifications []entity.Notification) error

	// ListUsers streams every user document for the background sweep.
	ListUsers(ctx context.Context) ([]*entity.User, error)
}
