package usecase

import (
	"context"
	"errors"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/taskvault/taskvault/internal/entity"
	"github.com/taskvault/taskvault/internal/port/repository"
)

func (u *TaskUsecase) Notifications(ctx context.Context, email string) ([]entity.Notification, error) {
	user, err := u.getUser(ctx, email)
	if err != nil {
		return nil, err
	}
	return user.Notifications, nil
}

func (u *TaskUsecase) MarkNotificationRead(ctx context.Context, email, notificationID string) error {
	id, err := primitive.ObjectIDFromHex(notificationID)
	if err != nil {
		return ErrNotificationNotFound
	}
	if err := u.tasks.MarkNotificationRead(ctx, strings.ToLower(email), id); err != nil {
		if errors.Is(err, repository.ErrNotificationNotFound) {
			return ErrNotificationNotFound
		}
		return err
	}
	return nil
}
