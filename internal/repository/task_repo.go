package repository

import (
	"context"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/taskvault/taskvault/internal/entity"
	port "github.com/taskvault/taskvault/internal/port/repository"
)

var (
	ErrTaskNotFound         = port.ErrTaskNotFound
	ErrGroupNotFound        = port.ErrGroupNotFound
	ErrNotificationNotFound = port.ErrNotificationNotFound
)

func (r *UserRepository) AddTask(ctx context.Context, email string, task entity.Task) (entity.Task, error) {
	r.logger.Info("Adding task", zap.String("email", email), zap.String("title", task.Title))
	if task.ID.IsZero() {
		task.ID = primitive.NewObjectID()
	}
	err := r.updateByEmail(ctx, email, bson.M{
		"$push": bson.M{"tasks": taskFromEntity(task)},
		"$inc":  bson.M{"tasks_counter": 1},
	})
	if err != nil {
		return entity.Task{}, err
	}
	return task, nil
}

func (r *UserRepository) CompleteTask(ctx context.Context, email string, task entity.Task, beforeDeadline bool) error {
	r.logger.Info("Completing task", zap.String("email", email), zap.String("taskID", task.ID.Hex()))
	task.Completed = true
	update := bson.M{
		"$set":  bson.M{"tasks.$.completed": true},
		"$push": bson.M{"history": taskFromEntity(task)},
	}
	if beforeDeadline {
		update["$inc"] = bson.M{"tasks_finished_before_deadline": 1}
	}
	result, err := r.users().UpdateOne(ctx,
		bson.M{"email": strings.ToLower(email), "tasks._id": task.ID},
		update,
	)
	if err != nil {
		r.logger.Error("DB error completing task", zap.String("taskID", task.ID.Hex()), zap.Error(err))
		return err
	}
	if result.MatchedCount == 0 {
		return ErrTaskNotFound
	}
	return nil
}

func (r *UserRepository) EditTask(ctx context.Context, email string, task entity.Task) error {
	r.logger.Info("Editing task", zap.String("email", email), zap.String("taskID", task.ID.Hex()))
	result, err := r.users().UpdateOne(ctx,
		bson.M{"email": strings.ToLower(email), "tasks._id": task.ID},
		bson.M{"$set": bson.M{"tasks.$": taskFromEntity(task)}},
	)
	if err != nil {
		r.logger.Error("DB error editing task", zap.String("taskID", task.ID.Hex()), zap.Error(err))
		return err
	}
	if result.MatchedCount == 0 {
		return ErrTaskNotFound
	}
	return nil
}

func (r *UserRepository) DeleteTask(ctx context.Context, email string, taskID primitive.ObjectID) error {
	r.logger.Info("Deleting task", zap.String("email", email), zap.String("taskID", taskID.Hex()))
	filter := bson.M{"email": strings.ToLower(email)}

	// The task may live in the active list or in history.
	result, err := r.users().UpdateOne(ctx, filter,
		bson.M{"$pull": bson.M{"tasks": bson.M{"_id": taskID}}})
	if err != nil {
		r.logger.Error("DB error deleting task", zap.String("taskID", taskID.Hex()), zap.Error(err))
		return err
	}
	if result.MatchedCount == 0 {
		return ErrUserNotFound
	}
	if result.ModifiedCount > 0 {
		return nil
	}

	result, err = r.users().UpdateOne(ctx, filter,
		bson.M{"$pull": bson.M{"history": bson.M{"_id": taskID}}})
	if err != nil {
		r.logger.Error("DB error deleting history task", zap.String("taskID", taskID.Hex()), zap.Error(err))
		return err
	}
	if result.ModifiedCount == 0 {
		return ErrTaskNotFound
	}
	return nil
}

func (r *UserRepository) AddGroup(ctx context.Context, email string, group entity.Group) (entity.Group, error) {
	r.logger.Info("Adding group", zap.String("email", email), zap.String("title", group.Title))
	if group.ID.IsZero() {
		group.ID = primitive.NewObjectID()
	}
	err := r.updateByEmail(ctx, email, bson.M{
		"$push": bson.M{"groups": groupFromEntity(group)},
	})
	if err != nil {
		return entity.Group{}, err
	}
	return group, nil
}

func (r *UserRepository) DeleteGroup(ctx context.Context, email string, groupID primitive.ObjectID) error {
	r.logger.Info("Deleting group", zap.String("email", email), zap.String("groupID", groupID.Hex()))
	result, err := r.users().UpdateOne(ctx,
		bson.M{"email": strings.ToLower(email)},
		bson.M{"$pull": bson.M{"groups": bson.M{"_id": groupID}}},
	)
	if err != nil {
		r.logger.Error("DB error deleting group", zap.String("groupID", groupID.Hex()), zap.Error(err))
		return err
	}
	if result.MatchedCount == 0 {
		return ErrUserNotFound
	}
	if result.ModifiedCount == 0 {
		return ErrGroupNotFound
	}
	return nil
}

func (r *UserRepository) AddStepTask(ctx context.Context, email string, groupID primitive.ObjectID, step entity.StepTask) (entity.StepTask, error) {
	r.logger.Info("Adding step task", zap.String("email", email), zap.String("groupID", groupID.Hex()))
	if step.ID.IsZero() {
		step.ID = primitive.NewObjectID()
	}
	result, err := r.users().UpdateOne(ctx,
		bson.M{"email": strings.ToLower(email), "groups._id": groupID},
		bson.M{
			"$push": bson.M{"groups.$.step_tasks": mongoStepTask(step)},
			"$set":  bson.M{"groups.$.completed": false},
		},
	)
	if err != nil {
		r.logger.Error("DB error adding step task", zap.String("groupID", groupID.Hex()), zap.Error(err))
		return entity.StepTask{}, err
	}
	if result.MatchedCount == 0 {
		return entity.StepTask{}, ErrGroupNotFound
	}
	return step, nil
}

func (r *UserRepository) SaveGroup(ctx context.Context, email string, group entity.Group) error {
	r.logger.Info("Saving group", zap.String("email", email), zap.String("groupID", group.ID.Hex()))
	result, err := r.users().UpdateOne(ctx,
		bson.M{"email": strings.ToLower(email), "groups._id": group.ID},
		bson.M{"$set": bson.M{"groups.$": groupFromEntity(group)}},
	)
	if err != nil {
		r.logger.Error("DB error saving group", zap.String("groupID", group.ID.Hex()), zap.Error(err))
		return err
	}
	if result.MatchedCount == 0 {
		return ErrGroupNotFound
	}
	return nil
}

func (r *UserRepository) MarkNotificationRead(ctx context.Context, email string, notificationID primitive.ObjectID) error {
	r.logger.Debug("Marking notification read", zap.String("email", email), zap.String("notificationID", notificationID.Hex()))
	result, err := r.users().UpdateOne(ctx,
		bson.M{"email": strings.ToLower(email), "notifications._id": notificationID},
		bson.M{"$set": bson.M{"notifications.$.read": true}},
	)
	if err != nil {
		r.logger.Error("DB error marking notification read", zap.Error(err))
		return err
	}
	if result.MatchedCount == 0 {
		return ErrNotificationNotFound
	}
	return nil
}

func (r *UserRepository) SaveNotifications(ctx context.Context, email string, notifications []entity.Notification) error {
	r.logger.Debug("Saving notifications", zap.String("email", email), zap.Int("count", len(notifications)))
	dbNotifications := make([]mongoNotification, 0, len(notifications))
	for _, n := range notifications {
		dbNotifications = append(dbNotifications, notificationFromEntity(n))
	}
	return r.updateByEmail(ctx, email, bson.M{"$set": bson.M{"notifications": dbNotifications}})
}

func (r *UserRepository) ListUsers(ctx context.Context) ([]*entity.User, error) {
	r.logger.Debug("Listing users for sweep")
	cursor, err := r.users().Find(ctx, bson.M{})
	if err != nil {
		r.logger.Error("DB error listing users", zap.Error(err))
		return nil, err
	}
	defer cursor.Close(ctx)

	var dbUsers []*mongoUser
	if err = cursor.All(ctx, &dbUsers); err != nil {
		r.logger.Error("Error decoding listed users", zap.Error(err))
		return nil, err
	}

	var users []*entity.User
	for _, dbUser := range dbUsers {
		users = append(users, dbUser.toEntity())
	}
	return users, nil
}
