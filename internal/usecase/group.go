package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/taskvault/taskvault/internal/entity"
	"github.com/taskvault/taskvault/internal/port/repository"
)

func (u *TaskUsecase) AddGroup(ctx context.Context, email, title string) (entity.Group, error) {
	if title == "" {
		return entity.Group{}, ErrMissingFields
	}

	group := entity.Group{
		Title:     title,
		StepTasks: []entity.StepTask{},
		Completed: false,
		CreatedAt: time.Now(),
	}

	created, err := u.tasks.AddGroup(ctx, strings.ToLower(email), group)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return entity.Group{}, ErrUserNotFound
		}
		return entity.Group{}, err
	}
	return created, nil
}

func (u *TaskUsecase) Groups(ctx context.Context, email string) ([]entity.Group, error) {
	user, err := u.getUser(ctx, email)
	if err != nil {
		return nil, err
	}
	return user.Groups, nil
}

func (u *TaskUsecase) findGroup(ctx context.Context, email, groupID string) (*entity.User, *entity.Group, error) {
	id, err := primitive.ObjectIDFromHex(groupID)
	if err != nil {
		return nil, nil, ErrGroupNotFound
	}
	user, err := u.getUser(ctx, email)
	if err != nil {
		return nil, nil, err
	}
	for i := range user.Groups {
		if user.Groups[i].ID == id {
			return user, &user.Groups[i], nil
		}
	}
	return nil, nil, ErrGroupNotFound
}

func (u *TaskUsecase) GroupSteps(ctx context.Context, email, groupID string) ([]entity.StepTask, error) {
	_, group, err := u.findGroup(ctx, email, groupID)
	if err != nil {
		return nil, err
	}
	return group.StepTasks, nil
}

func (u *TaskUsecase) DeleteGroup(ctx context.Context, email, groupID string) error {
	id, err := primitive.ObjectIDFromHex(groupID)
	if err != nil {
		return ErrGroupNotFound
	}
	if err := u.tasks.DeleteGroup(ctx, strings.ToLower(email), id); err != nil {
		switch {
		case errors.Is(err, repository.ErrUserNotFound):
			return ErrUserNotFound
		case errors.Is(err, repository.ErrGroupNotFound):
			return ErrGroupNotFound
		}
		return err
	}
	return nil
}

// AddStepTask appends a step with the next order value. Appending to a
// completed group reopens it.
func (u *TaskUsecase) AddStepTask(ctx context.Context, email, groupID, title string) ([]entity.StepTask, error) {
	if title == "" {
		return nil, ErrMissingFields
	}

	user, group, err := u.findGroup(ctx, email, groupID)
	if err != nil {
		return nil, err
	}

	step := entity.StepTask{
		Title:     title,
		Completed: false,
		Order:     len(group.StepTasks) + 1,
	}

	created, err := u.tasks.AddStepTask(ctx, user.Email, group.ID, step)
	if err != nil {
		if errors.Is(err, repository.ErrGroupNotFound) {
			return nil, ErrGroupNotFound
		}
		return nil, err
	}

	group.StepTasks = append(group.StepTasks, created)
	return group.StepTasks, nil
}

// DeleteStepTask removes a step and closes the order gap left behind, then
// recomputes the group's completed flag.
func (u *TaskUsecase) DeleteStepTask(ctx context.Context, email, groupID, taskID string) ([]entity.StepTask, error) {
	stepID, err := primitive.ObjectIDFromHex(taskID)
	if err != nil {
		return nil, ErrTaskNotFound
	}

	user, group, err := u.findGroup(ctx, email, groupID)
	if err != nil {
		return nil, err
	}

	target := group.FindStepTask(stepID)
	if target == nil {
		return nil, ErrTaskNotFound
	}
	deletedOrder := target.Order

	kept := make([]entity.StepTask, 0, len(group.StepTasks)-1)
	for _, s := range group.StepTasks {
		if s.ID == stepID {
			continue
		}
		if s.Order > deletedOrder {
			s.Order--
		}
		kept = append(kept, s)
	}
	group.StepTasks = kept
	group.Completed = group.AllStepsCompleted()

	if err := u.tasks.SaveGroup(ctx, user.Email, *group); err != nil {
		if errors.Is(err, repository.ErrGroupNotFound) {
			return nil, ErrGroupNotFound
		}
		return nil, err
	}
	return group.StepTasks, nil
}

// ToggleStepTask flips a step's completed flag under the sequential rule:
// a step can only be completed once every lower-order step is completed.
// Un-completing is always allowed.
func (u *TaskUsecase) ToggleStepTask(ctx context.Context, email, groupID, taskID string) (entity.Group, error) {
	stepID, err := primitive.ObjectIDFromHex(taskID)
	if err != nil {
		return entity.Group{}, ErrTaskNotFound
	}

	user, group, err := u.findGroup(ctx, email, groupID)
	if err != nil {
		return entity.Group{}, err
	}

	step := group.FindStepTask(stepID)
	if step == nil {
		return entity.Group{}, ErrTaskNotFound
	}

	if !step.Completed {
		for i := range group.StepTasks {
			if group.StepTasks[i].Order < step.Order && !group.StepTasks[i].Completed {
				return entity.Group{}, ErrPreviousTasksIncomplete
			}
		}
	}

	step.Completed = !step.Completed
	group.Completed = group.AllStepsCompleted()

	if err := u.tasks.SaveGroup(ctx, user.Email, *group); err != nil {
		if errors.Is(err, repository.ErrGroupNotFound) {
			return entity.Group{}, ErrGroupNotFound
		}
		return entity.Group{}, err
	}
	return *group, nil
}
