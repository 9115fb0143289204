package scheduler

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/taskvault/taskvault/internal/entity"
	"github.com/taskvault/taskvault/internal/messaging/nats"
	"github.com/taskvault/taskvault/internal/platform/metrics"
	"github.com/taskvault/taskvault/internal/port/repository"
)

// dueSoonWindow is how far ahead of a deadline the warning fires.
const dueSoonWindow = time.Hour

// NotificationEvent is the payload published per generated notification.
type NotificationEvent struct {
	Email     string    `json:"email"`
	TaskID    string    `json:"taskId"`
	Message   string    `json:"message"`
	Severity  string    `json:"severity"`
	CreatedAt time.Time `json:"createdAt"`
}

// Sweep scans every user on a fixed interval and generates deadline
// notifications: an error once a task is overdue, a warning when its
// deadline is less than an hour away. A task never collects two
// notifications of the same severity.
type Sweep struct {
	tasks     repository.TaskRepository
	publisher *nats.Publisher
	metrics   *metrics.Manager
	interval  time.Duration
	logger    *zap.Logger
}

func NewSweep(
	tasks repository.TaskRepository,
	publisher *nats.Publisher,
	mm *metrics.Manager,
	interval time.Duration,
	logger *zap.Logger,
) *Sweep {
	return &Sweep{
		tasks:     tasks,
		publisher: publisher,
		metrics:   mm,
		interval:  interval,
		logger:    logger.Named("Sweep"),
	}
}

// Run blocks until ctx is canceled, running one pass per tick.
func (s *Sweep) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.logger.Info("Notification sweep started", zap.Duration("interval", s.interval))
	for {
		select {
		case <-ctx.Done():
			s.logger.Info("Notification sweep stopped")
			return
		case <-ticker.C:
			if err := s.RunOnce(ctx); err != nil {
				s.logger.Error("Sweep pass failed", zap.Error(err))
			}
		}
	}
}

// RunOnce performs a single pass over all users.
func (s *Sweep) RunOnce(ctx context.Context) error {
	users, err := s.tasks.ListUsers(ctx)
	if err != nil {
		return err
	}

	now := time.Now()
	var generated int
	for _, user := range users {
		created := SweepUser(user, now)
		if len(created) == 0 {
			continue
		}

		if err := s.tasks.SaveNotifications(ctx, user.Email, user.Notifications); err != nil {
			s.logger.Error("Failed to save notifications",
				zap.String("email", user.Email), zap.Error(err))
			continue
		}
		generated += len(created)

		for _, n := range created {
			event := NotificationEvent{
				Email:     user.Email,
				TaskID:    n.TaskID.Hex(),
				Message:   n.Message,
				Severity:  n.Severity,
				CreatedAt: n.CreatedAt,
			}
			if err := s.publisher.Publish(nats.SubjectNotificationCreated, event); err != nil {
				s.logger.Warn("Failed to publish notification event", zap.Error(err))
			}
		}
	}

	if s.metrics != nil {
		s.metrics.SweepRunsTotal.Inc()
		s.metrics.NotificationsGeneratedTotal.Add(float64(generated))
	}
	if generated > 0 {
		s.logger.Info("Sweep pass generated notifications", zap.Int("count", generated))
	}
	return nil
}

// SweepUser mutates the user's notification list in place and returns the
// newly created notifications. Pure over (user, now) so it can be tested
// without a store.
func SweepUser(user *entity.User, now time.Time) []entity.Notification {
	var created []entity.Notification

	for i := range user.Tasks {
		task := &user.Tasks[i]

		var severity, message string
		switch {
		case task.Overdue(now):
			severity = entity.SeverityError
			message = fmt.Sprintf("Task %q is overdue!", task.Title)
		case task.DueWithin(now, dueSoonWindow):
			severity = entity.SeverityWarning
			message = fmt.Sprintf("Task %q is due in 1 hour!", task.Title)
		default:
			continue
		}

		if hasNotification(user.Notifications, task.ID, severity) {
			continue
		}

		notification := entity.Notification{
			ID:        primitive.NewObjectID(),
			TaskID:    task.ID,
			Message:   message,
			Severity:  severity,
			Read:      false,
			CreatedAt: now,
		}
		user.Notifications = append(user.Notifications, notification)
		created = append(created, notification)
	}

	// Keep only the newest entries once over the cap; the list is in
	// insertion order, oldest first.
	if len(user.Notifications) > entity.MaxNotifications {
		user.Notifications = user.Notifications[len(user.Notifications)-entity.MaxNotifications:]
	}

	return created
}

func hasNotification(notifications []entity.Notification, taskID primitive.ObjectID, severity string) bool {
	for i := range notifications {
		if notifications[i].TaskID == taskID && notifications[i].Severity == severity {
			return true
		}
	}
	return false
}
