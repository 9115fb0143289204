package repository

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/taskvault/taskvault/internal/entity"
)

type mongoTask struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	Title     string             `bson:"title"`
	Desc      string             `bson:"desc"`
	Completed bool               `bson:"completed"`
	CreatedAt time.Time          `bson:"created_at"`
	DeadLine  *time.Time         `bson:"dead_line,omitempty"`
	Priority  string             `bson:"priority"`
}

type mongoStepTask struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	Title     string             `bson:"title"`
	Completed bool               `bson:"completed"`
	Order     int                `bson:"order"`
}

type mongoGroup struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	Title     string             `bson:"title"`
	StepTasks []mongoStepTask    `bson:"step_tasks"`
	Completed bool               `bson:"completed"`
	CreatedAt time.Time          `bson:"created_at"`
}

type mongoNotification struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	TaskID    primitive.ObjectID `bson:"task_id"`
	Message   string             `bson:"message"`
	Severity  string             `bson:"severity"`
	Read      bool               `bson:"read"`
	CreatedAt time.Time          `bson:"created_at"`
}

type mongoUser struct {
	ID           primitive.ObjectID `bson:"_id,omitempty"`
	Username     string             `bson:"username"`
	Email        string             `bson:"email"`
	Password     string             `bson:"password"`
	ProfileImage string             `bson:"profile_image,omitempty"`

	IsEmailVerified          bool       `bson:"is_email_verified"`
	EmailVerificationToken   string     `bson:"email_verification_token,omitempty"`
	EmailVerificationExpires *time.Time `bson:"email_verification_expires,omitempty"`
	PasswordResetToken       string     `bson:"password_reset_token,omitempty"`
	PasswordResetExpires     *time.Time `bson:"password_reset_expires,omitempty"`

	RefreshToken string `bson:"refresh_token,omitempty"`

	TasksCounter                int64 `bson:"tasks_counter"`
	TasksFinishedBeforeDeadline int64 `bson:"tasks_finished_before_deadline"`

	Tasks         []mongoTask         `bson:"tasks"`
	History       []mongoTask         `bson:"history"`
	Groups        []mongoGroup        `bson:"groups"`
	Notifications []mongoNotification `bson:"notifications"`
}

func taskToEntity(m mongoTask) entity.Task {
	return entity.Task{
		ID:        m.ID,
		Title:     m.Title,
		Desc:      m.Desc,
		Completed: m.Completed,
		CreatedAt: m.CreatedAt,
		DeadLine:  m.DeadLine,
		Priority:  m.Priority,
	}
}

func taskFromEntity(e entity.Task) mongoTask {
	return mongoTask{
		ID:        e.ID,
		Title:     e.Title,
		Desc:      e.Desc,
		Completed: e.Completed,
		CreatedAt: e.CreatedAt,
		DeadLine:  e.DeadLine,
		Priority:  e.Priority,
	}
}

func groupToEntity(m mongoGroup) entity.Group {
	g := entity.Group{
		ID:        m.ID,
		Title:     m.Title,
		Completed: m.Completed,
		CreatedAt: m.CreatedAt,
		StepTasks: make([]entity.StepTask, 0, len(m.StepTasks)),
	}
	for _, s := range m.StepTasks {
		g.StepTasks = append(g.StepTasks, entity.StepTask(s))
	}
	return g
}

func groupFromEntity(e entity.Group) mongoGroup {
	g := mongoGroup{
		ID:        e.ID,
		Title:     e.Title,
		Completed: e.Completed,
		CreatedAt: e.CreatedAt,
		StepTasks: make([]mongoStepTask, 0, len(e.StepTasks)),
	}
	for _, s := range e.StepTasks {
		g.StepTasks = append(g.StepTasks, mongoStepTask(s))
	}
	return g
}

func notificationToEntity(m mongoNotification) entity.Notification {
	return entity.Notification(m)
}

func notificationFromEntity(e entity.Notification) mongoNotification {
	return mongoNotification(e)
}

func (m *mongoUser) toEntity() *entity.User {
	u := &entity.User{
		ID:                          m.ID,
		Username:                    m.Username,
		Email:                       m.Email,
		Password:                    m.Password,
		ProfileImage:                m.ProfileImage,
		IsEmailVerified:             m.IsEmailVerified,
		EmailVerificationToken:      m.EmailVerificationToken,
		EmailVerificationExpires:    m.EmailVerificationExpires,
		PasswordResetToken:          m.PasswordResetToken,
		PasswordResetExpires:        m.PasswordResetExpires,
		RefreshToken:                m.RefreshToken,
		TasksCounter:                m.TasksCounter,
		TasksFinishedBeforeDeadline: m.TasksFinishedBeforeDeadline,
	}
	for _, t := range m.Tasks {
		u.Tasks = append(u.Tasks, taskToEntity(t))
	}
	for _, t := range m.History {
		u.History = append(u.History, taskToEntity(t))
	}
	for _, g := range m.Groups {
		u.Groups = append(u.Groups, groupToEntity(g))
	}
	for _, n := range m.Notifications {
		u.Notifications = append(u.Notifications, notificationToEntity(n))
	}
	return u
}

func fromEntity(e *entity.User) *mongoUser {
	m := &mongoUser{
		ID:                          e.ID,
		Username:                    e.Username,
		Email:                       e.Email,
		Password:                    e.Password,
		ProfileImage:                e.ProfileImage,
		IsEmailVerified:             e.IsEmailVerified,
		EmailVerificationToken:      e.EmailVerificationToken,
		EmailVerificationExpires:    e.EmailVerificationExpires,
		PasswordResetToken:          e.PasswordResetToken,
		PasswordResetExpires:        e.PasswordResetExpires,
		RefreshToken:                e.RefreshToken,
		TasksCounter:                e.TasksCounter,
		TasksFinishedBeforeDeadline: e.TasksFinishedBeforeDeadline,
		Tasks:                       []mongoTask{},
		History:                     []mongoTask{},
		Groups:                      []mongoGroup{},
		Notifications:               []mongoNotification{},
	}
	for _, t := range e.Tasks {
		m.Tasks = append(m.Tasks, taskFromEntity(t))
	}
	for _, t := range e.History {
		m.History = append(m.History, taskFromEntity(t))
	}
	for _, g := range e.Groups {
		m.Groups = append(m.Groups, groupFromEntity(g))
	}
	for _, n := range e.Notifications {
		m.Notifications = append(m.Notifications, notificationFromEntity(n))
	}
	return m
}
