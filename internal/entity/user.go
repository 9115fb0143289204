package entity

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User is the aggregate root: one document per account, owning the
// credential fields and every embedded task collection.
type User struct {
	ID           primitive.ObjectID
	Username     string
	Email        string // unique, stored lowercased
	Password     string // bcrypt hash, never the clear form
	ProfileImage string

	IsEmailVerified          bool
	EmailVerificationToken   string
	EmailVerificationExpires *time.Time
	PasswordResetToken       string
	PasswordResetExpires     *time.Time

	// Single active refresh token; a new login overwrites it.
	RefreshToken string

	TasksCounter                int64
	TasksFinishedBeforeDeadline int64

	Tasks         []Task
	History       []Task
	Groups        []Group
	Notifications []Notification
}

// PublicProfile is the subset of User returned to clients.
type PublicProfile struct {
	Username        string `json:"username"`
	Email           string `json:"email"`
	ProfileImage    string `json:"profileImage,omitempty"`
	IsEmailVerified bool   `json:"isEmailVerified"`
}

func (u *User) Public() PublicProfile {
	return PublicProfile{
		Username:        u.Username,
		Email:           u.Email,
		ProfileImage:    u.ProfileImage,
		IsEmailVerified: u.IsEmailVerified,
	}
}
