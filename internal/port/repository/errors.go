package repository

import "errors"

var (
	ErrDuplicateEmail    = errors.New("email already exists")
	ErrDuplicateUsername = errors.New("username already exists")
	ErrUserNotFound      = errors.New("user not found")
	ErrTokenNotFound     = errors.New("token not found or expired")

	ErrTaskNotFound         = errors.New("task not found")
	ErrGroupNotFound        = errors.New("group not found")
	ErrNotificationNotFound = errors.New("notification not found")
)
