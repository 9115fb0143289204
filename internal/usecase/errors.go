package usecase

import "errors"

// Sentinel errors translated to HTTP status codes and error codes at the
// handler boundary.
var (
	ErrMissingFields           = errors.New("required fields are missing")
	ErrInvalidInput            = errors.New("invalid input")
	ErrEmailExists             = errors.New("email already exists")
	ErrUsernameExists          = errors.New("username already taken")
	ErrUserNotFound            = errors.New("user not found")
	ErrEmailNotVerified        = errors.New("email not verified")
	ErrInvalidPassword         = errors.New("invalid password")
	ErrAlreadyVerified         = errors.New("email already verified")
	ErrTokenInvalid            = errors.New("invalid or expired token")
	ErrEmailSendFailed         = errors.New("failed to send email")
	ErrUnauthorized            = errors.New("unauthorized")
	ErrForbidden               = errors.New("forbidden")
	ErrShortPassword           = errors.New("password must be at least 6 characters")
	ErrIncompletePasswordPair  = errors.New("both current and new passwords are required")
	ErrTaskNotFound            = errors.New("task not found")
	ErrTaskAlreadyCompleted    = errors.New("task already completed")
	ErrInvalidPriority         = errors.New("invalid priority")
	ErrGroupNotFound           = errors.New("group not found")
	ErrPreviousTasksIncomplete = errors.New("complete previous tasks first")
	ErrNotificationNotFound    = errors.New("notification not found")
)
