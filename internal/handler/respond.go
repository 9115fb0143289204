package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/taskvault/taskvault/internal/usecase"
)

// response is the JSON envelope every endpoint speaks.
type response struct {
	Success   bool        `json:"success"`
	Message   string      `json:"message"`
	ErrorCode string      `json:"errorCode,omitempty"`
	Data      interface{} `json:"data,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, body response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeSuccess(w http.ResponseWriter, status int, message string, data interface{}) {
	writeJSON(w, status, response{Success: true, Message: message, Data: data})
}

// writeError translates a usecase sentinel into its status and error code.
// Anything unmapped is a 500 with the generic code; internal error text
// never crosses the boundary.
func writeError(w http.ResponseWriter, logger *zap.Logger, err error) {
	status, code, message := translateError(err)
	if status == http.StatusInternalServerError && logger != nil {
		logger.Error("Request failed", zap.Error(err))
	}
	writeJSON(w, status, response{Success: false, Message: message, ErrorCode: code})
}

func translateError(err error) (int, string, string) {
	switch {
	case errors.Is(err, usecase.ErrMissingFields):
		return http.StatusBadRequest, "MISSING_FIELDS", "All fields are required"
	case errors.Is(err, usecase.ErrInvalidInput):
		return http.StatusBadRequest, "INVALID_INPUT", "Invalid input"
	case errors.Is(err, usecase.ErrShortPassword):
		return http.StatusBadRequest, "INVALID_INPUT", "Password must be at least 6 characters"
	case errors.Is(err, usecase.ErrIncompletePasswordPair):
		return http.StatusBadRequest, "INVALID_INPUT", "Both current and new passwords are required"
	case errors.Is(err, usecase.ErrEmailExists):
		return http.StatusConflict, "EMAIL_EXISTS", "Email already exists"
	case errors.Is(err, usecase.ErrUsernameExists):
		return http.StatusConflict, "USERNAME_EXISTS", "Username already taken"
	case errors.Is(err, usecase.ErrUserNotFound):
		return http.StatusNotFound, "USER_NOT_FOUND", "User not found"
	case errors.Is(err, usecase.ErrEmailNotVerified):
		return http.StatusUnauthorized, "EMAIL_NOT_VERIFIED", "Please verify your email before logging in"
	case errors.Is(err, usecase.ErrInvalidPassword):
		return http.StatusUnauthorized, "INVALID_PASSWORD", "Invalid password"
	case errors.Is(err, usecase.ErrTokenInvalid):
		return http.StatusBadRequest, "INVALID_TOKEN", "Invalid or expired token"
	case errors.Is(err, usecase.ErrEmailSendFailed):
		return http.StatusInternalServerError, "EMAIL_SEND_FAILED", "Failed to send email"
	case errors.Is(err, usecase.ErrUnauthorized):
		return http.StatusUnauthorized, "UNAUTHORIZED", "Unauthorized"
	case errors.Is(err, usecase.ErrForbidden):
		return http.StatusForbidden, "FORBIDDEN", "Forbidden"
	case errors.Is(err, usecase.ErrTaskNotFound):
		return http.StatusNotFound, "TASK_NOT_FOUND", "Task not found"
	case errors.Is(err, usecase.ErrTaskAlreadyCompleted):
		return http.StatusBadRequest, "TASK_ALREADY_COMPLETED", "Task is already completed"
	case errors.Is(err, usecase.ErrInvalidPriority):
		return http.StatusBadRequest, "INVALID_PRIORITY", "Priority must be High, Medium or Low"
	case errors.Is(err, usecase.ErrGroupNotFound):
		return http.StatusNotFound, "GROUP_NOT_FOUND", "Group not found"
	case errors.Is(err, usecase.ErrPreviousTasksIncomplete):
		return http.StatusBadRequest, "PREVIOUS_TASKS_INCOMPLETE", "Complete previous tasks first"
	case errors.Is(err, usecase.ErrNotificationNotFound):
		return http.StatusNotFound, "NOTIFICATION_NOT_FOUND", "Notification not found"
	}
	return http.StatusInternalServerError, "SERVER_ERROR", "Internal server error"
}

func decodeBody(r *http.Request, dst interface{}) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(dst)
}
