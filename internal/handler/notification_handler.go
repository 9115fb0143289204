package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/taskvault/taskvault/internal/middleware"
	"github.com/taskvault/taskvault/internal/usecase"
)

// NotificationHandler serves the gated notification endpoints.
type NotificationHandler struct {
	tasks  *usecase.TaskUsecase
	logger *zap.Logger
}

func NewNotificationHandler(tasks *usecase.TaskUsecase, logger *zap.Logger) *NotificationHandler {
	return &NotificationHandler{tasks: tasks, logger: logger.Named("NotificationHandler")}
}

func (h *NotificationHandler) GetNotifications(w http.ResponseWriter, r *http.Request) {
	email, ok := middleware.EmailFromContext(r.Context())
	if !ok {
		writeError(w, h.logger, usecase.ErrUnauthorized)
		return
	}

	notifications, err := h.tasks.Notifications(r.Context(), email)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeSuccess(w, http.StatusOK, "Notifications fetched", notifications)
}

func (h *NotificationHandler) MarkNotificationRead(w http.ResponseWriter, r *http.Request) {
	email, ok := middleware.EmailFromContext(r.Context())
	if !ok {
		writeError(w, h.logger, usecase.ErrUnauthorized)
		return
	}

	if err := h.tasks.MarkNotificationRead(r.Context(), email, chi.URLParam(r, "id")); err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeSuccess(w, http.StatusOK, "Notification marked as read", nil)
}
