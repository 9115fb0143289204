package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/taskvault/taskvault/internal/handler"
	"github.com/taskvault/taskvault/internal/middleware"
	"github.com/taskvault/taskvault/internal/platform/metrics"
	"github.com/taskvault/taskvault/internal/token"
)

// Handlers bundles everything the route table mounts.
type Handlers struct {
	Auth         *handler.AuthHandler
	Verification *handler.VerificationHandler
	Reset        *handler.ResetHandler
	Task         *handler.TaskHandler
	Group        *handler.GroupHandler
	Notification *handler.NotificationHandler
}

// New builds the route table: open auth endpoints at the root, everything
// under /user behind the bearer gate. The refresh cookie travels cross-origin
// from the frontend, so CORS answers with that origin and credentials enabled.
func New(h Handlers, tokens *token.Service, mm *metrics.Manager, frontendURL string, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{frontendURL},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Metrics(mm))

	gate := middleware.Auth(tokens, logger)

	r.Post("/register", h.Auth.Register)
	r.Post("/login", h.Auth.Login)
	r.Get("/refresh", h.Auth.Refresh)
	r.With(gate).Post("/logout", h.Auth.Logout)

	r.Get("/verify-email/{token}", h.Verification.VerifyEmail)
	r.Post("/re-verify-email", h.Verification.ResendVerification)

	r.Route("/reset", func(r chi.Router) {
		r.Post("/forgot-password", h.Reset.ForgotPassword)
		r.Get("/verify-reset-token/{token}", h.Reset.VerifyResetToken)
		r.Post("/reset-password/{token}", h.Reset.ResetPassword)
	})

	r.Route("/user", func(r chi.Router) {
		r.Use(gate)

		r.Get("/", h.Task.Profile)
		r.Post("/", h.Task.AddTask)
		r.Delete("/", h.Task.DeleteAccount)
		r.Patch("/editProfile", h.Task.EditProfile)
		r.Post("/profile-image", h.Task.UploadProfileImage)

		r.Get("/get-tasks", h.Task.GetTasks)
		r.Get("/get-history-tasks", h.Task.GetHistoryTasks)
		r.Get("/get-tasks-number", h.Task.Statistics)
		r.Patch("/toggleTask/{taskId}", h.Task.ToggleTask)
		r.Patch("/editTask/{taskId}", h.Task.EditTask)
		r.Delete("/{id}", h.Task.DeleteTask)

		r.Route("/groups", func(r chi.Router) {
			r.Post("/", h.Group.AddGroup)
			r.Get("/", h.Group.GetGroups)
			r.Get("/{groupId}", h.Group.GetGroupSteps)
			r.Delete("/{groupId}", h.Group.DeleteGroup)
			r.Post("/{groupId}/tasks", h.Group.AddStepTask)
			r.Delete("/{groupId}/tasks/{taskId}", h.Group.DeleteStepTask)
			r.Patch("/{groupId}/tasks/{taskId}/toggle", h.Group.ToggleStepTask)
		})

		r.Get("/notifications", h.Notification.GetNotifications)
		r.Patch("/mark-notification-read/{id}", h.Notification.MarkNotificationRead)
	})

	return r
}
