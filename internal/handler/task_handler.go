package handler

import (
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/taskvault/taskvault/internal/middleware"
	"github.com/taskvault/taskvault/internal/usecase"
)

// TaskHandler serves the gated profile and task endpoints. The identity is
// taken from the request context, never from the body.
type TaskHandler struct {
	tasks      *usecase.TaskUsecase
	production bool
	logger     *zap.Logger
}

func NewTaskHandler(tasks *usecase.TaskUsecase, production bool, logger *zap.Logger) *TaskHandler {
	return &TaskHandler{tasks: tasks, production: production, logger: logger.Named("TaskHandler")}
}

func (h *TaskHandler) email(w http.ResponseWriter, r *http.Request) (string, bool) {
	email, ok := middleware.EmailFromContext(r.Context())
	if !ok {
		writeError(w, h.logger, usecase.ErrUnauthorized)
		return "", false
	}
	return email, true
}

func (h *TaskHandler) Profile(w http.ResponseWriter, r *http.Request) {
	email, ok := h.email(w, r)
	if !ok {
		return
	}

	user, err := h.tasks.Profile(r.Context(), email)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeSuccess(w, http.StatusOK, "Profile fetched", user.Public())
}

func (h *TaskHandler) DeleteAccount(w http.ResponseWriter, r *http.Request) {
	email, ok := h.email(w, r)
	if !ok {
		return
	}

	var refreshToken string
	if cookie, err := r.Cookie(refreshCookieName); err == nil {
		refreshToken = cookie.Value
	}

	if err := h.tasks.DeleteAccount(r.Context(), email, refreshToken); err != nil {
		writeError(w, h.logger, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     refreshCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.production,
	})
	writeSuccess(w, http.StatusOK, "Account deleted", nil)
}

type editProfileRequest struct {
	Username        string `json:"username"`
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

func (h *TaskHandler) EditProfile(w http.ResponseWriter, r *http.Request) {
	email, ok := h.email(w, r)
	if !ok {
		return
	}

	var req editProfileRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, h.logger, usecase.ErrInvalidInput)
		return
	}

	if err := h.tasks.EditProfile(r.Context(), email, req.Username, req.CurrentPassword, req.NewPassword); err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeSuccess(w, http.StatusOK, "Profile updated", nil)
}

// maxProfileImageBytes bounds the multipart form an upload may carry.
const maxProfileImageBytes = 5 << 20

func (h *TaskHandler) UploadProfileImage(w http.ResponseWriter, r *http.Request) {
	email, ok := h.email(w, r)
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxProfileImageBytes)
	file, header, err := r.FormFile("profileImage")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, response{Success: false, Message: "Please upload an image file", ErrorCode: "NO_FILE_UPLOADED"})
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	imageURL, err := h.tasks.UploadProfileImage(r.Context(), email, header.Filename, data)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeSuccess(w, http.StatusOK, "Profile image uploaded successfully", map[string]string{"profileImage": imageURL})
}

type addTaskRequest struct {
	Title    string     `json:"title"`
	Desc     string     `json:"desc"`
	DeadLine *time.Time `json:"deadLine"`
	Priority string     `json:"priority"`
}

func (h *TaskHandler) AddTask(w http.ResponseWriter, r *http.Request) {
	email, ok := h.email(w, r)
	if !ok {
		return
	}

	var req addTaskRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, h.logger, usecase.ErrInvalidInput)
		return
	}
	if req.Title == "" {
		writeJSON(w, http.StatusBadRequest, response{Success: false, Message: "Title is required", ErrorCode: "MISSING_TITLE"})
		return
	}
	if req.Desc == "" {
		writeJSON(w, http.StatusBadRequest, response{Success: false, Message: "Description is required", ErrorCode: "MISSING_DESC"})
		return
	}

	task, err := h.tasks.AddTask(r.Context(), email, usecase.AddTaskInput{
		Title:    req.Title,
		Desc:     req.Desc,
		DeadLine: req.DeadLine,
		Priority: req.Priority,
	})
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeSuccess(w, http.StatusCreated, "Task added", task)
}

func (h *TaskHandler) GetTasks(w http.ResponseWriter, r *http.Request) {
	email, ok := h.email(w, r)
	if !ok {
		return
	}

	tasks, err := h.tasks.Tasks(r.Context(), email)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeSuccess(w, http.StatusOK, "Tasks fetched", tasks)
}

func (h *TaskHandler) GetHistoryTasks(w http.ResponseWriter, r *http.Request) {
	email, ok := h.email(w, r)
	if !ok {
		return
	}

	history, err := h.tasks.HistoryTasks(r.Context(), email)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeSuccess(w, http.StatusOK, "History fetched", history)
}

func (h *TaskHandler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	email, ok := h.email(w, r)
	if !ok {
		return
	}

	if err := h.tasks.DeleteTask(r.Context(), email, chi.URLParam(r, "id")); err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeSuccess(w, http.StatusOK, "Task deleted", nil)
}

func (h *TaskHandler) ToggleTask(w http.ResponseWriter, r *http.Request) {
	email, ok := h.email(w, r)
	if !ok {
		return
	}

	task, err := h.tasks.ToggleTask(r.Context(), email, chi.URLParam(r, "taskId"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeSuccess(w, http.StatusOK, "Task completed", task)
}

type editTaskRequest struct {
	Title         *string    `json:"title"`
	Desc          *string    `json:"desc"`
	Priority      *string    `json:"priority"`
	DeadLine      *time.Time `json:"deadLine"`
	ClearDeadLine bool       `json:"clearDeadLine"`
}

func (h *TaskHandler) EditTask(w http.ResponseWriter, r *http.Request) {
	email, ok := h.email(w, r)
	if !ok {
		return
	}

	var req editTaskRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, h.logger, usecase.ErrInvalidInput)
		return
	}

	task, err := h.tasks.EditTask(r.Context(), email, chi.URLParam(r, "taskId"), usecase.EditTaskInput{
		Title:         req.Title,
		Desc:          req.Desc,
		Priority:      req.Priority,
		DeadLine:      req.DeadLine,
		ClearDeadLine: req.ClearDeadLine,
	})
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeSuccess(w, http.StatusOK, "Task updated", task)
}

func (h *TaskHandler) Statistics(w http.ResponseWriter, r *http.Request) {
	email, ok := h.email(w, r)
	if !ok {
		return
	}

	stats, err := h.tasks.Statistics(r.Context(), email)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeSuccess(w, http.StatusOK, "Statistics fetched", stats)
}
