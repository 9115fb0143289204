package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/taskvault/taskvault/internal/middleware"
	"github.com/taskvault/taskvault/internal/usecase"
)

// GroupHandler serves the gated group and step-task endpoints.
type GroupHandler struct {
	tasks  *usecase.TaskUsecase
	logger *zap.Logger
}

func NewGroupHandler(tasks *usecase.TaskUsecase, logger *zap.Logger) *GroupHandler {
	return &GroupHandler{tasks: tasks, logger: logger.Named("GroupHandler")}
}

func (h *GroupHandler) email(w http.ResponseWriter, r *http.Request) (string, bool) {
	email, ok := middleware.EmailFromContext(r.Context())
	if !ok {
		writeError(w, h.logger, usecase.ErrUnauthorized)
		return "", false
	}
	return email, true
}

type addGroupRequest struct {
	Title string `json:"title"`
}

func (h *GroupHandler) AddGroup(w http.ResponseWriter, r *http.Request) {
	email, ok := h.email(w, r)
	if !ok {
		return
	}

	var req addGroupRequest
	if err := decodeBody(r, &req); err != nil || req.Title == "" {
		writeError(w, h.logger, usecase.ErrMissingFields)
		return
	}

	group, err := h.tasks.AddGroup(r.Context(), email, req.Title)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeSuccess(w, http.StatusCreated, "Group created", group)
}

func (h *GroupHandler) GetGroups(w http.ResponseWriter, r *http.Request) {
	email, ok := h.email(w, r)
	if !ok {
		return
	}

	groups, err := h.tasks.Groups(r.Context(), email)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeSuccess(w, http.StatusOK, "Groups fetched", groups)
}

func (h *GroupHandler) GetGroupSteps(w http.ResponseWriter, r *http.Request) {
	email, ok := h.email(w, r)
	if !ok {
		return
	}

	steps, err := h.tasks.GroupSteps(r.Context(), email, chi.URLParam(r, "groupId"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeSuccess(w, http.StatusOK, "Group tasks fetched", steps)
}

func (h *GroupHandler) DeleteGroup(w http.ResponseWriter, r *http.Request) {
	email, ok := h.email(w, r)
	if !ok {
		return
	}

	if err := h.tasks.DeleteGroup(r.Context(), email, chi.URLParam(r, "groupId")); err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeSuccess(w, http.StatusOK, "Group deleted", nil)
}

type addStepTaskRequest struct {
	Title string `json:"title"`
}

func (h *GroupHandler) AddStepTask(w http.ResponseWriter, r *http.Request) {
	email, ok := h.email(w, r)
	if !ok {
		return
	}

	var req addStepTaskRequest
	if err := decodeBody(r, &req); err != nil || req.Title == "" {
		writeError(w, h.logger, usecase.ErrMissingFields)
		return
	}

	steps, err := h.tasks.AddStepTask(r.Context(), email, chi.URLParam(r, "groupId"), req.Title)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeSuccess(w, http.StatusCreated, "Task added to group", steps)
}

func (h *GroupHandler) DeleteStepTask(w http.ResponseWriter, r *http.Request) {
	email, ok := h.email(w, r)
	if !ok {
		return
	}

	steps, err := h.tasks.DeleteStepTask(r.Context(), email, chi.URLParam(r, "groupId"), chi.URLParam(r, "taskId"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeSuccess(w, http.StatusOK, "Task removed from group", steps)
}

func (h *GroupHandler) ToggleStepTask(w http.ResponseWriter, r *http.Request) {
	email, ok := h.email(w, r)
	if !ok {
		return
	}

	group, err := h.tasks.ToggleStepTask(r.Context(), email, chi.URLParam(r, "groupId"), chi.URLParam(r, "taskId"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeSuccess(w, http.StatusOK, "Task toggled", group)
}
