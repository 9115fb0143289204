package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/taskvault/taskvault/internal/usecase"
)

// ResetHandler serves the password-reset lifecycle.
type ResetHandler struct {
	auth   *usecase.AuthUsecase
	logger *zap.Logger
}

func NewResetHandler(auth *usecase.AuthUsecase, logger *zap.Logger) *ResetHandler {
	return &ResetHandler{auth: auth, logger: logger.Named("ResetHandler")}
}

type forgotPasswordRequest struct {
	Email string `json:"email"`
}

// ForgotPassword answers 200 whether or not the account exists so the
// endpoint cannot be used to enumerate emails.
func (h *ResetHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req forgotPasswordRequest
	if err := decodeBody(r, &req); err != nil || req.Email == "" {
		writeError(w, h.logger, usecase.ErrMissingFields)
		return
	}

	if err := h.auth.RequestPasswordReset(r.Context(), req.Email); err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeSuccess(w, http.StatusOK, "If that email is registered, a reset link has been sent", nil)
}

func (h *ResetHandler) VerifyResetToken(w http.ResponseWriter, r *http.Request) {
	resetToken := chi.URLParam(r, "token")
	if err := h.auth.VerifyResetToken(r.Context(), resetToken); err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeSuccess(w, http.StatusOK, "Reset token is valid", nil)
}

type resetPasswordRequest struct {
	Password string `json:"password"`
}

func (h *ResetHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	resetToken := chi.URLParam(r, "token")

	var req resetPasswordRequest
	if err := decodeBody(r, &req); err != nil || req.Password == "" {
		writeError(w, h.logger, usecase.ErrMissingFields)
		return
	}

	if err := h.auth.ResetPassword(r.Context(), resetToken, req.Password); err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeSuccess(w, http.StatusOK, "Password has been reset", nil)
}
