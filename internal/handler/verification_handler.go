package handler

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/taskvault/taskvault/internal/usecase"
)

// VerificationHandler serves the email-verification endpoints. VerifyEmail
// is opened from a mail client, so its outcomes are browser redirects to
// the frontend rather than JSON.
type VerificationHandler struct {
	auth        *usecase.AuthUsecase
	frontendURL string
	logger      *zap.Logger
}

func NewVerificationHandler(auth *usecase.AuthUsecase, frontendURL string, logger *zap.Logger) *VerificationHandler {
	return &VerificationHandler{
		auth:        auth,
		frontendURL: frontendURL,
		logger:      logger.Named("VerificationHandler"),
	}
}

func (h *VerificationHandler) VerifyEmail(w http.ResponseWriter, r *http.Request) {
	verificationToken := chi.URLParam(r, "token")
	if verificationToken == "" {
		http.Redirect(w, r, h.frontendURL+"/verification-error?reason=missing_token", http.StatusFound)
		return
	}

	err := h.auth.VerifyEmail(r.Context(), verificationToken)
	switch {
	case err == nil:
		http.Redirect(w, r, h.frontendURL+"/verification-success", http.StatusFound)
	case errors.Is(err, usecase.ErrAlreadyVerified):
		http.Redirect(w, r, h.frontendURL+"/verification-success?already=true", http.StatusFound)
	case errors.Is(err, usecase.ErrTokenInvalid):
		http.Redirect(w, r, h.frontendURL+"/verification-error?reason=invalid_token", http.StatusFound)
	default:
		h.logger.Error("Email verification failed", zap.Error(err))
		http.Redirect(w, r, h.frontendURL+"/verification-error?reason=server_error", http.StatusFound)
	}
}

type resendRequest struct {
	Email string `json:"email"`
}

func (h *VerificationHandler) ResendVerification(w http.ResponseWriter, r *http.Request) {
	var req resendRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, h.logger, usecase.ErrMissingFields)
		return
	}

	err := h.auth.ResendVerification(r.Context(), req.Email)
	switch {
	case err == nil:
		writeSuccess(w, http.StatusOK, "Verification email sent", nil)
	case errors.Is(err, usecase.ErrAlreadyVerified):
		// Not an error for the caller: the account is in the desired state.
		writeSuccess(w, http.StatusOK, "Email is already verified", nil)
	default:
		writeError(w, h.logger, err)
	}
}
