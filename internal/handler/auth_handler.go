package handler

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/taskvault/taskvault/internal/usecase"
)

// refreshCookieName is the cookie carrying the refresh token.
const refreshCookieName = "jwt"

// AuthHandler exposes registration and the session endpoints.
type AuthHandler struct {
	auth *usecase.AuthUsecase

	production      bool
	cookieMaxAgeSec int

	logger *zap.Logger
}

func NewAuthHandler(auth *usecase.AuthUsecase, production bool, cookieMaxAgeSec int, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		auth:            auth,
		production:      production,
		cookieMaxAgeSec: cookieMaxAgeSec,
		logger:          logger.Named("AuthHandler"),
	}
}

func (h *AuthHandler) setRefreshCookie(w http.ResponseWriter, refreshToken string) {
	cookie := &http.Cookie{
		Name:     refreshCookieName,
		Value:    refreshToken,
		Path:     "/",
		MaxAge:   h.cookieMaxAgeSec,
		HttpOnly: true,
		Secure:   h.production,
		SameSite: http.SameSiteLaxMode,
	}
	if h.production {
		cookie.SameSite = http.SameSiteNoneMode
	}
	http.SetCookie(w, cookie)
}

func (h *AuthHandler) clearRefreshCookie(w http.ResponseWriter) {
	cookie := &http.Cookie{
		Name:     refreshCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.production,
		SameSite: http.SameSiteLaxMode,
	}
	if h.production {
		cookie.SameSite = http.SameSiteNoneMode
	}
	http.SetCookie(w, cookie)
}

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, h.logger, usecase.ErrMissingFields)
		return
	}

	user, err := h.auth.Register(r.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		// The account exists even when the verification mail failed; the
		// client recovers through the resend endpoint.
		writeError(w, h.logger, err)
		return
	}

	writeSuccess(w, http.StatusCreated, "User registered. Please verify your email.", user)
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, h.logger, usecase.ErrInvalidInput)
		return
	}

	session, err := h.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	h.setRefreshCookie(w, session.RefreshToken)
	writeSuccess(w, http.StatusOK, "Login successful", map[string]interface{}{
		"accessToken": session.AccessToken,
		"user":        session.User,
	})
}

func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie(refreshCookieName)
	if err != nil || cookie.Value == "" {
		writeError(w, h.logger, usecase.ErrUnauthorized)
		return
	}

	session, err := h.auth.Refresh(r.Context(), cookie.Value)
	if err != nil {
		if errors.Is(err, usecase.ErrForbidden) {
			h.clearRefreshCookie(w)
		}
		writeError(w, h.logger, err)
		return
	}

	writeSuccess(w, http.StatusOK, "Token refreshed", map[string]interface{}{
		"accessToken": session.AccessToken,
		"user":        session.User,
	})
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	var refreshToken string
	if cookie, err := r.Cookie(refreshCookieName); err == nil {
		refreshToken = cookie.Value
	}

	if err := h.auth.Logout(r.Context(), refreshToken); err != nil {
		writeError(w, h.logger, err)
		return
	}

	h.clearRefreshCookie(w)
	w.WriteHeader(http.StatusNoContent)
}
