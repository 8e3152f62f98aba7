package adaptor

import (
	"net/http"
	"time"

	"go.uber.org/zap"

	"ppob-backend/internal/dto/request"
	"ppob-backend/internal/dto/response"
	"ppob-backend/internal/usecase"
	"ppob-backend/pkg/utils"
)

const refreshCookieName = "refreshToken"

type AuthHandler struct {
	service usecase.AuthService
	config  *utils.Config
	log     *zap.Logger
}

func NewAuthHandler(service usecase.AuthService, config *utils.Config, log *zap.Logger) *AuthHandler {
	return &AuthHandler{
		service: service,
		config:  config,
		log:     log.With(zap.String("handler", "auth")),
	}
}

// Register handles POST /auth/register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req request.RegisterRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	resp, err := h.service.Register(r.Context(), &req)
	if err != nil {
		handleServiceError(w, h.log, err, "register")
		return
	}

	h.setRefreshCookie(w, resp)
	utils.ResponseCreated(w, "Registration successful", resp)
}

// Login handles POST /auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req request.LoginRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	resp, err := h.service.Login(r.Context(), &req)
	if err != nil {
		handleServiceError(w, h.log, err, "login")
		return
	}

	h.setRefreshCookie(w, resp)
	utils.ResponseSuccess(w, "Login successful", resp)
}

// Refresh handles POST /auth/refresh. Cookie dulu, lalu body.
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	raw, ok := h.refreshToken(w, r)
	if !ok {
		return
	}

	resp, err := h.service.Refresh(r.Context(), raw)
	if err != nil {
		h.clearRefreshCookie(w)
		handleServiceError(w, h.log, err, "refresh token")
		return
	}

	h.setRefreshCookie(w, resp)
	utils.ResponseSuccess(w, "Token refreshed", resp)
}

// Logout handles POST /auth/logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	raw, ok := h.refreshToken(w, r)
	if !ok {
		return
	}

	if err := h.service.Logout(r.Context(), raw); err != nil {
		handleServiceError(w, h.log, err, "logout")
		return
	}

	h.clearRefreshCookie(w)
	utils.ResponseSuccess(w, "Logout successful", nil)
}

// Me handles GET /auth/me
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	caller, ok := identity(w, r)
	if !ok {
		return
	}

	resp, err := h.service.Me(r.Context(), caller.UserID)
	if err != nil {
		handleServiceError(w, h.log, err, "get profile")
		return
	}

	utils.ResponseSuccess(w, "success", resp)
}

// ==================== COOKIE HELPERS ====================

// refreshToken reads the refresh token from the cookie, falling back to the
// JSON body. ok is false when a malformed body was already answered.
func (h *AuthHandler) refreshToken(w http.ResponseWriter, r *http.Request) (string, bool) {
	if c, err := r.Cookie(refreshCookieName); err == nil && c.Value != "" {
		return c.Value, true
	}

	var req request.RefreshRequest
	if !decodeJSON(w, r, &req) {
		return "", false
	}
	return req.RefreshToken, true
}

func (h *AuthHandler) setRefreshCookie(w http.ResponseWriter, resp *response.AuthResponse) {
	http.SetCookie(w, &http.Cookie{
		Name:     refreshCookieName,
		Value:    resp.RefreshToken,
		Path:     "/",
		Expires:  resp.RefreshExpiresAt,
		MaxAge:   int(time.Until(resp.RefreshExpiresAt).Seconds()),
		HttpOnly: true,
		Secure:   h.config.Security.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *AuthHandler) clearRefreshCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     refreshCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.config.Security.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}
