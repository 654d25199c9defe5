package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/bobmcallan/finplan-portal/internal/auth"
	"github.com/bobmcallan/finplan-portal/internal/common"
	"github.com/bobmcallan/finplan-portal/internal/models"
	"github.com/bobmcallan/finplan-portal/internal/validator"
)

// AuthHandler handles registration, login and logout.
type AuthHandler struct {
	logger       *common.Logger
	provider     auth.Provider
	sessionTTL   time.Duration
	cookieSecure bool
	onLogout     func(email string)
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(logger *common.Logger, provider auth.Provider, sessionTTL time.Duration, cookieSecure bool) *AuthHandler {
	return &AuthHandler{
		logger:       logger,
		provider:     provider,
		sessionTTL:   sessionTTL,
		cookieSecure: cookieSecure,
	}
}

// SetLogoutHook sets a function called with the user's email once their
// session has ended, used to discard their working copies.
func (h *AuthHandler) SetLogoutHook(fn func(email string)) {
	h.onLogout = fn
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type authResponse struct {
	Status string       `json:"status"`
	Token  string       `json:"token,omitempty"`
	User   *models.User `json:"user"`
}

func (h *AuthHandler) setSessionCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    token,
		Path:     "/",
		MaxAge:   int(h.sessionTTL.Seconds()),
		HttpOnly: true,
		Secure:   h.cookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}

// HandleRegister handles POST /api/auth/register. A successful registration
// logs the user in.
func (h *AuthHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	var reg auth.Registration
	if !decodeJSON(w, r, &reg) {
		return
	}

	token, user, err := h.provider.Register(r.Context(), reg)
	switch {
	case err == nil:
	case validator.IsValidationError(err):
		WriteValidationError(w, err)
		return
	case errors.Is(err, auth.ErrEmailTaken):
		WriteError(w, http.StatusConflict, "Email address already registered.")
		return
	default:
		h.logger.Error().Err(err).Msg("registration failed")
		WriteError(w, http.StatusBadGateway, "Registration failed. Please try again.")
		return
	}

	h.setSessionCookie(w, token)
	WriteJSON(w, http.StatusCreated, authResponse{Status: "ok", Token: token, User: user})
}

// HandleLogin handles POST /api/auth/login.
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	var req loginRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	token, user, err := h.provider.Login(r.Context(), req.Email, req.Password)
	switch {
	case err == nil:
	case validator.IsValidationError(err):
		WriteValidationError(w, err)
		return
	case errors.Is(err, auth.ErrInvalidCredentials):
		h.logger.Warn().Str("email", req.Email).Msg("login rejected")
		WriteError(w, http.StatusUnauthorized, "Invalid email or password.")
		return
	default:
		h.logger.Error().Err(err).Msg("login failed")
		WriteError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	h.setSessionCookie(w, token)
	WriteJSON(w, http.StatusOK, authResponse{Status: "ok", Token: token, User: user})
}

// HandleLogout handles POST /api/auth/logout. It always clears the cookie.
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	token := tokenFromRequest(r)
	user, err := h.provider.CurrentUser(r.Context(), token)
	h.provider.Logout(r.Context(), token)
	if err == nil && h.onLogout != nil {
		h.onLogout(user.Email)
	}

	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.cookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
	WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// HandleMe handles GET /api/auth/me.
func (h *AuthHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	user, ok := requireUser(w, r, h.provider)
	if !ok {
		return
	}
	WriteJSON(w, http.StatusOK, authResponse{Status: "ok", User: user})
}
