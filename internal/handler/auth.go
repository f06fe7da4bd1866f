package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"waypost/internal/config"
	"waypost/internal/httputil"
	"waypost/internal/model"
	"waypost/internal/service"
	"waypost/internal/transport/http/middleware"
)

const refreshCookieName = "refresh_token"

// AuthHandler groups auth-related HTTP endpoints and their dependencies.
type AuthHandler struct {
	accountService *service.AccountService
	authService    *service.AuthService
	config         *config.Config
}

// NewAuthHandler wires dependencies for authentication endpoints.
func NewAuthHandler(accountService *service.AccountService, authService *service.AuthService, cfg *config.Config) *AuthHandler {
	return &AuthHandler{
		accountService: accountService,
		authService:    authService,
		config:         cfg,
	}
}

// Register handles sign-up
// POST /auth/register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req model.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteBadRequest(w, "Invalid request body")
		return
	}

	user, err := h.accountService.Register(r.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, model.ErrEmailExists):
			httputil.WriteConflict(w, "Email already registered")
		case errors.Is(err, model.ErrUsernameExists):
			httputil.WriteConflict(w, "Username already taken")
		case errors.Is(err, model.ErrValidation):
			httputil.WriteBadRequest(w, validationMessage(err))
		default:
			httputil.WriteInternalError(w, "Failed to register")
		}
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, user)
}

// EmailVerify redeems the token from the confirmation mail
// GET /auth/email-verify?token=...
func (h *AuthHandler) EmailVerify(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		httputil.WriteBadRequest(w, "Verification token is required")
		return
	}

	if err := h.accountService.ConfirmVerification(r.Context(), token); err != nil {
		switch {
		case errors.Is(err, model.ErrTokenExpired):
			httputil.WriteBadRequestWithCode(w, model.CodeTokenExpired, "Verification link has expired")
		case errors.Is(err, model.ErrTokenInvalid):
			httputil.WriteBadRequestWithCode(w, model.CodeTokenInvalid, "Invalid verification link")
		default:
			httputil.WriteInternalError(w, "Failed to verify email")
		}
		return
	}

	// The link is opened in a browser; send the user on to the login page.
	http.Redirect(w, r, h.config.FrontendURL+"/auth/login", http.StatusFound)
}

// ResendVerification dispatches a fresh confirmation mail
// POST /auth/email-verify/resend
func (h *AuthHandler) ResendVerification(w http.ResponseWriter, r *http.Request) {
	var req model.ForgotRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteBadRequest(w, "Invalid request body")
		return
	}
	if req.Email == "" {
		httputil.WriteBadRequest(w, "Email is required")
		return
	}

	if err := h.accountService.ResendVerification(r.Context(), req.Email); err != nil {
		switch {
		case errors.Is(err, model.ErrUserNotFound):
			httputil.WriteNotFound(w, "User not found")
		case errors.Is(err, model.ErrValidation):
			httputil.WriteBadRequest(w, validationMessage(err))
		default:
			httputil.WriteInternalError(w, "Failed to resend verification")
		}
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]string{"message": "Verification mail sent"})
}

// Login handles user login
// POST /auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req model.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteBadRequest(w, "Invalid request body")
		return
	}

	if req.Email == "" {
		httputil.WriteBadRequest(w, "Email is required")
		return
	}
	if req.Password == "" {
		httputil.WriteBadRequest(w, "Password is required")
		return
	}

	result, err := h.accountService.Login(r.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, model.ErrInvalidCredentials):
			httputil.WriteUnauthorized(w, "Invalid email or password")
		case errors.Is(err, model.ErrEmailNotVerified):
			httputil.WriteForbidden(w, "Email address is not verified")
		case errors.Is(err, model.ErrAccountDisabled):
			httputil.WriteForbidden(w, "Account is disabled")
		default:
			httputil.WriteInternalError(w, "Failed to login")
		}
		return
	}

	h.setRefreshCookie(w, result.RefreshToken, h.config.RefreshTokenMaxAge)

	httputil.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"user":         result.User,
		"access_token": result.AccessToken,
		"expires_in":   h.config.AccessTokenMaxAge,
	})
}

// Refresh mints a new access token from the refresh cookie
// POST /auth/refresh
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie(refreshCookieName)
	if err != nil || cookie.Value == "" {
		httputil.WriteUnauthorized(w, "Missing refresh token")
		return
	}

	pair, _, err := h.authService.RefreshAccess(r.Context(), cookie.Value)
	if err != nil {
		if errors.Is(err, model.ErrUnauthenticated) {
			h.clearRefreshCookie(w)
			httputil.WriteUnauthorized(w, "Invalid refresh token")
			return
		}
		httputil.WriteInternalError(w, "Failed to refresh token")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, pair)
}

// Logout revokes the session behind the refresh cookie
// POST /auth/logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(refreshCookieName); err == nil && cookie.Value != "" {
		if err := h.authService.RevokeRefreshToken(r.Context(), cookie.Value); err != nil {
			httputil.WriteInternalError(w, "Failed to logout")
			return
		}
	}

	h.clearRefreshCookie(w)
	httputil.WriteJSON(w, http.StatusOK, map[string]string{"message": "Logged out successfully"})
}

// LogoutAll revokes every session for the authenticated user
// POST /auth/logout-all
func (h *AuthHandler) LogoutAll(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Not authenticated")
		return
	}

	if err := h.authService.RevokeAllUserTokens(r.Context(), userID); err != nil {
		httputil.WriteInternalError(w, "Failed to logout from all devices")
		return
	}

	h.clearRefreshCookie(w)
	httputil.WriteJSON(w, http.StatusOK, map[string]string{"message": "Logged out from all devices"})
}

// Me returns the currently authenticated user
// GET /me
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Not authenticated")
		return
	}

	user, err := h.accountService.GetUser(r.Context(), userID)
	if err != nil {
		if errors.Is(err, model.ErrUserNotFound) {
			httputil.WriteNotFound(w, "User not found")
			return
		}
		httputil.WriteInternalError(w, "Failed to get user")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, user)
}

// Forgot records a password reset request
// POST /auth/forgot
func (h *AuthHandler) Forgot(w http.ResponseWriter, r *http.Request) {
	var req model.ForgotRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteBadRequest(w, "Invalid request body")
		return
	}
	if req.Email == "" {
		httputil.WriteBadRequest(w, "Email is required")
		return
	}

	if err := h.accountService.RequestReset(r.Context(), req.Email); err != nil {
		httputil.WriteInternalError(w, "Failed to process reset request")
		return
	}

	// Same response whether or not the address is registered.
	httputil.WriteJSON(w, http.StatusOK, map[string]string{"message": "If the address is registered, a reset mail has been sent"})
}

// ResetPassword redeems a reset token and sets the new password
// POST /auth/reset-password
func (h *AuthHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req model.ResetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteBadRequest(w, "Invalid request body")
		return
	}
	if req.Token == "" {
		httputil.WriteBadRequest(w, "Reset token is required")
		return
	}

	if err := h.accountService.ConfirmReset(r.Context(), &req); err != nil {
		switch {
		case errors.Is(err, model.ErrResetNotFound):
			httputil.WriteBadRequest(w, "Invalid or already used reset token")
		case errors.Is(err, model.ErrValidation):
			httputil.WriteBadRequest(w, validationMessage(err))
		default:
			httputil.WriteInternalError(w, "Failed to reset password")
		}
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]string{"message": "Password updated"})
}

// DeleteAccount removes the authenticated user's account
// DELETE /me
func (h *AuthHandler) DeleteAccount(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Not authenticated")
		return
	}

	if err := h.accountService.DeleteAccount(r.Context(), userID); err != nil {
		httputil.WriteInternalError(w, "Failed to delete account")
		return
	}

	h.clearRefreshCookie(w)
	httputil.WriteJSON(w, http.StatusOK, map[string]string{"message": "Account deleted"})
}

func (h *AuthHandler) setRefreshCookie(w http.ResponseWriter, token string, maxAge int) {
	http.SetCookie(w, &http.Cookie{
		Name:     refreshCookieName,
		Value:    token,
		Path:     "/auth",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   strings.HasPrefix(h.config.FrontendURL, "https://"),
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *AuthHandler) clearRefreshCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     refreshCookieName,
		Value:    "",
		Path:     "/auth",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   strings.HasPrefix(h.config.FrontendURL, "https://"),
		SameSite: http.SameSiteLaxMode,
	})
}

// validationMessage strips the sentinel prefix off a wrapped validation
// error for client display.
func validationMessage(err error) string {
	msg := err.Error()
	if idx := strings.Index(msg, ": "); idx != -1 {
		return msg[idx+2:]
	}
	return msg
}
