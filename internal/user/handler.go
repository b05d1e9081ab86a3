package user

import (
	"errors"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/febrianchrisna/Sweet-Bakery-Project/internal/logger"
	"github.com/febrianchrisna/Sweet-Bakery-Project/internal/transport"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type Handler struct {
	svc Service
}

func NewHandler(svc Service) *Handler {
	return &Handler{svc: svc}
}

// The auth endpoints keep the {status, message, ...} envelope the SPA
// already consumes.
func statusError(w http.ResponseWriter, code int, message string) {
	transport.JSON(w, code, map[string]string{
		"status":  "Error",
		"message": message,
	})
}

type registerRequest struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := transport.Decode(r, &req); err != nil {
		statusError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	u, err := h.svc.Register(r.Context(), req.Email, req.Username, req.Password, req.Role)
	if err != nil {
		if errors.Is(err, ErrEmailExists) {
			statusError(w, http.StatusBadRequest, "Email already registered")
			return
		}
		logger.FromCtx(r.Context()).Error("register failed", zap.Error(err))
		statusError(w, http.StatusInternalServerError, "Server error")
		return
	}

	transport.JSON(w, http.StatusCreated, map[string]interface{}{
		"status":  "Success",
		"message": "Registration successful",
		"data":    u,
	})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := transport.Decode(r, &req); err != nil {
		statusError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	u, accessToken, refreshToken, err := h.svc.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			statusError(w, http.StatusBadRequest, "Password or email incorrect")
			return
		}
		logger.FromCtx(r.Context()).Error("login failed", zap.Error(err))
		statusError(w, http.StatusInternalServerError, "Server error")
		return
	}

	secure := os.Getenv("APP_ENV") == "production"
	http.SetCookie(w, &http.Cookie{
		Name:     "access_token",
		Value:    accessToken,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int((30 * time.Minute).Seconds()),
		Secure:   secure,
		Path:     "/",
	})
	http.SetCookie(w, &http.Cookie{
		Name:     "refresh_token",
		Value:    refreshToken,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int((24 * time.Hour).Seconds()),
		Secure:   secure,
		Path:     "/",
	})

	transport.JSON(w, http.StatusOK, map[string]interface{}{
		"status":       "Success",
		"message":      "Login Successful",
		"safeUserData": u,
		"accessToken":  accessToken,
		"refreshToken": refreshToken,
	})
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if userID, ok := transport.GetUserIDFromContext(r.Context()); ok {
		if err := h.svc.Logout(r.Context(), userID); err != nil {
			logger.FromCtx(r.Context()).Error("logout failed", zap.Error(err))
			statusError(w, http.StatusInternalServerError, "Server error")
			return
		}
	}

	for _, name := range []string{"access_token", "refresh_token"} {
		http.SetCookie(w, &http.Cookie{
			Name:     name,
			Value:    "",
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
			MaxAge:   -1,
			Path:     "/",
		})
	}

	transport.JSON(w, http.StatusOK, map[string]string{
		"status":  "Success",
		"message": "Logout successful",
	})
}

// RefreshToken rotates the access token. The refresh token is read from the
// body, the Authorization header, or the refresh_token cookie.
func (h *Handler) RefreshToken(w http.ResponseWriter, r *http.Request) {
	token := extractRefreshToken(r)
	if token == "" {
		statusError(w, http.StatusUnauthorized, "Refresh token required")
		return
	}

	accessToken, err := h.svc.Refresh(r.Context(), token)
	if err != nil {
		if errors.Is(err, ErrInvalidRefresh) {
			statusError(w, http.StatusForbidden, "Invalid or expired refresh token")
			return
		}
		logger.FromCtx(r.Context()).Error("refresh failed", zap.Error(err))
		statusError(w, http.StatusInternalServerError, "Server error")
		return
	}

	transport.JSON(w, http.StatusOK, map[string]string{
		"status":      "Success",
		"accessToken": accessToken,
	})
}

func extractRefreshToken(r *http.Request) string {
	var body struct {
		RefreshToken string `json:"refreshToken"`
	}
	if err := transport.Decode(r, &body); err == nil && body.RefreshToken != "" {
		return body.RefreshToken
	}

	if auth := r.Header.Get("Authorization"); len(auth) > 7 && auth[:7] == "Bearer " {
		return auth[7:]
	}

	if cookie, err := r.Cookie("refresh_token"); err == nil {
		return cookie.Value
	}
	return ""
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	users, err := h.svc.List(r.Context())
	if err != nil {
		logger.FromCtx(r.Context()).Error("list users failed", zap.Error(err))
		statusError(w, http.StatusInternalServerError, "Server error")
		return
	}
	transport.JSON(w, http.StatusOK, users)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseUint(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		statusError(w, http.StatusBadRequest, "Invalid user id")
		return
	}

	if err := h.svc.Delete(r.Context(), uint(id)); err != nil {
		if errors.Is(err, ErrUserNotFound) {
			statusError(w, http.StatusNotFound, "User not found")
			return
		}
		logger.FromCtx(r.Context()).Error("delete user failed", zap.Error(err))
		statusError(w, http.StatusInternalServerError, "Server error")
		return
	}

	transport.JSON(w, http.StatusOK, map[string]string{
		"status":  "Success",
		"message": "User deleted successfully",
	})
}

type updateProfileRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
}

func (h *Handler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := transport.GetUserIDFromContext(r.Context())
	if !ok {
		statusError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req updateProfileRequest
	if err := transport.Decode(r, &req); err != nil {
		statusError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	u, err := h.svc.UpdateProfile(r.Context(), userID, req.Username, req.Email)
	if err != nil {
		switch {
		case errors.Is(err, ErrUserNotFound):
			statusError(w, http.StatusNotFound, "User not found")
		case errors.Is(err, ErrEmailExists):
			statusError(w, http.StatusBadRequest, "Email already registered")
		default:
			logger.FromCtx(r.Context()).Error("update profile failed", zap.Error(err))
			statusError(w, http.StatusInternalServerError, "Server error")
		}
		return
	}

	transport.JSON(w, http.StatusOK, map[string]interface{}{
		"status":  "Success",
		"message": "Profile updated successfully",
		"data":    u,
	})
}
