package middleware

import (
	"net/http"
	"strings"

	"github.com/febrianchrisna/Sweet-Bakery-Project/internal/transport"
	"github.com/febrianchrisna/Sweet-Bakery-Project/internal/user"
)

// extractAccessToken prefers the Authorization header and falls back to the
// access_token cookie set at login.
func extractAccessToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimPrefix(authHeader, "Bearer ")
	}

	if cookie, err := r.Cookie("access_token"); err == nil {
		return cookie.Value
	}

	return ""
}

// AuthMiddleware resolves the caller's identity from a JWT and attaches the
// user id, email and role to the request context. Requests without a valid
// token pass through anonymously; route guards decide whether that is
// acceptable.
func AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tokenStr := extractAccessToken(r)
		if tokenStr == "" {
			next.ServeHTTP(w, r)
			return
		}

		claims, err := user.ParseAccessToken(tokenStr)
		if err != nil {
			next.ServeHTTP(w, r)
			return
		}

		ctx := transport.SetUserContext(r.Context(), claims.UserID, claims.Email, claims.Role)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireAuth rejects anonymous requests.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := transport.GetUserIDFromContext(r.Context()); !ok {
			transport.Error(w, http.StatusUnauthorized, "Unauthorized")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireAdmin rejects callers without the admin role.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := transport.GetUserIDFromContext(r.Context()); !ok {
			transport.Error(w, http.StatusUnauthorized, "Unauthorized")
			return
		}
		if !transport.IsAdmin(r.Context()) {
			transport.Error(w, http.StatusForbidden, "Requires admin privileges")
			return
		}
		next.ServeHTTP(w, r)
	})
}
