package middleware

import (
	"encoding/json"
	"net/http"
	"slices"
	"strings"

	"github.com/AKT74/shareulbi-backend/internal/ctxkeys"
	"github.com/AKT74/shareulbi-backend/internal/model"
	"github.com/AKT74/shareulbi-backend/internal/service"
)

// AuthMiddleware resolves the caller from a bearer token or the session cookie
// and adds the user to the context. Requests without valid credentials continue
// anonymously; RequireAuth decides whether that is acceptable.
func AuthMiddleware(authService *service.AuthService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, fromCookie := requestToken(r)
			if token == "" {
				next.ServeHTTP(w, r)
				return
			}

			user, err := authService.Authenticate(r.Context(), token)
			if err != nil {
				// Stale or revoked session
				if fromCookie {
					authService.ClearJWTCookie(w)
				}
				next.ServeHTTP(w, r)
				return
			}

			// Security: Remove password hash from context
			user.PasswordHash = ""

			ctx := ctxkeys.WithUser(r.Context(), user)
			if fromCookie {
				ctx = ctxkeys.WithCookieAuth(ctx)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func requestToken(r *http.Request) (string, bool) {
	if h := r.Header.Get("Authorization"); h != "" {
		scheme, token, ok := strings.Cut(h, " ")
		if ok && strings.EqualFold(scheme, "Bearer") {
			return strings.TrimSpace(token), false
		}
		return "", false
	}

	cookie, err := r.Cookie(service.AuthCookieName)
	if err != nil || cookie.Value == "" {
		return "", false
	}
	return cookie.Value, true
}

// RequireAuth rejects anonymous requests with 401
func RequireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if ctxkeys.User(r.Context()) == nil {
			writeError(w, http.StatusUnauthorized, "authentication required")
			return
		}
		next.ServeHTTP(w, r)
	}
}

// RequireRole allows only authenticated callers holding one of roles.
func RequireRole(roles ...model.Role) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return RequireAuth(func(w http.ResponseWriter, r *http.Request) {
			user := ctxkeys.User(r.Context())
			if !slices.Contains(roles, user.Role) {
				writeError(w, http.StatusForbidden, "you do not have access to this resource")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"message": message})
}
