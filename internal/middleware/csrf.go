package middleware

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"log/slog"
	"net/http"

	"github.com/AKT74/shareulbi-backend/internal/ctxkeys"
)

const (
	csrfCookieName = "csrf_token"
	csrfHeader     = "X-CSRF-Token"
	csrfTokenLen   = 32
)

// CSRFProtection implements the double-submit cookie pattern for requests
// authenticated by the session cookie. The token cookie is readable by the
// frontend, which echoes it in the X-CSRF-Token header. Bearer-token and
// anonymous requests carry no ambient credentials and are not checked.
func CSRFProtection(secure bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := getOrGenerateCSRFToken(w, r, secure)
			ctx := ctxkeys.WithCSRFToken(r.Context(), token)

			if r.Method == http.MethodGet || r.Method == http.MethodHead || r.Method == http.MethodOptions {
				next.ServeHTTP(w, r.WithContext(ctx))
				return
			}

			if !ctxkeys.CookieAuth(r.Context()) {
				next.ServeHTTP(w, r.WithContext(ctx))
				return
			}

			if !validCSRFToken(token, r.Header.Get(csrfHeader)) {
				slog.Warn("csrf validation failed",
					"path", r.URL.Path,
					"method", r.Method,
					"ip", getClientIP(r),
				)
				writeError(w, http.StatusForbidden, "invalid CSRF token")
				return
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// getOrGenerateCSRFToken retrieves existing token or generates new one
func getOrGenerateCSRFToken(w http.ResponseWriter, r *http.Request, secure bool) string {
	cookie, err := r.Cookie(csrfCookieName)
	if err == nil && cookie.Value != "" && len(cookie.Value) == base64.RawURLEncoding.EncodedLen(csrfTokenLen) {
		return cookie.Value
	}

	token := generateCSRFToken()

	http.SetCookie(w, &http.Cookie{
		Name:     csrfCookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: false, // read by the frontend
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   86400 * 7, // 7 days
	})

	return token
}

// generateCSRFToken creates cryptographically secure random token
func generateCSRFToken() string {
	bytes := make([]byte, csrfTokenLen)
	_, err := rand.Read(bytes)
	if err != nil {
		panic("failed to generate csrf token: " + err.Error())
	}
	return base64.RawURLEncoding.EncodeToString(bytes)
}

// validCSRFToken performs constant-time comparison of tokens
func validCSRFToken(expected, actual string) bool {
	if expected == "" || actual == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(expected), []byte(actual)) == 1
}
