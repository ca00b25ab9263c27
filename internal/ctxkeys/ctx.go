package ctxkeys

import (
	"context"

	"github.com/AKT74/shareulbi-backend/internal/model"
)

// contextKey is a type for context keys to avoid collisions
type contextKey string

const (
	UserKey       contextKey = "user"
	CookieAuthKey contextKey = "cookie_auth"
	CSRFTokenKey  contextKey = "csrf_token"
)

func User(ctx context.Context) *model.User {
	user, _ := ctx.Value(UserKey).(*model.User)
	return user
}

func WithUser(ctx context.Context, user *model.User) context.Context {
	return context.WithValue(ctx, UserKey, user)
}

// Identity returns the caller, or nil for anonymous requests.
func Identity(ctx context.Context) *model.Identity {
	user := User(ctx)
	if user == nil {
		return nil
	}
	return user.Identity()
}

// CookieAuth reports whether the caller was authenticated by the session cookie
// rather than a bearer token.
func CookieAuth(ctx context.Context) bool {
	v, _ := ctx.Value(CookieAuthKey).(bool)
	return v
}

func WithCookieAuth(ctx context.Context) context.Context {
	return context.WithValue(ctx, CookieAuthKey, true)
}

func CSRFToken(ctx context.Context) string {
	token, _ := ctx.Value(CSRFTokenKey).(string)
	return token
}

func WithCSRFToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, CSRFTokenKey, token)
}
