// Package auth decides whether a request belongs to a site administrator.
// Visitors never log in through the site itself; the admin token is set in
// configuration and presented as a cookie or bearer token.
package auth

import (
	"context"
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/goliatone/go-flatcms/pkg/interfaces"
)

// CookieName is the cookie carrying the admin token.
const CookieName = "flatcms_admin"

type contextKey struct{}

// Static answers every check with the same value.
type Static bool

func (s Static) IsAuthenticated(context.Context) bool {
	return bool(s)
}

// ContextChecker reads the flag placed on the request context by Middleware.
type ContextChecker struct{}

func (ContextChecker) IsAuthenticated(ctx context.Context) bool {
	if ctx == nil {
		return false
	}
	ok, _ := ctx.Value(contextKey{}).(bool)
	return ok
}

// WithAuthenticated marks ctx as belonging to an administrator.
func WithAuthenticated(ctx context.Context, ok bool) context.Context {
	return context.WithValue(ctx, contextKey{}, ok)
}

// Middleware flags requests that present token through the admin cookie or an
// Authorization bearer header. An empty token disables admin access.
func Middleware(token string) func(http.Handler) http.Handler {
	token = strings.TrimSpace(token)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ok := token != "" && matches(token, presented(r))
			next.ServeHTTP(w, r.WithContext(WithAuthenticated(r.Context(), ok)))
		})
	}
}

func presented(r *http.Request) string {
	if header := r.Header.Get("Authorization"); header != "" {
		if scheme, value, found := strings.Cut(header, " "); found && strings.EqualFold(scheme, "Bearer") {
			return strings.TrimSpace(value)
		}
	}
	if cookie, err := r.Cookie(CookieName); err == nil {
		return cookie.Value
	}
	return ""
}

func matches(want, got string) bool {
	if got == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(want), []byte(got)) == 1
}

var (
	_ interfaces.AuthChecker = Static(false)
	_ interfaces.AuthChecker = ContextChecker{}
)
