package http

import (
	"context"
	"net/http"
	"strings"

	"authsvc/internal/domain"
	"authsvc/internal/observability/logging"
	"authsvc/internal/service"
)

type principalKey struct{}

func withPrincipal(ctx context.Context, p *domain.Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// PrincipalFrom returns the caller attached by Authenticate.
func PrincipalFrom(ctx context.Context) (*domain.Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(*domain.Principal)
	return p, ok && p != nil
}

// accessToken prefers the cookie and falls back to a bearer header.
func accessToken(r *http.Request) string {
	if tok := cookieValue(r, accessCookie); tok != "" {
		return tok
	}
	raw := r.Header.Get("Authorization")
	if len(raw) > len("bearer ") && strings.EqualFold(raw[:len("bearer ")], "bearer ") {
		return strings.TrimSpace(raw[len("bearer "):])
	}
	return ""
}

func Authenticate(auth service.Authenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p, err := auth.Authenticate(r.Context(), accessToken(r))
			if err != nil {
				logging.FromContext(r.Context()).Warn("authentication failed", "error", err)
				writeError(w, r, err)
				return
			}
			next.ServeHTTP(w, r.WithContext(withPrincipal(r.Context(), p)))
		})
	}
}

// Restrict enforces req for routes mounted behind Authenticate.
func Restrict(auth service.Authenticator, req domain.AccessRequirement) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p, _ := PrincipalFrom(r.Context())
			if err := auth.Authorize(p, req); err != nil {
				writeError(w, r, err)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
