package httpx

import (
	"context"
	"net/http"
	"strings"

	"github.com/driftlock/identity/pkg/apperr"
	"github.com/driftlock/identity/pkg/jwtx"
	"github.com/driftlock/identity/pkg/slogx"
)

// AuthnMiddleware requires a valid bearer access token. On success the
// caller's id, role and full claims are attached to the request context.
func AuthnMiddleware(v jwtx.Verifier) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			log := slogx.FromContext(ctx)

			authz := r.Header.Get("Authorization")
			if authz == "" {
				writeAuthnError(w, ctx, "authentication required")
				return
			}
			if !strings.HasPrefix(authz, "Bearer ") {
				writeAuthnError(w, ctx, "invalid authorization header")
				return
			}
			raw := strings.TrimSpace(strings.TrimPrefix(authz, "Bearer"))

			claims, err := v.Verify(raw)
			if err != nil {
				log.Warn("access token rejected", "err", err)
				writeAuthnError(w, ctx, "invalid or expired token")
				return
			}

			ctx = contextWithAuth(ctx, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func contextWithAuth(ctx context.Context, c jwtx.Claims) context.Context {
	ctx = context.WithValue(ctx, CtxKeyUserID, c.Subject)
	ctx = context.WithValue(ctx, CtxKeyRole, c.Role)
	ctx = context.WithValue(ctx, CtxKeyClaims, c)
	return ctx
}

func writeAuthnError(w http.ResponseWriter, ctx context.Context, msg string) {
	w.Header().Set("WWW-Authenticate", `Bearer error="invalid_token"`)
	apperr.Authentication(msg).Write(w, slogx.RequestIDFromContext(ctx))
}
