package httpx

import (
	"net/http"

	"github.com/driftlock/identity/pkg/apperr"
	"github.com/driftlock/identity/pkg/slogx"
)

// RequireAnyRole the caller must hold at least one of the listed roles.
// A request without an authenticated identity is rejected too, so the
// gate is safe even if AuthnMiddleware was forgotten on the route.
func RequireAnyRole(required ...string) Middleware {
	want := make(map[string]struct{}, len(required))
	for _, role := range required {
		want[role] = struct{}{}
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			requestID := slogx.RequestIDFromContext(ctx)

			if UserIDFromCtx(ctx) == "" {
				apperr.Authorization("user not authenticated").Write(w, requestID)
				return
			}

			if _, ok := want[RoleFromCtx(ctx)]; !ok {
				apperr.Authorization("insufficient permissions").Write(w, requestID)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
