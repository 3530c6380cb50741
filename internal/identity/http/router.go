// Package http wires the identity service's handlers onto a ServeMux
// and applies the global middleware chain.
package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/driftlock/identity/internal/identity/domain"
	"github.com/driftlock/identity/internal/identity/service"
	"github.com/driftlock/identity/internal/identity/store"
	"github.com/driftlock/identity/pkg/apperr"
	"github.com/driftlock/identity/pkg/httpx"
	"github.com/driftlock/identity/pkg/jwtx"
	"github.com/driftlock/identity/pkg/slogx"
)

// requestTimeout bounds handler execution, store calls included.
const requestTimeout = 30 * time.Second

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	verifier     jwtx.Verifier
	buildVersion string
	startTime    time.Time
	logger       *slog.Logger

	store       store.Store
	AuthService *service.AuthService
	UserService *service.UserService
}

func NewRouter(
	verifier jwtx.Verifier,
	buildVersion string,
	corsOrigins []string,
	st store.Store,
	logger *slog.Logger,
) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		verifier:     verifier,
		buildVersion: buildVersion,
		startTime:    time.Now(),
		store:        st,
		logger:       logger,
	}

	// Set default middleware chain
	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
		httpx.CORSMiddleware(corsOrigins),
		httpx.TimeoutMiddleware(requestTimeout),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerAuth()
	r.registerUsers()
	r.registerSystem()

	// Unknown routes still get a JSON envelope.
	r.Mux.HandleFunc("/", func(w http.ResponseWriter, req *http.Request) {
		apperr.NotFound("route not found").
			Write(w, slogx.RequestIDFromContext(req.Context()))
	})
}

// ServeHTTP implements http.Handler for Router and applies the global
// middleware chain.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

func (r *Router) registerAuth() {
	h := &AuthHandler{AuthService: r.AuthService}

	// Credential endpoints carry the strict limit to slow brute force.
	r.Mux.Handle("POST /api/v1/auth/register",
		httpx.Chain(http.HandlerFunc(h.HandleRegister),
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)
	r.Mux.Handle("POST /api/v1/auth/login",
		httpx.Chain(http.HandlerFunc(h.HandleLogin),
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)

	r.Mux.Handle("POST /api/v1/auth/refresh",
		httpx.Chain(http.HandlerFunc(h.HandleRefresh),
			httpx.RateLimitByIP(httpx.ModerateLimit),
		),
	)

	// Logout is open: tokens are stateless, so there is no session to
	// authenticate against before discarding one.
	r.Mux.Handle("POST /api/v1/auth/logout",
		httpx.Chain(http.HandlerFunc(h.HandleLogout),
			httpx.RateLimitByIP(httpx.ModerateLimit),
		),
	)
}

func (r *Router) registerUsers() {
	h := &UsersHandler{UserService: r.UserService}

	authed := func(handler http.HandlerFunc) http.Handler {
		return httpx.Chain(handler,
			httpx.AuthnMiddleware(r.verifier),
			httpx.RateLimitByUser(httpx.ModerateLimit),
		)
	}
	adminOnly := func(handler http.HandlerFunc) http.Handler {
		return httpx.Chain(handler,
			httpx.AuthnMiddleware(r.verifier),
			httpx.RequireAnyRole(domain.RoleAdmin),
			httpx.RateLimitByUser(httpx.ModerateLimit),
		)
	}

	r.Mux.Handle("GET /api/v1/users/me", authed(h.HandleMe))

	r.Mux.Handle("GET /api/v1/users", adminOnly(h.HandleList))
	r.Mux.Handle("GET /api/v1/users/search", adminOnly(h.HandleSearch))
	r.Mux.Handle("GET /api/v1/users/{id}", adminOnly(h.HandleGet))
	r.Mux.Handle("DELETE /api/v1/users/{id}", adminOnly(h.HandleDelete))

	// Update is self-or-admin; the handler checks ownership.
	r.Mux.Handle("PUT /api/v1/users/{id}", authed(h.HandleUpdate))
}

func (r *Router) registerSystem() {
	r.Mux.Handle("GET /health",
		httpx.Chain(HealthHandler(r.startTime, r.buildVersion, r.store),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
}
