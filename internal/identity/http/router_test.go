package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/driftlock/identity/internal/identity/service"
	"github.com/driftlock/identity/internal/identity/store/drivers/sqlite"
	"github.com/driftlock/identity/pkg/jwtx"
	"github.com/driftlock/identity/pkg/slogx"
	"github.com/stretchr/testify/require"
)

var clientSeq atomic.Int64

type testEnv struct {
	router *Router
	auth   *service.AuthService
	// addr gives every logical client its own IP so the per-IP rate
	// limits never interfere across test cases.
	addr string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	st, err := sqlite.NewStore(filepath.Join(t.TempDir(), "identity.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.ApplyMigrations())

	access := make([]byte, 32)
	refresh := make([]byte, 32)
	for i := range access {
		access[i] = 'a'
		refresh[i] = 'r'
	}
	codec, err := jwtx.NewCodec(jwtx.CodecConfig{
		AccessSecret:  access,
		RefreshSecret: refresh,
		Issuer:        "identity-test",
	})
	require.NoError(t, err)

	auth := &service.AuthService{Store: st, Codec: codec, BcryptCost: 4}
	users := &service.UserService{Store: st}

	logger := slogx.New(slogx.Config{Service: "identity-test", Level: "error", Format: "text"})
	router := NewRouter(codec.AccessVerifier(), "test", []string{"*"}, st, logger)
	router.AuthService = auth
	router.UserService = users
	router.ApplyRoutes()

	seq := clientSeq.Add(1)
	return &testEnv{
		router: router,
		auth:   auth,
		addr:   fmt.Sprintf("10.1.%d.%d:4242", seq/250, seq%250+1),
	}
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
	Error   *struct {
		StatusCode int               `json:"statusCode"`
		Code       string            `json:"code"`
		Message    string            `json:"message"`
		Details    map[string]string `json:"details"`
	} `json:"error"`
	RequestID string `json:"requestId"`
}

func (e *testEnv) do(t *testing.T, method, path, token string, body any) (*httptest.ResponseRecorder, envelope) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	req.RemoteAddr = e.addr
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)

	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), "body: %s", rec.Body.String())
	return rec, env
}

type userPayload struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

type authPayload struct {
	User         userPayload `json:"user"`
	AccessToken  string      `json:"accessToken"`
	RefreshToken string      `json:"refreshToken"`
}

// register creates an account and logs it in, since registration itself
// hands back only the created user.
func (e *testEnv) register(t *testing.T, name, email, password string) authPayload {
	t.Helper()

	rec, env := e.do(t, http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"name": name, "email": email, "password": password,
	})
	require.Equal(t, http.StatusCreated, rec.Code, "body: %s", rec.Body.String())

	var created userPayload
	require.NoError(t, json.Unmarshal(env.Data, &created))
	require.NotEmpty(t, created.ID)

	return e.login(t, email, password)
}

func (e *testEnv) login(t *testing.T, email, password string) authPayload {
	t.Helper()

	rec, env := e.do(t, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"email": email, "password": password,
	})
	require.Equal(t, http.StatusOK, rec.Code, "body: %s", rec.Body.String())

	var payload authPayload
	require.NoError(t, json.Unmarshal(env.Data, &payload))
	return payload
}

// seedAdmin promotes via the bootstrap path rather than the public API,
// which never hands out the admin role.
func (e *testEnv) seedAdmin(t *testing.T) authPayload {
	t.Helper()

	boot := &service.BootstrapService{Store: e.auth.Store, BcryptCost: 4}
	require.NoError(t, boot.EnsureAdmin(context.Background(), service.AdminSeed{
		Name: "Admin", Email: "admin@example.com", Password: "admin-pass",
	}))

	return e.login(t, "admin@example.com", "admin-pass")
}

func TestAuthFlow(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)

	registered := env.register(t, "Alice", "alice@example.com", "secret123")
	require.Equal(t, "user", registered.User.Role)
	require.NotEmpty(t, registered.AccessToken)
	require.NotEmpty(t, registered.RefreshToken)

	t.Run("me returns the profile", func(t *testing.T) {
		rec, env2 := env.do(t, http.MethodGet, "/api/v1/users/me", registered.AccessToken, nil)
		require.Equal(t, http.StatusOK, rec.Code)

		var me userPayload
		require.NoError(t, json.Unmarshal(env2.Data, &me))
		require.Equal(t, registered.User.ID, me.ID)
		require.Equal(t, "alice@example.com", me.Email)
	})

	t.Run("refresh issues a new access token", func(t *testing.T) {
		rec, env2 := env.do(t, http.MethodPost, "/api/v1/auth/refresh", "", map[string]string{
			"refreshToken": registered.RefreshToken,
		})
		require.Equal(t, http.StatusOK, rec.Code)

		var payload struct {
			AccessToken string `json:"accessToken"`
		}
		require.NoError(t, json.Unmarshal(env2.Data, &payload))
		require.NotEmpty(t, payload.AccessToken)

		rec2, _ := env.do(t, http.MethodGet, "/api/v1/users/me", payload.AccessToken, nil)
		require.Equal(t, http.StatusOK, rec2.Code)
	})

	t.Run("logout acknowledges", func(t *testing.T) {
		rec, env2 := env.do(t, http.MethodPost, "/api/v1/auth/logout", registered.AccessToken, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		require.True(t, env2.Success)
		require.Equal(t, "logged out successfully", env2.Message)
	})

	t.Run("logout needs no token", func(t *testing.T) {
		rec, env2 := env.do(t, http.MethodPost, "/api/v1/auth/logout", "", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		require.True(t, env2.Success)
	})
}

func TestRegisterReturnsUserWithoutTokens(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)

	rec, body := env.do(t, http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"name": "Alice", "email": "alice@example.com", "password": "secret123",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	var created userPayload
	require.NoError(t, json.Unmarshal(body.Data, &created))
	require.NotEmpty(t, created.ID)
	require.Equal(t, "user", created.Role)

	require.NotContains(t, string(body.Data), "accessToken")
	require.NotContains(t, string(body.Data), "refreshToken")
}

func TestRegisterValidation(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)

	rec, body := env.do(t, http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"name": "A", "email": "not-an-email", "password": "123",
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.False(t, body.Success)
	require.Equal(t, "VALIDATION_ERROR", body.Error.Code)
	require.Contains(t, body.Error.Details, "name")
	require.Contains(t, body.Error.Details, "email")
	require.Contains(t, body.Error.Details, "password")
	require.NotEmpty(t, body.RequestID)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	env.register(t, "Alice", "alice@example.com", "secret123")

	rec, body := env.do(t, http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"name": "Imposter", "email": "Alice@Example.com", "password": "secret123",
	})
	require.Equal(t, http.StatusConflict, rec.Code)
	require.Equal(t, "CONFLICT_ERROR", body.Error.Code)
}

func TestLoginFailures(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	env.register(t, "Alice", "alice@example.com", "secret123")

	t.Run("wrong password", func(t *testing.T) {
		rec, body := env.do(t, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
			"email": "alice@example.com", "password": "wrong",
		})
		require.Equal(t, http.StatusUnauthorized, rec.Code)
		require.Equal(t, "AUTHENTICATION_ERROR", body.Error.Code)
	})

	t.Run("unknown email gets the same response", func(t *testing.T) {
		rec, body := env.do(t, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
			"email": "nobody@example.com", "password": "secret123",
		})
		require.Equal(t, http.StatusUnauthorized, rec.Code)
		require.Equal(t, "AUTHENTICATION_ERROR", body.Error.Code)
	})
}

func TestRefreshRejectsAccessToken(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	registered := env.register(t, "Alice", "alice@example.com", "secret123")

	rec, body := env.do(t, http.MethodPost, "/api/v1/auth/refresh", "", map[string]string{
		"refreshToken": registered.AccessToken,
	})
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Equal(t, "AUTHENTICATION_ERROR", body.Error.Code)
}

func TestUserManagementRequiresAdmin(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	alice := env.register(t, "Alice", "alice@example.com", "secret123")

	for _, tc := range []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/api/v1/users"},
		{http.MethodGet, "/api/v1/users/search?q=alice"},
		{http.MethodGet, "/api/v1/users/" + alice.User.ID},
		{http.MethodDelete, "/api/v1/users/" + alice.User.ID},
	} {
		rec, body := env.do(t, tc.method, tc.path, alice.AccessToken, nil)
		require.Equal(t, http.StatusForbidden, rec.Code, "%s %s", tc.method, tc.path)
		require.Equal(t, "AUTHORIZATION_ERROR", body.Error.Code)
	}
}

func TestAdminUserManagement(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	admin := env.seedAdmin(t)
	alice := env.register(t, "Alice Smith", "alice@example.com", "secret123")

	t.Run("list", func(t *testing.T) {
		rec, body := env.do(t, http.MethodGet, "/api/v1/users", admin.AccessToken, nil)
		require.Equal(t, http.StatusOK, rec.Code)

		var users []userPayload
		require.NoError(t, json.Unmarshal(body.Data, &users))
		require.Len(t, users, 2)
	})

	t.Run("search", func(t *testing.T) {
		rec, body := env.do(t, http.MethodGet, "/api/v1/users/search?q=smith", admin.AccessToken, nil)
		require.Equal(t, http.StatusOK, rec.Code)

		var users []userPayload
		require.NoError(t, json.Unmarshal(body.Data, &users))
		require.Len(t, users, 1)
		require.Equal(t, alice.User.ID, users[0].ID)
	})

	t.Run("search without query", func(t *testing.T) {
		rec, body := env.do(t, http.MethodGet, "/api/v1/users/search", admin.AccessToken, nil)
		require.Equal(t, http.StatusBadRequest, rec.Code)
		require.Equal(t, "VALIDATION_ERROR", body.Error.Code)
	})

	t.Run("get by id", func(t *testing.T) {
		rec, body := env.do(t, http.MethodGet, "/api/v1/users/"+alice.User.ID, admin.AccessToken, nil)
		require.Equal(t, http.StatusOK, rec.Code)

		var user userPayload
		require.NoError(t, json.Unmarshal(body.Data, &user))
		require.Equal(t, "alice@example.com", user.Email)
	})

	t.Run("get unknown id", func(t *testing.T) {
		rec, body := env.do(t, http.MethodGet, "/api/v1/users/01K0000000000000000000TEST", admin.AccessToken, nil)
		require.Equal(t, http.StatusNotFound, rec.Code)
		require.Equal(t, "NOT_FOUND_ERROR", body.Error.Code)
	})

	t.Run("admin updates another user", func(t *testing.T) {
		rec, body := env.do(t, http.MethodPut, "/api/v1/users/"+alice.User.ID, admin.AccessToken,
			map[string]string{"name": "Alice Renamed"})
		require.Equal(t, http.StatusOK, rec.Code)

		var user userPayload
		require.NoError(t, json.Unmarshal(body.Data, &user))
		require.Equal(t, "Alice Renamed", user.Name)
	})

	t.Run("delete", func(t *testing.T) {
		rec, _ := env.do(t, http.MethodDelete, "/api/v1/users/"+alice.User.ID, admin.AccessToken, nil)
		require.Equal(t, http.StatusOK, rec.Code)

		rec2, _ := env.do(t, http.MethodGet, "/api/v1/users/"+alice.User.ID, admin.AccessToken, nil)
		require.Equal(t, http.StatusNotFound, rec2.Code)
	})
}

func TestSelfUpdate(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	alice := env.register(t, "Alice", "alice@example.com", "secret123")
	bob := env.register(t, "Bob", "bob@example.com", "secret123")

	t.Run("user updates own profile", func(t *testing.T) {
		rec, body := env.do(t, http.MethodPut, "/api/v1/users/"+alice.User.ID, alice.AccessToken,
			map[string]string{"email": "cooper@example.com"})
		require.Equal(t, http.StatusOK, rec.Code)

		var user userPayload
		require.NoError(t, json.Unmarshal(body.Data, &user))
		require.Equal(t, "cooper@example.com", user.Email)
	})

	t.Run("user cannot update someone else", func(t *testing.T) {
		rec, body := env.do(t, http.MethodPut, "/api/v1/users/"+bob.User.ID, alice.AccessToken,
			map[string]string{"name": "Hacked"})
		require.Equal(t, http.StatusForbidden, rec.Code)
		require.Equal(t, "AUTHORIZATION_ERROR", body.Error.Code)
	})

	t.Run("empty update is rejected", func(t *testing.T) {
		rec, body := env.do(t, http.MethodPut, "/api/v1/users/"+alice.User.ID, alice.AccessToken,
			map[string]string{})
		require.Equal(t, http.StatusBadRequest, rec.Code)
		require.Equal(t, "VALIDATION_ERROR", body.Error.Code)
	})

	t.Run("email clash", func(t *testing.T) {
		rec, body := env.do(t, http.MethodPut, "/api/v1/users/"+alice.User.ID, alice.AccessToken,
			map[string]string{"email": "bob@example.com"})
		require.Equal(t, http.StatusConflict, rec.Code)
		require.Equal(t, "CONFLICT_ERROR", body.Error.Code)
	})
}

func TestProtectedRoutesRejectAnonymous(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)

	rec, body := env.do(t, http.MethodGet, "/api/v1/users/me", "", nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Equal(t, "AUTHENTICATION_ERROR", body.Error.Code)
}

func TestUnknownRoute(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)

	rec, body := env.do(t, http.MethodGet, "/api/v1/nope", "", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Equal(t, "NOT_FOUND_ERROR", body.Error.Code)
}

func TestHealth(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)

	rec, body := env.do(t, http.MethodGet, "/health", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.True(t, body.Success)

	var health struct {
		Status   string `json:"status"`
		Database string `json:"database"`
		Version  string `json:"version"`
	}
	require.NoError(t, json.Unmarshal(body.Data, &health))
	require.Equal(t, "ok", health.Status)
	require.Equal(t, "ok", health.Database)
	require.Equal(t, "test", health.Version)
}
