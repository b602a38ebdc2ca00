package auth_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/mesterwork/worksite-api/internal/auth"
	"github.com/mesterwork/worksite-api/internal/config"
	"github.com/mesterwork/worksite-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeUserDirectory struct {
	superUsers map[string]bool
	known      map[string]bool
}

func (f *fakeUserDirectory) EnsureUser(_ context.Context, email, name string) (*domain.User, error) {
	if f.known == nil {
		f.known = make(map[string]bool)
	}
	f.known[email] = true
	return &domain.User{Email: email, Name: name, IsSuperUser: f.superUsers[email]}, nil
}

func (f *fakeUserDirectory) EmailExists(_ context.Context, email string) (bool, error) {
	return f.known[email], nil
}

func newTestMiddleware(users *fakeUserDirectory) *auth.Middleware {
	cfg := &config.Config{
		Auth: config.AuthConfig{JWTSecret: testSecret},
	}
	return auth.NewMiddleware(cfg, users, zap.NewNop())
}

func bearerToken(t *testing.T, email string, super bool) string {
	t.Helper()
	claims := auth.SessionClaims{
		Email:       email,
		IsSuperUser: super,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	return "Bearer " + signToken(t, testSecret, claims)
}

func captureTenant(t *testing.T, m *auth.Middleware, req *http.Request) (*auth.TenantContext, int) {
	t.Helper()
	var captured *auth.TenantContext
	handler := m.Authenticate(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tc, ok := auth.FromContext(r.Context())
		require.True(t, ok)
		captured = tc
		w.WriteHeader(http.StatusOK)
	}))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return captured, rec.Code
}

func TestAuthenticateSetsTenantContext(t *testing.T) {
	users := &fakeUserDirectory{}
	m := newTestMiddleware(users)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/offers", nil)
	req.Header.Set("Authorization", bearerToken(t, "mester@example.com", false))

	tc, code := captureTenant(t, m, req)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "mester@example.com", tc.UserEmail)
	assert.Equal(t, "mester@example.com", tc.TenantEmail)
	assert.False(t, tc.Overridden)
}

func TestAuthenticateMissingHeader(t *testing.T) {
	m := newTestMiddleware(&fakeUserDirectory{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/offers", nil)
	_, code := captureTenant(t, m, req)
	assert.Equal(t, http.StatusUnauthorized, code)
}

func TestAuthenticateMalformedHeader(t *testing.T) {
	m := newTestMiddleware(&fakeUserDirectory{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/offers", nil)
	req.Header.Set("Authorization", "Token abc")
	_, code := captureTenant(t, m, req)
	assert.Equal(t, http.StatusUnauthorized, code)
}

func TestTenantOverrideForSuperUser(t *testing.T) {
	users := &fakeUserDirectory{
		superUsers: map[string]bool{"admin@example.com": true},
		known:      map[string]bool{"tenant@example.com": true},
	}
	m := newTestMiddleware(users)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/offers", nil)
	req.Header.Set("Authorization", bearerToken(t, "admin@example.com", false))
	req.Header.Set(auth.TenantOverrideHeader, "Tenant@Example.com")

	tc, code := captureTenant(t, m, req)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "admin@example.com", tc.UserEmail)
	assert.Equal(t, "tenant@example.com", tc.TenantEmail)
	assert.True(t, tc.Overridden)
}

func TestTenantOverrideIgnoredForRegularUser(t *testing.T) {
	users := &fakeUserDirectory{
		known: map[string]bool{"tenant@example.com": true},
	}
	m := newTestMiddleware(users)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/offers", nil)
	req.Header.Set("Authorization", bearerToken(t, "user@example.com", false))
	req.Header.Set(auth.TenantOverrideHeader, "tenant@example.com")

	tc, code := captureTenant(t, m, req)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "user@example.com", tc.TenantEmail)
	assert.False(t, tc.Overridden)
}

func TestTenantOverrideIgnoredForUnknownTenant(t *testing.T) {
	users := &fakeUserDirectory{
		superUsers: map[string]bool{"admin@example.com": true},
	}
	m := newTestMiddleware(users)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/offers", nil)
	req.Header.Set("Authorization", bearerToken(t, "admin@example.com", false))
	req.Header.Set(auth.TenantOverrideHeader, "ghost@example.com")

	tc, code := captureTenant(t, m, req)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "admin@example.com", tc.TenantEmail)
	assert.False(t, tc.Overridden)
}

func TestTenantEmailFromContext(t *testing.T) {
	ctx := context.Background()
	assert.Empty(t, auth.TenantEmailFromContext(ctx))

	ctx = auth.WithTenantContext(ctx, &auth.TenantContext{
		UserEmail:   "mester@example.com",
		TenantEmail: "mester@example.com",
	})
	assert.Equal(t, "mester@example.com", auth.TenantEmailFromContext(ctx))
}
