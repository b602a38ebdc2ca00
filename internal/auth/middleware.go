package auth

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/mesterwork/worksite-api/internal/config"
	"github.com/mesterwork/worksite-api/internal/domain"
	"go.uber.org/zap"
)

// TenantOverrideHeader lets super users act on another tenant's data
const TenantOverrideHeader = "X-Tenant-Override"

// UserDirectory is the subset of the user repository the middleware needs
type UserDirectory interface {
	// EnsureUser returns the user for the given email, creating the
	// record on first sight
	EnsureUser(ctx context.Context, email, name string) (*domain.User, error)
	// EmailExists reports whether a user record exists for the email
	EmailExists(ctx context.Context, email string) (bool, error)
}

// Middleware handles authentication and tenant resolution for HTTP requests
type Middleware struct {
	validator *SessionValidator
	users     UserDirectory
	logger    *zap.Logger
}

// NewMiddleware creates a new authentication middleware
func NewMiddleware(cfg *config.Config, users UserDirectory, logger *zap.Logger) *Middleware {
	return &Middleware{
		validator: NewSessionValidator(&cfg.Auth),
		users:     users,
		logger:    logger,
	}
}

// Authenticate validates the bearer token and resolves the effective
// tenant for the request. Every request below this middleware carries a
// TenantContext.
func (m *Middleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			http.Error(w, "Unauthorized: missing authorization header", http.StatusUnauthorized)
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			http.Error(w, "Unauthorized: invalid authorization header format", http.StatusUnauthorized)
			return
		}

		claims, err := m.validator.ValidateToken(parts[1])
		if err != nil {
			m.logger.Warn("token validation failed",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.String("remote_addr", r.RemoteAddr),
				zap.Error(err),
			)
			http.Error(w, "Unauthorized: "+err.Error(), http.StatusUnauthorized)
			return
		}

		user, err := m.users.EnsureUser(r.Context(), claims.Email, claims.Name)
		if err != nil {
			m.logger.Error("failed to resolve user record",
				zap.String("user_email", claims.Email),
				zap.Error(err),
			)
			http.Error(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		tc := &TenantContext{
			UserEmail:   user.Email,
			DisplayName: user.Name,
			TenantEmail: user.Email,
			IsSuperUser: user.IsSuperUser || claims.IsSuperUser,
		}

		m.resolveTenantOverride(r, tc)

		m.logger.Info("request authenticated",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.String("user_email", tc.UserEmail),
			zap.String("tenant_email", tc.TenantEmail),
			zap.Bool("overridden", tc.Overridden),
			zap.Duration("auth_duration", time.Since(start)),
		)

		ctx := WithTenantContext(r.Context(), tc)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// resolveTenantOverride applies the X-Tenant-Override header for super
// users. An override naming an unknown tenant, or sent by a non-super
// user, is ignored and the user keeps their own tenant; the request is
// never rejected for a bad override.
func (m *Middleware) resolveTenantOverride(r *http.Request, tc *TenantContext) {
	override := strings.ToLower(strings.TrimSpace(r.Header.Get(TenantOverrideHeader)))
	if override == "" || override == tc.UserEmail {
		return
	}

	if !tc.IsSuperUser {
		m.logger.Warn("tenant override ignored for non-super user",
			zap.String("user_email", tc.UserEmail),
			zap.String("requested_tenant", override),
		)
		return
	}

	exists, err := m.users.EmailExists(r.Context(), override)
	if err != nil {
		m.logger.Warn("tenant override lookup failed, keeping own tenant",
			zap.String("user_email", tc.UserEmail),
			zap.String("requested_tenant", override),
			zap.Error(err),
		)
		return
	}
	if !exists {
		m.logger.Warn("tenant override ignored, unknown tenant",
			zap.String("user_email", tc.UserEmail),
			zap.String("requested_tenant", override),
		)
		return
	}

	tc.TenantEmail = override
	tc.Overridden = true
}

// RequireSuperUser ensures the authenticated user is a super user
func (m *Middleware) RequireSuperUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tc, ok := FromContext(r.Context())
		if !ok {
			http.Error(w, "Forbidden: no tenant context", http.StatusForbidden)
			return
		}
		if !tc.IsSuperUser {
			http.Error(w, "Forbidden: super user access required", http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}
