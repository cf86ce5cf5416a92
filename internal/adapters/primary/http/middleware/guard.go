package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/lorrc/smartdesk-web/internal/core/domain"
	apperrors "github.com/lorrc/smartdesk-web/internal/core/errors"
	"github.com/lorrc/smartdesk-web/internal/core/ports"
	"github.com/lorrc/smartdesk-web/internal/infrastructure/logging"
)

type contextKey string

// SessionUserKey is the key used to store the signed-in user in the request context.
const SessionUserKey contextKey = "sessionUser"

// LoginPath is where unauthenticated visitors are sent.
const LoginPath = "/login"

// Guard resolves the backend session for page requests.
type Guard struct {
	auth   ports.AuthGateway
	logger *slog.Logger
}

// NewGuard creates a guard backed by GET /api/me.
func NewGuard(auth ports.AuthGateway, logger *slog.Logger) *Guard {
	return &Guard{auth: auth, logger: logger.With("middleware", "guard")}
}

// RequireRole only lets a signed-in user with the given role through.
// Anyone else is redirected before the handler runs: to the login page when
// there is no session, or to their own home page when the role differs.
func (g *Guard) RequireRole(role domain.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := g.resolve(r)
			if !ok {
				http.Redirect(w, r, LoginPath, http.StatusFound)
				return
			}
			if user.Role != role {
				http.Redirect(w, r, user.Role.HomePath(), http.StatusFound)
				return
			}
			next.ServeHTTP(w, r.WithContext(withUser(r.Context(), user)))
		})
	}
}

// RequireRoleAPI is RequireRole for JSON endpoints: it answers 401 or 403
// instead of redirecting.
func (g *Guard) RequireRoleAPI(role domain.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := g.resolve(r)
			if !ok {
				http.Error(w, "Authentication required", http.StatusUnauthorized)
				return
			}
			if user.Role != role {
				http.Error(w, "Permission denied", http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r.WithContext(withUser(r.Context(), user)))
		})
	}
}

// OptionalSession attaches the user when there is one and never redirects.
func (g *Guard) OptionalSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if user, ok := g.resolve(r); ok {
			r = r.WithContext(withUser(r.Context(), user))
		}
		next.ServeHTTP(w, r)
	})
}

func (g *Guard) resolve(r *http.Request) (*domain.User, bool) {
	session, err := g.auth.Me(r.Context())
	if err != nil {
		if !errors.Is(err, apperrors.ErrUnauthorized) {
			g.logger.WarnContext(r.Context(), "session check failed", "error", err)
		}
		return nil, false
	}
	if !session.Valid() {
		return nil, false
	}
	return session.User, true
}

func withUser(ctx context.Context, user *domain.User) context.Context {
	ctx = logging.WithUserID(ctx, user.ID)
	return context.WithValue(ctx, SessionUserKey, user)
}

// SessionFrom returns the user attached by the guard, or nil for anonymous requests.
func SessionFrom(ctx context.Context) *domain.User {
	user, _ := ctx.Value(SessionUserKey).(*domain.User)
	return user
}
