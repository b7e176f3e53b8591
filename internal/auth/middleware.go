package auth

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"ProductCatalog/pkg/kit"
)

type ctxKey string

const callerKey ctxKey = "caller"

const RoleAdmin = "admin"

// Caller is the verified identity behind a request.
type Caller struct {
	ID   string
	Role string
}

func CallerFromContext(ctx context.Context) (Caller, bool) {
	c, ok := ctx.Value(callerKey).(Caller)
	return c, ok
}

func WithCaller(ctx context.Context, c Caller) context.Context {
	return context.WithValue(ctx, callerKey, c)
}

// RequireRole admits only requests bearing a valid token whose role is one of
// roles.
func RequireRole(v *Verifier, log *zap.Logger, roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tok, ok := kit.BearerToken(r)
			if !ok {
				kit.WriteError(w, r, http.StatusUnauthorized, "missing token", nil)
				return
			}

			claims, err := v.Parse(tok)
			if err != nil {
				if log != nil {
					log.Debug("token rejected", zap.Error(err))
				}
				kit.WriteError(w, r, http.StatusUnauthorized, "invalid token", nil)
				return
			}

			if !hasRole(claims.Role, roles) {
				kit.WriteError(w, r, http.StatusForbidden, "forbidden", map[string]any{"role": claims.Role})
				return
			}

			ctx := WithCaller(r.Context(), Caller{ID: claims.UserID, Role: claims.Role})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func hasRole(role string, allowed []string) bool {
	if len(allowed) == 0 {
		return true
	}
	for _, a := range allowed {
		if role == a {
			return true
		}
	}
	return false
}
