package httpapi

import (
	"context"
	"net/http"
	"strings"

	"github.com/avoronov/storebox/internal/common"
	"github.com/avoronov/storebox/internal/server/auth"
	"github.com/avoronov/storebox/internal/server/models"
)

type contextKey string

const principalContextKey contextKey = "principal"

// accessTokenMiddleware resolves the caller identity from the access
// token and stores it in the request context. Requests without a valid
// token are rejected.
func (s *Server) accessTokenMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := r.Header.Get(common.AccessTokenHeaderName)
		token = strings.TrimPrefix(token, "Bearer ")
		if token == "" {
			s.writeError(w, r, common.ErrUnauthorized)
			return
		}

		principal, err := auth.GetPrincipalFromToken(token, s.jwtSecret)
		if err != nil {
			s.writeError(w, r, common.ErrUnauthorized)
			return
		}

		ctx := context.WithValue(r.Context(), principalContextKey, principal)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// principalFromContext returns the identity attached by the
// middleware. The zero value means the request skipped authentication.
func principalFromContext(ctx context.Context) models.Principal {
	principal, ok := ctx.Value(principalContextKey).(models.Principal)
	if !ok {
		return models.Principal{}
	}
	return principal
}
