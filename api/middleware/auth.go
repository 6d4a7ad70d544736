package middleware

import (
	"net/http"
	"strings"

	"github.com/vittoria-dev/menu-engine/api/responses"
	"github.com/vittoria-dev/menu-engine/pkg/auth"
	"github.com/vittoria-dev/menu-engine/pkg/config"
	"github.com/vittoria-dev/menu-engine/pkg/errors"
	"github.com/vittoria-dev/menu-engine/pkg/logger"
)

// Authenticate requires a bearer token minted for a staff terminal and
// stores the operator claims on the request context.
func Authenticate(cfg config.JWTConfig, log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				responses.WriteError(r.Context(), w, log, errors.New(errors.CodeUnauthorized, "missing authorization header"))
				return
			}
			token, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || token == "" {
				responses.WriteError(r.Context(), w, log, errors.New(errors.CodeUnauthorized, "malformed authorization header"))
				return
			}
			claims, err := auth.ParseAccessToken(cfg, token)
			if err != nil {
				responses.WriteError(r.Context(), w, log, errors.Wrap(errors.CodeUnauthorized, err, "invalid access token"))
				return
			}
			ctx := withClaims(r.Context(), claims)
			if log != nil {
				ctx = log.WithOperatorID(ctx, claims.OperatorID.String())
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
