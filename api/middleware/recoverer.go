package middleware

import (
	"fmt"
	"net/http"

	"github.com/vittoria-dev/menu-engine/api/responses"
	"github.com/vittoria-dev/menu-engine/pkg/errors"
	"github.com/vittoria-dev/menu-engine/pkg/logger"
)

// Recoverer converts a handler panic into a 500 envelope instead of
// tearing down the connection.
func Recoverer(log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					err := errors.Wrap(errors.CodeInternal, fmt.Errorf("panic: %v", rec), "request handler panicked")
					responses.WriteError(r.Context(), w, log, err)
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}
