package middleware

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/vittoria-dev/menu-engine/pkg/logger"
)

const requestIDHeader = "X-Request-ID"

// RequestID assigns every request an id, honoring an inbound header,
// and binds it to the context logger.
func RequestID(log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := r.Header.Get(requestIDHeader)
			if id == "" {
				id = uuid.NewString()
			}
			ctx := withRequestID(r.Context(), id)
			if log != nil {
				ctx = log.WithRequestID(ctx, id)
			}
			w.Header().Set(requestIDHeader, id)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
