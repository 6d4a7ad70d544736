// Package middleware holds the chi middleware stack for the staff API.
package middleware

import (
	"context"

	"github.com/vittoria-dev/menu-engine/pkg/auth"
)

type contextKey string

const (
	requestIDKey contextKey = "request_id"
	claimsKey    contextKey = "operator_claims"
)

// RequestIDFromContext returns the request id set by RequestID.
func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

// ClaimsFromContext returns the operator claims set by Authenticate.
func ClaimsFromContext(ctx context.Context) *auth.AccessTokenClaims {
	claims, _ := ctx.Value(claimsKey).(*auth.AccessTokenClaims)
	return claims
}

func withRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey, id)
}

func withClaims(ctx context.Context, claims *auth.AccessTokenClaims) context.Context {
	return context.WithValue(ctx, claimsKey, claims)
}
