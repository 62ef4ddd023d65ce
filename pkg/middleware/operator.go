package middleware

import (
	"context"
	"net/http"
	"strings"
)

// ContextKey is a custom type for context keys to avoid collisions
type ContextKey string

const (
	// OperatorIDKey is the context key for the acting admin operator
	OperatorIDKey ContextKey = "operator_id"

	// OperatorHeader is set by the admin panel in front of this service
	OperatorHeader = "X-Operator-ID"

	// DefaultOperator is recorded when no operator header is present
	DefaultOperator = "system"
)

// OperatorMiddleware stores the operator named by the X-Operator-ID header in
// the request context. Authentication happens upstream; the header is trusted.
func OperatorMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		operatorID := strings.TrimSpace(r.Header.Get(OperatorHeader))
		if operatorID == "" {
			operatorID = DefaultOperator
		}
		ctx := context.WithValue(r.Context(), OperatorIDKey, operatorID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetOperatorID extracts the operator ID from the request context
func GetOperatorID(ctx context.Context) string {
	if operatorID, ok := ctx.Value(OperatorIDKey).(string); ok && operatorID != "" {
		return operatorID
	}
	return DefaultOperator
}
