package analysis

import "context"

type contextKey string

const authTokenKey contextKey = "analysis-auth-token"

// ContextWithAuthToken stores the caller's Authorization header so upstream
// calls can forward it.
func ContextWithAuthToken(ctx context.Context, token string) context.Context {
	if token == "" {
		return ctx
	}
	return context.WithValue(ctx, authTokenKey, token)
}

// AuthTokenFromContext returns the stored Authorization header, if any.
func AuthTokenFromContext(ctx context.Context) string {
	if token, ok := ctx.Value(authTokenKey).(string); ok {
		return token
	}
	return ""
}
