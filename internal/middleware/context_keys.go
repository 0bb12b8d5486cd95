package middleware

// ContextKey is a private key type for request context values, so keys
// set here cannot collide with other packages.
type ContextKey string

const (
	// UserIDCtxKey carries the authenticated user ID extracted from the JWT.
	UserIDCtxKey = ContextKey("user_id")

	// RequestIDCtxKey carries the per-request correlation ID.
	RequestIDCtxKey = ContextKey("request_id")
)
