package middleware

// ContextKey is a custom type for context keys to avoid collisions.
type ContextKey string

const (
	// EmailCtxKey holds the authenticated account's email. Every
	// downstream query must be scoped by this value.
	EmailCtxKey = ContextKey("email")

	// UsernameCtxKey holds the authenticated account's username.
	UsernameCtxKey = ContextKey("username")

	// RequestIDCtxKey holds the per-request correlation id.
	RequestIDCtxKey = ContextKey("request_id")
)
