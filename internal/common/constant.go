// Package common contains shared constants and sentinel errors used across
// Briefly client components.
package common

const (
	// AuthorizationHeaderName carries the bearer token on outbound requests.
	AuthorizationHeaderName = "Authorization"
	// BearerPrefix precedes the token in the Authorization header.
	BearerPrefix = "Bearer "
	// RequestIDHeaderName correlates a client call with backend logs.
	RequestIDHeaderName = "X-Request-ID"

	// StatusOK is the envelope status the backend uses for logical success.
	StatusOK = "OK"

	// Persisted session keys in the local metadata table.
	AuthTokenKey = "auth_token"
	UserDataKey  = "user_data"
)
