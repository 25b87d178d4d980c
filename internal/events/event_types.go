package events

import "time"

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventUserSignedUp    EventType = "user_signed_up"
	EventUserSignedIn    EventType = "user_signed_in"
	EventTokenRefreshed  EventType = "token_refreshed"
	EventRefreshRejected EventType = "refresh_rejected"
	EventUserSignedOut   EventType = "user_signed_out"
)

// SigninMethod distinguishes how a session was established.
type SigninMethod string

const (
	SigninMethodPassword SigninMethod = "password"
	SigninMethodGoogle   SigninMethod = "google"
)

// Event represents an auth event emitted by the session service.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	UserID    string      `json:"user_id,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// UserSignedUpPayload payload.
type UserSignedUpPayload struct {
	Username string       `json:"username"`
	Email    string       `json:"email"`
	Method   SigninMethod `json:"method"`
}

// UserSignedInPayload payload.
type UserSignedInPayload struct {
	Method SigninMethod `json:"method"`
}

// TokenRefreshedPayload payload.
type TokenRefreshedPayload struct {
	ExpiresAt time.Time `json:"expires_at"`
}

// RefreshRejectedPayload payload. UserID is empty when no account holds
// the presented token value.
type RefreshRejectedPayload struct {
	Reason string `json:"reason"`
}
