// Package identity adapts the labscribe authentication service to the
// contract consumed by the session manager: sign in, sign up, sign out,
// session restore and a single session-change subscription.
package identity

import (
	"context"
	"errors"
	"time"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailTaken         = errors.New("email already registered")
	ErrWeakCredential     = errors.New("password does not meet requirements")
	ErrNetwork            = errors.New("network error")
	ErrAlreadySubscribed  = errors.New("session change listener already registered")
)

// User is the identity issued by the provider.
type User struct {
	ID    string
	Email string
}

// Session is an authenticated identity. ExpiresAt is the expiry of the
// current access token; it moves forward on every refresh.
type Session struct {
	User      User
	ExpiresAt time.Time
}

// Provider is the boundary to the identity service.
type Provider interface {
	// RestoreSession returns (nil, nil) when there is no usable persisted
	// session.
	RestoreSession(ctx context.Context) (*Session, error)
	SignIn(ctx context.Context, email, password string) (*Session, error)
	SignUp(ctx context.Context, email, password, fullName string) (*Session, error)
	// SignOut is idempotent.
	SignOut(ctx context.Context) error
	// OnSessionChange registers the only listener for changes the provider
	// observes on its own (token refresh, expiry, revocation). A nil
	// session means the identity is gone.
	OnSessionChange(fn func(*Session)) error
}
