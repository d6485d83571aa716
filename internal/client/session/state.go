// Package session owns the process-wide session state of the client.
//
// A Manager is created once by the application and is the only subscriber of
// the identity provider. Everything else receives a read-only Handle.
package session

import "github.com/dmitrijs2005/labscribe/internal/client/identity"

type Status int

const (
	Unknown Status = iota
	Authenticated
	Unauthenticated
)

func (s Status) String() string {
	switch s {
	case Unknown:
		return "unknown"
	case Authenticated:
		return "authenticated"
	case Unauthenticated:
		return "unauthenticated"
	default:
		return "invalid"
	}
}

// State is an immutable snapshot. Session is non-nil only when Status is
// Authenticated.
type State struct {
	Status  Status
	Session *identity.Session
}

// User returns the authenticated user, if any.
func (s State) User() (identity.User, bool) {
	if s.Status != Authenticated || s.Session == nil {
		return identity.User{}, false
	}
	return s.Session.User, true
}

func unauthenticated() State { return State{Status: Unauthenticated} }

func authenticated(s *identity.Session) State {
	return State{Status: Authenticated, Session: s}
}

// Handle is the read-only view of the session handed to pages and stores.
type Handle interface {
	State() State
	// Subscribe registers fn and returns a function that removes it.
	Subscribe(fn func(State)) (unsubscribe func())
}
