package models

import "time"

// RefreshToken is stored by hash only; TokenHash is common.HashToken of
// the value handed to the client.
type RefreshToken struct {
	ID        string
	UserID    string
	TokenHash string
	Expires   time.Time
	CreatedAt time.Time
}
