// Package metadata stores the small key/value facts the client keeps between
// runs: the refresh token and the identity it belongs to.
package metadata

import "context"

// Well-known keys.
const (
	KeyRefreshToken = "refresh_token"
	KeyUserID       = "user_id"
	KeyEmail        = "email"
)

// SessionKeys are wiped together whenever the persisted session is dropped.
var SessionKeys = []string{KeyRefreshToken, KeyUserID, KeyEmail}

type Repository interface {
	// Get returns ("", false, nil) when key is absent.
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key string, value string) error
	Delete(ctx context.Context, keys ...string) error
	List(ctx context.Context) (map[string]string, error)
	Clear(ctx context.Context) error
}
