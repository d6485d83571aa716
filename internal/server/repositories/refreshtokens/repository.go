// Package refreshtokens persists issued refresh tokens by hash.
package refreshtokens

import (
	"context"
	"time"

	"github.com/dmitrijs2005/labscribe/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, userID, tokenHash string, expires time.Time) error
	// Find returns common.ErrNotFound when no token has the given hash.
	Find(ctx context.Context, tokenHash string) (*models.RefreshToken, error)
	// Consume deletes the token and returns it, so only one caller can ever
	// redeem a given hash. A missing token is common.ErrNotFound.
	Consume(ctx context.Context, tokenHash string) (*models.RefreshToken, error)
	Delete(ctx context.Context, tokenHash string) error
}
