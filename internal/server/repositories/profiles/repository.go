// Package profiles stores the one profile each user may have.
package profiles

import (
	"context"

	"github.com/dmitrijs2005/labscribe/internal/server/models"
)

type Repository interface {
	// Get returns common.ErrNotFound when the user has no profile yet.
	Get(ctx context.Context, userID string) (*models.Profile, error)
	// Upsert inserts p or replaces the existing row for p.UserID.
	Upsert(ctx context.Context, p *models.Profile) error
}
