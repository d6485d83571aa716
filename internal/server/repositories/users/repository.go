// Package users stores labscribe accounts.
package users

import (
	"context"

	"github.com/dmitrijs2005/labscribe/internal/server/models"
)

type Repository interface {
	// Create inserts user and fills in its id and creation time. A taken
	// email yields common.ErrAlreadyExists.
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
}
