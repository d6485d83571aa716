// Package records stores lab records. Every read and delete is scoped by the
// owning user id.
package records

import (
	"context"

	"github.com/dmitrijs2005/labscribe/internal/server/models"
)

type Repository interface {
	// List returns the user's records, newest first.
	List(ctx context.Context, userID string) ([]models.LabRecord, error)
	// Create inserts rec with its caller-assigned ID and fills in CreatedAt.
	Create(ctx context.Context, rec *models.LabRecord) (*models.LabRecord, error)
	// Delete removes the record only when userID owns it. Unknown ids and
	// ids owned by someone else both yield common.ErrNotFound.
	Delete(ctx context.Context, userID, id string) error
}
