package profiles

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/labscribe/internal/common"
	"github.com/dmitrijs2005/labscribe/internal/dbx"
	"github.com/dmitrijs2005/labscribe/internal/server/models"
	"github.com/dmitrijs2005/labscribe/internal/server/repositories"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Get(ctx context.Context, userID string) (*models.Profile, error) {
	query :=
		`SELECT user_id, full_name, student_id, department, updated_at FROM profiles
		 WHERE user_id = $1`

	p := &models.Profile{}
	err := r.db.QueryRowContext(ctx, query, userID).Scan(&p.UserID, &p.FullName, &p.StudentID, &p.Department, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return p, nil
}

func (r *PostgresRepository) Upsert(ctx context.Context, p *models.Profile) error {
	query :=
		`INSERT INTO profiles (user_id, full_name, student_id, department, updated_at)
		 VALUES ($1, $2, $3, $4, now())
		 ON CONFLICT (user_id) DO UPDATE
		 SET full_name = EXCLUDED.full_name,
		     student_id = EXCLUDED.student_id,
		     department = EXCLUDED.department,
		     updated_at = now()`

	if _, err := r.db.ExecContext(ctx, query, p.UserID, p.FullName, p.StudentID, p.Department); err != nil {
		if repositories.IsForeignKeyViolation(err) {
			return common.ErrNotFound
		}
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}
