package records

import (
	"context"
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

func (r *PostgresRepository) List(ctx context.Context, userID string) ([]models.LabRecord, error) {
	query :=
		`SELECT id, user_id, student_name, roll_number, subject, experiment_title,
		        experiment_aim, theory, tools, code, output, conclusion, created_at
		 FROM lab_records
		 WHERE user_id = $1
		 ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	out := []models.LabRecord{}
	for rows.Next() {
		var rec models.LabRecord
		if err := rows.Scan(&rec.ID, &rec.UserID, &rec.StudentName, &rec.RollNumber, &rec.Subject,
			&rec.ExperimentTitle, &rec.ExperimentAim, &rec.Theory, &rec.Tools, &rec.Code,
			&rec.Output, &rec.Conclusion, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return out, nil
}

func (r *PostgresRepository) Create(ctx context.Context, rec *models.LabRecord) (*models.LabRecord, error) {
	query :=
		`INSERT INTO lab_records (id, user_id, student_name, roll_number, subject, experiment_title,
		                          experiment_aim, theory, tools, code, output, conclusion)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		 RETURNING created_at`

	err := r.db.QueryRowContext(ctx, query, rec.ID, rec.UserID, rec.StudentName, rec.RollNumber,
		rec.Subject, rec.ExperimentTitle, rec.ExperimentAim, rec.Theory, rec.Tools, rec.Code,
		rec.Output, rec.Conclusion).Scan(&rec.CreatedAt)
	if err != nil {
		if repositories.IsUniqueViolation(err) {
			return nil, common.ErrAlreadyExists
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return rec, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, userID, id string) error {
	query := `DELETE FROM lab_records WHERE id = $1 AND user_id = $2`

	res, err := r.db.ExecContext(ctx, query, id, userID)
	if err != nil {
		if repositories.IsInvalidText(err) {
			return common.ErrNotFound
		}
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return common.ErrNotFound
	}
	return nil
}
