package services

import (
	"context"
	"fmt"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/google/uuid"

	"github.com/dmitrijs2005/labscribe/internal/common"
	"github.com/dmitrijs2005/labscribe/internal/server/models"
	"github.com/dmitrijs2005/labscribe/internal/server/repositories/repomanager"
)

// RecordService manages lab records. Every call is scoped by the caller's
// user id, so one user can never see or delete another user's records.
type RecordService struct {
	repomanager repomanager.RepositoryManager
}

func NewRecordService(m repomanager.RepositoryManager) *RecordService {
	return &RecordService{repomanager: m}
}

func (s *RecordService) List(ctx context.Context, userID string) ([]models.LabRecord, error) {
	recs, err := s.repomanager.Records().List(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("error listing records: %w", err)
	}
	return recs, nil
}

// Create assigns a fresh id and stores rec under userID. Any field left
// empty yields common.ErrValidation.
func (s *RecordService) Create(ctx context.Context, userID string, rec models.LabRecord) (*models.LabRecord, error) {
	if err := validateRecord(rec); err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrValidation, err)
	}
	rec.ID = uuid.NewString()
	rec.UserID = userID

	out, err := s.repomanager.Records().Create(ctx, &rec)
	if err != nil {
		return nil, fmt.Errorf("error creating record: %w", err)
	}
	return out, nil
}

// Delete yields common.ErrNotFound for ids that are malformed, unknown, or
// owned by someone else.
func (s *RecordService) Delete(ctx context.Context, userID, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return common.ErrNotFound
	}
	return s.repomanager.Records().Delete(ctx, userID, id)
}

func validateRecord(rec models.LabRecord) error {
	return validation.ValidateStruct(&rec,
		validation.Field(&rec.StudentName, validation.Required),
		validation.Field(&rec.RollNumber, validation.Required),
		validation.Field(&rec.Subject, validation.Required),
		validation.Field(&rec.ExperimentTitle, validation.Required),
		validation.Field(&rec.ExperimentAim, validation.Required),
		validation.Field(&rec.Theory, validation.Required),
		validation.Field(&rec.Tools, validation.Required),
		validation.Field(&rec.Code, validation.Required),
		validation.Field(&rec.Output, validation.Required),
		validation.Field(&rec.Conclusion, validation.Required),
	)
}
