package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/labscribe/internal/common"
	"github.com/dmitrijs2005/labscribe/internal/server/models"
	"github.com/dmitrijs2005/labscribe/internal/server/repositories/repomanager"
)

type ProfileService struct {
	repomanager repomanager.RepositoryManager
}

func NewProfileService(m repomanager.RepositoryManager) *ProfileService {
	return &ProfileService{repomanager: m}
}

// Get returns an empty profile for users that never saved one.
func (s *ProfileService) Get(ctx context.Context, userID string) (*models.Profile, error) {
	p, err := s.repomanager.Profiles().Get(ctx, userID)
	if errors.Is(err, common.ErrNotFound) {
		return &models.Profile{UserID: userID}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("error loading profile: %w", err)
	}
	return p, nil
}

// Upsert replaces the whole profile of p.UserID.
func (s *ProfileService) Upsert(ctx context.Context, p models.Profile) error {
	if err := s.repomanager.Profiles().Upsert(ctx, &p); err != nil {
		return fmt.Errorf("error saving profile: %w", err)
	}
	return nil
}
