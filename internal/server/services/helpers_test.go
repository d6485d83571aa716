package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/dmitrijs2005/labscribe/internal/server/config"
	"github.com/dmitrijs2005/labscribe/internal/server/models"
	"github.com/dmitrijs2005/labscribe/internal/server/repositories/records"
	"github.com/dmitrijs2005/labscribe/internal/server/repositories/repomanager"
)

func testConfig() *config.Config {
	return &config.Config{
		SecretKey:                    "k",
		AccessTokenValidityDuration:  time.Hour,
		RefreshTokenValidityDuration: 2 * time.Hour,
		BcryptCost:                   bcrypt.MinCost,
	}
}

func newUserService(t *testing.T) (*UserService, *repomanager.MemoryRepositoryManager) {
	t.Helper()
	m := repomanager.NewMemoryRepositoryManager()
	return NewUserService(m, testConfig()), m
}

func fullRecord(subject string) models.LabRecord {
	return models.LabRecord{
		StudentName:     "Ann",
		RollNumber:      "7",
		Subject:         subject,
		ExperimentTitle: "Pendulum",
		ExperimentAim:   "Measure g",
		Theory:          "T = 2pi sqrt(L/g)",
		Tools:           "String, bob",
		Code:            "n/a",
		Output:          "g = 9.8",
		Conclusion:      "Matches",
	}
}

var errDB = errors.New("db down")

// brokenRecords fails every call, standing in for a lost database.
type brokenRecords struct{}

func (brokenRecords) List(context.Context, string) ([]models.LabRecord, error) { return nil, errDB }
func (brokenRecords) Create(context.Context, *models.LabRecord) (*models.LabRecord, error) {
	return nil, errDB
}
func (brokenRecords) Delete(context.Context, string, string) error { return errDB }

type brokenManager struct {
	*repomanager.MemoryRepositoryManager
}

func (brokenManager) Records() records.Repository { return brokenRecords{} }
