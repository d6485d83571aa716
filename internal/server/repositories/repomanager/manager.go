package repomanager

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/labscribe/internal/server/repositories/profiles"
	"github.com/dmitrijs2005/labscribe/internal/server/repositories/records"
	"github.com/dmitrijs2005/labscribe/internal/server/repositories/refreshtokens"
	"github.com/dmitrijs2005/labscribe/internal/server/repositories/users"
)

// MemoryDSN selects the in-process backend instead of PostgreSQL.
const MemoryDSN = "memory"

// Repositories is one consistent view over every repository. Outside InTx
// each call stands alone; inside InTx all calls share one transaction.
type Repositories interface {
	Users() users.Repository
	RefreshTokens() refreshtokens.Repository
	Records() records.Repository
	Profiles() profiles.Repository
}

type RepositoryManager interface {
	Repositories
	RunMigrations(ctx context.Context) error
	Ping(ctx context.Context) error
	// InTx runs fn against transactional repositories and commits when fn
	// returns nil. fn must only use the Repositories it is given.
	InTx(ctx context.Context, fn func(ctx context.Context, r Repositories) error) error
	Close() error
}

// New opens the backend named by dsn. MemoryDSN yields the in-process
// store; anything else is handed to the pgx driver.
func New(dsn string) (RepositoryManager, error) {
	if dsn == MemoryDSN {
		return NewMemoryRepositoryManager(), nil
	}

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return NewPostgresRepositoryManager(db), nil
}
