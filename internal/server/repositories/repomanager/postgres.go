// Package repomanager assembles the server repositories over one backend
// and runs the schema migrations (via goose).
package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/labscribe/internal/dbx"
	"github.com/dmitrijs2005/labscribe/internal/server/migrations"
	"github.com/dmitrijs2005/labscribe/internal/server/repositories/profiles"
	"github.com/dmitrijs2005/labscribe/internal/server/repositories/records"
	"github.com/dmitrijs2005/labscribe/internal/server/repositories/refreshtokens"
	"github.com/dmitrijs2005/labscribe/internal/server/repositories/users"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

// postgresRepositories vends PostgreSQL repositories bound to one DBTX,
// either the pool or an open transaction.
type postgresRepositories struct {
	db dbx.DBTX
}

func (r postgresRepositories) Users() users.Repository {
	return users.NewPostgresRepository(r.db)
}

func (r postgresRepositories) RefreshTokens() refreshtokens.Repository {
	return refreshtokens.NewPostgresRepository(r.db)
}

func (r postgresRepositories) Records() records.Repository {
	return records.NewPostgresRepository(r.db)
}

func (r postgresRepositories) Profiles() profiles.Repository {
	return profiles.NewPostgresRepository(r.db)
}

// PostgresRepositoryManager is the production RepositoryManager.
type PostgresRepositoryManager struct {
	postgresRepositories
	db *sql.DB
}

func NewPostgresRepositoryManager(db *sql.DB) *PostgresRepositoryManager {
	return &PostgresRepositoryManager{postgresRepositories: postgresRepositories{db: db}, db: db}
}

// gooseUpContext is a seam for testing goose.UpContext.
var gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

// RunMigrations applies the embedded migrations.
func (m *PostgresRepositoryManager) RunMigrations(ctx context.Context) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("pgx"); err != nil {
		return err
	}
	return gooseUpContext(ctx, m.db, ".")
}

func (m *PostgresRepositoryManager) Ping(ctx context.Context) error {
	return m.db.PingContext(ctx)
}

func (m *PostgresRepositoryManager) InTx(ctx context.Context, fn func(ctx context.Context, r Repositories) error) error {
	return dbx.WithTx(ctx, m.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		return fn(ctx, postgresRepositories{db: tx})
	})
}

func (m *PostgresRepositoryManager) Close() error {
	return m.db.Close()
}
