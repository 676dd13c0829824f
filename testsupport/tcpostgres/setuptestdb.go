//nolint:errcheck // testsetup
package tcpostgres

import (
	"context"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mpapenbr/race-engineer-go/pkg/db/migrate"
	database "github.com/mpapenbr/race-engineer-go/pkg/db/postgres"
)

// SetupTestDb starts (or reuses) a postgres container and returns a pool
// for the migrated test database.
func SetupTestDb() (*pgxpool.Pool, error) {
	ctx := context.Background()
	c, err := StartContainer(ctx)
	if err != nil {
		return nil, err
	}
	dbURL, err := c.URL(ctx)
	if err != nil {
		return nil, err
	}
	return setupWithURL(ctx, dbURL)
}

// SetupExternalTestDb uses the database given by the env var TESTDB_URL.
func SetupExternalTestDb() (*pgxpool.Pool, error) {
	return setupWithURL(context.Background(), os.Getenv("TESTDB_URL"))
}

func setupWithURL(ctx context.Context, dbURL string) (*pgxpool.Pool, error) {
	if err := migrate.MigrateDb(dbURL); err != nil {
		return nil, err
	}
	return database.NewPool(ctx, dbURL)
}

func ClearLapTable(pool *pgxpool.Pool) {
	pool.Exec(context.Background(), "delete from lap")
}

func ClearSessionTable(pool *pgxpool.Pool) {
	pool.Exec(context.Background(), "delete from session")
}

func ClearAllTables(pool *pgxpool.Pool) {
	ClearLapTable(pool)
	ClearSessionTable(pool)
}
