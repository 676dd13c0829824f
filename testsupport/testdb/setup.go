package testdb

import (
	"os"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/testcontainers/testcontainers-go"

	tcpg "github.com/mpapenbr/race-engineer-go/testsupport/tcpostgres"
)

// InitTestDb returns a pool to an empty test database.
// Uses TESTDB_URL if set, otherwise a postgres container. The test is skipped
// if no container provider is available.
func InitTestDb(t *testing.T) *pgxpool.Pool {
	t.Helper()
	var (
		pool *pgxpool.Pool
		err  error
	)
	if os.Getenv("TESTDB_URL") != "" {
		pool, err = tcpg.SetupExternalTestDb()
	} else {
		testcontainers.SkipIfProviderIsNotHealthy(t)
		pool, err = tcpg.SetupTestDb()
	}
	if err != nil {
		t.Fatalf("initTestDb: %v", err)
	}
	tcpg.ClearAllTables(pool)
	t.Cleanup(pool.Close)
	return pool
}
