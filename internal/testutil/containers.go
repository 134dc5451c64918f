// Package testutil starts the backing services used by integration tests.
package testutil

import (
	"context"
	"database/sql"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	_ "github.com/lib/pq"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/vncsmyrnk/pollvotes/internal/adapters/repository/postgres"
)

// StartPostgres runs a throwaway Postgres with the schema applied.
func StartPostgres(t *testing.T) *sql.DB {
	t.Helper()
	ctx := context.Background()

	pgContainer, err := tcpostgres.Run(ctx, "postgres:15-alpine",
		tcpostgres.WithDatabase("testdb"),
		tcpostgres.WithUsername("user"),
		tcpostgres.WithPassword("password"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	require.NoError(t, err, "failed to start postgres container")
	t.Cleanup(func() {
		if err := pgContainer.Terminate(context.Background()); err != nil {
			t.Logf("failed to terminate postgres container: %v", err)
		}
	})

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, err := sql.Open("postgres", connStr)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, postgres.Migrate(db))
	return db
}

// StartRedis runs a throwaway Redis and returns a connected client.
func StartRedis(t *testing.T) *goredis.Client {
	t.Helper()
	ctx := context.Background()

	redisContainer, err := tcredis.Run(ctx, "redis:7-alpine")
	require.NoError(t, err, "failed to start redis container")
	t.Cleanup(func() {
		if err := redisContainer.Terminate(context.Background()); err != nil {
			t.Logf("failed to terminate redis container: %v", err)
		}
	})

	url, err := redisContainer.ConnectionString(ctx)
	require.NoError(t, err)

	opts, err := goredis.ParseURL(url)
	require.NoError(t, err)

	client := goredis.NewClient(opts)
	t.Cleanup(func() { client.Close() })
	require.NoError(t, client.Ping(ctx).Err())
	return client
}

// SeedPoll inserts a poll with the given number of options.
func SeedPoll(t *testing.T, db *sql.DB, options int) (uuid.UUID, []uuid.UUID) {
	t.Helper()

	pollID := uuid.New()
	_, err := db.Exec(`INSERT INTO polls (id, title) VALUES ($1, $2)`, pollID, fmt.Sprintf("Poll %s", pollID))
	require.NoError(t, err)

	optionIDs := make([]uuid.UUID, 0, options)
	for i := 0; i < options; i++ {
		optionID := uuid.New()
		_, err := db.Exec(`INSERT INTO poll_options (id, title, poll_id) VALUES ($1, $2, $3)`, optionID, fmt.Sprintf("Option %d", i+1), pollID)
		require.NoError(t, err)
		optionIDs = append(optionIDs, optionID)
	}
	return pollID, optionIDs
}
