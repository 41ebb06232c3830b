//go:build integration

package migrate

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"

	"github.com/hashicorp-forge/docgate/pkg/backend"
	"github.com/hashicorp-forge/docgate/pkg/database"
	"github.com/hashicorp-forge/docgate/pkg/docstore"
)

// startPostgres runs a disposable PostgreSQL container and returns its DSN.
func startPostgres(t *testing.T) string {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	container, err := tcpostgres.Run(ctx, "postgres:16-alpine",
		tcpostgres.WithDatabase("docgate"),
		tcpostgres.WithUsername("docgate"),
		tcpostgres.WithPassword("docgate"),
		tcpostgres.BasicWaitStrategies(),
	)
	t.Cleanup(func() {
		if err := testcontainers.TerminateContainer(container); err != nil {
			t.Logf("error terminating postgres container: %v", err)
		}
	})
	require.NoError(t, err)

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)
	return dsn
}

func TestRunMigrations_Postgres(t *testing.T) {
	dsn := startPostgres(t)

	db, err := database.Connect(database.Config{
		Driver: database.DriverPostgres,
		DSN:    dsn,
	}, hclog.NewNullLogger())
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, RunMigrations(sqlDB, database.DriverPostgres))
	require.NoError(t, RunMigrations(sqlDB, database.DriverPostgres))

	version, dirty, err := GetMigrationVersion(sqlDB, database.DriverPostgres)
	require.NoError(t, err)
	assert.Equal(t, uint(1), version)
	assert.False(t, dirty)

	store := docstore.New(db, hclog.NewNullLogger())
	ctx := context.Background()

	t.Run("set and get", func(t *testing.T) {
		_, err := store.Set(ctx, "default", "Chats", "chat456", backend.Document{
			"message": "Hello",
			"n":       json.Number("9007199254740993"),
		})
		require.NoError(t, err)

		doc, err := store.Get(ctx, "default", "Chats", "chat456")
		require.NoError(t, err)
		assert.Equal(t, "Hello", doc["message"])
		assert.Equal(t, json.Number("9007199254740993"), doc["n"])
	})

	t.Run("set replaces on conflict", func(t *testing.T) {
		_, err := store.Set(ctx, "default", "Chats", "chat456", backend.Document{"message": "Replaced"})
		require.NoError(t, err)

		doc, err := store.Get(ctx, "default", "Chats", "chat456")
		require.NoError(t, err)
		assert.Equal(t, backend.Document{"message": "Replaced"}, doc)
	})

	t.Run("merge and search", func(t *testing.T) {
		_, err := store.Merge(ctx, "default", "Chats", "chat456", backend.Document{"read": true})
		require.NoError(t, err)

		results, err := store.Search(ctx, "default", backend.SearchQuery{
			Collection:  "Chats",
			Constraints: map[string]any{"read": true},
		})
		require.NoError(t, err)
		require.Len(t, results, 1)
		assert.Equal(t, "chat456", results[0]["id"])
	})

	t.Run("missing document", func(t *testing.T) {
		_, err := store.Get(ctx, "default", "Chats", "nobody")
		assert.ErrorIs(t, err, backend.ErrNotFound)
	})
}
