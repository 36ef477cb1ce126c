package ch

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	clickhouseTC "github.com/testcontainers/testcontainers-go/modules/clickhouse"

	"scriptorium/internal/models"
)

// runMigrations manually creates the consent table
func runMigrations(ctx context.Context, log *ClickHouseLog) error {
	_ = log.conn.Exec(ctx, "DROP TABLE IF EXISTS consent_log")

	return log.conn.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS consent_log (
			display_name String,
			ts DateTime
		) ENGINE = MergeTree()
		ORDER BY ts
	`)
}

// setupTestLog creates a test ClickHouse instance using testcontainers
func setupTestLog(t *testing.T) (*ClickHouseLog, func()) {
	ctx := context.Background()

	// Start ClickHouse container
	clickhouseContainer, err := clickhouseTC.Run(ctx,
		"clickhouse/clickhouse-server:24.3.3.102-alpine",
		clickhouseTC.WithUsername("default"),
		clickhouseTC.WithPassword(""),
		clickhouseTC.WithDatabase("default"),
	)
	require.NoError(t, err, "Failed to start ClickHouse container")

	// Get connection details
	host, err := clickhouseContainer.Host(ctx)
	require.NoError(t, err)

	port, err := clickhouseContainer.MappedPort(ctx, "9000/tcp")
	require.NoError(t, err)

	// Create database connection
	log, err := New(host, port.Int(), "default", "default", "", false)
	require.NoError(t, err, "Failed to connect to ClickHouse")

	// Run migrations manually (goose doesn't work well with ClickHouse)
	err = runMigrations(ctx, log)
	require.NoError(t, err, "Failed to run migrations")

	// Cleanup function
	cleanup := func() {
		log.Close()
		clickhouseContainer.Terminate(ctx)
	}

	return log, cleanup
}

func TestClickHouseLog_Append(t *testing.T) {
	log, cleanup := setupTestLog(t)
	defer cleanup()

	ctx := context.Background()

	ts := time.Now().UTC().Truncate(time.Second)
	err := log.Append(ctx, models.ConsentRecord{DisplayName: "scribe_anna", Timestamp: ts})
	require.NoError(t, err)

	records, err := log.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "scribe_anna", records[0].DisplayName)
	assert.WithinDuration(t, ts, records[0].Timestamp, time.Second)
}

func TestClickHouseLog_AppendDuplicates(t *testing.T) {
	log, cleanup := setupTestLog(t)
	defer cleanup()

	ctx := context.Background()

	// Repeated opt-in appends rows without dedup
	base := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		err := log.Append(ctx, models.ConsentRecord{
			DisplayName: "scribe_anna",
			Timestamp:   base.Add(time.Duration(i) * time.Minute),
		})
		require.NoError(t, err)
	}

	records, err := log.Recent(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, records, 3)
}

func TestClickHouseLog_RecentOrderAndLimit(t *testing.T) {
	log, cleanup := setupTestLog(t)
	defer cleanup()

	ctx := context.Background()

	base := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	names := []string{"first", "second", "third"}
	for i, name := range names {
		err := log.Append(ctx, models.ConsentRecord{
			DisplayName: name,
			Timestamp:   base.Add(time.Duration(i) * time.Hour),
		})
		require.NoError(t, err)
	}

	records, err := log.Recent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "third", records[0].DisplayName)
	assert.Equal(t, "second", records[1].DisplayName)
}

func TestClickHouseLog_Close(t *testing.T) {
	log, cleanup := setupTestLog(t)
	defer cleanup()

	err := log.Close()
	assert.NoError(t, err)

	// Second close should not panic
	err = log.Close()
	assert.NoError(t, err)
}
