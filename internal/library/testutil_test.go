package library

import (
	"database/sql"
	"testing"

	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/vmunix/mediaportal/internal/migrations"
)

func setupTestDB(t *testing.T, category Category) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err, "open db")
	t.Cleanup(func() { _ = db.Close() })

	// A single connection keeps every query on the same in-memory database.
	db.SetMaxOpenConns(1)

	schema, err := migrations.ForCategory(string(category))
	require.NoError(t, err)
	_, err = db.Exec(schema)
	require.NoError(t, err, "apply schema")
	return db
}

// ptr is a helper to create pointer to value
func ptr[T any](v T) *T {
	return &v
}
