package database

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenRunsMigrations(t *testing.T) {
	db, err := Open(filepath.Join(t.TempDir(), "devmatch.db"))
	require.NoError(t, err)
	defer db.Close()

	for _, table := range []string{"match_runs", "run_developers", "match_evidence", "jobs", "email_merges"} {
		var count int
		err := db.QueryRow(`SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ?`, table).Scan(&count)
		require.NoError(t, err)
		assert.Equal(t, 1, count, "table %s should exist", table)
	}
}

func TestRunMigrationsIsRepeatable(t *testing.T) {
	db, err := Open(filepath.Join(t.TempDir(), "devmatch.db"))
	require.NoError(t, err)
	defer db.Close()

	assert.NoError(t, RunMigrations(db))
}
