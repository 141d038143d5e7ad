package db

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDB(t *testing.T) *sqlx.DB {
	t.Helper()
	database, err := Open("sqlite:///" + filepath.Join(t.TempDir(), "rulekeeper.db"))
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })
	return database
}

// The shipped migration files lead statements with comment blocks and
// contain semicolons inside comment text; applying them end to end is
// the contract.
func TestMigrateUp_AppliesShippedMigrations(t *testing.T) {
	database := newTestDB(t)

	require.NoError(t, MigrateUp(database))

	for _, table := range []string{"rulesets", "rules", "audit_entries", "api_keys"} {
		var name string
		err := database.Get(&name,
			"SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?", table)
		assert.NoError(t, err, "table %s must exist", table)
	}

	var index string
	err := database.Get(&index,
		"SELECT name FROM sqlite_master WHERE type = 'index' AND name = 'uq_rulesets_single_active'")
	assert.NoError(t, err, "partial unique index must exist")
}

func TestMigrateUp_Idempotent(t *testing.T) {
	database := newTestDB(t)

	require.NoError(t, MigrateUp(database))
	require.NoError(t, MigrateUp(database))

	var count int
	require.NoError(t, database.Get(&count, "SELECT COUNT(*) FROM migrations"))
	assert.Equal(t, 2, count)
}

func TestMigrateUp_ChecksumMismatchAborts(t *testing.T) {
	database := newTestDB(t)
	require.NoError(t, MigrateUp(database))

	_, err := database.Exec(
		"UPDATE migrations SET checksum = 'tampered' WHERE migration_id = '001_initial_schema.sql'")
	require.NoError(t, err)

	err = MigrateUp(database)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "checksum mismatch")
}

func TestMigrateStatus(t *testing.T) {
	database := newTestDB(t)

	statuses, err := MigrateStatus(database)
	require.NoError(t, err)
	require.Len(t, statuses, 2)
	for _, s := range statuses {
		assert.False(t, s.Applied)
	}

	require.NoError(t, MigrateUp(database))

	statuses, err = MigrateStatus(database)
	require.NoError(t, err)
	require.Len(t, statuses, 2)
	assert.Equal(t, "001_initial_schema.sql", statuses[0].ID)
	assert.Equal(t, "002_api_keys.sql", statuses[1].ID)
	for _, s := range statuses {
		assert.True(t, s.Applied)
		assert.NotNil(t, s.AppliedAt)
	}
}

func TestStripSQLComments(t *testing.T) {
	in := strings.Join([]string{
		"-- leading comment; with a semicolon",
		"CREATE TABLE t (id TEXT);",
		"  -- indented comment",
		"CREATE INDEX i ON t (id);",
	}, "\n")

	out := stripSQLComments(in)
	assert.NotContains(t, out, "--")
	assert.NotContains(t, out, "semicolon")
	assert.Contains(t, out, "CREATE TABLE t (id TEXT);")
	assert.Contains(t, out, "CREATE INDEX i ON t (id);")
}
