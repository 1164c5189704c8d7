package schema

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTableDefinitions(t *testing.T) {
	t.Run("drafts table is created if missing", func(t *testing.T) {
		require.Len(t, TableDefinitions, 1)
		assert.Contains(t, TableDefinitions[0], "CREATE TABLE IF NOT EXISTS editor_drafts")
	})

	t.Run("drafts table stores the snapshot as jsonb", func(t *testing.T) {
		assert.Contains(t, TableDefinitions[0], "snapshot JSONB NOT NULL")
		assert.NotContains(t, strings.ToUpper(TableDefinitions[0]), "REFERENCES")
	})
}

func TestGetMigrationStatements(t *testing.T) {
	statements := GetMigrationStatements()
	assert.Equal(t, MigrationStatements, statements)

	for i, statement := range statements {
		upper := strings.ToUpper(statement)
		assert.True(t, strings.Contains(upper, "IF NOT EXISTS"), "statement %d must be idempotent", i)
		assert.Contains(t, statement, "editor_drafts")
	}
}
