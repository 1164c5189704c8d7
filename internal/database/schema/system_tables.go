package schema

// TableDefinitions contains all the SQL statements to create the database tables
// Don't put REFERENCES and don't put CHECK constraints in the CREATE TABLE statements
var TableDefinitions = []string{
	`CREATE TABLE IF NOT EXISTS editor_drafts (
		id UUID PRIMARY KEY,
		template_id VARCHAR(64),
		name VARCHAR(255) NOT NULL,
		snapshot JSONB NOT NULL,
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL
	)`,
}

// MigrationStatements run after the tables exist and must be idempotent
var MigrationStatements = []string{
	`CREATE INDEX IF NOT EXISTS idx_editor_drafts_updated_at ON editor_drafts (updated_at)`,
	`CREATE INDEX IF NOT EXISTS idx_editor_drafts_template_id ON editor_drafts (template_id)`,
}

// GetMigrationStatements returns migration statements for database schema setup
func GetMigrationStatements() []string {
	return MigrationStatements
}
