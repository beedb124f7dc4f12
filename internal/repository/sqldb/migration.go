package sqldb

import (
	_ "embed"
	"fmt"
)

//go:embed schema_postgres.sql
var postgresSchema string

//go:embed schema_sqlite.sql
var sqliteSchema string

// Migrate creates the tables if they do not exist yet.
func (db *DB) Migrate() error {
	schema := sqliteSchema
	if db.Driver == DriverPostgres {
		schema = postgresSchema
	}
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("failed to execute schema: %v", err)
	}
	return nil
}
