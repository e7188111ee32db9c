package db

import (
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// +----+------+----------+------------+---------+
// | id | name | name_exe | short_desc | details |
// +----+------+----------+------------+---------+
const tableCommands = `
-- Main table for commands
CREATE TABLE IF NOT EXISTS commands (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    name TEXT NOT NULL,
    name_exe TEXT NOT NULL,
    short_desc TEXT,
    details TEXT
);`

// +------------+------+
// | command_id | type |
// +------------+------+
const tableCommandTypes = `
-- Types of a command, kept as a single value (e.g. "network|pentest")
CREATE TABLE IF NOT EXISTS command_types (
    command_id INTEGER,
    type TEXT,
    FOREIGN KEY (command_id) REFERENCES commands(id)
);`

// +------------+------+
// | command_id | args |
// +------------+------+
const tableCommandArgs = `
-- Argument template of a command
CREATE TABLE IF NOT EXISTS command_args (
    command_id INTEGER,
    args TEXT,
    FOREIGN KEY (command_id) REFERENCES commands(id)
);`

// +------------+---------+
// | command_id | example |
// +------------+---------+
const tableCommandExamples = `
-- Usage examples, one row per example
CREATE TABLE IF NOT EXISTS command_examples (
    command_id INTEGER,
    example TEXT,
    FOREIGN KEY (command_id) REFERENCES commands(id)
);`

// Tables holds the schema in dependency order, parent table first.
var Tables = []string{
	tableCommands,
	tableCommandTypes,
	tableCommandArgs,
	tableCommandExamples,
}

// CreateTables executes every statement in tables and commits once. The
// statements are expected to be idempotent.
func CreateTables(db *gorm.DB, tables []string, log *zap.SugaredLogger) error {
	return db.Transaction(func(tx *gorm.DB) error {
		for i, ddl := range tables {
			if err := tx.Exec(ddl).Error; err != nil {
				return fmt.Errorf("schema: statement %d failed: %w", i, err)
			}
			log.Debugf("schema: statement %d applied", i)
		}
		return nil
	})
}
