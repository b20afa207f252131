package state

import (
	"database/sql"
)

const currentSchemaVersion = 1

func initSchema(conn *sql.DB) error {
	_, err := conn.Exec(`
		CREATE TABLE IF NOT EXISTS schema_version (
			version INTEGER PRIMARY KEY
		);

		CREATE TABLE IF NOT EXISTS resume_positions (
			path TEXT PRIMARY KEY,
			position_ms INTEGER NOT NULL,
			duration_ms INTEGER NOT NULL DEFAULT 0,
			saved_at INTEGER NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_resume_positions_saved_at ON resume_positions(saved_at);
	`)
	if err != nil {
		return err
	}

	_, err = conn.Exec(`INSERT OR IGNORE INTO schema_version (version) VALUES (?)`, currentSchemaVersion)
	return err
}
