package store

// runMigrations executes all database migrations.
func (s *Store) runMigrations() error {
	migrations := []string{
		// Settings table - key/value pairs, values are JSON encoded
		`CREATE TABLE IF NOT EXISTS settings (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,

		// Color history - most recently used colors for the picker
		`CREATE TABLE IF NOT EXISTS recent_colors (
			color TEXT PRIMARY KEY,
			seq INTEGER NOT NULL
		)`,

		`CREATE INDEX IF NOT EXISTS idx_recent_colors_seq ON recent_colors(seq)`,
	}

	for _, migration := range migrations {
		if _, err := s.db.Exec(migration); err != nil {
			return err
		}
	}

	return nil
}
