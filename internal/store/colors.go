package store

import "database/sql"

// MaxRecentColors is how many colors the history keeps.
const MaxRecentColors = 8

// ColorRepository tracks recently used colors.
type ColorRepository struct {
	db *sql.DB
}

// Colors returns the color history repository for this store.
func (s *Store) Colors() *ColorRepository {
	return &ColorRepository{db: s.db}
}

// Touch marks color as the most recently used and trims the history.
func (r *ColorRepository) Touch(color string) error {
	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.Exec(
		`INSERT INTO recent_colors (color, seq)
		 VALUES (?, (SELECT COALESCE(MAX(seq), 0) + 1 FROM recent_colors))
		 ON CONFLICT(color) DO UPDATE SET seq = excluded.seq`,
		color,
	)
	if err != nil {
		return err
	}

	_, err = tx.Exec(
		`DELETE FROM recent_colors WHERE color NOT IN (
			SELECT color FROM recent_colors ORDER BY seq DESC LIMIT ?
		)`,
		MaxRecentColors,
	)
	if err != nil {
		return err
	}

	return tx.Commit()
}

// Recent returns the history, most recent first.
func (r *ColorRepository) Recent() ([]string, error) {
	rows, err := r.db.Query(`SELECT color FROM recent_colors ORDER BY seq DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var colors []string
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, err
		}
		colors = append(colors, c)
	}
	return colors, rows.Err()
}
