package state

import (
	"database/sql"
	"errors"
	"time"

	"github.com/llehouerou/mediaplayer/internal/db"
)

func getPosition(conn *sql.DB, path string) (*Position, error) {
	var posMS, durMS, savedAt int64
	err := conn.QueryRow(`
		SELECT position_ms, duration_ms, saved_at FROM resume_positions WHERE path = ?
	`, path).Scan(&posMS, &durMS, &savedAt)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil //nolint:nilnil // no saved position is not an error
	}
	if err != nil {
		return nil, err
	}
	return &Position{
		Path:     path,
		Position: time.Duration(posMS) * time.Millisecond,
		Duration: time.Duration(durMS) * time.Millisecond,
		SavedAt:  time.Unix(savedAt, 0),
	}, nil
}

// savePositions writes ps in one transaction. Unresumable positions are
// deleted instead.
func savePositions(conn *sql.DB, ps []Position) error {
	if len(ps) == 0 {
		return nil
	}
	return db.WithTx(conn, func(tx *sql.Tx) error {
		for _, p := range ps {
			if !resumable(p.Position, p.Duration) {
				if _, err := tx.Exec(`DELETE FROM resume_positions WHERE path = ?`, p.Path); err != nil {
					return err
				}
				continue
			}
			_, err := tx.Exec(`
				INSERT INTO resume_positions (path, position_ms, duration_ms, saved_at)
				VALUES (?, ?, ?, ?)
				ON CONFLICT(path) DO UPDATE SET
					position_ms = excluded.position_ms,
					duration_ms = excluded.duration_ms,
					saved_at = excluded.saved_at
			`, p.Path, p.Position.Milliseconds(), p.Duration.Milliseconds(), p.SavedAt.Unix())
			if err != nil {
				return err
			}
		}
		return nil
	})
}

func deletePosition(conn *sql.DB, path string) error {
	_, err := conn.Exec(`DELETE FROM resume_positions WHERE path = ?`, path)
	return err
}

func listPositions(conn *sql.DB) ([]Position, error) {
	rows, err := conn.Query(`
		SELECT path, position_ms, duration_ms, saved_at
		FROM resume_positions
		ORDER BY saved_at DESC, path ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Position
	for rows.Next() {
		var p Position
		var posMS, durMS, savedAt int64
		if err := rows.Scan(&p.Path, &posMS, &durMS, &savedAt); err != nil {
			return nil, err
		}
		p.Position = time.Duration(posMS) * time.Millisecond
		p.Duration = time.Duration(durMS) * time.Millisecond
		p.SavedAt = time.Unix(savedAt, 0)
		out = append(out, p)
	}
	return out, rows.Err()
}
