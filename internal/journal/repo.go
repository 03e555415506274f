package journal

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/starford/lexicon/internal/models"
)

const defaultLimit = 20

// Record stores one addition. ID and CreatedAt are filled in when empty and
// the stored record is returned.
func (db *DB) Record(a models.Addition) (models.Addition, error) {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now().UTC()
	}
	_, err := db.conn.Exec(`
		INSERT INTO additions (id, name, parent, path, promoted, checksum, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, a.ID, a.Name, a.Parent, a.Path, a.Promoted, a.Checksum, a.CreatedAt)
	if err != nil {
		return a, fmt.Errorf("journal: record %q: %w", a.Name, err)
	}
	return a, nil
}

// Recent returns the newest additions first.
func (db *DB) Recent(limit int) ([]models.Addition, error) {
	if limit <= 0 {
		limit = defaultLimit
	}
	rows, err := db.conn.Query(`
		SELECT id, name, parent, path, promoted, checksum, created_at
		FROM additions
		ORDER BY created_at DESC, rowid DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("journal: recent: %w", err)
	}
	return scanAdditions(rows)
}

// ForName returns every addition recorded for name, oldest first.
func (db *DB) ForName(name string) ([]models.Addition, error) {
	rows, err := db.conn.Query(`
		SELECT id, name, parent, path, promoted, checksum, created_at
		FROM additions
		WHERE name = ?
		ORDER BY created_at, rowid
	`, name)
	if err != nil {
		return nil, fmt.Errorf("journal: for name: %w", err)
	}
	return scanAdditions(rows)
}

func scanAdditions(rows *sql.Rows) ([]models.Addition, error) {
	defer rows.Close()
	var out []models.Addition
	for rows.Next() {
		var a models.Addition
		if err := rows.Scan(&a.ID, &a.Name, &a.Parent, &a.Path, &a.Promoted, &a.Checksum, &a.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}
