package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/cartelera/screenings/internal/model"
)

// WorkRow is the catalog row exchanged with the registry at startup. The
// runtime travels as the strict HH:mm text the core validates; encoding is
// this collaborator's concern, not the core's.
type WorkRow struct {
	Title       string
	Genre       string
	Synopsis    string
	RuntimeText string
}

// WorkRepo persists the catalog of screenable works.
type WorkRepo struct {
	db *sql.DB
}

// NewWorkRepo constructs a WorkRepo with the given DB handle.
func NewWorkRepo(db *sql.DB) *WorkRepo {
	return &WorkRepo{db: db}
}

// SaveWork upserts a work. The catalog is overwritten on every intake so the
// stored state always matches the registry.
func (r *WorkRepo) SaveWork(ctx context.Context, w *model.ScreenableWork) error {
	const q = `INSERT INTO works (title, genre, synopsis, runtime_minutes)
               VALUES (?, ?, ?, ?)
               ON DUPLICATE KEY UPDATE
                   genre = VALUES(genre),
                   synopsis = VALUES(synopsis),
                   runtime_minutes = VALUES(runtime_minutes)`
	_, err := r.db.ExecContext(ctx, q, w.Title, w.Genre, w.Synopsis, int(w.Runtime/time.Minute))
	return err
}

// LoadAll returns every catalog row ordered by title. When the table is
// empty it returns an empty slice and nil error.
func (r *WorkRepo) LoadAll(ctx context.Context) ([]WorkRow, error) {
	const q = `SELECT title, genre, synopsis, runtime_minutes FROM works ORDER BY title ASC`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var result []WorkRow
	for rows.Next() {
		var (
			row     WorkRow
			minutes int
		)
		if err := rows.Scan(&row.Title, &row.Genre, &row.Synopsis, &minutes); err != nil {
			return nil, err
		}
		row.RuntimeText = fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
		result = append(result, row)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
