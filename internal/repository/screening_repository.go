package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/go-sql-driver/mysql"

	"github.com/cartelera/screenings/internal/schedule"
)

// ScreeningRepo appends the registry's screening snapshot rows and replays
// them at startup. Screenings are append-only history; there is no update or
// delete path.
type ScreeningRepo struct {
	db *sql.DB
}

// NewScreeningRepo constructs a ScreeningRepo with the given DB handle.
func NewScreeningRepo(db *sql.DB) *ScreeningRepo {
	return &ScreeningRepo{db: db}
}

// SaveScreening appends one snapshot row. A duplicate identifier fails with
// ErrScreeningExists.
func (r *ScreeningRepo) SaveScreening(ctx context.Context, rec schedule.ScreeningRecord) error {
	const q = `INSERT INTO screenings (id, room_id, work_title, starts_at) VALUES (?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, q, rec.ScreeningID, rec.RoomID, rec.WorkTitle, rec.StartsAt.UTC())
	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) && mysqlErr.Number == 1062 { // duplicate entry
		return fmt.Errorf("%w: %s", ErrScreeningExists, rec.ScreeningID)
	}
	return err
}

// LoadAll returns the stored snapshot in the order the rows were appended,
// which is the registry's insertion order.
func (r *ScreeningRepo) LoadAll(ctx context.Context) ([]schedule.ScreeningRecord, error) {
	const q = `SELECT id, room_id, work_title, starts_at FROM screenings ORDER BY seq ASC`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var result []schedule.ScreeningRecord
	for rows.Next() {
		var rec schedule.ScreeningRecord
		if err := rows.Scan(&rec.ScreeningID, &rec.RoomID, &rec.WorkTitle, &rec.StartsAt); err != nil {
			return nil, err
		}
		result = append(result, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
