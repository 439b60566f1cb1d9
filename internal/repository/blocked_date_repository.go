package repository

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/iliyamo/cabin-reservation/internal/model"
)

// BlockedDateRepo manages the `blocked_dates` table.
type BlockedDateRepo struct{ DB *sql.DB }

func NewBlockedDateRepo(db *sql.DB) *BlockedDateRepo { return &BlockedDateRepo{DB: db} }

// Create blocks one date, for one cabin or for all of them, and fills
// in the generated ID.
func (r *BlockedDateRepo) Create(ctx context.Context, b *model.BlockedDate) error {
	b.ID = uuid.NewString()
	_, err := r.DB.ExecContext(ctx,
		`INSERT INTO blocked_dates (id, date, cabin_id, reason, created_by) VALUES (?,?,?,?,?)`,
		b.ID, b.Date, b.CabinID, b.Reason, b.CreatedBy)
	return err
}

// List returns blocks with dates in [from, to) across all cabins.
func (r *BlockedDateRepo) List(ctx context.Context, from, to model.Date) ([]model.BlockedDate, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT id, date, cabin_id, reason, created_at, created_by
         FROM blocked_dates WHERE date >= ? AND date < ? ORDER BY date`, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	blocks := make([]model.BlockedDate, 0)
	for rows.Next() {
		var b model.BlockedDate
		var cab sql.NullInt64
		var reason, createdBy sql.NullString
		if err := rows.Scan(&b.ID, &b.Date, &cab, &reason, &b.CreatedAt, &createdBy); err != nil {
			return nil, err
		}
		if cab.Valid {
			id := uint64(cab.Int64)
			b.CabinID = &id
		}
		if reason.Valid {
			v := reason.String
			b.Reason = &v
		}
		if createdBy.Valid {
			v := createdBy.String
			b.CreatedBy = &v
		}
		blocks = append(blocks, b)
	}
	return blocks, rows.Err()
}

// Delete unblocks a date.
func (r *BlockedDateRepo) Delete(ctx context.Context, id string) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM blocked_dates WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
