package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/iliyamo/cabin-reservation/internal/model"
)

// CabinRepo manages the `cabins` table.  The booking engine reads
// cabins through the Store; this repo backs the browse endpoints and
// the admin CRUD surface.
type CabinRepo struct{ DB *sql.DB }

func NewCabinRepo(db *sql.DB) *CabinRepo { return &CabinRepo{DB: db} }

var ErrSlugExists = errors.New("slug already exists")

const cabinColumns = `id, name, slug, capacity, base_price_irr, base_price_usd,
       is_available, sort_order, created_at, updated_at`

// List returns cabins ordered for display.  When onlyAvailable is set,
// cabins switched off by an admin are omitted.
func (r *CabinRepo) List(ctx context.Context, onlyAvailable bool) ([]model.Cabin, error) {
	sel := `SELECT ` + cabinColumns + ` FROM cabins`
	if onlyAvailable {
		sel += ` WHERE is_available = 1`
	}
	sel += ` ORDER BY sort_order, id`
	rows, err := r.DB.QueryContext(ctx, sel)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	cabins := make([]model.Cabin, 0)
	for rows.Next() {
		var c model.Cabin
		if err := rows.Scan(&c.ID, &c.Name, &c.Slug, &c.Capacity, &c.BasePriceIRR, &c.BasePriceUSD,
			&c.IsAvailable, &c.SortOrder, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		cabins = append(cabins, c)
	}
	return cabins, rows.Err()
}

// GetByID fetches one cabin.
func (r *CabinRepo) GetByID(ctx context.Context, id uint64) (model.Cabin, error) {
	var c model.Cabin
	err := r.DB.QueryRowContext(ctx,
		`SELECT `+cabinColumns+` FROM cabins WHERE id = ? LIMIT 1`, id).
		Scan(&c.ID, &c.Name, &c.Slug, &c.Capacity, &c.BasePriceIRR, &c.BasePriceUSD,
			&c.IsAvailable, &c.SortOrder, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}

// GetBySlug fetches one cabin by its URL slug.
func (r *CabinRepo) GetBySlug(ctx context.Context, slug string) (model.Cabin, error) {
	var c model.Cabin
	err := r.DB.QueryRowContext(ctx,
		`SELECT `+cabinColumns+` FROM cabins WHERE slug = ? LIMIT 1`, strings.TrimSpace(slug)).
		Scan(&c.ID, &c.Name, &c.Slug, &c.Capacity, &c.BasePriceIRR, &c.BasePriceUSD,
			&c.IsAvailable, &c.SortOrder, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}

// Create inserts a cabin and returns its ID.
func (r *CabinRepo) Create(ctx context.Context, c *model.Cabin) (uint64, error) {
	res, err := r.DB.ExecContext(ctx,
		`INSERT INTO cabins (name, slug, capacity, base_price_irr, base_price_usd, is_available, sort_order)
         VALUES (?,?,?,?,?,?,?)`,
		c.Name, c.Slug, c.Capacity, c.BasePriceIRR, c.BasePriceUSD, c.IsAvailable, c.SortOrder)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return 0, ErrSlugExists
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// Update rewrites the mutable cabin fields.
func (r *CabinRepo) Update(ctx context.Context, c *model.Cabin) error {
	res, err := r.DB.ExecContext(ctx,
		`UPDATE cabins
         SET name = ?, slug = ?, capacity = ?, base_price_irr = ?, base_price_usd = ?,
             is_available = ?, sort_order = ?, updated_at = UTC_TIMESTAMP()
         WHERE id = ?`,
		c.Name, c.Slug, c.Capacity, c.BasePriceIRR, c.BasePriceUSD,
		c.IsAvailable, c.SortOrder, c.ID)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return ErrSlugExists
		}
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

// SetAvailability flips a cabin in or out of the bookable pool without
// touching its other fields.
func (r *CabinRepo) SetAvailability(ctx context.Context, id uint64, available bool) error {
	res, err := r.DB.ExecContext(ctx,
		`UPDATE cabins SET is_available = ?, updated_at = UTC_TIMESTAMP() WHERE id = ?`,
		available, id)
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

// Delete removes a cabin unless reservations reference it.
func (r *CabinRepo) Delete(ctx context.Context, id uint64) error {
	var count int
	err := r.DB.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM reservations WHERE cabin_id = ?`, id).Scan(&count)
	if err != nil {
		return err
	}
	if count > 0 {
		return ErrConflict
	}
	res, err := r.DB.ExecContext(ctx, `DELETE FROM cabins WHERE id = ?`, id)
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
