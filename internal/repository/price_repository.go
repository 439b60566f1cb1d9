package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	"github.com/iliyamo/cabin-reservation/internal/model"
)

// PriceRepo manages the `seasonal_prices` and `daily_prices` tables for
// the admin surface.  The booking engine reads prices through the Store
// so a rate change is picked up by the very next quote.
type PriceRepo struct{ DB *sql.DB }

func NewPriceRepo(db *sql.DB) *PriceRepo { return &PriceRepo{DB: db} }

// ErrInvertedRange is returned when a seasonal range ends before it starts.
var ErrInvertedRange = errors.New("end date before start date")

// CreateSeasonal inserts a seasonal range and fills in the generated ID.
func (r *PriceRepo) CreateSeasonal(ctx context.Context, p *model.SeasonalPrice) error {
	if p.EndDate.Before(p.StartDate) {
		return ErrInvertedRange
	}
	p.ID = uuid.NewString()
	_, err := r.DB.ExecContext(ctx,
		`INSERT INTO seasonal_prices
         (id, cabin_id, season_name, season_type, start_date, end_date, price_irr, price_usd, is_active)
         VALUES (?,?,?,?,?,?,?,?,?)`,
		p.ID, p.CabinID, p.SeasonName, p.SeasonType, p.StartDate, p.EndDate,
		p.PriceIRR, p.PriceUSD, p.IsActive)
	return err
}

// ListSeasonal returns every seasonal range for a cabin, active or not,
// newest first so the admin sees which range wins an overlap.
func (r *PriceRepo) ListSeasonal(ctx context.Context, cabinID uint64) ([]model.SeasonalPrice, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT id, cabin_id, season_name, season_type, start_date, end_date,
                price_irr, price_usd, is_active, created_at, updated_at
         FROM seasonal_prices WHERE cabin_id = ?
         ORDER BY created_at DESC, id DESC`, cabinID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	prices := make([]model.SeasonalPrice, 0)
	for rows.Next() {
		var p model.SeasonalPrice
		if err := rows.Scan(&p.ID, &p.CabinID, &p.SeasonName, &p.SeasonType, &p.StartDate, &p.EndDate,
			&p.PriceIRR, &p.PriceUSD, &p.IsActive, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		prices = append(prices, p)
	}
	return prices, rows.Err()
}

// UpdateSeasonal rewrites a seasonal range.  The route carries only the
// price id, so the stored cabin scope and timestamps are read back into p
// for the response.
func (r *PriceRepo) UpdateSeasonal(ctx context.Context, p *model.SeasonalPrice) error {
	if p.EndDate.Before(p.StartDate) {
		return ErrInvertedRange
	}
	res, err := r.DB.ExecContext(ctx,
		`UPDATE seasonal_prices
         SET season_name = ?, season_type = ?, start_date = ?, end_date = ?,
             price_irr = ?, price_usd = ?, is_active = ?, updated_at = UTC_TIMESTAMP()
         WHERE id = ?`,
		p.SeasonName, p.SeasonType, p.StartDate, p.EndDate,
		p.PriceIRR, p.PriceUSD, p.IsActive, p.ID)
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
	return r.DB.QueryRowContext(ctx,
		`SELECT cabin_id, created_at, updated_at FROM seasonal_prices WHERE id = ?`, p.ID).
		Scan(&p.CabinID, &p.CreatedAt, &p.UpdatedAt)
}

// DeleteSeasonal removes a seasonal range.
func (r *PriceRepo) DeleteSeasonal(ctx context.Context, id string) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM seasonal_prices WHERE id = ?`, id)
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

// UpsertDaily pins the price of one date, replacing an existing pin for
// the same cabin and date.  A nil CabinID pins the date for every cabin.
// The unique index on (cabin_id, date) does not catch duplicate global
// rows because MySQL treats NULL values as distinct, so those go through
// an explicit update-then-insert instead of ON DUPLICATE KEY.
func (r *PriceRepo) UpsertDaily(ctx context.Context, p *model.DailyPrice) error {
	if p.CabinID == nil {
		var existing string
		err := r.DB.QueryRowContext(ctx,
			`SELECT id FROM daily_prices WHERE cabin_id IS NULL AND date = ?`, p.Date).
			Scan(&existing)
		switch {
		case err == nil:
			p.ID = existing
			_, err = r.DB.ExecContext(ctx,
				`UPDATE daily_prices
                 SET price_irr = ?, price_usd = ?, reason = ?, is_blocked = ?
                 WHERE id = ?`,
				p.PriceIRR, p.PriceUSD, p.Reason, p.IsBlocked, existing)
			return err
		case err != sql.ErrNoRows:
			return err
		}
	}
	p.ID = uuid.NewString()
	_, err := r.DB.ExecContext(ctx,
		`INSERT INTO daily_prices (id, cabin_id, date, price_irr, price_usd, reason, is_blocked)
         VALUES (?,?,?,?,?,?,?)
         ON DUPLICATE KEY UPDATE
             price_irr = VALUES(price_irr), price_usd = VALUES(price_usd),
             reason = VALUES(reason), is_blocked = VALUES(is_blocked)`,
		p.ID, p.CabinID, p.Date, p.PriceIRR, p.PriceUSD, p.Reason, p.IsBlocked)
	return err
}

// ListDaily returns daily pins for a cabin (plus global pins) with dates
// in [from, to).
func (r *PriceRepo) ListDaily(ctx context.Context, cabinID uint64, from, to model.Date) ([]model.DailyPrice, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT id, cabin_id, date, price_irr, price_usd, reason, is_blocked, created_at
         FROM daily_prices
         WHERE (cabin_id = ? OR cabin_id IS NULL) AND date >= ? AND date < ?
         ORDER BY date`, cabinID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	prices := make([]model.DailyPrice, 0)
	for rows.Next() {
		var p model.DailyPrice
		var cab sql.NullInt64
		var reason sql.NullString
		if err := rows.Scan(&p.ID, &cab, &p.Date, &p.PriceIRR, &p.PriceUSD, &reason, &p.IsBlocked, &p.CreatedAt); err != nil {
			return nil, err
		}
		if cab.Valid {
			id := uint64(cab.Int64)
			p.CabinID = &id
		}
		if reason.Valid {
			v := reason.String
			p.Reason = &v
		}
		prices = append(prices, p)
	}
	return prices, rows.Err()
}

// DeleteDaily removes one daily pin.
func (r *PriceRepo) DeleteDaily(ctx context.Context, id string) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM daily_prices WHERE id = ?`, id)
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
