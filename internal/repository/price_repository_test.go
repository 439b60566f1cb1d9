package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/iliyamo/cabin-reservation/internal/model"
)

func newMockRepo(t *testing.T) (*PriceRepo, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewPriceRepo(db), mock
}

func testDate(t *testing.T, s string) model.Date {
	t.Helper()
	d, err := model.ParseDate(s)
	if err != nil {
		t.Fatalf("bad test date %q: %v", s, err)
	}
	return d
}

func TestUpdateSeasonalReturnsStoredScope(t *testing.T) {
	repo, mock := newMockRepo(t)
	created := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	updated := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectExec("UPDATE seasonal_prices").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("SELECT cabin_id, created_at, updated_at FROM seasonal_prices").
		WithArgs("sp-1").
		WillReturnRows(sqlmock.NewRows([]string{"cabin_id", "created_at", "updated_at"}).
			AddRow(uint64(7), created, updated))

	p := model.SeasonalPrice{
		ID:        "sp-1",
		StartDate: testDate(t, "2026-06-01"),
		EndDate:   testDate(t, "2026-08-31"),
		PriceIRR:  2_000_000,
		PriceUSD:  40,
		IsActive:  true,
	}
	if err := repo.UpdateSeasonal(context.Background(), &p); err != nil {
		t.Fatalf("UpdateSeasonal: %v", err)
	}
	if p.CabinID != 7 {
		t.Errorf("cabin id = %d, want the stored row's 7", p.CabinID)
	}
	if !p.CreatedAt.Equal(created) || !p.UpdatedAt.Equal(updated) {
		t.Errorf("timestamps = %v / %v", p.CreatedAt, p.UpdatedAt)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestUpdateSeasonalMissingRow(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectExec("UPDATE seasonal_prices").
		WillReturnResult(sqlmock.NewResult(0, 0))

	p := model.SeasonalPrice{
		ID:        "sp-missing",
		StartDate: testDate(t, "2026-06-01"),
		EndDate:   testDate(t, "2026-08-31"),
	}
	if err := repo.UpdateSeasonal(context.Background(), &p); err != sql.ErrNoRows {
		t.Fatalf("err = %v, want sql.ErrNoRows", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestUpsertDailyGlobalReplacesExistingPin(t *testing.T) {
	repo, mock := newMockRepo(t)
	date := testDate(t, "2026-06-10")

	// A global pin for the date exists: it is updated in place, never
	// inserted again, because the unique index does not cover NULL
	// cabin_id rows.
	mock.ExpectQuery("SELECT id FROM daily_prices WHERE cabin_id IS NULL").
		WithArgs(date).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("dp-global"))
	mock.ExpectExec("UPDATE daily_prices").
		WithArgs(int64(3_000_000), float64(60), nil, false, "dp-global").
		WillReturnResult(sqlmock.NewResult(0, 1))

	p := model.DailyPrice{Date: date, PriceIRR: 3_000_000, PriceUSD: 60}
	if err := repo.UpsertDaily(context.Background(), &p); err != nil {
		t.Fatalf("UpsertDaily: %v", err)
	}
	if p.ID != "dp-global" {
		t.Errorf("id = %q, want the existing row's dp-global", p.ID)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestUpsertDailyGlobalInsertsWhenAbsent(t *testing.T) {
	repo, mock := newMockRepo(t)
	date := testDate(t, "2026-06-10")

	mock.ExpectQuery("SELECT id FROM daily_prices WHERE cabin_id IS NULL").
		WithArgs(date).
		WillReturnError(sql.ErrNoRows)
	mock.ExpectExec("INSERT INTO daily_prices").
		WillReturnResult(sqlmock.NewResult(0, 1))

	p := model.DailyPrice{Date: date, PriceIRR: 3_000_000, PriceUSD: 60}
	if err := repo.UpsertDaily(context.Background(), &p); err != nil {
		t.Fatalf("UpsertDaily: %v", err)
	}
	if p.ID == "" {
		t.Error("inserted pin has no generated id")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestUpsertDailyCabinScopedUsesUniqueKey(t *testing.T) {
	repo, mock := newMockRepo(t)
	cabinID := uint64(3)

	// Cabin-scoped pins are covered by the (cabin_id, date) unique
	// index, so a single ON DUPLICATE KEY statement suffices.
	mock.ExpectExec("INSERT INTO daily_prices").
		WillReturnResult(sqlmock.NewResult(0, 1))

	p := model.DailyPrice{CabinID: &cabinID, Date: testDate(t, "2026-06-10"), PriceIRR: 2_000_000, PriceUSD: 40}
	if err := repo.UpsertDaily(context.Background(), &p); err != nil {
		t.Fatalf("UpsertDaily: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}
