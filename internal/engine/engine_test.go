package engine

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/iliyamo/cabin-reservation/internal/model"
)

// Tests run against a frozen clock so calendar assertions stay stable.
var testNow = time.Date(2026, time.February, 1, 12, 0, 0, 0, time.UTC)

func d(t interface{ Fatalf(string, ...interface{}) }, s string) model.Date {
	date, err := model.ParseDate(s)
	if err != nil {
		t.Fatalf("bad test date %q: %v", s, err)
	}
	return date
}

// mockStore is a func-field read-only store.  Unset fields return empty
// results, or ErrNotFound for single-row lookups.
type mockStore struct {
	cabin    func(uint64) (*model.Cabin, error)
	stays    func(uint64) ([]Stay, error)
	blocked  func(uint64, model.Date, model.Date) ([]model.BlockedDate, error)
	daily    func(uint64, model.Date, model.Date) ([]model.DailyPrice, error)
	seasonal func(uint64) ([]model.SeasonalPrice, error)
	coupon   func(string) (*model.Coupon, error)
	res      func(string) (*model.Reservation, error)
}

func (m *mockStore) CabinByID(_ context.Context, id uint64) (*model.Cabin, error) {
	if m.cabin == nil {
		return nil, ErrNotFound
	}
	return m.cabin(id)
}

func (m *mockStore) ActiveStays(_ context.Context, cabinID uint64) ([]Stay, error) {
	if m.stays == nil {
		return nil, nil
	}
	return m.stays(cabinID)
}

func (m *mockStore) BlockedDates(_ context.Context, cabinID uint64, from, to model.Date) ([]model.BlockedDate, error) {
	if m.blocked == nil {
		return nil, nil
	}
	return m.blocked(cabinID, from, to)
}

func (m *mockStore) DailyPrices(_ context.Context, cabinID uint64, from, to model.Date) ([]model.DailyPrice, error) {
	if m.daily == nil {
		return nil, nil
	}
	return m.daily(cabinID, from, to)
}

func (m *mockStore) SeasonalPrices(_ context.Context, cabinID uint64) ([]model.SeasonalPrice, error) {
	if m.seasonal == nil {
		return nil, nil
	}
	return m.seasonal(cabinID)
}

func (m *mockStore) CouponByCode(_ context.Context, code string) (*model.Coupon, error) {
	if m.coupon == nil {
		return nil, ErrNotFound
	}
	return m.coupon(code)
}

func (m *mockStore) ReservationByID(_ context.Context, id string) (*model.Reservation, error) {
	if m.res == nil {
		return nil, ErrNotFound
	}
	return m.res(id)
}

// noTx is a Runner for engines that only exercise the read paths.
type noTx struct{}

func (noTx) InCabinTx(context.Context, uint64, func(TxStore) error) error {
	panic("unexpected transaction in read-only test")
}
func (noTx) InTx(context.Context, func(TxStore) error) error {
	panic("unexpected transaction in read-only test")
}

// newReadEngine builds an engine over a mockStore with the frozen clock.
func newReadEngine(s *mockStore) *Engine {
	e := New(s, noTx{})
	e.now = func() time.Time { return testNow }
	return e
}

// memStore is an in-memory TxStore and Runner.  A mutex serializes
// transactions, standing in for the per-cabin row lock, and failed
// transactions roll back to the pre-transaction snapshot.
type memStore struct {
	mu           sync.Mutex
	cabins       map[uint64]model.Cabin
	blocked      []model.BlockedDate
	daily        []model.DailyPrice
	seasonal     []model.SeasonalPrice
	coupons      map[string]*model.Coupon
	reservations map[string]*model.Reservation
	nextID       int
}

func newMemStore() *memStore {
	return &memStore{
		cabins:       make(map[uint64]model.Cabin),
		coupons:      make(map[string]*model.Coupon),
		reservations: make(map[string]*model.Reservation),
		nextID:       1,
	}
}

// newMemEngine builds an engine over a memStore with the frozen clock.
func newMemEngine(ms *memStore) *Engine {
	e := New(ms, ms)
	e.now = func() time.Time { return testNow }
	return e
}

func (m *memStore) addCoupon(c model.Coupon) { m.coupons[c.ID] = &c }

func (m *memStore) CabinByID(_ context.Context, id uint64) (*model.Cabin, error) {
	c, ok := m.cabins[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &c, nil
}

func (m *memStore) ActiveStays(_ context.Context, cabinID uint64) ([]Stay, error) {
	var stays []Stay
	for _, r := range m.reservations {
		if r.CabinID == cabinID && model.BlocksAvailability(r.Status) {
			stays = append(stays, Stay{ReservationID: r.ID, DateRange: r.Range()})
		}
	}
	return stays, nil
}

func (m *memStore) BlockedDates(_ context.Context, cabinID uint64, from, to model.Date) ([]model.BlockedDate, error) {
	var out []model.BlockedDate
	for _, b := range m.blocked {
		if b.CabinID != nil && *b.CabinID != cabinID {
			continue
		}
		if !b.Date.Before(from) && b.Date.Before(to) {
			out = append(out, b)
		}
	}
	return out, nil
}

func (m *memStore) DailyPrices(_ context.Context, cabinID uint64, from, to model.Date) ([]model.DailyPrice, error) {
	var out []model.DailyPrice
	for _, p := range m.daily {
		if p.CabinID != nil && *p.CabinID != cabinID {
			continue
		}
		if !p.Date.Before(from) && p.Date.Before(to) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *memStore) SeasonalPrices(_ context.Context, cabinID uint64) ([]model.SeasonalPrice, error) {
	var out []model.SeasonalPrice
	for _, p := range m.seasonal {
		if p.CabinID == cabinID && p.IsActive {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *memStore) CouponByCode(_ context.Context, code string) (*model.Coupon, error) {
	for _, c := range m.coupons {
		if strings.EqualFold(c.Code, code) {
			cp := *c
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (m *memStore) ReservationByID(_ context.Context, id string) (*model.Reservation, error) {
	r, ok := m.reservations[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *r
	return &cp, nil
}

func (m *memStore) InsertReservation(_ context.Context, r *model.Reservation) error {
	r.ID = fmt.Sprintf("res-%d", m.nextID)
	m.nextID++
	r.CreatedAt = testNow
	r.UpdatedAt = testNow
	cp := *r
	m.reservations[r.ID] = &cp
	return nil
}

func (m *memStore) RedeemCoupon(_ context.Context, couponID string) (bool, error) {
	c, ok := m.coupons[couponID]
	if !ok || !c.IsActive {
		return false, nil
	}
	if c.MaxUses != nil && c.UsedCount >= *c.MaxUses {
		return false, nil
	}
	c.UsedCount++
	return true, nil
}

func (m *memStore) ReservationForUpdate(ctx context.Context, id string) (*model.Reservation, error) {
	return m.ReservationByID(ctx, id)
}

func (m *memStore) UpdateReservation(_ context.Context, r *model.Reservation) error {
	if _, ok := m.reservations[r.ID]; !ok {
		return ErrNotFound
	}
	cp := *r
	cp.UpdatedAt = testNow
	m.reservations[r.ID] = &cp
	return nil
}

func (m *memStore) InCabinTx(ctx context.Context, _ uint64, fn func(TxStore) error) error {
	return m.InTx(ctx, fn)
}

func (m *memStore) InTx(_ context.Context, fn func(TxStore) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	snap := m.snapshot()
	if err := fn(m); err != nil {
		m.restore(snap)
		return err
	}
	return nil
}

type memSnapshot struct {
	coupons      map[string]model.Coupon
	reservations map[string]model.Reservation
	nextID       int
}

func (m *memStore) snapshot() memSnapshot {
	s := memSnapshot{
		coupons:      make(map[string]model.Coupon, len(m.coupons)),
		reservations: make(map[string]model.Reservation, len(m.reservations)),
		nextID:       m.nextID,
	}
	for id, c := range m.coupons {
		s.coupons[id] = *c
	}
	for id, r := range m.reservations {
		s.reservations[id] = *r
	}
	return s
}

func (m *memStore) restore(s memSnapshot) {
	m.coupons = make(map[string]*model.Coupon, len(s.coupons))
	for id, c := range s.coupons {
		cp := c
		m.coupons[id] = &cp
	}
	m.reservations = make(map[string]*model.Reservation, len(s.reservations))
	for id, r := range s.reservations {
		rp := r
		m.reservations[id] = &rp
	}
	m.nextID = s.nextID
}
