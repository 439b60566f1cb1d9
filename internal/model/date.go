package model

import (
	"database/sql/driver"
	"fmt"
	"time"
)

// DateLayout is the wire and storage format for calendar dates.
const DateLayout = "2006-01-02"

// Date is a civil calendar date without a time of day or a zone.  The
// booking engine exchanges dates as YYYY-MM-DD strings interpreted as
// local calendar dates; keeping them out of time.Time avoids any UTC
// normalization that could shift a date by one day.
type Date struct {
	Year  int        // four digit year
	Month time.Month // month 1..12
	Day   int        // day of month 1..31
}

// DateOf truncates a time.Time to the calendar date in its location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: m, Day: d}
}

// ParseDate parses a YYYY-MM-DD string into a Date.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return Date{}, err
	}
	return DateOf(t), nil
}

// String formats the date as YYYY-MM-DD.
func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

// IsZero reports whether the date is the zero value.
func (d Date) IsZero() bool { return d == Date{} }

// Before reports whether d is earlier than o.
func (d Date) Before(o Date) bool {
	if d.Year != o.Year {
		return d.Year < o.Year
	}
	if d.Month != o.Month {
		return d.Month < o.Month
	}
	return d.Day < o.Day
}

// After reports whether d is later than o.
func (d Date) After(o Date) bool { return o.Before(d) }

// AddDays returns the date n days after d.  Negative n moves backwards.
// Out-of-range values are normalized by the time package.
func (d Date) AddDays(n int) Date {
	return DateOf(d.utc().AddDate(0, 0, n))
}

// DaysBetween returns b minus a in whole days.
func DaysBetween(a, b Date) int {
	return int(b.utc().Sub(a.utc()) / (24 * time.Hour))
}

// utc pins the date to midnight UTC for arithmetic only; the result is
// never exposed as an instant.
func (d Date) utc() time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
}

// MarshalJSON encodes the date as a quoted YYYY-MM-DD string.
func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.String() + `"`), nil
}

// UnmarshalJSON decodes a quoted YYYY-MM-DD string.
func (d *Date) UnmarshalJSON(b []byte) error {
	if len(b) < 2 || b[0] != '"' || b[len(b)-1] != '"' {
		return fmt.Errorf("invalid date %q", string(b))
	}
	parsed, err := ParseDate(string(b[1 : len(b)-1]))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Value implements driver.Valuer so dates are stored as DATE columns.
func (d Date) Value() (driver.Value, error) { return d.String(), nil }

// Scan implements sql.Scanner.  MySQL returns DATE columns as []byte,
// string, or time.Time depending on the parseTime DSN flag.
func (d *Date) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		*d = Date{}
		return nil
	case time.Time:
		*d = DateOf(v)
		return nil
	case []byte:
		parsed, err := ParseDate(string(v))
		if err != nil {
			return err
		}
		*d = parsed
		return nil
	case string:
		parsed, err := ParseDate(v)
		if err != nil {
			return err
		}
		*d = parsed
		return nil
	}
	return fmt.Errorf("cannot scan %T into Date", src)
}

// DateRange is a half-open interval [CheckIn, CheckOut): the check-in
// night is occupied, the check-out day is free.  This is the single
// modeling convention for stays across the engine and its clients.
type DateRange struct {
	CheckIn  Date `json:"check_in_date"`
	CheckOut Date `json:"check_out_date"`
}

// Nights returns the number of nights covered by the range.
func (r DateRange) Nights() int { return DaysBetween(r.CheckIn, r.CheckOut) }

// Contains reports whether the night of the given date falls inside the
// range.  The check-out date itself is not contained.
func (r DateRange) Contains(d Date) bool {
	return !d.Before(r.CheckIn) && d.Before(r.CheckOut)
}

// Overlaps reports whether two half-open ranges share at least one night.
// Back-to-back stays (one ending the day the other starts) do not overlap.
func (r DateRange) Overlaps(o DateRange) bool {
	return r.CheckIn.Before(o.CheckOut) && o.CheckIn.Before(r.CheckOut)
}

// ExpandNights expands the range into its occupied nights.  UI calendars and the
// availability index both use this helper so a boundary day is never
// classified differently by the two.
func (r DateRange) ExpandNights() []Date {
	n := r.Nights()
	if n <= 0 {
		return nil
	}
	out := make([]Date, 0, n)
	for d := r.CheckIn; d.Before(r.CheckOut); d = d.AddDays(1) {
		out = append(out, d)
	}
	return out
}
