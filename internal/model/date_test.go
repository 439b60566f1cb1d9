package model

import (
	"encoding/json"
	"testing"
	"time"
)

func mustDate(t *testing.T, s string) Date {
	t.Helper()
	d, err := ParseDate(s)
	if err != nil {
		t.Fatalf("ParseDate(%q): %v", s, err)
	}
	return d
}

func TestParseDateRoundTrip(t *testing.T) {
	for _, s := range []string{"2026-03-10", "2026-01-01", "2026-12-31", "2024-02-29"} {
		d := mustDate(t, s)
		if got := d.String(); got != s {
			t.Errorf("ParseDate(%q).String() = %q", s, got)
		}
	}
	for _, s := range []string{"", "2026-13-01", "2026-02-30", "10-03-2026", "2026/03/10"} {
		if _, err := ParseDate(s); err == nil {
			t.Errorf("ParseDate(%q) succeeded", s)
		}
	}
}

func TestDateOrdering(t *testing.T) {
	a := mustDate(t, "2026-03-10")
	b := mustDate(t, "2026-03-11")
	c := mustDate(t, "2026-04-01")
	y := mustDate(t, "2027-01-01")

	if !a.Before(b) || !b.Before(c) || !c.Before(y) {
		t.Error("Before ordering broken")
	}
	if b.Before(a) || a.Before(a) {
		t.Error("Before not strict")
	}
	if !b.After(a) || a.After(a) {
		t.Error("After inconsistent with Before")
	}
}

func TestAddDays(t *testing.T) {
	cases := []struct {
		start string
		n     int
		want  string
	}{
		{"2026-03-10", 1, "2026-03-11"},
		{"2026-03-31", 1, "2026-04-01"},
		{"2026-12-31", 1, "2027-01-01"},
		{"2026-03-01", -1, "2026-02-28"},
		{"2024-03-01", -1, "2024-02-29"},
		{"2026-03-10", 0, "2026-03-10"},
	}
	for _, tc := range cases {
		if got := mustDate(t, tc.start).AddDays(tc.n); got.String() != tc.want {
			t.Errorf("%s + %d days = %s, want %s", tc.start, tc.n, got, tc.want)
		}
	}
}

func TestDaysBetween(t *testing.T) {
	a := mustDate(t, "2026-02-27")
	b := mustDate(t, "2026-03-02")
	if got := DaysBetween(a, b); got != 3 {
		t.Errorf("DaysBetween = %d, want 3", got)
	}
	if got := DaysBetween(b, a); got != -3 {
		t.Errorf("reversed DaysBetween = %d, want -3", got)
	}
	if got := DaysBetween(a, a); got != 0 {
		t.Errorf("same-day DaysBetween = %d, want 0", got)
	}
}

func TestDateJSON(t *testing.T) {
	d := mustDate(t, "2026-03-10")
	b, err := json.Marshal(d)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if string(b) != `"2026-03-10"` {
		t.Errorf("Marshal = %s", b)
	}

	var back Date
	if err := json.Unmarshal(b, &back); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if back != d {
		t.Errorf("round trip = %v, want %v", back, d)
	}
	if err := json.Unmarshal([]byte(`"not-a-date"`), &back); err == nil {
		t.Error("Unmarshal accepted garbage")
	}
}

func TestDateScan(t *testing.T) {
	want := mustDate(t, "2026-03-10")

	var d Date
	if err := d.Scan(time.Date(2026, 3, 10, 23, 59, 0, 0, time.UTC)); err != nil || d != want {
		t.Errorf("Scan(time.Time) = %v, %v", d, err)
	}
	d = Date{}
	if err := d.Scan([]byte("2026-03-10")); err != nil || d != want {
		t.Errorf("Scan([]byte) = %v, %v", d, err)
	}
	d = Date{}
	if err := d.Scan("2026-03-10"); err != nil || d != want {
		t.Errorf("Scan(string) = %v, %v", d, err)
	}
	if err := d.Scan(nil); err != nil || !d.IsZero() {
		t.Errorf("Scan(nil) = %v, %v", d, err)
	}
	if err := d.Scan(42); err == nil {
		t.Error("Scan(int) succeeded")
	}

	v, err := want.Value()
	if err != nil || v != "2026-03-10" {
		t.Errorf("Value = %v, %v", v, err)
	}
}

func TestDateRangeOverlaps(t *testing.T) {
	base := DateRange{CheckIn: mustDate(t, "2026-03-10"), CheckOut: mustDate(t, "2026-03-15")}

	cases := []struct {
		name     string
		checkIn  string
		checkOut string
		want     bool
	}{
		{"identical", "2026-03-10", "2026-03-15", true},
		{"inside", "2026-03-11", "2026-03-13", true},
		{"covers", "2026-03-08", "2026-03-20", true},
		{"across check-in", "2026-03-08", "2026-03-11", true},
		{"across check-out", "2026-03-14", "2026-03-18", true},
		{"ends at check-in", "2026-03-05", "2026-03-10", false},
		{"starts at check-out", "2026-03-15", "2026-03-18", false},
		{"disjoint before", "2026-03-01", "2026-03-05", false},
		{"disjoint after", "2026-03-20", "2026-03-25", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			other := DateRange{CheckIn: mustDate(t, tc.checkIn), CheckOut: mustDate(t, tc.checkOut)}
			if got := base.Overlaps(other); got != tc.want {
				t.Errorf("Overlaps = %v, want %v", got, tc.want)
			}
			if got := other.Overlaps(base); got != tc.want {
				t.Errorf("Overlaps not symmetric: %v, want %v", got, tc.want)
			}
		})
	}
}

func TestDateRangeContains(t *testing.T) {
	r := DateRange{CheckIn: mustDate(t, "2026-03-10"), CheckOut: mustDate(t, "2026-03-12")}

	if !r.Contains(mustDate(t, "2026-03-10")) || !r.Contains(mustDate(t, "2026-03-11")) {
		t.Error("occupied nights not contained")
	}
	if r.Contains(mustDate(t, "2026-03-12")) {
		t.Error("check-out day contained")
	}
	if r.Contains(mustDate(t, "2026-03-09")) {
		t.Error("day before check-in contained")
	}
}

func TestDateRangeExpandNights(t *testing.T) {
	r := DateRange{CheckIn: mustDate(t, "2026-03-30"), CheckOut: mustDate(t, "2026-04-02")}
	nights := r.ExpandNights()
	want := []string{"2026-03-30", "2026-03-31", "2026-04-01"}
	if len(nights) != len(want) {
		t.Fatalf("nights = %v, want %v", nights, want)
	}
	for i, s := range want {
		if nights[i].String() != s {
			t.Errorf("night %d = %s, want %s", i, nights[i], s)
		}
	}
	if r.Nights() != 3 {
		t.Errorf("Nights = %d, want 3", r.Nights())
	}

	empty := DateRange{CheckIn: mustDate(t, "2026-03-10"), CheckOut: mustDate(t, "2026-03-10")}
	if got := empty.ExpandNights(); got != nil {
		t.Errorf("zero-night range expanded to %v", got)
	}
	inverted := DateRange{CheckIn: mustDate(t, "2026-03-12"), CheckOut: mustDate(t, "2026-03-10")}
	if got := inverted.ExpandNights(); got != nil {
		t.Errorf("inverted range expanded to %v", got)
	}
}
