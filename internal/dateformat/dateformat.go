package dateformat

import (
	"fmt"
	"strings"
	"time"
)

const (
	displayLayout = "02/01/2006"
	isoLayout     = "2006-01-02"
)

// Date is a civil calendar date: year, month, day, no time-of-day and no
// attached format. All parsing and formatting happens at the edges through
// the functions below, so nothing downstream has to sniff strings.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// FromTime truncates a time.Time to its calendar day in the time's location.
func FromTime(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: m, Day: d}
}

// ParseDisplay parses the day-first display form DD/MM/YYYY.
func ParseDisplay(s string) (Date, error) {
	t, err := time.Parse(displayLayout, s)
	if err != nil {
		return Date{}, fmt.Errorf("parse display date %q: %w", s, err)
	}
	return FromTime(t), nil
}

// ParseISO parses the calendar-widget form YYYY-MM-DD.
func ParseISO(s string) (Date, error) {
	t, err := time.Parse(isoLayout, s)
	if err != nil {
		return Date{}, fmt.Errorf("parse iso date %q: %w", s, err)
	}
	return FromTime(t), nil
}

// Parse accepts either form. A slash means day-first display format,
// anything else is treated as ISO.
func Parse(s string) (Date, error) {
	if strings.Contains(s, "/") {
		return ParseDisplay(s)
	}
	return ParseISO(s)
}

func (d Date) Display() string {
	return fmt.Sprintf("%02d/%02d/%04d", d.Day, int(d.Month), d.Year)
}

func (d Date) ISO() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

func (d Date) IsZero() bool {
	return d == Date{}
}

// Before reports whether d falls on an earlier calendar day than o.
func (d Date) Before(o Date) bool {
	if d.Year != o.Year {
		return d.Year < o.Year
	}
	if d.Month != o.Month {
		return d.Month < o.Month
	}
	return d.Day < o.Day
}

// ToDisplay normalizes either form to DD/MM/YYYY for rendering. Unparseable
// input comes back unchanged: display code prefers a raw string over an
// error page.
func ToDisplay(s string) string {
	if strings.Contains(s, "/") {
		return s
	}
	d, err := ParseISO(s)
	if err != nil {
		return s
	}
	return d.Display()
}

// ToCalendar converts DD/MM/YYYY to YYYY-MM-DD for the calendar widget.
// Input without a slash is assumed already ISO and passed through; input
// that fails to parse is returned unchanged, same soft-fail as ToDisplay.
func ToCalendar(s string) string {
	if !strings.Contains(s, "/") {
		return s
	}
	d, err := ParseDisplay(s)
	if err != nil {
		return s
	}
	return d.ISO()
}

// SameDay compares two dates at day granularity, each in either form.
// Unparseable input never matches anything.
func SameDay(a, b string) bool {
	da, err := Parse(a)
	if err != nil {
		return false
	}
	db, err := Parse(b)
	if err != nil {
		return false
	}
	return da == db
}
