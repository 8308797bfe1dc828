// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

// Package calendar provides civil dates and the date and timezone conversions used by the
// forecast pipeline.
package calendar

import (
	"errors"
	"fmt"
	"time"

	// Embed the IANA timezone database so vendor zones resolve on hosts without zoneinfo
	_ "time/tzdata"
)

// CacheLayout is the date layout of the persisted forecast cache (yyyy/MM/dd).
const CacheLayout = "2006/01/02"

// ErrFormat is returned if a date string does not match the expected layout.
var ErrFormat = errors.New("invalid date format")

// Date is a calendar date without a time-of-day or timezone component.
type Date struct {
	year  int
	month time.Month
	day   int
}

// New returns the Date for the given year, month and day. Out-of-range values are normalized
// the same way time.Date normalizes them.
func New(year int, month time.Month, day int) Date {
	return FromTime(time.Date(year, month, day, 0, 0, 0, 0, time.UTC))
}

// FromTime returns the calendar date of t in t's own location.
func FromTime(t time.Time) Date {
	y, m, d := t.Date()
	return Date{year: y, month: m, day: d}
}

// FromEpoch converts a UTC epoch timestamp in seconds to the calendar date in the given location.
// A nil location is treated as UTC.
func FromEpoch(epoch int64, loc *time.Location) Date {
	if loc == nil {
		loc = time.UTC
	}
	return FromTime(time.Unix(epoch, 0).In(loc))
}

// Today returns the current calendar date in the given location.
func Today(loc *time.Location) Date {
	if loc == nil {
		loc = time.UTC
	}
	return FromTime(time.Now().In(loc))
}

// Format renders the date with the given Go time layout.
func Format(d Date, layout string) string {
	return d.Time(time.UTC).Format(layout)
}

// Parse parses a date string with the given Go time layout. The parse is strict: the input
// has to format back to exactly the same string, so time-of-day components or padding
// differences are rejected.
func Parse(value, layout string) (Date, error) {
	t, err := time.ParseInLocation(layout, value, time.UTC)
	if err != nil {
		return Date{}, fmt.Errorf("%w: %q: %w", ErrFormat, value, err)
	}
	if t.Format(layout) != value {
		return Date{}, fmt.Errorf("%w: %q does not round-trip with layout %q", ErrFormat, value, layout)
	}
	if t.Hour() != 0 || t.Minute() != 0 || t.Second() != 0 || t.Nanosecond() != 0 {
		return Date{}, fmt.Errorf("%w: %q carries a time of day", ErrFormat, value)
	}
	return FromTime(t), nil
}

func (d Date) Year() int          { return d.year }
func (d Date) Month() time.Month  { return d.month }
func (d Date) Day() int           { return d.day }
func (d Date) IsZero() bool       { return d == Date{} }
func (d Date) Equal(o Date) bool  { return d == o }
func (d Date) Before(o Date) bool { return d.compare(o) < 0 }
func (d Date) After(o Date) bool  { return d.compare(o) > 0 }

// Time returns midnight of the date in the given location.
func (d Date) Time(loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	return time.Date(d.year, d.month, d.day, 0, 0, 0, 0, loc)
}

// Weekday returns the day of the week of the date.
func (d Date) Weekday() time.Weekday {
	return d.Time(time.UTC).Weekday()
}

// AddDays returns the date n days after d.
func (d Date) AddDays(n int) Date {
	return New(d.year, d.month, d.day+n)
}

// String returns the ISO 8601 representation of the date.
func (d Date) String() string {
	return Format(d, time.DateOnly)
}

func (d Date) compare(o Date) int {
	switch {
	case d.year != o.year:
		return d.year - o.year
	case d.month != o.month:
		return int(d.month) - int(o.month)
	default:
		return d.day - o.day
	}
}
