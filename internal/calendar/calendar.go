// Package calendar implements Ethiopian calendar arithmetic: conversion to
// and from the Gregorian calendar, month enumeration, weekday and leap-year
// computation. All date math is exact over the proleptic range supported by
// time.Time; conversions are anchored on the Ethiopian New Year rather than
// a fixed day offset, since the two calendars' leap rules are out of phase
// for part of each year.
package calendar

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidDate is returned for a year/month/day combination that does not
// exist in the Ethiopian calendar.
var ErrInvalidDate = errors.New("invalid ethiopian date")

// EthiopianDate is an immutable Ethiopian calendar date. Months 1-12 have 30
// days; month 13 (Pagume) has 5 days, or 6 in a leap year.
type EthiopianDate struct {
	Year  int `json:"year"`
	Month int `json:"month"`
	Day   int `json:"day"`
}

// String formats the date as dd/mm/yyyy, the display convention used on the
// timesheet forms.
func (d EthiopianDate) String() string {
	return fmt.Sprintf("%02d/%02d/%d", d.Day, d.Month, d.Year)
}

// Validate reports whether the date exists in the Ethiopian calendar.
func (d EthiopianDate) Validate() error {
	days, err := DaysInMonth(d.Year, d.Month)
	if err != nil {
		return err
	}
	if d.Day < 1 || d.Day > days {
		return fmt.Errorf("%w: day %d out of range for month %d of %d", ErrInvalidDate, d.Day, d.Month, d.Year)
	}
	return nil
}

// IsLeapYear reports whether the Ethiopian year y is a leap year. Leap years
// precede the "Year of John": y is leap iff (y+1) is divisible by 4.
func IsLeapYear(year int) bool {
	return (year+1)%4 == 0
}

// DaysInMonth returns the number of days in the given Ethiopian month:
// 30 for months 1-12, 5 or 6 for Pagume depending on the leap cycle.
func DaysInMonth(year, month int) (int, error) {
	if month < 1 || month > 13 {
		return 0, fmt.Errorf("%w: month %d", ErrInvalidDate, month)
	}
	if month == 13 {
		if IsLeapYear(year) {
			return 6, nil
		}
		return 5, nil
	}
	return 30, nil
}

// newYear returns the Gregorian date of Meskerem 1 of the given Ethiopian
// year. The new year falls on 11 September of Gregorian year y+7, shifted to
// 12 September when the preceding Ethiopian year was leap (its Pagume 6
// pushes the new year back one day).
func newYear(year int) time.Time {
	day := 11
	if IsLeapYear(year - 1) {
		day = 12
	}
	return time.Date(year+7, time.September, day, 0, 0, 0, 0, time.UTC)
}

// ToGregorian converts an Ethiopian date to the UTC midnight time.Time of
// the equivalent Gregorian date.
func ToGregorian(d EthiopianDate) (time.Time, error) {
	if err := d.Validate(); err != nil {
		return time.Time{}, err
	}
	return newYear(d.Year).AddDate(0, 0, (d.Month-1)*30+d.Day-1), nil
}

// ToEthiopian converts a Gregorian date to its Ethiopian equivalent. Only
// the year, month and day of t are considered.
func ToEthiopian(t time.Time) EthiopianDate {
	g := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)

	year := g.Year() - 7
	start := newYear(year)
	if g.Before(start) {
		year--
		start = newYear(year)
	}

	days := int(g.Sub(start).Hours() / 24)
	return EthiopianDate{
		Year:  year,
		Month: days/30 + 1,
		Day:   days%30 + 1,
	}
}

// Weekday is a Monday-indexed day of the week.
type Weekday int

const (
	Monday Weekday = iota
	Tuesday
	Wednesday
	Thursday
	Friday
	Saturday
	Sunday
)

// WeekdayOf returns the day of the week of an Ethiopian date, derived from
// its Gregorian equivalent.
func WeekdayOf(d EthiopianDate) (Weekday, error) {
	g, err := ToGregorian(d)
	if err != nil {
		return 0, err
	}
	// time.Weekday is Sunday-indexed.
	return Weekday((int(g.Weekday()) + 6) % 7), nil
}

// DayInfo describes one day of an Ethiopian month, the unit both the entry
// grid and the report projection are built from.
type DayInfo struct {
	Day       int           `json:"day"`
	Date      EthiopianDate `json:"date"`
	Gregorian time.Time     `json:"gregorian"`
	Weekday   Weekday       `json:"weekday"`
	IsWeekend bool          `json:"is_weekend"`
}

// Config holds the deployment-specific calendar settings.
type Config struct {
	// Timezone resolves "today" for future-date checks. Ethiopian dates
	// near midnight are ambiguous without a fixed reference zone.
	Timezone string
	// RestDays are the weekly non-working days. Empty means Saturday and
	// Sunday.
	RestDays []Weekday
}

// Engine answers calendar queries that depend on deployment configuration
// (rest days, reference timezone). The pure conversions above need no
// engine and are safe for concurrent use; so is Engine itself.
type Engine struct {
	loc  *time.Location
	rest map[Weekday]bool
}

// NewEngine builds an Engine from configuration.
func NewEngine(cfg Config) (*Engine, error) {
	tz := cfg.Timezone
	if tz == "" {
		tz = "Africa/Addis_Ababa"
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, fmt.Errorf("failed to load timezone %q: %w", tz, err)
	}

	rest := make(map[Weekday]bool)
	if len(cfg.RestDays) == 0 {
		rest[Saturday] = true
		rest[Sunday] = true
	}
	for _, d := range cfg.RestDays {
		rest[d] = true
	}

	return &Engine{loc: loc, rest: rest}, nil
}

// IsWeekend reports whether the weekday is a configured rest day.
func (e *Engine) IsWeekend(w Weekday) bool {
	return e.rest[w]
}

// EnumerateMonth returns the ordered day descriptors for an Ethiopian
// month, ascending by day.
func (e *Engine) EnumerateMonth(year, month int) ([]DayInfo, error) {
	count, err := DaysInMonth(year, month)
	if err != nil {
		return nil, err
	}

	days := make([]DayInfo, 0, count)
	for day := 1; day <= count; day++ {
		d := EthiopianDate{Year: year, Month: month, Day: day}
		g, err := ToGregorian(d)
		if err != nil {
			return nil, err
		}
		w := Weekday((int(g.Weekday()) + 6) % 7)
		days = append(days, DayInfo{
			Day:       day,
			Date:      d,
			Gregorian: g,
			Weekday:   w,
			IsWeekend: e.rest[w],
		})
	}
	return days, nil
}

// IsFuture reports whether the Ethiopian date falls strictly after the
// reference instant, compared date-only in the engine's timezone.
func (e *Engine) IsFuture(d EthiopianDate, now time.Time) (bool, error) {
	g, err := ToGregorian(d)
	if err != nil {
		return false, err
	}
	local := now.In(e.loc)
	today := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, time.UTC)
	return g.After(today), nil
}

// Today returns the current Ethiopian date in the engine's timezone.
func (e *Engine) Today(now time.Time) EthiopianDate {
	return ToEthiopian(now.In(e.loc))
}
