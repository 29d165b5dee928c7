// Package planner expands a date range into classified calendar days and
// groups trading days into Monday-Friday batches.
package planner

import (
	"fmt"
	"time"

	"github.com/nsedata/bhavget/holidays"
)

// Class is the trading classification of one calendar date.
type Class int

const (
	Trading Class = iota
	Weekend
	Holiday
)

func (c Class) String() string {
	switch c {
	case Trading:
		return "trading"
	case Weekend:
		return "weekend"
	case Holiday:
		return "holiday"
	}
	return "unknown"
}

// Day is one classified calendar date.
type Day struct {
	Date  time.Time
	Class Class
}

// Sequence returns every calendar date in [start, end] inclusive, ascending,
// classified against the holiday set. Weekend classification wins over
// holiday membership.
func Sequence(start, end time.Time, set holidays.Set) []Day {
	start = truncate(start)
	end = truncate(end)

	var days []Day
	for date := start; !date.After(end); date = date.AddDate(0, 0, 1) {
		days = append(days, Day{Date: date, Class: classify(date, set)})
	}
	return days
}

// BatchKey identifies the Monday-Friday span containing date. Trading days
// sharing a key share one browser session.
func BatchKey(date time.Time) string {
	year, week := date.ISOWeek()
	return fmt.Sprintf("%d-W%02d", year, week)
}

func classify(date time.Time, set holidays.Set) Class {
	switch date.Weekday() {
	case time.Saturday, time.Sunday:
		return Weekend
	}
	if set.IsHoliday(date) {
		return Holiday
	}
	return Trading
}

func truncate(date time.Time) time.Time {
	return time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
}
