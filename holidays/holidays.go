// Package holidays provides the set of non-trading dates used to classify
// the requested date range.
package holidays

import (
	"bufio"
	"fmt"
	"os"
	"time"
)

// recurringHolidays are fixed-date national holidays used when no reference
// file is available, and honored in addition to any loaded dates.
var recurringHolidays = [][2]int{
	{1, 26},  // Republic Day
	{5, 1},   // Labour Day
	{8, 15},  // Independence Day
	{10, 2},  // Gandhi Jayanti
	{12, 25}, // Christmas
}

// Set answers holiday membership for calendar dates. Loaded once per run,
// read-only afterward.
type Set struct {
	dates map[string]struct{}
}

// Fallback returns a set backed only by the recurring holiday list.
func Fallback() Set {
	return Set{dates: map[string]struct{}{}}
}

// Load reads one YYYY-MM-DD date per line from path. Blank and malformed
// lines are skipped. A missing or unreadable file is an error; callers fall
// back to Fallback rather than aborting.
func Load(path string) (Set, error) {
	f, err := os.Open(path)
	if err != nil {
		return Set{}, fmt.Errorf("open holiday file: %w", err)
	}
	defer f.Close()

	dates := make(map[string]struct{})
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}
		date, err := time.Parse("2006-01-02", line)
		if err != nil {
			continue
		}
		dates[date.Format("2006-01-02")] = struct{}{}
	}
	if err := scanner.Err(); err != nil {
		return Set{}, fmt.Errorf("read holiday file: %w", err)
	}

	return Set{dates: dates}, nil
}

// IsHoliday reports whether date is a non-trading holiday. The recurring
// list applies even when a reference file was loaded, covering years the
// file does not.
func (s Set) IsHoliday(date time.Time) bool {
	if s.dates != nil {
		if _, ok := s.dates[date.Format("2006-01-02")]; ok {
			return true
		}
	}
	for _, md := range recurringHolidays {
		if int(date.Month()) == md[0] && date.Day() == md[1] {
			return true
		}
	}
	return false
}

// Len returns the number of explicitly loaded holiday dates.
func (s Set) Len() int {
	return len(s.dates)
}
