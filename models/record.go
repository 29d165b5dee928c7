// Package models defines data structures for the downloader.
package models

import "time"

// DayStatus is the terminal classification of one calendar date.
type DayStatus string

const (
	StatusPending        DayStatus = "Pending"
	StatusSuccess        DayStatus = "Success"
	StatusFailed         DayStatus = "Failed"
	StatusSkippedWeekend DayStatus = "Skipped-Weekend"
	StatusSkippedHoliday DayStatus = "Skipped-Holiday"
)

// DateRecord is the outcome of one calendar date in the requested range.
// Exactly one record exists per date; its outcome is assigned once.
type DateRecord struct {
	Day        time.Time `csv:"-" json:"-"`
	Date       string    `csv:"date" json:"date"`
	Weekday    string    `csv:"weekday" json:"weekday"`
	Status     DayStatus `csv:"status" json:"status"`
	Filename   string    `csv:"filename" json:"filename"`
	FileSizeKB float64   `csv:"file_size_kb" json:"file_size_kb"`
	Rows       int       `csv:"rows" json:"rows"`
	Columns    int       `csv:"columns" json:"columns"`
	Error      string    `csv:"error" json:"error"`
}

// NewDateRecord returns a pending record for date with placeholder fields.
func NewDateRecord(date time.Time) *DateRecord {
	return &DateRecord{
		Day:      date,
		Date:     date.Format("2006-01-02"),
		Weekday:  date.Weekday().String(),
		Status:   StatusPending,
		Filename: "N/A",
		Error:    "N/A",
	}
}

// RunResult holds the overall outcome of a download run.
type RunResult struct {
	StartTime      time.Time
	EndTime        time.Time
	Total          int
	Succeeded      int
	Failed         int
	SkippedWeekend int
	SkippedHoliday int
	Sessions       int
	ErrorsByType   map[string]int
}
