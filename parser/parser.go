// Package parser handles the bhavcopy file naming convention and CSV probing.
package parser

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/nsedata/bhavget/models"
)

// filenameDateLayout is the DDMMYYYY segment embedded in bhavcopy filenames.
const filenameDateLayout = "02012006"

var filenameRe = regexp.MustCompile(`^sec_bhavdata_full_(\d{8})\.csv$`)

// Filename returns the expected bhavcopy filename for a trading date.
func Filename(date time.Time) string {
	return fmt.Sprintf("sec_bhavdata_full_%s.csv", date.Format(filenameDateLayout))
}

// ParseFilenameDate extracts the trading date embedded in a bhavcopy filename.
func ParseFilenameDate(name string) (time.Time, error) {
	match := filenameRe.FindStringSubmatch(name)
	if match == nil {
		return time.Time{}, fmt.Errorf("filename %q does not match bhavcopy pattern", name)
	}
	date, err := time.Parse(filenameDateLayout, match[1])
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date in filename %q: %w", name, err)
	}
	return date, nil
}

// CSVShape reports the data row and column counts of a CSV file. The header
// row is not counted as data, matching the shape reported by common dataframe
// tooling.
func CSVShape(path string) (rows, cols int, err error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, 0, fmt.Errorf("open csv file: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return 0, 0, fmt.Errorf("read csv header: %w", err)
	}
	cols = len(header)

	for {
		_, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return 0, 0, fmt.Errorf("read csv row: %w", err)
		}
		rows++
	}
	return rows, cols, nil
}

// ValidateRecord ensures a date record is internally coherent.
func ValidateRecord(r *models.DateRecord) error {
	if r == nil {
		return fmt.Errorf("record is nil")
	}
	if strings.TrimSpace(r.Date) == "" {
		return fmt.Errorf("record missing date")
	}
	switch r.Status {
	case models.StatusPending, models.StatusSuccess, models.StatusFailed,
		models.StatusSkippedWeekend, models.StatusSkippedHoliday:
	default:
		return fmt.Errorf("unknown status %q for %s", r.Status, r.Date)
	}
	if r.Status == models.StatusSuccess && (r.Filename == "" || r.Filename == "N/A") {
		return fmt.Errorf("successful record for %s missing filename", r.Date)
	}
	if r.Status == models.StatusFailed && strings.TrimSpace(r.Error) == "" {
		return fmt.Errorf("failed record for %s missing error message", r.Date)
	}
	return nil
}
