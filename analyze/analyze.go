// Package analyze audits a directory of downloaded bhavcopy files and
// reports which trading dates are missing.
package analyze

import (
	"fmt"
	"io/fs"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/gocarina/gocsv"

	"github.com/nsedata/bhavget/parser"
)

// FileInfo describes one bhavcopy file found on disk.
type FileInfo struct {
	Date       string  `csv:"date"`
	Weekday    string  `csv:"weekday"`
	Filename   string  `csv:"filename"`
	Path       string  `csv:"path"`
	FileSizeKB float64 `csv:"file_size_kb"`
	Rows       int     `csv:"rows"`
	Columns    int     `csv:"columns"`

	day time.Time
}

// MissingDate describes a weekday in the scanned span with no file on disk.
type MissingDate struct {
	Date             string `csv:"date"`
	Weekday          string `csv:"weekday"`
	Reason           string `csv:"reason"`
	ExpectedFilename string `csv:"expected_filename"`
}

const (
	ReasonMissing = "Missing"
	ReasonWeekend = "Weekend"
)

// ScanDir walks dir for bhavcopy files, probing each one. Files whose name
// does not carry a parseable date are ignored. Results are sorted by date.
func ScanDir(dir string, recursive bool) ([]*FileInfo, error) {
	var files []*FileInfo

	walk := func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if !recursive && path != dir {
				return fs.SkipDir
			}
			return nil
		}

		date, err := parser.ParseFilenameDate(d.Name())
		if err != nil {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return fmt.Errorf("stat %s: %w", path, err)
		}

		entry := &FileInfo{
			Date:       date.Format("2006-01-02"),
			Weekday:    date.Weekday().String(),
			Filename:   d.Name(),
			Path:       path,
			FileSizeKB: math.Round(float64(info.Size())/1024*100) / 100,
			day:        date,
		}
		if rows, cols, err := parser.CSVShape(path); err != nil {
			slog.Warn("could not inspect file", slog.String("file", d.Name()), slog.Any("error", err))
			entry.Rows, entry.Columns = -1, -1
		} else {
			entry.Rows, entry.Columns = rows, cols
		}
		files = append(files, entry)
		return nil
	}

	if err := filepath.WalkDir(dir, walk); err != nil {
		return nil, fmt.Errorf("scan %s: %w", dir, err)
	}

	sort.Slice(files, func(i, j int) bool { return files[i].day.Before(files[j].day) })
	return files, nil
}

// MissingDates lists every calendar date between the earliest and latest
// scanned files with no file present. Weekends are reported separately from
// missing weekdays.
func MissingDates(files []*FileInfo) []*MissingDate {
	if len(files) == 0 {
		return nil
	}

	have := make(map[string]struct{}, len(files))
	for _, f := range files {
		have[f.Date] = struct{}{}
	}

	var missing []*MissingDate
	for day := files[0].day; !day.After(files[len(files)-1].day); day = day.AddDate(0, 0, 1) {
		date := day.Format("2006-01-02")
		if _, ok := have[date]; ok {
			continue
		}

		entry := &MissingDate{
			Date:    date,
			Weekday: day.Weekday().String(),
		}
		if wd := day.Weekday(); wd == time.Saturday || wd == time.Sunday {
			entry.Reason = ReasonWeekend
		} else {
			entry.Reason = ReasonMissing
			entry.ExpectedFilename = parser.Filename(day)
		}
		missing = append(missing, entry)
	}
	return missing
}

// SaveReports writes the scan results and the missing-dates table as CSV
// files under outputDir.
func SaveReports(files []*FileInfo, missing []*MissingDate, outputDir string) error {
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return fmt.Errorf("create analysis directory: %w", err)
	}

	if err := writeCSV(filepath.Join(outputDir, "existing_files_summary.csv"), &files); err != nil {
		return err
	}
	return writeCSV(filepath.Join(outputDir, "missing_files.csv"), &missing)
}

func writeCSV(path string, rows interface{}) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	if err := gocsv.Marshal(rows, f); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// PrintReport prints the archive audit to stdout.
func PrintReport(files []*FileInfo, missing []*MissingDate) {
	separator := "--------------------------------------------------"
	fmt.Println("\n" + separator)
	fmt.Println("Archive audit")
	fmt.Printf("  Files found:     %d\n", len(files))
	if len(files) > 0 {
		fmt.Printf("  Date span:       %s to %s\n", files[0].Date, files[len(files)-1].Date)
	}

	var gaps, weekends int
	for _, m := range missing {
		if m.Reason == ReasonWeekend {
			weekends++
		} else {
			gaps++
		}
	}
	fmt.Printf("  Missing (gaps):  %d\n", gaps)
	fmt.Printf("  Weekends:        %d\n", weekends)
	fmt.Println(separator)

	if gaps == 0 {
		return
	}
	fmt.Println("Missing weekdays:")
	for _, m := range missing {
		if m.Reason != ReasonWeekend {
			fmt.Printf("  %s (%s): expected %s\n", m.Date, m.Weekday, m.ExpectedFilename)
		}
	}
}
