package holidays

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeHolidayFile(t *testing.T, lines string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "nse_holidays.csv")
	if err := os.WriteFile(path, []byte(lines), 0o644); err != nil {
		t.Fatalf("write holiday file: %v", err)
	}
	return path
}

func TestLoad(t *testing.T) {
	path := writeHolidayFile(t, "2025-03-14\n\nnot-a-date\n2025-08-27\n")

	set, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if set.Len() != 2 {
		t.Fatalf("loaded dates = %d, want 2", set.Len())
	}
	if !set.IsHoliday(time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("2025-03-14 should be a holiday")
	}
	if set.IsHoliday(time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("2025-03-15 should not be a holiday")
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.csv")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}

func TestLoadedSetHonorsRecurringHolidays(t *testing.T) {
	path := writeHolidayFile(t, "2025-03-14\n")

	set, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	// Republic Day is not in the file but is always a market holiday.
	if !set.IsHoliday(time.Date(2026, 1, 26, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("Jan 26 should be a holiday even when absent from the file")
	}
}

func TestFallback(t *testing.T) {
	set := Fallback()

	holidays := []time.Time{
		time.Date(2025, 1, 26, 0, 0, 0, 0, time.UTC),
		time.Date(2025, 10, 2, 0, 0, 0, 0, time.UTC),
		time.Date(2025, 12, 25, 0, 0, 0, 0, time.UTC),
	}
	for _, date := range holidays {
		if !set.IsHoliday(date) {
			t.Fatalf("%s should be a fallback holiday", date.Format("2006-01-02"))
		}
	}

	if set.IsHoliday(time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("2025-07-01 should not be a fallback holiday")
	}
}
