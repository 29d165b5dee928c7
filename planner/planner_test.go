package planner

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/nsedata/bhavget/holidays"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestSequenceCoversRangeExactlyOnce(t *testing.T) {
	start := date(2025, 6, 25)
	end := date(2025, 7, 14)

	days := Sequence(start, end, holidays.Fallback())
	if len(days) != 20 {
		t.Fatalf("days = %d, want 20", len(days))
	}

	seen := make(map[string]struct{})
	previous := start.AddDate(0, 0, -1)
	for _, day := range days {
		key := day.Date.Format("2006-01-02")
		if _, dup := seen[key]; dup {
			t.Fatalf("duplicate date %s", key)
		}
		seen[key] = struct{}{}
		if !day.Date.Equal(previous.AddDate(0, 0, 1)) {
			t.Fatalf("gap before %s", key)
		}
		previous = day.Date
	}
}

func TestSequenceClassification(t *testing.T) {
	// 2025-07-01 is a Tuesday; 2025-07-05 a Saturday.
	days := Sequence(date(2025, 7, 1), date(2025, 7, 5), holidays.Fallback())

	want := []Class{Trading, Trading, Trading, Trading, Weekend}
	if len(days) != len(want) {
		t.Fatalf("days = %d, want %d", len(days), len(want))
	}
	for i, day := range days {
		if day.Class != want[i] {
			t.Fatalf("day %s class = %v, want %v", day.Date.Format("2006-01-02"), day.Class, want[i])
		}
	}
}

func TestWeekendWinsOverHoliday(t *testing.T) {
	// 2025-01-26 (Republic Day) falls on a Sunday.
	days := Sequence(date(2025, 1, 26), date(2025, 1, 26), holidays.Fallback())
	if days[0].Class != Weekend {
		t.Fatalf("class = %v, want Weekend", days[0].Class)
	}
}

func TestHolidayClassification(t *testing.T) {
	path := filepath.Join(t.TempDir(), "holidays.csv")
	if err := os.WriteFile(path, []byte("2025-03-14\n"), 0o644); err != nil {
		t.Fatalf("write holidays: %v", err)
	}
	set, err := holidays.Load(path)
	if err != nil {
		t.Fatalf("load holidays: %v", err)
	}

	// 2025-03-14 is a Friday.
	days := Sequence(date(2025, 3, 14), date(2025, 3, 14), set)
	if days[0].Class != Holiday {
		t.Fatalf("class = %v, want Holiday", days[0].Class)
	}
}

func TestFallbackHolidayClassification(t *testing.T) {
	// Gandhi Jayanti 2025-10-02 is a Thursday; the fallback list must cover
	// it when no holiday file is present.
	days := Sequence(date(2025, 10, 2), date(2025, 10, 2), holidays.Fallback())
	if days[0].Class != Holiday {
		t.Fatalf("class = %v, want Holiday", days[0].Class)
	}
}

func TestBatchKey(t *testing.T) {
	// Friday 2025-07-04 and Monday 2025-07-07 are in different batches;
	// Tuesday through Friday share one.
	friday := BatchKey(date(2025, 7, 4))
	monday := BatchKey(date(2025, 7, 7))
	if friday == monday {
		t.Fatalf("week crossing should change batch key")
	}

	if BatchKey(date(2025, 7, 1)) != friday {
		t.Fatalf("Tuesday and Friday of one week should share a batch key")
	}
}
