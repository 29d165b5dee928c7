package parser

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/nsedata/bhavget/models"
)

func TestFilename(t *testing.T) {
	date := time.Date(2025, 7, 3, 0, 0, 0, 0, time.UTC)
	if got := Filename(date); got != "sec_bhavdata_full_03072025.csv" {
		t.Fatalf("Filename = %q, want %q", got, "sec_bhavdata_full_03072025.csv")
	}
}

func TestParseFilenameDate(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		want     time.Time
		wantErr  bool
	}{
		{
			name:     "valid",
			filename: "sec_bhavdata_full_03072025.csv",
			want:     time.Date(2025, 7, 3, 0, 0, 0, 0, time.UTC),
		},
		{
			name:     "wrong prefix",
			filename: "bhavdata_03072025.csv",
			wantErr:  true,
		},
		{
			name:     "impossible date",
			filename: "sec_bhavdata_full_99139999.csv",
			wantErr:  true,
		},
		{
			name:     "missing digits",
			filename: "sec_bhavdata_full_372025.csv",
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseFilenameDate(tt.filename)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseFilenameDate(%q) error = %v, wantErr %v", tt.filename, err, tt.wantErr)
			}
			if !tt.wantErr && !got.Equal(tt.want) {
				t.Fatalf("ParseFilenameDate(%q) = %v, want %v", tt.filename, got, tt.want)
			}
		})
	}
}

func TestFilenameRoundTrip(t *testing.T) {
	date := time.Date(2025, 1, 9, 0, 0, 0, 0, time.UTC)
	parsed, err := ParseFilenameDate(Filename(date))
	if err != nil {
		t.Fatalf("round trip: %v", err)
	}
	if !parsed.Equal(date) {
		t.Fatalf("round trip = %v, want %v", parsed, date)
	}
}

func TestCSVShape(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sample.csv")
	content := "SYMBOL,SERIES,DATE\nRELIANCE,EQ,03-Jul-2025\nTCS,EQ,03-Jul-2025\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write sample: %v", err)
	}

	rows, cols, err := CSVShape(path)
	if err != nil {
		t.Fatalf("csv shape: %v", err)
	}
	if rows != 2 || cols != 3 {
		t.Fatalf("shape = (%d, %d), want (2, 3)", rows, cols)
	}
}

func TestCSVShapeMissingFile(t *testing.T) {
	if _, _, err := CSVShape(filepath.Join(t.TempDir(), "absent.csv")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}

func TestValidateRecord(t *testing.T) {
	date := time.Date(2025, 7, 3, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		mutate  func(*models.DateRecord)
		wantErr bool
	}{
		{
			name:   "pending record",
			mutate: func(r *models.DateRecord) {},
		},
		{
			name: "success with filename",
			mutate: func(r *models.DateRecord) {
				r.Status = models.StatusSuccess
				r.Filename = "sec_bhavdata_full_03072025.csv"
			},
		},
		{
			name: "success without filename",
			mutate: func(r *models.DateRecord) {
				r.Status = models.StatusSuccess
			},
			wantErr: true,
		},
		{
			name: "failed without error",
			mutate: func(r *models.DateRecord) {
				r.Status = models.StatusFailed
				r.Error = " "
			},
			wantErr: true,
		},
		{
			name: "unknown status",
			mutate: func(r *models.DateRecord) {
				r.Status = models.DayStatus("Partial")
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := models.NewDateRecord(date)
			tt.mutate(rec)
			if err := ValidateRecord(rec); (err != nil) != tt.wantErr {
				t.Fatalf("ValidateRecord() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
