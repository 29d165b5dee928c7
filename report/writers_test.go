package report

import (
	"bufio"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/nsedata/bhavget/models"
)

func sampleRecords() []*models.DateRecord {
	success := models.NewDateRecord(time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC))
	success.Status = models.StatusSuccess
	success.Filename = "sec_bhavdata_full_01072025.csv"
	success.FileSizeKB = 1024.5
	success.Rows = 2150
	success.Columns = 15
	success.Error = ""

	failed := models.NewDateRecord(time.Date(2025, 7, 2, 0, 0, 0, 0, time.UTC))
	failed.Status = models.StatusFailed
	failed.Error = "download timeout after 60s"

	weekend := models.NewDateRecord(time.Date(2025, 7, 5, 0, 0, 0, 0, time.UTC))
	weekend.Status = models.StatusSkippedWeekend

	return []*models.DateRecord{success, failed, weekend}
}

func TestCSVWriterWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "summary.csv")

	writer, err := NewCSVWriter(path)
	if err != nil {
		t.Fatalf("create csv writer: %v", err)
	}

	records := sampleRecords()
	if err := writer.Write(records); err != nil {
		t.Fatalf("write csv: %v", err)
	}
	if err := writer.Validate(); err != nil {
		t.Fatalf("validate csv: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close csv: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open csv: %v", err)
	}
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("read csv: %v", err)
	}
	if len(rows) != len(records)+1 {
		t.Fatalf("rows=%d, want %d", len(rows), len(records)+1)
	}
	if rows[0][0] != "date" || rows[0][2] != "status" {
		t.Fatalf("unexpected header: %v", rows[0])
	}
	if rows[1][0] != "2025-07-01" || rows[1][2] != "Success" {
		t.Fatalf("unexpected first row: %v", rows[1])
	}
	if rows[3][2] != "Skipped-Weekend" {
		t.Fatalf("unexpected weekend row: %v", rows[3])
	}
}

func TestCSVWriterHeaderOnce(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "summary.csv")

	writer, err := NewCSVWriter(path)
	if err != nil {
		t.Fatalf("create csv writer: %v", err)
	}

	records := sampleRecords()
	if err := writer.Write(records[:1]); err != nil {
		t.Fatalf("first write: %v", err)
	}
	if err := writer.Write(records[1:]); err != nil {
		t.Fatalf("second write: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close csv: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open csv: %v", err)
	}
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("read csv: %v", err)
	}
	if len(rows) != len(records)+1 {
		t.Fatalf("rows=%d, want %d (single header)", len(rows), len(records)+1)
	}
}

func TestJSONWriterWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "summary.json")

	writer, err := NewJSONWriter(path)
	if err != nil {
		t.Fatalf("create json writer: %v", err)
	}

	records := sampleRecords()
	if err := writer.Write(records); err != nil {
		t.Fatalf("write json: %v", err)
	}
	if err := writer.Validate(); err != nil {
		t.Fatalf("validate json: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close json: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open json: %v", err)
	}
	defer f.Close()

	var lines int
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var rec models.DateRecord
		if err := json.Unmarshal(scanner.Bytes(), &rec); err != nil {
			t.Fatalf("decode line %d: %v", lines, err)
		}
		if rec.Date == "" {
			t.Fatalf("line %d missing date", lines)
		}
		lines++
	}
	if lines != len(records) {
		t.Fatalf("lines=%d, want %d", lines, len(records))
	}
}

func TestDualWriter(t *testing.T) {
	dir := t.TempDir()
	csvPath := filepath.Join(dir, "summary.csv")
	jsonPath := filepath.Join(dir, "summary.json")

	writer, err := NewDualWriter(csvPath, jsonPath)
	if err != nil {
		t.Fatalf("create dual writer: %v", err)
	}

	if err := writer.Write(sampleRecords()); err != nil {
		t.Fatalf("write dual: %v", err)
	}
	if err := writer.Validate(); err != nil {
		t.Fatalf("validate dual: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close dual: %v", err)
	}

	for _, path := range []string{csvPath, jsonPath} {
		info, err := os.Stat(path)
		if err != nil {
			t.Fatalf("stat %s: %v", path, err)
		}
		if info.Size() == 0 {
			t.Fatalf("%s is empty", path)
		}
	}
}

func TestCSVWriterValidateEmpty(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "summary.csv")

	writer, err := NewCSVWriter(path)
	if err != nil {
		t.Fatalf("create csv writer: %v", err)
	}
	defer writer.Close()

	if err := writer.Validate(); err == nil {
		t.Fatal("expected validation error for empty file")
	}
}
