package report

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/nsedata/bhavget/models"
)

// PrintSummary prints the run summary and per-date table to stdout.
func PrintSummary(result *models.RunResult, records []*models.DateRecord, duration time.Duration, summaryPath string) {
	separator := "--------------------------------------------------"
	fmt.Println("\n" + separator)
	fmt.Println("Download run complete")

	if len(records) > 0 {
		fmt.Printf("  Date range:       %s to %s\n",
			records[0].Date, records[len(records)-1].Date)
	}
	fmt.Printf("  Total dates:      %d\n", result.Total)
	fmt.Printf("  Succeeded:        %d\n", result.Succeeded)
	fmt.Printf("  Failed:           %d\n", result.Failed)
	fmt.Printf("  Skipped weekend:  %d\n", result.SkippedWeekend)
	fmt.Printf("  Skipped holiday:  %d\n", result.SkippedHoliday)
	fmt.Printf("  Browser sessions: %d\n", result.Sessions)
	if len(result.ErrorsByType) > 0 {
		fmt.Printf("  Error types:      %v\n", result.ErrorsByType)
	}
	fmt.Printf("  Duration:         %v\n", duration.Round(time.Second))
	if summaryPath != "" {
		fmt.Printf("  Summary file:     %s\n", summaryPath)
	}
	fmt.Println(separator)

	if len(records) == 0 {
		return
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "DATE\tWEEKDAY\tSTATUS\tFILE\tSIZE(KB)\tROWS")
	for _, rec := range records {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%.2f\t%d\n",
			rec.Date, rec.Weekday, rec.Status, rec.Filename, rec.FileSizeKB, rec.Rows)
	}
	w.Flush()

	printFailures(records)
}

func printFailures(records []*models.DateRecord) {
	var failed []*models.DateRecord
	for _, rec := range records {
		if rec.Status == models.StatusFailed {
			failed = append(failed, rec)
		}
	}
	if len(failed) == 0 {
		return
	}

	fmt.Printf("\nFailed dates (%d):\n", len(failed))
	for _, rec := range failed {
		fmt.Printf("  %s: %s\n", rec.Date, rec.Error)
	}
}
