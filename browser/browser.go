// Package browser isolates all site-specific automation behind narrow
// interfaces. Everything that knows about the report page's markup lives
// here; the download loop only sees Launcher and Automation.
package browser

import (
	"context"
	"time"
)

// Automation drives one live browser session against the report page.
type Automation interface {
	// Setup performs the one-time navigation, report search, and checkbox
	// selection for a session. Run once per weekly batch.
	Setup(ctx context.Context) error
	// SelectDate operates the calendar control to pick the target date.
	SelectDate(ctx context.Context, date time.Time) error
	// TriggerDownload clicks the report download control.
	TriggerDownload(ctx context.Context) error
	// Close releases the underlying browser resources.
	Close() error
}

// Launcher creates automation sessions. A launcher that cannot start is the
// only fatal error class in a run.
type Launcher interface {
	Launch(ctx context.Context, userAgent, downloadDir string) (Automation, error)
	Stop() error
}
