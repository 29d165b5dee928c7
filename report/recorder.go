// Package report accumulates per-date outcomes and renders the run summary.
package report

import (
	"log/slog"
	"sync"

	"github.com/nsedata/bhavget/models"
	"github.com/nsedata/bhavget/parser"
)

// Recorder collects one DateRecord per calendar date, in date order.
type Recorder struct {
	mu      sync.Mutex
	records []*models.DateRecord
}

// NewRecorder returns an empty recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// Append adds a record as its outcome is determined. Records arrive in
// ascending date order from the single-threaded run loop.
func (r *Recorder) Append(rec *models.DateRecord) {
	if err := parser.ValidateRecord(rec); err != nil {
		slog.Warn("recording malformed entry", slog.Any("error", err))
	}

	r.mu.Lock()
	r.records = append(r.records, rec)
	r.mu.Unlock()

	slog.Info("recorded outcome",
		slog.String("date", rec.Date),
		slog.String("status", string(rec.Status)),
	)
}

// Records returns a snapshot of all records in append order.
func (r *Recorder) Records() []*models.DateRecord {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*models.DateRecord, len(r.records))
	copy(out, r.records)
	return out
}

// Len returns the number of recorded dates.
func (r *Recorder) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.records)
}
