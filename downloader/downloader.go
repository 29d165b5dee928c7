// Package downloader drives the weekly-session download loop over a planned
// date range.
package downloader

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"math/rand/v2"
	"os"
	"path/filepath"
	"time"

	"github.com/nsedata/bhavget/browser"
	"github.com/nsedata/bhavget/config"
	"github.com/nsedata/bhavget/holidays"
	"github.com/nsedata/bhavget/models"
	"github.com/nsedata/bhavget/parser"
	"github.com/nsedata/bhavget/planner"
	"github.com/nsedata/bhavget/report"
)

// Downloader walks the requested date range, reusing one browser session per
// Monday-Friday batch and producing exactly one record per calendar date.
type Downloader struct {
	cfg      *config.Config
	set      holidays.Set
	launcher browser.Launcher
	recorder *report.Recorder
	Metrics  *Metrics

	outputDir    string
	sessionCount int
	errorsByType map[string]int
}

// New builds a downloader writing into cfg's resolved output directory.
func New(cfg *config.Config, set holidays.Set, launcher browser.Launcher, recorder *report.Recorder) *Downloader {
	return &Downloader{
		cfg:          cfg,
		set:          set,
		launcher:     launcher,
		recorder:     recorder,
		Metrics:      NewMetrics(),
		outputDir:    cfg.ResolvedOutputDir(),
		errorsByType: make(map[string]int),
	}
}

// Run processes every date in the configured range. Per-day failures are
// recorded and the run continues; only browser startup failures and context
// cancellation return an error.
func (d *Downloader) Run(ctx context.Context) (*models.RunResult, error) {
	start := time.Now()

	if err := os.MkdirAll(d.outputDir, 0o755); err != nil {
		return nil, ErrSetup{Err: fmt.Errorf("create output directory: %w", err)}
	}

	days := planner.Sequence(d.cfg.StartDate, d.cfg.EndDate, d.set)

	var (
		sess  browser.Automation
		batch string
	)
	closeSession := func() {
		if sess == nil {
			return
		}
		slog.Info("closing browser session", slog.String("batch", batch))
		if err := sess.Close(); err != nil {
			slog.Error("close browser session", slog.Any("error", err))
		}
		sess = nil
	}
	defer closeSession()

	for i, day := range days {
		if err := ctx.Err(); err != nil {
			return d.result(start), err
		}

		date := day.Date.Format("2006-01-02")
		switch day.Class {
		case planner.Weekend:
			slog.Info("skipping weekend", slog.String("date", date), slog.String("weekday", day.Date.Weekday().String()))
			d.recordSkip(day.Date, models.StatusSkippedWeekend, "Weekend - Market Closed")
			continue
		case planner.Holiday:
			slog.Info("skipping holiday", slog.String("date", date))
			d.recordSkip(day.Date, models.StatusSkippedHoliday, "Public Holiday - Market Closed")
			continue
		}

		key := planner.BatchKey(day.Date)
		if sess != nil && key != batch {
			closeSession()
		}
		if sess == nil {
			created, err := d.openSession(ctx, day.Date)
			if err != nil {
				var setup ErrSetup
				if errors.As(err, &setup) {
					return d.result(start), err
				}
				// One-time setup failed: record the day and start a fresh
				// session at the next trading day, even mid-week.
				rec := models.NewDateRecord(day.Date)
				d.fail(rec, err)
				d.recorder.Append(rec)
				d.interDayDelay(ctx, days, i)
				continue
			}
			sess = created
			batch = key
		}

		rec := d.downloadDay(ctx, sess, day.Date)
		d.recorder.Append(rec)

		if !tradingAhead(days, i+1, batch) {
			closeSession()
		}
		d.interDayDelay(ctx, days, i)
	}

	return d.result(start), nil
}

func (d *Downloader) openSession(ctx context.Context, weekStart time.Time) (browser.Automation, error) {
	agent := d.cfg.UserAgents[d.sessionCount%len(d.cfg.UserAgents)]
	slog.Info("starting browser session",
		slog.String("first_trading_day", weekStart.Format("2006-01-02")),
		slog.String("user_agent", clipAgent(agent)),
	)

	sess, err := d.launcher.Launch(ctx, agent, d.outputDir)
	if err != nil {
		d.countError(ErrSetup{Err: err})
		return nil, ErrSetup{Err: err}
	}
	d.sessionCount++
	d.Metrics.IncSession()

	if err := sess.Setup(ctx); err != nil {
		if cerr := sess.Close(); cerr != nil {
			slog.Error("close session after failed setup", slog.Any("error", cerr))
		}
		return nil, ErrNavigation{Err: err}
	}
	return sess, nil
}

func (d *Downloader) downloadDay(ctx context.Context, sess browser.Automation, date time.Time) *models.DateRecord {
	rec := models.NewDateRecord(date)
	slog.Info("starting download",
		slog.String("date", rec.Date),
		slog.String("weekday", rec.Weekday),
	)

	started := time.Now()
	if err := sess.SelectDate(ctx, date); err != nil {
		return d.fail(rec, ErrSelection{Err: fmt.Errorf("select date: %w", err)})
	}
	if err := sess.TriggerDownload(ctx); err != nil {
		return d.fail(rec, ErrSelection{Err: fmt.Errorf("trigger download: %w", err)})
	}

	filename := parser.Filename(date)
	size, err := d.waitForFile(ctx, filepath.Join(d.outputDir, filename))
	if err != nil {
		return d.fail(rec, err)
	}

	rec.Status = models.StatusSuccess
	rec.Filename = filename
	rec.Error = ""
	rec.FileSizeKB = math.Round(float64(size)/1024*100) / 100
	d.Metrics.IncDownload("success")
	d.Metrics.ObserveDuration(time.Since(started))

	if rows, cols, err := parser.CSVShape(filepath.Join(d.outputDir, filename)); err != nil {
		slog.Warn("could not inspect downloaded file",
			slog.String("file", filename),
			slog.Any("error", err),
		)
		d.countError(ErrParse{Err: err})
		rec.Rows, rec.Columns = -1, -1
	} else {
		rec.Rows, rec.Columns = rows, cols
	}

	slog.Info("download complete",
		slog.String("file", filename),
		slog.Float64("size_kb", rec.FileSizeKB),
		slog.Int("rows", rec.Rows),
	)
	return rec
}

// waitForFile polls for a non-empty file at path until the poll ceiling.
func (d *Downloader) waitForFile(ctx context.Context, path string) (int64, error) {
	deadline := time.Now().Add(d.cfg.PollTimeout)
	for {
		if info, err := os.Stat(path); err == nil && info.Size() > 0 {
			return info.Size(), nil
		}
		d.Metrics.IncPollCheck()

		if !time.Now().Before(deadline) {
			return 0, ErrDownloadTimeout{Err: fmt.Errorf("file not found after %s", d.cfg.PollTimeout)}
		}
		// A cancelled context is not a download timeout.
		select {
		case <-ctx.Done():
			return 0, ctx.Err()
		case <-time.After(d.cfg.PollInterval):
		}
	}
}

func (d *Downloader) fail(rec *models.DateRecord, err error) *models.DateRecord {
	rec.Status = models.StatusFailed
	rec.Error = err.Error()
	d.Metrics.IncDownload("failed")
	d.countError(err)
	slog.Error("download failed",
		slog.String("date", rec.Date),
		slog.String("category", errorTypeLabel(err)),
		slog.Any("error", err),
	)
	return rec
}

func (d *Downloader) recordSkip(date time.Time, status models.DayStatus, reason string) {
	rec := models.NewDateRecord(date)
	rec.Status = status
	rec.Error = reason
	d.recorder.Append(rec)
}

func (d *Downloader) countError(err error) {
	d.errorsByType[errorTypeLabel(err)]++
	d.Metrics.IncError(errorTypeLabel(err))
}

// interDayDelay sleeps a jittered delay after a processed trading day,
// skipped when the range is exhausted.
func (d *Downloader) interDayDelay(ctx context.Context, days []planner.Day, i int) {
	if i >= len(days)-1 {
		return
	}
	delay := d.cfg.DelayMin
	if window := d.cfg.DelayMax - d.cfg.DelayMin; window > 0 {
		delay += time.Duration(rand.Int64N(int64(window)))
	}
	if delay <= 0 {
		return
	}
	slog.Info("sleeping before next date", slog.Duration("delay", delay))
	select {
	case <-ctx.Done():
	case <-time.After(delay):
	}
}

func (d *Downloader) result(start time.Time) *models.RunResult {
	res := &models.RunResult{
		StartTime:    start,
		EndTime:      time.Now(),
		Sessions:     d.sessionCount,
		ErrorsByType: make(map[string]int, len(d.errorsByType)),
	}
	for k, v := range d.errorsByType {
		res.ErrorsByType[k] = v
	}
	for _, rec := range d.recorder.Records() {
		res.Total++
		switch rec.Status {
		case models.StatusSuccess:
			res.Succeeded++
		case models.StatusFailed:
			res.Failed++
		case models.StatusSkippedWeekend:
			res.SkippedWeekend++
		case models.StatusSkippedHoliday:
			res.SkippedHoliday++
		}
	}
	return res
}

// tradingAhead reports whether any remaining day is a trading day in batch.
func tradingAhead(days []planner.Day, from int, batch string) bool {
	for _, day := range days[from:] {
		if day.Class != planner.Trading {
			continue
		}
		return planner.BatchKey(day.Date) == batch
	}
	return false
}

func clipAgent(agent string) string {
	if len(agent) > 50 {
		return agent[:50]
	}
	return agent
}
