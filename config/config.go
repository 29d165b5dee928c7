package config

import (
	"fmt"
	"net/url"
	"time"
)

// Config holds downloader configuration.
type Config struct {
	StartDate     time.Time
	EndDate       time.Time
	OutputDir     string
	LogsDir       string
	HolidayFile   string
	BaseURL       string
	UserAgents    []string
	Headless      bool
	NavTimeout    time.Duration
	SetupSettle   time.Duration
	PollInterval  time.Duration
	PollTimeout   time.Duration
	DelayMin      time.Duration
	DelayMax      time.Duration
	SummaryFormat string // csv, json, or dual
	MetricsAddr   string
	Verbose       bool
}

// DefaultConfig returns conservative defaults for the NSE archives page.
func DefaultConfig() *Config {
	return &Config{
		StartDate:    time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC),
		EndDate:      time.Date(2025, 7, 10, 0, 0, 0, 0, time.UTC),
		LogsDir:      "logs",
		HolidayFile:  "nse_holidays.csv",
		BaseURL:      "https://www.nseindia.com/all-reports#cr_equity_archives",
		UserAgents:   DefaultUserAgents(),
		Headless:     true,
		NavTimeout:   30 * time.Second,
		SetupSettle:  5 * time.Second,
		PollInterval: 2 * time.Second,
		PollTimeout:  60 * time.Second,
		DelayMin:     3 * time.Second,
		DelayMax:     7 * time.Second,

		SummaryFormat: "csv",
	}
}

// DefaultUserAgents returns the rotation list; the session manager picks one
// per weekly batch.
func DefaultUserAgents() []string {
	return []string{
		"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
		"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/119.0.0.0 Safari/537.36",
		"Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:121.0) Gecko/20100101 Firefox/121.0",
		"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36 Edg/120.0.0.0",
		"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
		"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
		"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/118.0.0.0 Safari/537.36",
	}
}

// ResolvedOutputDir returns the configured output directory, or the
// data/<YYYYMM> directory derived from the start date when unset.
func (c *Config) ResolvedOutputDir() string {
	if c.OutputDir != "" {
		return c.OutputDir
	}
	return fmt.Sprintf("data/%s", c.StartDate.Format("200601"))
}

// Validate ensures all configuration values are coherent.
func (c *Config) Validate() error {
	if c.StartDate.IsZero() || c.EndDate.IsZero() {
		return fmt.Errorf("start and end dates are required")
	}
	if c.StartDate.After(c.EndDate) {
		return fmt.Errorf("start date must be before or equal to end date")
	}

	if c.BaseURL == "" {
		return fmt.Errorf("base URL cannot be empty")
	}
	parsedURL, err := url.Parse(c.BaseURL)
	if err != nil {
		return fmt.Errorf("invalid base URL: %w", err)
	}
	if parsedURL.Host == "" {
		return fmt.Errorf("base URL must include a host")
	}

	if len(c.UserAgents) == 0 {
		return fmt.Errorf("user agent rotation list cannot be empty")
	}
	if c.NavTimeout <= 0 {
		return fmt.Errorf("navigation timeout must be positive")
	}
	if c.SetupSettle < 0 {
		return fmt.Errorf("setup settle delay cannot be negative")
	}
	if c.PollInterval <= 0 {
		return fmt.Errorf("poll interval must be positive")
	}
	if c.PollTimeout < 0 {
		return fmt.Errorf("poll timeout cannot be negative")
	}
	if c.DelayMin < 0 || c.DelayMax < 0 {
		return fmt.Errorf("inter-day delays cannot be negative")
	}
	if c.DelayMin > c.DelayMax {
		return fmt.Errorf("minimum delay (%s) cannot exceed maximum delay (%s)", c.DelayMin, c.DelayMax)
	}
	if c.LogsDir == "" {
		return fmt.Errorf("logs directory cannot be empty")
	}
	if c.SummaryFormat != "csv" && c.SummaryFormat != "json" && c.SummaryFormat != "dual" {
		return fmt.Errorf("summary format must be csv, json, or dual")
	}

	return nil
}
