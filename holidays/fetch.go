package holidays

import (
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/gocolly/colly/v2"
)

// FetchConfig controls the holiday table scrape.
type FetchConfig struct {
	URL       string
	UserAgent string
	Timeout   time.Duration
	// Transport overrides the HTTP transport; used by tests.
	Transport http.RoundTripper
}

// cellDateLayouts are the formats holiday tables publish dates in.
var cellDateLayouts = []string{"02-Jan-2006", "2006-01-02", "02 Jan 2006"}

// Fetch scrapes the exchange trading-holiday table and writes one
// YYYY-MM-DD date per line to path. It returns the number of dates written.
func Fetch(cfg FetchConfig, path string) (int, error) {
	parsed, err := url.Parse(cfg.URL)
	if err != nil {
		return 0, fmt.Errorf("parse holiday page url: %w", err)
	}
	if parsed.Host == "" {
		return 0, fmt.Errorf("holiday page url must include a host")
	}

	collector := colly.NewCollector(
		colly.AllowedDomains(parsed.Host),
		colly.UserAgent(cfg.UserAgent),
	)
	if cfg.Timeout > 0 {
		collector.SetRequestTimeout(cfg.Timeout)
	}
	if cfg.Transport != nil {
		collector.WithTransport(cfg.Transport)
	}

	seen := make(map[string]struct{})
	var visitErr error

	collector.OnHTML("table tbody tr td", func(e *colly.HTMLElement) {
		date, ok := parseCellDate(e.Text)
		if !ok {
			return
		}
		seen[date.Format("2006-01-02")] = struct{}{}
	})

	collector.OnError(func(r *colly.Response, err error) {
		status := 0
		if r != nil {
			status = r.StatusCode
		}
		visitErr = fmt.Errorf("fetch holiday page (status %d): %w", status, err)
	})

	if err := collector.Visit(cfg.URL); err != nil {
		return 0, fmt.Errorf("visit holiday page: %w", err)
	}
	collector.Wait()

	if visitErr != nil {
		return 0, visitErr
	}
	if len(seen) == 0 {
		return 0, fmt.Errorf("no holiday dates found at %s", cfg.URL)
	}

	dates := make([]string, 0, len(seen))
	for date := range seen {
		dates = append(dates, date)
	}
	sort.Strings(dates)

	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return 0, fmt.Errorf("create holiday file directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(strings.Join(dates, "\n")+"\n"), 0o644); err != nil {
		return 0, fmt.Errorf("write holiday file: %w", err)
	}

	slog.Info("holiday file refreshed", slog.String("path", path), slog.Int("dates", len(dates)))
	return len(dates), nil
}

func parseCellDate(text string) (time.Time, bool) {
	text = strings.TrimSpace(text)
	if text == "" {
		return time.Time{}, false
	}
	for _, layout := range cellDateLayouts {
		if date, err := time.Parse(layout, text); err == nil {
			return date, true
		}
	}
	return time.Time{}, false
}
